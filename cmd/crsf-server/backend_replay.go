package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
	"github.com/kstaniek/go-crsf-server/internal/hub"
	"github.com/kstaniek/go-crsf-server/internal/metrics"
	"github.com/kstaniek/go-crsf-server/internal/server"
	"github.com/kstaniek/go-crsf-server/internal/stream"
)

// initReplayBackend streams frames from a capture file into the hub at a
// fixed pace, standing in for a live serial link during development and
// demos. Frames from TCP clients have nowhere to go and are discarded.
func initReplayBackend(ctx context.Context, cfg *appConfig, h *hub.Hub, sinks *telemetrySinks, l *slog.Logger, wg *sync.WaitGroup) (server.SendFunc, func(), error) {
	f, err := os.Open(cfg.replayFile)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open replay file: %w", err)
	}
	l.Info("replay_open", "file", cfg.replayFile, "interval", cfg.replayInterval, "loop", cfg.replayLoop)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() { _ = f.Close() }()
		defer l.Info("replay_end")
		r := stream.NewReader(f)
		ticker := time.NewTicker(cfg.replayInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			raw, err := r.ReadRawFrame()
			if err != nil {
				if crsf.IsFramingError(err) {
					metrics.IncFraming(err)
					continue
				}
				if errors.Is(err, crsf.ErrUnexpectedEOF) {
					if cfg.replayLoop {
						if _, serr := f.Seek(0, 0); serr != nil {
							l.Error("replay_rewind_error", "error", serr)
							return
						}
						r = stream.NewReader(f)
						continue
					}
					return
				}
				metrics.IncError(metrics.ErrSerialRead)
				l.Error("replay_read_error", "error", err)
				return
			}
			metrics.IncSerialRx()
			h.Broadcast(crsf.CopyFrame(raw))
			sinks.handle(raw)
		}
	}()
	send := func(crsf.Frame) error { return nil }
	return send, func() {}, nil
}
