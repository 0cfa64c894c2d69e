package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
	"github.com/kstaniek/go-crsf-server/internal/hub"
	"github.com/kstaniek/go-crsf-server/internal/metrics"
	"github.com/kstaniek/go-crsf-server/internal/mqttpub"
	"github.com/kstaniek/go-crsf-server/internal/packets"
	"github.com/kstaniek/go-crsf-server/internal/recorder"
	"github.com/kstaniek/go-crsf-server/internal/server"
)

// telemetrySinks fans decoded packets out to the optional recorder
// and MQTT publisher. Both ends are non-blocking so the RX loop is
// never held up by disk or broker.
type telemetrySinks struct {
	rec *recorder.Recorder
	pub *mqttpub.Publisher
}

// handle decodes a validated frame and forwards the packet. Decode
// failures and unimplemented tags only count; the raw frame already
// went out to the hub regardless.
func (s *telemetrySinks) handle(frame crsf.RawFrame) {
	rec, err := packets.Dispatch(frame)
	if err != nil {
		return
	}
	metrics.IncDecoded(frame.Type())
	if _, ok := rec.(*packets.NotImplemented); ok {
		return
	}
	if s == nil {
		return
	}
	if s.rec != nil {
		_ = s.rec.Record(rec)
	}
	if s.pub != nil {
		_ = s.pub.Publish(rec)
	}
}

func (s *telemetrySinks) close() {
	if s == nil {
		return
	}
	if s.pub != nil {
		s.pub.Close()
	}
	if s.rec != nil {
		_ = s.rec.Close()
	}
}

// initSinks opens whichever of the recorder and publisher the config enables.
func initSinks(cfg *appConfig, l *slog.Logger) (*telemetrySinks, error) {
	s := &telemetrySinks{}
	if cfg.recordPath != "" {
		r, err := recorder.Open(cfg.recordPath)
		if err != nil {
			return nil, err
		}
		l.Info("recorder_open", "path", cfg.recordPath, "session", r.Session())
		s.rec = r
	}
	if cfg.mqttURI != "" {
		p, err := mqttpub.New(cfg.mqttURI, 0, 0)
		if err != nil {
			s.close()
			return nil, err
		}
		l.Info("mqtt_publisher_open", "topic", p.Topic())
		s.pub = p
	}
	return s, nil
}

// initBackend selects the frame source, starts its RX loop and returns a
// frame sender and cleanup. It returns an error instead of exiting the
// process to allow graceful handling by the caller.
func initBackend(ctx context.Context, cfg *appConfig, h *hub.Hub, sinks *telemetrySinks, l *slog.Logger, wg *sync.WaitGroup) (server.SendFunc, func(), error) {
	switch cfg.backend {
	case "serial":
		return initSerialBackend(ctx, cfg, h, sinks, l, wg)
	case "replay":
		return initReplayBackend(ctx, cfg, h, sinks, l, wg)
	default:
		return nil, func() {}, fmt.Errorf("unknown backend %q (use serial|replay)", cfg.backend)
	}
}
