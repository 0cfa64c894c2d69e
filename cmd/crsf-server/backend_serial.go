package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
	"github.com/kstaniek/go-crsf-server/internal/hub"
	"github.com/kstaniek/go-crsf-server/internal/metrics"
	"github.com/kstaniek/go-crsf-server/internal/portlock"
	"github.com/kstaniek/go-crsf-server/internal/serialport"
	"github.com/kstaniek/go-crsf-server/internal/server"
)

// sleepFn allows tests to intercept backoff sleeps.
var sleepFn = time.Sleep

// openSerialPort is a hook for tests (overridden in unit tests).
var openSerialPort = serialport.Open

// swappablePort lets the RX loop replace the device after a reopen
// while the TX funnel keeps writing through the same handle.
type swappablePort struct {
	mu sync.RWMutex
	p  serialport.Port
}

func (s *swappablePort) get() serialport.Port {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p
}

func (s *swappablePort) swap(p serialport.Port) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

func (s *swappablePort) Read(b []byte) (int, error)  { return s.get().Read(b) }
func (s *swappablePort) Write(b []byte) (int, error) { return s.get().Write(b) }
func (s *swappablePort) Close() error                { return s.get().Close() }

// initSerialBackend locks and opens the UART, then launches the RX loop
// feeding the frame parser. Validated frames go to the hub verbatim and
// to the telemetry sinks decoded.
func initSerialBackend(ctx context.Context, cfg *appConfig, h *hub.Hub, sinks *telemetrySinks, l *slog.Logger, wg *sync.WaitGroup) (server.SendFunc, func(), error) {
	lock, err := portlock.Acquire(cfg.serialDev)
	if err != nil {
		return nil, func() {}, fmt.Errorf("lock serial: %w", err)
	}
	sp, err := openSerialPort(cfg.serialDev, cfg.baud, cfg.serialReadTO)
	if err != nil {
		_ = lock.Release()
		return nil, func() {}, fmt.Errorf("open serial: %w", err)
	}
	l.Info("serial_open", "device", cfg.serialDev, "baud", cfg.baud)
	sw := &swappablePort{p: sp}
	w := serialport.NewTXWriter(ctx, sw, txQueueSize)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer l.Info("serial_rx_end")
		var parser crsf.Parser
		buf := make([]byte, serialReadBufSize)
		backoff := rxBackoffMin
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			n, err := sw.Read(buf)
			if n > 0 {
				for _, b := range buf[:n] {
					frame, perr := parser.PushByte(b)
					if perr != nil {
						metrics.IncFraming(perr)
						continue
					}
					if frame == nil {
						continue
					}
					metrics.IncSerialRx()
					h.Broadcast(crsf.CopyFrame(frame))
					sinks.handle(frame)
				}
				backoff = rxBackoffMin
			}
			if err != nil {
				if ctx.Err() != nil { // shutting down
					return
				}
				if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
					continue // read timeout with no data
				}
				var perr *os.PathError
				if errors.As(err, &perr) {
					// Device vanished (unplugged USB adapter). Keep trying
					// to reopen with the same backoff schedule; the parser
					// resets so a reattached link starts clean.
					_ = sw.get().Close()
					metrics.IncError(metrics.ErrSerialRead)
					l.Warn("serial_device_lost", "device", cfg.serialDev, "error", err)
					parser.Reset()
					for {
						sleepFn(backoff)
						if backoff *= 2; backoff > rxBackoffMax {
							backoff = rxBackoffMax
						}
						if ctx.Err() != nil {
							return
						}
						nsp, oerr := openSerialPort(cfg.serialDev, cfg.baud, cfg.serialReadTO)
						if oerr == nil {
							sw.swap(nsp)
							backoff = rxBackoffMin
							l.Info("serial_reopen", "device", cfg.serialDev)
							break
						}
					}
					continue
				}
				metrics.IncError(metrics.ErrSerialRead)
				l.Warn("serial_read_error", "error", err, "backoff", backoff)
				sleepFn(backoff)
				if backoff *= 2; backoff > rxBackoffMax {
					backoff = rxBackoffMax
				}
			}
		}
	}()
	cleanup := func() {
		_ = sw.Close()
		w.Close()
		_ = lock.Release()
	}
	return w.SendFrame, cleanup, nil
}
