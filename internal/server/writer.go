package server

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
	"github.com/kstaniek/go-crsf-server/internal/hub"
	"github.com/kstaniek/go-crsf-server/internal/metrics"
)

// startWriter launches the goroutine pushing hub frames to a single
// client connection. Frames are already wire-encoded, so a flush is
// one Write of the concatenated batch; coalescing keeps syscall count
// down at RC-link frame rates (150 Hz and up per direction).
func (s *Server) startWriter(ctxDone <-chan struct{}, conn net.Conn, cl *hub.Client, logger *slog.Logger) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			_ = conn.Close()
			if s.Hub != nil {
				s.Hub.Remove(cl)
			}
			s.totalDisconnected.Add(1)
			logger.Info("client_disconnected")
		}()
		t := time.NewTicker(s.flushInterval)
		defer t.Stop()
		pending := 0
		wire := make([]byte, 0, s.batchSize*crsf.MaxFrameLen)
		flush := func() error {
			if pending == 0 {
				return nil
			}
			n := pending
			if _, err := conn.Write(wire); err != nil {
				wire = wire[:0]
				pending = 0
				wrap := fmt.Errorf("%w: %v", ErrConnWrite, err)
				metrics.IncError(mapErrToMetric(wrap))
				s.setError(wrap)
				return wrap
			}
			wire = wire[:0]
			pending = 0
			metrics.AddTCPTx(n)
			return nil
		}
		for {
			select {
			case fr := <-cl.Out:
				wire = append(wire, fr.Bytes()...)
				pending++
				if pending >= s.batchSize {
					if err := flush(); err != nil {
						return
					}
				}
			case <-t.C:
				if err := flush(); err != nil {
					return
				}
			case <-cl.Closed:
				_ = flush()
				return
			case <-ctxDone:
				_ = flush()
				return
			}
		}
	}()
}
