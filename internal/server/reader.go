package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
	"github.com/kstaniek/go-crsf-server/internal/hub"
	"github.com/kstaniek/go-crsf-server/internal/metrics"
	"github.com/kstaniek/go-crsf-server/internal/serialport"
)

// startReader launches the goroutine consuming client bytes. Each
// connection gets its own frame parser; CRC-valid frames go to the
// backend, framing errors are counted and the parser resynchronizes
// in place, so a client joining mid-thought costs a few counted sync
// errors rather than a disconnect.
func (s *Server) startReader(ctxDone <-chan struct{}, conn net.Conn, cl *hub.Client, logger *slog.Logger) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { _ = conn.Close() }()
		var parser crsf.Parser
		buf := make([]byte, 512)
		for {
			_ = conn.SetReadDeadline(time.Now().Add(s.readDeadline))
			n, err := conn.Read(buf)
			for _, b := range buf[:n] {
				frame, perr := parser.PushByte(b)
				if perr != nil {
					metrics.IncFraming(perr)
					continue
				}
				if frame == nil {
					continue
				}
				fr := crsf.CopyFrame(frame)
				if s.frameFilter != nil && !s.frameFilter(&fr) {
					continue
				}
				metrics.IncTCPRx()
				if serr := s.Send(fr); serr != nil {
					if errors.Is(serr, serialport.ErrTxOverflow) {
						s.totalBackendOverflow.Add(1)
						logger.Debug("backend_overflow_drop", "type", fr.Type().String(), "len", fr.Len)
					} else {
						wrap := fmt.Errorf("%w: %v", ErrBackendTx, serr)
						s.setError(wrap)
						s.totalBackendErrors.Add(1)
						metrics.IncError(mapErrToMetric(wrap))
						logger.Error("backend_tx_error", "error", wrap, "type", fr.Type().String())
					}
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
					return
				}
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					continue
				}
				wrap := fmt.Errorf("%w: %v", ErrConnRead, err)
				metrics.IncError(mapErrToMetric(wrap))
				s.setError(wrap)
				return
			}
			select {
			case <-ctxDone:
				return
			default:
			}
		}
	}()
}
