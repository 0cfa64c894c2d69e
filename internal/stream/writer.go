package stream

import (
	"fmt"
	"io"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
	"github.com/kstaniek/go-crsf-server/internal/packets"
)

// Writer serializes packets onto a byte stream. Each frame goes out
// with a single Write call so interleaving writers on a shared
// destination cannot shear a frame.
//
// Not safe for concurrent use; put a transport funnel in front when
// multiple goroutines transmit.
type Writer struct {
	dst io.Writer
	buf [crsf.MaxFrameLen]byte
}

// NewWriter returns a Writer pushing to dst.
func NewWriter(dst io.Writer) *Writer {
	return &Writer{dst: dst}
}

// WritePacket encodes rec into a complete frame addressed to dst and
// writes it out. Nothing is written when encoding fails.
func (w *Writer) WritePacket(dst crsf.Address, rec packets.Record) error {
	n, err := packets.EncodeFrame(w.buf[:], dst, rec)
	if err != nil {
		return err
	}
	return w.writeAll(w.buf[:n])
}

// WriteFrame writes an already-assembled frame verbatim.
func (w *Writer) WriteFrame(f *crsf.Frame) error {
	return w.writeAll(f.Bytes())
}

func (w *Writer) writeAll(p []byte) error {
	for len(p) > 0 {
		n, err := w.dst.Write(p)
		if err != nil {
			return fmt.Errorf("stream: write: %w", err)
		}
		p = p[n:]
	}
	return nil
}
