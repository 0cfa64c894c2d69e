// Package stream adapts the frame parser and packet codecs to
// ordinary io.Reader/io.Writer byte streams such as serial ports,
// TCP connections, and capture files.
package stream

import (
	"fmt"
	"io"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
	"github.com/kstaniek/go-crsf-server/internal/packets"
)

// Reader pulls complete frames out of a byte stream. Reads from the
// source happen in chunks; leftover bytes past a frame boundary are
// kept for the next call, so frames split across reads reassemble
// transparently.
//
// Not safe for concurrent use.
type Reader struct {
	parser crsf.Parser
	src    io.Reader
	buf    [2 * crsf.MaxFrameLen]byte
	pos    int // next unparsed byte in buf
	n      int // valid bytes in buf
	err    error
}

// NewReader returns a Reader pulling from src.
func NewReader(src io.Reader) *Reader {
	return &Reader{src: src}
}

// ReadRawFrame blocks until one complete CRC-valid frame arrives and
// returns a view of it, valid until the next call.
//
// Framing errors (crsf.IsFramingError) are returned per-frame; the
// reader stays usable and the caller decides whether to keep going.
// A source that returns zero bytes yields crsf.ErrUnexpectedEOF;
// other source errors come back wrapped.
func (r *Reader) ReadRawFrame() (crsf.RawFrame, error) {
	for {
		for r.pos < r.n {
			b := r.buf[r.pos]
			r.pos++
			frame, err := r.parser.PushByte(b)
			if err != nil {
				return nil, err
			}
			if frame != nil {
				return frame, nil
			}
		}

		if r.err != nil {
			err := r.err
			r.err = nil
			return nil, err
		}

		n, err := r.src.Read(r.buf[:])
		r.pos, r.n = 0, n
		switch {
		case err == io.EOF || (n == 0 && err == nil):
			// Process what arrived first; report on the next pass.
			r.err = crsf.ErrUnexpectedEOF
		case err != nil:
			r.err = fmt.Errorf("stream: read: %w", err)
		}
	}
}

// ReadFrame is ReadRawFrame with an owned copy, safe to hand off.
func (r *Reader) ReadFrame() (crsf.Frame, error) {
	raw, err := r.ReadRawFrame()
	if err != nil {
		return crsf.Frame{}, err
	}
	return crsf.CopyFrame(raw), nil
}

// ReadPacket reads the next frame and decodes it into its typed
// record. Both framing and payload errors surface here; after a
// framing error the reader can simply be called again.
func (r *Reader) ReadPacket() (packets.Record, error) {
	raw, err := r.ReadRawFrame()
	if err != nil {
		return nil, err
	}
	return packets.Dispatch(raw)
}
