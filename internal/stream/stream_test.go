package stream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
	"github.com/kstaniek/go-crsf-server/internal/packets"
)

func varioFrame(t *testing.T, vspeed int16) []byte {
	t.Helper()
	out := make([]byte, crsf.MaxFrameLen)
	n, err := packets.EncodeFrame(out, crsf.AddrFlightController, &packets.Vario{VSpeed: vspeed})
	if err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	return out[:n]
}

// chunkReader returns its content in fixed-size slices to exercise
// frames split across reads.
type chunkReader struct {
	data  []byte
	chunk int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := c.chunk
	if n > len(c.data) {
		n = len(c.data)
	}
	n = copy(p[:min(n, len(p))], c.data)
	c.data = c.data[n:]
	return n, nil
}

func TestReader_SingleFrame(t *testing.T) {
	r := NewReader(bytes.NewReader(varioFrame(t, -250)))

	rec, err := r.ReadPacket()
	if err != nil {
		t.Fatalf("read packet: %v", err)
	}
	v, ok := rec.(*packets.Vario)
	if !ok {
		t.Fatalf("record type = %T, want *packets.Vario", rec)
	}
	if v.VSpeed != -250 {
		t.Errorf("VSpeed = %d, want -250", v.VSpeed)
	}

	if _, err := r.ReadPacket(); !errors.Is(err, crsf.ErrUnexpectedEOF) {
		t.Errorf("at end: %v, want ErrUnexpectedEOF", err)
	}
}

func TestReader_SplitAcrossReads(t *testing.T) {
	var stream []byte
	for i := int16(0); i < 5; i++ {
		stream = append(stream, varioFrame(t, i*100)...)
	}

	for _, chunk := range []int{1, 2, 3, 7} {
		r := NewReader(&chunkReader{data: append([]byte(nil), stream...), chunk: chunk})
		for i := int16(0); i < 5; i++ {
			rec, err := r.ReadPacket()
			if err != nil {
				t.Fatalf("chunk %d frame %d: %v", chunk, i, err)
			}
			if v := rec.(*packets.Vario).VSpeed; v != i*100 {
				t.Errorf("chunk %d frame %d: VSpeed = %d, want %d", chunk, i, v, i*100)
			}
		}
	}
}

func TestReader_RecoversAfterFramingError(t *testing.T) {
	var stream []byte
	stream = append(stream, 0x55) // garbage before the frame
	stream = append(stream, varioFrame(t, 42)...)

	r := NewReader(bytes.NewReader(stream))

	_, err := r.ReadPacket()
	if !crsf.IsFramingError(err) {
		t.Fatalf("first read: %v, want a framing error", err)
	}

	rec, err := r.ReadPacket()
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if v := rec.(*packets.Vario).VSpeed; v != 42 {
		t.Errorf("VSpeed = %d, want 42", v)
	}
}

func TestReader_EOFMidFrame(t *testing.T) {
	wire := varioFrame(t, 1)
	r := NewReader(bytes.NewReader(wire[:3]))

	if _, err := r.ReadRawFrame(); !errors.Is(err, crsf.ErrUnexpectedEOF) {
		t.Errorf("ReadRawFrame = %v, want ErrUnexpectedEOF", err)
	}
}

type failingReader struct{ err error }

func (f *failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestReader_SourceErrorWrapped(t *testing.T) {
	cause := errors.New("port gone")
	r := NewReader(&failingReader{err: cause})

	_, err := r.ReadRawFrame()
	if !errors.Is(err, cause) {
		t.Errorf("ReadRawFrame = %v, want wrapped %v", err, cause)
	}
}

func TestReader_OwnedFrame(t *testing.T) {
	var stream []byte
	stream = append(stream, varioFrame(t, 10)...)
	stream = append(stream, varioFrame(t, 20)...)

	r := NewReader(bytes.NewReader(stream))
	first, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := r.ReadFrame(); err != nil {
		t.Fatalf("second: %v", err)
	}

	// The owned copy must not see the second frame's bytes.
	var v packets.Vario
	if err := v.Decode(first.Payload()); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.VSpeed != 10 {
		t.Errorf("VSpeed = %d, want 10", v.VSpeed)
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.WritePacket(crsf.AddrFlightController, &packets.Airspeed{Speed: 1250}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.WritePacket(crsf.AddrFlightController, &packets.Vario{VSpeed: -3}); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewReader(&buf)
	rec, err := r.ReadPacket()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if a, ok := rec.(*packets.Airspeed); !ok || a.Speed != 1250 {
		t.Errorf("first record = %#v", rec)
	}
	rec, err = r.ReadPacket()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v, ok := rec.(*packets.Vario); !ok || v.VSpeed != -3 {
		t.Errorf("second record = %#v", rec)
	}
}

// shortWriter accepts one byte per call.
type shortWriter struct{ buf bytes.Buffer }

func (s *shortWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	s.buf.WriteByte(p[0])
	return 1, nil
}

func TestWriter_ShortWrites(t *testing.T) {
	var sw shortWriter
	w := NewWriter(&sw)
	wire := varioFrame(t, 99)

	if err := w.WritePacket(crsf.AddrFlightController, &packets.Vario{VSpeed: 99}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !bytes.Equal(sw.buf.Bytes(), wire) {
		t.Errorf("wrote % X, want % X", sw.buf.Bytes(), wire)
	}
}

func TestWriter_EncodeFailureWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	bad := &packets.RPM{Values: make([]int32, 20)}
	if err := w.WritePacket(crsf.AddrFlightController, bad); !errors.Is(err, crsf.ErrBufferOverflow) {
		t.Fatalf("write = %v, want ErrBufferOverflow", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes after encode failure", buf.Len())
	}
}
