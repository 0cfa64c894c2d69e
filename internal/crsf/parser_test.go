package crsf

import (
	"bytes"
	"errors"
	"testing"
)

// buildTestFrame wraps BuildFrame for tests that need a known-good
// wire image.
func buildTestFrame(t *testing.T, dst Address, typ PacketType, payload []byte) []byte {
	t.Helper()
	out := make([]byte, MaxFrameLen)
	n, err := BuildFrame(out, dst, typ, payload)
	if err != nil {
		t.Fatalf("BuildFrame: %v", err)
	}
	return out[:n]
}

// feed pushes all of data and returns the frames and errors produced.
func feed(p *Parser, data []byte) (frames []Frame, errs []error) {
	for _, b := range data {
		f, err := p.PushByte(b)
		if err != nil {
			errs = append(errs, err)
		}
		if f != nil {
			frames = append(frames, CopyFrame(f))
		}
	}
	return frames, errs
}

func TestParser_CompleteFrame(t *testing.T) {
	payload := []byte{0xFF, 0x06}
	wire := buildTestFrame(t, AddrFlightController, TypeVario, payload)

	var p Parser
	for i, b := range wire[:len(wire)-1] {
		f, err := p.PushByte(b)
		if err != nil {
			t.Fatalf("byte %d: %v", i, err)
		}
		if f != nil {
			t.Fatalf("byte %d: premature frame", i)
		}
	}

	f, err := p.PushByte(wire[len(wire)-1])
	if err != nil {
		t.Fatalf("final byte: %v", err)
	}
	if f == nil {
		t.Fatal("no frame on final byte")
	}
	if f.Addr() != AddrFlightController {
		t.Errorf("Addr = %#x, want %#x", byte(f.Addr()), byte(AddrFlightController))
	}
	if f.Type() != TypeVario {
		t.Errorf("Type = %#x, want %#x", byte(f.Type()), byte(TypeVario))
	}
	if !bytes.Equal(f.Payload(), payload) {
		t.Errorf("Payload = % X, want % X", f.Payload(), payload)
	}
	if f.CRC() != wire[len(wire)-1] {
		t.Errorf("CRC = %#x, want %#x", f.CRC(), wire[len(wire)-1])
	}
}

func TestParser_EmptyPayloadFrame(t *testing.T) {
	wire := buildTestFrame(t, AddrBroadcast, TypeHeartbeat, nil)
	if len(wire) != MinFrameLen {
		t.Fatalf("frame length = %d, want %d", len(wire), MinFrameLen)
	}

	var p Parser
	frames, errs := feed(&p, wire)
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	if len(frames) != 1 {
		t.Fatalf("frames = %d, want 1", len(frames))
	}
	if got := frames[0].Payload(); len(got) != 0 {
		t.Errorf("payload = % X, want empty", got)
	}
}

func TestParser_SyncError(t *testing.T) {
	var p Parser
	f, err := p.PushByte(0x55)
	if f != nil {
		t.Fatal("frame from garbage byte")
	}
	var se *SyncError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SyncError", err)
	}
	if se.Byte != 0x55 {
		t.Errorf("Byte = %#x, want 0x55", se.Byte)
	}

	// The next valid frame must parse without a reset.
	wire := buildTestFrame(t, AddrFlightController, TypeVario, []byte{0, 1})
	frames, errs := feed(&p, wire)
	if len(errs) != 0 || len(frames) != 1 {
		t.Errorf("after sync error: frames %d errs %v, want 1 frame", len(frames), errs)
	}
}

func TestParser_LengthError(t *testing.T) {
	for _, lb := range []byte{0, 1, 62, 0xFF} {
		var p Parser
		if _, err := p.PushByte(byte(AddrFlightController)); err != nil {
			t.Fatalf("sync byte: %v", err)
		}
		f, err := p.PushByte(lb)
		if f != nil {
			t.Fatalf("length %#x: unexpected frame", lb)
		}
		var le *LengthError
		if !errors.As(err, &le) {
			t.Fatalf("length %#x: err = %v, want *LengthError", lb, err)
		}
		if le.Byte != lb {
			t.Errorf("Byte = %#x, want %#x", le.Byte, lb)
		}

		wire := buildTestFrame(t, AddrFlightController, TypeVario, []byte{0, 1})
		frames, errs := feed(&p, wire)
		if len(errs) != 0 || len(frames) != 1 {
			t.Errorf("after length %#x: frames %d errs %v, want 1 frame", lb, len(frames), errs)
		}
	}
}

func TestParser_LengthBounds(t *testing.T) {
	// Length bytes 2 and 61 are the extremes of the legal range.
	for _, lb := range []byte{2, 61} {
		var p Parser
		p.PushByte(byte(AddrFlightController))
		if _, err := p.PushByte(lb); err != nil {
			t.Errorf("length %d rejected: %v", lb, err)
		}
	}
}

func TestParser_CRCError(t *testing.T) {
	wire := buildTestFrame(t, AddrFlightController, TypeVario, []byte{0xFF, 0x06})
	good := wire[len(wire)-1]
	wire[len(wire)-1] ^= 0xA5

	var p Parser
	frames, errs := feed(&p, wire)
	if len(frames) != 0 {
		t.Fatal("frame accepted with bad crc")
	}
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want one", errs)
	}
	var ce *CRCError
	if !errors.As(errs[0], &ce) {
		t.Fatalf("err = %v, want *CRCError", errs[0])
	}
	if ce.Calculated != good || ce.Received != good^0xA5 {
		t.Errorf("got calculated %#x received %#x, want %#x %#x",
			ce.Calculated, ce.Received, good, good^0xA5)
	}

	// Recovery: the same frame with the right crc parses next.
	wire[len(wire)-1] = good
	frames, errs = feed(&p, wire)
	if len(errs) != 0 || len(frames) != 1 {
		t.Errorf("after crc error: frames %d errs %v, want 1 frame", len(frames), errs)
	}
}

func TestParser_ResetMidFrame(t *testing.T) {
	wire := buildTestFrame(t, AddrFlightController, TypeVario, []byte{0, 1})

	var p Parser
	feed(&p, wire[:3])
	p.Reset()

	frames, errs := feed(&p, wire)
	if len(errs) != 0 || len(frames) != 1 {
		t.Errorf("after reset: frames %d errs %v, want 1 frame", len(frames), errs)
	}
}

func TestParser_BackToBackFrames(t *testing.T) {
	var stream []byte
	stream = append(stream, buildTestFrame(t, AddrFlightController, TypeVario, []byte{0, 1})...)
	stream = append(stream, buildTestFrame(t, AddrTransmitter, TypeAirspeed, []byte{2, 3})...)

	var p Parser
	frames, errs := feed(&p, stream)
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	if len(frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(frames))
	}
	if frames[0].Type() != TypeVario || frames[1].Type() != TypeAirspeed {
		t.Errorf("types = %#x %#x, want %#x %#x",
			byte(frames[0].Type()), byte(frames[1].Type()),
			byte(TypeVario), byte(TypeAirspeed))
	}
}

func TestIsFramingError(t *testing.T) {
	for _, err := range []error{
		&SyncError{Byte: 0x55},
		&LengthError{Byte: 0xFF},
		&CRCError{Calculated: 1, Received: 2},
	} {
		if !IsFramingError(err) {
			t.Errorf("IsFramingError(%T) = false", err)
		}
	}
	if IsFramingError(ErrPayloadLength) {
		t.Error("IsFramingError(ErrPayloadLength) = true")
	}
	if IsFramingError(nil) {
		t.Error("IsFramingError(nil) = true")
	}
}

func TestBuildFrame_Overflow(t *testing.T) {
	out := make([]byte, MaxFrameLen)
	if _, err := BuildFrame(out, AddrBroadcast, TypeGPS, make([]byte, MaxPayloadLen+1)); !errors.Is(err, ErrBufferOverflow) {
		t.Errorf("oversized payload: %v, want ErrBufferOverflow", err)
	}

	small := make([]byte, 5)
	if _, err := BuildFrame(small, AddrBroadcast, TypeGPS, make([]byte, 10)); !errors.Is(err, ErrBufferOverflow) {
		t.Errorf("small buffer: %v, want ErrBufferOverflow", err)
	}
	for _, b := range small {
		if b != 0 {
			t.Fatal("failed BuildFrame wrote into out")
		}
	}
}

func TestCopyFrame_SurvivesReuse(t *testing.T) {
	first := buildTestFrame(t, AddrFlightController, TypeVario, []byte{0xAA, 0xBB})
	second := buildTestFrame(t, AddrFlightController, TypeAirspeed, []byte{0x11, 0x22})

	var p Parser
	var snap Frame
	for _, b := range first {
		if f, _ := p.PushByte(b); f != nil {
			snap = CopyFrame(f)
		}
	}
	feed(&p, second) // overwrites the parser buffer

	if snap.Type() != TypeVario {
		t.Errorf("Type = %#x, want %#x", byte(snap.Type()), byte(TypeVario))
	}
	if !bytes.Equal(snap.Payload(), []byte{0xAA, 0xBB}) {
		t.Errorf("Payload = % X, want AA BB", snap.Payload())
	}
	if !bytes.Equal(snap.Bytes(), first) {
		t.Errorf("Bytes = % X, want % X", snap.Bytes(), first)
	}
}

func FuzzParser(f *testing.F) {
	f.Add([]byte{0xC8, 12, 0x14, 16, 19, 99, 151, 1, 2, 3, 8, 88, 148, 252})
	f.Add([]byte{0x00, 0x02, 0x0B, 0x00})
	f.Add([]byte{0x55, 0xAA, 0x55, 0xAA})
	f.Fuzz(func(t *testing.T, data []byte) {
		var p Parser
		for _, b := range data {
			frame, err := p.PushByte(b)
			if frame != nil && err != nil {
				t.Fatal("frame and error from one byte")
			}
			if frame == nil {
				continue
			}
			if len(frame) < MinFrameLen || len(frame) >= MaxFrameLen {
				t.Fatalf("frame length %d out of range", len(frame))
			}
			if int(frame[1])+2 != len(frame) {
				t.Fatalf("length byte %d disagrees with frame size %d", frame[1], len(frame))
			}
			if Checksum(frame[2:len(frame)-1]) != frame.CRC() {
				t.Fatal("emitted frame fails its own crc")
			}
			if !ValidAddress(byte(frame.Addr())) {
				t.Fatalf("emitted frame from invalid address %#x", byte(frame.Addr()))
			}
		}
	})
}

func BenchmarkParser(b *testing.B) {
	payload := make([]byte, 22)
	wire := make([]byte, MaxFrameLen)
	n, err := BuildFrame(wire, AddrFlightController, TypeRCChannelsPacked, payload)
	if err != nil {
		b.Fatal(err)
	}
	wire = wire[:n]

	var p Parser
	b.ReportAllocs()
	b.SetBytes(int64(len(wire)))
	for i := 0; i < b.N; i++ {
		for _, by := range wire {
			if _, err := p.PushByte(by); err != nil {
				b.Fatal(err)
			}
		}
	}
}
