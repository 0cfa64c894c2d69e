package crsf

import (
	"errors"
	"testing"
)

func TestRawScanner_Empty(t *testing.T) {
	sc := NewRawScanner(nil)
	if sc.Scan() {
		t.Fatal("Scan on empty input returned true")
	}
}

func TestRawScanner_SingleFrame(t *testing.T) {
	wire := buildTestFrame(t, AddrFlightController, TypeVario, []byte{0xFF, 0x06})

	sc := NewRawScanner(wire)
	if !sc.Scan() {
		t.Fatal("no item")
	}
	if sc.Err() != nil {
		t.Fatalf("err: %v", sc.Err())
	}
	if sc.Frame().Type() != TypeVario {
		t.Errorf("Type = %#x, want %#x", byte(sc.Frame().Type()), byte(TypeVario))
	}
	if sc.Scan() {
		t.Error("extra item after single frame")
	}
}

func TestRawScanner_NoiseBetweenFrames(t *testing.T) {
	var stream []byte
	stream = append(stream, 0x55, 0x03)
	stream = append(stream, buildTestFrame(t, AddrFlightController, TypeVario, []byte{0, 1})...)
	stream = append(stream, 0xA7)
	stream = append(stream, buildTestFrame(t, AddrTransmitter, TypeAirspeed, []byte{2, 3})...)

	var types []PacketType
	var syncErrs int
	sc := NewRawScanner(stream)
	for sc.Scan() {
		if sc.Err() != nil {
			var se *SyncError
			if !errors.As(sc.Err(), &se) {
				t.Fatalf("unexpected error kind: %v", sc.Err())
			}
			syncErrs++
			continue
		}
		types = append(types, sc.Frame().Type())
	}

	if syncErrs != 3 {
		t.Errorf("sync errors = %d, want 3", syncErrs)
	}
	if len(types) != 2 || types[0] != TypeVario || types[1] != TypeAirspeed {
		t.Errorf("types = %v, want [Vario Airspeed]", types)
	}
}

func TestRawScanner_TruncatedTail(t *testing.T) {
	wire := buildTestFrame(t, AddrFlightController, TypeVario, []byte{0, 1})
	var stream []byte
	stream = append(stream, wire...)
	stream = append(stream, wire[:3]...) // second frame cut short

	sc := NewRawScanner(stream)
	var frames int
	for sc.Scan() {
		if sc.Err() != nil {
			t.Fatalf("err: %v", sc.Err())
		}
		frames++
	}
	if frames != 1 {
		t.Errorf("frames = %d, want 1 with the tail swallowed", frames)
	}
}

func TestRawScanner_ItemStateClears(t *testing.T) {
	var stream []byte
	stream = append(stream, 0x55) // one sync error
	stream = append(stream, buildTestFrame(t, AddrFlightController, TypeVario, []byte{0, 1})...)

	sc := NewRawScanner(stream)
	if !sc.Scan() || sc.Err() == nil {
		t.Fatal("expected an error item first")
	}
	if sc.Frame() != nil {
		t.Error("Frame non-nil alongside error")
	}
	if !sc.Scan() || sc.Err() != nil {
		t.Fatalf("expected a frame item, got err %v", sc.Err())
	}
	if sc.Frame() == nil {
		t.Error("Frame nil on success item")
	}
}
