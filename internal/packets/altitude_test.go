package packets

import (
	"testing"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
)

func TestPackAltitude(t *testing.T) {
	cases := []struct {
		dm   int32
		want uint16
	}{
		{-10000, 0},
		{-10001, 0}, // clamp below minimum
		{-20000, 0},
		{0, 10000},
		{22766, 32766},   // last decimeter-range value
		{22767, 0x7FFF},  // still decimeter range (threshold is 22768)
		{22768, 0x88E5},  // first meter-range value: 2277m
		{327655, 0xFFFE}, // top of meter range
		{327660, 0xFFFE}, // clamp above maximum
		{400000, 0xFFFE},
	}
	for _, tc := range cases {
		if got := PackAltitude(tc.dm); got != tc.want {
			t.Errorf("PackAltitude(%d) = %#04x, want %#04x", tc.dm, got, tc.want)
		}
	}
}

func TestUnpackAltitude(t *testing.T) {
	cases := []struct {
		packed uint16
		want   int32
	}{
		{0, -10000},
		{10000, 0},
		{0x7FFF, 22767},
		{0x8000, 0}, // meter mode, zero meters
		{0x8001, 10},
		{0xFFFE, 327660},
	}
	for _, tc := range cases {
		if got := UnpackAltitude(tc.packed); got != tc.want {
			t.Errorf("UnpackAltitude(%#04x) = %d, want %d", tc.packed, got, tc.want)
		}
	}
}

func TestAltitudeRoundTrip_DecimeterRange(t *testing.T) {
	// Every decimeter value below the threshold survives exactly.
	for dm := int32(-10000); dm < 22768; dm += 7 {
		if got := UnpackAltitude(PackAltitude(dm)); got != dm {
			t.Fatalf("round trip %d dm -> %d dm", dm, got)
		}
	}
}

func TestPackVerticalSpeed(t *testing.T) {
	cases := []struct {
		cms  int16
		want int8
	}{
		{0, 0},
		{2500, 125},
		{-2500, -125},
		{10, 3},
		{-10, -3},
		{30000, 127}, // saturates
		{-30000, -127},
	}
	for _, tc := range cases {
		if got := PackVerticalSpeed(tc.cms); got != tc.want {
			t.Errorf("PackVerticalSpeed(%d) = %d, want %d", tc.cms, got, tc.want)
		}
	}
}

func TestUnpackVerticalSpeed(t *testing.T) {
	cases := []struct {
		packed int8
		want   int16
	}{
		{0, 0},
		{127, 2616},
		{-127, -2616},
		{125, 2479},
	}
	for _, tc := range cases {
		if got := UnpackVerticalSpeed(tc.packed); got != tc.want {
			t.Errorf("UnpackVerticalSpeed(%d) = %d, want %d", tc.packed, got, tc.want)
		}
	}
}

func TestVerticalSpeed_SignSymmetry(t *testing.T) {
	for _, cms := range []int16{1, 5, 42, 100, 999, 2500, 30000} {
		pos, neg := PackVerticalSpeed(cms), PackVerticalSpeed(-cms)
		if pos != -neg {
			t.Errorf("pack(%d) = %d, pack(%d) = %d; want mirrored", cms, pos, -cms, neg)
		}
	}
	for _, p := range []int8{1, 10, 64, 127} {
		pos, neg := UnpackVerticalSpeed(p), UnpackVerticalSpeed(-p)
		if pos != -neg {
			t.Errorf("unpack(%d) = %d, unpack(%d) = %d; want mirrored", p, pos, -p, neg)
		}
	}
}

func TestBaroAltitude_Codec(t *testing.T) {
	rec := BaroAltitude{
		AltitudePacked:      PackAltitude(1234),
		VerticalSpeedPacked: PackVerticalSpeed(150),
	}
	var buf [3]byte
	n, err := rec.Encode(buf[:])
	if err != nil || n != 3 {
		t.Fatalf("Encode = (%d, %v), want (3, nil)", n, err)
	}
	var got BaroAltitude
	if err := got.Decode(buf[:]); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != rec {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, rec)
	}
	if got.AltitudeDm() != 1234 {
		t.Fatalf("AltitudeDm = %d, want 1234", got.AltitudeDm())
	}
	if err := got.Decode(buf[:2]); err != crsf.ErrPayloadLength {
		t.Fatalf("Decode(short) = %v, want ErrPayloadLength", err)
	}
}
