package packets

import (
	"encoding/binary"
	"math"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
)

// Vertical speed compression constants.
const (
	vsLinearity = 100.0 // cm/s scale below which packing is near linear
	vsRange     = 0.026 // growth rate; 0x7F packs about 26 m/s
)

const baroAltitudeLen = 3

// BaroAltitude is the barometric altitude plus vertical speed frame.
// Both fields travel compressed; use the pack/unpack helpers or the
// convenience getters for engineering units.
type BaroAltitude struct {
	AltitudePacked      uint16
	VerticalSpeedPacked int8
}

func (*BaroAltitude) Type() crsf.PacketType { return crsf.TypeBaroAltitude }
func (*BaroAltitude) MinPayload() int       { return baroAltitudeLen }

func (r *BaroAltitude) Decode(payload []byte) error {
	if len(payload) != baroAltitudeLen {
		return crsf.ErrPayloadLength
	}
	r.AltitudePacked = binary.BigEndian.Uint16(payload[0:2])
	r.VerticalSpeedPacked = int8(payload[2])
	return nil
}

func (r *BaroAltitude) Encode(out []byte) (int, error) {
	if len(out) < baroAltitudeLen {
		return 0, crsf.ErrBufferOverflow
	}
	binary.BigEndian.PutUint16(out[0:2], r.AltitudePacked)
	out[2] = byte(r.VerticalSpeedPacked)
	return baroAltitudeLen, nil
}

// AltitudeDm returns the altitude in decimeters.
func (r *BaroAltitude) AltitudeDm() int32 { return UnpackAltitude(r.AltitudePacked) }

// VerticalSpeedCmS returns the vertical speed in cm/s.
func (r *BaroAltitude) VerticalSpeedCmS() int16 {
	return UnpackVerticalSpeed(r.VerticalSpeedPacked)
}

// The packed altitude is dual-range. With the high bit clear the
// field is decimeters offset by +10000, so 0 means -1000m, 10000
// means 0m and 0x7FFF means 2276.7m. With the high bit set the low
// 15 bits are whole meters with no offset. Packing stays in the fine
// decimeter range while the value fits, then switches to rounded
// meters, clamping at both representable ends.
const (
	altMinDm       = 10000
	altThresholdDm = 0x8000 - altMinDm
	altMaxDm       = 0x7FFE*10 - 5
)

// PackAltitude compresses an altitude in decimeters.
func PackAltitude(dm int32) uint16 {
	switch {
	case dm < -altMinDm:
		return 0 // minimum
	case dm > altMaxDm:
		return 0xFFFE // maximum
	case dm < altThresholdDm:
		return uint16(dm + altMinDm)
	default:
		return uint16((dm+5)/10) | 0x8000
	}
}

// UnpackAltitude expands a packed altitude to decimeters.
func UnpackAltitude(packed uint16) int32 {
	if packed&0x8000 != 0 {
		return int32(packed&0x7FFF) * 10
	}
	return int32(packed) - altMinDm
}

// PackVerticalSpeed compresses a vertical speed in cm/s to the
// logarithmic 8-bit form: trunc(sign(v) * ln(|v|/100 + 1) / 0.026).
// The sign carries through; the magnitude saturates like an integer
// cast would.
func PackVerticalSpeed(cms int16) int8 {
	v := float64(cms)
	packed := math.Trunc(math.Log(math.Abs(v)/vsLinearity+1) / vsRange)
	if v < 0 {
		packed = -packed
	}
	if packed > math.MaxInt8 {
		return math.MaxInt8
	}
	if packed < math.MinInt8 {
		return math.MinInt8
	}
	return int8(packed)
}

// UnpackVerticalSpeed inverts PackVerticalSpeed:
// trunc(sign(p) * 100 * (e^(|p|*0.026) - 1)).
func UnpackVerticalSpeed(packed int8) int16 {
	p := float64(packed)
	v := math.Trunc((math.Exp(math.Abs(p)*vsRange) - 1) * vsLinearity)
	if p < 0 {
		v = -v
	}
	return int16(v)
}
