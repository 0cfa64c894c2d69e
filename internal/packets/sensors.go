package packets

import (
	"encoding/binary"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
)

// RPM reports rotation speeds from one source (motor, prop, rotor).
// Each value is a 24-bit signed big-endian integer on the wire;
// negative values mean reversed rotation. A frame fits at most 19
// values.
type RPM struct {
	SourceID uint8
	Values   []int32
}

func (*RPM) Type() crsf.PacketType { return crsf.TypeRPM }
func (*RPM) MinPayload() int       { return 4 }

func (r *RPM) Decode(payload []byte) error {
	if len(payload) < 4 || (len(payload)-1)%3 != 0 {
		return crsf.ErrPayloadLength
	}
	r.SourceID = payload[0]
	n := (len(payload) - 1) / 3
	r.Values = make([]int32, n)
	for i := 0; i < n; i++ {
		v := int32(u24(payload[1+3*i:]))
		// sign extend from 24 bits
		r.Values[i] = v << 8 >> 8
	}
	return nil
}

func (r *RPM) Encode(out []byte) (int, error) {
	n := 1 + 3*len(r.Values)
	if len(out) < n || n > crsf.MaxPayloadLen {
		return 0, crsf.ErrBufferOverflow
	}
	out[0] = r.SourceID
	for i, v := range r.Values {
		putU24(out[1+3*i:], uint32(v))
	}
	return n, nil
}

// Temperature reports readings from one source in deci-degrees
// Celsius. A frame fits at most 20 readings.
type Temperature struct {
	SourceID uint8
	Readings []int16
}

func (*Temperature) Type() crsf.PacketType { return crsf.TypeTemperature }
func (*Temperature) MinPayload() int       { return 3 }

func (r *Temperature) Decode(payload []byte) error {
	if len(payload) < 3 || (len(payload)-1)%2 != 0 {
		return crsf.ErrPayloadLength
	}
	r.SourceID = payload[0]
	n := (len(payload) - 1) / 2
	r.Readings = make([]int16, n)
	for i := 0; i < n; i++ {
		r.Readings[i] = int16(binary.BigEndian.Uint16(payload[1+2*i:]))
	}
	return nil
}

func (r *Temperature) Encode(out []byte) (int, error) {
	n := 1 + 2*len(r.Readings)
	if len(out) < n || n > crsf.MaxPayloadLen {
		return 0, crsf.ErrBufferOverflow
	}
	out[0] = r.SourceID
	for i, v := range r.Readings {
		binary.BigEndian.PutUint16(out[1+2*i:], uint16(v))
	}
	return n, nil
}

// Voltages reports per-cell (or per-rail) voltages in millivolts.
// A frame fits at most 29 values.
type Voltages struct {
	SourceID uint8
	Values   []uint16
}

func (*Voltages) Type() crsf.PacketType { return crsf.TypeVoltages }
func (*Voltages) MinPayload() int       { return 3 }

func (r *Voltages) Decode(payload []byte) error {
	if len(payload) < 3 || (len(payload)-1)%2 != 0 {
		return crsf.ErrPayloadLength
	}
	r.SourceID = payload[0]
	n := (len(payload) - 1) / 2
	r.Values = make([]uint16, n)
	for i := 0; i < n; i++ {
		r.Values[i] = binary.BigEndian.Uint16(payload[1+2*i:])
	}
	return nil
}

func (r *Voltages) Encode(out []byte) (int, error) {
	n := 1 + 2*len(r.Values)
	if len(out) < n || n > crsf.MaxPayloadLen {
		return 0, crsf.ErrBufferOverflow
	}
	out[0] = r.SourceID
	for i, v := range r.Values {
		binary.BigEndian.PutUint16(out[1+2*i:], v)
	}
	return n, nil
}
