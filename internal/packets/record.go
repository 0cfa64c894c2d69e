// Package packets contains the typed payload codecs for the CRSF wire
// format and the tag-keyed dispatch between them and raw frames.
//
// Each message type implements Record: a wire tag, a minimum payload
// size, and the two payload transforms. Multi-byte fields are
// big-endian. Extended records (tag 0x28 and up) carry the
// [destination, source] sub-header as their first two payload bytes.
package packets

import (
	"github.com/kstaniek/go-crsf-server/internal/crsf"
)

// Record is one typed CRSF payload. Implementations are structs with
// pointer-receiver decoding, in the manner of encoding.BinaryUnmarshaler.
type Record interface {
	// Type is the wire tag this record travels under.
	Type() crsf.PacketType
	// MinPayload is the smallest payload Decode accepts. Fixed-size
	// records require exactly this many bytes.
	MinPayload() int
	// Decode fills the record from a frame payload. It returns
	// crsf.ErrPayloadLength for impossible sizes and
	// crsf.ErrInvalidPayload for contents it rejects.
	Decode(payload []byte) error
	// Encode writes the record's payload form into out and returns
	// the byte count. It returns crsf.ErrBufferOverflow without
	// writing anything when out is too small.
	Encode(out []byte) (int, error)
}

// EncodeFrame assembles a complete wire frame carrying rec, addressed
// to dst: [dst][len][type][payload][crc]. It returns the total number
// of bytes written, or crsf.ErrBufferOverflow when either the payload
// cannot fit a legal frame or out cannot hold it. No partial frame is
// ever written.
func EncodeFrame(out []byte, dst crsf.Address, rec Record) (int, error) {
	var scratch [crsf.MaxPayloadLen]byte
	n, err := rec.Encode(scratch[:])
	if err != nil {
		return 0, err
	}
	return crsf.BuildFrame(out, dst, rec.Type(), scratch[:n])
}

// NotImplemented stands in for frames whose type has no registered
// codec, keeping the tag and observed payload size for diagnostics.
type NotImplemented struct {
	Tag        crsf.PacketType
	PayloadLen int
}

func (r *NotImplemented) Type() crsf.PacketType { return r.Tag }
func (r *NotImplemented) MinPayload() int       { return 0 }

func (r *NotImplemented) Decode(payload []byte) error {
	r.PayloadLen = len(payload)
	return nil
}

// Encode always fails: the payload bytes were not retained.
func (r *NotImplemented) Encode(out []byte) (int, error) {
	return 0, crsf.ErrInvalidPayload
}

// putU24 writes the low 24 bits of v big-endian.
func putU24(out []byte, v uint32) {
	out[0] = byte(v >> 16)
	out[1] = byte(v >> 8)
	out[2] = byte(v)
}

func u24(p []byte) uint32 {
	return uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
}
