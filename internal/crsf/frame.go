package crsf

const (
	// MaxFrameLen is the exclusive bound on a whole frame: the length
	// byte plus two must stay below it.
	MaxFrameLen = 64
	// MinFrameLen is the smallest legal frame:
	// address + length + type + crc, with an empty payload.
	MinFrameLen = 4
	// MaxPayloadLen is the most payload a legal frame can carry
	// (largest total is MaxFrameLen-1, minus the four framing bytes).
	MaxPayloadLen = MaxFrameLen - 5
)

// RawFrame is a validated view of one complete wire frame:
//
//	[address][length][type][payload...][crc]
//
// It aliases the buffer it was parsed from and stays valid only until
// that buffer mutates; copy with CopyFrame to keep it longer.
type RawFrame []byte

func (f RawFrame) Addr() Address    { return Address(f[0]) }
func (f RawFrame) Type() PacketType { return PacketType(f[2]) }
func (f RawFrame) CRC() byte        { return f[len(f)-1] }

// Payload returns the type-specific bytes, excluding framing and CRC.
func (f RawFrame) Payload() []byte { return f[3 : len(f)-1] }

// Frame is an owned copy of one complete wire frame, safe to hand off
// across goroutines. Only the first Len bytes of Data are valid.
type Frame struct {
	Len  uint8
	Data [MaxFrameLen]byte
}

func (f *Frame) Bytes() []byte    { return f.Data[:f.Len] }
func (f *Frame) Addr() Address    { return Address(f.Data[0]) }
func (f *Frame) Type() PacketType { return PacketType(f.Data[2]) }
func (f *Frame) Payload() []byte  { return f.Data[3 : f.Len-1] }

// CopyFrame snapshots a parser-owned view into an owned Frame.
func CopyFrame(r RawFrame) Frame {
	var f Frame
	f.Len = uint8(len(r))
	copy(f.Data[:], r)
	return f
}

// BuildFrame assembles a complete frame around an already-encoded
// payload: [dst][len][type][payload][crc]. It returns the total byte
// count, or ErrBufferOverflow without writing anything when out is
// too small or the payload cannot fit a legal frame.
func BuildFrame(out []byte, dst Address, t PacketType, payload []byte) (int, error) {
	if len(payload) > MaxPayloadLen {
		return 0, ErrBufferOverflow
	}
	total := len(payload) + 4
	if len(out) < total {
		return 0, ErrBufferOverflow
	}
	out[0] = byte(dst)
	out[1] = byte(len(payload) + 2)
	out[2] = byte(t)
	copy(out[3:], payload)
	out[3+len(payload)] = Checksum(out[2 : 3+len(payload)])
	return total, nil
}
