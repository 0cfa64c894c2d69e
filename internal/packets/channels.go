package packets

import (
	"github.com/kstaniek/go-crsf-server/internal/crsf"
)

// ChannelCenter is the raw channel value a centered stick produces.
const ChannelCenter = 992

const (
	rcChannelsLen = 16 * 11 / 8 // 16 channels, 11 bits each
	mask11bit     = 0x07FF
)

// RCChannels carries 16 channel values, each 11 bits (0..2047),
// packed LSB-first with no padding into 22 bytes. Channel 0 occupies
// bits 0..10 of bytes 0..1, channel 1 continues across the boundary,
// and the pattern repeats every eight channels.
//
// When the link failsafes this frame stops being sent; receivers are
// expected to wait about a second before starting their own failsafe.
type RCChannels [16]uint16

func (*RCChannels) Type() crsf.PacketType { return crsf.TypeRCChannelsPacked }
func (*RCChannels) MinPayload() int       { return rcChannelsLen }

func (r *RCChannels) Decode(payload []byte) error {
	if len(payload) != rcChannelsLen {
		return crsf.ErrPayloadLength
	}
	var d [rcChannelsLen]uint16
	for i, b := range payload {
		d[i] = uint16(b)
	}
	r[0] = (d[0] | d[1]<<8) & mask11bit
	r[1] = (d[1]>>3 | d[2]<<5) & mask11bit
	r[2] = (d[2]>>6 | d[3]<<2 | d[4]<<10) & mask11bit
	r[3] = (d[4]>>1 | d[5]<<7) & mask11bit
	r[4] = (d[5]>>4 | d[6]<<4) & mask11bit
	r[5] = (d[6]>>7 | d[7]<<1 | d[8]<<9) & mask11bit
	r[6] = (d[8]>>2 | d[9]<<6) & mask11bit
	r[7] = (d[9]>>5 | d[10]<<3) & mask11bit
	r[8] = (d[11] | d[12]<<8) & mask11bit
	r[9] = (d[12]>>3 | d[13]<<5) & mask11bit
	r[10] = (d[13]>>6 | d[14]<<2 | d[15]<<10) & mask11bit
	r[11] = (d[15]>>1 | d[16]<<7) & mask11bit
	r[12] = (d[16]>>4 | d[17]<<4) & mask11bit
	r[13] = (d[17]>>7 | d[18]<<1 | d[19]<<9) & mask11bit
	r[14] = (d[19]>>2 | d[20]<<6) & mask11bit
	r[15] = (d[20]>>5 | d[21]<<3) & mask11bit
	return nil
}

func (r *RCChannels) Encode(out []byte) (int, error) {
	if len(out) < rcChannelsLen {
		return 0, crsf.ErrBufferOverflow
	}
	// Mask up front: a value above 2047 must not bleed into the
	// neighboring channel's bits.
	var c [16]uint16
	for i, v := range r {
		c[i] = v & mask11bit
	}
	out[0] = byte(c[0])
	out[1] = byte(c[0]>>8 | c[1]<<3)
	out[2] = byte(c[1]>>5 | c[2]<<6)
	out[3] = byte(c[2] >> 2)
	out[4] = byte(c[2]>>10 | c[3]<<1)
	out[5] = byte(c[3]>>7 | c[4]<<4)
	out[6] = byte(c[4]>>4 | c[5]<<7)
	out[7] = byte(c[5] >> 1)
	out[8] = byte(c[5]>>9 | c[6]<<2)
	out[9] = byte(c[6]>>6 | c[7]<<5)
	out[10] = byte(c[7] >> 3)
	out[11] = byte(c[8])
	out[12] = byte(c[8]>>8 | c[9]<<3)
	out[13] = byte(c[9]>>5 | c[10]<<6)
	out[14] = byte(c[10] >> 2)
	out[15] = byte(c[10]>>10 | c[11]<<1)
	out[16] = byte(c[11]>>7 | c[12]<<4)
	out[17] = byte(c[12]>>4 | c[13]<<7)
	out[18] = byte(c[13] >> 1)
	out[19] = byte(c[13]>>9 | c[14]<<2)
	out[20] = byte(c[14]>>6 | c[15]<<5)
	out[21] = byte(c[15] >> 3)
	return rcChannelsLen, nil
}

// Microseconds converts a raw channel value to the conventional
// 1500µs-centered pulse width.
func Microseconds(raw uint16) int {
	return (int(raw)-ChannelCenter)*5/8 + 1500
}
