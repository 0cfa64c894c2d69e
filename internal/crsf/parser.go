// Package crsf implements the Crossfire serial telemetry wire format:
// a byte-synchronizing frame parser with a fixed working buffer,
// CRC-8/DVB-S2 frame integrity, and frame assembly for the reverse
// direction.
//
// Wire layout, 4 to 63 bytes total, big-endian payload fields:
//
//	[address:1][length:1][type:1][payload:length-2][crc:1]
//
// The CRC covers [type, payload] only. The parser accepts a frame
// start only on a byte from the enumerated address set and recovers
// from any framing error by rescanning one byte later.
package crsf

type parserState uint8

const (
	stateSync parserState = iota
	stateLength
	statePayload
	stateCRC
)

// Parser is the frame state machine. It consumes one byte at a time
// and produces complete, CRC-validated frames backed by its own
// fixed 64-byte buffer. It never allocates per byte and is meant for
// a single owner; it is not safe for concurrent use.
//
// The zero value is ready to use.
type Parser struct {
	buf   [MaxFrameLen]byte
	pos   int
	total int
	state parserState
}

// Reset discards any in-flight frame and returns to sync hunting.
func (p *Parser) Reset() {
	p.state = stateSync
	p.pos = 0
	p.total = 0
}

// PushByte advances the state machine by one byte. It returns a
// non-nil RawFrame exactly when b completes a CRC-valid frame; the
// view aliases the parser's working buffer and is invalidated by the
// next call.
//
// A framing error (bad sync byte, impossible length, CRC mismatch)
// resets the parser first, so the stream stays decodable: the caller
// can keep pushing bytes and the parser re-synchronizes on the next
// valid frame start.
func (p *Parser) PushByte(b byte) (RawFrame, error) {
	switch p.state {
	case stateSync:
		if !ValidAddress(b) {
			return nil, &SyncError{Byte: b}
		}
		p.buf[0] = b
		p.pos = 1
		p.state = stateLength

	case stateLength:
		total := int(b) + 2
		if total < MinFrameLen || total >= MaxFrameLen {
			p.Reset()
			return nil, &LengthError{Byte: b}
		}
		p.buf[1] = b
		p.pos = 2
		p.total = total
		p.state = statePayload

	case statePayload:
		p.buf[p.pos] = b
		p.pos++
		if p.pos == p.total-1 {
			p.state = stateCRC
		}

	case stateCRC:
		calc := Checksum(p.buf[2:p.pos])
		p.buf[p.pos] = b
		n := p.pos + 1
		p.Reset()
		if calc != b {
			return nil, &CRCError{Calculated: calc, Received: b}
		}
		return RawFrame(p.buf[:n]), nil
	}
	return nil, nil
}
