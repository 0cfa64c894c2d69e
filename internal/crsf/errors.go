package crsf

import (
	"errors"
	"fmt"
)

// Payload and stream sentinels. Codecs wrap these so callers can
// classify via errors.Is.
var (
	// ErrPayloadLength reports a payload shorter than the codec's
	// minimum (or different from its exact size for fixed records).
	ErrPayloadLength = errors.New("crsf: invalid payload length")
	// ErrInvalidPayload reports payload contents a codec rejects,
	// such as a bad inner command checksum.
	ErrInvalidPayload = errors.New("crsf: invalid payload")
	// ErrBufferOverflow reports an output buffer too small for the
	// encoded form. Nothing has been written when it is returned.
	ErrBufferOverflow = errors.New("crsf: output buffer too small")
	// ErrUnexpectedEOF reports a byte source that returned zero bytes
	// while a frame was still in flight.
	ErrUnexpectedEOF = errors.New("crsf: unexpected eof mid-frame")
)

// SyncError reports a byte outside the address set while the parser
// was hunting for a frame start. The parser state is untouched; the
// next byte gets a fresh attempt.
type SyncError struct {
	Byte byte
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("crsf: invalid sync byte 0x%02X", e.Byte)
}

// LengthError reports a length byte implying a frame outside [4, 64)
// total bytes. The parser has reset to sync hunting.
type LengthError struct {
	Byte byte
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("crsf: invalid packet length 0x%02X", e.Byte)
}

// CRCError reports a completed frame whose trailing byte disagrees
// with the digest over [type, payload]. The parser has reset.
type CRCError struct {
	Calculated byte
	Received   byte
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("crsf: crc mismatch: calculated 0x%02X, received 0x%02X", e.Calculated, e.Received)
}

// IsFramingError reports whether err is one of the recoverable
// parser errors (bad sync, bad length, bad CRC). After any of these
// the parser is already resynchronizable on the next byte.
func IsFramingError(err error) bool {
	var se *SyncError
	var le *LengthError
	var ce *CRCError
	return errors.As(err, &se) || errors.As(err, &le) || errors.As(err, &ce)
}
