package crsf

// RawScanner walks a finite byte buffer through a Parser, yielding
// one complete frame or one framing error per Scan call. The parser
// resets itself on every error, so scanning simply continues with the
// following byte.
//
// Usage mirrors bufio.Scanner except that Err is per-item:
//
//	sc := crsf.NewRawScanner(buf)
//	for sc.Scan() {
//		if sc.Err() != nil {
//			continue // resynchronizing
//		}
//		handle(sc.Frame())
//	}
//
// The sequence is finite and non-restartable; it ends when the input
// is exhausted, whether or not a frame was in flight.
type RawScanner struct {
	parser Parser
	buf    []byte
	off    int
	frame  RawFrame
	err    error
}

// NewRawScanner returns a scanner over buf. The returned frames alias
// the scanner's internal parser buffer and are valid until the next
// Scan call.
func NewRawScanner(buf []byte) *RawScanner {
	return &RawScanner{buf: buf}
}

// Scan advances to the next frame or framing error. It reports false
// when the input is exhausted.
func (s *RawScanner) Scan() bool {
	s.frame, s.err = nil, nil
	for s.off < len(s.buf) {
		b := s.buf[s.off]
		s.off++
		frame, err := s.parser.PushByte(b)
		if err != nil {
			s.err = err
			return true
		}
		if frame != nil {
			s.frame = frame
			return true
		}
	}
	return false
}

// Frame returns the frame produced by the last Scan, or nil if that
// item was an error.
func (s *RawScanner) Frame() RawFrame { return s.frame }

// Err returns the framing error produced by the last Scan, or nil.
func (s *RawScanner) Err() error { return s.err }
