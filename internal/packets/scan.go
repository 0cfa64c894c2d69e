package packets

import (
	"github.com/kstaniek/go-crsf-server/internal/crsf"
)

// Scanner is the decoded counterpart of crsf.RawScanner: it walks a
// finite byte buffer and yields one typed record or one error per
// Scan call. Framing errors and payload decode errors both surface
// through Err; the underlying parser resynchronizes on its own, so
// scanning continues either way.
type Scanner struct {
	raw *crsf.RawScanner
	rec Record
	err error
}

// NewScanner returns a scanner over buf.
func NewScanner(buf []byte) *Scanner {
	return &Scanner{raw: crsf.NewRawScanner(buf)}
}

// Scan advances to the next record or error. It reports false when
// the input is exhausted.
func (s *Scanner) Scan() bool {
	s.rec, s.err = nil, nil
	if !s.raw.Scan() {
		return false
	}
	if err := s.raw.Err(); err != nil {
		s.err = err
		return true
	}
	s.rec, s.err = Dispatch(s.raw.Frame())
	return true
}

// Record returns the record produced by the last Scan, or nil if
// that item was an error.
func (s *Scanner) Record() Record { return s.rec }

// Err returns the error produced by the last Scan, or nil.
func (s *Scanner) Err() error { return s.err }
