// Package serialport opens the UART carrying the CRSF link and owns
// the single-writer transmit funnel for it.
package serialport

import (
	"time"

	"github.com/tarm/serial"
)

// Port abstracts tarm/serial for testability.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// Open opens the named device. CRSF runs the UART at 420000 baud
// between transmitter and receiver; telemetry bridges commonly use
// 115200 or 400000, so the rate stays configurable.
func Open(name string, baud int, readTimeout time.Duration) (Port, error) {
	cfg := &serial.Config{Name: name, Baud: baud, ReadTimeout: readTimeout}
	return serial.OpenPort(cfg)
}
