// Package transport defines the capability interfaces the CRSF
// bridge is assembled from, plus the async TX funnel that serializes
// writes toward the UART.
package transport

import (
	"github.com/kstaniek/go-crsf-server/internal/crsf"
	"github.com/kstaniek/go-crsf-server/internal/packets"
	"github.com/kstaniek/go-crsf-server/internal/stream"
)

// FrameSource yields validated CRSF frames from a byte stream.
type FrameSource interface {
	ReadRawFrame() (crsf.RawFrame, error)
	ReadFrame() (crsf.Frame, error)
}

// PacketSource additionally dispatches frames into typed records.
type PacketSource interface {
	ReadPacket() (packets.Record, error)
}

// FrameWriter serializes frames and records onto a byte stream.
type FrameWriter interface {
	WriteFrame(*crsf.Frame) error
	WritePacket(crsf.Address, packets.Record) error
}

// FrameSink is a generic frame transmission target.
type FrameSink interface {
	SendFrame(crsf.Frame) error
}

// Compile-time assertions that the stream adapters satisfy the capabilities.
var (
	_ FrameSource  = (*stream.Reader)(nil)
	_ PacketSource = (*stream.Reader)(nil)
	_ FrameWriter  = (*stream.Writer)(nil)
)
