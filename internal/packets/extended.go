package packets

import (
	"encoding/binary"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
)

// Extended frames (tag 0x28 and up) start with a two-byte
// [destination, source] sub-header before their fields.

const extHeaderLen = 2

const devicePingLen = 2

// DevicePing asks every device in the destination scope to answer
// with DeviceInfo. Broadcast destination discovers the whole bus.
type DevicePing struct {
	Dst crsf.Address
	Src crsf.Address
}

func (*DevicePing) Type() crsf.PacketType { return crsf.TypeDevicePing }
func (*DevicePing) MinPayload() int       { return devicePingLen }

func (r *DevicePing) Decode(payload []byte) error {
	if len(payload) < devicePingLen {
		return crsf.ErrPayloadLength
	}
	r.Dst = crsf.Address(payload[0])
	r.Src = crsf.Address(payload[1])
	return nil
}

func (r *DevicePing) Encode(out []byte) (int, error) {
	if len(out) < devicePingLen {
		return 0, crsf.ErrBufferOverflow
	}
	out[0] = byte(r.Dst)
	out[1] = byte(r.Src)
	return devicePingLen, nil
}

const (
	maxDeviceNameLen   = 43
	deviceInfoFixedLen = 3*4 + 2 // serial, hardware, firmware + counts
	deviceInfoMinLen   = extHeaderLen + 1 + deviceInfoFixedLen
)

// DeviceInfo is the discovery answer: a NUL-terminated device name
// followed by serial/hardware/firmware identifiers and the device's
// parameter table shape.
type DeviceInfo struct {
	Dst              crsf.Address
	Src              crsf.Address
	Name             string // at most 43 bytes
	SerialNumber     uint32
	HardwareID       uint32
	FirmwareID       uint32
	ParametersTotal  uint8
	ParameterVersion uint8
}

func (*DeviceInfo) Type() crsf.PacketType { return crsf.TypeDeviceInfo }
func (*DeviceInfo) MinPayload() int       { return deviceInfoMinLen }

func (r *DeviceInfo) Decode(payload []byte) error {
	if len(payload) < deviceInfoMinLen {
		return crsf.ErrPayloadLength
	}
	r.Dst = crsf.Address(payload[0])
	r.Src = crsf.Address(payload[1])
	rest := payload[extHeaderLen:]
	nul := -1
	for i, b := range rest {
		if b == 0 {
			nul = i
			break
		}
	}
	if nul < 0 || nul > maxDeviceNameLen {
		return crsf.ErrInvalidPayload
	}
	if len(rest) < nul+1+deviceInfoFixedLen {
		return crsf.ErrPayloadLength
	}
	r.Name = string(rest[:nul])
	fixed := rest[nul+1:]
	r.SerialNumber = binary.BigEndian.Uint32(fixed[0:4])
	r.HardwareID = binary.BigEndian.Uint32(fixed[4:8])
	r.FirmwareID = binary.BigEndian.Uint32(fixed[8:12])
	r.ParametersTotal = fixed[12]
	r.ParameterVersion = fixed[13]
	return nil
}

func (r *DeviceInfo) Encode(out []byte) (int, error) {
	if len(r.Name) > maxDeviceNameLen {
		return 0, crsf.ErrInvalidPayload
	}
	n := extHeaderLen + len(r.Name) + 1 + deviceInfoFixedLen
	if len(out) < n {
		return 0, crsf.ErrBufferOverflow
	}
	out[0] = byte(r.Dst)
	out[1] = byte(r.Src)
	off := extHeaderLen
	copy(out[off:], r.Name)
	off += len(r.Name)
	out[off] = 0
	off++
	binary.BigEndian.PutUint32(out[off:], r.SerialNumber)
	binary.BigEndian.PutUint32(out[off+4:], r.HardwareID)
	binary.BigEndian.PutUint32(out[off+8:], r.FirmwareID)
	out[off+12] = r.ParametersTotal
	out[off+13] = r.ParameterVersion
	return n, nil
}

const parameterReadLen = 4

// ParameterRead requests one chunk of a device parameter.
type ParameterRead struct {
	Dst    crsf.Address
	Src    crsf.Address
	Number uint8
	Chunk  uint8
}

func (*ParameterRead) Type() crsf.PacketType { return crsf.TypeParameterRead }
func (*ParameterRead) MinPayload() int       { return parameterReadLen }

func (r *ParameterRead) Decode(payload []byte) error {
	if len(payload) != parameterReadLen {
		return crsf.ErrPayloadLength
	}
	r.Dst = crsf.Address(payload[0])
	r.Src = crsf.Address(payload[1])
	r.Number = payload[2]
	r.Chunk = payload[3]
	return nil
}

func (r *ParameterRead) Encode(out []byte) (int, error) {
	if len(out) < parameterReadLen {
		return 0, crsf.ErrBufferOverflow
	}
	out[0] = byte(r.Dst)
	out[1] = byte(r.Src)
	out[2] = r.Number
	out[3] = r.Chunk
	return parameterReadLen, nil
}

const parameterWriteMinLen = 3

// ParameterWrite sets a device parameter. Data is the parameter's
// type-specific value bytes, left uninterpreted here.
type ParameterWrite struct {
	Dst    crsf.Address
	Src    crsf.Address
	Number uint8
	Data   []byte
}

func (*ParameterWrite) Type() crsf.PacketType { return crsf.TypeParameterWrite }
func (*ParameterWrite) MinPayload() int       { return parameterWriteMinLen }

func (r *ParameterWrite) Decode(payload []byte) error {
	if len(payload) < parameterWriteMinLen {
		return crsf.ErrPayloadLength
	}
	r.Dst = crsf.Address(payload[0])
	r.Src = crsf.Address(payload[1])
	r.Number = payload[2]
	r.Data = append(r.Data[:0], payload[3:]...)
	return nil
}

func (r *ParameterWrite) Encode(out []byte) (int, error) {
	n := parameterWriteMinLen + len(r.Data)
	if len(out) < n || n > crsf.MaxPayloadLen {
		return 0, crsf.ErrBufferOverflow
	}
	out[0] = byte(r.Dst)
	out[1] = byte(r.Src)
	out[2] = r.Number
	copy(out[3:], r.Data)
	return n, nil
}

const (
	radioSubtypeTiming = 0x10
	radioIDLen         = extHeaderLen + 1 + 8
)

// RadioID is the 0x3A radio frame. The only specified subtype is the
// timing correction the transmitter uses to phase-lock its RC channel
// output to the receiver's RF schedule.
type RadioID struct {
	Dst            crsf.Address
	Src            crsf.Address
	UpdateInterval uint32 // tenths of microseconds
	Offset         int32  // tenths of microseconds
}

func (*RadioID) Type() crsf.PacketType { return crsf.TypeRadioID }
func (*RadioID) MinPayload() int       { return radioIDLen }

func (r *RadioID) Decode(payload []byte) error {
	if len(payload) < 3 {
		return crsf.ErrPayloadLength
	}
	if payload[2] != radioSubtypeTiming {
		return crsf.ErrInvalidPayload
	}
	if len(payload) < radioIDLen {
		return crsf.ErrPayloadLength
	}
	r.Dst = crsf.Address(payload[0])
	r.Src = crsf.Address(payload[1])
	r.UpdateInterval = binary.BigEndian.Uint32(payload[3:7])
	r.Offset = int32(binary.BigEndian.Uint32(payload[7:11]))
	return nil
}

func (r *RadioID) Encode(out []byte) (int, error) {
	if len(out) < radioIDLen {
		return 0, crsf.ErrBufferOverflow
	}
	out[0] = byte(r.Dst)
	out[1] = byte(r.Src)
	out[2] = radioSubtypeTiming
	binary.BigEndian.PutUint32(out[3:7], r.UpdateInterval)
	binary.BigEndian.PutUint32(out[7:11], uint32(r.Offset))
	return radioIDLen, nil
}
