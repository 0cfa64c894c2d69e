package packets

import (
	"encoding/binary"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
)

// Direct-command payloads carry an inner checksum on top of the frame
// CRC, computed with the command polynomial over
// [frame type, dst, src, command id, command payload].
//
// Wire form: [dst][src][command id][sub-command...][inner crc].

// Command id bytes.
const (
	cmdFC          = 0x01
	cmdOSD         = 0x05
	cmdVTX         = 0x08
	cmdCrossfire   = 0x10
	cmdFlowControl = 0x20
	cmdAck         = 0xFF
)

// Sub-command id bytes, grouped per command.
const (
	subFCForceDisarm  = 0x01
	subFCScaleChannel = 0x02

	subOSDSendButtons = 0x01

	subVTXSetFrequency    = 0x02
	subVTXPitModePowerUp  = 0x04
	subVTXPowerUpFromPit  = 0x05
	subVTXSetDynamicPower = 0x06
	subVTXSetPower        = 0x08

	subCFBindMode          = 0x01
	subCFCancelBind        = 0x02
	subCFSetBindID         = 0x03
	subCFModelSelection    = 0x05
	subCFCurrentModel      = 0x06
	subCFReplyCurrentModel = 0x07

	subFlowSubscribe   = 0x01
	subFlowUnsubscribe = 0x02
)

// Command is one direct-command variant: the sub-command id plus its
// arguments, serialized without the [dst][src][command id] prefix or
// the inner checksum.
type Command interface {
	commandID() byte
	encodeCommand(out []byte) (int, error)
}

// FCCommand is a flight-controller command (0x01). ScaleChannel's
// arguments are device-specific and not interpreted here.
type FCCommand struct {
	Sub uint8 // subFCForceDisarm or subFCScaleChannel
}

// ForceDisarm builds the FC force-disarm command.
func ForceDisarm() *FCCommand { return &FCCommand{Sub: subFCForceDisarm} }

func (c *FCCommand) commandID() byte { return cmdFC }

func (c *FCCommand) encodeCommand(out []byte) (int, error) {
	switch c.Sub {
	case subFCForceDisarm, subFCScaleChannel:
	default:
		return 0, crsf.ErrInvalidPayload
	}
	if len(out) < 1 {
		return 0, crsf.ErrBufferOverflow
	}
	out[0] = c.Sub
	return 1, nil
}

// OSDCommand sends button presses to an OSD (0x05).
type OSDCommand struct {
	Buttons uint8 // bitmask: enter/up/down/left/right
}

func (c *OSDCommand) commandID() byte { return cmdOSD }

func (c *OSDCommand) encodeCommand(out []byte) (int, error) {
	if len(out) < 2 {
		return 0, crsf.ErrBufferOverflow
	}
	out[0] = subOSDSendButtons
	out[1] = c.Buttons
	return 2, nil
}

// VTXCommand controls a video transmitter (0x08). Exactly one of the
// variants below applies, selected by Sub.
type VTXCommand struct {
	Sub            uint8
	FrequencyMHz   uint16 // SetFrequency
	PitMode        bool   // EnablePitModeOnPowerUp
	PitModeControl uint8  // 2 bits
	PitModeSwitch  uint8  // 4 bits
	Power          uint8  // SetDynamicPower / SetPower
}

func (c *VTXCommand) commandID() byte { return cmdVTX }

func (c *VTXCommand) encodeCommand(out []byte) (int, error) {
	switch c.Sub {
	case subVTXSetFrequency:
		if len(out) < 3 {
			return 0, crsf.ErrBufferOverflow
		}
		out[0] = c.Sub
		binary.BigEndian.PutUint16(out[1:3], c.FrequencyMHz)
		return 3, nil
	case subVTXPitModePowerUp:
		if len(out) < 2 {
			return 0, crsf.ErrBufferOverflow
		}
		out[0] = c.Sub
		var b byte
		if c.PitMode {
			b = 1
		}
		out[1] = b | c.PitModeControl<<1 | c.PitModeSwitch<<3
		return 2, nil
	case subVTXPowerUpFromPit:
		if len(out) < 1 {
			return 0, crsf.ErrBufferOverflow
		}
		out[0] = c.Sub
		return 1, nil
	case subVTXSetDynamicPower, subVTXSetPower:
		if len(out) < 2 {
			return 0, crsf.ErrBufferOverflow
		}
		out[0] = c.Sub
		out[1] = c.Power
		return 2, nil
	}
	return 0, crsf.ErrInvalidPayload
}

// CrossfireCommand covers bind and model selection (0x10).
type CrossfireCommand struct {
	Sub   uint8
	Model uint8 // ModelSelection / ReplyCurrentModel
}

func (c *CrossfireCommand) commandID() byte { return cmdCrossfire }

func (c *CrossfireCommand) encodeCommand(out []byte) (int, error) {
	switch c.Sub {
	case subCFBindMode, subCFCancelBind, subCFSetBindID, subCFCurrentModel:
		if len(out) < 1 {
			return 0, crsf.ErrBufferOverflow
		}
		out[0] = c.Sub
		return 1, nil
	case subCFModelSelection, subCFReplyCurrentModel:
		if len(out) < 2 {
			return 0, crsf.ErrBufferOverflow
		}
		out[0] = c.Sub
		out[1] = c.Model
		return 2, nil
	}
	return 0, crsf.ErrInvalidPayload
}

// FlowControlCommand subscribes to or unsubscribes from periodic
// frames of one type (0x20).
type FlowControlCommand struct {
	Sub         uint8
	FrameType   crsf.PacketType
	MaxInterval uint16 // ms, Subscribe only
}

func (c *FlowControlCommand) commandID() byte { return cmdFlowControl }

func (c *FlowControlCommand) encodeCommand(out []byte) (int, error) {
	switch c.Sub {
	case subFlowSubscribe:
		if len(out) < 4 {
			return 0, crsf.ErrBufferOverflow
		}
		out[0] = c.Sub
		out[1] = byte(c.FrameType)
		binary.BigEndian.PutUint16(out[2:4], c.MaxInterval)
		return 4, nil
	case subFlowUnsubscribe:
		if len(out) < 2 {
			return 0, crsf.ErrBufferOverflow
		}
		out[0] = c.Sub
		out[1] = byte(c.FrameType)
		return 2, nil
	}
	return 0, crsf.ErrInvalidPayload
}

const maxAckInfoLen = 48

// CommandAck acknowledges a previously received command (0xFF).
// Action 0 rejects, 1 accepts. Information is a short free-form note.
type CommandAck struct {
	CommandID    uint8
	SubCommandID uint8
	Action       uint8
	Information  []byte
}

func (c *CommandAck) commandID() byte { return cmdAck }

func (c *CommandAck) encodeCommand(out []byte) (int, error) {
	if len(c.Information) > maxAckInfoLen {
		return 0, crsf.ErrInvalidPayload
	}
	n := 3 + len(c.Information)
	if len(out) < n {
		return 0, crsf.ErrBufferOverflow
	}
	out[0] = c.CommandID
	out[1] = c.SubCommandID
	out[2] = c.Action
	copy(out[3:], c.Information)
	return n, nil
}

const directCommandMinLen = 4 // dst, src, command id, inner crc

// DirectCommand is the 0x32 extended frame: an addressed command with
// its own checksum inside the already CRC-protected frame.
type DirectCommand struct {
	Dst     crsf.Address
	Src     crsf.Address
	Command Command
}

func (*DirectCommand) Type() crsf.PacketType { return crsf.TypeCommand }
func (*DirectCommand) MinPayload() int       { return directCommandMinLen }

func (r *DirectCommand) Decode(payload []byte) error {
	if len(payload) < directCommandMinLen {
		return crsf.ErrPayloadLength
	}
	body := payload[:len(payload)-1]
	received := payload[len(payload)-1]
	var check [1 + crsf.MaxPayloadLen]byte
	check[0] = byte(crsf.TypeCommand)
	n := copy(check[1:], body)
	if crsf.CommandChecksum(check[:1+n]) != received {
		return crsf.ErrInvalidPayload
	}
	r.Dst = crsf.Address(body[0])
	r.Src = crsf.Address(body[1])
	cmd, err := decodeCommand(body[2], body[3:])
	if err != nil {
		return err
	}
	r.Command = cmd
	return nil
}

func decodeCommand(id byte, data []byte) (Command, error) {
	if len(data) < 1 {
		return nil, crsf.ErrPayloadLength
	}
	switch id {
	case cmdFC:
		switch data[0] {
		case subFCForceDisarm, subFCScaleChannel:
			return &FCCommand{Sub: data[0]}, nil
		}
		return nil, crsf.ErrInvalidPayload
	case cmdOSD:
		if data[0] != subOSDSendButtons || len(data) < 2 {
			return nil, crsf.ErrInvalidPayload
		}
		return &OSDCommand{Buttons: data[1]}, nil
	case cmdVTX:
		return decodeVTXCommand(data)
	case cmdCrossfire:
		return decodeCrossfireCommand(data)
	case cmdFlowControl:
		return decodeFlowControlCommand(data)
	case cmdAck:
		if len(data) < 3 {
			return nil, crsf.ErrPayloadLength
		}
		ack := &CommandAck{
			CommandID:    data[0],
			SubCommandID: data[1],
			Action:       data[2],
		}
		ack.Information = append(ack.Information, data[3:]...)
		return ack, nil
	}
	return nil, crsf.ErrInvalidPayload
}

func decodeVTXCommand(data []byte) (Command, error) {
	sub, args := data[0], data[1:]
	c := &VTXCommand{Sub: sub}
	switch sub {
	case subVTXSetFrequency:
		if len(args) < 2 {
			return nil, crsf.ErrPayloadLength
		}
		c.FrequencyMHz = binary.BigEndian.Uint16(args[0:2])
	case subVTXPitModePowerUp:
		if len(args) < 1 {
			return nil, crsf.ErrPayloadLength
		}
		c.PitMode = args[0]&1 != 0
		c.PitModeControl = args[0] >> 1 & 0b11
		c.PitModeSwitch = args[0] >> 3 & 0b1111
	case subVTXPowerUpFromPit:
	case subVTXSetDynamicPower, subVTXSetPower:
		if len(args) < 1 {
			return nil, crsf.ErrPayloadLength
		}
		c.Power = args[0]
	default:
		return nil, crsf.ErrInvalidPayload
	}
	return c, nil
}

func decodeCrossfireCommand(data []byte) (Command, error) {
	sub, args := data[0], data[1:]
	c := &CrossfireCommand{Sub: sub}
	switch sub {
	case subCFBindMode, subCFCancelBind, subCFSetBindID, subCFCurrentModel:
	case subCFModelSelection, subCFReplyCurrentModel:
		if len(args) < 1 {
			return nil, crsf.ErrPayloadLength
		}
		c.Model = args[0]
	default:
		return nil, crsf.ErrInvalidPayload
	}
	return c, nil
}

func decodeFlowControlCommand(data []byte) (Command, error) {
	sub, args := data[0], data[1:]
	c := &FlowControlCommand{Sub: sub}
	switch sub {
	case subFlowSubscribe:
		if len(args) < 3 {
			return nil, crsf.ErrPayloadLength
		}
		c.FrameType = crsf.PacketType(args[0])
		c.MaxInterval = binary.BigEndian.Uint16(args[1:3])
	case subFlowUnsubscribe:
		if len(args) < 1 {
			return nil, crsf.ErrPayloadLength
		}
		c.FrameType = crsf.PacketType(args[0])
	default:
		return nil, crsf.ErrInvalidPayload
	}
	return c, nil
}

func (r *DirectCommand) Encode(out []byte) (int, error) {
	if r.Command == nil {
		return 0, crsf.ErrInvalidPayload
	}
	// Assemble [type][dst][src][id][sub-payload] in a scratch so the
	// inner checksum can cover the type byte without it appearing in
	// the frame payload.
	var scratch [1 + crsf.MaxPayloadLen]byte
	scratch[0] = byte(crsf.TypeCommand)
	scratch[1] = byte(r.Dst)
	scratch[2] = byte(r.Src)
	scratch[3] = r.Command.commandID()
	n, err := r.Command.encodeCommand(scratch[4:])
	if err != nil {
		return 0, err
	}
	total := 3 + n + 1 // dst, src, id, sub-payload, inner crc
	if len(out) < total || total > crsf.MaxPayloadLen {
		return 0, crsf.ErrBufferOverflow
	}
	copy(out, scratch[1:4+n])
	out[total-1] = crsf.CommandChecksum(scratch[:4+n])
	return total, nil
}
