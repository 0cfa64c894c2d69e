package crsf

// PacketType is the wire tag identifying a frame's payload kind.
type PacketType uint8

const (
	TypeGPS                    PacketType = 0x02
	TypeGPSTime                PacketType = 0x03
	TypeGPSExtended            PacketType = 0x06
	TypeVario                  PacketType = 0x07
	TypeBattery                PacketType = 0x08
	TypeBaroAltitude           PacketType = 0x09
	TypeAirspeed               PacketType = 0x0A
	TypeHeartbeat              PacketType = 0x0B
	TypeRPM                    PacketType = 0x0C
	TypeTemperature            PacketType = 0x0D
	TypeVoltages               PacketType = 0x0E
	TypeVTXTelemetry           PacketType = 0x10
	TypeLinkStatistics         PacketType = 0x14
	TypeRCChannelsPacked       PacketType = 0x16
	TypeSubsetRCChannelsPacked PacketType = 0x17
	TypeLinkRxID               PacketType = 0x1C
	TypeLinkTxID               PacketType = 0x1D
	TypeAttitude               PacketType = 0x1E
	TypeFlightMode             PacketType = 0x21
	TypeDevicePing             PacketType = 0x28
	TypeDeviceInfo             PacketType = 0x29
	TypeParameterSettingsEntry PacketType = 0x2B
	TypeParameterRead          PacketType = 0x2C
	TypeParameterWrite         PacketType = 0x2D
	TypeELRSStatus             PacketType = 0x2E
	TypeCommand                PacketType = 0x32
	TypeRadioID                PacketType = 0x3A
	TypeKISSRequest            PacketType = 0x78
	TypeKISSResponse           PacketType = 0x79
	TypeMSPRequest             PacketType = 0x7A
	TypeMSPResponse            PacketType = 0x7B
	TypeMSPWrite               PacketType = 0x7C
	TypeArdupilotResponse      PacketType = 0x80
)

// Extended reports whether frames of this type carry a
// [destination, source] sub-header at the start of the payload.
// Command and discovery style messages (0x28 and up) do.
func (t PacketType) Extended() bool {
	return t >= TypeDevicePing
}

func (t PacketType) String() string {
	switch t {
	case TypeGPS:
		return "gps"
	case TypeGPSTime:
		return "gps-time"
	case TypeGPSExtended:
		return "gps-extended"
	case TypeVario:
		return "vario"
	case TypeBattery:
		return "battery"
	case TypeBaroAltitude:
		return "baro-altitude"
	case TypeAirspeed:
		return "airspeed"
	case TypeHeartbeat:
		return "heartbeat"
	case TypeRPM:
		return "rpm"
	case TypeTemperature:
		return "temperature"
	case TypeVoltages:
		return "voltages"
	case TypeVTXTelemetry:
		return "vtx-telemetry"
	case TypeLinkStatistics:
		return "link-statistics"
	case TypeRCChannelsPacked:
		return "rc-channels"
	case TypeSubsetRCChannelsPacked:
		return "subset-rc-channels"
	case TypeLinkRxID:
		return "link-rx-id"
	case TypeLinkTxID:
		return "link-tx-id"
	case TypeAttitude:
		return "attitude"
	case TypeFlightMode:
		return "flight-mode"
	case TypeDevicePing:
		return "device-ping"
	case TypeDeviceInfo:
		return "device-info"
	case TypeParameterSettingsEntry:
		return "parameter-settings-entry"
	case TypeParameterRead:
		return "parameter-read"
	case TypeParameterWrite:
		return "parameter-write"
	case TypeELRSStatus:
		return "elrs-status"
	case TypeCommand:
		return "command"
	case TypeRadioID:
		return "radio-id"
	case TypeKISSRequest:
		return "kiss-request"
	case TypeKISSResponse:
		return "kiss-response"
	case TypeMSPRequest:
		return "msp-request"
	case TypeMSPResponse:
		return "msp-response"
	case TypeMSPWrite:
		return "msp-write"
	case TypeArdupilotResponse:
		return "ardupilot-response"
	}
	return "unknown"
}
