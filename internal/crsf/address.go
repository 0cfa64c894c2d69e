package crsf

// Address identifies a CRSF bus endpoint. The first byte of every
// frame is an address, doubling as the frame-start marker.
type Address uint8

const (
	AddrBroadcast        Address = 0x00
	AddrCloud            Address = 0x0E
	AddrUSB              Address = 0x10
	AddrBluetooth        Address = 0x12
	AddrWiFiReceiver     Address = 0x13
	AddrVideoReceiver    Address = 0x14
	AddrTBSCorePNPPro    Address = 0x80
	AddrESC1             Address = 0x90
	AddrESC2             Address = 0x91
	AddrESC3             Address = 0x92
	AddrESC4             Address = 0x93
	AddrESC5             Address = 0x94
	AddrESC6             Address = 0x95
	AddrESC7             Address = 0x96
	AddrESC8             Address = 0x97
	AddrCurrentSensor    Address = 0xC0
	AddrGPS              Address = 0xC2
	AddrTBSBlackbox      Address = 0xC4
	AddrFlightController Address = 0xC8
	AddrRaceTag          Address = 0xCC
	AddrVTX              Address = 0xCE
	AddrHandset          Address = 0xEA
	AddrReceiver         Address = 0xEC
	AddrTransmitter      Address = 0xEE
)

// ValidAddress reports whether b belongs to the enumerated address
// set. The parser accepts only these as sync bytes, which keeps false
// frame starts rare while rescanning corrupted input.
func ValidAddress(b byte) bool {
	switch Address(b) {
	case AddrBroadcast, AddrCloud, AddrUSB, AddrBluetooth,
		AddrWiFiReceiver, AddrVideoReceiver, AddrTBSCorePNPPro,
		AddrESC1, AddrESC2, AddrESC3, AddrESC4,
		AddrESC5, AddrESC6, AddrESC7, AddrESC8,
		AddrCurrentSensor, AddrGPS, AddrTBSBlackbox,
		AddrFlightController, AddrRaceTag, AddrVTX,
		AddrHandset, AddrReceiver, AddrTransmitter:
		return true
	}
	return false
}

func (a Address) String() string {
	switch a {
	case AddrBroadcast:
		return "broadcast"
	case AddrCloud:
		return "cloud"
	case AddrUSB:
		return "usb"
	case AddrBluetooth:
		return "bluetooth"
	case AddrWiFiReceiver:
		return "wifi-receiver"
	case AddrVideoReceiver:
		return "video-receiver"
	case AddrTBSCorePNPPro:
		return "core-pnp-pro"
	case AddrESC1, AddrESC2, AddrESC3, AddrESC4,
		AddrESC5, AddrESC6, AddrESC7, AddrESC8:
		return "esc"
	case AddrCurrentSensor:
		return "current-sensor"
	case AddrGPS:
		return "gps"
	case AddrTBSBlackbox:
		return "blackbox"
	case AddrFlightController:
		return "flight-controller"
	case AddrRaceTag:
		return "race-tag"
	case AddrVTX:
		return "vtx"
	case AddrHandset:
		return "handset"
	case AddrReceiver:
		return "receiver"
	case AddrTransmitter:
		return "transmitter"
	}
	return "unknown"
}
