package packets

import (
	"encoding/binary"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
)

const gpsLen = 16

// GPS is the position/velocity telemetry frame. Byte 14 of the
// payload is reserved on the wire and always written as zero.
type GPS struct {
	Latitude    int32  // degrees * 1e7
	Longitude   int32  // degrees * 1e7
	GroundSpeed uint16 // km/h * 100
	Heading     uint16 // degrees * 100
	Altitude    uint16 // meters, +1000m offset
	Satellites  uint8
}

func (*GPS) Type() crsf.PacketType { return crsf.TypeGPS }
func (*GPS) MinPayload() int       { return gpsLen }

func (r *GPS) Decode(payload []byte) error {
	if len(payload) != gpsLen {
		return crsf.ErrPayloadLength
	}
	r.Latitude = int32(binary.BigEndian.Uint32(payload[0:4]))
	r.Longitude = int32(binary.BigEndian.Uint32(payload[4:8]))
	r.GroundSpeed = binary.BigEndian.Uint16(payload[8:10])
	r.Heading = binary.BigEndian.Uint16(payload[10:12])
	r.Altitude = binary.BigEndian.Uint16(payload[12:14])
	r.Satellites = payload[15]
	return nil
}

func (r *GPS) Encode(out []byte) (int, error) {
	if len(out) < gpsLen {
		return 0, crsf.ErrBufferOverflow
	}
	binary.BigEndian.PutUint32(out[0:4], uint32(r.Latitude))
	binary.BigEndian.PutUint32(out[4:8], uint32(r.Longitude))
	binary.BigEndian.PutUint16(out[8:10], r.GroundSpeed)
	binary.BigEndian.PutUint16(out[10:12], r.Heading)
	binary.BigEndian.PutUint16(out[12:14], r.Altitude)
	out[14] = 0
	out[15] = r.Satellites
	return gpsLen, nil
}

// AltitudeM returns the altitude in meters above sea level.
func (r *GPS) AltitudeM() int { return int(r.Altitude) - 1000 }

const gpsTimeLen = 9

// GPSTime synchronizes against the GPS time pulse; max offset +/-10ms.
type GPSTime struct {
	Year        int16
	Month       uint8
	Day         uint8
	Hour        uint8
	Minute      uint8
	Second      uint8
	Millisecond uint16
}

func (*GPSTime) Type() crsf.PacketType { return crsf.TypeGPSTime }
func (*GPSTime) MinPayload() int       { return gpsTimeLen }

func (r *GPSTime) Decode(payload []byte) error {
	if len(payload) != gpsTimeLen {
		return crsf.ErrPayloadLength
	}
	r.Year = int16(binary.BigEndian.Uint16(payload[0:2]))
	r.Month = payload[2]
	r.Day = payload[3]
	r.Hour = payload[4]
	r.Minute = payload[5]
	r.Second = payload[6]
	r.Millisecond = binary.BigEndian.Uint16(payload[7:9])
	return nil
}

func (r *GPSTime) Encode(out []byte) (int, error) {
	if len(out) < gpsTimeLen {
		return 0, crsf.ErrBufferOverflow
	}
	binary.BigEndian.PutUint16(out[0:2], uint16(r.Year))
	out[2] = r.Month
	out[3] = r.Day
	out[4] = r.Hour
	out[5] = r.Minute
	out[6] = r.Second
	binary.BigEndian.PutUint16(out[7:9], r.Millisecond)
	return gpsTimeLen, nil
}

const gpsExtendedLen = 20

// GPSExtended carries fix quality and NED velocity/accuracy data.
type GPSExtended struct {
	FixType      uint8
	NSpeed       int16 // northward, cm/s
	ESpeed       int16 // eastward, cm/s
	VSpeed       int16 // vertical (up positive), cm/s
	HSpeedAcc    int16 // cm/s
	TrackAcc     int16 // 0.1 degree
	AltEllipsoid int16 // meters above ellipsoid, not MSL
	HAcc         int16 // cm
	VAcc         int16 // cm
	Reserved     uint8
	HDOP         uint8 // 0.1 units
	VDOP         uint8 // 0.1 units
}

func (*GPSExtended) Type() crsf.PacketType { return crsf.TypeGPSExtended }
func (*GPSExtended) MinPayload() int       { return gpsExtendedLen }

func (r *GPSExtended) Decode(payload []byte) error {
	if len(payload) != gpsExtendedLen {
		return crsf.ErrPayloadLength
	}
	r.FixType = payload[0]
	r.NSpeed = int16(binary.BigEndian.Uint16(payload[1:3]))
	r.ESpeed = int16(binary.BigEndian.Uint16(payload[3:5]))
	r.VSpeed = int16(binary.BigEndian.Uint16(payload[5:7]))
	r.HSpeedAcc = int16(binary.BigEndian.Uint16(payload[7:9]))
	r.TrackAcc = int16(binary.BigEndian.Uint16(payload[9:11]))
	r.AltEllipsoid = int16(binary.BigEndian.Uint16(payload[11:13]))
	r.HAcc = int16(binary.BigEndian.Uint16(payload[13:15]))
	r.VAcc = int16(binary.BigEndian.Uint16(payload[15:17]))
	r.Reserved = payload[17]
	r.HDOP = payload[18]
	r.VDOP = payload[19]
	return nil
}

func (r *GPSExtended) Encode(out []byte) (int, error) {
	if len(out) < gpsExtendedLen {
		return 0, crsf.ErrBufferOverflow
	}
	out[0] = r.FixType
	binary.BigEndian.PutUint16(out[1:3], uint16(r.NSpeed))
	binary.BigEndian.PutUint16(out[3:5], uint16(r.ESpeed))
	binary.BigEndian.PutUint16(out[5:7], uint16(r.VSpeed))
	binary.BigEndian.PutUint16(out[7:9], uint16(r.HSpeedAcc))
	binary.BigEndian.PutUint16(out[9:11], uint16(r.TrackAcc))
	binary.BigEndian.PutUint16(out[11:13], uint16(r.AltEllipsoid))
	binary.BigEndian.PutUint16(out[13:15], uint16(r.HAcc))
	binary.BigEndian.PutUint16(out[15:17], uint16(r.VAcc))
	out[17] = r.Reserved
	out[18] = r.HDOP
	out[19] = r.VDOP
	return gpsExtendedLen, nil
}

const varioLen = 2

// Vario is the variometer vertical speed frame, cm/s, uncompressed
// (unlike the baro-altitude frame's logarithmic field).
type Vario struct {
	VSpeed int16
}

func (*Vario) Type() crsf.PacketType { return crsf.TypeVario }
func (*Vario) MinPayload() int       { return varioLen }

func (r *Vario) Decode(payload []byte) error {
	if len(payload) != varioLen {
		return crsf.ErrPayloadLength
	}
	r.VSpeed = int16(binary.BigEndian.Uint16(payload))
	return nil
}

func (r *Vario) Encode(out []byte) (int, error) {
	if len(out) < varioLen {
		return 0, crsf.ErrBufferOverflow
	}
	binary.BigEndian.PutUint16(out, uint16(r.VSpeed))
	return varioLen, nil
}

const batteryLen = 8

// Battery is the battery sensor frame.
type Battery struct {
	Voltage      int16  // dV (volts * 10)
	Current      int16  // dA (amps * 10)
	CapacityUsed uint32 // mAh, 24-bit on the wire
	Remaining    uint8  // percent
}

func (*Battery) Type() crsf.PacketType { return crsf.TypeBattery }
func (*Battery) MinPayload() int       { return batteryLen }

func (r *Battery) Decode(payload []byte) error {
	if len(payload) != batteryLen {
		return crsf.ErrPayloadLength
	}
	r.Voltage = int16(binary.BigEndian.Uint16(payload[0:2]))
	r.Current = int16(binary.BigEndian.Uint16(payload[2:4]))
	r.CapacityUsed = u24(payload[4:7])
	r.Remaining = payload[7]
	return nil
}

func (r *Battery) Encode(out []byte) (int, error) {
	if len(out) < batteryLen {
		return 0, crsf.ErrBufferOverflow
	}
	binary.BigEndian.PutUint16(out[0:2], uint16(r.Voltage))
	binary.BigEndian.PutUint16(out[2:4], uint16(r.Current))
	putU24(out[4:7], r.CapacityUsed)
	out[7] = r.Remaining
	return batteryLen, nil
}

const airspeedLen = 2

// Airspeed in 0.1 km/h units.
type Airspeed struct {
	Speed uint16
}

func (*Airspeed) Type() crsf.PacketType { return crsf.TypeAirspeed }
func (*Airspeed) MinPayload() int       { return airspeedLen }

func (r *Airspeed) Decode(payload []byte) error {
	if len(payload) != airspeedLen {
		return crsf.ErrPayloadLength
	}
	r.Speed = binary.BigEndian.Uint16(payload)
	return nil
}

func (r *Airspeed) Encode(out []byte) (int, error) {
	if len(out) < airspeedLen {
		return 0, crsf.ErrBufferOverflow
	}
	binary.BigEndian.PutUint16(out, r.Speed)
	return airspeedLen, nil
}

const heartbeatLen = 2

// Heartbeat announces a device's presence on the bus.
type Heartbeat struct {
	OriginAddress int16
}

func (*Heartbeat) Type() crsf.PacketType { return crsf.TypeHeartbeat }
func (*Heartbeat) MinPayload() int       { return heartbeatLen }

func (r *Heartbeat) Decode(payload []byte) error {
	if len(payload) != heartbeatLen {
		return crsf.ErrPayloadLength
	}
	r.OriginAddress = int16(binary.BigEndian.Uint16(payload))
	return nil
}

func (r *Heartbeat) Encode(out []byte) (int, error) {
	if len(out) < heartbeatLen {
		return 0, crsf.ErrBufferOverflow
	}
	binary.BigEndian.PutUint16(out, uint16(r.OriginAddress))
	return heartbeatLen, nil
}

const linkStatisticsLen = 10

// LinkStatistics is the RF link quality report for both directions.
// RSSI fields carry dBm * -1.
type LinkStatistics struct {
	UplinkRSSI1       uint8
	UplinkRSSI2       uint8
	UplinkLinkQuality uint8 // packet success rate, percent
	UplinkSNR         int8  // dB
	ActiveAntenna     uint8
	RFMode            uint8
	UplinkTXPower     uint8
	DownlinkRSSI      uint8
	DownlinkQuality   uint8
	DownlinkSNR       int8
}

func (*LinkStatistics) Type() crsf.PacketType { return crsf.TypeLinkStatistics }
func (*LinkStatistics) MinPayload() int       { return linkStatisticsLen }

func (r *LinkStatistics) Decode(payload []byte) error {
	if len(payload) != linkStatisticsLen {
		return crsf.ErrPayloadLength
	}
	r.UplinkRSSI1 = payload[0]
	r.UplinkRSSI2 = payload[1]
	r.UplinkLinkQuality = payload[2]
	r.UplinkSNR = int8(payload[3])
	r.ActiveAntenna = payload[4]
	r.RFMode = payload[5]
	r.UplinkTXPower = payload[6]
	r.DownlinkRSSI = payload[7]
	r.DownlinkQuality = payload[8]
	r.DownlinkSNR = int8(payload[9])
	return nil
}

func (r *LinkStatistics) Encode(out []byte) (int, error) {
	if len(out) < linkStatisticsLen {
		return 0, crsf.ErrBufferOverflow
	}
	out[0] = r.UplinkRSSI1
	out[1] = r.UplinkRSSI2
	out[2] = r.UplinkLinkQuality
	out[3] = byte(r.UplinkSNR)
	out[4] = r.ActiveAntenna
	out[5] = r.RFMode
	out[6] = r.UplinkTXPower
	out[7] = r.DownlinkRSSI
	out[8] = r.DownlinkQuality
	out[9] = byte(r.DownlinkSNR)
	return linkStatisticsLen, nil
}

const linkStatisticsRxLen = 5

// LinkStatisticsRx is the 0x1C receiver-side link report: absolute
// RSSI plus a percentage rendering of it, alongside quality, SNR and
// the RF power.
type LinkStatisticsRx struct {
	RSSI        uint8 // dBm * -1
	RSSIPercent uint8
	LinkQuality uint8 // percent
	SNR         int8  // dB
	RFPower     uint8 // dBm
}

func (*LinkStatisticsRx) Type() crsf.PacketType { return crsf.TypeLinkRxID }
func (*LinkStatisticsRx) MinPayload() int       { return linkStatisticsRxLen }

func (r *LinkStatisticsRx) Decode(payload []byte) error {
	if len(payload) != linkStatisticsRxLen {
		return crsf.ErrPayloadLength
	}
	r.RSSI = payload[0]
	r.RSSIPercent = payload[1]
	r.LinkQuality = payload[2]
	r.SNR = int8(payload[3])
	r.RFPower = payload[4]
	return nil
}

func (r *LinkStatisticsRx) Encode(out []byte) (int, error) {
	if len(out) < linkStatisticsRxLen {
		return 0, crsf.ErrBufferOverflow
	}
	out[0] = r.RSSI
	out[1] = r.RSSIPercent
	out[2] = r.LinkQuality
	out[3] = byte(r.SNR)
	out[4] = r.RFPower
	return linkStatisticsRxLen, nil
}

const linkStatisticsTxLen = 6

// LinkStatisticsTx is the 0x1D transmitter-side counterpart of
// LinkStatisticsRx, extended with the RF frame rate.
type LinkStatisticsTx struct {
	RSSI        uint8 // dBm * -1
	RSSIPercent uint8
	LinkQuality uint8 // percent
	SNR         int8  // dB
	RFPower     uint8 // dBm
	FPS         uint8 // frames per second / 10
}

func (*LinkStatisticsTx) Type() crsf.PacketType { return crsf.TypeLinkTxID }
func (*LinkStatisticsTx) MinPayload() int       { return linkStatisticsTxLen }

func (r *LinkStatisticsTx) Decode(payload []byte) error {
	if len(payload) != linkStatisticsTxLen {
		return crsf.ErrPayloadLength
	}
	r.RSSI = payload[0]
	r.RSSIPercent = payload[1]
	r.LinkQuality = payload[2]
	r.SNR = int8(payload[3])
	r.RFPower = payload[4]
	r.FPS = payload[5]
	return nil
}

func (r *LinkStatisticsTx) Encode(out []byte) (int, error) {
	if len(out) < linkStatisticsTxLen {
		return 0, crsf.ErrBufferOverflow
	}
	out[0] = r.RSSI
	out[1] = r.RSSIPercent
	out[2] = r.LinkQuality
	out[3] = byte(r.SNR)
	out[4] = r.RFPower
	out[5] = r.FPS
	return linkStatisticsTxLen, nil
}

const vtxTelemetryLen = 10

// VTXTelemetry mirrors the link statistics layout for the video link.
type VTXTelemetry struct {
	UpRSSIAnt1      uint8
	UpRSSIAnt2      uint8
	UpLinkQuality   uint8
	UpSNR           int8
	ActiveAntenna   uint8
	RFProfile       uint8
	UpRFPower       uint8
	DownRSSI        uint8
	DownLinkQuality uint8
	DownSNR         int8
}

func (*VTXTelemetry) Type() crsf.PacketType { return crsf.TypeVTXTelemetry }
func (*VTXTelemetry) MinPayload() int       { return vtxTelemetryLen }

func (r *VTXTelemetry) Decode(payload []byte) error {
	if len(payload) != vtxTelemetryLen {
		return crsf.ErrPayloadLength
	}
	r.UpRSSIAnt1 = payload[0]
	r.UpRSSIAnt2 = payload[1]
	r.UpLinkQuality = payload[2]
	r.UpSNR = int8(payload[3])
	r.ActiveAntenna = payload[4]
	r.RFProfile = payload[5]
	r.UpRFPower = payload[6]
	r.DownRSSI = payload[7]
	r.DownLinkQuality = payload[8]
	r.DownSNR = int8(payload[9])
	return nil
}

func (r *VTXTelemetry) Encode(out []byte) (int, error) {
	if len(out) < vtxTelemetryLen {
		return 0, crsf.ErrBufferOverflow
	}
	out[0] = r.UpRSSIAnt1
	out[1] = r.UpRSSIAnt2
	out[2] = r.UpLinkQuality
	out[3] = byte(r.UpSNR)
	out[4] = r.ActiveAntenna
	out[5] = r.RFProfile
	out[6] = r.UpRFPower
	out[7] = r.DownRSSI
	out[8] = r.DownLinkQuality
	out[9] = byte(r.DownSNR)
	return vtxTelemetryLen, nil
}

const attitudeLen = 6

// Attitude carries the airframe orientation in 100 microradian units.
type Attitude struct {
	Pitch int16
	Roll  int16
	Yaw   int16
}

func (*Attitude) Type() crsf.PacketType { return crsf.TypeAttitude }
func (*Attitude) MinPayload() int       { return attitudeLen }

func (r *Attitude) Decode(payload []byte) error {
	if len(payload) != attitudeLen {
		return crsf.ErrPayloadLength
	}
	r.Pitch = int16(binary.BigEndian.Uint16(payload[0:2]))
	r.Roll = int16(binary.BigEndian.Uint16(payload[2:4]))
	r.Yaw = int16(binary.BigEndian.Uint16(payload[4:6]))
	return nil
}

func (r *Attitude) Encode(out []byte) (int, error) {
	if len(out) < attitudeLen {
		return 0, crsf.ErrBufferOverflow
	}
	binary.BigEndian.PutUint16(out[0:2], uint16(r.Pitch))
	binary.BigEndian.PutUint16(out[2:4], uint16(r.Roll))
	binary.BigEndian.PutUint16(out[4:6], uint16(r.Yaw))
	return attitudeLen, nil
}

// FlightMode is a NUL-terminated mode string such as "ACRO".
type FlightMode struct {
	Mode string
}

func (*FlightMode) Type() crsf.PacketType { return crsf.TypeFlightMode }
func (*FlightMode) MinPayload() int       { return 1 }

func (r *FlightMode) Decode(payload []byte) error {
	if len(payload) < 1 {
		return crsf.ErrPayloadLength
	}
	end := len(payload)
	for i, b := range payload {
		if b == 0 {
			end = i
			break
		}
	}
	r.Mode = string(payload[:end])
	return nil
}

func (r *FlightMode) Encode(out []byte) (int, error) {
	n := len(r.Mode) + 1
	if len(out) < n || n > crsf.MaxPayloadLen {
		return 0, crsf.ErrBufferOverflow
	}
	copy(out, r.Mode)
	out[len(r.Mode)] = 0
	return n, nil
}
