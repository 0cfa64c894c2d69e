package packets

import (
	"github.com/kstaniek/go-crsf-server/internal/crsf"
)

// codecs maps each wire tag to a factory for its record. Table-driven
// on purpose: the set is closed, exhaustiveness is visible here, and
// dispatch stays reflection-free.
var codecs = map[crsf.PacketType]func() Record{
	crsf.TypeGPS:              func() Record { return new(GPS) },
	crsf.TypeGPSTime:          func() Record { return new(GPSTime) },
	crsf.TypeGPSExtended:      func() Record { return new(GPSExtended) },
	crsf.TypeVario:            func() Record { return new(Vario) },
	crsf.TypeBattery:          func() Record { return new(Battery) },
	crsf.TypeBaroAltitude:     func() Record { return new(BaroAltitude) },
	crsf.TypeAirspeed:         func() Record { return new(Airspeed) },
	crsf.TypeHeartbeat:        func() Record { return new(Heartbeat) },
	crsf.TypeRPM:              func() Record { return new(RPM) },
	crsf.TypeTemperature:      func() Record { return new(Temperature) },
	crsf.TypeVoltages:         func() Record { return new(Voltages) },
	crsf.TypeVTXTelemetry:     func() Record { return new(VTXTelemetry) },
	crsf.TypeLinkStatistics:   func() Record { return new(LinkStatistics) },
	crsf.TypeLinkRxID:         func() Record { return new(LinkStatisticsRx) },
	crsf.TypeLinkTxID:         func() Record { return new(LinkStatisticsTx) },
	crsf.TypeRCChannelsPacked: func() Record { return new(RCChannels) },
	crsf.TypeAttitude:         func() Record { return new(Attitude) },
	crsf.TypeFlightMode:       func() Record { return new(FlightMode) },
	crsf.TypeDevicePing:       func() Record { return new(DevicePing) },
	crsf.TypeDeviceInfo:       func() Record { return new(DeviceInfo) },
	crsf.TypeParameterRead:    func() Record { return new(ParameterRead) },
	crsf.TypeParameterWrite:   func() Record { return new(ParameterWrite) },
	crsf.TypeCommand:          func() Record { return new(DirectCommand) },
	crsf.TypeRadioID:          func() Record { return new(RadioID) },
}

// Dispatch decodes a validated frame into its typed record. Frames
// with an unregistered tag come back as *NotImplemented; a registered
// codec rejecting the payload propagates its error.
func Dispatch(f crsf.RawFrame) (Record, error) {
	factory, ok := codecs[f.Type()]
	if !ok {
		return &NotImplemented{Tag: f.Type(), PayloadLen: len(f.Payload())}, nil
	}
	rec := factory()
	if err := rec.Decode(f.Payload()); err != nil {
		return nil, err
	}
	return rec, nil
}
