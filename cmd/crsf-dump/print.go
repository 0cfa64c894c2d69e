package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
	"github.com/kstaniek/go-crsf-server/internal/packets"
)

// radToDeg converts the attitude frame's 100 microradian units.
const radToDeg = 180.0 / 3.14159265358979 / 10000.0

// summarize renders one record as a single human-readable line,
// engineering units where the wire format scales or offsets them.
func summarize(rec packets.Record) string {
	switch r := rec.(type) {
	case *packets.GPS:
		return fmt.Sprintf("lat %.7f lon %.7f alt %dm speed %.2fkm/h heading %.2f sats %d",
			float64(r.Latitude)/1e7, float64(r.Longitude)/1e7, r.AltitudeM(),
			float64(r.GroundSpeed)/100, float64(r.Heading)/100, r.Satellites)
	case *packets.GPSTime:
		return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%03dZ",
			r.Year, r.Month, r.Day, r.Hour, r.Minute, r.Second, r.Millisecond)
	case *packets.GPSExtended:
		return fmt.Sprintf("fix %d n %dcm/s e %dcm/s v %dcm/s hdop %.1f vdop %.1f",
			r.FixType, r.NSpeed, r.ESpeed, r.VSpeed,
			float64(r.HDOP)/10, float64(r.VDOP)/10)
	case *packets.Vario:
		return fmt.Sprintf("vspd %dcm/s", r.VSpeed)
	case *packets.BaroAltitude:
		return fmt.Sprintf("alt %.1fm vspd %dcm/s",
			float64(r.AltitudeDm())/10, r.VerticalSpeedCmS())
	case *packets.Airspeed:
		return fmt.Sprintf("%.1fkm/h", float64(r.Speed)/10)
	case *packets.Battery:
		return fmt.Sprintf("%.1fV %.1fA used %dmAh remaining %d%%",
			float64(r.Voltage)/10, float64(r.Current)/10, r.CapacityUsed, r.Remaining)
	case *packets.Heartbeat:
		return fmt.Sprintf("origin 0x%02X", uint16(r.OriginAddress))
	case *packets.LinkStatistics:
		return fmt.Sprintf("up rssi %d/%d lq %d%% snr %d rf %d pwr %d | down rssi %d lq %d%% snr %d",
			r.UplinkRSSI1, r.UplinkRSSI2, r.UplinkLinkQuality, r.UplinkSNR,
			r.RFMode, r.UplinkTXPower,
			r.DownlinkRSSI, r.DownlinkQuality, r.DownlinkSNR)
	case *packets.LinkStatisticsRx:
		return fmt.Sprintf("rssi -%ddBm (%d%%) lq %d%% snr %d pwr %ddBm",
			r.RSSI, r.RSSIPercent, r.LinkQuality, r.SNR, r.RFPower)
	case *packets.LinkStatisticsTx:
		return fmt.Sprintf("rssi -%ddBm (%d%%) lq %d%% snr %d pwr %ddBm fps %d",
			r.RSSI, r.RSSIPercent, r.LinkQuality, r.SNR, r.RFPower, int(r.FPS)*10)
	case *packets.VTXTelemetry:
		return fmt.Sprintf("up rssi %d/%d lq %d%% snr %d | down rssi %d lq %d%% snr %d",
			r.UpRSSIAnt1, r.UpRSSIAnt2, r.UpLinkQuality, r.UpSNR,
			r.DownRSSI, r.DownLinkQuality, r.DownSNR)
	case *packets.Attitude:
		return fmt.Sprintf("pitch %.1f roll %.1f yaw %.1f deg",
			float64(r.Pitch)*radToDeg, float64(r.Roll)*radToDeg, float64(r.Yaw)*radToDeg)
	case *packets.FlightMode:
		return fmt.Sprintf("%q", r.Mode)
	case *packets.RCChannels:
		return fmt.Sprintf("%v", *r)
	case *packets.RPM:
		return fmt.Sprintf("src %d rpm %v", r.SourceID, r.Values)
	case *packets.Temperature:
		return fmt.Sprintf("src %d deci-degC %v", r.SourceID, r.Readings)
	case *packets.Voltages:
		return fmt.Sprintf("src %d mV %v", r.SourceID, r.Values)
	case *packets.DevicePing:
		return fmt.Sprintf("dst 0x%02X src 0x%02X", byte(r.Dst), byte(r.Src))
	case *packets.DeviceInfo:
		return fmt.Sprintf("%q serial %08X hw %08X fw %08X params %d v%d",
			r.Name, r.SerialNumber, r.HardwareID, r.FirmwareID,
			r.ParametersTotal, r.ParameterVersion)
	case *packets.NotImplemented:
		return fmt.Sprintf("tag 0x%02X, %d byte payload", byte(r.Tag), r.PayloadLen)
	default:
		return fmt.Sprintf("%+v", rec)
	}
}

func printStats(w io.Writer, st dumpStats, elapsed time.Duration) {
	fmt.Fprintf(w, "%s frames (%s) in %s, %d framing errors, %d decode errors\n",
		humanize.Comma(int64(st.frames)), humanize.Bytes(st.bytes),
		elapsed.Round(time.Millisecond), st.framing, st.decode)

	types := make([]crsf.PacketType, 0, len(st.byType))
	for t := range st.byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if st.byType[types[i]] != st.byType[types[j]] {
			return st.byType[types[i]] > st.byType[types[j]]
		}
		return types[i] < types[j]
	})
	for _, t := range types {
		fmt.Fprintf(w, "  %-16s %s\n", t, humanize.Comma(int64(st.byType[t])))
	}
}
