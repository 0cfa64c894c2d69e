package packets

import (
	"errors"
	"testing"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
)

// linkStatsFrame is a complete wire frame captured from a TBS
// receiver: uplink RSSI 16/19, 99% quality, SNR byte 151 (-105 dB).
var linkStatsFrame = []byte{0xC8, 12, 0x14, 16, 19, 99, 151, 1, 2, 3, 8, 88, 148, 252}

func TestDispatch_LinkStatisticsFrame(t *testing.T) {
	sc := crsf.NewRawScanner(linkStatsFrame)
	if !sc.Scan() {
		t.Fatal("no frame produced")
	}
	if sc.Err() != nil {
		t.Fatalf("scan: %v", sc.Err())
	}

	rec, err := Dispatch(sc.Frame())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	ls, ok := rec.(*LinkStatistics)
	if !ok {
		t.Fatalf("record type = %T, want *LinkStatistics", rec)
	}
	if ls.UplinkRSSI1 != 16 || ls.UplinkRSSI2 != 19 {
		t.Errorf("RSSI = %d/%d, want 16/19", ls.UplinkRSSI1, ls.UplinkRSSI2)
	}
	if ls.UplinkLinkQuality != 99 {
		t.Errorf("UplinkLinkQuality = %d, want 99", ls.UplinkLinkQuality)
	}
	if ls.UplinkSNR != -105 {
		t.Errorf("UplinkSNR = %d, want -105", ls.UplinkSNR)
	}
	if ls.DownlinkSNR != -108 {
		t.Errorf("DownlinkSNR = %d, want -108", ls.DownlinkSNR)
	}

	if sc.Scan() {
		t.Errorf("unexpected extra item: frame %v err %v", sc.Frame(), sc.Err())
	}
}

func TestDispatch_CorruptedCRC(t *testing.T) {
	bad := append([]byte(nil), linkStatsFrame...)
	bad[len(bad)-1] ^= 0xFF

	sc := crsf.NewRawScanner(bad)
	if !sc.Scan() {
		t.Fatal("no item produced")
	}
	var crcErr *crsf.CRCError
	if !errors.As(sc.Err(), &crcErr) {
		t.Fatalf("err = %v, want *CRCError", sc.Err())
	}
	if sc.Frame() != nil {
		t.Errorf("frame = %v, want nil alongside error", sc.Frame())
	}
}

func TestDispatch_NotImplemented(t *testing.T) {
	// Tag 0x17 (subset RC channels) has no registered codec.
	frame := make([]byte, crsf.MaxFrameLen)
	n, err := crsf.BuildFrame(frame, crsf.AddrFlightController, crsf.TypeSubsetRCChannelsPacked, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	sc := crsf.NewRawScanner(frame[:n])
	if !sc.Scan() || sc.Err() != nil {
		t.Fatalf("scan failed: %v", sc.Err())
	}
	rec, err := Dispatch(sc.Frame())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	ni, ok := rec.(*NotImplemented)
	if !ok {
		t.Fatalf("record type = %T, want *NotImplemented", rec)
	}
	if ni.Tag != crsf.TypeSubsetRCChannelsPacked || ni.PayloadLen != 3 {
		t.Errorf("got tag %#x len %d, want 0x17 3", byte(ni.Tag), ni.PayloadLen)
	}
}

func TestDispatch_DecodeError(t *testing.T) {
	// A battery tag with a vario-sized payload must not dispatch.
	frame := make([]byte, crsf.MaxFrameLen)
	n, err := crsf.BuildFrame(frame, crsf.AddrFlightController, crsf.TypeBattery, []byte{0, 1})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	sc := crsf.NewRawScanner(frame[:n])
	if !sc.Scan() || sc.Err() != nil {
		t.Fatalf("scan failed: %v", sc.Err())
	}
	if _, err := Dispatch(sc.Frame()); !errors.Is(err, crsf.ErrPayloadLength) {
		t.Errorf("Dispatch = %v, want ErrPayloadLength", err)
	}
}

// sampleRecords returns one representative record per registered tag.
func sampleRecords() []Record {
	return []Record{
		&GPS{Latitude: 515074000, Longitude: -1278000, GroundSpeed: 2345, Heading: 18050, Altitude: 1100, Satellites: 12},
		&GPSTime{Year: 2024, Month: 10, Day: 27, Hour: 12, Minute: 34, Second: 56, Millisecond: 789},
		&GPSExtended{FixType: 3, NSpeed: 120, ESpeed: -80, VSpeed: 15, HDOP: 9, VDOP: 14},
		&Vario{VSpeed: -250},
		&Battery{Voltage: 168, Current: 254, CapacityUsed: 1130, Remaining: 72},
		&BaroAltitude{AltitudePacked: PackAltitude(12345), VerticalSpeedPacked: PackVerticalSpeed(250)},
		&Airspeed{Speed: 1250},
		&Heartbeat{OriginAddress: int16(crsf.AddrFlightController)},
		&RPM{SourceID: 1, Values: []int32{1000, -2000}},
		&Temperature{SourceID: 1, Readings: []int16{250, -50}},
		&Voltages{SourceID: 2, Values: []uint16{4150, 4162}},
		&VTXTelemetry{UpRSSIAnt1: 40, UpSNR: -3, DownRSSI: 50, DownSNR: 4},
		&LinkStatistics{UplinkRSSI1: 16, UplinkRSSI2: 19, UplinkLinkQuality: 99, UplinkSNR: -1},
		&LinkStatisticsRx{RSSI: 100, RSSIPercent: 75, LinkQuality: 90, SNR: -10, RFPower: 20},
		&LinkStatisticsTx{RSSI: 100, RSSIPercent: 75, LinkQuality: 90, SNR: -10, RFPower: 20, FPS: 50},
		&RCChannels{992, 992, 172, 1811, 992, 992, 992, 992, 992, 992, 992, 992, 992, 992, 992, 992},
		&Attitude{Pitch: -1000, Roll: 1000, Yaw: -18586},
		&FlightMode{Mode: "ACRO"},
		&DevicePing{Dst: crsf.AddrBroadcast, Src: crsf.AddrHandset},
		&DeviceInfo{Dst: crsf.AddrHandset, Src: crsf.AddrTransmitter, Name: "RX", SerialNumber: 1, ParametersTotal: 3},
		&ParameterRead{Dst: crsf.AddrTransmitter, Src: crsf.AddrHandset, Number: 5, Chunk: 0},
		&ParameterWrite{Dst: crsf.AddrTransmitter, Src: crsf.AddrHandset, Number: 5, Data: []byte{1}},
		&DirectCommand{Dst: crsf.AddrFlightController, Src: crsf.AddrHandset, Command: ForceDisarm()},
		&RadioID{Dst: crsf.AddrHandset, Src: crsf.AddrTransmitter, UpdateInterval: 50000, Offset: -7},
	}
}

func TestEncodeFrame_DispatchRoundTrip(t *testing.T) {
	for _, rec := range sampleRecords() {
		t.Run(rec.Type().String(), func(t *testing.T) {
			frame := make([]byte, crsf.MaxFrameLen)
			n, err := EncodeFrame(frame, crsf.AddrFlightController, rec)
			if err != nil {
				t.Fatalf("encode frame: %v", err)
			}

			sc := crsf.NewRawScanner(frame[:n])
			if !sc.Scan() {
				t.Fatal("no frame produced")
			}
			if sc.Err() != nil {
				t.Fatalf("scan: %v", sc.Err())
			}

			got, err := Dispatch(sc.Frame())
			if err != nil {
				t.Fatalf("dispatch: %v", err)
			}
			if got.Type() != rec.Type() {
				t.Errorf("type = %#x, want %#x", byte(got.Type()), byte(rec.Type()))
			}

			// Re-encoding the dispatched record must reproduce the payload.
			var a, b [crsf.MaxPayloadLen]byte
			an, err := rec.Encode(a[:])
			if err != nil {
				t.Fatalf("re-encode original: %v", err)
			}
			bn, err := got.Encode(b[:])
			if err != nil {
				t.Fatalf("re-encode dispatched: %v", err)
			}
			if an != bn || string(a[:an]) != string(b[:bn]) {
				t.Errorf("payloads differ:\n got % X\nwant % X", b[:bn], a[:an])
			}
		})
	}
}

func TestRegistry_TagsMatchRecords(t *testing.T) {
	for tag, factory := range codecs {
		if got := factory().Type(); got != tag {
			t.Errorf("codec registered under %#x reports type %#x", byte(tag), byte(got))
		}
	}
}

func TestScanner_BackToBackWithGarbage(t *testing.T) {
	var stream []byte
	stream = append(stream, linkStatsFrame...)
	stream = append(stream, 0x55, 0x03, 0xA7) // noise between frames

	frame := make([]byte, crsf.MaxFrameLen)
	n, err := crsf.BuildFrame(frame, crsf.AddrFlightController, crsf.TypeVario, []byte{0xFF, 0x06})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	stream = append(stream, frame[:n]...)

	var frames []Record
	var errs int
	sc := crsf.NewRawScanner(stream)
	for sc.Scan() {
		if sc.Err() != nil {
			errs++
			continue
		}
		rec, err := Dispatch(sc.Frame())
		if err != nil {
			t.Fatalf("dispatch: %v", err)
		}
		frames = append(frames, rec)
	}

	if len(frames) != 2 {
		t.Fatalf("decoded %d frames, want 2", len(frames))
	}
	if _, ok := frames[0].(*LinkStatistics); !ok {
		t.Errorf("first record = %T, want *LinkStatistics", frames[0])
	}
	v, ok := frames[1].(*Vario)
	if !ok {
		t.Fatalf("second record = %T, want *Vario", frames[1])
	}
	if v.VSpeed != -250 {
		t.Errorf("VSpeed = %d, want -250", v.VSpeed)
	}
	if errs == 0 {
		t.Error("expected framing errors from the noise bytes")
	}
}
