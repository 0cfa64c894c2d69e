package main

import (
	"io"

	kml "github.com/twpayne/go-kml"

	"github.com/kstaniek/go-crsf-server/internal/packets"
)

// gpsTrack accumulates position fixes for the -kml output.
type gpsTrack struct {
	points []kml.Coordinate
}

func newGPSTrack() *gpsTrack {
	return &gpsTrack{}
}

// add records one fix. Frames sent before the receiver has a fix
// carry 0,0 and would draw a spike to the Gulf of Guinea, so they
// are skipped.
func (t *gpsTrack) add(g *packets.GPS) {
	if g.Latitude == 0 && g.Longitude == 0 {
		return
	}
	t.points = append(t.points, kml.Coordinate{
		Lon: float64(g.Longitude) / 1e7,
		Lat: float64(g.Latitude) / 1e7,
		Alt: float64(g.AltitudeM()),
	})
}

func (t *gpsTrack) len() int { return len(t.points) }

func (t *gpsTrack) write(w io.Writer) error {
	track := kml.Placemark(
		kml.Name("GPS track"),
		kml.LineString(
			kml.AltitudeMode(kml.AltitudeModeAbsolute),
			kml.Tessellate(false),
			kml.Coordinates(t.points...),
		),
	)
	d := kml.Folder(kml.Name("crsf-dump")).Add(kml.Open(true)).Add(track)
	k := kml.KML(d)
	return k.WriteIndent(w, "", "  ")
}
