// crsf-dump decodes a CRSF byte stream from a serial port or a
// capture file and prints one line per frame. With -kml it also
// writes the GPS track as a KML document.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
	"github.com/kstaniek/go-crsf-server/internal/packets"
	"github.com/kstaniek/go-crsf-server/internal/serialport"
	"github.com/kstaniek/go-crsf-server/internal/stream"
)

const serialReadTimeout = 200 * time.Millisecond

// Populated at release build time via -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type dumpStats struct {
	frames  uint64
	bytes   uint64
	framing uint64
	decode  uint64
	byType  map[crsf.PacketType]uint64
}

func main() {
	var (
		serialDev   = flag.String("serial", "", "serial device to read from (omit to read a capture file)")
		baud        = flag.Int("baud", 420000, "serial baud rate")
		kmlOut      = flag.String("kml", "", "write the GPS track to this KML file")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [capture-file]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("crsf-dump %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	var (
		src  io.ReadCloser
		live bool
	)
	switch {
	case *serialDev != "":
		sp, err := serialport.Open(*serialDev, *baud, serialReadTimeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "crsf-dump: open %s: %v\n", *serialDev, err)
			os.Exit(1)
		}
		src = sp
		live = true
	case flag.NArg() == 1:
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "crsf-dump: %v\n", err)
			os.Exit(1)
		}
		src = f
	default:
		flag.Usage()
		os.Exit(2)
	}
	defer src.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var trk *gpsTrack
	if *kmlOut != "" {
		trk = newGPSTrack()
	}

	start := time.Now()
	st := dump(ctx, os.Stdout, src, live, trk)
	printStats(os.Stderr, st, time.Since(start))

	if trk != nil {
		if err := writeTrackFile(*kmlOut, trk); err != nil {
			fmt.Fprintf(os.Stderr, "crsf-dump: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "wrote %s track points to %s\n",
			humanize.Comma(int64(trk.len())), *kmlOut)
	}
}

// dump reads frames until the source is exhausted or ctx is
// cancelled. In live mode an idle line (read timeouts surfacing as
// short reads) keeps the loop going instead of ending it.
func dump(ctx context.Context, out io.Writer, src io.Reader, live bool, trk *gpsTrack) dumpStats {
	rd := stream.NewReader(src)
	st := dumpStats{byType: make(map[crsf.PacketType]uint64)}
	for {
		if ctx.Err() != nil {
			return st
		}
		raw, err := rd.ReadRawFrame()
		switch {
		case err == nil:
		case errors.Is(err, crsf.ErrUnexpectedEOF):
			if live {
				continue
			}
			return st
		case crsf.IsFramingError(err):
			st.framing++
			continue
		default:
			fmt.Fprintf(os.Stderr, "crsf-dump: %v\n", err)
			return st
		}

		st.frames++
		st.bytes += uint64(len(raw))
		rec, err := packets.Dispatch(raw)
		if err != nil {
			st.decode++
			continue
		}
		st.byType[rec.Type()]++
		if g, ok := rec.(*packets.GPS); ok && trk != nil {
			trk.add(g)
		}
		fmt.Fprintf(out, "%7d  %-16s %s\n", st.frames, rec.Type(), summarize(rec))
	}
}

func writeTrackFile(path string, trk *gpsTrack) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := trk.write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
