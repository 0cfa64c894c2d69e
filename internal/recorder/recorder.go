// Package recorder persists decoded telemetry to a SQLite flight log.
// One database holds many sessions; each server run appends a session
// row and streams GPS, link, battery, attitude and flight-mode rows
// under it. Writes happen on a dedicated goroutine with batched
// transactions so the serial RX path never waits on disk.
package recorder

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/kstaniek/go-crsf-server/internal/logging"
	"github.com/kstaniek/go-crsf-server/internal/metrics"
	"github.com/kstaniek/go-crsf-server/internal/packets"
)

var ErrClosed = errors.New("recorder: closed")

const schema = `CREATE TABLE IF NOT EXISTS sessions (id integer NOT NULL PRIMARY KEY AUTOINCREMENT, started timestamp);
CREATE TABLE IF NOT EXISTS gps (session integer, stamp_ms integer,
 lat double precision, lon double precision, speed double precision,
 heading double precision, altitude integer, satellites integer);
CREATE TABLE IF NOT EXISTS link (session integer, stamp_ms integer,
 uplink_rssi1 integer, uplink_rssi2 integer, uplink_quality integer,
 uplink_snr integer, active_antenna integer, rf_mode integer,
 tx_power integer, downlink_rssi integer, downlink_quality integer,
 downlink_snr integer);
CREATE TABLE IF NOT EXISTS battery (session integer, stamp_ms integer,
 voltage double precision, current double precision,
 capacity_used integer, remaining integer);
CREATE TABLE IF NOT EXISTS attitude (session integer, stamp_ms integer,
 pitch double precision, roll double precision, yaw double precision);
CREATE TABLE IF NOT EXISTS flight_mode (session integer, stamp_ms integer, mode text)`

const (
	insGPS      = `insert into gps (session, stamp_ms, lat, lon, speed, heading, altitude, satellites) values ($1,$2,$3,$4,$5,$6,$7,$8)`
	insLink     = `insert into link (session, stamp_ms, uplink_rssi1, uplink_rssi2, uplink_quality, uplink_snr, active_antenna, rf_mode, tx_power, downlink_rssi, downlink_quality, downlink_snr) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	insBattery  = `insert into battery (session, stamp_ms, voltage, current, capacity_used, remaining) values ($1,$2,$3,$4,$5,$6)`
	insAttitude = `insert into attitude (session, stamp_ms, pitch, roll, yaw) values ($1,$2,$3,$4,$5)`
	insMode     = `insert into flight_mode (session, stamp_ms, mode) values ($1,$2,$3)`
	insSession  = `insert into sessions (started) values ($1)`
)

const (
	defaultQueue = 512
	commitEvery  = 64
	commitAfter  = time.Second
)

// attitudeScale converts the wire's radians*10000 to degrees.
const attitudeScale = 180.0 / 3.14159265358979 / 10000.0

// Recorder appends decoded telemetry under one session of a SQLite
// flight log.
type Recorder struct {
	db      *sqlx.DB
	session int64
	start   time.Time

	ch      chan packets.Record
	closeMu sync.Mutex
	closed  bool
	done    chan struct{}
}

// Open opens (creating if needed) the flight log at path and starts a
// new session in it.
func Open(path string) (*Recorder, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("recorder: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: schema: %w", err)
	}
	start := time.Now()
	res, err := db.Exec(insSession, start)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: session: %w", err)
	}
	session, err := res.LastInsertId()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: session id: %w", err)
	}
	r := &Recorder{
		db:      db,
		session: session,
		start:   start,
		ch:      make(chan packets.Record, defaultQueue),
		done:    make(chan struct{}),
	}
	go r.loop()
	return r, nil
}

// Session returns the id of the session this run writes under.
func (r *Recorder) Session() int64 { return r.session }

// Record enqueues a decoded packet for persistence. Packet kinds
// without a table are ignored. It never blocks; a full queue drops
// the row and counts an error.
func (r *Recorder) Record(rec packets.Record) error {
	switch rec.(type) {
	case *packets.GPS, *packets.LinkStatistics, *packets.Battery,
		*packets.Attitude, *packets.FlightMode:
	default:
		return nil
	}
	r.closeMu.Lock()
	defer r.closeMu.Unlock()
	if r.closed {
		return ErrClosed
	}
	select {
	case r.ch <- rec:
	default:
		metrics.IncError(metrics.ErrRecorderWrite)
	}
	return nil
}

func (r *Recorder) loop() {
	defer close(r.done)
	var tx *sqlx.Tx
	rows := 0
	timer := time.NewTimer(commitAfter)
	defer timer.Stop()

	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			metrics.IncError(metrics.ErrRecorderWrite)
			logging.L().Error("recorder_commit_error", "error", err)
		}
		tx = nil
		rows = 0
	}

	for {
		select {
		case rec, ok := <-r.ch:
			if !ok {
				commit()
				return
			}
			if tx == nil {
				var err error
				tx, err = r.db.Beginx()
				if err != nil {
					metrics.IncError(metrics.ErrRecorderWrite)
					logging.L().Error("recorder_begin_error", "error", err)
					continue
				}
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(commitAfter)
			}
			if err := r.insert(tx, rec); err != nil {
				metrics.IncError(metrics.ErrRecorderWrite)
				logging.L().Error("recorder_write_error", "error", err, "type", rec.Type().String())
				continue
			}
			metrics.IncRecorderRow()
			rows++
			if rows >= commitEvery {
				commit()
			}
		case <-timer.C:
			commit()
			timer.Reset(commitAfter)
		}
	}
}

func (r *Recorder) insert(tx *sqlx.Tx, rec packets.Record) error {
	stamp := time.Since(r.start).Milliseconds()
	switch p := rec.(type) {
	case *packets.GPS:
		_, err := tx.Exec(insGPS, r.session, stamp,
			float64(p.Latitude)/1e7,
			float64(p.Longitude)/1e7,
			float64(p.GroundSpeed)/100.0,
			float64(p.Heading)/100.0,
			int(p.Altitude)-1000,
			p.Satellites)
		return err
	case *packets.LinkStatistics:
		_, err := tx.Exec(insLink, r.session, stamp,
			p.UplinkRSSI1, p.UplinkRSSI2, p.UplinkLinkQuality, p.UplinkSNR,
			p.ActiveAntenna, p.RFMode, p.UplinkTXPower,
			p.DownlinkRSSI, p.DownlinkQuality, p.DownlinkSNR)
		return err
	case *packets.Battery:
		_, err := tx.Exec(insBattery, r.session, stamp,
			float64(p.Voltage)/10.0,
			float64(p.Current)/10.0,
			p.CapacityUsed,
			p.Remaining)
		return err
	case *packets.Attitude:
		_, err := tx.Exec(insAttitude, r.session, stamp,
			float64(p.Pitch)*attitudeScale,
			float64(p.Roll)*attitudeScale,
			float64(p.Yaw)*attitudeScale)
		return err
	case *packets.FlightMode:
		_, err := tx.Exec(insMode, r.session, stamp, p.Mode)
		return err
	}
	return nil
}

// Close drains the queue, commits the final batch and closes the
// database.
func (r *Recorder) Close() error {
	r.closeMu.Lock()
	if r.closed {
		r.closeMu.Unlock()
		return nil
	}
	r.closed = true
	close(r.ch)
	r.closeMu.Unlock()
	<-r.done
	return r.db.Close()
}
