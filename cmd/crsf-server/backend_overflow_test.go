package main

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/kstaniek/go-crsf-server/internal/crsf"
	"github.com/kstaniek/go-crsf-server/internal/hub"
	"github.com/kstaniek/go-crsf-server/internal/metrics"
	"github.com/kstaniek/go-crsf-server/internal/serialport"
)

// blockingPort simulates a very slow serial port to force TX queue overflow.
type blockingPort struct{ block chan struct{} }

func (p *blockingPort) Read(b []byte) (int, error) {
	time.Sleep(5 * time.Millisecond)
	return 0, io.EOF
}
func (p *blockingPort) Write(b []byte) (int, error) { <-p.block; return len(b), nil }
func (p *blockingPort) Close() error                { close(p.block); return nil }

func TestSerialBackendTxOverflow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bp := &blockingPort{block: make(chan struct{})}
	openSerialPort = func(name string, baud int, to time.Duration) (serialport.Port, error) { return bp, nil }
	defer func() { openSerialPort = serialport.Open }()
	beforeErrs := metrics.Snap().Errors

	h := hub.New()
	cfg := &appConfig{backend: "serial", serialDev: "fake-overflow", baud: 420000, serialReadTO: 10 * time.Millisecond}
	var wg sync.WaitGroup
	send, cleanup, err := initSerialBackend(ctx, cfg, h, nil, testLogger(), &wg)
	if err != nil {
		t.Fatalf("initSerialBackend: %v", err)
	}
	defer cleanup()

	// Build one valid frame to push through the funnel.
	var buf [crsf.MaxFrameLen]byte
	n, err := crsf.BuildFrame(buf[:], crsf.AddrFlightController, crsf.TypeVario, []byte{0x00, 0x10})
	if err != nil {
		t.Fatalf("build frame: %v", err)
	}
	fr := crsf.CopyFrame(buf[:n])

	// Fill the queue; the worker blocks on Write, so the ring fills and
	// further sends report overflow.
	var overflowErr error
	for i := 0; i < txQueueSize+2; i++ {
		if err := send(fr); err != nil && overflowErr == nil {
			overflowErr = err
		}
	}
	if overflowErr == nil {
		t.Fatalf("expected at least one overflow error")
	}
	if !errors.Is(overflowErr, serialport.ErrTxOverflow) {
		t.Fatalf("expected ErrTxOverflow, got %v", overflowErr)
	}
	afterErrs := metrics.Snap().Errors
	if afterErrs == beforeErrs {
		t.Fatalf("expected error metric increment on overflow")
	}
}
