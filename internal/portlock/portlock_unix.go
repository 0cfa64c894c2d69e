//go:build linux || darwin

// Package portlock guards a serial device against concurrent bridge
// instances with an advisory flock on a sidecar lock file, in the
// spirit of UUCP device locks.
package portlock

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

const lockDir = "/tmp"

// Lock holds the lock file for one device until Release.
type Lock struct {
	f    *os.File
	path string
}

// lockPath derives the sidecar filename: /dev/ttyUSB0 -> crsf-ttyUSB0.lock.
func lockPath(device string) string {
	name := strings.ReplaceAll(strings.TrimPrefix(device, "/"), "/", "-")
	return filepath.Join(lockDir, "crsf-"+name+".lock")
}

// Acquire takes the advisory lock for device, failing immediately if
// another process holds it.
func Acquire(device string) (*Lock, error) {
	path := lockPath(device)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("portlock: open %s: %w", path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, fmt.Errorf("portlock: %s already locked by another process", device)
		}
		return nil, fmt.Errorf("portlock: flock %s: %w", path, err)
	}
	// Record the owner for operators poking at /tmp.
	_ = f.Truncate(0)
	fmt.Fprintf(f, "%d\n", os.Getpid())
	return &Lock{f: f, path: path}, nil
}

// Release drops the lock and removes the sidecar file.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	cerr := l.f.Close()
	_ = os.Remove(l.path)
	l.f = nil
	if err != nil {
		return fmt.Errorf("portlock: unlock: %w", err)
	}
	return cerr
}
