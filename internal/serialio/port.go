// Package serialio abstracts serial port access for hardware peripherals.
package serialio

import (
	"io"
	"time"
)

// Port is the minimal serial port surface used by sensor and input drivers.
type Port interface {
	io.ReadWriteCloser

	// SetReadTimeout bounds blocking reads; zero or negative disables the bound.
	SetReadTimeout(d time.Duration) error
}
