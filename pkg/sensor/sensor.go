// Package sensor acquires raw readings from input peripherals.
package sensor

import (
	"errors"
	"time"
)

var (
	// ErrPeripheralUnavailable reports a device that is missing or not responding.
	ErrPeripheralUnavailable = errors.New("peripheral unavailable")
	// ErrStaleReading reports a read issued before the device finished converting.
	ErrStaleReading = errors.New("stale reading")
)

// Reading is one sample taken from a single source. Raw is normalised to the
// full 16-bit range regardless of the converter's native width.
type Reading struct {
	Source    string    `json:"source"`
	Raw       uint16    `json:"raw"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Sensor returns one reading per configured source on every call.
type Sensor interface {
	Read() ([]Reading, error)
	Close() error
}

// Scanner is implemented by sensors that discover their sources on a bus.
type Scanner interface {
	Devices() []string
}
