package sensor

import (
	"fmt"
	"math"
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"
)

// DS18B20 family code and the function commands the board driver issues
// itself.
const (
	ds18b20Family = 0x28
	cmdSkipROM    = 0xCC
	cmdConvert    = 0x44
)

// ConversionTime is the worst-case DS18B20 conversion time for a resolution
// of 9 to 12 bits.
func ConversionTime(resolution int) time.Duration {
	if resolution < 9 || resolution > 12 {
		resolution = 12
	}
	return 93750 * time.Microsecond << uint(resolution-9)
}

// temperatureReading converts a temperature to a Reading whose Raw is the
// sensor's 1/16 °C two's complement register.
func temperatureReading(source string, t physic.Temperature, now time.Time) Reading {
	celsius := t.Celsius()
	return Reading{Source: source, Raw: uint16(int16(math.Round(celsius * 16))), Value: celsius, Timestamp: now}
}

// romName formats a 1-Wire ROM code the way the Linux w1 subsystem does.
func romName(rom uint64) string {
	return fmt.Sprintf("%02x-%012x", rom&0xFF, (rom>>8)&0xFFFFFFFFFFFF)
}

// Conversion guards against reading a scratchpad before the conversion that
// fills it has finished.
type Conversion struct {
	mu      sync.Mutex
	delay   time.Duration
	started time.Time
	now     func() time.Time
}

func NewConversion(delay time.Duration) *Conversion {
	return &Conversion{delay: delay, now: time.Now}
}

// Start records the beginning of a conversion.
func (c *Conversion) Start() {
	c.mu.Lock()
	c.started = c.now()
	c.mu.Unlock()
}

// Remaining returns how long until the current conversion is complete.
func (c *Conversion) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started.IsZero() {
		return c.delay
	}
	if d := c.delay - c.now().Sub(c.started); d > 0 {
		return d
	}
	return 0
}

// Ready returns ErrStaleReading until a started conversion has settled.
func (c *Conversion) Ready() error {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if started.IsZero() {
		return fmt.Errorf("%w: no conversion started", ErrStaleReading)
	}
	if d := c.Remaining(); d > 0 {
		return fmt.Errorf("%w: %v until conversion completes", ErrStaleReading, d)
	}
	return nil
}
