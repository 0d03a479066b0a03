package sensor

import (
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"periph.io/x/conn/v3/physic"
)

func TestTemperatureReading(t *testing.T) {
	c := qt.New(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		celsius physic.Temperature
		raw     uint16
		want    float64
	}{
		{125 * physic.Celsius, 0x07D0, 125},
		{0, 0x0000, 0},
		{-55 * physic.Celsius, 0xFC90, -55},
	}
	for _, tt := range tests {
		r := temperatureReading("28-000000001cb8", physic.ZeroCelsius+tt.celsius, now)
		c.Assert(r.Raw, qt.Equals, tt.raw)
		c.Assert(r.Value, qt.Equals, tt.want)
		c.Assert(r.Timestamp, qt.Equals, now)
	}
}

func TestConversionTime(t *testing.T) {
	c := qt.New(t)
	c.Assert(ConversionTime(9), qt.Equals, 93750*time.Microsecond)
	c.Assert(ConversionTime(12), qt.Equals, 750*time.Millisecond)
	c.Assert(ConversionTime(3), qt.Equals, 750*time.Millisecond)
}

func TestConversionGuard(t *testing.T) {
	c := qt.New(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	conv := NewConversion(750 * time.Millisecond)
	conv.now = func() time.Time { return now }

	c.Assert(errors.Is(conv.Ready(), ErrStaleReading), qt.IsTrue)
	c.Assert(conv.Remaining(), qt.Equals, 750*time.Millisecond)

	conv.Start()
	now = now.Add(500 * time.Millisecond)
	c.Assert(conv.Ready(), qt.ErrorIs, ErrStaleReading)
	c.Assert(conv.Remaining(), qt.Equals, 250*time.Millisecond)

	now = now.Add(250 * time.Millisecond)
	c.Assert(conv.Ready(), qt.IsNil)
	c.Assert(conv.Remaining(), qt.Equals, time.Duration(0))
}

func TestROMName(t *testing.T) {
	qt.Assert(t, romName(0xA2000000001CB828), qt.Equals, "28-000000001cb8")
}
