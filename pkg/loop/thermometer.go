package loop

import (
	"context"
	"fmt"
	"time"

	"github.com/ericogr/pico-loops/pkg/display"
	"github.com/ericogr/pico-loops/pkg/sensor"
)

// Frame lays out one reading on a 128x64 display.
func Frame(r sensor.Reading) []display.Line {
	return []display.Line{
		{Text: "Temperature: ", X: 12, Y: 8},
		{Text: fmt.Sprintf("%.2f", r.Value), X: 30, Y: 30},
		{Text: "*C", X: 75, Y: 30},
	}
}

// NewThermometer reads every sensor on the bus and shows each reading as its
// own render cycle, holding it on screen for hold.
func NewThermometer(s sensor.Sensor, d display.Display, hold time.Duration, opts Options) *Loop {
	l := &Loop{name: "thermometer", sample: s.Read, opts: opts}
	l.act = func(ctx context.Context, readings []sensor.Reading) error {
		if len(readings) == 0 {
			return fmt.Errorf("%s: no sensors answered: %w", l.name, sensor.ErrPeripheralUnavailable)
		}
		for _, r := range readings {
			if err := display.Render(d, Frame(r)...); err != nil {
				return fmt.Errorf("%s: render %s: %w", l.name, r.Source, err)
			}
			if err := l.sleep(ctx, hold); err != nil {
				return err
			}
		}
		return nil
	}
	return l
}
