package loop

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ericogr/pico-loops/pkg/calibrate"
	"github.com/ericogr/pico-loops/pkg/led"
	"github.com/ericogr/pico-loops/pkg/sensor"
	"golang.org/x/sync/errgroup"
)

// NewBlinker maps the first reading of s onto a half-period and blinks out
// once per iteration: on, wait, off, wait.
func NewBlinker(s sensor.Sensor, out led.Actuator, cal calibrate.Linear, opts Options) *Loop {
	var interval time.Duration
	l := &Loop{name: "blink", opts: opts}
	l.sample = func() ([]sensor.Reading, error) {
		readings, err := s.Read()
		if err != nil {
			return nil, err
		}
		r, err := first(readings)
		if err != nil {
			return nil, err
		}
		if interval, err = cal.Interval(float64(r.Raw)); err != nil {
			return nil, err
		}
		opts.observer().SetInterval(interval)
		return readings, nil
	}
	l.act = func(ctx context.Context, _ []sensor.Reading) error {
		for _, level := range [...]bool{true, false} {
			if err := out.Set(level); err != nil {
				return fmt.Errorf("%s: set %v: %w", l.name, level, err)
			}
			if err := l.sleep(ctx, interval); err != nil {
				return err
			}
		}
		return nil
	}
	return l
}

// SharedInterval is a single-writer, single-reader cell holding the current
// blink interval. Loads never observe a partially written value.
type SharedInterval struct {
	v atomic.Int64
}

func NewSharedInterval(initial time.Duration) *SharedInterval {
	s := &SharedInterval{}
	s.Store(initial)
	return s
}

func (s *SharedInterval) Store(d time.Duration) { s.v.Store(int64(d)) }

func (s *SharedInterval) Load() time.Duration { return time.Duration(s.v.Load()) }

// NewProducer samples s every period and publishes the mapped interval.
func NewProducer(s sensor.Sensor, cal calibrate.Linear, cell *SharedInterval, period time.Duration, opts Options) *Loop {
	l := &Loop{name: "producer", opts: opts}
	l.sample = func() ([]sensor.Reading, error) {
		readings, err := s.Read()
		if err != nil {
			return nil, err
		}
		r, err := first(readings)
		if err != nil {
			return nil, err
		}
		d, err := cal.Interval(float64(r.Raw))
		if err != nil {
			return nil, err
		}
		cell.Store(d)
		opts.observer().SetInterval(d)
		return readings, nil
	}
	l.act = func(ctx context.Context, _ []sensor.Reading) error {
		return l.sleep(ctx, period)
	}
	return l
}

// NewConsumer toggles out once per iteration and then waits for whatever
// interval the cell held when the iteration began.
func NewConsumer(out led.Actuator, cell *SharedInterval, opts Options) *Loop {
	var (
		interval time.Duration
		level    bool
	)
	l := &Loop{name: "consumer", opts: opts}
	l.sample = func() ([]sensor.Reading, error) {
		interval = cell.Load()
		return nil, nil
	}
	l.act = func(ctx context.Context, _ []sensor.Reading) error {
		level = !level
		if err := out.Set(level); err != nil {
			return fmt.Errorf("%s: set %v: %w", l.name, level, err)
		}
		return l.sleep(ctx, interval)
	}
	return l
}

// RunDual runs producer and consumer on separate goroutines. The first
// failure stops the other loop and is returned.
func RunDual(ctx context.Context, producer, consumer *Loop) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return producer.Run(gctx) })
	g.Go(func() error { return consumer.Run(gctx) })
	return g.Wait()
}
