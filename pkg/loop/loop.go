// Package loop drives the sample, transform and act cycle shared by every
// demo. A Loop alternates between Sampling and Acting until its context is
// cancelled or one of its capabilities fails.
package loop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ericogr/pico-loops/pkg/output"
	"github.com/ericogr/pico-loops/pkg/sensor"
)

type State int

const (
	Sampling State = iota
	Acting
)

func (s State) String() string {
	switch s {
	case Sampling:
		return "sampling"
	case Acting:
		return "acting"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// SleepFunc blocks for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Observer receives loop telemetry. *metrics.Metrics implements it on hosts
// that serve an HTTP endpoint.
type Observer interface {
	Cycle(loop string)
	Error(loop string)
	Observe(readings []sensor.Reading)
	SetInterval(d time.Duration)
}

type nopObserver struct{}

func (nopObserver) Cycle(string)              {}
func (nopObserver) Error(string)              {}
func (nopObserver) Observe([]sensor.Reading)  {}
func (nopObserver) SetInterval(time.Duration) {}

// Options are the ambient collaborators of a loop. All fields are optional.
type Options struct {
	// Output receives every sampled batch of readings.
	Output  output.Output
	Metrics Observer
	Sleep   SleepFunc
	// Trace is called on every state transition.
	Trace func(State)
}

// Loop is one forever-loop. Sample runs in the Sampling state and Act, which
// includes any waiting, in the Acting state.
type Loop struct {
	name   string
	sample func() ([]sensor.Reading, error)
	act    func(ctx context.Context, readings []sensor.Reading) error
	opts   Options
}

func (l *Loop) Name() string { return l.name }

func (o Options) observer() Observer {
	if o.Metrics == nil {
		return nopObserver{}
	}
	return o.Metrics
}

func (l *Loop) sleep(ctx context.Context, d time.Duration) error {
	if l.opts.Sleep != nil {
		return l.opts.Sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

func (l *Loop) enter(s State) {
	if l.opts.Trace != nil {
		l.opts.Trace(s)
	}
}

// Run loops until ctx is cancelled, in which case it returns nil. Any other
// failure ends the loop and is returned.
func (l *Loop) Run(ctx context.Context) error {
	for {
		// iteration boundary: the only place a stop request is honoured
		// outside of a sleep
		if ctx.Err() != nil {
			return nil
		}
		if err := l.Step(ctx); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			l.opts.observer().Error(l.name)
			return err
		}
	}
}

// Step runs exactly one Sampling and one Acting phase.
func (l *Loop) Step(ctx context.Context) error {
	l.enter(Sampling)
	readings, err := l.sample()
	if err != nil {
		return fmt.Errorf("%s: sample: %w", l.name, err)
	}
	if len(readings) > 0 {
		l.opts.observer().Observe(readings)
		if l.opts.Output != nil {
			if err := l.opts.Output.Publish(readings); err != nil {
				return fmt.Errorf("%s: publish: %w", l.name, err)
			}
		}
	}
	l.enter(Acting)
	if err := l.act(ctx, readings); err != nil {
		return err
	}
	l.opts.observer().Cycle(l.name)
	return nil
}

// first returns the first reading of a batch.
func first(readings []sensor.Reading) (sensor.Reading, error) {
	if len(readings) == 0 {
		return sensor.Reading{}, fmt.Errorf("no readings: %w", sensor.ErrPeripheralUnavailable)
	}
	return readings[0], nil
}

// NewMonitor samples s every period and only reports the readings.
func NewMonitor(s sensor.Sensor, period time.Duration, opts Options) *Loop {
	l := &Loop{name: "monitor", sample: s.Read, opts: opts}
	l.act = func(ctx context.Context, _ []sensor.Reading) error {
		return l.sleep(ctx, period)
	}
	return l
}
