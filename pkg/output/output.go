package output

import (
	"sync"
	"time"

	"github.com/ericogr/pico-loops/pkg/sensor"
)

type Output interface {
	Publish([]sensor.Reading) error
	Close() error
}

// helper constructors are in subpackages

// Throttled forwards readings to an Output at most once per interval; readings
// arriving in between are dropped.
type Throttled struct {
	mu       sync.Mutex
	out      Output
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

func NewThrottled(out Output, interval time.Duration) *Throttled {
	return &Throttled{out: out, interval: interval, now: time.Now}
}

func (t *Throttled) Publish(readings []sensor.Reading) error {
	t.mu.Lock()
	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		t.mu.Unlock()
		return nil
	}
	t.last = now
	t.mu.Unlock()
	return t.out.Publish(readings)
}

func (t *Throttled) Close() error { return t.out.Close() }

// Fanout publishes to every output, returning the first error after trying
// them all.
type Fanout []Output

func (f Fanout) Publish(readings []sensor.Reading) error {
	var first error
	for _, o := range f {
		if err := o.Publish(readings); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f Fanout) Close() error {
	var first error
	for _, o := range f {
		if err := o.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
