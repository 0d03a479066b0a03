// Package led drives binary actuators such as LEDs.
package led

import (
	"sync"
	"sync/atomic"
)

// Actuator sets a binary output level.
type Actuator interface {
	Set(level bool) error
}

// Recorder is an in-memory Actuator that keeps the level transitions it has
// seen. Setting the current level again is not a transition.
type Recorder struct {
	mu          sync.Mutex
	level       bool
	transitions []bool
	sets        int
}

func (r *Recorder) Set(level bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets++
	if r.sets == 1 || level != r.level {
		r.transitions = append(r.transitions, level)
	}
	r.level = level
	return nil
}

// Level returns the last level set.
func (r *Recorder) Level() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.level
}

// Transitions returns every level change in order.
func (r *Recorder) Transitions() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.transitions...)
}

// Sets returns the number of Set calls.
func (r *Recorder) Sets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sets
}

// Toggler flips an actuator from a timer handler. The level lives in an
// atomic so Toggle is safe on a preemptive scheduler.
type Toggler struct {
	out   Actuator
	level atomic.Bool
	errs  atomic.Int64
}

func NewToggler(out Actuator, initial bool) (*Toggler, error) {
	t := &Toggler{out: out}
	t.level.Store(initial)
	return t, out.Set(initial)
}

// Toggle inverts the level. Errors are counted, not returned, because the
// caller is a fire-and-forget callback.
func (t *Toggler) Toggle() {
	for {
		old := t.level.Load()
		if t.level.CompareAndSwap(old, !old) {
			if err := t.out.Set(!old); err != nil {
				t.errs.Add(1)
			}
			return
		}
	}
}

func (t *Toggler) Level() bool { return t.level.Load() }

// Errors returns how many Set calls failed inside Toggle.
func (t *Toggler) Errors() int64 { return t.errs.Load() }
