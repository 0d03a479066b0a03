// Package timer invokes handlers at a fixed period on behalf of an external
// scheduler.
package timer

import (
	"context"
	"sync"
	"time"
)

// Scheduler calls handler every period until the returned stop is called.
// Handlers run on the scheduler's goroutine and must return quickly.
type Scheduler interface {
	Every(period time.Duration, handler func()) (stop func())
}

// Ticker is a Scheduler backed by time.Ticker.
type Ticker struct{}

// Every's stop waits for a running handler to return, and no handler starts
// after stop returns. stop must not be called from the handler itself.
func (Ticker) Every(period time.Duration, handler func()) func() {
	t := time.NewTicker(period)
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		for {
			select {
			case <-t.C:
				// a tick may race a stop request
				select {
				case <-done:
					return
				default:
				}
				handler()
			case <-done:
				return
			}
		}
	}()
	return sync.OnceFunc(func() {
		t.Stop()
		close(done)
		<-exited
	})
}

// Run registers handler on s and blocks until ctx is done.
func Run(ctx context.Context, s Scheduler, period time.Duration, handler func()) error {
	stop := s.Every(period, handler)
	defer stop()
	<-ctx.Done()
	return nil
}

// Manual is a Scheduler whose ticks are driven by Fire, for tests and
// simulations.
type Manual struct {
	mu       sync.Mutex
	handlers map[int]func()
	next     int
}

func (m *Manual) Every(_ time.Duration, handler func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handlers == nil {
		m.handlers = map[int]func(){}
	}
	id := m.next
	m.next++
	m.handlers[id] = handler
	return func() {
		m.mu.Lock()
		delete(m.handlers, id)
		m.mu.Unlock()
	}
}

// Fire runs every registered handler once.
func (m *Manual) Fire() {
	m.mu.Lock()
	hs := make([]func(), 0, len(m.handlers))
	for i := 0; i < m.next; i++ {
		if h, ok := m.handlers[i]; ok {
			hs = append(hs, h)
		}
	}
	m.mu.Unlock()
	for _, h := range hs {
		h()
	}
}

// Registered returns how many handlers are active.
func (m *Manual) Registered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers)
}
