package timer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/ericogr/pico-loops/pkg/led"
)

func TestTickerTogglesLED(t *testing.T) {
	c := qt.New(t)
	rec := &led.Recorder{}
	tg, err := led.NewToggler(rec, false)
	c.Assert(err, qt.IsNil)

	fired := make(chan struct{}, 16)
	stop := Ticker{}.Every(5*time.Millisecond, func() {
		tg.Toggle()
		fired <- struct{}{}
	})
	for i := 0; i < 3; i++ {
		select {
		case <-fired:
		case <-time.After(time.Second):
			c.Fatal("ticker did not fire")
		}
	}
	stop()
	stop()
	c.Assert(len(rec.Transitions()) >= 4, qt.IsTrue)
}

func TestManualRun(t *testing.T) {
	c := qt.New(t)
	var m Manual
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- Run(ctx, &m, time.Second, func() { calls.Add(1) }) }()

	for m.Registered() == 0 {
		time.Sleep(time.Millisecond)
	}
	m.Fire()
	m.Fire()
	c.Assert(calls.Load(), qt.Equals, int32(2))

	cancel()
	c.Assert(<-done, qt.IsNil)
	c.Assert(m.Registered(), qt.Equals, 0)
	m.Fire()
	c.Assert(calls.Load(), qt.Equals, int32(2))
}

func TestTickerStopWaitsForHandler(t *testing.T) {
	c := qt.New(t)
	var calls atomic.Int64
	entered := make(chan struct{})
	release := make(chan struct{})
	stop := Ticker{}.Every(time.Millisecond, func() {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
		}
	})
	<-entered

	stopped := make(chan struct{})
	go func() {
		stop()
		close(stopped)
	}()
	select {
	case <-stopped:
		c.Fatal("stop returned while the handler was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-stopped
	n := calls.Load()
	time.Sleep(20 * time.Millisecond)
	c.Assert(calls.Load(), qt.Equals, n)
	// stop is idempotent
	stop()
}
