package sensor

import (
	"math/rand"
	"sync"
	"time"

	"github.com/ericogr/pico-loops/pkg/calibrate"
	"github.com/ericogr/pico-loops/pkg/config"
)

// Voltage maps a 16-bit ADC count onto a 3.3V reference.
var Voltage = calibrate.FullScale(0, 3.3)

// simulated thermometers span a cold room to a warm hand
var fakeTemperature = calibrate.FullScale(15, 35)

// FakeSensor produces readings without hardware. Raw values are either random
// or a wrapping ramp.
type FakeSensor struct {
	mu      sync.Mutex
	sources []string
	value   calibrate.Linear
	rng     *rand.Rand
	step    uint16
	next    uint16
}

func NewFakeSensor(cfg config.Config) (Sensor, error) {
	settings := buildChannelSettings(cfg)
	sources := make([]string, 0, len(settings))
	for _, s := range settings {
		sources = append(sources, channelName(s.channel))
	}
	return &FakeSensor{sources: sources, value: Voltage, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}, nil
}

// NewFakeThermometer simulates a 1-Wire bus with the given ROM ids.
func NewFakeThermometer(ids ...string) Sensor {
	return &FakeSensor{sources: ids, value: fakeTemperature, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewRampSensor returns a single-source sensor whose raw value starts at start
// and grows by step on every read.
func NewRampSensor(source string, start, step uint16, value calibrate.Linear) *FakeSensor {
	return &FakeSensor{sources: []string{source}, value: value, step: step, next: start}
}

func (f *FakeSensor) Devices() []string { return append([]string(nil), f.sources...) }

func (f *FakeSensor) Read() ([]Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	out := make([]Reading, 0, len(f.sources))
	for _, src := range f.sources {
		var raw uint16
		if f.rng != nil {
			raw = uint16(f.rng.Intn(65536))
		} else {
			raw = f.next
			f.next += f.step
		}
		value, err := f.value.Map(float64(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, Reading{Source: src, Raw: raw, Value: value, Timestamp: now})
	}
	return out, nil
}

func (f *FakeSensor) Close() error { return nil }
