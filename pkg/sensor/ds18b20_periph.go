//go:build !tinygo

package sensor

import (
	"fmt"
	"sync"
	"time"

	"github.com/ericogr/pico-loops/pkg/config"
	"periph.io/x/conn/v3/onewire"
	"periph.io/x/conn/v3/onewire/onewirereg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ds18b20"
	"periph.io/x/host/v3"
)

// thermometer is the part of *ds18b20.Dev used after a bus-wide conversion.
type thermometer interface {
	LastTemp() (physic.Temperature, error)
}

// DS18B20Sensor reads every DS18B20 found on a 1-Wire bus. Value is in °C.
type DS18B20Sensor struct {
	mu         sync.Mutex
	bus        onewire.BusCloser
	devs       []thermometer
	names      []string
	resolution int
	convertAll func(bus onewire.Bus, bits int) error
	conv       *Conversion
}

func NewDS18B20Sensor(cfg config.Config) (Sensor, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	bus, err := onewirereg.Open(cfg.OneWireBus)
	if err != nil {
		return nil, fmt.Errorf("open onewire %q: %w: %v", cfg.OneWireBus, ErrPeripheralUnavailable, err)
	}
	addrs, err := bus.Search(false)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("onewire search: %w: %v", ErrPeripheralUnavailable, err)
	}
	s := newDS18B20Sensor(cfg, ds18b20.ConvertAll)
	s.bus = bus
	for _, a := range addrs {
		if a&0xFF != ds18b20Family {
			continue
		}
		name := romName(uint64(a))
		dev, err := ds18b20.New(bus, a, cfg.Resolution)
		if err != nil {
			_ = bus.Close()
			return nil, fmt.Errorf("open %s: %w: %v", name, ErrPeripheralUnavailable, err)
		}
		s.devs = append(s.devs, dev)
		s.names = append(s.names, name)
	}
	if len(s.devs) == 0 {
		_ = bus.Close()
		return nil, fmt.Errorf("no ds18b20 on %s: %w", bus, ErrPeripheralUnavailable)
	}
	return s, nil
}

func newDS18B20Sensor(cfg config.Config, convertAll func(onewire.Bus, int) error) *DS18B20Sensor {
	delay := ConversionTime(cfg.Resolution)
	if min := time.Duration(cfg.ConversionDelayMs) * time.Millisecond; min > delay {
		delay = min
	}
	return &DS18B20Sensor{resolution: cfg.Resolution, convertAll: convertAll, conv: NewConversion(delay)}
}

func (s *DS18B20Sensor) Devices() []string { return append([]string(nil), s.names...) }

// Read starts one conversion on every device, waits at least the configured
// settle time and then collects each device's result.
func (s *DS18B20Sensor) Read() ([]Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv.Start()
	if err := s.convertAll(s.bus, s.resolution); err != nil {
		return nil, fmt.Errorf("convert: %w: %v", ErrPeripheralUnavailable, err)
	}
	time.Sleep(s.conv.Remaining())
	if err := s.conv.Ready(); err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]Reading, 0, len(s.devs))
	for i, d := range s.devs {
		t, err := d.LastTemp()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w: %v", s.names[i], ErrPeripheralUnavailable, err)
		}
		out = append(out, temperatureReading(s.names[i], t, now))
	}
	return out, nil
}

func (s *DS18B20Sensor) Close() error {
	if s.bus != nil {
		return s.bus.Close()
	}
	return nil
}
