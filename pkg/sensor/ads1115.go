//go:build !tinygo

package sensor

import (
	"fmt"
	"sync"
	"time"

	"github.com/ericogr/pico-loops/pkg/config"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	pointerConv   = 0x00
	pointerConfig = 0x01
)

// ADS1115Sensor reads single-ended conversions from an ADS1115 over I2C.
// Value is the calibrated input voltage.
type ADS1115Sensor struct {
	mu       sync.Mutex
	dev      *i2c.Dev
	bus      i2c.BusCloser
	channels []channelSettings
	pgaFS    float64
}

func NewADS1115Sensor(cfg config.Config) (Sensor, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2C.Bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c %q: %w: %v", cfg.I2C.Bus, ErrPeripheralUnavailable, err)
	}
	s := &ADS1115Sensor{
		dev:      &i2c.Dev{Addr: uint16(cfg.I2C.Address), Bus: bus},
		bus:      bus,
		channels: buildChannelSettings(cfg),
		pgaFS:    4.096,
	}
	if len(s.channels) == 0 {
		_ = bus.Close()
		return nil, fmt.Errorf("ads1115: no enabled channels: %w", ErrPeripheralUnavailable)
	}
	// probe the config register so a missing chip fails at startup
	probe := make([]byte, 2)
	if err := s.dev.Tx([]byte{pointerConfig}, probe); err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("ads1115 at 0x%02X: %w: %v", cfg.I2C.Address, ErrPeripheralUnavailable, err)
	}
	return s, nil
}

func (s *ADS1115Sensor) Close() error {
	if s.bus != nil {
		return s.bus.Close()
	}
	return nil
}

func (s *ADS1115Sensor) Devices() []string {
	out := make([]string, 0, len(s.channels))
	for _, ch := range s.channels {
		out = append(out, fmt.Sprintf("%s@%s", channelName(ch.channel), s.dev.String()))
	}
	return out
}

func (s *ADS1115Sensor) Read() ([]Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Reading, 0, len(s.channels))
	now := time.Now()
	for _, ch := range s.channels {
		msb, lsb, err := s.configForChannel(ch.channel, ch.sampleRate)
		if err != nil {
			return nil, err
		}
		// write config
		if err := s.dev.Tx([]byte{pointerConfig, msb, lsb}, nil); err != nil {
			return nil, fmt.Errorf("write config: %w: %v", ErrPeripheralUnavailable, err)
		}
		// wait for conversion (simple sleep)
		time.Sleep(ConversionDelay(ch.sampleRate))
		// read conversion
		readBuf := make([]byte, 2)
		if err := s.dev.Tx([]byte{pointerConv}, readBuf); err != nil {
			return nil, fmt.Errorf("read conv: %w: %v", ErrPeripheralUnavailable, err)
		}
		raw := int16(readBuf[0])<<8 | int16(readBuf[1])
		value := float64(raw)*s.pgaFS/32768.0*ch.scale + ch.offset
		out = append(out, Reading{Source: channelName(ch.channel), Raw: scaleSigned(raw), Value: value, Timestamp: now})
	}
	return out, nil
}

// data rate codes (config bits 7:5) by samples per second
var dataRates = map[int]uint16{8: 0, 16: 1, 32: 2, 64: 3, 128: 4, 250: 5, 475: 6, 860: 7}

// configForChannel builds the config register for a single-shot, single-ended
// conversion at +-4.096V full scale. Unknown rates run at 128 SPS.
func (s *ADS1115Sensor) configForChannel(channel, sampleRate int) (byte, byte, error) {
	if channel < 0 || channel > 3 {
		return 0, 0, fmt.Errorf("invalid channel %d", channel)
	}
	dr, ok := dataRates[sampleRate]
	if !ok {
		dr = dataRates[128]
	}
	reg := uint16(0x8000) | // start a conversion
		uint16(0x4+channel)<<12 | // AINx against GND
		0x1<<9 | // PGA
		1<<8 | // single-shot
		dr<<5 |
		0x3 // comparator off
	return byte(reg >> 8), byte(reg), nil
}
