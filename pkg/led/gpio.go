//go:build !tinygo

package led

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Pin drives a Linux GPIO line through periph.
type Pin struct {
	pin gpio.PinOut
}

// Open looks up a GPIO by name (e.g. "GPIO16") and drives it low.
func Open(name string) (*Pin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio %q not found", name)
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("gpio %s out: %w", name, err)
	}
	return &Pin{pin: p}, nil
}

func (p *Pin) Set(level bool) error {
	return p.pin.Out(gpio.Level(level))
}

func (p *Pin) String() string { return p.pin.String() }

// Close leaves the line low.
func (p *Pin) Close() error {
	return p.pin.Out(gpio.Low)
}
