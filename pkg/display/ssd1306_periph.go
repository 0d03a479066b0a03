//go:build !tinygo

package display

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
)

// address the periph driver always talks to
const ssd1306DefaultAddr = 0x3C

// SSD1306 pushes framebuffers to an SSD1306 controller on a Linux I2C bus
// through the periph driver.
type SSD1306 struct {
	dev           *ssd1306.Dev
	bus           i2c.BusCloser
	width, height int16
}

func NewSSD1306(busName string, addr uint16, width, height int16) (*SSD1306, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c %q: %w", busName, err)
	}
	p, err := newSSD1306(bus, addr, width, height)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}
	p.bus = bus
	return p, nil
}

func newSSD1306(bus i2c.Bus, addr uint16, width, height int16) (*SSD1306, error) {
	if addr != ssd1306DefaultAddr {
		bus = &addressedBus{Bus: bus, addr: addr}
	}
	opts := ssd1306.DefaultOpts
	opts.W, opts.H = int(width), int(height)
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		return nil, fmt.Errorf("ssd1306 at 0x%02X: %w", addr, err)
	}
	return &SSD1306{dev: dev, width: width, height: height}, nil
}

// String reports the driver and bus, for startup diagnostics.
func (p *SSD1306) String() string { return p.dev.String() }

func (p *SSD1306) Show(fb *Framebuffer) error {
	w, h := fb.Size()
	if w != p.width || h != p.height {
		return fmt.Errorf("ssd1306: framebuffer %dx%d does not match panel %dx%d", w, h, p.width, p.height)
	}
	// Framebuffer already uses the controller's page layout
	if _, err := p.dev.Write(fb.Pages()); err != nil {
		return fmt.Errorf("ssd1306 write: %w", err)
	}
	return nil
}

func (p *SSD1306) Close() error {
	err := p.dev.Halt()
	if p.bus != nil {
		if cerr := p.bus.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// addressedBus redirects the driver's fixed address to a strapped one (0x3D).
type addressedBus struct {
	i2c.Bus
	addr uint16
}

func (b *addressedBus) Tx(_ uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}
