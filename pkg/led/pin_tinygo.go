//go:build tinygo

package led

import "machine"

// BoardPin drives a microcontroller pin directly.
type BoardPin struct {
	pin machine.Pin
}

func NewBoardPin(pin machine.Pin) *BoardPin {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pin.Low()
	return &BoardPin{pin: pin}
}

func (p *BoardPin) Set(level bool) error {
	p.pin.Set(level)
	return nil
}
