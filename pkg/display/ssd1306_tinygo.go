//go:build tinygo

package display

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ssd1306"
)

// BoardSSD1306 hands framebuffers to the tinygo ssd1306 driver, whose buffer
// uses the same page layout as Framebuffer.
type BoardSSD1306 struct {
	dev ssd1306.Device
}

func NewBoardSSD1306(bus drivers.I2C, addr uint16, width, height int16) *BoardSSD1306 {
	dev := ssd1306.NewI2C(bus)
	dev.Configure(ssd1306.Config{Address: addr, Width: width, Height: height})
	dev.ClearDisplay()
	return &BoardSSD1306{dev: dev}
}

func (p *BoardSSD1306) Show(fb *Framebuffer) error {
	if err := p.dev.SetBuffer(fb.Pages()); err != nil {
		return err
	}
	return p.dev.Display()
}
