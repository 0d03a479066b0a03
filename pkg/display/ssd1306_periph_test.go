//go:build !tinygo

package display

import (
	"image/color"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
	"periph.io/x/conn/v3/physic"
)

// busLog is an i2c.Bus that accepts every transfer and records it.
type busLog struct {
	mu    sync.Mutex
	addrs map[uint16]int
	data  [][]byte
}

func (b *busLog) String() string                  { return "buslog" }
func (b *busLog) SetSpeed(physic.Frequency) error { return nil }
func (b *busLog) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.addrs == nil {
		b.addrs = map[uint16]int{}
	}
	b.addrs[addr]++
	if len(w) > 0 && w[0] == 0x40 {
		b.data = append(b.data, append([]byte(nil), w[1:]...))
	}
	return nil
}

func TestSSD1306AlternateAddress(t *testing.T) {
	c := qt.New(t)
	bus := &busLog{}
	p, err := newSSD1306(bus, 0x3D, 128, 64)
	c.Assert(err, qt.IsNil)

	fb := NewFramebuffer(128, 64)
	fb.SetPixel(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	c.Assert(p.Show(fb), qt.IsNil)

	c.Assert(bus.addrs, qt.DeepEquals, map[uint16]int{0x3D: bus.addrs[0x3D]})
	c.Assert(len(bus.data) > 0, qt.IsTrue)
	c.Assert(p.Close(), qt.IsNil)
}

func TestSSD1306RejectsMismatchedFrame(t *testing.T) {
	c := qt.New(t)
	p, err := newSSD1306(&busLog{}, 0x3C, 128, 32)
	c.Assert(err, qt.IsNil)
	c.Assert(p.Show(NewFramebuffer(128, 64)), qt.ErrorMatches, `ssd1306: framebuffer 128x64 does not match panel 128x32`)
}
