// Package display renders text onto small monochrome displays.
//
// Draw calls accumulate in a framebuffer and reach the panel only on Flush,
// so one reading is shown as one complete frame.
package display

import (
	"errors"
	"image/color"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// ErrEmptyFrame is returned when a render cycle has nothing to draw.
var ErrEmptyFrame = errors.New("render cycle without text")

// Display is a sink that accumulates draws and commits them on Flush.
type Display interface {
	Clear()
	DrawText(text string, x, y int16)
	Flush() error
}

// Panel commits a framebuffer to physical (or simulated) pixels.
type Panel interface {
	Show(fb *Framebuffer) error
}

// Line is one text item of a frame. X and Y are the top-left corner.
type Line struct {
	Text string
	X, Y int16
}

var on = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// fontAscent moves the top-left coordinate of Line onto the font baseline.
const fontAscent = 5

// Canvas draws text into a Framebuffer with tinyfont and hands the buffer to
// a Panel on Flush.
type Canvas struct {
	mu    sync.Mutex
	fb    *Framebuffer
	panel Panel
	font  tinyfont.Fonter
}

var _ drivers.Displayer = (*Framebuffer)(nil)

func NewCanvas(panel Panel, width, height int16) *Canvas {
	return &Canvas{fb: NewFramebuffer(width, height), panel: panel, font: &tinyfont.TomThumb}
}

func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fb.Clear()
}

func (c *Canvas) DrawText(text string, x, y int16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawText(text, x, y)
}

func (c *Canvas) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panel.Show(c.fb)
}

// Render runs a whole render cycle under one lock so concurrent renderers
// cannot interleave their text in the same frame.
func (c *Canvas) Render(lines ...Line) error {
	if len(lines) == 0 {
		return ErrEmptyFrame
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fb.Clear()
	for _, l := range lines {
		c.drawText(l.Text, l.X, l.Y)
	}
	return c.panel.Show(c.fb)
}

func (c *Canvas) drawText(text string, x, y int16) {
	tinyfont.WriteLine(c.fb, c.font, x, y+fontAscent, text, on)
}

type renderer interface {
	Render(lines ...Line) error
}

// Render performs one render cycle on d: exactly one Clear, one DrawText per
// line, then exactly one Flush.
func Render(d Display, lines ...Line) error {
	if len(lines) == 0 {
		return ErrEmptyFrame
	}
	if r, ok := d.(renderer); ok {
		return r.Render(lines...)
	}
	d.Clear()
	for _, l := range lines {
		d.DrawText(l.Text, l.X, l.Y)
	}
	return d.Flush()
}
