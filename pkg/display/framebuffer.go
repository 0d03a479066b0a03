package display

import "image/color"

// Framebuffer is a monochrome buffer laid out in 8-pixel vertical pages, the
// native memory layout of SSD1306-class controllers. It implements
// drivers.Displayer so font renderers can draw into it.
type Framebuffer struct {
	width, height int16
	pix           []byte
}

func NewFramebuffer(width, height int16) *Framebuffer {
	pages := (int(height) + 7) / 8
	return &Framebuffer{width: width, height: height, pix: make([]byte, int(width)*pages)}
}

func (f *Framebuffer) Size() (int16, int16) { return f.width, f.height }

// SetPixel lights the pixel for any non-black color.
func (f *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return
	}
	i := int(x) + int(y/8)*int(f.width)
	if c.R != 0 || c.G != 0 || c.B != 0 {
		f.pix[i] |= 1 << uint(y%8)
	} else {
		f.pix[i] &^= 1 << uint(y%8)
	}
}

// Display is a no-op; committing the buffer is the panel's job.
func (f *Framebuffer) Display() error { return nil }

func (f *Framebuffer) Pixel(x, y int16) bool {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return false
	}
	return f.pix[int(x)+int(y/8)*int(f.width)]&(1<<uint(y%8)) != 0
}

func (f *Framebuffer) Clear() {
	for i := range f.pix {
		f.pix[i] = 0
	}
}

// Pages returns the raw page buffer. Callers must not keep it across draws.
func (f *Framebuffer) Pages() []byte { return f.pix }

// Lit counts the pixels that are on.
func (f *Framebuffer) Lit() int {
	n := 0
	for _, b := range f.pix {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return n
}
