package display

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

// TextPanel prints frames to a terminal using half-block characters, two
// pixel rows per text row.
type TextPanel struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTextPanel(w io.Writer) *TextPanel { return &TextPanel{w: w} }

func (p *TextPanel) Show(fb *Framebuffer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, h := fb.Size()
	bw := bufio.NewWriter(p.w)
	border := "+" + strings.Repeat("-", int(w)) + "+\n"
	bw.WriteString(border)
	for y := int16(0); y < h; y += 2 {
		bw.WriteByte('|')
		for x := int16(0); x < w; x++ {
			top, bottom := fb.Pixel(x, y), fb.Pixel(x, y+1)
			switch {
			case top && bottom:
				bw.WriteString("█")
			case top:
				bw.WriteString("▀")
			case bottom:
				bw.WriteString("▄")
			default:
				bw.WriteByte(' ')
			}
		}
		bw.WriteString("|\n")
	}
	bw.WriteString(border)
	return bw.Flush()
}
