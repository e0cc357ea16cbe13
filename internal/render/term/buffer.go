// Package term renders the particle field in a terminal with tcell. Each
// cell stands for one CellW x CellH pixel block whose background colour is
// the block's blended paint.
package term

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
)

const (
	CellW = 8
	CellH = 16

	// sub-samples per cell axis for discs larger than a cell
	subX = 2
	subY = 4
)

// rgba is a premultiplied colour in [0,1].
type rgba struct{ r, g, b, a float64 }

func (d *rgba) over(s rgba, cov float64) {
	s.r, s.g, s.b, s.a = s.r*cov, s.g*cov, s.b*cov, s.a*cov
	k := 1 - s.a
	d.r = s.r + d.r*k
	d.g = s.g + d.g*k
	d.b = s.b + d.b*k
	d.a = s.a + d.a*k
}

func premul(c color.NRGBA) rgba {
	a := float64(c.A) / 255
	return rgba{r: float64(c.R) / 255 * a, g: float64(c.G) / 255 * a, b: float64(c.B) / 255 * a, a: a}
}

// Buffer is a field.Surface with one blended colour per terminal cell.
type Buffer struct {
	cols, rows int
	cells      []rgba
}

// NewBuffer returns a buffer for a cols x rows terminal.
func NewBuffer(cols, rows int) *Buffer {
	b := &Buffer{}
	b.Resize(cols*CellW, rows*CellH)
	return b
}

// Size reports the pixel size the cells stand for.
func (b *Buffer) Size() (int, int) { return b.cols * CellW, b.rows * CellH }

// Cells reports the grid size.
func (b *Buffer) Cells() (cols, rows int) { return b.cols, b.rows }

// Resize takes pixel dimensions and rounds them up to whole cells.
func (b *Buffer) Resize(w, h int) {
	b.cols = max(0, (w+CellW-1)/CellW)
	b.rows = max(0, (h+CellH-1)/CellH)
	b.cells = make([]rgba, b.cols*b.rows)
}

func (b *Buffer) Clear() {
	clear(b.cells)
}

func (b *Buffer) Fill(c color.NRGBA) {
	s := premul(c)
	for i := range b.cells {
		b.cells[i].over(s, 1)
	}
}

// FillCircle adds the disc's coverage to the cells it overlaps. Discs that
// fit inside one cell tint it by their area fraction.
func (b *Buffer) FillCircle(x, y, r float64, c color.NRGBA) {
	if r <= 0 || c.A == 0 || b.cols == 0 || b.rows == 0 {
		return
	}
	s := premul(c)
	c0, c1 := int(math.Floor((x-r)/CellW)), int(math.Floor((x+r)/CellW))
	r0, r1 := int(math.Floor((y-r)/CellH)), int(math.Floor((y+r)/CellH))
	if c0 == c1 && r0 == r1 {
		if c0 >= 0 && c0 < b.cols && r0 >= 0 && r0 < b.rows {
			cov := math.Min(1, math.Pi*r*r/(CellW*CellH))
			b.cells[r0*b.cols+c0].over(s, cov)
		}
		return
	}
	r2 := r * r
	for row := max(r0, 0); row <= min(r1, b.rows-1); row++ {
		for col := max(c0, 0); col <= min(c1, b.cols-1); col++ {
			hits := 0
			for sy := 0; sy < subY; sy++ {
				py := float64(row*CellH) + (float64(sy)+0.5)*CellH/subY
				for sx := 0; sx < subX; sx++ {
					px := float64(col*CellW) + (float64(sx)+0.5)*CellW/subX
					if dx, dy := px-x, py-y; dx*dx+dy*dy <= r2 {
						hits++
					}
				}
			}
			if hits > 0 {
				b.cells[row*b.cols+col].over(s, float64(hits)/(subX*subY))
			}
		}
	}
}

// At returns the cell colour composited over base.
func (b *Buffer) At(col, row int, base color.NRGBA) (r, g, bl int32) {
	c := b.cells[row*b.cols+col]
	bs := premul(base)
	k := 1 - c.a
	to := func(v float64) int32 { return int32(math.Round(math.Min(1, math.Max(0, v)) * 255)) }
	return to(c.r + bs.r*k), to(c.g + bs.g*k), to(c.b + bs.b*k)
}

// Flush paints every cell's background onto screen. It does not call Show.
func (b *Buffer) Flush(screen tcell.Screen, base color.NRGBA) {
	sw, sh := screen.Size()
	for row := 0; row < min(b.rows, sh); row++ {
		for col := 0; col < min(b.cols, sw); col++ {
			r, g, bl := b.At(col, row, base)
			st := tcell.StyleDefault.Background(tcell.NewRGBColor(r, g, bl))
			screen.SetContent(col, row, ' ', nil, st)
		}
	}
}
