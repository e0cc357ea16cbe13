package field

import (
	"errors"
	"image/color"
)

// ErrNoSurface is returned by hosts that cannot provide a drawing surface.
// Callers treat it as "render nothing", never as a fatal error.
var ErrNoSurface = errors.New("drawing surface unavailable")

// Surface is a raster the field paints onto. Coordinates are in pixels with
// the origin at the top-left corner.
type Surface interface {
	Size() (w, h int)
	// Resize sets the pixel dimensions. Existing content may be discarded.
	Resize(w, h int)
	// Clear resets every pixel to transparent.
	Clear()
	// Fill composites c over the whole surface.
	Fill(c color.NRGBA)
	// FillCircle composites a filled disc of radius r centred on (x, y).
	FillCircle(x, y, r float64, c color.NRGBA)
}

// Rect is an axis-aligned box in surface pixels, typically the on-screen
// bounds of an interactive element.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Expand grows r by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{Left: r.Left - d, Top: r.Top - d, Right: r.Right + d, Bottom: r.Bottom + d}
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x <= r.Right && y >= r.Top && y <= r.Bottom
}

// Recorder is a Surface that only counts what is drawn. The headless harness
// and tests use it in place of a real raster.
type Recorder struct {
	W, H    int
	Clears  int
	Fills   int
	Circles int
	// LastFill is the colour of the most recent Fill call.
	LastFill color.NRGBA
	// Keep, when true, retains every circle drawn since the last Clear or Reset.
	Keep  bool
	Drawn []Circle
}

// Circle is one FillCircle call captured by a Recorder.
type Circle struct {
	X, Y, R float64
	C       color.NRGBA
}

// NewRecorder returns a recorder of the given size.
func NewRecorder(w, h int) *Recorder {
	return &Recorder{W: w, H: h}
}

func (r *Recorder) Size() (int, int) { return r.W, r.H }

func (r *Recorder) Resize(w, h int) {
	r.W, r.H = w, h
	r.Drawn = r.Drawn[:0]
}

func (r *Recorder) Clear() {
	r.Clears++
	r.Drawn = r.Drawn[:0]
}

func (r *Recorder) Fill(c color.NRGBA) {
	r.Fills++
	r.LastFill = c
}

func (r *Recorder) FillCircle(x, y, rad float64, c color.NRGBA) {
	r.Circles++
	if r.Keep {
		r.Drawn = append(r.Drawn, Circle{X: x, Y: y, R: rad, C: c})
	}
}

// Reset zeroes the counters and drops captured circles.
func (r *Recorder) Reset() {
	r.Clears, r.Fills, r.Circles = 0, 0, 0
	r.Drawn = r.Drawn[:0]
}
