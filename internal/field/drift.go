package field

import (
	"math/rand"
)

// GlowOptions tunes the proximity highlight.
type GlowOptions struct {
	MouseRadius    float64 `toml:"mouse_radius" json:"mouse_radius"`
	ElementRadius  float64 `toml:"element_radius" json:"element_radius"`
	SizeMultiplier float64 `toml:"size_multiplier" json:"size_multiplier"`
	Stationary     bool    `toml:"stationary" json:"stationary"`
}

// DefaultGlow returns the stock highlight settings.
func DefaultGlow() GlowOptions {
	return GlowOptions{MouseRadius: 100, ElementRadius: 20, SizeMultiplier: 2}
}

// OffscreenPointer is where the pointer sits before the host reports one.
var OffscreenPointer = Vec{X: -1000, Y: -1000}

// Minimum element extent worth tracking, in pixels.
const minElementExtent = 10

// DriftOptions configures the proximity variant.
type DriftOptions struct {
	Count  int
	Size   SizeRange
	Glow   GlowOptions
	Colors Overrides
}

// DefaultDriftOptions mirrors the simple background's stock settings.
func DefaultDriftOptions() DriftOptions {
	return DriftOptions{
		Count: 2000,
		Size:  SizeRange{Min: 0.1, Max: 1.6},
		Glow:  DefaultGlow(),
	}
}

// Drift moves particles at constant velocity and highlights those near the
// pointer or near tracked element boxes.
type Drift struct {
	store *Store
	opts  DriftOptions
}

// NewDrift builds a drift field over a w x h surface.
func NewDrift(opts DriftOptions, w, h int, rng *rand.Rand) *Drift {
	return &Drift{
		store: NewStore(opts.Count, opts.Size, w, h, InitDrift, rng),
		opts:  opts,
	}
}

func (d *Drift) Store() *Store { return d.store }

// Step tests every particle for glow, moves it, and draws it.
func (d *Drift) Step(s Surface, fr Frame) StepStats {
	pal := DriftPalette(fr.Dark).With(d.opts.Colors)
	s.Clear()
	s.Fill(pal.Trail)

	g := d.opts.Glow
	var st StepStats
	for i := range d.store.Particles {
		p := &d.store.Particles[i]
		p.Glowing = Glows(p.Pos, fr.Pointer, fr.Elements, g)
		if p.Glowing {
			st.Glowing++
		}

		if !g.Stationary {
			d.store.move(p)
		}

		if p.Glowing {
			s.FillCircle(p.Pos.X, p.Pos.Y, p.Size*g.SizeMultiplier, pal.Glow)
		} else {
			s.FillCircle(p.Pos.X, p.Pos.Y, p.Size, pal.Particle)
		}
		st.Drawn++
	}
	return st
}

// Glows reports whether a particle at pos is within g.MouseRadius of the
// pointer (strictly) or inside any element box grown by g.ElementRadius.
func Glows(pos, pointer Vec, elements []Rect, g GlowOptions) bool {
	dx := pos.X - pointer.X
	dy := pos.Y - pointer.Y
	if dx*dx+dy*dy < g.MouseRadius*g.MouseRadius {
		return true
	}
	for _, r := range elements {
		if r.Expand(g.ElementRadius).Contains(pos.X, pos.Y) {
			return true
		}
	}
	return false
}

// TrackElements keeps the boxes worth glowing around: larger than 10px on
// both axes and at least partly inside the vw x vh viewport.
func TrackElements(rects []Rect, vw, vh float64) []Rect {
	out := make([]Rect, 0, len(rects))
	for _, r := range rects {
		if r.Width() <= minElementExtent || r.Height() <= minElementExtent {
			continue
		}
		if r.Top >= vh || r.Bottom <= 0 || r.Left >= vw || r.Right <= 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}
