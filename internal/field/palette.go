package field

import (
	"image/color"
	"math"
)

// Palette holds the colours for one theme. Alpha channels are the values used
// verbatim when drawing, except for the flow variant's particle colour, whose
// alpha is replaced by the life curve.
type Palette struct {
	Trail    color.NRGBA
	Particle color.NRGBA
	Glow     color.NRGBA
	// PeakOpacity caps the flow variant's life-curve opacity.
	PeakOpacity float64
}

// Overrides replaces palette entries when non-nil.
type Overrides struct {
	Particle *color.NRGBA
	Glow     *color.NRGBA
}

// FlowPalette returns the noise-driven variant's colours.
func FlowPalette(dark bool) Palette {
	if dark {
		return Palette{
			Trail:       rgba(0, 0, 0, 0.1),
			Particle:    rgba(255, 255, 255, 1),
			PeakOpacity: 0.15,
		}
	}
	return Palette{
		Trail:       rgba(245, 245, 245, 0.1),
		Particle:    rgba(60, 60, 70, 1),
		PeakOpacity: 0.2,
	}
}

// DriftPalette returns the proximity variant's colours.
func DriftPalette(dark bool) Palette {
	if dark {
		return Palette{
			Trail:    rgba(0, 0, 0, 0.05),
			Particle: rgba(255, 255, 255, 0.07),
			Glow:     rgba(138, 180, 248, 0.2),
		}
	}
	return Palette{
		Trail:    rgba(255, 255, 255, 0.05),
		Particle: rgba(0, 0, 0, 0.07),
		Glow:     rgba(66, 135, 245, 0.2),
	}
}

// With applies o on top of p.
func (p Palette) With(o Overrides) Palette {
	if o.Particle != nil {
		p.Particle = *o.Particle
	}
	if o.Glow != nil {
		p.Glow = *o.Glow
	}
	return p
}

func rgba(r, g, b uint8, a float64) color.NRGBA {
	return withAlpha(color.NRGBA{R: r, G: g, B: b}, a)
}

// withAlpha sets c's alpha from a [0,1] opacity.
func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	switch {
	case math.IsNaN(a) || a <= 0:
		a = 0
	case a > 1:
		a = 1
	}
	c.A = uint8(math.Round(a * 255))
	return c
}
