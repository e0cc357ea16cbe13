// Package field simulates the animated particle background: a fixed-size
// particle store and the per-frame steps that move and paint it.
package field

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Vec is a 2D vector in surface pixels.
type Vec struct {
	X, Y float64
}

// Particle is one animated point.
type Particle struct {
	Pos     Vec
	Size    float64 // radius in pixels, fixed at creation
	Vel     Vec
	Life    float64
	MaxLife float64
	Glowing bool // proximity variant only, recomputed every frame
}

// SizeRange bounds particle radii.
type SizeRange struct {
	Min float64 `toml:"min,omitzero" json:"min"`
	Max float64 `toml:"max,omitzero" json:"max"`
}

// Validate rejects empty or inverted ranges.
func (r SizeRange) Validate() error {
	if r.Min <= 0 || r.Max <= 0 {
		return fmt.Errorf("particle size must be positive, got [%g, %g]", r.Min, r.Max)
	}
	if r.Min > r.Max {
		return fmt.Errorf("particle size min %g exceeds max %g", r.Min, r.Max)
	}
	return nil
}

// Variant selects the motion rule.
type Variant string

const (
	// VariantFlow steers particles along a time-varying noise field.
	VariantFlow Variant = "flow"
	// VariantDrift moves particles at constant velocity and lights them up
	// near the pointer or tracked elements.
	VariantDrift Variant = "drift"
)

// ParseVariant maps a config string to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantFlow, "":
		return VariantFlow, nil
	case VariantDrift:
		return VariantDrift, nil
	}
	return "", fmt.Errorf("unknown variant %q (supported: flow, drift)", s)
}

// Init selects how a new particle's velocity is seeded.
type Init int

const (
	InitZero  Init = iota // flow: velocity is recomputed every frame
	InitDrift             // drift: constant random velocity
)

// Life counters: life starts in [0, lifeSpread), maxLife in [lifeBase, lifeBase+maxLifeSpread).
const (
	lifeSpread    = 100
	lifeBase      = 100
	maxLifeSpread = 50
	driftSpeed    = 0.5
)

// Store owns a fixed-size set of particles spread over a surface.
type Store struct {
	Particles []Particle

	width, height float64
	size          SizeRange
	init          Init
	rng           *rand.Rand
}

// NewStore creates n particles over a w x h surface.
func NewStore(n int, size SizeRange, w, h int, init Init, rng *rand.Rand) *Store {
	if n < 0 {
		n = 0
	}
	s := &Store{
		Particles: make([]Particle, n),
		size:      size,
		init:      init,
		rng:       rng,
	}
	s.Resize(w, h)
	return s
}

// Resize discards every particle and rebuilds the same count over the new
// dimensions.
func (s *Store) Resize(w, h int) {
	s.width = float64(max(w, 0))
	s.height = float64(max(h, 0))
	for i := range s.Particles {
		s.Particles[i] = s.spawn()
	}
}

// Bounds returns the current surface dimensions.
func (s *Store) Bounds() (w, h float64) {
	return s.width, s.height
}

// Len returns the particle count.
func (s *Store) Len() int { return len(s.Particles) }

func (s *Store) spawn() Particle {
	p := Particle{
		Pos:     s.randomPos(),
		Size:    s.size.Min + s.rng.Float64()*(s.size.Max-s.size.Min),
		Life:    s.rng.Float64() * lifeSpread,
		MaxLife: lifeBase + s.rng.Float64()*maxLifeSpread,
	}
	if s.init == InitDrift {
		p.Vel = Vec{
			X: (s.rng.Float64() - 0.5) * driftSpeed,
			Y: (s.rng.Float64() - 0.5) * driftSpeed,
		}
	}
	return p
}

func (s *Store) randomPos() Vec {
	return Vec{
		X: wrap(s.rng.Float64()*s.width, s.width),
		Y: wrap(s.rng.Float64()*s.height, s.height),
	}
}

// age advances p's life by one frame and respawns it when it expires.
// Reports whether a respawn happened.
func (s *Store) age(p *Particle) bool {
	p.Life++
	if p.Life > p.MaxLife {
		p.Life = 0
		p.Pos = s.randomPos()
		return true
	}
	return false
}

// move integrates p's velocity and wraps it back onto the surface.
func (s *Store) move(p *Particle) {
	p.Pos.X = wrap(p.Pos.X+p.Vel.X, s.width)
	p.Pos.Y = wrap(p.Pos.Y+p.Vel.Y, s.height)
}

// wrap maps v into [0, limit). A zero-sized axis collapses to 0.
func wrap(v, limit float64) float64 {
	if limit <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	v = math.Mod(v, limit)
	if v < 0 {
		v += limit
	}
	if v >= limit {
		v = 0
	}
	return v
}

// InBounds reports whether every particle satisfies the position and life
// invariants. It returns a description of the first violation.
func (s *Store) InBounds() (bool, string) {
	for i, p := range s.Particles {
		if math.IsNaN(p.Pos.X) || math.IsNaN(p.Pos.Y) {
			return false, fmt.Sprintf("particle %d has NaN position", i)
		}
		if s.width > 0 && (p.Pos.X < 0 || p.Pos.X >= s.width) {
			return false, fmt.Sprintf("particle %d x=%g outside [0,%g)", i, p.Pos.X, s.width)
		}
		if s.height > 0 && (p.Pos.Y < 0 || p.Pos.Y >= s.height) {
			return false, fmt.Sprintf("particle %d y=%g outside [0,%g)", i, p.Pos.Y, s.height)
		}
		if p.Life < 0 || p.Life > p.MaxLife {
			return false, fmt.Sprintf("particle %d life=%g outside [0,%g]", i, p.Life, p.MaxLife)
		}
	}
	return true, ""
}
