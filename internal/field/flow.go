package field

import (
	"math"
	"math/rand"
	"time"

	"github.com/Garsondee/Particle-Field/internal/noise"
)

// Frame carries everything a step reads from the host for one iteration.
// Hosts build a fresh value every frame instead of the step querying globals.
type Frame struct {
	Now      time.Time
	Dark     bool
	Pointer  Vec
	Elements []Rect
}

// StepStats summarises one frame.
type StepStats struct {
	Respawned int
	Glowing   int
	Drawn     int
}

// Animator is one particle variant: a store plus the rule that advances it.
type Animator interface {
	Store() *Store
	Step(s Surface, f Frame) StepStats
}

const (
	flowSpeed     = 2.0
	flowTimeScale = 0.0001 // noise z per millisecond of wall clock
	flowTurns     = 4 * math.Pi
)

// FlowOptions configures the noise-driven variant.
type FlowOptions struct {
	Count          int
	Size           SizeRange
	NoiseIntensity float64
	Colors         Overrides
	Noise          noise.Sampler // nil selects noise.Default
}

// DefaultFlowOptions mirrors the background's stock settings.
func DefaultFlowOptions() FlowOptions {
	return FlowOptions{
		Count:          2000,
		Size:           SizeRange{Min: 0.5, Max: 2},
		NoiseIntensity: 0.003,
	}
}

// Flow steers particles along a slowly evolving noise field and paints them
// with a life-curve fade over translucent trails.
type Flow struct {
	store *Store
	opts  FlowOptions
	noise noise.Sampler
}

// NewFlow builds a flow field over a w x h surface.
func NewFlow(opts FlowOptions, w, h int, rng *rand.Rand) *Flow {
	n := opts.Noise
	if n == nil {
		n = noise.Default
	}
	return &Flow{
		store: NewStore(opts.Count, opts.Size, w, h, InitZero, rng),
		opts:  opts,
		noise: n,
	}
}

func (f *Flow) Store() *Store { return f.store }

// Step advances every particle by one frame and draws it.
func (f *Flow) Step(s Surface, fr Frame) StepStats {
	pal := FlowPalette(fr.Dark).With(f.opts.Colors)
	s.Fill(pal.Trail)

	t := float64(fr.Now.UnixMilli()) * flowTimeScale
	var st StepStats
	for i := range f.store.Particles {
		p := &f.store.Particles[i]
		if f.store.age(p) {
			st.Respawned++
		}

		n := noise.Sample(f.noise, p.Pos.X, p.Pos.Y, f.opts.NoiseIntensity, t)
		angle := n * flowTurns
		p.Vel = Vec{X: math.Cos(angle) * flowSpeed, Y: math.Sin(angle) * flowSpeed}
		f.store.move(p)

		s.FillCircle(p.Pos.X, p.Pos.Y, p.Size, withAlpha(pal.Particle, lifeOpacity(p, pal.PeakOpacity)))
		st.Drawn++
	}
	return st
}

// lifeOpacity fades a particle in at birth and out at death, peaking mid-life.
func lifeOpacity(p *Particle, peak float64) float64 {
	if p.MaxLife <= 0 {
		return 0
	}
	return math.Sin(p.Life/p.MaxLife*math.Pi) * peak
}
