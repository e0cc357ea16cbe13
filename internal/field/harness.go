package field

import (
	"fmt"
	"math/rand"
	"time"
)

// harnessFrameInterval is the synthetic clock step, one 60 Hz display frame.
const harnessFrameInterval = time.Second / 60

// Harness runs a field headlessly against a Recorder surface with a
// synthetic clock. Tests and the headless report drive it.
type Harness struct {
	Width    int
	Height   int
	Variant  Variant
	Flow     FlowOptions
	Drift    DriftOptions
	Dark     bool
	Pointer  Vec
	Elements []Rect
	Surface  *Recorder
	SimLog   *SimLog
	Frame    int

	anim  Animator
	rng   *rand.Rand
	clock time.Time
}

// harnessOptionKind controls the pass in which an option is applied.
type harnessOptionKind int

const (
	harnessOptInfra harnessOptionKind = iota // size, seed, variant, counts; applied before the field is built
	harnessOptScene                          // pointer, elements; applied after
)

// HarnessOption is a builder function applied to a Harness during construction.
type HarnessOption struct {
	kind harnessOptionKind
	fn   func(*Harness)
}

// WithSurfaceSize sets the surface dimensions.
func WithSurfaceSize(w, h int) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.Width = w
		hs.Height = h
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- test harness
	}}
}

// WithVerbose enables per-frame counters in the SimLog.
func WithVerbose(v bool) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.SimLog = NewSimLog(v)
	}}
}

// WithVariant selects flow or drift.
func WithVariant(v Variant) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.Variant = v
	}}
}

// WithCount sets the particle count for both variants.
func WithCount(n int) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.Flow.Count = n
		hs.Drift.Count = n
	}}
}

// WithSizeRange sets the particle radius range for both variants.
func WithSizeRange(lo, hi float64) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.Flow.Size = SizeRange{Min: lo, Max: hi}
		hs.Drift.Size = SizeRange{Min: lo, Max: hi}
	}}
}

// WithNoiseIntensity sets the flow variant's spatial noise scale.
func WithNoiseIntensity(k float64) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.Flow.NoiseIntensity = k
	}}
}

// WithGlow sets the drift variant's highlight options.
func WithGlow(g GlowOptions) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.Drift.Glow = g
	}}
}

// WithDark selects the dark palette.
func WithDark(dark bool) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.Dark = dark
	}}
}

// WithPointer fixes the pointer position.
func WithPointer(x, y float64) HarnessOption {
	return HarnessOption{harnessOptScene, func(hs *Harness) {
		hs.Pointer = Vec{X: x, Y: y}
	}}
}

// WithElement adds a tracked element box.
func WithElement(left, top, right, bottom float64) HarnessOption {
	return HarnessOption{harnessOptScene, func(hs *Harness) {
		hs.Elements = append(hs.Elements, Rect{Left: left, Top: top, Right: right, Bottom: bottom})
	}}
}

// NewHarness constructs a Harness in two passes: infrastructure options,
// then the field, then scene options.
func NewHarness(opts ...HarnessOption) *Harness {
	hs := &Harness{
		Width:   1280,
		Height:  720,
		Variant: VariantFlow,
		Flow:    DefaultFlowOptions(),
		Drift:   DefaultDriftOptions(),
		Dark:    true,
		Pointer: OffscreenPointer,
		SimLog:  NewSimLog(false),
		rng:     rand.New(rand.NewSource(1)), // #nosec G404 -- test harness default
		clock:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, o := range opts {
		if o.kind == harnessOptInfra {
			o.fn(hs)
		}
	}
	hs.Surface = NewRecorder(hs.Width, hs.Height)
	hs.build()
	for _, o := range opts {
		if o.kind == harnessOptScene {
			o.fn(hs)
		}
	}
	return hs
}

func (hs *Harness) build() {
	switch hs.Variant {
	case VariantDrift:
		hs.anim = NewDrift(hs.Drift, hs.Width, hs.Height, hs.rng)
	default:
		hs.anim = NewFlow(hs.Flow, hs.Width, hs.Height, hs.rng)
	}
	hs.SimLog.Add(hs.Frame, "surface", "init",
		fmt.Sprintf("%dx%d %s n=%d", hs.Width, hs.Height, hs.Variant, hs.anim.Store().Len()), float64(hs.anim.Store().Len()))
}

// Store exposes the particles under simulation.
func (hs *Harness) Store() *Store { return hs.anim.Store() }

// Step runs one frame.
func (hs *Harness) Step() StepStats {
	hs.Frame++
	hs.clock = hs.clock.Add(harnessFrameInterval)
	st := hs.anim.Step(hs.Surface, Frame{
		Now:      hs.clock,
		Dark:     hs.Dark,
		Pointer:  hs.Pointer,
		Elements: hs.Elements,
	})
	if st.Respawned > 0 {
		hs.SimLog.AddVerbose(hs.Frame, "lifecycle", "respawn", fmt.Sprintf("%d particles", st.Respawned), float64(st.Respawned))
	}
	if st.Glowing > 0 {
		hs.SimLog.AddVerbose(hs.Frame, "glow", "count", fmt.Sprintf("%d particles", st.Glowing), float64(st.Glowing))
	}
	if ok, why := hs.Store().InBounds(); !ok {
		hs.SimLog.Add(hs.Frame, "invariant", "violation", why, 1)
	}
	return st
}

// RunFrames advances n frames and returns the summed stats.
func (hs *Harness) RunFrames(n int) StepStats {
	var total StepStats
	for i := 0; i < n; i++ {
		st := hs.Step()
		total.Respawned += st.Respawned
		total.Glowing += st.Glowing
		total.Drawn += st.Drawn
	}
	return total
}

// Resize mimics a host resize: the surface is resized and the field rebuilt.
func (hs *Harness) Resize(w, h int) {
	hs.Width, hs.Height = w, h
	hs.Surface.Resize(w, h)
	hs.Store().Resize(w, h)
	hs.SimLog.Add(hs.Frame, "surface", "resize", fmt.Sprintf("%dx%d", w, h), float64(w*h))
}

// Violations returns every recorded invariant violation.
func (hs *Harness) Violations() []SimLogEntry {
	return hs.SimLog.Filter("invariant", "violation")
}
