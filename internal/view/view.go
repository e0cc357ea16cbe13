package view

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Garsondee/Particle-Field/internal/config"
	"github.com/Garsondee/Particle-Field/internal/field"
)

// State is the loop state of a view.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Options selects and configures the variant a view animates.
type Options struct {
	Variant field.Variant
	Flow    field.FlowOptions
	Drift   field.DriftOptions
	Seed    int64 // 0 seeds from the clock
}

// OptionsFrom converts loaded settings.
func OptionsFrom(cfg config.Config) Options {
	return Options{
		Variant: cfg.VariantKind(),
		Flow:    cfg.FlowOptions(),
		Drift:   cfg.DriftOptions(),
		Seed:    cfg.Seed,
	}
}

// Stats is a point-in-time summary of a view.
type Stats struct {
	ID        string
	State     State
	Variant   field.Variant
	Frames    int
	Particles int
	Width     int
	Height    int
	Dark      bool
	Last      field.StepStats
}

// View owns one particle field bound to a host. All methods are safe for
// concurrent use; frames themselves run one at a time.
type View struct {
	id     string
	host   Host
	logger *log.Logger

	mu       sync.Mutex
	opts     Options
	state    State
	surface  field.Surface
	anim     field.Animator
	pointer  field.Vec
	elements []field.Rect
	dark     bool // drift reads the theme once per mount
	cancels  []func()
	stopCh   chan struct{}
	gen      int // bumped on every mount
	frames   int
	last     field.StepStats
}

// Mount binds a new view to host and starts it. When the host has no
// drawing surface the view comes back Stopped and never draws.
func Mount(host Host, opts Options, logger *log.Logger) *View {
	v := &View{
		id:     uuid.NewString(),
		host:   host,
		logger: logger,
	}
	v.mu.Lock()
	v.mountLocked(opts)
	v.mu.Unlock()
	return v
}

// ID identifies the view in logs.
func (v *View) ID() string { return v.id }

func (v *View) mountLocked(opts Options) {
	v.opts = opts
	surface, err := v.host.Surface()
	if err != nil || surface == nil {
		v.logger.Debug("no drawing surface, background disabled", "view", v.id, "err", err)
		v.state = Stopped
		v.surface, v.anim = nil, nil
		return
	}
	v.surface = surface

	w, h := v.host.Viewport()
	surface.Resize(w, h)

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- cosmetic only
	switch opts.Variant {
	case field.VariantDrift:
		v.anim = field.NewDrift(opts.Drift, w, h, rng)
	default:
		v.anim = field.NewFlow(opts.Flow, w, h, rng)
	}

	v.dark = v.host.Dark()
	v.pointer = field.OffscreenPointer
	v.elements = field.TrackElements(v.host.Elements(), float64(w), float64(h))
	v.frames = 0
	v.last = field.StepStats{}
	v.stopCh = make(chan struct{})
	v.gen++

	v.cancels = append(v.cancels, v.host.Listen(EventResize, v.onResize))
	if opts.Variant == field.VariantDrift {
		v.cancels = append(v.cancels,
			v.host.Listen(EventPointer, v.onPointer),
			v.host.Listen(EventScroll, v.onScroll),
		)
	}
	v.state = Running
	v.logger.Info("view mounted", "view", v.id, "variant", opts.Variant, "particles", v.anim.Store().Len(), "size", [2]int{w, h})
}

func (v *View) onResize(ev Event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != Running {
		return
	}
	v.surface.Resize(ev.Width, ev.Height)
	v.anim.Store().Resize(ev.Width, ev.Height)
	v.elements = field.TrackElements(v.host.Elements(), float64(ev.Width), float64(ev.Height))
	v.logger.Debug("view resized", "view", v.id, "w", ev.Width, "h", ev.Height)
}

func (v *View) onPointer(ev Event) {
	v.mu.Lock()
	v.pointer = field.Vec{X: ev.X, Y: ev.Y}
	v.mu.Unlock()
}

func (v *View) onScroll(Event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != Running {
		return
	}
	w, h := v.surface.Size()
	v.elements = field.TrackElements(v.host.Elements(), float64(w), float64(h))
}

// Frame runs one update/draw iteration. It returns false, without drawing,
// once the view is stopped.
func (v *View) Frame(now time.Time) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != Running {
		return false
	}
	dark := v.dark
	if v.opts.Variant != field.VariantDrift {
		dark = v.host.Dark()
	}
	v.last = v.anim.Step(v.surface, field.Frame{
		Now:      now,
		Dark:     dark,
		Pointer:  v.pointer,
		Elements: v.elements,
	})
	v.frames++
	return true
}

// Run drives Frame from ticks until ctx is done, the channel closes, or the
// view is stopped. When ctx or the channel ends the loop, the view is
// stopped too; a Remount in the meantime is left running.
func (v *View) Run(ctx context.Context, ticks <-chan time.Time) error {
	v.mu.Lock()
	stop, gen := v.stopCh, v.gen
	running := v.state == Running
	v.mu.Unlock()
	if !running {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			v.stopMount(gen)
			return nil
		case <-stop:
			return nil
		case now, ok := <-ticks:
			if !ok {
				v.stopMount(gen)
				return nil
			}
			if !v.Frame(now) {
				return nil
			}
		}
	}
}

// stopMount stops the view only if it is still on mount gen.
func (v *View) stopMount(gen int) {
	v.mu.Lock()
	same := v.gen == gen
	v.mu.Unlock()
	if same {
		v.Stop()
	}
}

// RunAt runs the loop on a ticker at fps frames per second.
func (v *View) RunAt(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 60
	}
	t := time.NewTicker(time.Second / time.Duration(fps))
	defer t.Stop()
	return v.Run(ctx, t.C)
}

// Stop halts the loop and removes every host listener. Calling it again is
// a no-op.
func (v *View) Stop() {
	v.mu.Lock()
	if v.state != Running {
		v.mu.Unlock()
		return
	}
	v.state = Stopped
	cancels := v.cancels
	v.cancels = nil
	close(v.stopCh)
	frames := v.frames
	v.mu.Unlock()

	for _, c := range cancels {
		c()
	}
	v.logger.Info("view stopped", "view", v.id, "frames", frames)
}

// Remount stops the view and mounts it again with opts, rebuilding the field.
func (v *View) Remount(opts Options) {
	v.Stop()
	v.mu.Lock()
	v.mountLocked(opts)
	v.mu.Unlock()
}

// ToggleTheme flips the host theme when the host supports it.
func (v *View) ToggleTheme() {
	t, ok := v.host.(ThemeToggler)
	if !ok {
		return
	}
	t.ToggleTheme()
	v.mu.Lock()
	v.dark = v.host.Dark()
	v.mu.Unlock()
	v.logger.Debug("theme toggled", "view", v.id, "dark", v.host.Dark())
}

// State returns the loop state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Stats returns a summary for HUDs and the preview server.
func (v *View) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	st := Stats{
		ID:      v.id,
		State:   v.state,
		Variant: v.opts.Variant,
		Frames:  v.frames,
		Dark:    v.dark,
		Last:    v.last,
	}
	if v.opts.Variant != field.VariantDrift {
		st.Dark = v.host.Dark()
	}
	if v.anim != nil {
		st.Particles = v.anim.Store().Len()
	}
	if v.surface != nil {
		st.Width, st.Height = v.surface.Size()
	}
	return st
}

// WithSurface runs fn with the surface while no frame is in progress. fn is
// not called when the view never acquired a surface.
func (v *View) WithSurface(fn func(field.Surface)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.surface != nil {
		fn(v.surface)
	}
}

// Particles returns a copy of the current particles.
func (v *View) Particles() []field.Particle {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.anim == nil {
		return nil
	}
	return append([]field.Particle(nil), v.anim.Store().Particles...)
}
