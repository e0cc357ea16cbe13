package view

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Garsondee/Particle-Field/internal/field"
)

type fakeHost struct {
	Listeners
	surface  *field.Recorder
	noSurf   bool
	w, h     int
	dark     bool
	elements []field.Rect
	listens  int
	cancels  int
}

func newFakeHost(w, h int) *fakeHost {
	return &fakeHost{surface: field.NewRecorder(0, 0), w: w, h: h, dark: true}
}

func (f *fakeHost) Surface() (field.Surface, error) {
	if f.noSurf {
		return nil, field.ErrNoSurface
	}
	return f.surface, nil
}

func (f *fakeHost) Viewport() (int, int) { return f.w, f.h }
func (f *fakeHost) Dark() bool { return f.dark }
func (f *fakeHost) Elements() []field.Rect { return f.elements }
func (f *fakeHost) ToggleTheme() { f.dark = !f.dark }
func (f *fakeHost) total() int { return f.Count(EventResize) + f.Count(EventPointer) + f.Count(EventScroll) }
func (f *fakeHost) emit(ev Event) { f.Emit(ev) }
func (f *fakeHost) setViewport(w, h int) { f.w, f.h = w, h }
func (f *fakeHost) addElement(r field.Rect) { f.elements = append(f.elements, r) }
func (f *fakeHost) surfaceSize() (int, int) { return f.surface.Size() }
func (f *fakeHost) circles() int { return f.surface.Circles }
func (f *fakeHost) fills() int { return f.surface.Fills }

func (f *fakeHost) Listen(kind EventKind, fn func(Event)) func() {
	f.listens++
	cancel := f.Listeners.Listen(kind, fn)
	return func() {
		f.cancels++
		cancel()
	}
}

func quiet() *log.Logger { return log.New(io.Discard) }

func flowOpts(n int) Options {
	o := field.DefaultFlowOptions()
	o.Count = n
	return Options{Variant: field.VariantFlow, Flow: o, Seed: 1}
}

func driftOpts(n int) Options {
	o := field.DefaultDriftOptions()
	o.Count = n
	return Options{Variant: field.VariantDrift, Drift: o, Seed: 1}
}

func TestMount_SizesSurfaceToViewport(t *testing.T) {
	h := newFakeHost(800, 600)
	v := Mount(h, flowOpts(50), quiet())

	assert.Equal(t, Running, v.State())
	w, ht := h.surfaceSize()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, ht)
	assert.Len(t, v.Particles(), 50)
	assert.NotEmpty(t, v.ID())
}

func TestMount_NoSurfaceIsSilentNoop(t *testing.T) {
	h := newFakeHost(800, 600)
	h.noSurf = true
	v := Mount(h, driftOpts(50), quiet())

	assert.Equal(t, Stopped, v.State())
	assert.Zero(t, h.listens, "no listeners registered without a surface")
	assert.False(t, v.Frame(time.Now()))
	assert.Nil(t, v.Particles())
	require.NoError(t, v.Run(context.Background(), make(chan time.Time)))
	v.Stop()
	assert.Zero(t, h.cancels)
}

func TestFrame_DrawsWhileRunning(t *testing.T) {
	h := newFakeHost(320, 240)
	v := Mount(h, flowOpts(30), quiet())

	require.True(t, v.Frame(time.Now()))
	assert.Equal(t, 1, h.fills())
	assert.Equal(t, 30, h.circles())
	assert.Equal(t, 1, v.Stats().Frames)
}

func TestStop_NoDrawsAfterTeardown(t *testing.T) {
	h := newFakeHost(320, 240)
	v := Mount(h, driftOpts(30), quiet())
	require.True(t, v.Frame(time.Now()))

	v.Stop()
	fills, circles := h.fills(), h.circles()
	for i := 0; i < 5; i++ {
		assert.False(t, v.Frame(time.Now()))
	}
	assert.Equal(t, fills, h.fills())
	assert.Equal(t, circles, h.circles())
}

func TestStop_RemovesListenersExactlyOnce(t *testing.T) {
	h := newFakeHost(320, 240)
	v := Mount(h, driftOpts(10), quiet())
	require.Equal(t, 3, h.total(), "drift listens for resize, pointer and scroll")

	v.Stop()
	v.Stop()
	v.Stop()
	assert.Equal(t, Stopped, v.State())
	assert.Zero(t, h.total())
	assert.Equal(t, 3, h.cancels)
}

func TestFlow_ListensOnlyForResize(t *testing.T) {
	h := newFakeHost(320, 240)
	v := Mount(h, flowOpts(10), quiet())
	defer v.Stop()
	assert.Equal(t, 1, h.Count(EventResize))
	assert.Zero(t, h.Count(EventPointer))
	assert.Zero(t, h.Count(EventScroll))
}

func TestResize_ResizesSurfaceAndReinitialises(t *testing.T) {
	h := newFakeHost(320, 240)
	v := Mount(h, flowOpts(40), quiet())
	defer v.Stop()

	h.setViewport(100, 50)
	h.emit(Event{Kind: EventResize, Width: 100, Height: 50})

	w, ht := h.surfaceSize()
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, ht)
	ps := v.Particles()
	require.Len(t, ps, 40)
	for _, p := range ps {
		assert.True(t, p.Pos.X >= 0 && p.Pos.X < 100, "x=%v", p.Pos.X)
		assert.True(t, p.Pos.Y >= 0 && p.Pos.Y < 50, "y=%v", p.Pos.Y)
	}
}

func TestResize_IgnoredAfterStop(t *testing.T) {
	h := newFakeHost(320, 240)
	v := Mount(h, flowOpts(10), quiet())
	v.Stop()

	h.emit(Event{Kind: EventResize, Width: 10, Height: 10})
	w, _ := h.surfaceSize()
	assert.Equal(t, 320, w)
}

func TestDrift_PointerDrivesGlow(t *testing.T) {
	h := newFakeHost(400, 400)
	opts := driftOpts(200)
	opts.Drift.Glow.MouseRadius = 1000
	opts.Drift.Glow.Stationary = true
	v := Mount(h, opts, quiet())
	defer v.Stop()

	require.True(t, v.Frame(time.Now()))
	assert.Zero(t, v.Stats().Last.Glowing, "pointer starts offscreen")

	h.emit(Event{Kind: EventPointer, X: 200, Y: 200})
	require.True(t, v.Frame(time.Now()))
	assert.Equal(t, 200, v.Stats().Last.Glowing)
}

func TestDrift_ScrollRefreshesElements(t *testing.T) {
	h := newFakeHost(400, 400)
	opts := driftOpts(300)
	opts.Drift.Glow.Stationary = true
	v := Mount(h, opts, quiet())
	defer v.Stop()

	require.True(t, v.Frame(time.Now()))
	assert.Zero(t, v.Stats().Last.Glowing)

	h.addElement(field.Rect{Left: 0, Top: 0, Right: 400, Bottom: 400})
	h.emit(Event{Kind: EventScroll})
	require.True(t, v.Frame(time.Now()))
	assert.Equal(t, 300, v.Stats().Last.Glowing)
}

func TestTheme_FlowReadsEveryFrameDriftAtMount(t *testing.T) {
	hf := newFakeHost(100, 100)
	flow := Mount(hf, flowOpts(5), quiet())
	defer flow.Stop()
	hf.dark = false
	require.True(t, flow.Frame(time.Now()))
	assert.Equal(t, uint8(245), hf.surface.LastFill.R, "flow picks up the light trail at once")

	hd := newFakeHost(100, 100)
	drift := Mount(hd, driftOpts(5), quiet())
	defer drift.Stop()
	hd.dark = false
	require.True(t, drift.Frame(time.Now()))
	assert.Equal(t, uint8(0), hd.surface.LastFill.R, "drift keeps the theme it mounted with")

	drift.ToggleTheme()
	assert.True(t, hd.dark)
	drift.ToggleTheme()
	require.True(t, drift.Frame(time.Now()))
	assert.Equal(t, uint8(255), hd.surface.LastFill.R, "toggling re-reads the theme")
}

func TestRemount_RebuildsWithNewOptions(t *testing.T) {
	h := newFakeHost(200, 200)
	v := Mount(h, flowOpts(10), quiet())
	v.Remount(driftOpts(25))

	assert.Equal(t, Running, v.State())
	assert.Len(t, v.Particles(), 25)
	assert.Equal(t, field.VariantDrift, v.Stats().Variant)
	assert.Equal(t, 3, h.total())
	v.Stop()
	assert.Zero(t, h.total())
}

func TestRun_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newFakeHost(100, 100)
	v := Mount(h, flowOpts(5), quiet())
	ticks := make(chan time.Time)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx, ticks) }()

	for i := 0; i < 3; i++ {
		ticks <- time.Now()
	}
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, Stopped, v.State())
	assert.GreaterOrEqual(t, v.Stats().Frames, 2)
	assert.Zero(t, h.total())
}

func TestRun_ReturnsWhenStoppedElsewhere(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newFakeHost(100, 100)
	v := Mount(h, flowOpts(5), quiet())
	done := make(chan error, 1)
	go func() { done <- v.RunAt(context.Background(), 120) }()

	time.Sleep(50 * time.Millisecond)
	v.Stop()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestListeners_CancelIdempotent(t *testing.T) {
	var l Listeners
	calls := 0
	cancel := l.Listen(EventScroll, func(Event) { calls++ })
	l.Emit(Event{Kind: EventScroll})
	cancel()
	cancel()
	l.Emit(Event{Kind: EventScroll})
	assert.Equal(t, 1, calls)
	assert.Zero(t, l.Count(EventScroll))
	assert.Equal(t, "scroll", EventScroll.String())
}
