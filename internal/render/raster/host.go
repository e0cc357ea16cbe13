package raster

import (
	"sync"

	"github.com/Garsondee/Particle-Field/internal/field"
	"github.com/Garsondee/Particle-Field/internal/view"
)

// Host mounts a view on a Canvas with a fixed, programmatic viewport. Batch
// rendering and the preview server drive it directly.
type Host struct {
	view.Listeners

	canvas *Canvas

	mu       sync.Mutex
	w, h     int
	dark     bool
	elements []field.Rect
}

// NewHost returns a host whose viewport is w x h.
func NewHost(w, h int, dark bool) *Host {
	return &Host{canvas: New(w, h), w: w, h: h, dark: dark}
}

// Canvas returns the surface views draw on.
func (h *Host) Canvas() *Canvas { return h.canvas }

func (h *Host) Surface() (field.Surface, error) {
	if h.canvas == nil {
		return nil, field.ErrNoSurface
	}
	return h.canvas, nil
}

func (h *Host) Viewport() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.w, h.h
}

func (h *Host) Dark() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dark
}

func (h *Host) ToggleTheme() {
	h.mu.Lock()
	h.dark = !h.dark
	h.mu.Unlock()
}

func (h *Host) Elements() []field.Rect {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]field.Rect(nil), h.elements...)
}

// SetViewport changes the viewport and notifies resize listeners.
func (h *Host) SetViewport(w, hgt int) {
	h.mu.Lock()
	h.w, h.h = w, hgt
	h.mu.Unlock()
	h.Emit(view.Event{Kind: view.EventResize, Width: w, Height: hgt})
}

// MovePointer reports a pointer position to listeners.
func (h *Host) MovePointer(x, y float64) {
	h.Emit(view.Event{Kind: view.EventPointer, X: x, Y: y})
}

// SetElements replaces the element boxes and notifies scroll listeners so
// views re-read them.
func (h *Host) SetElements(rects []field.Rect) {
	h.mu.Lock()
	h.elements = append(h.elements[:0], rects...)
	h.mu.Unlock()
	h.Emit(view.Event{Kind: view.EventScroll})
}
