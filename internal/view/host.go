// Package view binds a particle field to a host: it sizes the surface,
// listens for resize, pointer and scroll events, and runs the frame loop
// until it is stopped.
package view

import (
	"sync"

	"github.com/Garsondee/Particle-Field/internal/field"
)

// EventKind names a host event a view can listen for.
type EventKind int

const (
	EventResize EventKind = iota
	EventPointer
	EventScroll
)

func (k EventKind) String() string {
	switch k {
	case EventResize:
		return "resize"
	case EventPointer:
		return "pointer"
	case EventScroll:
		return "scroll"
	}
	return "unknown"
}

// Event is delivered to listeners. Width/Height are set for resize, X/Y for
// pointer moves.
type Event struct {
	Kind          EventKind
	Width, Height int
	X, Y          float64
}

// Host is the environment a view is mounted in.
type Host interface {
	// Surface returns the drawing surface, or field.ErrNoSurface.
	Surface() (field.Surface, error)
	// Viewport returns the current viewport size in pixels.
	Viewport() (w, h int)
	// Dark reports the current theme.
	Dark() bool
	// Elements returns the on-screen boxes of interactive elements.
	Elements() []field.Rect
	// Listen registers fn for kind and returns a function that removes it.
	Listen(kind EventKind, fn func(Event)) (cancel func())
}

// ThemeToggler is implemented by hosts that let the view flip the theme.
type ThemeToggler interface {
	ToggleTheme()
}

// Listeners is a small event registry hosts can embed to implement Listen.
// It is safe for concurrent use.
type Listeners struct {
	mu     sync.Mutex
	nextID int
	fns    map[EventKind]map[int]func(Event)
}

// Listen registers fn. The returned cancel func is idempotent.
func (l *Listeners) Listen(kind EventKind, fn func(Event)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[EventKind]map[int]func(Event))
	}
	if l.fns[kind] == nil {
		l.fns[kind] = make(map[int]func(Event))
	}
	id := l.nextID
	l.nextID++
	l.fns[kind][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns[kind], id)
			l.mu.Unlock()
		})
	}
}

// Emit delivers ev to every listener of its kind. Listeners run outside the
// registry lock so they may cancel themselves.
func (l *Listeners) Emit(ev Event) {
	l.mu.Lock()
	fns := make([]func(Event), 0, len(l.fns[ev.Kind]))
	for _, fn := range l.fns[ev.Kind] {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Count returns the number of listeners registered for kind.
func (l *Listeners) Count(kind EventKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns[kind])
}
