package term

import (
	"context"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Particle-Field/internal/config"
	"github.com/Garsondee/Particle-Field/internal/field"
	"github.com/Garsondee/Particle-Field/internal/view"
)

// statusRows is the height of the status bar at the bottom of the screen.
const statusRows = 1

// Host adapts a tcell screen to view.Host.
type Host struct {
	view.Listeners

	screen tcell.Screen
	buf    *Buffer

	mu   sync.Mutex
	dark bool
}

// NewHost wraps an initialised screen.
func NewHost(screen tcell.Screen, dark bool) *Host {
	cols, rows := screen.Size()
	return &Host{screen: screen, buf: NewBuffer(cols, rows), dark: dark}
}

func (h *Host) Surface() (field.Surface, error) {
	if h.screen == nil {
		return nil, field.ErrNoSurface
	}
	return h.buf, nil
}

// Viewport is the screen size in block pixels.
func (h *Host) Viewport() (int, int) {
	cols, rows := h.screen.Size()
	return cols * CellW, rows * CellH
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

// Elements reports the status bar so particles glow along it.
func (h *Host) Elements() []field.Rect {
	cols, rows := h.screen.Size()
	if rows <= statusRows {
		return nil
	}
	top := float64((rows - statusRows) * CellH)
	return []field.Rect{{Left: 0, Top: top, Right: float64(cols * CellW), Bottom: float64(rows * CellH)}}
}

// handle turns a tcell event into host events. It reports false when the
// user asked to quit.
func (h *Host) handle(ev tcell.Event, v *view.View) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'q':
				return false
			case 't':
				v.ToggleTheme()
			}
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		h.Emit(view.Event{
			Kind: view.EventPointer,
			X:    (float64(x) + 0.5) * CellW,
			Y:    (float64(y) + 0.5) * CellH,
		})
		if b := ev.Buttons(); b&(tcell.WheelUp|tcell.WheelDown) != 0 {
			h.Emit(view.Event{Kind: view.EventScroll})
		}

	case *tcell.EventResize:
		h.screen.Sync()
		w, ht := h.Viewport()
		h.Emit(view.Event{Kind: view.EventResize, Width: w, Height: ht})
	}
	return true
}

func (h *Host) base() color.NRGBA {
	if h.Dark() {
		return color.NRGBA{A: 255}
	}
	return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
}

func (h *Host) draw(v *view.View) {
	v.WithSurface(func(field.Surface) {
		h.buf.Flush(h.screen, h.base())
	})
	h.drawStatus(v.Stats())
	h.screen.Show()
}

func (h *Host) drawStatus(st view.Stats) {
	cols, rows := h.screen.Size()
	if rows == 0 {
		return
	}
	fg, bg := tcell.ColorWhite, tcell.NewRGBColor(20, 24, 32)
	if !h.Dark() {
		fg, bg = tcell.NewRGBColor(40, 40, 50), tcell.NewRGBColor(230, 232, 238)
	}
	style := tcell.StyleDefault.Foreground(fg).Background(bg)
	line := fmt.Sprintf(" %s  %d particles  glowing %d  frame %d   t theme  q quit", st.Variant, st.Particles, st.Last.Glowing, st.Frames)
	y := rows - 1
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(line) {
			r = rune(line[x])
		}
		h.screen.SetContent(x, y, r, nil, style)
	}
}

// Run mounts a view on screen and animates it until ctx is cancelled or the
// user quits. The caller owns screen and calls Fini afterwards.
func Run(ctx context.Context, screen tcell.Screen, cfg config.Config, logger *log.Logger) error {
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	h := NewHost(screen, cfg.Dark())
	v := view.Mount(h, view.OptionsFrom(cfg), logger)
	defer v.Stop()
	if v.State() != view.Running {
		return nil
	}

	fps := cfg.FPS
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-eventChan:
			if !h.handle(ev, v) {
				logger.Debug("terminal quit requested")
				return nil
			}

		case now := <-ticker.C:
			if !v.Frame(now) {
				return nil
			}
			h.draw(v)
		}
	}
}
