package window

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Particle-Field/internal/field"
)

const (
	logPanelWidth = 260
	logMaxEntries = 40
	logLineHeight = 14
	logTitleH     = 16
)

// EventEntry is a single line in the event log.
type EventEntry struct {
	Frame   int
	Kind    string // "resize", "theme", "reload", ...
	Message string
}

// EventLog is a ring buffer of host events rendered as a side panel.
type EventLog struct {
	entries []EventEntry
	head    int
	count   int
}

// NewEventLog creates an event log with a fixed capacity.
func NewEventLog() *EventLog {
	return &EventLog{
		entries: make([]EventEntry, logMaxEntries),
	}
}

// Add appends an entry, overwriting the oldest once full.
func (el *EventLog) Add(frame int, kind, msg string) {
	el.entries[el.head] = EventEntry{Frame: frame, Kind: kind, Message: msg}
	el.head = (el.head + 1) % logMaxEntries
	if el.count < logMaxEntries {
		el.count++
	}
}

// Addf is Add with formatting.
func (el *EventLog) Addf(frame int, kind, format string, args ...any) {
	el.Add(frame, kind, fmt.Sprintf(format, args...))
}

// Recent returns entries in chronological order (oldest first).
func (el *EventLog) Recent() []EventEntry {
	result := make([]EventEntry, el.count)
	for i := 0; i < el.count; i++ {
		idx := (el.head - el.count + i + logMaxEntries) % logMaxEntries
		result[i] = el.entries[idx]
	}
	return result
}

// Len returns the number of retained entries.
func (el *EventLog) Len() int { return el.count }

// Bounds is the panel box for a screen of height h whose right edge is at
// right. The panel only grows as tall as its entries.
func (el *EventLog) Bounds(right, h int) field.Rect {
	panelH := logTitleH + 6 + el.count*logLineHeight
	if panelH > h-8 {
		panelH = h - 8
	}
	x := float64(right - logPanelWidth - 4)
	return field.Rect{Left: x, Top: 4, Right: x + logPanelWidth, Bottom: float64(4 + panelH)}
}

// Draw renders the panel in the top-right corner of screen.
func (el *EventLog) Draw(screen *ebiten.Image, dark bool) {
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	b := el.Bounds(sw, sh)
	px, py := float32(b.Left), float32(b.Top)
	pw, ph := float32(b.Width()), float32(b.Height())

	bg, edge := color.RGBA{R: 10, G: 12, B: 16, A: 200}, color.RGBA{R: 60, G: 80, B: 110, A: 200}
	if !dark {
		bg, edge = color.RGBA{R: 235, G: 236, B: 240, A: 220}, color.RGBA{R: 150, G: 160, B: 180, A: 220}
	}
	vector.FillRect(screen, px, py, pw, ph, bg, false)
	vector.StrokeRect(screen, px, py, pw, ph, 1.0, edge, false)
	vector.FillRect(screen, px, py, pw, logTitleH, edge, false)
	ebitenutil.DebugPrintAt(screen, "EVENTS", int(px)+8, int(py)+1)

	entries := el.Recent()
	maxVisible := (int(ph) - logTitleH - 4) / logLineHeight
	if maxVisible < 0 {
		maxVisible = 0
	}
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}

	y := int(py) + logTitleH + 2
	for i, e := range entries {
		// Highlight the newest entry.
		if i == len(entries)-1 {
			vector.FillRect(screen, px+2, float32(y), pw-4, logLineHeight, color.RGBA{R: 66, G: 135, B: 245, A: 60}, false)
		}
		line := fmt.Sprintf("%5d %-6s %s", e.Frame, e.Kind, e.Message)
		ebitenutil.DebugPrintAt(screen, line, int(px)+6, y)
		y += logLineHeight
	}
}
