package window

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/Garsondee/Particle-Field/internal/config"
	"github.com/Garsondee/Particle-Field/internal/field"
	"github.com/Garsondee/Particle-Field/internal/view"
)

func newTestGame() *Game {
	return NewGame(context.Background(), config.Default(), log.New(io.Discard))
}

func TestEventLog_RingOverwritesOldest(t *testing.T) {
	el := NewEventLog()
	for i := 0; i < logMaxEntries+5; i++ {
		el.Addf(i, "resize", "%d", i)
	}
	got := el.Recent()
	if len(got) != logMaxEntries {
		t.Fatalf("len = %d, want %d", len(got), logMaxEntries)
	}
	if got[0].Frame != 5 {
		t.Fatalf("oldest frame = %d, want 5", got[0].Frame)
	}
	if last := got[len(got)-1]; last.Frame != logMaxEntries+4 || last.Message != "44" {
		t.Fatalf("newest = %+v", last)
	}
}

func TestEventLog_BoundsGrowWithEntries(t *testing.T) {
	el := NewEventLog()
	empty := el.Bounds(1280, 720)
	el.Add(0, "theme", "light")
	el.Add(1, "theme", "dark")
	two := el.Bounds(1280, 720)
	if two.Height()-empty.Height() != 2*logLineHeight {
		t.Fatalf("height grew by %v, want %d", two.Height()-empty.Height(), 2*logLineHeight)
	}
	if two.Right != 1276 {
		t.Fatalf("right edge = %v, want 1276", two.Right)
	}
	for i := 0; i < logMaxEntries; i++ {
		el.Add(i, "x", "")
	}
	if b := el.Bounds(1280, 100); b.Bottom > 100 {
		t.Fatalf("panel overflows screen: %+v", b)
	}
}

func TestLayout_DefersResizeToUpdate(t *testing.T) {
	g := newTestGame()
	if w, h := g.Layout(1280, 720); w != 1280 || h != 720 {
		t.Fatalf("layout = %dx%d", w, h)
	}
	if g.resized {
		t.Fatal("unchanged size flagged as resize")
	}
	g.Layout(800, 600)
	if !g.resized {
		t.Fatal("resize not recorded")
	}
	if w, h := g.Viewport(); w != 800 || h != 600 {
		t.Fatalf("viewport = %dx%d", w, h)
	}
}

func TestReload_KeepsLatest(t *testing.T) {
	g := newTestGame()
	a, b := config.Default(), config.Default()
	a.Count, b.Count = 10, 20
	g.Reload(a)
	g.Reload(b)
	if n := len(g.reloads); n != 1 {
		t.Fatalf("pending reloads = %d, want 1", n)
	}
	if got := <-g.reloads; got.Count != 20 {
		t.Fatalf("pending count = %d, want 20", got.Count)
	}
}

func TestElements_TrackVisiblePanels(t *testing.T) {
	g := newTestGame()
	if got := len(g.Elements()); got != 1 {
		t.Fatalf("elements = %d, want the HUD only", got)
	}
	g.events.Add(0, "mount", "")
	g.SetSlides([]string{"a.png"})
	if got := len(g.Elements()); got != 3 {
		t.Fatalf("elements = %d, want 3", got)
	}
	g.showHUD = false
	if got := len(g.Elements()); got != 2 {
		t.Fatalf("elements = %d, want 2", got)
	}
	for _, r := range g.Elements() {
		if len(field.TrackElements([]field.Rect{r}, 1280, 720)) != 1 {
			t.Fatalf("panel %+v would not be tracked", r)
		}
	}
}

func TestHUDLines_ReportStats(t *testing.T) {
	lines := hudLines(view.Stats{Variant: field.VariantDrift, Particles: 2000, Frames: 42, Width: 640, Height: 360}, 59.6)
	if !strings.Contains(lines[0], "drift  2000 particles  60 fps") {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "640x360") {
		t.Fatalf("line 1 = %q", lines[1])
	}
}

func TestHost_ThemeToggle(t *testing.T) {
	g := newTestGame()
	if !g.Dark() {
		t.Fatal("default theme should be dark")
	}
	g.ToggleTheme()
	if g.Dark() {
		t.Fatal("toggle did not switch to light")
	}
	if s, err := g.Surface(); err != nil || s == nil {
		t.Fatalf("surface = %v, %v", s, err)
	}
}

func TestCoverCrop_CentresOverflow(t *testing.T) {
	// 640x180 scaled by 1 overflows horizontally by 320px.
	r := coverCrop(640, 180, 1)
	if r.Min.X != 160 || r.Dx() != slideW || r.Dy() != slideH {
		t.Fatalf("crop = %v", r)
	}
}

func TestSetSlideDir_SwapsAndClearsSlides(t *testing.T) {
	dir := t.TempDir()
	// Undecodable files are listed but skipped when loading, so no GPU
	// image is created.
	for _, name := range []string{"b.png", "a.jpg", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("not an image"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	g := newTestGame()
	scrolls := 0
	cancel := g.Listen(view.EventScroll, func(view.Event) { scrolls++ })
	defer cancel()

	if err := g.setSlideDir(dir); err != nil {
		t.Fatalf("setSlideDir: %v", err)
	}
	if len(g.slidePaths) != 2 || filepath.Base(g.slidePaths[0]) != "a.jpg" {
		t.Fatalf("slide paths = %v", g.slidePaths)
	}
	if len(g.slides) != 0 || g.show == nil {
		t.Fatalf("slides = %d, show = %v", len(g.slides), g.show)
	}
	if got := len(g.Elements()); got != 2 {
		t.Fatalf("elements = %d, want HUD and slide box", got)
	}

	if err := g.setSlideDir(""); err != nil {
		t.Fatalf("clear slides: %v", err)
	}
	if len(g.slidePaths) != 0 {
		t.Fatalf("slide paths not cleared: %v", g.slidePaths)
	}
	if got := len(g.Elements()); got != 1 {
		t.Fatalf("elements = %d, want the HUD only", got)
	}
	if scrolls != 2 {
		t.Fatalf("scroll events = %d, want 2", scrolls)
	}
}

func TestSetSlideDir_MissingDirKeepsSlides(t *testing.T) {
	g := newTestGame()
	g.SetSlides([]string{"kept.png"})
	if err := g.setSlideDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
	if len(g.slidePaths) != 1 || g.slidePaths[0] != "kept.png" {
		t.Fatalf("slide paths changed: %v", g.slidePaths)
	}
}
