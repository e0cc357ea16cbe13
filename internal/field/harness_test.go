package field

import (
	"strings"
	"testing"
)

func TestHarness_ResizeRebuildsToConfiguredCount(t *testing.T) {
	hs := NewHarness(WithCount(400), WithSeed(5))
	hs.RunFrames(30)
	hs.Resize(320, 200)

	if hs.Store().Len() != 400 {
		t.Fatalf("expected 400 particles after resize, got %d", hs.Store().Len())
	}
	for i, p := range hs.Store().Particles {
		if p.Pos.X < 0 || p.Pos.X >= 320 || p.Pos.Y < 0 || p.Pos.Y >= 200 {
			t.Fatalf("particle %d at %+v outside 320x200 after resize", i, p.Pos)
		}
	}
	hs.RunFrames(30)
	if v := hs.Violations(); len(v) != 0 {
		t.Fatalf("violations after resize: %v", v)
	}
	if len(hs.SimLog.Filter("surface", "resize")) != 1 {
		t.Fatal("expected one resize entry in the sim log")
	}
}

func TestHarness_SameSeedSameRun(t *testing.T) {
	a := NewHarness(WithCount(100), WithSeed(99))
	b := NewHarness(WithCount(100), WithSeed(99))
	a.RunFrames(50)
	b.RunFrames(50)
	for i := range a.Store().Particles {
		if a.Store().Particles[i] != b.Store().Particles[i] {
			t.Fatalf("particle %d diverged between identical runs", i)
		}
	}
}

func TestHarness_VerboseLogsRespawns(t *testing.T) {
	hs := NewHarness(WithCount(200), WithVerbose(true))
	total := hs.RunFrames(200)
	if got := int(hs.SimLog.Sum("lifecycle", "respawn")); got != total.Respawned {
		t.Fatalf("logged respawns %d, stats say %d", got, total.Respawned)
	}
}

func TestHarness_QuietLogSkipsPerFrameEntries(t *testing.T) {
	hs := NewHarness(WithCount(200))
	hs.RunFrames(200)
	if n := len(hs.SimLog.Filter("lifecycle", "")); n != 0 {
		t.Fatalf("expected no per-frame entries without verbose, got %d", n)
	}
}

func TestSimLogEntry_String(t *testing.T) {
	e := SimLogEntry{Frame: 42, Category: "surface", Key: "resize", Value: "1280x720"}
	s := e.String()
	if !strings.HasPrefix(s, "[F=0042] surface") || !strings.HasSuffix(s, "1280x720") {
		t.Fatalf("unexpected format: %q", s)
	}
}

func TestSimLog_Filter(t *testing.T) {
	sl := NewSimLog(false)
	sl.Add(1, "glow", "count", "3 particles", 3)
	sl.Add(2, "glow", "count", "5 particles", 5)
	sl.Add(2, "surface", "resize", "10x10", 100)
	sl.AddVerbose(3, "glow", "count", "ignored", 9)

	if n := len(sl.Filter("glow", "")); n != 2 {
		t.Fatalf("expected 2 glow entries, got %d", n)
	}
	if n := len(sl.Filter("", "resize")); n != 1 {
		t.Fatalf("expected 1 resize entry, got %d", n)
	}
	if s := sl.Sum("glow", "count"); s != 8 {
		t.Fatalf("expected glow sum 8, got %v", s)
	}
}
