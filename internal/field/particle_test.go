package field

import (
	"math/rand"
	"testing"
)

func newTestRNG() *rand.Rand {
	return rand.New(rand.NewSource(42)) // #nosec G404 -- test only
}

func TestWrap(t *testing.T) {
	cases := []struct {
		v, limit, want float64
	}{
		{50, 100, 50},
		{-0.5, 100, 99.5},
		{100, 100, 0},
		{250, 100, 50},
		{-1e-17, 100, 0},
		{5, 0, 0},
	}
	for _, c := range cases {
		if got := wrap(c.v, c.limit); got != c.want {
			t.Fatalf("wrap(%v, %v) = %v, want %v", c.v, c.limit, got, c.want)
		}
	}
}

func TestNewStore_InitialRanges(t *testing.T) {
	size := SizeRange{Min: 0.5, Max: 1.5}
	s := NewStore(1800, size, 800, 600, InitZero, newTestRNG())
	if s.Len() != 1800 {
		t.Fatalf("expected 1800 particles, got %d", s.Len())
	}
	for i, p := range s.Particles {
		if p.Pos.X < 0 || p.Pos.X >= 800 || p.Pos.Y < 0 || p.Pos.Y >= 600 {
			t.Fatalf("particle %d spawned outside surface at %+v", i, p.Pos)
		}
		if p.Size < size.Min || p.Size > size.Max {
			t.Fatalf("particle %d size %v outside [%v,%v]", i, p.Size, size.Min, size.Max)
		}
		if p.Life < 0 || p.Life >= 100 {
			t.Fatalf("particle %d life %v outside [0,100)", i, p.Life)
		}
		if p.MaxLife < 100 || p.MaxLife >= 150 {
			t.Fatalf("particle %d maxLife %v outside [100,150)", i, p.MaxLife)
		}
		if p.Vel != (Vec{}) {
			t.Fatalf("flow particle %d should start at rest, got %+v", i, p.Vel)
		}
	}
}

func TestNewStore_DriftVelocity(t *testing.T) {
	s := NewStore(500, SizeRange{Min: 0.1, Max: 1.6}, 400, 300, InitDrift, newTestRNG())
	moving := 0
	for i, p := range s.Particles {
		if p.Vel.X < -0.25 || p.Vel.X >= 0.25 || p.Vel.Y < -0.25 || p.Vel.Y >= 0.25 {
			t.Fatalf("drift particle %d velocity %+v outside [-0.25,0.25)", i, p.Vel)
		}
		if p.Vel != (Vec{}) {
			moving++
		}
	}
	if moving == 0 {
		t.Fatal("expected drift particles to have non-zero velocity")
	}
}

func TestStore_ResizeReinitialises(t *testing.T) {
	s := NewStore(300, SizeRange{Min: 1, Max: 2}, 1000, 1000, InitZero, newTestRNG())
	before := s.Particles[0]
	s.Resize(200, 100)
	if s.Len() != 300 {
		t.Fatalf("resize changed count to %d", s.Len())
	}
	if s.Particles[0] == before {
		t.Fatal("expected particle 0 to be regenerated on resize")
	}
	w, h := s.Bounds()
	if w != 200 || h != 100 {
		t.Fatalf("bounds = %vx%v, want 200x100", w, h)
	}
	if ok, why := s.InBounds(); !ok {
		t.Fatalf("after resize: %s", why)
	}
}

func TestStore_AgeRespawnsOnlyPastMaxLife(t *testing.T) {
	s := NewStore(1, SizeRange{Min: 1, Max: 1}, 100, 100, InitZero, newTestRNG())
	p := &s.Particles[0]

	p.Life, p.MaxLife = 119, 120
	if s.age(p) {
		t.Fatal("life reaching maxLife exactly must not respawn")
	}
	if p.Life != 120 {
		t.Fatalf("life = %v, want 120", p.Life)
	}

	if !s.age(p) {
		t.Fatal("life exceeding maxLife must respawn")
	}
	if p.Life != 0 {
		t.Fatalf("respawned life = %v, want 0", p.Life)
	}
}

func TestStore_MoveWrapsAllEdges(t *testing.T) {
	s := NewStore(1, SizeRange{Min: 1, Max: 1}, 100, 50, InitZero, newTestRNG())
	p := &s.Particles[0]

	p.Pos, p.Vel = Vec{X: 99, Y: 10}, Vec{X: 2, Y: 0}
	s.move(p)
	if p.Pos.X != 1 {
		t.Fatalf("right edge: x = %v, want 1", p.Pos.X)
	}

	p.Pos, p.Vel = Vec{X: 1, Y: 10}, Vec{X: -2, Y: 0}
	s.move(p)
	if p.Pos.X != 99 {
		t.Fatalf("left edge: x = %v, want 99", p.Pos.X)
	}

	p.Pos, p.Vel = Vec{X: 10, Y: 49.5}, Vec{X: 0, Y: 1}
	s.move(p)
	if p.Pos.Y != 0.5 {
		t.Fatalf("bottom edge: y = %v, want 0.5", p.Pos.Y)
	}

	p.Pos, p.Vel = Vec{X: 10, Y: 0.5}, Vec{X: 0, Y: -1}
	s.move(p)
	if p.Pos.Y != 49.5 {
		t.Fatalf("top edge: y = %v, want 49.5", p.Pos.Y)
	}
}

func TestSizeRange_Validate(t *testing.T) {
	if err := (SizeRange{Min: 0.5, Max: 1.5}).Validate(); err != nil {
		t.Fatalf("valid range rejected: %v", err)
	}
	if err := (SizeRange{Min: 1, Max: 1}).Validate(); err != nil {
		t.Fatalf("degenerate range rejected: %v", err)
	}
	if err := (SizeRange{Min: 2, Max: 1}).Validate(); err == nil {
		t.Fatal("inverted range accepted")
	}
	if err := (SizeRange{Min: 0, Max: 1}).Validate(); err == nil {
		t.Fatal("zero min accepted")
	}
}

func TestParseVariant(t *testing.T) {
	for in, want := range map[string]Variant{"": VariantFlow, "flow": VariantFlow, " Drift ": VariantDrift} {
		got, err := ParseVariant(in)
		if err != nil || got != want {
			t.Fatalf("ParseVariant(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseVariant("sparkle"); err == nil {
		t.Fatal("expected error for unknown variant")
	}
}
