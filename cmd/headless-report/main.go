package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/Garsondee/Particle-Field/internal/field"
)

// flowRespawnHorizon bounds a flow particle's lifetime in frames; any longer
// run must see respawns.
const flowRespawnHorizon = 150

type runStats struct {
	runIndex int
	seed     int64
	variant  field.Variant
	frames   int

	firstRespawnFrame int
	firstGlowFrame    int

	respawned  int
	glowTotal  int
	glowFrames int
	maxGlow    int
	drawn      int
	violations int
	pointerOn  bool
}

func main() {
	var runs int
	var frames int
	var seedBase int64
	var seedStep int64
	var variant string
	var count int
	var width, height int
	var pointerX, pointerY float64

	flag.IntVar(&runs, "runs", 5, "number of headless runs")
	flag.IntVar(&frames, "frames", 1000, "frames per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&variant, "variant", "flow", "variant (flow, drift)")
	flag.IntVar(&count, "count", 2000, "particles per run")
	flag.IntVar(&width, "width", 1280, "surface width")
	flag.IntVar(&height, "height", 720, "surface height")
	flag.Float64Var(&pointerX, "pointer-x", 640, "pointer x (drift)")
	flag.Float64Var(&pointerY, "pointer-y", 360, "pointer y (drift)")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if frames <= 0 {
		fmt.Println("error: -frames must be > 0")
		return
	}
	v, err := field.ParseVariant(variant)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("=== Headless Particle Report ===\n")
	fmt.Printf("variant=%s runs=%d frames=%d count=%d surface=%dx%d seed_base=%d seed_step=%d\n\n",
		v, runs, frames, count, width, height, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		hs := field.NewHarness(
			field.WithSurfaceSize(width, height),
			field.WithSeed(seed),
			field.WithVerbose(true),
			field.WithVariant(v),
			field.WithCount(count),
			field.WithPointer(pointerX, pointerY),
		)
		stats := runOnce(i+1, seed, hs, frames)
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)
}

func runOnce(runIndex int, seed int64, hs *field.Harness, frames int) runStats {
	total := hs.RunFrames(frames)
	entries := hs.SimLog.Entries()

	rs := runStats{
		runIndex:          runIndex,
		seed:              seed,
		variant:           hs.Variant,
		frames:            frames,
		firstRespawnFrame: firstFrame(entries, "lifecycle", "respawn"),
		firstGlowFrame:    firstFrame(entries, "glow", "count"),
		respawned:         total.Respawned,
		glowTotal:         total.Glowing,
		drawn:             total.Drawn,
		violations:        len(hs.Violations()),
		pointerOn:         hs.Pointer.X >= 0 && hs.Pointer.Y >= 0 && hs.Pointer.X < float64(hs.Width) && hs.Pointer.Y < float64(hs.Height),
	}
	for _, e := range hs.SimLog.Filter("glow", "count") {
		rs.glowFrames++
		if n := int(e.NumVal); n > rs.maxGlow {
			rs.maxGlow = n
		}
	}
	return rs
}

func firstFrame(entries []field.SimLogEntry, category, key string) int {
	for _, e := range entries {
		if e.Category == category && e.Key == key {
			return e.Frame
		}
	}
	return -1
}

// verdict flags runs whose behaviour cannot be right.
func verdict(rs runStats) (ok bool, reason string) {
	var problems []string
	if rs.violations > 0 {
		problems = append(problems, fmt.Sprintf("bounds_violation x%d", rs.violations))
	}
	if rs.variant == field.VariantFlow && rs.frames > flowRespawnHorizon && rs.respawned == 0 {
		problems = append(problems, "no_respawns")
	}
	if rs.variant == field.VariantDrift && rs.pointerOn && rs.maxGlow == 0 {
		problems = append(problems, "no_glow_under_pointer")
	}
	if len(problems) == 0 {
		return true, "ok"
	}
	return false, strings.Join(problems, ",")
}

func printRun(rs runStats) {
	ok, reason := verdict(rs)
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("markers: first_respawn=%d first_glow=%d\n", rs.firstRespawnFrame, rs.firstGlowFrame)
	fmt.Printf("totals: drawn=%d respawned=%d glow_frames=%d\n", rs.drawn, rs.respawned, rs.glowFrames)
	fmt.Printf("glow: avg_per_frame=%.1f max=%d\n", avg(rs.glowTotal, rs.frames), rs.maxGlow)
	fmt.Printf("verdict: ok=%v reason=%s\n\n", ok, reason)
}

func printAggregate(all []runStats) {
	totalRespawned := 0
	totalGlow := 0
	totalFrames := 0
	totalViolations := 0
	maxGlow := 0
	failed := 0
	var firstRespawns []int
	for _, rs := range all {
		totalRespawned += rs.respawned
		totalGlow += rs.glowTotal
		totalFrames += rs.frames
		totalViolations += rs.violations
		maxGlow = max(maxGlow, rs.maxGlow)
		if ok, _ := verdict(rs); !ok {
			failed++
		}
		if rs.firstRespawnFrame >= 0 {
			firstRespawns = append(firstRespawns, rs.firstRespawnFrame)
		}
	}
	n := len(all)
	fmt.Printf("=== Aggregate (%d runs) ===\n", n)
	fmt.Printf("respawned_avg_per_run=%.1f first_respawn_avg=%s\n", avg(totalRespawned, n), avgFrameString(firstRespawns))
	fmt.Printf("glow_avg_per_frame=%.1f glow_max=%d\n", avg(totalGlow, totalFrames), maxGlow)
	fmt.Printf("violations=%d failed_runs=%d\n", totalViolations, failed)
}

func avg(sum int, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgFrameString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", avg(sum, len(vals)))
}
