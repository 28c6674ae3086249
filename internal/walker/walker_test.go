package walker

import (
	"slices"
	"testing"

	"carve/internal/core"
	"carve/internal/kernel"
	"carve/internal/tilemap"
	prng "carve/pkg/core"
)

func singleCellTable() []kernel.SizeConfig {
	return []kernel.SizeConfig{
		{Size: 1, Probability: 1, Circularities: []kernel.CircularityConfig{{Circularity: 1, Probability: 1}}},
	}
}

func newWalker(t *testing.T, cfg Config, w, h int, seed int64) (*Walker, *tilemap.Map) {
	t.Helper()
	rng := prng.NewRNG(seed)
	kernels, err := kernel.NewGenerator(singleCellTable(), 1, 1, kernel.DefaultOuterOptions(), rng)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	m := tilemap.New(w, h)
	walker, err := New(cfg, m, kernels, rng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return walker, m
}

func scenarioConfig() Config {
	return Config{
		Start:               core.Point{X: 0, Y: 0},
		Waypoints:           []core.Point{{X: 9, Y: 9}},
		BestMoveProbability: 0.9,
	}
}

func runUntilFinished(w *Walker, limit int) {
	for i := 0; i < limit && !w.Finished(); i++ {
		w.Step()
	}
}

func TestEndToEndReachesWaypoint(t *testing.T) {
	w, m := newWalker(t, scenarioConfig(), 10, 10, 1)
	for i := 0; i < 20; i++ {
		w.Step()
	}
	if !w.Finished() {
		t.Fatalf("walker did not reach (9,9), stopped at %+v after %d steps", w.Position(), w.Steps())
	}

	want := []core.Point{
		{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2},
		{X: 2, Y: 3}, {X: 3, Y: 3}, {X: 3, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 5},
		{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 6, Y: 6}, {X: 6, Y: 7}, {X: 7, Y: 7},
		{X: 7, Y: 8}, {X: 8, Y: 8}, {X: 8, Y: 9}, {X: 9, Y: 9}, {X: 8, Y: 9},
		{X: 9, Y: 9},
	}
	if got := w.History(); !slices.Equal(got, want) {
		t.Fatalf("seed 1 path mismatch:\n got %v\nwant %v", got, want)
	}

	for i := 1; i < 10; i++ {
		if c, _ := m.At(i, i); c != tilemap.CellEmpty {
			t.Fatalf("diagonal cell (%d,%d) not carved: %v", i, i, c)
		}
	}
	for _, p := range w.History() {
		// row 0 and column 0 are never stamped
		if p.X <= 0 || p.Y <= 0 {
			continue
		}
		if c, ok := m.At(p.X, p.Y); ok && c != tilemap.CellEmpty {
			t.Fatalf("visited cell %+v not carved: %v", p, c)
		}
	}
}

func TestEndToEndMostlyStraight(t *testing.T) {
	// 18 moves is the shortest route; with p=0.9 detours stay rare
	total := 0
	const runs = 20
	for seed := int64(1); seed <= runs; seed++ {
		w, _ := newWalker(t, scenarioConfig(), 10, 10, seed)
		runUntilFinished(w, 2000)
		if !w.Finished() {
			t.Fatalf("seed %d: walker never arrived", seed)
		}
		total += w.Steps()
	}
	if avg := float64(total) / runs; avg > 40 {
		t.Fatalf("average of %.1f steps is far from the direct route", avg)
	}
}

func TestDeterministicForSeed(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Tunnel = TunnelConfig{Enabled: true, Probability: 0.2, Lengths: []int{2, 3}, Widths: []int{1, 3}}
	cfg.Start = core.Point{X: 1, Y: 1}
	cfg.Waypoints = []core.Point{{X: 20, Y: 5}, {X: 5, Y: 20}}

	a, ma := newWalker(t, cfg, 25, 25, 1)
	b, mb := newWalker(t, cfg, 25, 25, 1)
	runUntilFinished(a, 300)
	runUntilFinished(b, 300)
	if !slices.Equal(a.History(), b.History()) {
		t.Fatal("histories differ for equal seeds")
	}
	if !ma.Equal(mb) {
		t.Fatal("grids differ for equal seeds")
	}
}

func TestWaypointIndexMonotonic(t *testing.T) {
	cfg := Config{
		Start:               core.Point{X: 2, Y: 2},
		Waypoints:           []core.Point{{X: 10, Y: 2}, {X: 10, Y: 10}, {X: 2, Y: 10}},
		BestMoveProbability: 0.8,
	}
	w, _ := newWalker(t, cfg, 16, 16, 3)
	prev := w.TargetIndex()
	for i := 0; i < 1000; i++ {
		w.Step()
		idx := w.TargetIndex()
		if idx < prev {
			t.Fatalf("target index went back from %d to %d", prev, idx)
		}
		if idx > len(cfg.Waypoints)-1 {
			t.Fatalf("target index %d beyond last waypoint", idx)
		}
		prev = idx
	}
	if !w.Finished() {
		t.Fatal("expected walker to finish the route within 1000 steps")
	}
}

func TestStartOnWaypointAdvances(t *testing.T) {
	cfg := Config{
		Start:               core.Point{X: 3, Y: 3},
		Waypoints:           []core.Point{{X: 3, Y: 3}, {X: 6, Y: 3}},
		BestMoveProbability: 1,
	}
	w, _ := newWalker(t, cfg, 10, 10, 1)
	if w.TargetIndex() != 1 {
		t.Fatalf("expected target index 1 when starting on the first waypoint, got %d", w.TargetIndex())
	}
}

func TestTunnelLength(t *testing.T) {
	const length = 4
	cfg := Config{
		Start:               core.Point{X: 5, Y: 20},
		Waypoints:           []core.Point{{X: 35, Y: 20}},
		BestMoveProbability: 0.9,
		Tunnel:              TunnelConfig{Enabled: true, Probability: 1, Lengths: []int{length}, Widths: []int{3}},
	}
	w, _ := newWalker(t, cfg, 40, 40, 7)

	w.Step()
	if w.Mode() != ModeTunnel {
		t.Fatalf("expected tunnel mode after first step, got %v", w.Mode())
	}
	if w.Kernel().Size != 3 || w.Kernel().Circularity != 0 {
		t.Fatalf("tunnel should force a 3x3 square, got %d/%v", w.Kernel().Size, w.Kernel().Circularity)
	}

	dir := core.Point{X: 1}
	inTunnel := 0
	for w.Mode() == ModeTunnel {
		before := w.Position()
		w.Step()
		if w.Position() != before.Add(dir) {
			t.Fatalf("tunnel step moved %+v -> %+v, expected direction %+v", before, w.Position(), dir)
		}
		if w.Mode() == ModeTunnel {
			inTunnel++
		}
	}
	if inTunnel != length {
		t.Fatalf("stayed in tunnel for %d further steps, expected %d", inTunnel, length)
	}
}

func TestTunnelMovesLengthPlusOne(t *testing.T) {
	const length = 3
	ts := &tunnelState{dir: core.Point{Y: 1}, remaining: length}
	var s state = ts
	moves := 0
	for s.mode() == ModeTunnel {
		move, next := s.step(nil)
		if move != ts.dir {
			t.Fatalf("tunnel returned %+v", move)
		}
		moves++
		s = next
	}
	if moves != length+1 {
		t.Fatalf("expected %d moves in tunnel direction, got %d", length+1, moves)
	}
}

func TestMoveDistributionFavoursBestMove(t *testing.T) {
	cfg := Config{
		Start:               core.Point{X: 5, Y: 5},
		Waypoints:           []core.Point{{X: 5, Y: 15}},
		BestMoveProbability: 0.7,
	}
	w, _ := newWalker(t, cfg, 20, 20, 1)
	moves, weights := w.moveDistribution()
	if moves[0] != (core.Point{Y: 1}) {
		t.Fatalf("best move should be +y, got %+v", moves[0])
	}
	sum := 0.0
	for i, wt := range weights {
		sum += wt
		if i > 0 && wt > weights[i-1] {
			t.Fatalf("weights not decreasing: %v", weights)
		}
	}
	if sum < 0.9999 || sum > 1.0001 {
		t.Fatalf("weights sum to %f", sum)
	}
	if w.bestMove() != (core.Point{Y: 1}) {
		t.Fatalf("bestMove = %+v", w.bestMove())
	}
}

func TestTransitionTable(t *testing.T) {
	for _, from := range []Mode{ModeWander, ModeTunnel} {
		for _, to := range []Mode{ModeWander, ModeTunnel} {
			if !CanTransition(from, to) {
				t.Fatalf("%v -> %v should be allowed", from, to)
			}
		}
	}
	if CanTransition(Mode(7), ModeWander) {
		t.Fatal("unknown mode must not transition")
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Waypoints = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing waypoints")
	}
	cfg = scenarioConfig()
	cfg.BestMoveProbability = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero best-move probability")
	}
	cfg = scenarioConfig()
	cfg.Tunnel = TunnelConfig{Enabled: true, Probability: 0.1, Lengths: []int{3}, Widths: []int{2}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for even tunnel width")
	}
}
