package finish

import (
	"testing"

	"carve/internal/core"
	"carve/internal/distance"
	"carve/internal/tilemap"
	prng "carve/pkg/core"
)

func openMap(w, h int) *tilemap.Map {
	m := tilemap.New(w, h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			m.Set(x, y, tilemap.CellEmpty)
		}
	}
	return m
}

func fullyEmpty(w, h int) *tilemap.Map {
	m := tilemap.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, tilemap.CellEmpty)
		}
	}
	return m
}

func TestFreezeMarginAlongWalls(t *testing.T) {
	m := openMap(12, 12)
	rep := Apply(m, nil, Config{Method: distance.Euclidean, Threshold: 100}, nil)
	if rep.Obstacles != 0 {
		t.Fatalf("expected no obstacles, got %d", rep.Obstacles)
	}
	if rep.Freeze != 36 {
		t.Fatalf("expected 36 freeze cells, got %d", rep.Freeze)
	}
	for y := 1; y < 11; y++ {
		for x := 1; x < 11; x++ {
			c, _ := m.At(x, y)
			edge := x == 1 || y == 1 || x == 10 || y == 10
			if edge && c != tilemap.CellFreeze {
				t.Fatalf("(%d,%d) next to the wall should be freeze, got %v", x, y, c)
			}
			if !edge && c != tilemap.CellEmpty {
				t.Fatalf("(%d,%d) away from walls should stay empty, got %v", x, y, c)
			}
		}
	}
}

func TestObstaclesInOpenSpace(t *testing.T) {
	m := openMap(21, 21)
	rep := Apply(m, nil, Config{Method: distance.Euclidean, Threshold: 6}, nil)
	if c, _ := m.At(10, 10); c != tilemap.CellHookable {
		t.Fatalf("centre of a large room should be hookable, got %v", c)
	}
	if c, _ := m.At(3, 3); c == tilemap.CellHookable {
		t.Fatal("cell near the border should not become an obstacle")
	}
	if rep.Obstacles == 0 || rep.Counts[tilemap.CellHookable] != rep.Obstacles {
		t.Fatalf("obstacle count %d does not match hookable count %d", rep.Obstacles, rep.Counts[tilemap.CellHookable])
	}
	for y := 1; y < 20; y++ {
		for x := 1; x < 20; x++ {
			c, _ := m.At(x, y)
			if c == tilemap.CellEmpty && nearWall(m, x, y) {
				t.Fatalf("empty cell (%d,%d) touches a wall", x, y)
			}
		}
	}
}

func carvedMap(seed int64) ([]core.Point, *tilemap.Map) {
	rng := prng.NewRNG(seed)
	m := tilemap.New(64, 48)
	var history []core.Point
	p := core.Point{X: 32, Y: 24}
	moves := []core.Point{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}}
	for i := 0; i < 3000; i++ {
		n := p.Add(prng.Choice(rng, moves))
		if n.X < 3 || n.Y < 3 || n.X > 60 || n.Y > 44 {
			continue
		}
		p = n
		history = append(history, p)
		for dx := -2; dx <= 2; dx++ {
			for dy := -2; dy <= 2; dy++ {
				m.Set(p.X+dx, p.Y+dy, tilemap.CellEmpty)
			}
		}
	}
	return history, m
}

func TestApplyIdempotent(t *testing.T) {
	history, m := carvedMap(11)
	cfg := Config{
		Method:    distance.Euclidean,
		Threshold: 3,
		Noise:     distance.Noise{Kind: distance.NoiseUniform, Amount: 0.5},
		Platforms: PlatformConfig{Enabled: true, MinSpacing: 100, SafeLeft: 4, SafeRight: 4, SafeTop: 4},
	}
	Apply(m, history, cfg, prng.NewRNG(5).Derive("finish.noise"))
	once := m.Clone()
	Apply(m, history, cfg, prng.NewRNG(5).Derive("finish.noise"))
	if !m.Equal(once) {
		t.Fatal("second Apply changed the classification")
	}
}

func TestApplyDeterministic(t *testing.T) {
	cfg := Config{
		Method:    distance.Chebyshev,
		Threshold: 3,
		Noise:     distance.Noise{Kind: distance.NoiseSimplex, Amount: 1, GridDistance: 6},
	}
	ha, a := carvedMap(3)
	hb, b := carvedMap(3)
	Apply(a, ha, cfg, prng.NewRNG(1))
	Apply(b, hb, cfg, prng.NewRNG(1))
	if !a.Equal(b) {
		t.Fatal("equal inputs produced different maps")
	}
}

func TestPlatformSpacingAndSinking(t *testing.T) {
	m := openMap(60, 40)
	var history []core.Point
	for x := 8; x <= 51; x++ {
		history = append(history, core.Point{X: x, Y: 30})
	}
	cfg := Config{
		Method:    distance.Euclidean,
		Threshold: 1000,
		Platforms: PlatformConfig{Enabled: true, MinSpacing: 10, SafeLeft: 4, SafeRight: 4, SafeTop: 4},
	}
	rep := Apply(m, history, cfg, nil)
	if len(rep.Platforms) != 3 {
		t.Fatalf("expected 3 platforms, got %d: %+v", len(rep.Platforms), rep.Platforms)
	}
	for i, p := range rep.Platforms {
		if i > 0 && p.Index-rep.Platforms[i-1].Index <= cfg.Platforms.MinSpacing {
			t.Fatalf("platforms %d and %d are too close: %+v", i-1, i, rep.Platforms)
		}
		// freeze on row 1 stops the probe at row 2
		if p.Y != 2 {
			t.Fatalf("platform %d should sink to row 2, got %d", i, p.Y)
		}
		for dx := -2; dx <= 2; dx++ {
			if c, _ := m.At(p.X+dx, p.Y); c != tilemap.CellPlatform {
				t.Fatalf("platform %d cell %d is %v", i, p.X+dx, c)
			}
		}
		if c, _ := m.At(p.X-4, p.Y); c != tilemap.CellUnhookable {
			t.Fatalf("platform %d lower corner is %v", i, c)
		}
	}
	if rep.Visited != len(history) {
		t.Fatalf("visited %d, expected %d distinct cells", rep.Visited, len(history))
	}
}

func TestPlatformProbeStaysInGrid(t *testing.T) {
	m := fullyEmpty(20, 20)
	cfg := PlatformConfig{Enabled: true, SafeLeft: 2, SafeRight: 2, SafeTop: 2}
	placed := placePlatforms(m, []core.Point{{X: 10, Y: 10}, {X: 10, Y: 10}}, cfg)
	if len(placed) != 1 {
		t.Fatalf("expected one platform, got %+v", placed)
	}
	if placed[0].Y != 1 {
		t.Fatalf("probe should stop at row 1, got %d", placed[0].Y)
	}
	for x := 0; x < 20; x++ {
		if c, _ := m.At(x, 0); c != tilemap.CellEmpty {
			t.Fatalf("row 0 was written at x=%d: %v", x, c)
		}
	}
}

func TestPlatformsSkipOffGridHistory(t *testing.T) {
	m := fullyEmpty(30, 30)
	cfg := PlatformConfig{Enabled: true, SafeLeft: 2, SafeRight: 2, SafeTop: 2}
	history := []core.Point{{X: 1, Y: 1}, {X: 40, Y: 15}, {X: 29, Y: 15}, {X: 15, Y: 15}}
	placed := placePlatforms(m, history, cfg)
	if len(placed) != 1 {
		t.Fatalf("expected only the in-grid platform, got %+v", placed)
	}
	if placed[0] != (Platform{Index: 3, X: 15, Y: 1}) {
		t.Fatalf("unexpected platform %+v", placed[0])
	}
	if n := m.Count(tilemap.CellPlatform); n != 5 {
		t.Fatalf("expected 5 platform cells, got %d", n)
	}
	for x := 13; x <= 17; x++ {
		if c, _ := m.At(x, 1); c != tilemap.CellPlatform {
			t.Fatalf("platform cell (%d,1) = %v", x, c)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{Threshold: 2, Platforms: PlatformConfig{Enabled: true, SafeLeft: 1, SafeRight: 4}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for narrow safety margin")
	}
	cfg = Config{Threshold: 0}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero threshold")
	}
	cfg = Config{Threshold: 2, Platforms: DefaultPlatformConfig()}
	cfg.Platforms.Enabled = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default platform config rejected: %v", err)
	}
}
