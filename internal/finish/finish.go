// Package finish turns a carved map into a playable level: large open spaces
// get hookable obstacles, walls get a freeze margin and the walker path gets
// platforms.
package finish

import (
	"github.com/zyedidia/generic/mapset"

	"carve/internal/core"
	"carve/internal/distance"
	"carve/internal/tilemap"
	prng "carve/pkg/core"
)

// PlatformConfig controls platform placement along the walker path.
type PlatformConfig struct {
	Enabled bool `json:"enabled"`
	// MinSpacing is the minimum number of history entries between platforms.
	MinSpacing int `json:"min_spacing"`
	SafeLeft   int `json:"safe_left"`
	SafeRight  int `json:"safe_right"`
	SafeTop    int `json:"safe_top"`
	SafeDown   int `json:"safe_down"`
}

// Config holds the finisher tunables.
type Config struct {
	Method    distance.Method `json:"method"`
	Threshold float64         `json:"threshold"`
	Noise     distance.Noise  `json:"noise"`
	Platforms PlatformConfig  `json:"platforms"`
}

// DefaultPlatformConfig returns the platform margins the level format expects.
func DefaultPlatformConfig() PlatformConfig {
	return PlatformConfig{
		MinSpacing: 1000,
		SafeLeft:   4,
		SafeRight:  4,
		SafeTop:    4,
	}
}

// Platform records one placed platform.
type Platform struct {
	Index int `json:"index"`
	X     int `json:"x"`
	Y     int `json:"y"`
}

// Report summarises a finisher run.
type Report struct {
	Obstacles int                        `json:"obstacles"`
	Freeze    int                        `json:"freeze"`
	Platforms []Platform                 `json:"platforms"`
	Visited   int                        `json:"visited"`
	Counts    [tilemap.CellTypeCount]int `json:"counts"`
}

// Apply runs the obstacle, freeze and platform passes on m in that order.
// Running it twice on the same map with the same rng seed yields the same
// classification.
func Apply(m *tilemap.Map, history []core.Point, cfg Config, rng *prng.RNG) Report {
	var rep Report
	rep.Obstacles = fillObstacles(m, cfg, rng)
	rep.Freeze = addFreeze(m)
	if cfg.Platforms.Enabled {
		rep.Platforms = placePlatforms(m, history, cfg.Platforms)
	}

	visited := mapset.New[core.Point]()
	for _, p := range history {
		if m.InBounds(p.X, p.Y) {
			visited.Put(p)
		}
	}
	rep.Visited = visited.Size()
	rep.Counts = m.Counts()
	return rep
}

func fillObstacles(m *tilemap.Map, cfg Config, rng *prng.RNG) int {
	field := distance.Transform(m, cfg.Method, cfg.Noise, rng)
	w := m.Width()
	n := 0
	for i, d := range field {
		if d < cfg.Threshold {
			continue
		}
		x, y := i%w, i/w
		switch c, _ := m.At(x, y); c {
		case tilemap.CellEmpty:
			n++
			m.Set(x, y, tilemap.CellHookable)
		case tilemap.CellSolid:
			m.Set(x, y, tilemap.CellHookable)
		}
	}
	return n
}

// addFreeze marks every empty cell next to a wall. Decisions are made against
// a snapshot so newly placed freeze never feeds back into the pass.
func addFreeze(m *tilemap.Map) int {
	snap := m.Clone()
	n := 0
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if c, _ := snap.At(x, y); c != tilemap.CellEmpty {
				continue
			}
			if nearWall(snap, x, y) {
				m.Set(x, y, tilemap.CellFreeze)
				n++
			}
		}
	}
	return n
}

func nearWall(m *tilemap.Map, x, y int) bool {
	nb := m.Neighbors3x3(x, y)
	for dx := 0; dx < 3; dx++ {
		for dy := 0; dy < 3; dy++ {
			if tilemap.IsWall(nb[dx][dy]) {
				return true
			}
		}
	}
	return false
}

func placePlatforms(m *tilemap.Map, history []core.Point, cfg PlatformConfig) []Platform {
	var placed []Platform
	used := mapset.New[core.Point]()
	last := 0
	for i, p := range history {
		if i <= last+cfg.MinSpacing {
			continue
		}
		x, y := p.X, p.Y
		// the whole five-cell platform row must fit inside the map
		if !m.InBounds(x-2, y) || !m.InBounds(x+2, y) {
			continue
		}
		if !platformAreaClear(m, x, y, cfg) {
			continue
		}
		m.Set(x-cfg.SafeLeft, y-cfg.SafeDown, tilemap.CellDebug)
		m.Set(x+cfg.SafeRight, y+cfg.SafeTop, tilemap.CellDebug)

		// sink the area until the row below would touch a wall
		for y-1-cfg.SafeDown >= 1 && platformAreaClear(m, x, y-1, cfg) {
			y--
		}
		m.Set(x-cfg.SafeLeft, y-cfg.SafeDown, tilemap.CellUnhookable)
		m.Set(x+cfg.SafeRight, y+cfg.SafeTop, tilemap.CellUnhookable)
		for dx := -2; dx <= 2; dx++ {
			m.Set(x+dx, y, tilemap.CellPlatform)
		}

		last = i
		if used.Has(core.Point{X: x, Y: y}) {
			continue
		}
		used.Put(core.Point{X: x, Y: y})
		placed = append(placed, Platform{Index: i, X: x, Y: y})
	}
	return placed
}

func platformAreaClear(m *tilemap.Map, x, y int, cfg PlatformConfig) bool {
	return !m.AreaContainsAny(x-cfg.SafeLeft, y-cfg.SafeDown, x+cfg.SafeRight, y+cfg.SafeTop,
		tilemap.CellSolid, tilemap.CellHookable, tilemap.CellFreeze)
}

// Validate rejects settings the passes cannot honour.
func (c Config) Validate() error {
	if c.Threshold <= 0 {
		return configError("threshold", "must be positive")
	}
	if c.Noise.Amount < 0 {
		return configError("noise.amount", "must not be negative")
	}
	if c.Noise.GridDistance < 0 {
		return configError("noise.grid_distance", "must not be negative")
	}
	p := c.Platforms
	if p.Enabled {
		if p.MinSpacing < 0 {
			return configError("platforms.min_spacing", "must not be negative")
		}
		// the platform is five cells wide and must lie inside the checked area
		if p.SafeLeft < 2 || p.SafeRight < 2 {
			return configError("platforms", "safe_left and safe_right must be at least 2")
		}
		if p.SafeTop < 0 || p.SafeDown < 0 {
			return configError("platforms", "safe margins must not be negative")
		}
	}
	return nil
}

func configError(field, reason string) error {
	return &core.ConfigError{Scope: "finish", Field: field, Reason: reason}
}
