// Package walker implements the digger that carves a map one step at a time.
package walker

import (
	"fmt"
	"math"
	"sort"

	"carve/internal/core"
	"carve/internal/kernel"
	"carve/internal/tilemap"
	prng "carve/pkg/core"
)

// TunnelConfig controls the straight tunnelling mode.
type TunnelConfig struct {
	Enabled     bool    `json:"enabled"`
	Probability float64 `json:"probability"`
	Lengths     []int   `json:"lengths"`
	Widths      []int   `json:"widths"`
}

// Config holds the walker tunables.
type Config struct {
	Start     core.Point   `json:"start"`
	Waypoints []core.Point `json:"waypoints"`

	// BestMoveProbability is the success probability of the geometric
	// distribution over moves ranked by distance to the target.
	BestMoveProbability   float64 `json:"best_move_probability"`
	SizeChangeProb        float64 `json:"size_change_prob"`
	CircularityChangeProb float64 `json:"circularity_change_prob"`

	Tunnel TunnelConfig `json:"tunnel"`
}

// Validate rejects configurations the walker cannot run with.
func (c Config) Validate() error {
	if len(c.Waypoints) == 0 {
		return configError("waypoints", "at least one waypoint is required")
	}
	if c.BestMoveProbability <= 0 || c.BestMoveProbability > 1 {
		return configError("best_move_probability", "must be in (0, 1]")
	}
	if !isProbability(c.SizeChangeProb) {
		return configError("size_change_prob", "must be in [0, 1]")
	}
	if !isProbability(c.CircularityChangeProb) {
		return configError("circularity_change_prob", "must be in [0, 1]")
	}
	if c.Tunnel.Enabled {
		if !isProbability(c.Tunnel.Probability) {
			return configError("tunnel.probability", "must be in [0, 1]")
		}
		if len(c.Tunnel.Lengths) == 0 {
			return configError("tunnel.lengths", "tunnel mode needs at least one length")
		}
		if len(c.Tunnel.Widths) == 0 {
			return configError("tunnel.widths", "tunnel mode needs at least one width")
		}
		for _, l := range c.Tunnel.Lengths {
			if l < 0 {
				return configError("tunnel.lengths", fmt.Sprintf("negative length %d", l))
			}
		}
		for _, w := range c.Tunnel.Widths {
			if w < 1 || w%2 == 0 {
				return configError("tunnel.widths", fmt.Sprintf("width %d must be odd and at least 1", w))
			}
		}
	}
	return nil
}

func isProbability(p float64) bool { return p >= 0 && p <= 1 }

func configError(field, reason string) error {
	return &core.ConfigError{Scope: "walker", Field: field, Reason: reason}
}

// axisMoves are the candidate moves in wander mode, in evaluation order.
var axisMoves = []core.Point{{X: -1, Y: 0}, {X: 0, Y: -1}, {X: 0, Y: 1}, {X: 1, Y: 0}}

// Walker carves the map it was given while walking toward its waypoints.
type Walker struct {
	cfg     Config
	grid    *tilemap.Map
	kernels *kernel.Generator
	rng     *prng.RNG

	pos         core.Point
	targetIndex int
	finished    bool
	state       state
	history     []core.Point
	steps       int
}

// New validates cfg and places the walker at its start position.
func New(cfg Config, grid *tilemap.Map, kernels *kernel.Generator, rng *prng.RNG) (*Walker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if grid == nil || kernels == nil {
		return nil, fmt.Errorf("walker: grid and kernel generator are required")
	}
	if rng == nil {
		rng = prng.NewRNG(0)
	}
	w := &Walker{
		cfg:     cfg,
		grid:    grid,
		kernels: kernels,
		rng:     rng,
		pos:     cfg.Start,
		state:   wanderState{},
		history: []core.Point{cfg.Start},
	}
	w.advanceTarget()
	return w, nil
}

// Step advances the walker by one move. It never stops on its own; the
// caller decides when the run is over.
func (w *Walker) Step() {
	move, next := w.state.step(w)
	if !CanTransition(w.state.mode(), next.mode()) {
		panic(fmt.Sprintf("walker: illegal transition %v -> %v", w.state.mode(), next.mode()))
	}
	w.state = next

	w.pos = w.pos.Add(move)
	w.history = append(w.history, w.pos)
	w.grid.Stamp(w.pos.X, w.pos.Y, w.kernels.Current(), tilemap.CellEmpty)
	w.advanceTarget()
	w.steps++
}

func (w *Walker) advanceTarget() {
	last := len(w.cfg.Waypoints) - 1
	if w.pos != w.cfg.Waypoints[w.targetIndex] {
		return
	}
	if w.targetIndex < last {
		w.targetIndex++
		return
	}
	w.finished = true
}

// moveDistribution ranks the axis moves by the distance of the resulting
// position to the target and weights rank i with Geometric(i+1, p).
func (w *Walker) moveDistribution() ([]core.Point, []float64) {
	target := w.Target()
	moves := make([]core.Point, len(axisMoves))
	copy(moves, axisMoves)
	dist := make(map[core.Point]float64, len(moves))
	for _, m := range moves {
		dist[m] = euclid(w.pos.Add(m), target)
	}
	sort.SliceStable(moves, func(i, j int) bool { return dist[moves[i]] < dist[moves[j]] })

	weights := make([]float64, len(moves))
	sum := 0.0
	for i := range moves {
		weights[i] = prng.Geometric(i+1, w.cfg.BestMoveProbability)
		sum += weights[i]
	}
	if sum > 0 {
		for i := range weights {
			weights[i] /= sum
		}
	}
	return moves, weights
}

// bestMove returns the first move, in evaluation order, that minimises the
// distance to the target.
func (w *Walker) bestMove() core.Point {
	target := w.Target()
	best := core.Point{}
	bestDist := math.Inf(1)
	for _, m := range axisMoves {
		if d := euclid(w.pos.Add(m), target); d < bestDist {
			bestDist = d
			best = m
		}
	}
	return best
}

func euclid(a, b core.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Position returns the current walker position.
func (w *Walker) Position() core.Point { return w.pos }

// Target returns the active waypoint.
func (w *Walker) Target() core.Point { return w.cfg.Waypoints[w.targetIndex] }

// TargetIndex returns the index of the active waypoint.
func (w *Walker) TargetIndex() int { return w.targetIndex }

// Waypoints returns a copy of the waypoint list.
func (w *Walker) Waypoints() []core.Point {
	return append([]core.Point(nil), w.cfg.Waypoints...)
}

// Mode returns the active movement mode.
func (w *Walker) Mode() Mode { return w.state.mode() }

// TunnelRemaining returns the remaining tunnel steps, or 0 while wandering.
func (w *Walker) TunnelRemaining() int {
	if t, ok := w.state.(*tunnelState); ok {
		return t.remaining
	}
	return 0
}

// Finished reports whether the walker has stood on its last waypoint.
func (w *Walker) Finished() bool { return w.finished }

// Steps returns how many steps have been taken.
func (w *Walker) Steps() int { return w.steps }

// History returns a copy of every position occupied so far, starting with the
// initial position.
func (w *Walker) History() []core.Point {
	return append([]core.Point(nil), w.history...)
}

// HistoryLen returns the number of recorded positions.
func (w *Walker) HistoryLen() int { return len(w.history) }

// Kernel returns the brush the walker currently carves with.
func (w *Walker) Kernel() kernel.Kernel { return w.kernels.Current() }

// OuterKernel returns the margin brush around the current one.
func (w *Walker) OuterKernel() kernel.Kernel { return w.kernels.Outer() }
