package walker

import (
	"fmt"

	"carve/internal/core"
	prng "carve/pkg/core"
)

// Mode identifies the walker's movement state.
type Mode uint8

const (
	// ModeWander moves probabilistically toward the active waypoint.
	ModeWander Mode = iota
	// ModeTunnel moves in a fixed direction with a square brush.
	ModeTunnel
)

func (m Mode) String() string {
	switch m {
	case ModeWander:
		return "wander"
	case ModeTunnel:
		return "tunnel"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// transitions lists the modes reachable from each mode in a single step.
var transitions = map[Mode][]Mode{
	ModeWander: {ModeWander, ModeTunnel},
	ModeTunnel: {ModeTunnel, ModeWander},
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to Mode) bool {
	for _, m := range transitions[from] {
		if m == to {
			return true
		}
	}
	return false
}

// state is one node of the walker state machine. step picks the move for the
// current tick and returns the state that is active afterwards.
type state interface {
	mode() Mode
	step(w *Walker) (core.Point, state)
}

type wanderState struct{}

func (wanderState) mode() Mode { return ModeWander }

func (wanderState) step(w *Walker) (core.Point, state) {
	moves, weights := w.moveDistribution()
	picked := prng.Roulette(w.rng, moves, weights)
	w.kernels.Mutate(w.cfg.SizeChangeProb, w.cfg.CircularityChangeProb)

	tc := w.cfg.Tunnel
	if tc.Enabled && w.rng.Chance(tc.Probability) {
		length := prng.Choice(w.rng, tc.Lengths)
		width := prng.Choice(w.rng, tc.Widths)
		w.kernels.ForceConfig(width, 0)
		return picked, &tunnelState{dir: w.bestMove(), remaining: length}
	}
	return picked, wanderState{}
}

// tunnelState only exists while tunnelling; its direction and counter are
// dropped when the walker returns to wandering.
type tunnelState struct {
	dir       core.Point
	remaining int
}

func (*tunnelState) mode() Mode { return ModeTunnel }

func (s *tunnelState) step(*Walker) (core.Point, state) {
	if s.remaining <= 0 {
		return s.dir, wanderState{}
	}
	s.remaining--
	return s.dir, s
}
