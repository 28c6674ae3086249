package kernel

import (
	"fmt"
	"math"

	"carve/internal/core"
	prng "carve/pkg/core"
)

// ProbabilityTolerance is the allowed drift of a probability table sum from 1.
const ProbabilityTolerance = 1e-4

// CircularityConfig is one entry of a per-size circularity distribution.
type CircularityConfig struct {
	Circularity float64 `json:"circularity"`
	Probability float64 `json:"probability"`
}

// SizeConfig is one entry of the size distribution together with the
// circularity distribution used while that size is active.
type SizeConfig struct {
	Size          int                 `json:"size"`
	Probability   float64             `json:"probability"`
	Circularities []CircularityConfig `json:"circularities"`
}

// OuterOptions controls the secondary kernel used for margin effects.
type OuterOptions struct {
	// SizeMarginProb is the chance the outer kernel is two cells wider.
	SizeMarginProb float64 `json:"size_margin_prob"`
	// SquareProb is the chance the outer kernel uses circularity 0.
	SquareProb float64 `json:"square_prob"`
}

// DefaultOuterOptions matches the distribution the generator was tuned with.
func DefaultOuterOptions() OuterOptions {
	return OuterOptions{SizeMarginProb: 1.0 / 9.0, SquareProb: 1.0 / 5.0}
}

// Validate checks that the size weights and every circularity table sum to 1.
func Validate(cfg []SizeConfig) error {
	if len(cfg) == 0 {
		return configError("sizes", "no sizes configured")
	}
	seen := make(map[int]bool, len(cfg))
	sum := 0.0
	for _, sc := range cfg {
		field := fmt.Sprintf("sizes[%d]", sc.Size)
		if sc.Size < 1 || sc.Size%2 == 0 {
			return configError(field, "size must be odd and at least 1")
		}
		if seen[sc.Size] {
			return configError(field, "duplicate size")
		}
		seen[sc.Size] = true
		if sc.Probability < 0 {
			return configError(field, "negative probability")
		}
		sum += sc.Probability

		if len(sc.Circularities) == 0 {
			return configError(field+".circularities", "no circularities configured")
		}
		circSum := 0.0
		for _, cc := range sc.Circularities {
			if cc.Circularity < 0 || cc.Circularity > 1 {
				return configError(field+".circularities", fmt.Sprintf("circularity %v outside [0,1]", cc.Circularity))
			}
			if cc.Probability < 0 {
				return configError(field+".circularities", "negative probability")
			}
			circSum += cc.Probability
		}
		if math.Abs(circSum-1) > ProbabilityTolerance {
			return configError(field+".circularities", fmt.Sprintf("probabilities sum to %v, not 1", circSum))
		}
	}
	if math.Abs(sum-1) > ProbabilityTolerance {
		return configError("sizes", fmt.Sprintf("probabilities sum to %v, not 1", sum))
	}
	return nil
}

func configError(field, reason string) error {
	return &core.ConfigError{Scope: "kernel", Field: field, Reason: reason}
}

// Generator holds the active brush and mutates it on demand.
type Generator struct {
	cfg   []SizeConfig
	outer OuterOptions
	rng   *prng.RNG

	size        int
	circularity float64

	current      Kernel
	currentOuter Kernel

	sizes       []int
	sizeWeights []float64
}

// NewGenerator validates cfg and builds the initial kernels.
func NewGenerator(cfg []SizeConfig, size int, circularity float64, outer OuterOptions, rng *prng.RNG) (*Generator, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	if size < 1 || size%2 == 0 {
		return nil, configError("initial_size", "size must be odd and at least 1")
	}
	if circularity < 0 || circularity > 1 {
		return nil, configError("initial_circularity", "circularity outside [0,1]")
	}
	if rng == nil {
		rng = prng.NewRNG(0)
	}
	g := &Generator{
		cfg:         cfg,
		outer:       outer,
		rng:         rng,
		size:        size,
		circularity: circularity,
		sizes:       make([]int, len(cfg)),
		sizeWeights: make([]float64, len(cfg)),
	}
	for i, sc := range cfg {
		g.sizes[i] = sc.Size
		g.sizeWeights[i] = sc.Probability
	}
	g.rebuild()
	return g, nil
}

// Current returns the primary kernel.
func (g *Generator) Current() Kernel { return g.current }

// Outer returns the secondary margin kernel.
func (g *Generator) Outer() Kernel { return g.currentOuter }

// Size returns the active kernel size.
func (g *Generator) Size() int { return g.size }

// Circularity returns the active kernel circularity.
func (g *Generator) Circularity() float64 { return g.circularity }

// Mutate independently redraws the size with probability sizeChangeProb and
// the circularity with probability circChangeProb. The circularity table is
// the one of the size that is active after the size draw.
func (g *Generator) Mutate(sizeChangeProb, circChangeProb float64) {
	updateSize := g.rng.Chance(sizeChangeProb)
	updateCirc := g.rng.Chance(circChangeProb)

	prevSize, prevCirc := g.size, g.circularity
	if updateSize {
		g.size = prng.Roulette(g.rng, g.sizes, g.sizeWeights)
	}
	if updateCirc {
		if sc, ok := g.sizeConfig(g.size); ok {
			values := make([]float64, len(sc.Circularities))
			weights := make([]float64, len(sc.Circularities))
			for i, cc := range sc.Circularities {
				values[i] = cc.Circularity
				weights[i] = cc.Probability
			}
			g.circularity = prng.Roulette(g.rng, values, weights)
		}
	}

	if g.size != prevSize || g.circularity != prevCirc {
		g.rebuild()
	}
}

// ForceConfig overrides both parameters and rebuilds the kernels.
func (g *Generator) ForceConfig(size int, circularity float64) {
	if size < 1 {
		size = 1
	}
	g.size = size
	g.circularity = clamp01(circularity)
	g.rebuild()
}

func (g *Generator) sizeConfig(size int) (SizeConfig, bool) {
	for _, sc := range g.cfg {
		if sc.Size == size {
			return sc, true
		}
	}
	return SizeConfig{}, false
}

func (g *Generator) rebuild() {
	g.current = Build(g.size, g.circularity)

	outerSize := g.size
	if g.rng.Chance(g.outer.SizeMarginProb) {
		outerSize += 2
	}
	outerCirc := g.circularity
	if g.rng.Chance(g.outer.SquareProb) {
		outerCirc = 0
	}
	g.currentOuter = Build(outerSize, outerCirc)
}
