package core

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
)

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	seed   int64
	stream uint64
	r      *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{seed: seed, r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Derive returns an independent stream for a named subsystem. The result only
// depends on the root seed and the label, never on how much of the parent
// stream has been consumed.
func (r *RNG) Derive(label string) *RNG {
	h := fnv.New64a()
	h.Write([]byte(label))
	stream := h.Sum64() ^ r.stream
	return &RNG{seed: r.seed, stream: stream, r: rand.New(rand.NewPCG(uint64(r.seed), stream))}
}

// Seed reports the root seed the stream was created from.
func (r *RNG) Seed() int64 { return r.seed }

// Chance returns true with probability p. Values outside [0, 1] saturate.
func (r *RNG) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.r.Float64() < p
}

// Float64 returns a value in [0, 1).
func (r *RNG) Float64() float64 { return r.r.Float64() }

// IntN returns a value in [0, n). It returns 0 when n <= 0.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// Source exposes the underlying rand.Rand for advanced use.
func (r *RNG) Source() *rand.Rand { return r.r }

// Roulette picks one of values with probability proportional to its weight.
// Weights need not sum to one. Negative weights count as zero; when every
// weight is zero the pick is uniform.
func Roulette[T any](r *RNG, values []T, weights []float64) T {
	var zero T
	if len(values) == 0 {
		return zero
	}
	n := len(values)
	if len(weights) < n {
		n = len(weights)
	}
	total := 0.0
	for i := 0; i < n; i++ {
		if weights[i] > 0 {
			total += weights[i]
		}
	}
	if n == 0 || total <= 0 {
		return values[r.IntN(len(values))]
	}
	pick := r.r.Float64() * total
	acc := 0.0
	last := 0
	for i := 0; i < n; i++ {
		if weights[i] <= 0 {
			continue
		}
		acc += weights[i]
		last = i
		if pick < acc {
			return values[i]
		}
	}
	// float rounding can leave pick == total
	return values[last]
}

// Choice returns a uniformly chosen element of values, or the zero value when
// values is empty.
func Choice[T any](r *RNG, values []T) T {
	var zero T
	if len(values) == 0 {
		return zero
	}
	return values[r.r.IntN(len(values))]
}

// Geometric returns P(X = k) for a geometric distribution with success
// probability p, i.e. p * (1-p)^(k-1). k < 1 yields 0.
func Geometric(k int, p float64) float64 {
	if k < 1 {
		return 0
	}
	return p * math.Pow(1-p, float64(k-1))
}
