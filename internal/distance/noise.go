package distance

import (
	"fmt"
	"strings"

	perlin "github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"

	prng "carve/pkg/core"
)

// NoiseKind selects how distances are perturbed before thresholding.
type NoiseKind uint8

const (
	// NoiseUniform draws independent values per cell from the run RNG.
	NoiseUniform NoiseKind = iota
	// NoiseSimplex samples smooth OpenSimplex noise.
	NoiseSimplex
	// NoisePerlin samples smooth Perlin noise.
	NoisePerlin
)

var noiseKindNames = [...]string{
	NoiseUniform: "uniform",
	NoiseSimplex: "simplex",
	NoisePerlin:  "perlin",
}

func (k NoiseKind) String() string {
	if int(k) < len(noiseKindNames) {
		return noiseKindNames[k]
	}
	return fmt.Sprintf("noise(%d)", uint8(k))
}

// ParseNoiseKind maps a noise name to its value.
func ParseNoiseKind(s string) (NoiseKind, error) {
	for i, name := range noiseKindNames {
		if strings.EqualFold(s, name) {
			return NoiseKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown noise kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k NoiseKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *NoiseKind) UnmarshalText(b []byte) error {
	parsed, err := ParseNoiseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Noise perturbs a distance field by Amount * n(x, y) with n in [-1, 1].
type Noise struct {
	Kind   NoiseKind `json:"kind"`
	Amount float64   `json:"amount"`
	// GridDistance is the feature size of smooth noise in cells.
	GridDistance int `json:"grid_distance"`
}

const (
	perlinAlpha = 2
	perlinBeta  = 2
	perlinOct   = 3
)

func (n Noise) apply(field []float64, w, h int, rng *prng.RNG) {
	if n.Amount == 0 || len(field) == 0 {
		return
	}
	if rng == nil {
		rng = prng.NewRNG(0)
	}
	scale := 1.0
	if n.GridDistance > 0 {
		scale = 1 / float64(n.GridDistance)
	}

	var sample func(x, y int) float64
	switch n.Kind {
	case NoiseSimplex:
		src := opensimplex.New(rng.Source().Int64())
		sample = func(x, y int) float64 {
			return clampUnit(src.Eval2(float64(x)*scale, float64(y)*scale))
		}
	case NoisePerlin:
		src := perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOct, rng.Source().Int64())
		sample = func(x, y int) float64 {
			// offset keeps samples off the integer lattice where perlin is zero
			return clampUnit(2 * src.Noise2D(float64(x)*scale+0.5, float64(y)*scale+0.5))
		}
	default:
		sample = func(int, int) float64 {
			return rng.Float64()*2 - 1
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			field[y*w+x] += n.Amount * sample(x, y)
		}
	}
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
