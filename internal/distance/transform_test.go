package distance

import (
	"math"
	"slices"
	"testing"

	"carve/internal/tilemap"
	prng "carve/pkg/core"
)

// openMap carves every cell except the outer ring.
func openMap(w, h int) *tilemap.Map {
	m := tilemap.New(w, h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			m.Set(x, y, tilemap.CellEmpty)
		}
	}
	return m
}

func TestSourcesAreZero(t *testing.T) {
	m := openMap(9, 9)
	for _, method := range []Method{Euclidean, Manhattan, Chebyshev} {
		field := Transform(m, method, Noise{}, nil)
		for x := 0; x < 9; x++ {
			if field[x] != 0 || field[8*9+x] != 0 {
				t.Fatalf("%v: border cell x=%d should be 0", method, x)
			}
		}
	}
}

func TestMetricsOnOpenSquare(t *testing.T) {
	m := openMap(9, 9)
	center := 4*9 + 4

	if got := Transform(m, Euclidean, Noise{}, nil)[center]; math.Abs(got-4) > 1e-9 {
		t.Fatalf("euclidean centre = %f, expected 4", got)
	}
	if got := Transform(m, Manhattan, Noise{}, nil)[center]; got != 4 {
		t.Fatalf("manhattan centre = %f, expected 4", got)
	}
	if got := Transform(m, Chebyshev, Noise{}, nil)[center]; got != 4 {
		t.Fatalf("chebyshev centre = %f, expected 4", got)
	}

	// (2,2) is two steps from the ring on both axes
	idx := 2*9 + 2
	if got := Transform(m, Manhattan, Noise{}, nil)[idx]; got != 2 {
		t.Fatalf("manhattan (2,2) = %f, expected 2", got)
	}
}

func TestEuclideanSinglePillar(t *testing.T) {
	const w, h = 21, 21
	m := tilemap.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, tilemap.CellEmpty)
		}
	}
	m.Set(10, 10, tilemap.CellSolid)
	field := Transform(m, Euclidean, Noise{}, nil)

	want := math.Sqrt(3*3 + 4*4)
	if got := field[13*w+14]; math.Abs(got-want) > 1e-9 {
		t.Fatalf("distance at (14,13) = %f, expected %f", got, want)
	}
	// distance to the outside ring dominates near the edge
	if got := field[0*w+5]; got != 1 {
		t.Fatalf("edge cell distance = %f, expected 1", got)
	}
}

func TestEuclideanMatchesBruteForce(t *testing.T) {
	const w, h = 17, 13
	rng := prng.NewRNG(4)
	m := tilemap.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if rng.Chance(0.85) {
				m.Set(x, y, tilemap.CellEmpty)
			}
		}
	}
	field := Transform(m, Euclidean, Noise{}, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			best := math.Inf(1)
			for sy := -1; sy <= h; sy++ {
				for sx := -1; sx <= w; sx++ {
					if !isSource(m, sx, sy) {
						continue
					}
					d := math.Hypot(float64(sx-x), float64(sy-y))
					if d < best {
						best = d
					}
				}
			}
			if got := field[y*w+x]; math.Abs(got-best) > 1e-9 {
				t.Fatalf("(%d,%d) = %f, brute force %f", x, y, got, best)
			}
		}
	}
}

func TestNoiseDeterministicPerSeed(t *testing.T) {
	m := openMap(24, 16)
	for _, kind := range []NoiseKind{NoiseUniform, NoiseSimplex, NoisePerlin} {
		noise := Noise{Kind: kind, Amount: 0.8, GridDistance: 4}
		a := Transform(m, Euclidean, noise, prng.NewRNG(9).Derive("noise"))
		b := Transform(m, Euclidean, noise, prng.NewRNG(9).Derive("noise"))
		if !slices.Equal(a, b) {
			t.Fatalf("%v noise not deterministic for equal seeds", kind)
		}
		base := Transform(m, Euclidean, Noise{}, nil)
		for i := range a {
			if math.Abs(a[i]-base[i]) > noise.Amount+1e-9 {
				t.Fatalf("%v noise exceeded amount at %d: %f vs %f", kind, i, a[i], base[i])
			}
		}
	}
}

func TestParseNames(t *testing.T) {
	if m, err := ParseMethod("Chebyshev"); err != nil || m != Chebyshev {
		t.Fatalf("ParseMethod: %v %v", m, err)
	}
	if _, err := ParseMethod("taxicab"); err == nil {
		t.Fatal("expected error for unknown method")
	}
	if k, err := ParseNoiseKind("perlin"); err != nil || k != NoisePerlin {
		t.Fatalf("ParseNoiseKind: %v %v", k, err)
	}
}
