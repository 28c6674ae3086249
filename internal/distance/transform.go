// Package distance computes per-cell distances from the carved void to the
// nearest non-empty cell.
package distance

import (
	"fmt"
	"math"
	"strings"

	"github.com/zyedidia/generic/queue"

	"carve/internal/core"
	"carve/internal/tilemap"
	prng "carve/pkg/core"
)

// Method selects the distance metric.
type Method uint8

const (
	// Euclidean is the exact straight-line distance.
	Euclidean Method = iota
	// Manhattan counts 4-connected steps.
	Manhattan
	// Chebyshev counts 8-connected steps.
	Chebyshev
)

var methodNames = [...]string{
	Euclidean: "euclidean",
	Manhattan: "manhattan",
	Chebyshev: "chebyshev",
}

func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return fmt.Sprintf("method(%d)", uint8(m))
}

// ParseMethod maps a method name to its value.
func ParseMethod(s string) (Method, error) {
	for i, name := range methodNames {
		if strings.EqualFold(s, name) {
			return Method(i), nil
		}
	}
	return 0, fmt.Errorf("unknown distance method %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(b []byte) error {
	parsed, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Transform returns a row-major field with one value per map cell: the
// distance to the nearest non-empty cell, perturbed by noise. Everything
// outside the map counts as non-empty.
func Transform(m *tilemap.Map, method Method, noise Noise, rng *prng.RNG) []float64 {
	var field []float64
	switch method {
	case Manhattan:
		field = bfs(m, false)
	case Chebyshev:
		field = bfs(m, true)
	default:
		field = euclidean(m)
	}
	noise.apply(field, m.Width(), m.Height(), rng)
	return field
}

func isSource(m *tilemap.Map, x, y int) bool {
	c, ok := m.At(x, y)
	return !ok || c != tilemap.CellEmpty
}

// bfs runs a multi-source breadth-first search from every non-empty cell and
// from the ring just outside the map.
func bfs(m *tilemap.Map, diagonal bool) []float64 {
	w, h := m.Width(), m.Height()
	steps := make([]int, w*h)
	for i := range steps {
		steps[i] = -1
	}

	q := queue.New[core.Point]()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if isSource(m, x, y) {
				steps[y*w+x] = 0
				q.Enqueue(core.Point{X: x, Y: y})
				continue
			}
			// cells touching the outside are one step from a source
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				steps[y*w+x] = 1
				q.Enqueue(core.Point{X: x, Y: y})
			}
		}
	}

	dirs := []core.Point{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}}
	if diagonal {
		dirs = append(dirs, core.Point{X: -1, Y: -1}, core.Point{X: 1, Y: -1}, core.Point{X: -1, Y: 1}, core.Point{X: 1, Y: 1})
	}
	for !q.Empty() {
		p := q.Dequeue()
		d := steps[p.Y*w+p.X]
		for _, dir := range dirs {
			n := p.Add(dir)
			if n.X < 0 || n.Y < 0 || n.X >= w || n.Y >= h {
				continue
			}
			idx := n.Y*w + n.X
			if steps[idx] >= 0 && steps[idx] <= d+1 {
				continue
			}
			steps[idx] = d + 1
			q.Enqueue(n)
		}
	}

	field := make([]float64, w*h)
	for i, s := range steps {
		field[i] = float64(s)
	}
	return field
}

// euclidean computes the exact distance transform with two separable passes
// of the lower-envelope-of-parabolas algorithm. The map is padded by one cell
// of sources on every side.
func euclidean(m *tilemap.Map) []float64 {
	w, h := m.Width(), m.Height()
	pw, ph := w+2, h+2
	inf := float64(pw*pw + ph*ph)

	grid := make([]float64, pw*ph)
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if isSource(m, x-1, y-1) {
				grid[y*pw+x] = 0
			} else {
				grid[y*pw+x] = inf
			}
		}
	}

	n := max(pw, ph)
	f := make([]float64, n)
	d := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	for x := 0; x < pw; x++ {
		for y := 0; y < ph; y++ {
			f[y] = grid[y*pw+x]
		}
		edt1D(f[:ph], d[:ph], v, z)
		for y := 0; y < ph; y++ {
			grid[y*pw+x] = d[y]
		}
	}
	for y := 0; y < ph; y++ {
		copy(f[:pw], grid[y*pw:(y+1)*pw])
		edt1D(f[:pw], d[:pw], v, z)
		copy(grid[y*pw:(y+1)*pw], d[:pw])
	}

	field := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			field[y*w+x] = math.Sqrt(grid[(y+1)*pw+x+1])
		}
	}
	return field
}

// edt1D writes the squared 1-D distance transform of f into d.
func edt1D(f, d []float64, v []int, z []float64) {
	n := len(f)
	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)
	for q := 1; q < n; q++ {
		s := intersect(f, q, v[k])
		for s <= z[k] {
			k--
			s = intersect(f, q, v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}
	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		d[q] = dq*dq + f[v[k]]
	}
}

func intersect(f []float64, q, p int) float64 {
	fq, fp := float64(q), float64(p)
	return ((f[q] + fq*fq) - (f[p] + fp*fp)) / (2*fq - 2*fp)
}
