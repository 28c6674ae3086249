package core

// ByteGrid stores a 2D grid of byte-sized cell values in row-major order.
type ByteGrid struct {
	W, H int
	data []uint8
}

// NewByteGrid allocates a grid with the given dimensions.
func NewByteGrid(w, h int) *ByteGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &ByteGrid{W: w, H: h, data: make([]uint8, w*h)}
}

// Index returns the linear slice index for coordinates (x, y).
func (g *ByteGrid) Index(x, y int) int { return y*g.W + x }

// InBounds reports whether (x, y) lies inside the grid.
func (g *ByteGrid) InBounds(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// At returns the value at (x, y). Callers check bounds first.
func (g *ByteGrid) At(x, y int) uint8 { return g.data[y*g.W+x] }

// Set stores v at (x, y). Callers check bounds first.
func (g *ByteGrid) Set(x, y int, v uint8) { g.data[y*g.W+x] = v }

// Fill sets every cell to v.
func (g *ByteGrid) Fill(v uint8) {
	for i := range g.data {
		g.data[i] = v
	}
}

// Clone returns an independent copy of the grid.
func (g *ByteGrid) Clone() *ByteGrid {
	data := make([]uint8, len(g.data))
	copy(data, g.data)
	return &ByteGrid{W: g.W, H: g.H, data: data}
}

// CopyTo copies the cells into dst in row-major order and returns the number
// of cells written.
func (g *ByteGrid) CopyTo(dst []uint8) int { return copy(dst, g.data) }

// Count returns how many cells hold v.
func (g *ByteGrid) Count(v uint8) int {
	n := 0
	for _, c := range g.data {
		if c == v {
			n++
		}
	}
	return n
}
