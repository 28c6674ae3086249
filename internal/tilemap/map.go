// Package tilemap owns the typed cell grid a generation run carves into.
package tilemap

import (
	"carve/internal/core"
	"carve/internal/kernel"
)

// CellType tags a single map cell.
type CellType uint8

const (
	// CellSolid is untouched rock; every cell starts out solid.
	CellSolid CellType = iota
	CellEmpty
	CellHookable
	CellUnhookable
	CellFreeze
	CellPlatform
	CellDebug

	// CellTypeCount is the number of defined cell types.
	CellTypeCount
)

var cellTypeNames = [...]string{
	CellSolid:      "solid",
	CellEmpty:      "empty",
	CellHookable:   "hookable",
	CellUnhookable: "unhookable",
	CellFreeze:     "freeze",
	CellPlatform:   "platform",
	CellDebug:      "debug",
}

func (t CellType) String() string {
	if int(t) < len(cellTypeNames) {
		return cellTypeNames[t]
	}
	return "unknown"
}

// IsWall reports whether t blocks movement and can be hooked. Untouched solid
// rock counts as a wall.
func IsWall(t CellType) bool {
	return t == CellSolid || t == CellHookable
}

// Map is a fixed-size grid of cell types.
type Map struct {
	grid *core.ByteGrid
}

// New allocates a map where every cell is CellSolid.
func New(w, h int) *Map {
	return &Map{grid: core.NewByteGrid(w, h)}
}

// Width returns the number of columns.
func (m *Map) Width() int { return m.grid.W }

// Height returns the number of rows.
func (m *Map) Height() int { return m.grid.H }

// Size returns the map dimensions.
func (m *Map) Size() core.Size { return core.Size{W: m.grid.W, H: m.grid.H} }

// InBounds reports whether (x, y) lies inside the map.
func (m *Map) InBounds(x, y int) bool { return m.grid.InBounds(x, y) }

// At returns the cell at (x, y) and whether the coordinate was inside the map.
func (m *Map) At(x, y int) (CellType, bool) {
	if !m.grid.InBounds(x, y) {
		return CellSolid, false
	}
	return CellType(m.grid.At(x, y)), true
}

// Set writes t at (x, y). Out-of-range writes are ignored and reported as false.
func (m *Map) Set(x, y int, t CellType) bool {
	if !m.grid.InBounds(x, y) {
		return false
	}
	m.grid.Set(x, y, uint8(t))
	return true
}

// Stamp writes t at every set offset of k centred on (x, y). The low border
// row and column (x == 0, y == 0) are never written; offsets outside the map
// are skipped.
func (m *Map) Stamp(x, y int, k kernel.Kernel, t CellType) {
	offset := k.Offset()
	for kx := 0; kx < k.Size; kx++ {
		for ky := 0; ky < k.Size; ky++ {
			if !k.At(kx, ky) {
				continue
			}
			px := x + kx - offset
			py := y + ky - offset
			if px > 0 && px < m.grid.W && py > 0 && py < m.grid.H {
				m.grid.Set(px, py, uint8(t))
			}
		}
	}
}

// AreaContains reports whether any cell of the inclusive rectangle
// (x1, y1)-(x2, y2) holds t. The rectangle is clipped to the map.
func (m *Map) AreaContains(x1, y1, x2, y2 int, t CellType) bool {
	return m.AreaContainsAny(x1, y1, x2, y2, t)
}

// AreaContainsAny reports whether any cell of the inclusive rectangle holds
// one of types. The rectangle is clipped to the map.
func (m *Map) AreaContainsAny(x1, y1, x2, y2 int, types ...CellType) bool {
	if len(types) == 0 {
		return false
	}
	var want [CellTypeCount]bool
	for _, t := range types {
		if t < CellTypeCount {
			want[t] = true
		}
	}
	x1, x2 = max(x1, 0), min(x2, m.grid.W-1)
	y1, y2 = max(y1, 0), min(y2, m.grid.H-1)
	for x := x1; x <= x2; x++ {
		for y := y1; y <= y2; y++ {
			if c := m.grid.At(x, y); c < uint8(CellTypeCount) && want[c] {
				return true
			}
		}
	}
	return false
}

// Neighbors3x3 returns the block centred on (x, y), indexed [dx+1][dy+1].
// Cells outside the map read as CellSolid.
func (m *Map) Neighbors3x3(x, y int) [3][3]CellType {
	var block [3][3]CellType
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			block[dx+1][dy+1], _ = m.At(x+dx, y+dy)
		}
	}
	return block
}

// Count returns how many cells hold t.
func (m *Map) Count(t CellType) int { return m.grid.Count(uint8(t)) }

// Counts returns the number of cells per type.
func (m *Map) Counts() [CellTypeCount]int {
	var counts [CellTypeCount]int
	for t := CellType(0); t < CellTypeCount; t++ {
		counts[t] = m.Count(t)
	}
	return counts
}

// CopyTo copies the cells into dst in row-major order, for display buffers.
func (m *Map) CopyTo(dst []uint8) int { return m.grid.CopyTo(dst) }

// Clone returns an independent deep copy.
func (m *Map) Clone() *Map { return &Map{grid: m.grid.Clone()} }

// Equal reports whether both maps have the same size and cells.
func (m *Map) Equal(other *Map) bool {
	if other == nil || m.grid.W != other.grid.W || m.grid.H != other.grid.H {
		return false
	}
	for y := 0; y < m.grid.H; y++ {
		for x := 0; x < m.grid.W; x++ {
			if m.grid.At(x, y) != other.grid.At(x, y) {
				return false
			}
		}
	}
	return true
}
