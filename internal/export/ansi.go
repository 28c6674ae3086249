package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gookit/color"

	"carve/internal/sims/carver"
	"carve/internal/tilemap"
)

// cells with a higher priority win when several map cells share one
// terminal character
var previewPriority = [tilemap.CellTypeCount]int{
	tilemap.CellSolid:      0,
	tilemap.CellEmpty:      1,
	tilemap.CellHookable:   2,
	tilemap.CellFreeze:     3,
	tilemap.CellUnhookable: 4,
	tilemap.CellDebug:      5,
	tilemap.CellPlatform:   6,
}

// WriteANSI renders a coloured preview of m that fits into cols x rows
// terminal cells. The map is sampled down when it is larger.
func WriteANSI(w io.Writer, m *tilemap.Map, legend *Legend, cols, rows int) error {
	if cols < 1 {
		cols = 1
	}
	// the legend takes one line
	if rows < 2 {
		rows = 2
	}
	rows--
	step := max(1, (m.Width()+cols-1)/cols, (m.Height()+rows-1)/rows)

	bw := bufio.NewWriter(w)
	for y := m.Height() - 1; y >= 0; y -= step {
		for x := 0; x < m.Width(); x += step {
			t := sampleBlock(m, x, y-step+1, x+step-1, y)
			c := carver.CellColor(t)
			bw.WriteString(color.RGB(c.R, c.G, c.B).Sprint(string(Glyph(t))))
		}
		bw.WriteByte('\n')
	}
	for t := tilemap.CellType(0); t < tilemap.CellTypeCount; t++ {
		c := carver.CellColor(t)
		fmt.Fprintf(bw, "%s %s  ", color.RGB(c.R, c.G, c.B).Sprint(string(Glyph(t))), legend.Label(t))
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

func sampleBlock(m *tilemap.Map, x1, y1, x2, y2 int) tilemap.CellType {
	best := tilemap.CellSolid
	found := false
	for y := max(y1, 0); y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			c, ok := m.At(x, y)
			if !ok {
				continue
			}
			if !found || previewPriority[c] > previewPriority[best] {
				best, found = c, true
			}
		}
	}
	return best
}
