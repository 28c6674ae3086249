package export

import (
	"bufio"
	"fmt"
	"io"

	"carve/internal/tilemap"
)

// WriteText writes a legend followed by one glyph per cell. Rows are written
// top to bottom, so y = 0 ends up on the last line.
func WriteText(w io.Writer, m *tilemap.Map, legend *Legend) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %dx%d\n", m.Width(), m.Height())
	for t := tilemap.CellType(0); t < tilemap.CellTypeCount; t++ {
		fmt.Fprintf(bw, "# %c %s\n", Glyph(t), legend.Label(t))
	}
	row := make([]rune, m.Width())
	for y := m.Height() - 1; y >= 0; y-- {
		for x := range row {
			c, _ := m.At(x, y)
			row[x] = Glyph(c)
		}
		bw.WriteString(string(row))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
