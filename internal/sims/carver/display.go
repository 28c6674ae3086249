package carver

import (
	"fmt"
	"image/color"

	"carve/internal/tilemap"
)

var carverPalette = buildPalette()

// Palette exposes the colour of every cell type, indexed by tilemap.CellType.
func (g *Generator) Palette() []color.RGBA {
	return carverPalette
}

// CellColor returns the display colour of t.
func CellColor(t tilemap.CellType) color.RGBA {
	if int(t) < len(carverPalette) {
		return carverPalette[t]
	}
	return color.RGBA{R: 255, G: 0, B: 255, A: 255}
}

func buildPalette() []color.RGBA {
	palette := make([]color.RGBA, tilemap.CellTypeCount)
	for i := range palette {
		palette[i] = paletteColorFor(tilemap.CellType(i))
	}
	return palette
}

func paletteColorFor(t tilemap.CellType) color.RGBA {
	switch t {
	case tilemap.CellEmpty:
		return color.RGBA{R: 24, G: 26, B: 34, A: 255}
	case tilemap.CellHookable:
		return color.RGBA{R: 176, G: 140, B: 96, A: 255}
	case tilemap.CellUnhookable:
		return color.RGBA{R: 92, G: 96, B: 110, A: 255}
	case tilemap.CellFreeze:
		return color.RGBA{R: 70, G: 130, B: 200, A: 255}
	case tilemap.CellPlatform:
		return color.RGBA{R: 230, G: 200, B: 60, A: 255}
	case tilemap.CellDebug:
		return color.RGBA{R: 220, G: 40, B: 120, A: 255}
	case tilemap.CellSolid:
		fallthrough
	default:
		return color.RGBA{R: 120, G: 92, B: 60, A: 255}
	}
}

func formatStatus(iter, maxIter, waypoint, waypoints int, state string) string {
	return fmt.Sprintf("step %d/%d  waypoint %d/%d  %s", iter, maxIter, waypoint, waypoints, state)
}
