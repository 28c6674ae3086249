package export

import (
	"image"

	"github.com/anthonynsimon/bild/transform"

	"carve/internal/sims/carver"
	"carve/internal/tilemap"
)

// Image renders m with one pixel per cell, y = 0 at the bottom, and scales
// it up by scale with nearest-neighbour sampling.
func Image(m *tilemap.Map, scale int) image.Image {
	w, h := m.Width(), m.Height()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c, _ := m.At(x, y)
			img.SetRGBA(x, h-1-y, carver.CellColor(c))
		}
	}
	if scale <= 1 {
		return img
	}
	return transform.Resize(img, w*scale, h*scale, transform.NearestNeighbor)
}
