// Package render converts cell buffers into pixels.
package render

import "image/color"

// fillPaletteRGBA converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black. Rows are
// flipped so that y = 0 ends up at the bottom of the image.
func fillPaletteRGBA(buf []byte, cells []uint8, w int, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf)
		return
	}
	if w <= 0 {
		return
	}
	h := len(cells) / w
	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		x, y := i%w, i/w
		base := ((h-1-y)*w + x) * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}
