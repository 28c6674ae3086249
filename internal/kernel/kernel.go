// Package kernel builds the boolean brushes the walker carves with and
// evolves their size and circularity over the course of a run.
package kernel

import "math"

// Kernel is an odd-sized square mask centred on its middle cell.
type Kernel struct {
	Size        int
	Circularity float64
	mask        []bool
}

// Build returns the mask for the given size and circularity. A circularity of
// 1 yields the disk inscribed in the square, 0 the full square, and values in
// between interpolate the radius linearly. The result is a pure function of
// its inputs.
func Build(size int, circularity float64) Kernel {
	if size < 1 {
		size = 1
	}
	circularity = clamp01(circularity)

	center := float64(size-1) / 2
	minRadius := center
	maxRadius := math.Sqrt(center*center + center*center)
	radius := circularity*minRadius + (1-circularity)*maxRadius

	k := Kernel{Size: size, Circularity: circularity, mask: make([]bool, size*size)}
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			dx := float64(x) - center
			dy := float64(y) - center
			if math.Sqrt(dx*dx+dy*dy) <= radius {
				k.mask[y*size+x] = true
			}
		}
	}
	return k
}

// At reports whether offset (x, y) of the mask is set. Offsets outside the
// mask are false.
func (k Kernel) At(x, y int) bool {
	if x < 0 || y < 0 || x >= k.Size || y >= k.Size {
		return false
	}
	return k.mask[y*k.Size+x]
}

// Offset returns the distance from the mask origin to its centre.
func (k Kernel) Offset() int { return (k.Size - 1) / 2 }

// Count returns the number of set cells.
func (k Kernel) Count() int {
	n := 0
	for _, v := range k.mask {
		if v {
			n++
		}
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
