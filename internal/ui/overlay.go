//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"carve/internal/core"
	"carve/internal/kernel"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type walkerProvider interface {
	WalkerPosition() core.Point
	Waypoints() []core.Point
	TargetIndex() int
}

type kernelProvider interface {
	OuterKernel() kernel.Kernel
}

type pathProvider interface {
	Path() []core.Point
}

// Overlay draws the walker, its waypoints and its brush on top of the map.
type Overlay struct {
	sim   core.Sim
	scale int

	showWaypoints bool
	showKernel    bool
	showPath      bool

	pixel *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	o := &Overlay{sim: sim, scale: scale, showWaypoints: true, showKernel: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles overlay layers from the keyboard.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showWaypoints = !o.showWaypoints
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showKernel = !o.showKernel
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit3) {
		o.showPath = !o.showPath
	}
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	size := o.sim.Size()
	if size.W <= 0 || size.H <= 0 {
		return
	}
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}
	wp, ok := o.sim.(walkerProvider)
	if !ok {
		return
	}

	if o.showPath {
		if provider, ok := o.sim.(pathProvider); ok {
			o.drawPath(screen, provider.Path(), size, scale)
		}
	}

	if o.showWaypoints {
		points := wp.Waypoints()
		target := wp.TargetIndex()
		for i := 1; i < len(points); i++ {
			ax, ay := o.cellCenter(points[i-1], size, scale)
			bx, by := o.cellCenter(points[i], size, scale)
			o.drawLine(screen, ax, ay, bx, by, 1, color.RGBA{R: 200, G: 200, B: 220, A: 90})
		}
		for i, p := range points {
			col := color.RGBA{R: 140, G: 140, B: 160, A: 200}
			switch {
			case i == target:
				col = color.RGBA{R: 255, G: 80, B: 80, A: 255}
			case i < target:
				col = color.RGBA{R: 80, G: 200, B: 120, A: 200}
			}
			x, y := o.cellCenter(p, size, scale)
			o.drawPoint(screen, x, y, math.Max(4, float64(scale)*3), col)
		}
	}

	pos := wp.WalkerPosition()
	if o.showKernel {
		if provider, ok := o.sim.(kernelProvider); ok {
			o.drawKernel(screen, provider.OuterKernel(), pos, size, scale)
		}
	}
	x, y := o.cellCenter(pos, size, scale)
	o.drawPoint(screen, x, y, math.Max(3, float64(scale)*2), color.RGBA{R: 255, G: 255, B: 255, A: 255})
}

// cellCenter maps a grid cell to screen coordinates; y = 0 is the bottom row.
func (o *Overlay) cellCenter(p core.Point, size core.Size, scale int) (float64, float64) {
	return (float64(p.X) + 0.5) * float64(scale), (float64(size.H-1-p.Y) + 0.5) * float64(scale)
}

func (o *Overlay) drawKernel(screen *ebiten.Image, k kernel.Kernel, pos core.Point, size core.Size, scale int) {
	off := k.Offset()
	col := color.RGBA{R: 255, G: 210, B: 80, A: 70}
	for kx := 0; kx < k.Size; kx++ {
		for ky := 0; ky < k.Size; ky++ {
			if !k.At(kx, ky) {
				continue
			}
			p := core.Point{X: pos.X + kx - off, Y: pos.Y + ky - off}
			if p.X < 0 || p.Y < 0 || p.X >= size.W || p.Y >= size.H {
				continue
			}
			x, y := o.cellCenter(p, size, scale)
			o.drawPoint(screen, x, y, float64(scale), col)
		}
	}
}

func (o *Overlay) drawPath(screen *ebiten.Image, path []core.Point, size core.Size, scale int) {
	col := color.RGBA{R: 90, G: 170, B: 230, A: 120}
	for _, p := range path {
		x, y := o.cellCenter(p, size, scale)
		o.drawPoint(screen, x, y, math.Max(1, float64(scale)*0.5), col)
	}
}

func (o *Overlay) drawPoint(screen *ebiten.Image, x, y, size float64, col color.RGBA) {
	if o.pixel == nil || size <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(x-size*0.5, y-size*0.5)
	op.ColorM.Scale(float64(col.R)/255.0, float64(col.G)/255.0, float64(col.B)/255.0, float64(col.A)/255.0)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorM.Scale(float64(col.R)/255.0, float64(col.G)/255.0, float64(col.B)/255.0, float64(col.A)/255.0)
	screen.DrawImage(o.pixel, op)
}
