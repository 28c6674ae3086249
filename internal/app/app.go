//go:build ebiten

package app

import (
	"image/color"
	"log"
	"time"

	"carve/internal/core"
	"carve/internal/render"
	"carve/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type palettedSim interface {
	Palette() []color.RGBA
}

type doneReporter interface {
	Done() bool
}

// ExportFunc persists the current state of a simulation.
type ExportFunc func(sim core.Sim) error

// Game adapts a core simulation to the ebiten.Game interface.
type Game struct {
	sim     core.Sim
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD

	palette []color.RGBA
	export  ExportFunc

	scale        int
	hudWidth     int
	stepsPerTick int
	paused       bool
	tickOnce     bool
	seed         int64
}

// New constructs a Game for the provided simulation.
func New(sim core.Sim, cfg *Config, export ExportFunc) *Game {
	gp := render.NewGridPainter(sim.Size().W, sim.Size().H)
	palette := []color.RGBA{{A: 255}, {R: 255, G: 255, B: 255, A: 255}}
	if p, ok := sim.(palettedSim); ok {
		palette = p.Palette()
	}
	steps := cfg.StepsPerTick
	if steps < 1 {
		steps = 1
	}
	return &Game{
		sim:          sim,
		painter:      gp,
		overlay:      ui.NewOverlay(sim, cfg.Scale),
		hud:          ui.NewHUD(sim, cfg.HUDWidth),
		palette:      palette,
		export:       export,
		scale:        cfg.Scale,
		hudWidth:     cfg.HUDWidth,
		stepsPerTick: steps,
		seed:         cfg.Seed,
	}
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
	log.Printf("reset %s with seed %d", g.sim.Name(), seed)
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.paused = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.stepsPerTick *= 2
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.stepsPerTick = max(1, g.stepsPerTick/2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		g.exportCurrent()
	}

	if g.overlay != nil {
		g.overlay.Update()
	}
	if g.hud != nil {
		g.hud.Update(g.mapWidth())
	}

	switch {
	case g.tickOnce:
		g.sim.Step()
		g.tickOnce = false
	case !g.paused:
		for i := 0; i < g.stepsPerTick && !g.finished(); i++ {
			g.sim.Step()
		}
	}
	return nil
}

func (g *Game) finished() bool {
	d, ok := g.sim.(doneReporter)
	return ok && d.Done()
}

func (g *Game) exportCurrent() {
	if g.export == nil {
		return
	}
	if !g.finished() {
		log.Printf("export skipped: generation still running")
		return
	}
	if err := g.export(g.sim); err != nil {
		log.Printf("export failed: %v", err)
	}
}

func (g *Game) mapWidth() int { return g.sim.Size().W * g.scale }

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.sim.Cells(), g.palette, g.scale)
	if g.overlay != nil {
		g.overlay.Draw(screen)
	}
	if g.hud != nil {
		g.hud.Draw(screen, g.mapWidth(), g.scale)
	}
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.sim.Size()
	return s.W*g.scale + g.hudWidth, s.H * g.scale
}
