// Package carver drives a complete level generation run: a walker carves the
// map step by step and the finisher classifies the result once the run ends.
package carver

import (
	"context"

	"github.com/google/uuid"

	"carve/internal/core"
	"carve/internal/finish"
	"carve/internal/kernel"
	"carve/internal/tilemap"
	"carve/internal/walker"
	prng "carve/pkg/core"
)

// Stream labels for the per-subsystem random sources of a run.
const (
	streamWalker = "walker"
	streamNoise  = "finish.noise"
)

// Report summarises a generation run.
type Report struct {
	RunID       string        `json:"run_id"`
	Name        string        `json:"name"`
	Seed        int64         `json:"seed"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Iterations  int           `json:"iterations"`
	ReachedGoal bool          `json:"reached_goal"`
	Finish      finish.Report `json:"finish"`
}

// Generator owns the map, walker and kernel generator of one run.
type Generator struct {
	cfg Config

	seed  int64
	runID string
	rng   *prng.RNG

	grid    *tilemap.Map
	kernels *kernel.Generator
	walker  *walker.Walker

	iterations int
	done       bool
	report     finish.Report
	display    []uint8
}

// New validates cfg and prepares a run with cfg.Seed.
func New(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{cfg: cfg}
	if err := g.reset(cfg.Seed); err != nil {
		return nil, err
	}
	return g, nil
}

// Name returns the simulation identifier.
func (g *Generator) Name() string { return "carver" }

// Size reports the map dimensions.
func (g *Generator) Size() core.Size { return core.Size{W: g.cfg.Width, H: g.cfg.Height} }

// Config returns the active configuration.
func (g *Generator) Config() Config { return g.cfg }

// Seed returns the seed of the current run.
func (g *Generator) Seed() int64 { return g.seed }

// RunID returns the identifier of the current run.
func (g *Generator) RunID() string { return g.runID }

// Reset starts a new run. A zero seed falls back to the configured seed.
func (g *Generator) Reset(seed int64) {
	// cfg was validated by New and by every setter
	_ = g.reset(seed)
}

func (g *Generator) reset(seed int64) error {
	if seed == 0 {
		seed = g.cfg.Seed
	}
	rng := prng.NewRNG(seed)
	walkRNG := rng.Derive(streamWalker)
	grid := tilemap.New(g.cfg.Width, g.cfg.Height)
	kernels, err := kernel.NewGenerator(g.cfg.Kernel.Table, g.cfg.Kernel.Size, g.cfg.Kernel.Circularity, g.cfg.Kernel.Outer, walkRNG)
	if err != nil {
		return err
	}
	w, err := walker.New(g.cfg.walkerConfig(), grid, kernels, walkRNG)
	if err != nil {
		return err
	}

	g.seed = seed
	g.runID = uuid.NewString()
	g.rng = rng
	g.grid = grid
	g.kernels = kernels
	g.walker = w
	g.iterations = 0
	g.done = false
	g.report = finish.Report{}
	if len(g.display) != g.cfg.Width*g.cfg.Height {
		g.display = make([]uint8, g.cfg.Width*g.cfg.Height)
	}
	return nil
}

// Step advances the walker once. When the step budget is spent or the last
// waypoint was reached the finisher runs and later calls do nothing.
func (g *Generator) Step() {
	if g.done {
		return
	}
	g.walker.Step()
	g.iterations++
	if g.iterations >= g.cfg.MaxIterations || g.walker.Finished() {
		g.OnFinish()
	}
}

// OnFinish runs the terrain finisher on the current map. Calling it again
// reproduces the same classification.
func (g *Generator) OnFinish() {
	g.report = finish.Apply(g.grid, g.walker.History(), g.cfg.Finish, g.rng.Derive(streamNoise))
	g.done = true
}

// IsFinished reports whether the walker has reached its last waypoint.
func (g *Generator) IsFinished() bool { return g.walker.Finished() }

// Done reports whether the run has ended and the finisher has been applied.
func (g *Generator) Done() bool { return g.done }

// Iterations returns the number of steps taken in this run.
func (g *Generator) Iterations() int { return g.iterations }

// Run steps until the run is done or ctx is cancelled. Cancellation is
// checked between steps.
func (g *Generator) Run(ctx context.Context) (Report, error) {
	for !g.done {
		if err := ctx.Err(); err != nil {
			return g.Report(), err
		}
		g.Step()
	}
	return g.Report(), nil
}

// Report summarises the current state of the run.
func (g *Generator) Report() Report {
	rep := g.report
	if !g.done {
		rep.Counts = g.grid.Counts()
	}
	return Report{
		RunID:       g.runID,
		Name:        g.cfg.ExportName(g.seed),
		Seed:        g.seed,
		Width:       g.cfg.Width,
		Height:      g.cfg.Height,
		Iterations:  g.iterations,
		ReachedGoal: g.walker.Finished(),
		Finish:      rep,
	}
}

// Map exposes the grid of the current run.
func (g *Generator) Map() *tilemap.Map { return g.grid }

// Cells returns the cell types in row-major order.
func (g *Generator) Cells() []uint8 {
	g.grid.CopyTo(g.display)
	return g.display
}

// WalkerPosition returns the current walker position.
func (g *Generator) WalkerPosition() core.Point { return g.walker.Position() }

// Waypoints returns the layout waypoints.
func (g *Generator) Waypoints() []core.Point { return g.walker.Waypoints() }

// TargetIndex returns the index of the active waypoint.
func (g *Generator) TargetIndex() int { return g.walker.TargetIndex() }

// Path returns every position the walker has occupied.
func (g *Generator) Path() []core.Point { return g.walker.History() }

// OuterKernel returns the current margin brush.
func (g *Generator) OuterKernel() kernel.Kernel { return g.walker.OuterKernel() }

// Status returns a one-line progress summary for status bars.
func (g *Generator) Status() string {
	state := g.walker.Mode().String()
	if g.done {
		state = "done"
	}
	return formatStatus(g.iterations, g.cfg.MaxIterations, g.walker.TargetIndex()+1, len(g.cfg.Layout.Waypoints), state)
}

func init() {
	core.Register("carver", func(cfg map[string]string) (core.Sim, error) {
		return New(FromMap(cfg))
	})
}
