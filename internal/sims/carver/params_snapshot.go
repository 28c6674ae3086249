package carver

import (
	"strconv"

	"carve/internal/core"
)

// Parameters returns the tunables of the run grouped for the HUD.
func (g *Generator) Parameters() core.ParameterSnapshot {
	c := g.cfg
	groups := []core.ParameterGroup{
		{
			Name: "Map",
			Params: []core.Parameter{
				intParam("w", "Width", c.Width),
				intParam("h", "Height", c.Height),
				int64Param("seed", "Seed", g.seed),
				intParam("max_iterations", "Max iterations", c.MaxIterations),
			},
		},
		{
			Name: "Walker",
			Params: []core.Parameter{
				floatParam("best_move_probability", "Best move probability", c.BestMoveProbability),
				floatParam("size_change_prob", "Kernel size change", c.SizeChangeProb),
				floatParam("circularity_change_prob", "Circularity change", c.CircularityChangeProb),
				boolParam("tunnel", "Tunnels", c.Tunnel.Enabled),
				floatParam("tunnel_probability", "Tunnel probability", c.Tunnel.Probability),
			},
		},
		{
			Name: "Finisher",
			Params: []core.Parameter{
				floatParam("threshold", "Obstacle distance", c.Finish.Threshold),
				floatParam("noise_amount", "Noise amount", c.Finish.Noise.Amount),
				intParam("grid_distance", "Noise grid distance", c.Finish.Noise.GridDistance),
				boolParam("platforms", "Platforms", c.Finish.Platforms.Enabled),
				intParam("platform_spacing", "Platform spacing", c.Finish.Platforms.MinSpacing),
			},
		},
		{
			Name:    "Progress",
			Summary: g.Status(),
			Params: []core.Parameter{
				intParam("iterations", "Iterations", g.iterations),
				intParam("history", "Path length", g.walker.HistoryLen()),
				intParam("target", "Target waypoint", g.walker.TargetIndex()),
				intParam("tunnel_remaining", "Tunnel remaining", g.walker.TunnelRemaining()),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the values adjustable from the HUD.
func (g *Generator) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "best_move_probability", Label: "Best move", Type: core.ParamTypeFloat, Step: 0.05, Min: 0.05, Max: 1, HasMin: true, HasMax: true},
		{Key: "size_change_prob", Label: "Size change", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "circularity_change_prob", Label: "Circ change", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "tunnel", Label: "Tunnels", Type: core.ParamTypeBool},
		{Key: "tunnel_probability", Label: "Tunnel prob", Type: core.ParamTypeFloat, Step: 0.005, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "threshold", Label: "Obstacle dist", Type: core.ParamTypeFloat, Step: 0.5, Min: 0.5, HasMin: true},
		{Key: "noise_amount", Label: "Noise", Type: core.ParamTypeFloat, Step: 0.25, Min: 0, HasMin: true},
		{Key: "grid_distance", Label: "Noise grid", Type: core.ParamTypeInt, Step: 1, Min: 1, HasMin: true},
		{Key: "platforms", Label: "Platforms", Type: core.ParamTypeBool},
		{Key: "platform_spacing", Label: "Platform gap", Type: core.ParamTypeInt, Step: 100, Min: 0, HasMin: true},
		{Key: "max_iterations", Label: "Max steps", Type: core.ParamTypeInt, Step: 1000, Min: 1000, HasMin: true},
	}
}

// SetIntParameter updates an integer tunable and restarts the run with the
// current seed. Values that fail validation are rejected.
func (g *Generator) SetIntParameter(key string, value int) bool {
	next := g.cfg
	switch key {
	case "grid_distance":
		next.Finish.Noise.GridDistance = value
	case "platform_spacing":
		next.Finish.Platforms.MinSpacing = value
	case "max_iterations":
		next.MaxIterations = value
	default:
		return false
	}
	return g.apply(next)
}

// SetFloatParameter updates a floating point tunable and restarts the run
// with the current seed. Values that fail validation are rejected.
func (g *Generator) SetFloatParameter(key string, value float64) bool {
	next := g.cfg
	switch key {
	case "best_move_probability":
		next.BestMoveProbability = value
	case "size_change_prob":
		next.SizeChangeProb = value
	case "circularity_change_prob":
		next.CircularityChangeProb = value
	case "tunnel_probability":
		next.Tunnel.Probability = value
	case "threshold":
		next.Finish.Threshold = value
	case "noise_amount":
		next.Finish.Noise.Amount = value
	default:
		return false
	}
	return g.apply(next)
}

// SetBoolParameter switches tunnelling or platform placement and restarts the
// run with the current seed.
func (g *Generator) SetBoolParameter(key string, value bool) bool {
	next := g.cfg
	switch key {
	case "tunnel":
		next.Tunnel.Enabled = value
	case "platforms":
		next.Finish.Platforms.Enabled = value
	default:
		return false
	}
	return g.apply(next)
}

func (g *Generator) apply(next Config) bool {
	if err := next.Validate(); err != nil {
		return false
	}
	prev := g.cfg
	g.cfg = next
	if err := g.reset(g.seed); err != nil {
		g.cfg = prev
		_ = g.reset(g.seed)
		return false
	}
	return true
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func boolParam(key, label string, value bool) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeBool,
		Value: strconv.FormatBool(value),
	}
}
