package carver

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"

	"carve/internal/core"
	"carve/internal/distance"
	"carve/internal/finish"
	"carve/internal/kernel"
	"carve/internal/walker"
)

// Layout names an ordered route of waypoints for the walker.
type Layout struct {
	Name      string       `json:"name" jsonschema:"title=Layout name,description=Used in export file names"`
	Waypoints []core.Point `json:"waypoints" jsonschema:"minItems=1,description=Targets visited in order"`
}

// KernelConfig describes the initial brush and the mutation tables.
type KernelConfig struct {
	Size        int                 `json:"size" jsonschema:"minimum=1,description=Initial odd kernel size"`
	Circularity float64             `json:"circularity" jsonschema:"minimum=0,maximum=1"`
	Table       []kernel.SizeConfig `json:"table" jsonschema:"minItems=1"`
	Outer       kernel.OuterOptions `json:"outer"`
}

// Config controls a single generation run.
type Config struct {
	Name          string     `json:"name" jsonschema:"title=Config name"`
	Width         int        `json:"width" jsonschema:"minimum=3"`
	Height        int        `json:"height" jsonschema:"minimum=3"`
	Seed          int64      `json:"seed"`
	MaxIterations int        `json:"max_iterations" jsonschema:"minimum=1,description=Step budget before the finisher runs"`
	Start         core.Point `json:"start"`

	Kernel KernelConfig `json:"kernel"`

	BestMoveProbability   float64             `json:"best_move_probability" jsonschema:"minimum=0,exclusiveMinimum=true,maximum=1"`
	SizeChangeProb        float64             `json:"size_change_prob" jsonschema:"minimum=0,maximum=1"`
	CircularityChangeProb float64             `json:"circularity_change_prob" jsonschema:"minimum=0,maximum=1"`
	Tunnel                walker.TunnelConfig `json:"tunnel"`

	Layout Layout        `json:"layout"`
	Finish finish.Config `json:"finish"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	platforms := finish.DefaultPlatformConfig()
	platforms.Enabled = true
	return Config{
		Name:          "default",
		Width:         240,
		Height:        140,
		Seed:          42,
		MaxIterations: 100000,
		Start:         core.Point{X: 10, Y: 10},
		Kernel: KernelConfig{
			Size:        5,
			Circularity: 0.8,
			Table: []kernel.SizeConfig{
				{Size: 3, Probability: 0.4, Circularities: []kernel.CircularityConfig{
					{Circularity: 0, Probability: 0.3},
					{Circularity: 0.5, Probability: 0.3},
					{Circularity: 1, Probability: 0.4},
				}},
				{Size: 5, Probability: 0.4, Circularities: []kernel.CircularityConfig{
					{Circularity: 0.3, Probability: 0.5},
					{Circularity: 0.8, Probability: 0.5},
				}},
				{Size: 7, Probability: 0.2, Circularities: []kernel.CircularityConfig{
					{Circularity: 0.6, Probability: 0.5},
					{Circularity: 1, Probability: 0.5},
				}},
			},
			Outer: kernel.DefaultOuterOptions(),
		},
		BestMoveProbability:   0.8,
		SizeChangeProb:        0.05,
		CircularityChangeProb: 0.1,
		Tunnel: walker.TunnelConfig{
			Enabled:     true,
			Probability: 0.01,
			Lengths:     []int{5, 10, 15},
			Widths:      []int{3, 5},
		},
		Layout: Layout{
			Name: "zigzag",
			Waypoints: []core.Point{
				{X: 50, Y: 120},
				{X: 110, Y: 20},
				{X: 170, Y: 120},
				{X: 225, Y: 70},
			},
		},
		Finish: finish.Config{
			Method:    distance.Euclidean,
			Threshold: 7,
			Noise:     distance.Noise{Kind: distance.NoiseSimplex, Amount: 2, GridDistance: 12},
			Platforms: platforms,
		},
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// Unparseable values keep their defaults.
func FromMap(cfg map[string]string) Config {
	return ApplyMap(DefaultConfig(), cfg)
}

// ApplyMap overrides the fields of c named by the keys of cfg. Values that
// fail to parse leave the field unchanged.
func ApplyMap(c Config, cfg map[string]string) Config {
	if cfg == nil {
		return c
	}
	if v, ok := cfg["name"]; ok && v != "" {
		c.Name = v
	}
	setInt(cfg, "w", &c.Width, 3)
	setInt(cfg, "h", &c.Height, 3)
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	setInt(cfg, "max_iterations", &c.MaxIterations, 1)
	setInt(cfg, "start_x", &c.Start.X, 0)
	setInt(cfg, "start_y", &c.Start.Y, 0)

	setInt(cfg, "kernel_size", &c.Kernel.Size, 1)
	setFloat(cfg, "kernel_circularity", &c.Kernel.Circularity)
	setFloat(cfg, "outer_size_margin_prob", &c.Kernel.Outer.SizeMarginProb)
	setFloat(cfg, "outer_square_prob", &c.Kernel.Outer.SquareProb)

	setFloat(cfg, "best_move_probability", &c.BestMoveProbability)
	setFloat(cfg, "size_change_prob", &c.SizeChangeProb)
	setFloat(cfg, "circularity_change_prob", &c.CircularityChangeProb)

	setBool(cfg, "tunnel", &c.Tunnel.Enabled)
	setFloat(cfg, "tunnel_probability", &c.Tunnel.Probability)
	setInts(cfg, "tunnel_lengths", &c.Tunnel.Lengths)
	setInts(cfg, "tunnel_widths", &c.Tunnel.Widths)

	if v, ok := cfg["layout"]; ok && v != "" {
		c.Layout.Name = v
	}
	if v, ok := cfg["waypoints"]; ok {
		if pts, err := ParsePoints(v); err == nil && len(pts) > 0 {
			c.Layout.Waypoints = pts
		}
	}

	if v, ok := cfg["method"]; ok {
		if m, err := distance.ParseMethod(v); err == nil {
			c.Finish.Method = m
		}
	}
	setFloat(cfg, "threshold", &c.Finish.Threshold)
	if v, ok := cfg["noise"]; ok {
		if k, err := distance.ParseNoiseKind(v); err == nil {
			c.Finish.Noise.Kind = k
		}
	}
	setFloat(cfg, "noise_amount", &c.Finish.Noise.Amount)
	setInt(cfg, "grid_distance", &c.Finish.Noise.GridDistance, 0)
	setBool(cfg, "platforms", &c.Finish.Platforms.Enabled)
	setInt(cfg, "platform_spacing", &c.Finish.Platforms.MinSpacing, 0)
	return c
}

func setInt(cfg map[string]string, key string, dst *int, min int) {
	v, ok := cfg[key]
	if !ok {
		return
	}
	if parsed, err := strconv.Atoi(v); err == nil && parsed >= min {
		*dst = parsed
	}
}

func setFloat(cfg map[string]string, key string, dst *float64) {
	v, ok := cfg[key]
	if !ok {
		return
	}
	if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
		*dst = parsed
	}
}

func setBool(cfg map[string]string, key string, dst *bool) {
	v, ok := cfg[key]
	if !ok {
		return
	}
	if parsed, err := strconv.ParseBool(v); err == nil {
		*dst = parsed
	}
}

func setInts(cfg map[string]string, key string, dst *[]int) {
	v, ok := cfg[key]
	if !ok {
		return
	}
	var out []int
	for _, field := range strings.Split(v, ",") {
		parsed, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return
		}
		out = append(out, parsed)
	}
	if len(out) > 0 {
		*dst = out
	}
}

// ParsePoints parses "x,y;x,y;..." into points.
func ParsePoints(s string) ([]core.Point, error) {
	var pts []core.Point
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		xs, ys, ok := strings.Cut(pair, ",")
		if !ok {
			return nil, fmt.Errorf("point %q: expected x,y", pair)
		}
		x, err := strconv.Atoi(strings.TrimSpace(xs))
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", pair, err)
		}
		y, err := strconv.Atoi(strings.TrimSpace(ys))
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", pair, err)
		}
		pts = append(pts, core.Point{X: x, Y: y})
	}
	return pts, nil
}

// LoadConfig reads a JSON config file. Fields absent from the file keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

// Validate checks the whole configuration. It reports the first problem found.
func (c Config) Validate() error {
	if c.Width < 3 || c.Height < 3 {
		return configError("width/height", fmt.Sprintf("map %dx%d is too small", c.Width, c.Height))
	}
	if c.MaxIterations < 1 {
		return configError("max_iterations", "must be at least 1")
	}
	if !c.inside(c.Start) {
		return configError("start", fmt.Sprintf("(%d,%d) lies outside the map", c.Start.X, c.Start.Y))
	}
	if len(c.Layout.Waypoints) == 0 {
		return configError("layout.waypoints", "at least one waypoint is required")
	}
	for i, p := range c.Layout.Waypoints {
		if !c.inside(p) {
			return configError(fmt.Sprintf("layout.waypoints[%d]", i), fmt.Sprintf("(%d,%d) lies outside the map", p.X, p.Y))
		}
	}
	if err := kernel.Validate(c.Kernel.Table); err != nil {
		return err
	}
	if c.Kernel.Size < 1 || c.Kernel.Size%2 == 0 {
		return configError("kernel.size", fmt.Sprintf("initial size %d must be odd and at least 1", c.Kernel.Size))
	}
	if c.Kernel.Circularity < 0 || c.Kernel.Circularity > 1 {
		return configError("kernel.circularity", "must be in [0, 1]")
	}
	outer := c.Kernel.Outer
	if outer.SizeMarginProb < 0 || outer.SizeMarginProb > 1 || outer.SquareProb < 0 || outer.SquareProb > 1 {
		return configError("kernel.outer", "probabilities must be in [0, 1]")
	}
	if err := c.walkerConfig().Validate(); err != nil {
		return err
	}
	return c.Finish.Validate()
}

func (c Config) inside(p core.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < c.Width && p.Y < c.Height
}

func (c Config) walkerConfig() walker.Config {
	return walker.Config{
		Start:                 c.Start,
		Waypoints:             c.Layout.Waypoints,
		BestMoveProbability:   c.BestMoveProbability,
		SizeChangeProb:        c.SizeChangeProb,
		CircularityChangeProb: c.CircularityChangeProb,
		Tunnel:                c.Tunnel,
	}
}

// ExportName returns the file stem for a run: <config>_<layout>_<seed>.
func (c Config) ExportName(seed int64) string {
	return fmt.Sprintf("%s_%s_%d", sanitize(c.Name), sanitize(c.Layout.Name), seed)
}

func sanitize(s string) string {
	if s == "" {
		return "unnamed"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, s)
}

func configError(field, reason string) error {
	return &core.ConfigError{Scope: "carver", Field: field, Reason: reason}
}

// Schema returns the JSON schema of the config file format.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(new(Config))
	schema.Title = "carve generation config"
	schema.Description = "Map size, walker tunables, layout and finisher settings for one generation run"
	return schema
}
