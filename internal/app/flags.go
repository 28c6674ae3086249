package app

import (
	"flag"
	"fmt"
	"strings"
)

// Config represents the command-line parameters for the viewer.
type Config struct {
	Sim          string
	Scale        int
	TPS          int
	Seed         int64
	StepsPerTick int
	HUDWidth     int
	ConfigPath   string
	ExportDir    string
	ExportScale  int

	// Overrides are flag-style key=value settings passed to the sim factory.
	Overrides map[string]string
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Sim:          "carver",
		Scale:        4,
		TPS:          60,
		Seed:         42,
		StepsPerTick: 50,
		HUDWidth:     260,
		ExportDir:    "maps",
		ExportScale:  4,
		Overrides:    map[string]string{},
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.IntVar(&c.StepsPerTick, "steps", c.StepsPerTick, "generation steps per tick")
	fs.IntVar(&c.HUDWidth, "hud", c.HUDWidth, "width of the parameter panel in pixels (0 hides it)")
	fs.StringVar(&c.ConfigPath, "config", c.ConfigPath, "JSON generation config file")
	fs.StringVar(&c.ExportDir, "out", c.ExportDir, "directory for exported maps")
	fs.IntVar(&c.ExportScale, "png-scale", c.ExportScale, "pixels per cell in exported PNGs")
	fs.Func("set", "override a config value, key=value (repeatable)", func(v string) error {
		key, value, ok := strings.Cut(v, "=")
		if !ok || key == "" {
			return fmt.Errorf("expected key=value, got %q", v)
		}
		if c.Overrides == nil {
			c.Overrides = map[string]string{}
		}
		c.Overrides[key] = value
		return nil
	})
}
