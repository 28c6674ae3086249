//go:build ebiten

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"

	"carve/internal/app"
	"carve/internal/core"
	"carve/internal/export"
	"carve/internal/sims/carver"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	sim, err := buildSim(cfg)
	if err != nil {
		log.Fatalf("build %s: %v", cfg.Sim, err)
	}
	sim.Reset(cfg.Seed)

	exporter := export.NewDirExporter(cfg.ExportDir, cfg.ExportScale)
	game := app.New(sim, cfg, func(s core.Sim) error {
		gen, ok := s.(*carver.Generator)
		if !ok {
			return fmt.Errorf("%s does not support export", s.Name())
		}
		meta := export.NewMetadata(gen)
		if err := exporter.Export(gen.Map(), meta); err != nil {
			return err
		}
		log.Printf("exported %s to %s", meta.Name, cfg.ExportDir)
		return nil
	})
	size := sim.Size()

	ebiten.SetWindowTitle("carve: " + sim.Name())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(size.W*cfg.Scale+cfg.HUDWidth, size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}

func buildSim(cfg *app.Config) (core.Sim, error) {
	if cfg.ConfigPath == "" {
		overrides := map[string]string{"seed": strconv.FormatInt(cfg.Seed, 10)}
		for k, v := range cfg.Overrides {
			overrides[k] = v
		}
		return core.Lookup(cfg.Sim, overrides)
	}
	c, err := carver.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	c = carver.ApplyMap(c, cfg.Overrides)
	if cfg.Seed != 0 {
		c.Seed = cfg.Seed
	}
	return carver.New(c)
}
