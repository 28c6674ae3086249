// Package export writes finished maps to disk and terminals.
package export

import (
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"carve/internal/finish"
	"carve/internal/sims/carver"
	"carve/internal/tilemap"
)

// Metadata describes an exported map.
type Metadata struct {
	Name        string            `json:"name"`
	RunID       string            `json:"run_id"`
	Seed        int64             `json:"seed"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Iterations  int               `json:"iterations"`
	ReachedGoal bool              `json:"reached_goal"`
	Counts      map[string]int    `json:"counts"`
	Platforms   []finish.Platform `json:"platforms"`
	Config      carver.Config     `json:"config"`
}

// NewMetadata collects the metadata of a generator's current run.
func NewMetadata(g *carver.Generator) Metadata {
	rep := g.Report()
	counts := make(map[string]int, tilemap.CellTypeCount)
	for t, n := range rep.Finish.Counts {
		counts[tilemap.CellType(t).String()] = n
	}
	return Metadata{
		Name:        rep.Name,
		RunID:       rep.RunID,
		Seed:        rep.Seed,
		Width:       rep.Width,
		Height:      rep.Height,
		Iterations:  rep.Iterations,
		ReachedGoal: rep.ReachedGoal,
		Counts:      counts,
		Platforms:   rep.Finish.Platforms,
		Config:      g.Config(),
	}
}

// Exporter persists a map under a name.
type Exporter interface {
	Export(m *tilemap.Map, meta Metadata) error
}

// DirExporter writes <name>.txt, <name>.png and <name>.json into Dir.
type DirExporter struct {
	Dir    string
	Scale  int
	Legend *Legend
}

// NewDirExporter returns an exporter writing into dir with the default legend.
func NewDirExporter(dir string, scale int) *DirExporter {
	return &DirExporter{Dir: dir, Scale: scale, Legend: DefaultLegend()}
}

// Export writes all three files. It stops at the first failure.
func (e *DirExporter) Export(m *tilemap.Map, meta Metadata) error {
	if meta.Name == "" {
		return fmt.Errorf("export: empty map name")
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	base := filepath.Join(e.Dir, meta.Name)
	if err := e.writeText(base+".txt", m); err != nil {
		return err
	}
	if err := e.writePNG(base+".png", m); err != nil {
		return err
	}
	return writeJSON(base+".json", meta)
}

// Paths returns the files Export writes for name.
func (e *DirExporter) Paths(name string) []string {
	base := filepath.Join(e.Dir, name)
	return []string{base + ".txt", base + ".png", base + ".json"}
}

func (e *DirExporter) writeText(path string, m *tilemap.Map) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteText(f, m, e.Legend); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func (e *DirExporter) writePNG(path string, m *tilemap.Map) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, Image(m, e.Scale)); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func writeJSON(path string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
