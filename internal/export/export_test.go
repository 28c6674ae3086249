package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"carve/internal/core"
	"carve/internal/sims/carver"
	"carve/internal/tilemap"
)

func sampleMap() *tilemap.Map {
	m := tilemap.New(6, 4)
	m.Set(1, 0, tilemap.CellEmpty)
	m.Set(2, 1, tilemap.CellFreeze)
	m.Set(3, 3, tilemap.CellPlatform)
	return m
}

func TestWriteTextFlipsRows(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleMap(), DefaultLegend()); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[0] != "# 6x4" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(buf.String(), "# # Solid rock") {
		t.Fatalf("legend missing solid label:\n%s", buf.String())
	}
	grid := lines[len(lines)-4:]
	if grid[0] != "###=##" {
		t.Fatalf("top row = %q", grid[0])
	}
	if grid[3] != "#.####" {
		t.Fatalf("bottom row = %q", grid[3])
	}
	if grid[2] != "##~###" {
		t.Fatalf("row y=1 = %q", grid[2])
	}
}

func TestParseLegendOverrides(t *testing.T) {
	po := `
msgid "freeze"
msgstr "Gefrieren"
`
	l := ParseLegend([]byte(po))
	if got := l.Label(tilemap.CellFreeze); got != "Gefrieren" {
		t.Fatalf("Label(freeze) = %q", got)
	}
	if got := l.Label(tilemap.CellPlatform); got != "platform" {
		t.Fatalf("missing entries should fall back to the key, got %q", got)
	}
}

func TestImageScalesAndFlips(t *testing.T) {
	img := Image(sampleMap(), 3)
	b := img.Bounds()
	if b.Dx() != 18 || b.Dy() != 12 {
		t.Fatalf("image size %dx%d", b.Dx(), b.Dy())
	}
	r, g, bl, _ := img.At(3*3+1, 1).RGBA()
	want := carver.CellColor(tilemap.CellPlatform)
	if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(bl>>8) != want.B {
		t.Fatal("platform at y=3 should be drawn in the top row")
	}
}

func TestWriteANSIFitsTerminal(t *testing.T) {
	m := tilemap.New(100, 40)
	var buf bytes.Buffer
	if err := WriteANSI(&buf, m, DefaultLegend(), 50, 21); err != nil {
		t.Fatalf("WriteANSI: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) > 21 {
		t.Fatalf("preview has %d lines, expected at most 21", len(lines))
	}
	if !strings.Contains(lines[len(lines)-1], "Platform") {
		t.Fatal("legend line missing")
	}
}

func TestDirExporterWritesFiles(t *testing.T) {
	cfg := carver.DefaultConfig()
	cfg.Width, cfg.Height = 60, 40
	cfg.Start = core.Point{X: 4, Y: 4}
	cfg.Layout = carver.Layout{Name: "line", Waypoints: []core.Point{{X: 50, Y: 30}}}
	g, err := carver.New(cfg)
	if err != nil {
		t.Fatalf("carver.New: %v", err)
	}
	if _, err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	dir := t.TempDir()
	exp := NewDirExporter(dir, 2)
	meta := NewMetadata(g)
	if err := exp.Export(g.Map(), meta); err != nil {
		t.Fatalf("Export: %v", err)
	}
	for _, path := range exp.Paths(meta.Name) {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing %s: %v", path, err)
		}
	}
	data, err := os.ReadFile(exp.Paths(meta.Name)[2])
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	var got Metadata
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if got.Name != "default_line_42" || got.RunID != g.RunID() || got.Counts["freeze"] == 0 {
		t.Fatalf("unexpected metadata %+v", got)
	}
}

func TestExportRejectsEmptyName(t *testing.T) {
	if err := NewDirExporter(t.TempDir(), 1).Export(sampleMap(), Metadata{}); err == nil {
		t.Fatal("expected error for empty name")
	}
}
