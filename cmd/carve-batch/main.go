// Command carve-batch generates maps without a window. Seeds are spread over
// a pool of workers and every finished map is exported to the output
// directory.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"carve/internal/core"
	"carve/internal/export"
	"carve/internal/sims/carver"
	"carve/internal/terminal"
)

type options struct {
	configPath string
	seed       int64
	count      int
	workers    int
	outDir     string
	pngScale   int
	legendPath string
	preview    bool
	live       bool
	fps        int
	schemaPath string
	overrides  map[string]string
}

type result struct {
	seed    int64
	report  carver.Report
	elapsed time.Duration
	err     error
}

func main() {
	opts := options{overrides: map[string]string{}}
	flag.StringVar(&opts.configPath, "config", "", "JSON generation config file")
	flag.Int64Var(&opts.seed, "seed", 0, "first seed (0 uses the config seed)")
	flag.IntVar(&opts.count, "count", 1, "number of consecutive seeds to generate")
	flag.IntVar(&opts.workers, "workers", runtime.NumCPU(), "number of worker goroutines")
	flag.StringVar(&opts.outDir, "out", "maps", "directory for exported maps")
	flag.IntVar(&opts.pngScale, "png-scale", 4, "pixels per cell in exported PNGs")
	flag.StringVar(&opts.legendPath, "legend", "", "PO catalog overriding the legend labels")
	flag.BoolVar(&opts.preview, "preview", false, "print a coloured preview of each finished map")
	flag.BoolVar(&opts.live, "live", false, "redraw the preview while a single map is carved")
	flag.IntVar(&opts.fps, "fps", 15, "redraw rate of the live preview")
	flag.StringVar(&opts.schemaPath, "schema", "", "write the config JSON schema to this path and exit")
	flag.Func("set", "override a config value, key=value (repeatable)", func(v string) error {
		key, value, ok := strings.Cut(v, "=")
		if !ok || key == "" {
			return fmt.Errorf("expected key=value, got %q", v)
		}
		opts.overrides[key] = value
		return nil
	})
	flag.Parse()

	if opts.schemaPath != "" {
		if err := writeSchema(opts.schemaPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	legend := export.DefaultLegend()
	if opts.legendPath != "" {
		if legend, err = export.LoadLegend(opts.legendPath); err != nil {
			log.Fatalf("legend: %v", err)
		}
	}
	exporter := export.NewDirExporter(opts.outDir, opts.pngScale)
	exporter.Legend = legend

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	first := opts.seed
	if first == 0 {
		first = cfg.Seed
	}

	if opts.live {
		if opts.count != 1 {
			log.Printf("live preview renders a single map; ignoring count=%d", opts.count)
		}
		res := runLive(ctx, cfg, first, opts.fps, exporter)
		if res.err != nil {
			log.Fatalf("seed %d: %v", res.seed, res.err)
		}
		logResult(res)
		return
	}

	count := max(opts.count, 1)
	workers := min(max(opts.workers, 1), count)
	log.Printf("Generating %d maps (%d workers) into %s", count, workers, opts.outDir)

	jobs := make(chan int64)
	results := make(chan result)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seed := range jobs {
				results <- runSeed(ctx, cfg, seed, exporter)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for i := 0; i < count; i++ {
			select {
			case jobs <- first + int64(i):
			case <-ctx.Done():
				return
			}
		}
	}()

	start := time.Now()
	var all []result
	failed := 0
	for res := range results {
		if res.err != nil {
			failed++
			if !errors.Is(res.err, context.Canceled) {
				log.Printf("seed %d: %v", res.seed, res.err)
			}
			continue
		}
		all = append(all, res)
		logResult(res)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].seed < all[j].seed })
	if opts.preview {
		cols, rows := terminal.GetSize()
		for _, res := range all {
			if err := printPreview(cfg, res.seed, exporter, cols, rows); err != nil {
				log.Printf("preview seed %d: %v", res.seed, err)
			}
		}
	}

	log.Printf("Done: %d exported, %d failed (elapsed %s)", len(all), failed, time.Since(start).Round(time.Millisecond))
	if ctx.Err() != nil || failed > 0 {
		os.Exit(1)
	}
}

func loadConfig(opts options) (carver.Config, error) {
	if opts.configPath == "" {
		return carver.FromMap(opts.overrides), nil
	}
	cfg, err := carver.LoadConfig(opts.configPath)
	if err != nil {
		return carver.Config{}, err
	}
	return carver.ApplyMap(cfg, opts.overrides), nil
}

func runSeed(ctx context.Context, cfg carver.Config, seed int64, exporter *export.DirExporter) result {
	started := time.Now()
	res := result{seed: seed}
	cfg.Seed = seed
	gen, err := carver.New(cfg)
	if err != nil {
		res.err = err
		return res
	}
	if res.report, res.err = gen.Run(ctx); res.err != nil {
		return res
	}
	res.err = exporter.Export(gen.Map(), export.NewMetadata(gen))
	res.elapsed = time.Since(started)
	return res
}

// runLive carves one map on the calling goroutine and redraws the preview
// at the requested rate.
func runLive(ctx context.Context, cfg carver.Config, seed int64, fps int, exporter *export.DirExporter) result {
	started := time.Now()
	res := result{seed: seed}
	cfg.Seed = seed
	gen, err := carver.New(cfg)
	if err != nil {
		res.err = err
		return res
	}

	frames := core.NewFixedStep(fps)
	out := os.Stdout
	for !gen.Done() {
		if err := ctx.Err(); err != nil {
			res.err = err
			return res
		}
		gen.Step()
		if frames.ShouldStep() {
			cols, rows := terminal.GetSize()
			fmt.Fprint(out, "\x1b[H\x1b[2J")
			if err := export.WriteANSI(out, gen.Map(), exporter.Legend, cols, rows-1); err != nil {
				res.err = err
				return res
			}
			fmt.Fprintln(out, gen.Status())
		}
	}
	cols, rows := terminal.GetSize()
	fmt.Fprint(out, "\x1b[H\x1b[2J")
	if err := export.WriteANSI(out, gen.Map(), exporter.Legend, cols, rows-1); err != nil {
		res.err = err
		return res
	}

	res.report = gen.Report()
	res.err = exporter.Export(gen.Map(), export.NewMetadata(gen))
	res.elapsed = time.Since(started)
	return res
}

// printPreview regenerates the map for seed. Generation is deterministic, so
// workers do not need to keep finished maps in memory.
func printPreview(cfg carver.Config, seed int64, exporter *export.DirExporter, cols, rows int) error {
	cfg.Seed = seed
	gen, err := carver.New(cfg)
	if err != nil {
		return err
	}
	if _, err := gen.Run(context.Background()); err != nil {
		return err
	}
	fmt.Printf("\n%s\n", gen.Report().Name)
	return export.WriteANSI(os.Stdout, gen.Map(), exporter.Legend, cols, rows-2)
}

func logResult(res result) {
	rep := res.report
	goal := "goal reached"
	if !rep.ReachedGoal {
		goal = "budget spent"
	}
	log.Printf("%s: %d steps, %s, obstacles=%d freeze=%d platforms=%d (%s)",
		rep.Name, rep.Iterations, goal, rep.Finish.Obstacles, rep.Finish.Freeze,
		len(rep.Finish.Platforms), res.elapsed.Round(time.Millisecond))
}

func writeSchema(outPath string) error {
	data, err := json.MarshalIndent(carver.Schema(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create schema directory: %w", err)
		}
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
