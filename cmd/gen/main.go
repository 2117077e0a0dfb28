package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"voxelforge.ai/internal/persistence/indexdb"
	"voxelforge.ai/internal/persistence/structure"
	"voxelforge.ai/internal/sim/catalogs"
	"voxelforge.ai/internal/sim/plan"
	"voxelforge.ai/internal/sim/tuning"
)

func main() {
	var (
		planPath   = flag.String("plan", "", "path to plan yaml")
		outPath    = flag.String("out", "", "output structure path (.json or .json.zst)")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		indexPath  = flag.String("index", "", "sqlite run index to record into (optional)")
		workers    = flag.Int("workers", 0, "noise fill workers (0: tuning value)")
		validate   = flag.Bool("validate", true, "validate the output against the structure schema")
	)
	flag.Parse()

	if *planPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: gen -plan plan.yaml -out out.json[.zst]")
		os.Exit(2)
	}

	logger := log.New(os.Stdout, "[gen] ", log.LstdFlags|log.Lmicroseconds)

	cat, err := catalogs.Load(*configDir)
	if os.IsNotExist(err) {
		logger.Printf("blocks.json not found in %s; using built-in catalog", *configDir)
		cat, err = catalogs.Default(), nil
	}
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tp := *tuningPath
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, tuneErr := tuning.Load(tp)
	if tuneErr != nil {
		if os.IsNotExist(tuneErr) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", tuneErr)
		}
	}
	if *workers > 0 {
		tune.NoiseWorkers = *workers
	}

	p, err := tuning.LoadPlan(*planPath)
	if err != nil {
		logger.Fatalf("load plan: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	runner := plan.Runner{Catalog: cat, Tuning: tune, Logger: logger}
	res, err := runner.Run(ctx, p)
	if err != nil {
		logger.Fatalf("run: %v", err)
	}
	if *validate {
		if err := structure.Validate(res.Structure); err != nil {
			logger.Fatalf("validate: %v", err)
		}
	}
	if err := structure.WriteFile(*outPath, res.Structure); err != nil {
		logger.Fatalf("write %s: %v", *outPath, err)
	}
	logger.Printf("wrote %s: %dx%dx%d entries=%d voxels=%d digest=%s",
		*outPath, res.Structure.Width, res.Structure.Height, res.Structure.Depth,
		res.Summary.Entries, res.Summary.Voxels, res.Digest)

	if *indexPath == "" {
		return
	}
	idx, err := indexdb.Open(*indexPath)
	if err != nil {
		logger.Fatalf("index db: %v", err)
	}
	defer idx.Close()
	run, err := runRecord(p, res)
	if err != nil {
		logger.Printf("encode plan: %v; recording run without it", err)
	}
	id, err := idx.RecordRun(ctx, run)
	if err != nil {
		logger.Printf("record run: %v", err)
		return
	}
	logger.Printf("recorded run %s", id)
}

// runRecord builds the index row for a finished run. On a plan encoding
// error the row is still returned, without the plan body.
func runRecord(p tuning.Plan, res plan.Result) (indexdb.Run, error) {
	run := indexdb.Run{
		Name:      p.Name,
		Seed:      p.Terrain.Seed,
		Biome:     string(p.Terrain.Biome),
		Width:     p.Terrain.Width,
		Depth:     p.Terrain.Depth,
		Entries:   res.Summary.Entries,
		Voxels:    res.Summary.Voxels,
		Digest:    res.Digest,
		ElapsedMs: res.Elapsed.Milliseconds(),
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return run, err
	}
	run.Plan = raw
	return run, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
