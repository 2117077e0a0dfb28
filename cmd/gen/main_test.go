package main

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"voxelforge.ai/internal/persistence/structure"
	"voxelforge.ai/internal/sim/plan"
	"voxelforge.ai/internal/sim/terrain"
	"voxelforge.ai/internal/sim/tuning"
)

func TestRunRecord(t *testing.T) {
	p := tuning.Plan{Name: "vale", Terrain: terrain.Config{Width: 16, Depth: 8, Seed: 4, Biome: terrain.Forest}}
	res := plan.Result{Summary: structure.Stats{Entries: 3, Voxels: 40}, Digest: "abc", Elapsed: 12 * time.Millisecond}

	run, err := runRecord(p, res)
	if err != nil {
		t.Fatalf("runRecord: %v", err)
	}
	if run.Name != "vale" || run.Biome != "forest" || run.Entries != 3 || run.ElapsedMs != 12 {
		t.Fatalf("run=%+v", run)
	}
	var back tuning.Plan
	if err := json.Unmarshal(run.Plan, &back); err != nil || back.Name != "vale" {
		t.Fatalf("plan body=%s err=%v", run.Plan, err)
	}

	p.Terrain.TreeDensity = math.NaN()
	run, err = runRecord(p, res)
	if err == nil {
		t.Fatalf("expected plan encoding error")
	}
	if run.Plan != nil || run.Digest != "abc" {
		t.Fatalf("row on encode failure=%+v", run)
	}
}
