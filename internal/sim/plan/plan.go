// Package plan runs a tuning.Plan end to end: terrain shaping in plan
// order, block compilation, scene assembly and export.
package plan

import (
	"context"
	"fmt"
	"log"
	"time"

	"voxelforge.ai/internal/persistence/structure"
	"voxelforge.ai/internal/sim/logic/mathx"
	"voxelforge.ai/internal/sim/scene"
	"voxelforge.ai/internal/sim/simerr"
	"voxelforge.ai/internal/sim/terrain"
	"voxelforge.ai/internal/sim/tuning"
)

type Result struct {
	Name      string
	Structure structure.Structure
	Terrain   terrain.Stats
	Summary   structure.Stats
	Digest    string
	Elapsed   time.Duration
}

type Runner struct {
	Catalog scene.Catalog
	Tuning  tuning.Tuning
	Logger  *log.Logger
}

func (r Runner) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}

// Run executes p. The context is checked between features and before the
// compile and export steps; generation itself is not interruptible.
func (r Runner) Run(ctx context.Context, p tuning.Plan) (Result, error) {
	start := time.Now()
	if err := p.Check(r.Tuning.Limits); err != nil {
		return Result{}, err
	}
	tr, err := terrain.New(p.Terrain, r.Tuning.Terrain, r.Catalog)
	if err != nil {
		return Result{}, err
	}
	tr.Logger = r.Logger
	tr.HeightMap().SetWorkers(r.Tuning.NoiseWorkers)

	for i, f := range p.Features {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if err := Apply(tr, f); err != nil {
			return Result{}, fmt.Errorf("features[%d] %s: %w", i, f.Kind, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := tr.Generate(); err != nil {
		return Result{}, err
	}

	sc := scene.New()
	sc.Add(tr.Group())
	for i, bs := range p.Blocks {
		b, err := scene.NewBlock(r.Catalog, scene.BlockSpec{
			ID:         bs.ID,
			Position:   scene.Vec(bs.Position[0], bs.Position[1], bs.Position[2]),
			Size:       bs.Size,
			Properties: bs.Properties,
			Hollow:     bs.Hollow,
		})
		if err != nil {
			return Result{}, fmt.Errorf("blocks[%d]: %w", i, err)
		}
		sc.Add(b)
	}
	for i, es := range p.Erasers {
		e, err := NewEraser(es)
		if err != nil {
			return Result{}, fmt.Errorf("erasers[%d]: %w", i, err)
		}
		sc.Add(e)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	out, err := sc.ToStructure(scene.ExportOptions{
		Origin:     p.Export.Origin,
		Padding:    p.Export.Padding,
		Dimensions: p.Export.Dimensions,
	})
	if err != nil {
		return Result{}, err
	}
	if limit := r.Tuning.Limits.MaxEntries; limit > 0 && len(out.Blocks) > limit {
		return Result{}, fmt.Errorf("export: %d entries exceeds %d: %w", len(out.Blocks), limit, tuning.ErrLimit)
	}
	digest, err := structure.Digest(out)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Name:      p.Name,
		Structure: out,
		Terrain:   tr.Stats(),
		Summary:   structure.Summarize(out),
		Digest:    digest,
		Elapsed:   time.Since(start),
	}
	r.logf("plan %q: %d entries %d voxels in %s", p.Name, res.Summary.Entries, res.Summary.Voxels, res.Elapsed)
	return res, nil
}

// Apply performs one shaping call on tr.
func Apply(tr *terrain.Terrain, f tuning.Feature) error {
	switch f.Kind {
	case tuning.FeatureMountain:
		return tr.AddMountain(f.X, f.Z, f.Radius, f.Height, f.Falloff, f.SnowLine)
	case tuning.FeatureRidge:
		return tr.AddRidge(f.X, f.Z, f.X2, f.Z2, f.Width, f.Height, f.Falloff, f.SnowLine)
	case tuning.FeaturePlateau:
		return tr.AddPlateau(f.X, f.Z, f.Radius, f.FlatRadius, f.Height)
	case tuning.FeatureValley:
		return tr.AddValley(f.X, f.Z, f.Radius, f.Depth, f.Falloff)
	case tuning.FeatureGorge:
		return tr.AddGorge(f.X, f.Z, f.X2, f.Z2, f.Width, f.Depth, f.Falloff)
	case tuning.FeatureCrater:
		return tr.AddCrater(f.X, f.Z, f.Radius, f.Depth, f.RimHeight, f.RimWidth, f.Falloff)
	case tuning.FeatureLake:
		return tr.AddLake(f.X, f.Z, f.Radius, f.Depth, f.WaterLevel)
	case tuning.FeatureRiver:
		return tr.AddRiver(f.X, f.Z, f.X2, f.Z2, f.Width, f.Depth)
	case tuning.FeatureFlatten:
		_, err := tr.FlattenForStructure(f.X, f.Z, f.W, f.D, f.Target, mathx.RoundInt(f.Falloff))
		return err
	case tuning.FeatureSmooth:
		return tr.Smooth(mathx.RoundInt(f.Radius), f.Iterations)
	case tuning.FeatureRaise:
		return tr.RaiseArea(f.X, f.Z, f.W, f.D, f.Amount)
	case tuning.FeatureCarve:
		return tr.CarveArea(f.X, f.Z, f.W, f.D, f.Amount)
	default:
		return fmt.Errorf("%w: unknown feature kind %q", simerr.ErrInvalidConfiguration, f.Kind)
	}
}

// NewEraser builds a positioned eraser from its plan entry.
func NewEraser(es tuning.EraserSpec) (scene.Eraser, error) {
	pos := scene.Vec(es.Position[0], es.Position[1], es.Position[2])
	switch es.Kind {
	case "sphere":
		e, err := scene.NewSphereEraser(es.Radius)
		if err != nil {
			return nil, err
		}
		e.Position = pos
		return e, nil
	case "box":
		e, err := scene.NewBoxEraser(scene.Vec(es.Size[0], es.Size[1], es.Size[2]))
		if err != nil {
			return nil, err
		}
		e.Position = pos
		return e, nil
	case "cylinder":
		e, err := scene.NewCylinderEraser(es.Radius, es.Height, es.Axis)
		if err != nil {
			return nil, err
		}
		e.Position = pos
		return e, nil
	default:
		return nil, fmt.Errorf("%w: unknown eraser kind %q", simerr.ErrInvalidConfiguration, es.Kind)
	}
}
