package terrain

import (
	"math"

	"voxelforge.ai/internal/sim/logic/mathx"
)

// AddRiver samples a meandering path between the endpoints, assigns each
// sample a water level that never rises downstream, and carves a channel
// whose depth falls off from the centreline. Zero-length paths are a no-op.
func (t *Terrain) AddRiver(x1, z1, x2, z2 int, width, depth float64) error {
	if err := t.mutable(); err != nil {
		return err
	}
	dx, dz := float64(x2-x1), float64(z2-z1)
	length := math.Hypot(dx, dz)
	if length == 0 || width <= 0 {
		return nil
	}

	path := t.riverPath(x1, z1, dx, dz, length, width)
	bank := t.params.RiverBank
	for i := range path {
		h := t.hm.Get(mathx.RoundInt(path[i].X), mathx.RoundInt(path[i].Z))
		level := h - bank
		if i > 0 && path[i-1].WaterLevel < level {
			level = path[i-1].WaterLevel
		}
		path[i].WaterLevel = level
	}

	for _, s := range path {
		t.carveChannel(s, width, depth)
	}

	t.rivers = append(t.rivers, RiverInfo{
		X1: x1, Z1: z1, X2: x2, Z2: z2,
		Width: width,
		Depth: depth,
		Path:  path,
	})
	return nil
}

// riverPath offsets the straight line along its normal by noise scaled with
// sin(pi*t), so both endpoints stay fixed.
func (t *Terrain) riverPath(x1, z1 int, dx, dz, length, width float64) []RiverSample {
	n := int(math.Ceil(length / t.params.RiverStep))
	nx, nz := -dz/length, dx/length
	amp := t.params.RiverCurve * math.Min(length, 8*width)
	row := float64(len(t.rivers))*7.31 + 0.5

	path := make([]RiverSample, n+1)
	for i := 0; i <= n; i++ {
		f := float64(i) / float64(n)
		off := amp * t.riverNoise.Noise2D(f*3.1, row) * math.Sin(math.Pi*f)
		path[i] = RiverSample{
			X: float64(x1) + dx*f + nx*off,
			Z: float64(z1) + dz*f + nz*off,
		}
	}
	return path
}

func (t *Terrain) carveChannel(s RiverSample, width, depth float64) {
	r := int(math.Ceil(width))
	cx, cz := mathx.RoundInt(s.X), mathx.RoundInt(s.Z)
	for z := cz - r; z <= cz+r; z++ {
		for x := cx - r; x <= cx+r; x++ {
			d := math.Hypot(float64(x)-s.X, float64(z)-s.Z)
			if d > width || !t.in(x, z) {
				continue
			}
			u := d / width
			t.hm.LowerTo(x, z, s.WaterLevel-mathx.RoundInt(depth*(1-u*u)))
		}
	}
}
