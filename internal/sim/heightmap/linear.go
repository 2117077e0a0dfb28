package heightmap

import (
	"math"

	"voxelforge.ai/internal/sim/logic/mathx"
)

// AddRidge sweeps a raised profile along a noise-curved line from (x1,z1) to
// (x2,z2). Width varies along the length, both ends taper to zero and the
// crest carries sub-peaks. A zero-length path does nothing.
func (h *HeightMap) AddRidge(x1, z1, x2, z2 int, width, height, falloff float64) {
	h.linear(x1, z1, x2, z2, width, height, falloff, 1)
}

// AddGorge is AddRidge subtracted, without sub-peaks.
func (h *HeightMap) AddGorge(x1, z1, x2, z2 int, width, depth, falloff float64) {
	h.linear(x1, z1, x2, z2, width, depth, falloff, -1)
}

func (h *HeightMap) linear(x1, z1, x2, z2 int, width, height, falloff float64, sign int) {
	dx := float64(x2 - x1)
	dz := float64(z2 - z1)
	length := math.Hypot(dx, dz)
	if length == 0 || width <= 0 {
		return
	}
	h.ensure()
	falloff = normFalloff(falloff)
	s := h.shape

	ux, uz := dx/length, dz/length
	px, pz := -uz, ux
	curveAmp := width * s.CurveStrength
	maxW := width * (1 + s.WidthVariation)

	reach := maxW + curveAmp
	b := bbox{
		x0: mathx.MaxInt(int(math.Floor(math.Min(float64(x1), float64(x2))-reach))-1, 0),
		z0: mathx.MaxInt(int(math.Floor(math.Min(float64(z1), float64(z2))-reach))-1, 0),
		x1: mathx.MinInt(int(math.Ceil(math.Max(float64(x1), float64(x2))+reach))+1, h.cfg.Width-1),
		z1: mathx.MinInt(int(math.Ceil(math.Max(float64(z1), float64(z2))+reach))+1, h.cfg.Depth-1),
	}
	// Per-feature noise row keeps separate ridges from sharing a centreline.
	row := float64(mathx.Hash2(h.cfg.Noise.Seed, x1*31+x2, z1*17+z2)%997) + 0.5

	for z := b.z0; z <= b.z1; z++ {
		for x := b.x0; x <= b.x1; x++ {
			rx := float64(x - x1)
			rz := float64(z - z1)
			along := rx*ux + rz*uz
			t := along / length
			if t < 0 || t > 1 {
				continue
			}
			across := rx*px + rz*pz
			center := curveAmp * h.detail.Noise2D(along*s.CurveFrequency, row)
			w := width * (1 + s.WidthVariation*h.ridge.Noise2D(along*s.CurveFrequency*2.3, row+11.1))
			if w < 1 {
				w = 1
			}
			p := radialProfile(math.Abs(across-center), w, falloff)
			if p <= 0 {
				continue
			}
			taper := mathx.Smoothstep(math.Min(t, 1-t) / s.EndTaper)
			mult := 1.0
			if sign > 0 {
				mult += s.SubPeakHeight * h.ridge.Noise2D(along*s.CurveFrequency*3.1, row+23.7)
			}
			delta := height * p * taper * mult
			h.add(x, z, sign*mathx.RoundInt(delta))
		}
	}
}
