package heightmap

import (
	"math"

	"voxelforge.ai/internal/sim/logic/mathx"
)

// FlattenArea levels the core rectangle [x,x+w)x[z,z+d) to target (the
// rectangle's average when target is nil). Cells within falloff cells of
// the core, by Chebyshev distance, are blended linearly from target back to
// their original height. It returns the level used.
func (h *HeightMap) FlattenArea(x, z, w, d int, target *int, falloff int) int {
	h.ensure()
	if falloff < 0 {
		falloff = 0
	}
	level := 0
	if target != nil {
		level = *target
	} else {
		level = mathx.RoundInt(h.AverageHeight(x, z, w, d))
	}
	if w <= 0 || d <= 0 {
		return level
	}

	x1, z1 := x+w-1, z+d-1
	for zz := z - falloff; zz <= z1+falloff; zz++ {
		for xx := x - falloff; xx <= x1+falloff; xx++ {
			if !h.InBounds(xx, zz) {
				continue
			}
			dx := mathx.MaxInt(0, mathx.MaxInt(x-xx, xx-x1))
			dz := mathx.MaxInt(0, mathx.MaxInt(z-zz, zz-z1))
			cheb := mathx.MaxInt(dx, dz)
			i := h.index(xx, zz)
			if cheb == 0 {
				h.cells[i] = level
				continue
			}
			t := float64(cheb) / float64(falloff+1)
			h.cells[i] = mathx.RoundInt(mathx.Lerp(float64(level), float64(h.cells[i]), t))
		}
	}
	return level
}

// Smooth applies iterations of a (2*radius+1)^2 box blur with
// edge-replicated padding.
func (h *HeightMap) Smooth(radius, iterations int) {
	h.ensure()
	if radius <= 0 || iterations <= 0 {
		return
	}
	w, d := h.cfg.Width, h.cfg.Depth
	src := make([]float64, len(h.cells))
	for i, v := range h.cells {
		src[i] = float64(v)
	}
	dst := make([]float64, len(src))
	n := float64((2*radius + 1) * (2*radius + 1))
	for it := 0; it < iterations; it++ {
		for z := 0; z < d; z++ {
			for x := 0; x < w; x++ {
				var sum float64
				for oz := -radius; oz <= radius; oz++ {
					sz := mathx.ClampInt(z+oz, 0, d-1)
					for ox := -radius; ox <= radius; ox++ {
						sx := mathx.ClampInt(x+ox, 0, w-1)
						sum += src[sz*w+sx]
					}
				}
				dst[z*w+x] = sum / n
			}
		}
		src, dst = dst, src
	}
	for i, v := range src {
		h.cells[i] = int(math.Round(v))
	}
}

// CarveArea lowers the rectangle by depth, clipped to the raster.
func (h *HeightMap) CarveArea(x, z, w, d, depth int) {
	h.shiftArea(x, z, w, d, -depth)
}

// RaiseArea lifts the rectangle by amount, clipped to the raster.
func (h *HeightMap) RaiseArea(x, z, w, d, amount int) {
	h.shiftArea(x, z, w, d, amount)
}

func (h *HeightMap) shiftArea(x, z, w, d, dv int) {
	h.ensure()
	x0 := mathx.MaxInt(x, 0)
	z0 := mathx.MaxInt(z, 0)
	x1 := mathx.MinInt(x+w, h.cfg.Width)
	z1 := mathx.MinInt(z+d, h.cfg.Depth)
	for zz := z0; zz < z1; zz++ {
		for xx := x0; xx < x1; xx++ {
			h.cells[h.index(xx, zz)] += dv
		}
	}
}
