package terrain

import (
	"math"

	"voxelforge.ai/internal/sim/logic/mathx"
)

// discCells calls fn for every in-bounds column whose centre lies within r
// of (cx,cz).
func (t *Terrain) discCells(cx, cz, r float64, fn func(x, z, i int)) {
	x0 := mathx.MaxInt(int(math.Floor(cx-r)), 0)
	z0 := mathx.MaxInt(int(math.Floor(cz-r)), 0)
	x1 := mathx.MinInt(int(math.Ceil(cx+r)), t.cfg.Width-1)
	z1 := mathx.MinInt(int(math.Ceil(cz+r)), t.cfg.Depth-1)
	r2 := r * r
	for z := z0; z <= z1; z++ {
		for x := x0; x <= x1; x++ {
			ddx, ddz := float64(x)-cx, float64(z)-cz
			if ddx*ddx+ddz*ddz <= r2 {
				fn(x, z, t.idx(x, z))
			}
		}
	}
}

func (t *Terrain) classify() {
	for _, m := range t.mountains {
		t.discCells(float64(m.X), float64(m.Z), m.Radius, func(x, z, i int) {
			typ := TypeMountainStone
			if t.hm.Get(x, z) >= m.SnowLine {
				typ = TypeMountainSnow
			}
			if typ > t.types[i] {
				t.types[i] = typ
			}
		})
	}
}

func (t *Terrain) markWater(i, level int) {
	if !t.water[i] || level > t.waterLevels[i] {
		t.water[i] = true
		t.waterLevels[i] = level
	}
}

func (t *Terrain) maskWater() {
	if t.cfg.WaterLevel != nil {
		wl := *t.cfg.WaterLevel
		for z := 0; z < t.cfg.Depth; z++ {
			for x := 0; x < t.cfg.Width; x++ {
				if t.hm.Get(x, z) < wl {
					t.markWater(t.idx(x, z), wl)
				}
			}
		}
	}
	for _, l := range t.lakes {
		t.discCells(float64(l.X), float64(l.Z), l.Radius, func(x, z, i int) {
			if t.hm.Get(x, z) < l.WaterLevel {
				t.markWater(i, l.WaterLevel)
			}
		})
	}
	for _, r := range t.rivers {
		for _, s := range r.Path {
			t.discCells(s.X, s.Z, r.Width, func(x, z, i int) {
				if t.hm.Get(x, z) < s.WaterLevel {
					t.markWater(i, s.WaterLevel)
				}
			})
		}
	}
}

// maskBeach marks plains land near water whose elevation is at most
// BeachMaxRise above the nearest water column's level. Ties on distance
// take the higher level.
func (t *Terrain) maskBeach() {
	r := t.params.BeachRadius
	r2 := r * r
	for z := 0; z < t.cfg.Depth; z++ {
		for x := 0; x < t.cfg.Width; x++ {
			i := t.idx(x, z)
			if t.water[i] || t.types[i] != TypePlains {
				continue
			}
			best, level := -1, 0
			for dz := -r; dz <= r; dz++ {
				for dx := -r; dx <= r; dx++ {
					d2 := dx*dx + dz*dz
					if d2 > r2 || !t.IsWater(x+dx, z+dz) {
						continue
					}
					wl := t.waterLevels[t.idx(x+dx, z+dz)]
					if best < 0 || d2 < best || (d2 == best && wl > level) {
						best, level = d2, wl
					}
				}
			}
			if best >= 0 && t.hm.Get(x, z)-level <= t.params.BeachMaxRise {
				t.beach[i] = true
			}
		}
	}
}
