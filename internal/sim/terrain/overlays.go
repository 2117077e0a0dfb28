package terrain

import (
	"voxelforge.ai/internal/sim/logic/mathx"
)

// overlayOK excludes water, beach, flattened and non-plains columns.
func (t *Terrain) overlayOK(x, z int) bool {
	if !t.in(x, z) {
		return false
	}
	i := t.idx(x, z)
	return !t.water[i] && !t.beach[i] && !t.flattened[i] && t.types[i] == TypePlains
}

func (t *Terrain) emitSnowOverlay(em *emitter) {
	layer := map[string]string{"layers": "1"}
	t.mergeRuns(func(x, z int) span {
		if !t.overlayOK(x, z) || t.decoGround[t.idx(x, z)] {
			return span{}
		}
		y := t.hm.Get(x, z) + 1
		return span{bottom: y, top: y, ok: true}
	}, func(x, z, w, d int, s span) {
		em.block("snow", layer, x, s.bottom, z, w, 1, d)
	})
}

type spireShape int

const (
	spirePillar spireShape = iota
	spireTapered
	spireButte
)

// tier is one cuboid of a spire: inset from the footprint origin, square
// side and height.
type tier struct {
	inset, side, height int
}

func spireTiers(shape spireShape, roll uint64) []tier {
	switch shape {
	case spireTapered:
		h := 3 + int(roll%3)
		return []tier{{0, 5, h}, {1, 3, h}, {2, 1, 2 + int(roll>>4%3)}}
	case spireButte:
		return []tier{{0, 4, 4 + int(roll%3)}}
	default:
		return []tier{{0, 2, 6 + int(roll%6)}}
	}
}

// emitSpires seeds at most one spire per SpireSpacing cell. The footprint
// must be fully eligible and free of decorations; the spire rises from its lowest column and is
// banded by absolute height, topped with the biome's cap block.
func (t *Terrain) emitSpires(em *emitter) {
	sp := t.params.SpireSpacing
	seed := t.spireNoise.Seed()
	for gz := 0; gz*sp < t.cfg.Depth; gz++ {
		for gx := 0; gx*sp < t.cfg.Width; gx++ {
			if mathx.Unit2(seed, gx, gz) >= t.params.SpireChance {
				continue
			}
			roll := mathx.Hash2(seed^0x5b1e, gx, gz)
			shape := spireShape(roll % 3)
			tiers := spireTiers(shape, roll>>8)
			side := tiers[0].side

			jx := int((t.spireNoise.Noise2D(float64(gx)+0.37, float64(gz)+0.11) + 1) / 2 * float64(sp-side))
			jz := int((t.spireNoise.Noise2D(float64(gx)+0.71, float64(gz)+0.53) + 1) / 2 * float64(sp-side))
			ox, oz := gx*sp+mathx.MaxInt(jx, 0), gz*sp+mathx.MaxInt(jz, 0)

			base, ok := t.footprintBase(ox, oz, side)
			if !ok {
				continue
			}
			y := base + 1
			for _, tr := range tiers {
				t.emitBanded(em, ox+tr.inset, y, oz+tr.inset, tr.side, tr.height)
				y += tr.height
			}
			last := tiers[len(tiers)-1]
			em.block(t.def.spireCap, nil, ox+last.inset, y, oz+last.inset, last.side, 1, last.side)
		}
	}
}

func (t *Terrain) footprintBase(ox, oz, side int) (int, bool) {
	low := 0
	for z := oz; z < oz+side; z++ {
		for x := ox; x < ox+side; x++ {
			if !t.overlayOK(x, z) || t.decorated[t.idx(x, z)] {
				return 0, false
			}
			h := t.hm.Get(x, z)
			if (x == ox && z == oz) || h < low {
				low = h
			}
		}
	}
	return low, true
}

// emitBanded stacks runs of same-band material from y0 upward.
func (t *Terrain) emitBanded(em *emitter, x, y0, z, side, height int) {
	bands := t.def.spireBands
	bh := t.params.SpireBandHeight
	band := func(y int) string { return bands[mathx.Mod(mathx.FloorDiv(y, bh), len(bands))] }

	start := y0
	for y := y0 + 1; y <= y0+height; y++ {
		if y < y0+height && band(y) == band(start) {
			continue
		}
		em.block(band(start), nil, x, start, z, side, y-start, side)
		start = y
	}
}
