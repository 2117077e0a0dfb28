package terrain

import (
	"voxelforge.ai/internal/sim/logic/mathx"
	"voxelforge.ai/internal/sim/scene"
)

var (
	logY       = map[string]string{"axis": "y"}
	keepLeaves = map[string]string{"persistent": "true"}
	lowerHalf  = map[string]string{"half": "lower"}
	upperHalf  = map[string]string{"half": "upper"}
	flowers    = []string{"poppy", "dandelion", "cornflower", "azure_bluet"}
)

func (t *Terrain) decorationOK(x, z int) bool {
	if !t.in(x, z) {
		return false
	}
	i := t.idx(x, z)
	return !t.water[i] && !t.beach[i] && !t.flattened[i] && t.types[i] == TypePlains
}

// emitDecorations visits one jittered site per DecorationSpacing cell and
// keeps it when a hash roll falls under TreeDensity scaled by local noise.
func (t *Terrain) emitDecorations(em *emitter) {
	sp := t.params.DecorationSpacing
	seed := t.decoNoise.Seed()
	j := float64(sp-1) / 2
	for gz := 0; gz*sp < t.cfg.Depth; gz++ {
		for gx := 0; gx*sp < t.cfg.Width; gx++ {
			fx, fz := float64(gx)+0.5, float64(gz)+0.5
			x := gx*sp + mathx.RoundInt(j+j*t.decoNoise.Noise2D(fx*0.73, fz*0.73))
			z := gz*sp + mathx.RoundInt(j+j*t.decoNoise.Noise2D(fx*0.73+19.1, fz*0.73-7.7))
			if !t.decorationOK(x, z) {
				continue
			}
			local := (t.decoNoise.Noise2D(float64(x)*0.11, float64(z)*0.11) + 1) / 2
			if mathx.Unit2(seed, x, z) >= t.cfg.TreeDensity*(0.5+local) {
				continue
			}
			roll := mathx.Hash2(seed^0xdec0, x, z)
			kind, ok := t.def.pick(roll)
			if !ok {
				continue
			}
			t.decorate(em, kind, x, t.hm.Get(x, z)+1, z, roll>>16)
		}
	}
}

// markDecorated records the columns under each decoration block.
func (t *Terrain) markDecorated(nodes []scene.Node) {
	for _, n := range nodes {
		b, ok := n.(*scene.Block)
		if !ok {
			continue
		}
		x0, y0, z0 := int(b.Position.X()), int(b.Position.Y()), int(b.Position.Z())
		for z := z0; z < z0+b.Size[2]; z++ {
			for x := x0; x < x0+b.Size[0]; x++ {
				if !t.in(x, z) {
					continue
				}
				i := t.idx(x, z)
				t.decorated[i] = true
				if g := t.hm.Get(x, z) + 1; y0 <= g && g < y0+b.Size[1] {
					t.decoGround[i] = true
				}
			}
		}
	}
}

func (t *Terrain) decorate(em *emitter, kind Decoration, x, y, z int, roll uint64) {
	switch kind {
	case DecoOak:
		broadTree(em, "oak", x, y, z, 4+int(roll%3))
	case DecoBirch:
		broadTree(em, "birch", x, y, z, 5+int(roll%3))
	case DecoSpruce:
		spruceTree(em, x, y, z, 6+int(roll%4))
	case DecoAcacia:
		acaciaTree(em, x, y, z, 4+int(roll%2))
	case DecoCactus:
		em.block("cactus", nil, x, y, z, 1, 1+int(roll%3), 1)
	case DecoDeadBush:
		em.block("dead_bush", nil, x, y, z, 1, 1, 1)
	case DecoBoulder:
		id := "cobblestone"
		if roll&1 == 1 {
			id = "mossy_cobblestone"
		}
		s := 1 + int(roll>>1%2)
		em.block(id, nil, x, y-1, z, s, s, s)
	case DecoFlower:
		em.block(flowers[roll%uint64(len(flowers))], nil, x, y, z, 1, 1, 1)
	case DecoGrass:
		if roll%4 == 0 {
			em.block("tall_grass", lowerHalf, x, y, z, 1, 1, 1)
			em.block("tall_grass", upperHalf, x, y+1, z, 1, 1, 1)
			return
		}
		em.block("short_grass", nil, x, y, z, 1, 1, 1)
	case DecoFern:
		if roll%3 == 0 {
			em.block("large_fern", lowerHalf, x, y, z, 1, 1, 1)
			em.block("large_fern", upperHalf, x, y+1, z, 1, 1, 1)
			return
		}
		em.block("fern", nil, x, y, z, 1, 1, 1)
	case DecoBerryBush:
		em.block("sweet_berry_bush", nil, x, y, z, 1, 1, 1)
	}
}

// ring emits the square of radius r around (x,z) at height y as four
// cuboids, leaving the centre column free for a trunk.
func ring(em *emitter, id string, x, y, z, r, h int) {
	if r <= 0 {
		return
	}
	side := 2*r + 1
	em.block(id, keepLeaves, x-r, y, z-r, side, h, r)
	em.block(id, keepLeaves, x-r, y, z+1, side, h, r)
	em.block(id, keepLeaves, x-r, y, z, r, h, 1)
	em.block(id, keepLeaves, x+1, y, z, r, h, 1)
}

func square(em *emitter, id string, x, y, z, r, h int) {
	em.block(id, keepLeaves, x-r, y, z-r, 2*r+1, h, 2*r+1)
}

// broadTree: trunk of height h, a two-high radius-2 skirt around its top,
// then a radius-1 crown above it.
func broadTree(em *emitter, wood string, x, y, z, h int) {
	leaves := wood + "_leaves"
	em.block(wood+"_log", logY, x, y, z, 1, h, 1)
	ring(em, leaves, x, y+h-2, z, 2, 2)
	square(em, leaves, x, y+h, z, 1, 1)
	em.block(leaves, keepLeaves, x, y+h+1, z, 1, 1, 1)
}

func spruceTree(em *emitter, x, y, z, h int) {
	em.block("spruce_log", logY, x, y, z, 1, h, 1)
	r := 2
	for ly := y + 2; ly < y+h; ly++ {
		ring(em, "spruce_leaves", x, ly, z, r, 1)
		if r == 2 {
			r = 1
		} else {
			r = 2
		}
		if ly >= y+h-2 {
			r = 1
		}
	}
	em.block("spruce_leaves", keepLeaves, x, y+h, z, 1, 1, 1)
}

func acaciaTree(em *emitter, x, y, z, h int) {
	em.block("acacia_log", logY, x, y, z, 1, h, 1)
	square(em, "acacia_leaves", x, y+h, z, 2, 1)
	square(em, "acacia_leaves", x, y+h+1, z, 1, 1)
}
