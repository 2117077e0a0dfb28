package terrain

// span is a column's vertical extent [bottom, top] within one pass.
type span struct {
	bottom, top int
	ok          bool
}

// mergeRuns greedily covers the columns reported by fn with maximal
// rectangles of identical span. Rows are scanned in order and a run is
// grown first along x, then along z while whole rows still match.
func (t *Terrain) mergeRuns(fn func(x, z int) span, emit func(x, z, w, d int, s span)) {
	W, D := t.cfg.Width, t.cfg.Depth
	spans := make([]span, W*D)
	for z := 0; z < D; z++ {
		for x := 0; x < W; x++ {
			spans[t.idx(x, z)] = fn(x, z)
		}
	}
	claimed := make([]bool, W*D)
	free := func(x, z int, s span) bool {
		i := t.idx(x, z)
		return !claimed[i] && spans[i].ok && spans[i].bottom == s.bottom && spans[i].top == s.top
	}

	for z := 0; z < D; z++ {
		for x := 0; x < W; x++ {
			s := spans[t.idx(x, z)]
			if !free(x, z, s) {
				continue
			}
			w := 1
			for x+w < W && free(x+w, z, s) {
				w++
			}
			d := 1
		grow:
			for z+d < D {
				for xx := x; xx < x+w; xx++ {
					if !free(xx, z+d, s) {
						break grow
					}
				}
				d++
			}
			for zz := z; zz < z+d; zz++ {
				for xx := x; xx < x+w; xx++ {
					claimed[t.idx(xx, zz)] = true
				}
			}
			emit(x, z, w, d, s)
		}
	}
}

type passFilter func(i int) bool

func (t *Terrain) emitLayers(em *emitter, layers []Layer, keep passFilter) {
	off := 0
	for _, l := range layers {
		depth := l.Depth
		t.mergeRuns(func(x, z int) span {
			i := t.idx(x, z)
			if !keep(i) {
				return span{}
			}
			top := t.hm.Get(x, z) - off
			if top < 0 {
				return span{}
			}
			bottom := 0
			if depth != ToBottom {
				bottom = top - depth + 1
				if bottom < 0 {
					bottom = 0
				}
			}
			return span{bottom: bottom, top: top, ok: true}
		}, func(x, z, w, d int, s span) {
			em.block(l.Block, l.Properties, x, s.bottom, z, w, s.top-s.bottom+1, d)
		})
		if depth == ToBottom || depth <= 0 {
			return
		}
		off += depth
	}
}

// emitTerrain runs one merge per layer for each pass. Every column belongs
// to exactly one pass.
func (t *Terrain) emitTerrain(em *emitter) {
	t.emitLayers(em, t.def.land, func(i int) bool {
		return t.types[i] == TypePlains && !t.beach[i] && !t.water[i]
	})
	t.emitLayers(em, t.def.beach, func(i int) bool { return t.beach[i] })
	t.emitLayers(em, t.def.underwater, func(i int) bool { return t.water[i] })
	t.emitLayers(em, t.def.mountainStone, func(i int) bool {
		return t.types[i] == TypeMountainStone && !t.water[i]
	})
	t.emitLayers(em, t.def.mountainSnow, func(i int) bool {
		return t.types[i] == TypeMountainSnow && !t.water[i]
	})
}

func (t *Terrain) emitWater(em *emitter) {
	t.mergeRuns(func(x, z int) span {
		i := t.idx(x, z)
		if !t.water[i] {
			return span{}
		}
		return span{bottom: t.hm.Get(x, z) + 1, top: t.waterLevels[i], ok: true}
	}, func(x, z, w, d int, s span) {
		em.block("water", nil, x, s.bottom, z, w, s.top-s.bottom+1, d)
	})
}
