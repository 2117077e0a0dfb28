// Package terrain compiles a shaped elevation raster into merged cuboid
// blocks: biome layers, water, overlays and decorations.
package terrain

import (
	"fmt"
	"log"

	"voxelforge.ai/internal/sim/heightmap"
	"voxelforge.ai/internal/sim/noise"
	"voxelforge.ai/internal/sim/scene"
	"voxelforge.ai/internal/sim/simerr"
)

// Type is the per-column classification. Higher values win on overlap.
type Type uint8

const (
	TypePlains Type = iota
	TypeMountainStone
	TypeMountainSnow
)

func (t Type) String() string {
	switch t {
	case TypeMountainStone:
		return "mountain_stone"
	case TypeMountainSnow:
		return "mountain_snow"
	default:
		return "plains"
	}
}

const (
	decorationSeedOffset = 4001
	spireSeedOffset      = 5003
	riverSeedOffset      = 6007
)

// Stats counts emitted nodes per phase.
type Stats struct {
	Terrain     int `json:"terrain"`
	Water       int `json:"water"`
	Overlay     int `json:"overlay"`
	Decorations int `json:"decorations"`
}

func (s Stats) Total() int { return s.Terrain + s.Water + s.Overlay + s.Decorations }

// Terrain owns one height map and the grids derived from it. Shaping calls
// run in caller order; Generate classifies once and emits blocks once.
type Terrain struct {
	cfg    Config
	params Params
	cat    scene.Catalog
	def    biomeDef
	hm     *heightmap.HeightMap

	types       []Type
	water       []bool
	waterLevels []int
	beach       []bool
	flattened   []bool

	// decorated marks columns holding a decoration block; decoGround the
	// subset where that block fills the first cell above ground.
	decorated  []bool
	decoGround []bool

	mountains []MountainInfo
	plateaus  []PlateauInfo
	valleys   []ValleyInfo
	lakes     []LakeInfo
	rivers    []RiverInfo

	decoNoise  *noise.Perlin
	spireNoise *noise.Perlin
	riverNoise *noise.Perlin

	children  []scene.Node
	stats     Stats
	generated bool

	// Logger receives one line per pipeline phase when set.
	Logger *log.Logger
}

// New validates cfg and allocates the terrain. The biome must be one of
// Biomes(); params go through Params.Normalize.
func New(cfg Config, params Params, cat scene.Catalog) (*Terrain, error) {
	if cat == nil {
		return nil, fmt.Errorf("%w: nil block catalog", simerr.ErrInvalidConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hm, err := heightmap.New(cfg.heightMapConfig())
	if err != nil {
		return nil, err
	}
	params = params.Normalize()
	hm.SetShape(params.Shape)

	n := cfg.Width * cfg.Depth
	return &Terrain{
		cfg:         cfg,
		params:      params,
		cat:         cat,
		def:         biomes[cfg.Biome],
		hm:          hm,
		types:       make([]Type, n),
		water:       make([]bool, n),
		waterLevels: make([]int, n),
		beach:       make([]bool, n),
		flattened:   make([]bool, n),
		decorated:   make([]bool, n),
		decoGround:  make([]bool, n),
		decoNoise:   noise.NewPerlin(cfg.Seed + decorationSeedOffset),
		spireNoise:  noise.NewPerlin(cfg.Seed + spireSeedOffset),
		riverNoise:  noise.NewPerlin(cfg.Seed + riverSeedOffset),
	}, nil
}

func (t *Terrain) Config() Config                  { return t.cfg }
func (t *Terrain) Params() Params                  { return t.params }
func (t *Terrain) HeightMap() *heightmap.HeightMap { return t.hm }
func (t *Terrain) Width() int                      { return t.cfg.Width }
func (t *Terrain) Depth() int                      { return t.cfg.Depth }
func (t *Terrain) Stats() Stats                    { return t.stats }
func (t *Terrain) Generated() bool                 { return t.generated }

func (t *Terrain) Mountains() []MountainInfo { return append([]MountainInfo(nil), t.mountains...) }
func (t *Terrain) Plateaus() []PlateauInfo   { return append([]PlateauInfo(nil), t.plateaus...) }
func (t *Terrain) Valleys() []ValleyInfo     { return append([]ValleyInfo(nil), t.valleys...) }
func (t *Terrain) Lakes() []LakeInfo         { return append([]LakeInfo(nil), t.lakes...) }
func (t *Terrain) Rivers() []RiverInfo       { return append([]RiverInfo(nil), t.rivers...) }

func (t *Terrain) idx(x, z int) int { return z*t.cfg.Width + x }

func (t *Terrain) in(x, z int) bool {
	return x >= 0 && z >= 0 && x < t.cfg.Width && z < t.cfg.Depth
}

func (t *Terrain) TypeAt(x, z int) Type {
	if !t.in(x, z) {
		return TypePlains
	}
	return t.types[t.idx(x, z)]
}

func (t *Terrain) IsWater(x, z int) bool { return t.in(x, z) && t.water[t.idx(x, z)] }

// WaterLevelAt is meaningful only where IsWater is true.
func (t *Terrain) WaterLevelAt(x, z int) int {
	if !t.in(x, z) {
		return 0
	}
	return t.waterLevels[t.idx(x, z)]
}

func (t *Terrain) IsBeach(x, z int) bool     { return t.in(x, z) && t.beach[t.idx(x, z)] }
func (t *Terrain) IsFlattened(x, z int) bool { return t.in(x, z) && t.flattened[t.idx(x, z)] }

// Children returns the emitted nodes in emission order.
func (t *Terrain) Children() []scene.Node { return append([]scene.Node(nil), t.children...) }

// Group wraps the emitted nodes for insertion into a scene.
func (t *Terrain) Group() *scene.Group { return scene.NewGroup(t.children...) }

func (t *Terrain) logf(format string, args ...any) {
	if t.Logger != nil {
		t.Logger.Printf(format, args...)
	}
}

// Generate runs the pipeline: classification, water mask, beach mask,
// terrain layers, water bodies, biome overlay, decorations. Catalog
// failures abort it unchanged. A second call is a no-op.
func (t *Terrain) Generate() error {
	if t.generated {
		return nil
	}
	t.hm.Generate()

	t.classify()
	t.maskWater()
	t.maskBeach()

	em := newEmitter(t.cat)
	t.emitTerrain(em)
	t.stats.Terrain = em.count()
	if em.err != nil {
		return fmt.Errorf("terrain layers: %w", em.err)
	}
	t.logf("terrain layers: %d blocks", t.stats.Terrain)

	mark := em.count()
	t.emitWater(em)
	t.stats.Water = em.count() - mark
	if em.err != nil {
		return fmt.Errorf("water: %w", em.err)
	}
	t.logf("water: %d blocks", t.stats.Water)

	// Decorations are placed before the overlay so snow and spires can
	// leave their columns alone; they are still appended last.
	deco := newEmitter(t.cat)
	if t.cfg.GenerateDecorations {
		t.emitDecorations(deco)
		if deco.err != nil {
			return fmt.Errorf("decorations: %w", deco.err)
		}
		t.markDecorated(deco.nodes)
	}

	mark = em.count()
	switch t.def.overlay {
	case OverlaySnow:
		t.emitSnowOverlay(em)
	case OverlaySpires:
		t.emitSpires(em)
	}
	t.stats.Overlay = em.count() - mark
	if em.err != nil {
		return fmt.Errorf("overlay: %w", em.err)
	}
	t.logf("overlay: %d blocks", t.stats.Overlay)

	if t.cfg.GenerateDecorations {
		em.nodes = append(em.nodes, deco.nodes...)
		t.stats.Decorations = deco.count()
		t.logf("decorations: %d blocks", t.stats.Decorations)
	}

	t.children = em.nodes
	t.generated = true
	return nil
}

// emitter accumulates blocks and keeps the first catalog error.
type emitter struct {
	cat   scene.Catalog
	nodes []scene.Node
	err   error
}

func newEmitter(cat scene.Catalog) *emitter { return &emitter{cat: cat} }

func (e *emitter) count() int { return len(e.nodes) }

func (e *emitter) block(id string, props map[string]string, x, y, z, sx, sy, sz int) {
	if e.err != nil {
		return
	}
	b, err := scene.NewBlock(e.cat, scene.BlockSpec{
		ID:         id,
		Position:   scene.Vec(float64(x), float64(y), float64(z)),
		Size:       [3]int{sx, sy, sz},
		Properties: props,
	})
	if err != nil {
		e.err = err
		return
	}
	e.nodes = append(e.nodes, b)
}
