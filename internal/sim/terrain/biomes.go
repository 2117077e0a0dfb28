package terrain

import "sort"

type Biome string

const (
	Plains      Biome = "plains"
	Forest      Biome = "forest"
	Desert      Biome = "desert"
	Badlands    Biome = "badlands"
	SnowyPlains Biome = "snowy_plains"
	Taiga       Biome = "taiga"
	Savanna     Biome = "savanna"
)

// ToBottom as a layer depth extends the layer down to y=0.
const ToBottom = -1

// Layer is one material band measured down from the column surface.
type Layer struct {
	Block      string
	Depth      int
	Properties map[string]string
}

type Overlay int

const (
	OverlayNone Overlay = iota
	OverlaySnow
	OverlaySpires
)

type Decoration int

const (
	DecoOak Decoration = iota
	DecoBirch
	DecoSpruce
	DecoAcacia
	DecoCactus
	DecoDeadBush
	DecoBoulder
	DecoFlower
	DecoGrass
	DecoFern
	DecoBerryBush
)

type weighted struct {
	kind   Decoration
	weight int
}

type biomeDef struct {
	land          []Layer
	beach         []Layer
	underwater    []Layer
	mountainStone []Layer
	mountainSnow  []Layer

	overlay     Overlay
	decorations []weighted

	// spire materials: cap is the top block, bands cycle by absolute y.
	spireCap   string
	spireBands []string
}

var (
	stoneBase    = Layer{Block: "stone", Depth: ToBottom}
	defaultBeach = []Layer{{Block: "sand", Depth: 3}, {Block: "sandstone", Depth: 2}, stoneBase}
	defaultWet   = []Layer{{Block: "sand", Depth: 1}, {Block: "gravel", Depth: 2}, {Block: "clay", Depth: 1}, stoneBase}
	defaultStone = []Layer{{Block: "stone", Depth: 2}, {Block: "andesite", Depth: 2}, stoneBase}
	defaultSnow  = []Layer{{Block: "snow_block", Depth: 2}, {Block: "stone", Depth: ToBottom}}
)

var biomes = map[Biome]biomeDef{
	Plains: {
		land:          []Layer{{Block: "grass_block", Depth: 1}, {Block: "dirt", Depth: 3}, stoneBase},
		beach:         defaultBeach,
		underwater:    defaultWet,
		mountainStone: defaultStone,
		mountainSnow:  defaultSnow,
		decorations: []weighted{
			{kind: DecoOak, weight: 2},
			{kind: DecoGrass, weight: 5},
			{kind: DecoFlower, weight: 3},
			{kind: DecoBoulder, weight: 1},
		},
	},
	Forest: {
		land:          []Layer{{Block: "grass_block", Depth: 1}, {Block: "dirt", Depth: 4}, stoneBase},
		beach:         defaultBeach,
		underwater:    []Layer{{Block: "dirt", Depth: 1}, {Block: "gravel", Depth: 2}, stoneBase},
		mountainStone: defaultStone,
		mountainSnow:  defaultSnow,
		decorations: []weighted{
			{kind: DecoOak, weight: 6},
			{kind: DecoBirch, weight: 3},
			{kind: DecoGrass, weight: 2},
			{kind: DecoFlower, weight: 1},
		},
	},
	Desert: {
		land:          []Layer{{Block: "sand", Depth: 4}, {Block: "sandstone", Depth: 4}, stoneBase},
		beach:         []Layer{{Block: "sand", Depth: 5}, {Block: "sandstone", Depth: 3}, stoneBase},
		underwater:    []Layer{{Block: "sand", Depth: 2}, {Block: "sandstone", Depth: 2}, stoneBase},
		mountainStone: []Layer{{Block: "sandstone", Depth: 3}, {Block: "smooth_sandstone", Depth: 2}, stoneBase},
		mountainSnow:  []Layer{{Block: "snow_block", Depth: 1}, {Block: "sandstone", Depth: 2}, stoneBase},
		overlay:       OverlaySpires,
		decorations: []weighted{
			{kind: DecoCactus, weight: 3},
			{kind: DecoDeadBush, weight: 4},
		},
		spireCap:   "sand",
		spireBands: []string{"sandstone", "smooth_sandstone", "sandstone", "cut_sandstone"},
	},
	Badlands: {
		land:          []Layer{{Block: "red_sand", Depth: 1}, {Block: "orange_terracotta", Depth: 3}, {Block: "terracotta", Depth: 4}, stoneBase},
		beach:         []Layer{{Block: "red_sand", Depth: 3}, {Block: "red_sandstone", Depth: 2}, stoneBase},
		underwater:    []Layer{{Block: "red_sand", Depth: 1}, {Block: "clay", Depth: 2}, stoneBase},
		mountainStone: []Layer{{Block: "terracotta", Depth: 3}, {Block: "brown_terracotta", Depth: 2}, stoneBase},
		mountainSnow:  []Layer{{Block: "snow_block", Depth: 1}, {Block: "white_terracotta", Depth: 2}, stoneBase},
		overlay:       OverlaySpires,
		decorations: []weighted{
			{kind: DecoDeadBush, weight: 5},
			{kind: DecoCactus, weight: 1},
		},
		spireCap: "red_sand",
		spireBands: []string{
			"terracotta", "orange_terracotta", "yellow_terracotta", "terracotta",
			"white_terracotta", "red_terracotta", "light_gray_terracotta", "brown_terracotta",
		},
	},
	SnowyPlains: {
		land:          []Layer{{Block: "grass_block", Depth: 1, Properties: map[string]string{"snowy": "true"}}, {Block: "dirt", Depth: 3}, stoneBase},
		beach:         []Layer{{Block: "sand", Depth: 2}, {Block: "gravel", Depth: 2}, stoneBase},
		underwater:    []Layer{{Block: "gravel", Depth: 2}, {Block: "clay", Depth: 1}, stoneBase},
		mountainStone: defaultStone,
		mountainSnow:  []Layer{{Block: "snow_block", Depth: 3}, {Block: "packed_ice", Depth: 1}, stoneBase},
		overlay:       OverlaySnow,
		decorations: []weighted{
			{kind: DecoSpruce, weight: 2},
			{kind: DecoBoulder, weight: 1},
		},
	},
	Taiga: {
		land:          []Layer{{Block: "podzol", Depth: 1}, {Block: "coarse_dirt", Depth: 1}, {Block: "dirt", Depth: 3}, stoneBase},
		beach:         []Layer{{Block: "gravel", Depth: 2}, {Block: "sand", Depth: 2}, stoneBase},
		underwater:    []Layer{{Block: "gravel", Depth: 2}, {Block: "dirt", Depth: 1}, stoneBase},
		mountainStone: []Layer{{Block: "stone", Depth: 2}, {Block: "tuff", Depth: 2}, stoneBase},
		mountainSnow:  defaultSnow,
		overlay:       OverlaySnow,
		decorations: []weighted{
			{kind: DecoSpruce, weight: 7},
			{kind: DecoFern, weight: 3},
			{kind: DecoBerryBush, weight: 1},
			{kind: DecoBoulder, weight: 1},
		},
	},
	Savanna: {
		land:          []Layer{{Block: "grass_block", Depth: 1}, {Block: "coarse_dirt", Depth: 1}, {Block: "dirt", Depth: 2}, stoneBase},
		beach:         defaultBeach,
		underwater:    defaultWet,
		mountainStone: []Layer{{Block: "granite", Depth: 2}, stoneBase},
		mountainSnow:  defaultSnow,
		decorations: []weighted{
			{kind: DecoAcacia, weight: 3},
			{kind: DecoGrass, weight: 6},
			{kind: DecoDeadBush, weight: 1},
		},
	},
}

// Biomes lists the supported biomes in sorted order.
func Biomes() []Biome {
	out := make([]Biome, 0, len(biomes))
	for b := range biomes {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (d biomeDef) pick(roll uint64) (Decoration, bool) {
	total := 0
	for _, w := range d.decorations {
		total += w.weight
	}
	if total == 0 {
		return 0, false
	}
	r := int(roll % uint64(total))
	for _, w := range d.decorations {
		if r < w.weight {
			return w.kind, true
		}
		r -= w.weight
	}
	return 0, false
}
