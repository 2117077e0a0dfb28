package terrain

import (
	"fmt"

	"voxelforge.ai/internal/sim/heightmap"
	"voxelforge.ai/internal/sim/noise"
	"voxelforge.ai/internal/sim/simerr"
)

type Config struct {
	Width               int          `yaml:"width" json:"width"`
	Depth               int          `yaml:"depth" json:"depth"`
	BaseHeight          int          `yaml:"base_height" json:"base_height"`
	HeightRange         int          `yaml:"height_range" json:"height_range"`
	Seed                int64        `yaml:"seed" json:"seed"`
	Biome               Biome        `yaml:"biome" json:"biome"`
	GenerateDecorations bool         `yaml:"generate_decorations" json:"generate_decorations"`
	TreeDensity         float64      `yaml:"tree_density" json:"tree_density"`
	WaterLevel          *int         `yaml:"water_level,omitempty" json:"water_level,omitempty"`
	Noise               noise.Config `yaml:"noise" json:"noise"`
}

func (c Config) Validate() error {
	if _, ok := biomes[c.Biome]; !ok {
		return fmt.Errorf("%w: unsupported biome %q", simerr.ErrInvalidConfiguration, c.Biome)
	}
	if c.TreeDensity < 0 {
		return fmt.Errorf("%w: tree_density %g", simerr.ErrInvalidConfiguration, c.TreeDensity)
	}
	return nil
}

func (c Config) heightMapConfig() heightmap.Config {
	nc := c.Noise
	nc.Seed = c.Seed
	return heightmap.Config{
		Width:       c.Width,
		Depth:       c.Depth,
		BaseHeight:  c.BaseHeight,
		HeightRange: c.HeightRange,
		Noise:       nc,
	}
}

// Params are the classification and placement constants. The zero Params
// means DefaultParams. Otherwise a negative field takes its default, and so
// does a zero spacing, step or factor; zero is kept for the rest (no beach,
// no spires, straight rivers).
type Params struct {
	// BeachRadius is how far (Euclidean, in columns) a plains column looks
	// for water when deciding whether it is beach.
	BeachRadius int `yaml:"beach_radius" json:"beach_radius"`
	// BeachMaxRise is the largest elevation above the nearest water's level
	// that still counts as beach.
	BeachMaxRise int `yaml:"beach_max_rise" json:"beach_max_rise"`
	// WarpRadiusFactor widens registered mountain radii so classification
	// covers the warped footprint.
	WarpRadiusFactor float64 `yaml:"warp_radius_factor" json:"warp_radius_factor"`
	// BasinRadiusFactor widens lake and valley radii the same way.
	BasinRadiusFactor float64 `yaml:"basin_radius_factor" json:"basin_radius_factor"`
	// SnowLineFraction places a mountain's default snow line at this
	// fraction of its height above the pre-feature elevation.
	SnowLineFraction float64 `yaml:"snow_line_fraction" json:"snow_line_fraction"`

	DecorationSpacing int     `yaml:"decoration_spacing" json:"decoration_spacing"`
	SpireSpacing      int     `yaml:"spire_spacing" json:"spire_spacing"`
	SpireChance       float64 `yaml:"spire_chance" json:"spire_chance"`
	SpireBandHeight   int     `yaml:"spire_band_height" json:"spire_band_height"`

	RiverStep    float64 `yaml:"river_step" json:"river_step"`
	RiverBank    int     `yaml:"river_bank" json:"river_bank"`
	RiverCurve   float64 `yaml:"river_curve" json:"river_curve"`
	LakeInset    int     `yaml:"lake_inset" json:"lake_inset"`
	RidgeSpacing float64 `yaml:"ridge_spacing" json:"ridge_spacing"`

	Shape heightmap.Shape `yaml:"shape" json:"shape"`
}

func DefaultParams() Params {
	return Params{
		BeachRadius:       3,
		BeachMaxRise:      2,
		WarpRadiusFactor:  1.4,
		BasinRadiusFactor: 1.4,
		SnowLineFraction:  0.7,
		DecorationSpacing: 5,
		SpireSpacing:      9,
		SpireChance:       0.35,
		SpireBandHeight:   2,
		RiverStep:         1,
		RiverBank:         1,
		RiverCurve:        0.25,
		LakeInset:         1,
		RidgeSpacing:      0.5,
		Shape:             heightmap.DefaultShape(),
	}
}

func (p Params) Normalize() Params {
	d := DefaultParams()
	if p == (Params{}) {
		return d
	}
	if p.BeachRadius < 0 {
		p.BeachRadius = d.BeachRadius
	}
	if p.BeachMaxRise < 0 {
		p.BeachMaxRise = d.BeachMaxRise
	}
	if p.WarpRadiusFactor <= 0 {
		p.WarpRadiusFactor = d.WarpRadiusFactor
	}
	if p.BasinRadiusFactor <= 0 {
		p.BasinRadiusFactor = d.BasinRadiusFactor
	}
	if p.SnowLineFraction < 0 {
		p.SnowLineFraction = d.SnowLineFraction
	}
	if p.DecorationSpacing <= 0 {
		p.DecorationSpacing = d.DecorationSpacing
	}
	if p.SpireSpacing <= 0 {
		p.SpireSpacing = d.SpireSpacing
	}
	if p.SpireChance < 0 {
		p.SpireChance = d.SpireChance
	}
	if p.SpireBandHeight <= 0 {
		p.SpireBandHeight = d.SpireBandHeight
	}
	if p.RiverStep <= 0 {
		p.RiverStep = d.RiverStep
	}
	if p.RiverBank < 0 {
		p.RiverBank = d.RiverBank
	}
	if p.RiverCurve < 0 {
		p.RiverCurve = d.RiverCurve
	}
	if p.LakeInset < 0 {
		p.LakeInset = d.LakeInset
	}
	if p.RidgeSpacing <= 0 {
		p.RidgeSpacing = d.RidgeSpacing
	}
	p.Shape = p.Shape.Normalize()
	return p
}
