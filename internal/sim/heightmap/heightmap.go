// Package heightmap implements the integer elevation raster and its
// terrain-shaping operators.
package heightmap

import (
	"fmt"

	"github.com/ojrac/opensimplex-go"

	"voxelforge.ai/internal/sim/logic/mathx"
	"voxelforge.ai/internal/sim/noise"
	"voxelforge.ai/internal/sim/simerr"
)

type Config struct {
	Width       int          `yaml:"width" json:"width"`
	Depth       int          `yaml:"depth" json:"depth"`
	BaseHeight  int          `yaml:"base_height" json:"base_height"`
	HeightRange int          `yaml:"height_range" json:"height_range"`
	Noise       noise.Config `yaml:"noise" json:"noise"`
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Depth <= 0 {
		return fmt.Errorf("%w: heightmap size %dx%d", simerr.ErrInvalidConfiguration, c.Width, c.Depth)
	}
	if c.HeightRange < 0 {
		return fmt.Errorf("%w: height_range %d", simerr.ErrInvalidConfiguration, c.HeightRange)
	}
	if err := c.Noise.Validate(); err != nil {
		return fmt.Errorf("%w: noise: %v", simerr.ErrInvalidConfiguration, err)
	}
	return nil
}

// State tracks lazy generation.
type State int

const (
	Pending State = iota
	Generated
)

// Seed offsets of the secondary fields used by organic features.
const (
	warpSeedOffset   = 1013
	ridgeSeedOffset  = 2027
	detailSeedOffset = 3049
)

// HeightMap is a row-major width*depth grid of elevations. It is not safe
// for concurrent mutation.
type HeightMap struct {
	cfg   Config
	shape Shape
	state State
	cells []int
	// workers bounds the bulk noise fill; 0 means GOMAXPROCS.
	workers int

	base   *noise.Perlin
	ridge  *noise.Perlin
	detail *noise.Perlin
	warp   opensimplex.Noise
}

// New validates cfg (zero noise fields take defaults) and allocates the
// raster. Nothing is generated until Generate or the first mutator call.
func New(cfg Config) (*HeightMap, error) {
	cfg.Noise = cfg.Noise.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Noise.Seed
	return &HeightMap{
		cfg:    cfg,
		shape:  DefaultShape(),
		cells:  make([]int, cfg.Width*cfg.Depth),
		base:   noise.NewPerlin(seed),
		ridge:  noise.NewPerlin(seed + ridgeSeedOffset),
		detail: noise.NewPerlin(seed + detailSeedOffset),
		warp:   opensimplex.New(seed + warpSeedOffset),
	}, nil
}

func (h *HeightMap) Config() Config { return h.cfg }
func (h *HeightMap) Width() int     { return h.cfg.Width }
func (h *HeightMap) Depth() int     { return h.cfg.Depth }
func (h *HeightMap) State() State   { return h.state }
func (h *HeightMap) Shape() Shape   { return h.shape }

func (h *HeightMap) SetWorkers(n int) { h.workers = n }

// SetShape replaces the organic-feature knobs; see Shape.Normalize.
func (h *HeightMap) SetShape(s Shape) { h.shape = s.Normalize() }

func (h *HeightMap) InBounds(x, z int) bool {
	return x >= 0 && z >= 0 && x < h.cfg.Width && z < h.cfg.Depth
}

func (h *HeightMap) index(x, z int) int { return z*h.cfg.Width + x }

// Generate fills the raster from fractal noise once; later calls are no-ops.
func (h *HeightMap) Generate() {
	if h.state == Generated {
		return
	}
	w, d := h.cfg.Width, h.cfg.Depth
	pts := make([]noise.Point, 0, w*d)
	for z := 0; z < d; z++ {
		for x := 0; x < w; x++ {
			pts = append(pts, noise.Point{X: float64(x), Z: float64(z)})
		}
	}
	vals := make([]float64, len(pts))
	h.base.FillFractal2D(pts, h.cfg.Noise, vals, h.workers)
	for i, v := range vals {
		h.cells[i] = h.cfg.BaseHeight + mathx.RoundInt(v*float64(h.cfg.HeightRange))
	}
	h.state = Generated
}

func (h *HeightMap) ensure() {
	if h.state != Generated {
		h.Generate()
	}
}

// Get returns the elevation at (x,z), or 0 outside the raster.
func (h *HeightMap) Get(x, z int) int {
	if !h.InBounds(x, z) {
		return 0
	}
	return h.cells[h.index(x, z)]
}

// Set writes an elevation; out-of-range writes are ignored.
func (h *HeightMap) Set(x, z, v int) {
	h.ensure()
	if !h.InBounds(x, z) {
		return
	}
	h.cells[h.index(x, z)] = v
}

func (h *HeightMap) add(x, z, dv int) {
	if dv == 0 || !h.InBounds(x, z) {
		return
	}
	h.cells[h.index(x, z)] += dv
}

// LowerTo clamps the cell at (x,z) to at most v.
func (h *HeightMap) LowerTo(x, z, v int) {
	h.ensure()
	if !h.InBounds(x, z) {
		return
	}
	i := h.index(x, z)
	if h.cells[i] > v {
		h.cells[i] = v
	}
}

// GetArea copies a d-row, w-column window starting at (x,z). Cells outside
// the raster read as 0.
func (h *HeightMap) GetArea(x, z, w, d int) [][]int {
	if w <= 0 || d <= 0 {
		return nil
	}
	out := make([][]int, d)
	for dz := 0; dz < d; dz++ {
		row := make([]int, w)
		for dx := 0; dx < w; dx++ {
			row[dx] = h.Get(x+dx, z+dz)
		}
		out[dz] = row
	}
	return out
}

// AverageHeight averages the in-range cells of the rectangle, or returns
// the base height when none are in range.
func (h *HeightMap) AverageHeight(x, z, w, d int) float64 {
	sum, n := 0, 0
	for zz := z; zz < z+d; zz++ {
		for xx := x; xx < x+w; xx++ {
			if !h.InBounds(xx, zz) {
				continue
			}
			sum += h.cells[h.index(xx, zz)]
			n++
		}
	}
	if n == 0 {
		return float64(h.cfg.BaseHeight)
	}
	return float64(sum) / float64(n)
}

// Min and Max scan the whole raster.
func (h *HeightMap) Min() int {
	m := h.cells[0]
	for _, v := range h.cells[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func (h *HeightMap) Max() int {
	m := h.cells[0]
	for _, v := range h.cells[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Cells returns a copy of the row-major grid.
func (h *HeightMap) Cells() []int {
	out := make([]int, len(h.cells))
	copy(out, h.cells)
	return out
}
