package noise

import (
	"fmt"
	"runtime"
	"sync"

	"voxelforge.ai/internal/sim/logic/mathx"
)

// Config parameterises fractal noise. Zero values are replaced by Defaults
// when passed through Normalize.
type Config struct {
	Seed        int64   `yaml:"seed" json:"seed"`
	Octaves     int     `yaml:"octaves" json:"octaves"`
	Persistence float64 `yaml:"persistence" json:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity" json:"lacunarity"`
	Scale       float64 `yaml:"scale" json:"scale"`
}

func Defaults() Config {
	return Config{
		Octaves:     4,
		Persistence: 0.5,
		Lacunarity:  2.0,
		Scale:       50.0,
	}
}

// Normalize fills zero fields from Defaults, keeping Seed.
func (c Config) Normalize() Config {
	d := Defaults()
	if c.Octaves <= 0 {
		c.Octaves = d.Octaves
	}
	if c.Persistence == 0 {
		c.Persistence = d.Persistence
	}
	if c.Lacunarity == 0 {
		c.Lacunarity = d.Lacunarity
	}
	if c.Scale == 0 {
		c.Scale = d.Scale
	}
	return c
}

func (c Config) Validate() error {
	switch {
	case c.Octaves < 1:
		return fmt.Errorf("octaves must be >= 1, got %d", c.Octaves)
	case c.Persistence <= 0 || c.Persistence > 1:
		return fmt.Errorf("persistence must be in (0,1], got %g", c.Persistence)
	case c.Lacunarity < 1:
		return fmt.Errorf("lacunarity must be >= 1, got %g", c.Lacunarity)
	case c.Scale <= 0:
		return fmt.Errorf("scale must be > 0, got %g", c.Scale)
	}
	return nil
}

// Fractal2D sums cfg.Octaves layers of Noise2D and divides by the total
// amplitude, so the result stays in [-1,1] for any octave count.
func (p *Perlin) Fractal2D(x, z float64, cfg Config) float64 {
	octaves := cfg.Octaves
	if octaves < 1 {
		octaves = 1
	}
	scale := cfg.Scale
	if scale <= 0 {
		scale = 1
	}

	var total, norm float64
	amplitude := 1.0
	frequency := 1.0
	for i := 0; i < octaves; i++ {
		total += p.Noise2D(x*frequency/scale, z*frequency/scale) * amplitude
		norm += amplitude
		amplitude *= cfg.Persistence
		frequency *= cfg.Lacunarity
	}
	if norm == 0 {
		return 0
	}
	return mathx.Clamp(total/norm, -1, 1)
}

// Point is one (x,z) sample location.
type Point struct {
	X, Z float64
}

// FillFractal2D evaluates Fractal2D for every point into out, which must be
// at least len(points) long. Work is split across workers goroutines
// (GOMAXPROCS when workers <= 0); results match scalar evaluation exactly.
func (p *Perlin) FillFractal2D(points []Point, cfg Config, out []float64, workers int) {
	n := len(points)
	if len(out) < n {
		panic(fmt.Sprintf("noise: out has %d slots for %d points", len(out), n))
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i, pt := range points {
			out[i] = p.Fractal2D(pt.X, pt.Z, cfg)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				out[i] = p.Fractal2D(points[i].X, points[i].Z, cfg)
			}
		}(start, end)
	}
	wg.Wait()
}
