// Package noise provides seeded 2D gradient noise and its fractal sum.
package noise

import (
	"math"

	"voxelforge.ai/internal/sim/logic/mathx"
)

// Perlin is 2D gradient noise over a permutation table derived from a seed.
// It holds no mutable state after construction and is safe for concurrent use.
type Perlin struct {
	seed int64
	perm [512]int
}

// NewPerlin builds the permutation table for seed. Any seed is accepted.
func NewPerlin(seed int64) *Perlin {
	p := &Perlin{seed: seed}

	var base [256]int
	for i := range base {
		base[i] = i
	}
	// Fisher-Yates with a hashed index per step.
	for i := 255; i > 0; i-- {
		j := int(mathx.Hash2(seed, i, 0x5eed) % uint64(i+1))
		base[i], base[j] = base[j], base[i]
	}
	for i := 0; i < 256; i++ {
		p.perm[i] = base[i]
		p.perm[i+256] = base[i]
	}
	return p
}

func (p *Perlin) Seed() int64 { return p.seed }

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func grad2(hash int, x, y float64) float64 {
	switch hash & 7 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	case 3:
		return -x - y
	case 4:
		return x
	case 5:
		return -x
	case 6:
		return y
	default:
		return -y
	}
}

// Noise2D returns gradient noise at (x,z) in [-1,1].
func (p *Perlin) Noise2D(x, z float64) float64 {
	fx := math.Floor(x)
	fz := math.Floor(z)
	xi := int(fx) & 255
	zi := int(fz) & 255
	xf := x - fx
	zf := z - fz

	u := fade(xf)
	v := fade(zf)

	aa := p.perm[p.perm[xi]+zi]
	ab := p.perm[p.perm[xi]+zi+1]
	ba := p.perm[p.perm[xi+1]+zi]
	bb := p.perm[p.perm[xi+1]+zi+1]

	x1 := mathx.Lerp(grad2(aa, xf, zf), grad2(ba, xf-1, zf), u)
	x2 := mathx.Lerp(grad2(ab, xf, zf-1), grad2(bb, xf-1, zf-1), u)
	return mathx.Clamp(mathx.Lerp(x1, x2, v), -1, 1)
}
