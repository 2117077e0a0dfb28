package heightmap

import (
	"math"

	"voxelforge.ai/internal/sim/logic/mathx"
)

// warped displaces (x,z) through the warp field by up to amount cells.
func (h *HeightMap) warped(x, z int, amount float64) (float64, float64) {
	fx, fz := float64(x), float64(z)
	if amount <= 0 {
		return fx, fz
	}
	f := h.shape.WarpFrequency
	ox := h.warp.Eval2(fx*f, fz*f)
	oz := h.warp.Eval2(fx*f+31.7, fz*f-47.3)
	return fx + ox*amount, fz + oz*amount
}

// WarpExtent reports how far, as a multiple of the nominal radius, a
// feature's footprint can reach once warped.
func (h *HeightMap) WarpExtent() float64 {
	return 1 + h.shape.WarpStrength
}

type bbox struct{ x0, z0, x1, z1 int }

func (h *HeightMap) clip(cx, cz float64, reach float64) bbox {
	r := int(math.Ceil(reach)) + 1
	return bbox{
		x0: mathx.MaxInt(int(math.Floor(cx))-r, 0),
		z0: mathx.MaxInt(int(math.Floor(cz))-r, 0),
		x1: mathx.MinInt(int(math.Ceil(cx))+r, h.cfg.Width-1),
		z1: mathx.MinInt(int(math.Ceil(cz))+r, h.cfg.Depth-1),
	}
}

// radialProfile is the mountain/valley falloff law: 1 - (dist/radius)^falloff.
func radialProfile(dist, radius, falloff float64) float64 {
	if radius <= 0 || dist >= radius {
		return 0
	}
	return 1 - math.Pow(dist/radius, falloff)
}

func normFalloff(f float64) float64 {
	if f <= 0 {
		return 2
	}
	return f
}

// radial adds sign*height*profile over a domain-warped disc. Ridged shapes get
// a ridge-noise multiplier concentrated near the peak.
func (h *HeightMap) radial(cx, cz int, radius, height, falloff float64, sign int, ridged bool) {
	h.ensure()
	if radius <= 0 || height == 0 {
		return
	}
	falloff = normFalloff(falloff)
	s := h.shape
	warpAmt := radius * s.WarpStrength
	b := h.clip(float64(cx), float64(cz), radius+warpAmt)

	for z := b.z0; z <= b.z1; z++ {
		for x := b.x0; x <= b.x1; x++ {
			wx, wz := h.warped(x, z, warpAmt)
			dist := math.Hypot(wx-float64(cx), wz-float64(cz))
			p := radialProfile(dist, radius, falloff)
			if p <= 0 {
				continue
			}
			mult := 1.0
			if ridged {
				rn := 1 - math.Abs(h.ridge.Noise2D(float64(x)*s.RidgeFrequency, float64(z)*s.RidgeFrequency))
				mult += s.RidgeStrength * (2*rn - 1) * p * p
			}
			jitter := h.detail.Noise2D(float64(x)*s.DetailFrequency, float64(z)*s.DetailFrequency) * s.DetailStrength * height
			delta := height*p*mult + jitter*p
			h.add(x, z, sign*mathx.RoundInt(delta))
		}
	}
}

// AddMountain raises a domain-warped peak of the given height.
func (h *HeightMap) AddMountain(cx, cz int, radius, height, falloff float64) {
	h.radial(cx, cz, radius, height, falloff, 1, true)
}

// AddValley lowers a domain-warped bowl; the same shape as a mountain without
// the ridge term, subtracted.
func (h *HeightMap) AddValley(cx, cz int, radius, depth, falloff float64) {
	h.radial(cx, cz, radius, depth, falloff, -1, false)
}

// AddPlateau sets a flat disc of flatRadius to the centre's elevation plus
// height, blending smoothly back to the existing terrain out to radius.
func (h *HeightMap) AddPlateau(cx, cz int, radius, flatRadius, height float64) {
	h.ensure()
	if radius <= 0 {
		return
	}
	flatRadius = mathx.Clamp(flatRadius, 0, radius)
	top := float64(h.Get(cx, cz)) + height
	warpAmt := radius * h.shape.WarpStrength * 0.5
	b := h.clip(float64(cx), float64(cz), radius+warpAmt)

	for z := b.z0; z <= b.z1; z++ {
		for x := b.x0; x <= b.x1; x++ {
			wx, wz := h.warped(x, z, warpAmt)
			dist := math.Hypot(wx-float64(cx), wz-float64(cz))
			i := h.index(x, z)
			switch {
			case dist <= flatRadius:
				h.cells[i] = mathx.RoundInt(top)
			case dist < radius:
				band := radius - flatRadius
				t := mathx.Smoothstep(1 - (dist-flatRadius)/band)
				cur := float64(h.cells[i])
				h.cells[i] = mathx.RoundInt(cur + (top-cur)*t)
			}
		}
	}
}

// AddCrater carves a bowl to radius using the radial falloff law and, when
// rimHeight > 0, raises a rim annulus of rimWidth peaking at its middle.
// The bowl radius is jittered by angular noise.
func (h *HeightMap) AddCrater(cx, cz int, radius, depth, rimHeight, rimWidth, falloff float64) {
	h.ensure()
	if radius <= 0 {
		return
	}
	falloff = normFalloff(falloff)
	if rimWidth < 0 {
		rimWidth = 0
	}
	jit := h.shape.CraterJitter
	b := h.clip(float64(cx), float64(cz), radius*(1+jit)+rimWidth)

	for z := b.z0; z <= b.z1; z++ {
		for x := b.x0; x <= b.x1; x++ {
			dx := float64(x - cx)
			dz := float64(z - cz)
			dist := math.Hypot(dx, dz)
			a := math.Atan2(dz, dx)
			r := radius * (1 + jit*h.detail.Noise2D(math.Cos(a)*2.3+float64(cx)*0.013, math.Sin(a)*2.3+float64(cz)*0.013))
			if dist < r {
				h.add(x, z, -mathx.RoundInt(depth*radialProfile(dist, r, falloff)))
				continue
			}
			if rimHeight > 0 && rimWidth > 0 && dist < r+rimWidth {
				u := (dist - r) / rimWidth
				h.add(x, z, mathx.RoundInt(rimHeight*math.Sin(math.Pi*u)))
			}
		}
	}
}
