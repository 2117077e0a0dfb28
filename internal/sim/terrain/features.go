package terrain

import (
	"errors"
	"math"

	"voxelforge.ai/internal/sim/logic/mathx"
)

// ErrGenerated is returned by shaping calls made after Generate.
var ErrGenerated = errors.New("terrain: already generated")

// MountainInfo is a classification disc. Radius already includes the warp
// allowance. Columns at or above SnowLine inside the disc are snow-capped.
type MountainInfo struct {
	X, Z          int
	Radius        float64
	Height        float64
	BaseElevation int
	SnowLine      int
}

type PlateauInfo struct {
	X, Z          int
	Radius        float64
	FlatRadius    float64
	Height        float64
	BaseElevation int
}

type ValleyKind string

const (
	KindValley ValleyKind = "valley"
	KindGorge  ValleyKind = "gorge"
	KindCrater ValleyKind = "crater"
)

// ValleyInfo records a lowered feature. Gorges carry their end point in
// X2/Z2; radial kinds repeat the centre.
type ValleyInfo struct {
	Kind          ValleyKind
	X, Z          int
	X2, Z2        int
	Radius        float64
	Depth         float64
	BaseElevation int
}

// LakeInfo marks columns within Radius below WaterLevel as water.
type LakeInfo struct {
	X, Z          int
	Radius        float64
	Depth         float64
	WaterLevel    int
	BaseElevation int
}

type RiverSample struct {
	X, Z       float64
	WaterLevel int
}

type RiverInfo struct {
	X1, Z1 int
	X2, Z2 int
	Width  float64
	Depth  float64
	Path   []RiverSample
}

func (t *Terrain) mutable() error {
	if t.generated {
		return ErrGenerated
	}
	t.hm.Generate()
	return nil
}

func (t *Terrain) snowLine(pre int, height float64, override *int) int {
	if override != nil {
		return *override
	}
	return pre + mathx.RoundInt(height*t.params.SnowLineFraction)
}

// AddMountain raises a peak and registers it for classification. A nil
// snowLine places it at SnowLineFraction of the height above the
// pre-feature centre elevation.
func (t *Terrain) AddMountain(cx, cz int, radius, height, falloff float64, snowLine *int) error {
	if err := t.mutable(); err != nil {
		return err
	}
	if radius <= 0 {
		return nil
	}
	pre := t.hm.Get(cx, cz)
	t.hm.AddMountain(cx, cz, radius, height, falloff)
	t.mountains = append(t.mountains, MountainInfo{
		X: cx, Z: cz,
		Radius:        radius * t.params.WarpRadiusFactor,
		Height:        height,
		BaseElevation: pre,
		SnowLine:      t.snowLine(pre, height, snowLine),
	})
	return nil
}

// AddRidge sweeps a ridge between two points and registers it as a chain of
// mountain discs spaced along the line.
func (t *Terrain) AddRidge(x1, z1, x2, z2 int, width, height, falloff float64, snowLine *int) error {
	if err := t.mutable(); err != nil {
		return err
	}
	length := math.Hypot(float64(x2-x1), float64(z2-z1))
	if length == 0 || width <= 0 {
		return nil
	}
	step := math.Max(width*t.params.RidgeSpacing, 1)
	n := int(math.Ceil(length / step))
	pres := make([]int, n+1)
	pts := make([][2]int, n+1)
	for i := 0; i <= n; i++ {
		f := float64(i) / float64(n)
		x := mathx.RoundInt(float64(x1) + f*float64(x2-x1))
		z := mathx.RoundInt(float64(z1) + f*float64(z2-z1))
		pts[i] = [2]int{x, z}
		pres[i] = t.hm.Get(x, z)
	}
	t.hm.AddRidge(x1, z1, x2, z2, width, height, falloff)
	for i, p := range pts {
		t.mountains = append(t.mountains, MountainInfo{
			X: p[0], Z: p[1],
			Radius:        width * t.params.WarpRadiusFactor,
			Height:        height,
			BaseElevation: pres[i],
			SnowLine:      t.snowLine(pres[i], height, snowLine),
		})
	}
	return nil
}

// AddPlateau builds a flat-topped rise. Plateaus keep the surrounding
// surface material and are not classified as mountains.
func (t *Terrain) AddPlateau(cx, cz int, radius, flatRadius, height float64) error {
	if err := t.mutable(); err != nil {
		return err
	}
	if radius <= 0 {
		return nil
	}
	pre := t.hm.Get(cx, cz)
	t.hm.AddPlateau(cx, cz, radius, flatRadius, height)
	t.plateaus = append(t.plateaus, PlateauInfo{
		X: cx, Z: cz,
		Radius:        radius * t.params.WarpRadiusFactor,
		FlatRadius:    flatRadius,
		Height:        height,
		BaseElevation: pre,
	})
	return nil
}

func (t *Terrain) AddValley(cx, cz int, radius, depth, falloff float64) error {
	if err := t.mutable(); err != nil {
		return err
	}
	if radius <= 0 {
		return nil
	}
	pre := t.hm.Get(cx, cz)
	t.hm.AddValley(cx, cz, radius, depth, falloff)
	t.valleys = append(t.valleys, ValleyInfo{
		Kind: KindValley, X: cx, Z: cz, X2: cx, Z2: cz,
		Radius:        radius * t.params.BasinRadiusFactor,
		Depth:         depth,
		BaseElevation: pre,
	})
	return nil
}

func (t *Terrain) AddGorge(x1, z1, x2, z2 int, width, depth, falloff float64) error {
	if err := t.mutable(); err != nil {
		return err
	}
	if (x1 == x2 && z1 == z2) || width <= 0 {
		return nil
	}
	pre := t.hm.Get((x1+x2)/2, (z1+z2)/2)
	t.hm.AddGorge(x1, z1, x2, z2, width, depth, falloff)
	t.valleys = append(t.valleys, ValleyInfo{
		Kind: KindGorge, X: x1, Z: z1, X2: x2, Z2: z2,
		Radius:        width * t.params.BasinRadiusFactor,
		Depth:         depth,
		BaseElevation: pre,
	})
	return nil
}

func (t *Terrain) AddCrater(cx, cz int, radius, depth, rimHeight, rimWidth, falloff float64) error {
	if err := t.mutable(); err != nil {
		return err
	}
	if radius <= 0 {
		return nil
	}
	pre := t.hm.Get(cx, cz)
	t.hm.AddCrater(cx, cz, radius, depth, rimHeight, rimWidth, falloff)
	t.valleys = append(t.valleys, ValleyInfo{
		Kind: KindCrater, X: cx, Z: cz, X2: cx, Z2: cz,
		Radius:        (radius + math.Max(rimWidth, 0)) * t.params.BasinRadiusFactor,
		Depth:         depth,
		BaseElevation: pre,
	})
	return nil
}

// AddLake carves a basin and fills it. A nil waterLevel sits LakeInset
// below the pre-feature centre elevation.
func (t *Terrain) AddLake(cx, cz int, radius, depth float64, waterLevel *int) error {
	if err := t.mutable(); err != nil {
		return err
	}
	if radius <= 0 {
		return nil
	}
	pre := t.hm.Get(cx, cz)
	t.hm.AddValley(cx, cz, radius, depth, 2)
	wl := pre - t.params.LakeInset
	if waterLevel != nil {
		wl = *waterLevel
	}
	t.lakes = append(t.lakes, LakeInfo{
		X: cx, Z: cz,
		Radius:        radius * t.params.BasinRadiusFactor,
		Depth:         depth,
		WaterLevel:    wl,
		BaseElevation: pre,
	})
	return nil
}

// FlattenForStructure levels a building pad and masks its core rectangle
// from overlays and decorations. It returns the level used.
func (t *Terrain) FlattenForStructure(x, z, w, d int, target *int, falloff int) (int, error) {
	if err := t.mutable(); err != nil {
		return 0, err
	}
	level := t.hm.FlattenArea(x, z, w, d, target, falloff)
	for zz := z; zz < z+d; zz++ {
		for xx := x; xx < x+w; xx++ {
			if t.in(xx, zz) {
				t.flattened[t.idx(xx, zz)] = true
			}
		}
	}
	return level, nil
}

// Smooth, Raise and Carve pass through to the raster.

func (t *Terrain) Smooth(radius, iterations int) error {
	if err := t.mutable(); err != nil {
		return err
	}
	t.hm.Smooth(radius, iterations)
	return nil
}

func (t *Terrain) RaiseArea(x, z, w, d, amount int) error {
	if err := t.mutable(); err != nil {
		return err
	}
	t.hm.RaiseArea(x, z, w, d, amount)
	return nil
}

func (t *Terrain) CarveArea(x, z, w, d, depth int) error {
	if err := t.mutable(); err != nil {
		return err
	}
	t.hm.CarveArea(x, z, w, d, depth)
	return nil
}
