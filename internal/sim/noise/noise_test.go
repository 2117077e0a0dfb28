package noise

import "testing"

func TestPerlinDeterministicForSeed(t *testing.T) {
	a := NewPerlin(1337)
	b := NewPerlin(1337)
	for i := 0; i < 200; i++ {
		x := float64(i)*0.37 - 20
		z := float64(i)*0.91 + 3
		if a.Noise2D(x, z) != b.Noise2D(x, z) {
			t.Fatalf("noise differs at (%f,%f)", x, z)
		}
	}
}

func TestPerlinSeedsDiffer(t *testing.T) {
	a := NewPerlin(1)
	b := NewPerlin(2)
	same := 0
	for i := 0; i < 100; i++ {
		x := float64(i)*0.53 + 0.25
		if a.Noise2D(x, x*0.7) == b.Noise2D(x, x*0.7) {
			same++
		}
	}
	if same == 100 {
		t.Fatalf("different seeds produced identical noise")
	}
}

func TestNoise2DRange(t *testing.T) {
	p := NewPerlin(-9)
	for x := -40.0; x < 40; x += 0.173 {
		v := p.Noise2D(x, x*1.31+0.5)
		if v < -1 || v > 1 {
			t.Fatalf("Noise2D(%f)=%f out of range", x, v)
		}
	}
}

func TestFractal2DBoundedForManyOctaves(t *testing.T) {
	p := NewPerlin(7)
	for _, octaves := range []int{1, 2, 8, 16, 32} {
		cfg := Config{Seed: 7, Octaves: octaves, Persistence: 1, Lacunarity: 1.7, Scale: 3}
		for i := 0; i < 500; i++ {
			x := float64(i)*1.7 - 300
			z := float64(i)*-0.6 + 11
			v := p.Fractal2D(x, z, cfg)
			if v < -1 || v > 1 {
				t.Fatalf("octaves=%d: Fractal2D=%f out of range", octaves, v)
			}
		}
	}
}

func TestFillFractal2DMatchesScalar(t *testing.T) {
	p := NewPerlin(99)
	cfg := Defaults()
	pts := make([]Point, 0, 1024)
	for z := 0; z < 32; z++ {
		for x := 0; x < 32; x++ {
			pts = append(pts, Point{X: float64(x), Z: float64(z)})
		}
	}
	for _, workers := range []int{1, 3, 0} {
		out := make([]float64, len(pts))
		p.FillFractal2D(pts, cfg, out, workers)
		for i, pt := range pts {
			if want := p.Fractal2D(pt.X, pt.Z, cfg); out[i] != want {
				t.Fatalf("workers=%d: point %d got %f want %f", workers, i, out[i], want)
			}
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	bad := []Config{
		{Octaves: 0, Persistence: 0.5, Lacunarity: 2, Scale: 1},
		{Octaves: 1, Persistence: 1.5, Lacunarity: 2, Scale: 1},
		{Octaves: 1, Persistence: 0.5, Lacunarity: 0.5, Scale: 1},
		{Octaves: 1, Persistence: 0.5, Lacunarity: 2, Scale: 0},
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
	if n := (Config{Seed: 3}).Normalize(); n.Seed != 3 || n.Octaves != 4 {
		t.Fatalf("unexpected normalize result: %+v", n)
	}
}
