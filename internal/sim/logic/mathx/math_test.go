package mathx

import "testing"

func TestFloorDivAndMod(t *testing.T) {
	cases := []struct {
		a, b, q, m int
	}{
		{a: 7, b: 4, q: 1, m: 3},
		{a: -1, b: 4, q: -1, m: 3},
		{a: -4, b: 4, q: -1, m: 0},
		{a: 0, b: 5, q: 0, m: 0},
	}
	for _, c := range cases {
		if got := FloorDiv(c.a, c.b); got != c.q {
			t.Fatalf("FloorDiv(%d,%d)=%d want %d", c.a, c.b, got, c.q)
		}
		if got := Mod(c.a, c.b); got != c.m {
			t.Fatalf("Mod(%d,%d)=%d want %d", c.a, c.b, got, c.m)
		}
	}
}

func TestUnit2Range(t *testing.T) {
	for x := -50; x < 50; x++ {
		v := Unit2(42, x, x*3)
		if v < 0 || v >= 1 {
			t.Fatalf("Unit2 out of range: %f", v)
		}
	}
	if Unit2(1, 2, 3) != Unit2(1, 2, 3) {
		t.Fatalf("Unit2 not deterministic")
	}
}

func TestSmoothstepEnds(t *testing.T) {
	if Smoothstep(-1) != 0 || Smoothstep(2) != 1 || Smoothstep(0.5) != 0.5 {
		t.Fatalf("unexpected smoothstep values")
	}
}
