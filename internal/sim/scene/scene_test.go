package scene

import (
	"errors"
	"testing"

	"voxelforge.ai/internal/persistence/structure"
	"voxelforge.ai/internal/sim/catalogs"
	"voxelforge.ai/internal/sim/simerr"
)

func mustBlock(t *testing.T, spec BlockSpec) *Block {
	t.Helper()
	b, err := NewBlock(catalogs.Default(), spec)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}
	return b
}

func TestBoxEraserCarvesOneVoxel(t *testing.T) {
	s := New()
	s.Add(mustBlock(t, BlockSpec{ID: "stone", Size: [3]int{2, 2, 2}}))
	e, err := NewBoxEraser(Vec(1, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	s.Add(e)

	out, err := s.ToStructure(ExportOptions{Origin: OriginMin})
	if err != nil {
		t.Fatalf("ToStructure: %v", err)
	}
	if len(out.Blocks) != 7 {
		t.Fatalf("got %d entries want 7", len(out.Blocks))
	}
	for _, b := range out.Blocks {
		if b.Start == [3]int{0, 0, 0} {
			t.Fatalf("carved voxel present")
		}
		if b.Size() != [3]int{1, 1, 1} {
			t.Fatalf("voxel entry not unit size: %v", b.Size())
		}
		if b.Type != "minecraft:stone" {
			t.Fatalf("unexpected type %s", b.Type)
		}
	}
	if out.Width != 2 || out.Height != 2 || out.Depth != 2 {
		t.Fatalf("unexpected dims %d %d %d", out.Width, out.Height, out.Depth)
	}
}

func TestCylinderInvalidAxis(t *testing.T) {
	_, err := NewCylinderEraser(1, 1, "q")
	if !errors.Is(err, simerr.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestCylinderAxisAccessorAndString(t *testing.T) {
	if got := Axis(7).String(); got != "Axis(7)" {
		t.Fatalf("Axis(7).String()=%q", got)
	}
	c, err := NewCylinderEraser(1, 2, "z")
	if err != nil {
		t.Fatal(err)
	}
	if c.Axis() != AxisZ || c.Axis().String() != "z" {
		t.Fatalf("axis=%v want z", c.Axis())
	}
	mn, mx := c.BoundingBox()
	if mn.Z() != 0 || mx.Z() != 2 {
		t.Fatalf("z extent [%v,%v] want [0,2]", mn.Z(), mx.Z())
	}

	// A zero-value eraser is a valid X cylinder.
	var zero CylinderEraser
	if zero.Axis() != AxisX {
		t.Fatalf("zero axis=%v", zero.Axis())
	}
}

func TestEmptySceneFails(t *testing.T) {
	s := New()
	s.Add(NewGroup())
	_, err := s.ToStructure(ExportOptions{})
	if !errors.Is(err, simerr.ErrEmptyScene) {
		t.Fatalf("expected ErrEmptyScene, got %v", err)
	}
}

func TestNewBlockRejectsBadSizeAndUnknownID(t *testing.T) {
	cat := catalogs.Default()
	if _, err := NewBlock(cat, BlockSpec{ID: "stone", Size: [3]int{1, 0, 1}}); !errors.Is(err, simerr.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid size, got %v", err)
	}
	_, err := NewBlock(cat, BlockSpec{ID: "nope", Size: [3]int{1, 1, 1}})
	var ve *catalogs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected catalog ValidationError, got %v", err)
	}
}

func TestFastPathAndWorldPositions(t *testing.T) {
	s := New()
	g := NewGroup()
	g.Position.Set(10, 0, 5)
	inner := NewGroup()
	inner.Position.Set(1, 2, 3)
	inner.Add(mustBlock(t, BlockSpec{ID: "dirt", Size: [3]int{3, 1, 2}}))
	g.Add(inner)
	s.Add(g, mustBlock(t, BlockSpec{ID: "stone", Position: Vec(0, 0, 0), Size: [3]int{1, 1, 1}}))

	blocks, _ := s.Flatten()
	if blocks[0].World != Vec(11, 2, 8) {
		t.Fatalf("world position=%v want (11,2,8)", blocks[0].World)
	}

	out, err := s.ToStructure(ExportOptions{Origin: OriginMin, Padding: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Blocks) != 2 {
		t.Fatalf("expected two cuboid entries, got %d", len(out.Blocks))
	}
	if out.Blocks[0].Start != [3]int{12, 3, 9} || out.Blocks[0].End != [3]int{15, 4, 11} {
		t.Fatalf("unexpected first entry %+v", out.Blocks[0])
	}
	if out.Blocks[1].Start != [3]int{1, 1, 1} {
		t.Fatalf("min corner must sit at padding: %+v", out.Blocks[1])
	}
	if out.Width != 16 || out.Height != 5 || out.Depth != 12 {
		t.Fatalf("unexpected dims %d %d %d", out.Width, out.Height, out.Depth)
	}
}

func TestOriginWorldAndDimensionsOverride(t *testing.T) {
	s := New()
	s.Add(mustBlock(t, BlockSpec{ID: "stone", Position: Vec(4, 4, 4), Size: [3]int{2, 2, 2}}))
	dims := [3]int{32, 16, 32}
	out, err := s.ToStructure(ExportOptions{Origin: OriginWorld, Padding: 2, Dimensions: &dims})
	if err != nil {
		t.Fatal(err)
	}
	if out.Blocks[0].Start != [3]int{6, 6, 6} {
		t.Fatalf("world origin start=%v", out.Blocks[0].Start)
	}
	if out.Width != 32 || out.Height != 16 || out.Depth != 32 {
		t.Fatalf("dimensions override ignored")
	}
}

func TestUnknownOriginOffsetsByPaddingOnly(t *testing.T) {
	s := New()
	s.Add(mustBlock(t, BlockSpec{ID: "stone", Position: Vec(3, 0, -2), Size: [3]int{2, 2, 2}}))
	out, err := s.ToStructure(ExportOptions{Origin: "center", Padding: 1})
	if err != nil {
		t.Fatalf("origin center: %v", err)
	}
	if len(out.Blocks) != 1 {
		t.Fatalf("got %d entries want 1", len(out.Blocks))
	}
	if out.Blocks[0].Start != [3]int{4, 1, -1} || out.Blocks[0].End != [3]int{6, 3, 1} {
		t.Fatalf("unexpected entry %+v", out.Blocks[0])
	}
	world, err := s.ToStructure(ExportOptions{Origin: OriginWorld, Padding: 1})
	if err != nil {
		t.Fatal(err)
	}
	if world.Blocks[0].Start != out.Blocks[0].Start || world.Blocks[0].End != out.Blocks[0].End {
		t.Fatalf("center=%+v world=%+v", out.Blocks[0], world.Blocks[0])
	}
}

func TestHollowBlockVoxelizesShellOnly(t *testing.T) {
	s := New()
	s.Add(mustBlock(t, BlockSpec{ID: "stone", Size: [3]int{3, 3, 3}, Hollow: true}))
	far, _ := NewSphereEraser(0.2)
	far.Position.Set(0.1, 0.1, 0.1)
	s.Add(far)
	out, err := s.ToStructure(ExportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	// 27 cells minus the interior one; the sphere misses every centre.
	if len(out.Blocks) != 26 {
		t.Fatalf("got %d voxels want 26", len(out.Blocks))
	}
	for _, b := range out.Blocks {
		if b.Start == [3]int{1, 1, 1} {
			t.Fatalf("interior cell emitted for hollow block")
		}
	}

	plain := New()
	plain.Add(mustBlock(t, BlockSpec{ID: "stone", Size: [3]int{3, 3, 3}, Hollow: true}))
	out, _ = plain.ToStructure(ExportOptions{})
	if len(out.Blocks) != 1 || out.Blocks[0].Fill {
		t.Fatalf("untouched hollow block must export as one fill=false entry: %+v", out.Blocks)
	}
}

func TestEraserExclusivity(t *testing.T) {
	s := New()
	s.Add(mustBlock(t, BlockSpec{ID: "stone", Size: [3]int{12, 8, 12}}))
	sphere, _ := NewSphereEraser(3.5)
	sphere.Position.Set(6, 4, 6)
	cyl, _ := NewCylinderEraser(1.5, 10, "x")
	cyl.Position.Set(-1, 2, 2)
	g := NewGroup(cyl)
	g.Position.Set(0, 1, 0)
	s.Add(sphere, g)

	out, err := s.ToStructure(ExportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	_, erasers := s.Flatten()
	worldErasers := make([]Eraser, 0, len(erasers))
	for _, p := range erasers {
		worldErasers = append(worldErasers, p.Node.at(p.World))
	}
	if len(out.Blocks) >= 12*8*12 {
		t.Fatalf("nothing carved: %d voxels", len(out.Blocks))
	}
	for _, b := range out.Blocks {
		c := Vec(float64(b.Start[0])+0.5, float64(b.Start[1])+0.5, float64(b.Start[2])+0.5)
		for _, e := range worldErasers {
			if e.Contains(c) {
				t.Fatalf("voxel %v lies inside an eraser", b.Start)
			}
		}
	}
	if err := structure.Validate(out); err != nil {
		t.Fatalf("export fails schema: %v", err)
	}
}

func TestCylinderContainsPerAxis(t *testing.T) {
	for _, tc := range []struct {
		axis string
		in   Vector3
		out  Vector3
	}{
		{axis: "y", in: Vec(0.5, 2, 0.5), out: Vec(0.5, -0.5, 0.5)},
		{axis: "x", in: Vec(2, 0.5, -0.5), out: Vec(2, 2, 0)},
		{axis: "z", in: Vec(0, 0, 2.9), out: Vec(0, 0, 3.1)},
	} {
		c, err := NewCylinderEraser(1, 3, tc.axis)
		if err != nil {
			t.Fatal(err)
		}
		if !c.Contains(tc.in) || c.Contains(tc.out) {
			t.Fatalf("axis %s: containment wrong", tc.axis)
		}
		mn, mx := c.BoundingBox()
		if mx.Sub(mn).LenSqr() == 0 {
			t.Fatalf("axis %s: empty bounding box", tc.axis)
		}
	}
}

func TestVectorCloneIsIndependent(t *testing.T) {
	v := Vec(1, 2, 3)
	c := v.Clone()
	c.Set(4, 5, 6)
	if v != Vec(1, 2, 3) || c.X() != 4 {
		t.Fatalf("clone aliased original")
	}
}
