package scene

import (
	"fmt"
	"math"

	"voxelforge.ai/internal/persistence/structure"
	"voxelforge.ai/internal/sim/simerr"
)

const (
	// OriginMin shifts the structure so its minimum corner sits at
	// (padding, padding, padding).
	OriginMin = "min"
	// OriginWorld keeps world coordinates, offset only by padding. Any
	// origin other than OriginMin behaves this way.
	OriginWorld = "world"
)

type ExportOptions struct {
	Origin     string
	Padding    int
	Dimensions *[3]int
}

// Placement is a node paired with its world position.
type Placement[T Node] struct {
	Node  T
	World Vector3
}

// Flatten walks the tree depth first, children in order, and returns every
// block and eraser with its world position.
func (s *Scene) Flatten() ([]Placement[*Block], []Placement[Eraser]) {
	var blocks []Placement[*Block]
	var erasers []Placement[Eraser]
	var walk func(n Node, parent Vector3)
	walk = func(n Node, parent Vector3) {
		o := n.object()
		world := parent.Add(o.Position)
		switch v := n.(type) {
		case *Block:
			blocks = append(blocks, Placement[*Block]{Node: v, World: world})
		case Eraser:
			erasers = append(erasers, Placement[Eraser]{Node: v, World: world})
		}
		for _, c := range o.Children {
			walk(c, world)
		}
	}
	for _, c := range s.Children {
		walk(c, s.Position)
	}
	return blocks, erasers
}

type worldEraser struct {
	e        Eraser
	min, max Vector3
}

// ToStructure exports the scene. Blocks that no eraser's bounding box
// touches are emitted as one cuboid each; touched blocks are voxelized and
// every unit cell whose centre lies in an overlapping eraser is dropped.
func (s *Scene) ToStructure(opts ExportOptions) (structure.Structure, error) {
	blocks, erasers := s.Flatten()
	if len(blocks) == 0 {
		return structure.Structure{}, fmt.Errorf("export: %w", simerr.ErrEmptyScene)
	}

	lo := Vec(math.Inf(1), math.Inf(1), math.Inf(1))
	hi := Vec(math.Inf(-1), math.Inf(-1), math.Inf(-1))
	for _, p := range blocks {
		for a := 0; a < 3; a++ {
			lo[a] = math.Min(lo[a], p.World[a])
			hi[a] = math.Max(hi[a], p.World[a]+float64(p.Node.Size[a]))
		}
	}

	pad := float64(opts.Padding)
	var offset Vector3
	switch opts.Origin {
	case "", OriginMin:
		offset = Vec(pad-lo[0], pad-lo[1], pad-lo[2])
	default:
		offset = Vec(pad, pad, pad)
	}

	out := structure.Structure{}
	dims := [3]int{}
	for a := 0; a < 3; a++ {
		dims[a] = int(math.Ceil(hi[a]-lo[a])) + 2*opts.Padding
	}
	if opts.Dimensions != nil {
		dims = *opts.Dimensions
	}
	out.Width, out.Height, out.Depth = dims[0], dims[1], dims[2]

	wes := make([]worldEraser, 0, len(erasers))
	for _, p := range erasers {
		e := p.Node.at(p.World)
		mn, mx := e.BoundingBox()
		wes = append(wes, worldEraser{e: e, min: mn, max: mx})
	}

	out.Blocks = make([]structure.Block, 0, len(blocks))
	for _, p := range blocks {
		b := p.Node
		bmin := p.World
		bmax := bmin.Add(Vec(float64(b.Size[0]), float64(b.Size[1]), float64(b.Size[2])))

		var hits []Eraser
		for _, we := range wes {
			if overlaps(bmin, bmax, we.min, we.max) {
				hits = append(hits, we.e)
			}
		}

		start := [3]int{}
		for a := 0; a < 3; a++ {
			start[a] = int(math.Round(bmin[a] + offset[a]))
		}
		if len(hits) == 0 {
			out.Blocks = append(out.Blocks, structure.Block{
				Start:      start,
				End:        [3]int{start[0] + b.Size[0], start[1] + b.Size[1], start[2] + b.Size[2]},
				Type:       b.ID,
				Properties: copyProps(b.Properties),
				Fill:       b.Fill,
			})
			continue
		}
		out.Blocks = appendVoxels(out.Blocks, b, bmin, start, hits)
	}
	return out, nil
}

func appendVoxels(dst []structure.Block, b *Block, world Vector3, start [3]int, hits []Eraser) []structure.Block {
	sx, sy, sz := b.Size[0], b.Size[1], b.Size[2]
	for dx := 0; dx < sx; dx++ {
		for dy := 0; dy < sy; dy++ {
			for dz := 0; dz < sz; dz++ {
				if !b.Fill && !onShell(dx, dy, dz, b.Size) {
					continue
				}
				center := world.Add(Vec(float64(dx)+0.5, float64(dy)+0.5, float64(dz)+0.5))
				if carved(center, hits) {
					continue
				}
				c := [3]int{start[0] + dx, start[1] + dy, start[2] + dz}
				dst = append(dst, structure.Block{
					Start:      c,
					End:        [3]int{c[0] + 1, c[1] + 1, c[2] + 1},
					Type:       b.ID,
					Properties: copyProps(b.Properties),
					Fill:       true,
				})
			}
		}
	}
	return dst
}

func carved(p Vector3, hits []Eraser) bool {
	for _, e := range hits {
		if e.Contains(p) {
			return true
		}
	}
	return false
}

func onShell(x, y, z int, size [3]int) bool {
	return x == 0 || y == 0 || z == 0 || x == size[0]-1 || y == size[1]-1 || z == size[2]-1
}

func overlaps(amin, amax, bmin, bmax Vector3) bool {
	for a := 0; a < 3; a++ {
		if amin[a] >= bmax[a] || bmin[a] >= amax[a] {
			return false
		}
	}
	return true
}

func copyProps(p map[string]string) map[string]string {
	if len(p) == 0 {
		return nil
	}
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
