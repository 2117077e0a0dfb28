package scene

import (
	"fmt"

	"voxelforge.ai/internal/sim/simerr"
)

// Catalog validates block ids and properties.
type Catalog interface {
	AssertValid(blockID string) (string, error)
	AssertProperties(blockID string, props map[string]string) (map[string]string, error)
}

// Block is a solid cuboid whose position is its minimum corner. Hollow
// blocks keep only their outer shell.
type Block struct {
	Object3D
	ID         string
	Size       [3]int
	Properties map[string]string
	Fill       bool
}

type BlockSpec struct {
	ID         string
	Position   Vector3
	Size       [3]int
	Properties map[string]string
	Hollow     bool
}

// NewBlock validates spec through cat. A size component below 1 is an
// invalid configuration; catalog errors are returned unchanged.
func NewBlock(cat Catalog, spec BlockSpec) (*Block, error) {
	for i, s := range spec.Size {
		if s < 1 {
			return nil, fmt.Errorf("%w: block size[%d]=%d", simerr.ErrInvalidConfiguration, i, s)
		}
	}
	id, err := cat.AssertValid(spec.ID)
	if err != nil {
		return nil, err
	}
	props, err := cat.AssertProperties(id, spec.Properties)
	if err != nil {
		return nil, err
	}
	return &Block{
		Object3D:   Object3D{Position: spec.Position},
		ID:         id,
		Size:       spec.Size,
		Properties: props,
		Fill:       !spec.Hollow,
	}, nil
}

func (b *Block) Volume() int { return b.Size[0] * b.Size[1] * b.Size[2] }
