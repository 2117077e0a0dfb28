package scene

import (
	"fmt"
	"strings"

	"voxelforge.ai/internal/sim/simerr"
)

// Eraser is a carving volume. Contains and BoundingBox are evaluated
// relative to the eraser's current Position.
type Eraser interface {
	Node
	Contains(p Vector3) bool
	BoundingBox() (min, max Vector3)
	at(pos Vector3) Eraser
}

// SphereEraser is centred on its position.
type SphereEraser struct {
	Object3D
	Radius float64
}

func NewSphereEraser(radius float64) (*SphereEraser, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: sphere radius %g", simerr.ErrInvalidConfiguration, radius)
	}
	return &SphereEraser{Radius: radius}, nil
}

func (e *SphereEraser) Contains(p Vector3) bool {
	return p.Sub(e.Position).LenSqr() <= e.Radius*e.Radius
}

func (e *SphereEraser) BoundingBox() (Vector3, Vector3) {
	r := Vec(e.Radius, e.Radius, e.Radius)
	return e.Position.Sub(r), e.Position.Add(r)
}

func (e *SphereEraser) at(pos Vector3) Eraser {
	c := *e
	c.Position = pos
	return &c
}

// BoxEraser spans [position, position+size).
type BoxEraser struct {
	Object3D
	Size Vector3
}

func NewBoxEraser(size Vector3) (*BoxEraser, error) {
	for i, s := range size {
		if s <= 0 {
			return nil, fmt.Errorf("%w: box size[%d]=%g", simerr.ErrInvalidConfiguration, i, s)
		}
	}
	return &BoxEraser{Size: size}, nil
}

func (e *BoxEraser) Contains(p Vector3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < e.Position[i] || p[i] >= e.Position[i]+e.Size[i] {
			return false
		}
	}
	return true
}

func (e *BoxEraser) BoundingBox() (Vector3, Vector3) {
	return e.Position, e.Position.Add(e.Size)
}

func (e *BoxEraser) at(pos Vector3) Eraser {
	c := *e
	c.Position = pos
	return &c
}

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("%w: cylinder axis %q", simerr.ErrInvalidConfiguration, s)
}

// CylinderEraser has its base centre at its position and extends Height
// along Axis.
type CylinderEraser struct {
	Object3D
	Radius float64
	Height float64
	axis   Axis
}

// NewCylinderEraser fails on an axis other than x, y or z.
func NewCylinderEraser(radius, height float64, axis string) (*CylinderEraser, error) {
	a, err := ParseAxis(axis)
	if err != nil {
		return nil, err
	}
	if radius <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: cylinder radius %g height %g", simerr.ErrInvalidConfiguration, radius, height)
	}
	return &CylinderEraser{Radius: radius, Height: height, axis: a}, nil
}

func (e *CylinderEraser) Axis() Axis { return e.axis }

// split returns the along-axis offset and the two radial offsets.
func (e *CylinderEraser) split(d Vector3) (along, u, v float64) {
	switch e.axis {
	case AxisX:
		return d[0], d[1], d[2]
	case AxisY:
		return d[1], d[0], d[2]
	default:
		return d[2], d[0], d[1]
	}
}

func (e *CylinderEraser) Contains(p Vector3) bool {
	along, u, v := e.split(p.Sub(e.Position))
	if along < 0 || along > e.Height {
		return false
	}
	return u*u+v*v <= e.Radius*e.Radius
}

func (e *CylinderEraser) BoundingBox() (Vector3, Vector3) {
	r := e.Radius
	lo := Vec(-r, -r, -r)
	hi := Vec(r, r, r)
	lo[e.axis] = 0
	hi[e.axis] = e.Height
	return e.Position.Add(lo), e.Position.Add(hi)
}

func (e *CylinderEraser) at(pos Vector3) Eraser {
	c := *e
	c.Position = pos
	return &c
}
