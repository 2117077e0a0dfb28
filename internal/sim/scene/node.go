// Package scene is the tree of positioned groups, blocks and erasers, and
// its export to a bounded structure.
package scene

// Node is one of *Group, *Block, *SphereEraser, *BoxEraser,
// *CylinderEraser or *Scene.
type Node interface {
	object() *Object3D
}

// Object3D is the position and children shared by every node. A node's
// world position is its position plus those of all its ancestors.
type Object3D struct {
	Position Vector3
	Children []Node
}

func (o *Object3D) object() *Object3D { return o }

// Add appends children in order.
func (o *Object3D) Add(children ...Node) {
	for _, c := range children {
		if c != nil {
			o.Children = append(o.Children, c)
		}
	}
}

// Group is a plain container node.
type Group struct {
	Object3D
}

func NewGroup(children ...Node) *Group {
	g := &Group{}
	g.Add(children...)
	return g
}

// Scene is the tree root.
type Scene struct {
	Object3D
}

func New() *Scene { return &Scene{} }
