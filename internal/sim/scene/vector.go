package scene

import "github.com/go-gl/mathgl/mgl64"

// Vector3 is a world or local position.
type Vector3 mgl64.Vec3

func Vec(x, y, z float64) Vector3 { return Vector3{x, y, z} }

func (v Vector3) X() float64 { return v[0] }
func (v Vector3) Y() float64 { return v[1] }
func (v Vector3) Z() float64 { return v[2] }

func (v *Vector3) Set(x, y, z float64) {
	v[0], v[1], v[2] = x, y, z
}

// Clone returns an independent copy.
func (v Vector3) Clone() Vector3 { return v }

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3(mgl64.Vec3(v).Add(mgl64.Vec3(o)))
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3(mgl64.Vec3(v).Sub(mgl64.Vec3(o)))
}

func (v Vector3) LenSqr() float64 {
	m := mgl64.Vec3(v)
	return m.Dot(m)
}
