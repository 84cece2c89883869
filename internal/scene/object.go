// Package scene holds the objects and lights of the globe viewer and
// computes their per-frame transforms and lighting products.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-globe/internal/meshbuf"
)

// Transform places an object in the world. Rotation is in degrees about
// the X, Y and Z axes.
type Transform struct {
	Scale     mgl32.Vec3
	Rotate    mgl32.Vec3
	Translate mgl32.Vec3
}

// IdentityTransform returns unit scale, no rotation, no translation.
func IdentityTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// World returns T · Rz · Ry · Rx · S.
func (t Transform) World() mgl32.Mat4 {
	tr := mgl32.Translate3D(t.Translate[0], t.Translate[1], t.Translate[2])
	rx := mgl32.HomogRotate3DX(mgl32.DegToRad(t.Rotate[0]))
	ry := mgl32.HomogRotate3DY(mgl32.DegToRad(t.Rotate[1]))
	rz := mgl32.HomogRotate3DZ(mgl32.DegToRad(t.Rotate[2]))
	s := mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])
	return tr.Mul4(rz).Mul4(ry).Mul4(rx).Mul4(s)
}

// Material holds Phong reflectance coefficients.
type Material struct {
	Ambient   mgl32.Vec4
	Diffuse   mgl32.Vec4
	Specular  mgl32.Vec4
	Shininess float32
}

// DefaultMaterial returns the material new objects start with.
func DefaultMaterial() Material {
	return Material{
		Ambient:   mgl32.Vec4{0.25, 0.25, 0.25, 1},
		Diffuse:   mgl32.Vec4{1, 1, 1, 1},
		Specular:  mgl32.Vec4{0.2, 0.2, 0.2, 1},
		Shininess: 15,
	}
}

// Object is one drawable instance. The mesh is shared and must not be
// modified through the object.
type Object struct {
	Name      string
	Mesh      *meshbuf.Mesh
	Transform Transform
	Material  Material
}

// NewObject returns an object with identity transform and default material.
func NewObject(name string, mesh *meshbuf.Mesh) *Object {
	return &Object{
		Name:      name,
		Mesh:      mesh,
		Transform: IdentityTransform(),
		Material:  DefaultMaterial(),
	}
}

// ModelView returns view · world.
func (o *Object) ModelView(view mgl32.Mat4) mgl32.Mat4 {
	return view.Mul4(o.Transform.World())
}

// NormalMatrix returns the inverse transpose of the upper 3x3 of mv.
// A singular matrix (zero scale) yields the zero matrix.
func NormalMatrix(mv mgl32.Mat4) mgl32.Mat3 {
	return mv.Mat3().Inv().Transpose()
}
