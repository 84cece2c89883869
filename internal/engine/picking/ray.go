// Package picking casts rays from the screen into the scene and resolves
// hits on the globe to latitude and longitude.
package picking

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point at parameter t.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// ScreenToRay converts pixel coordinates (origin top-left) to a world-space
// ray. invViewProj is the inverse of projection * view.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj mgl32.Mat4) Ray {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH

	near := mgl32.TransformCoordinate(mgl32.Vec3{ndcX, ndcY, -1}, invViewProj)
	far := mgl32.TransformCoordinate(mgl32.Vec3{ndcX, ndcY, 1}, invViewProj)

	dir := far.Sub(near)
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	}
	return Ray{Origin: near, Direction: dir}
}

// Transform maps the ray by m. The direction is not renormalized, so a
// parameter t addresses the same point before and after.
func (r Ray) Transform(m mgl32.Mat4) Ray {
	return Ray{
		Origin:    mgl32.TransformCoordinate(r.Origin, m),
		Direction: mgl32.TransformNormal(r.Direction, m),
	}
}

// IntersectSphere returns the nearest non-negative t where the ray meets
// the sphere. A ray starting inside returns the exit point.
func (r Ray) IntersectSphere(center mgl32.Vec3, radius float32) (t float32, hit bool) {
	oc := r.Origin.Sub(center)
	a := r.Direction.Dot(r.Direction)
	b := 2 * oc.Dot(r.Direction)
	c := oc.Dot(oc) - radius*radius
	if a == 0 {
		return 0, false
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	sq := float32(math.Sqrt(float64(disc)))
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)
	switch {
	case t0 >= 0:
		return t0, true
	case t1 >= 0:
		return t1, true
	}
	return 0, false
}

// Hit is a ray hit on a unit-sphere mesh placed by a world matrix.
type Hit struct {
	Distance float32
	Point    mgl32.Vec3 // world space
	Local    mgl32.Vec3 // on the unit sphere
	Lat      float32    // degrees, north positive
	Lon      float32    // degrees in (-180, 180]
}

// PickSphere intersects r with the unit sphere transformed by world.
func PickSphere(r Ray, world mgl32.Mat4) (Hit, bool) {
	local := r.Transform(world.Inv())
	t, ok := local.IntersectSphere(mgl32.Vec3{}, 1)
	if !ok {
		return Hit{}, false
	}
	p := local.At(t)
	lat, lon := LatLon(p)
	return Hit{
		Distance: t,
		Point:    r.At(t),
		Local:    p,
		Lat:      lat,
		Lon:      lon,
	}, true
}

// LatLon converts a point on the unit sphere (+Y north) to degrees. The
// longitude matches the lat/lon mesh texture: u = 0 at -180°, increasing
// with the angle from +Z towards +X.
func LatLon(p mgl32.Vec3) (lat, lon float32) {
	lat = mgl32.RadToDeg(float32(math.Asin(math.Max(-1, math.Min(1, float64(p[1]))))))
	theta := math.Atan2(float64(p[0]), float64(p[2]))
	if theta < 0 {
		theta += 2 * math.Pi
	}
	lon = float32(theta/(2*math.Pi))*360 - 180
	if lon <= -180 {
		lon += 360
	}
	return lat, lon
}
