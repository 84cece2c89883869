// Package camera provides the globe viewer's cameras.
package camera

import "github.com/go-gl/mathgl/mgl32"

// Camera produces a view matrix.
type Camera interface {
	View() mgl32.Mat4
	Eye() mgl32.Vec3
	Reset()
}

// Projection is a perspective frustum.
type Projection struct {
	FovY   float32 // degrees
	Aspect float32
	Near   float32
	Far    float32
}

// DefaultProjection returns a narrow 22° lens with a far plane past the
// maximum zoom distance.
func DefaultProjection() Projection {
	return Projection{FovY: 22, Aspect: 1.3333, Near: 1, Far: 1e6}
}

// Matrix returns the projection matrix.
func (p Projection) Matrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(p.FovY), p.Aspect, p.Near, p.Far)
}

// OrbitConfig holds the limits of an OrbitCamera.
type OrbitConfig struct {
	Radius   float32 // radius of the body being orbited
	ZoomMin  float32
	ZoomMax  float32
	ZoomStep float32

	Eye mgl32.Vec3 // reset position
	Up  mgl32.Vec3 // reset up vector
}

// DefaultOrbitConfig returns limits sized for an Earth-radius globe.
func DefaultOrbitConfig() OrbitConfig {
	return OrbitConfig{
		Radius:   6378,
		ZoomMin:  12000,
		ZoomMax:  70000,
		ZoomStep: 1000,
		Eye:      mgl32.Vec3{-20000, 2000, 30000},
		Up:       mgl32.Vec3{0, 1, 0},
	}
}

// OrbitCamera circles the origin. Dragging rotates the eye about axes
// derived from the current view, so there is no gimbal lock at the poles;
// zooming moves the eye along its direction within [ZoomMin, ZoomMax].
type OrbitCamera struct {
	cfg OrbitConfig
	eye mgl32.Vec3
	at  mgl32.Vec3
	up  mgl32.Vec3
}

// NewOrbitCamera creates an orbit camera at its reset position.
func NewOrbitCamera(cfg OrbitConfig) *OrbitCamera {
	c := &OrbitCamera{cfg: cfg}
	c.Reset()
	return c
}

// Reset restores the configured eye and up vectors, looking at the origin.
func (c *OrbitCamera) Reset() {
	c.eye = c.cfg.Eye
	c.at = mgl32.Vec3{}
	c.up = c.cfg.Up
}

// Eye returns the camera position.
func (c *OrbitCamera) Eye() mgl32.Vec3 { return c.eye }

// Up returns the current up vector.
func (c *OrbitCamera) Up() mgl32.Vec3 { return c.up }

// View returns the look-at matrix.
func (c *OrbitCamera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.eye, c.at, c.up)
}

// Distance returns the distance from the eye to the origin.
func (c *OrbitCamera) Distance() float32 { return c.eye.Len() }

// AngleStep returns the rotation applied per drag event, in degrees. It
// shrinks as the eye approaches the surface.
func (c *OrbitCamera) AngleStep() float32 {
	return (c.eye.Len() - c.cfg.Radius) / (c.cfg.ZoomMax / 2)
}

// HandleDrag rotates the eye for a mouse movement of (deltaX, deltaY)
// pixels. Only the sign of each delta is used.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	dx := -sign(deltaX)
	dy := sign(deltaY)
	if dx == 0 && dy == 0 {
		return
	}
	step := c.AngleStep()

	// Up projected onto the plane perpendicular to the view direction.
	n := c.eye.Normalize()
	newUp := c.up.Sub(n.Mul(c.up.Dot(n)))
	if newUp.Len() < 1e-6 {
		return
	}
	newUp = newUp.Normalize()

	if dx != 0 {
		c.eye = rotate(c.eye, dx*step, newUp)
	}
	if dy != 0 {
		// Axis uses the old up and the eye after the horizontal turn.
		axis := c.eye.Cross(c.up)
		if axis.Len() > 1e-6 {
			c.eye = rotate(c.eye, dy*step, axis.Normalize())
		}
		c.up = newUp
	}
}

// HandleZoom moves the eye one ZoomStep in the direction of delta
// (positive moves away), clamped to the zoom range.
func (c *OrbitCamera) HandleZoom(delta float32) {
	d := sign(delta)
	if d == 0 {
		return
	}
	r := c.eye.Len() + d*c.cfg.ZoomStep
	r = mgl32.Clamp(r, c.cfg.ZoomMin, c.cfg.ZoomMax)
	c.eye = c.eye.Normalize().Mul(r)
}

// FreeCamera places eye and target directly, as driven by position sliders.
type FreeCamera struct {
	eye, at  mgl32.Vec3
	resetEye mgl32.Vec3
	resetAt  mgl32.Vec3
}

// NewFreeCamera creates a free camera.
func NewFreeCamera(eye, at mgl32.Vec3) *FreeCamera {
	return &FreeCamera{eye: eye, at: at, resetEye: eye, resetAt: at}
}

// Reset restores the initial eye and target.
func (c *FreeCamera) Reset() {
	c.eye, c.at = c.resetEye, c.resetAt
}

// Eye returns the camera position.
func (c *FreeCamera) Eye() mgl32.Vec3 { return c.eye }

// At returns the look-at target.
func (c *FreeCamera) At() mgl32.Vec3 { return c.at }

// SetEye sets one component (0..2) of the eye position.
func (c *FreeCamera) SetEye(axis int, v float32) { c.eye[axis] = v }

// SetAt sets one component (0..2) of the look-at target.
func (c *FreeCamera) SetAt(axis int, v float32) { c.at[axis] = v }

// View returns the look-at matrix. When eye and target coincide, or the
// view direction is vertical, the up vector falls back to +Z.
func (c *FreeCamera) View() mgl32.Mat4 {
	eye := c.eye
	dir := c.at.Sub(eye)
	if dir.Len() < 1e-6 {
		eye = eye.Add(mgl32.Vec3{0, 0, 1})
		dir = c.at.Sub(eye)
	}
	up := mgl32.Vec3{0, 1, 0}
	if dir.Normalize().Cross(up).Len() < 1e-6 {
		up = mgl32.Vec3{0, 0, 1}
	}
	return mgl32.LookAtV(eye, c.at, up)
}

func rotate(v mgl32.Vec3, degrees float32, axis mgl32.Vec3) mgl32.Vec3 {
	return mgl32.HomogRotate3D(mgl32.DegToRad(degrees), axis).Mul4x1(v.Vec4(1)).Vec3()
}

func sign(v float32) float32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
