package scene

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxLights is the number of lights the shader accepts.
const MaxLights = 8

// Space says which coordinate frame a light position is given in.
type Space int

const (
	// World positions are transformed by the view matrix every frame.
	World Space = iota
	// Eye positions are used as-is, so the light moves with the camera.
	Eye
)

func (s Space) String() string {
	if s == Eye {
		return "eye"
	}
	return "world"
}

// ParseSpace maps a config string to a Space.
func ParseSpace(s string) (Space, error) {
	switch s {
	case "", "world":
		return World, nil
	case "eye", "camera":
		return Eye, nil
	}
	return World, fmt.Errorf("scene: unknown light space %q", s)
}

// Orbit spins a light about an axis through the origin.
type Orbit struct {
	Axis      mgl32.Vec3
	DegPerSec float32

	angle float32
}

// Angle returns the accumulated rotation in degrees.
func (o *Orbit) Angle() float32 { return o.angle }

// Light is a point light with Phong colours.
type Light struct {
	Position mgl32.Vec3
	Space    Space
	Ambient  mgl32.Vec4
	Diffuse  mgl32.Vec4
	Specular mgl32.Vec4
	Orbit    *Orbit
}

// sunDistance is the distance of the default sun, in world units.
const sunDistance = 150e6

// SunPosition returns the point at distance above latitude lat and
// longitude lon (degrees) of the unrotated globe. Longitude 0 faces -Z
// and grows towards -X, matching the lat/lon mesh texture layout.
func SunPosition(lat, lon, distance float32) mgl32.Vec3 {
	latRad := float64(mgl32.DegToRad(lat))
	lonRad := float64(mgl32.DegToRad(lon + 180))
	return mgl32.Vec3{
		float32(math.Cos(latRad) * math.Sin(lonRad)),
		float32(math.Sin(latRad)),
		float32(math.Cos(latRad) * math.Cos(lonRad)),
	}.Mul(distance)
}

// DefaultLight returns the sun: far away on the +Z side, slightly to +X.
func DefaultLight() *Light {
	return &Light{
		Position: mgl32.Vec3{50e6, 0, 140e6},
		Space:    World,
		Ambient:  mgl32.Vec4{0.2, 0.2, 0.2, 1},
		Diffuse:  mgl32.Vec4{0.8, 0.8, 0.8, 1},
		Specular: mgl32.Vec4{1, 1, 1, 1},
	}
}

// Step advances the orbit, if any.
func (l *Light) Step(dt time.Duration) {
	if l.Orbit == nil || l.Orbit.DegPerSec == 0 {
		return
	}
	l.Orbit.angle += l.Orbit.DegPerSec * float32(dt.Seconds())
	for l.Orbit.angle >= 360 {
		l.Orbit.angle -= 360
	}
	for l.Orbit.angle < 0 {
		l.Orbit.angle += 360
	}
}

// WorldPosition returns the position after the orbit rotation.
func (l *Light) WorldPosition() mgl32.Vec3 {
	if l.Orbit == nil || l.Orbit.angle == 0 || l.Orbit.Axis.Len() == 0 {
		return l.Position
	}
	rot := mgl32.HomogRotate3D(mgl32.DegToRad(l.Orbit.angle), l.Orbit.Axis.Normalize())
	return rot.Mul4x1(l.Position.Vec4(1)).Vec3()
}

// EyePosition returns the light position in eye coordinates.
func (l *Light) EyePosition(view mgl32.Mat4) mgl32.Vec4 {
	p := l.WorldPosition()
	if l.Space == Eye {
		return p.Vec4(1)
	}
	return view.Mul4(mgl32.Translate3D(p[0], p[1], p[2])).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
}

// Products are the light colours pre-multiplied by a material.
type Products struct {
	Ambient  mgl32.Vec4 `json:"ambient"`
	Diffuse  mgl32.Vec4 `json:"diffuse"`
	Specular mgl32.Vec4 `json:"specular"`
}

// ComputeProducts returns the component-wise products of light and material.
func ComputeProducts(l *Light, m Material) Products {
	return Products{
		Ambient:  hadamard(l.Ambient, m.Ambient),
		Diffuse:  hadamard(l.Diffuse, m.Diffuse),
		Specular: hadamard(l.Specular, m.Specular),
	}
}

func hadamard(a, b mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}

// Lighting is the per-object, per-light uniform data for one frame.
type Lighting struct {
	Products  []Products
	Positions []mgl32.Vec4
}

// LightingFor computes products and eye-space positions for every light,
// up to MaxLights.
func LightingFor(o *Object, lights []*Light, view mgl32.Mat4) Lighting {
	n := min(len(lights), MaxLights)
	out := Lighting{
		Products:  make([]Products, n),
		Positions: make([]mgl32.Vec4, n),
	}
	for i := 0; i < n; i++ {
		out.Products[i] = ComputeProducts(lights[i], o.Material)
		out.Positions[i] = lights[i].EyePosition(view)
	}
	return out
}
