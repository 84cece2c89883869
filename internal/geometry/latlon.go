package geometry

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// PoleMode selects the texture s coordinate used at the cap apex vertices.
type PoleMode int

const (
	// PoleMidpoint places the apex at the wedge's middle longitude, (θ1+θ2)/4π.
	PoleMidpoint PoleMode = iota
	// PoleCenter places every apex at s = 0.5.
	PoleCenter
)

// ParsePoleMode maps a config string to a PoleMode.
func ParsePoleMode(s string) (PoleMode, error) {
	switch s {
	case "", "midpoint":
		return PoleMidpoint, nil
	case "center":
		return PoleCenter, nil
	}
	return PoleMidpoint, fmt.Errorf("%w: pole texcoord mode %q", ErrInvalidParameter, s)
}

func (m PoleMode) String() string {
	if m == PoleCenter {
		return "center"
	}
	return "midpoint"
}

const (
	// DefaultResolution is the lat/lon band count used when none is configured.
	DefaultResolution = 48
	// MinResolution is the smallest band count that still has a body strip.
	MinResolution = 3
)

// LatLon tessellates the sphere into Resolution latitude bands and
// Resolution longitude wedges. Body quads become two triangles, the polar
// bands become single-triangle fans around the poles. Each triangle owns
// its three vertices, so nothing is shared.
type LatLon struct {
	Resolution int
	Pole       PoleMode
}

// Name implements Generator.
func (l LatLon) Name() string { return "latlon" }

// Triangles returns 2N(N-2) + 2N for the configured resolution.
func (l LatLon) Triangles() int {
	n := l.Resolution
	return 2*n*(n-2) + 2*n
}

// Generate implements Generator.
func (l LatLon) Generate() (*Geometry, error) {
	n := l.Resolution
	if n < MinResolution {
		return nil, fmt.Errorf("%w: lat/lon resolution %d (minimum %d)", ErrInvalidParameter, n, MinResolution)
	}

	tris := l.Triangles()
	g := &Geometry{
		Name:      fmt.Sprintf("latlon-%d", n),
		Positions: make([]mgl32.Vec3, 0, tris*3),
		Normals:   make([]mgl32.Vec3, 0, tris*3),
		TexCoords: make([]mgl32.Vec2, 0, tris*3),
		Indices:   make([]uint32, 0, tris*3),
	}

	half := float64(n) / 2
	bandPhi := func(lat float64) float64 { return lat / half * (math.Pi / 2) }
	wedge := func(lon int) (float64, float64) {
		return float64(lon) / float64(n) * 2 * math.Pi, float64(lon+1) / float64(n) * 2 * math.Pi
	}

	for lat := -half + 1; lat < half-1; lat++ {
		phi1, phi2 := bandPhi(lat), bandPhi(lat+1)
		for lon := 0; lon < n; lon++ {
			theta1, theta2 := wedge(lon)
			a := sphericalToCartesian(theta1, phi1)
			b := sphericalToCartesian(theta2, phi1)
			c := sphericalToCartesian(theta1, phi2)
			d := sphericalToCartesian(theta2, phi2)

			g.addTriangle(
				[3]mgl32.Vec3{a, b, d},
				[3]mgl32.Vec2{latLonUV(theta1, phi1), latLonUV(theta2, phi1), latLonUV(theta2, phi2)},
			)
			g.addTriangle(
				[3]mgl32.Vec3{a, d, c},
				[3]mgl32.Vec2{latLonUV(theta1, phi1), latLonUV(theta2, phi2), latLonUV(theta1, phi2)},
			)
		}
	}

	south := mgl32.Vec3{0, -1, 0}
	north := mgl32.Vec3{0, 1, 0}
	phiSouth := bandPhi(-half + 1)
	phiNorth := bandPhi(half - 1)
	for lon := 0; lon < n; lon++ {
		theta1, theta2 := wedge(lon)
		apexS := float32((theta1 + theta2) / (4 * math.Pi))
		if l.Pole == PoleCenter {
			apexS = 0.5
		}

		g.addTriangle(
			[3]mgl32.Vec3{south, sphericalToCartesian(theta2, phiSouth), sphericalToCartesian(theta1, phiSouth)},
			[3]mgl32.Vec2{{apexS, 1}, latLonUV(theta2, phiSouth), latLonUV(theta1, phiSouth)},
		)
		g.addTriangle(
			[3]mgl32.Vec3{north, sphericalToCartesian(theta1, phiNorth), sphericalToCartesian(theta2, phiNorth)},
			[3]mgl32.Vec2{{apexS, 0}, latLonUV(theta1, phiNorth), latLonUV(theta2, phiNorth)},
		)
	}

	return g, nil
}

func (g *Geometry) addTriangle(p [3]mgl32.Vec3, uv [3]mgl32.Vec2) {
	base := uint32(len(g.Positions))
	for i := 0; i < 3; i++ {
		g.Positions = append(g.Positions, p[i])
		g.Normals = append(g.Normals, p[i])
		g.TexCoords = append(g.TexCoords, uv[i])
	}
	g.Indices = append(g.Indices, base, base+1, base+2)
}

// sphericalToCartesian maps longitude theta and latitude phi (measured from
// the xz-plane) onto the unit sphere with +Y up.
func sphericalToCartesian(theta, phi float64) mgl32.Vec3 {
	rho := math.Pi/2 - phi
	return mgl32.Vec3{
		float32(math.Sin(rho) * math.Sin(theta)),
		float32(math.Cos(rho)),
		float32(math.Sin(rho) * math.Cos(theta)),
	}
}

func latLonUV(theta, phi float64) mgl32.Vec2 {
	return mgl32.Vec2{float32(theta / (2 * math.Pi)), float32(0.5 - phi/math.Pi)}
}
