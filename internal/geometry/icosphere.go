package geometry

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultSubdivisions is the icosphere depth used when none is configured.
	DefaultSubdivisions = 3
	// MaxSubdivisions bounds the quadratic vertex dedup.
	MaxSubdivisions = 5
)

// icosahedron vertex and face tables (golden ratio construction).
var (
	icoPhi = float32((1 + math.Sqrt(5)) / 2)

	icoVertices = [12]mgl32.Vec3{
		{-1, icoPhi, 0}, {1, icoPhi, 0}, {-1, -icoPhi, 0}, {1, -icoPhi, 0},
		{0, -1, icoPhi}, {0, 1, icoPhi}, {0, -1, -icoPhi}, {0, 1, -icoPhi},
		{icoPhi, 0, -1}, {icoPhi, 0, 1}, {-icoPhi, 0, -1}, {-icoPhi, 0, 1},
	}

	icoFaces = [20][3]uint32{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
)

// Icosphere subdivides a regular icosahedron Subdivisions times, pushing
// every edge midpoint onto the unit sphere. Vertices are shared between
// faces through a VertexSet.
type Icosphere struct {
	Subdivisions int
}

// Name implements Generator.
func (s Icosphere) Name() string { return "icosphere" }

// Triangles returns 20·4^R.
func (s Icosphere) Triangles() int {
	return 20 << (2 * uint(s.Subdivisions))
}

// Vertices returns 10·4^R + 2, the vertex count of a closed sphere with
// Triangles() faces.
func (s Icosphere) Vertices() int {
	return s.Triangles()/2 + 2
}

// Generate implements Generator.
func (s Icosphere) Generate() (*Geometry, error) {
	if s.Subdivisions < 0 || s.Subdivisions > MaxSubdivisions {
		return nil, fmt.Errorf("%w: icosphere subdivisions %d (range 0..%d)",
			ErrInvalidParameter, s.Subdivisions, MaxSubdivisions)
	}

	set := NewVertexSet(s.Vertices())
	faces := make([][3]uint32, 0, 20)
	for _, f := range icoFaces {
		var tri [3]uint32
		for k, vi := range f {
			tri[k], _ = set.Add(icoVertices[vi].Normalize())
		}
		faces = append(faces, tri)
	}

	for level := 0; level < s.Subdivisions; level++ {
		faces = subdivide(set, faces)
	}

	points := set.Points()
	g := &Geometry{
		Name:      fmt.Sprintf("icosphere-%d", s.Subdivisions),
		Positions: make([]mgl32.Vec3, len(points)),
		Normals:   make([]mgl32.Vec3, len(points)),
		TexCoords: make([]mgl32.Vec2, len(points)),
		Indices:   make([]uint32, 0, len(faces)*3),
	}
	copy(g.Positions, points)
	copy(g.Normals, points)
	for i, p := range points {
		g.TexCoords[i] = icoUV(p)
	}
	for _, f := range faces {
		g.Indices = append(g.Indices, f[0], f[1], f[2])
	}
	return g, nil
}

// subdivide splits every face into four, registering normalized edge
// midpoints in set.
func subdivide(set *VertexSet, faces [][3]uint32) [][3]uint32 {
	out := make([][3]uint32, 0, len(faces)*4)
	mid := func(a, b uint32) uint32 {
		i, _ := set.Add(set.At(a).Add(set.At(b)).Normalize())
		return i
	}
	for _, f := range faces {
		v1, v2, v3 := f[0], f[1], f[2]
		m1 := mid(v1, v2)
		m2 := mid(v2, v3)
		m3 := mid(v3, v1)
		out = append(out,
			[3]uint32{v1, m1, m3},
			[3]uint32{v2, m2, m1},
			[3]uint32{v3, m3, m2},
			[3]uint32{m1, m2, m3},
		)
	}
	return out
}

// icoUV derives texture coordinates from the spherical angles of p:
// θ = acos(x), φ = acos(y / sin θ). Both angles are divided by π. The
// mapping is not seam-aware and pinches at x = ±1.
func icoUV(p mgl32.Vec3) mgl32.Vec2 {
	theta := math.Acos(clampUnit(float64(p[0])))
	var phi float64
	if st := math.Sin(theta); st > 1e-7 {
		phi = math.Acos(clampUnit(float64(p[1]) / st))
	}
	return mgl32.Vec2{float32(theta / math.Pi), float32(phi / math.Pi)}
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
