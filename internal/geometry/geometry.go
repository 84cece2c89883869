// Package geometry generates unit-sphere meshes.
//
// Two tessellations are provided behind the Generator interface: a
// latitude/longitude strip grid with duplicated vertices, and a subdivided
// icosahedron with shared vertices. Both return a Geometry whose index list
// is local to the mesh (0-based), ready to be packed by meshbuf.
package geometry

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrUnknownAlgorithm is returned by New for an unregistered name.
	ErrUnknownAlgorithm = errors.New("geometry: unknown algorithm")

	// ErrInvalidParameter is returned for an out-of-range resolution or depth.
	ErrInvalidParameter = errors.New("geometry: invalid parameter")

	// ErrMalformed is returned by Validate.
	ErrMalformed = errors.New("geometry: malformed")
)

// Geometry is the output shared by all generators. Positions, Normals and
// TexCoords are parallel arrays; Indices holds triangle triples referencing
// them.
type Geometry struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// Validate checks that the attribute arrays line up and every index is in range.
func (g *Geometry) Validate() error {
	n := len(g.Positions)
	if len(g.Normals) != n || len(g.TexCoords) != n {
		return fmt.Errorf("%w: %d positions, %d normals, %d texcoords",
			ErrMalformed, n, len(g.Normals), len(g.TexCoords))
	}
	if len(g.Indices)%3 != 0 {
		return fmt.Errorf("%w: index count %d is not a multiple of 3", ErrMalformed, len(g.Indices))
	}
	for i, idx := range g.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: index %d at %d out of range [0,%d)", ErrMalformed, idx, i, n)
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the positions.
func (g *Geometry) Bounds() (lo, hi mgl32.Vec3) {
	if len(g.Positions) == 0 {
		return
	}
	lo, hi = g.Positions[0], g.Positions[0]
	for _, p := range g.Positions[1:] {
		for k := 0; k < 3; k++ {
			if p[k] < lo[k] {
				lo[k] = p[k]
			}
			if p[k] > hi[k] {
				hi[k] = p[k]
			}
		}
	}
	return lo, hi
}

// Generator builds one sphere mesh.
type Generator interface {
	Name() string
	Generate() (*Geometry, error)
}
