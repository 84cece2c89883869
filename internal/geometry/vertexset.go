package geometry

import "github.com/go-gl/mathgl/mgl32"

// VertexSet is an insertion-ordered list of unique points. Lookup is a
// linear scan with exact float equality, so points that differ only by
// accumulated rounding are kept as separate vertices.
//
// TODO: key on quantized coordinates (spatial hash) if subdivision depth
// ever needs to go past 5.
type VertexSet struct {
	points []mgl32.Vec3
}

// NewVertexSet returns an empty set with room for n points.
func NewVertexSet(n int) *VertexSet {
	return &VertexSet{points: make([]mgl32.Vec3, 0, n)}
}

// Add returns the index of p, appending it if no equal point exists.
// The second result reports whether p was appended.
func (s *VertexSet) Add(p mgl32.Vec3) (uint32, bool) {
	if i := s.Find(p); i >= 0 {
		return uint32(i), false
	}
	s.points = append(s.points, p)
	return uint32(len(s.points) - 1), true
}

// Find returns the index of a point exactly equal to p, or -1.
func (s *VertexSet) Find(p mgl32.Vec3) int {
	for i, q := range s.points {
		if q == p {
			return i
		}
	}
	return -1
}

// Len returns the number of unique points.
func (s *VertexSet) Len() int { return len(s.points) }

// At returns the point at index i.
func (s *VertexSet) At(i uint32) mgl32.Vec3 { return s.points[i] }

// Points returns the backing slice. Callers must not modify it.
func (s *VertexSet) Points() []mgl32.Vec3 { return s.points }
