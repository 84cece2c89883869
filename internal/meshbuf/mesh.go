package meshbuf

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/geometry"
	"github.com/Faultbox/midgard-globe/internal/logger"
)

// Mesh is a named range within a Writer's buffers. Offsets are in elements.
// A Mesh is immutable once returned by Finish.
type Mesh struct {
	Name           string `json:"name"`
	VertexOffset   int    `json:"vertexOffset"`
	NormalOffset   int    `json:"normalOffset"`
	TexCoordOffset int    `json:"texCoordOffset"`
	IndexOffset    int    `json:"indexOffset"`
	VertexCount    int    `json:"vertexCount"`
	IndexCount     int    `json:"indexCount"`
	TriangleCount  int    `json:"triangleCount"`
}

// DrawRange addresses an indexed draw of a mesh.
type DrawRange struct {
	First      int `json:"first"`
	Count      int `json:"count"`
	BaseVertex int `json:"baseVertex"`
}

// ByteOffset is the offset of First into an index buffer of uint32.
func (r DrawRange) ByteOffset() int { return r.First * IndexSize }

// DrawRange returns the index range to draw. Stored indices are already
// rebased, so BaseVertex is informational.
func (m *Mesh) DrawRange() DrawRange {
	return DrawRange{
		First:      m.IndexOffset,
		Count:      3 * m.TriangleCount,
		BaseVertex: m.VertexOffset,
	}
}

// ByteRange is a region of one GPU buffer.
type ByteRange struct {
	Offset int
	Size   int
}

// Ranges are the regions a mesh occupies in each buffer.
type Ranges struct {
	Positions ByteRange
	Normals   ByteRange
	TexCoords ByteRange
	Indices   ByteRange
}

// ByteRanges returns the regions of the shared buffers written by m, for
// partial uploads.
func (m *Mesh) ByteRanges() Ranges {
	return Ranges{
		Positions: ByteRange{m.VertexOffset * PositionSize, m.VertexCount * PositionSize},
		Normals:   ByteRange{m.NormalOffset * NormalSize, m.VertexCount * NormalSize},
		TexCoords: ByteRange{m.TexCoordOffset * TexCoordSize, m.VertexCount * TexCoordSize},
		Indices:   ByteRange{m.IndexOffset * IndexSize, m.IndexCount * IndexSize},
	}
}

func (m *Mesh) String() string {
	return fmt.Sprintf("%s[v=%d+%d i=%d+%d]", m.Name, m.VertexOffset, m.VertexCount, m.IndexOffset, m.IndexCount)
}

// Pack appends a generated geometry as a new mesh. On error nothing the
// call wrote remains in the buffers.
func Pack(w *Writer, name string, g *geometry.Geometry) (*Mesh, error) {
	start := time.Now()
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("packing %q: %w", name, err)
	}

	// Whole-mesh fit check before anything is written.
	u := w.Usage()
	if err := w.checkFree("vertex", u.Vertices, g.VertexCount(), w.capacity.Vertices); err != nil {
		return nil, fmt.Errorf("packing %q: %w", name, err)
	}
	if err := w.checkFree("index", u.Indices, len(g.Indices), w.capacity.Indices); err != nil {
		return nil, fmt.Errorf("packing %q: %w", name, err)
	}

	b, err := w.Begin(name)
	if err != nil {
		return nil, fmt.Errorf("packing %q: %w", name, err)
	}
	m, err := fill(b, g)
	if err != nil {
		b.Abort()
		return nil, fmt.Errorf("packing %q: %w", name, err)
	}

	logger.Named("meshbuf").Debug("mesh packed",
		zap.Stringer("mesh", m),
		zap.Int("triangles", m.TriangleCount),
		zap.Duration("took", time.Since(start)))
	return m, nil
}

func fill(b *Builder, g *geometry.Geometry) (*Mesh, error) {
	for i := range g.Positions {
		if err := b.AppendVertex(g.Positions[i]); err != nil {
			return nil, err
		}
		if err := b.AppendNormal(g.Normals[i]); err != nil {
			return nil, err
		}
		if err := b.AppendTexCoord(g.TexCoords[i]); err != nil {
			return nil, err
		}
	}
	if err := b.AppendTopology(g.Indices); err != nil {
		return nil, err
	}
	return b.Finish()
}

// PackAll runs each generator and packs its output under its map key, in
// key order so offsets are reproducible.
func PackAll(w *Writer, gens map[string]geometry.Generator) (map[string]*Mesh, error) {
	out := make(map[string]*Mesh, len(gens))
	for _, name := range sortedKeys(gens) {
		g, err := gens[name].Generate()
		if err != nil {
			return nil, fmt.Errorf("generating %q: %w", name, err)
		}
		m, err := Pack(w, name, g)
		if err != nil {
			return nil, err
		}
		out[name] = m
	}
	return out, nil
}

func sortedKeys(m map[string]geometry.Generator) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
