// Package meshbuf packs sphere geometry into shared fixed-capacity buffers.
//
// A Writer owns four parallel arrays (positions, normals, texcoords,
// indices), each with its own write cursor. Meshes are appended one at a
// time through a Builder, which records where each of the mesh's
// attributes starts and rebases its local indices so that a single index
// buffer serves every mesh. Capacities are fixed when the Writer is
// created; an append that would overflow is rejected without writing.
package meshbuf

import (
	"errors"
	"fmt"
)

// Element sizes in bytes, as uploaded to the GPU.
const (
	PositionSize = 3 * 4
	NormalSize   = 3 * 4
	TexCoordSize = 2 * 4
	IndexSize    = 4
)

// Default capacities.
const (
	DefaultMaxVertices = 100000
	DefaultMaxIndices  = 120000
)

var (
	// ErrCapacityExceeded is returned when an append does not fit.
	ErrCapacityExceeded = errors.New("meshbuf: capacity exceeded")

	// ErrIndexOutOfRange is returned by AppendTopology for an index that does
	// not name one of the mesh's own vertices.
	ErrIndexOutOfRange = errors.New("meshbuf: index out of range")

	// ErrBuilderOpen is returned by Begin while another mesh is being built.
	ErrBuilderOpen = errors.New("meshbuf: another mesh is being built")

	// ErrSealed is returned when appending to a finished or aborted builder.
	ErrSealed = errors.New("meshbuf: builder is sealed")

	// ErrMisaligned is returned by Finish when the attribute counts differ or
	// the index count is not a whole number of triangles.
	ErrMisaligned = errors.New("meshbuf: misaligned mesh")

	// ErrDuplicateName is returned by Begin for a name already packed.
	ErrDuplicateName = errors.New("meshbuf: duplicate mesh name")
)

// Capacity is the number of elements each buffer can hold.
type Capacity struct {
	Vertices int `json:"vertices"`
	Indices  int `json:"indices"`
}

// DefaultCapacity returns the stock capacities.
func DefaultCapacity() Capacity {
	return Capacity{Vertices: DefaultMaxVertices, Indices: DefaultMaxIndices}
}

// Writer holds the shared buffers and their cursors. It is not safe for
// concurrent use; once packing is done the buffers may be read from any
// goroutine.
type Writer struct {
	capacity Capacity

	positions []float32
	normals   []float32
	texcoords []float32
	indices   []uint32

	// cursors, in elements
	vertexCur   int
	normalCur   int
	texCoordCur int
	indexCur    int

	open   *Builder
	meshes []*Mesh
	byName map[string]*Mesh
}

// NewWriter allocates buffers for the given capacity.
func NewWriter(c Capacity) (*Writer, error) {
	if c.Vertices <= 0 || c.Indices <= 0 {
		return nil, fmt.Errorf("meshbuf: invalid capacity %+v", c)
	}
	return &Writer{
		capacity:  c,
		positions: make([]float32, 3*c.Vertices),
		normals:   make([]float32, 3*c.Vertices),
		texcoords: make([]float32, 2*c.Vertices),
		indices:   make([]uint32, c.Indices),
		byName:    make(map[string]*Mesh),
	}, nil
}

// Capacity returns the configured capacity.
func (w *Writer) Capacity() Capacity { return w.capacity }

// Begin starts a new mesh.
func (w *Writer) Begin(name string) (*Builder, error) {
	if w.open != nil {
		return nil, fmt.Errorf("%w: %q still open", ErrBuilderOpen, w.open.name)
	}
	if _, ok := w.byName[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	b := &Builder{
		w:              w,
		name:           name,
		vertexOffset:   -1,
		normalOffset:   -1,
		texCoordOffset: -1,
		indexOffset:    -1,
	}
	w.open = b
	return b, nil
}

// Usage reports how many elements of each buffer are in use.
type Usage struct {
	Vertices  int
	Normals   int
	TexCoords int
	Indices   int
}

// Usage returns the current cursor positions.
func (w *Writer) Usage() Usage {
	return Usage{
		Vertices:  w.vertexCur,
		Normals:   w.normalCur,
		TexCoords: w.texCoordCur,
		Indices:   w.indexCur,
	}
}

// Positions returns the written prefix of the position buffer (xyz per vertex).
func (w *Writer) Positions() []float32 { return w.positions[:3*w.vertexCur] }

// Normals returns the written prefix of the normal buffer.
func (w *Writer) Normals() []float32 { return w.normals[:3*w.normalCur] }

// TexCoords returns the written prefix of the texcoord buffer (st per vertex).
func (w *Writer) TexCoords() []float32 { return w.texcoords[:2*w.texCoordCur] }

// Indices returns the written prefix of the index buffer. Values are
// already rebased.
func (w *Writer) Indices() []uint32 { return w.indices[:w.indexCur] }

// Meshes returns the finished meshes in packing order.
func (w *Writer) Meshes() []*Mesh {
	out := make([]*Mesh, len(w.meshes))
	copy(out, w.meshes)
	return out
}

// Mesh looks up a finished mesh by name.
func (w *Writer) Mesh(name string) (*Mesh, bool) {
	m, ok := w.byName[name]
	return m, ok
}

func (w *Writer) checkFree(buffer string, cursor, want, capacity int) error {
	if free := capacity - cursor; want > free {
		return fmt.Errorf("%w: %s buffer needs %d, %d of %d free",
			ErrCapacityExceeded, buffer, want, free, capacity)
	}
	return nil
}
