package meshbuf

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Builder appends one mesh into a Writer. Each attribute's start offset
// is recorded on its first append.
type Builder struct {
	w    *Writer
	name string

	vertexOffset   int
	normalOffset   int
	texCoordOffset int
	indexOffset    int

	vertices  int
	normals   int
	texCoords int
	indices   int

	sealed bool
}

// AppendVertex writes one position.
func (b *Builder) AppendVertex(p mgl32.Vec3) error {
	if err := b.usable(); err != nil {
		return err
	}
	w := b.w
	if err := w.checkFree("vertex", w.vertexCur, 1, w.capacity.Vertices); err != nil {
		return err
	}
	if b.vertexOffset < 0 {
		b.vertexOffset = w.vertexCur
	}
	copy(w.positions[3*w.vertexCur:], p[:])
	w.vertexCur++
	b.vertices++
	return nil
}

// AppendNormal writes one normal.
func (b *Builder) AppendNormal(n mgl32.Vec3) error {
	if err := b.usable(); err != nil {
		return err
	}
	w := b.w
	if err := w.checkFree("normal", w.normalCur, 1, w.capacity.Vertices); err != nil {
		return err
	}
	if b.normalOffset < 0 {
		b.normalOffset = w.normalCur
	}
	copy(w.normals[3*w.normalCur:], n[:])
	w.normalCur++
	b.normals++
	return nil
}

// AppendTexCoord writes one texture coordinate.
func (b *Builder) AppendTexCoord(uv mgl32.Vec2) error {
	if err := b.usable(); err != nil {
		return err
	}
	w := b.w
	if err := w.checkFree("texcoord", w.texCoordCur, 1, w.capacity.Vertices); err != nil {
		return err
	}
	if b.texCoordOffset < 0 {
		b.texCoordOffset = w.texCoordCur
	}
	copy(w.texcoords[2*w.texCoordCur:], uv[:])
	w.texCoordCur++
	b.texCoords++
	return nil
}

// AppendTopology writes local indices rebased by the mesh's vertex offset.
// Every index must be below the number of vertices appended so far. The
// call writes all of local or nothing.
func (b *Builder) AppendTopology(local []uint32) error {
	if err := b.usable(); err != nil {
		return err
	}
	w := b.w
	for i, idx := range local {
		if int(idx) >= b.vertices {
			return fmt.Errorf("%w: local index %d at %d, mesh %q has %d vertices",
				ErrIndexOutOfRange, idx, i, b.name, b.vertices)
		}
	}
	if err := w.checkFree("index", w.indexCur, len(local), w.capacity.Indices); err != nil {
		return err
	}
	if len(local) == 0 {
		return nil
	}
	if b.indexOffset < 0 {
		b.indexOffset = w.indexCur
	}
	base := uint32(b.vertexOffset)
	dst := w.indices[w.indexCur : w.indexCur+len(local)]
	for i, idx := range local {
		dst[i] = idx + base
	}
	w.indexCur += len(local)
	b.indices += len(local)
	return nil
}

// Finish seals the builder and registers the mesh with the writer.
// Offsets of attributes that were never appended default to the current
// cursor of that buffer.
func (b *Builder) Finish() (*Mesh, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	if b.normals != b.vertices || b.texCoords != b.vertices {
		return nil, fmt.Errorf("%w: mesh %q has %d vertices, %d normals, %d texcoords",
			ErrMisaligned, b.name, b.vertices, b.normals, b.texCoords)
	}
	if b.indices%3 != 0 {
		return nil, fmt.Errorf("%w: mesh %q has %d indices", ErrMisaligned, b.name, b.indices)
	}

	w := b.w
	m := &Mesh{
		Name:           b.name,
		VertexOffset:   orCursor(b.vertexOffset, w.vertexCur),
		NormalOffset:   orCursor(b.normalOffset, w.normalCur),
		TexCoordOffset: orCursor(b.texCoordOffset, w.texCoordCur),
		IndexOffset:    orCursor(b.indexOffset, w.indexCur),
		VertexCount:    b.vertices,
		IndexCount:     b.indices,
		TriangleCount:  b.indices / 3,
	}
	b.sealed = true
	w.open = nil
	w.meshes = append(w.meshes, m)
	w.byName[m.Name] = m
	return m, nil
}

// Abort discards everything the builder wrote and rewinds the cursors.
// It is a no-op on a sealed builder.
func (b *Builder) Abort() {
	if b.sealed {
		return
	}
	w := b.w
	if b.vertexOffset >= 0 {
		clear(w.positions[3*b.vertexOffset : 3*w.vertexCur])
		w.vertexCur = b.vertexOffset
	}
	if b.normalOffset >= 0 {
		clear(w.normals[3*b.normalOffset : 3*w.normalCur])
		w.normalCur = b.normalOffset
	}
	if b.texCoordOffset >= 0 {
		clear(w.texcoords[2*b.texCoordOffset : 2*w.texCoordCur])
		w.texCoordCur = b.texCoordOffset
	}
	if b.indexOffset >= 0 {
		clear(w.indices[b.indexOffset:w.indexCur])
		w.indexCur = b.indexOffset
	}
	b.sealed = true
	w.open = nil
}

// Name returns the mesh name.
func (b *Builder) Name() string { return b.name }

// VertexCount returns the number of positions appended so far.
func (b *Builder) VertexCount() int { return b.vertices }

func (b *Builder) usable() error {
	if b.sealed {
		return fmt.Errorf("%w: %q", ErrSealed, b.name)
	}
	return nil
}

func orCursor(offset, cursor int) int {
	if offset < 0 {
		return cursor
	}
	return offset
}
