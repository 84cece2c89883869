package meshbuf

import (
	"errors"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-globe/internal/geometry"
)

func newWriter(t *testing.T, vertices, indices int) *Writer {
	t.Helper()
	w, err := NewWriter(Capacity{Vertices: vertices, Indices: indices})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	return w
}

// triangles returns a geometry of n disjoint triangles.
func triangles(n int) *geometry.Geometry {
	g := &geometry.Geometry{}
	for i := 0; i < 3*n; i++ {
		p := mgl32.Vec3{float32(i), 0, 0}
		g.Positions = append(g.Positions, p)
		g.Normals = append(g.Normals, mgl32.Vec3{0, 1, 0})
		g.TexCoords = append(g.TexCoords, mgl32.Vec2{0, 0})
		g.Indices = append(g.Indices, uint32(i))
	}
	return g
}

func TestNewWriterRejectsBadCapacity(t *testing.T) {
	for _, c := range []Capacity{{0, 10}, {10, 0}, {-1, -1}} {
		if _, err := NewWriter(c); err == nil {
			t.Errorf("expected error for capacity %+v", c)
		}
	}
}

func TestAppendTopologyRebases(t *testing.T) {
	w := newWriter(t, 100, 100)

	// Occupy the first K vertices with another mesh.
	const k = 7
	b, _ := w.Begin("pad")
	for i := 0; i < k; i++ {
		_ = b.AppendVertex(mgl32.Vec3{})
		_ = b.AppendNormal(mgl32.Vec3{})
		_ = b.AppendTexCoord(mgl32.Vec2{})
	}
	if _, err := b.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	b, _ = w.Begin("quad")
	for i := 0; i < 4; i++ {
		_ = b.AppendVertex(mgl32.Vec3{float32(i), 0, 0})
		_ = b.AppendNormal(mgl32.Vec3{0, 0, 1})
		_ = b.AppendTexCoord(mgl32.Vec2{0, 0})
	}
	local := []uint32{0, 1, 2, 0, 2, 3}
	if err := b.AppendTopology(local); err != nil {
		t.Fatalf("AppendTopology: %v", err)
	}
	m, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if m.VertexOffset != k {
		t.Fatalf("expected vertex offset %d, got %d", k, m.VertexOffset)
	}
	stored := w.Indices()[m.IndexOffset : m.IndexOffset+m.IndexCount]
	for i, idx := range local {
		if stored[i] != idx+k {
			t.Errorf("index %d: expected %d, got %d", i, idx+k, stored[i])
		}
	}
}

func TestAppendTopologyRejectsForeignIndex(t *testing.T) {
	w := newWriter(t, 10, 10)
	b, _ := w.Begin("tri")
	for i := 0; i < 3; i++ {
		_ = b.AppendVertex(mgl32.Vec3{})
	}
	err := b.AppendTopology([]uint32{0, 1, 3})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if w.Usage().Indices != 0 {
		t.Errorf("expected no indices written, got %d", w.Usage().Indices)
	}
}

func TestCapacityOverflowLeavesBuffersUntouched(t *testing.T) {
	const capVerts = 6
	w := newWriter(t, capVerts, 100)
	if _, err := Pack(w, "first", triangles(1)); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	before := struct {
		pos, nrm, tex []float32
		idx           []uint32
		usage         Usage
	}{
		slices.Clone(w.positions), slices.Clone(w.normals), slices.Clone(w.texcoords),
		slices.Clone(w.indices), w.Usage(),
	}

	// Builder path: fill to capacity, then one more.
	b, _ := w.Begin("second")
	for i := 0; i < capVerts-3; i++ {
		if err := b.AppendVertex(mgl32.Vec3{9, 9, 9}); err != nil {
			t.Fatalf("append %d within capacity: %v", i, err)
		}
	}
	if err := b.AppendVertex(mgl32.Vec3{1, 2, 3}); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if got := w.positions[3*capVerts-3:]; !slices.Equal(got, []float32{9, 9, 9}) {
		t.Errorf("last slot overwritten: %v", got)
	}
	b.Abort()

	if !slices.Equal(w.positions, before.pos) || !slices.Equal(w.normals, before.nrm) ||
		!slices.Equal(w.texcoords, before.tex) || !slices.Equal(w.indices, before.idx) {
		t.Error("buffers changed after aborted overflow")
	}
	if w.Usage() != before.usage {
		t.Errorf("expected usage %+v after abort, got %+v", before.usage, w.Usage())
	}

	// Pack path: a mesh one vertex too large is rejected outright.
	_, err := Pack(w, "third", &geometry.Geometry{
		Positions: make([]mgl32.Vec3, capVerts-3+1),
		Normals:   make([]mgl32.Vec3, capVerts-3+1),
		TexCoords: make([]mgl32.Vec2, capVerts-3+1),
	})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded from Pack, got %v", err)
	}
	if !slices.Equal(w.positions, before.pos) || w.Usage() != before.usage {
		t.Error("buffers changed after rejected Pack")
	}
	if len(w.Meshes()) != 1 {
		t.Errorf("expected only the first mesh to be registered, got %d", len(w.Meshes()))
	}
}

func TestIndexCapacity(t *testing.T) {
	w := newWriter(t, 100, 5)
	_, err := Pack(w, "two", triangles(2))
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if w.Usage() != (Usage{}) {
		t.Errorf("expected empty writer, got %+v", w.Usage())
	}
}

func TestOneBuilderAtATime(t *testing.T) {
	w := newWriter(t, 10, 10)
	b, err := w.Begin("a")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := w.Begin("b"); !errors.Is(err, ErrBuilderOpen) {
		t.Errorf("expected ErrBuilderOpen, got %v", err)
	}
	if _, err := b.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if err := b.AppendVertex(mgl32.Vec3{}); !errors.Is(err, ErrSealed) {
		t.Errorf("expected ErrSealed, got %v", err)
	}
	if _, err := w.Begin("a"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

func TestFinishRequiresAlignedAttributes(t *testing.T) {
	w := newWriter(t, 10, 10)
	b, _ := w.Begin("bad")
	_ = b.AppendVertex(mgl32.Vec3{})
	_ = b.AppendVertex(mgl32.Vec3{})
	_ = b.AppendNormal(mgl32.Vec3{})
	if _, err := b.Finish(); !errors.Is(err, ErrMisaligned) {
		t.Errorf("expected ErrMisaligned, got %v", err)
	}
}

func TestEndToEndLatLon(t *testing.T) {
	w := newWriter(t, 1000, 2000)

	g, err := geometry.LatLon{Resolution: 8}.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	sphere, err := Pack(w, "sphere", g)
	if err != nil {
		t.Fatalf("Pack sphere: %v", err)
	}
	if sphere.TriangleCount != 112 {
		t.Errorf("expected 112 triangles, got %d", sphere.TriangleCount)
	}
	r := sphere.DrawRange()
	if r.First != 0 || r.Count != 336 {
		t.Errorf("expected draw range [0,336), got %+v", r)
	}

	second, err := Pack(w, "second", triangles(50))
	if err != nil {
		t.Fatalf("Pack second: %v", err)
	}
	if second.VertexOffset != 112*3 {
		t.Errorf("expected second vertex offset %d, got %d", 112*3, second.VertexOffset)
	}
	if second.IndexOffset != 336 {
		t.Errorf("expected second index offset 336, got %d", second.IndexOffset)
	}
	if got := second.DrawRange().ByteOffset(); got != 336*IndexSize {
		t.Errorf("expected byte offset %d, got %d", 336*IndexSize, got)
	}

	// Ranges must not overlap.
	sr, tr := sphere.ByteRanges(), second.ByteRanges()
	if sr.Positions.Offset+sr.Positions.Size > tr.Positions.Offset {
		t.Error("position ranges overlap")
	}
	if sr.Indices.Offset+sr.Indices.Size > tr.Indices.Offset {
		t.Error("index ranges overlap")
	}

	// First index of the second mesh refers to its first vertex.
	if got := w.Indices()[second.IndexOffset]; got != 336 {
		t.Errorf("expected rebased index 336, got %d", got)
	}
	if len(w.Positions()) != 3*(336+150) {
		t.Errorf("unexpected written position length %d", len(w.Positions()))
	}
}

func TestPackAllIsOrdered(t *testing.T) {
	w := newWriter(t, DefaultMaxVertices, DefaultMaxIndices)
	meshes, err := PackAll(w, map[string]geometry.Generator{
		"latlon":    geometry.LatLon{Resolution: 8},
		"icosphere": geometry.Icosphere{Subdivisions: 1},
	})
	if err != nil {
		t.Fatalf("PackAll: %v", err)
	}
	ico, lat := meshes["icosphere"], meshes["latlon"]
	if ico.VertexOffset != 0 || lat.VertexOffset != ico.VertexCount {
		t.Errorf("unexpected offsets: icosphere %v, latlon %v", ico, lat)
	}
	if m, ok := w.Mesh("latlon"); !ok || m != lat {
		t.Error("expected lookup by name to return the packed mesh")
	}
}
