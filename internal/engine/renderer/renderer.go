// Package renderer draws viewer frames with OpenGL.
//
// The four attribute and index buffers are allocated once at the packer's
// capacity. Meshes are copied in with BufferSubData as they are packed,
// so adding a mesh never reallocates what is already on the GPU.
package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/engine/shader"
	"github.com/Faultbox/midgard-globe/internal/engine/shader/shaders"
	"github.com/Faultbox/midgard-globe/internal/engine/texture"
	"github.com/Faultbox/midgard-globe/internal/logger"
	"github.com/Faultbox/midgard-globe/internal/meshbuf"
	"github.com/Faultbox/midgard-globe/internal/scene"
	"github.com/Faultbox/midgard-globe/internal/viewer"
)

// Attribute locations.
const (
	attrPosition = 0
	attrNormal   = 1
	attrTexCoord = 2
)

var samplerNames = [viewer.NumSamplers]string{"uSampler0", "uSampler1", "uSampler2", "uSampler3"}

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Capacity   meshbuf.Capacity
	ClearColor [4]float32
}

// Renderer owns the GPU side of the packed buffers and the globe program.
type Renderer struct {
	config Config
	prog   *shader.Program

	vao       uint32
	positions uint32
	normals   uint32
	texcoords uint32
	indices   uint32

	uploaded    map[string]bool
	textures    map[texture.Handle]bool
	fallbackTex uint32

	log *zap.Logger
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:   cfg,
		uploaded: make(map[string]bool),
		textures: make(map[texture.Handle]bool),
		log:      logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])

	uniforms := []string{
		"uModelView", "uProjection", "uNormalMatrix",
		"uAmbientProduct", "uDiffuseProduct", "uSpecularProduct", "uLightPosition",
		"uLightCount", "uShininess", "uLightEnable", "uTexEnable",
	}
	uniforms = append(uniforms, samplerNames[:]...)

	var err error
	r.prog, err = shader.NewProgram(shaders.GlobeVertexShader, shaders.GlobeFragmentShader, uniforms...)
	if err != nil {
		return nil, fmt.Errorf("globe shader: %w", err)
	}

	r.createBuffers()
	r.createFallbackTexture()
	return r, nil
}

func (r *Renderer) createBuffers() {
	verts := r.config.Capacity.Vertices

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	r.positions = allocArray(verts*meshbuf.PositionSize, attrPosition, 3)
	r.normals = allocArray(verts*meshbuf.NormalSize, attrNormal, 3)
	r.texcoords = allocArray(verts*meshbuf.TexCoordSize, attrTexCoord, 2)

	gl.GenBuffers(1, &r.indices)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.indices)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, r.config.Capacity.Indices*meshbuf.IndexSize, nil, gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.log.Debug("buffers allocated",
		zap.Int("vertices", verts),
		zap.Int("indices", r.config.Capacity.Indices),
	)
}

func allocArray(size int, attr uint32, components int32) uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.ARRAY_BUFFER, id)
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.STATIC_DRAW)
	gl.VertexAttribPointer(attr, components, gl.FLOAT, false, components*4, nil)
	gl.EnableVertexAttribArray(attr)
	return id
}

func (r *Renderer) createFallbackTexture() {
	gl.GenTextures(1, &r.fallbackTex)
	gl.BindTexture(gl.TEXTURE_2D, r.fallbackTex)
	white := []uint8{255, 255, 255, 255}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(white))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
}

// Upload copies every mesh of w that is not on the GPU yet.
func (r *Renderer) Upload(w *meshbuf.Writer) {
	for _, m := range w.Meshes() {
		if r.uploaded[m.Name] {
			continue
		}
		r.uploadMesh(w, m)
		r.uploaded[m.Name] = true
	}
}

func (r *Renderer) uploadMesh(w *meshbuf.Writer, m *meshbuf.Mesh) {
	rg := m.ByteRanges()
	subData(gl.ARRAY_BUFFER, r.positions, rg.Positions, w.Positions(), 3*m.VertexOffset)
	subData(gl.ARRAY_BUFFER, r.normals, rg.Normals, w.Normals(), 3*m.NormalOffset)
	subData(gl.ARRAY_BUFFER, r.texcoords, rg.TexCoords, w.TexCoords(), 2*m.TexCoordOffset)
	if rg.Indices.Size > 0 {
		idx := w.Indices()
		gl.BindVertexArray(r.vao)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.indices)
		gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, rg.Indices.Offset, rg.Indices.Size, gl.Ptr(&idx[m.IndexOffset]))
		gl.BindVertexArray(0)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	r.log.Debug("mesh uploaded", zap.Stringer("mesh", m))
}

func subData(target, buf uint32, rg meshbuf.ByteRange, data []float32, first int) {
	if rg.Size == 0 {
		return
	}
	gl.BindBuffer(target, buf)
	gl.BufferSubData(target, rg.Offset, rg.Size, gl.Ptr(&data[first]))
}

// UploadTexture creates a mipmapped texture from img. The returned handle
// is the GL texture name.
func (r *Renderer) UploadTexture(img *image.RGBA) (texture.Handle, error) {
	b := img.Bounds()
	if b.Empty() {
		return 0, fmt.Errorf("renderer: empty texture")
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(b.Dx()), int32(b.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	h := texture.Handle(id)
	r.textures[h] = true
	return h, nil
}

// DeleteTexture releases a texture created by UploadTexture.
func (r *Renderer) DeleteTexture(h texture.Handle) {
	if !r.textures[h] {
		return
	}
	id := uint32(h)
	gl.DeleteTextures(1, &id)
	delete(r.textures, h)
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Draw clears the current target and issues every draw call of fc.
func (r *Renderer) Draw(fc *viewer.FrameCommands) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.prog.Use()
	gl.BindVertexArray(r.vao)

	gl.UniformMatrix4fv(r.prog.Loc("uProjection"), 1, false, &fc.Projection[0])
	gl.Uniform1i(r.prog.Loc("uLightEnable"), boolToInt(fc.LightEnabled))
	r.bindTextures(fc.Textures)

	for i := range fc.Draws {
		d := &fc.Draws[i]
		if d.Range.Count == 0 {
			continue
		}
		gl.UniformMatrix4fv(r.prog.Loc("uModelView"), 1, false, &d.ModelView[0])
		gl.UniformMatrix3fv(r.prog.Loc("uNormalMatrix"), 1, false, &d.NormalMatrix[0])
		r.setLights(d)
		gl.DrawElementsWithOffset(gl.TRIANGLES, int32(d.Range.Count), gl.UNSIGNED_INT, uintptr(d.Range.ByteOffset()))
	}

	gl.BindVertexArray(0)
}

func (r *Renderer) bindTextures(ts viewer.TextureState) {
	var enable [viewer.NumSamplers]int32
	for i := 0; i < viewer.NumSamplers; i++ {
		id := r.fallbackTex
		if ts.Enable[i] && r.textures[ts.Handles[i]] {
			id = uint32(ts.Handles[i])
			enable[i] = 1
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.BindTexture(gl.TEXTURE_2D, id)
		gl.Uniform1i(r.prog.Loc(samplerNames[i]), int32(i))
	}
	gl.Uniform1iv(r.prog.Loc("uTexEnable"), viewer.NumSamplers, &enable[0])
	gl.ActiveTexture(gl.TEXTURE0)
}

func (r *Renderer) setLights(d *viewer.DrawCall) {
	n := min(len(d.Products), len(d.LightPositions), scene.MaxLights)
	gl.Uniform1i(r.prog.Loc("uLightCount"), int32(n))
	gl.Uniform1f(r.prog.Loc("uShininess"), d.Shininess)
	if n == 0 {
		return
	}
	amb := make([]float32, 0, 4*n)
	dif := make([]float32, 0, 4*n)
	spe := make([]float32, 0, 4*n)
	pos := make([]float32, 0, 4*n)
	for i := 0; i < n; i++ {
		p := d.Products[i]
		amb = append(amb, p.Ambient[:]...)
		dif = append(dif, p.Diffuse[:]...)
		spe = append(spe, p.Specular[:]...)
		pos = append(pos, d.LightPositions[i][:]...)
	}
	gl.Uniform4fv(r.prog.Loc("uAmbientProduct"), int32(n), &amb[0])
	gl.Uniform4fv(r.prog.Loc("uDiffuseProduct"), int32(n), &dif[0])
	gl.Uniform4fv(r.prog.Loc("uSpecularProduct"), int32(n), &spe[0])
	gl.Uniform4fv(r.prog.Loc("uLightPosition"), int32(n), &pos[0])
}

// ReadPixels returns the bound framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	pixels = make([]byte, 4*width*height)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, width, height
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	for h := range r.textures {
		r.DeleteTexture(h)
	}
	if r.fallbackTex != 0 {
		gl.DeleteTextures(1, &r.fallbackTex)
	}
	bufs := []uint32{r.positions, r.normals, r.texcoords, r.indices}
	gl.DeleteBuffers(int32(len(bufs)), &bufs[0])
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	r.prog.Delete()
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
