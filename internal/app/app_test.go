package app

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/midgard-globe/internal/config"
	"github.com/Faultbox/midgard-globe/internal/engine/texture"
	"github.com/Faultbox/midgard-globe/internal/meshbuf"
	"github.com/Faultbox/midgard-globe/internal/viewer"
)

func TestBuildPacksConfiguredSphere(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*config.Config)
		triangles int
	}{
		{"latlon default", func(*config.Config) {}, 2*48*46 + 2*48},
		{"latlon 8", func(c *config.Config) { c.Mesh.Resolution = 8 }, 112},
		{"icosphere 2", func(c *config.Config) { c.Mesh.Algorithm = "icosphere"; c.Mesh.Subdivisions = 2 }, 320},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			g, err := Build(cfg)
			if err != nil {
				t.Fatal(err)
			}
			m := g.Meshes[GlobeMesh]
			if m == nil {
				t.Fatal("globe mesh not registered")
			}
			if m.TriangleCount != tt.triangles {
				t.Errorf("expected %d triangles, got %d", tt.triangles, m.TriangleCount)
			}
			if m.VertexOffset != 0 || m.IndexOffset != 0 {
				t.Errorf("first mesh should start at zero, got %v", m)
			}
			if got, ok := g.Writer.Mesh(GlobeMesh); !ok || got != m {
				t.Error("writer does not know the globe mesh")
			}
		})
	}
}

func TestBuildRejectsTooSmallBuffers(t *testing.T) {
	cfg := config.Default()
	cfg.Buffers.MaxVertices = 100
	if _, err := Build(cfg); !errors.Is(err, meshbuf.ErrCapacityExceeded) {
		t.Errorf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestViewerConfigMapping(t *testing.T) {
	cfg := config.Default()
	cfg.Camera.Mode = "free"
	cfg.Camera.LookAt = [3]float32{1, 2, 3}
	cfg.Window.Width, cfg.Window.Height = 800, 400
	cfg.Scene.Borders = true

	vc := ViewerConfig(cfg)
	if vc.Camera != viewer.Free {
		t.Errorf("expected free camera, got %s", vc.Camera)
	}
	if vc.FreeAt[2] != 3 || vc.Orbit.Eye[0] != -20000 {
		t.Errorf("vectors not mapped: at=%v eye=%v", vc.FreeAt, vc.Orbit.Eye)
	}
	if vc.Projection.Aspect != 2 {
		t.Errorf("expected aspect 2, got %f", vc.Projection.Aspect)
	}
	if !vc.Toggles.Borders || !vc.Toggles.Light {
		t.Errorf("toggles not mapped: %+v", vc.Toggles)
	}
	if vc.Mesh != GlobeMesh {
		t.Errorf("expected add-object mesh %q, got %q", GlobeMesh, vc.Mesh)
	}
}

func TestNewViewerIsIndependent(t *testing.T) {
	cfg := config.Default()
	cfg.Mesh.Resolution = 8
	g, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	a, err := g.NewViewer()
	if err != nil {
		t.Fatal(err)
	}
	b, err := g.NewViewer()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.AddObject(); err != nil {
		t.Fatal(err)
	}
	if len(a.Scene().Objects()) != 2 || len(b.Scene().Objects()) != 1 {
		t.Error("viewers share scene state")
	}

	cfg.Scene.LightSpace = "tangent"
	if _, err := g.NewViewer(); err == nil {
		t.Error("expected error for unknown light space")
	}
}

func TestSceneConfigSun(t *testing.T) {
	cfg := config.Default()
	sc, err := SceneConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Sun != nil {
		t.Errorf("expected no sun by default, got %v", *sc.Sun)
	}

	cfg.Scene.Sun = &config.SunConfig{Lat: 10, Lon: -45}
	sc, err = SceneConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Sun == nil || *sc.Sun != [2]float32{10, -45} {
		t.Errorf("unexpected sun %v", sc.Sun)
	}
}

func TestTextureSources(t *testing.T) {
	cfg := config.Default()
	cfg.Textures.Dir = "tex"
	cfg.Textures.Borders = ""

	src := TextureSources(cfg)
	if src[texture.Earth] != filepath.Join("tex", "no_clouds.jpg") {
		t.Errorf("unexpected earth path %q", src[texture.Earth])
	}
	if _, ok := src[texture.Borders]; ok {
		t.Error("empty layer should be skipped")
	}
	if _, ok := src[texture.Checker]; ok {
		t.Error("checkerboard is generated, not loaded")
	}
}

type fakeUploader struct {
	next    texture.Handle
	deleted []texture.Handle
}

func (f *fakeUploader) UploadTexture(img *image.RGBA) (texture.Handle, error) {
	f.next++
	return f.next, nil
}

func (f *fakeUploader) DeleteTexture(h texture.Handle) {
	f.deleted = append(f.deleted, h)
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

func TestTexturesPump(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "earth.png"), 8, 4)

	cfg := config.Default()
	cfg.Mesh.Resolution = 8
	cfg.Textures = config.TexturesConfig{
		Dir:            dir,
		Earth:          "earth.png",
		Clouds:         "missing.png",
		CheckerSize:    16,
		CheckerSquares: 4,
		Workers:        2,
	}
	g, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	v, err := g.NewViewer()
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tex := StartTextures(ctx, cfg, v.Slots())
	tex.loader.Wait()

	up := &fakeUploader{}
	if n := tex.Pump(ctx, up, v); n != 3 {
		t.Fatalf("expected 3 results, got %d", n)
	}

	slots := v.Slots()
	if s := slots.Get(texture.Earth); s.State != texture.Ready || s.Width != 8 || s.Height != 4 {
		t.Errorf("unexpected earth slot %+v", s)
	}
	if !slots.Ready(texture.Checker) {
		t.Error("checkerboard should be ready")
	}
	if s := slots.Get(texture.Clouds); s.State != texture.Failed {
		t.Errorf("expected clouds to fail, got %s", s.State)
	}

	// Reloading a layer replaces its texture.
	tex.Load(ctx, texture.Earth, filepath.Join(dir, "earth.png"))
	tex.loader.Wait()
	tex.Pump(ctx, up, v)
	if len(up.deleted) != 1 {
		t.Errorf("expected the old earth texture to be deleted, got %v", up.deleted)
	}

	cancel()
	tex.Close()
}
