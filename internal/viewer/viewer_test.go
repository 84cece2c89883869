package viewer

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-globe/internal/engine/texture"
	"github.com/Faultbox/midgard-globe/internal/geometry"
	"github.com/Faultbox/midgard-globe/internal/meshbuf"
	"github.com/Faultbox/midgard-globe/internal/scene"
)

func newViewer(t *testing.T, cfg Config) *Viewer {
	t.Helper()
	w, err := meshbuf.NewWriter(meshbuf.Capacity{Vertices: 1000, Indices: 1000})
	if err != nil {
		t.Fatal(err)
	}
	g, err := geometry.LatLon{Resolution: 8}.Generate()
	if err != nil {
		t.Fatal(err)
	}
	m, err := meshbuf.Pack(w, "sphere", g)
	if err != nil {
		t.Fatal(err)
	}
	sc, err := scene.New(scene.Config{Mesh: "sphere"}, map[string]*meshbuf.Mesh{"sphere": m})
	if err != nil {
		t.Fatal(err)
	}
	v, err := New(cfg, sc, texture.NewSlots())
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func readyAll(v *Viewer) {
	for l := texture.Layer(0); l < texture.NumLayers; l++ {
		v.TextureReady(l, texture.Handle(10+l), 4, 4)
	}
}

func TestTickProducesOneDrawPerObject(t *testing.T) {
	v := newViewer(t, DefaultConfig())
	fc := v.Tick(16 * time.Millisecond)

	if fc.Frame != 1 {
		t.Errorf("expected frame 1, got %d", fc.Frame)
	}
	if len(fc.Draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(fc.Draws))
	}
	d := fc.Draws[0]
	if d.Range.First != 0 || d.Range.Count != 336 {
		t.Errorf("unexpected draw range %+v", d.Range)
	}
	if d.Shininess != 20 {
		t.Errorf("expected shininess 20, got %f", d.Shininess)
	}
	if len(d.Products) != 1 || len(d.LightPositions) != 1 {
		t.Errorf("expected one light, got %d/%d", len(d.Products), len(d.LightPositions))
	}

	want := fc.View.Mul4(v.Scene().Objects()[0].Transform.World())
	if !d.ModelView.ApproxEqualThreshold(want, 1e-3) {
		t.Error("model-view is not view * world")
	}
	if !fc.Projection.ApproxEqual(DefaultConfig().Projection.Matrix()) {
		t.Error("unexpected projection")
	}

	if _, err := v.AddObject(); err != nil {
		t.Fatal(err)
	}
	if n := len(v.Tick(0).Draws); n != 2 {
		t.Errorf("expected 2 draws after AddObject, got %d", n)
	}
}

func TestAnimateRotatesFirstObject(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Toggles.Animate = true
	v := newViewer(t, cfg)
	earth := v.Scene().Objects()[0]

	v.Tick(500 * time.Millisecond)
	if got := earth.Transform.Rotate[1]; math.Abs(float64(got-3)) > 1e-4 {
		t.Errorf("expected 3° after half a second, got %f", got)
	}

	_ = v.SetToggle(ToggleAnimate, false)
	v.Tick(time.Second)
	if got := earth.Transform.Rotate[1]; math.Abs(float64(got-3)) > 1e-4 {
		t.Errorf("expected rotation frozen at 3°, got %f", got)
	}

	_ = v.SetToggle(ToggleAnimate, true)
	v.Tick(60 * time.Second)
	if got := earth.Transform.Rotate[1]; got < 0 || got >= 360 {
		t.Errorf("expected rotation wrapped into [0,360), got %f", got)
	}
}

func TestTextureSelection(t *testing.T) {
	tests := []struct {
		name    string
		toggles Toggles
		enable  [NumSamplers]bool
		layer0  texture.Layer
	}{
		{"checkerboard", Toggles{Checkerboard: true, Clouds: true, Light: true}, [4]bool{true, false, false, false}, texture.Checker},
		{"plain", Toggles{}, [4]bool{true, false, false, false}, texture.Earth},
		{"clouds", Toggles{Clouds: true}, [4]bool{true, true, false, false}, texture.Earth},
		{"borders+light", Toggles{Borders: true, Light: true}, [4]bool{true, false, true, true}, texture.Earth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Toggles = tt.toggles
			v := newViewer(t, cfg)
			readyAll(v)

			ts := v.Tick(0).Textures
			if ts.Enable != tt.enable {
				t.Errorf("expected enable %v, got %v", tt.enable, ts.Enable)
			}
			if ts.Layers[0] != tt.layer0 {
				t.Errorf("expected sampler 0 = %v, got %v", tt.layer0, ts.Layers[0])
			}
			if ts.Handles[0] != texture.Handle(10+tt.layer0) {
				t.Errorf("expected handle %d, got %d", 10+tt.layer0, ts.Handles[0])
			}
		})
	}
}

func TestTextureFallbackWhenNotReady(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Toggles = Toggles{Clouds: true, Borders: true, Light: true}
	v := newViewer(t, cfg)

	// Nothing loaded: untextured frame.
	ts := v.Tick(0).Textures
	if ts.Textured() {
		t.Errorf("expected untextured frame, got %v", ts.Enable)
	}

	// Overlay ready but no surface: still untextured.
	v.TextureReady(texture.Clouds, 2, 1, 1)
	if ts := v.Tick(0).Textures; ts.Textured() {
		t.Errorf("expected untextured frame without a surface, got %v", ts.Enable)
	}

	// Surface ready, borders failed: borders dropped.
	v.TextureReady(texture.Earth, 1, 1, 1)
	v.TextureFailed(texture.Borders, errors.New("404"))
	ts = v.Tick(0).Textures
	if want := [4]bool{true, true, false, false}; ts.Enable != want {
		t.Errorf("expected %v, got %v", want, ts.Enable)
	}
}

func TestLightToggle(t *testing.T) {
	v := newViewer(t, DefaultConfig())
	if !v.Tick(0).LightEnabled {
		t.Error("expected lighting on by default")
	}
	if err := v.SetToggle(ToggleLight, false); err != nil {
		t.Fatal(err)
	}
	if v.Tick(0).LightEnabled {
		t.Error("expected lighting off")
	}
	if err := v.SetToggle("fog", true); !errors.Is(err, ErrUnknownControl) {
		t.Errorf("expected ErrUnknownControl, got %v", err)
	}
}

func TestSliders(t *testing.T) {
	v := newViewer(t, DefaultConfig())
	if err := v.SetSlider(RotateX, 45); err != nil {
		t.Fatal(err)
	}
	if got := v.Scene().Current().Transform.Rotate; got != (mgl32.Vec3{45, 0, 15}) {
		t.Errorf("unexpected rotation %v", got)
	}
	if err := v.SetSlider(CamX, 1); !errors.Is(err, ErrWrongCamera) {
		t.Errorf("expected ErrWrongCamera in orbit mode, got %v", err)
	}
	if err := v.SetSlider("zoom", 1); !errors.Is(err, ErrUnknownControl) {
		t.Errorf("expected ErrUnknownControl, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.Camera = Free
	fv := newViewer(t, cfg)
	_ = fv.SetSlider(CamY, 500)
	_ = fv.SetSlider(LookatZ, -3)
	c := fv.Controls()
	if c.Sliders.Cam != [3]float32{0, 500, 30000} || c.Sliders.Lookat != [3]float32{0, 0, -3} {
		t.Errorf("unexpected free camera sliders %+v", c.Sliders)
	}
	if c.Camera != Free {
		t.Errorf("expected free camera, got %s", c.Camera)
	}

	// Drag is a no-op for the free camera.
	eye := fv.Camera().Eye()
	fv.HandleDrag(10, 10)
	if fv.Camera().Eye() != eye {
		t.Error("free camera moved on drag")
	}
}

func TestResetRestoresCameraAndObjects(t *testing.T) {
	v := newViewer(t, DefaultConfig())
	start := v.Camera().Eye()

	v.HandleDrag(5, 5)
	v.HandleZoom(1)
	_, _ = v.AddObject()
	if v.Camera().Eye() == start {
		t.Fatal("expected camera to move")
	}

	v.Reset()
	if v.Camera().Eye() != start {
		t.Errorf("expected eye %v after reset, got %v", start, v.Camera().Eye())
	}
	if n := len(v.Scene().Objects()); n != 1 {
		t.Errorf("expected 1 object after reset, got %d", n)
	}
}

func TestResizeChangesAspect(t *testing.T) {
	v := newViewer(t, DefaultConfig())
	before := v.Tick(0).Projection
	v.Resize(1000, 500)
	after := v.Tick(0).Projection
	if before == after {
		t.Error("expected projection to change with aspect")
	}
	v.Resize(0, 10)
	if v.Tick(0).Projection != after {
		t.Error("expected invalid size to be ignored")
	}
}

func TestUnknownCameraMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Camera = "fly"
	sc, _ := scene.New(scene.Config{Mesh: "m"}, map[string]*meshbuf.Mesh{"m": {Name: "m"}})
	if _, err := New(cfg, sc, texture.NewSlots()); err == nil {
		t.Error("expected error for unknown camera mode")
	}
}

func TestExecute(t *testing.T) {
	v := newViewer(t, DefaultConfig())
	start := v.Camera().Eye().Len()

	if err := v.Execute(CmdFlipLight); err != nil {
		t.Fatal(err)
	}
	if v.Toggles().Light {
		t.Error("expected light off after flip")
	}
	_ = v.Execute(CmdFlipLight)
	if !v.Toggles().Light {
		t.Error("expected light back on after second flip")
	}

	if err := v.Execute(CmdAddObject); err != nil {
		t.Fatal(err)
	}
	if n := len(v.Scene().Objects()); n != 2 {
		t.Errorf("expected 2 objects, got %d", n)
	}

	_ = v.Execute(CmdZoomOut)
	if v.Camera().Eye().Len() <= start {
		t.Error("expected zoom-out to move the eye away")
	}
	_ = v.Execute(CmdReset)
	if n := len(v.Scene().Objects()); n != 1 {
		t.Errorf("expected reset to drop added objects, got %d", n)
	}

	for _, bad := range []Command{"flip-fog", "teleport"} {
		if err := v.Execute(bad); !errors.Is(err, ErrUnknownControl) {
			t.Errorf("%s: expected ErrUnknownControl, got %v", bad, err)
		}
	}
}

func TestPick(t *testing.T) {
	v := newViewer(t, DefaultConfig())
	v.Resize(400, 300)
	eye := v.Camera().Eye().Len()

	hit, ok := v.Pick(200, 150, 400, 300)
	if !ok {
		t.Fatal("expected the view centre to hit the globe")
	}
	if hit.Object != "earth" {
		t.Errorf("expected earth, got %q", hit.Object)
	}
	if want := eye - scene.EarthRadius; math.Abs(float64(hit.Distance-want)) > 50 {
		t.Errorf("expected distance near %f, got %f", want, hit.Distance)
	}
	if hit.Lat < -90 || hit.Lat > 90 || hit.Lon <= -180 || hit.Lon > 180 {
		t.Errorf("lat/lon out of range: %+v", hit)
	}

	if _, ok := v.Pick(0, 0, 400, 300); ok {
		t.Error("expected the corner to miss")
	}
	if _, ok := v.Pick(1, 1, 0, 0); ok {
		t.Error("expected an empty view to miss")
	}
}
