// Package viewer drives the globe: it owns the scene, the camera and the
// UI toggles, and turns them into one FrameCommands value per Tick.
// Nothing here touches the GPU, so a frame can be computed and checked
// without a display.
package viewer

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/engine/camera"
	"github.com/Faultbox/midgard-globe/internal/engine/texture"
	"github.com/Faultbox/midgard-globe/internal/logger"
	"github.com/Faultbox/midgard-globe/internal/scene"
)

// CameraMode selects the camera control scheme.
type CameraMode string

const (
	// Orbit drags the eye around the globe with the mouse.
	Orbit CameraMode = "orbit"
	// Free places eye and target with sliders.
	Free CameraMode = "free"
)

// Toggles are the boolean UI controls.
type Toggles struct {
	Light        bool `json:"light" yaml:"light"`
	Animate      bool `json:"animate" yaml:"animate"`
	Checkerboard bool `json:"checkerboard" yaml:"checkerboard"`
	Clouds       bool `json:"clouds" yaml:"clouds"`
	Borders      bool `json:"borders" yaml:"borders"`
}

// Config configures a Viewer.
type Config struct {
	Camera     CameraMode
	Orbit      camera.OrbitConfig
	FreeEye    mgl32.Vec3
	FreeAt     mgl32.Vec3
	Projection camera.Projection

	// Mesh is the mesh used by AddObject.
	Mesh string

	// AnimateDegPerSec spins the first object about Y while Animate is on.
	AnimateDegPerSec float32

	Toggles Toggles
}

// DefaultConfig returns an orbit viewer with lighting and clouds on.
func DefaultConfig() Config {
	return Config{
		Camera:           Orbit,
		Orbit:            camera.DefaultOrbitConfig(),
		FreeEye:          mgl32.Vec3{0, 0, 30000},
		Projection:       camera.DefaultProjection(),
		Mesh:             "sphere",
		AnimateDegPerSec: 6,
		Toggles:          Toggles{Light: true, Animate: true, Clouds: true},
	}
}

// Viewer is the per-display state machine. It is not safe for concurrent
// use: event handlers and Tick must be called from one goroutine.
type Viewer struct {
	cfg     Config
	scene   *scene.Scene
	slots   *texture.Slots
	cam     camera.Camera
	orbit   *camera.OrbitCamera
	free    *camera.FreeCamera
	proj    camera.Projection
	toggles Toggles

	frame      uint64
	fpsFrames  int
	fpsElapsed time.Duration
	fps        float64
	warned     [texture.NumLayers]bool

	log *zap.Logger
}

// New creates a viewer over a scene and its texture slots.
func New(cfg Config, sc *scene.Scene, slots *texture.Slots) (*Viewer, error) {
	v := &Viewer{
		cfg:     cfg,
		scene:   sc,
		slots:   slots,
		proj:    cfg.Projection,
		toggles: cfg.Toggles,
		log:     logger.Named("viewer"),
	}
	switch cfg.Camera {
	case Orbit, "":
		v.orbit = camera.NewOrbitCamera(cfg.Orbit)
		v.cam = v.orbit
	case Free:
		v.free = camera.NewFreeCamera(cfg.FreeEye, cfg.FreeAt)
		v.cam = v.free
	default:
		return nil, fmt.Errorf("viewer: unknown camera mode %q", cfg.Camera)
	}
	return v, nil
}

// Scene returns the viewed scene.
func (v *Viewer) Scene() *scene.Scene { return v.scene }

// Slots returns the texture slots.
func (v *Viewer) Slots() *texture.Slots { return v.slots }

// Camera returns the active camera.
func (v *Viewer) Camera() camera.Camera { return v.cam }

// CameraMode returns the active camera scheme.
func (v *Viewer) CameraMode() CameraMode {
	if v.free != nil {
		return Free
	}
	return Orbit
}

// Toggles returns the current toggle state.
func (v *Viewer) Toggles() Toggles { return v.toggles }

// FPS returns the frame rate measured over the last full second.
func (v *Viewer) FPS() float64 { return v.fps }

// Frame returns the number of ticks so far.
func (v *Viewer) Frame() uint64 { return v.frame }

// Resize updates the projection aspect ratio.
func (v *Viewer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.proj.Aspect = float32(width) / float32(height)
}

// Tick advances the viewer by dt and returns the frame to draw.
func (v *Viewer) Tick(dt time.Duration) FrameCommands {
	v.frame++
	v.measure(dt)

	objs := v.scene.Objects()
	if v.toggles.Animate && len(objs) > 0 {
		r := &objs[0].Transform.Rotate
		r[1] = float32(math.Mod(float64(r[1]+v.cfg.AnimateDegPerSec*float32(dt.Seconds())), 360))
	}
	v.scene.Step(dt)

	view := v.cam.View()
	fc := FrameCommands{
		Frame:        v.frame,
		Projection:   v.proj.Matrix(),
		View:         view,
		Eye:          v.cam.Eye(),
		LightEnabled: v.toggles.Light,
		Textures:     v.selectTextures(),
		Draws:        make([]DrawCall, 0, len(objs)),
	}

	lights := v.scene.Lights()
	for _, o := range objs {
		if o.Mesh == nil {
			continue
		}
		mv := o.ModelView(view)
		lit := scene.LightingFor(o, lights, view)
		fc.Draws = append(fc.Draws, DrawCall{
			Object:         o.Name,
			ModelView:      mv,
			NormalMatrix:   scene.NormalMatrix(mv),
			Products:       lit.Products,
			LightPositions: lit.Positions,
			Shininess:      o.Material.Shininess,
			Range:          o.Mesh.DrawRange(),
		})
	}
	return fc
}

func (v *Viewer) measure(dt time.Duration) {
	v.fpsFrames++
	v.fpsElapsed += dt
	if v.fpsElapsed < time.Second {
		return
	}
	v.fps = float64(v.fpsFrames) / v.fpsElapsed.Seconds()
	v.log.Debug("frame rate", zap.Float64("fps", v.fps), zap.Uint64("frame", v.frame))
	v.fpsFrames = 0
	v.fpsElapsed = 0
}

// selectTextures maps the toggles onto the four samplers. Checkerboard
// mode samples only the generated pattern. Otherwise sampler 0 is the
// surface, 1 clouds, 2 borders and 3 the water mask, which is only
// meaningful with lighting on. Layers that are not loaded are switched
// off; without a surface layer the frame is untextured.
func (v *Viewer) selectTextures() TextureState {
	var ts TextureState
	if v.toggles.Checkerboard {
		ts.Enable = [NumSamplers]bool{true, false, false, false}
		ts.Layers = [NumSamplers]texture.Layer{texture.Checker, texture.Clouds, texture.Borders, texture.Water}
	} else {
		ts.Enable = [NumSamplers]bool{true, v.toggles.Clouds, v.toggles.Borders, v.toggles.Light}
		ts.Layers = [NumSamplers]texture.Layer{texture.Earth, texture.Clouds, texture.Borders, texture.Water}
	}

	for i := range ts.Enable {
		if !ts.Enable[i] {
			continue
		}
		h, err := v.slots.Handle(ts.Layers[i])
		if err != nil {
			ts.Enable[i] = false
			v.warnOnce(ts.Layers[i], err)
			continue
		}
		ts.Handles[i] = h
	}

	if !ts.Enable[0] {
		ts.Enable = [NumSamplers]bool{}
	}
	return ts
}

func (v *Viewer) warnOnce(l texture.Layer, err error) {
	if v.warned[l] {
		return
	}
	v.warned[l] = true
	v.log.Debug("texture layer unavailable, skipping", zap.Stringer("layer", l), zap.Error(err))
}

// TextureReady marks a layer uploaded. Backends call this after the GPU
// (or browser) has the texture.
func (v *Viewer) TextureReady(l texture.Layer, h texture.Handle, width, height int) {
	v.slots.MarkReady(l, h, width, height)
	v.warned[l] = false
	v.log.Info("texture ready", zap.Stringer("layer", l), zap.Int("width", width), zap.Int("height", height))
}

// TextureFailed marks a layer as failed to load.
func (v *Viewer) TextureFailed(l texture.Layer, err error) {
	v.slots.MarkFailed(l, err)
	v.log.Warn("texture failed", zap.Stringer("layer", l), zap.Error(err))
}
