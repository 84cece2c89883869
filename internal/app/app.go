// Package app wires configuration into the packed meshes, scenes and
// viewers shared by every front end.
package app

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/config"
	"github.com/Faultbox/midgard-globe/internal/engine/camera"
	"github.com/Faultbox/midgard-globe/internal/engine/texture"
	"github.com/Faultbox/midgard-globe/internal/geometry"
	"github.com/Faultbox/midgard-globe/internal/logger"
	"github.com/Faultbox/midgard-globe/internal/meshbuf"
	"github.com/Faultbox/midgard-globe/internal/scene"
	"github.com/Faultbox/midgard-globe/internal/screenshot"
	"github.com/Faultbox/midgard-globe/internal/viewer"
)

// GlobeMesh is the name the configured sphere is packed under.
const GlobeMesh = "sphere"

// Globe is the startup state: the packed buffers and the settings needed
// to create viewers over them. The buffers are read-only after Build.
type Globe struct {
	Config *config.Config
	Writer *meshbuf.Writer
	Meshes map[string]*meshbuf.Mesh
	Shots  *screenshot.Capture

	log *zap.Logger
}

// InitLogging configures the global logger from cfg.
func InitLogging(cfg *config.Config) error {
	return logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
}

// Build generates the configured sphere and packs it.
func Build(cfg *config.Config) (*Globe, error) {
	gen, err := Generator(cfg)
	if err != nil {
		return nil, err
	}
	w, err := meshbuf.NewWriter(meshbuf.Capacity{
		Vertices: cfg.Buffers.MaxVertices,
		Indices:  cfg.Buffers.MaxIndices,
	})
	if err != nil {
		return nil, err
	}
	g, err := gen.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating %s: %w", gen.Name(), err)
	}
	m, err := meshbuf.Pack(w, GlobeMesh, g)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", gen.Name(), err)
	}

	globe := &Globe{
		Config: cfg,
		Writer: w,
		Meshes: map[string]*meshbuf.Mesh{GlobeMesh: m},
		Shots:  screenshot.New(cfg.Screenshots.Dir, cfg.Screenshots.Prefix),
		log:    logger.Named("app"),
	}
	u := w.Usage()
	globe.log.Info("globe packed",
		zap.String("algorithm", gen.Name()),
		zap.Int("vertices", m.VertexCount),
		zap.Int("triangles", m.TriangleCount),
		zap.Int("buffer_vertices", u.Vertices),
		zap.Int("buffer_indices", u.Indices),
	)
	return globe, nil
}

// Generator returns the sphere generator selected by cfg.
func Generator(cfg *config.Config) (geometry.Generator, error) {
	pole, err := geometry.ParsePoleMode(cfg.Mesh.PoleTexCoord)
	if err != nil {
		return nil, err
	}
	return geometry.New(cfg.Mesh.Algorithm, geometry.Options{
		Resolution:   cfg.Mesh.Resolution,
		Subdivisions: cfg.Mesh.Subdivisions,
		Pole:         pole,
	})
}

// SceneConfig maps the scene section of cfg.
func SceneConfig(cfg *config.Config) (scene.Config, error) {
	space, err := scene.ParseSpace(cfg.Scene.LightSpace)
	if err != nil {
		return scene.Config{}, err
	}
	sc := scene.Config{
		Mesh:       GlobeMesh,
		LightSpace: space,
		LightOrbit: cfg.Scene.LightOrbit,
		MaxObjects: cfg.Scene.MaxObjects,
	}
	if sun := cfg.Scene.Sun; sun != nil {
		sc.Sun = &[2]float32{sun.Lat, sun.Lon}
	}
	return sc, nil
}

// ViewerConfig maps the camera and scene sections of cfg.
func ViewerConfig(cfg *config.Config) viewer.Config {
	c := cfg.Camera
	orbit := camera.DefaultOrbitConfig()
	orbit.Radius = scene.EarthRadius
	orbit.ZoomMin = c.ZoomMin
	orbit.ZoomMax = c.ZoomMax
	orbit.ZoomStep = c.ZoomStep
	orbit.Eye = mgl32.Vec3(c.Eye)

	return viewer.Config{
		Camera:  viewer.CameraMode(c.Mode),
		Orbit:   orbit,
		FreeEye: mgl32.Vec3(c.Eye),
		FreeAt:  mgl32.Vec3(c.LookAt),
		Projection: camera.Projection{
			FovY:   c.FovY,
			Aspect: float32(cfg.Window.Width) / float32(cfg.Window.Height),
			Near:   c.Near,
			Far:    c.Far,
		},
		Mesh:             GlobeMesh,
		AnimateDegPerSec: cfg.Scene.AnimateDegPerSec,
		Toggles: viewer.Toggles{
			Light:        cfg.Scene.Light,
			Animate:      cfg.Scene.Animate,
			Checkerboard: cfg.Scene.Checkerboard,
			Clouds:       cfg.Scene.Clouds,
			Borders:      cfg.Scene.Borders,
		},
	}
}

// NewViewer creates an independent scene and viewer over the shared
// buffers. Each display or browser session gets its own.
func (g *Globe) NewViewer() (*viewer.Viewer, error) {
	sc, err := SceneConfig(g.Config)
	if err != nil {
		return nil, err
	}
	s, err := scene.New(sc, g.Meshes)
	if err != nil {
		return nil, err
	}
	return viewer.New(ViewerConfig(g.Config), s, texture.NewSlots())
}

// TextureSources returns the file for each file-backed layer. The
// checkerboard is generated and has no entry.
func TextureSources(cfg *config.Config) map[texture.Layer]string {
	t := cfg.Textures
	out := make(map[texture.Layer]string, 4)
	for l, f := range map[texture.Layer]string{
		texture.Earth:   t.Earth,
		texture.Clouds:  t.Clouds,
		texture.Borders: t.Borders,
		texture.Water:   t.Water,
	} {
		if f != "" {
			out[l] = cfg.TexturePath(f)
		}
	}
	return out
}
