// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/midgard-globe/internal/geometry"
	"github.com/Faultbox/midgard-globe/internal/meshbuf"
)

// Config holds all viewer settings.
type Config struct {
	Window      WindowConfig     `yaml:"window"`
	Mesh        MeshConfig       `yaml:"mesh"`
	Buffers     BuffersConfig    `yaml:"buffers"`
	Camera      CameraConfig     `yaml:"camera"`
	Scene       SceneConfig      `yaml:"scene"`
	Textures    TexturesConfig   `yaml:"textures"`
	Server      ServerConfig     `yaml:"server"`
	Screenshots ScreenshotConfig `yaml:"screenshots"`
	Logging     LoggingConfig    `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// MeshConfig selects the sphere tessellation.
type MeshConfig struct {
	Algorithm    string `yaml:"algorithm"`     // latlon | icosphere
	Resolution   int    `yaml:"resolution"`    // lat/lon bands
	Subdivisions int    `yaml:"subdivisions"`  // icosphere depth
	PoleTexCoord string `yaml:"pole_texcoord"` // midpoint | center
}

// BuffersConfig sizes the shared vertex and index buffers.
type BuffersConfig struct {
	MaxVertices int `yaml:"max_vertices"`
	MaxIndices  int `yaml:"max_indices"`
}

// CameraConfig holds camera settings.
type CameraConfig struct {
	Mode     string     `yaml:"mode"` // orbit | free
	Eye      [3]float32 `yaml:"eye"`
	LookAt   [3]float32 `yaml:"look_at"`
	FovY     float32    `yaml:"fov_y"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
	ZoomMin  float32    `yaml:"zoom_min"`
	ZoomMax  float32    `yaml:"zoom_max"`
	ZoomStep float32    `yaml:"zoom_step"`
}

// SceneConfig holds scene defaults.
type SceneConfig struct {
	LightSpace       string  `yaml:"light_space"` // world | eye
	LightOrbit       float32 `yaml:"light_orbit"` // degrees per second, 0 = fixed
	AnimateDegPerSec float32 `yaml:"animate_deg_per_sec"`
	MaxObjects       int     `yaml:"max_objects"`
	Light            bool    `yaml:"light"`
	Animate          bool    `yaml:"animate"`
	Checkerboard     bool    `yaml:"checkerboard"`
	Clouds           bool    `yaml:"clouds"`
	Borders          bool    `yaml:"borders"`

	// Sun, when set, places the light over a point of the globe.
	Sun *SunConfig `yaml:"sun"`
}

// SunConfig is a subsolar point in degrees.
type SunConfig struct {
	Lat float32 `yaml:"lat"`
	Lon float32 `yaml:"lon"`
}

// TexturesConfig holds texture layer sources.
type TexturesConfig struct {
	Dir            string `yaml:"dir"`
	Earth          string `yaml:"earth"`
	Clouds         string `yaml:"clouds"`
	Borders        string `yaml:"borders"`
	Water          string `yaml:"water"`
	CheckerSize    int    `yaml:"checker_size"`
	CheckerSquares int    `yaml:"checker_squares"`
	Workers        int    `yaml:"workers"`
	Watch          bool   `yaml:"watch"`
}

// ServerConfig holds the browser front end settings.
type ServerConfig struct {
	Addr          string        `yaml:"addr"`
	TickRate      int           `yaml:"tick_rate"` // frames per second pushed to each session
	MaxSessions   int           `yaml:"max_sessions"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	AllowedOrigin string        `yaml:"allowed_origin"` // empty allows any
}

// ScreenshotConfig holds screenshot settings.
type ScreenshotConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Midgard Globe",
			Width:  1024,
			Height: 768,
			VSync:  true,
		},
		Mesh: MeshConfig{
			Algorithm:    "latlon",
			Resolution:   geometry.DefaultResolution,
			Subdivisions: geometry.DefaultSubdivisions,
			PoleTexCoord: "midpoint",
		},
		Buffers: BuffersConfig{
			MaxVertices: meshbuf.DefaultMaxVertices,
			MaxIndices:  meshbuf.DefaultMaxIndices,
		},
		Camera: CameraConfig{
			Mode:     "orbit",
			Eye:      [3]float32{-20000, 2000, 30000},
			FovY:     22,
			Near:     1,
			Far:      1e6,
			ZoomMin:  12000,
			ZoomMax:  70000,
			ZoomStep: 1000,
		},
		Scene: SceneConfig{
			LightSpace:       "world",
			AnimateDegPerSec: 6,
			MaxObjects:       16,
			Light:            true,
			Animate:          true,
			Clouds:           true,
		},
		Textures: TexturesConfig{
			Dir:            "textures",
			Earth:          "no_clouds.jpg",
			Clouds:         "fair_clouds.jpg",
			Borders:        "boundaries.png",
			Water:          "cities.png",
			CheckerSize:    512,
			CheckerSquares: 32,
			Workers:        2,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			TickRate:     30,
			MaxSessions:  32,
			WriteTimeout: 5 * time.Second,
		},
		Screenshots: ScreenshotConfig{
			Dir:    "screenshots",
			Prefix: "globe",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks values that would otherwise fail deep inside startup.
func (c *Config) Validate() error {
	if _, err := geometry.New(c.Mesh.Algorithm, geometry.Options{}); err != nil {
		return fmt.Errorf("mesh.algorithm: %w", err)
	}
	if _, err := geometry.ParsePoleMode(c.Mesh.PoleTexCoord); err != nil {
		return fmt.Errorf("mesh.pole_texcoord: %w", err)
	}
	if c.Mesh.Algorithm == "latlon" && c.Mesh.Resolution < geometry.MinResolution {
		return fmt.Errorf("mesh.resolution must be at least %d, got %d", geometry.MinResolution, c.Mesh.Resolution)
	}
	if c.Mesh.Algorithm == "icosphere" && (c.Mesh.Subdivisions < 0 || c.Mesh.Subdivisions > geometry.MaxSubdivisions) {
		return fmt.Errorf("mesh.subdivisions must be in [0,%d], got %d", geometry.MaxSubdivisions, c.Mesh.Subdivisions)
	}
	if c.Buffers.MaxVertices <= 0 || c.Buffers.MaxIndices <= 0 {
		return fmt.Errorf("buffers: capacities must be positive, got %d vertices %d indices",
			c.Buffers.MaxVertices, c.Buffers.MaxIndices)
	}
	if c.Camera.Mode != "orbit" && c.Camera.Mode != "free" {
		return fmt.Errorf("camera.mode must be orbit or free, got %q", c.Camera.Mode)
	}
	if c.Camera.ZoomMin <= 0 || c.Camera.ZoomMin > c.Camera.ZoomMax {
		return fmt.Errorf("camera: invalid zoom range [%g,%g]", c.Camera.ZoomMin, c.Camera.ZoomMax)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera: invalid clip planes near=%g far=%g", c.Camera.Near, c.Camera.Far)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window: invalid size %dx%d", c.Window.Width, c.Window.Height)
	}
	if sun := c.Scene.Sun; sun != nil && (sun.Lat < -90 || sun.Lat > 90 || sun.Lon < -180 || sun.Lon > 180) {
		return fmt.Errorf("scene.sun: %g,%g is not a valid latitude and longitude", sun.Lat, sun.Lon)
	}
	if c.Server.TickRate <= 0 {
		return fmt.Errorf("server.tick_rate must be positive, got %d", c.Server.TickRate)
	}
	return nil
}
