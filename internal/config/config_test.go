package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1024 || cfg.Window.Height != 768 {
		t.Errorf("expected 1024x768, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if cfg.Mesh.Algorithm != "latlon" || cfg.Mesh.Resolution != 48 {
		t.Errorf("expected latlon/48, got %s/%d", cfg.Mesh.Algorithm, cfg.Mesh.Resolution)
	}
	if cfg.Buffers.MaxVertices != 100000 || cfg.Buffers.MaxIndices != 120000 {
		t.Errorf("unexpected buffer capacity %+v", cfg.Buffers)
	}
	if cfg.Camera.Eye != [3]float32{-20000, 2000, 30000} {
		t.Errorf("unexpected eye %v", cfg.Camera.Eye)
	}
	if cfg.Camera.ZoomMin != 12000 || cfg.Camera.ZoomMax != 70000 {
		t.Errorf("unexpected zoom range [%g,%g]", cfg.Camera.ZoomMin, cfg.Camera.ZoomMax)
	}
	if !cfg.Scene.Light || !cfg.Scene.Animate || !cfg.Scene.Clouds || cfg.Scene.Borders || cfg.Scene.Checkerboard {
		t.Errorf("unexpected default toggles %+v", cfg.Scene)
	}
	if cfg.Server.WriteTimeout != 5*time.Second {
		t.Errorf("expected write timeout 5s, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true

mesh:
  algorithm: icosphere
  subdivisions: 4

camera:
  mode: free
  eye: [0, 0, 25000]
  look_at: [0, 100, 0]

scene:
  light_space: eye
  borders: true

server:
  addr: ":9000"
  write_timeout: 2s

logging:
  level: "debug"
  log_file: "globe.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 || !cfg.Window.Fullscreen {
		t.Errorf("unexpected window %+v", cfg.Window)
	}
	if cfg.Mesh.Algorithm != "icosphere" || cfg.Mesh.Subdivisions != 4 {
		t.Errorf("unexpected mesh %+v", cfg.Mesh)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Mesh.Resolution != 48 {
		t.Errorf("expected default resolution to survive, got %d", cfg.Mesh.Resolution)
	}
	if cfg.Camera.Mode != "free" || cfg.Camera.Eye != [3]float32{0, 0, 25000} || cfg.Camera.LookAt != [3]float32{0, 100, 0} {
		t.Errorf("unexpected camera %+v", cfg.Camera)
	}
	if cfg.Scene.LightSpace != "eye" || !cfg.Scene.Borders || !cfg.Scene.Clouds {
		t.Errorf("unexpected scene %+v", cfg.Scene)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.WriteTimeout != 2*time.Second {
		t.Errorf("unexpected server %+v", cfg.Server)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "globe.log" {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"syntax", "window:\n  width: not a number\n  invalid syntax here\n"},
		{"unknown key", "mesh:\n  algorithim: latlon\n"},
		{"short vector", "camera:\n  eye: [1, 2]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if err := loadFromFile(Default(), path); err == nil {
				t.Error("expected error loading invalid YAML, got nil")
			}
		})
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if cfg.Mesh.Resolution != 48 {
		t.Error("empty file should leave defaults")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"algorithm", func(c *Config) { c.Mesh.Algorithm = "cube" }, "mesh.algorithm"},
		{"pole", func(c *Config) { c.Mesh.PoleTexCoord = "north" }, "mesh.pole_texcoord"},
		{"resolution", func(c *Config) { c.Mesh.Resolution = 2 }, "mesh.resolution"},
		{"subdivisions", func(c *Config) { c.Mesh.Algorithm = "icosphere"; c.Mesh.Subdivisions = 9 }, "mesh.subdivisions"},
		{"buffers", func(c *Config) { c.Buffers.MaxIndices = 0 }, "buffers"},
		{"camera mode", func(c *Config) { c.Camera.Mode = "fly" }, "camera.mode"},
		{"zoom", func(c *Config) { c.Camera.ZoomMin = 80000 }, "zoom"},
		{"clip", func(c *Config) { c.Camera.Far = 0.5 }, "clip"},
		{"window", func(c *Config) { c.Window.Height = 0 }, "window"},
		{"tick rate", func(c *Config) { c.Server.TickRate = 0 }, "tick_rate"},
		{"sun", func(c *Config) { c.Scene.Sun = &SunConfig{Lat: 95} }, "scene.sun"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error to mention %q, got %v", tt.field, err)
			}
		})
	}

	// Icosphere ignores the lat/lon resolution.
	cfg := Default()
	cfg.Mesh.Algorithm = "icosphere"
	cfg.Mesh.Resolution = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTexturePath(t *testing.T) {
	cfg := Default()
	cfg.Textures.Dir = "assets"
	if got := cfg.TexturePath("earth.jpg"); got != filepath.Join("assets", "earth.jpg") {
		t.Errorf("unexpected path %s", got)
	}
	abs := filepath.Join(t.TempDir(), "x.png")
	if got := cfg.TexturePath(abs); got != abs {
		t.Errorf("absolute path should pass through, got %s", got)
	}
	if got := cfg.TexturePath(""); got != "" {
		t.Errorf("empty should stay empty, got %s", got)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Mesh.Algorithm = "icosphere"
	cfg.Camera.Eye = [3]float32{1, 2, 3}
	cfg.Server.WriteTimeout = 750 * time.Millisecond
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Mesh.Algorithm != "icosphere" || loaded.Camera.Eye != [3]float32{1, 2, 3} {
		t.Errorf("round trip lost values: %+v %+v", loaded.Mesh, loaded.Camera)
	}
	if loaded.Server.WriteTimeout != 750*time.Millisecond {
		t.Errorf("expected 750ms, got %v", loaded.Server.WriteTimeout)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "mesh flags",
			setup: func() {
				*flagAlgo = "icosphere"
				*flagSubdivisions = 2
				*flagResolution = 24
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Mesh.Algorithm != "icosphere" || cfg.Mesh.Subdivisions != 2 || cfg.Mesh.Resolution != 24 {
					t.Errorf("unexpected mesh %+v", cfg.Mesh)
				}
			},
			teardown: func() {
				*flagAlgo = ""
				*flagSubdivisions = -1
				*flagResolution = 0
			},
		},
		{
			name:  "zero subdivisions is an override",
			setup: func() { *flagSubdivisions = 0 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Mesh.Subdivisions != 0 {
					t.Errorf("expected 0 subdivisions, got %d", cfg.Mesh.Subdivisions)
				}
			},
			teardown: func() { *flagSubdivisions = -1 },
		},
		{
			name: "camera and paths",
			setup: func() {
				*flagCamera = "free"
				*flagTextures = "/srv/tex"
				*flagAddr = ":9999"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Camera.Mode != "free" || cfg.Textures.Dir != "/srv/tex" || cfg.Server.Addr != ":9999" {
					t.Errorf("flags not applied: %s %s %s", cfg.Camera.Mode, cfg.Textures.Dir, cfg.Server.Addr)
				}
			},
			teardown: func() {
				*flagCamera = ""
				*flagTextures = ""
				*flagAddr = ""
			},
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("mesh:\n  algorithm: cube\n"), 0644); err != nil {
		t.Fatal(err)
	}
	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected invalid config to be rejected")
	}
}
