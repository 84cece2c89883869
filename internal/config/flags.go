package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagAlgo         = flag.String("algo", "", "Sphere tessellation: latlon or icosphere")
	flagResolution   = flag.Int("resolution", 0, "Lat/lon band count")
	flagSubdivisions = flag.Int("subdivisions", -1, "Icosphere subdivision depth")
	flagCamera       = flag.String("camera", "", "Camera mode: orbit or free")
	flagTextures     = flag.String("textures", "", "Texture directory")
	flagAddr         = flag.String("addr", "", "Listen address for the browser viewer")
	flagWindowed     = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen   = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth        = flag.Int("width", 0, "Window width")
	flagHeight       = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagAlgo != "" {
		cfg.Mesh.Algorithm = *flagAlgo
	}
	if *flagResolution > 0 {
		cfg.Mesh.Resolution = *flagResolution
	}
	if *flagSubdivisions >= 0 {
		cfg.Mesh.Subdivisions = *flagSubdivisions
	}
	if *flagCamera != "" {
		cfg.Camera.Mode = *flagCamera
	}
	if *flagTextures != "" {
		cfg.Textures.Dir = *flagTextures
	}
	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
}
