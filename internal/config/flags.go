package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagLevels    = flag.Int("levels", 0, "Number of LOD rings around the centre block")
	flagHeightmap = flag.String("heightmap", "", "Heightmap image path")
	flagTexture   = flag.String("texture", "", "Colour texture image path")
	flagWireframe = flag.Bool("wireframe", false, "Render tiles as wireframe")
	flagWidth     = flag.Int("width", 0, "Window width")
	flagHeight    = flag.Int("height", 0, "Window height")
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
	if *flagLevels != 0 {
		cfg.Terrain.Levels = *flagLevels
	}
	if *flagHeightmap != "" {
		cfg.Data.Heightmap = *flagHeightmap
	}
	if *flagTexture != "" {
		cfg.Data.Texture = *flagTexture
	}
	if *flagWireframe {
		cfg.Graphics.Wireframe = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}
