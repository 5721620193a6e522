package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/splay-terrain/internal/engine/material"
	"github.com/Faultbox/splay-terrain/internal/lod"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Terrain defaults
	if cfg.Terrain.Constants != material.DefaultConstants() {
		t.Errorf("expected default constants, got %+v", cfg.Terrain.Constants)
	}
	if cfg.Terrain.Levels != 3 {
		t.Errorf("expected 3 levels, got %d", cfg.Terrain.Levels)
	}
	if cfg.Terrain.BoundsInterval != 8 {
		t.Errorf("expected bounds interval 8, got %d", cfg.Terrain.BoundsInterval)
	}

	// Graphics defaults
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Graphics.Shading != ShadingTexture {
		t.Errorf("expected texture shading, got %s", cfg.Graphics.Shading)
	}

	// Logging defaults
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
terrain:
  constants:
    elevation: 512
    tessellation: 64
  levels: 5
  bounds_interval: 2

data:
  heightmap: "maps/island.png"
  texture: "maps/island_color.png"

graphics:
  width: 1920
  height: 1080
  wireframe: true
  shading: height

logging:
  level: "debug"
  log_file: "terrain.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Terrain.Constants.MaxElevation != 512 {
		t.Errorf("expected elevation 512, got %v", cfg.Terrain.Constants.MaxElevation)
	}
	if cfg.Terrain.Constants.Tessellation != 64 {
		t.Errorf("expected tessellation 64, got %d", cfg.Terrain.Constants.Tessellation)
	}
	// Keys missing from the file keep their defaults.
	if cfg.Terrain.Constants.WorldSizeX != 32768 {
		t.Errorf("expected default world size, got %v", cfg.Terrain.Constants.WorldSizeX)
	}
	if cfg.Terrain.Levels != 5 {
		t.Errorf("expected 5 levels, got %d", cfg.Terrain.Levels)
	}
	if cfg.Terrain.Descale != 1 {
		t.Errorf("expected default descale 1, got %d", cfg.Terrain.Descale)
	}
	if cfg.Data.Heightmap != "maps/island.png" {
		t.Errorf("unexpected heightmap %s", cfg.Data.Heightmap)
	}
	if !cfg.Graphics.Wireframe {
		t.Error("expected wireframe to be true")
	}
	if cfg.Graphics.Shading != ShadingHeight {
		t.Errorf("expected height shading, got %s", cfg.Graphics.Shading)
	}
	if cfg.Logging.LogFile != "terrain.log" {
		t.Errorf("expected log file 'terrain.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad shading", func(c *Config) { c.Graphics.Shading = "phong" }},
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }},
		{"bad clip edge", func(c *Config) { c.Terrain.Constants.ClipEdge = 0.75 }},
		{"nothing to load", func(c *Config) { c.Data.SynthSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	cfg := Default()
	cfg.Data.SynthSize = 0
	cfg.Data.Heightmap = "height.png"
	if err := cfg.Validate(); err != nil {
		t.Errorf("heightmap path should make synth size irrelevant: %v", err)
	}
}

func TestLODOptions(t *testing.T) {
	cfg := Default()
	cfg.Terrain.Levels = -1
	cfg.Terrain.Descale = 4

	opts := cfg.LODOptions()
	if opts.Levels != -1 || opts.HeightDataDescale != 4 {
		t.Errorf("terrain section not mapped: %+v", opts)
	}
	if opts.Load != lod.LoadManual {
		t.Errorf("viewer drives loading itself, got %v", opts.Load)
	}
	if !opts.LevelsSet || !opts.ElevationSet {
		t.Error("configured levels and elevation should be taken literally")
	}
	if opts.Constants != cfg.Terrain.Constants {
		t.Error("constants not carried over")
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
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
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
			name:  "negative levels",
			setup: func() { *flagLevels = -1 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Terrain.Levels != -1 {
					t.Errorf("expected levels -1, got %d", cfg.Terrain.Levels)
				}
			},
			teardown: func() { *flagLevels = 0 },
		},
		{
			name: "data paths",
			setup: func() {
				*flagHeightmap = "h.png"
				*flagTexture = "c.png"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Data.Heightmap != "h.png" || cfg.Data.Texture != "c.png" {
					t.Errorf("unexpected data paths %+v", cfg.Data)
				}
			},
			teardown: func() {
				*flagHeightmap = ""
				*flagTexture = ""
			},
		},
		{
			name:  "wireframe flag",
			setup: func() { *flagWireframe = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Wireframe {
					t.Error("expected wireframe with wireframe flag")
				}
			},
			teardown: func() { *flagWireframe = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
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
graphics:
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

	// Width from flag, height from file
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  shading: phong\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected invalid shading to fail Load")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Terrain.Levels = 6
	cfg.Data.Heightmap = "terrain.png"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Terrain.Levels != 6 || loaded.Data.Heightmap != "terrain.png" {
		t.Errorf("saved values not restored: %+v", loaded)
	}
}
