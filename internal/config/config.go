// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/splay-terrain/internal/engine/material"
	"github.com/Faultbox/splay-terrain/internal/lod"
)

// Shading modes for the viewer.
const (
	ShadingTexture = "texture"
	ShadingHeight  = "height"
)

// Config holds all viewer settings.
type Config struct {
	Terrain  TerrainConfig  `yaml:"terrain"`
	Data     DataConfig     `yaml:"data"`
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TerrainConfig holds the LOD parameters.
type TerrainConfig struct {
	Constants      material.Constants `yaml:"constants"`
	Levels         int                `yaml:"levels"`
	Descale        int                `yaml:"descale"`
	BoundsInterval int                `yaml:"bounds_interval"`
}

// DataConfig holds input file paths. An empty heightmap path makes the
// viewer synthesize one from Seed.
type DataConfig struct {
	Heightmap string `yaml:"heightmap"`
	Texture   string `yaml:"texture"`
	Seed      int64  `yaml:"seed"`
	SynthSize int    `yaml:"synth_size"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPSLimit   int    `yaml:"fps_limit"`
	Wireframe  bool   `yaml:"wireframe"`
	Shading    string `yaml:"shading"`
}

// CameraConfig holds fly camera settings.
type CameraConfig struct {
	Speed     float32 `yaml:"speed"`
	FOV       float32 `yaml:"fov"`
	MinHeight float32 `yaml:"min_height"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			Constants:      material.DefaultConstants(),
			Levels:         lod.DefaultLevels,
			Descale:        lod.DefaultDescale,
			BoundsInterval: lod.DefaultBoundsInterval,
		},
		Data: DataConfig{
			Seed:      1,
			SynthSize: 512,
		},
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
			Shading:    ShadingTexture,
		},
		Camera: CameraConfig{
			Speed:     500,
			FOV:       60,
			MinHeight: 10,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings the viewer cannot run with.
func (c *Config) Validate() error {
	if err := c.Terrain.Constants.Validate(); err != nil {
		return err
	}
	switch c.Graphics.Shading {
	case ShadingTexture, ShadingHeight:
	default:
		return fmt.Errorf("unknown shading %q", c.Graphics.Shading)
	}
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Graphics.Width, c.Graphics.Height)
	}
	if c.Data.Heightmap == "" && c.Data.SynthSize <= 0 {
		return fmt.Errorf("no heightmap and synth size %d", c.Data.SynthSize)
	}
	return nil
}

// LODOptions maps the terrain section onto manager options. Default already
// fills the section, so zero levels and zero elevation are taken literally.
func (c *Config) LODOptions() lod.Options {
	return lod.Options{
		Constants:         c.Terrain.Constants,
		Levels:            c.Terrain.Levels,
		LevelsSet:         true,
		ElevationSet:      true,
		HeightDataDescale: c.Terrain.Descale,
		BoundsInterval:    c.Terrain.BoundsInterval,
		Load:              lod.LoadManual,
	}
}
