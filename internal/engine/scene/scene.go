// Package scene draws the terrain tiles managed by package lod, plus debug
// overlays.
package scene

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/splay-terrain/internal/engine/camera"
	"github.com/Faultbox/splay-terrain/internal/engine/debug"
	"github.com/Faultbox/splay-terrain/internal/engine/material"
	"github.com/Faultbox/splay-terrain/internal/lod"
)

// overlayHeight lifts tile outlines above the flat grid.
const overlayHeight = 1

// Config contains scene configuration options.
type Config struct {
	Width     int32
	Height    int32
	Wireframe bool
	ShowTiles bool
}

// DefaultConfig returns a default scene configuration.
func DefaultConfig() Config {
	return Config{
		Width:  1280,
		Height: 720,
	}
}

// Scene renders one terrain and its tile overlay.
type Scene struct {
	config Config

	Terrain *TerrainRenderer
	overlay *OverlayRenderer

	// Tile count the overlay was built for
	overlayTiles int
}

// New creates the scene renderers. The GL context must be current.
func New(cfg Config) (*Scene, error) {
	overlay, err := NewOverlayRenderer()
	if err != nil {
		return nil, err
	}
	s := &Scene{
		config:       cfg,
		Terrain:      NewTerrainRenderer(),
		overlay:      overlay,
		overlayTiles: -1,
	}
	s.Terrain.Wireframe = cfg.Wireframe
	return s, nil
}

// FallbackTexture uploads a 1x1 texture of c, for hosts without a colour map.
func (s *Scene) FallbackTexture(c color.Color, name string) material.TextureRef {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, c)
	return s.Terrain.UploadTexture(img, name)
}

// SetWireframe toggles line rendering of the terrain.
func (s *Scene) SetWireframe(on bool) {
	s.config.Wireframe = on
	s.Terrain.Wireframe = on
}

// Wireframe reports whether wireframe rendering is on.
func (s *Scene) Wireframe() bool { return s.config.Wireframe }

// SetShowTiles toggles the tile outline overlay.
func (s *Scene) SetShowTiles(on bool) { s.config.ShowTiles = on }

// ShowTiles reports whether the tile overlay is on.
func (s *Scene) ShowTiles() bool { return s.config.ShowTiles }

// Resize updates the viewport size used for projection.
func (s *Scene) Resize(width, height int32) {
	s.config.Width = width
	s.config.Height = height
}

// Aspect returns the viewport aspect ratio.
func (s *Scene) Aspect() float32 {
	if s.config.Height <= 0 {
		return 1
	}
	return float32(s.config.Width) / float32(s.config.Height)
}

// Render draws the terrain of mgr from cam.
func (s *Scene) Render(cam *camera.FlyCamera, mgr *lod.Manager) {
	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix(s.Aspect())

	s.Terrain.Render(view, proj, mgr.ModelMatrix)

	if !s.config.ShowTiles {
		return
	}
	tiles := mgr.Tiles()
	if len(tiles) != s.overlayTiles {
		s.overlay.SetLines(debug.TileOutlines(tiles, overlayHeight))
		s.overlayTiles = len(tiles)
	}
	offset := mgr.Offset()
	model := mgl32.Translate3D(float32(offset.X()), float32(offset.Y()), 0)
	s.overlay.Render(proj.Mul4(view).Mul4(model))
}

// Stats returns drawn and culled tile counts of the last frame.
func (s *Scene) Stats() (drawn, culled int) {
	return s.Terrain.Drawn, s.Terrain.Culled
}

// Destroy releases all GPU resources.
func (s *Scene) Destroy() {
	if s.overlay != nil {
		s.overlay.Destroy()
	}
	if s.Terrain != nil {
		s.Terrain.Destroy()
	}
}
