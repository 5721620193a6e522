// Package viewer implements the interactive terrain viewer loop.
package viewer

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/splay-terrain/internal/config"
	"github.com/Faultbox/splay-terrain/internal/engine/camera"
	"github.com/Faultbox/splay-terrain/internal/engine/debug"
	"github.com/Faultbox/splay-terrain/internal/engine/input"
	"github.com/Faultbox/splay-terrain/internal/engine/material"
	"github.com/Faultbox/splay-terrain/internal/engine/renderer"
	"github.com/Faultbox/splay-terrain/internal/engine/scene"
	"github.com/Faultbox/splay-terrain/internal/engine/texture"
	"github.com/Faultbox/splay-terrain/internal/engine/window"
	"github.com/Faultbox/splay-terrain/internal/lod"
	"github.com/Faultbox/splay-terrain/internal/logger"
	"github.com/Faultbox/splay-terrain/pkg/heightmap"
)

const (
	windowTitle   = "Splay Terrain"
	synthOctaves  = 6
	screenshotDir = "screenshots"
)

// Viewer is the main viewer instance.
type Viewer struct {
	cfg     *config.Config
	log     *zap.Logger
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	scene    *scene.Scene
	input    *input.Input
	camera   *camera.FlyCamera
	terrain  *lod.Manager
	shots    *debug.ScreenshotCapture

	// Set by F12, captured after the next frame is drawn
	wantShot bool
}

// New creates the window, GL state and terrain manager. Tiles are created
// one per frame once Run starts.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:   cfg,
		log:   logger.Named("viewer"),
		shots: debug.NewScreenshotCapture(screenshotDir, "terrain"),
	}

	v.log.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Int("levels", cfg.Terrain.Levels),
	)

	var err error
	v.window, err = window.New(window.Config{
		Title:      windowTitle,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer after window, since the GL context must exist
	v.renderer, err = renderer.New(renderer.Config{
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Background: [3]float32{0.55, 0.7, 0.85},
	})
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	sceneCfg := scene.DefaultConfig()
	sceneCfg.Width = int32(cfg.Graphics.Width)
	sceneCfg.Height = int32(cfg.Graphics.Height)
	sceneCfg.Wireframe = cfg.Graphics.Wireframe
	v.scene, err = scene.New(sceneCfg)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}

	v.input = input.New()
	input.SetRelativeMouse(true)

	if err := v.createTerrain(); err != nil {
		v.Close()
		return nil, err
	}

	v.camera = camera.NewFlyCamera()
	v.camera.Speed = cfg.Camera.Speed
	v.camera.FOV = cfg.Camera.FOV
	v.camera.MinHeight = cfg.Camera.MinHeight
	c := cfg.Terrain.Constants
	v.camera.Far = float32(c.ViewportSize)
	// The vertex stage samples the heightmap at world - offset/2, so a viewer
	// at the world's far corner looks at the middle of the map.
	v.camera.Position = mgl32.Vec3{float32(c.WorldSizeX), float32(c.WorldSizeY), float32(c.MaxElevation) * 1.5}

	v.log.Info("viewer initialized")
	return v, nil
}

func (v *Viewer) createTerrain() error {
	heightImg, err := v.heightmapImage()
	if err != nil {
		return err
	}

	heightRef := v.scene.Terrain.UploadTexture(heightImg, material.UniformHeightmap)
	colorRef, err := v.colorTexture(heightImg)
	if err != nil {
		return err
	}

	opts := v.cfg.LODOptions()
	opts.Heightmap = heightImg
	opts.Uniforms = material.Uniforms{
		material.UniformHeightmap: heightRef,
		material.UniformTexture:   colorRef,
	}
	if v.cfg.Graphics.Shading == config.ShadingHeight {
		opts.FragmentSource = material.HeightFragment
	}
	opts.OnStart = func(phase string, done, total int) {
		v.log.Info("terrain phase started", zap.String("phase", phase), zap.Int("total", total))
	}
	opts.OnProgress = func(phase string, done, total int) {
		v.log.Debug("terrain progress", zap.String("phase", phase), zap.Int("done", done), zap.Int("total", total))
	}
	opts.OnLoad = func() {
		drawn, culled := v.scene.Stats()
		v.log.Info("all tiles attached", zap.Int("drawn", drawn), zap.Int("culled", culled))
	}
	opts.OnError = func(err error) {
		v.log.Error("terrain failed", zap.Error(err))
	}

	v.terrain, err = lod.New(v.scene.Terrain, opts)
	if err != nil {
		return fmt.Errorf("failed to create terrain: %w", err)
	}
	if err := v.terrain.Load(); err != nil {
		return fmt.Errorf("failed to load terrain: %w", err)
	}
	return nil
}

// heightmapImage loads the configured heightmap or synthesizes one.
func (v *Viewer) heightmapImage() (image.Image, error) {
	data := v.cfg.Data
	if data.Heightmap != "" {
		img, err := texture.Load(data.Heightmap)
		if err != nil {
			return nil, fmt.Errorf("loading heightmap: %w", err)
		}
		return img, nil
	}

	v.log.Info("synthesizing heightmap", zap.Int64("seed", data.Seed), zap.Int("size", data.SynthSize))
	r, err := heightmap.Synthesize(data.SynthSize, data.SynthSize, data.Seed, synthOctaves)
	if err != nil {
		return nil, fmt.Errorf("synthesizing heightmap: %w", err)
	}
	return r.Image(), nil
}

// colorTexture uploads the colour map, falling back to the heightmap itself.
func (v *Viewer) colorTexture(heightImg image.Image) (material.TextureRef, error) {
	path := v.cfg.Data.Texture
	if path == "" {
		if v.cfg.Graphics.Shading == config.ShadingHeight {
			return v.scene.FallbackTexture(color.White, material.UniformTexture), nil
		}
		return v.scene.Terrain.UploadTexture(heightImg, material.UniformTexture), nil
	}
	img, err := texture.Load(path)
	if err != nil {
		return material.TextureRef{}, fmt.Errorf("loading texture: %w", err)
	}
	return v.scene.Terrain.UploadTexture(img, material.UniformTexture), nil
}

// Run starts the main viewer loop.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		// 1. Process input
		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		// 2. Update terrain and camera
		v.update(float32(dt))

		// 3. Render
		v.renderer.Begin()
		v.scene.Render(v.camera, v.terrain)
		v.renderer.End()
		if v.wantShot {
			v.screenshot()
			v.wantShot = false
		}

		// 4. Present
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			drawn, culled := v.scene.Stats()
			done, total := v.terrain.Progress()
			v.window.SetTitle(fmt.Sprintf("%s - %d fps - tiles %d/%d drawn %d culled %d",
				windowTitle, frameCount, done, total, drawn, culled))
			v.log.Debug("fps", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.renderer.Resize(event.Width, event.Height)
			v.scene.Resize(int32(event.Width), int32(event.Height))
		case input.EventMouseWheel:
			v.camera.HandleZoom(float32(event.Wheel))
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_F1:
				v.scene.SetWireframe(!v.scene.Wireframe())
			case sdl.SCANCODE_F2:
				v.scene.SetShowTiles(!v.scene.ShowTiles())
			case sdl.SCANCODE_F12:
				v.wantShot = true
			}
		}
	}
}

func (v *Viewer) update(dt float32) {
	// One tile per frame keeps the loop responsive while loading.
	if v.terrain.State() == lod.Loading {
		v.terrain.Step()
	}

	var forward, right, up float32
	if v.input.IsKeyDown(sdl.SCANCODE_W) {
		forward++
	}
	if v.input.IsKeyDown(sdl.SCANCODE_S) {
		forward--
	}
	if v.input.IsKeyDown(sdl.SCANCODE_D) {
		right++
	}
	if v.input.IsKeyDown(sdl.SCANCODE_A) {
		right--
	}
	if v.input.IsKeyDown(sdl.SCANCODE_E) {
		up++
	}
	if v.input.IsKeyDown(sdl.SCANCODE_Q) {
		up--
	}
	v.camera.Move(forward, right, up, dt)
	dx, dy := v.input.MouseDelta()
	v.camera.Look(float32(dx), float32(dy))

	pos := v.camera.Position
	v.terrain.Advance(mgl64.Vec2{float64(pos.X()), float64(pos.Y())})
	v.camera.ClampToGround(v.groundAt)
}

// groundAt is the rendered terrain height at world (x, y).
func (v *Viewer) groundAt(x, y float64) float64 {
	o := v.terrain.Origin()
	return v.terrain.InterpolatedElevation(x-o.X(), y-o.Y())
}

func (v *Viewer) screenshot() {
	w, h := v.renderer.Size()
	name, err := v.shots.CaptureFromPixels(v.renderer.ReadPixels(), w, h)
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("file", name))
}

// Close releases terrain, GL and window resources.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.terrain != nil {
		v.terrain.Dispose(true)
	}
	if v.scene != nil {
		v.scene.Destroy()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
