// Package lod manages the ring-of-tiles terrain: it lays out the splay,
// builds the shared program and geometry, materialises tiles one step at a
// time and keeps them centred on the viewer.
//
// A Manager is not safe for concurrent use. It is driven from the host's
// render loop: Step while loading, Advance once per frame.
package lod

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/splay-terrain/internal/engine/material"
	"github.com/Faultbox/splay-terrain/internal/engine/terrain"
	"github.com/Faultbox/splay-terrain/internal/merge"
	"github.com/Faultbox/splay-terrain/pkg/edgeclip"
	"github.com/Faultbox/splay-terrain/pkg/heightmap"
	"github.com/Faultbox/splay-terrain/pkg/splay"
)

var (
	// ErrNoHeightmap is reported when loading starts without a heightmap.
	ErrNoHeightmap = errors.New("lod: no heightmap data")
	// ErrInvalidState is returned for calls not allowed in the current state.
	ErrInvalidState = errors.New("lod: invalid state")
)

// State is the lifecycle state of a Manager.
type State int

const (
	Unloaded State = iota
	Loading
	Ready
	Disposed
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Disposed:
		return "disposed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// StepResult tells the host whether Step has more work.
type StepResult int

const (
	StepDone StepResult = iota
	StepContinuing
)

func (r StepResult) String() string {
	if r == StepContinuing {
		return "continuing"
	}
	return "done"
}

// Manager owns the terrain tiles, the heightmap raster and the shared program.
type Manager struct {
	opts     Options
	renderer Renderer
	log      *zap.Logger

	state State
	err   error

	raster *heightmap.Raster
	world  heightmap.World

	mesh     *terrain.Mesh
	geometry Resource
	template *material.Template
	program  Resource

	pending []splay.Descriptor
	tiles   []*Tile

	offset mgl64.Vec2
	frames int
}

// New creates a manager. Unset options take their defaults. With LoadAuto the
// load starts immediately; a failure there is reported through OnError and
// leaves the manager Failed rather than failing New.
func New(r Renderer, opts Options) (*Manager, error) {
	if r == nil {
		return nil, errors.New("lod: nil renderer")
	}
	eff := MergeOptions(merge.FirstWins, opts, DefaultOptions())
	if err := eff.Constants.Validate(); err != nil {
		return nil, err
	}
	eff.BoundsInterval = max(eff.BoundsInterval, 1)
	eff.HeightDataDescale = max(eff.HeightDataDescale, 1)

	m := &Manager{
		opts:     eff,
		renderer: r,
		log:      eff.Logger,
		world: heightmap.World{
			SizeX:        eff.Constants.WorldSizeX,
			SizeY:        eff.Constants.WorldSizeY,
			MaxElevation: eff.Constants.MaxElevation,
		},
	}
	if eff.Load == LoadAuto {
		_ = m.Load()
	}
	return m, nil
}

// Options returns the effective options.
func (m *Manager) Options() Options { return m.opts }

func (m *Manager) State() State { return m.state }

// Err returns the error that moved the manager to Failed.
func (m *Manager) Err() error { return m.err }

// Load decodes the heightmap, builds the shared geometry and program and lays
// out the splay. Tiles are materialised afterwards by Step or Run.
func (m *Manager) Load() error {
	if m.state != Unloaded {
		return fmt.Errorf("%w: load in state %s", ErrInvalidState, m.state)
	}
	m.state = Loading
	m.log.Debug("loading terrain",
		zap.Int("levels", m.opts.Levels),
		zap.Int("tessellation", m.opts.Constants.Tessellation),
		zap.Float64("viewport", m.opts.Constants.ViewportSize))

	if err := m.loadHeightmap(); err != nil {
		return m.fail(err)
	}

	mesh, err := terrain.NewGrid(m.opts.Constants.Tessellation)
	if err != nil {
		return m.fail(err)
	}
	m.mesh = mesh
	if m.geometry, err = m.renderer.CreateGeometry(mesh); err != nil {
		return m.fail(fmt.Errorf("create geometry: %w", err))
	}

	if m.template, err = m.buildTemplate(); err != nil {
		return m.fail(err)
	}
	if m.program, err = m.renderer.CreateProgram(m.template); err != nil {
		return m.fail(fmt.Errorf("create program: %w", err))
	}

	m.pending = splay.Builder{
		ViewportSize: m.opts.Constants.ViewportSize,
		Levels:       m.opts.Levels,
	}.Build()
	m.tiles = make([]*Tile, 0, len(m.pending))
	m.frames = 0
	m.opts.OnStart(PhaseSplay, 0, len(m.pending))
	return nil
}

func (m *Manager) loadHeightmap() error {
	m.opts.OnStart(PhaseHeightmap, 0, 100)
	if m.opts.Heightmap == nil {
		return ErrNoHeightmap
	}
	m.opts.OnProgress(PhaseHeightmap, 25, 100)

	raster, err := heightmap.FromImage(m.opts.Heightmap, m.opts.HeightDataDescale)
	if err != nil {
		return fmt.Errorf("decode heightmap: %w", err)
	}
	m.opts.OnProgress(PhaseHeightmap, 50, 100)

	m.raster = raster
	m.opts.OnProgress(PhaseHeightmap, 100, 100)
	m.log.Debug("heightmap decoded",
		zap.Int("width", raster.Width),
		zap.Int("height", raster.Height),
		zap.Int("descale", m.opts.HeightDataDescale))
	return nil
}

func (m *Manager) buildTemplate() (*material.Template, error) {
	base := material.Merge(merge.OverrideWins, m.opts.Uniforms, material.Uniforms{
		material.UniformNodeEdge:     material.Int(0),
		material.UniformNodeScale:    material.Scalar(1),
		material.UniformNodePosition: material.Vector3{},
		material.UniformCPosition:    m.cPosition(),
	})
	state := material.DefaultRenderState()
	if m.opts.Material != nil {
		state = *m.opts.Material
	}
	tmpl, err := material.Build(material.BuildOptions{
		Constants:      m.opts.Constants,
		Defines:        m.opts.Defines,
		Uniforms:       base,
		State:          state,
		VertexSource:   m.opts.VertexSource,
		FragmentSource: m.opts.FragmentSource,
	})
	if err != nil {
		return nil, fmt.Errorf("build program template: %w", err)
	}
	return tmpl, nil
}

// Step materialises the next tile. It returns StepContinuing while tiles
// remain and StepDone once the manager is Ready, or when it is not loading.
func (m *Manager) Step() StepResult {
	if m.state != Loading {
		return StepDone
	}

	next := len(m.tiles)
	if next < len(m.pending) {
		d := m.pending[next]
		tile := newTile(d, m.template.Clone(tileUniforms(d)), m.offset, m.world.MaxElevation)
		if err := m.renderer.Attach(tile); err != nil {
			m.fail(fmt.Errorf("attach %s: %w", tile.Name, err))
			return StepDone
		}
		m.tiles = append(m.tiles, tile)
		m.opts.OnProgress(PhaseNode, len(m.tiles), len(m.pending))
	}

	if len(m.tiles) < len(m.pending) {
		return StepContinuing
	}

	m.state = Ready
	m.log.Info("terrain ready", zap.Int("tiles", len(m.tiles)))
	m.opts.OnLoad()
	return StepDone
}

// Run steps until loading finishes or ctx is cancelled. Cancellation leaves
// the manager Loading; the host may resume with Step or call Abort.
func (m *Manager) Run(ctx context.Context) error {
	if m.state != Loading {
		return fmt.Errorf("%w: run in state %s", ErrInvalidState, m.state)
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.Step() == StepDone {
			break
		}
	}
	if m.state == Failed {
		return m.err
	}
	return nil
}

// Abort stops loading, detaches the tiles built so far and returns the
// manager to Unloaded so it can be loaded again.
func (m *Manager) Abort() error {
	if m.state != Loading {
		return fmt.Errorf("%w: abort in state %s", ErrInvalidState, m.state)
	}
	m.log.Info("terrain load aborted", zap.Int("tiles", len(m.tiles)), zap.Int("total", len(m.pending)))
	m.teardown()
	m.raster = nil
	m.state = Unloaded
	return nil
}

// Advance moves the terrain with the viewer. Half of offset moves the tile
// set and half goes to the cPosition uniform the vertex stage snaps against.
// Bounding spheres follow every BoundsInterval calls, starting with the
// first. Outside Loading and Ready it does nothing.
func (m *Manager) Advance(offset mgl64.Vec2) {
	if m.state != Loading && m.state != Ready {
		return
	}
	m.offset = offset
	m.template.SetShared(material.UniformCPosition, m.cPosition())

	if m.frames%m.opts.BoundsInterval == 0 {
		for _, t := range m.tiles {
			t.Bounds.Center = boundsCenter(t.Position, offset, m.world.MaxElevation)
		}
		m.frames = 0
	}
	m.frames++
}

// Offset returns the last viewer offset passed to Advance. Tile centres land
// at Position + Offset once the vertex stage adds cPosition.
func (m *Manager) Offset() mgl64.Vec2 { return m.offset }

// Origin is the translation applied to the whole tile set.
func (m *Manager) Origin() mgl64.Vec2 { return m.offset.Mul(0.5) }

func (m *Manager) cPosition() material.Vector3 {
	o := m.Origin()
	return material.Vector3{o.X(), o.Y(), 0}
}

// ModelMatrix places tile in world space.
func (m *Manager) ModelMatrix(tile *Tile) mgl64.Mat4 {
	o := m.Origin()
	return mgl64.Translate3D(o.X(), o.Y(), 0).Mul4(tile.Transform)
}

// VertexPosition returns where the vertex stage puts the grid vertex at uv of
// tile, in world space: cPosition offset, seam clipping, then the height
// lookup, which happens before the origin translation.
func (m *Manager) VertexPosition(tile *Tile, uv mgl64.Vec2) mgl64.Vec3 {
	c := m.opts.Constants
	o := m.Origin()

	p := uv.Sub(mgl64.Vec2{0.5, 0.5}).Mul(tile.Scale).Add(o)
	p = edgeclip.Snap(p, uv, tile.Edge, tile.Scale, c.Tessellation, c.ClipEdge)

	x, y := tile.Position.X()+p.X(), tile.Position.Y()+p.Y()
	return mgl64.Vec3{x + o.X(), y + o.Y(), m.InterpolatedElevation(x, y)}
}

// Elevation returns the terrain height at world position (x, y), or 0
// outside the world or without a heightmap.
func (m *Manager) Elevation(x, y float64) float64 {
	return m.raster.Elevation(x, y, m.world)
}

// InterpolatedElevation is Elevation with bilinear filtering.
func (m *Manager) InterpolatedElevation(x, y float64) float64 {
	return m.raster.InterpolatedElevation(x, y, m.world)
}

// Tiles returns the materialised tiles in build order.
func (m *Manager) Tiles() []*Tile {
	return append([]*Tile(nil), m.tiles...)
}

// Progress returns materialised and total tile counts.
func (m *Manager) Progress() (done, total int) {
	return len(m.tiles), len(m.pending)
}

// Template returns the shared program template, nil before loading.
func (m *Manager) Template() *material.Template { return m.template }

// Geometry returns the shared grid mesh, nil before loading.
func (m *Manager) Geometry() *terrain.Mesh { return m.mesh }

// Dispose detaches every tile and releases the program and geometry. With
// releaseTextures it also releases each distinct texture referenced by the
// template or a tile. Release failures are logged, never returned.
func (m *Manager) Dispose(releaseTextures bool) {
	if m.state == Disposed {
		return
	}

	var textures []material.TextureRef
	if releaseTextures {
		textures = m.textures()
	}
	m.teardown()

	seen := make(map[uint32]bool, len(textures))
	for _, ref := range textures {
		if seen[ref.ID] {
			continue
		}
		seen[ref.ID] = true
		if err := m.renderer.ReleaseTexture(ref); err != nil {
			m.log.Warn("release texture failed", zap.Uint32("id", ref.ID), zap.String("name", ref.Name), zap.Error(err))
		}
	}

	m.raster = nil
	m.state = Disposed
	m.log.Info("terrain disposed", zap.Bool("textures", releaseTextures), zap.Int("released", len(seen)))
}

// textures collects texture references from the template and every tile.
func (m *Manager) textures() []material.TextureRef {
	var refs []material.TextureRef
	if m.template == nil {
		refs = append(refs, m.opts.Uniforms.Textures()...)
	} else {
		refs = append(refs, m.template.Textures()...)
	}
	for _, t := range m.tiles {
		refs = append(refs, t.Program.Uniforms().Textures()...)
	}
	return refs
}

// teardown detaches tiles and releases program and geometry.
func (m *Manager) teardown() {
	for i := len(m.tiles) - 1; i >= 0; i-- {
		m.renderer.Detach(m.tiles[i])
	}
	m.tiles = nil
	m.pending = nil

	if m.program != nil {
		if err := m.program.Release(); err != nil {
			m.log.Warn("release program failed", zap.Error(err))
		}
		m.program = nil
	}
	if m.geometry != nil {
		if err := m.geometry.Release(); err != nil {
			m.log.Warn("release geometry failed", zap.Error(err))
		}
		m.geometry = nil
	}
	m.template = nil
	m.mesh = nil
}

// fail records err, unwinds partial work and moves to Failed.
func (m *Manager) fail(err error) error {
	m.log.Error("terrain load failed", zap.Error(err))
	m.teardown()
	m.raster = nil
	m.err = err
	m.state = Failed
	m.opts.OnError(err)
	return err
}
