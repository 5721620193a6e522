package lod

import (
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/splay-terrain/internal/engine/material"
	"github.com/Faultbox/splay-terrain/internal/logger"
	"github.com/Faultbox/splay-terrain/internal/merge"
)

// Phase names reported through the start and progress callbacks.
const (
	PhaseHeightmap = "Terrain/CreateHeightmap"
	PhaseSplay     = "Terrain/CreateSplay"
	PhaseNode      = "Terrain/CreateNode"
)

// Defaults applied by New.
const (
	DefaultLevels         = 3
	DefaultDescale        = 1
	DefaultBoundsInterval = 8
)

// LoadPolicy selects when loading starts.
type LoadPolicy int

const (
	// LoadAuto starts loading inside New.
	LoadAuto LoadPolicy = iota
	// LoadManual waits for an explicit Load call.
	LoadManual
)

func (p LoadPolicy) String() string {
	if p == LoadManual {
		return "manual"
	}
	return "auto"
}

// ProgressFunc receives a phase name with items done out of total.
type ProgressFunc func(phase string, done, total int)

// Options configure a Manager. New copies them; later changes have no effect.
type Options struct {
	Constants material.Constants
	// Defines are extra preprocessor definitions for user shader code.
	Defines map[string]string
	// Uniforms are shared by every tile, typically the texture and heightmap refs.
	Uniforms material.Uniforms
	// Material is the render state. Nil selects material.DefaultRenderState.
	Material *material.RenderState

	Load LoadPolicy
	// Levels is the number of rings around the centre block. Zero selects
	// DefaultLevels unless LevelsSet is true; zero or negative with LevelsSet,
	// or any negative value, builds the centre block only.
	Levels    int
	LevelsSet bool
	// ElevationSet makes a zero Constants.MaxElevation mean flat terrain
	// instead of the default elevation.
	ElevationSet bool
	// HeightDataDescale shrinks the heightmap by this factor before queries.
	HeightDataDescale int
	// BoundsInterval is the number of Advance calls between bounding sphere
	// updates.
	BoundsInterval int

	// Heightmap is the CPU copy of the elevation image.
	Heightmap image.Image

	VertexSource   string
	FragmentSource string

	OnStart    ProgressFunc
	OnProgress ProgressFunc
	OnLoad     func()
	OnError    func(error)

	Logger *zap.Logger
}

// DefaultOptions returns the stock configuration with no-op callbacks.
func DefaultOptions() Options {
	state := material.DefaultRenderState()
	return Options{
		Constants:         material.DefaultConstants(),
		Material:          &state,
		Load:              LoadAuto,
		Levels:            DefaultLevels,
		HeightDataDescale: DefaultDescale,
		BoundsInterval:    DefaultBoundsInterval,
		OnStart:           func(string, int, int) {},
		OnProgress:        func(string, int, int) {},
		OnLoad:            func() {},
		OnError:           func(error) {},
		Logger:            logger.Named("lod"),
	}
}

// MergeOptions combines a and b field by field without modifying either.
// Zero values count as unset, except Levels and MaxElevation when their Set
// flag is true. With merge.FirstWins a keeps every field it
// sets; with merge.OverrideWins b replaces them.
func MergeOptions(s merge.Strategy, a, b Options) Options {
	aLevels, bLevels := a.LevelsSet || a.Levels != 0, b.LevelsSet || b.Levels != 0
	aElev := a.ElevationSet || a.Constants.MaxElevation != 0
	bElev := b.ElevationSet || b.Constants.MaxElevation != 0

	out := Options{
		Constants: material.Constants{
			ClipEdge:     merge.Value(s, a.Constants.ClipEdge, b.Constants.ClipEdge),
			MaxElevation: either(s, a.Constants.MaxElevation, b.Constants.MaxElevation, aElev, bElev),
			Tessellation: merge.Value(s, a.Constants.Tessellation, b.Constants.Tessellation),
			WorldSizeX:   merge.Value(s, a.Constants.WorldSizeX, b.Constants.WorldSizeX),
			WorldSizeY:   merge.Value(s, a.Constants.WorldSizeY, b.Constants.WorldSizeY),
			ViewportSize: merge.Value(s, a.Constants.ViewportSize, b.Constants.ViewportSize),
		},
		Defines:  merge.Maps(s, a.Defines, b.Defines),
		Uniforms: material.Merge(s, a.Uniforms, b.Uniforms),
		Material: merge.Value(s, a.Material, b.Material),

		Load:              merge.Value(s, a.Load, b.Load),
		Levels:            either(s, a.Levels, b.Levels, aLevels, bLevels),
		LevelsSet:         a.LevelsSet || b.LevelsSet,
		ElevationSet:      a.ElevationSet || b.ElevationSet,
		HeightDataDescale: merge.Value(s, a.HeightDataDescale, b.HeightDataDescale),
		BoundsInterval:    merge.Value(s, a.BoundsInterval, b.BoundsInterval),

		VertexSource:   merge.Value(s, a.VertexSource, b.VertexSource),
		FragmentSource: merge.Value(s, a.FragmentSource, b.FragmentSource),

		Heightmap:  either(s, a.Heightmap, b.Heightmap, a.Heightmap != nil, b.Heightmap != nil),
		OnStart:    either(s, a.OnStart, b.OnStart, a.OnStart != nil, b.OnStart != nil),
		OnProgress: either(s, a.OnProgress, b.OnProgress, a.OnProgress != nil, b.OnProgress != nil),
		OnLoad:     either(s, a.OnLoad, b.OnLoad, a.OnLoad != nil, b.OnLoad != nil),
		OnError:    either(s, a.OnError, b.OnError, a.OnError != nil, b.OnError != nil),
		Logger:     either(s, a.Logger, b.Logger, a.Logger != nil, b.Logger != nil),
	}
	if out.Material != nil {
		state := *out.Material
		out.Material = &state
	}
	return out
}

// either is merge.Value for types that are not safely comparable.
func either[T any](s merge.Strategy, a, b T, aSet, bSet bool) T {
	if bSet && (!aSet || s == merge.OverrideWins) {
		return b
	}
	return a
}
