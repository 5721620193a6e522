package lod

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/splay-terrain/internal/engine/material"
	"github.com/Faultbox/splay-terrain/pkg/splay"
)

// Sphere is a bounding sphere in world space.
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

// Tile is one materialised splay tile.
type Tile struct {
	Index    int
	Ring     int
	Name     string
	Position mgl64.Vec2 // centre, relative to the terrain origin
	Scale    float64
	Edge     splay.EdgeMask
	Program  *material.Instance
	// Transform places the unit grid at Position, relative to the terrain origin.
	Transform mgl64.Mat4
	Bounds    Sphere
}

// TileName is the debug name of a tile centred at p.
func TileName(p mgl64.Vec2) string {
	return fmt.Sprintf("TerrainNode x:%d y:%d", int(math.Floor(p.X())), int(math.Floor(p.Y())))
}

// tileUniforms are the per-tile uniforms of descriptor d.
func tileUniforms(d splay.Descriptor) material.Uniforms {
	return material.Uniforms{
		material.UniformNodeEdge:     material.Int(d.Edge),
		material.UniformNodeScale:    material.Scalar(d.Scale),
		material.UniformNodePosition: material.Vector3{d.Position.X(), d.Position.Y(), 0},
	}
}

// newTile builds the tile for d. The bounding sphere encloses the tile's
// footprint extruded from zero up to height.
func newTile(d splay.Descriptor, program *material.Instance, offset mgl64.Vec2, height float64) *Tile {
	return &Tile{
		Index:     d.Index,
		Ring:      d.Ring,
		Name:      TileName(d.Position),
		Position:  d.Position,
		Scale:     d.Scale,
		Edge:      d.Edge,
		Program:   program,
		Transform: mgl64.Translate3D(d.Position.X(), d.Position.Y(), 0),
		Bounds: Sphere{
			Center: boundsCenter(d.Position, offset, height),
			Radius: math.Hypot(d.Scale*math.Sqrt2/2, height/2),
		},
	}
}

// boundsCenter is where a tile centred at p sits once the viewer is at offset,
// halfway up the elevation range.
func boundsCenter(p, offset mgl64.Vec2, height float64) mgl64.Vec3 {
	return mgl64.Vec3{p.X() + offset.X(), p.Y() + offset.Y(), height / 2}
}
