// Package edgeclip is the CPU form of the vertex-stage seam fix.
//
// Vertices of a tile are snapped to the tile's own grid. Near a side flagged in
// the tile's edge mask they are additionally blended toward the grid of the
// coarser neighbour, so that at the side itself both tiles share vertices and
// no crack opens between them. The GLSL clipSides include mirrors this code.
package edgeclip

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/splay-terrain/pkg/splay"
)

// Threshold is the clip factor at or below which a vertex counts as interior.
const Threshold = 0.01

// Params are the compile-time constants the clip depends on.
type Params struct {
	Tessellation int     // grid cells per tile side
	ClipEdge     float64 // width of the blend band in tile UV space
}

// Validate checks the parameters. A tessellation that is not a power of two is
// accepted; coarse and fine grids then only approximately line up.
func (p Params) Validate() error {
	if p.Tessellation <= 0 {
		return fmt.Errorf("tessellation must be positive, got %d", p.Tessellation)
	}
	if p.ClipEdge <= 0 || p.ClipEdge > 0.5 {
		return fmt.Errorf("clip edge must be in (0, 0.5], got %v", p.ClipEdge)
	}
	return nil
}

// IsPowerOfTwo reports whether the tessellation keeps coarse and fine grids aligned.
func (p Params) IsPowerOfTwo() bool {
	return p.Tessellation > 0 && p.Tessellation&(p.Tessellation-1) == 0
}

// Factor returns the blend weight toward the coarse grid for a vertex at uv:
// the largest ramp over the flagged sides, 1 on the side and 0 beyond clipEdge.
func Factor(uv mgl64.Vec2, mask splay.EdgeMask, clipEdge float64) float64 {
	var f float64
	u, v := uv.X(), uv.Y()

	if mask.Has(splay.EdgeRight) && u >= 1-clipEdge {
		f = math.Max(f, ramp(1-u, clipEdge))
	}
	if mask.Has(splay.EdgeUp) && v >= 1-clipEdge {
		f = math.Max(f, ramp(1-v, clipEdge))
	}
	if mask.Has(splay.EdgeLeft) && u <= clipEdge {
		f = math.Max(f, ramp(u, clipEdge))
	}
	if mask.Has(splay.EdgeDown) && v <= clipEdge {
		f = math.Max(f, ramp(v, clipEdge))
	}
	return f
}

func ramp(dist, width float64) float64 {
	return 1 - mgl64.Clamp(dist/width, 0, 1)
}

// Snap places an already translated vertex position p onto the tile grid,
// blending toward the coarse neighbour grid near flagged sides.
func Snap(p, uv mgl64.Vec2, mask splay.EdgeMask, scale float64, tessellation int, clipEdge float64) mgl64.Vec2 {
	cell := scale / float64(tessellation)
	fine := floorTo(p, cell)

	f := Factor(uv, mask, clipEdge)
	if f <= Threshold {
		return fine
	}

	coarse := floorTo(fine, 2*cell)
	return fine.Add(coarse.Sub(fine).Mul(f))
}

// ClipVertex clips a vertex of the unit, origin-centred grid given only its uv,
// returning its offset from the tile centre.
func ClipVertex(uv mgl64.Vec2, mask splay.EdgeMask, scale float64, tessellation int, clipEdge float64) mgl64.Vec2 {
	p := uv.Sub(mgl64.Vec2{0.5, 0.5}).Mul(scale)
	return Snap(p, uv, mask, scale, tessellation, clipEdge)
}

// Clip is ClipVertex with the parameters bundled.
func (p Params) Clip(uv mgl64.Vec2, mask splay.EdgeMask, scale float64) mgl64.Vec2 {
	return ClipVertex(uv, mask, scale, p.Tessellation, p.ClipEdge)
}

func floorTo(p mgl64.Vec2, grid float64) mgl64.Vec2 {
	return mgl64.Vec2{math.Floor(p.X()/grid) * grid, math.Floor(p.Y()/grid) * grid}
}
