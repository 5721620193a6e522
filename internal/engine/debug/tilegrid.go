package debug

import (
	"github.com/Faultbox/splay-terrain/internal/lod"
	"github.com/Faultbox/splay-terrain/pkg/splay"
)

// LineVertex is one endpoint of an overlay line.
type LineVertex struct {
	Position [3]float32
	Color    [3]float32
}

// LineVertexStride is the size of LineVertex in bytes.
const LineVertexStride = 24

// ClippedEdgeColor marks tile sides that stitch to a coarser ring.
var ClippedEdgeColor = [3]float32{1.0, 0.2, 0.2}

// ringColors cycles per ring, ring 0 first.
var ringColors = [][3]float32{
	{1.0, 1.0, 1.0},
	{0.3, 0.9, 0.3},
	{0.3, 0.6, 1.0},
	{1.0, 0.8, 0.2},
	{0.8, 0.4, 1.0},
}

// RingColor returns the overlay colour for ring.
func RingColor(ring int) [3]float32 {
	if ring < 0 {
		ring = 0
	}
	return ringColors[ring%len(ringColors)]
}

// TileOutlines returns line-list vertices outlining each tile at height,
// relative to the terrain origin. Sides flagged in the tile's edge mask use
// ClippedEdgeColor.
func TileOutlines(tiles []*lod.Tile, height float32) []LineVertex {
	out := make([]LineVertex, 0, len(tiles)*8)
	for _, t := range tiles {
		half := float32(t.Scale / 2)
		cx, cy := float32(t.Position.X()), float32(t.Position.Y())
		x0, x1 := cx-half, cx+half
		y0, y1 := cy-half, cy+half

		sides := []struct {
			bit    splay.EdgeMask
			ax, ay float32
			bx, by float32
		}{
			{splay.EdgeUp, x0, y1, x1, y1},
			{splay.EdgeDown, x0, y0, x1, y0},
			{splay.EdgeLeft, x0, y0, x0, y1},
			{splay.EdgeRight, x1, y0, x1, y1},
		}
		for _, s := range sides {
			color := RingColor(t.Ring)
			if t.Edge.Has(s.bit) {
				color = ClippedEdgeColor
			}
			out = append(out,
				LineVertex{Position: [3]float32{s.ax, s.ay, height}, Color: color},
				LineVertex{Position: [3]float32{s.bx, s.by, height}, Color: color},
			)
		}
	}
	return out
}

// Flatten interleaves vertices for upload.
func Flatten(verts []LineVertex) []float32 {
	out := make([]float32, 0, len(verts)*6)
	for _, v := range verts {
		out = append(out, v.Position[0], v.Position[1], v.Position[2], v.Color[0], v.Color[1], v.Color[2])
	}
	return out
}
