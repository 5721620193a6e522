// Package splay computes the ring layout of terrain tiles around a viewpoint.
//
// The layout looks like this, P being the viewer and each ring outward using
// tiles twice the size of the ring inside it:
//
//	    X
//	  X X X
//	X X P X X
//	  X X X
//	    X
//
// A tile edge that borders a coarser ring is flagged in its EdgeMask so the
// vertex stage can morph the vertices along it onto the coarser grid.
package splay

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// EdgeMask marks the sides of a tile that border a coarser neighbour.
// Bit values are shared with the vertex stage.
type EdgeMask uint8

const (
	EdgeUp    EdgeMask = 1
	EdgeDown  EdgeMask = 2
	EdgeLeft  EdgeMask = 4
	EdgeRight EdgeMask = 8
)

// Has reports whether every bit of e is set in m.
func (m EdgeMask) Has(e EdgeMask) bool {
	return m&e == e
}

func (m EdgeMask) String() string {
	if m == 0 {
		return "NONE"
	}
	var parts []string
	for _, side := range []struct {
		bit  EdgeMask
		name string
	}{{EdgeUp, "UP"}, {EdgeDown, "DOWN"}, {EdgeLeft, "LEFT"}, {EdgeRight, "RIGHT"}} {
		if m.Has(side.bit) {
			parts = append(parts, side.name)
		}
	}
	return strings.Join(parts, "|")
}

// Descriptor is one tile of the splay.
type Descriptor struct {
	Index    int        // position in build order
	Ring     int        // 0 for the central block
	Corner   mgl64.Vec2 // lower-left corner
	Position mgl64.Vec2 // centre
	Scale    float64    // edge length
	Edge     EdgeMask
}

// Builder lays out a splay around Origin.
type Builder struct {
	ViewportSize float64
	Levels       int
	Origin       mgl64.Vec2
}

// InnerScale returns the edge length of the central tiles.
func InnerScale(viewportSize float64, levels int) float64 {
	if levels < 0 {
		levels = 0
	}
	return viewportSize / math.Pow(2, float64(levels))
}

// Build lays out a splay centred on the world origin.
func Build(viewportSize float64, levels int) []Descriptor {
	return Builder{ViewportSize: viewportSize, Levels: levels}.Build()
}

// Count returns the number of tiles Build produces for levels rings.
func Count(levels int) int {
	if levels < 0 {
		levels = 0
	}
	return 4 + 12*levels
}

// Build returns the tiles inner ring first, in the order they should be
// materialised. Levels <= 0 yields the central block only.
func (b Builder) Build() []Descriptor {
	levels := b.Levels
	if levels < 0 {
		levels = 0
	}

	out := make([]Descriptor, 0, Count(levels))
	ox, oy := b.Origin.X(), b.Origin.Y()
	scale := InnerScale(b.ViewportSize, levels)

	add := func(ring int, x, y, s float64) {
		out = append(out, Descriptor{
			Index:    len(out),
			Ring:     ring,
			Corner:   mgl64.Vec2{x, y},
			Position: mgl64.Vec2{x + 0.5*s, y + 0.5*s},
			Scale:    s,
			Edge:     b.edge(x, y, s),
		})
	}

	add(0, ox, oy, scale)
	add(0, ox, oy-scale, scale)
	add(0, ox-scale, oy-scale, scale)
	add(0, ox-scale, oy, scale)

	for ring := 1; ring <= levels; ring++ {
		s1, s2 := scale, scale*2

		// Each side walks three tiles; its last tile is the next side's corner start.
		for i := 0; i < 3; i++ {
			add(ring, ox-s2+float64(i)*s1, oy-s2, s1) // bottom left to bottom right
		}
		for i := 0; i < 3; i++ {
			add(ring, ox+s1, oy-s2+float64(i)*s1, s1) // bottom right to top right
		}
		for i := 0; i < 3; i++ {
			add(ring, ox+s1-float64(i)*s1, oy+s1, s1) // top right to top left
		}
		for i := 0; i < 3; i++ {
			add(ring, ox-s2, oy+s1-float64(i)*s1, s1) // top left to bottom left
		}

		scale *= 2
	}

	return out
}

// edge flags the sides of the tile at corner (x, y) that face outward from
// the origin. Corners exactly on origin-s or origin are inward on that axis.
func (b Builder) edge(x, y, s float64) EdgeMask {
	ox, oy := b.Origin.X(), b.Origin.Y()
	var m EdgeMask
	switch {
	case x < ox-s:
		m |= EdgeLeft
	case x > ox:
		m |= EdgeRight
	}
	switch {
	case y < oy-s:
		m |= EdgeDown
	case y > oy:
		m |= EdgeUp
	}
	return m
}

// Bounds returns the lower-left and upper-right corners covered by descs.
func Bounds(descs []Descriptor) (min, max mgl64.Vec2) {
	if len(descs) == 0 {
		return
	}
	min = descs[0].Corner
	max = descs[0].Corner.Add(mgl64.Vec2{descs[0].Scale, descs[0].Scale})
	for _, d := range descs[1:] {
		far := d.Corner.Add(mgl64.Vec2{d.Scale, d.Scale})
		min = mgl64.Vec2{math.Min(min.X(), d.Corner.X()), math.Min(min.Y(), d.Corner.Y())}
		max = mgl64.Vec2{math.Max(max.X(), far.X()), math.Max(max.Y(), far.Y())}
	}
	return min, max
}

// Rings groups descs by ring index, preserving build order within a ring.
func Rings(descs []Descriptor) [][]Descriptor {
	var rings [][]Descriptor
	for _, d := range descs {
		for len(rings) <= d.Ring {
			rings = append(rings, nil)
		}
		rings[d.Ring] = append(rings[d.Ring], d)
	}
	return rings
}
