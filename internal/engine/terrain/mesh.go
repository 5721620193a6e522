package terrain

import (
	"fmt"
	"math"
)

// NewGrid builds a unit plane centred on the origin in the XY plane with
// segments x segments cells. Rows run from the top edge (y = 0.5) down, and
// uv.y is 1 on the top row, so uv (0,0) is the lower-left corner.
func NewGrid(segments int) (*Mesh, error) {
	if segments <= 0 {
		return nil, fmt.Errorf("grid segments must be positive, got %d", segments)
	}

	row := segments + 1
	step := 1 / float32(segments)

	vertices := make([]Vertex, 0, row*row)
	bounds := Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}

	for iy := 0; iy <= segments; iy++ {
		y := 0.5 - float32(iy)*step
		for ix := 0; ix <= segments; ix++ {
			x := float32(ix)*step - 0.5
			p := [3]float32{x, y, 0}
			updateBounds(&bounds, p)
			vertices = append(vertices, Vertex{
				Position: p,
				UV:       [2]float32{float32(ix) / float32(segments), 1 - float32(iy)/float32(segments)},
			})
		}
	}

	indices := make([]uint32, 0, segments*segments*6)
	for iy := 0; iy < segments; iy++ {
		for ix := 0; ix < segments; ix++ {
			a := uint32(ix + row*iy)
			b := uint32(ix + row*(iy+1))
			c := uint32(ix + 1 + row*(iy+1))
			d := uint32(ix + 1 + row*iy)
			indices = append(indices, a, b, d, b, c, d)
		}
	}

	return &Mesh{
		Vertices: vertices,
		Indices:  indices,
		Segments: segments,
		Bounds:   bounds,
	}, nil
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// BoundingSphere returns the sphere around the mesh bounds.
func (m *Mesh) BoundingSphere() Sphere {
	var c [3]float32
	var r2 float64
	for i := range 3 {
		c[i] = (m.Bounds.Min[i] + m.Bounds.Max[i]) / 2
		h := float64(m.Bounds.Max[i]-m.Bounds.Min[i]) / 2
		r2 += h * h
	}
	return Sphere{Center: c, Radius: float32(math.Sqrt(r2))}
}

// Interleave flattens the vertices into the float layout the GPU expects.
func (m *Mesh) Interleave() []float32 {
	out := make([]float32, 0, len(m.Vertices)*5)
	for _, v := range m.Vertices {
		out = append(out, v.Position[0], v.Position[1], v.Position[2], v.UV[0], v.UV[1])
	}
	return out
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := range 3 {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
