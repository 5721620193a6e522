// Package terrain builds the shared grid mesh every terrain tile draws.
package terrain

// Vertex is a grid vertex. The layout matches the vertex stage inputs:
// location 0 is Position, location 1 is UV.
type Vertex struct {
	Position [3]float32
	UV       [2]float32
}

// VertexStride is the size of a Vertex in bytes.
const VertexStride = 5 * 4

// Mesh holds grid data ready for GPU upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Segments int // cells per side
	Bounds   Bounds
}

// Bounds holds the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center [3]float32
	Radius float32
}
