package frame

import (
	"errors"
	"fmt"
)

// Mesh validation errors.
var (
	// ErrEmptyMesh is returned for a mesh without indices. There is
	// nothing to draw and the primitive must be skipped.
	ErrEmptyMesh = errors.New("frame: mesh has no indices")

	// ErrIndexCount is returned when the index count is not a multiple of 3.
	ErrIndexCount = errors.New("frame: index count is not a multiple of 3")

	// ErrIndexRange is returned when an index points past the vertex list.
	ErrIndexRange = errors.New("frame: index out of vertex range")
)

// Vertex is one vertex of a toolkit mesh.
type Vertex struct {
	// Pos is the position in points.
	Pos Pos2

	// UV is the texture coordinate, (0, 0) at the top-left texel.
	UV Pos2

	// Color is multiplied with the sampled texel.
	Color Color32
}

// Mesh is an indexed triangle list sampling a single texture.
type Mesh struct {
	// Indices into Vertices, three per triangle.
	Indices []uint32

	// Vertices referenced by Indices. Vertices may be shared between
	// triangles.
	Vertices []Vertex

	// Texture sampled by every fragment of the mesh.
	Texture TextureID
}

// IsEmpty reports whether the mesh has no indices.
func (m *Mesh) IsEmpty() bool {
	return len(m.Indices) == 0
}

// Validate checks the mesh invariants: at least one triangle, whole
// triangles only and every index inside the vertex list.
func (m *Mesh) Validate() error {
	if len(m.Indices) == 0 {
		return ErrEmptyMesh
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrIndexCount, len(m.Indices))
	}
	n := uint32(len(m.Vertices)) //nolint:gosec // vertex count fits uint32
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: indices[%d] = %d, %d vertices", ErrIndexRange, i, idx, n)
		}
	}
	return nil
}

// AddTriangle appends a triangle referencing existing vertices.
func (m *Mesh) AddTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// AddRect appends a textured quad covering rect with the given UV rect.
func (m *Mesh) AddRect(rect, uv Rect, color Color32) {
	base := uint32(len(m.Vertices)) //nolint:gosec // vertex count fits uint32
	m.Vertices = append(m.Vertices,
		Vertex{Pos: rect.Min, UV: uv.Min, Color: color},
		Vertex{Pos: Pos2{X: rect.Max.X, Y: rect.Min.Y}, UV: Pos2{X: uv.Max.X, Y: uv.Min.Y}, Color: color},
		Vertex{Pos: rect.Max, UV: uv.Max, Color: color},
		Vertex{Pos: Pos2{X: rect.Min.X, Y: rect.Max.Y}, UV: Pos2{X: uv.Min.X, Y: uv.Max.Y}, Color: color},
	)
	m.AddTriangle(base, base+1, base+2)
	m.AddTriangle(base, base+2, base+3)
}

// ClippedPrimitive is a mesh together with the rectangle, in points,
// outside of which it must not be rasterized.
type ClippedPrimitive struct {
	ClipRect Rect
	Mesh     Mesh
}
