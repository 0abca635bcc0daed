// Package mesh assembles marching cubes triangle soup into renderable meshes
// with smoothed per-vertex normals.
package mesh

import (
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/internal/d3"
)

// Mesh is an indexed triangle mesh. Vertices and Normals have the same length
// and Indices holds three entries per triangle.
type Mesh struct {
	Vertices []ms3.Vec
	Normals  []ms3.Vec
	Indices  []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// IsEmpty reports whether the mesh has no triangles.
func (m *Mesh) IsEmpty() bool { return len(m.Indices) == 0 }

// Bounds returns the axis aligned bounding box of the vertices.
// The zero box is returned for an empty mesh.
func (m *Mesh) Bounds() ms3.Box {
	if len(m.Vertices) == 0 {
		return ms3.Box{}
	}
	set := d3.Set(m.Vertices)
	return ms3.Box{Min: set.Min(), Max: set.Max()}
}

// Triangle returns the i'th triangle of the mesh with its vertex normals.
func (m *Mesh) Triangle(i int) isomesh.Triangle {
	var t isomesh.Triangle
	for k := 0; k < 3; k++ {
		idx := m.Indices[3*i+k]
		t.V[k] = m.Vertices[idx]
		t.N[k] = m.Normals[idx]
	}
	return t
}

// Flatten returns flat position and normal arrays with three components per
// vertex, the layout GPU vertex buffers expect.
func (m *Mesh) Flatten() (positions, normals []float32) {
	positions = make([]float32, 0, 3*len(m.Vertices))
	normals = make([]float32, 0, 3*len(m.Normals))
	for i, v := range m.Vertices {
		n := m.Normals[i]
		positions = append(positions, v.X, v.Y, v.Z)
		normals = append(normals, n.X, n.Y, n.Z)
	}
	return positions, normals
}
