// Package mesh provides the in-memory triangulated surface mesh that the
// smoothing pipeline reads and relocates vertices of. The mesh is indexed:
// vertex positions are held once and faces reference them by index, so
// vertex relocation never changes topology.
package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// SurfaceMesh is a triangulated surface. Faces store three vertex indices
// each, wound counter-clockwise when viewed from outside. Normals are
// per-vertex and may be stale after vertex relocation; see
// RecomputeNormals.
type SurfaceMesh struct {
	Vertices []r3.Vec
	Faces    [][3]int
	Normals  []r3.Vec
}

// VertexCount returns the number of vertices.
func (m *SurfaceMesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of triangular faces.
func (m *SurfaceMesh) FaceCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *SurfaceMesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Clone returns a deep copy of the mesh.
func (m *SurfaceMesh) Clone() *SurfaceMesh {
	c := &SurfaceMesh{
		Vertices: make([]r3.Vec, len(m.Vertices)),
		Faces:    make([][3]int, len(m.Faces)),
	}
	copy(c.Vertices, m.Vertices)
	copy(c.Faces, m.Faces)
	if m.Normals != nil {
		c.Normals = make([]r3.Vec, len(m.Normals))
		copy(c.Normals, m.Normals)
	}
	return c
}

// FaceArea returns the area of face f.
func (m *SurfaceMesh) FaceArea(f int) float64 {
	a, b, c := m.FaceVertices(f)
	cross := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	return 0.5 * r3.Norm(cross)
}

// FaceVertices returns the three vertex positions of face f.
func (m *SurfaceMesh) FaceVertices(f int) (a, b, c r3.Vec) {
	face := m.Faces[f]
	return m.Vertices[face[0]], m.Vertices[face[1]], m.Vertices[face[2]]
}

// Centroid returns the average of all vertex positions.
func (m *SurfaceMesh) Centroid() r3.Vec {
	if len(m.Vertices) == 0 {
		return r3.Vec{}
	}
	var sum r3.Vec
	for _, v := range m.Vertices {
		sum = r3.Add(sum, v)
	}
	return r3.Scale(1/float64(len(m.Vertices)), sum)
}
