package mesh

import "gonum.org/v1/gonum/spatial/r3"

// FaceNormal returns the unit normal of face f, or the zero vector for a
// degenerate face.
func (m *SurfaceMesh) FaceNormal(f int) r3.Vec {
	a, b, c := m.FaceVertices(f)
	cross := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	n := r3.Norm(cross)
	if n < 1e-30 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, cross)
}

// RecomputeNormals rebuilds per-vertex normals as the area-weighted
// average of incident face normals. The unnormalized face cross product
// already carries the area weight, so faces are accumulated raw and the
// sum normalized at the end.
//
// touched selects the vertices to update; nil means every vertex. adj is
// required for a subset update and built on demand when nil.
func RecomputeNormals(m *SurfaceMesh, adj *Adjacency, touched []int) {
	if len(m.Normals) != len(m.Vertices) {
		m.Normals = make([]r3.Vec, len(m.Vertices))
	}

	if touched == nil {
		for i := range m.Normals {
			m.Normals[i] = r3.Vec{}
		}
		for f, face := range m.Faces {
			a, b, c := m.FaceVertices(f)
			cross := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
			m.Normals[face[0]] = r3.Add(m.Normals[face[0]], cross)
			m.Normals[face[1]] = r3.Add(m.Normals[face[1]], cross)
			m.Normals[face[2]] = r3.Add(m.Normals[face[2]], cross)
		}
		normalize(m.Normals, nil)
		return
	}

	if adj == nil {
		adj = BuildAdjacency(m)
	}
	for _, v := range touched {
		var sum r3.Vec
		for _, f := range adj.Faces[v] {
			a, b, c := m.FaceVertices(f)
			sum = r3.Add(sum, r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
		}
		m.Normals[v] = sum
	}
	normalize(m.Normals, touched)
}

// normalize scales the selected normals to unit length, leaving
// zero-length sums untouched.
func normalize(normals []r3.Vec, selected []int) {
	unit := func(i int) {
		n := r3.Norm(normals[i])
		if n > 1e-12 {
			normals[i] = r3.Scale(1/n, normals[i])
		}
	}
	if selected == nil {
		for i := range normals {
			unit(i)
		}
		return
	}
	for _, i := range selected {
		unit(i)
	}
}
