package mesh

// Edge is an undirected mesh edge in canonical order (A < B).
type Edge struct {
	A, B int
}

// MakeEdge returns the canonical edge for a vertex pair.
func MakeEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// EdgeUseCounts counts, for every edge, how many faces use it. On a
// closed 2-manifold mesh every edge is used exactly twice. Restricting
// the count to a face subset is used by the repairer to audit only the
// regions smoothing touched; pass nil for the whole mesh.
func EdgeUseCounts(m *SurfaceMesh, faces []int) map[Edge]int {
	counts := make(map[Edge]int, m.FaceCount()*3/2)
	visit := func(face [3]int) {
		counts[MakeEdge(face[0], face[1])]++
		counts[MakeEdge(face[1], face[2])]++
		counts[MakeEdge(face[2], face[0])]++
	}
	if faces == nil {
		for _, face := range m.Faces {
			visit(face)
		}
		return counts
	}
	for _, f := range faces {
		visit(m.Faces[f])
	}
	return counts
}

// IsClosed reports whether the mesh is watertight: every edge borders
// exactly two faces.
func (m *SurfaceMesh) IsClosed() bool {
	for _, n := range EdgeUseCounts(m, nil) {
		if n != 2 {
			return false
		}
	}
	return true
}

// BoundaryEdgeCount returns the number of edges used by exactly one face.
func (m *SurfaceMesh) BoundaryEdgeCount() int {
	boundary := 0
	for _, n := range EdgeUseCounts(m, nil) {
		if n == 1 {
			boundary++
		}
	}
	return boundary
}

// NonManifoldEdges returns the edges whose face-use count differs from two,
// restricted to the given face subset (nil for all faces). Edges on the rim
// of a subset naturally count once there; callers auditing a subset of a
// closed mesh should complete the count with the faces adjacent to the rim.
func NonManifoldEdges(m *SurfaceMesh, faces []int) []Edge {
	var bad []Edge
	for e, n := range EdgeUseCounts(m, faces) {
		if n != 2 {
			bad = append(bad, e)
		}
	}
	return bad
}
