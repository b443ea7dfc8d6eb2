package mesh

import "sort"

// Adjacency is the derived vertex connectivity of a SurfaceMesh:
// for each vertex, its neighbor vertices (one edge away) and its
// incident faces. Built on demand; valid until faces change. Vertex
// relocation does not invalidate it.
type Adjacency struct {
	Neighbors [][]int // vertex -> neighbor vertex indices, sorted
	Faces     [][]int // vertex -> incident face indices, sorted
}

// BuildAdjacency derives vertex adjacency from the mesh faces.
func BuildAdjacency(m *SurfaceMesh) *Adjacency {
	n := m.VertexCount()
	neighborSets := make([]map[int]bool, n)
	faceLists := make([][]int, n)

	for f, face := range m.Faces {
		for i := 0; i < 3; i++ {
			v := face[i]
			if neighborSets[v] == nil {
				neighborSets[v] = make(map[int]bool, 8)
			}
			neighborSets[v][face[(i+1)%3]] = true
			neighborSets[v][face[(i+2)%3]] = true
			faceLists[v] = append(faceLists[v], f)
		}
	}

	adj := &Adjacency{
		Neighbors: make([][]int, n),
		Faces:     faceLists,
	}
	for v := 0; v < n; v++ {
		if neighborSets[v] == nil {
			continue
		}
		neighbors := make([]int, 0, len(neighborSets[v]))
		for nb := range neighborSets[v] {
			neighbors = append(neighbors, nb)
		}
		sort.Ints(neighbors)
		adj.Neighbors[v] = neighbors
	}
	return adj
}
