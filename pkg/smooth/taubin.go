package smooth

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/openvasc/vasmesh/pkg/mesh"
)

// Taubin pass-band factors. The inflate magnitude exceeds the shrink
// factor so the pairing has no net shrinkage; junction caps are thin
// and a plain Laplacian would visibly pinch vessel radii at the join.
const (
	Lambda = 0.5
	Mu     = -0.53
)

// Smooth relaxes every region's interior in place with Taubin
// shrink/inflate iterations. Ring vertices are read as anchors and
// never written. Vertex and face counts are invariant; iterations = 0
// leaves the mesh bit-identical, normals included.
//
// Regions are smoothed concurrently: after extraction their interiors
// are disjoint and no ring crosses a foreign interior, so each worker
// writes only its own vertex indices of the shared vertex buffer.
func Smooth(m *mesh.SurfaceMesh, regions []Region, iterations int) {
	if iterations == 0 || len(regions) == 0 {
		return
	}

	adj := mesh.BuildAdjacency(m)

	var wg sync.WaitGroup
	for i := range regions {
		wg.Add(1)
		go func(r *Region) {
			defer wg.Done()
			smoothRegion(m, adj, r, iterations)
		}(&regions[i])
	}
	wg.Wait()

	mesh.RecomputeNormals(m, adj, TouchedVertices(regions))
}

// smoothRegion runs the two-pass iteration on one region. Both passes
// read neighbor positions from a fixed snapshot (start-of-iteration for
// the shrink pass, post-shrink for the inflate pass), so the result does
// not depend on interior iteration order.
func smoothRegion(m *mesh.SurfaceMesh, adj *mesh.Adjacency, r *Region, iterations int) {
	// Every neighbor of an interior vertex is interior or ring, by the
	// ring construction, so the snapshot covers all reads.
	snapshot := make(map[int]r3.Vec, len(r.Interior)+len(r.Ring))
	shrunk := make(map[int]r3.Vec, len(r.Interior)+len(r.Ring))

	for iter := 0; iter < iterations; iter++ {
		for _, v := range r.Interior {
			snapshot[v] = m.Vertices[v]
		}
		for _, v := range r.Ring {
			snapshot[v] = m.Vertices[v]
			shrunk[v] = m.Vertices[v]
		}

		for _, v := range r.Interior {
			shrunk[v] = displace(snapshot, adj.Neighbors[v], snapshot[v], Lambda)
		}
		for _, v := range r.Interior {
			m.Vertices[v] = displace(shrunk, adj.Neighbors[v], shrunk[v], Mu)
		}
	}
}

// displace moves pos toward the uniform average of its neighbors by
// factor: the discrete Laplacian step pos + factor*(avg - pos).
func displace(positions map[int]r3.Vec, neighbors []int, pos r3.Vec, factor float64) r3.Vec {
	if len(neighbors) == 0 {
		return pos
	}
	var avg r3.Vec
	for _, n := range neighbors {
		avg = r3.Add(avg, positions[n])
	}
	avg = r3.Scale(1/float64(len(neighbors)), avg)
	return r3.Add(pos, r3.Scale(factor, r3.Sub(avg, pos)))
}
