// Package smooth carves bounded regions out of a vascular surface mesh
// around detected junctions and relaxes their interiors with a
// shrink/inflate (Taubin) iteration. Boundary-ring vertices anchor each
// region to the untouched remainder of the mesh and are never written.
package smooth

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/openvasc/vasmesh/pkg/junction"
	"github.com/openvasc/vasmesh/pkg/mesh"
	"github.com/openvasc/vasmesh/pkg/tree"
)

// ErrRadiusCoversMesh is returned when a region's smoothing radius
// swallows every vertex of the mesh. Smoothing the whole surface is a
// misconfigured radius factor, not a junction repair.
var ErrRadiusCoversMesh = errors.New("smooth: junction radius covers the entire mesh (radius factor too large)")

// ErrRegionOverlap reports the internal invariant violation of two
// regions still sharing vertices after merging. It indicates a detector
// or extractor bug, never a data problem.
var ErrRegionOverlap = errors.New("smooth: regions overlap after merging")

// Region is the working set of one junction (or several merged ones):
// interior vertices free to move and the boundary ring pinning the
// region to the rest of the mesh. After ExtractRegions, interiors are
// pairwise disjoint and no ring vertex lies in another region's
// interior, which is what licenses parallel per-region smoothing.
type Region struct {
	ID        string
	Interior  []int
	Ring      []int
	Junctions []junction.Point
}

// ExtractRegions builds one region per junction and merges regions
// whose vertex sets interfere. The local radius of a junction is
// radiusFactor times the largest radius among its incident vessels.
func ExtractRegions(m *mesh.SurfaceMesh, junctions []junction.Point, vessels []tree.VesselSegment, radiusFactor float64) ([]Region, error) {
	if len(junctions) == 0 {
		return nil, nil
	}
	if radiusFactor <= 0 {
		return nil, errors.Errorf("smooth: radius factor must be positive, got %g", radiusFactor)
	}

	radiusByID := make(map[int]float64, len(vessels))
	for i := range vessels {
		radiusByID[vessels[i].ID] = vessels[i].Radius
	}

	adj := mesh.BuildAdjacency(m)

	raw := make([]*rawRegion, 0, len(junctions))

	for _, p := range junctions {
		radius := 0.0
		for _, vid := range p.Vessels {
			if r := radiusByID[vid]; r > radius {
				radius = r
			}
		}
		radius *= radiusFactor

		interior := make(map[int]bool)
		for i, v := range m.Vertices {
			if r3.Norm(r3.Sub(v, p.Location)) <= radius {
				interior[i] = true
			}
		}
		if len(interior) == 0 {
			continue
		}
		if len(interior) == m.VertexCount() {
			return nil, errors.Wrapf(ErrRadiusCoversMesh,
				"junction %v, radius %g", p.Vessels, radius)
		}

		raw = append(raw, &rawRegion{
			interior: interior,
			ring:     fringe(adj, interior),
			points:   []junction.Point{p},
		})
	}

	merged, err := mergeRegions(raw)
	if err != nil {
		return nil, err
	}

	regions := make([]Region, 0, len(merged))
	for _, r := range merged {
		region := finalizeRegion(adj, r.interior, r.points)
		// Merging can grow an interior past what any single junction
		// covers; a region without a ring has nothing anchoring it.
		if len(region.Interior) == m.VertexCount() || len(region.Ring) == 0 {
			return nil, errors.Wrapf(ErrRadiusCoversMesh,
				"merged region %s spans %d of %d vertices",
				region.ID, len(region.Interior), m.VertexCount())
		}
		regions = append(regions, region)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].ID < regions[j].ID })

	if err := checkDisjoint(regions); err != nil {
		return nil, err
	}
	return regions, nil
}

// fringe returns the one-ring boundary of an interior set: vertices
// outside the set that neighbor at least one vertex inside it.
func fringe(adj *mesh.Adjacency, interior map[int]bool) map[int]bool {
	ring := make(map[int]bool)
	for v := range interior {
		for _, n := range adj.Neighbors[v] {
			if !interior[n] {
				ring[n] = true
			}
		}
	}
	return ring
}

// rawRegion is the pre-merge working form of a region.
type rawRegion struct {
	interior map[int]bool
	ring     map[int]bool
	points   []junction.Point
}

// mergeRegions unions regions whose interiors intersect, and also
// regions whose ring touches another interior: a ring vertex must stay
// immobile for its region while no other region relocates it.
func mergeRegions(raw []*rawRegion) ([]*rawRegion, error) {
	parent := make([]int, len(raw))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	claimed := make(map[int]int) // vertex -> region index owning it as interior
	for i, r := range raw {
		for v := range r.interior {
			if owner, ok := claimed[v]; ok {
				union(i, owner)
			} else {
				claimed[v] = i
			}
		}
	}
	for i, r := range raw {
		for v := range r.ring {
			if owner, ok := claimed[v]; ok && find(owner) != find(i) {
				union(i, owner)
			}
		}
	}

	grouped := make(map[int]*rawRegion)
	for i, r := range raw {
		root := find(i)
		dst, ok := grouped[root]
		if !ok {
			dst = &rawRegion{
				interior: make(map[int]bool),
				ring:     make(map[int]bool),
			}
			grouped[root] = dst
		}
		for v := range r.interior {
			dst.interior[v] = true
		}
		dst.points = append(dst.points, r.points...)
	}

	out := make([]*rawRegion, 0, len(grouped))
	for _, r := range grouped {
		out = append(out, r)
	}
	return out, nil
}

// finalizeRegion recomputes the ring against the merged interior and
// produces sorted index slices plus a stable region identifier derived
// from the smallest member vessel.
func finalizeRegion(adj *mesh.Adjacency, interior map[int]bool, points []junction.Point) Region {
	ring := fringe(adj, interior)

	interiorIdx := make([]int, 0, len(interior))
	for v := range interior {
		interiorIdx = append(interiorIdx, v)
	}
	sort.Ints(interiorIdx)

	ringIdx := make([]int, 0, len(ring))
	for v := range ring {
		ringIdx = append(ringIdx, v)
	}
	sort.Ints(ringIdx)

	sort.Slice(points, func(i, j int) bool { return points[i].Vessels[0] < points[j].Vessels[0] })
	id := fmt.Sprintf("junction-v%d", points[0].Vessels[0])

	return Region{ID: id, Interior: interiorIdx, Ring: ringIdx, Junctions: points}
}

// checkDisjoint audits the post-merge invariant: no vertex may sit in
// two interiors, and no ring vertex in a foreign interior.
func checkDisjoint(regions []Region) error {
	owner := make(map[int]string)
	for _, r := range regions {
		for _, v := range r.Interior {
			if other, ok := owner[v]; ok {
				return errors.Wrapf(ErrRegionOverlap,
					"vertex %d interior to both %s and %s", v, other, r.ID)
			}
			owner[v] = r.ID
		}
	}
	for _, r := range regions {
		for _, v := range r.Ring {
			if other, ok := owner[v]; ok && other != r.ID {
				return errors.Wrapf(ErrRegionOverlap,
					"ring vertex %d of %s interior to %s", v, r.ID, other)
			}
		}
	}
	return nil
}

// TouchedVertices returns the union of interior and ring indices across
// the regions, sorted. These are the vertices whose normals smoothing
// invalidates.
func TouchedVertices(regions []Region) []int {
	set := make(map[int]bool)
	for _, r := range regions {
		for _, v := range r.Interior {
			set[v] = true
		}
		for _, v := range r.Ring {
			set[v] = true
		}
	}
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
