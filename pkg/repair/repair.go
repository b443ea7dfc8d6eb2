// Package repair validates the junction regions after relaxation and
// restores what it can by relocating vertices already in the region.
// It never adds or removes vertices or faces, so mesh topology is
// preserved by construction; what it guards against is geometric
// degeneracy (collapsed triangles, self-intersections) and loss of
// closedness that would make the exported surface unusable downstream.
package repair

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/openvasc/vasmesh/pkg/mesh"
	"github.com/openvasc/vasmesh/pkg/smooth"
)

// ErrNonManifold is returned when a region cannot be restored to a
// valid closed manifold. The wrapped error names the region; other
// regions are still repaired and reported, and the caller decides
// whether to keep the partially repaired mesh.
var ErrNonManifold = errors.New("repair: region is not a closed manifold after repair")

// relaxAttempts bounds the local re-relaxation passes used to resolve
// degenerate or intersecting triangles.
const relaxAttempts = 8

// degenerateAreaFactor scales the mean face area of a region into the
// threshold below which a triangle counts as degenerate.
const degenerateAreaFactor = 1e-8

// RegionReport is the repair outcome for a single region.
type RegionReport struct {
	RegionID          string
	DegenerateFound   int
	DegenerateFixed   int
	SelfIntersections int
	IntersectionsLeft int
	NonManifoldEdges  int
	Restored          bool
}

// Report aggregates per-region repair outcomes.
type Report struct {
	Regions []RegionReport
}

// Failed returns the IDs of regions that could not be restored.
func (r Report) Failed() []string {
	var ids []string
	for _, reg := range r.Regions {
		if !reg.Restored {
			ids = append(ids, reg.RegionID)
		}
	}
	return ids
}

// Repair audits every region of the mesh and attempts local
// re-stitching where relaxation produced invalid geometry. wasClosed
// states whether the input mesh was watertight before smoothing; only
// then is closedness enforced. Returns ErrNonManifold (wrapping the
// first failed region) alongside the full report when any region fails.
func Repair(m *mesh.SurfaceMesh, regions []smooth.Region, wasClosed bool) (Report, error) {
	var report Report
	if len(regions) == 0 {
		return report, nil
	}

	adj := mesh.BuildAdjacency(m)
	var firstFailure error

	for _, region := range regions {
		rr := repairRegion(m, adj, &region, wasClosed)
		report.Regions = append(report.Regions, rr)
		if !rr.Restored && firstFailure == nil {
			firstFailure = errors.Wrap(ErrNonManifold, region.ID)
		}
	}

	if touched := smooth.TouchedVertices(regions); len(touched) > 0 {
		mesh.RecomputeNormals(m, adj, touched)
	}
	return report, firstFailure
}

// repairRegion runs the three checks on one region and applies local
// relaxation between rounds until the geometry is clean or attempts run
// out. Only interior vertices ever move.
func repairRegion(m *mesh.SurfaceMesh, adj *mesh.Adjacency, region *smooth.Region, wasClosed bool) RegionReport {
	rr := RegionReport{RegionID: region.ID}

	interior := make(map[int]bool, len(region.Interior))
	for _, v := range region.Interior {
		interior[v] = true
	}
	faces := regionFaces(adj, region)

	degenerate := findDegenerate(m, faces)
	rr.DegenerateFound = len(degenerate)
	intersecting := findIntersections(m, faces)
	rr.SelfIntersections = len(intersecting)

	for attempt := 0; attempt < relaxAttempts && (len(degenerate) > 0 || len(intersecting) > 0); attempt++ {
		suspects := append(append([]int(nil), degenerate...), intersecting...)
		relaxFaces(m, adj, interior, suspects)
		degenerate = findDegenerate(m, faces)
		intersecting = findIntersections(m, faces)
	}
	rr.DegenerateFixed = rr.DegenerateFound - len(degenerate)
	rr.IntersectionsLeft = len(intersecting)

	if wasClosed {
		// Vertex relocation cannot change edge incidence, but the audit
		// guards the exporter contract regardless of how the mesh was
		// produced upstream.
		rr.NonManifoldEdges = countNonManifold(m, region)
	}

	rr.Restored = len(degenerate) == 0 && len(intersecting) == 0 && rr.NonManifoldEdges == 0
	return rr
}

// regionFaces returns the faces incident to any interior vertex of the
// region, sorted and deduplicated. These are exactly the faces whose
// geometry smoothing can have changed.
func regionFaces(adj *mesh.Adjacency, region *smooth.Region) []int {
	set := make(map[int]bool)
	for _, v := range region.Interior {
		for _, f := range adj.Faces[v] {
			set[f] = true
		}
	}
	faces := make([]int, 0, len(set))
	for f := range set {
		faces = append(faces, f)
	}
	sort.Ints(faces)
	return faces
}

// findDegenerate returns the faces whose area has collapsed relative to
// the region's mean face area.
func findDegenerate(m *mesh.SurfaceMesh, faces []int) []int {
	if len(faces) == 0 {
		return nil
	}
	meanArea := 0.0
	for _, f := range faces {
		meanArea += m.FaceArea(f)
	}
	meanArea /= float64(len(faces))
	threshold := meanArea * degenerateAreaFactor

	var bad []int
	for _, f := range faces {
		if m.FaceArea(f) <= threshold {
			bad = append(bad, f)
		}
	}
	return bad
}

// relaxFaces pulls the interior vertices of the suspect faces toward
// the average of their current neighbors. A single uniform Laplacian
// step per vertex untangles collapsed and folded triangles without
// introducing new vertices.
func relaxFaces(m *mesh.SurfaceMesh, adj *mesh.Adjacency, interior map[int]bool, suspects []int) {
	moved := make(map[int]bool)
	for _, f := range suspects {
		for _, v := range m.Faces[f] {
			if !interior[v] || moved[v] {
				continue
			}
			moved[v] = true
			neighbors := adj.Neighbors[v]
			if len(neighbors) == 0 {
				continue
			}
			var avg r3.Vec
			for _, n := range neighbors {
				avg = r3.Add(avg, m.Vertices[n])
			}
			m.Vertices[v] = r3.Scale(1/float64(len(neighbors)), avg)
		}
	}
}

// countNonManifold counts edges with a region vertex whose total
// face-use count over the whole mesh differs from two.
func countNonManifold(m *mesh.SurfaceMesh, region *smooth.Region) int {
	inRegion := make(map[int]bool, len(region.Interior)+len(region.Ring))
	for _, v := range region.Interior {
		inRegion[v] = true
	}
	for _, v := range region.Ring {
		inRegion[v] = true
	}

	bad := 0
	for e, n := range mesh.EdgeUseCounts(m, nil) {
		if n != 2 && (inRegion[e.A] || inRegion[e.B]) {
			bad++
		}
	}
	return bad
}
