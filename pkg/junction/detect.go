package junction

import (
	"math"
	"sort"

	"github.com/emirpasic/gods/sets/treeset"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/openvasc/vasmesh/pkg/tree"
)

// endpoint is one end of a vessel centerline, tagged with its vessel ID.
type endpoint struct {
	vessel int
	pos    r3.Vec
}

// gridCell quantizes a coordinate at the clustering tolerance.
type gridCell struct {
	x, y, z int
}

func cellFor(p r3.Vec, tolerance float64) gridCell {
	return gridCell{
		x: int(math.Floor(p.X / tolerance)),
		y: int(math.Floor(p.Y / tolerance)),
		z: int(math.Floor(p.Z / tolerance)),
	}
}

// unionFind is a disjoint-set forest with path compression, used to
// merge endpoint clusters without an all-pairs distance scan.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}

// Detect locates all junctions of the vessel tree. Endpoints are
// clustered with a tolerance-sized spatial hash grid (only the 27
// neighboring cells of an endpoint are candidates, keeping clustering
// near-linear in vessel count), then every cluster is gated by the
// connectivity graph: the surviving vessel set must lie inside the
// closed neighborhood of one of its members. Clusters of fewer than
// three distinct vessels are continuations, not junctions.
//
// The returned points are ordered by their smallest member vessel ID,
// so the output is independent of both the vessel-list permutation and
// graph-internal map iteration order.
func Detect(vessels []tree.VesselSegment, graph *tree.ConnectivityGraph, tolerance float64) ([]Point, error) {
	if tolerance <= 0 {
		return nil, ErrInvalidTolerance
	}

	endpoints := make([]endpoint, 0, len(vessels)*2)
	for i := range vessels {
		v := &vessels[i]
		endpoints = append(endpoints,
			endpoint{vessel: v.ID, pos: v.Proximal},
			endpoint{vessel: v.ID, pos: v.Distal})
	}

	grid := make(map[gridCell][]int, len(endpoints))
	for i, ep := range endpoints {
		cell := cellFor(ep.pos, tolerance)
		grid[cell] = append(grid[cell], i)
	}

	// Merge endpoints within tolerance of each other. Any pair within
	// tolerance shares a cell or sits in adjacent cells, so the 27-cell
	// neighborhood is exhaustive.
	uf := newUnionFind(len(endpoints))
	for i, ep := range endpoints {
		cell := cellFor(ep.pos, tolerance)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					neighbor := gridCell{cell.x + dx, cell.y + dy, cell.z + dz}
					for _, j := range grid[neighbor] {
						if j <= i {
							continue
						}
						if r3.Norm(r3.Sub(ep.pos, endpoints[j].pos)) <= tolerance {
							uf.union(i, j)
						}
					}
				}
			}
		}
	}

	clusters := make(map[int][]int)
	for i := range endpoints {
		root := uf.find(i)
		clusters[root] = append(clusters[root], i)
	}

	var points []Point
	for _, members := range clusters {
		if p, ok := gateCluster(endpoints, members, graph); ok {
			points = append(points, p)
		}
	}

	// A vessel can head one junction at each endpoint, so break ID ties
	// on the full membership to keep the order deterministic.
	sort.Slice(points, func(i, j int) bool {
		a, b := points[i].Vessels, points[j].Vessels
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
	return points, nil
}

// gateCluster cross-checks one coordinate cluster against the
// connectivity graph and builds its junction point. The cluster's
// vessels must fit inside the closed neighborhood (vessel plus declared
// parent/children) of one member, the junction hub; members outside
// every candidate hub's neighborhood are accidental proximity and are
// dropped. Returns false for clusters that gate down to fewer than
// three distinct vessels.
func gateCluster(endpoints []endpoint, members []int, graph *tree.ConnectivityGraph) (Point, bool) {
	vesselSet := treeset.NewWithIntComparator()
	for _, i := range members {
		vesselSet.Add(endpoints[i].vessel)
	}
	if vesselSet.Size() < 3 {
		return Point{}, false
	}

	candidates := make([]int, 0, vesselSet.Size())
	for _, v := range vesselSet.Values() {
		candidates = append(candidates, v.(int))
	}

	// Pick the hub whose closed neighborhood covers the most cluster
	// members; ties resolve to the smallest vessel ID since candidates
	// are already sorted.
	var hubSupport []int
	for _, hub := range candidates {
		supported := make([]int, 0, len(candidates))
		for _, v := range candidates {
			if v == hub || graph.Adjacent(hub, v) {
				supported = append(supported, v)
			}
		}
		if len(supported) > len(hubSupport) {
			hubSupport = supported
		}
	}
	if len(hubSupport) < 3 {
		return Point{}, false
	}

	supported := make(map[int]bool, len(hubSupport))
	for _, v := range hubSupport {
		supported[v] = true
	}

	// Representative location: centroid of the supported endpoints.
	var centroid r3.Vec
	count := 0
	for _, i := range members {
		if supported[endpoints[i].vessel] {
			centroid = r3.Add(centroid, endpoints[i].pos)
			count++
		}
	}
	centroid = r3.Scale(1/float64(count), centroid)

	degree := len(hubSupport)
	return Point{
		Location: centroid,
		Vessels:  hubSupport,
		Degree:   degree,
		Kind:     kindForDegree(degree),
	}, true
}
