package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Roughness measures high-frequency noise over a vertex subset as the
// mean absolute deviation of dihedral angles across edges whose both
// endpoints lie in the subset. A perfectly smooth patch scores near
// zero; the overlapping caps at an unsmoothed vessel junction score
// high. nil selects the whole mesh.
//
// Smoothing tests rely on this metric being monotonically non-increasing
// in the iteration count.
func Roughness(m *SurfaceMesh, vertices []int) float64 {
	inSet := func(int) bool { return true }
	if vertices != nil {
		set := make(map[int]bool, len(vertices))
		for _, v := range vertices {
			set[v] = true
		}
		inSet = func(v int) bool { return set[v] }
	}

	// Map each interior edge to its two adjacent faces.
	edgeFaces := make(map[Edge][2]int, m.FaceCount()*3/2)
	edgeSeen := make(map[Edge]int, m.FaceCount()*3/2)
	for f, face := range m.Faces {
		for i := 0; i < 3; i++ {
			e := MakeEdge(face[i], face[(i+1)%3])
			if !inSet(e.A) || !inSet(e.B) {
				continue
			}
			pair := edgeFaces[e]
			switch edgeSeen[e] {
			case 0:
				pair[0] = f
			case 1:
				pair[1] = f
			}
			edgeFaces[e] = pair
			edgeSeen[e]++
		}
	}

	var angles []float64
	for e, pair := range edgeFaces {
		if edgeSeen[e] != 2 {
			continue
		}
		n0 := m.FaceNormal(pair[0])
		n1 := m.FaceNormal(pair[1])
		if r3.Norm(n0) == 0 || r3.Norm(n1) == 0 {
			continue
		}
		dot := r3.Dot(n0, n1)
		dot = math.Max(-1, math.Min(1, dot))
		angles = append(angles, math.Acos(dot))
	}
	if len(angles) == 0 {
		return 0
	}

	mean := 0.0
	for _, a := range angles {
		mean += a
	}
	mean /= float64(len(angles))

	dev := 0.0
	for _, a := range angles {
		dev += math.Abs(a - mean)
	}
	return dev / float64(len(angles))
}
