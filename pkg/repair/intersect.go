package repair

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/openvasc/vasmesh/pkg/mesh"
)

// findIntersections scans the region's faces for pairwise
// self-intersections. An axis-aligned bounding-box prefilter keeps the
// scan tractable; face pairs sharing a vertex are excluded since
// adjacent triangles always touch along their common edge.
func findIntersections(m *mesh.SurfaceMesh, faces []int) []int {
	type box struct {
		min, max r3.Vec
	}
	boxes := make([]box, len(faces))
	for i, f := range faces {
		a, b, c := m.FaceVertices(f)
		boxes[i] = box{
			min: r3.Vec{X: min3(a.X, b.X, c.X), Y: min3(a.Y, b.Y, c.Y), Z: min3(a.Z, b.Z, c.Z)},
			max: r3.Vec{X: max3(a.X, b.X, c.X), Y: max3(a.Y, b.Y, c.Y), Z: max3(a.Z, b.Z, c.Z)},
		}
	}

	hit := make(map[int]bool)
	for i := 0; i < len(faces); i++ {
		for j := i + 1; j < len(faces); j++ {
			if !boxesOverlap(boxes[i].min, boxes[i].max, boxes[j].min, boxes[j].max) {
				continue
			}
			if sharesVertex(m.Faces[faces[i]], m.Faces[faces[j]]) {
				continue
			}
			if trianglesIntersect(m, faces[i], faces[j]) {
				hit[faces[i]] = true
				hit[faces[j]] = true
			}
		}
	}

	var out []int
	for _, f := range faces {
		if hit[f] {
			out = append(out, f)
		}
	}
	return out
}

func min3(a, b, c float64) float64 { return math.Min(a, math.Min(b, c)) }
func max3(a, b, c float64) float64 { return math.Max(a, math.Max(b, c)) }

func boxesOverlap(minA, maxA, minB, maxB r3.Vec) bool {
	return minA.X <= maxB.X && minB.X <= maxA.X &&
		minA.Y <= maxB.Y && minB.Y <= maxA.Y &&
		minA.Z <= maxB.Z && minB.Z <= maxA.Z
}

func sharesVertex(a, b [3]int) bool {
	for _, va := range a {
		for _, vb := range b {
			if va == vb {
				return true
			}
		}
	}
	return false
}

// trianglesIntersect tests two triangles by clipping each edge of one
// against the plane and interior of the other. Edge-versus-triangle
// covers every crossing configuration of two triangles that share no
// vertex.
func trianglesIntersect(m *mesh.SurfaceMesh, fa, fb int) bool {
	a0, a1, a2 := m.FaceVertices(fa)
	b0, b1, b2 := m.FaceVertices(fb)

	edges := [][2]r3.Vec{
		{a0, a1}, {a1, a2}, {a2, a0},
	}
	for _, e := range edges {
		if segmentHitsTriangle(e[0], e[1], b0, b1, b2) {
			return true
		}
	}
	edges = [][2]r3.Vec{
		{b0, b1}, {b1, b2}, {b2, b0},
	}
	for _, e := range edges {
		if segmentHitsTriangle(e[0], e[1], a0, a1, a2) {
			return true
		}
	}
	return false
}

// segmentHitsTriangle is the Möller–Trumbore ray test clamped to the
// segment parameter range.
func segmentHitsTriangle(p, q, t0, t1, t2 r3.Vec) bool {
	const eps = 1e-12

	dir := r3.Sub(q, p)
	e1 := r3.Sub(t1, t0)
	e2 := r3.Sub(t2, t0)

	h := r3.Cross(dir, e2)
	det := r3.Dot(e1, h)
	if math.Abs(det) < eps {
		return false // parallel to the triangle plane
	}

	inv := 1 / det
	s := r3.Sub(p, t0)
	u := inv * r3.Dot(s, h)
	if u < 0 || u > 1 {
		return false
	}

	qv := r3.Cross(s, e1)
	v := inv * r3.Dot(dir, qv)
	if v < 0 || u+v > 1 {
		return false
	}

	t := inv * r3.Dot(e2, qv)
	return t > eps && t < 1-eps
}
