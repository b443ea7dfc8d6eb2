// Package tubegen builds synthetic vascular surface meshes from a
// vessel list: one capped tube per segment, unioned into a single
// implicit solid and tessellated with marching cubes. The overlapping
// endpoint caps it produces are exactly the low-quality junction
// geometry the smoothing pipeline exists to clean up, which makes this
// the natural source of end-to-end fixtures and CLI input surfaces.
package tubegen

import (
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/openvasc/vasmesh/pkg/mesh"
	"github.com/openvasc/vasmesh/pkg/tree"
)

// defaultCells controls marching cubes resolution when the caller
// passes zero.
const defaultCells = 120

// BuildTreeSurface tessellates the union of all vessel tubes into an
// indexed, welded triangle mesh. cells sets the marching cubes grid
// resolution along the longest bounding-box axis.
func BuildTreeSurface(vessels []tree.VesselSegment, cells int) (*mesh.SurfaceMesh, error) {
	if len(vessels) == 0 {
		return nil, errors.New("tubegen: empty vessel list")
	}
	if cells <= 0 {
		cells = defaultCells
	}

	var solid sdf.SDF3
	for i := range vessels {
		tube, err := vesselSolid(&vessels[i])
		if err != nil {
			return nil, err
		}
		if solid == nil {
			solid = tube
		} else {
			solid = sdf.Union3D(solid, tube)
		}
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(solid, renderer)
	if len(triangles) == 0 {
		return nil, errors.New("tubegen: tessellation produced no triangles")
	}

	w := newWelder(len(triangles))
	for _, tri := range triangles {
		w.add(tri[0], tri[1], tri[2])
	}
	return w.finish(), nil
}

// vesselSolid builds one capped tube: a cylinder along the centerline
// with a sphere over each endpoint, matching how the exporter caps open
// vessel ends.
func vesselSolid(v *tree.VesselSegment) (sdf.SDF3, error) {
	dir := r3.Sub(v.Distal, v.Proximal)
	length := r3.Norm(dir)
	if length <= 0 {
		return nil, errors.Errorf("tubegen: vessel %d has zero length", v.ID)
	}
	if v.Radius <= 0 {
		return nil, errors.Errorf("tubegen: vessel %d has non-positive radius", v.ID)
	}

	body, err := sdf.Cylinder3D(length, v.Radius, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "tubegen: vessel %d cylinder", v.ID)
	}

	// Rotate the Z-aligned cylinder onto the centerline, then move its
	// center to the segment midpoint.
	theta := math.Acos(dir.Z / length)
	phi := math.Atan2(dir.Y, dir.X)
	mid := r3.Scale(0.5, r3.Add(v.Proximal, v.Distal))
	transform := sdf.Translate3d(v3.Vec{X: mid.X, Y: mid.Y, Z: mid.Z}).
		Mul(sdf.RotateZ(phi)).
		Mul(sdf.RotateY(theta))
	tube := sdf.Transform3D(body, transform)

	for _, end := range []r3.Vec{v.Proximal, v.Distal} {
		cap3d, err := sdf.Sphere3D(v.Radius)
		if err != nil {
			return nil, errors.Wrapf(err, "tubegen: vessel %d cap", v.ID)
		}
		cap3d = sdf.Transform3D(cap3d, sdf.Translate3d(v3.Vec{X: end.X, Y: end.Y, Z: end.Z}))
		tube = sdf.Union3D(tube, cap3d)
	}
	return tube, nil
}

// weldKey quantizes a position for coincident-vertex lookup. Marching
// cubes emits bitwise-identical positions for shared grid crossings, so
// a fine fixed quantum only has to absorb float formatting, not gaps.
type weldKey struct {
	x, y, z int64
}

const weldQuantum = 1e-9

func keyFor(v v3.Vec) weldKey {
	return weldKey{
		x: int64(math.Round(v.X / weldQuantum)),
		y: int64(math.Round(v.Y / weldQuantum)),
		z: int64(math.Round(v.Z / weldQuantum)),
	}
}

// welder converts the marching cubes triangle soup into an indexed
// mesh, merging coincident corners so the surface is watertight.
type welder struct {
	m     *mesh.SurfaceMesh
	index map[weldKey]int
}

func newWelder(triangles int) *welder {
	return &welder{
		m:     &mesh.SurfaceMesh{Faces: make([][3]int, 0, triangles)},
		index: make(map[weldKey]int, triangles*3/2),
	}
}

func (w *welder) add(a, b, c v3.Vec) {
	face := [3]int{w.vertex(a), w.vertex(b), w.vertex(c)}
	// Grid-aligned slivers collapse under welding; drop them.
	if face[0] == face[1] || face[1] == face[2] || face[2] == face[0] {
		return
	}
	w.m.Faces = append(w.m.Faces, face)
}

func (w *welder) vertex(v v3.Vec) int {
	key := keyFor(v)
	idx, ok := w.index[key]
	if !ok {
		idx = len(w.m.Vertices)
		w.index[key] = idx
		w.m.Vertices = append(w.m.Vertices, r3.Vec{X: v.X, Y: v.Y, Z: v.Z})
	}
	return idx
}

func (w *welder) finish() *mesh.SurfaceMesh {
	mesh.RecomputeNormals(w.m, nil, nil)
	return w.m
}
