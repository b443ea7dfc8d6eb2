package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/openvasc/vasmesh/pkg/junction"
	"github.com/openvasc/vasmesh/pkg/mesh"
	"github.com/openvasc/vasmesh/pkg/smooth"
	"github.com/openvasc/vasmesh/pkg/tree"
)

// ---------------------------------------------------------------------------
// Test fixtures
// ---------------------------------------------------------------------------

// yTree is a parent vessel splitting into two children at the origin.
// The parent radius is 0.5, so the default radius factor gives a
// smoothing radius of 1 around the junction.
func yTree() []tree.VesselSegment {
	return []tree.VesselSegment{
		{ID: 0, Proximal: r3.Vec{X: -2}, Distal: r3.Vec{}, Radius: 0.5, Parent: tree.NoParent, Children: []int{1, 2}},
		{ID: 1, Proximal: r3.Vec{}, Distal: r3.Vec{Y: 2, Z: 1}, Radius: 0.25, Parent: 0},
		{ID: 2, Proximal: r3.Vec{}, Distal: r3.Vec{Y: -2, Z: 1}, Radius: 0.25, Parent: 0},
	}
}

// sphereMesh builds a closed octahedron-subdivision sphere to stand in
// for a tessellated vessel surface.
func sphereMesh(center r3.Vec, radius float64, subdiv int) *mesh.SurfaceMesh {
	m := &mesh.SurfaceMesh{
		Vertices: []r3.Vec{
			{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
		},
		Faces: [][3]int{
			{0, 2, 4}, {2, 1, 4}, {1, 3, 4}, {3, 0, 4},
			{2, 0, 5}, {1, 2, 5}, {3, 1, 5}, {0, 3, 5},
		},
	}

	for s := 0; s < subdiv; s++ {
		midpoints := make(map[mesh.Edge]int)
		midpoint := func(a, b int) int {
			e := mesh.MakeEdge(a, b)
			if idx, ok := midpoints[e]; ok {
				return idx
			}
			mid := r3.Scale(0.5, r3.Add(m.Vertices[a], m.Vertices[b]))
			mid = r3.Scale(1/r3.Norm(mid), mid)
			idx := len(m.Vertices)
			m.Vertices = append(m.Vertices, mid)
			midpoints[e] = idx
			return idx
		}

		next := make([][3]int, 0, len(m.Faces)*4)
		for _, f := range m.Faces {
			a, b, c := f[0], f[1], f[2]
			ab, bc, ca := midpoint(a, b), midpoint(b, c), midpoint(c, a)
			next = append(next,
				[3]int{a, ab, ca},
				[3]int{b, bc, ab},
				[3]int{c, ca, bc},
				[3]int{ab, bc, ca},
			)
		}
		m.Faces = next
	}

	for i, v := range m.Vertices {
		m.Vertices[i] = r3.Add(center, r3.Scale(radius, v))
	}
	mesh.RecomputeNormals(m, nil, nil)
	return m
}

// surfaceFixture offsets the sphere so the junction region at the
// origin covers its -X cap and nothing more.
func surfaceFixture() *mesh.SurfaceMesh {
	return sphereMesh(r3.Vec{X: 0.8}, 1, 3)
}

// ---------------------------------------------------------------------------
// Analyze
// ---------------------------------------------------------------------------

func TestAnalyze_YTree(t *testing.T) {
	result, err := Analyze(yTree(), DefaultConfig())
	require.NoError(t, err)

	require.Len(t, result.Junctions, 1)
	p := result.Junctions[0]
	assert.Equal(t, []int{0, 1, 2}, p.Vessels)
	assert.Equal(t, 3, p.Degree)
	assert.Equal(t, junction.Bifurcation, p.Kind)
	assert.InDelta(t, 0, r3.Norm(p.Location), 1e-12)

	assert.Equal(t, 1, result.Stats.TotalJunctions)
	assert.Equal(t, map[int]int{3: 1}, result.Stats.JunctionTypes)
	assert.InDelta(t, 3.0, result.Stats.AverageVesselsPerJunction, 1e-12)
}

func TestAnalyze_StraightVesselHasNoJunction(t *testing.T) {
	vessels := []tree.VesselSegment{
		{ID: 0, Proximal: r3.Vec{X: -1}, Distal: r3.Vec{}, Radius: 0.5, Parent: tree.NoParent, Children: []int{1}},
		{ID: 1, Proximal: r3.Vec{}, Distal: r3.Vec{X: 1}, Radius: 0.45, Parent: 0},
	}

	result, err := Analyze(vessels, DefaultConfig())
	require.NoError(t, err)

	assert.Empty(t, result.Junctions)
	assert.Equal(t, 0, result.Stats.TotalJunctions)
	assert.Empty(t, result.Stats.JunctionTypes)
	assert.Zero(t, result.Stats.AverageVesselsPerJunction)
}

func TestAnalyze_InvalidConfig(t *testing.T) {
	for name, cfg := range map[string]Config{
		"zero value":             {},
		"negative radius":        {RadiusFactor: -1, Iterations: 5, Tolerance: 1e-6},
		"negative iterations":    {RadiusFactor: 2, Iterations: -1, Tolerance: 1e-6},
		"non-positive tolerance": {RadiusFactor: 2, Iterations: 5, Tolerance: 0},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Analyze(yTree(), cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestAnalyze_InconsistentConnectivity(t *testing.T) {
	vessels := yTree()
	vessels[0].Children = append(vessels[0].Children, 99)

	_, err := Analyze(vessels, DefaultConfig())
	assert.ErrorIs(t, err, tree.ErrInconsistentConnectivity)
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestRun_EndToEnd(t *testing.T) {
	m := surfaceFixture()
	before := m.Clone()

	result, err := Run(yTree(), m, DefaultConfig())
	require.NoError(t, err)

	require.Len(t, result.Regions, 1)
	region := result.Regions[0]
	assert.NotEmpty(t, region.Interior)
	assert.NotEmpty(t, region.Ring)

	// Topology is untouched, only interior vertices relocated.
	assert.Equal(t, before.VertexCount(), m.VertexCount())
	assert.Equal(t, before.FaceCount(), m.FaceCount())
	assert.Equal(t, before.Faces, m.Faces)
	assert.True(t, m.IsClosed(), "mesh no longer closed after smoothing")

	for _, v := range region.Ring {
		assert.Equal(t, before.Vertices[v], m.Vertices[v], "ring vertex %d moved", v)
	}
	moved := 0
	for _, v := range region.Interior {
		if before.Vertices[v] != m.Vertices[v] {
			moved++
		}
	}
	assert.NotZero(t, moved, "no interior vertex moved")

	require.Len(t, result.Repair.Regions, 1)
	assert.True(t, result.Repair.Regions[0].Restored)
	assert.Empty(t, result.Repair.Failed())
}

func TestRun_DisabledLeavesMeshUntouched(t *testing.T) {
	m := surfaceFixture()
	before := m.Clone()

	cfg := DefaultConfig()
	cfg.Enabled = false

	result, err := Run(yTree(), m, cfg)
	require.NoError(t, err)

	// Detection still runs; the surface is never touched.
	assert.Len(t, result.Junctions, 1)
	assert.Equal(t, 1, result.Stats.TotalJunctions)
	assert.Empty(t, result.Regions)
	assert.Equal(t, before.Vertices, m.Vertices)
	assert.Equal(t, before.Normals, m.Normals)
}

func TestRun_NilMesh(t *testing.T) {
	result, err := Run(yTree(), nil, DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, result.Junctions, 1)
	assert.Empty(t, result.Regions)
}

func TestRun_NoJunctionsLeavesMeshUntouched(t *testing.T) {
	vessels := []tree.VesselSegment{
		{ID: 0, Proximal: r3.Vec{X: -1}, Distal: r3.Vec{}, Radius: 0.5, Parent: tree.NoParent, Children: []int{1}},
		{ID: 1, Proximal: r3.Vec{}, Distal: r3.Vec{X: 1}, Radius: 0.45, Parent: 0},
	}
	m := surfaceFixture()
	before := m.Clone()

	result, err := Run(vessels, m, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, result.Junctions)
	assert.Empty(t, result.Regions)
	assert.Equal(t, before.Vertices, m.Vertices)
}

func TestRun_RadiusCoversMeshIsFatal(t *testing.T) {
	m := surfaceFixture()
	before := m.Clone()

	cfg := DefaultConfig()
	cfg.RadiusFactor = 100

	_, err := Run(yTree(), m, cfg)
	assert.ErrorIs(t, err, smooth.ErrRadiusCoversMesh)
	assert.Equal(t, before.Vertices, m.Vertices, "mesh mutated despite fatal error")
}

func TestRun_ZeroIterations(t *testing.T) {
	m := surfaceFixture()
	before := m.Clone()

	cfg := DefaultConfig()
	cfg.Iterations = 0

	result, err := Run(yTree(), m, cfg)
	require.NoError(t, err)

	// Regions are extracted and audited but relaxation is a no-op.
	assert.Len(t, result.Regions, 1)
	assert.Equal(t, before.Vertices, m.Vertices)
	assert.Empty(t, result.Repair.Failed())
}
