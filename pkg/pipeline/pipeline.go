// Package pipeline wires the junction smoothing stages together:
// connectivity resolution, junction detection, region extraction,
// boundary-preserving relaxation, and post-repair. The pipeline holds
// no state between calls; every input arrives as an argument and the
// whole call is reentrant.
package pipeline

import (
	"github.com/plan-systems/klog"

	"github.com/openvasc/vasmesh/pkg/junction"
	"github.com/openvasc/vasmesh/pkg/mesh"
	"github.com/openvasc/vasmesh/pkg/repair"
	"github.com/openvasc/vasmesh/pkg/smooth"
	"github.com/openvasc/vasmesh/pkg/tree"
)

// Result carries everything the pipeline derives besides the in-place
// mesh mutation: the junction list, its statistics, the extracted
// regions, and the repair report.
type Result struct {
	Junctions []junction.Point
	Stats     junction.Statistics
	Regions   []smooth.Region
	Repair    repair.Report
}

// Analyze runs connectivity resolution, junction detection, and
// statistics without touching any mesh. Useful for diagnostics when
// smoothing is disabled or no surface has been built yet.
func Analyze(vessels []tree.VesselSegment, cfg Config) (Result, error) {
	var result Result
	if err := cfg.Validate(); err != nil {
		return result, err
	}

	graph, err := tree.BuildConnectivity(vessels)
	if err != nil {
		return result, err
	}

	result.Junctions, err = junction.Detect(vessels, graph, cfg.Tolerance)
	if err != nil {
		return result, err
	}
	result.Stats = junction.Stats(result.Junctions)
	return result, nil
}

// Run executes the full pipeline against the surface mesh, relocating
// vertices inside junction regions in place. Vertex and face counts are
// never changed. Fatal errors (bad config, inconsistent connectivity,
// violated region invariants) are returned before any mesh mutation;
// per-region repair failures are reported in the Result and as a
// wrapped repair.ErrNonManifold, leaving successfully repaired regions
// intact for the caller to keep or discard.
func Run(vessels []tree.VesselSegment, m *mesh.SurfaceMesh, cfg Config) (Result, error) {
	result, err := Analyze(vessels, cfg)
	if err != nil {
		return result, err
	}

	if len(result.Junctions) == 0 {
		klog.Infof("junction smoothing: no junctions detected, mesh unchanged")
		return result, nil
	}
	klog.Infof("junction smoothing: detected %d junctions (%d bifurcations)",
		result.Stats.TotalJunctions, result.Stats.JunctionTypes[3])

	if !cfg.Enabled || m == nil || m.IsEmpty() {
		return result, nil
	}

	wasClosed := m.IsClosed()

	result.Regions, err = smooth.ExtractRegions(m, result.Junctions, vessels, cfg.RadiusFactor)
	if err != nil {
		return result, err
	}
	if len(result.Regions) == 0 {
		return result, nil
	}
	klog.Infof("junction smoothing: relaxing %d regions, %d iterations",
		len(result.Regions), cfg.Iterations)

	smooth.Smooth(m, result.Regions, cfg.Iterations)

	result.Repair, err = repair.Repair(m, result.Regions, wasClosed)
	for _, id := range result.Repair.Failed() {
		klog.Warningf("junction smoothing: region %s not restored to a closed manifold", id)
	}
	return result, err
}
