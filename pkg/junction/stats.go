package junction

import (
	"gonum.org/v1/gonum/stat"
)

// Statistics summarizes a detection run: total junction count, a
// degree histogram, and the mean number of vessels per junction.
// Derived purely from the junction list; no mesh is required, so the
// summary is available even when smoothing is skipped.
type Statistics struct {
	TotalJunctions            int         `yaml:"total_junctions"`
	JunctionTypes             map[int]int `yaml:"junction_types"`
	AverageVesselsPerJunction float64     `yaml:"average_vessels_per_junction"`
}

// Stats aggregates the junction list. An empty list yields zeroed
// statistics with an empty (non-nil) histogram.
func Stats(points []Point) Statistics {
	s := Statistics{
		TotalJunctions: len(points),
		JunctionTypes:  make(map[int]int),
	}
	if len(points) == 0 {
		return s
	}

	degrees := make([]float64, len(points))
	for i, p := range points {
		s.JunctionTypes[p.Degree]++
		degrees[i] = float64(p.Degree)
	}
	s.AverageVesselsPerJunction = stat.Mean(degrees, nil)
	return s
}
