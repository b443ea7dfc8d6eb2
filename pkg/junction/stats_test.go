package junction

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestStats_Empty(t *testing.T) {
	s := Stats(nil)
	if s.TotalJunctions != 0 {
		t.Errorf("TotalJunctions = %d, want 0", s.TotalJunctions)
	}
	if s.JunctionTypes == nil || len(s.JunctionTypes) != 0 {
		t.Errorf("JunctionTypes = %v, want empty map", s.JunctionTypes)
	}
	if s.AverageVesselsPerJunction != 0 {
		t.Errorf("AverageVesselsPerJunction = %g, want 0", s.AverageVesselsPerJunction)
	}
}

func TestStats_SingleBifurcation(t *testing.T) {
	points := []Point{
		{Location: r3.Vec{}, Vessels: []int{0, 1, 2}, Degree: 3, Kind: Bifurcation},
	}
	s := Stats(points)
	if s.TotalJunctions != 1 {
		t.Errorf("TotalJunctions = %d, want 1", s.TotalJunctions)
	}
	if s.JunctionTypes[3] != 1 {
		t.Errorf("JunctionTypes[3] = %d, want 1", s.JunctionTypes[3])
	}
	if s.AverageVesselsPerJunction != 3.0 {
		t.Errorf("AverageVesselsPerJunction = %g, want 3.0", s.AverageVesselsPerJunction)
	}
}

func TestStats_MixedDegrees(t *testing.T) {
	points := []Point{
		{Vessels: []int{0, 1, 2}, Degree: 3, Kind: Bifurcation},
		{Vessels: []int{2, 3, 4}, Degree: 3, Kind: Bifurcation},
		{Vessels: []int{4, 5, 6, 7, 8}, Degree: 5, Kind: NFurcation},
	}
	s := Stats(points)
	if s.TotalJunctions != 3 {
		t.Errorf("TotalJunctions = %d, want 3", s.TotalJunctions)
	}
	if s.JunctionTypes[3] != 2 || s.JunctionTypes[5] != 1 {
		t.Errorf("JunctionTypes = %v, want {3:2 5:1}", s.JunctionTypes)
	}
	want := (3.0 + 3.0 + 5.0) / 3.0
	if math.Abs(s.AverageVesselsPerJunction-want) > 1e-12 {
		t.Errorf("AverageVesselsPerJunction = %g, want %g", s.AverageVesselsPerJunction, want)
	}
}
