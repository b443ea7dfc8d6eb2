package tree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrInconsistentConnectivity is returned when a vessel references a
// parent or child that does not exist in the vessel list, references
// itself, or when two vessels share an ID. Junction detection on such a
// tree would silently miscount junction degree, so this is fatal and is
// raised before any mesh mutation.
var ErrInconsistentConnectivity = errors.New("inconsistent vessel connectivity")

// ConnectivityGraph maps each vessel ID to the set of vessel IDs that
// share an endpoint with it. The adjacency is symmetric and immutable
// once built; rebuild it whenever the vessel list changes.
type ConnectivityGraph struct {
	adjacency map[int][]int
}

// Neighbors returns the vessels adjacent to id, sorted by ID.
// The returned slice is shared and must not be modified.
func (g *ConnectivityGraph) Neighbors(id int) []int {
	return g.adjacency[id]
}

// Contains reports whether the vessel ID is present in the graph.
func (g *ConnectivityGraph) Contains(id int) bool {
	_, ok := g.adjacency[id]
	return ok
}

// VesselCount returns the number of vessels in the graph.
func (g *ConnectivityGraph) VesselCount() int {
	return len(g.adjacency)
}

// Adjacent reports whether vessels a and b share an endpoint.
func (g *ConnectivityGraph) Adjacent(a, b int) bool {
	for _, n := range g.adjacency[a] {
		if n == b {
			return true
		}
	}
	return false
}

// inconsistency is a single connectivity validation finding.
type inconsistency struct {
	VesselID int
	Message  string
}

func (f inconsistency) String() string {
	return fmt.Sprintf("vessel %d: %s", f.VesselID, f.Message)
}

// BuildConnectivity derives the symmetric vessel adjacency graph from
// parent/child references. It is a pure function of the vessel list.
// Every inconsistency in the tree is collected before failing, so the
// returned error names all of them, wrapped around
// ErrInconsistentConnectivity.
func BuildConnectivity(vessels []VesselSegment) (*ConnectivityGraph, error) {
	byID := make(map[int]*VesselSegment, len(vessels))
	var findings []inconsistency

	for i := range vessels {
		v := &vessels[i]
		if _, dup := byID[v.ID]; dup {
			findings = append(findings, inconsistency{v.ID, "duplicate vessel ID"})
			continue
		}
		byID[v.ID] = v
	}

	adjacency := make(map[int]map[int]bool, len(vessels))
	for id := range byID {
		adjacency[id] = make(map[int]bool)
	}

	connect := func(a, b int) {
		adjacency[a][b] = true
		adjacency[b][a] = true
	}

	// Walk the input slice, not the map, so findings come out in input
	// order and the error text is deterministic.
	for i := range vessels {
		v := &vessels[i]
		if byID[v.ID] != v {
			continue // duplicate, already reported
		}
		if v.Parent != NoParent {
			switch {
			case v.Parent == v.ID:
				findings = append(findings, inconsistency{v.ID, "vessel is its own parent"})
			case byID[v.Parent] == nil:
				findings = append(findings, inconsistency{v.ID,
					fmt.Sprintf("parent %d not in vessel list", v.Parent)})
			default:
				connect(v.ID, v.Parent)
			}
		}
		for _, child := range v.Children {
			switch {
			case child == v.ID:
				findings = append(findings, inconsistency{v.ID, "vessel is its own child"})
			case byID[child] == nil:
				findings = append(findings, inconsistency{v.ID,
					fmt.Sprintf("child %d not in vessel list", child)})
			default:
				connect(v.ID, child)
			}
		}
	}

	if len(findings) > 0 {
		msgs := make([]string, len(findings))
		for i, f := range findings {
			msgs[i] = f.String()
		}
		return nil, errors.Wrap(ErrInconsistentConnectivity, strings.Join(msgs, "; "))
	}

	g := &ConnectivityGraph{adjacency: make(map[int][]int, len(adjacency))}
	for id, set := range adjacency {
		neighbors := make([]int, 0, len(set))
		for n := range set {
			neighbors = append(neighbors, n)
		}
		sort.Ints(neighbors)
		g.adjacency[id] = neighbors
	}
	return g, nil
}
