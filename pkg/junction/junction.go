// Package junction locates the points where three or more vessel
// segments of a vascular tree meet. Detection clusters vessel endpoints
// by coordinate tolerance and cross-checks every cluster against the
// connectivity graph: connectivity is authoritative, coordinates only
// refine the representative location. Accidental coordinate coincidences
// between unrelated vessels never produce a junction.
package junction

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidTolerance is returned by Detect for a non-positive
// clustering tolerance.
var ErrInvalidTolerance = errors.New("junction: coordinate tolerance must be positive")

// Kind classifies a junction by the number of vessels meeting there.
type Kind int

const (
	Bifurcation  Kind = iota // 3 vessels (1 parent, 2 children)
	Trifurcation             // 4 vessels
	NFurcation               // 5 or more vessels
)

func (k Kind) String() string {
	switch k {
	case Bifurcation:
		return "bifurcation"
	case Trifurcation:
		return "trifurcation"
	case NFurcation:
		return "n-furcation"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// kindForDegree maps a vessel count to the junction kind. Degree < 3 is
// a continuation, not a junction, and never reaches this.
func kindForDegree(degree int) Kind {
	switch degree {
	case 3:
		return Bifurcation
	case 4:
		return Trifurcation
	default:
		return NFurcation
	}
}

// Point is a detected junction: a representative location, the sorted
// set of vessels meeting there, and the degree (count of distinct
// vessels, always >= 3). Immutable once detected.
type Point struct {
	Location r3.Vec
	Vessels  []int
	Degree   int
	Kind     Kind
}

func (p Point) String() string {
	return fmt.Sprintf("%s at (%.4g, %.4g, %.4g) vessels %v",
		p.Kind, p.Location.X, p.Location.Y, p.Location.Z, p.Vessels)
}
