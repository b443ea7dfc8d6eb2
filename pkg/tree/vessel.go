// Package tree defines the vessel-tree data structures consumed by the
// junction smoothing pipeline: vessel segments as produced by tree
// growth, and the derived connectivity graph between them. The package
// never mutates vessels; everything here is a read-only view over the
// caller's tree.
package tree

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// NoParent marks a root vessel (one with no parent segment).
const NoParent = -1

// VesselSegment is a single tubular segment of the vascular tree.
// Proximal is the end nearer the root, Distal the end nearer the leaves.
// Parent and Children reference other vessels by ID; the segment itself
// is owned by the tree structure and read-only to this module.
type VesselSegment struct {
	ID       int     `yaml:"id"`
	Proximal r3.Vec  `yaml:"proximal"`
	Distal   r3.Vec  `yaml:"distal"`
	Radius   float64 `yaml:"radius"`
	Parent   int     `yaml:"parent"`
	Children []int   `yaml:"children,omitempty"`
}

// IsRoot reports whether the vessel has no parent.
func (v *VesselSegment) IsRoot() bool {
	return v.Parent == NoParent
}

// Endpoints returns the proximal and distal coordinates of the vessel.
func (v *VesselSegment) Endpoints() (proximal, distal r3.Vec) {
	return v.Proximal, v.Distal
}

// Length returns the Euclidean length of the vessel centerline.
func (v *VesselSegment) Length() float64 {
	return r3.Norm(r3.Sub(v.Distal, v.Proximal))
}
