package model

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/planshift/planshift/pkg/geom"
)

// ViewKind tags the projection type of a view. Plan and section views own
// crop frames; section views additionally carry an alternate world-aligned
// extent used as a fallback update path.
type ViewKind int

const (
	ViewPlan ViewKind = iota
	ViewSection
	ViewElevation
)

// Frame is a view's crop extent: an origin, an orthonormal basis, and
// min/max bounds expressed in that local basis. Updates must preserve the
// extent size - only origin and basis change when the document moves.
type Frame struct {
	Active bool

	Origin mgl64.Vec3
	BasisX mgl64.Vec3
	BasisY mgl64.Vec3
	BasisZ mgl64.Vec3

	// Min and Max bound the extent in the local frame.
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Orthonormal reports whether the three basis vectors are mutually
// perpendicular unit vectors within tol.
func (f Frame) Orthonormal(tol float64) bool {
	units := []mgl64.Vec3{f.BasisX, f.BasisY, f.BasisZ}
	for i, u := range units {
		if math.Abs(u.Len()-1) > tol {
			return false
		}
		for j := i + 1; j < len(units); j++ {
			if math.Abs(u.Dot(units[j])) > tol {
				return false
			}
		}
	}
	return true
}

// View is a derived projection of the document. Its frame is secondary
// state: it depends on element geometry and is updated only after all
// model geometry has settled.
type View struct {
	ID       ID
	Name     string
	Kind     ViewKind
	Template bool

	// Frame is the primary extent representation.
	Frame Frame

	// FrameMutable reports whether the primary path may rewrite the frame.
	// When false the fallback extent is the only update path.
	FrameMutable bool

	// SectionExtent is the alternate, world-aligned extent representation
	// carried by section views. Empty for views without one.
	SectionExtent geom.Box
}
