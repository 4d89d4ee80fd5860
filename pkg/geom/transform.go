// Package geom provides the rigid-body math used to relocate design
// documents: points and vectors (via [mgl64]), axis-aligned bounding boxes,
// and distance-preserving transforms composed of a rotation and a
// translation.
//
// A [Transform] keeps its rotation (Linear) and translation (Origin)
// logically separate so callers can apply them independently - the engine
// relies on this to move marker positions with the full transform while
// correcting orientations with a local rotation only.
package geom

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrDegenerateAxis is returned by [RotationAtPoint] when the rotation axis
// has (near-)zero length. A degenerate axis cannot define a rotation, so
// composition fails before any geometry is touched.
var ErrDegenerateAxis = errors.New("rotation axis has zero length")

// AxisZ is the vertical axis used for in-plane building rotations.
var AxisZ = mgl64.Vec3{0, 0, 1}

// epsilon bounds floating-point comparisons for identity and
// orthonormality checks.
const epsilon = 1e-9

// Transform is a rigid spatial map: p' = Linear*p + Origin.
//
// Linear is guaranteed orthonormal by the constructors, so the transform
// preserves pairwise distances (isometry). The zero value is NOT the
// identity - use [Identity].
type Transform struct {
	Linear mgl64.Mat3 // rotation-only part, orthonormal
	Origin mgl64.Vec3 // translation component
}

// Identity returns the transform that maps every point to itself.
func Identity() Transform {
	return Transform{Linear: mgl64.Ident3()}
}

// Translation returns a pure translation by offset.
func Translation(offset mgl64.Vec3) Transform {
	return Transform{Linear: mgl64.Ident3(), Origin: offset}
}

// RotationAtPoint returns a rotation of angle radians about an axis through
// center. The axis does not need to be unit length, but it must be non-zero:
// a degenerate axis yields ErrDegenerateAxis.
func RotationAtPoint(axis mgl64.Vec3, angle float64, center mgl64.Vec3) (Transform, error) {
	if axis.Len() < epsilon {
		return Transform{}, ErrDegenerateAxis
	}
	q := mgl64.QuatRotate(angle, axis.Normalize())
	linear := mgl64.Mat3FromCols(
		q.Rotate(mgl64.Vec3{1, 0, 0}),
		q.Rotate(mgl64.Vec3{0, 1, 0}),
		q.Rotate(mgl64.Vec3{0, 0, 1}),
	)
	// Rotating about center is equivalent to rotating about the world
	// origin with a compensating translation.
	return Transform{
		Linear: linear,
		Origin: center.Sub(linear.Mul3x1(center)),
	}, nil
}

// Mul composes two transforms: (t.Mul(u)).OfPoint(p) == t.OfPoint(u.OfPoint(p)).
func (t Transform) Mul(u Transform) Transform {
	return Transform{
		Linear: t.Linear.Mul3(u.Linear),
		Origin: t.Linear.Mul3x1(u.Origin).Add(t.Origin),
	}
}

// OfPoint applies the full transform to a point.
func (t Transform) OfPoint(p mgl64.Vec3) mgl64.Vec3 {
	return t.Linear.Mul3x1(p).Add(t.Origin)
}

// OfVector applies only the rotation part to a direction vector.
// Directions are position-independent, so the translation is ignored.
func (t Transform) OfVector(v mgl64.Vec3) mgl64.Vec3 {
	return t.Linear.Mul3x1(v)
}

// Inverse returns the transform that exactly undoes t.
// Because Linear is orthonormal its inverse is its transpose.
func (t Transform) Inverse() Transform {
	inv := t.Linear.Transpose()
	return Transform{
		Linear: inv,
		Origin: inv.Mul3x1(t.Origin).Mul(-1),
	}
}

// IsTranslation reports whether the rotation part is the identity, meaning
// the transform only shifts geometry. Batch operations use this to take the
// cheaper move path.
func (t Transform) IsTranslation() bool {
	ident := mgl64.Ident3()
	for i := 0; i < 9; i++ {
		if math.Abs(t.Linear[i]-ident[i]) > epsilon {
			return false
		}
	}
	return true
}

// IsIdentity reports whether the transform maps every point to itself.
func (t Transform) IsIdentity() bool {
	return t.IsTranslation() && t.Origin.Len() < epsilon
}

// Determinant returns the determinant of the linear part. A rigid transform
// always has determinant +1; anything else indicates a reflection or scale
// crept in.
func (t Transform) Determinant() float64 {
	return t.Linear.Det()
}

// IsRigid reports whether the linear part is orthonormal with determinant +1,
// i.e. a proper rotation. All constructor-built transforms satisfy this.
func (t Transform) IsRigid() bool {
	prod := t.Linear.Mul3(t.Linear.Transpose())
	ident := mgl64.Ident3()
	for i := 0; i < 9; i++ {
		if math.Abs(prod[i]-ident[i]) > 1e-6 {
			return false
		}
	}
	return math.Abs(t.Determinant()-1) < 1e-6
}

// AlmostEqual reports whether two points coincide within tol.
func AlmostEqual(a, b mgl64.Vec3, tol float64) bool {
	return a.Sub(b).Len() <= tol
}
