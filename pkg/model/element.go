// Package model defines the element vocabulary of a design document:
// spatial elements with point or curve placements, pairwise join records,
// directional markers, and view frames. These types carry no behavior beyond
// geometry bookkeeping - mutation goes through a document store, and the
// transformation rules live in the engine.
package model

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/planshift/planshift/pkg/geom"
)

// ID identifies an element, marker, or view within a document.
type ID uuid.UUID

// NewID returns a fresh random identifier.
func NewID() ID { return ID(uuid.New()) }

// ParseID parses the canonical string form of an identifier.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	return ID(u), err
}

// String returns the canonical UUID string form.
func (id ID) String() string { return uuid.UUID(id).String() }

// IsZero reports whether the identifier is unset.
func (id ID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = ID(u)
	return nil
}

// Less orders identifiers lexicographically by their string form.
// Join records use this to store pairs canonically.
func (id ID) Less(other ID) bool { return id.String() < other.String() }

// LocationKind tags how an element is placed in the document.
type LocationKind int

const (
	// LocationNone marks elements without a placement (type-like or
	// purely derived elements). They are never transformed directly.
	LocationNone LocationKind = iota
	// LocationPoint marks elements placed at a single insertion point.
	LocationPoint
	// LocationCurve marks elements placed along a line segment
	// (walls, beams, section lines).
	LocationCurve
)

// Location is an element placement: a point, a curve, or absent.
// Only the fields implied by Kind are meaningful.
type Location struct {
	Kind  LocationKind
	Point mgl64.Vec3 // LocationPoint
	Start mgl64.Vec3 // LocationCurve
	End   mgl64.Vec3 // LocationCurve
}

// PointLocation returns a point placement at p.
func PointLocation(p mgl64.Vec3) Location {
	return Location{Kind: LocationPoint, Point: p}
}

// CurveLocation returns a line placement from start to end.
func CurveLocation(start, end mgl64.Vec3) Location {
	return Location{Kind: LocationCurve, Start: start, End: end}
}

// Transformed returns the location after applying t.
func (l Location) Transformed(t geom.Transform) Location {
	switch l.Kind {
	case LocationPoint:
		return PointLocation(t.OfPoint(l.Point))
	case LocationCurve:
		return CurveLocation(t.OfPoint(l.Start), t.OfPoint(l.End))
	default:
		return l
	}
}

// Box returns the bounding box of the placement geometry.
// Absent locations yield the empty box.
func (l Location) Box() geom.Box {
	switch l.Kind {
	case LocationPoint:
		return geom.BoxOf(l.Point)
	case LocationCurve:
		return geom.BoxOf(l.Start, l.End)
	default:
		return geom.Box{}
	}
}

// Endpoints returns the placement's defining points, if any.
func (l Location) Endpoints() []mgl64.Vec3 {
	switch l.Kind {
	case LocationPoint:
		return []mgl64.Vec3{l.Point}
	case LocationCurve:
		return []mgl64.Vec3{l.Start, l.End}
	default:
		return nil
	}
}

// Element is a physical or annotation element of the document.
type Element struct {
	ID       ID
	Name     string
	Category Category
	Location Location

	// Host references the element this one is placed into (a door's wall,
	// a fixture's ceiling). Hosted elements transform after their hosts.
	Host *ID

	// Pinned elements are user-locked and never transformed.
	Pinned bool

	// LockedOrientation marks sketch-bounded elements whose boundary
	// profile rejects reorientation. Translation may still succeed.
	LockedOrientation bool
}

// IsHosted reports whether the element is placed relative to a host.
func (e Element) IsHosted() bool { return e.Host != nil }

// coordinateKeywords name elements that anchor the document's coordinate
// system. They must never move, whatever their category claims.
var coordinateKeywords = []string{
	"base point",
	"survey",
	"internal origin",
	"origin",
}

// AnchorsCoordinates reports whether the element's name marks it as part of
// the document coordinate system (base points, survey points, origins).
func (e Element) AnchorsCoordinates() bool {
	name := strings.ToLower(e.Name)
	for _, kw := range coordinateKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
