package model

import (
	"github.com/go-gl/mathgl/mgl64"
)

// MarkerKind distinguishes the two directional-marker shapes a document
// can carry. They transform differently: position and orientation are
// decomposed and handled as separate quantities.
type MarkerKind int

const (
	// MarkerSingle is a marker designating one viewing direction
	// (a section head, a single elevation pointer).
	MarkerSingle MarkerKind = iota
	// MarkerHub is a multi-view hub hosting up to four derived views
	// around a shared body (an elevation cross).
	MarkerHub
)

// Marker designates a viewing direction or a derived-view hub. It is not
// ordinary physical geometry: its Position follows the document transform
// exactly, while Facing is corrected only by a bounded local rotation about
// the marker's own pivot, never by folding angles into the position.
type Marker struct {
	ID   ID
	Name string

	// Family is the originating family name. System-provided families are
	// detected by naming heuristics and excluded from transforms.
	Family string

	Kind     MarkerKind
	Position mgl64.Vec3

	// Facing is the unit direction the marker (and its dependent view)
	// looks along.
	Facing mgl64.Vec3

	// Views lists the derived views hosted by this marker. Single markers
	// have at most one; hubs up to four.
	Views []ID
}

// HostedViews returns the non-zero view identities hosted by the marker.
func (m Marker) HostedViews() []ID {
	out := make([]ID, 0, len(m.Views))
	for _, id := range m.Views {
		if !id.IsZero() {
			out = append(out, id)
		}
	}
	return out
}
