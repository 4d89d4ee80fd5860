package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/planshift/planshift/pkg/document"
	"github.com/planshift/planshift/pkg/geom"
	"github.com/planshift/planshift/pkg/model"
)

// defaultMarkerNames are the canonical names given to the four directional
// markers a new document is seeded with. Users rename them sloppily, so the
// name heuristic also recognizes a single-edit misspelling, but only as a
// weak signal.
var defaultMarkerNames = []string{"north", "south", "east", "west"}

// defaultMarkerRadius is how close to the document origin a marker must sit
// to be considered factory-placed.
const defaultMarkerRadius = 1.0

// markerClass is the disposition of one marker under the factory-placed
// discovery heuristics.
type markerClass int

const (
	markerRegular   markerClass = iota // transformed like any other
	markerDefault                      // factory-placed, excluded from the run
	markerAmbiguous                    // weak match only, transformed but reported
)

// classifyMarker decides whether m is one of the document's factory-placed
// directional markers. An exact canonical name, a system family, or a
// position at the document origin each identifies one on its own. A name
// within a single edit of a canonical name is suggestive but not confident;
// with no stronger signal the marker is ambiguous.
func classifyMarker(m model.Marker) markerClass {
	fuzzy := false
	name := strings.ToLower(strings.TrimSpace(m.Name))
	for _, canonical := range defaultMarkerNames {
		switch levenshtein.ComputeDistance(name, canonical) {
		case 0:
			return markerDefault
		case 1:
			fuzzy = true
		}
	}
	if strings.HasPrefix(strings.ToLower(m.Family), "system") {
		return markerDefault
	}
	if m.Position.Len() <= defaultMarkerRadius {
		return markerDefault
	}
	if fuzzy {
		return markerAmbiguous
	}
	return markerRegular
}

// transformMarkers repositions directional markers. Factory-placed default
// markers anchor the document's orientation legend and are left alone.
// Ambiguous markers are transformed like any other and counted so the
// caller can surface them.
//
// Marker families store their facing offset from the true view direction,
// so after a rotation every transformed marker's facing receives the
// configured correction on top of the rotation itself. The correction
// pivots on the marker's own transformed position, so the stored position
// ends up exactly at the transform of the original position for single and
// hub markers alike.
func (r *Runner) transformMarkers(ctx context.Context, repo document.Repository,
	transform geom.Transform, rotation *geom.Transform, opts Options, result *Result) error {

	markers, err := repo.Markers(ctx)
	if err != nil {
		return fmt.Errorf("load markers: %w", err)
	}

	var correction geom.Transform
	if rotation != nil {
		correction, err = geom.RotationAtPoint(geom.AxisZ,
			*opts.MarkerCorrectionDegrees*radiansPerDegree, mgl64.Vec3{})
		if err != nil {
			return fmt.Errorf("correction: %w", err)
		}
	}

	for _, m := range markers {
		switch classifyMarker(m) {
		case markerDefault:
			opts.Logger.Debug("default marker skipped", "marker", m.ID, "name", m.Name)
			result.MarkersSkipped++
			continue
		case markerAmbiguous:
			opts.Logger.Warn("marker discovery ambiguous, transforming anyway",
				"marker", m.ID, "name", m.Name)
			result.MarkersAmbiguous++
		}

		result.Markers.Attempted++

		m.Position = transform.OfPoint(m.Position)
		m.Facing = transform.OfVector(m.Facing)
		if rotation != nil {
			m.Facing = correction.OfVector(m.Facing)
		}

		if err := repo.UpdateMarker(ctx, m); err != nil {
			opts.Logger.Warn("marker update rejected", "marker", m.ID, "err", err)
			result.Markers.Failed++
			continue
		}
		result.Markers.Succeeded++
	}
	return nil
}
