// Package engine implements whole-document rigid transformations.
//
// This package implements the complete classify → transform → rejoin →
// markers → views pipeline that moves and rotates every movable element of
// a building-design document in one transaction. By centralizing this
// logic, CLI and API entry points share identical behavior.
//
// # Architecture
//
// A run proceeds through fixed stages inside one document transaction:
//
//  1. Classify: partition elements once into independent, hosted,
//     sketch-bound, annotation, and excluded sets
//  2. Capture: record structural adjacency joins before geometry moves
//  3. Transform: rotate then translate regular elements, with per-element
//     fallback when a batch is rejected
//  4. Sketch: transform sketch-bound elements individually
//  5. Rejoin: restore captured joins, retrying with a proximity tolerance
//  6. Markers: reposition directional markers and correct their facing
//  7. Regenerate: settle derived geometry before any view is touched
//  8. Views: recompute crop frames, falling back to section extents
//  9. Annotations: propagate the transform to view annotations
//
// A constraint rejection on a single element degrades that element, never
// the run. Only a degenerate transform or a storage failure aborts the
// transaction.
//
// # Usage
//
//	runner := engine.NewRunner(logger)
//	opts := engine.Options{
//	    Translation:     mgl64.Vec3{50, 50, 0},
//	    RotationDegrees: 90,
//	}
//	result, err := runner.Execute(ctx, store, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Regular.Succeeded)
package engine

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/planshift/planshift/pkg/geom"
	"github.com/planshift/planshift/pkg/model"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Config
// =============================================================================

const (
	// DefaultMarkerCorrectionDegrees is the facing correction applied to
	// directional markers after a rotation. Marker families store their
	// facing vector offset from the view direction by this angle.
	DefaultMarkerCorrectionDegrees = 45.0

	// DefaultJoinTolerance is the endpoint proximity (in document units)
	// accepted when restoring a structural join whose geometry drifted
	// during the transform.
	DefaultJoinTolerance = 0.1
)

const radiansPerDegree = math.Pi / 180

// ErrNoMovableElements is returned when classification leaves nothing to
// transform.
var ErrNoMovableElements = errors.New("no movable elements")

// =============================================================================
// Options - Transformation Configuration
// =============================================================================

// Options contains all configuration for one transformation run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Translation is the offset applied to the whole document.
	Translation mgl64.Vec3 `json:"translation"`

	// RotationDegrees is the rotation about the vertical axis,
	// counterclockwise when seen from above. Zero skips the rotation
	// stages entirely.
	RotationDegrees float64 `json:"rotation_degrees,omitempty"`

	// RotationCenter is the point the rotation pivots around. Nil means
	// the centroid of the regular elements' combined bounding box.
	RotationCenter *mgl64.Vec3 `json:"rotation_center,omitempty"`

	// MarkerCorrectionDegrees is the facing correction applied to
	// directional markers after a rotation. Nil means the default;
	// zero is a legal configured value and disables the correction.
	MarkerCorrectionDegrees *float64 `json:"marker_correction_degrees,omitempty"`

	// JoinTolerance is the endpoint proximity accepted when restoring
	// joins. Zero means the default.
	JoinTolerance float64 `json:"join_tolerance,omitempty"`

	// Categories restricts the run to the listed categories. Empty means
	// every category is eligible.
	Categories model.CategorySet `json:"categories,omitempty"`

	// DryRun executes every stage but rolls the transaction back instead
	// of committing, so the stored document is untouched.
	DryRun bool `json:"dry_run,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if math.IsNaN(o.RotationDegrees) || math.IsInf(o.RotationDegrees, 0) {
		return fmt.Errorf("rotation must be finite, got %v", o.RotationDegrees)
	}
	for i := 0; i < 3; i++ {
		if math.IsNaN(o.Translation[i]) || math.IsInf(o.Translation[i], 0) {
			return fmt.Errorf("translation must be finite, got %v", o.Translation)
		}
	}
	if o.MarkerCorrectionDegrees == nil {
		v := DefaultMarkerCorrectionDegrees
		o.MarkerCorrectionDegrees = &v
	}
	if math.IsNaN(*o.MarkerCorrectionDegrees) || math.IsInf(*o.MarkerCorrectionDegrees, 0) {
		return fmt.Errorf("marker correction must be finite, got %v", *o.MarkerCorrectionDegrees)
	}
	if o.JoinTolerance == 0 {
		o.JoinTolerance = DefaultJoinTolerance
	}
	if o.JoinTolerance < 0 {
		return fmt.Errorf("join tolerance must be positive, got %v", o.JoinTolerance)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Rotates reports whether the run includes a rotation stage.
func (o *Options) Rotates() bool {
	return o.RotationDegrees != 0
}

// RotationRadians returns the rotation angle in radians.
func (o *Options) RotationRadians() float64 {
	return o.RotationDegrees * radiansPerDegree
}

// =============================================================================
// Result - Run Outcome
// =============================================================================

// Tally counts outcomes for one element group.
type Tally struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func (t *Tally) succeed(n int) { t.Attempted += n; t.Succeeded += n }
func (t *Tally) fail(n int)    { t.Attempted += n; t.Failed += n }

// Result contains the outcome of a transformation run.
type Result struct {
	// Transform is the composed rigid transform that was applied.
	Transform geom.Transform `json:"-"`

	// RotationCenter is the pivot actually used, resolved from options
	// or computed from the regular elements' bounding box. Zero when the
	// run does not rotate.
	RotationCenter mgl64.Vec3 `json:"rotation_center"`

	// Per-group outcome tallies.
	Regular     Tally `json:"regular"`
	Hosted      Tally `json:"hosted"`
	SketchBound Tally `json:"sketch_bound"`
	Markers     Tally `json:"markers"`
	Views       Tally `json:"views"`
	Annotations Tally `json:"annotations"`

	// RotationPartial counts regular and hosted elements that rejected
	// the rotation stage but still took part in the translation.
	RotationPartial int `json:"rotation_partial,omitempty"`

	// SketchPartial counts sketch-bound elements that translated but
	// rejected the in-place rotation.
	SketchPartial int `json:"sketch_partial,omitempty"`

	// Excluded counts elements classification ruled out of the run.
	Excluded int `json:"excluded,omitempty"`

	// Marker disposition counts.
	MarkersSkipped   int `json:"markers_skipped,omitempty"`
	MarkersAmbiguous int `json:"markers_ambiguous,omitempty"`

	// Join lifecycle counts.
	JoinsCaptured int `json:"joins_captured,omitempty"`
	JoinsRestored int `json:"joins_restored,omitempty"`
	JoinsDropped  int `json:"joins_dropped,omitempty"`

	// Committed reports whether the transaction was published.
	Committed bool `json:"committed"`

	// Stats contains timing information.
	Stats Stats `json:"stats"`
}

// Stats contains run timing statistics.
type Stats struct {
	ElementCount  int           `json:"element_count"`
	ClassifyTime  time.Duration `json:"classify_time"`
	TransformTime time.Duration `json:"transform_time"`
	JoinTime      time.Duration `json:"join_time"`
	MarkerTime    time.Duration `json:"marker_time"`
	ViewTime      time.Duration `json:"view_time"`
	TotalTime     time.Duration `json:"total_time"`
}
