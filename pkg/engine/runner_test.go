package engine

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/planshift/planshift/pkg/document"
	"github.com/planshift/planshift/pkg/geom"
	"github.com/planshift/planshift/pkg/model"
)

func newTestRunner() *Runner {
	return NewRunner(log.NewWithOptions(io.Discard, log.Options{}))
}

func vecNear(a, b mgl64.Vec3) bool {
	return geom.AlmostEqual(a, b, 1e-9)
}

func mustAdd(t *testing.T, d *document.Document, elements ...model.Element) {
	t.Helper()
	for _, e := range elements {
		if err := d.AddElement(e); err != nil {
			t.Fatalf("AddElement: %v", err)
		}
	}
}

func wall(name string, start, end mgl64.Vec3) model.Element {
	return model.Element{
		ID:       model.NewID(),
		Name:     name,
		Category: model.CategoryWall,
		Location: model.CurveLocation(start, end),
	}
}

func TestExecuteTranslationOnly(t *testing.T) {
	ctx := context.Background()
	d := document.NewDocument()
	w := wall("w", mgl64.Vec3{0, 10, 0}, mgl64.Vec3{10, 10, 0})
	mustAdd(t, d, w)

	result, err := newTestRunner().Execute(ctx, d, Options{
		Translation: mgl64.Vec3{50, 50, 0},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Committed {
		t.Error("result not committed")
	}
	if result.Regular.Succeeded != 1 || result.Regular.Failed != 0 {
		t.Errorf("regular tally = %+v", result.Regular)
	}

	got, _ := d.Element(ctx, w.ID)
	if !vecNear(got.Location.Start, mgl64.Vec3{50, 60, 0}) ||
		!vecNear(got.Location.End, mgl64.Vec3{60, 60, 0}) {
		t.Errorf("wall = %v..%v", got.Location.Start, got.Location.End)
	}
}

func TestExecuteRotationMapsPointsExactly(t *testing.T) {
	ctx := context.Background()
	d := document.NewDocument()
	w := wall("w", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 0, 0})
	host := wall("host", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 10, 0})
	door := model.Element{
		ID:       model.NewID(),
		Category: model.CategoryDoor,
		Location: model.PointLocation(mgl64.Vec3{0, 5, 0}),
		Host:     &host.ID,
	}
	mustAdd(t, d, w, host, door)

	center := mgl64.Vec3{0, 0, 0}
	opts := Options{
		Translation:     mgl64.Vec3{50, 50, 0},
		RotationDegrees: 90,
		RotationCenter:  &center,
	}
	result, err := newTestRunner().Execute(ctx, d, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Regular.Succeeded != 2 {
		t.Errorf("regular tally = %+v", result.Regular)
	}
	if result.Hosted.Succeeded != 1 {
		t.Errorf("hosted tally = %+v", result.Hosted)
	}

	// The net effect must equal translate ∘ rotate for every element.
	rot, _ := geom.RotationAtPoint(geom.AxisZ, math.Pi/2, center)
	transform := geom.Translation(opts.Translation).Mul(rot)

	got, _ := d.Element(ctx, w.ID)
	if !vecNear(got.Location.End, transform.OfPoint(mgl64.Vec3{10, 0, 0})) {
		t.Errorf("wall end = %v, want %v", got.Location.End, transform.OfPoint(mgl64.Vec3{10, 0, 0}))
	}
	gotDoor, _ := d.Element(ctx, door.ID)
	if !vecNear(gotDoor.Location.Point, transform.OfPoint(mgl64.Vec3{0, 5, 0})) {
		t.Errorf("door = %v", gotDoor.Location.Point)
	}
}

func TestExecuteSkipsPinnedAndDatum(t *testing.T) {
	ctx := context.Background()
	d := document.NewDocument()
	movable := wall("movable", mgl64.Vec3{}, mgl64.Vec3{10, 0, 0})
	pinned := wall("pinned", mgl64.Vec3{20, 0, 0}, mgl64.Vec3{30, 0, 0})
	pinned.Pinned = true
	base := model.Element{
		ID:       model.NewID(),
		Name:     "Project Base Point",
		Category: model.CategoryBasePoint,
		Location: model.PointLocation(mgl64.Vec3{}),
	}
	mustAdd(t, d, movable, pinned, base)

	result, err := newTestRunner().Execute(ctx, d, Options{Translation: mgl64.Vec3{5, 0, 0}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Excluded != 2 {
		t.Errorf("excluded = %d, want 2", result.Excluded)
	}

	got, _ := d.Element(ctx, pinned.ID)
	if !vecNear(got.Location.Start, mgl64.Vec3{20, 0, 0}) {
		t.Errorf("pinned wall moved to %v", got.Location.Start)
	}
	gotBase, _ := d.Element(ctx, base.ID)
	if !vecNear(gotBase.Location.Point, mgl64.Vec3{}) {
		t.Errorf("base point moved to %v", gotBase.Location.Point)
	}
}

func TestExecuteRotationPartialStillTranslates(t *testing.T) {
	ctx := context.Background()
	d := document.NewDocument()
	free := wall("free", mgl64.Vec3{}, mgl64.Vec3{10, 0, 0})
	locked := wall("locked", mgl64.Vec3{20, 0, 0}, mgl64.Vec3{30, 0, 0})
	locked.LockedOrientation = true
	mustAdd(t, d, free, locked)

	center := mgl64.Vec3{0, 0, 0}
	result, err := newTestRunner().Execute(ctx, d, Options{
		Translation:     mgl64.Vec3{50, 50, 0},
		RotationDegrees: 90,
		RotationCenter:  &center,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// The locked wall refused the rotation but still translated, so it
	// counts as a success with a rotation partial on the side.
	if result.RotationPartial != 1 {
		t.Errorf("rotation partial = %d, want 1", result.RotationPartial)
	}
	if result.Regular.Succeeded != 2 || result.Regular.Failed != 0 {
		t.Errorf("regular tally = %+v", result.Regular)
	}

	got, _ := d.Element(ctx, locked.ID)
	if !vecNear(got.Location.Start, mgl64.Vec3{70, 50, 0}) {
		t.Errorf("locked wall start = %v, want translated only", got.Location.Start)
	}
}

func TestExecuteDefaultCenterFromRegularElements(t *testing.T) {
	ctx := context.Background()
	d := document.NewDocument()
	w := wall("w", mgl64.Vec3{}, mgl64.Vec3{10, 0, 0})
	floor := model.Element{
		ID:       model.NewID(),
		Category: model.CategoryFloor,
		Location: model.CurveLocation(mgl64.Vec3{100, 100, 0}, mgl64.Vec3{110, 110, 0}),
	}
	mustAdd(t, d, w, floor)

	result, err := newTestRunner().Execute(ctx, d, Options{RotationDegrees: 90})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// The default pivot comes from the regular elements only. The far-away
	// floor is sketch-bound and must not drag the centroid toward it.
	if !vecNear(result.RotationCenter, mgl64.Vec3{5, 0, 0}) {
		t.Errorf("rotation center = %v, want wall centroid", result.RotationCenter)
	}
	got, _ := d.Element(ctx, w.ID)
	if !vecNear(got.Location.Start, mgl64.Vec3{5, -5, 0}) {
		t.Errorf("wall start = %v, want rotation about its own centroid", got.Location.Start)
	}
}

func TestExecuteSketchBoundPartialSuccess(t *testing.T) {
	ctx := context.Background()
	d := document.NewDocument()
	floor := model.Element{
		ID:                model.NewID(),
		Name:              "locked floor",
		Category:          model.CategoryFloor,
		Location:          model.CurveLocation(mgl64.Vec3{}, mgl64.Vec3{10, 10, 0}),
		LockedOrientation: true,
	}
	w := wall("w", mgl64.Vec3{}, mgl64.Vec3{10, 0, 0})
	mustAdd(t, d, floor, w)

	center := mgl64.Vec3{5, 5, 0}
	result, err := newTestRunner().Execute(ctx, d, Options{
		Translation:     mgl64.Vec3{50, 50, 0},
		RotationDegrees: 90,
		RotationCenter:  &center,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.SketchPartial != 1 {
		t.Errorf("sketch partial = %d, want 1", result.SketchPartial)
	}
	if result.SketchBound.Succeeded != 1 {
		t.Errorf("sketch tally = %+v", result.SketchBound)
	}

	// The floor translated to where its transformed centroid demands but
	// kept its original orientation.
	rot, _ := geom.RotationAtPoint(geom.AxisZ, math.Pi/2, center)
	transform := geom.Translation(mgl64.Vec3{50, 50, 0}).Mul(rot)
	centroid := mgl64.Vec3{5, 5, 0}
	offset := transform.OfPoint(centroid).Sub(centroid)

	got, _ := d.Element(ctx, floor.ID)
	if !vecNear(got.Location.Start, offset) {
		t.Errorf("floor start = %v, want %v", got.Location.Start, offset)
	}
}

func TestExecuteSketchBoundFullRotation(t *testing.T) {
	ctx := context.Background()
	d := document.NewDocument()
	floor := model.Element{
		ID:       model.NewID(),
		Category: model.CategoryFloor,
		Location: model.CurveLocation(mgl64.Vec3{}, mgl64.Vec3{10, 10, 0}),
	}
	mustAdd(t, d, floor)

	center := mgl64.Vec3{0, 0, 0}
	opts := Options{
		Translation:     mgl64.Vec3{50, 50, 0},
		RotationDegrees: 90,
		RotationCenter:  &center,
	}
	if _, err := newTestRunner().Execute(ctx, d, opts); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// Move-then-spin must equal the exact rigid transform.
	rot, _ := geom.RotationAtPoint(geom.AxisZ, math.Pi/2, center)
	transform := geom.Translation(opts.Translation).Mul(rot)
	got, _ := d.Element(ctx, floor.ID)
	if !vecNear(got.Location.Start, transform.OfPoint(mgl64.Vec3{})) ||
		!vecNear(got.Location.End, transform.OfPoint(mgl64.Vec3{10, 10, 0})) {
		t.Errorf("floor = %v..%v", got.Location.Start, got.Location.End)
	}
}

func TestExecuteRestoresJoins(t *testing.T) {
	ctx := context.Background()
	d := document.NewDocument()
	a := wall("a", mgl64.Vec3{}, mgl64.Vec3{10, 0, 0})
	b := wall("b", mgl64.Vec3{10, 0, 0}, mgl64.Vec3{10, 10, 0})
	mustAdd(t, d, a, b)
	if err := d.Join(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("Join: %v", err)
	}

	result, err := newTestRunner().Execute(ctx, d, Options{
		Translation:     mgl64.Vec3{50, 50, 0},
		RotationDegrees: 45,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.JoinsCaptured != 1 || result.JoinsRestored != 1 || result.JoinsDropped != 0 {
		t.Errorf("joins = captured %d, restored %d, dropped %d",
			result.JoinsCaptured, result.JoinsRestored, result.JoinsDropped)
	}
	joined, _ := d.AreJoined(ctx, a.ID, b.ID)
	if !joined {
		t.Error("walls no longer joined after transform")
	}
}

func TestExecuteMarkerDispositions(t *testing.T) {
	ctx := context.Background()
	d := document.NewDocument()
	mustAdd(t, d, wall("w", mgl64.Vec3{}, mgl64.Vec3{10, 0, 0}))

	defaultMarker := model.Marker{
		ID:       model.NewID(),
		Name:     "North",
		Family:   "exterior",
		Kind:     model.MarkerSingle,
		Position: mgl64.Vec3{0.5, 0, 0}, // canonical name alone excludes; origin proximity agrees
		Facing:   mgl64.Vec3{0, 1, 0},
	}
	ambiguous := model.Marker{
		ID:       model.NewID(),
		Name:     "Norh", // one edit from a canonical name, nothing else matches
		Family:   "exterior",
		Kind:     model.MarkerSingle,
		Position: mgl64.Vec3{40, 40, 0},
		Facing:   mgl64.Vec3{0, -1, 0},
	}
	plain := model.Marker{
		ID:       model.NewID(),
		Name:     "Entry Elevation",
		Family:   "exterior",
		Kind:     model.MarkerSingle,
		Position: mgl64.Vec3{5, 12, 0},
		Facing:   mgl64.Vec3{0, -1, 0},
	}
	for _, m := range []model.Marker{defaultMarker, ambiguous, plain} {
		if err := d.AddMarker(m); err != nil {
			t.Fatalf("AddMarker: %v", err)
		}
	}

	center := mgl64.Vec3{0, 0, 0}
	opts := Options{
		Translation:     mgl64.Vec3{50, 50, 0},
		RotationDegrees: 90,
		RotationCenter:  &center,
	}
	result, err := newTestRunner().Execute(ctx, d, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.MarkersSkipped != 1 {
		t.Errorf("markers skipped = %d, want 1", result.MarkersSkipped)
	}
	if result.MarkersAmbiguous != 1 {
		t.Errorf("markers ambiguous = %d, want 1", result.MarkersAmbiguous)
	}
	if result.Markers.Succeeded != 2 {
		t.Errorf("marker tally = %+v", result.Markers)
	}

	markers, _ := d.Markers(ctx)
	byID := make(map[model.ID]model.Marker, len(markers))
	for _, m := range markers {
		byID[m.ID] = m
	}

	// Default marker untouched.
	if got := byID[defaultMarker.ID]; !vecNear(got.Position, defaultMarker.Position) {
		t.Errorf("default marker moved to %v", got.Position)
	}

	// Stored position must be exactly the transform of the original.
	rot, _ := geom.RotationAtPoint(geom.AxisZ, math.Pi/2, center)
	transform := geom.Translation(opts.Translation).Mul(rot)
	if got := byID[plain.ID]; !vecNear(got.Position, transform.OfPoint(plain.Position)) {
		t.Errorf("marker position = %v, want %v", got.Position, transform.OfPoint(plain.Position))
	}

	// Facing: rotated 90° then corrected 45°. (0,-1,0) → (1,0,0) → 45° CCW.
	want := mgl64.Vec3{math.Sqrt2 / 2, math.Sqrt2 / 2, 0}
	if got := byID[plain.ID]; !vecNear(got.Facing, want) {
		t.Errorf("marker facing = %v, want %v", got.Facing, want)
	}
}

func TestExecuteHubMarkerFacingCorrected(t *testing.T) {
	ctx := context.Background()
	d := document.NewDocument()
	mustAdd(t, d, wall("w", mgl64.Vec3{}, mgl64.Vec3{10, 0, 0}))

	hub := model.Marker{
		ID:       model.NewID(),
		Name:     "Interior Hub",
		Family:   "hub",
		Kind:     model.MarkerHub,
		Position: mgl64.Vec3{5, 5, 0},
		Facing:   mgl64.Vec3{1, 0, 0},
		Views:    []model.ID{model.NewID()},
	}
	if err := d.AddMarker(hub); err != nil {
		t.Fatalf("AddMarker: %v", err)
	}

	center := mgl64.Vec3{0, 0, 0}
	if _, err := newTestRunner().Execute(ctx, d, Options{
		RotationDegrees: 90,
		RotationCenter:  &center,
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	markers, _ := d.Markers(ctx)
	got := markers[0]

	// Position rotates about the global center like everything else.
	if !vecNear(got.Position, mgl64.Vec3{-5, 5, 0}) {
		t.Errorf("hub position = %v, want rotation about center", got.Position)
	}

	// Facing: rotated 90° then corrected 45°, same as a single marker.
	// (1,0,0) → (0,1,0) → (-√2/2, √2/2, 0).
	want := mgl64.Vec3{-math.Sqrt2 / 2, math.Sqrt2 / 2, 0}
	if !vecNear(got.Facing, want) {
		t.Errorf("hub facing = %v, want %v", got.Facing, want)
	}
	if len(got.Views) != 1 {
		t.Error("hub lost its hosted views")
	}
}

func TestExecuteCanonicalNameMarkerExcludedAnywhere(t *testing.T) {
	ctx := context.Background()
	d := document.NewDocument()
	mustAdd(t, d, wall("w", mgl64.Vec3{}, mgl64.Vec3{10, 0, 0}))

	// Canonical directional name, ordinary family, far from the origin:
	// the name alone identifies a factory-placed marker.
	north := model.Marker{
		ID:       model.NewID(),
		Name:     "North",
		Family:   "exterior",
		Kind:     model.MarkerSingle,
		Position: mgl64.Vec3{40, 40, 0},
		Facing:   mgl64.Vec3{0, 1, 0},
	}
	if err := d.AddMarker(north); err != nil {
		t.Fatalf("AddMarker: %v", err)
	}

	result, err := newTestRunner().Execute(ctx, d, Options{Translation: mgl64.Vec3{50, 50, 0}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.MarkersSkipped != 1 || result.MarkersAmbiguous != 0 {
		t.Errorf("skipped = %d, ambiguous = %d, want 1 and 0",
			result.MarkersSkipped, result.MarkersAmbiguous)
	}

	markers, _ := d.Markers(ctx)
	if got := markers[0]; !vecNear(got.Position, north.Position) {
		t.Errorf("default marker moved to %v, want unchanged %v", got.Position, north.Position)
	}
}

func TestExecuteZeroMarkerCorrection(t *testing.T) {
	ctx := context.Background()
	d := document.NewDocument()
	mustAdd(t, d, wall("w", mgl64.Vec3{}, mgl64.Vec3{10, 0, 0}))

	m := model.Marker{
		ID:       model.NewID(),
		Name:     "Entry Elevation",
		Family:   "exterior",
		Kind:     model.MarkerSingle,
		Position: mgl64.Vec3{5, 12, 0},
		Facing:   mgl64.Vec3{0, -1, 0},
	}
	if err := d.AddMarker(m); err != nil {
		t.Fatalf("AddMarker: %v", err)
	}

	center := mgl64.Vec3{0, 0, 0}
	zero := 0.0
	if _, err := newTestRunner().Execute(ctx, d, Options{
		RotationDegrees:         90,
		RotationCenter:          &center,
		MarkerCorrectionDegrees: &zero,
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// A configured zero disables the correction: facing is the plain
	// rotation of the original, not the default 45° on top of it.
	markers, _ := d.Markers(ctx)
	if got := markers[0]; !vecNear(got.Facing, mgl64.Vec3{1, 0, 0}) {
		t.Errorf("facing = %v, want plain rotation", got.Facing)
	}
}

func TestExecuteViewFrameAndFallback(t *testing.T) {
	ctx := context.Background()
	d := document.NewDocument()
	mustAdd(t, d, wall("w", mgl64.Vec3{}, mgl64.Vec3{10, 0, 0}))

	mutable := model.View{
		ID:           model.NewID(),
		Name:         "Level 1",
		Kind:         model.ViewPlan,
		FrameMutable: true,
		Frame: model.Frame{
			Active: true,
			Origin: mgl64.Vec3{5, 5, 0},
			BasisX: mgl64.Vec3{1, 0, 0},
			BasisY: mgl64.Vec3{0, 1, 0},
			BasisZ: mgl64.Vec3{0, 0, 1},
			Min:    mgl64.Vec3{-8, -8, -1},
			Max:    mgl64.Vec3{8, 8, 1},
		},
	}
	immutable := model.View{
		ID:   model.NewID(),
		Name: "Section A",
		Kind: model.ViewSection,
		Frame: model.Frame{
			Active: true,
			BasisX: mgl64.Vec3{1, 0, 0},
			BasisY: mgl64.Vec3{0, 1, 0},
			BasisZ: mgl64.Vec3{0, 0, 1},
		},
		SectionExtent: geom.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10}),
	}
	template := model.View{
		ID:       model.NewID(),
		Name:     "Template",
		Template: true,
		Frame:    mutable.Frame,
	}
	for _, v := range []model.View{mutable, immutable, template} {
		if err := d.AddView(v); err != nil {
			t.Fatalf("AddView: %v", err)
		}
	}

	center := mgl64.Vec3{0, 0, 0}
	opts := Options{
		Translation:     mgl64.Vec3{50, 50, 0},
		RotationDegrees: 90,
		RotationCenter:  &center,
	}
	result, err := newTestRunner().Execute(ctx, d, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Views.Attempted != 2 || result.Views.Succeeded != 2 {
		t.Errorf("view tally = %+v (templates must not count)", result.Views)
	}

	rot, _ := geom.RotationAtPoint(geom.AxisZ, math.Pi/2, center)
	transform := geom.Translation(opts.Translation).Mul(rot)

	views, _ := d.Views(ctx)
	byID := make(map[model.ID]model.View, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}

	got := byID[mutable.ID]
	if !vecNear(got.Frame.Origin, transform.OfPoint(mutable.Frame.Origin)) {
		t.Errorf("frame origin = %v", got.Frame.Origin)
	}
	if !vecNear(got.Frame.BasisX, mgl64.Vec3{0, 1, 0}) {
		t.Errorf("frame basis X = %v, want rotated", got.Frame.BasisX)
	}
	if !got.Frame.Orthonormal(1e-9) {
		t.Error("frame basis no longer orthonormal")
	}
	// Local extent must not change size.
	if got.Frame.Min != mutable.Frame.Min || got.Frame.Max != mutable.Frame.Max {
		t.Error("frame extent size changed")
	}

	// The immutable view took the section-extent fallback.
	gotSection := byID[immutable.ID]
	wantExtent := immutable.SectionExtent.Transformed(transform)
	if !vecNear(gotSection.SectionExtent.Min, wantExtent.Min) ||
		!vecNear(gotSection.SectionExtent.Max, wantExtent.Max) {
		t.Errorf("section extent = %v..%v, want %v..%v",
			gotSection.SectionExtent.Min, gotSection.SectionExtent.Max,
			wantExtent.Min, wantExtent.Max)
	}
	// Its frame must be untouched: one update path, never both.
	if !vecNear(gotSection.Frame.Origin, immutable.Frame.Origin) {
		t.Error("immutable frame was modified alongside the fallback")
	}

	// Template untouched.
	if !vecNear(byID[template.ID].Frame.Origin, template.Frame.Origin) {
		t.Error("template view was modified")
	}
}

func TestExecuteDryRunRollsBack(t *testing.T) {
	ctx := context.Background()
	d := document.NewDocument()
	w := wall("w", mgl64.Vec3{}, mgl64.Vec3{10, 0, 0})
	mustAdd(t, d, w)

	result, err := newTestRunner().Execute(ctx, d, Options{
		Translation: mgl64.Vec3{50, 50, 0},
		DryRun:      true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Committed {
		t.Error("dry run reported committed")
	}
	if result.Regular.Succeeded != 1 {
		t.Errorf("dry run tally = %+v, want full simulation", result.Regular)
	}

	got, _ := d.Element(ctx, w.ID)
	if !vecNear(got.Location.Start, mgl64.Vec3{}) {
		t.Errorf("dry run leaked: start = %v", got.Location.Start)
	}
}

func TestExecuteNoMovableElements(t *testing.T) {
	ctx := context.Background()
	d := document.NewDocument()
	pinned := wall("pinned", mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	pinned.Pinned = true
	mustAdd(t, d, pinned)

	_, err := newTestRunner().Execute(ctx, d, Options{Translation: mgl64.Vec3{1, 0, 0}})
	if !errors.Is(err, ErrNoMovableElements) {
		t.Errorf("err = %v, want ErrNoMovableElements", err)
	}
}

func TestExecuteAnnotationsFollow(t *testing.T) {
	ctx := context.Background()
	d := document.NewDocument()
	w := wall("w", mgl64.Vec3{}, mgl64.Vec3{10, 0, 0})
	note := model.Element{
		ID:       model.NewID(),
		Category: model.CategoryTextNote,
		Location: model.PointLocation(mgl64.Vec3{5, 1, 0}),
	}
	mustAdd(t, d, w, note)

	result, err := newTestRunner().Execute(ctx, d, Options{Translation: mgl64.Vec3{50, 50, 0}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Annotations.Succeeded != 1 {
		t.Errorf("annotation tally = %+v", result.Annotations)
	}
	got, _ := d.Element(ctx, note.ID)
	if !vecNear(got.Location.Point, mgl64.Vec3{55, 51, 0}) {
		t.Errorf("annotation = %v", got.Location.Point)
	}
}

func TestOptionsValidation(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.MarkerCorrectionDegrees == nil || *opts.MarkerCorrectionDegrees != DefaultMarkerCorrectionDegrees {
		t.Errorf("correction default = %v", opts.MarkerCorrectionDegrees)
	}
	if opts.JoinTolerance != DefaultJoinTolerance {
		t.Errorf("tolerance default = %v", opts.JoinTolerance)
	}

	// A configured zero is not "unset" and must survive validation.
	zero := 0.0
	withZero := Options{MarkerCorrectionDegrees: &zero}
	if err := withZero.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if *withZero.MarkerCorrectionDegrees != 0 {
		t.Errorf("zero correction overridden to %v", *withZero.MarkerCorrectionDegrees)
	}

	bad := Options{RotationDegrees: math.NaN()}
	if err := bad.ValidateAndSetDefaults(); err == nil {
		t.Error("NaN rotation accepted")
	}
	nan := math.NaN()
	badCorrection := Options{MarkerCorrectionDegrees: &nan}
	if err := badCorrection.ValidateAndSetDefaults(); err == nil {
		t.Error("NaN correction accepted")
	}
	neg := Options{JoinTolerance: -1}
	if err := neg.ValidateAndSetDefaults(); err == nil {
		t.Error("negative tolerance accepted")
	}
}
