package document

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/planshift/planshift/pkg/geom"
	"github.com/planshift/planshift/pkg/model"
)

// strictJoinTolerance is the endpoint coincidence required by Join.
// Geometry that drifted further apart needs the proximity-tolerant
// JoinWithin path.
const strictJoinTolerance = 1e-6

// Document is the in-memory repository implementation. It backs the memory
// store directly and serves as the working copy for the file and mongo
// stores.
//
// Document is not safe for concurrent use: a transformation owns its
// document exclusively for the duration of the operation.
type Document struct {
	elements map[model.ID]*model.Element
	markers  map[model.ID]*model.Marker
	views    map[model.ID]*model.View
	joins    map[model.JoinRecord]bool

	// boxes caches per-element bounding boxes. Mutations mark entries
	// dirty; Regenerate settles them.
	boxes map[model.ID]geom.Box
	dirty map[model.ID]bool
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		elements: make(map[model.ID]*model.Element),
		markers:  make(map[model.ID]*model.Marker),
		views:    make(map[model.ID]*model.View),
		joins:    make(map[model.JoinRecord]bool),
		boxes:    make(map[model.ID]geom.Box),
		dirty:    make(map[model.ID]bool),
	}
}

// AddElement inserts an element. The identity must be set and unused.
func (d *Document) AddElement(e model.Element) error {
	if e.ID.IsZero() {
		return fmt.Errorf("add element: %w", ErrNotFound)
	}
	if _, ok := d.elements[e.ID]; ok {
		return fmt.Errorf("add element %s: %w", e.ID, ErrDuplicateID)
	}
	el := e
	d.elements[e.ID] = &el
	d.boxes[e.ID] = el.Location.Box()
	return nil
}

// AddMarker inserts a directional marker.
func (d *Document) AddMarker(m model.Marker) error {
	if m.ID.IsZero() {
		return fmt.Errorf("add marker: %w", ErrNotFound)
	}
	if _, ok := d.markers[m.ID]; ok {
		return fmt.Errorf("add marker %s: %w", m.ID, ErrDuplicateID)
	}
	mk := m
	d.markers[m.ID] = &mk
	return nil
}

// AddView inserts a view.
func (d *Document) AddView(v model.View) error {
	if v.ID.IsZero() {
		return fmt.Errorf("add view: %w", ErrNotFound)
	}
	if _, ok := d.views[v.ID]; ok {
		return fmt.Errorf("add view %s: %w", v.ID, ErrDuplicateID)
	}
	vw := v
	d.views[v.ID] = &vw
	return nil
}

// Clone returns a deep copy of the document. The copy shares nothing with
// the original; transactions mutate clones and publish them on commit.
func (d *Document) Clone() *Document {
	out := NewDocument()
	for id, e := range d.elements {
		el := *e
		if e.Host != nil {
			host := *e.Host
			el.Host = &host
		}
		out.elements[id] = &el
	}
	for id, m := range d.markers {
		mk := *m
		mk.Views = append([]model.ID(nil), m.Views...)
		out.markers[id] = &mk
	}
	for id, v := range d.views {
		vw := *v
		out.views[id] = &vw
	}
	for j := range d.joins {
		out.joins[j] = true
	}
	for id, b := range d.boxes {
		out.boxes[id] = b
	}
	for id := range d.dirty {
		out.dirty[id] = true
	}
	return out
}

// =============================================================================
// Repository implementation
// =============================================================================

// Elements returns every element in the document.
func (d *Document) Elements(ctx context.Context) ([]model.Element, error) {
	out := make([]model.Element, 0, len(d.elements))
	for _, e := range d.elements {
		out = append(out, *e)
	}
	return out, nil
}

// ElementsByCategory returns the elements of one category.
func (d *Document) ElementsByCategory(ctx context.Context, c model.Category) ([]model.Element, error) {
	var out []model.Element
	for _, e := range d.elements {
		if e.Category == c {
			out = append(out, *e)
		}
	}
	return out, nil
}

// Element resolves an identity or reports ErrNotFound.
func (d *Document) Element(ctx context.Context, id model.ID) (model.Element, error) {
	e, ok := d.elements[id]
	if !ok {
		return model.Element{}, fmt.Errorf("element %s: %w", id, ErrNotFound)
	}
	return *e, nil
}

// Exists reports whether the identity resolves to a live element.
func (d *Document) Exists(ctx context.Context, id model.ID) bool {
	_, ok := d.elements[id]
	return ok
}

// BoundingBox returns the element's cached bounding box.
func (d *Document) BoundingBox(ctx context.Context, id model.ID) (geom.Box, error) {
	if _, ok := d.elements[id]; !ok {
		return geom.Box{}, fmt.Errorf("element %s: %w", id, ErrNotFound)
	}
	return d.boxes[id], nil
}

// checkMutable returns the element if it accepts the given transform,
// or ErrConstraint/ErrNotFound.
func (d *Document) checkMutable(id model.ID, rotating bool) (*model.Element, error) {
	e, ok := d.elements[id]
	if !ok {
		return nil, fmt.Errorf("element %s: %w", id, ErrNotFound)
	}
	if e.Pinned {
		return nil, fmt.Errorf("element %s is pinned: %w", id, ErrConstraint)
	}
	if rotating && e.LockedOrientation {
		return nil, fmt.Errorf("element %s boundary rejects reorientation: %w", id, ErrConstraint)
	}
	return e, nil
}

// MoveElements translates a batch. All elements are validated before any
// moves, so a rejected element leaves the batch untouched.
func (d *Document) MoveElements(ctx context.Context, ids []model.ID, offset mgl64.Vec3) error {
	for _, id := range ids {
		if _, err := d.checkMutable(id, false); err != nil {
			return err
		}
	}
	t := geom.Translation(offset)
	for _, id := range ids {
		d.apply(d.elements[id], t)
	}
	return nil
}

// MoveElement translates a single element by offset.
func (d *Document) MoveElement(ctx context.Context, id model.ID, offset mgl64.Vec3) error {
	e, err := d.checkMutable(id, false)
	if err != nil {
		return err
	}
	d.apply(e, geom.Translation(offset))
	return nil
}

// TransformElements applies a rigid transform to a batch with the same
// all-or-nothing semantics as MoveElements.
func (d *Document) TransformElements(ctx context.Context, ids []model.ID, t geom.Transform) error {
	rotating := !t.IsTranslation()
	for _, id := range ids {
		if _, err := d.checkMutable(id, rotating); err != nil {
			return err
		}
	}
	for _, id := range ids {
		d.apply(d.elements[id], t)
	}
	return nil
}

// TransformElement applies a rigid transform to a single element.
func (d *Document) TransformElement(ctx context.Context, id model.ID, t geom.Transform) error {
	e, err := d.checkMutable(id, !t.IsTranslation())
	if err != nil {
		return err
	}
	d.apply(e, t)
	return nil
}

// apply mutates the element's location and marks its derived box dirty.
func (d *Document) apply(e *model.Element, t geom.Transform) {
	e.Location = e.Location.Transformed(t)
	d.dirty[e.ID] = true
}

// AreJoined reports whether two structural elements are currently joined.
func (d *Document) AreJoined(ctx context.Context, a, b model.ID) (bool, error) {
	if _, ok := d.elements[a]; !ok {
		return false, fmt.Errorf("element %s: %w", a, ErrNotFound)
	}
	if _, ok := d.elements[b]; !ok {
		return false, fmt.Errorf("element %s: %w", b, ErrNotFound)
	}
	return d.joins[model.NewJoinRecord(a, b)], nil
}

// Join joins two elements whose nearest endpoints coincide exactly
// (within the strict tolerance).
func (d *Document) Join(ctx context.Context, a, b model.ID) error {
	return d.JoinWithin(ctx, a, b, strictJoinTolerance)
}

// JoinWithin joins two elements whose nearest endpoints lie within tol.
func (d *Document) JoinWithin(ctx context.Context, a, b model.ID, tol float64) error {
	ea, ok := d.elements[a]
	if !ok {
		return fmt.Errorf("element %s: %w", a, ErrNotFound)
	}
	eb, ok := d.elements[b]
	if !ok {
		return fmt.Errorf("element %s: %w", b, ErrNotFound)
	}
	dist, ok := nearestEndpointDistance(ea.Location, eb.Location)
	if !ok || dist > tol {
		return fmt.Errorf("join %s-%s: endpoints %.4g apart: %w", a, b, dist, ErrConstraint)
	}
	d.joins[model.NewJoinRecord(a, b)] = true
	return nil
}

// Unjoin removes a join if present.
func (d *Document) Unjoin(ctx context.Context, a, b model.ID) error {
	delete(d.joins, model.NewJoinRecord(a, b))
	return nil
}

// Markers returns every directional marker.
func (d *Document) Markers(ctx context.Context) ([]model.Marker, error) {
	out := make([]model.Marker, 0, len(d.markers))
	for _, m := range d.markers {
		out = append(out, *m)
	}
	return out, nil
}

// UpdateMarker replaces a marker's state.
func (d *Document) UpdateMarker(ctx context.Context, m model.Marker) error {
	if _, ok := d.markers[m.ID]; !ok {
		return fmt.Errorf("marker %s: %w", m.ID, ErrNotFound)
	}
	mk := m
	d.markers[m.ID] = &mk
	return nil
}

// Views returns every view.
func (d *Document) Views(ctx context.Context) ([]model.View, error) {
	out := make([]model.View, 0, len(d.views))
	for _, v := range d.views {
		out = append(out, *v)
	}
	return out, nil
}

// UpdateViewFrame rewrites the primary extent representation.
func (d *Document) UpdateViewFrame(ctx context.Context, id model.ID, f model.Frame) error {
	v, ok := d.views[id]
	if !ok {
		return fmt.Errorf("view %s: %w", id, ErrNotFound)
	}
	if !v.FrameMutable {
		return fmt.Errorf("view %s: %w", id, ErrImmutableFrame)
	}
	v.Frame = f
	return nil
}

// UpdateSectionExtent rewrites the alternate world-aligned extent.
func (d *Document) UpdateSectionExtent(ctx context.Context, id model.ID, b geom.Box) error {
	v, ok := d.views[id]
	if !ok {
		return fmt.Errorf("view %s: %w", id, ErrNotFound)
	}
	v.SectionExtent = b
	return nil
}

// Regenerate settles the bounding-box cache for every mutated element.
func (d *Document) Regenerate(ctx context.Context) error {
	for id := range d.dirty {
		if e, ok := d.elements[id]; ok {
			d.boxes[id] = e.Location.Box()
		} else {
			delete(d.boxes, id)
		}
		delete(d.dirty, id)
	}
	return nil
}

// nearestEndpointDistance returns the smallest distance between the
// placements' defining points. ok is false when either placement has none.
func nearestEndpointDistance(a, b model.Location) (float64, bool) {
	pa, pb := a.Endpoints(), b.Endpoints()
	if len(pa) == 0 || len(pb) == 0 {
		return 0, false
	}
	best := math.Inf(1)
	for _, p := range pa {
		for _, q := range pb {
			if d := p.Sub(q).Len(); d < best {
				best = d
			}
		}
	}
	return best, true
}

// =============================================================================
// Memory store
// =============================================================================

// Begin clones the document into a working copy; Commit publishes the clone
// back over the receiver in one step. Document therefore acts as its own
// Store.
func (d *Document) Begin(ctx context.Context) (Txn, error) {
	return &memTxn{Document: d.Clone(), target: d}, nil
}

// memTxn is a transaction over an in-memory document.
type memTxn struct {
	*Document // the working copy
	target    *Document
	done      bool
}

// Commit swaps the working copy into the target document.
func (t *memTxn) Commit(ctx context.Context) error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	t.done = true
	*t.target = *t.Document
	return nil
}

// Rollback discards the working copy.
func (t *memTxn) Rollback(ctx context.Context) error {
	t.done = true
	return nil
}

// Interface conformance.
var (
	_ Repository = (*Document)(nil)
	_ Store      = (*Document)(nil)
	_ Txn        = (*memTxn)(nil)
)
