// Package document provides the element repository a transformation
// operates against, with implementations for different backends:
//   - memory: In-memory documents for tests and programmatic use
//   - file: JSON documents on disk for CLI workflows
//   - mongo: MongoDB-backed documents for shared deployments
//
// # Transactions
//
// A transformation must never be externally observable in a
// partially-applied state. Every backend therefore exposes the same
// contract: Begin yields a transaction scoped to a working copy of the
// document, all reads and writes go through that handle, and Commit
// publishes the whole result at once (a file rename, a single document
// replace). Rollback discards the working copy. Within the transaction,
// individual operations are free to fail; atomicity refers to external
// visibility, not per-element success.
//
// # Usage
//
//	store, err := document.NewFileStore("plan.json")
//	txn, err := store.Begin(ctx)
//	// ... query and mutate through txn ...
//	if fatal != nil {
//	    txn.Rollback(ctx)
//	    return fatal
//	}
//	return txn.Commit(ctx)
package document

import (
	"context"
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/planshift/planshift/pkg/geom"
	"github.com/planshift/planshift/pkg/model"
)

// Sentinel errors for repository operations.
var (
	// ErrNotFound is returned when an identity does not resolve to a live
	// element, marker, or view.
	ErrNotFound = errors.New("not found")

	// ErrConstraint is returned when a mutation is rejected by an element's
	// geometric constraints (pinned, orientation-locked boundary, join
	// endpoints too far apart).
	ErrConstraint = errors.New("rejected by constraint")

	// ErrImmutableFrame is returned by UpdateViewFrame when the view's
	// primary extent representation cannot be rewritten. Callers fall back
	// to the alternate extent path.
	ErrImmutableFrame = errors.New("view frame is immutable")

	// ErrDuplicateID is returned when adding an element, marker, or view
	// whose identity already exists in the document.
	ErrDuplicateID = errors.New("duplicate ID")
)

// Repository is the element-query and mutation surface a transformation
// consumes. All components receive it as an explicit parameter scoped to
// one transaction; none hold it as ambient state.
type Repository interface {
	// Elements returns every element in the document.
	Elements(ctx context.Context) ([]model.Element, error)

	// ElementsByCategory returns the elements of one category.
	ElementsByCategory(ctx context.Context, c model.Category) ([]model.Element, error)

	// Element resolves an identity. Returns ErrNotFound for stale references.
	Element(ctx context.Context, id model.ID) (model.Element, error)

	// Exists reports whether the identity still resolves.
	Exists(ctx context.Context, id model.ID) bool

	// BoundingBox returns the element's cached bounding box. The cache is
	// derived state: it settles on Regenerate, not on every mutation.
	BoundingBox(ctx context.Context, id model.ID) (geom.Box, error)

	// MoveElements translates a batch by offset. The batch is atomic:
	// if any element rejects the move, no element moves and the caller
	// retries per element.
	MoveElements(ctx context.Context, ids []model.ID, offset mgl64.Vec3) error

	// MoveElement translates a single element by offset.
	MoveElement(ctx context.Context, id model.ID, offset mgl64.Vec3) error

	// TransformElements applies a rigid transform to a batch, with the
	// same all-or-nothing batch semantics as MoveElements.
	TransformElements(ctx context.Context, ids []model.ID, t geom.Transform) error

	// TransformElement applies a rigid transform to a single element.
	TransformElement(ctx context.Context, id model.ID, t geom.Transform) error

	// AreJoined reports whether two structural elements are currently joined.
	AreJoined(ctx context.Context, a, b model.ID) (bool, error)

	// Join joins two structural elements. It requires their nearest
	// endpoints to coincide within the document's strict tolerance and
	// returns ErrConstraint otherwise.
	Join(ctx context.Context, a, b model.ID) error

	// JoinWithin joins two structural elements whose nearest endpoints lie
	// within tol of each other. Used by proximity-tolerant retries.
	JoinWithin(ctx context.Context, a, b model.ID, tol float64) error

	// Unjoin removes a join. Removing a non-existent join is a no-op.
	Unjoin(ctx context.Context, a, b model.ID) error

	// Markers returns every directional marker in the document.
	Markers(ctx context.Context) ([]model.Marker, error)

	// UpdateMarker replaces a marker's state.
	UpdateMarker(ctx context.Context, m model.Marker) error

	// Views returns every view in the document.
	Views(ctx context.Context) ([]model.View, error)

	// UpdateViewFrame rewrites a view's primary extent representation.
	// Returns ErrImmutableFrame when the view only supports the fallback.
	UpdateViewFrame(ctx context.Context, id model.ID, f model.Frame) error

	// UpdateSectionExtent rewrites a view's alternate, world-aligned extent.
	UpdateSectionExtent(ctx context.Context, id model.ID, b geom.Box) error

	// Regenerate settles derived geometry (bounding-box caches) after a
	// burst of mutations. View queries are only trustworthy after a
	// regeneration barrier.
	Regenerate(ctx context.Context) error
}

// Store opens transactions against a persistent document.
type Store interface {
	// Begin loads the document into a working copy and returns a
	// transaction scoped to it.
	Begin(ctx context.Context) (Txn, error)
}

// Txn is a transaction over one document. Exactly one of Commit or
// Rollback must be called; afterwards the handle is dead.
type Txn interface {
	Repository

	// Commit publishes the working copy as the new document state in a
	// single externally-atomic step.
	Commit(ctx context.Context) error

	// Rollback discards the working copy. The document is untouched.
	Rollback(ctx context.Context) error
}
