package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/planshift/planshift/pkg/document"
	"github.com/planshift/planshift/pkg/geom"
	"github.com/planshift/planshift/pkg/model"
)

// Runner executes transformations against a document store.
//
// The Runner is stateless except for the logger - it doesn't retain run
// results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, the default logger is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete transformation pipeline in one transaction.
// Constraint rejections degrade individual elements and are reported in the
// result; a degenerate transform or a storage failure rolls the transaction
// back and returns an error.
func (r *Runner) Execute(ctx context.Context, store document.Store, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	totalStart := time.Now()

	txn, err := store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}

	result, err := r.run(ctx, txn, opts)
	if err != nil {
		txn.Rollback(ctx)
		return nil, err
	}

	if opts.DryRun {
		if err := txn.Rollback(ctx); err != nil {
			return nil, fmt.Errorf("rollback: %w", err)
		}
		r.Logger.Info("dry run, transaction rolled back")
	} else {
		if err := txn.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		result.Committed = true
	}

	result.Stats.TotalTime = time.Since(totalStart)
	return result, nil
}

// run executes all stages against an open transaction. The caller owns the
// commit/rollback decision.
func (r *Runner) run(ctx context.Context, repo document.Repository, opts Options) (*Result, error) {
	result := &Result{}

	// Stage 1: Classify
	classifyStart := time.Now()
	elements, err := repo.Elements(ctx)
	if err != nil {
		return nil, fmt.Errorf("load elements: %w", err)
	}
	classes := model.Classify(elements, opts.Categories)
	result.Stats.ElementCount = len(elements)
	result.Stats.ClassifyTime = time.Since(classifyStart)
	result.Excluded = len(classes.Excluded)

	regular := classes.Regular()
	if len(regular)+len(classes.SketchBound) == 0 {
		return nil, fmt.Errorf("classify: %w", ErrNoMovableElements)
	}

	r.Logger.Info("classified elements",
		"total", len(elements),
		"independent", len(classes.Independent),
		"hosted", len(classes.Hosted),
		"sketch_bound", len(classes.SketchBound),
		"annotations", len(classes.Annotations),
		"excluded", len(classes.Excluded),
		"duration", result.Stats.ClassifyTime)

	// Compose the rigid transform. The rotation pivot defaults to the
	// centroid of the regular elements' combined box; sketch-bound
	// elements pivot in place and do not widen it.
	center := opts.RotationCenter
	if center == nil {
		center = &mgl64.Vec3{}
		if opts.Rotates() {
			c, err := regularCentroid(ctx, repo, regular)
			if err != nil {
				return nil, err
			}
			center = &c
		}
	}
	result.RotationCenter = *center

	transform, rotation, err := compose(opts, *center)
	if err != nil {
		return nil, fmt.Errorf("compose transform: %w", err)
	}
	result.Transform = transform

	r.Logger.Debug("composed transform",
		"translation", opts.Translation,
		"rotation_degrees", opts.RotationDegrees,
		"center", *center,
		"determinant", transform.Determinant())

	// Stage 2: Capture joins
	joinStart := time.Now()
	joins, err := captureJoins(ctx, repo, classes.Structural())
	if err != nil {
		return nil, fmt.Errorf("capture joins: %w", err)
	}
	result.JoinsCaptured = len(joins)
	result.Stats.JoinTime = time.Since(joinStart)

	// Stage 3: Transform regular elements
	transformStart := time.Now()
	r.transformRegular(ctx, repo, classes, rotation, opts, result)

	// Stage 4: Sketch-bound elements, individually
	r.transformSketchBound(ctx, repo, classes.SketchBound, transform, opts, result)
	result.Stats.TransformTime = time.Since(transformStart)

	// Stage 5: Restore joins
	restoreStart := time.Now()
	restoreJoins(ctx, repo, joins, opts, result, r.Logger)
	result.Stats.JoinTime += time.Since(restoreStart)

	// Stage 6: Markers
	markerStart := time.Now()
	if err := r.transformMarkers(ctx, repo, transform, rotation, opts, result); err != nil {
		return nil, fmt.Errorf("markers: %w", err)
	}
	result.Stats.MarkerTime = time.Since(markerStart)

	// Stage 7: Regeneration barrier. View extents derive from element
	// geometry and are only trustworthy after this settles.
	if err := repo.Regenerate(ctx); err != nil {
		return nil, fmt.Errorf("regenerate: %w", err)
	}

	// Stage 8: Views
	viewStart := time.Now()
	if err := r.transformViews(ctx, repo, transform, opts, result); err != nil {
		return nil, fmt.Errorf("views: %w", err)
	}
	result.Stats.ViewTime = time.Since(viewStart)

	// Stage 9: Annotations
	r.transformAnnotations(ctx, repo, classes.Annotations, transform, opts, result)

	r.Logger.Info("transformation applied",
		"regular", result.Regular.Succeeded,
		"hosted", result.Hosted.Succeeded,
		"sketch_bound", result.SketchBound.Succeeded,
		"markers", result.Markers.Succeeded,
		"views", result.Views.Succeeded,
		"failed", result.Regular.Failed+result.Hosted.Failed+result.SketchBound.Failed,
		"joins_restored", result.JoinsRestored)

	return result, nil
}

// compose builds the full rigid transform and, when rotating, the pure
// rotation component used by the staged element updates.
func compose(opts Options, center mgl64.Vec3) (geom.Transform, *geom.Transform, error) {
	translation := geom.Translation(opts.Translation)
	if !opts.Rotates() {
		return translation, nil, nil
	}
	rotation, err := geom.RotationAtPoint(geom.AxisZ, opts.RotationRadians(), center)
	if err != nil {
		return geom.Transform{}, nil, err
	}
	return translation.Mul(rotation), &rotation, nil
}

// regularCentroid unions the cached bounding boxes of the regular elements
// and returns the center of the result.
func regularCentroid(ctx context.Context, repo document.Repository, elements []model.Element) (mgl64.Vec3, error) {
	var box geom.Box
	for _, e := range elements {
		b, err := repo.BoundingBox(ctx, e.ID)
		if err != nil {
			return mgl64.Vec3{}, fmt.Errorf("bounding box %s: %w", e.ID, err)
		}
		box = box.Union(b)
	}
	if box.IsEmpty() {
		return mgl64.Vec3{}, fmt.Errorf("rotation center: %w", ErrNoMovableElements)
	}
	return box.Center(), nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
