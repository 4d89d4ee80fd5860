package engine

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/planshift/planshift/pkg/document"
	"github.com/planshift/planshift/pkg/geom"
	"github.com/planshift/planshift/pkg/model"
)

// applyBatch tries the whole batch first. Batches are all-or-nothing, so a
// single constrained element rejects the lot; the retry loop then applies
// the operation per element and isolates the failures.
func applyBatch(ids []model.ID, batch func([]model.ID) error, single func(model.ID) error,
	logger *log.Logger, stage string) (succeeded, failed []model.ID) {
	if len(ids) == 0 {
		return nil, nil
	}
	if err := batch(ids); err == nil {
		return ids, nil
	}
	logger.Debug("batch rejected, retrying per element", "stage", stage, "count", len(ids))
	for _, id := range ids {
		if err := single(id); err != nil {
			logger.Warn("element rejected", "stage", stage, "element", id, "err", err)
			failed = append(failed, id)
			continue
		}
		succeeded = append(succeeded, id)
	}
	return succeeded, failed
}

func ids(elements []model.Element) []model.ID {
	out := make([]model.ID, len(elements))
	for i, e := range elements {
		out[i] = e.ID
	}
	return out
}

// transformRegular rotates independent elements, then hosted elements, then
// translates everything that survived. Hosted elements rotate after their
// hosts so a guest never moves against a stale host orientation. An element
// that rejects the rotation (a locked boundary, for example) still takes
// part in the translation and is counted as a rotation partial.
func (r *Runner) transformRegular(ctx context.Context, repo document.Repository,
	classes model.Classification, rotation *geom.Transform, opts Options, result *Result) {

	if rotation != nil {
		for _, group := range [][]model.Element{classes.Independent, classes.Hosted} {
			_, failed := applyBatch(ids(group),
				func(batch []model.ID) error { return repo.TransformElements(ctx, batch, *rotation) },
				func(id model.ID) error { return repo.TransformElement(ctx, id, *rotation) },
				opts.Logger, "rotate")
			if len(failed) > 0 {
				opts.Logger.Warn("rotation skipped for constrained elements", "count", len(failed))
				result.RotationPartial += len(failed)
			}
		}
	}

	translate := func(group []model.Element, tally *Tally) {
		// Revalidate before translating: rotating a host can regenerate
		// or remove dependent elements, leaving stale ids in the
		// classification.
		var movable []model.ID
		for _, e := range group {
			if repo.Exists(ctx, e.ID) {
				movable = append(movable, e.ID)
			}
		}
		succeeded, failed := applyBatch(movable,
			func(batch []model.ID) error { return repo.MoveElements(ctx, batch, opts.Translation) },
			func(id model.ID) error { return repo.MoveElement(ctx, id, opts.Translation) },
			opts.Logger, "translate")
		tally.succeed(len(succeeded))
		tally.fail(len(failed))
	}
	translate(classes.Independent, &result.Regular)
	translate(classes.Hosted, &result.Hosted)
}

// transformSketchBound handles profile-bounded elements one at a time. Such
// elements reject arbitrary pivot rotations, so the rigid transform is
// decomposed: a move to the transformed centroid, then an in-place rotation
// about the new centroid. The decomposition is exact for rigid transforms.
// An element that accepts the move but rejects the rotation stays where it
// landed and is counted as partial.
func (r *Runner) transformSketchBound(ctx context.Context, repo document.Repository,
	elements []model.Element, transform geom.Transform, opts Options, result *Result) {

	for _, e := range elements {
		result.SketchBound.Attempted++

		// Centroid from the live location, not the cached box: earlier
		// stages may have touched this geometry without a regeneration.
		centroid := e.Location.Box().Center()
		offset := transform.OfPoint(centroid).Sub(centroid)
		if err := repo.MoveElement(ctx, e.ID, offset); err != nil {
			opts.Logger.Warn("sketch-bound move rejected", "element", e.ID, "err", err)
			result.SketchBound.Failed++
			continue
		}

		if !opts.Rotates() {
			result.SketchBound.Succeeded++
			continue
		}

		spin, err := geom.RotationAtPoint(geom.AxisZ, opts.RotationRadians(), centroid.Add(offset))
		if err != nil {
			opts.Logger.Warn("sketch-bound rotation degenerate", "element", e.ID, "err", err)
			result.SketchBound.Failed++
			continue
		}
		if err := repo.TransformElement(ctx, e.ID, spin); err != nil {
			opts.Logger.Warn("sketch-bound rotation rejected, element left translated",
				"element", e.ID, "err", err)
			result.SketchPartial++
			result.SketchBound.Succeeded++
			continue
		}
		result.SketchBound.Succeeded++
	}
}
