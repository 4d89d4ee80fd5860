package engine

import (
	"context"

	"github.com/planshift/planshift/pkg/document"
	"github.com/planshift/planshift/pkg/geom"
	"github.com/planshift/planshift/pkg/model"
)

// transformAnnotations propagates the transform to view annotations last,
// after the geometry they describe has settled. A translation-only run
// takes the cheaper move path. Batch rejection falls back per element the
// same way the regular stage does.
func (r *Runner) transformAnnotations(ctx context.Context, repo document.Repository,
	annotations []model.Element, transform geom.Transform, opts Options, result *Result) {

	if len(annotations) == 0 {
		return
	}

	var live []model.ID
	for _, e := range annotations {
		if repo.Exists(ctx, e.ID) {
			live = append(live, e.ID)
		}
	}

	var succeeded, failed []model.ID
	if transform.IsTranslation() {
		succeeded, failed = applyBatch(live,
			func(batch []model.ID) error { return repo.MoveElements(ctx, batch, opts.Translation) },
			func(id model.ID) error { return repo.MoveElement(ctx, id, opts.Translation) },
			opts.Logger, "annotate")
	} else {
		succeeded, failed = applyBatch(live,
			func(batch []model.ID) error { return repo.TransformElements(ctx, batch, transform) },
			func(id model.ID) error { return repo.TransformElement(ctx, id, transform) },
			opts.Logger, "annotate")
	}
	result.Annotations.succeed(len(succeeded))
	result.Annotations.fail(len(failed))
}
