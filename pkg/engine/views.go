package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/planshift/planshift/pkg/document"
	"github.com/planshift/planshift/pkg/geom"
	"github.com/planshift/planshift/pkg/model"
)

// transformViews recomputes view extents after element geometry has
// settled. Templates and views without an active frame are skipped. The
// frame keeps its local size: only the origin moves and, under a rotation,
// the basis vectors turn with the document.
//
// Views whose frame is immutable fall back to the world-aligned section
// extent. A view is updated through exactly one of the two paths, never
// both, so the two representations cannot drift apart within one run.
func (r *Runner) transformViews(ctx context.Context, repo document.Repository,
	transform geom.Transform, opts Options, result *Result) error {

	views, err := repo.Views(ctx)
	if err != nil {
		return fmt.Errorf("load views: %w", err)
	}

	for _, v := range views {
		if v.Template || !v.Frame.Active {
			continue
		}
		result.Views.Attempted++

		frame := v.Frame
		frame.Origin = transform.OfPoint(frame.Origin)
		if !transform.IsTranslation() {
			frame.BasisX = transform.OfVector(frame.BasisX)
			frame.BasisY = transform.OfVector(frame.BasisY)
			frame.BasisZ = transform.OfVector(frame.BasisZ)
		}

		err := repo.UpdateViewFrame(ctx, v.ID, frame)
		if err == nil {
			result.Views.Succeeded++
			continue
		}
		if !errors.Is(err, document.ErrImmutableFrame) {
			opts.Logger.Warn("view frame update rejected", "view", v.ID, "err", err)
			result.Views.Failed++
			continue
		}

		if err := r.updateSectionFallback(ctx, repo, v, transform); err != nil {
			opts.Logger.Warn("view fallback rejected", "view", v.ID, "err", err)
			result.Views.Failed++
			continue
		}
		opts.Logger.Debug("view updated via section extent", "view", v.ID)
		result.Views.Succeeded++
	}
	return nil
}

// updateSectionFallback rewrites the world-aligned extent of a view whose
// frame cannot be touched. The transformed extent is the axis-aligned hull
// of the rotated box, so it can grow; extent size preservation only holds
// on the primary path.
func (r *Runner) updateSectionFallback(ctx context.Context, repo document.Repository,
	v model.View, transform geom.Transform) error {

	if v.SectionExtent.IsEmpty() {
		return fmt.Errorf("view %s has no section extent", v.ID)
	}
	return repo.UpdateSectionExtent(ctx, v.ID, v.SectionExtent.Transformed(transform))
}
