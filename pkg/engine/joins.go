package engine

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/planshift/planshift/pkg/document"
	"github.com/planshift/planshift/pkg/model"
)

// captureJoins records every join among the structural elements before any
// geometry moves. The pairwise scan is quadratic in the structural count,
// which is small compared to the document.
func captureJoins(ctx context.Context, repo document.Repository, structural []model.Element) ([]model.JoinRecord, error) {
	var joins []model.JoinRecord
	for i := 0; i < len(structural); i++ {
		for j := i + 1; j < len(structural); j++ {
			joined, err := repo.AreJoined(ctx, structural[i].ID, structural[j].ID)
			if err != nil {
				return nil, fmt.Errorf("probe %s-%s: %w", structural[i].ID, structural[j].ID, err)
			}
			if joined {
				joins = append(joins, model.NewJoinRecord(structural[i].ID, structural[j].ID))
			}
		}
	}
	return joins, nil
}

// restoreJoins re-establishes the captured joins after the transform. A
// rigid transform preserves relative geometry, so the strict join should
// succeed; when accumulated floating-point drift pushes endpoints apart the
// restore retries once with the proximity tolerance. Joins whose elements
// vanished, and joins that fail both attempts, are dropped and counted.
func restoreJoins(ctx context.Context, repo document.Repository, joins []model.JoinRecord,
	opts Options, result *Result, logger *log.Logger) {

	for _, j := range joins {
		if !repo.Exists(ctx, j.A) || !repo.Exists(ctx, j.B) {
			logger.Debug("join dropped, element gone", "a", j.A, "b", j.B)
			result.JoinsDropped++
			continue
		}

		joined, err := repo.AreJoined(ctx, j.A, j.B)
		if err == nil && joined {
			result.JoinsRestored++
			continue
		}

		if err := repo.Join(ctx, j.A, j.B); err == nil {
			result.JoinsRestored++
			continue
		}
		if err := repo.JoinWithin(ctx, j.A, j.B, opts.JoinTolerance); err != nil {
			logger.Warn("join dropped", "a", j.A, "b", j.B, "err", err)
			result.JoinsDropped++
			continue
		}
		logger.Debug("join restored within tolerance", "a", j.A, "b", j.B,
			"tolerance", opts.JoinTolerance)
		result.JoinsRestored++
	}
}
