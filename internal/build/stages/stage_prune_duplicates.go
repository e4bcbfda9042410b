package stages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/pwabuilder/internal/artifacts"
	"git.home.luguber.info/inful/pwabuilder/internal/build/models"
	"git.home.luguber.info/inful/pwabuilder/internal/logfields"
)

// StagePruneDuplicates removes un-hashed scripts superseded by a hashed counterpart.
func StagePruneDuplicates(ctx context.Context, bs *models.BuildState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := artifacts.Prune(bs.Output, bs.Config.Assets.ScriptDir)
	bs.Report.DuplicatesPruned = len(res.Removed)
	bs.Recorder.AddPrunedDuplicates(len(res.Removed))
	if err != nil {
		return models.NewWarnStageError(models.StagePruneDuplicates, fmt.Errorf("%w: %w", models.ErrPrune, err))
	}
	if len(res.Removed) > 0 {
		slog.Info("Pruned un-hashed duplicates", logfields.Count(len(res.Removed)))
	}
	if len(res.Failed) > 0 {
		return models.NewWarnStageError(models.StagePruneDuplicates,
			fmt.Errorf("%w: could not remove %s", models.ErrPrune, strings.Join(res.Failed, ", ")))
	}
	return nil
}
