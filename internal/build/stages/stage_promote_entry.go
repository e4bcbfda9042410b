package stages

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/pwabuilder/internal/assetcopy"
	"git.home.luguber.info/inful/pwabuilder/internal/build/models"
	"git.home.luguber.info/inful/pwabuilder/internal/config"
	"git.home.luguber.info/inful/pwabuilder/internal/logfields"
)

// StagePromoteEntry copies the entry page over the root document when the entry page exists in
// the output tree. It runs after bundling and copying so it has the last word on the root
// document.
func StagePromoteEntry(ctx context.Context, bs *models.BuildState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a := bs.Config.Assets
	if config.SamePath(a.EntryPage, a.RootDocument) {
		slog.Debug("Entry page is the root document, nothing to promote", logfields.Path(a.RootDocument))
		return nil
	}
	if !assetcopy.Exists(bs.Output, a.EntryPage) {
		slog.Debug("Entry page not in output, root document left as is", logfields.Path(a.EntryPage))
		return nil
	}
	if err := assetcopy.CopyFile(bs.Output, a.EntryPage, bs.Output, a.RootDocument); err != nil {
		return models.NewWarnStageError(models.StagePromoteEntry, fmt.Errorf("%w: %w", models.ErrPromoteEntry, err))
	}
	bs.Report.EntryPromoted = true
	slog.Info("Promoted entry page", logfields.Source(a.EntryPage), logfields.Destination(a.RootDocument))
	return nil
}
