package stages

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/pwabuilder/internal/build/models"
	"git.home.luguber.info/inful/pwabuilder/internal/htmlrefs"
	"git.home.luguber.info/inful/pwabuilder/internal/logfields"
)

// StageRewriteReferences points legacy pages' script references at hashed artifacts. The index
// is rebuilt first so hashed scripts placed by the copy and legacy stages resolve too.
func StageRewriteReferences(ctx context.Context, bs *models.BuildState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := bs.Config
	if err := indexArtifacts(bs); err != nil {
		slog.Warn("Could not refresh artifact index, using the post-bundle index", logfields.Error(err))
	}
	rw := htmlrefs.NewRewriter(bs.Output, htmlrefs.NewScanner(cfg.Scanner), bs.Artifacts, cfg.Assets.ScriptURL)
	summary, err := rw.RewriteAll(ctx, cfg.Assets.RewritePages)

	bs.Report.PagesRewritten = summary.Rewritten
	bs.Report.ReferencesRewritten = len(summary.Edits)
	bs.Report.ReferencesUnresolved = summary.Unresolved
	bs.Recorder.AddRewrittenReferences(len(summary.Edits))

	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return models.NewWarnStageError(models.StageRewriteReferences, fmt.Errorf("%w: %w", models.ErrRewrite, err))
	}
	return nil
}
