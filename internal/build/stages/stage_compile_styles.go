package stages

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/pwabuilder/internal/build/models"
)

// StageCompileStyles runs the stylesheet compiler. Any failure is fatal.
func StageCompileStyles(ctx context.Context, bs *models.BuildState) error {
	if err := bs.Invoker.CompileStylesheets(ctx); err != nil {
		return models.NewFatalStageError(models.StageCompileStyles, fmt.Errorf("%w: %w", models.ErrStylesheetCompile, err))
	}
	return nil
}
