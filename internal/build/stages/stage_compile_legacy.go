package stages

import (
	"context"
	"errors"
	"fmt"

	"git.home.luguber.info/inful/pwabuilder/internal/build/models"
	"git.home.luguber.info/inful/pwabuilder/internal/legacy"
)

// StageCompileLegacy compiles the legacy modules outside the bundler graph. Modules that fall
// back to their raw source make the stage a warning.
func StageCompileLegacy(ctx context.Context, bs *models.BuildState) error {
	compiler := legacy.NewCompiler(bs.Config, bs.Runner, bs.Source, bs.Output)
	summary, err := legacy.NewBuilder(compiler, bs.Source, bs.Output).CompileAll(ctx, bs.Config.Assets.LegacyModules)

	bs.Report.LegacyCompiled = summary.Compiled
	bs.Report.LegacyFallbacks = summary.Fallbacks
	bs.Report.LegacySkipped = summary.Skipped
	bs.Report.LegacyFailed = summary.Failed
	for _, r := range summary.Results {
		bs.Recorder.IncLegacyModule(string(r.Outcome))
	}
	if err != nil {
		return err
	}

	var degraded []error
	for _, r := range summary.Results {
		if r.Err != nil {
			degraded = append(degraded, fmt.Errorf("%s: %w", r.Module.Source, r.Err))
		}
	}
	if len(degraded) > 0 {
		return models.NewWarnStageError(models.StageCompileLegacy,
			fmt.Errorf("%w: %d of %d modules: %w", models.ErrLegacyCompile, len(degraded), len(summary.Results), errors.Join(degraded...)))
	}
	return nil
}
