package stages

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/pwabuilder/internal/artifacts"
	"git.home.luguber.info/inful/pwabuilder/internal/build/models"
	"git.home.luguber.info/inful/pwabuilder/internal/logfields"
)

// StageBundleModules runs the module bundler and then indexes its hashed output. A bundler
// failure is fatal; an unreadable script directory only leaves the index empty.
func StageBundleModules(ctx context.Context, bs *models.BuildState) error {
	cfg := bs.Config
	if err := bs.Invoker.CompileModules(ctx, cfg.Mode); err != nil {
		return models.NewFatalStageError(models.StageBundleModules, fmt.Errorf("%w: %w", models.ErrBundle, err))
	}

	if err := indexArtifacts(bs); err != nil {
		return models.NewWarnStageError(models.StageBundleModules, fmt.Errorf("index bundler output: %w", err))
	}
	return nil
}

// indexArtifacts (re)builds the artifact index from the current output tree. On failure the
// previous index is kept.
func indexArtifacts(bs *models.BuildState) error {
	cfg := bs.Config
	idx, err := artifacts.Build(bs.Output, cfg.Assets.ArtifactManifest, cfg.Assets.ScriptDir)
	if err != nil {
		return err
	}
	bs.Artifacts = idx
	bs.Report.ArtifactIndexSource = string(idx.Source())
	bs.Report.Artifacts = idx.Entries()
	bs.Recorder.SetArtifactIndexSize(string(idx.Source()), idx.Len())
	slog.Info("Indexed hashed artifacts", logfields.Count(idx.Len()), slog.String("source", string(idx.Source())))
	return nil
}
