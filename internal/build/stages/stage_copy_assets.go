package stages

import (
	"context"
	"errors"
	"fmt"

	"git.home.luguber.info/inful/pwabuilder/internal/assetcopy"
	"git.home.luguber.info/inful/pwabuilder/internal/build/models"
)

// StageCopyAssets mirrors the copy manifest, legacy pages and legacy script directories into
// the output tree.
func StageCopyAssets(ctx context.Context, bs *models.BuildState) error {
	copier := assetcopy.NewCopier(bs.Source, bs.Output, bs.Config.CopyConcurrency)
	summary, failures, err := copier.Copy(ctx, assetcopy.Jobs(bs.Config.Assets))

	bs.Report.AssetsCopied = summary.Copied
	bs.Report.AssetsSkipped = summary.Skipped
	bs.Report.AssetsFailed = summary.Failed
	bs.Report.FilesCopied = summary.Files
	bs.Recorder.AddCopiedFiles(summary.Files)
	if err != nil {
		return err
	}

	if len(failures) > 0 {
		errs := make([]error, len(failures))
		for i, f := range failures {
			errs[i] = f
		}
		return models.NewWarnStageError(models.StageCopyAssets,
			fmt.Errorf("%w: %d entries failed: %w", models.ErrAssetCopy, len(failures), errors.Join(errs...)))
	}
	return nil
}
