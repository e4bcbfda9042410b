package stages

import "git.home.luguber.info/inful/pwabuilder/internal/build/models"

// DefaultPipeline returns the asset build in its fixed order. Only the two external compiler
// stages can fail the build.
func DefaultPipeline() []models.StageDef {
	return models.NewPipeline().
		Fatal(models.StageCompileStyles, StageCompileStyles).
		Fatal(models.StageBundleModules, StageBundleModules).
		BestEffort(models.StageCompileLegacy, StageCompileLegacy).
		BestEffort(models.StageCopyAssets, StageCopyAssets).
		BestEffort(models.StagePromoteEntry, StagePromoteEntry).
		BestEffort(models.StageRewriteReferences, StageRewriteReferences).
		BestEffort(models.StagePruneDuplicates, StagePruneDuplicates).
		Build()
}
