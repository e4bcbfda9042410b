package stages

import (
	"context"
	"errors"

	"git.home.luguber.info/inful/pwabuilder/internal/build/models"
)

// StageOutcome normalized result of stage execution.
type StageOutcome struct {
	Stage  models.StageName
	Error  *models.StageError
	Result models.StageResult
	Abort  bool
}

// ClassifyStageResult converts the error returned by a stage into a StageOutcome according to
// the stage policy. Cancellation always aborts. Under PolicyBestEffort every other failure is
// downgraded to a warning; under PolicyFatal an unclassified error is fatal.
func ClassifyStageResult(def models.StageDef, err error) StageOutcome {
	if err == nil {
		return StageOutcome{Stage: def.Name, Result: models.StageResultSuccess}
	}

	var se *models.StageError
	if !errors.As(err, &se) {
		se = models.NewFatalStageError(def.Name, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		se = models.NewCanceledStageError(def.Name, se.Err)
	}

	if se.Kind == models.StageErrorCanceled {
		return StageOutcome{Stage: def.Name, Error: se, Result: models.StageResultCanceled, Abort: true}
	}

	if se.Kind == models.StageErrorFatal && def.Policy == models.PolicyBestEffort {
		se = models.NewWarnStageError(def.Name, se.Err)
	}

	if se.Kind == models.StageErrorWarning {
		return StageOutcome{Stage: def.Name, Error: se, Result: models.StageResultWarning}
	}
	return StageOutcome{Stage: def.Name, Error: se, Result: models.StageResultFatal, Abort: true}
}
