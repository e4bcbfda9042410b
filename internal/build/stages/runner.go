package stages

import (
	"context"
	"time"

	"git.home.luguber.info/inful/pwabuilder/internal/build/models"
	"git.home.luguber.info/inful/pwabuilder/internal/logfields"
	"git.home.luguber.info/inful/pwabuilder/internal/observability"
)

// RunStages executes stages strictly in order, recording each result. It stops on the first
// fatal or canceled stage and returns that *models.StageError; warnings are recorded and the
// next stage runs. No stage is retried.
func RunStages(ctx context.Context, bs *models.BuildState, observer models.BuildObserver, defs []models.StageDef) error {
	if observer == nil {
		observer = models.NoopObserver{}
	}
	for _, st := range defs {
		stageCtx := observability.WithStage(ctx, string(st.Name))
		select {
		case <-ctx.Done():
			se := models.NewCanceledStageError(st.Name, ctx.Err())
			bs.Report.AddError(se)
			bs.Report.RecordStage(models.StageRecord{Stage: st.Name, Result: models.StageResultCanceled, Message: se.Error()}, bs.Recorder)
			observer.OnStageComplete(st.Name, 0, models.StageResultCanceled)
			observability.WarnContext(stageCtx, "Build canceled before stage")
			return se
		default:
		}

		observer.OnStageStart(st.Name)
		observability.DebugContext(stageCtx, "Stage started")

		t0 := time.Now()
		err := st.Fn(stageCtx, bs)
		dur := time.Since(t0)

		out := ClassifyStageResult(st, err)
		rec := models.StageRecord{Stage: st.Name, Result: out.Result, Duration: dur}
		if out.Error != nil {
			rec.Message = out.Error.Err.Error()
		}
		bs.Report.RecordStage(rec, bs.Recorder)
		observer.OnStageComplete(st.Name, dur, out.Result)

		took := logfields.DurationMS(float64(dur.Microseconds()) / 1000)
		switch out.Result {
		case models.StageResultSuccess:
			observability.InfoContext(stageCtx, "Stage completed", took)
		case models.StageResultWarning:
			bs.Report.AddWarning(out.Error)
			observability.WarnContext(stageCtx, "Stage completed with warnings", took, logfields.Error(out.Error.Err))
		default:
			bs.Report.AddError(out.Error)
			observability.ErrorContext(stageCtx, "Stage failed", took, logfields.Error(out.Error.Err))
		}

		if out.Abort {
			return out.Error
		}
	}
	return nil
}
