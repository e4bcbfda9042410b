package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/pwabuilder/internal/build/models"
	"git.home.luguber.info/inful/pwabuilder/internal/eventstore"
	"git.home.luguber.info/inful/pwabuilder/internal/logfields"
	"git.home.luguber.info/inful/pwabuilder/internal/observability"
)

// EventObserver appends build history events to an event store. Store failures are logged and
// never affect the build.
type EventObserver struct {
	ctx     context.Context
	store   eventstore.Store
	buildID string
}

// NewEventObserver creates an observer appending to store. ctx bounds the store writes.
func NewEventObserver(ctx context.Context, store eventstore.Store) *EventObserver {
	return &EventObserver{ctx: context.WithoutCancel(ctx), store: store}
}

func (o *EventObserver) OnBuildStart(report *models.BuildReport) {
	o.buildID = report.BuildID
	o.append(eventstore.NewBuildStarted(report.BuildID, eventstore.BuildStartedData{
		Mode:    report.Mode,
		Release: report.Release,
		Version: report.Version,
	}))
}

func (o *EventObserver) OnStageStart(models.StageName) {}

func (o *EventObserver) OnStageComplete(stage models.StageName, d time.Duration, result models.StageResult) {
	o.append(eventstore.NewStageCompleted(o.buildID, string(stage), string(result), d, ""))
}

func (o *EventObserver) OnBuildComplete(report *models.BuildReport) {
	o.append(eventstore.NewBuildCompleted(report.BuildID, eventstore.BuildCompletedData{
		Outcome:             string(report.Outcome),
		DurationMS:          report.End.Sub(report.Start).Milliseconds(),
		LegacyCompiled:      report.LegacyCompiled,
		LegacyFallbacks:     report.LegacyFallbacks,
		FilesCopied:         report.FilesCopied,
		ReferencesRewritten: report.ReferencesRewritten,
		DuplicatesPruned:    report.DuplicatesPruned,
		Warnings:            errorStrings(report.Warnings),
		Errors:              errorStrings(report.Errors),
		Artifacts:           report.Artifacts,
	}))
}

func (o *EventObserver) append(event *eventstore.BaseEvent, err error) {
	if err == nil {
		err = o.store.Append(o.ctx, event)
	}
	if err != nil {
		observability.WarnContext(o.ctx, "Failed to record build event", logfields.Error(err))
	}
}

func errorStrings(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}
