package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/pwabuilder/internal/metrics"
	"git.home.luguber.info/inful/pwabuilder/internal/version"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// StageRecord is the result of one executed stage.
type StageRecord struct {
	Stage    StageName     `json:"stage"`
	Result   StageResult   `json:"result"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// OK reports whether the stage completed without any problem.
func (r StageRecord) OK() bool { return r.Result == StageResultSuccess }

// BuildReport captures what a build did. It is serialized as JSON for PWABUILDER_REPORT_FILE.
type BuildReport struct {
	SchemaVersion int          `json:"schema_version"`
	BuildID       string       `json:"build_id"`
	Version       string       `json:"pwabuilder_version"`
	Mode          string       `json:"mode"`
	Release       string       `json:"release"`
	Start         time.Time    `json:"start"`
	End           time.Time    `json:"end"`
	Outcome       BuildOutcome `json:"outcome"`

	Stages []StageRecord `json:"stages"`
	// Errors holds the error that aborted the build, Warnings every recoverable problem.
	Errors   []error `json:"-"`
	Warnings []error `json:"-"`

	LegacyCompiled       int               `json:"legacy_compiled"`
	LegacyFallbacks      int               `json:"legacy_fallbacks"`
	LegacySkipped        int               `json:"legacy_skipped"`
	LegacyFailed         int               `json:"legacy_failed"`
	AssetsCopied         int               `json:"assets_copied"`
	AssetsSkipped        int               `json:"assets_skipped"`
	AssetsFailed         int               `json:"assets_failed"`
	FilesCopied          int               `json:"files_copied"`
	EntryPromoted        bool              `json:"entry_promoted"`
	PagesRewritten       int               `json:"pages_rewritten"`
	ReferencesRewritten  int               `json:"references_rewritten"`
	ReferencesUnresolved int               `json:"references_unresolved"`
	DuplicatesPruned     int               `json:"duplicates_pruned"`
	ArtifactIndexSource  string            `json:"artifact_index_source,omitempty"`
	Artifacts            map[string]string `json:"artifacts,omitempty"`
}

// NewBuildReport starts a report for build id.
func NewBuildReport(id, mode, release string) *BuildReport {
	return &BuildReport{
		SchemaVersion: 1,
		BuildID:       id,
		Version:       version.Version,
		Mode:          mode,
		Release:       release,
		Start:         time.Now(),
	}
}

// AddWarning records a recoverable problem.
func (r *BuildReport) AddWarning(err error) {
	if err != nil {
		r.Warnings = append(r.Warnings, err)
	}
}

// AddError records the problem that stopped the build.
func (r *BuildReport) AddError(err error) {
	if err != nil {
		r.Errors = append(r.Errors, err)
	}
}

// RecordStage appends the stage record and emits the stage result metric.
func (r *BuildReport) RecordStage(rec StageRecord, recorder metrics.Recorder) {
	r.Stages = append(r.Stages, rec)
	if recorder == nil {
		return
	}
	switch rec.Result {
	case StageResultSuccess:
		recorder.IncStageResult(string(rec.Stage), metrics.ResultSuccess)
	case StageResultWarning:
		recorder.IncStageResult(string(rec.Stage), metrics.ResultWarning)
	case StageResultFatal:
		recorder.IncStageResult(string(rec.Stage), metrics.ResultFatal)
	case StageResultCanceled:
		recorder.IncStageResult(string(rec.Stage), metrics.ResultCanceled)
	}
}

// Stage returns the record for name, if the stage ran.
func (r *BuildReport) Stage(name StageName) (StageRecord, bool) {
	for _, rec := range r.Stages {
		if rec.Stage == name {
			return rec, true
		}
	}
	return StageRecord{}, false
}

// Finish sets the end time of the report.
func (r *BuildReport) Finish() { r.End = time.Now() }

// DeriveOutcome sets the Outcome field based on recorded errors/warnings.
func (r *BuildReport) DeriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("outcome=%s mode=%s release=%s duration=%s stages=%d warnings=%d legacy=%d/%d copied=%d rewritten=%d pruned=%d",
		r.Outcome, r.Mode, r.Release, dur.Truncate(time.Millisecond), len(r.Stages), len(r.Warnings),
		r.LegacyCompiled, r.LegacyCompiled+r.LegacyFallbacks+r.LegacyFailed,
		r.FilesCopied, r.ReferencesRewritten, r.DuplicatesPruned)
}

func (r *BuildReport) MarshalJSON() ([]byte, error) {
	type plain BuildReport
	return json.Marshal(struct {
		*plain
		Errors   []string `json:"errors"`
		Warnings []string `json:"warnings"`
	}{plain: (*plain)(r), Errors: messages(r.Errors), Warnings: messages(r.Warnings)})
}

func messages(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}

// WriteJSON writes the report to path, replacing it atomically.
func (r *BuildReport) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace report: %w", err)
	}
	return nil
}
