package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcomeLabel is the final build status: success|warning|failed|canceled.
type BuildOutcomeLabel string

// Recorder defines observability hooks for build, stage and asset metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	// IncLegacyModule counts legacy modules by outcome (compiled|fallback|skipped|failed).
	IncLegacyModule(outcome string)
	AddCopiedFiles(n int)
	AddRewrittenReferences(n int)
	AddPrunedDuplicates(n int)
	// SetArtifactIndexSize records how many logical names the artifact index resolved and
	// whether it came from the bundler manifest or a directory scan.
	SetArtifactIndexSize(source string, n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)          {}
func (NoopRecorder) IncLegacyModule(string)                     {}
func (NoopRecorder) AddCopiedFiles(int)                         {}
func (NoopRecorder) AddRewrittenReferences(int)                 {}
func (NoopRecorder) AddPrunedDuplicates(int)                    {}
func (NoopRecorder) SetArtifactIndexSize(string, int)           {}
