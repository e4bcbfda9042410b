package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "pwabuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration  *prom.HistogramVec
	buildDuration  prom.Histogram
	stageResults   *prom.CounterVec
	buildOutcome   *prom.CounterVec
	legacyModules  *prom.CounterVec
	copiedFiles    prom.Counter
	rewrittenRefs  prom.Counter
	prunedFiles    prom.Counter
	artifactsIndex *prom.GaugeVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg. A nil reg gets a
// fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		legacyModules: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "legacy_modules_total",
			Help:      "Legacy modules by compile outcome",
		}, []string{"outcome"}),
		copiedFiles: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "copied_files_total",
			Help:      "Static asset files written to the output tree",
		}),
		rewrittenRefs: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rewritten_references_total",
			Help:      "Script references rewritten to hashed artifacts",
		}),
		prunedFiles: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pruned_duplicates_total",
			Help:      "Un-hashed scripts removed because a hashed counterpart exists",
		}),
		artifactsIndex: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "artifact_index_entries",
			Help:      "Logical names resolved by the artifact index of the last build",
		}, []string{"source"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
		pr.legacyModules, pr.copiedFiles, pr.rewrittenRefs, pr.prunedFiles, pr.artifactsIndex)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncLegacyModule(outcome string) {
	if p == nil {
		return
	}
	p.legacyModules.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) AddCopiedFiles(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.copiedFiles.Add(float64(n))
}

func (p *PrometheusRecorder) AddRewrittenReferences(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.rewrittenRefs.Add(float64(n))
}

func (p *PrometheusRecorder) AddPrunedDuplicates(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.prunedFiles.Add(float64(n))
}

func (p *PrometheusRecorder) SetArtifactIndexSize(source string, n int) {
	if p == nil {
		return
	}
	p.artifactsIndex.Reset()
	p.artifactsIndex.WithLabelValues(source).Set(float64(n))
}

// WriteTextfile writes everything gathered from g to path in the text exposition format, for
// the node exporter textfile collector. The file is replaced atomically.
func WriteTextfile(path string, g prom.Gatherer) error {
	if err := prom.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
