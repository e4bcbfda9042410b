package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gathered returns metric family name -> summed counter/gauge value and series count.
func gathered(t *testing.T, reg *prom.Registry) (map[string]float64, map[string]int) {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	values, series := map[string]float64{}, map[string]int{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			series[mf.GetName()]++
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] += m.GetGauge().GetValue()
			}
		}
	}
	return values, series
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("copy_assets", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("copy_assets", ResultSuccess)
	pr.IncBuildOutcome("success")
	pr.IncLegacyModule("compiled")
	pr.IncLegacyModule("fallback")
	pr.AddCopiedFiles(12)
	pr.AddRewrittenReferences(3)
	pr.AddPrunedDuplicates(2)
	pr.AddPrunedDuplicates(0)
	pr.SetArtifactIndexSize("scan", 4)
	pr.SetArtifactIndexSize("manifest", 5)

	values, series := gathered(t, reg)
	assert.InDelta(t, 12, values["pwabuilder_copied_files_total"], 0)
	assert.InDelta(t, 3, values["pwabuilder_rewritten_references_total"], 0)
	assert.InDelta(t, 2, values["pwabuilder_pruned_duplicates_total"], 0)
	assert.InDelta(t, 2, values["pwabuilder_legacy_modules_total"], 0)
	assert.Equal(t, 2, series["pwabuilder_legacy_modules_total"])
	assert.InDelta(t, 5, values["pwabuilder_artifact_index_entries"], 0)
	assert.Equal(t, 1, series["pwabuilder_artifact_index_entries"], "only the latest index source is reported")
	assert.Equal(t, 1, series["pwabuilder_stage_duration_seconds"])
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncBuildOutcome("warning")

	path := filepath.Join(t.TempDir(), "pwabuilder.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `pwabuilder_build_outcomes_total{outcome="warning"} 1`)
}

func TestNilAndNoopRecorders(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncBuildOutcome("success")
		pr.AddCopiedFiles(1)
		NoopRecorder{}.SetArtifactIndexSize("scan", 1)
	})
}
