// Package metrics provides build observability for pwabuilder.
//
// Components receive a Recorder through dependency injection. NoopRecorder is the default,
// so nothing needs nil checks:
//
//	svc := build.NewService(cfg, runner) // uses metrics.NoopRecorder{}
//
// When PWABUILDER_METRICS_FILE is set the CLI swaps in a PrometheusRecorder backed by a
// private registry and writes the registry in the node-exporter textfile format after each
// build:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	svc := build.NewService(cfg, runner, build.WithRecorder(rec))
//	// ... run ...
//	_ = metrics.WriteTextfile(path, reg)
package metrics
