package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pwabuilder/internal/build"
	"git.home.luguber.info/inful/pwabuilder/internal/config"
	"git.home.luguber.info/inful/pwabuilder/internal/eventstore"
	ferrors "git.home.luguber.info/inful/pwabuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pwabuilder/internal/logfields"
	"git.home.luguber.info/inful/pwabuilder/internal/metrics"
	"git.home.luguber.info/inful/pwabuilder/internal/toolchain"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct{}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	builder, err := NewBuilder(cfg, toolchain.NewExecRunner(), os.Stdout)
	if err != nil {
		return err
	}
	defer builder.Close()
	return builder.Build(ctx)
}

// Builder wires the build service to the optional metrics textfile and history database and
// prints progress lines to out. One Builder serves every rebuild of a watch session.
type Builder struct {
	cfg      *config.Config
	out      io.Writer
	service  *build.Service
	registry *prometheus.Registry
	store    *eventstore.SQLiteStore
}

// NewBuilder opens the history database when configured.
func NewBuilder(cfg *config.Config, runner toolchain.Runner, out io.Writer, opts ...build.Option) (*Builder, error) {
	b := &Builder{cfg: cfg, out: out}

	if cfg.MetricsFile != "" {
		b.registry = prometheus.NewRegistry()
		opts = append(opts, build.WithRecorder(metrics.NewPrometheusRecorder(b.registry)))
	}
	if cfg.HistoryDB != "" {
		store, err := eventstore.NewSQLiteStore(cfg.HistoryDB)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryEventStore, "failed to open build history").
				Fatal().WithContext("path", cfg.HistoryDB).Build()
		}
		b.store = store
		opts = append(opts, build.WithEventStore(store))
	}

	b.service = build.NewService(cfg, runner, opts...)
	return b, nil
}

// Build runs the pipeline once and prints its summary. Only fatal stage failures are returned.
func (b *Builder) Build(ctx context.Context) error {
	_, _ = fmt.Fprintln(b.out, "Starting pwabuilder build")

	report, err := b.service.Run(ctx)
	b.writeMetrics()

	if report != nil {
		for _, w := range report.Warnings {
			_, _ = fmt.Fprintf(b.out, "warning: %v\n", w)
		}
		_, _ = fmt.Fprintf(b.out, "Build %s: %s\n", report.Outcome, report.Summary())
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(b.out, "Output written to %s\n", b.cfg.OutputDir)
	return nil
}

func (b *Builder) writeMetrics() {
	if b.registry == nil {
		return
	}
	if err := metrics.WriteTextfile(b.cfg.MetricsFile, b.registry); err != nil {
		slog.Warn("Failed to write metrics textfile", logfields.Path(b.cfg.MetricsFile), logfields.Error(err))
	}
}

// Close releases the history database.
func (b *Builder) Close() {
	if b.store == nil {
		return
	}
	if err := b.store.Close(); err != nil {
		slog.Warn("Failed to close build history", logfields.Error(err))
	}
}
