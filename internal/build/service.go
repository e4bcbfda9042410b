package build

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/pwabuilder/internal/build/models"
	"git.home.luguber.info/inful/pwabuilder/internal/build/stages"
	"git.home.luguber.info/inful/pwabuilder/internal/config"
	"git.home.luguber.info/inful/pwabuilder/internal/eventstore"
	dberrors "git.home.luguber.info/inful/pwabuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pwabuilder/internal/git"
	"git.home.luguber.info/inful/pwabuilder/internal/logfields"
	"git.home.luguber.info/inful/pwabuilder/internal/metrics"
	"git.home.luguber.info/inful/pwabuilder/internal/observability"
	"git.home.luguber.info/inful/pwabuilder/internal/toolchain"
	"git.home.luguber.info/inful/pwabuilder/internal/version"
)

// ReleaseResolver derives a release identifier from the project directory.
type ReleaseResolver func(dir string) (string, error)

// Service executes builds for one configuration.
type Service struct {
	cfg       *config.Config
	runner    toolchain.Runner
	recorder  metrics.Recorder
	observers []models.BuildObserver
	store     eventstore.Store
	resolve   ReleaseResolver
	pipeline  []models.StageDef
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder reports metrics to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithObserver adds a build observer.
func WithObserver(o models.BuildObserver) Option {
	return func(s *Service) { s.observers = append(s.observers, o) }
}

// WithEventStore records build history events in store.
func WithEventStore(store eventstore.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithReleaseResolver replaces the git based release resolution.
func WithReleaseResolver(r ReleaseResolver) Option {
	return func(s *Service) { s.resolve = r }
}

// WithPipeline replaces the default stage list.
func WithPipeline(defs []models.StageDef) Option {
	return func(s *Service) { s.pipeline = defs }
}

// NewService creates a build service. runner executes the external compilers.
func NewService(cfg *config.Config, runner toolchain.Runner, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		runner:   runner,
		recorder: metrics.NoopRecorder{},
		resolve:  git.ResolveRelease,
		pipeline: stages.DefaultPipeline(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one build. The report is always returned; the error is non-nil only when a fatal
// stage failed, the build was canceled or the output directory could not be created.
func (s *Service) Run(ctx context.Context) (*models.BuildReport, error) {
	cfg := s.cfg
	buildID := uuid.NewString()
	release := s.release(ctx)
	ctx = observability.WithRelease(observability.WithBuildID(ctx, buildID), release)

	report := models.NewBuildReport(buildID, string(cfg.Mode), release)
	observer := s.observer(ctx)
	observer.OnBuildStart(report)
	observability.InfoContext(ctx, "Build started", logfields.Mode(string(cfg.Mode)), logfields.Path(cfg.OutputDir))

	if !cfg.Email.Configured() {
		warning := errors.New("email credentials are not configured; the contact function will not send mail")
		report.AddWarning(warning)
		observability.WarnContext(ctx, "Email credentials missing",
			slog.Bool("user_set", cfg.Email.User != ""),
			slog.Bool("password_set", cfg.Email.Password != ""))
	}

	runErr := s.execute(ctx, report, observer)

	report.Finish()
	report.DeriveOutcome()
	observer.OnBuildComplete(report)
	s.writeReport(ctx, report)
	observability.InfoContext(ctx, "Build finished", slog.String("summary", report.Summary()))

	if runErr != nil {
		return report, s.classify(runErr, release)
	}
	return report, nil
}

func (s *Service) execute(ctx context.Context, report *models.BuildReport, observer models.BuildObserver) error {
	cfg := s.cfg
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		ferr := dberrors.WrapError(err, dberrors.CategoryFileSystem, "failed to create output directory").
			Fatal().WithContext("path", cfg.OutputDir).Build()
		report.AddError(ferr)
		return ferr
	}
	bs := models.NewBuildState(cfg, osfs.New(cfg.SourceDir), osfs.New(cfg.OutputDir), s.runner, s.recorder, report)
	return stages.RunStages(ctx, bs, observer, s.pipeline)
}

// release prefers the configured release, then the repository state, then the tool version.
func (s *Service) release(ctx context.Context) string {
	if s.cfg.Release != "" {
		return s.cfg.Release
	}
	if s.resolve != nil {
		rel, err := s.resolve(s.cfg.SourceDir)
		if err == nil && rel != "" {
			return rel
		}
		observability.DebugContext(ctx, "Release not derivable from repository", logfields.Error(err))
	}
	return version.Version
}

func (s *Service) observer(ctx context.Context) models.BuildObserver {
	obs := models.MultiObserver{models.RecorderObserver{Recorder: s.recorder}}
	if s.store != nil {
		obs = append(obs, NewEventObserver(ctx, s.store))
	}
	return append(obs, s.observers...)
}

func (s *Service) writeReport(ctx context.Context, report *models.BuildReport) {
	if s.cfg.ReportFile == "" {
		return
	}
	if err := report.WriteJSON(s.cfg.ReportFile); err != nil {
		observability.WarnContext(ctx, "Failed to write build report", logfields.Path(s.cfg.ReportFile), logfields.Error(err))
	}
}

// classify attaches the release and failing stage to the error handed to the CLI. Failures of
// an external compiler are reported in the toolchain category.
func (s *Service) classify(err error, release string) error {
	if _, ok := dberrors.AsClassified(err); ok {
		return err
	}
	var b *dberrors.ErrorBuilder
	var se *models.StageError
	isStage := errors.As(err, &se)
	switch {
	case isStage && se.Kind == models.StageErrorCanceled:
		b = dberrors.WrapError(err, dberrors.CategoryRuntime, "build canceled")
	case errors.Is(err, toolchain.ErrToolFailed), errors.Is(err, toolchain.ErrToolNotFound):
		b = dberrors.ToolchainError("external compiler failed").WithCause(err)
	default:
		b = dberrors.WrapError(err, dberrors.CategoryBuild, "build failed")
	}
	b.Fatal().WithContext("release", release)
	if isStage {
		b.WithContext("stage", string(se.Stage))
	}
	return b.Build()
}
