package toolchain

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"git.home.luguber.info/inful/pwabuilder/internal/config"
	"git.home.luguber.info/inful/pwabuilder/internal/logfields"
)

// Invoker runs the configured stylesheet compiler and module bundler in the project root.
type Invoker struct {
	runner  Runner
	cfg     *config.Config
	release string
}

// NewInvoker creates an invoker. release is forwarded to the bundler as APP_RELEASE.
func NewInvoker(runner Runner, cfg *config.Config, release string) *Invoker {
	return &Invoker{runner: runner, cfg: cfg, release: release}
}

// CompileStylesheets compiles the stylesheet sources. Any failure is returned to the caller,
// which treats it as fatal.
func (i *Invoker) CompileStylesheets(ctx context.Context) error {
	tool := i.cfg.Tools.Stylesheet
	cmd := Command{Program: tool.Program, Args: append([]string(nil), tool.Args...), Dir: i.cfg.SourceDir}
	slog.Info("Compiling stylesheets", logfields.Tool(tool.Program))
	if _, err := i.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("stylesheet compiler: %w", err)
	}
	return nil
}

// CompileModules runs the bundler in the given mode. Production builds emit external source
// maps that the bundles do not reference; development builds inline them.
func (i *Invoker) CompileModules(ctx context.Context, mode config.BuildMode) error {
	tool := i.cfg.Tools.Bundler
	args := append([]string(nil), tool.Args...)
	args = append(args, "--mode", string(mode), "--devtool", devtool(mode))

	cmd := Command{
		Program: tool.Program,
		Args:    args,
		Dir:     i.cfg.SourceDir,
		Env: map[string]string{
			"NODE_ENV":           string(mode),
			"APP_RELEASE":        i.release,
			"TELEMETRY_DISABLED": strconv.FormatBool(i.cfg.TelemetryDisabled),
		},
	}
	slog.Info("Bundling modules", logfields.Tool(tool.Program), logfields.Mode(string(mode)))
	if _, err := i.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("module bundler: %w", err)
	}
	return nil
}

func devtool(mode config.BuildMode) string {
	if mode == config.ModeDevelopment {
		return "inline-source-map"
	}
	return "hidden-source-map"
}
