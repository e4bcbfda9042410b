package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pwabuilder/internal/config"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags. Everything else is read from the environment (see config.Load).
type CLI struct {
	Verbose bool             `short:"v" help:"Enable debug logging (overrides PWABUILDER_LOG_LEVEL)"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" default:"1" help:"Run the build pipeline once (default)"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild whenever the source tree changes"`
	History HistoryCmd `cmd:"" help:"List recent builds recorded in PWABUILDER_HISTORY_DB"`
}

// AfterApply runs after flag parsing and installs a provisional logger; LoadConfig replaces it
// once the configured level and format are known.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// LoadConfig builds the configuration from .env files and the environment and reconfigures the
// default logger from it.
func (c *CLI) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(NewLogger(os.Stderr, cfg.Logging, c.Verbose))
	return cfg, nil
}

// NewLogger returns a text or JSON logger writing to w at the configured level. verbose forces
// debug level.
func NewLogger(w io.Writer, lc config.LoggingConfig, verbose bool) *slog.Logger {
	level := lc.Level
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
