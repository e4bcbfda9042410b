package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/pwabuilder/internal/config"
	"git.home.luguber.info/inful/pwabuilder/internal/eventstore"
	ferrors "git.home.luguber.info/inful/pwabuilder/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int  `short:"n" default:"10" help:"Number of builds to list (0 lists all)"`
	JSON  bool `name:"json" help:"Print the build summaries as JSON"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return h.print(ctx, cfg, os.Stdout)
}

func (h *HistoryCmd) print(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if cfg.HistoryDB == "" {
		return ferrors.ConfigError(config.EnvHistoryDB + " is not set; no build history is recorded").Build()
	}
	store, err := eventstore.NewSQLiteStore(cfg.HistoryDB)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryEventStore, "failed to open build history").
			Fatal().WithContext("path", cfg.HistoryDB).Build()
	}
	defer func() { _ = store.Close() }()

	projection := eventstore.NewBuildHistoryProjection(store, 0)
	if err := projection.Rebuild(ctx); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryEventStore, "failed to read build history").Fatal().Build()
	}
	builds := projection.History(h.Limit)

	if h.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(builds)
	}
	if len(builds) == 0 {
		_, _ = fmt.Fprintln(out, "No builds recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "BUILD ID\tSTARTED\tRELEASE\tMODE\tSTATUS\tDURATION\tFAILED STAGE")
	for _, b := range builds {
		failed := b.FailedStage
		if failed == "" {
			failed = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.BuildID, b.StartedAt.Local().Format(time.DateTime), b.Release, b.Mode, b.Status,
			b.Duration.Truncate(time.Millisecond), failed)
	}
	return tw.Flush()
}
