package commands

import (
	"os"

	"git.home.luguber.info/inful/pwabuilder/internal/toolchain"
	"git.home.luguber.info/inful/pwabuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct{}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
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

	ignored := append([]string{cfg.OutputDir}, cfg.GeneratedPaths()...)
	return watch.New(cfg.SourceDir, ignored, builder.Build).Run(ctx)
}
