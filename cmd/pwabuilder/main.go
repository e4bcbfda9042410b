package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pwabuilder/cmd/pwabuilder/commands"
	ferrors "git.home.luguber.info/inful/pwabuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pwabuilder/internal/version"
)

func main() {
	var cli commands.CLI
	parser := kong.Must(&cli,
		kong.Name("pwabuilder"),
		kong.Description("Build pipeline for the event booking PWA."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	global := &commands.Global{Logger: slog.Default()}
	err = kctx.Run(global, &cli)
	ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
