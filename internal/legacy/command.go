package legacy

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"

	"git.home.luguber.info/inful/pwabuilder/internal/config"
	"git.home.luguber.info/inful/pwabuilder/internal/toolchain"
)

// Placeholders substituted in CommandCompiler arguments.
const (
	PlaceholderSource = "{source}"
	PlaceholderOutDir = "{outdir}"
)

// CommandCompiler compiles modules with an external command such as babel. The command is
// expected to write <outdir>/<stem>.js.
type CommandCompiler struct {
	runner     toolchain.Runner
	tool       config.ToolCommand
	sourceRoot string
	outputRoot string
	out        billy.Filesystem
}

// NewCommandCompiler creates a compiler running tool. sourceRoot and outputRoot are the
// absolute directories backing the project and output filesystems; out is used to verify
// the produced file.
func NewCommandCompiler(runner toolchain.Runner, tool config.ToolCommand, sourceRoot, outputRoot string, out billy.Filesystem) *CommandCompiler {
	return &CommandCompiler{runner: runner, tool: tool, sourceRoot: sourceRoot, outputRoot: outputRoot, out: out}
}

func (c *CommandCompiler) Compile(ctx context.Context, source, outDir string) (string, error) {
	absSource := filepath.Join(c.sourceRoot, source)
	absOutDir := filepath.Join(c.outputRoot, outDir)
	if err := c.out.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCompile, err)
	}

	args := make([]string, len(c.tool.Args))
	replacer := strings.NewReplacer(PlaceholderSource, absSource, PlaceholderOutDir, absOutDir)
	for i, a := range c.tool.Args {
		args[i] = replacer.Replace(a)
	}

	produced := ProducedName(source, outDir)
	cmd := toolchain.Command{Program: c.tool.Program, Args: args, Dir: c.sourceRoot}
	if _, err := c.runner.Run(ctx, cmd); err != nil {
		return produced, fmt.Errorf("%w: %s: %w", ErrCompile, source, err)
	}
	if _, err := c.out.Stat(produced); err != nil {
		return "", fmt.Errorf("%w: %s did not produce %s: %w", ErrCompile, c.tool.Program, produced, err)
	}
	return produced, nil
}
