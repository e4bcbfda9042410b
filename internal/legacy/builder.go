package legacy

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	"git.home.luguber.info/inful/pwabuilder/internal/assetcopy"
	"git.home.luguber.info/inful/pwabuilder/internal/config"
	"git.home.luguber.info/inful/pwabuilder/internal/logfields"
	"git.home.luguber.info/inful/pwabuilder/internal/toolchain"
)

// Outcome is the result of one legacy module.
type Outcome string

const (
	OutcomeCompiled Outcome = "compiled"
	OutcomeFallback Outcome = "fallback"
	OutcomeSkipped  Outcome = "skipped"
	// OutcomeFailed means neither compilation nor the fallback copy succeeded.
	OutcomeFailed Outcome = "failed"
)

// Result records what happened to one module. Output is the output-relative file that now
// exists for the module, if any.
type Result struct {
	Module  config.CompiledModuleSpec
	Outcome Outcome
	Output  string
	Err     error
}

// Summary aggregates module results.
type Summary struct {
	Compiled  int
	Fallbacks int
	Skipped   int
	Failed    int
	Results   []Result
}

// Builder drives a Compiler over the configured legacy modules.
type Builder struct {
	compiler Compiler
	src      billy.Filesystem
	out      billy.Filesystem
}

func NewBuilder(compiler Compiler, src, out billy.Filesystem) *Builder {
	return &Builder{compiler: compiler, src: src, out: out}
}

// CompileAll compiles modules sequentially. For every module with an existing source exactly
// one of the compiled destination or the raw-source fallback exists afterwards. Failures never
// abort the remaining modules; only context cancellation returns an error.
func (b *Builder) CompileAll(ctx context.Context, modules []config.CompiledModuleSpec) (Summary, error) {
	var s Summary
	for _, m := range modules {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		r := b.compileOne(ctx, m)
		s.Results = append(s.Results, r)
		switch r.Outcome {
		case OutcomeCompiled:
			s.Compiled++
		case OutcomeFallback:
			s.Fallbacks++
		case OutcomeSkipped:
			s.Skipped++
		case OutcomeFailed:
			s.Failed++
		}
	}

	if s.Compiled == 0 {
		slog.Warn("No legacy modules were compiled",
			slog.Int("fallbacks", s.Fallbacks),
			slog.Int("skipped", s.Skipped),
			slog.Int("failed", s.Failed))
	}
	return s, nil
}

func (b *Builder) compileOne(ctx context.Context, m config.CompiledModuleSpec) Result {
	if !assetcopy.Exists(b.src, m.Source) {
		slog.Debug("Legacy module source missing, skipped", logfields.Source(m.Source))
		return Result{Module: m, Outcome: OutcomeSkipped}
	}

	fallback := FallbackName(m)
	compileErr := b.compile(ctx, m)
	if compileErr == nil {
		if fallback != m.Destination {
			// A fallback left by an earlier build would shadow the compiled module.
			b.removeQuietly(fallback)
		}
		slog.Info("Compiled legacy module", logfields.Source(m.Source), logfields.Destination(m.Destination))
		return Result{Module: m, Outcome: OutcomeCompiled, Output: m.Destination}
	}

	slog.Warn("Legacy module compilation failed, copying source instead",
		logfields.Source(m.Source),
		logfields.Destination(fallback),
		logfields.Error(compileErr))

	if err := assetcopy.CopyFile(b.src, m.Source, b.out, fallback); err != nil {
		slog.Warn("Legacy module fallback copy failed", logfields.Source(m.Source), logfields.Error(err))
		return Result{Module: m, Outcome: OutcomeFailed, Err: fmt.Errorf("%w (fallback: %w)", compileErr, err)}
	}
	return Result{Module: m, Outcome: OutcomeFallback, Output: fallback, Err: compileErr}
}

// compile produces m.Destination or, on failure, leaves no compiled output behind.
func (b *Builder) compile(ctx context.Context, m config.CompiledModuleSpec) error {
	produced, err := b.compiler.Compile(ctx, m.Source, filepath.Dir(m.Destination))
	if err == nil && filepath.Clean(produced) != filepath.Clean(m.Destination) {
		if err = b.out.Rename(produced, m.Destination); err != nil {
			err = fmt.Errorf("rename %s to %s: %w", produced, m.Destination, err)
		}
	}
	if err != nil {
		b.removeQuietly(produced)
		b.removeQuietly(m.Destination)
	}
	return err
}

func (b *Builder) removeQuietly(name string) {
	if name == "" || !assetcopy.Exists(b.out, name) {
		return
	}
	if err := b.out.Remove(name); err != nil {
		slog.Warn("Could not remove partial legacy output", logfields.Path(name), logfields.Error(err))
	}
}

// FallbackName is the destination with its extension replaced by the source extension.
func FallbackName(m config.CompiledModuleSpec) string {
	dst := m.Destination
	return dst[:len(dst)-len(filepath.Ext(dst))] + filepath.Ext(m.Source)
}

// NewCompiler selects the configured compiler implementation.
func NewCompiler(cfg *config.Config, runner toolchain.Runner, src, out billy.Filesystem) Compiler {
	if cfg.Tools.LegacyCompiler == config.LegacyCompilerCommand {
		return NewCommandCompiler(runner, cfg.Tools.LegacyCommand, cfg.SourceDir, cfg.OutputDir, out)
	}
	return NewEsbuildCompiler(src, out, cfg.Mode)
}
