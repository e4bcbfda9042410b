package legacy

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"git.home.luguber.info/inful/pwabuilder/internal/config"
)

// EsbuildCompiler transforms modules in-process with esbuild: target ES2017, IIFE output,
// no bundling. Development builds get an inline source map.
type EsbuildCompiler struct {
	src  billy.Filesystem
	out  billy.Filesystem
	mode config.BuildMode
}

func NewEsbuildCompiler(src, out billy.Filesystem, mode config.BuildMode) *EsbuildCompiler {
	return &EsbuildCompiler{src: src, out: out, mode: mode}
}

func (c *EsbuildCompiler) Compile(ctx context.Context, source, outDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	code, err := util.ReadFile(c.src, source)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrCompile, source, err)
	}

	opts := api.TransformOptions{
		Loader:     loaderFor(source),
		Target:     api.ES2017,
		Format:     api.FormatIIFE,
		Sourcefile: filepath.ToSlash(source),
	}
	if c.mode == config.ModeDevelopment {
		opts.Sourcemap = api.SourceMapInline
	} else {
		opts.MinifyWhitespace = true
		opts.MinifySyntax = true
	}

	result := api.Transform(string(code), opts)
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("%w: %s: %s", ErrCompile, source, formatMessages(result.Errors))
	}

	produced := ProducedName(source, outDir)
	if err := c.out.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCompile, err)
	}
	if err := util.WriteFile(c.out, produced, result.Code, 0o644); err != nil {
		return produced, fmt.Errorf("%w: write %s: %w", ErrCompile, produced, err)
	}
	return produced, nil
}

func loaderFor(source string) api.Loader {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".tsx":
		return api.LoaderTSX
	case ".jsx":
		return api.LoaderJSX
	default:
		return api.LoaderJS
	}
}

func formatMessages(msgs []api.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Location != nil {
			parts = append(parts, fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text))
			continue
		}
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "; ")
}
