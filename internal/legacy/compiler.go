// Package legacy compiles standalone legacy script modules that live outside the bundler's
// entry graph into browser-ready files, falling back to the raw source when compilation fails.
package legacy

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// ErrCompile is wrapped by every compiler failure.
var ErrCompile = errors.New("legacy module compilation failed")

// Compiler compiles one module. source is relative to the project tree and outDir to the
// output tree. It returns the output-relative path of the produced file, which is always
// <outDir>/<source stem>.js.
type Compiler interface {
	Compile(ctx context.Context, source, outDir string) (produced string, err error)
}

// ProducedName returns the deterministic output path for source compiled into outDir.
func ProducedName(source, outDir string) string {
	return filepath.Join(outDir, stem(source)+".js")
}

func stem(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
