package legacy

import (
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pwabuilder/internal/assetcopy"
	"git.home.luguber.info/inful/pwabuilder/internal/config"
)

// stubCompiler writes a fixed body to the produced name, or fails for sources in failing.
// partial makes failures leave a half-written file behind.
type stubCompiler struct {
	out     billy.Filesystem
	failing map[string]bool
	partial bool
}

func (s *stubCompiler) Compile(_ context.Context, source, outDir string) (string, error) {
	produced := ProducedName(source, outDir)
	if s.failing[source] {
		if s.partial {
			_ = util.WriteFile(s.out, produced, []byte("partial"), 0o644)
		}
		return produced, errors.New("syntax error")
	}
	return produced, util.WriteFile(s.out, produced, []byte("compiled:"+source), 0o644)
}

func TestCompileAll_CompileOrFallbackIsExclusive(t *testing.T) {
	src, out := memfs.New(), memfs.New()
	require.NoError(t, util.WriteFile(src, "src/js/modules/auth.ts", []byte("ts source"), 0o644))
	require.NoError(t, util.WriteFile(src, "src/js/modules/booking-form.ts", []byte("broken source"), 0o644))

	stub := &stubCompiler{out: out, failing: map[string]bool{"src/js/modules/booking-form.ts": true}, partial: true}
	modules := []config.CompiledModuleSpec{
		{Source: "src/js/modules/auth.ts", Destination: "js/auth.js"},
		{Source: "src/js/modules/booking-form.ts", Destination: "js/booking-form.js"},
		{Source: "src/js/modules/missing.js", Destination: "js/missing.js"},
	}

	s, err := NewBuilder(stub, src, out).CompileAll(context.Background(), modules)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Compiled)
	assert.Equal(t, 1, s.Fallbacks)
	assert.Equal(t, 1, s.Skipped)
	require.Len(t, s.Results, 3)

	// Compiled: destination only.
	assert.True(t, assetcopy.Exists(out, "js/auth.js"))
	assert.False(t, assetcopy.Exists(out, "js/auth.ts"))

	// Fallback: raw source only, partial output removed.
	assert.False(t, assetcopy.Exists(out, "js/booking-form.js"))
	raw, err := util.ReadFile(out, "js/booking-form.ts")
	require.NoError(t, err)
	assert.Equal(t, "broken source", string(raw))
	assert.Equal(t, OutcomeFallback, s.Results[1].Outcome)
	assert.Error(t, s.Results[1].Err)

	// Skipped: nothing created.
	assert.False(t, assetcopy.Exists(out, "js/missing.js"))
}

func TestCompileAll_RenamesWhenProducedNameDiffers(t *testing.T) {
	src, out := memfs.New(), memfs.New()
	require.NoError(t, util.WriteFile(src, "src/js/modules/date-utils.js", []byte("x"), 0o644))

	s, err := NewBuilder(&stubCompiler{out: out}, src, out).CompileAll(context.Background(), []config.CompiledModuleSpec{
		{Source: "src/js/modules/date-utils.js", Destination: "js/dates.js"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Compiled)
	assert.True(t, assetcopy.Exists(out, "js/dates.js"))
	assert.False(t, assetcopy.Exists(out, "js/date-utils.js"))
}

func TestCompileAll_SuccessRemovesStaleFallback(t *testing.T) {
	src, out := memfs.New(), memfs.New()
	require.NoError(t, util.WriteFile(src, "src/auth.ts", []byte("ts"), 0o644))
	require.NoError(t, util.WriteFile(out, "js/auth.ts", []byte("stale fallback"), 0o644))

	_, err := NewBuilder(&stubCompiler{out: out}, src, out).CompileAll(context.Background(), []config.CompiledModuleSpec{
		{Source: "src/auth.ts", Destination: "js/auth.js"},
	})
	require.NoError(t, err)
	assert.True(t, assetcopy.Exists(out, "js/auth.js"))
	assert.False(t, assetcopy.Exists(out, "js/auth.ts"))
}

func TestCompileAll_FailureRemovesStaleCompiledOutput(t *testing.T) {
	src, out := memfs.New(), memfs.New()
	require.NoError(t, util.WriteFile(src, "src/auth.ts", []byte("ts"), 0o644))
	require.NoError(t, util.WriteFile(out, "js/auth.js", []byte("compiled by an earlier build"), 0o644))

	stub := &stubCompiler{out: out, failing: map[string]bool{"src/auth.ts": true}}
	_, err := NewBuilder(stub, src, out).CompileAll(context.Background(), []config.CompiledModuleSpec{
		{Source: "src/auth.ts", Destination: "js/auth.js"},
	})
	require.NoError(t, err)
	assert.False(t, assetcopy.Exists(out, "js/auth.js"))
	assert.True(t, assetcopy.Exists(out, "js/auth.ts"))
}

func TestCompileAll_NothingCompiledIsNotAnError(t *testing.T) {
	s, err := NewBuilder(&stubCompiler{out: memfs.New()}, memfs.New(), memfs.New()).
		CompileAll(context.Background(), config.Default().Assets.LegacyModules)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Compiled)
	assert.Equal(t, len(config.Default().Assets.LegacyModules), s.Skipped)
}

func TestCompileAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBuilder(&stubCompiler{out: memfs.New()}, memfs.New(), memfs.New()).
		CompileAll(ctx, []config.CompiledModuleSpec{{Source: "a.js", Destination: "a.js"}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFallbackName(t *testing.T) {
	assert.Equal(t, "js/auth.ts", FallbackName(config.CompiledModuleSpec{Source: "src/auth.ts", Destination: "js/auth.js"}))
	assert.Equal(t, "js/dates.js", FallbackName(config.CompiledModuleSpec{Source: "src/date-utils.js", Destination: "js/dates.js"}))
}
