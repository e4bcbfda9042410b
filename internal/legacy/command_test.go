package legacy

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pwabuilder/internal/config"
	"git.home.luguber.info/inful/pwabuilder/internal/toolchain"
	"git.home.luguber.info/inful/pwabuilder/internal/toolchain/toolchaintest"
)

func TestCommandCompiler_SubstitutesPlaceholders(t *testing.T) {
	root := t.TempDir()
	outRoot := filepath.Join(root, "dist")
	out := osfs.New(outRoot)

	fake := toolchaintest.NewFakeRunner().On("babel", func(_ context.Context, cmd toolchain.Command) (*toolchain.Result, error) {
		// Emulate babel writing <outdir>/<stem>.js.
		return &toolchain.Result{}, util.WriteFile(out, "js/auth.js", []byte("compiled"), 0o644)
	})

	c := NewCommandCompiler(fake, config.ToolCommand{
		Program: "babel",
		Args:    []string{"{source}", "--out-dir", "{outdir}"},
	}, root, outRoot, out)

	produced, err := c.Compile(context.Background(), "src/auth.ts", "js")
	require.NoError(t, err)
	assert.Equal(t, "js/auth.js", produced)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{filepath.Join(root, "src/auth.ts"), "--out-dir", filepath.Join(outRoot, "js")}, calls[0].Args)
	assert.Equal(t, root, calls[0].Dir)
}

func TestCommandCompiler_ToolFailure(t *testing.T) {
	root := t.TempDir()
	out := osfs.New(filepath.Join(root, "dist"))
	fake := toolchaintest.NewFakeRunner().Fail("babel")

	_, err := NewCommandCompiler(fake, config.ToolCommand{Program: "babel"}, root, filepath.Join(root, "dist"), out).
		Compile(context.Background(), "src/auth.ts", "js")
	require.ErrorIs(t, err, ErrCompile)
	require.ErrorIs(t, err, toolchain.ErrToolFailed)
}

func TestCommandCompiler_MissingOutput(t *testing.T) {
	root := t.TempDir()
	out := osfs.New(filepath.Join(root, "dist"))

	_, err := NewCommandCompiler(toolchaintest.NewFakeRunner(), config.ToolCommand{Program: "babel"}, root, filepath.Join(root, "dist"), out).
		Compile(context.Background(), "src/auth.ts", "js")
	require.ErrorIs(t, err, ErrCompile)
}

func TestNewCompiler_Selection(t *testing.T) {
	cfg := config.Default()
	assert.IsType(t, &EsbuildCompiler{}, NewCompiler(cfg, nil, nil, nil))
	cfg.Tools.LegacyCompiler = config.LegacyCompilerCommand
	assert.IsType(t, &CommandCompiler{}, NewCompiler(cfg, toolchaintest.NewFakeRunner(), nil, nil))
}
