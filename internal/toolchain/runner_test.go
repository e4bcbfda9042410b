package toolchain

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunner_ToolNotFound(t *testing.T) {
	r := &ExecRunner{}
	_, err := r.Run(context.Background(), Command{Program: "pwabuilder-definitely-missing-tool"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrToolNotFound))
}

func TestExecRunner_CapturesAndTees(t *testing.T) {
	requireShell(t)
	var console bytes.Buffer
	r := &ExecRunner{Stdout: &console}

	res, err := r.Run(context.Background(), Command{
		Program: "sh",
		Args:    []string{"-c", "echo $GREETING"},
		Env:     map[string]string{"GREETING": "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", console.String())
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	requireShell(t)
	r := &ExecRunner{}

	res, err := r.Run(context.Background(), Command{Program: "sh", Args: []string{"-c", "echo broken >&2; exit 3"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrToolFailed))
	assert.Contains(t, err.Error(), "broken")
	require.NotNil(t, res)
	assert.Equal(t, 3, res.ExitCode)
}

func TestExecRunner_WorkingDir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	res, err := (&ExecRunner{}).Run(context.Background(), Command{Program: "sh", Args: []string{"-c", "pwd"}, Dir: dir})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(res.Stdout), strings.TrimPrefix(dir, "/private")))
}

func TestLastLines(t *testing.T) {
	assert.Equal(t, "a\nb", lastLines("a\nb", 5))
	assert.Equal(t, "...\nc\nd", lastLines("a\nb\nc\nd", 2))
}
