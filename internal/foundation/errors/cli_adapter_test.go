package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "config error", err: ConfigError("bad config").Build(), expected: 1},
		{name: "toolchain error", err: ToolchainError("sass exited 1").Fatal().Build(), expected: 1},
		{name: "unclassified error", err: errors.New("boom"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := WrapError(cause, CategoryToolchain, "stylesheet compiler failed").Fatal().Build()

	quiet := NewCLIErrorAdapter(false, nil)
	assert.Equal(t, "Error: stylesheet compiler failed: exit status 1", quiet.FormatError(err))

	verbose := NewCLIErrorAdapter(true, nil)
	msg := verbose.FormatError(err)
	assert.True(t, strings.HasPrefix(msg, "Error: [toolchain:fatal]"), msg)

	assert.Equal(t, "Error: plain", quiet.FormatError(errors.New("plain")))
	assert.Empty(t, quiet.FormatError(nil))
}

func TestCLIErrorAdapter_LogsCategory(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&buf, nil)))

	adapter.logError(errors.New("boom"))
	assert.Contains(t, buf.String(), "category=internal")

	buf.Reset()
	adapter.logError(ToolchainError("bundler failed").Fatal().WithContext("stage", "bundle_modules").Build())
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "category=toolchain")
	assert.Contains(t, buf.String(), "stage=bundle_modules")
}
