package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureJSON(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestContextValuesAccumulate(t *testing.T) {
	ctx := WithBuildID(context.Background(), "b-1")
	ctx = WithRelease(ctx, "v1.4.0")
	ctx = WithStage(ctx, "copy_assets")

	lc := GetContext(ctx)
	assert.Equal(t, LogContext{BuildID: "b-1", Release: "v1.4.0", Stage: "copy_assets"}, lc)

	assert.Equal(t, LogContext{}, GetContext(context.Background()))
}

func TestWarnContextAddsFields(t *testing.T) {
	buf := captureJSON(t)
	ctx := WithStage(WithBuildID(context.Background(), "b-2"), "prune_duplicates")

	WarnContext(ctx, "Stage completed with warnings", slog.Int("count", 2))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "b-2", rec["build_id"])
	assert.Equal(t, "prune_duplicates", rec["stage"])
	assert.InDelta(t, 2, rec["count"], 0)
	assert.NotContains(t, rec, "release")
}

func TestLevels(t *testing.T) {
	buf := captureJSON(t)
	ctx := context.Background()
	DebugContext(ctx, "d")
	InfoContext(ctx, "i")
	ErrorContext(ctx, "e")
	assert.Equal(t, 3, bytes.Count(buf.Bytes(), []byte("\n")))
}
