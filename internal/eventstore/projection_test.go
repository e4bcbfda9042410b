package eventstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendBuild(t *testing.T, store Store, id, outcome string, stages map[string]string) {
	t.Helper()
	ctx := context.Background()
	started, err := NewBuildStarted(id, BuildStartedData{Mode: "production", Release: "v1"})
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, started))
	for _, name := range []string{"compile_styles", "bundle_modules"} {
		result, ok := stages[name]
		if !ok {
			continue
		}
		e, err := NewStageCompleted(id, name, result, 1500*time.Millisecond, "")
		require.NoError(t, err)
		require.NoError(t, store.Append(ctx, e))
	}
	done, err := NewBuildCompleted(id, BuildCompletedData{Outcome: outcome, DurationMS: 3000, FilesCopied: 12})
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, done))
}

func TestProjection_RebuildOrdersNewestFirst(t *testing.T) {
	store := newMemoryStore(t)
	appendBuild(t, store, "b1", "success", map[string]string{"compile_styles": "success", "bundle_modules": "success"})
	time.Sleep(5 * time.Millisecond)
	appendBuild(t, store, "b2", "failed", map[string]string{"compile_styles": "fatal"})

	p := NewBuildHistoryProjection(store, 10)
	require.NoError(t, p.Rebuild(t.Context()))

	history := p.History(0)
	require.Len(t, history, 2)
	assert.Equal(t, "b2", history[0].BuildID)
	assert.Equal(t, "failed", history[0].Status)
	assert.Equal(t, "compile_styles", history[0].FailedStage)
	assert.Equal(t, "b1", history[1].BuildID)
	assert.Len(t, history[1].Stages, 2)
	assert.Equal(t, 3*time.Second, history[1].Duration)
	require.NotNil(t, history[1].Result)
	assert.Equal(t, 12, history[1].Result.FilesCopied)

	assert.Len(t, p.History(1), 1)
}

func TestProjection_BoundsHistory(t *testing.T) {
	store := newMemoryStore(t)
	for _, id := range []string{"b1", "b2", "b3"} {
		appendBuild(t, store, id, "success", nil)
		time.Sleep(5 * time.Millisecond)
	}
	p := NewBuildHistoryProjection(store, 2)
	require.NoError(t, p.Rebuild(t.Context()))

	history := p.History(0)
	require.Len(t, history, 2)
	assert.Equal(t, "b3", history[0].BuildID)
	_, ok := p.GetBuild("b1")
	assert.False(t, ok, "builds outside the bounded history are dropped")
}

func TestProjection_ApplyTracksRunningBuild(t *testing.T) {
	p := NewBuildHistoryProjection(newMemoryStore(t), 0)
	started, err := NewBuildStarted("live", BuildStartedData{Mode: "development"})
	require.NoError(t, err)
	p.Apply(started)

	s, ok := p.GetBuild("live")
	require.True(t, ok)
	assert.Equal(t, "running", s.Status)
	assert.Equal(t, "development", s.Mode)
	assert.Empty(t, p.History(0))
}
