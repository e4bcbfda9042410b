// Package eventstore records build events in SQLite and projects them into a build history.
package eventstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

const (
	buildStatusRunning = "running"
	defaultHistorySize = 100
)

// StageSummary is one stage line of a build.
type StageSummary struct {
	Stage    string        `json:"stage"`
	Result   string        `json:"result"`
	Duration time.Duration `json:"duration"`
	Message  string        `json:"message,omitempty"`
}

// BuildSummary is the read model of a single build.
type BuildSummary struct {
	BuildID     string         `json:"build_id"`
	Mode        string         `json:"mode"`
	Release     string         `json:"release"`
	Status      string         `json:"status"` // "running" or the final build outcome
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Duration    time.Duration  `json:"duration,omitempty"`
	Stages      []StageSummary `json:"stages,omitempty"`
	// FailedStage is the stage that aborted the build, if any.
	FailedStage string              `json:"failed_stage,omitempty"`
	Result      *BuildCompletedData `json:"result,omitempty"`
}

// BuildHistoryProjection maintains an in-memory view of build history reconstructed from the
// store, newest build first.
type BuildHistoryProjection struct {
	mu      sync.RWMutex
	store   Store
	builds  map[string]*BuildSummary
	history []*BuildSummary
	maxSize int
}

// NewBuildHistoryProjection creates a projection holding at most maxHistorySize finished builds.
func NewBuildHistoryProjection(store Store, maxHistorySize int) *BuildHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = defaultHistorySize
	}
	return &BuildHistoryProjection{
		store:   store,
		builds:  make(map[string]*BuildSummary),
		maxSize: maxHistorySize,
	}
}

// Rebuild reconstructs the projection from all events in the store.
func (p *BuildHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.builds = make(map[string]*BuildSummary)
	p.history = nil
	for _, event := range events {
		p.applyEventLocked(event)
	}
	sort.SliceStable(p.history, func(i, j int) bool {
		return p.history[i].StartedAt.After(p.history[j].StartedAt)
	})
	p.trimLocked()
	return nil
}

// Apply processes a single event.
func (p *BuildHistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyEventLocked(event)
}

func (p *BuildHistoryProjection) applyEventLocked(event Event) {
	buildID := event.BuildID()
	if buildID == "" {
		return
	}
	summary, ok := p.builds[buildID]
	if !ok {
		summary = &BuildSummary{BuildID: buildID, Status: buildStatusRunning, StartedAt: event.Timestamp()}
		p.builds[buildID] = summary
	}

	switch event.Type() {
	case TypeBuildStarted:
		var data BuildStartedData
		if err := json.Unmarshal(event.Payload(), &data); err == nil {
			summary.Mode = data.Mode
			summary.Release = data.Release
		}
		summary.StartedAt = event.Timestamp()

	case TypeStageCompleted:
		var data StageCompletedData
		if err := json.Unmarshal(event.Payload(), &data); err != nil {
			return
		}
		summary.Stages = append(summary.Stages, StageSummary{
			Stage:    data.Stage,
			Result:   data.Result,
			Duration: time.Duration(data.DurationMS) * time.Millisecond,
			Message:  data.Message,
		})
		if data.Result == "fatal" || data.Result == "canceled" {
			summary.FailedStage = data.Stage
		}

	case TypeBuildCompleted:
		var data BuildCompletedData
		if err := json.Unmarshal(event.Payload(), &data); err != nil {
			return
		}
		done := event.Timestamp()
		summary.CompletedAt = &done
		summary.Duration = time.Duration(data.DurationMS) * time.Millisecond
		summary.Status = data.Outcome
		summary.Result = &data
		p.addToHistoryLocked(summary)
	}
}

func (p *BuildHistoryProjection) addToHistoryLocked(summary *BuildSummary) {
	for _, h := range p.history {
		if h.BuildID == summary.BuildID {
			return
		}
	}
	p.history = append([]*BuildSummary{summary}, p.history...)
	p.trimLocked()
}

// trimLocked bounds history and drops finished builds that fell out of it.
func (p *BuildHistoryProjection) trimLocked() {
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	keep := make(map[string]struct{}, len(p.history))
	for _, h := range p.history {
		keep[h.BuildID] = struct{}{}
	}
	for id, s := range p.builds {
		if s.Status == buildStatusRunning {
			continue
		}
		if _, ok := keep[id]; !ok {
			delete(p.builds, id)
		}
	}
}

// History returns up to limit finished builds, newest first. A limit <= 0 returns all.
func (p *BuildHistoryProjection) History(limit int) []BuildSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	n := len(p.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]BuildSummary, n)
	for i := range n {
		out[i] = *p.history[i]
	}
	return out
}

// GetBuild returns a copy of the summary of buildID.
func (p *BuildHistoryProjection) GetBuild(buildID string) (BuildSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.builds[buildID]
	if !ok {
		return BuildSummary{}, false
	}
	return *s, true
}
