package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/pwabuilder/internal/foundation/errors"
)

// Event type names.
const (
	TypeBuildStarted   = "BuildStarted"
	TypeStageCompleted = "StageCompleted"
	TypeBuildCompleted = "BuildCompleted"
)

// BuildStartedData describes how a build was invoked.
type BuildStartedData struct {
	Mode    string `json:"mode"`
	Release string `json:"release"`
	Version string `json:"pwabuilder_version"`
}

// StageCompletedData is the result of one stage.
type StageCompletedData struct {
	Stage      string `json:"stage"`
	Result     string `json:"result"`
	DurationMS int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// BuildCompletedData holds the final outcome and the headline counters of a build.
type BuildCompletedData struct {
	Outcome             string            `json:"outcome"`
	DurationMS          int64             `json:"duration_ms"`
	LegacyCompiled      int               `json:"legacy_compiled"`
	LegacyFallbacks     int               `json:"legacy_fallbacks"`
	FilesCopied         int               `json:"files_copied"`
	ReferencesRewritten int               `json:"references_rewritten"`
	DuplicatesPruned    int               `json:"duplicates_pruned"`
	Warnings            []string          `json:"warnings,omitempty"`
	Errors              []string          `json:"errors,omitempty"`
	Artifacts           map[string]string `json:"artifacts,omitempty"`
}

func newEvent(buildID, eventType string, data any) (*BaseEvent, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, errors.EventStoreError("failed to marshal "+eventType+" payload").
			WithCause(err).
			WithContext("build_id", buildID).
			Build()
	}
	return &BaseEvent{
		EventBuildID:   buildID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   payload,
	}, nil
}

// NewBuildStarted creates a BuildStarted event.
func NewBuildStarted(buildID string, data BuildStartedData) (*BaseEvent, error) {
	return newEvent(buildID, TypeBuildStarted, data)
}

// NewStageCompleted creates a StageCompleted event.
func NewStageCompleted(buildID string, stage, result string, duration time.Duration, message string) (*BaseEvent, error) {
	return newEvent(buildID, TypeStageCompleted, StageCompletedData{
		Stage:      stage,
		Result:     result,
		DurationMS: duration.Milliseconds(),
		Message:    message,
	})
}

// NewBuildCompleted creates a BuildCompleted event. It is emitted for every finished build,
// whatever its outcome.
func NewBuildCompleted(buildID string, data BuildCompletedData) (*BaseEvent, error) {
	return newEvent(buildID, TypeBuildCompleted, data)
}
