package models

import (
	"context"
	"fmt"
)

// Stage is a discrete unit of work in the asset build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names in execution order.
const (
	StageCompileStyles     StageName = "compile_styles"
	StageBundleModules     StageName = "bundle_modules"
	StageCompileLegacy     StageName = "compile_legacy"
	StageCopyAssets        StageName = "copy_assets"
	StagePromoteEntry      StageName = "promote_entry"
	StageRewriteReferences StageName = "rewrite_references"
	StagePruneDuplicates   StageName = "prune_duplicates"
)

// StageErrorKind classifies the outcome of a stage.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying the stage and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// NewFatalStageError creates a new fatal stage error.
func NewFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func NewWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func NewCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// StageResult captures the high-level outcome of a stage.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

// Policy decides what a stage failure means for the build.
type Policy string

const (
	// PolicyFatal aborts the build when the stage fails.
	PolicyFatal Policy = "fatal"
	// PolicyBestEffort downgrades any stage failure to a warning and continues.
	PolicyBestEffort Policy = "best_effort"
)

// StageDef pairs a stage name with its executing function and failure policy.
type StageDef struct {
	Name   StageName
	Fn     Stage
	Policy Policy
}

// Pipeline is a fluent builder for ordered stage definitions.
type Pipeline struct{ Defs []StageDef }

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline { return &Pipeline{Defs: make([]StageDef, 0, 8)} }

// Fatal appends a stage whose failure aborts the build.
func (p *Pipeline) Fatal(name StageName, fn Stage) *Pipeline {
	p.Defs = append(p.Defs, StageDef{Name: name, Fn: fn, Policy: PolicyFatal})
	return p
}

// BestEffort appends a stage whose failure is only a warning.
func (p *Pipeline) BestEffort(name StageName, fn Stage) *Pipeline {
	p.Defs = append(p.Defs, StageDef{Name: name, Fn: fn, Policy: PolicyBestEffort})
	return p
}

// Build returns a copy of the stage definitions slice.
func (p *Pipeline) Build() []StageDef {
	out := make([]StageDef, len(p.Defs))
	copy(out, p.Defs)
	return out
}
