package models

import (
	"github.com/go-git/go-billy/v5"

	"git.home.luguber.info/inful/pwabuilder/internal/artifacts"
	"git.home.luguber.info/inful/pwabuilder/internal/config"
	"git.home.luguber.info/inful/pwabuilder/internal/metrics"
	"git.home.luguber.info/inful/pwabuilder/internal/toolchain"
)

// BuildState carries the collaborators and intermediate results shared by the stages of one
// build.
type BuildState struct {
	Config *config.Config
	// Source is rooted at the project directory, Output at the output directory.
	Source billy.Filesystem
	Output billy.Filesystem

	Runner   toolchain.Runner
	Invoker  *toolchain.Invoker
	Recorder metrics.Recorder

	// Artifacts is set by the bundle stage once the bundler has exited.
	Artifacts *artifacts.Index

	Report *BuildReport
}

// NewBuildState wires a build state. A nil recorder is replaced by metrics.NoopRecorder.
func NewBuildState(cfg *config.Config, src, out billy.Filesystem, runner toolchain.Runner, recorder metrics.Recorder, report *BuildReport) *BuildState {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &BuildState{
		Config:   cfg,
		Source:   src,
		Output:   out,
		Runner:   runner,
		Invoker:  toolchain.NewInvoker(runner, cfg, report.Release),
		Recorder: recorder,
		Report:   report,
	}
}
