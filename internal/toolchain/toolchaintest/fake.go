// Package toolchaintest provides a recording toolchain.Runner for tests.
package toolchaintest

import (
	"context"
	"fmt"
	"sync"

	"git.home.luguber.info/inful/pwabuilder/internal/toolchain"
)

// Handler simulates one program. It may write files to emulate tool output.
type Handler func(ctx context.Context, cmd toolchain.Command) (*toolchain.Result, error)

// FakeRunner dispatches commands to per-program handlers and records every call.
// Programs without a handler succeed with empty output.
type FakeRunner struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []toolchain.Command
}

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{handlers: map[string]Handler{}}
}

// On registers the handler for program.
func (f *FakeRunner) On(program string, h Handler) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[program] = h
	return f
}

// Fail makes program exit non-zero.
func (f *FakeRunner) Fail(program string) *FakeRunner {
	return f.On(program, func(context.Context, toolchain.Command) (*toolchain.Result, error) {
		return &toolchain.Result{Stderr: "boom", ExitCode: 1},
			fmt.Errorf("%w: %s: exit status 1: boom", toolchain.ErrToolFailed, program)
	})
}

func (f *FakeRunner) Run(ctx context.Context, cmd toolchain.Command) (*toolchain.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	h := f.handlers[cmd.Program]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if h == nil {
		return &toolchain.Result{}, nil
	}
	return h(ctx, cmd)
}

// Calls returns a copy of the recorded commands in call order.
func (f *FakeRunner) Calls() []toolchain.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]toolchain.Command(nil), f.calls...)
}

// Called reports whether program was invoked at least once.
func (f *FakeRunner) Called(program string) bool {
	for _, c := range f.Calls() {
		if c.Program == program {
			return true
		}
	}
	return false
}
