// Package toolchain invokes the external compilers the build depends on: the stylesheet
// compiler and the module bundler (and, optionally, a command-line legacy module compiler).
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"

	"git.home.luguber.info/inful/pwabuilder/internal/logfields"
)

var (
	// ErrToolNotFound indicates the program was not found on PATH.
	ErrToolNotFound = errors.New("tool not found")
	// ErrToolFailed indicates the program exited with a non-zero status.
	ErrToolFailed = errors.New("tool execution failed")
)

// Command is one external program invocation.
type Command struct {
	Program string
	Args    []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env is added to the inherited process environment.
	Env map[string]string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Program + " " + strings.Join(c.Args, " "))
}

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner runs external commands. Tests substitute fakes that never shell out.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs commands with os/exec, blocking until they exit.
type ExecRunner struct {
	// Stdout and Stderr receive a live copy of the tool output. Nil disables the tee.
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner that tees tool output to the operator console.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	path, err := exec.LookPath(c.Program)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrToolNotFound, c.Program, err)
	}

	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), envList(c.Env)...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = tee(&stdout, r.Stdout)
	cmd.Stderr = tee(&stderr, r.Stderr)

	slog.Debug("Running external tool", logfields.Tool(c.Program), slog.String("command", c.String()), logfields.Path(c.Dir))
	runErr := cmd.Run()

	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		return res, nil
	case errors.As(runErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		res.ExitCode = -1
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("%s interrupted: %w", c.Program, ctxErr)
	}

	output := strings.TrimSpace(res.Stderr)
	if output == "" {
		output = strings.TrimSpace(res.Stdout)
	}
	if output != "" {
		return res, fmt.Errorf("%w: %s: %w: %s", ErrToolFailed, c.Program, runErr, lastLines(output, 20))
	}
	return res, fmt.Errorf("%w: %s: %w", ErrToolFailed, c.Program, runErr)
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

func envList(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// lastLines keeps error messages readable when a tool dumps a long log.
func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return "...\n" + strings.Join(lines[len(lines)-n:], "\n")
}
