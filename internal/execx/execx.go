// Package execx abstracts external process execution so commands built on
// gcloud, terraform and git can be exercised in tests without real binaries.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/liftoff-sh/liftoff/internal/log"
)

// Command describes a single external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string

	// Stdin, when set, is wired to the process standard input (interactive
	// tools like `gcloud auth login`).
	Stdin io.Reader
	// Stdout and Stderr, when set, receive the process output streams as they
	// are produced. When nil the output is captured on the Result instead.
	Stdout io.Writer
	Stderr io.Writer
}

// Result holds the outcome of an executed command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExitError is returned when a command runs but exits non-zero. The exit code
// is propagated untranslated so callers can surface it as their own.
type ExitError struct {
	Cmd      string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with code %d: %s", e.Cmd, e.ExitCode, strings.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("%s exited with code %d", e.Cmd, e.ExitCode)
}

// ExitCode extracts the process exit code from an error chain. Returns 1 for
// errors that carry no code (e.g. binary missing).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode
	}
	return 1
}

// OSRunnerConfig is the configuration for the OS runner.
type OSRunnerConfig struct {
	Logger log.Logger
}

func (c *OSRunnerConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "execx.OSRunner"})
	return nil
}

// OSRunner is a Runner backed by os/exec.
type OSRunner struct {
	logger log.Logger
}

// NewOSRunner creates a new OS runner.
func NewOSRunner(cfg OSRunnerConfig) (*OSRunner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &OSRunner{logger: cfg.Logger}, nil
}

// Run executes a command and waits for it to finish.
func (r *OSRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	r.logger.Debugf("Running command: %s %s", cmd.Name, strings.Join(cmd.Args, " "))

	execCmd := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	execCmd.Dir = cmd.Dir
	execCmd.Env = cmd.Env
	execCmd.Stdin = cmd.Stdin

	var stdout, stderr bytes.Buffer
	if cmd.Stdout != nil {
		execCmd.Stdout = cmd.Stdout
	} else {
		execCmd.Stdout = &stdout
	}
	if cmd.Stderr != nil {
		execCmd.Stderr = cmd.Stderr
	} else {
		execCmd.Stderr = &stderr
	}

	err := execCmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, &ExitError{Cmd: cmd.Name, ExitCode: result.ExitCode, Stderr: result.Stderr}
		}
		result.ExitCode = 1
		return result, fmt.Errorf("could not run %s: %w", cmd.Name, err)
	}

	return result, nil
}
