// Package preflight verifies the external prerequisites a deployment needs:
// the CLI tools liftoff shells out to and a reachable Docker daemon.
package preflight

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/docker/docker/client"

	"github.com/liftoff-sh/liftoff/internal/log"
	"github.com/liftoff-sh/liftoff/internal/model"
)

// RequiredBinaries are the external CLI tools liftoff invokes.
var RequiredBinaries = []string{"gcloud", "terraform", "git"}

// CheckerConfig is the configuration for the checker.
type CheckerConfig struct {
	// LookPath resolves a binary in PATH. Defaults to exec.LookPath.
	LookPath func(name string) (string, error)
	// DockerPing checks the Docker daemon. Defaults to a real client ping.
	DockerPing func(ctx context.Context) error
	Logger     log.Logger
}

func (c *CheckerConfig) defaults() error {
	if c.LookPath == nil {
		c.LookPath = exec.LookPath
	}
	if c.DockerPing == nil {
		c.DockerPing = dockerPing
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "preflight.Checker"})
	return nil
}

// Checker runs preflight checks.
type Checker struct {
	lookPath   func(name string) (string, error)
	dockerPing func(ctx context.Context) error
	logger     log.Logger
}

// NewChecker creates a new checker.
func NewChecker(cfg CheckerConfig) (*Checker, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Checker{
		lookPath:   cfg.LookPath,
		dockerPing: cfg.DockerPing,
		logger:     cfg.Logger,
	}, nil
}

// Check runs all preflight checks and returns their results.
func (c *Checker) Check(ctx context.Context) []model.CheckResult {
	var results []model.CheckResult

	for _, bin := range RequiredBinaries {
		path, err := c.lookPath(bin)
		if err != nil {
			results = append(results, model.CheckResult{
				ID:      bin,
				Status:  model.CheckStatusError,
				Message: fmt.Sprintf("%s not found in PATH", bin),
			})
			continue
		}
		results = append(results, model.CheckResult{
			ID:      bin,
			Status:  model.CheckStatusOK,
			Message: path,
		})
	}

	// Docker is only needed for local image work; the remote Cloud Build path
	// works without it, so a missing daemon is a warning rather than an error.
	if err := c.dockerPing(ctx); err != nil {
		results = append(results, model.CheckResult{
			ID:      "docker",
			Status:  model.CheckStatusWarning,
			Message: fmt.Sprintf("Docker daemon not reachable: %s", err),
		})
	} else {
		results = append(results, model.CheckResult{
			ID:      "docker",
			Status:  model.CheckStatusOK,
			Message: "Docker daemon reachable",
		})
	}

	return results
}

// Failed reports whether any check result is an error.
func Failed(results []model.CheckResult) bool {
	for _, r := range results {
		if r.Status == model.CheckStatusError {
			return true
		}
	}
	return false
}

func dockerPing(ctx context.Context) error {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return fmt.Errorf("could not create docker client: %w", err)
	}
	defer cli.Close()

	if _, err := cli.Ping(ctx); err != nil {
		return fmt.Errorf("could not ping docker daemon: %w", err)
	}
	return nil
}
