// Package ops models named operations with declared dependencies and runs
// them in dependency order, failing fast on the first error.
package ops

import (
	"context"
	"fmt"

	"github.com/liftoff-sh/liftoff/internal/log"
	"github.com/liftoff-sh/liftoff/internal/model"
)

// Operation is a named, invokable unit with ordered dependencies.
type Operation struct {
	Name string
	// Needs lists operations that must complete successfully first, in order.
	Needs []string
	Run   func(ctx context.Context) error
}

// RunnerConfig is the configuration for the operation runner.
type RunnerConfig struct {
	Operations []Operation
	Logger     log.Logger
}

func (c *RunnerConfig) defaults() error {
	if len(c.Operations) == 0 {
		return fmt.Errorf("at least one operation is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "ops.Runner"})
	return nil
}

// Runner executes operations resolving their declared dependencies first.
// Each operation runs at most once per Run call.
type Runner struct {
	ops    map[string]Operation
	logger log.Logger
}

// NewRunner creates a new operation runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ops := make(map[string]Operation, len(cfg.Operations))
	for _, op := range cfg.Operations {
		if op.Name == "" {
			return nil, fmt.Errorf("operation name is required: %w", model.ErrNotValid)
		}
		if op.Run == nil {
			return nil, fmt.Errorf("operation %q run func is required: %w", op.Name, model.ErrNotValid)
		}
		if _, ok := ops[op.Name]; ok {
			return nil, fmt.Errorf("operation %q: %w", op.Name, model.ErrAlreadyExists)
		}
		ops[op.Name] = op
	}

	// Validate the dependency graph up front.
	for _, op := range ops {
		for _, dep := range op.Needs {
			if _, ok := ops[dep]; !ok {
				return nil, fmt.Errorf("operation %q depends on unknown operation %q: %w", op.Name, dep, model.ErrNotFound)
			}
		}
	}

	return &Runner{ops: ops, logger: cfg.Logger}, nil
}

// Run executes the named operation, running its dependency chain to
// completion first. Any failure aborts the remaining operations.
func (r *Runner) Run(ctx context.Context, name string) error {
	done := map[string]bool{}
	visiting := map[string]bool{}
	return r.run(ctx, name, done, visiting)
}

func (r *Runner) run(ctx context.Context, name string, done, visiting map[string]bool) error {
	if done[name] {
		return nil
	}
	if visiting[name] {
		return fmt.Errorf("operation dependency cycle at %q: %w", name, model.ErrNotValid)
	}

	op, ok := r.ops[name]
	if !ok {
		return fmt.Errorf("operation %q: %w", name, model.ErrNotFound)
	}

	visiting[name] = true
	defer delete(visiting, name)

	for _, dep := range op.Needs {
		if err := r.run(ctx, dep, done, visiting); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	r.logger.Debugf("Running operation %q", name)
	if err := op.Run(ctx); err != nil {
		return fmt.Errorf("operation %q failed: %w", name, err)
	}

	done[name] = true
	return nil
}
