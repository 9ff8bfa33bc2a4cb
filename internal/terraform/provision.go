package terraform

import (
	"context"
	"fmt"
	"io"
)

// Provision regenerates the configuration and applies it end to end:
// clean stale state, generate, init, validate, plan, apply, read outputs.
func (c *CLI) Provision(ctx context.Context, opts GenerateOptions, out io.Writer) (*Outputs, error) {
	if opts.Dir == "" {
		opts.Dir = c.dir
	}

	// Stale local state from a previous run would collide with the freshly
	// suffixed resource names.
	if err := c.CleanState(); err != nil {
		return nil, fmt.Errorf("could not clean terraform state: %w", err)
	}

	suffix, err := Generate(opts)
	if err != nil {
		return nil, fmt.Errorf("could not generate terraform configuration: %w", err)
	}
	c.logger.Infof("Generated terraform configuration (suffix %s)", suffix)

	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	c.Validate(ctx)

	if err := c.Plan(ctx); err != nil {
		return nil, err
	}

	if err := c.Apply(ctx, out); err != nil {
		return nil, err
	}

	outputs, err := c.Outputs(ctx)
	if err != nil {
		return nil, err
	}
	if outputs.Suffix == "" {
		outputs.Suffix = suffix
	}

	return outputs, nil
}
