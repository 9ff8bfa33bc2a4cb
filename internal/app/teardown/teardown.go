// Package teardown destroys the infrastructure provisioned by a previous
// deployment.
package teardown

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/liftoff-sh/liftoff/internal/log"
)

// Destroyer tears down provisioned infrastructure.
type Destroyer interface {
	Destroy(ctx context.Context, out io.Writer) error
}

// ServiceConfig is the configuration for the teardown service.
type ServiceConfig struct {
	// Dir is where the provisioned configuration lives. No directory means
	// there is nothing to destroy.
	Dir       string
	Destroyer Destroyer
	Out       io.Writer
	Logger    log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Dir == "" {
		return fmt.Errorf("terraform dir is required")
	}
	if c.Destroyer == nil {
		return fmt.Errorf("destroyer is required")
	}
	if c.Out == nil {
		return fmt.Errorf("output writer is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Teardown"})
	return nil
}

// Service handles infrastructure teardown.
type Service struct {
	dir       string
	destroyer Destroyer
	out       io.Writer
	logger    log.Logger
}

// NewService creates a new teardown service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		dir:       cfg.Dir,
		destroyer: cfg.Destroyer,
		out:       cfg.Out,
		logger:    cfg.Logger,
	}, nil
}

// Destroy tears down the provisioned infrastructure. When nothing has been
// provisioned it reports so and succeeds without touching the cloud.
func (s *Service) Destroy(ctx context.Context) error {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		fmt.Fprintln(s.out, "No provisioned infrastructure found, nothing to destroy.")
		return nil
	} else if err != nil {
		return fmt.Errorf("could not check terraform dir: %w", err)
	}

	s.logger.Infof("Destroying infrastructure in %s", s.dir)
	fmt.Fprintln(s.out, "Destroying cloud resources...")
	if err := s.destroyer.Destroy(ctx, s.out); err != nil {
		return fmt.Errorf("could not destroy infrastructure: %w", err)
	}

	fmt.Fprintln(s.out, "All cloud resources destroyed.")
	return nil
}
