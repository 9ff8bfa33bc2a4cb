// Package history exposes past deployment records.
package history

import (
	"context"
	"fmt"

	"github.com/liftoff-sh/liftoff/internal/log"
	"github.com/liftoff-sh/liftoff/internal/model"
	"github.com/liftoff-sh/liftoff/internal/storage"
)

// ServiceConfig is the configuration for the history service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.History"})
	return nil
}

// Service handles deployment history queries.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new history service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{repo: cfg.Repository, logger: cfg.Logger}, nil
}

// ListDeployments returns the recorded deployments, newest first.
func (s *Service) ListDeployments(ctx context.Context) ([]model.Deployment, error) {
	ds, err := s.repo.ListDeployments(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list deployments: %w", err)
	}

	s.logger.Debugf("Listed %d deployments", len(ds))
	return ds, nil
}

// GetDeployment returns a single deployment by ID.
func (s *Service) GetDeployment(ctx context.Context, id string) (*model.Deployment, error) {
	if id == "" {
		return nil, fmt.Errorf("id is required: %w", model.ErrNotValid)
	}

	d, err := s.repo.GetDeployment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get deployment: %w", err)
	}

	return d, nil
}

// SimilarDeployments returns past deployments with the given plan fingerprint,
// used for experience-based cost estimates.
func (s *Service) SimilarDeployments(ctx context.Context, fingerprint string) ([]model.Deployment, error) {
	if fingerprint == "" {
		return nil, fmt.Errorf("fingerprint is required: %w", model.ErrNotValid)
	}

	ds, err := s.repo.ListByFingerprint(ctx, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("could not list deployments: %w", err)
	}

	return ds, nil
}
