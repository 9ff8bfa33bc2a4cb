package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/liftoff-sh/liftoff/internal/log"
	"github.com/liftoff-sh/liftoff/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	deployments map[string]model.Deployment
	mu          sync.RWMutex
	logger      log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		deployments: make(map[string]model.Deployment),
		logger:      cfg.Logger,
	}, nil
}

// CreateDeployment stores a deployment record.
func (r *Repository) CreateDeployment(ctx context.Context, d model.Deployment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.deployments[d.ID]; ok {
		return fmt.Errorf("deployment with id %s: %w", d.ID, model.ErrAlreadyExists)
	}

	r.deployments[d.ID] = d
	r.logger.Debugf("Recorded deployment %s", d.ID)

	return nil
}

// GetDeployment retrieves a deployment by ID.
func (r *Repository) GetDeployment(ctx context.Context, id string) (*model.Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.deployments[id]
	if !ok {
		return nil, fmt.Errorf("deployment %s: %w", id, model.ErrNotFound)
	}

	// Return a copy.
	dCopy := d
	return &dCopy, nil
}

// ListDeployments returns all deployments, most recent first.
func (r *Repository) ListDeployments(ctx context.Context) ([]model.Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	deployments := make([]model.Deployment, 0, len(r.deployments))
	for _, d := range r.deployments {
		deployments = append(deployments, d)
	}

	sort.Slice(deployments, func(i, j int) bool {
		return deployments[i].CreatedAt.After(deployments[j].CreatedAt)
	})

	return deployments, nil
}

// ListByFingerprint returns deployments with a matching plan fingerprint,
// most recent first.
func (r *Repository) ListByFingerprint(ctx context.Context, fingerprint string) ([]model.Deployment, error) {
	all, err := r.ListDeployments(ctx)
	if err != nil {
		return nil, err
	}

	var matched []model.Deployment
	for _, d := range all {
		if d.Fingerprint == fingerprint {
			matched = append(matched, d)
		}
	}

	return matched, nil
}
