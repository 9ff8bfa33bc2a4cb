package storage

import (
	"context"

	"github.com/liftoff-sh/liftoff/internal/model"
)

// Repository is the interface for deployment history persistence.
type Repository interface {
	CreateDeployment(ctx context.Context, d model.Deployment) error
	GetDeployment(ctx context.Context, id string) (*model.Deployment, error)
	ListDeployments(ctx context.Context) ([]model.Deployment, error)
	ListByFingerprint(ctx context.Context, fingerprint string) ([]model.Deployment, error)
}
