// Package storagemock has mocks for the storage repositories.
package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/liftoff-sh/liftoff/internal/model"
)

// MockRepository is a mock implementation of storage.Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateDeployment(ctx context.Context, deployment model.Deployment) error {
	args := m.Called(ctx, deployment)
	return args.Error(0)
}

func (m *MockRepository) GetDeployment(ctx context.Context, id string) (*model.Deployment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Deployment), args.Error(1)
}

func (m *MockRepository) ListDeployments(ctx context.Context) ([]model.Deployment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Deployment), args.Error(1)
}

func (m *MockRepository) ListByFingerprint(ctx context.Context, fingerprint string) ([]model.Deployment, error) {
	args := m.Called(ctx, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Deployment), args.Error(1)
}
