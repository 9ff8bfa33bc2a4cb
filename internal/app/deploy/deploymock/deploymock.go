// Package deploymock has mocks for the deploy service collaborators.
package deploymock

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/liftoff-sh/liftoff/internal/gcloud"
	"github.com/liftoff-sh/liftoff/internal/model"
	"github.com/liftoff-sh/liftoff/internal/terraform"
)

// MockInspector is a mock implementation of deploy.Inspector.
type MockInspector struct {
	mock.Mock
}

func (m *MockInspector) CloneOrUpdate(ctx context.Context, repoURL string) (string, error) {
	args := m.Called(ctx, repoURL)
	return args.String(0), args.Error(1)
}

func (m *MockInspector) Detect(repoPath string) (*model.TechStack, error) {
	args := m.Called(repoPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TechStack), args.Error(1)
}

// MockPlanner is a mock implementation of deploy.Planner.
type MockPlanner struct {
	mock.Mock
}

func (m *MockPlanner) Build(cfg model.DeployConfig, stack model.TechStack) (*model.Plan, error) {
	args := m.Called(cfg, stack)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plan), args.Error(1)
}

// MockProvisioner is a mock implementation of deploy.Provisioner.
type MockProvisioner struct {
	mock.Mock
}

func (m *MockProvisioner) Provision(ctx context.Context, opts terraform.GenerateOptions, out io.Writer) (*terraform.Outputs, error) {
	args := m.Called(ctx, opts, out)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*terraform.Outputs), args.Error(1)
}

// MockCloud is a mock implementation of deploy.Cloud.
type MockCloud struct {
	mock.Mock
}

func (m *MockCloud) EnableServices(ctx context.Context, projectID string, services []string) error {
	args := m.Called(ctx, projectID, services)
	return args.Error(0)
}

func (m *MockCloud) BuildSubmit(ctx context.Context, projectID, tag, sourceDir string, out io.Writer) error {
	args := m.Called(ctx, projectID, tag, sourceDir, out)
	return args.Error(0)
}

func (m *MockCloud) RunDeploy(ctx context.Context, opts gcloud.RunDeployOptions, out io.Writer) error {
	args := m.Called(ctx, opts, out)
	return args.Error(0)
}

func (m *MockCloud) ServiceURL(ctx context.Context, serviceName, projectID, region string) (string, error) {
	args := m.Called(ctx, serviceName, projectID, region)
	return args.String(0), args.Error(1)
}
