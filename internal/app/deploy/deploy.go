// Package deploy implements the full deployment flow: inspect the target
// repository, build a plan, provision infrastructure and roll out each
// service to Cloud Run.
package deploy

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/liftoff-sh/liftoff/internal/gcloud"
	"github.com/liftoff-sh/liftoff/internal/log"
	"github.com/liftoff-sh/liftoff/internal/model"
	"github.com/liftoff-sh/liftoff/internal/plan"
	"github.com/liftoff-sh/liftoff/internal/prompt"
	"github.com/liftoff-sh/liftoff/internal/storage"
	"github.com/liftoff-sh/liftoff/internal/terraform"
)

// ErrCancelled is returned when the invoker declines the deployment plan.
var ErrCancelled = errors.New("deployment cancelled")

// Inspector clones and inspects the target repository.
type Inspector interface {
	CloneOrUpdate(ctx context.Context, repoURL string) (string, error)
	Detect(repoPath string) (*model.TechStack, error)
}

// Planner builds the deployment plan.
type Planner interface {
	Build(cfg model.DeployConfig, stack model.TechStack) (*model.Plan, error)
}

// Provisioner provisions the plan's infrastructure.
type Provisioner interface {
	Provision(ctx context.Context, opts terraform.GenerateOptions, out io.Writer) (*terraform.Outputs, error)
}

// Cloud rolls out container images as Cloud Run services.
type Cloud interface {
	EnableServices(ctx context.Context, projectID string, services []string) error
	BuildSubmit(ctx context.Context, projectID, tag, sourceDir string, out io.Writer) error
	RunDeploy(ctx context.Context, opts gcloud.RunDeployOptions, out io.Writer) error
	ServiceURL(ctx context.Context, serviceName, projectID, region string) (string, error)
}

// ServiceConfig is the configuration for the deploy service.
type ServiceConfig struct {
	Inspector   Inspector
	Planner     Planner
	Provisioner Provisioner
	Cloud       Cloud
	Repository  storage.Repository
	Prompter    prompt.Prompter
	Out         io.Writer
	Logger      log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Inspector == nil {
		return fmt.Errorf("inspector is required")
	}
	if c.Planner == nil {
		return fmt.Errorf("planner is required")
	}
	if c.Provisioner == nil {
		return fmt.Errorf("provisioner is required")
	}
	if c.Cloud == nil {
		return fmt.Errorf("cloud is required")
	}
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Prompter == nil {
		return fmt.Errorf("prompter is required")
	}
	if c.Out == nil {
		return fmt.Errorf("output writer is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Deploy"})
	return nil
}

// Service handles the deployment business logic.
type Service struct {
	inspector   Inspector
	planner     Planner
	provisioner Provisioner
	cloud       Cloud
	repo        storage.Repository
	prompter    prompt.Prompter
	out         io.Writer
	logger      log.Logger
}

// NewService creates a new deploy service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		inspector:   cfg.Inspector,
		planner:     cfg.Planner,
		provisioner: cfg.Provisioner,
		cloud:       cfg.Cloud,
		repo:        cfg.Repository,
		prompter:    cfg.Prompter,
		out:         cfg.Out,
		logger:      cfg.Logger,
	}, nil
}

// RunOptions are the options for a deployment run.
type RunOptions struct {
	Config model.DeployConfig
	// AutoApprove skips the plan confirmation.
	AutoApprove bool
}

// Run executes the deployment flow and returns the recorded deployment.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*model.Deployment, error) {
	cfg, err := s.resolveConfig(opts.Config)
	if err != nil {
		return nil, err
	}

	// Inspect the repository.
	fmt.Fprintf(s.out, "Analyzing %s\n", cfg.RepoURL)
	repoPath, err := s.inspector.CloneOrUpdate(ctx, cfg.RepoURL)
	if err != nil {
		return nil, fmt.Errorf("could not fetch repository: %w", err)
	}

	stack, err := s.inspector.Detect(repoPath)
	if err != nil {
		return nil, fmt.Errorf("could not inspect repository: %w", err)
	}
	if !stack.Containerized() {
		return nil, fmt.Errorf("no Dockerfiles found, Cloud Run requires containerized applications: %w", model.ErrNotValid)
	}

	// Build the plan.
	p, err := s.planner.Build(cfg, *stack)
	if err != nil {
		return nil, fmt.Errorf("could not build deployment plan: %w", err)
	}
	cost := plan.EstimateCost(*p)

	s.printSummary(cfg, *p, *stack, cost)

	if !opts.AutoApprove {
		ok, err := s.prompter.Confirm("Proceed with Cloud Run deployment?")
		if err != nil {
			return nil, fmt.Errorf("could not confirm deployment: %w", err)
		}
		if !ok {
			return nil, ErrCancelled
		}
	}

	deployment := &model.Deployment{
		ID:           newID(),
		ProjectName:  cfg.ProjectName,
		RepoURL:      cfg.RepoURL,
		Region:       cfg.Region,
		CostEstimate: cost,
		Fingerprint:  plan.Fingerprint(*p),
		CreatedAt:    time.Now().UTC(),
	}

	// Cloud SQL, Cloud Run and friends all refuse to provision with their
	// APIs disabled, so enable them first.
	fmt.Fprintln(s.out, "Enabling required GCP APIs...")
	if err := s.cloud.EnableServices(ctx, cfg.ProjectID, gcloud.RequiredServices); err != nil {
		return nil, fmt.Errorf("could not enable required APIs: %w", err)
	}

	// Provision the infrastructure.
	fmt.Fprintln(s.out, "Provisioning cloud resources...")
	outputs, err := s.provisioner.Provision(ctx, terraform.GenerateOptions{
		ProjectID:    cfg.ProjectID,
		ProjectName:  cfg.ProjectName,
		Region:       cfg.Region,
		DatabaseTier: p.Database.Tier,
		Plan:         *p,
	}, s.out)
	if err != nil {
		deployment.Status = model.DeploymentStatusFailed
		deployment.Error = err.Error()
		s.record(ctx, deployment)
		return nil, fmt.Errorf("could not provision infrastructure: %w", err)
	}
	deployment.DatabaseConnection = outputs.DatabaseConnection

	// Roll out the services.
	fmt.Fprintln(s.out, "Building and deploying containers...")
	failed := 0
	for _, svc := range p.Services {
		deployed := s.deployService(ctx, cfg, svc, outputs.Suffix)
		if deployed.Status == "failed" {
			failed++
		}
		deployment.Services = append(deployment.Services, deployed)
	}

	switch {
	case failed == 0:
		deployment.Status = model.DeploymentStatusSucceeded
	case failed == len(p.Services):
		deployment.Status = model.DeploymentStatusFailed
		deployment.Error = "all services failed to deploy"
	default:
		deployment.Status = model.DeploymentStatusPartial
	}

	s.record(ctx, deployment)

	if deployment.Status == model.DeploymentStatusFailed {
		return deployment, fmt.Errorf("deployment failed: %s", deployment.Error)
	}

	s.logger.Infof("Deployment %s finished with status %s", deployment.ID, deployment.Status)
	return deployment, nil
}

// resolveConfig fills the missing config values by prompting the invoker.
func (s *Service) resolveConfig(cfg model.DeployConfig) (model.DeployConfig, error) {
	var err error

	if cfg.RepoURL == "" {
		cfg.RepoURL, err = s.prompter.RepoURL()
		if err != nil {
			return cfg, fmt.Errorf("could not obtain repository url: %w", err)
		}
	}
	if cfg.ProjectName == "" {
		cfg.ProjectName, err = s.prompter.ProjectName()
		if err != nil {
			return cfg, fmt.Errorf("could not obtain project name: %w", err)
		}
	}
	if cfg.Region == "" {
		cfg.Region, err = s.prompter.Region("us-central1")
		if err != nil {
			return cfg, fmt.Errorf("could not obtain region: %w", err)
		}
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = cfg.ProjectName
	}
	if cfg.DatabaseTier == "" {
		cfg.DatabaseTier = "db-f1-micro"
	}
	if cfg.MaxInstances <= 0 {
		cfg.MaxInstances = 10
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid deployment config: %w", err)
	}

	return cfg, nil
}

// deployService builds and deploys a single Cloud Run service. Failures are
// reported per service so a broken project doesn't abort its siblings.
func (s *Service) deployService(ctx context.Context, cfg model.DeployConfig, svc model.PlannedService, suffix string) model.DeployedService {
	deployed := model.DeployedService{Name: svc.Name}

	repositoryID := fmt.Sprintf("%s-repo-%s", cfg.ProjectName, suffix)
	image := fmt.Sprintf("%s-docker.pkg.dev/%s/%s/%s:latest", cfg.Region, cfg.ProjectID, repositoryID, svc.Name)
	deployed.Image = image

	fmt.Fprintf(s.out, "Building container for %s...\n", svc.Name)
	if err := s.cloud.BuildSubmit(ctx, cfg.ProjectID, image, svc.SourcePath, s.out); err != nil {
		s.logger.Errorf("Could not build %s: %s", svc.Name, err)
		deployed.Status = "failed"
		deployed.Error = err.Error()
		return deployed
	}

	serviceName := fmt.Sprintf("%s-%s", svc.Name, suffix)
	fmt.Fprintf(s.out, "Deploying %s to Cloud Run...\n", serviceName)
	err := s.cloud.RunDeploy(ctx, gcloud.RunDeployOptions{
		ServiceName:  serviceName,
		Image:        image,
		ProjectID:    cfg.ProjectID,
		Region:       cfg.Region,
		CPU:          svc.CPU,
		Memory:       svc.Memory,
		MaxInstances: svc.MaxInstances,
		MinInstances: svc.MinInstances,
	}, s.out)
	if err != nil {
		s.logger.Errorf("Could not deploy %s: %s", serviceName, err)
		deployed.Status = "failed"
		deployed.Error = err.Error()
		return deployed
	}

	url, err := s.cloud.ServiceURL(ctx, serviceName, cfg.ProjectID, cfg.Region)
	if err != nil {
		s.logger.Warningf("Could not get URL for %s: %s", serviceName, err)
	}

	deployed.Status = "deployed"
	deployed.URL = url
	fmt.Fprintf(s.out, "%s deployed: %s\n", svc.Name, url)

	return deployed
}

func (s *Service) printSummary(cfg model.DeployConfig, p model.Plan, stack model.TechStack, cost float64) {
	fmt.Fprintln(s.out, "Deployment plan:")
	fmt.Fprintf(s.out, "  Project:  %s\n", cfg.ProjectName)
	fmt.Fprintf(s.out, "  Region:   %s\n", cfg.Region)
	fmt.Fprintf(s.out, "  .NET:     %s\n", stack.DotnetVersion)
	fmt.Fprintf(s.out, "  Database: Cloud SQL PostgreSQL (%s)\n", p.Database.Tier)
	fmt.Fprintf(s.out, "  Services: %d\n", len(p.Services))
	for _, svc := range p.Services {
		fmt.Fprintf(s.out, "    - %s: %s CPU, %s\n", svc.Name, svc.CPU, svc.Memory)
	}
	fmt.Fprintf(s.out, "  Estimated monthly cost: $%.2f\n", cost)
}

// record persists the deployment outcome. Storage problems don't fail the
// deployment itself.
func (s *Service) record(ctx context.Context, d *model.Deployment) {
	if err := s.repo.CreateDeployment(ctx, *d); err != nil {
		s.logger.Warningf("Could not record deployment %s: %s", d.ID, err)
	}
}

func newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
