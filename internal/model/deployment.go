package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DeploymentStatus represents the final status of a deployment run.
type DeploymentStatus string

const (
	// DeploymentStatusSucceeded indicates all services deployed.
	DeploymentStatusSucceeded DeploymentStatus = "succeeded"
	// DeploymentStatusPartial indicates at least one service deployed and at least one failed.
	DeploymentStatusPartial DeploymentStatus = "partial"
	// DeploymentStatusFailed indicates the deployment failed before or during rollout.
	DeploymentStatusFailed DeploymentStatus = "failed"
)

// Deployment is the record of a single deployment run.
type Deployment struct {
	ID                 string
	ProjectName        string
	RepoURL            string
	Region             string
	Status             DeploymentStatus
	Services           []DeployedService
	DatabaseConnection string
	CostEstimate       float64
	Fingerprint        string
	Error              string
	CreatedAt          time.Time
}

// DeployedService is the per-service outcome of a deployment run.
type DeployedService struct {
	Name   string
	URL    string
	Image  string
	Status string
	Error  string
}

// DeployConfig is the resolved configuration for a deployment run.
type DeployConfig struct {
	RepoURL      string
	ProjectName  string
	ProjectID    string
	Region       string
	DatabaseTier string
	Strategy     Strategy
	CPU          string
	Memory       string
	MaxInstances int
}

var projectNameRegexp = regexp.MustCompile(`^[a-z][a-z0-9-]{2,30}$`)

// ValidProjectName reports whether a name satisfies GCP resource naming rules.
func ValidProjectName(name string) bool {
	if !projectNameRegexp.MatchString(name) {
		return false
	}
	if strings.HasSuffix(name, "-") || strings.Contains(name, "--") {
		return false
	}
	return true
}

// repoHosts are the Git hosts accepted for repository URLs.
var repoHosts = []string{"github.com", "gitlab.com", "bitbucket.org", "dev.azure.com"}

// ValidRepoURL reports whether a URL points at a supported Git host.
func ValidRepoURL(url string) bool {
	for _, h := range repoHosts {
		if strings.Contains(url, h) {
			return true
		}
	}
	return false
}

// Validate validates the deployment configuration.
func (c *DeployConfig) Validate() error {
	if c.RepoURL == "" {
		return fmt.Errorf("repository url is required: %w", ErrNotValid)
	}
	if !ValidRepoURL(c.RepoURL) {
		return fmt.Errorf("repository url %q host is not supported: %w", c.RepoURL, ErrNotValid)
	}
	if c.ProjectName == "" {
		return fmt.Errorf("project name is required: %w", ErrNotValid)
	}
	if !ValidProjectName(c.ProjectName) {
		return fmt.Errorf("project name %q is not a valid GCP resource name: %w", c.ProjectName, ErrNotValid)
	}
	if c.Region == "" {
		return fmt.Errorf("region is required: %w", ErrNotValid)
	}
	if c.DatabaseTier == "" {
		return fmt.Errorf("database tier is required: %w", ErrNotValid)
	}
	if c.MaxInstances <= 0 {
		return fmt.Errorf("max instances must be positive: %w", ErrNotValid)
	}
	return nil
}
