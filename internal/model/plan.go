package model

import "fmt"

// Strategy selects the decision rules used when building a deployment plan.
type Strategy string

const (
	// StrategyCostOptimized favors the cheapest tiers and conservative scaling.
	StrategyCostOptimized Strategy = "cost_optimized"
	// StrategyBalanced favors standard tiers and moderate scaling.
	StrategyBalanced Strategy = "balanced"
	// StrategyPerformance favors bigger tiers and aggressive scaling.
	StrategyPerformance Strategy = "performance"
)

// Plan is the deployment plan generated from a detected tech stack.
type Plan struct {
	ProjectName string
	Region      string
	Services    []PlannedService
	Database    DatabasePlan
	Registry    RegistryPlan
	Scaling     ScalingPlan
}

// PlannedService is a single Cloud Run service to be created.
type PlannedService struct {
	Name         string
	SourcePath   string
	CPU          string
	Memory       string
	MaxInstances int
	MinInstances int
	Port         int
}

// DatabasePlan describes the Cloud SQL instance to provision.
type DatabasePlan struct {
	InstanceName     string
	Tier             string
	DatabaseName     string
	BackupEnabled    bool
	HighAvailability bool
}

// RegistryPlan describes the Artifact Registry repository for images.
type RegistryPlan struct {
	Repository string
	Format     string
}

// ScalingPlan describes autoscaling settings shared by all services.
type ScalingPlan struct {
	MinInstances         int
	MaxInstances         int
	TargetCPUUtilization int
}

// Validate validates the plan.
func (p *Plan) Validate() error {
	if p.ProjectName == "" {
		return fmt.Errorf("project name is required: %w", ErrNotValid)
	}
	if len(p.Services) == 0 {
		return fmt.Errorf("plan has no services: %w", ErrNotValid)
	}
	for _, s := range p.Services {
		if s.Name == "" {
			return fmt.Errorf("service name is required: %w", ErrNotValid)
		}
	}
	return nil
}
