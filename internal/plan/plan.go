// Package plan turns a detected tech stack into a concrete deployment plan
// using strategy-based decision rules.
package plan

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/liftoff-sh/liftoff/internal/log"
	"github.com/liftoff-sh/liftoff/internal/model"
)

// rules are the per-strategy decision values.
type rules struct {
	databaseTier string
	computeTier  string
	scaling      string
}

var strategyRules = map[model.Strategy]rules{
	model.StrategyCostOptimized: {databaseTier: "db-f1-micro", computeTier: "lowest", scaling: "conservative"},
	model.StrategyBalanced:      {databaseTier: "db-g1-small", computeTier: "standard", scaling: "moderate"},
	model.StrategyPerformance:   {databaseTier: "db-n1-standard-1", computeTier: "high", scaling: "aggressive"},
}

var cpuByTier = map[string]string{
	"lowest":   "1",
	"standard": "2",
	"high":     "4",
}

var memoryByTier = map[string]string{
	"lowest":   "1Gi",
	"standard": "2Gi",
	"high":     "8Gi",
}

var maxInstancesByScaling = map[string]int{
	"conservative": 5,
	"moderate":     10,
	"aggressive":   20,
}

// BuilderConfig is the configuration for the plan builder.
type BuilderConfig struct {
	Logger log.Logger
}

func (c *BuilderConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "plan.Builder"})
	return nil
}

// Builder builds deployment plans.
type Builder struct {
	logger log.Logger
}

// NewBuilder creates a new plan builder.
func NewBuilder(cfg BuilderConfig) (*Builder, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Builder{logger: cfg.Logger}, nil
}

// Build creates one Cloud Run service per detected API project plus the
// shared Cloud SQL and Artifact Registry infrastructure.
func (b *Builder) Build(cfg model.DeployConfig, stack model.TechStack) (*model.Plan, error) {
	if len(stack.APIProjects) == 0 {
		return nil, fmt.Errorf("no deployable API projects found: %w", model.ErrNotValid)
	}

	strategy := cfg.Strategy
	r, ok := strategyRules[strategy]
	if !ok {
		strategy = model.StrategyCostOptimized
		r = strategyRules[strategy]
	}

	cpu := cfg.CPU
	if cpu == "" {
		cpu = cpuByTier[r.computeTier]
	}
	memory := cfg.Memory
	if memory == "" {
		memory = memoryByTier[r.computeTier]
	}
	maxInstances := cfg.MaxInstances
	if maxInstances <= 0 {
		maxInstances = maxInstancesByScaling[r.scaling]
	}
	minInstances := 0
	if r.scaling != "conservative" {
		minInstances = 1
	}
	databaseTier := cfg.DatabaseTier
	if databaseTier == "" {
		databaseTier = r.databaseTier
	}

	p := &model.Plan{
		ProjectName: cfg.ProjectName,
		Region:      cfg.Region,
		Database: model.DatabasePlan{
			InstanceName:     cfg.ProjectName + "-postgres",
			Tier:             databaseTier,
			DatabaseName:     "appdb",
			BackupEnabled:    true,
			HighAvailability: r.scaling == "aggressive",
		},
		Registry: model.RegistryPlan{
			Repository: cfg.ProjectName + "-repo",
			Format:     "DOCKER",
		},
		Scaling: model.ScalingPlan{
			MinInstances:         minInstances,
			MaxInstances:         maxInstances,
			TargetCPUUtilization: 60,
		},
	}

	for _, proj := range stack.APIProjects {
		p.Services = append(p.Services, model.PlannedService{
			Name:         ServiceName(proj.Name),
			SourcePath:   proj.Path,
			CPU:          cpu,
			Memory:       memory,
			MaxInstances: maxInstances,
			MinInstances: minInstances,
			Port:         8080, // .NET default.
		})
	}

	b.logger.Debugf("Built plan with %d services (strategy %s)", len(p.Services), strategy)

	return p, nil
}

// Preview builds a plan from the config alone, assuming the given number of
// services. Nothing is cloned or inspected, so cost estimates can be produced
// without touching the filesystem or spawning processes.
func (b *Builder) Preview(cfg model.DeployConfig, services int) (*model.Plan, error) {
	if services <= 0 {
		return nil, fmt.Errorf("at least one service is required: %w", model.ErrNotValid)
	}

	var stack model.TechStack
	for i := 0; i < services; i++ {
		stack.APIProjects = append(stack.APIProjects, model.APIProject{
			Name: fmt.Sprintf("service-%d", i+1),
		})
	}

	return b.Build(cfg, stack)
}

// ServiceName converts a .NET project name into a valid Cloud Run service
// name (lowercase, hyphens only).
func ServiceName(projectName string) string {
	name := strings.ToLower(projectName)
	name = strings.ReplaceAll(name, ".", "-")
	name = strings.ReplaceAll(name, "_", "-")
	return name
}

// Cost constants, in USD per month.
const (
	baseDatabaseCost = 8.0
	perServiceCost   = 5.0
)

// EstimateCost returns the approximate monthly cost of a plan.
func EstimateCost(p model.Plan) float64 {
	return baseDatabaseCost + float64(len(p.Services))*perServiceCost
}

// Fingerprint returns a stable hash of a plan's shape, used to match similar
// past deployments in the history store.
func Fingerprint(p model.Plan) string {
	data, _ := json.Marshal(map[string]interface{}{
		"services": len(p.Services),
		"database": p.Database.Tier,
		"region":   p.Region,
	})
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
