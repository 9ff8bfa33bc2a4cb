package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/liftoff-sh/liftoff/internal/model"
)

// ConfigYAMLRepository loads deployment configuration from YAML files.
type ConfigYAMLRepository struct {
	fs fs.FS
}

// NewConfigYAMLRepository creates a new YAML config repository.
func NewConfigYAMLRepository(filesystem fs.FS) *ConfigYAMLRepository {
	return &ConfigYAMLRepository{fs: filesystem}
}

// GetConfig loads a deployment configuration from a YAML file and returns a
// validated domain model. A missing file is not an error: defaults apply.
func (r *ConfigYAMLRepository) GetConfig(ctx context.Context, path string) (model.DeployConfig, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.DeployConfig{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.DeployConfig{}, ctx.Err()
	}

	var cfg DeployConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.DeployConfig{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return model.DeployConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg.toModel(), nil
}

// DeployConfig represents the YAML structure of liftoff.yaml.
type DeployConfig struct {
	Repository string          `yaml:"repository"`
	Project    string          `yaml:"project"`
	ProjectID  string          `yaml:"project_id"`
	Region     string          `yaml:"region"`
	Strategy   string          `yaml:"strategy"`
	Database   DatabaseConfig  `yaml:"database"`
	Resources  ResourcesConfig `yaml:"resources"`
}

// DatabaseConfig represents the YAML structure for database configuration.
type DatabaseConfig struct {
	Tier string `yaml:"tier"`
}

// ResourcesConfig represents the YAML structure for service resources.
type ResourcesConfig struct {
	CPU          string `yaml:"cpu"`
	Memory       string `yaml:"memory"`
	MaxInstances int    `yaml:"max_instances"`
}

func (c DeployConfig) validate() error {
	if c.Project != "" && !model.ValidProjectName(c.Project) {
		return fmt.Errorf("project %q is not a valid GCP resource name", c.Project)
	}
	if c.Repository != "" && !model.ValidRepoURL(c.Repository) {
		return fmt.Errorf("repository %q host is not supported", c.Repository)
	}

	switch c.Strategy {
	case "", string(model.StrategyCostOptimized), string(model.StrategyBalanced), string(model.StrategyPerformance):
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}

	if c.Resources.MaxInstances < 0 {
		return fmt.Errorf("max_instances cannot be negative, got: %d", c.Resources.MaxInstances)
	}

	return nil
}

func (c DeployConfig) toModel() model.DeployConfig {
	return model.DeployConfig{
		RepoURL:      c.Repository,
		ProjectName:  c.Project,
		ProjectID:    c.ProjectID,
		Region:       c.Region,
		DatabaseTier: c.Database.Tier,
		Strategy:     model.Strategy(c.Strategy),
		CPU:          c.Resources.CPU,
		Memory:       c.Resources.Memory,
		MaxInstances: c.Resources.MaxInstances,
	}
}
