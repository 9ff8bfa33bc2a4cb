// Package terraform generates the Cloud Run infrastructure configuration and
// wraps the terraform CLI that provisions and destroys it.
package terraform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/liftoff-sh/liftoff/internal/execx"
	"github.com/liftoff-sh/liftoff/internal/log"
)

// CLIConfig is the configuration for the terraform CLI wrapper.
type CLIConfig struct {
	// Dir is the directory holding the generated configuration and state.
	Dir    string
	Runner execx.Runner
	Logger log.Logger
}

func (c *CLIConfig) defaults() error {
	if c.Dir == "" {
		return fmt.Errorf("dir is required")
	}
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "terraform.CLI"})
	return nil
}

// CLI invokes the terraform binary inside a working directory.
type CLI struct {
	dir    string
	runner execx.Runner
	logger log.Logger
}

// NewCLI creates a new terraform CLI wrapper.
func NewCLI(cfg CLIConfig) (*CLI, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &CLI{dir: cfg.Dir, runner: cfg.Runner, logger: cfg.Logger}, nil
}

// Dir returns the terraform working directory.
func (c *CLI) Dir() string { return c.dir }

// Init initializes the working directory. On failure it force-cleans local
// state and retries once, matching the behavior terraform needs after a
// provider upgrade left a stale lock behind.
func (c *CLI) Init(ctx context.Context) error {
	_, err := c.run(ctx, nil, "init", "-upgrade", "-reconfigure")
	if err == nil {
		return nil
	}

	c.logger.Warningf("terraform init failed, force-cleaning state and retrying: %s", err)
	if err := c.ForceClean(); err != nil {
		return fmt.Errorf("could not clean terraform state: %w", err)
	}

	_, err = c.run(ctx, nil, "init", "-upgrade", "-reconfigure")
	if err != nil {
		return fmt.Errorf("terraform init failed: %w", err)
	}
	return nil
}

// Validate validates the configuration. Validation problems are logged as
// warnings, not treated as fatal.
func (c *CLI) Validate(ctx context.Context) {
	if _, err := c.run(ctx, nil, "validate"); err != nil {
		c.logger.Warningf("terraform validate: %s", err)
	}
}

// Plan runs a speculative plan. Exit code 2 (changes present) is success.
func (c *CLI) Plan(ctx context.Context) error {
	res, err := c.run(ctx, nil, "plan", "-input=false", "-lock=false", "-detailed-exitcode")
	if err != nil && res != nil && res.ExitCode == 2 {
		return nil
	}
	if err != nil {
		return fmt.Errorf("terraform plan failed: %w", err)
	}
	return nil
}

// Apply applies the configuration with auto-approval, streaming output.
func (c *CLI) Apply(ctx context.Context, out io.Writer) error {
	_, err := c.run(ctx, out, "apply", "-auto-approve", "-input=false", "-lock=false")
	if err != nil {
		return fmt.Errorf("terraform apply failed: %w", err)
	}
	return nil
}

// Destroy destroys the provisioned infrastructure with auto-approval.
func (c *CLI) Destroy(ctx context.Context, out io.Writer) error {
	_, err := c.run(ctx, out, "destroy", "-auto-approve")
	if err != nil {
		return fmt.Errorf("terraform destroy failed: %w", err)
	}
	return nil
}

// Outputs are the values exported by the applied configuration.
type Outputs struct {
	DatabaseConnection string
	DatabasePrivateIP  string
	ServiceURLs        map[string]string
	Suffix             string
}

// Outputs reads the configuration outputs as JSON.
func (c *CLI) Outputs(ctx context.Context) (*Outputs, error) {
	res, err := c.run(ctx, nil, "output", "-json")
	if err != nil {
		return nil, fmt.Errorf("could not read terraform outputs: %w", err)
	}

	var raw map[string]struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal([]byte(res.Stdout), &raw); err != nil {
		return nil, fmt.Errorf("could not parse terraform outputs: %w", err)
	}

	out := &Outputs{ServiceURLs: map[string]string{}}
	if v, ok := raw["database_connection"]; ok {
		_ = json.Unmarshal(v.Value, &out.DatabaseConnection)
	}
	if v, ok := raw["database_private_ip"]; ok {
		_ = json.Unmarshal(v.Value, &out.DatabasePrivateIP)
	}
	if v, ok := raw["service_urls"]; ok {
		_ = json.Unmarshal(v.Value, &out.ServiceURLs)
	}
	if v, ok := raw["random_suffix"]; ok {
		_ = json.Unmarshal(v.Value, &out.Suffix)
	}

	return out, nil
}

// CleanState removes local state files, keeping the configuration. Used before
// regenerating a configuration so stale state can't collide with new resources.
func (c *CLI) CleanState() error {
	return c.removeStateFiles(
		".terraform",
		"terraform.tfstate",
		"terraform.tfstate.backup",
		".terraform.tfstate.lock.info",
	)
}

// ForceClean removes local state and the provider lock file.
func (c *CLI) ForceClean() error {
	return c.removeStateFiles(
		".terraform",
		".terraform.lock.hcl",
		"terraform.tfstate",
		"terraform.tfstate.backup",
		".terraform.tfstate.lock.info",
	)
}

func (c *CLI) removeStateFiles(names ...string) error {
	for _, name := range names {
		path := filepath.Join(c.dir, name)
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("could not remove %s: %w", path, err)
		}
	}
	return nil
}

func (c *CLI) run(ctx context.Context, out io.Writer, args ...string) (*execx.Result, error) {
	return c.runner.Run(ctx, execx.Command{
		Name:   "terraform",
		Args:   args,
		Dir:    c.dir,
		Stdout: out,
		Stderr: out,
	})
}
