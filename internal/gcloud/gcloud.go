// Package gcloud wraps the gcloud CLI. All provider semantics (auth flows,
// IAM, service enablement) stay delegated to the CLI itself.
package gcloud

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/liftoff-sh/liftoff/internal/execx"
	"github.com/liftoff-sh/liftoff/internal/log"
	"github.com/liftoff-sh/liftoff/internal/model"
)

// RequiredServices is the fixed list of GCP services a Cloud Run deployment
// needs enabled.
var RequiredServices = []string{
	"compute.googleapis.com",
	"sqladmin.googleapis.com",
	"run.googleapis.com",
	"cloudbuild.googleapis.com",
	"artifactregistry.googleapis.com",
	"servicenetworking.googleapis.com",
	"vpcaccess.googleapis.com",
	"iam.googleapis.com",
}

// ClientConfig is the configuration for the gcloud client.
type ClientConfig struct {
	Runner execx.Runner
	Logger log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "gcloud.Client"})
	return nil
}

// Client invokes the gcloud CLI.
type Client struct {
	runner execx.Runner
	logger log.Logger
}

// NewClient creates a new gcloud client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{runner: cfg.Runner, logger: cfg.Logger}, nil
}

// Login starts the interactive gcloud login flow with the invoker's terminal
// streams attached.
func (c *Client) Login(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) error {
	_, err := c.runner.Run(ctx, execx.Command{
		Name:   "gcloud",
		Args:   []string{"auth", "login"},
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	})
	if err != nil {
		return fmt.Errorf("gcloud login failed: %w", err)
	}
	return nil
}

// ActiveAccount returns the currently authenticated account, empty when none.
func (c *Client) ActiveAccount(ctx context.Context) (string, error) {
	res, err := c.runner.Run(ctx, execx.Command{
		Name: "gcloud",
		Args: []string{"auth", "list", "--filter=status:ACTIVE", "--format=value(account)"},
	})
	if err != nil {
		return "", fmt.Errorf("could not list accounts: %w", err)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// CurrentProject returns the active gcloud project, empty when unset.
func (c *Client) CurrentProject(ctx context.Context) (string, error) {
	res, err := c.runner.Run(ctx, execx.Command{
		Name: "gcloud",
		Args: []string{"config", "get-value", "project"},
	})
	if err != nil {
		return "", fmt.Errorf("could not get current project: %w", err)
	}

	project := strings.TrimSpace(res.Stdout)
	if project == "(unset)" {
		project = ""
	}
	return project, nil
}

// SetProject sets the active gcloud project.
func (c *Client) SetProject(ctx context.Context, projectID string) error {
	if projectID == "" {
		return fmt.Errorf("project id is required: %w", model.ErrNotValid)
	}

	_, err := c.runner.Run(ctx, execx.Command{
		Name: "gcloud",
		Args: []string{"config", "set", "project", projectID},
	})
	if err != nil {
		return fmt.Errorf("could not set project %s: %w", projectID, err)
	}

	c.logger.Infof("Active project set to %s", projectID)
	return nil
}

// EnableServices enables the required GCP services one by one, aborting on the
// first failure.
func (c *Client) EnableServices(ctx context.Context, projectID string, services []string) error {
	for _, svc := range services {
		_, err := c.runner.Run(ctx, execx.Command{
			Name: "gcloud",
			Args: []string{"services", "enable", svc, "--project=" + projectID, "--quiet"},
		})
		if err != nil {
			return fmt.Errorf("could not enable service %s: %w", svc, err)
		}
		c.logger.Debugf("Enabled service %s", svc)
	}

	return nil
}

// ReadLogs streams Cloud Run request and application logs to the writer.
func (c *Client) ReadLogs(ctx context.Context, projectID string, limit int, out io.Writer) error {
	args := []string{
		"logging", "read",
		`resource.type=cloud_run_revision`,
		fmt.Sprintf("--limit=%d", limit),
		"--format=table(timestamp, severity, textPayload)",
	}
	if projectID != "" {
		args = append(args, "--project="+projectID)
	}

	_, err := c.runner.Run(ctx, execx.Command{
		Name:   "gcloud",
		Args:   args,
		Stdout: out,
	})
	if err != nil {
		return fmt.Errorf("could not read logs: %w", err)
	}
	return nil
}

// ListRunServices writes the Cloud Run service list to the writer.
func (c *Client) ListRunServices(ctx context.Context, projectID, region string, out io.Writer) error {
	args := []string{
		"run", "services", "list",
		"--platform=managed",
		"--format=table(metadata.name, status.url, status.conditions[0].status)",
	}
	if projectID != "" {
		args = append(args, "--project="+projectID)
	}
	if region != "" {
		args = append(args, "--region="+region)
	}

	_, err := c.runner.Run(ctx, execx.Command{
		Name:   "gcloud",
		Args:   args,
		Stdout: out,
	})
	if err != nil {
		return fmt.Errorf("could not list services: %w", err)
	}
	return nil
}

// BuildSubmit builds a container image remotely with Cloud Build.
func (c *Client) BuildSubmit(ctx context.Context, projectID, tag, sourceDir string, out io.Writer) error {
	_, err := c.runner.Run(ctx, execx.Command{
		Name:   "gcloud",
		Args:   []string{"builds", "submit", "--tag=" + tag, "--project=" + projectID, sourceDir},
		Stdout: out,
		Stderr: out,
	})
	if err != nil {
		return fmt.Errorf("cloud build failed for %s: %w", tag, err)
	}
	return nil
}

// RunDeployOptions are the options for deploying a Cloud Run service.
type RunDeployOptions struct {
	ServiceName  string
	Image        string
	ProjectID    string
	Region       string
	CPU          string
	Memory       string
	MaxInstances int
	MinInstances int
}

// RunDeploy deploys a container image as a managed Cloud Run service.
func (c *Client) RunDeploy(ctx context.Context, opts RunDeployOptions, out io.Writer) error {
	args := []string{
		"run", "deploy", opts.ServiceName,
		"--image=" + opts.Image,
		"--region=" + opts.Region,
		"--project=" + opts.ProjectID,
		"--allow-unauthenticated",
		"--platform=managed",
		fmt.Sprintf("--memory=%s", opts.Memory),
		fmt.Sprintf("--cpu=%s", opts.CPU),
		fmt.Sprintf("--max-instances=%d", opts.MaxInstances),
		fmt.Sprintf("--min-instances=%d", opts.MinInstances),
	}

	_, err := c.runner.Run(ctx, execx.Command{
		Name:   "gcloud",
		Args:   args,
		Stdout: out,
		Stderr: out,
	})
	if err != nil {
		return fmt.Errorf("could not deploy service %s: %w", opts.ServiceName, err)
	}
	return nil
}

// ServiceURL returns the public URL of a deployed Cloud Run service.
func (c *Client) ServiceURL(ctx context.Context, serviceName, projectID, region string) (string, error) {
	res, err := c.runner.Run(ctx, execx.Command{
		Name: "gcloud",
		Args: []string{
			"run", "services", "describe", serviceName,
			"--region=" + region,
			"--project=" + projectID,
			"--platform=managed",
			"--format=value(status.url)",
		},
	})
	if err != nil {
		return "", fmt.Errorf("could not describe service %s: %w", serviceName, err)
	}
	return strings.TrimSpace(res.Stdout), nil
}
