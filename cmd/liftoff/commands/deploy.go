package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	appdeploy "github.com/liftoff-sh/liftoff/internal/app/deploy"
	"github.com/liftoff-sh/liftoff/internal/app/setup"
	"github.com/liftoff-sh/liftoff/internal/conventions"
	"github.com/liftoff-sh/liftoff/internal/detect"
	"github.com/liftoff-sh/liftoff/internal/execx"
	"github.com/liftoff-sh/liftoff/internal/gcloud"
	"github.com/liftoff-sh/liftoff/internal/model"
	"github.com/liftoff-sh/liftoff/internal/ops"
	"github.com/liftoff-sh/liftoff/internal/plan"
	"github.com/liftoff-sh/liftoff/internal/preflight"
	"github.com/liftoff-sh/liftoff/internal/prompt"
	storageio "github.com/liftoff-sh/liftoff/internal/storage/io"
	"github.com/liftoff-sh/liftoff/internal/storage/sqlite"
	"github.com/liftoff-sh/liftoff/internal/terraform"
)

type DeployCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	auto        bool
	repoURL     string
	projectName string
	region      string
	strategy    string
	configPath  string
}

// NewDeployCommand returns the deploy command.
func NewDeployCommand(rootCmd *RootCommand, app *kingpin.Application) *DeployCommand {
	c := &DeployCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("deploy", "Deploy a .NET solution to Cloud Run.")
	c.Cmd.Flag("auto", "Non-interactive mode, skips prompts and confirmations.").BoolVar(&c.auto)
	c.Cmd.Flag("repo", "Git URL of the solution to deploy.").StringVar(&c.repoURL)
	c.Cmd.Flag("project", "Project name used for naming GCP resources.").StringVar(&c.projectName)
	c.Cmd.Flag("region", "GCP region.").StringVar(&c.region)
	c.Cmd.Flag("strategy", "Deployment strategy.").EnumVar(&c.strategy,
		string(model.StrategyCostOptimized), string(model.StrategyBalanced), string(model.StrategyPerformance))
	c.Cmd.Flag("config", "Path of the configuration file.").Default(conventions.ConfigFile).StringVar(&c.configPath)

	return c
}

func (c DeployCommand) Name() string { return c.Cmd.FullCommand() }

func (c DeployCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	out := c.rootCmd.Stdout

	runner, err := execx.NewOSRunner(execx.OSRunnerConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create runner: %w", err)
	}

	gcloudClient, err := gcloud.NewClient(gcloud.ClientConfig{
		Runner: runner,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create gcloud client: %w", err)
	}

	cfg, err := c.resolveConfig(ctx, gcloudClient)
	if err != nil {
		return err
	}

	var prompter prompt.Prompter
	if c.auto {
		prompter = prompt.Static{Repo: cfg.RepoURL, Project: cfg.ProjectName, Reg: cfg.Region, Answer: true}
	} else {
		prompter, err = prompt.NewIOPrompter(prompt.IOPrompterConfig{
			In:  c.rootCmd.Stdin,
			Out: out,
		})
		if err != nil {
			return fmt.Errorf("could not create prompter: %w", err)
		}
	}

	deploySvc, err := c.buildDeployService(ctx, runner, gcloudClient, prompter)
	if err != nil {
		return err
	}

	setupSvc, err := setup.NewService(setup.ServiceConfig{
		Path:   c.configPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create setup service: %w", err)
	}

	checker, err := preflight.NewChecker(preflight.CheckerConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create checker: %w", err)
	}

	// Deploy always runs on a checked environment and an existing config file.
	opRunner, err := ops.NewRunner(ops.RunnerConfig{
		Logger: logger,
		Operations: []ops.Operation{
			{
				Name: "install",
				Run: func(ctx context.Context) error {
					results := checker.Check(ctx)
					for _, r := range results {
						if r.Status == model.CheckStatusError {
							return fmt.Errorf("missing requirement: %s", r.Message)
						}
					}
					return nil
				},
			},
			{
				Name: "setup",
				Run: func(ctx context.Context) error {
					_, err := setupSvc.EnsureConfig()
					return err
				},
			},
			{
				Name:  "deploy",
				Needs: []string{"install", "setup"},
				Run: func(ctx context.Context) error {
					deployment, err := deploySvc.Run(ctx, appdeploy.RunOptions{
						Config:      cfg,
						AutoApprove: c.auto,
					})
					if err != nil {
						return err
					}

					fmt.Fprintf(out, "\nDeployment %s finished: %s\n", deployment.ID, deployment.Status)
					return nil
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("could not create operation runner: %w", err)
	}

	return opRunner.Run(ctx, "deploy")
}

// resolveConfig merges the config file with the command flags. Flags win.
func (c DeployCommand) resolveConfig(ctx context.Context, gcloudClient *gcloud.Client) (model.DeployConfig, error) {
	var cfg model.DeployConfig

	if _, err := os.Stat(c.configPath); err == nil {
		repo := storageio.NewConfigYAMLRepository(os.DirFS("."))
		cfg, err = repo.GetConfig(ctx, c.configPath)
		if err != nil {
			return cfg, fmt.Errorf("could not load %s: %w", c.configPath, err)
		}
	}

	if c.repoURL != "" {
		cfg.RepoURL = c.repoURL
	}
	if c.projectName != "" {
		cfg.ProjectName = c.projectName
	}
	if c.region != "" {
		cfg.Region = c.region
	}
	if c.strategy != "" {
		cfg.Strategy = model.Strategy(c.strategy)
	}

	// The GCP project ID usually differs from the resource name prefix, take
	// the active gcloud one when the config doesn't pin it.
	if cfg.ProjectID == "" {
		project, err := gcloudClient.CurrentProject(ctx)
		if err == nil && project != "" {
			cfg.ProjectID = project
		}
	}

	return cfg, nil
}

func (c DeployCommand) buildDeployService(ctx context.Context, runner execx.Runner, gcloudClient *gcloud.Client, prompter prompt.Prompter) (*appdeploy.Service, error) {
	logger := c.rootCmd.Logger

	workDir := conventions.WorkspaceDir()
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create workspace dir: %w", err)
	}

	tfDir := conventions.TerraformDir()
	if err := os.MkdirAll(tfDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create terraform dir: %w", err)
	}

	detector, err := detect.NewDetector(detect.DetectorConfig{
		Runner:  runner,
		WorkDir: workDir,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create detector: %w", err)
	}

	planner, err := plan.NewBuilder(plan.BuilderConfig{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("could not create planner: %w", err)
	}

	tfCLI, err := terraform.NewCLI(terraform.CLIConfig{
		Dir:    tfDir,
		Runner: runner,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create terraform cli: %w", err)
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	svc, err := appdeploy.NewService(appdeploy.ServiceConfig{
		Inspector:   detector,
		Planner:     planner,
		Provisioner: tfCLI,
		Cloud:       gcloudClient,
		Repository:  repo,
		Prompter:    prompter,
		Out:         c.rootCmd.Stdout,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create deploy service: %w", err)
	}

	return svc, nil
}
