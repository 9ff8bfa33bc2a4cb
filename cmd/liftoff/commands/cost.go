package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/liftoff-sh/liftoff/internal/app/history"
	"github.com/liftoff-sh/liftoff/internal/conventions"
	"github.com/liftoff-sh/liftoff/internal/model"
	"github.com/liftoff-sh/liftoff/internal/plan"
	storageio "github.com/liftoff-sh/liftoff/internal/storage/io"
	"github.com/liftoff-sh/liftoff/internal/storage/sqlite"
)

type CostCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	services   int
	strategy   string
	configPath string
}

// NewCostCommand returns the cost command.
func NewCostCommand(rootCmd *RootCommand, app *kingpin.Application) *CostCommand {
	c := &CostCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("cost", "Estimate the monthly cost of a deployment without deploying.")
	c.Cmd.Flag("services", "Number of services to estimate for.").Default("1").IntVar(&c.services)
	c.Cmd.Flag("strategy", "Deployment strategy.").EnumVar(&c.strategy,
		string(model.StrategyCostOptimized), string(model.StrategyBalanced), string(model.StrategyPerformance))
	c.Cmd.Flag("config", "Path of the configuration file.").Default(conventions.ConfigFile).StringVar(&c.configPath)

	return c
}

func (c CostCommand) Name() string { return c.Cmd.FullCommand() }

// Run estimates without deploying: no cloning, no generated files, no
// external processes. Only existing files (config, history DB) are read.
func (c CostCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	out := c.rootCmd.Stdout

	var cfg model.DeployConfig
	if _, err := os.Stat(c.configPath); err == nil {
		repo := storageio.NewConfigYAMLRepository(os.DirFS("."))
		cfg, err = repo.GetConfig(ctx, c.configPath)
		if err != nil {
			return fmt.Errorf("could not load %s: %w", c.configPath, err)
		}
	}

	if c.strategy != "" {
		cfg.Strategy = model.Strategy(c.strategy)
	}
	if cfg.Strategy == "" {
		cfg.Strategy = model.StrategyCostOptimized
	}
	if cfg.ProjectName == "" {
		cfg.ProjectName = "estimate"
	}
	if cfg.Region == "" {
		cfg.Region = "us-central1"
	}

	builder, err := plan.NewBuilder(plan.BuilderConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create planner: %w", err)
	}

	p, err := builder.Preview(cfg, c.services)
	if err != nil {
		return fmt.Errorf("could not build deployment plan: %w", err)
	}

	fmt.Fprintf(out, "Cost estimate for %d service(s), strategy %s:\n", len(p.Services), cfg.Strategy)
	fmt.Fprintf(out, "  Cloud SQL (%s) + Cloud Run: $%.2f/month\n", p.Database.Tier, plan.EstimateCost(*p))

	c.printExperience(ctx, plan.Fingerprint(*p))

	return nil
}

// printExperience reports what deployments with the same shape actually cost.
func (c CostCommand) printExperience(ctx context.Context, fingerprint string) {
	// Never create the database here, only read an existing one.
	if _, err := os.Stat(c.rootCmd.DBPath); err != nil {
		return
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		c.rootCmd.Logger.Debugf("Could not open history database: %s", err)
		return
	}
	defer repo.Close()

	svc, err := history.NewService(history.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return
	}

	similar, err := svc.SimilarDeployments(ctx, fingerprint)
	if err != nil || len(similar) == 0 {
		return
	}

	var total float64
	for _, d := range similar {
		total += d.CostEstimate
	}
	avg := total / float64(len(similar))
	fmt.Fprintf(c.rootCmd.Stdout, "  Based on %d previous deployment(s) of this shape: $%.2f/month\n", len(similar), avg)
}
