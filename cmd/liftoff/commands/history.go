package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/liftoff-sh/liftoff/internal/app/history"
	"github.com/liftoff-sh/liftoff/internal/printer"
	"github.com/liftoff-sh/liftoff/internal/storage/sqlite"
)

type HistoryCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id     string
	format string
}

// NewHistoryCommand returns the history command.
func NewHistoryCommand(rootCmd *RootCommand, app *kingpin.Application) *HistoryCommand {
	c := &HistoryCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("history", "Show past deployments.")
	c.Cmd.Flag("id", "Show a single deployment in detail.").StringVar(&c.id)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c HistoryCommand) Name() string { return c.Cmd.FullCommand() }

func (c HistoryCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	svc, err := history.NewService(history.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if c.id != "" {
		deployment, err := svc.GetDeployment(ctx, c.id)
		if err != nil {
			return fmt.Errorf("could not get deployment: %w", err)
		}
		if err := p.PrintDeployment(*deployment); err != nil {
			return fmt.Errorf("could not print deployment: %w", err)
		}
		return nil
	}

	deployments, err := svc.ListDeployments(ctx)
	if err != nil {
		return fmt.Errorf("could not list deployments: %w", err)
	}

	if err := p.PrintHistory(deployments); err != nil {
		return fmt.Errorf("could not print history: %w", err)
	}

	return nil
}
