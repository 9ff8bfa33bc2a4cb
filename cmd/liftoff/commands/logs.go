package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/liftoff-sh/liftoff/internal/execx"
	"github.com/liftoff-sh/liftoff/internal/gcloud"
)

type LogsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	project string
	limit   int
}

// NewLogsCommand returns the logs command.
func NewLogsCommand(rootCmd *RootCommand, app *kingpin.Application) *LogsCommand {
	c := &LogsCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("logs", "Show recent Cloud Run logs.")
	c.Cmd.Flag("project", "GCP project ID. Defaults to the active gcloud project.").StringVar(&c.project)
	c.Cmd.Flag("limit", "Maximum number of log entries.").Default("50").IntVar(&c.limit)

	return c
}

func (c LogsCommand) Name() string { return c.Cmd.FullCommand() }

func (c LogsCommand) Run(ctx context.Context) error {
	runner, err := execx.NewOSRunner(execx.OSRunnerConfig{Logger: c.rootCmd.Logger})
	if err != nil {
		return fmt.Errorf("could not create runner: %w", err)
	}

	client, err := gcloud.NewClient(gcloud.ClientConfig{
		Runner: runner,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create gcloud client: %w", err)
	}

	project, err := resolveProject(ctx, client, c.project)
	if err != nil {
		return err
	}

	if err := client.ReadLogs(ctx, project, c.limit, c.rootCmd.Stdout); err != nil {
		return fmt.Errorf("could not read logs: %w", err)
	}

	return nil
}

// resolveProject returns the given project or falls back to the active gcloud one.
func resolveProject(ctx context.Context, client *gcloud.Client, project string) (string, error) {
	if project != "" {
		return project, nil
	}

	project, err := client.CurrentProject(ctx)
	if err != nil {
		return "", fmt.Errorf("could not get current project: %w", err)
	}
	if project == "" {
		return "", fmt.Errorf("no active GCP project, pass --project or run 'liftoff auth'")
	}

	return project, nil
}
