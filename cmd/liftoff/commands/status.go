package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/liftoff-sh/liftoff/internal/execx"
	"github.com/liftoff-sh/liftoff/internal/gcloud"
)

type StatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	project string
	region  string
}

// NewStatusCommand returns the status command.
func NewStatusCommand(rootCmd *RootCommand, app *kingpin.Application) *StatusCommand {
	c := &StatusCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("status", "List the deployed Cloud Run services.")
	c.Cmd.Flag("project", "GCP project ID. Defaults to the active gcloud project.").StringVar(&c.project)
	c.Cmd.Flag("region", "GCP region.").Default("us-central1").StringVar(&c.region)

	return c
}

func (c StatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c StatusCommand) Run(ctx context.Context) error {
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

	if err := client.ListRunServices(ctx, project, c.region, c.rootCmd.Stdout); err != nil {
		return fmt.Errorf("could not list services: %w", err)
	}

	return nil
}
