package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/liftoff-sh/liftoff/internal/execx"
	"github.com/liftoff-sh/liftoff/internal/gcloud"
	"github.com/liftoff-sh/liftoff/internal/prompt"
)

type AuthCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	project string
}

// NewAuthCommand returns the auth command.
func NewAuthCommand(rootCmd *RootCommand, app *kingpin.Application) *AuthCommand {
	c := &AuthCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("auth", "Authenticate with Google Cloud.")
	c.Cmd.Flag("project", "GCP project ID to activate after login.").StringVar(&c.project)

	return c
}

func (c AuthCommand) Name() string { return c.Cmd.FullCommand() }

func (c AuthCommand) Run(ctx context.Context) error {
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

	// Skip the browser dance when an account is already active.
	account, err := client.ActiveAccount(ctx)
	if err == nil && account != "" {
		fmt.Fprintf(c.rootCmd.Stdout, "Already authenticated as %s\n", account)
	} else {
		if err := client.Login(ctx, c.rootCmd.Stdin, c.rootCmd.Stdout, c.rootCmd.Stderr); err != nil {
			return fmt.Errorf("could not authenticate: %w", err)
		}
	}

	project := c.project
	fromGcloud := false
	if project == "" {
		project, err = client.CurrentProject(ctx)
		if err != nil {
			return fmt.Errorf("could not get current project: %w", err)
		}
		fromGcloud = project != ""
	}
	if project == "" {
		prompter, err := prompt.NewIOPrompter(prompt.IOPrompterConfig{
			In:  c.rootCmd.Stdin,
			Out: c.rootCmd.Stdout,
		})
		if err != nil {
			return fmt.Errorf("could not create prompter: %w", err)
		}
		project, err = prompter.ProjectID()
		if err != nil {
			return fmt.Errorf("could not obtain project id: %w", err)
		}
	}

	if fromGcloud {
		fmt.Fprintf(c.rootCmd.Stdout, "Active project: %s\n", project)
	} else {
		if err := client.SetProject(ctx, project); err != nil {
			return fmt.Errorf("could not set project: %w", err)
		}
		fmt.Fprintf(c.rootCmd.Stdout, "Active project set to %s\n", project)
	}

	fmt.Fprintln(c.rootCmd.Stdout, "Enabling required GCP APIs...")
	if err := client.EnableServices(ctx, project, gcloud.RequiredServices); err != nil {
		return fmt.Errorf("could not enable required APIs: %w", err)
	}

	return nil
}
