package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/liftoff-sh/liftoff/internal/app/setup"
	"github.com/liftoff-sh/liftoff/internal/conventions"
)

type SetupCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	configPath string
}

// NewSetupCommand returns the setup command.
func NewSetupCommand(rootCmd *RootCommand, app *kingpin.Application) *SetupCommand {
	c := &SetupCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("setup", "Create the project configuration file.")
	c.Cmd.Flag("config", "Path of the configuration file to create.").Default(conventions.ConfigFile).StringVar(&c.configPath)

	return c
}

func (c SetupCommand) Name() string { return c.Cmd.FullCommand() }

func (c SetupCommand) Run(ctx context.Context) error {
	svc, err := setup.NewService(setup.ServiceConfig{
		Path:   c.configPath,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	created, err := svc.EnsureConfig()
	if err != nil {
		return fmt.Errorf("could not ensure config: %w", err)
	}

	if created {
		fmt.Fprintf(c.rootCmd.Stdout, "Created %s, edit it before deploying.\n", c.configPath)
	} else {
		fmt.Fprintf(c.rootCmd.Stdout, "%s already exists, leaving untouched.\n", c.configPath)
	}

	return nil
}
