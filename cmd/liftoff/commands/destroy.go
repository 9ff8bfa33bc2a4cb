package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/liftoff-sh/liftoff/internal/app/teardown"
	"github.com/liftoff-sh/liftoff/internal/conventions"
	"github.com/liftoff-sh/liftoff/internal/execx"
	"github.com/liftoff-sh/liftoff/internal/terraform"
)

type DestroyCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewDestroyCommand returns the destroy command.
func NewDestroyCommand(rootCmd *RootCommand, app *kingpin.Application) *DestroyCommand {
	c := &DestroyCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("destroy", "Destroy all provisioned cloud resources.")

	return c
}

func (c DestroyCommand) Name() string { return c.Cmd.FullCommand() }

func (c DestroyCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	tfDir := conventions.TerraformDir()

	// Nothing provisioned yet: report and leave, don't invoke terraform on an
	// empty directory.
	if _, err := os.Stat(tfDir); os.IsNotExist(err) {
		fmt.Fprintln(c.rootCmd.Stdout, "No provisioned infrastructure found, nothing to destroy.")
		return nil
	}

	runner, err := execx.NewOSRunner(execx.OSRunnerConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create runner: %w", err)
	}

	tfCLI, err := terraform.NewCLI(terraform.CLIConfig{
		Dir:    tfDir,
		Runner: runner,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create terraform cli: %w", err)
	}

	svc, err := teardown.NewService(teardown.ServiceConfig{
		Dir:       tfDir,
		Destroyer: tfCLI,
		Out:       c.rootCmd.Stdout,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	return svc.Destroy(ctx)
}
