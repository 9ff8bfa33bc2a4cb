package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/liftoff-sh/liftoff/internal/conventions"
)

type CleanCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewCleanCommand returns the clean command.
func NewCleanCommand(rootCmd *RootCommand, app *kingpin.Application) *CleanCommand {
	c := &CleanCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("clean", "Remove generated files and cached repositories.")

	return c
}

func (c CleanCommand) Name() string { return c.Cmd.FullCommand() }

func (c CleanCommand) Run(ctx context.Context) error {
	// Best effort, a missing directory or a permission problem on one entry
	// shouldn't stop the rest.
	for _, dir := range conventions.CleanDirs() {
		err := os.RemoveAll(dir)
		if err != nil {
			c.rootCmd.Logger.Warningf("Could not remove %s: %s", dir, err)
			continue
		}
		fmt.Fprintf(c.rootCmd.Stdout, "Removed %s\n", dir)
	}

	fmt.Fprintln(c.rootCmd.Stdout, "Clean finished.")
	return nil
}
