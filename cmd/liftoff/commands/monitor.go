package commands

import (
	"context"
	"fmt"
	"runtime"

	"github.com/alecthomas/kingpin/v2"

	"github.com/liftoff-sh/liftoff/internal/execx"
	"github.com/liftoff-sh/liftoff/internal/gcloud"
	"github.com/liftoff-sh/liftoff/internal/prompt"
)

type MonitorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	project string
	noOpen  bool
}

// NewMonitorCommand returns the monitor command.
func NewMonitorCommand(rootCmd *RootCommand, app *kingpin.Application) *MonitorCommand {
	c := &MonitorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("monitor", "Open the Cloud Run dashboard for the project.")
	c.Cmd.Flag("project", "GCP project ID. Defaults to the active gcloud project.").StringVar(&c.project)
	c.Cmd.Flag("no-open", "Print the dashboard URL instead of opening a browser.").BoolVar(&c.noOpen)

	return c
}

func (c MonitorCommand) Name() string { return c.Cmd.FullCommand() }

func (c MonitorCommand) Run(ctx context.Context) error {
	runner, err := execx.NewOSRunner(execx.OSRunnerConfig{Logger: c.rootCmd.Logger})
	if err != nil {
		return fmt.Errorf("could not create runner: %w", err)
	}

	project := c.project
	if project == "" {
		client, err := gcloud.NewClient(gcloud.ClientConfig{
			Runner: runner,
			Logger: c.rootCmd.Logger,
		})
		if err != nil {
			return fmt.Errorf("could not create gcloud client: %w", err)
		}

		project, err = client.CurrentProject(ctx)
		if err != nil {
			// A broken gcloud shouldn't block a dashboard URL, ask instead.
			c.rootCmd.Logger.Debugf("Could not get current project: %s", err)
		}
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

	url := fmt.Sprintf("https://console.cloud.google.com/run?project=%s", project)
	fmt.Fprintf(c.rootCmd.Stdout, "Cloud Run dashboard: %s\n", url)

	if c.noOpen {
		return nil
	}

	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}

	if _, err := runner.Run(ctx, execx.Command{Name: opener, Args: []string{url}}); err != nil {
		// The URL is already printed, a headless environment is not fatal.
		c.rootCmd.Logger.Warningf("Could not open browser: %s", err)
	}

	return nil
}
