// Package prompt implements interactive prompting with validation loops.
// All input goes through an io.Reader so commands can be tested without a
// terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/liftoff-sh/liftoff/internal/model"
)

// Prompter obtains values from the invoker.
type Prompter interface {
	RepoURL() (string, error)
	ProjectName() (string, error)
	ProjectID() (string, error)
	Region(defaultRegion string) (string, error)
	Confirm(message string) (bool, error)
}

// IOPrompterConfig is the configuration for the IO prompter.
type IOPrompterConfig struct {
	In  io.Reader
	Out io.Writer
}

func (c *IOPrompterConfig) defaults() error {
	if c.In == nil {
		return fmt.Errorf("input reader is required")
	}
	if c.Out == nil {
		return fmt.Errorf("output writer is required")
	}
	return nil
}

// IOPrompter is a Prompter that reads lines from a reader and writes the
// prompts to a writer.
type IOPrompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewIOPrompter creates a new IO prompter.
func NewIOPrompter(cfg IOPrompterConfig) (*IOPrompter, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &IOPrompter{
		scanner: bufio.NewScanner(cfg.In),
		out:     cfg.Out,
	}, nil
}

// RepoURL prompts for a Git repository URL until a supported host is given.
func (p *IOPrompter) RepoURL() (string, error) {
	fmt.Fprintln(p.out, "Repository URL (GitHub, GitLab, Bitbucket or Azure DevOps):")

	for {
		url, err := p.readLine("Enter repository URL: ")
		if err != nil {
			return "", err
		}

		if url == "" {
			fmt.Fprintln(p.out, "URL cannot be empty.")
			continue
		}
		if !model.ValidRepoURL(url) {
			fmt.Fprintln(p.out, "Not a supported Git repository URL.")
			fmt.Fprintln(p.out, "Example: https://github.com/username/your-solution")
			continue
		}

		return url, nil
	}
}

// ProjectName prompts for a project name until it satisfies GCP naming rules.
func (p *IOPrompter) ProjectName() (string, error) {
	fmt.Fprintln(p.out, "Project name (used for naming GCP resources):")

	for {
		name, err := p.readLine("Enter project name: ")
		if err != nil {
			return "", err
		}
		name = strings.ToLower(name)

		if name == "" {
			fmt.Fprintln(p.out, "Project name cannot be empty.")
			continue
		}
		if !model.ValidProjectName(name) {
			fmt.Fprintln(p.out, "Invalid name: must start with a letter, be 3-31 chars, lowercase alphanumeric and single hyphens.")
			continue
		}

		return name, nil
	}
}

// ProjectID prompts for the GCP project ID until it satisfies naming rules.
func (p *IOPrompter) ProjectID() (string, error) {
	fmt.Fprintln(p.out, "GCP project ID (an existing project with billing enabled):")

	for {
		id, err := p.readLine("Enter project ID: ")
		if err != nil {
			return "", err
		}
		id = strings.ToLower(id)

		if id == "" {
			fmt.Fprintln(p.out, "Project ID cannot be empty.")
			continue
		}
		if !model.ValidProjectName(id) {
			fmt.Fprintln(p.out, "Invalid ID: must start with a letter, lowercase alphanumeric and single hyphens.")
			continue
		}

		return id, nil
	}
}

// Region prompts for a region, returning the default on an empty answer.
func (p *IOPrompter) Region(defaultRegion string) (string, error) {
	region, err := p.readLine(fmt.Sprintf("Choose region [%s]: ", defaultRegion))
	if err != nil {
		return "", err
	}
	if region == "" {
		return defaultRegion, nil
	}
	return region, nil
}

// Confirm asks a yes/no question, defaulting to no.
func (p *IOPrompter) Confirm(message string) (bool, error) {
	fmt.Fprintln(p.out, message)

	for {
		answer, err := p.readLine("Confirm? (y/N): ")
		if err != nil {
			return false, err
		}

		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no", "":
			return false, nil
		default:
			fmt.Fprintln(p.out, "Please enter 'y' or 'n'.")
		}
	}
}

func (p *IOPrompter) readLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", fmt.Errorf("could not read input: %w", err)
		}
		return "", fmt.Errorf("input closed: %w", io.EOF)
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// Static is a Prompter with fixed answers, used for --auto mode and tests.
type Static struct {
	Repo    string
	Project string
	ID      string
	Reg     string
	Answer  bool
}

func (s Static) RepoURL() (string, error) {
	if s.Repo == "" {
		return "", fmt.Errorf("repository url is required in non-interactive mode: %w", model.ErrNotValid)
	}
	return s.Repo, nil
}

func (s Static) ProjectName() (string, error) {
	if s.Project == "" {
		return "", fmt.Errorf("project name is required in non-interactive mode: %w", model.ErrNotValid)
	}
	return s.Project, nil
}

func (s Static) ProjectID() (string, error) {
	if s.ID == "" {
		return "", fmt.Errorf("project id is required in non-interactive mode: %w", model.ErrNotValid)
	}
	return s.ID, nil
}

func (s Static) Region(defaultRegion string) (string, error) {
	if s.Reg == "" {
		return defaultRegion, nil
	}
	return s.Reg, nil
}

func (s Static) Confirm(string) (bool, error) { return s.Answer, nil }
