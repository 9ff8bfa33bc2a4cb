package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/liftoff-sh/liftoff/internal/model"
)

// TablePrinter prints deployment information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintHistory prints past deployments in a table format.
func (t *TablePrinter) PrintHistory(deployments []model.Deployment) error {
	if len(deployments) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tPROJECT\tREGION\tSTATUS\tSERVICES\tCREATED")

	for _, d := range deployments {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			d.ID, d.ProjectName, d.Region, d.Status, len(d.Services), TimeAgo(d.CreatedAt))
	}

	return nil
}

// PrintDeployment prints a detailed deployment record.
func (t *TablePrinter) PrintDeployment(d model.Deployment) error {
	fmt.Fprintf(t.writer, "ID:         %s\n", d.ID)
	fmt.Fprintf(t.writer, "Project:    %s\n", d.ProjectName)
	fmt.Fprintf(t.writer, "Repository: %s\n", d.RepoURL)
	fmt.Fprintf(t.writer, "Region:     %s\n", d.Region)
	fmt.Fprintf(t.writer, "Status:     %s\n", d.Status)
	fmt.Fprintf(t.writer, "Created:    %s\n", FormatTimestamp(d.CreatedAt))

	if d.DatabaseConnection != "" {
		fmt.Fprintf(t.writer, "Database:   %s\n", d.DatabaseConnection)
	}
	if d.CostEstimate > 0 {
		fmt.Fprintf(t.writer, "Est. cost:  $%.2f/month\n", d.CostEstimate)
	}
	if d.Error != "" {
		fmt.Fprintf(t.writer, "Error:      %s\n", d.Error)
	}

	if len(d.Services) > 0 {
		fmt.Fprintln(t.writer, "Services:")
		tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
		for _, svc := range d.Services {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", svc.Name, svc.Status, svc.URL)
		}
		tw.Flush()
	}

	return nil
}

// PrintChecks prints preflight check results.
func (t *TablePrinter) PrintChecks(results []model.CheckResult) error {
	for _, r := range results {
		fmt.Fprintf(t.writer, "  %s %-12s %s\n", statusIcon(r.Status), r.ID, r.Message)
	}
	return nil
}

// PrintMessage prints a plain message.
func (t *TablePrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.writer, msg)
	return err
}

func statusIcon(status model.CheckStatus) string {
	switch status {
	case model.CheckStatusOK:
		return "OK"
	case model.CheckStatusWarning:
		return "!!"
	case model.CheckStatusError:
		return "XX"
	default:
		return "??"
	}
}
