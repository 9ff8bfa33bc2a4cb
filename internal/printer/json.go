package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/liftoff-sh/liftoff/internal/model"
)

// JSONPrinter prints deployment information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// historyItem represents a deployment in the history output (subset of fields).
type historyItem struct {
	ID          string    `json:"id"`
	ProjectName string    `json:"project_name"`
	Region      string    `json:"region"`
	Status      string    `json:"status"`
	Services    int       `json:"services"`
	CreatedAt   time.Time `json:"created_at"`
}

// deploymentOutput represents the full deployment record output.
type deploymentOutput struct {
	ID                 string          `json:"id"`
	ProjectName        string          `json:"project_name"`
	RepoURL            string          `json:"repo_url"`
	Region             string          `json:"region"`
	Status             string          `json:"status"`
	Services           []serviceOutput `json:"services"`
	DatabaseConnection string          `json:"database_connection,omitempty"`
	CostEstimate       float64         `json:"cost_estimate"`
	Error              string          `json:"error,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// serviceOutput represents a deployed service output.
type serviceOutput struct {
	Name   string `json:"name"`
	URL    string `json:"url,omitempty"`
	Image  string `json:"image,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// checkOutput represents a preflight check output.
type checkOutput struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintHistory prints deployments in JSON format with a subset of fields.
func (j *JSONPrinter) PrintHistory(deployments []model.Deployment) error {
	items := make([]historyItem, len(deployments))
	for i, d := range deployments {
		items[i] = historyItem{
			ID:          d.ID,
			ProjectName: d.ProjectName,
			Region:      d.Region,
			Status:      string(d.Status),
			Services:    len(d.Services),
			CreatedAt:   d.CreatedAt,
		}
	}
	return j.print(items)
}

// PrintDeployment prints the full deployment record in JSON format.
func (j *JSONPrinter) PrintDeployment(d model.Deployment) error {
	out := deploymentOutput{
		ID:                 d.ID,
		ProjectName:        d.ProjectName,
		RepoURL:            d.RepoURL,
		Region:             d.Region,
		Status:             string(d.Status),
		DatabaseConnection: d.DatabaseConnection,
		CostEstimate:       d.CostEstimate,
		Error:              d.Error,
		CreatedAt:          d.CreatedAt,
	}
	for _, svc := range d.Services {
		out.Services = append(out.Services, serviceOutput{
			Name:   svc.Name,
			URL:    svc.URL,
			Image:  svc.Image,
			Status: svc.Status,
			Error:  svc.Error,
		})
	}
	return j.print(out)
}

// PrintChecks prints preflight check results in JSON format.
func (j *JSONPrinter) PrintChecks(results []model.CheckResult) error {
	out := make([]checkOutput, len(results))
	for i, r := range results {
		out[i] = checkOutput{ID: r.ID, Status: string(r.Status), Message: r.Message}
	}
	return j.print(out)
}

// PrintMessage prints a message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.print(messageOutput{Message: msg})
}

func (j *JSONPrinter) print(v interface{}) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
