package printer

import "github.com/liftoff-sh/liftoff/internal/model"

// Printer knows how to print deployment information in different formats.
type Printer interface {
	PrintHistory(deployments []model.Deployment) error
	PrintDeployment(deployment model.Deployment) error
	PrintChecks(results []model.CheckResult) error
	PrintMessage(msg string) error
}
