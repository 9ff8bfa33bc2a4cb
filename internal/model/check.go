package model

// CheckStatus is the result status of a preflight check.
type CheckStatus string

const (
	// CheckStatusOK means the check passed.
	CheckStatusOK CheckStatus = "ok"
	// CheckStatusWarning means the check passed with caveats.
	CheckStatusWarning CheckStatus = "warning"
	// CheckStatusError means the check failed.
	CheckStatusError CheckStatus = "error"
)

// CheckResult is the outcome of a single preflight check.
type CheckResult struct {
	ID      string
	Status  CheckStatus
	Message string
}
