package conventions

import (
	"os"
	"path/filepath"
)

const (
	// DefaultDataDir is the default liftoff data directory name (relative to home).
	DefaultDataDir = ".liftoff"
	// DBFile is the deployment history database filename.
	DBFile = "liftoff.db"

	// ConfigFile is the project configuration file, created by `liftoff setup`.
	ConfigFile = "liftoff.yaml"

	// OutputsDir holds everything liftoff generates for a deployment.
	OutputsDir = "outputs"
	// TerraformDirName is the subdirectory with generated Terraform.
	TerraformDirName = "terraform"

	// WorkspaceDirName is the temp directory where repositories are cloned.
	WorkspaceDirName = "liftoff-workspace"
)

// TerraformDir returns the directory with the generated Terraform configuration.
func TerraformDir() string {
	return filepath.Join(OutputsDir, TerraformDirName)
}

// WorkspaceDir returns the directory where repositories are cloned.
func WorkspaceDir() string {
	return filepath.Join(os.TempDir(), WorkspaceDirName)
}

// CleanDirs returns the fixed list of generated/cache directories removed by
// `liftoff clean`.
func CleanDirs() []string {
	return []string{
		OutputsDir,
		WorkspaceDir(),
	}
}
