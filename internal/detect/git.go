package detect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/liftoff-sh/liftoff/internal/execx"
)

var invalidDirChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// CloneOrUpdate clones the repository into the workspace directory, or pulls
// when a previous clone is already there. Returns the local path.
func (d *Detector) CloneOrUpdate(ctx context.Context, repoURL string) (string, error) {
	name := repoDirName(repoURL)
	path := filepath.Join(d.workDir, name)

	if err := os.MkdirAll(d.workDir, 0755); err != nil {
		return "", fmt.Errorf("could not create workspace dir: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		d.logger.Infof("Updating existing clone at %s", path)
		_, err := d.runner.Run(ctx, execx.Command{Name: "git", Args: []string{"pull"}, Dir: path})
		if err != nil {
			return "", fmt.Errorf("could not update repository: %w", err)
		}
		return path, nil
	}

	d.logger.Infof("Cloning %s into %s", repoURL, path)
	_, err := d.runner.Run(ctx, execx.Command{Name: "git", Args: []string{"clone", repoURL, path}})
	if err != nil {
		return "", fmt.Errorf("could not clone repository: %w", err)
	}

	return path, nil
}

// repoDirName derives a safe local directory name from a repository URL,
// preserving dots in repository names (e.g. My.Company.Api).
func repoDirName(repoURL string) string {
	url := strings.TrimSuffix(repoURL, ".git")
	parts := strings.Split(url, "/")
	name := parts[len(parts)-1]
	return invalidDirChars.ReplaceAllString(name, "-")
}
