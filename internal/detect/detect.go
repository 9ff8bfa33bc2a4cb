// Package detect clones a target repository and inspects it for the .NET
// projects, Dockerfiles and database dependencies that drive the deployment
// plan.
package detect

import (
	"encoding/xml"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/liftoff-sh/liftoff/internal/execx"
	"github.com/liftoff-sh/liftoff/internal/log"
	"github.com/liftoff-sh/liftoff/internal/model"
)

// DetectorConfig is the configuration for the detector.
type DetectorConfig struct {
	Runner execx.Runner
	// WorkDir is where repositories are cloned.
	WorkDir string
	Logger  log.Logger
}

func (c *DetectorConfig) defaults() error {
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.WorkDir == "" {
		return fmt.Errorf("work dir is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "detect.Detector"})
	return nil
}

// Detector inspects repositories for their tech stack.
type Detector struct {
	runner  execx.Runner
	workDir string
	logger  log.Logger
}

// NewDetector creates a new detector.
func NewDetector(cfg DetectorConfig) (*Detector, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Detector{
		runner:  cfg.Runner,
		workDir: cfg.WorkDir,
		logger:  cfg.Logger,
	}, nil
}

// Detect walks the repository and returns the detected stack.
func (d *Detector) Detect(repoPath string) (*model.TechStack, error) {
	stack := &model.TechStack{
		DatabaseType: "postgresql", // Default when nothing else is found.
	}

	var csprojPaths []string
	var appsettingsPaths []string

	err := filepath.WalkDir(repoPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if entry.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(repoPath, path)
		if err != nil {
			return err
		}

		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".csproj"):
			csprojPaths = append(csprojPaths, path)
			stack.Projects = append(stack.Projects, rel)
		case strings.HasSuffix(name, ".sln"):
			stack.SolutionFiles = append(stack.SolutionFiles, rel)
		case strings.HasPrefix(name, "Dockerfile"):
			stack.Dockerfiles = append(stack.Dockerfiles, model.Dockerfile{
				Path:    rel,
				Project: projectForDockerfile(path),
			})
		case strings.HasPrefix(name, "docker-compose") && strings.HasSuffix(name, ".yml"):
			stack.ComposeFiles = append(stack.ComposeFiles, rel)
		case strings.HasPrefix(name, "appsettings") && strings.HasSuffix(name, ".json"):
			appsettingsPaths = append(appsettingsPaths, path)
		case name == "azure-pipelines.yml" || name == ".gitlab-ci.yml":
			stack.CIFiles = append(stack.CIFiles, rel)
		case strings.HasSuffix(name, ".yml") && strings.Contains(rel, filepath.Join(".github", "workflows")):
			stack.CIFiles = append(stack.CIFiles, rel)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not walk repository: %w", err)
	}

	stack.DotnetVersion = dotnetVersion(csprojPaths)

	for _, csproj := range csprojPaths {
		proj, ok := d.analyzeProject(repoPath, csproj)
		if ok {
			stack.APIProjects = append(stack.APIProjects, proj)
		}
	}

	if dbType := databaseType(append(csprojPaths, appsettingsPaths...)); dbType != "" {
		stack.DatabaseType = dbType
	}
	stack.ConnectionStrings = connectionStrings(appsettingsPaths)

	d.logger.Infof("Detected %d API projects, %d Dockerfiles, database %s",
		len(stack.APIProjects), len(stack.Dockerfiles), stack.DatabaseType)

	return stack, nil
}

// csprojXML is the subset of the MSBuild project file format we care about.
type csprojXML struct {
	SDK            string `xml:"Sdk,attr"`
	PropertyGroups []struct {
		TargetFramework string `xml:"TargetFramework"`
	} `xml:"PropertyGroup"`
}

// analyzeProject decides whether a csproj is a deployable web project.
func (d *Detector) analyzeProject(repoPath, csprojPath string) (model.APIProject, bool) {
	proj := model.APIProject{
		Name: strings.TrimSuffix(filepath.Base(csprojPath), ".csproj"),
		Path: filepath.Dir(csprojPath),
	}

	content, err := os.ReadFile(csprojPath)
	if err != nil {
		d.logger.Warningf("Could not read %s: %s", csprojPath, err)
		return proj, false
	}

	isWeb := false
	for _, marker := range []string{"Microsoft.NET.Sdk.Web", "Microsoft.AspNetCore", "WebApplication"} {
		if strings.Contains(string(content), marker) {
			isWeb = true
			break
		}
	}
	// MVC/Web API layout without an explicit web SDK reference.
	if !isWeb {
		if info, err := os.Stat(filepath.Join(filepath.Dir(csprojPath), "Controllers")); err == nil && info.IsDir() {
			isWeb = true
		}
	}
	if !isWeb {
		return proj, false
	}

	if df := dockerfileFor(filepath.Dir(csprojPath)); df != "" {
		rel, err := filepath.Rel(repoPath, df)
		if err == nil {
			proj.Dockerfile = rel
		}
	}

	return proj, true
}

// dotnetVersion extracts the target framework version from the first parsable
// project files, defaulting to the current LTS.
func dotnetVersion(csprojPaths []string) string {
	limit := len(csprojPaths)
	if limit > 3 {
		limit = 3
	}

	for _, path := range csprojPaths[:limit] {
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var proj csprojXML
		if err := xml.Unmarshal(content, &proj); err != nil {
			continue
		}

		for _, pg := range proj.PropertyGroups {
			if pg.TargetFramework != "" {
				return strings.ToLower(strings.TrimPrefix(pg.TargetFramework, "net"))
			}
		}
	}

	return "8.0"
}

func dockerfileFor(projectDir string) string {
	matches, _ := filepath.Glob(filepath.Join(projectDir, "Dockerfile*"))
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}

func projectForDockerfile(dockerfilePath string) string {
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(dockerfilePath), "*.csproj"))
	if len(matches) > 0 {
		return strings.TrimSuffix(filepath.Base(matches[0]), ".csproj")
	}
	return ""
}

// databaseType guesses the database engine from package references and
// configuration files.
func databaseType(paths []string) string {
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		lower := strings.ToLower(string(content))

		switch {
		case strings.Contains(lower, "npgsql") || strings.Contains(lower, "postgresql"):
			return "postgresql"
		case strings.Contains(lower, "microsoft.entityframeworkcore.sqlserver"):
			return "sqlserver"
		case strings.Contains(lower, "mysql") || strings.Contains(lower, "mariadb"):
			return "mysql"
		case strings.Contains(lower, "sqlite"):
			return "sqlite"
		}
	}
	return ""
}

var connStringRegexp = regexp.MustCompile(`(?i)connectionstring["']?\s*:\s*["']([^"']+)`)

func connectionStrings(appsettingsPaths []string) []string {
	var out []string
	for _, path := range appsettingsPaths {
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		for _, m := range connStringRegexp.FindAllStringSubmatch(string(content), -1) {
			out = append(out, m[1])
		}
	}
	return out
}
