package model

// TechStack is the result of inspecting a cloned repository.
type TechStack struct {
	DotnetVersion     string
	Projects          []string
	SolutionFiles     []string
	APIProjects       []APIProject
	Dockerfiles       []Dockerfile
	ComposeFiles      []string
	DatabaseType      string
	ConnectionStrings []string
	CIFiles           []string
}

// APIProject is a web-facing .NET project discovered in the repository.
type APIProject struct {
	Name       string
	Path       string
	Dockerfile string
}

// Dockerfile is a container build file discovered in the repository.
type Dockerfile struct {
	Path    string
	Project string
}

// Containerized reports whether the repository ships at least one Dockerfile.
// Cloud Run only accepts containerized workloads.
func (t TechStack) Containerized() bool {
	return len(t.Dockerfiles) > 0
}
