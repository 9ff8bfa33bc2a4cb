package detect_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftoff-sh/liftoff/internal/detect"
	"github.com/liftoff-sh/liftoff/internal/execx/fake"
)

const webCsproj = `<Project Sdk="Microsoft.NET.Sdk.Web">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
  </PropertyGroup>
  <ItemGroup>
    <PackageReference Include="Npgsql.EntityFrameworkCore.PostgreSQL" Version="8.0.0" />
  </ItemGroup>
</Project>`

const libraryCsproj = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
  </PropertyGroup>
</Project>`

const appsettings = `{
  "ConnectionStrings": {
    "DefaultConnection": "Host=localhost;Database=shop;Username=dev"
  },
  "ConnectionString": "Host=localhost;Database=shop;Username=dev;Password=secret"
}`

func newDetector(t *testing.T) *detect.Detector {
	t.Helper()

	d, err := detect.NewDetector(detect.DetectorConfig{
		Runner:  fake.NewRunner(),
		WorkDir: t.TempDir(),
	})
	require.NoError(t, err)

	return d
}

// writeRepo lays out a fake repository in a temp dir.
func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}

	return root
}

func TestDetectorDetect(t *testing.T) {
	t.Run("A solution with a containerized web API should be fully detected.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		repo := writeRepo(t, map[string]string{
			"Shop.sln":                          "",
			"src/Shop.Api/Shop.Api.csproj":      webCsproj,
			"src/Shop.Api/Dockerfile":           "FROM mcr.microsoft.com/dotnet/aspnet:8.0",
			"src/Shop.Api/appsettings.json":     appsettings,
			"src/Shop.Core/Shop.Core.csproj":    libraryCsproj,
			"docker-compose.yml":                "services: {}",
			".github/workflows/ci.yml":          "on: push",
			".git/config":                       "ignored",
		})

		stack, err := newDetector(t).Detect(repo)
		require.NoError(err)

		assert.Equal("8.0", stack.DotnetVersion)
		assert.Len(stack.Projects, 2)
		assert.Equal([]string{"Shop.sln"}, stack.SolutionFiles)
		require.Len(stack.APIProjects, 1)
		assert.Equal("Shop.Api", stack.APIProjects[0].Name)
		assert.Equal(filepath.Join("src", "Shop.Api", "Dockerfile"), stack.APIProjects[0].Dockerfile)
		assert.True(stack.Containerized())
		assert.Equal("postgresql", stack.DatabaseType)
		assert.Len(stack.ComposeFiles, 1)
		assert.Len(stack.CIFiles, 1)
		assert.NotEmpty(stack.ConnectionStrings)
	})

	t.Run("A class library without web markers should not become a service.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		repo := writeRepo(t, map[string]string{
			"src/Shop.Core/Shop.Core.csproj": libraryCsproj,
		})

		stack, err := newDetector(t).Detect(repo)
		require.NoError(err)

		assert.Empty(stack.APIProjects)
		assert.False(stack.Containerized())
	})

	t.Run("A Controllers directory should mark a project as web even without the web SDK.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		repo := writeRepo(t, map[string]string{
			"src/Shop.Mvc/Shop.Mvc.csproj":            libraryCsproj,
			"src/Shop.Mvc/Controllers/HomeController.cs": "class HomeController {}",
		})

		stack, err := newDetector(t).Detect(repo)
		require.NoError(err)

		require.Len(stack.APIProjects, 1)
		assert.Equal("Shop.Mvc", stack.APIProjects[0].Name)
	})

	t.Run("An empty repository should fall back to the postgres default.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		stack, err := newDetector(t).Detect(writeRepo(t, map[string]string{"README.md": "hi"}))
		require.NoError(err)

		assert.Equal("postgresql", stack.DatabaseType)
		assert.Empty(stack.Projects)
	})

	t.Run("SQL Server package references should set the database type.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		csproj := `<Project Sdk="Microsoft.NET.Sdk.Web">
  <PropertyGroup><TargetFramework>net6.0</TargetFramework></PropertyGroup>
  <ItemGroup>
    <PackageReference Include="Microsoft.EntityFrameworkCore.SqlServer" Version="6.0.0" />
  </ItemGroup>
</Project>`
		repo := writeRepo(t, map[string]string{
			"src/Shop.Api/Shop.Api.csproj": csproj,
		})

		stack, err := newDetector(t).Detect(repo)
		require.NoError(err)

		assert.Equal("sqlserver", stack.DatabaseType)
		assert.Equal("6.0", stack.DotnetVersion)
	})
}

func TestDetectorCloneOrUpdate(t *testing.T) {
	t.Run("A new repository should be cloned.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		runner := fake.NewRunner()
		workDir := t.TempDir()
		d, err := detect.NewDetector(detect.DetectorConfig{Runner: runner, WorkDir: workDir})
		require.NoError(err)

		path, err := d.CloneOrUpdate(context.Background(), "https://github.com/acme/shop.git")
		require.NoError(err)

		assert.Equal(filepath.Join(workDir, "shop"), path)
		calls := runner.CallStrings()
		require.Len(calls, 1)
		assert.Contains(calls[0], "git clone https://github.com/acme/shop.git")
	})

	t.Run("An existing clone should be pulled instead.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		runner := fake.NewRunner()
		workDir := t.TempDir()
		require.NoError(os.MkdirAll(filepath.Join(workDir, "shop"), 0755))

		d, err := detect.NewDetector(detect.DetectorConfig{Runner: runner, WorkDir: workDir})
		require.NoError(err)

		path, err := d.CloneOrUpdate(context.Background(), "https://github.com/acme/shop.git")
		require.NoError(err)

		assert.Equal(filepath.Join(workDir, "shop"), path)
		calls := runner.Calls()
		require.Len(calls, 1)
		assert.Equal([]string{"pull"}, calls[0].Args)
		assert.Equal(path, calls[0].Dir)
	})

	t.Run("Dots in repository names should be preserved.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		workDir := t.TempDir()
		d, err := detect.NewDetector(detect.DetectorConfig{Runner: fake.NewRunner(), WorkDir: workDir})
		require.NoError(err)

		path, err := d.CloneOrUpdate(context.Background(), "https://github.com/acme/My.Company.Api.git")
		require.NoError(err)

		assert.Equal(filepath.Join(workDir, "My.Company.Api"), path)
	})
}
