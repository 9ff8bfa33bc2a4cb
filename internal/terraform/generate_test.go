package terraform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftoff-sh/liftoff/internal/model"
	"github.com/liftoff-sh/liftoff/internal/terraform"
)

func testPlan() model.Plan {
	return model.Plan{
		ProjectName: "acme-shop",
		Region:      "us-central1",
		Database:    model.DatabasePlan{InstanceName: "acme-shop-postgres", Tier: "db-f1-micro", DatabaseName: "appdb"},
		Registry:    model.RegistryPlan{Repository: "acme-shop-repo", Format: "DOCKER"},
		Services: []model.PlannedService{
			{Name: "shop-api", CPU: "1", Memory: "1Gi", MaxInstances: 5},
		},
	}
}

func TestGenerate(t *testing.T) {
	t.Run("All configuration files should be rendered.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		dir := t.TempDir()
		suffix, err := terraform.Generate(terraform.GenerateOptions{
			Dir:          dir,
			ProjectID:    "acme-gcp-project",
			ProjectName:  "acme-shop",
			Region:       "us-central1",
			DatabaseTier: "db-f1-micro",
			Plan:         testPlan(),
		})
		require.NoError(err)

		assert.Len(suffix, 6)
		for _, name := range []string{"main.tf", "versions.tf", "variables.tf"} {
			_, err := os.Stat(filepath.Join(dir, name))
			assert.NoError(err, name)
		}

		main, err := os.ReadFile(filepath.Join(dir, "main.tf"))
		require.NoError(err)
		// Service resources use underscored Terraform names but hyphenated
		// Cloud Run names.
		assert.Contains(string(main), "google_cloud_run_service\" \"shop_api\"")
		assert.Contains(string(main), "shop-api-"+suffix)
		assert.Contains(string(main), "google_sql_database_instance")
		assert.Contains(string(main), "google_artifact_registry_repository")
	})

	t.Run("A given suffix should be reused instead of generating one.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		dir := t.TempDir()
		suffix, err := terraform.Generate(terraform.GenerateOptions{
			Dir:         dir,
			ProjectID:   "acme-gcp-project",
			ProjectName: "acme-shop",
			Region:      "us-central1",
			Plan:        testPlan(),
			Suffix:      "ab12cd",
		})
		require.NoError(err)

		assert.Equal("ab12cd", suffix)
	})

	t.Run("An invalid plan should fail before touching the filesystem.", func(t *testing.T) {
		assert := assert.New(t)

		dir := filepath.Join(t.TempDir(), "tf")
		_, err := terraform.Generate(terraform.GenerateOptions{
			Dir:  dir,
			Plan: model.Plan{},
		})

		assert.Error(err)
		_, statErr := os.Stat(dir)
		assert.True(os.IsNotExist(statErr))
	})

	t.Run("A missing dir option should fail.", func(t *testing.T) {
		assert := assert.New(t)

		_, err := terraform.Generate(terraform.GenerateOptions{Plan: testPlan()})

		assert.Error(err)
	})

	t.Run("Regenerating should overwrite the previous configuration.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		dir := t.TempDir()
		opts := terraform.GenerateOptions{
			Dir:         dir,
			ProjectID:   "acme-gcp-project",
			ProjectName: "acme-shop",
			Region:      "us-central1",
			Plan:        testPlan(),
			Suffix:      "first1",
		}
		_, err := terraform.Generate(opts)
		require.NoError(err)

		opts.Suffix = "second"
		_, err = terraform.Generate(opts)
		require.NoError(err)

		main, err := os.ReadFile(filepath.Join(dir, "main.tf"))
		require.NoError(err)
		assert.Contains(string(main), "second")
		assert.NotContains(string(main), "first1")
	})
}
