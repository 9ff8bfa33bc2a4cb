package gcloud_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftoff-sh/liftoff/internal/execx"
	"github.com/liftoff-sh/liftoff/internal/execx/fake"
	"github.com/liftoff-sh/liftoff/internal/gcloud"
)

func newClient(t *testing.T, runner *fake.Runner) *gcloud.Client {
	t.Helper()

	client, err := gcloud.NewClient(gcloud.ClientConfig{Runner: runner})
	require.NoError(t, err)

	return client
}

func TestClientCurrentProject(t *testing.T) {
	tests := map[string]struct {
		stdout     string
		expProject string
	}{
		"A configured project should be returned trimmed.": {
			stdout:     "acme-gcp-project\n",
			expProject: "acme-gcp-project",
		},
		"An unset project should map to empty.": {
			stdout:     "(unset)\n",
			expProject: "",
		},
		"Empty output should map to empty.": {
			stdout:     "",
			expProject: "",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			runner := fake.NewRunner()
			runner.On("gcloud config get-value project", fake.Response{
				Result: &execx.Result{Stdout: test.stdout},
			})

			project, err := newClient(t, runner).CurrentProject(context.Background())

			assert.NoError(err)
			assert.Equal(test.expProject, project)
		})
	}
}

func TestClientEnableServices(t *testing.T) {
	t.Run("All required services should be enabled in order.", func(t *testing.T) {
		assert := assert.New(t)

		runner := fake.NewRunner()
		client := newClient(t, runner)

		err := client.EnableServices(context.Background(), "acme-gcp-project", gcloud.RequiredServices)

		assert.NoError(err)
		calls := runner.CallStrings()
		assert.Len(calls, len(gcloud.RequiredServices))
		assert.Equal("gcloud services enable compute.googleapis.com --project=acme-gcp-project --quiet", calls[0])
		assert.Equal("gcloud services enable run.googleapis.com --project=acme-gcp-project --quiet", calls[2])
	})

	t.Run("A failing service should abort the remaining ones.", func(t *testing.T) {
		assert := assert.New(t)

		runner := fake.NewRunner()
		runner.On("gcloud services enable sqladmin.googleapis.com", fake.Response{
			Err: fmt.Errorf("permission denied"),
		})
		client := newClient(t, runner)

		err := client.EnableServices(context.Background(), "acme-gcp-project", gcloud.RequiredServices)

		assert.Error(err)
		// compute succeeded, sqladmin failed, nothing after it ran.
		assert.Len(runner.CallStrings(), 2)
	})
}

func TestClientBuildSubmit(t *testing.T) {
	assert := assert.New(t)

	runner := fake.NewRunner()
	client := newClient(t, runner)
	var out bytes.Buffer

	err := client.BuildSubmit(context.Background(), "acme-gcp-project",
		"us-central1-docker.pkg.dev/acme-gcp-project/acme-repo/shop-api:latest", "/work/shop/src/Shop.Api", &out)

	assert.NoError(err)
	calls := runner.CallStrings()
	require.Len(t, calls, 1)
	assert.Equal("gcloud builds submit --tag=us-central1-docker.pkg.dev/acme-gcp-project/acme-repo/shop-api:latest --project=acme-gcp-project /work/shop/src/Shop.Api", calls[0])
}

func TestClientRunDeploy(t *testing.T) {
	assert := assert.New(t)

	runner := fake.NewRunner()
	client := newClient(t, runner)

	err := client.RunDeploy(context.Background(), gcloud.RunDeployOptions{
		ServiceName:  "shop-api-ab12cd",
		Image:        "us-central1-docker.pkg.dev/acme/repo/shop-api:latest",
		ProjectID:    "acme-gcp-project",
		Region:       "us-central1",
		CPU:          "1",
		Memory:       "1Gi",
		MaxInstances: 5,
		MinInstances: 0,
	}, &bytes.Buffer{})

	assert.NoError(err)
	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal("gcloud", calls[0].Name)
	assert.Contains(calls[0].Args, "--allow-unauthenticated")
	assert.Contains(calls[0].Args, "--platform=managed")
	assert.Contains(calls[0].Args, "--memory=1Gi")
	assert.Contains(calls[0].Args, "--cpu=1")
	assert.Contains(calls[0].Args, "--max-instances=5")
	assert.Contains(calls[0].Args, "--min-instances=0")
}

func TestClientServiceURL(t *testing.T) {
	assert := assert.New(t)

	runner := fake.NewRunner()
	runner.On("gcloud run services describe shop-api-ab12cd", fake.Response{
		Result: &execx.Result{Stdout: "https://shop-api-ab12cd-xyz.a.run.app\n"},
	})
	client := newClient(t, runner)

	url, err := client.ServiceURL(context.Background(), "shop-api-ab12cd", "acme-gcp-project", "us-central1")

	assert.NoError(err)
	assert.Equal("https://shop-api-ab12cd-xyz.a.run.app", url)
}

func TestClientReadLogs(t *testing.T) {
	assert := assert.New(t)

	runner := fake.NewRunner()
	client := newClient(t, runner)
	var out bytes.Buffer

	err := client.ReadLogs(context.Background(), "acme-gcp-project", 50, &out)

	assert.NoError(err)
	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Contains(calls[0].Args, "resource.type=cloud_run_revision")
	assert.Contains(calls[0].Args, "--limit=50")
	assert.Contains(calls[0].Args, "--project=acme-gcp-project")
}
