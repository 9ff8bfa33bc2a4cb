package terraform_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftoff-sh/liftoff/internal/execx"
	"github.com/liftoff-sh/liftoff/internal/execx/fake"
	"github.com/liftoff-sh/liftoff/internal/terraform"
)

func newCLI(t *testing.T, dir string, runner *fake.Runner) *terraform.CLI {
	t.Helper()

	cli, err := terraform.NewCLI(terraform.CLIConfig{Dir: dir, Runner: runner})
	require.NoError(t, err)

	return cli
}

func TestCLIInit(t *testing.T) {
	t.Run("A clean init should run once.", func(t *testing.T) {
		assert := assert.New(t)

		runner := fake.NewRunner()
		cli := newCLI(t, t.TempDir(), runner)

		err := cli.Init(context.Background())

		assert.NoError(err)
		assert.Equal([]string{"terraform init -upgrade -reconfigure"}, runner.CallStrings())
	})

	t.Run("A failing init should force-clean local state and retry once.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		dir := t.TempDir()
		lock := filepath.Join(dir, ".terraform.lock.hcl")
		require.NoError(os.WriteFile(lock, []byte("stale"), 0644))

		runner := fake.NewRunner()
		runner.On("terraform init", fake.Response{
			Err: &execx.ExitError{Cmd: "terraform init", ExitCode: 1},
		})
		cli := newCLI(t, dir, runner)

		err := cli.Init(context.Background())

		// Both attempts fail against the fake, so init errors, but the lock
		// file is gone and the retry happened.
		assert.Error(err)
		assert.Len(runner.CallStrings(), 2)
		_, statErr := os.Stat(lock)
		assert.True(os.IsNotExist(statErr))
	})
}

func TestCLIPlan(t *testing.T) {
	tests := map[string]struct {
		response fake.Response
		expErr   bool
	}{
		"No changes (exit 0) should succeed.": {
			response: fake.Response{Result: &execx.Result{}},
		},
		"Changes present (exit 2) should succeed.": {
			response: fake.Response{
				Result: &execx.Result{ExitCode: 2},
				Err:    &execx.ExitError{Cmd: "terraform plan", ExitCode: 2},
			},
		},
		"A real failure (exit 1) should fail.": {
			response: fake.Response{
				Result: &execx.Result{ExitCode: 1},
				Err:    &execx.ExitError{Cmd: "terraform plan", ExitCode: 1},
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			runner := fake.NewRunner()
			runner.On("terraform plan", test.response)
			cli := newCLI(t, t.TempDir(), runner)

			err := cli.Plan(context.Background())

			if test.expErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}

func TestCLIDestroy(t *testing.T) {
	assert := assert.New(t)

	runner := fake.NewRunner()
	cli := newCLI(t, t.TempDir(), runner)

	err := cli.Destroy(context.Background(), &bytes.Buffer{})

	assert.NoError(err)
	assert.Equal([]string{"terraform destroy -auto-approve"}, runner.CallStrings())
}

func TestCLIOutputs(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	outputsJSON := `{
		"database_connection": {"value": "acme:us-central1:acme-shop-postgres-ab12cd"},
		"database_private_ip": {"value": "10.1.2.3"},
		"service_urls": {"value": {"shop-api": "https://shop-api-xyz.a.run.app"}},
		"random_suffix": {"value": "ab12cd"}
	}`

	runner := fake.NewRunner()
	runner.On("terraform output -json", fake.Response{
		Result: &execx.Result{Stdout: outputsJSON},
	})
	cli := newCLI(t, t.TempDir(), runner)

	outputs, err := cli.Outputs(context.Background())
	require.NoError(err)

	assert.Equal("acme:us-central1:acme-shop-postgres-ab12cd", outputs.DatabaseConnection)
	assert.Equal("10.1.2.3", outputs.DatabasePrivateIP)
	assert.Equal("ab12cd", outputs.Suffix)
	assert.Equal("https://shop-api-xyz.a.run.app", outputs.ServiceURLs["shop-api"])
}

func TestCLICleanState(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	state := filepath.Join(dir, "terraform.tfstate")
	config := filepath.Join(dir, "main.tf")
	require.NoError(os.WriteFile(state, []byte("{}"), 0644))
	require.NoError(os.WriteFile(config, []byte("resource {}"), 0644))

	cli := newCLI(t, dir, fake.NewRunner())

	require.NoError(cli.CleanState())

	// State goes, configuration stays.
	_, err := os.Stat(state)
	assert.True(os.IsNotExist(err))
	_, err = os.Stat(config)
	assert.NoError(err)
}

func TestCLIProvision(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	runner := fake.NewRunner()
	runner.On("terraform output -json", fake.Response{
		Result: &execx.Result{Stdout: `{"database_connection": {"value": "conn"}}`},
	})
	dir := t.TempDir()
	cli := newCLI(t, dir, runner)

	outputs, err := cli.Provision(context.Background(), terraform.GenerateOptions{
		ProjectID:    "acme-gcp-project",
		ProjectName:  "acme-shop",
		Region:       "us-central1",
		DatabaseTier: "db-f1-micro",
		Plan:         testPlan(),
		Suffix:       "ab12cd",
	}, &bytes.Buffer{})
	require.NoError(err)

	assert.Equal("conn", outputs.DatabaseConnection)
	// The suffix comes from generation when the outputs don't carry one.
	assert.Equal("ab12cd", outputs.Suffix)

	calls := runner.CallStrings()
	require.Len(calls, 5)
	assert.Contains(calls[0], "terraform init")
	assert.Equal("terraform validate", calls[1])
	assert.Contains(calls[2], "terraform plan")
	assert.Contains(calls[3], "terraform apply")
	assert.Equal("terraform output -json", calls[4])

	// The configuration was rendered into the working dir.
	_, err = os.Stat(filepath.Join(dir, "main.tf"))
	assert.NoError(err)
}
