package ops_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftoff-sh/liftoff/internal/ops"
)

func TestNewRunner(t *testing.T) {
	noop := func(ctx context.Context) error { return nil }

	tests := map[string]struct {
		operations []ops.Operation
		expErr     bool
	}{
		"Valid operations should create the runner.": {
			operations: []ops.Operation{
				{Name: "a", Run: noop},
				{Name: "b", Needs: []string{"a"}, Run: noop},
			},
			expErr: false,
		},
		"No operations should fail.": {
			operations: []ops.Operation{},
			expErr:     true,
		},
		"An operation without name should fail.": {
			operations: []ops.Operation{
				{Run: noop},
			},
			expErr: true,
		},
		"An operation without run func should fail.": {
			operations: []ops.Operation{
				{Name: "a"},
			},
			expErr: true,
		},
		"Duplicated operation names should fail.": {
			operations: []ops.Operation{
				{Name: "a", Run: noop},
				{Name: "a", Run: noop},
			},
			expErr: true,
		},
		"A dependency on an unknown operation should fail.": {
			operations: []ops.Operation{
				{Name: "a", Needs: []string{"missing"}, Run: noop},
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			runner, err := ops.NewRunner(ops.RunnerConfig{Operations: test.operations})

			if test.expErr {
				require.Error(err)
				require.Nil(runner)
			} else {
				require.NoError(err)
				require.NotNil(runner)
			}
		})
	}
}

func TestRunnerRun(t *testing.T) {
	tests := map[string]struct {
		operations func(executed *[]string) []ops.Operation
		run        string
		expOrder   []string
		expErr     bool
	}{
		"Dependencies should run before the requested operation, in order.": {
			operations: func(executed *[]string) []ops.Operation {
				return []ops.Operation{
					record(executed, "install", nil),
					record(executed, "setup", nil),
					record(executed, "deploy", nil, "install", "setup"),
				}
			},
			run:      "deploy",
			expOrder: []string{"install", "setup", "deploy"},
		},

		"Shared dependencies should run only once.": {
			operations: func(executed *[]string) []ops.Operation {
				return []ops.Operation{
					record(executed, "base", nil),
					record(executed, "left", nil, "base"),
					record(executed, "right", nil, "base"),
					record(executed, "top", nil, "left", "right"),
				}
			},
			run:      "top",
			expOrder: []string{"base", "left", "right", "top"},
		},

		"A failing dependency should stop the chain.": {
			operations: func(executed *[]string) []ops.Operation {
				return []ops.Operation{
					record(executed, "install", fmt.Errorf("gcloud missing")),
					record(executed, "setup", nil),
					record(executed, "deploy", nil, "install", "setup"),
				}
			},
			run:      "deploy",
			expOrder: []string{"install"},
			expErr:   true,
		},

		"Running an unknown operation should fail.": {
			operations: func(executed *[]string) []ops.Operation {
				return []ops.Operation{
					record(executed, "a", nil),
				}
			},
			run:      "missing",
			expOrder: []string{},
			expErr:   true,
		},

		"A dependency cycle should fail instead of looping.": {
			operations: func(executed *[]string) []ops.Operation {
				return []ops.Operation{
					{Name: "a", Needs: []string{"b"}, Run: func(ctx context.Context) error { *executed = append(*executed, "a"); return nil }},
					{Name: "b", Needs: []string{"a"}, Run: func(ctx context.Context) error { *executed = append(*executed, "b"); return nil }},
				}
			},
			run:      "a",
			expOrder: []string{},
			expErr:   true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			executed := []string{}
			runner, err := ops.NewRunner(ops.RunnerConfig{Operations: test.operations(&executed)})
			require.NoError(err)

			err = runner.Run(context.Background(), test.run)

			if test.expErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
			assert.Equal(test.expOrder, executed)
		})
	}
}

func TestRunnerRunCancelledContext(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	executed := false
	runner, err := ops.NewRunner(ops.RunnerConfig{Operations: []ops.Operation{
		{Name: "deploy", Run: func(ctx context.Context) error { executed = true; return nil }},
	}})
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = runner.Run(ctx, "deploy")

	assert.Error(err)
	assert.False(executed)
}

func record(executed *[]string, name string, err error, needs ...string) ops.Operation {
	return ops.Operation{
		Name:  name,
		Needs: needs,
		Run: func(ctx context.Context) error {
			*executed = append(*executed, name)
			return err
		},
	}
}
