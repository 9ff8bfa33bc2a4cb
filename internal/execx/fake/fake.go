package fake

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/liftoff-sh/liftoff/internal/execx"
)

// Response is a canned response for a command prefix.
type Response struct {
	Result *execx.Result
	Err    error
}

// Runner is a fake implementation of execx.Runner that records every
// invocation and replies with canned responses matched by command prefix.
type Runner struct {
	responses map[string]Response
	calls     []execx.Command
	mu        sync.Mutex
}

// NewRunner creates a new fake runner.
func NewRunner() *Runner {
	return &Runner{
		responses: map[string]Response{},
	}
}

// On registers a canned response for every command whose
// "name arg0 arg1 ..." string starts with the given prefix.
func (r *Runner) On(prefix string, res Response) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[prefix] = res
}

// Run records the call and returns the first canned response whose prefix
// matches. Unmatched commands succeed with an empty result.
func (r *Runner) Run(ctx context.Context, cmd execx.Command) (*execx.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, cmd)

	full := commandString(cmd)
	var bestPrefix string
	for prefix := range r.responses {
		if strings.HasPrefix(full, prefix) && len(prefix) > len(bestPrefix) {
			bestPrefix = prefix
		}
	}
	if bestPrefix != "" {
		res := r.responses[bestPrefix]
		if res.Result == nil {
			res.Result = &execx.Result{}
		}
		return res.Result, res.Err
	}

	return &execx.Result{}, nil
}

// Calls returns the recorded invocations.
func (r *Runner) Calls() []execx.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := make([]execx.Command, len(r.calls))
	copy(calls, r.calls)
	return calls
}

// CallStrings returns the recorded invocations as "name arg..." strings.
func (r *Runner) CallStrings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, commandString(c))
	}
	return out
}

func commandString(cmd execx.Command) string {
	if len(cmd.Args) == 0 {
		return cmd.Name
	}
	return fmt.Sprintf("%s %s", cmd.Name, strings.Join(cmd.Args, " "))
}
