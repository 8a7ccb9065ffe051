// Package kubectltest provides a recording kubectl.Runner for tests.
package kubectltest

import (
	"context"
	"strings"
	"sync"
)

// Call is one recorded invocation
type Call struct {
	Method string
	Args   []string
}

// String renders the call as "<method>: <args>"
func (c Call) String() string {
	return c.Method + ": " + strings.Join(c.Args, " ")
}

// Runner records every invocation and answers from scripted functions.
// A nil OutputFunc yields empty output; a nil RunFunc yields success.
type Runner struct {
	OutputFunc func(args []string) (string, error)
	RunFunc    func(args []string) error

	mu    sync.Mutex
	calls []Call
}

// Run records the call and returns RunFunc's answer
func (r *Runner) Run(ctx context.Context, args ...string) error {
	r.record("run", args)
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.RunFunc == nil {
		return nil
	}
	return r.RunFunc(args)
}

// Output records the call and returns OutputFunc's answer
func (r *Runner) Output(ctx context.Context, args ...string) (string, error) {
	r.record("output", args)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.OutputFunc == nil {
		return "", nil
	}
	return r.OutputFunc(args)
}

// Calls returns a copy of the recorded calls
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	calls := make([]Call, len(r.calls))
	copy(calls, r.calls)
	return calls
}

// Lines returns the recorded calls rendered with Call.String
func (r *Runner) Lines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Count returns how many calls contain all of the given arguments
func (r *Runner) Count(args ...string) int {
	n := 0
	for _, c := range r.Calls() {
		if containsAll(c.Args, args) {
			n++
		}
	}
	return n
}

func (r *Runner) record(method string, args []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, Call{Method: method, Args: append([]string(nil), args...)})
}

func containsAll(haystack, needles []string) bool {
	for _, n := range needles {
		found := false
		for _, h := range haystack {
			if h == n {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Has reports whether args contains every needle
func Has(args []string, needles ...string) bool {
	return containsAll(args, needles)
}
