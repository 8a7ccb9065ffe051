package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/jihwankim/litmus-runner/pkg/experiment"
)

// AllExperiments selects every experiment in the chaos directory
const AllExperiments = "*"

// BatchOptions selects the experiments of a test run
type BatchOptions struct {
	// Test is an experiment name or AllExperiments
	Test string

	// Wait is the pause between consecutive experiments
	Wait time.Duration

	Type experiment.ChaosType
}

// Select resolves the experiments a batch would run, in order
func (r *Runner) Select(opts BatchOptions) ([]string, error) {
	if opts.Type == "" {
		opts.Type = experiment.TypeAll
	}

	if opts.Test != AllExperiments {
		if !opts.Type.Matches(opts.Test) {
			r.logger.Warn("Experiment does not match the requested chaos type, running it anyway",
				"experiment", opts.Test, "type", string(opts.Type))
		}
		return []string{opts.Test}, nil
	}

	names, err := experiment.List(r.config.ChaosDir)
	if err != nil {
		return nil, err
	}

	selected := experiment.Filter(names, opts.Type)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no %s experiments found in %s", opts.Type, r.config.ChaosDir)
	}
	return selected, nil
}

// RunBatch runs the selected experiments one after another, waiting between
// them. It stops at the first error and returns the results collected so far.
func (r *Runner) RunBatch(ctx context.Context, opts BatchOptions) ([]Result, error) {
	names, err := r.Select(opts)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Starting test run", "experiments", len(names), "type", string(opts.Type))

	results := make([]Result, 0, len(names))
	for i, name := range names {
		if i > 0 && opts.Wait > 0 {
			r.console.Print("Waiting %s before the next experiment...", opts.Wait)
			if err := interruptibleSleep(ctx, opts.Wait); err != nil {
				return results, fmt.Errorf("%w: %w", ErrCancelled, err)
			}
		}

		result, err := r.Run(ctx, name)
		if err != nil {
			return results, err
		}
		results = append(results, *result)
	}

	return results, nil
}
