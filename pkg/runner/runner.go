package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jihwankim/litmus-runner/pkg/experiment"
	"github.com/jihwankim/litmus-runner/pkg/kubectl"
	"github.com/jihwankim/litmus-runner/pkg/monitoring/probe"
	"github.com/jihwankim/litmus-runner/pkg/reporting"
)

const cleanupTimeout = 30 * time.Second

// Result is the outcome of one experiment run
type Result = reporting.ExperimentResult

// Config contains runner settings
type Config struct {
	ChaosDir        string
	NamespaceEnv    string
	LogsSince       time.Duration
	CleanupOnCancel bool
	Policy          PollPolicy
	Probes          []probe.Probe
}

// Runner deploys a chaos engine, polls it to completion and fetches the verdict
type Runner struct {
	client    *kubectl.Client
	console   *reporting.Console
	logger    *reporting.Logger
	evaluator *probe.Evaluator
	config    Config

	state State
}

// New creates a runner. evaluator may be nil, in which case probes are skipped.
func New(client *kubectl.Client, console *reporting.Console, logger *reporting.Logger, evaluator *probe.Evaluator, config Config) *Runner {
	if config.Policy.Interval <= 0 {
		config.Policy.Interval = DefaultPollPolicy().Interval
	}
	if config.LogsSince <= 0 {
		config.LogsSince = config.Policy.Interval
	}

	return &Runner{
		client:    client,
		console:   console,
		logger:    logger,
		evaluator: evaluator,
		config:    config,
	}
}

// State returns the state of the current or last run
func (r *Runner) State() State {
	return r.state
}

// Run runs one experiment. It returns ErrNotFound before touching the
// cluster when the manifest is absent.
func (r *Runner) Run(ctx context.Context, name string) (*Result, error) {
	r.state = StateNotStarted

	path, err := experiment.Find(r.config.ChaosDir, name)
	if err != nil {
		return nil, err
	}

	manifest, err := experiment.ParseFile(path)
	if err != nil {
		return nil, err
	}

	validator := experiment.NewValidator()
	if err := validator.Validate(manifest, name); err != nil {
		return nil, err
	}
	if validator.HasWarnings() {
		r.logger.Warn("Manifest has warnings", "experiment", name, "warnings", strings.Join(validator.Warnings, "; "))
	}

	engine := manifest.EngineName()
	namespace := manifest.ResolveNamespace(r.config.NamespaceEnv)
	logger := r.logger.WithFields(map[string]interface{}{
		"experiment": name,
		"engine":     engine,
	})
	if namespace == "" {
		logger.Warn("No namespace in manifest or environment, using the current kubectl context",
			"env", r.config.NamespaceEnv)
	}

	r.console.ExperimentBanner(name, time.Now())
	r.console.Print("Running Litmus ChaosEngine Experiment %s in namespace %s", name+experiment.ManifestExt, namespace)
	r.console.Print("Deploying %s...", name+experiment.ManifestExt)

	if err := r.client.DeleteChaosEngine(ctx, engine, namespace); err != nil {
		logger.Debug("Delete of previous chaos engine failed", "error", err)
	}
	if err := r.client.Create(ctx, path, namespace); err != nil {
		logger.Warn("Create of chaos engine failed", "error", err)
	}
	r.transitionState(logger, StateDeployed)

	result := &Result{
		Name:      name,
		StartTime: time.Now(),
		Engine:    engine,
		Namespace: namespace,
	}

	if err := r.poll(ctx, logger, name, engine, namespace, result); err != nil {
		r.transitionState(logger, StateAborted)
		if errors.Is(err, ErrCancelled) && r.config.CleanupOnCancel {
			r.deleteEngine(logger, engine, namespace)
		}
		return nil, err
	}
	r.transitionState(logger, StateCompleted)

	resultName := manifest.ResultName(name)
	if err := r.client.DescribeChaosResult(ctx, resultName, namespace); err != nil {
		logger.Warn("Describe of chaos result failed", "error", err)
	}

	verdict, err := r.client.ChaosResultVerdict(ctx, resultName, namespace)
	if err != nil {
		r.transitionState(logger, StateAborted)
		return nil, fmt.Errorf("failed to fetch verdict of %s: %w", name, err)
	}
	result.Status = verdict
	result.EndTime = time.Now()
	r.transitionState(logger, StateVerdictFetched)
	logger.Info("Experiment finished", "verdict", verdict, "polls", result.Polls)

	result.Probes = r.evaluateProbes(ctx, logger)

	return result, nil
}

// poll fetches the engine status until it reports Completed
func (r *Runner) poll(ctx context.Context, logger *reporting.Logger, name, engine, namespace string, result *Result) error {
	r.transitionState(logger, StatePolling)
	r.console.Print("%s Running experiment...", result.StartTime.Format(reporting.TimeLayout))

	selector := "name=" + name
	r.console.LogsStart(r.client.LogsCommand(selector, r.config.LogsSince, namespace))

	policy := r.config.Policy
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		status, err := r.client.ChaosEngineStatus(ctx, engine, namespace)
		result.Polls++
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
			}
			return fmt.Errorf("%w: %w", ErrPollFailed, err)
		}

		phase := experiment.ParsePhase(status)
		logger.Debug("Experiment status", "status", status, "phase", phase.String(), "attempt", result.Polls)
		if phase.IsTerminal() {
			break
		}

		if policy.exhausted(result.Polls, time.Since(result.StartTime)) {
			logger.Error("Poll ceiling reached", "attempts", result.Polls, "elapsed", time.Since(result.StartTime).Round(time.Second))
			return fmt.Errorf("%w: %w (last status %q)", ErrPollFailed, ErrPollTimeout, status)
		}

		if err := r.client.Logs(ctx, selector, r.config.LogsSince, namespace); err != nil {
			logger.Debug("Fetching experiment logs failed", "error", err)
		}

		if err := interruptibleSleep(ctx, policy.Interval); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
	}

	r.console.LogsEnd()
	return nil
}

// deleteEngine removes the chaos engine of an aborted run. The run's context
// is already cancelled, so a fresh bounded one is used.
func (r *Runner) deleteEngine(logger *reporting.Logger, engine, namespace string) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	logger.Info("Deleting chaos engine of cancelled run")
	if err := r.client.DeleteChaosEngine(ctx, engine, namespace); err != nil {
		logger.Warn("Failed to delete chaos engine", "error", err)
	}
}

func (r *Runner) evaluateProbes(ctx context.Context, logger *reporting.Logger) []probe.Result {
	if r.evaluator == nil || len(r.config.Probes) == 0 {
		return nil
	}

	results := r.evaluator.EvaluateAll(ctx, r.config.Probes)
	for _, res := range results {
		if res.Passed {
			logger.Info("Probe passed", "probe", res.Name, "message", res.Message)
		} else {
			logger.Warn("Probe failed", "probe", res.Name, "critical", res.Critical, "message", res.Message)
		}
	}
	if !probe.CriticalPassed(results) {
		logger.Warn("Critical probes failed after chaos")
	}

	return results
}

func (r *Runner) transitionState(logger *reporting.Logger, newState State) {
	logger.Debug("State transition", "from", r.state.String(), "to", newState.String())
	r.state = newState
}
