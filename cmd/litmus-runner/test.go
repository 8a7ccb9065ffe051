package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jihwankim/litmus-runner/pkg/experiment"
	"github.com/jihwankim/litmus-runner/pkg/monitoring/probe"
	"github.com/jihwankim/litmus-runner/pkg/monitoring/prometheus"
	"github.com/jihwankim/litmus-runner/pkg/reporting"
	"github.com/jihwankim/litmus-runner/pkg/runner"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Args:  cobra.NoArgs,
	Short: "Run Litmus ChaosEngine experiments inside litmus demo environment",
	Long: `Runs one experiment, or every experiment in the chaos directory, one after
another. Each experiment is deployed as a ChaosEngine, polled until it
completes and its ChaosResult verdict is collected.`,
	Example: `  # Run every experiment
  litmus-runner test

  # Run a single experiment
  litmus-runner test -t pod-delete

  # Run node experiments with a 2 minute pause and save a report
  litmus-runner test --type node -w 2 -r yes`,
	RunE: runTest,
}

var (
	testName   string
	testWait   int
	testType   string
	testReport string
)

func init() {
	testCmd.Flags().StringVarP(&testName, "test", "t", runner.AllExperiments, "experiment file to run, without .yaml (* runs all)")
	testCmd.Flags().IntVarP(&testWait, "wait", "w", 1, "minutes to wait between experiments")
	testCmd.Flags().StringVar(&testType, "type", string(experiment.TypeAll), "select type of chaos experiment: all, node or pod")
	testCmd.Flags().StringVar(&testType, "ty", string(experiment.TypeAll), "alias for --type")
	testCmd.Flags().StringVarP(&testReport, "report", "r", "no", "save a run report: yes or no")

	_ = testCmd.Flags().MarkHidden("ty")
}

func runTest(cmd *cobra.Command, args []string) error {
	chaosType, err := experiment.ParseChaosType(testType)
	if err != nil {
		return err
	}
	saveReport, err := parseYesNo(testReport)
	if err != nil {
		return fmt.Errorf("invalid --report value: %w", err)
	}
	if testWait < 0 {
		return fmt.Errorf("--wait must not be negative, got %d", testWait)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.cfg
	r := runner.New(a.client, a.console, a.logger, newEvaluator(a), runner.Config{
		ChaosDir:        cfg.Paths.ChaosDir,
		NamespaceEnv:    cfg.Experiment.NamespaceEnv,
		LogsSince:       cfg.Polling.LogsSince,
		CleanupOnCancel: cfg.Experiment.CleanupOnCancel,
		Policy: runner.PollPolicy{
			Interval:    cfg.Polling.Interval,
			MaxAttempts: cfg.Polling.MaxAttempts,
			Timeout:     cfg.Polling.Timeout,
		},
		Probes: probesFromConfig(a),
	})

	start := time.Now()
	results, runErr := r.RunBatch(a.ctx, runner.BatchOptions{
		Test: testName,
		Wait: time.Duration(testWait) * time.Minute,
		Type: chaosType,
	})

	switch {
	case runErr == nil:
	case errors.Is(runErr, runner.ErrNotFound):
		a.console.Error("ERROR: %s%s not found in %s directory. Please check the name and try again.",
			testName, experiment.ManifestExt, cfg.Paths.ChaosDir)
		return reported(runErr)
	case errors.Is(runErr, runner.ErrCancelled):
		a.console.Error("User has cancelled script execution.")
		a.printStopReason()
		runErr = reported(runErr)
	case errors.Is(runErr, runner.ErrPollFailed):
		a.console.Error("ERROR: %v", runErr)
		runErr = reported(runErr)
	}

	if len(results) > 0 {
		a.console.Summary(results, cfg.Experiment.HealthMessage)
	}

	elapsed := time.Since(start)
	report := newRunReport(start, elapsed, chaosType, results, runErr)
	runLogger := a.logger.WithField("run_id", report.RunID)
	runLogger.Info("Total time taken",
		"elapsed", report.Duration,
		"passed", report.PassedCount(),
		"experiments", len(results),
		"success", report.Success(),
	)

	if saveReport {
		if err := writeReport(a, report); err != nil {
			runLogger.Error("Failed to save report", "error", err)
		}
	}

	return runErr
}

// newEvaluator returns a probe evaluator when probes are configured and
// Prometheus answers, nil otherwise
func newEvaluator(a *app) *probe.Evaluator {
	if len(a.cfg.Probes) == 0 || a.cfg.Prometheus.URL == "" {
		return nil
	}

	client, err := prometheus.New(prometheus.Config{
		URL:     a.cfg.Prometheus.URL,
		Timeout: a.cfg.Prometheus.Timeout,
	})
	if err != nil {
		a.logger.Warn("Probes disabled", "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(a.ctx, 10*time.Second)
	defer cancel()
	if err := client.TestConnection(ctx); err != nil {
		a.logger.Warn("Probes disabled, Prometheus is unreachable", "url", a.cfg.Prometheus.URL, "error", err)
		return nil
	}

	return probe.New(client)
}

func probesFromConfig(a *app) []probe.Probe {
	probes := make([]probe.Probe, 0, len(a.cfg.Probes))
	for _, p := range a.cfg.Probes {
		probes = append(probes, probe.Probe{
			Name:      p.Name,
			Query:     p.Query,
			Threshold: p.Threshold,
			Critical:  p.Critical,
		})
	}
	return probes
}

func newRunReport(start time.Time, elapsed time.Duration, chaosType experiment.ChaosType, results []runner.Result, runErr error) *reporting.RunReport {
	report := &reporting.RunReport{
		RunID:     reporting.NewRunID(start),
		Test:      testName,
		ChaosType: string(chaosType),
		StartTime: start,
		EndTime:   start.Add(elapsed),
		Duration:  reporting.FormatElapsed(elapsed),
		Status:    reporting.StatusCompleted,
		Results:   results,
	}

	if runErr != nil {
		report.Status = reporting.StatusFailed
		if errors.Is(runErr, runner.ErrCancelled) {
			report.Status = reporting.StatusCancelled
		}
		report.Errors = append(report.Errors, runErr.Error())
	}

	return report
}

// writeReport stores the JSON report and renders the other configured formats
// next to it
func writeReport(a *app, report *reporting.RunReport) error {
	storage, err := reporting.NewStorage(a.cfg.Reporting.OutputDir, a.cfg.Reporting.KeepLastN, a.logger)
	if err != nil {
		return err
	}

	path, err := storage.SaveReport(report)
	if err != nil {
		return err
	}

	formatter := reporting.NewFormatter(a.logger, a.cfg.Experiment.HealthMessage)
	for _, name := range a.cfg.Reporting.Formats {
		format := reporting.ReportFormat(name)
		if format == reporting.ReportFormatJSON {
			continue
		}
		if err := formatter.GenerateReport(report, format, storage.PathFor(report, format.Extension())); err != nil {
			return err
		}
	}

	a.console.Success("Report saved to %s", path)
	return nil
}

func parseYesNo(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("expected yes or no, got %q", value)
	}
}
