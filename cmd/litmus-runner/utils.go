package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jihwankim/litmus-runner/pkg/config"
	"github.com/jihwankim/litmus-runner/pkg/emergency"
	"github.com/jihwankim/litmus-runner/pkg/kubectl"
	"github.com/jihwankim/litmus-runner/pkg/reporting"
	"github.com/jihwankim/litmus-runner/pkg/runner"
)

// app bundles what every command needs
type app struct {
	cfg     *config.Config
	logger  *reporting.Logger
	console *reporting.Console
	client  *kubectl.Client

	// ctx is cancelled by SIGINT/SIGTERM or the emergency stop file
	ctx     context.Context
	close   func()
	stopper *emergency.Controller
}

// newApp loads configuration and wires the logger, console, kubectl client
// and emergency controller
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg)
	console := reporting.NewConsole(cmd.OutOrStdout())

	var r kubectl.Runner
	if dryRun {
		r = &kubectl.DryRunRunner{Binary: cfg.Kubectl.Binary, Out: console.Writer()}
	} else {
		r = kubectl.NewShellRunner(cfg.Kubectl.Binary, console.Running)
	}

	ctrl := newController(cfg, logger, true)
	if ctrl.StopFileExists() {
		console.Warn("Removing stale emergency stop file %s", ctrl.StopFilePath())
		if err := ctrl.RemoveStopFile(); err != nil {
			return nil, err
		}
	}

	parent, cancel := context.WithCancel(cmd.Context())
	return &app{
		cfg:     cfg,
		logger:  logger,
		console: console,
		client:  kubectl.NewClient(r, cfg.Kubectl.Context),
		ctx:     ctrl.Start(parent),
		close:   cancel,
		stopper: ctrl,
	}, nil
}

func newController(cfg *config.Config, logger *reporting.Logger, signals bool) *emergency.Controller {
	return emergency.New(emergency.Config{
		StopFile:             cfg.Emergency.StopFile,
		PollInterval:         cfg.Emergency.PollInterval,
		EnableSignalHandlers: signals,
	}, logger)
}

// printStopReason tells the user what cancelled the command, if anything did
func (a *app) printStopReason() {
	if a.stopper.IsStopped() {
		a.console.Warn("Stopped by %s", a.stopper.Reason())
	}
}

// loadConfig loads and validates the configuration. A missing file yields
// the defaults.
func loadConfig() (*config.Config, error) {
	configPath := cfgFile
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) *reporting.Logger {
	level := reporting.LogLevel(cfg.Framework.LogLevel)
	if verbose {
		level = reporting.LogLevelDebug
	}

	return reporting.NewLogger(reporting.LoggerConfig{
		Level:  level,
		Format: reporting.LogFormat(cfg.Framework.LogFormat),
		Output: os.Stderr,
	})
}

// normalizeArgs rewrites the single-dash -ty flag, which pflag would read as
// -t y, to its --ty form
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		switch {
		case arg == "--":
			copy(out[i:], args[i:])
			return out
		case arg == "-ty", strings.HasPrefix(arg, "-ty="):
			out[i] = "-" + arg
		default:
			out[i] = arg
		}
	}
	return out
}

// reportedError marks an error whose message was already shown to the user
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

func isReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// exitCode maps an error to the process exit status:
// 2 for a missing experiment, a failed poll or a cancelled run,
// 0 for an interrupt outside a test run, 1 for anything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, runner.ErrNotFound),
		errors.Is(err, runner.ErrPollFailed),
		errors.Is(err, runner.ErrCancelled):
		return 2
	case errors.Is(err, context.Canceled):
		return 0
	default:
		return 1
	}
}
