package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/litmus-runner/pkg/config"
	"github.com/jihwankim/litmus-runner/pkg/deploy"
	"github.com/jihwankim/litmus-runner/pkg/emergency"
	"github.com/jihwankim/litmus-runner/pkg/kubectl"
	"github.com/jihwankim/litmus-runner/pkg/kubectl/kubectltest"
	"github.com/jihwankim/litmus-runner/pkg/reporting"
	"github.com/jihwankim/litmus-runner/pkg/runner"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const engineTemplate = `apiVersion: litmuschaos.io/v1alpha1
kind: ChaosEngine
metadata:
  name: %[1]s-engine
  namespace: demo
spec:
  appinfo:
    appns: demo
    applabel: app=carts-db
    appkind: deployment
  experiments:
    - name: %[1]s
`

type workspace struct {
	configPath string
	reportDir  string
	stopFile   string
}

func newWorkspace(t *testing.T, experiments ...string) workspace {
	t.Helper()
	dir := t.TempDir()

	chaosDir := filepath.Join(dir, "chaos")
	require.NoError(t, os.MkdirAll(chaosDir, 0755))
	for _, name := range experiments {
		manifest := fmt.Sprintf(engineTemplate, name)
		require.NoError(t, os.WriteFile(filepath.Join(chaosDir, name+".yaml"), []byte(manifest), 0644))
	}

	cfg := config.DefaultConfig()
	cfg.Framework.LogLevel = "error"
	cfg.Paths.ApplicationDir = filepath.Join(dir, "application")
	cfg.Paths.ChaosDir = chaosDir
	cfg.Reporting.OutputDir = filepath.Join(dir, "reports")
	cfg.Emergency.StopFile = filepath.Join(dir, "stop")

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, cfg.Save(path))

	return workspace{configPath: path, reportDir: cfg.Reporting.OutputDir, stopFile: cfg.Emergency.StopFile}
}

// execute runs the root command in dry-run mode and returns its console output
func execute(t *testing.T, ws workspace, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(normalizeArgs(append([]string{"--config", ws.configPath, "--dry-run"}, args...)))

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"not found", fmt.Errorf("wrap: %w", runner.ErrNotFound), 2},
		{"poll failed", fmt.Errorf("%w: %w", runner.ErrPollFailed, runner.ErrPollTimeout), 2},
		{"cancelled run", fmt.Errorf("%w: %w", runner.ErrCancelled, context.Canceled), 2},
		{"interrupted deploy", context.Canceled, 0},
		{"invalid manifest", runner.ErrInvalidManifest, 1},
		{"other", errors.New("boom"), 1},
		{"reported", reported(runner.ErrNotFound), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestReported(t *testing.T) {
	assert.Nil(t, reported(nil))
	assert.False(t, isReported(errors.New("plain")))

	err := reported(runner.ErrCancelled)
	assert.True(t, isReported(err))
	assert.ErrorIs(t, err, runner.ErrCancelled)
	assert.Equal(t, runner.ErrCancelled.Error(), err.Error())
}

func TestParseYesNo(t *testing.T) {
	for _, v := range []string{"yes", "YES", "y", " Yes "} {
		got, err := parseYesNo(v)
		require.NoError(t, err, v)
		assert.True(t, got, v)
	}
	for _, v := range []string{"no", "No", "n"} {
		got, err := parseYesNo(v)
		require.NoError(t, err, v)
		assert.False(t, got, v)
	}

	_, err := parseYesNo("maybe")
	assert.Error(t, err)
}

func TestListCommand(t *testing.T) {
	ws := newWorkspace(t, "pod-delete", "node-cpu-hog")

	out, err := execute(t, ws, "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Available Experiments:")
	assert.Contains(t, out, "\t1. node-cpu-hog")
	assert.Contains(t, out, "\t2. pod-delete")
}

func TestTestCommandDryRun(t *testing.T) {
	ws := newWorkspace(t, "pod-delete", "node-cpu-hog")

	out, err := execute(t, ws, "test", "-t", "*", "-w", "0", "--type", "pod", "-r", "yes")
	require.NoError(t, err)

	assert.Contains(t, out, "[dry-run] kubectl delete chaosengine pod-delete-engine -n demo")
	assert.Contains(t, out, "[dry-run] kubectl create -f")
	assert.NotContains(t, out, "node-cpu-hog-engine")
	assert.Contains(t, out, "Experiments Result Summary")
	assert.Contains(t, out, "Awaited")

	entries, err := os.ReadDir(ws.reportDir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "json, text and html renderings")
}

func TestTestCommandTypeAlias(t *testing.T) {
	ws := newWorkspace(t, "pod-delete", "node-cpu-hog")

	out, err := execute(t, ws, "test", "-t", "*", "-w", "0", "--ty", "node", "-r", "no")
	require.NoError(t, err)

	assert.Contains(t, out, "node-cpu-hog-engine")
	assert.NotContains(t, out, "pod-delete-engine")
}

func TestNormalizeArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"test", "--ty", "node", "-t", "pod-delete"},
		normalizeArgs([]string{"test", "-ty", "node", "-t", "pod-delete"}))
	assert.Equal(t,
		[]string{"test", "--ty=pod"},
		normalizeArgs([]string{"test", "-ty=pod"}))
	assert.Equal(t,
		[]string{"test", "-t", "y", "--", "-ty"},
		normalizeArgs([]string{"test", "-t", "y", "--", "-ty"}))
}

func TestTestCommandSingleDashTy(t *testing.T) {
	ws := newWorkspace(t, "pod-delete", "node-cpu-hog")

	out, err := execute(t, ws, "test", "-t", "*", "-ty", "node", "-w", "0", "-r", "no")
	require.NoError(t, err)

	assert.Contains(t, out, "node-cpu-hog-engine")
	assert.NotContains(t, out, "pod-delete-engine")
}

func TestStaleStopFileIsRemoved(t *testing.T) {
	ws := newWorkspace(t, "pod-delete")
	require.NoError(t, os.WriteFile(ws.stopFile, []byte("left over"), 0644))

	out, err := execute(t, ws, "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Removing stale emergency stop file "+ws.stopFile)
	assert.Contains(t, out, "\t1. pod-delete")
	_, err = os.Stat(ws.stopFile)
	assert.True(t, os.IsNotExist(err))
}

func TestAbortCommandCreatesStopFile(t *testing.T) {
	ws := newWorkspace(t)

	out, err := execute(t, ws, "abort")
	require.NoError(t, err)

	assert.Contains(t, out, "Emergency stop requested: "+ws.stopFile)
	_, err = os.Stat(ws.stopFile)
	assert.NoError(t, err)
}

func TestPrintStopReason(t *testing.T) {
	var out bytes.Buffer
	stopper := emergency.New(emergency.Config{
		StopFile:     filepath.Join(t.TempDir(), "stop"),
		PollInterval: 10 * time.Millisecond,
	}, reporting.NopLogger())
	a := &app{console: reporting.NewConsole(&out), stopper: stopper}

	a.printStopReason()
	assert.Empty(t, out.String())

	ctx := stopper.Start(context.Background())
	require.NoError(t, stopper.CreateStopFile())
	<-ctx.Done()

	a.printStopReason()
	assert.Contains(t, out.String(), "Stopped by stop file detected: "+stopper.StopFilePath())
}

func TestPrintFailedSteps(t *testing.T) {
	var out bytes.Buffer
	console := reporting.NewConsole(&out)
	fake := &kubectltest.Runner{RunFunc: func(args []string) error {
		if args[len(args)-1] == filepath.Join("application", "service.yaml") {
			return errors.New("exit status 1")
		}
		return nil
	}}

	d := deploy.New(kubectl.NewClient(fake, ""), console, reporting.NopLogger(), deploy.Config{
		ApplicationDir: "application",
		Manifests:      []string{"deployment.yaml", "service.yaml"},
	})
	require.NoError(t, d.Stop(context.Background()))

	printFailedSteps(&app{console: console}, d)
	assert.Contains(t, out.String(), "Step failed: kubectl delete "+filepath.Join("application", "service.yaml")+": exit status 1")
	assert.NotContains(t, out.String(), "deployment.yaml")
}

func TestTestCommandNotFound(t *testing.T) {
	ws := newWorkspace(t, "pod-delete")

	out, err := execute(t, ws, "test", "-t", "missing", "-w", "0", "--type", "all", "-r", "no")
	require.Error(t, err)

	assert.ErrorIs(t, err, runner.ErrNotFound)
	assert.True(t, isReported(err))
	assert.Equal(t, 2, exitCode(err))
	assert.Contains(t, out, "ERROR: missing.yaml not found in")
	assert.Contains(t, out, "Please check the name and try again.")
	assert.NotContains(t, out, "Experiments Result Summary")
}

func TestTestCommandInvalidFlags(t *testing.T) {
	ws := newWorkspace(t, "pod-delete")

	_, err := execute(t, ws, "test", "-t", "*", "-w", "0", "--type", "disk", "-r", "no")
	assert.Error(t, err)
	assert.Equal(t, 1, exitCode(err))

	_, err = execute(t, ws, "test", "-t", "*", "-w", "0", "--type", "all", "-r", "maybe")
	assert.Error(t, err)
}

func TestReportCommand(t *testing.T) {
	ws := newWorkspace(t, "pod-delete")

	out, err := execute(t, ws, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "No stored runs")

	_, err = execute(t, ws, "test", "-t", "pod-delete", "-w", "0", "--type", "all", "-r", "yes")
	require.NoError(t, err)

	out, err = execute(t, ws, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, "pod-delete")
	assert.Contains(t, out, "0/1")
	assert.Contains(t, out, "completed")
}
