package kubectl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner executes kubectl invocations.
// Run streams the command's output; Output captures stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) error
	Output(ctx context.Context, args ...string) (string, error)
}

// ShellRunner runs the real kubectl binary
type ShellRunner struct {
	Binary string
	Stdout io.Writer
	Stderr io.Writer

	// Echo is called with the command line before Run executes it
	Echo func(cmdline string)
}

// NewShellRunner creates a runner for the given binary writing to the process stdio
func NewShellRunner(binary string, echo func(string)) *ShellRunner {
	return &ShellRunner{
		Binary: binary,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Echo:   echo,
	}
}

// Run executes the command, streaming stdout and stderr
func (r *ShellRunner) Run(ctx context.Context, args ...string) error {
	if r.Echo != nil {
		r.Echo(CommandLine(r.Binary, args))
	}

	cmd := r.command(ctx, args)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", CommandLine(r.Binary, args), err)
	}
	return nil
}

// command builds the child process. Children get their own process group so
// a terminal interrupt reaches only this process; they are stopped through
// ctx instead.
func (r *ShellRunner) command(ctx context.Context, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	detachProcessGroup(cmd)
	return cmd
}

// Output executes the command and returns its stdout
func (r *ShellRunner) Output(ctx context.Context, args ...string) (string, error) {
	var stderr bytes.Buffer
	cmd := r.command(ctx, args)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w (output: %s)", CommandLine(r.Binary, args), err, strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}

// DryRunRunner prints commands instead of executing them
type DryRunRunner struct {
	Binary string
	Out    io.Writer
}

// Run prints the command line
func (r *DryRunRunner) Run(ctx context.Context, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "[dry-run] %s\n", CommandLine(r.Binary, args))
	return nil
}

// Output prints the command line and answers status and verdict queries
// with the values of a finished experiment, so a dry run walks the whole flow.
func (r *DryRunRunner) Output(ctx context.Context, args ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(r.Out, "[dry-run] %s\n", CommandLine(r.Binary, args))

	for _, arg := range args {
		switch arg {
		case jsonPath(engineStatusPath):
			return "Completed", nil
		case jsonPath(verdictPath):
			return "Awaited", nil
		}
	}
	return "", nil
}

// CommandLine renders a command for display
func CommandLine(binary string, args []string) string {
	return strings.TrimSpace(binary + " " + strings.Join(args, " "))
}
