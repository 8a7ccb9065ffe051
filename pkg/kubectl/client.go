package kubectl

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	engineStatusPath = "{.status.experiments[0].status}"
	verdictPath      = "{.status.experimentStatus.verdict}"
)

// Client issues the kubectl operations the runner needs
type Client struct {
	runner  Runner
	context string
}

// NewClient creates a client. kubeContext selects a kubeconfig context
// when non-empty.
func NewClient(runner Runner, kubeContext string) *Client {
	return &Client{
		runner:  runner,
		context: kubeContext,
	}
}

// Apply runs kubectl apply -f on a file or URL
func (c *Client) Apply(ctx context.Context, manifest string) error {
	return c.run(ctx, "apply", "-f", manifest)
}

// Delete runs kubectl delete -f on a file or URL
func (c *Client) Delete(ctx context.Context, manifest string) error {
	return c.run(ctx, "delete", "-f", manifest)
}

// Get prints the resources of a kind
func (c *Client) Get(ctx context.Context, kind string) error {
	return c.run(ctx, "get", kind)
}

// DeleteChaosEngine removes a chaos engine
func (c *Client) DeleteChaosEngine(ctx context.Context, name, namespace string) error {
	return c.run(ctx, withNamespace([]string{"delete", "chaosengine", name}, namespace)...)
}

// Create runs kubectl create -f for a manifest in a namespace
func (c *Client) Create(ctx context.Context, manifest, namespace string) error {
	return c.run(ctx, withNamespace([]string{"create", "-f", manifest}, namespace)...)
}

// ChaosEngineStatus returns the status of the engine's first experiment
func (c *Client) ChaosEngineStatus(ctx context.Context, name, namespace string) (string, error) {
	args := withNamespace([]string{"get", "chaosengine", name, "-o", jsonPath(engineStatusPath)}, namespace)
	out, err := c.output(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("failed to get chaosengine %s status: %w", name, err)
	}
	return out, nil
}

// Logs prints recent logs of pods matching a label selector
func (c *Client) Logs(ctx context.Context, selector string, since time.Duration, namespace string) error {
	return c.run(ctx, logsArgs(selector, since, namespace)...)
}

// LogsCommand renders the Logs invocation for display
func (c *Client) LogsCommand(selector string, since time.Duration, namespace string) string {
	return CommandLine("kubectl", c.args(logsArgs(selector, since, namespace)))
}

func logsArgs(selector string, since time.Duration, namespace string) []string {
	return withNamespace([]string{"logs", "--since=" + since.String(), "-l", selector}, namespace)
}

// DescribeChaosResult prints a chaos result
func (c *Client) DescribeChaosResult(ctx context.Context, name, namespace string) error {
	return c.run(ctx, withNamespace([]string{"describe", "chaosresult", name}, namespace)...)
}

// ChaosResultVerdict returns the verdict recorded in a chaos result
func (c *Client) ChaosResultVerdict(ctx context.Context, name, namespace string) (string, error) {
	args := withNamespace([]string{"get", "chaosresult", name}, namespace)
	args = append(args, "-o", jsonPath(verdictPath))
	out, err := c.output(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("failed to get chaosresult %s verdict: %w", name, err)
	}
	return out, nil
}

func (c *Client) run(ctx context.Context, args ...string) error {
	return c.runner.Run(ctx, c.args(args)...)
}

func (c *Client) output(ctx context.Context, args ...string) (string, error) {
	out, err := c.runner.Output(ctx, c.args(args)...)
	return strings.TrimSpace(out), err
}

func (c *Client) args(args []string) []string {
	if c.context == "" {
		return args
	}
	return append([]string{"--context", c.context}, args...)
}

// withNamespace appends -n unless the namespace is empty, in which case
// kubectl falls back to the current context's namespace
func withNamespace(args []string, namespace string) []string {
	if namespace == "" {
		return args
	}
	return append(args, "-n", namespace)
}

func jsonPath(expr string) string {
	return "jsonpath=" + expr
}
