package deploy

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/litmus-runner/pkg/kubectl"
	"github.com/jihwankim/litmus-runner/pkg/kubectl/kubectltest"
	"github.com/jihwankim/litmus-runner/pkg/reporting"
)

var testConfig = Config{
	ApplicationDir: "application",
	Manifests:      []string{"deployment.yaml", "service.yaml", "ingress.yaml"},
	CatalogURL:     "https://hub.example.com/experiments.yaml",
}

func newDeployer(fake *kubectltest.Runner, out *bytes.Buffer) *Deployer {
	color.NoColor = true
	return New(kubectl.NewClient(fake, ""), reporting.NewConsole(out), reporting.NopLogger(), testConfig)
}

func TestStartContinuesPastFailures(t *testing.T) {
	fake := &kubectltest.Runner{
		RunFunc: func(args []string) error {
			if kubectltest.Has(args, "application/service.yaml") {
				return errors.New("exit status 1")
			}
			return nil
		},
	}
	var out bytes.Buffer
	d := newDeployer(fake, &out)

	require.NoError(t, d.Start(context.Background()))

	assert.Equal(t, []string{
		"run: apply -f application/deployment.yaml",
		"run: apply -f application/service.yaml",
		"run: apply -f application/ingress.yaml",
		"run: apply -f https://hub.example.com/experiments.yaml",
		"run: get ingress",
	}, fake.Lines())

	summary := d.Summary()
	assert.Equal(t, Summary{Total: 5, Succeeded: 4, Failed: 1}, summary)
	assert.Equal(t, "5 steps, 4 succeeded, 1 failed", summary.String())

	audit := d.AuditLog()
	require.Len(t, audit, 5)
	assert.False(t, audit[1].Success)
	assert.Equal(t, "application/service.yaml", audit[1].Target)

	assert.Contains(t, out.String(), "Ingress Details:")
}

func TestStopDeletesInOrder(t *testing.T) {
	fake := &kubectltest.Runner{}
	d := newDeployer(fake, &bytes.Buffer{})

	require.NoError(t, d.Stop(context.Background()))

	assert.Equal(t, []string{
		"run: delete -f application/deployment.yaml",
		"run: delete -f application/service.yaml",
		"run: delete -f application/ingress.yaml",
	}, fake.Lines())
	assert.Equal(t, 3, d.Summary().Succeeded)
}

func TestCancelledSequenceSkipsSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fake := &kubectltest.Runner{
		RunFunc: func(args []string) error {
			cancel()
			return nil
		},
	}
	d := newDeployer(fake, &bytes.Buffer{})

	err := d.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, fake.Calls(), 1)
}
