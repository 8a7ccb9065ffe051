package main

import (
	"github.com/spf13/cobra"

	"github.com/jihwankim/litmus-runner/pkg/deploy"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Args:  cobra.NoArgs,
	Short: "Start application under test",
	Long: `Applies the application manifests and the Litmus experiment catalog,
then shows the ingress details. Failing steps do not stop the sequence.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	d := newDeployer(a)
	err = d.Start(a.ctx)
	printFailedSteps(a, d)
	a.printStopReason()
	return err
}

// printFailedSteps lists the steps whose kubectl call failed. They never
// change the exit code.
func printFailedSteps(a *app, d *deploy.Deployer) {
	for _, entry := range d.AuditLog() {
		if !entry.Success {
			a.console.Warn("Step failed: kubectl %s %s: %v", entry.Action, entry.Target, entry.Error)
		}
	}
}

func newDeployer(a *app) *deploy.Deployer {
	return deploy.New(a.client, a.console, a.logger, deploy.Config{
		ApplicationDir: a.cfg.Paths.ApplicationDir,
		Manifests:      a.cfg.Application.Manifests,
		CatalogURL:     a.cfg.Application.CatalogURL,
	})
}
