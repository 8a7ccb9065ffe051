package main

import (
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Args:  cobra.NoArgs,
	Short: "Stop application under test",
	RunE:  runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	d := newDeployer(a)
	err = d.Stop(a.ctx)
	printFailedSteps(a, d)
	a.printStopReason()
	return err
}
