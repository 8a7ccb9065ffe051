package main

import (
	"github.com/spf13/cobra"

	"github.com/jihwankim/litmus-runner/pkg/experiment"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Args:  cobra.NoArgs,
	Short: "List all available Litmus ChaosEngine experiments available to run",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	names, err := experiment.List(a.cfg.Paths.ChaosDir)
	if err != nil {
		return err
	}

	a.console.Catalog(names)
	return nil
}
