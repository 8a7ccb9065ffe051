package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var abortCmd = &cobra.Command{
	Use:   "abort",
	Args:  cobra.NoArgs,
	Short: "Stop a running test from another terminal",
	Long: `Creates the emergency stop file. A running test notices it within one
poll interval, deletes its chaos engine and exits. The next command removes
the file again.`,
	RunE: runAbort,
}

func runAbort(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctrl := newController(cfg, newLogger(cfg), false)
	if err := ctrl.CreateStopFile(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Emergency stop requested: %s\n", ctrl.StopFilePath())
	return nil
}
