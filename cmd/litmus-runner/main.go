package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	dryRun  bool
	version = "dev" // Will be set by build flags
)

var rootCmd = &cobra.Command{
	Use:   "litmus-runner",
	Short: "Run LitmusChaos experiments against the application under test",
	Long: `Litmus Runner deploys the demo application, triggers LitmusChaos experiments
defined as ChaosEngine manifests under ./chaos, polls them to completion
through kubectl and prints a result summary.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "print kubectl commands instead of executing them")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(abortCmd)
}

// Commands are defined in separate files:
// - startCmd in start.go
// - stopCmd in stop.go
// - listCmd in list.go
// - testCmd in test.go
// - reportCmd in report.go
// - abortCmd in abort.go

func main() {
	if len(os.Args) < 2 {
		os.Exit(2)
	}

	rootCmd.SetArgs(normalizeArgs(os.Args[1:]))
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !isReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}
