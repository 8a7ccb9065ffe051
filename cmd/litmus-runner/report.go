package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jihwankim/litmus-runner/pkg/reporting"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Args:  cobra.NoArgs,
	Short: "List stored test run reports",
	Long: `Lists the run reports saved by 'test -r yes', newest first, with the
number of passing experiments of each run.`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	storage, err := reporting.NewStorage(cfg.Reporting.OutputDir, cfg.Reporting.KeepLastN, newLogger(cfg))
	if err != nil {
		return err
	}

	summaries, err := storage.ListReports()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintf(out, "No stored runs in %s\n", storage.OutputDir())
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tTEST\tPASSED\tSTATUS\tDURATION")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			s.RunID,
			s.StartTime.Format(reporting.TimeLayout),
			s.Test,
			s.Passed, s.Total,
			s.Status,
			s.Duration,
		)
	}
	return w.Flush()
}
