package reporting_test

import (
	"fmt"
	"os"
	"time"

	"github.com/jihwankim/litmus-runner/pkg/reporting"
)

// Example demonstrates the reporting package usage
func Example() {
	logger := reporting.NewLogger(reporting.LoggerConfig{
		Level:  reporting.LogLevelInfo,
		Format: reporting.LogFormatText,
	})

	console := reporting.NewConsole(os.Stdout)
	console.Catalog([]string{"container-kill", "node-drain", "pod-delete"})

	start := time.Now().Add(-3 * time.Minute)
	report := &reporting.RunReport{
		RunID:     reporting.NewRunID(start),
		Test:      "pod-delete",
		ChaosType: "all",
		StartTime: start,
		EndTime:   time.Now(),
		Duration:  reporting.FormatElapsed(3 * time.Minute),
		Status:    reporting.StatusCompleted,
		Results: []reporting.ExperimentResult{
			{
				Name:      "pod-delete",
				Status:    "Pass",
				StartTime: start,
				Engine:    "carts-db-chaos",
				Namespace: "sock-shop",
				Polls:     12,
			},
		},
	}

	console.Summary(report.Results, "'carts-db' Service is up and Running after chaos")

	storage, err := reporting.NewStorage("./run-reports", 10, logger)
	if err != nil {
		fmt.Printf("Failed to create storage: %v\n", err)
		return
	}
	defer os.RemoveAll("./run-reports")

	path, err := storage.SaveReport(report)
	if err != nil {
		fmt.Printf("Failed to save report: %v\n", err)
		return
	}
	fmt.Printf("Report saved to: %s\n", path)

	formatter := reporting.NewFormatter(logger, "'carts-db' Service is up and Running after chaos")
	if err := formatter.GenerateReport(report, reporting.ReportFormatHTML, storage.PathFor(report, reporting.ReportFormatHTML.Extension())); err != nil {
		fmt.Printf("Failed to generate HTML report: %v\n", err)
	}
}

// ExampleLogger demonstrates structured logging
func ExampleLogger() {
	logger := reporting.NewLogger(reporting.LoggerConfig{
		Level:  reporting.LogLevelDebug,
		Format: reporting.LogFormatJSON,
	})

	logger.Info("Deploying experiment", "experiment", "pod-delete", "namespace", "sock-shop")

	runLogger := logger.WithField("engine", "carts-db-chaos")
	runLogger.Debug("State transition", "from", "Deployed", "to", "Polling")
	runLogger.Warn("Namespace is empty, using the current kubectl context")
}
