package emergency_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jihwankim/litmus-runner/pkg/emergency"
	"github.com/jihwankim/litmus-runner/pkg/reporting"
)

// Example demonstrates emergency controller usage
func Example() {
	dir, err := os.MkdirTemp("", "litmus-runner")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(dir)

	controller := emergency.New(emergency.Config{
		StopFile:     filepath.Join(dir, "stop"),
		PollInterval: 10 * time.Millisecond,
	}, reporting.NopLogger())

	controller.OnStop(func() {
		fmt.Println("Deleting chaos engine...")
	})

	ctx := controller.Start(context.Background())

	fmt.Println("Polling experiment status")
	if err := controller.CreateStopFile(); err != nil {
		fmt.Println(err)
		return
	}

	select {
	case <-ctx.Done():
		fmt.Println("Run cancelled")
	case <-time.After(5 * time.Second):
		fmt.Println("No emergency stop triggered (timeout)")
	}

	// Output:
	// Polling experiment status
	// Deleting chaos engine...
	// Run cancelled
}
