package reporting

import (
	"time"

	"github.com/jihwankim/litmus-runner/pkg/monitoring/probe"
)

// RunReport represents one invocation of the test verb
type RunReport struct {
	RunID     string    `json:"run_id"`
	Test      string    `json:"test"`
	ChaosType string    `json:"chaos_type"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  string    `json:"duration"`

	Status RunStatus `json:"status"`

	Results []ExperimentResult `json:"results"`
	Errors  []string           `json:"errors,omitempty"`
}

// RunStatus represents how a run ended
type RunStatus string

const (
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
	StatusCancelled RunStatus = "cancelled"
)

// ExperimentResult is the outcome of one experiment
type ExperimentResult struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`

	Engine    string         `json:"engine,omitempty"`
	Namespace string         `json:"namespace,omitempty"`
	EndTime   time.Time      `json:"end_time,omitempty"`
	Polls     int            `json:"polls"`
	Probes    []probe.Result `json:"probes,omitempty"`
}

// Passed returns true if the operator's verdict is Pass
func (r ExperimentResult) Passed() bool {
	return r.Status == VerdictPass
}

// Duration returns the time from poll-loop entry to the verdict
func (r ExperimentResult) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// PassedCount returns the number of passing experiments
func (r *RunReport) PassedCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed() {
			n++
		}
	}
	return n
}

// Success returns true if the run completed and every experiment passed
func (r *RunReport) Success() bool {
	return r.Status == StatusCompleted && len(r.Results) > 0 && r.PassedCount() == len(r.Results)
}
