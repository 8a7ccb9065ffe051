package probe

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jihwankim/litmus-runner/pkg/monitoring/prometheus"
)

// Probe is a steady-state check expressed as a PromQL query and a threshold
type Probe struct {
	Name      string
	Query     string
	Threshold string
	Critical  bool
}

// Result is the outcome of evaluating one probe
type Result struct {
	Name      string    `json:"name"`
	Query     string    `json:"query"`
	Threshold string    `json:"threshold"`
	Critical  bool      `json:"critical"`
	Passed    bool      `json:"passed"`
	Value     float64   `json:"value"`
	Message   string    `json:"message"`
	EvalTime  time.Time `json:"eval_time"`
}

// Querier is the subset of the Prometheus client probes need
type Querier interface {
	QueryLatest(ctx context.Context, query string) (*prometheus.QueryResult, error)
}

// Threshold is a parsed comparison such as "> 0"
type Threshold struct {
	Operator string
	Value    float64
}

// ParseThreshold parses ">", "<", ">=", "<=", "==" or "!=" followed by a number
func ParseThreshold(threshold string) (Threshold, error) {
	threshold = strings.TrimSpace(threshold)

	// two-character operators first so ">=" is not read as ">"
	for _, op := range []string{">=", "<=", "!=", "==", ">", "<"} {
		if !strings.HasPrefix(threshold, op) {
			continue
		}
		raw := strings.TrimSpace(threshold[len(op):])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Threshold{}, fmt.Errorf("invalid threshold value %q: %w", raw, err)
		}
		return Threshold{Operator: op, Value: v}, nil
	}

	return Threshold{}, fmt.Errorf("invalid threshold format: %q (expected: >, <, >=, <=, ==, !=)", threshold)
}

// Holds reports whether value satisfies the threshold
func (t Threshold) Holds(value float64) bool {
	switch t.Operator {
	case ">":
		return value > t.Value
	case "<":
		return value < t.Value
	case ">=":
		return value >= t.Value
	case "<=":
		return value <= t.Value
	case "==":
		return value == t.Value
	case "!=":
		return value != t.Value
	default:
		return false
	}
}

func (t Threshold) String() string {
	return fmt.Sprintf("%s %g", t.Operator, t.Value)
}

// Evaluator evaluates probes against Prometheus
type Evaluator struct {
	querier Querier
}

// New creates a new probe evaluator
func New(querier Querier) *Evaluator {
	return &Evaluator{querier: querier}
}

// Evaluate evaluates a single probe. Query failures are reported in the
// result rather than returned, so one broken probe never hides the others.
func (e *Evaluator) Evaluate(ctx context.Context, p Probe) Result {
	result := Result{
		Name:      p.Name,
		Query:     p.Query,
		Threshold: p.Threshold,
		Critical:  p.Critical,
		EvalTime:  time.Now(),
	}

	threshold, err := ParseThreshold(p.Threshold)
	if err != nil {
		result.Message = fmt.Sprintf("threshold evaluation failed: %v", err)
		return result
	}

	qr, err := e.querier.QueryLatest(ctx, p.Query)
	if err != nil {
		result.Message = fmt.Sprintf("query failed: %v", err)
		return result
	}

	if len(qr.Samples) == 0 {
		result.Message = "query returned no results"
		return result
	}

	result.Value = qr.Samples[0].Value
	result.Passed = threshold.Holds(result.Value)
	if result.Passed {
		result.Message = fmt.Sprintf("value %.2f meets threshold %s", result.Value, p.Threshold)
	} else {
		result.Message = fmt.Sprintf("value %.2f does not meet threshold %s", result.Value, p.Threshold)
	}

	return result
}

// EvaluateAll evaluates every probe in order
func (e *Evaluator) EvaluateAll(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, 0, len(probes))
	for _, p := range probes {
		results = append(results, e.Evaluate(ctx, p))
	}
	return results
}

// CriticalPassed returns true if all critical probes passed
func CriticalPassed(results []Result) bool {
	for _, r := range results {
		if r.Critical && !r.Passed {
			return false
		}
	}
	return true
}
