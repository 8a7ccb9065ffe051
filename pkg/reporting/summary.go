package reporting

import (
	"fmt"
	"strings"
	"time"
)

// VerdictPass is the verdict the operator records for a passing experiment
const VerdictPass = "Pass"

const columnWidth = 25

var summaryHeaders = []string{"#", "Start Time", "Experiment", "Status"}

// FormatStatus annotates a Pass verdict with the health message.
// Any other verdict is returned verbatim.
func FormatStatus(status, healthMessage string) string {
	if status != VerdictPass {
		return status
	}
	return "    " + status + " " + healthMessage
}

// SummaryLines renders the summary table: a header followed by one row per
// result, every column right-aligned to a fixed width behind an empty
// leading column.
func SummaryLines(results []ExperimentResult, healthMessage string) []string {
	lines := make([]string, 0, len(results)+1)
	lines = append(lines, row("", summaryHeaders...))

	for i, r := range results {
		lines = append(lines, row("",
			fmt.Sprintf("%d", i+1),
			r.StartTime.Format(TimeLayout),
			r.Name,
			FormatStatus(r.Status, healthMessage),
		))
	}

	return lines
}

func row(first string, cells ...string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%*s", columnWidth, first))
	for _, cell := range cells {
		sb.WriteString(fmt.Sprintf("%*s", columnWidth, cell))
	}
	return sb.String()
}

// Summary prints the result summary banner and table
func (c *Console) Summary(results []ExperimentResult, healthMessage string) {
	c.Banner("Experiments Result Summary")
	fmt.Fprintln(c.out)
	for _, line := range SummaryLines(results, healthMessage) {
		blue.Fprintln(c.out, line)
	}
	fmt.Fprint(c.out, "\n\n")
}

// FormatElapsed formats a duration as HH:MM:SS
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
