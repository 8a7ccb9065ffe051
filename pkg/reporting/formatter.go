package reporting

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"
)

// ReportFormat represents the report output format
type ReportFormat string

const (
	ReportFormatHTML ReportFormat = "html"
	ReportFormatText ReportFormat = "text"
	ReportFormatJSON ReportFormat = "json"
)

// Extension returns the file extension for the format
func (f ReportFormat) Extension() string {
	if f == ReportFormatText {
		return "txt"
	}
	return string(f)
}

// Formatter generates formatted reports from run data
type Formatter struct {
	logger        *Logger
	healthMessage string
}

// NewFormatter creates a new report formatter. healthMessage annotates
// passing experiments the same way the console summary does.
func NewFormatter(logger *Logger, healthMessage string) *Formatter {
	return &Formatter{
		logger:        logger,
		healthMessage: healthMessage,
	}
}

// GenerateReport generates a report in the specified format
func (f *Formatter) GenerateReport(report *RunReport, format ReportFormat, outputPath string) error {
	switch format {
	case ReportFormatHTML:
		return f.generateHTMLReport(report, outputPath)
	case ReportFormatText:
		return f.generateTextReport(report, outputPath)
	case ReportFormatJSON:
		return fmt.Errorf("JSON format is automatically saved by storage")
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

func (f *Formatter) generateHTMLReport(report *RunReport, outputPath string) error {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Format(TimeLayout)
		},
		"statusClass": func(passed bool) string {
			if passed {
				return "pass"
			}
			return "fail"
		},
		"inc": func(i int) int {
			return i + 1
		},
		"status": func(r ExperimentResult) string {
			return FormatStatus(r.Status, f.healthMessage)
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse HTML template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, report); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}

	f.logger.Info("HTML report generated", "path", outputPath)
	return nil
}

func (f *Formatter) generateTextReport(report *RunReport, outputPath string) error {
	var buf bytes.Buffer

	buf.WriteString(strings.Repeat("=", 80) + "\n")
	buf.WriteString("   LITMUS CHAOS RUN REPORT\n")
	buf.WriteString(strings.Repeat("=", 80) + "\n\n")

	buf.WriteString("RUN SUMMARY\n")
	buf.WriteString(strings.Repeat("-", 80) + "\n")
	buf.WriteString(fmt.Sprintf("Status:       %s\n", strings.ToUpper(string(report.Status))))
	buf.WriteString(fmt.Sprintf("Run ID:       %s\n", report.RunID))
	buf.WriteString(fmt.Sprintf("Test:         %s\n", report.Test))
	buf.WriteString(fmt.Sprintf("Chaos Type:   %s\n", report.ChaosType))
	buf.WriteString(fmt.Sprintf("Start Time:   %s\n", report.StartTime.Format(TimeLayout)))
	buf.WriteString(fmt.Sprintf("End Time:     %s\n", report.EndTime.Format(TimeLayout)))
	buf.WriteString(fmt.Sprintf("Duration:     %s\n", report.Duration))
	buf.WriteString(fmt.Sprintf("Passed:       %d/%d\n", report.PassedCount(), len(report.Results)))
	buf.WriteString("\n")

	if len(report.Results) > 0 {
		buf.WriteString("EXPERIMENTS\n")
		buf.WriteString(strings.Repeat("-", 80) + "\n")
		for _, line := range SummaryLines(report.Results, f.healthMessage) {
			buf.WriteString(line + "\n")
		}
		buf.WriteString("\n")

		for i, r := range report.Results {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.Name))
			buf.WriteString(fmt.Sprintf("   Verdict:     %s\n", r.Status))
			if r.Engine != "" {
				buf.WriteString(fmt.Sprintf("   Engine:      %s\n", r.Engine))
			}
			if r.Namespace != "" {
				buf.WriteString(fmt.Sprintf("   Namespace:   %s\n", r.Namespace))
			}
			buf.WriteString(fmt.Sprintf("   Start Time:  %s\n", r.StartTime.Format("15:04:05")))
			if d := r.Duration(); d > 0 {
				buf.WriteString(fmt.Sprintf("   Duration:    %s\n", FormatElapsed(d)))
			}
			buf.WriteString(fmt.Sprintf("   Polls:       %d\n", r.Polls))

			for _, p := range r.Probes {
				status := "PASS"
				if !p.Passed {
					status = "FAIL"
					if p.Critical {
						status = "CRITICAL FAIL"
					}
				}
				buf.WriteString(fmt.Sprintf("   [%s] %s: %s\n", status, p.Name, p.Message))
			}
			buf.WriteString("\n")
		}
	}

	if len(report.Errors) > 0 {
		buf.WriteString("ERRORS\n")
		buf.WriteString(strings.Repeat("-", 80) + "\n")
		for i, err := range report.Errors {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, err))
		}
		buf.WriteString("\n")
	}

	buf.WriteString(strings.Repeat("=", 80) + "\n")
	buf.WriteString(fmt.Sprintf("Generated: %s\n", time.Now().Format(TimeLayout)))
	buf.WriteString(strings.Repeat("=", 80) + "\n")

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}

	f.logger.Info("Text report generated", "path", outputPath)
	return nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Litmus Chaos Run Report - {{.RunID}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif;
            color: #333;
            max-width: 1100px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .container {
            background-color: white;
            border-radius: 8px;
            padding: 30px;
        }
        h1, h2 {
            color: #2c3e50;
            border-bottom: 2px solid #3498db;
            padding-bottom: 10px;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            margin: 20px 0;
        }
        th, td {
            padding: 10px;
            text-align: left;
            border-bottom: 1px solid #ddd;
        }
        th {
            background-color: #3498db;
            color: white;
        }
        .pass { color: #27ae60; font-weight: bold; }
        .fail { color: #e74c3c; font-weight: bold; }
        .probe { color: #666; font-size: 0.9em; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Litmus Chaos Run Report</h1>
        <p>Run ID: {{.RunID}} &middot; Test: {{.Test}} &middot; Type: {{.ChaosType}}</p>
        <p>Status: {{.Status}} &middot; {{formatTime .StartTime}} to {{formatTime .EndTime}} ({{.Duration}})</p>

        {{if .Results}}
        <h2>Experiments</h2>
        <table>
            <thead>
                <tr>
                    <th>#</th>
                    <th>Start Time</th>
                    <th>Experiment</th>
                    <th>Engine</th>
                    <th>Status</th>
                </tr>
            </thead>
            <tbody>
                {{range $i, $r := .Results}}
                <tr>
                    <td>{{inc $i}}</td>
                    <td>{{formatTime $r.StartTime}}</td>
                    <td>{{$r.Name}}</td>
                    <td>{{$r.Engine}}</td>
                    <td class="{{statusClass $r.Passed}}">{{status $r}}</td>
                </tr>
                {{range $r.Probes}}
                <tr class="probe">
                    <td></td>
                    <td colspan="3">{{.Name}}: <code>{{.Query}}</code> {{.Threshold}}</td>
                    <td class="{{statusClass .Passed}}">{{.Message}}</td>
                </tr>
                {{end}}
                {{end}}
            </tbody>
        </table>
        {{end}}

        {{if .Errors}}
        <h2>Errors</h2>
        <ul>
            {{range .Errors}}
            <li>{{.}}</li>
            {{end}}
        </ul>
        {{end}}
    </div>
</body>
</html>
`
