package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// TimeLayout is the timestamp layout used in console output
const TimeLayout = "2006-01-02 15:04:05"

var (
	bold      = color.New(color.Bold)
	blue      = color.New(color.FgHiBlue)
	green     = color.New(color.FgHiGreen)
	yellow    = color.New(color.FgHiYellow)
	red       = color.New(color.FgHiRed)
	underline = color.New(color.Underline)

	rule = strings.Repeat("*", 99)
)

// Console prints user-facing output
type Console struct {
	out io.Writer
}

// NewConsole creates a console writing to out, or stdout when nil
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

// Writer returns the underlying writer
func (c *Console) Writer() io.Writer {
	return c.out
}

// Print prints bold text
func (c *Console) Print(format string, args ...interface{}) {
	bold.Fprintf(c.out, format+"\n", args...)
}

// Running echoes a command before it is executed
func (c *Console) Running(cmdline string) {
	c.Print("** RUNNING: %s", cmdline)
}

// Heading prints an underlined section heading
func (c *Console) Heading(text string) {
	underline.Fprintf(c.out, "\n%s:\n", text)
	fmt.Fprintln(c.out)
}

// Banner prints a title framed by rules
func (c *Console) Banner(title string) {
	blue.Fprintln(c.out, rule)
	blue.Fprintf(c.out, "* %s\n", title)
	blue.Fprintln(c.out, rule)
}

// ExperimentBanner prints the banner opening an experiment run
func (c *Console) ExperimentBanner(name string, at time.Time) {
	c.Banner(fmt.Sprintf("%s Experiment: %s", at.Format(TimeLayout), name))
}

// LogsStart opens the experiment log section
func (c *Console) LogsStart(cmdline string) {
	green.Fprintf(c.out, "\n//** Experiment Logs (%s) **//\n\n", cmdline)
}

// LogsEnd closes the experiment log section
func (c *Console) LogsEnd() {
	green.Fprint(c.out, "\n\n//** End of Experiment Logs **//\n\n")
}

// Success prints a green message
func (c *Console) Success(format string, args ...interface{}) {
	green.Fprintf(c.out, format+"\n", args...)
}

// Warn prints a yellow message
func (c *Console) Warn(format string, args ...interface{}) {
	yellow.Fprintf(c.out, format+"\n", args...)
}

// Error prints a red message
func (c *Console) Error(format string, args ...interface{}) {
	red.Fprintf(c.out, format+"\n", args...)
}

// Catalog prints the available experiments as a 1-based numbered list
func (c *Console) Catalog(names []string) {
	fmt.Fprintln(c.out, "Available Experiments:")
	for i, name := range names {
		c.Print("\t%d. %s", i+1, name)
	}
}
