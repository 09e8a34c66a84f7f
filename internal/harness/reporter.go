package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"
)

// maxMessageWidth bounds failure messages in the summary table.
const maxMessageWidth = 100

var moduleHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// consoleReporter implements human readable output
type consoleReporter struct {
	out        io.Writer
	verbose    bool
	debug      bool
	reportPath string
}

// NewConsoleReporter creates a reporter writing to out (stdout when nil).
// When reportPath is set a detailed JSON report is saved there at the end of
// the run.
func NewConsoleReporter(out io.Writer, verbose, debug bool, reportPath string) Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &consoleReporter{
		out:        out,
		verbose:    verbose,
		debug:      debug,
		reportPath: reportPath,
	}
}

// ReportStart is called when test execution begins
func (r *consoleReporter) ReportStart(config Configuration) {
	fmt.Fprintf(r.out, "🧪 Starting leakctl test run\n")

	if r.verbose {
		fmt.Fprintf(r.out, "⚙️  Configuration:\n")
		fmt.Fprintf(r.out, "   • Fail fast: %t\n", config.FailFast)
		fmt.Fprintf(r.out, "   • Require assertions: %t\n", config.RequireAssertions)
		fmt.Fprintf(r.out, "   • Debug mode: %t\n", config.Debug)
		if config.ReportPath != "" {
			fmt.Fprintf(r.out, "   • Report path: %s\n", config.ReportPath)
		}
		fmt.Fprintf(r.out, "\n")
	}
}

// ReportModuleStart is called before the first test of a module
func (r *consoleReporter) ReportModuleStart(name string) {
	fmt.Fprintf(r.out, "📦 %s\n", moduleHeaderStyle.Render(name))
}

// ReportTestResult is called when a test finishes
func (r *consoleReporter) ReportTestResult(result TestRunResult) {
	symbol := resultSymbol(result.Result)
	if r.verbose {
		fmt.Fprintf(r.out, "   %s %s (%v, %d assertions)\n",
			symbol, result.Name, result.Duration.Round(time.Microsecond), len(result.Assertions))
	} else {
		fmt.Fprintf(r.out, "   %s %s\n", symbol, result.Name)
	}

	for _, msg := range result.Failures() {
		fmt.Fprintf(r.out, "     %s %s\n", text.FgRed.Sprint("✗"), msg)
	}

	if r.debug {
		for _, a := range result.Assertions {
			if a.Passed {
				fmt.Fprintf(r.out, "     %s %s\n", text.FgGreen.Sprint("✓"), a.Message)
			}
		}
	}
}

// ReportModuleResult is called when a module completes
func (r *consoleReporter) ReportModuleResult(result ModuleResult) {
	if !r.verbose {
		return
	}
	fmt.Fprintf(r.out, "   📊 %d passed", result.Passed)
	if result.Failed > 0 {
		fmt.Fprintf(r.out, ", %d failed", result.Failed)
	}
	fmt.Fprintf(r.out, " (%v)\n\n", result.Duration.Round(time.Microsecond))
}

// ReportSuiteResult is called when all tests complete
func (r *consoleReporter) ReportSuiteResult(result SuiteResult) {
	fmt.Fprintf(r.out, "\n🏁 Test run complete\n")
	fmt.Fprintf(r.out, "⏱️  Duration: %v\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintf(r.out, "📊 Results:\n")
	fmt.Fprintf(r.out, "   ✅ Passed: %d\n", result.PassedTests)

	if result.FailedTests > 0 {
		fmt.Fprintf(r.out, "   ❌ Failed: %d\n", result.FailedTests)
	}

	if result.ErrorTests > 0 {
		fmt.Fprintf(r.out, "   💥 Errors: %d\n", result.ErrorTests)
	}

	if result.SkippedTests > 0 {
		fmt.Fprintf(r.out, "   ⏭️  Skipped: %d\n", result.SkippedTests)
	}

	fmt.Fprintf(r.out, "   📈 Total: %d\n", result.TotalTests)

	r.renderFailures(result)

	if result.OK() {
		fmt.Fprintf(r.out, "\n🎉 All tests passed!\n")
	} else {
		fmt.Fprintf(r.out, "\n💔 Some tests failed\n")
	}

	if r.reportPath != "" {
		path, err := SaveReport(r.reportPath, result)
		if err != nil {
			fmt.Fprintf(r.out, "⚠️  Failed to save detailed report: %v\n", err)
		} else {
			fmt.Fprintf(r.out, "📄 Detailed report saved to: %s\n", path)
		}
	}
}

func (r *consoleReporter) renderFailures(result SuiteResult) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("TEST"),
		text.FgHiCyan.Sprint("FAILURE"),
	})

	rows := 0
	for _, tr := range result.Tests() {
		for _, msg := range tr.Failures() {
			t.AppendRow(table.Row{tr.ID, truncate(msg, maxMessageWidth)})
			rows++
		}
	}
	if rows == 0 {
		return
	}

	fmt.Fprintln(r.out)
	t.Render()
}

// SaveReport writes result as indented JSON into dir and returns the file
// path.
func SaveReport(dir string, result SuiteResult) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	timestamp := result.StartTime.Format("20060102-150405")
	filename := fmt.Sprintf("leakctl-report-%s-%s.json", timestamp, shortID(result.RunID))
	fullPath := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report to JSON: %w", err)
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return fullPath, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// resultSymbol returns an appropriate symbol for the test result
func resultSymbol(result TestResult) string {
	switch result {
	case ResultPassed:
		return "✅"
	case ResultFailed:
		return "❌"
	case ResultSkipped:
		return "⏭️"
	case ResultError:
		return "💥"
	default:
		return "❓"
	}
}

// NewQuietReporter creates a reporter that only outputs failures and a
// one-line summary.
func NewQuietReporter(out io.Writer) Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &quietReporter{out: out}
}

// quietReporter implements minimal output for CI/CD integration
type quietReporter struct {
	out io.Writer
}

func (r *quietReporter) ReportStart(Configuration) {}

func (r *quietReporter) ReportModuleStart(string) {}

func (r *quietReporter) ReportTestResult(result TestRunResult) {
	if result.Result != ResultFailed && result.Result != ResultError {
		return
	}
	for _, msg := range result.Failures() {
		fmt.Fprintf(r.out, "%s %s: %s\n", resultSymbol(result.Result), result.ID, msg)
	}
}

func (r *quietReporter) ReportModuleResult(ModuleResult) {}

func (r *quietReporter) ReportSuiteResult(result SuiteResult) {
	if result.OK() {
		fmt.Fprintf(r.out, "✅ All %d tests passed\n", result.PassedTests)
		return
	}
	fmt.Fprintf(r.out, "❌ %d/%d tests failed\n",
		result.FailedTests+result.ErrorTests, result.TotalTests)
}

// NewJSONReporter creates a reporter that prints the suite result as JSON
// once the run is over.
func NewJSONReporter(out io.Writer) Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &jsonReporter{out: out}
}

// jsonReporter implements JSON output for machine consumption
type jsonReporter struct {
	out io.Writer
}

func (r *jsonReporter) ReportStart(Configuration) {}

func (r *jsonReporter) ReportModuleStart(string) {}

func (r *jsonReporter) ReportTestResult(TestRunResult) {}

func (r *jsonReporter) ReportModuleResult(ModuleResult) {}

func (r *jsonReporter) ReportSuiteResult(result SuiteResult) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(r.out, `{"error": "Failed to marshal results: %v"}`+"\n", err)
		return
	}
	fmt.Fprintln(r.out, string(data))
}

// MultiReporter fans notifications out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) ReportStart(config Configuration) {
	for _, r := range m {
		r.ReportStart(config)
	}
}

func (m MultiReporter) ReportModuleStart(name string) {
	for _, r := range m {
		r.ReportModuleStart(name)
	}
}

func (m MultiReporter) ReportTestResult(result TestRunResult) {
	for _, r := range m {
		r.ReportTestResult(result)
	}
}

func (m MultiReporter) ReportModuleResult(result ModuleResult) {
	for _, r := range m {
		r.ReportModuleResult(result)
	}
}

func (m MultiReporter) ReportSuiteResult(result SuiteResult) {
	for _, r := range m {
		r.ReportSuiteResult(result)
	}
}
