package harness

import (
	"errors"
	"time"
)

// TestResult represents the result of test execution
type TestResult string

const (
	// ResultPassed indicates the test passed successfully
	ResultPassed TestResult = "PASSED"
	// ResultFailed indicates at least one assertion failed
	ResultFailed TestResult = "FAILED"
	// ResultSkipped indicates the test was not run
	ResultSkipped TestResult = "SKIPPED"
	// ResultError indicates the test body or one of its hooks panicked
	ResultError TestResult = "ERROR"
)

// ErrRunInProgress is returned when Run is called on a runner that is
// already running.
var ErrRunInProgress = errors.New("harness: run already in progress")

// Configuration defines the overall test execution configuration
type Configuration struct {
	// FailFast stops execution on first failure
	FailFast bool `yaml:"fail_fast" json:"fail_fast"`
	// Verbose enables detailed output
	Verbose bool `yaml:"verbose" json:"verbose"`
	// Debug enables debug output
	Debug bool `yaml:"debug" json:"debug"`
	// RequireAssertions fails tests that run no assertion and did not call
	// Expect(0).
	RequireAssertions bool `yaml:"require_assertions" json:"require_assertions"`
	// ReportPath is the directory detailed JSON reports are written to
	ReportPath string `yaml:"report_path,omitempty" json:"report_path,omitempty"`
}

// AssertionResult is a single recorded assertion.
type AssertionResult struct {
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// TestRunResult represents the result of a single test
type TestRunResult struct {
	// ID is "<module>: <test>"
	ID     string     `json:"id"`
	Module string     `json:"module"`
	Name   string     `json:"name"`
	Result TestResult `json:"result"`
	// Expected is the final expected assertion count (0 when undeclared)
	Expected   int               `json:"expected"`
	Assertions []AssertionResult `json:"assertions"`
	StartTime  time.Time         `json:"start_time"`
	EndTime    time.Time         `json:"end_time"`
	Duration   time.Duration     `json:"duration"`
	// Error holds the panic message for ResultError
	Error string `json:"error,omitempty"`
}

// Failures returns the messages of the failed assertions.
func (r TestRunResult) Failures() []string {
	var out []string
	for _, a := range r.Assertions {
		if !a.Passed {
			out = append(out, a.Message)
		}
	}
	return out
}

// ModuleResult groups the results of one module.
type ModuleResult struct {
	Name     string          `json:"name"`
	Tests    []TestRunResult `json:"tests"`
	Passed   int             `json:"passed"`
	Failed   int             `json:"failed"`
	Duration time.Duration   `json:"duration"`
}

// SuiteResult represents the overall result of a run
type SuiteResult struct {
	// RunID uniquely identifies the run in reports
	RunID         string         `json:"run_id"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
	Duration      time.Duration  `json:"duration"`
	TotalTests    int            `json:"total_tests"`
	PassedTests   int            `json:"passed_tests"`
	FailedTests   int            `json:"failed_tests"`
	SkippedTests  int            `json:"skipped_tests"`
	ErrorTests    int            `json:"error_tests"`
	Modules       []ModuleResult `json:"modules"`
	Configuration Configuration  `json:"configuration"`
}

// OK reports whether no test failed or errored.
func (s *SuiteResult) OK() bool {
	return s.FailedTests == 0 && s.ErrorTests == 0
}

// Tests flattens the module results in execution order.
func (s *SuiteResult) Tests() []TestRunResult {
	var out []TestRunResult
	for _, m := range s.Modules {
		out = append(out, m.Tests...)
	}
	return out
}

// Reporter defines how test results are reported
type Reporter interface {
	// ReportStart is called when the run begins
	ReportStart(config Configuration)
	// ReportModuleStart is called before the first test of a module
	ReportModuleStart(name string)
	// ReportTestResult is called when a test finishes
	ReportTestResult(result TestRunResult)
	// ReportModuleResult is called when a module's last test finished
	ReportModuleResult(result ModuleResult)
	// ReportSuiteResult is called when all tests complete
	ReportSuiteResult(result SuiteResult)
}
