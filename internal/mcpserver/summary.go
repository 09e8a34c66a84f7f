package mcpserver

import (
	"leakctl/internal/harness"
	"leakctl/internal/leakcheck"
)

// Summary is the result of leak_run_suite.
type Summary struct {
	RunID    string             `json:"run_id"`
	Strategy leakcheck.Strategy `json:"strategy"`
	OK       bool               `json:"ok"`
	Total    int                `json:"total"`
	Passed   int                `json:"passed"`
	Failed   int                `json:"failed"`
	Errored  int                `json:"errored"`
	Skipped  int                `json:"skipped"`
	Leaks    []TestFailures     `json:"leaks,omitempty"`
	Failures []TestFailures     `json:"failures,omitempty"`
}

// TestFailures lists the failure messages of one test.
type TestFailures struct {
	Test     string   `json:"test"`
	Messages []string `json:"messages"`
}

// Summarize splits the failures of result into leaked owners and other
// failures.
func Summarize(strategy leakcheck.Strategy, result *harness.SuiteResult) Summary {
	s := Summary{
		RunID:    result.RunID,
		Strategy: strategy,
		OK:       result.OK(),
		Total:    result.TotalTests,
		Passed:   result.PassedTests,
		Failed:   result.FailedTests,
		Errored:  result.ErrorTests,
		Skipped:  result.SkippedTests,
	}
	for _, tr := range result.Tests() {
		var leaks, other []string
		for _, msg := range tr.Failures() {
			if leakcheck.IsLeakMessage(msg) {
				leaks = append(leaks, msg)
			} else {
				other = append(other, msg)
			}
		}
		if len(leaks) > 0 {
			s.Leaks = append(s.Leaks, TestFailures{Test: tr.ID, Messages: leaks})
		}
		if len(other) > 0 {
			s.Failures = append(s.Failures, TestFailures{Test: tr.ID, Messages: other})
		}
	}
	return s
}
