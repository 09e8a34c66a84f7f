package tui

import (
	"leakctl/internal/harness"
	"leakctl/pkg/logging"
)

// moduleStartMsg is sent when the runner enters a module.
type moduleStartMsg string

// testEndMsg carries a finished test.
type testEndMsg harness.TestRunResult

// runDoneMsg is sent once the run returns.
type runDoneMsg struct {
	result *harness.SuiteResult
	err    error
}

// logEntryMsg carries one entry of the TUI log channel.
type logEntryMsg logging.LogEntry

// logChannelClosedMsg stops the log listener.
type logChannelClosedMsg struct{}

// clearStatusMsg clears the status bar message set at seq.
type clearStatusMsg struct{ seq int }

func (msg testEndMsg) toResult() harness.TestRunResult { return harness.TestRunResult(msg) }

func (msg logEntryMsg) toEntry() logging.LogEntry { return logging.LogEntry(msg) }
