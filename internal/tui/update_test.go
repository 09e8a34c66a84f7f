package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"leakctl/internal/harness"
	"leakctl/internal/leakcheck"
	"leakctl/pkg/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockClipboard(t *testing.T, err error) *string {
	t.Helper()
	var copied string
	original := writeClipboard
	writeClipboard = func(text string) error {
		if err != nil {
			return err
		}
		copied = text
		return nil
	}
	t.Cleanup(func() { writeClipboard = original })
	return &copied
}

func result(module, name string, res harness.TestResult, assertions ...harness.AssertionResult) harness.TestRunResult {
	return harness.TestRunResult{
		ID:         module + ": " + name,
		Module:     module,
		Name:       name,
		Result:     res,
		Assertions: assertions,
	}
}

func leakingResult() harness.TestRunResult {
	return result("Integration | Component | leaking-component", "it renders", harness.ResultFailed,
		harness.AssertionResult{Passed: true, Message: "rendered"},
		harness.AssertionResult{Passed: false, Message: leakcheck.LeakMessage("Application")},
	)
}

func update(t *testing.T, m *Model, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := m.Update(msg)
	require.Same(t, m, next)
	return cmd
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestUpdate_TestEndAddsRows(t *testing.T) {
	m := NewModel(leakcheck.StrategyPerTest, nil, nil)

	update(t, m, moduleStartMsg("Integration | Component | leaking-component"))
	assert.Equal(t, "Integration | Component | leaking-component", m.module)

	update(t, m, testEndMsg(leakingResult()))
	update(t, m, testEndMsg(result("clean", "it renders", harness.ResultPassed,
		harness.AssertionResult{Passed: true, Message: "ok"})))

	rows := m.table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, IconCross, rows[0][0])
	assert.Equal(t, "1/2", rows[0][3])
	assert.Equal(t, "Leaked Application", rows[0][4])
	assert.Equal(t, IconCheck, rows[1][0])

	view := m.View()
	assert.Contains(t, view, leakcheck.LeakModuleName)
	assert.Contains(t, view, "Leaked Application")
}

func TestUpdate_RunDone(t *testing.T) {
	m := NewModel(leakcheck.StrategyAfterAll, nil, nil)
	suiteResult := &harness.SuiteResult{TotalTests: 1, PassedTests: 1}

	cmd := update(t, m, runDoneMsg{result: suiteResult})
	assert.Nil(t, cmd)
	assert.True(t, m.Done())

	got, err := m.Result()
	assert.NoError(t, err)
	assert.Same(t, suiteResult, got)
	assert.Contains(t, m.View(), "No leaked owners")
}

func TestUpdate_QuitWhileRunningCancels(t *testing.T) {
	cancelled := 0
	m := NewModel(leakcheck.StrategyPerTest, func() { cancelled++ }, nil)

	cmd := update(t, m, keyPress("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, 1, cancelled)
	assert.True(t, m.quitting)

	update(t, m, keyPress("q"))
	assert.Equal(t, 1, cancelled, "a second quit does not cancel again")

	cmd = update(t, m, runDoneMsg{err: errors.New("interrupted")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_QuitAfterRun(t *testing.T) {
	m := NewModel(leakcheck.StrategyPerTest, nil, nil)
	update(t, m, runDoneMsg{result: &harness.SuiteResult{}})

	cmd := update(t, m, keyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_Filter(t *testing.T) {
	m := NewModel(leakcheck.StrategyPerTest, nil, nil)
	update(t, m, testEndMsg(leakingResult()))
	update(t, m, testEndMsg(result("clean", "it renders", harness.ResultPassed)))

	update(t, m, keyPress("/"))
	assert.True(t, m.filtering)

	for _, r := range "clean" {
		update(t, m, keyPress(string(r)))
	}
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "clean", m.table.Rows()[0][1])

	update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.filtering)
	assert.Len(t, m.table.Rows(), 1, "the filter stays applied")

	update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Len(t, m.table.Rows(), 2)
}

func TestUpdate_CopyFailures(t *testing.T) {
	copied := mockClipboard(t, nil)
	m := NewModel(leakcheck.StrategyPerTest, nil, nil)
	update(t, m, testEndMsg(leakingResult()))

	cmd := update(t, m, keyPress("c"))
	assert.NotNil(t, cmd)
	assert.Equal(t, "Integration | Component | leaking-component: it renders\nLeaked Application", *copied)
	assert.Contains(t, m.status, "Copied 1 failure(s)")
}

func TestUpdate_CopySummary(t *testing.T) {
	copied := mockClipboard(t, nil)
	m := NewModel(leakcheck.StrategyPerTest, nil, nil)
	update(t, m, testEndMsg(leakingResult()))
	update(t, m, testEndMsg(result("clean", "it renders", harness.ResultPassed)))

	update(t, m, keyPress("y"))
	assert.True(t, strings.HasPrefix(*copied, "leakctl per-test: 1 passed, 1 failed\n"))
	assert.Contains(t, *copied, "  Leaked Application\n")
}

func TestUpdate_CopyFailureIsLogged(t *testing.T) {
	mockClipboard(t, errors.New("no clipboard"))
	m := NewModel(leakcheck.StrategyPerTest, nil, nil)
	update(t, m, testEndMsg(leakingResult()))

	update(t, m, keyPress("c"))
	assert.Equal(t, "Copy failed", m.status)
	require.Len(t, m.logLines, 1)
	assert.Contains(t, m.logLines[0], "no clipboard")
}

func TestUpdate_StatusClears(t *testing.T) {
	m := NewModel(leakcheck.StrategyPerTest, nil, nil)
	m.setStatus("first")
	m.setStatus("second")

	update(t, m, clearStatusMsg{seq: 1})
	assert.Equal(t, "second", m.status, "a stale clear is ignored")

	update(t, m, clearStatusMsg{seq: 2})
	assert.Empty(t, m.status)
}

func TestUpdate_LogEntries(t *testing.T) {
	ch := make(chan logging.LogEntry, 1)
	m := NewModel(leakcheck.StrategyPerTest, nil, ch)

	ch <- logging.LogEntry{
		Timestamp: time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC),
		Level:     logging.LevelInfo,
		Subsystem: "LeakCheck",
		Message:   "checkpoint",
	}
	msg := m.listenForLogs()()
	cmd := update(t, m, msg)
	assert.NotNil(t, cmd, "the listener is re-armed")
	require.Len(t, m.logLines, 1)
	assert.Contains(t, m.logLines[0], "[10:30:00]")
	assert.Contains(t, m.logLines[0], "LeakCheck: checkpoint")

	close(ch)
	update(t, m, m.listenForLogs()())
	assert.Nil(t, m.logChannel)
	assert.Nil(t, m.listenForLogs())
}

func TestUpdate_ToggleLogAndHelp(t *testing.T) {
	m := NewModel(leakcheck.StrategyPerTest, nil, nil)
	update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	before := m.table.Height()

	update(t, m, keyPress("L"))
	assert.True(t, m.showLog)
	assert.Less(t, m.table.Height(), before)
	assert.Contains(t, m.View(), "No log output")

	update(t, m, keyPress("h"))
	assert.True(t, m.help.ShowAll)
}

func TestAppendLogLine_Bounded(t *testing.T) {
	m := NewModel(leakcheck.StrategyPerTest, nil, nil)
	for i := 0; i < maxLogLines+10; i++ {
		m.appendLogLine("line")
	}
	assert.Len(t, m.logLines, maxLogLines)
}
