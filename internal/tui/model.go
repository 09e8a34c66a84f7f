package tui

import (
	"context"
	"fmt"
	"strings"

	"leakctl/internal/harness"
	"leakctl/internal/leakcheck"
	"leakctl/pkg/logging"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// Model is the Bubble Tea model of a leak detection run.
type Model struct {
	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	table   table.Model
	filter  textinput.Model

	filtering bool
	showHelp  bool
	showLog   bool
	quitting  bool

	strategy leakcheck.Strategy
	module   string
	results  []harness.TestRunResult
	// visible holds the indexes of results matching the filter, in table
	// order.
	visible []int
	done    bool
	result  *harness.SuiteResult
	err     error

	logLines   []string
	logChannel <-chan logging.LogEntry

	status    string
	statusSeq int

	width  int
	height int
	cancel context.CancelFunc
}

// NewModel creates the model. cancel stops the run when the user quits
// early; logChannel may be nil.
func NewModel(strategy leakcheck.Strategy, cancel context.CancelFunc, logChannel <-chan logging.LogEntry) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.CharLimit = 80
	ti.Width = 40

	m := &Model{
		keys:       DefaultKeyMap(),
		help:       help.New(),
		spinner:    s,
		filter:     ti,
		strategy:   strategy,
		logChannel: logChannel,
		cancel:     cancel,
		width:      120,
		height:     30,
	}
	m.initTable()
	return m
}

func (m *Model) initTable() {
	t := table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(true)
	t.SetStyles(s)

	m.table = t
	m.refreshRows()
}

func (m *Model) columns() []table.Column {
	failureWidth := m.width - (3 + 32 + 30 + 8) - 12
	if failureWidth < 20 {
		failureWidth = failureColumnWidth
	}
	return []table.Column{
		{Title: "", Width: 3},
		{Title: "Module", Width: 32},
		{Title: "Test", Width: 30},
		{Title: "Asserts", Width: 8},
		{Title: "Failure", Width: failureWidth},
	}
}

func (m *Model) tableHeight() int {
	h := m.height - 10
	if m.showLog {
		h -= logPaneHeight + 2
	}
	if h < 3 {
		h = 3
	}
	return h
}

// Init starts the spinner and the log listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForLogs())
}

func (m *Model) listenForLogs() tea.Cmd {
	if m.logChannel == nil {
		return nil
	}
	ch := m.logChannel
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return logChannelClosedMsg{}
		}
		return logEntryMsg(entry)
	}
}

// Result returns the suite result once the run is over.
func (m *Model) Result() (*harness.SuiteResult, error) {
	return m.result, m.err
}

// Done reports whether the run has returned.
func (m *Model) Done() bool { return m.done }

func (m *Model) refreshRows() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	failureWidth := m.columns()[4].Width

	m.visible = m.visible[:0]
	rows := make([]table.Row, 0, len(m.results))
	for i, r := range m.results {
		if query != "" && !strings.Contains(strings.ToLower(r.ID), query) {
			continue
		}
		m.visible = append(m.visible, i)

		failure := ""
		if f := r.Failures(); len(f) > 0 {
			failure = truncate(f[0], failureWidth)
			if len(f) > 1 {
				failure = truncate(fmt.Sprintf("%s (+%d)", f[0], len(f)-1), failureWidth)
			}
		}
		rows = append(rows, table.Row{
			resultIcon(r.Result),
			truncate(r.Module, 32),
			truncate(r.Name, 30),
			fmt.Sprintf("%d/%d", len(r.Assertions)-len(r.Failures()), len(r.Assertions)),
			failure,
		})
	}
	m.table.SetRows(rows)
}

// selected returns the result under the table cursor.
func (m *Model) selected() (harness.TestRunResult, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return harness.TestRunResult{}, false
	}
	return m.results[m.visible[idx]], true
}

// leaks groups leak failures by test id in the order the tests finished.
func (m *Model) leaks() ([]string, map[string][]string) {
	var order []string
	byTest := make(map[string][]string)
	for _, r := range m.results {
		for _, f := range r.Failures() {
			if !leakcheck.IsLeakMessage(f) {
				continue
			}
			if _, seen := byTest[r.ID]; !seen {
				order = append(order, r.ID)
			}
			byTest[r.ID] = append(byTest[r.ID], f)
		}
	}
	return order, byTest
}

func resultIcon(r harness.TestResult) string {
	switch r {
	case harness.ResultPassed:
		return IconCheck
	case harness.ResultFailed:
		return IconCross
	case harness.ResultError:
		return IconFire
	case harness.ResultSkipped:
		return IconSkip
	default:
		return "?"
	}
}
