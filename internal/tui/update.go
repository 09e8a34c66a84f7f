package tui

import (
	"fmt"
	"strings"
	"time"

	"leakctl/internal/harness"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const statusTimeout = 3 * time.Second

// Update handles Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetColumns(m.columns())
		m.table.SetHeight(m.tableHeight())
		m.refreshRows()
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case moduleStartMsg:
		m.module = string(msg)
		return m, nil

	case testEndMsg:
		m.results = append(m.results, msg.toResult())
		m.refreshRows()
		return m, nil

	case runDoneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		m.module = ""
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case logEntryMsg:
		m.appendLogEntry(msg.toEntry())
		return m, m.listenForLogs()

	case logChannelClosedMsg:
		m.logChannel = nil
		return m, nil

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		switch msg.Type {
		case tea.KeyEnter:
			m.filtering = false
			m.filter.Blur()
			m.table.Focus()
			return m, nil
		case tea.KeyEsc:
			m.filtering = false
			m.filter.Blur()
			m.filter.SetValue("")
			m.table.Focus()
			m.refreshRows()
			return m, nil
		case tea.KeyCtrlC:
			return m.quit()
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.refreshRows()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.table.Blur()
		return m, m.filter.Focus()

	case key.Matches(msg, m.keys.Esc):
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.refreshRows()
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		r, ok := m.selected()
		if !ok {
			return m, m.setStatus("Nothing selected")
		}
		failures := r.Failures()
		if len(failures) == 0 {
			return m, m.setStatus(fmt.Sprintf("%s has no failures", r.ID))
		}
		text := r.ID + "\n" + strings.Join(failures, "\n")
		if err := writeClipboard(text); err != nil {
			m.appendLogLine("[ERROR] Failed to copy failures: " + err.Error())
			return m, m.setStatus("Copy failed")
		}
		return m, m.setStatus(fmt.Sprintf("Copied %d failure(s) of %s", len(failures), r.ID))

	case key.Matches(msg, m.keys.CopySummary):
		if err := writeClipboard(m.summaryText()); err != nil {
			m.appendLogLine("[ERROR] Failed to copy summary: " + err.Error())
			return m, m.setStatus("Copy failed")
		}
		return m, m.setStatus("Summary copied to clipboard")

	case key.Matches(msg, m.keys.ToggleLog):
		m.showLog = !m.showLog
		m.table.SetHeight(m.tableHeight())
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// quit stops a running suite and exits once it has returned, or exits
// immediately when it already has.
func (m *Model) quit() (tea.Model, tea.Cmd) {
	if m.done {
		return m, tea.Quit
	}
	if m.quitting {
		return m, nil
	}
	m.quitting = true
	if m.cancel != nil {
		m.cancel()
	}
	return m, m.setStatus("Stopping run...")
}

func (m *Model) setStatus(status string) tea.Cmd {
	m.statusSeq++
	m.status = status
	seq := m.statusSeq
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

// summaryText is the plain text copied by CopySummary.
func (m *Model) summaryText() string {
	var b strings.Builder
	passed, failed := 0, 0
	for _, r := range m.results {
		switch r.Result {
		case harness.ResultPassed:
			passed++
		case harness.ResultFailed, harness.ResultError:
			failed++
		}
	}
	fmt.Fprintf(&b, "leakctl %s: %d passed, %d failed\n", m.strategy, passed, failed)

	order, byTest := m.leaks()
	for _, id := range order {
		fmt.Fprintf(&b, "%s\n", id)
		for _, msg := range byTest[id] {
			fmt.Fprintf(&b, "  %s\n", msg)
		}
	}
	return b.String()
}
