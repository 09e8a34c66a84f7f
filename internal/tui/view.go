package tui

import (
	"fmt"
	"strings"

	"leakctl/internal/harness"
	"leakctl/internal/leakcheck"

	"github.com/charmbracelet/lipgloss"
)

// View renders the run.
func (m *Model) View() string {
	sections := []string{
		m.renderHeader(),
		tableStyle.Render(m.table.View()),
	}
	if m.filtering || m.filter.Value() != "" {
		sections = append(sections, m.filter.View())
	}
	if leaks := m.renderLeaks(); leaks != "" {
		sections = append(sections, leaks)
	}
	if m.showLog {
		sections = append(sections, m.renderLog())
	}
	sections = append(sections, m.renderStatusBar(), m.help.View(m.keys))
	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderHeader() string {
	title := fmt.Sprintf("leakctl · %s owner leak detection", m.strategy)
	switch {
	case !m.done && m.module != "":
		title = fmt.Sprintf("%s %s · %s", m.spinner.View(), title, truncate(m.module, 40))
	case !m.done:
		title = fmt.Sprintf("%s %s", m.spinner.View(), title)
	}
	return headerStyle.Width(m.width).Render(title)
}

func (m *Model) renderLeaks() string {
	order, byTest := m.leaks()
	if len(order) == 0 {
		if m.done && m.err == nil {
			return passStyle.Render(IconSparkles + " No leaked owners")
		}
		return ""
	}

	var b strings.Builder
	b.WriteString(failStyle.Render(leakcheck.LeakModuleName))
	for _, id := range order {
		b.WriteString("\n" + truncate(id, m.width-6))
		for _, msg := range byTest[id] {
			b.WriteString("\n  " + mutedStyle.Render(msg))
		}
	}
	return leakPanelStyle.Width(m.width - 2).Render(b.String())
}

func (m *Model) renderLog() string {
	lines := m.logLines
	if len(lines) > logPaneHeight {
		lines = lines[len(lines)-logPaneHeight:]
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = truncate(l, m.width-4)
	}
	if len(out) == 0 {
		out = []string{mutedStyle.Render("No log output")}
	}
	return panelStyle.Width(m.width - 2).Render(strings.Join(out, "\n"))
}

func (m *Model) renderStatusBar() string {
	passed, failed, skipped := 0, 0, 0
	for _, r := range m.results {
		switch r.Result {
		case harness.ResultPassed:
			passed++
		case harness.ResultSkipped:
			skipped++
		default:
			failed++
		}
	}

	state := IconHourglass + " running"
	switch {
	case m.quitting && !m.done:
		state = IconHourglass + " stopping"
	case m.done && m.err != nil:
		state = IconCross + " " + m.err.Error()
	case m.done && failed > 0:
		state = IconCross + " failed"
	case m.done:
		state = IconCheck + " passed"
	}

	text := fmt.Sprintf("%s · %d passed · %d failed · %d skipped", state, passed, failed, skipped)
	if m.status != "" {
		text += " · " + m.status
	}
	return statusBarStyle.Width(m.width).Render(truncate(text, m.width-2))
}
