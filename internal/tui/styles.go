package tui

import (
	"github.com/charmbracelet/lipgloss"
)

const (
	// maxLogLines bounds the activity log kept in memory.
	maxLogLines = 500
	// logPaneHeight is the number of log lines shown when the log is open.
	logPaneHeight = 8
	// failureColumnWidth is the default width of the failure column.
	failureColumnWidth = 60
)

const (
	IconCheck     = "✔"
	IconCross     = "❌"
	IconSkip      = "⏭"
	IconFire      = "🔥"
	IconSparkles  = "✨"
	IconHourglass = "⏳"
)

var (
	// appStyle defines the overall margin for the application view.
	appStyle = lipgloss.NewStyle().Margin(0, 0)

	// headerStyle is for the title bar at the top of the TUI.
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}).
			Background(lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#303030"}).
			Padding(0, 2)

	tableStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	leakPanelStyle = panelStyle.
			BorderForeground(lipgloss.AdaptiveColor{Light: "#B71C1C", Dark: "#EF5350"})

	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1B5E20", Dark: "#81C784"})
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#B71C1C", Dark: "#EF5350"})
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"})

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}).
			Background(lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#2A2A3A"}).
			Padding(0, 1)
)
