package tui

import (
	"fmt"

	"leakctl/pkg/logging"
)

// appendLogEntry formats entry and appends it to the activity log, keeping
// at most maxLogLines lines.
func (m *Model) appendLogEntry(entry logging.LogEntry) {
	line := fmt.Sprintf("[%s] %s %s: %s",
		entry.Timestamp.Format("15:04:05"),
		entry.Level,
		entry.Subsystem,
		entry.Message,
	)
	if entry.Err != nil {
		line += ": " + entry.Err.Error()
	}
	m.appendLogLine(line)
}

func (m *Model) appendLogLine(line string) {
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
}
