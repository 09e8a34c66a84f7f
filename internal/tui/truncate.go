package tui

import "github.com/mattn/go-runewidth"

// truncate shortens s to width terminal cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
