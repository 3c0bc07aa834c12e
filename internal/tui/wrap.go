package tui

import "github.com/mattn/go-runewidth"

const ellipsis = "…"

// truncateLine cuts s to fit width terminal cells.
func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, ellipsis)
}
