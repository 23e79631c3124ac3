package util

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Terminal control sequences
const (
	ColorReset   = "\033[0m"
	ColorBlue    = "\033[34m"
	ColorCyan    = "\033[36m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorRed     = "\033[31m"
	ColorMagenta = "\033[35m"
	ColorBold    = "\033[1m"
	ColorDim     = "\033[2m"

	ClearScreen     = "\033[2J"   // Clear entire screen
	ClearScrollback = "\033[3J"   // Clear scrollback buffer
	MoveCursorHome  = "\033[H"    // Move cursor to home position
	HideCursor      = "\033[?25l" // Hide cursor
	ShowCursor      = "\033[?25h" // Show cursor
	EnterAltScreen  = "\033[?1049h"
	ExitAltScreen   = "\033[?1049l"
	ClearLineToEnd  = "\033[0K"
)

// Bar glyphs
const (
	BarSelf     = "█"
	BarChildren = "▒"
	BarMarker   = "│"
)

// GetDisplayWidth calculates the actual display width of a string, accounting for wide runes
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadRight truncates or pads text to exactly width terminal columns.
func PadRight(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) > width {
		text = runewidth.Truncate(text, width, "…")
	}
	return runewidth.FillRight(text, width)
}

// PadLeft right-aligns text in width terminal columns.
func PadLeft(text string, width int) string {
	if runewidth.StringWidth(text) >= width {
		return text
	}
	return runewidth.FillLeft(text, width)
}

// CreateBar draws a record bar in a column strip of size columns. The own
// span is drawn solid from left over width columns, the span including
// children continues shaded up to withChildren columns.
func CreateBar(left, width, withChildren, size int) string {
	if size <= 0 {
		return ""
	}
	left = clampInt(left, 0, size)
	width = clampInt(width, 0, size-left)
	withChildren = clampInt(withChildren, width, size-left)

	return strings.Repeat(" ", left) +
		strings.Repeat(BarSelf, width) +
		strings.Repeat(BarChildren, withChildren-width) +
		strings.Repeat(" ", size-left-withChildren)
}

// CreateMarkerLine puts a divider at every offset of a strip of size columns.
func CreateMarkerLine(offsets []int, size int) string {
	if size <= 0 {
		return ""
	}
	line := []rune(strings.Repeat(" ", size))
	for _, o := range offsets {
		if o >= 0 && o < size {
			line[o] = []rune(BarMarker)[0]
		}
	}
	return string(line)
}

// Colorize wraps text in an ANSI color when enabled.
func Colorize(text, color string, enabled bool) string {
	if !enabled || color == "" {
		return text
	}
	return color + text + ColorReset
}

// FormatHeaderTitle formats main header titles (Magenta + Bold)
func FormatHeaderTitle(title string) string {
	return fmt.Sprintf("%s%s%s%s", ColorBold, ColorMagenta, title, ColorReset)
}

// FormatSectionSeparator creates a visual separator line of width columns
func FormatSectionSeparator(width int) string {
	if width <= 0 {
		width = 80
	}
	return strings.Repeat("─", width)
}

// CenterText centers text within the given width
func CenterText(text string, width int) string {
	w := runewidth.StringWidth(text)
	if w >= width {
		return runewidth.Truncate(text, width, "")
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-padding-w)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
