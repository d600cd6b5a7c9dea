package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cloudcurio/cloudcurio-installer/internal/colors"
	"github.com/cloudcurio/cloudcurio-installer/internal/errors"
	"github.com/cloudcurio/cloudcurio-installer/internal/install"
	"github.com/mattn/go-runewidth"
)

const (
	mutedColor    = "241"
	ellipsis      = "…"
	checkboxOn    = "[x]"
	checkboxOff   = "[ ]"
	cursorMarker  = "›"
	paneMinWidth  = 20
	paneGapWidth  = 1
	borderPadding = 4 // left+right border and padding
)

var (
	accent   = lipgloss.Color(ansiColorNumber(colors.Blue))
	success  = lipgloss.Color(ansiColorNumber(colors.Green))
	warning  = lipgloss.Color(ansiColorNumber(colors.Yellow))
	failure  = lipgloss.Color(ansiColorNumber(colors.Red))
	info     = lipgloss.Color(ansiColorNumber(colors.Cyan))
	muted    = lipgloss.Color(mutedColor)
	inverted = lipgloss.Color("0")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	mutedStyle    = lipgloss.NewStyle().Foreground(muted)
	selectedStyle = lipgloss.NewStyle().Bold(true).Background(accent).Foreground(inverted)
	checkedStyle  = lipgloss.NewStyle().Foreground(success)

	activePane   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1)
	inactivePane = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1)
)

// ansiColorNumber extracts the color number from an ANSI escape sequence.
// Example: "\033[0;34m" -> "34"
func ansiColorNumber(ansi string) string {
	if len(ansi) < 2 {
		return ""
	}
	lastSemicolon := strings.LastIndex(ansi, ";")
	if lastSemicolon == -1 {
		return ""
	}
	return ansi[lastSemicolon+1 : len(ansi)-1]
}

// Truncate shortens s to width terminal cells, ending with an ellipsis.
// A non-positive width leaves s unchanged.
func Truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// pad right-pads s with spaces to width cells.
func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func statusColor(status install.Status) lipgloss.Color {
	switch status {
	case install.StatusSucceeded:
		return success
	case install.StatusFailed:
		return failure
	case install.StatusCancelled:
		return warning
	default:
		return info
	}
}

func statusIcon(status install.Status) string {
	switch status {
	case install.StatusSucceeded:
		return "✓"
	case install.StatusFailed:
		return "✗"
	case install.StatusCancelled:
		return "⊘"
	case install.StatusRunning:
		return "●"
	default:
		return "○"
	}
}

func messageStyle(t errors.Level) lipgloss.Style {
	switch t {
	case errors.LevelError:
		return lipgloss.NewStyle().Foreground(failure)
	case errors.LevelWarning:
		return lipgloss.NewStyle().Foreground(warning)
	case errors.LevelSuccess:
		return lipgloss.NewStyle().Foreground(success)
	default:
		return lipgloss.NewStyle().Foreground(info)
	}
}
