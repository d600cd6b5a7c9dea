// Package render turns installer UI state into styled terminal text.
// Every function is pure: the same state renders the same string.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/cloudcurio/cloudcurio-installer/internal/catalog"
	"github.com/cloudcurio/cloudcurio-installer/internal/errors"
	"github.com/cloudcurio/cloudcurio-installer/internal/history"
	"github.com/cloudcurio/cloudcurio-installer/internal/install"
	"github.com/dustin/go-humanize"
)

// Title is shown in the header.
const Title = "CloudCurio Infrastructure Installer"

// HeaderState defines the inputs needed to render the header.
type HeaderState struct {
	Width    int
	Selected int
	Total    int
	Status   install.Status // empty when nothing ran yet
}

// Header renders the title line with the selection count.
func Header(state HeaderState) string {
	right := fmt.Sprintf("Selected: %d/%d", state.Selected, state.Total)
	if state.Status != "" {
		right = fmt.Sprintf("%s  %s", right,
			lipgloss.NewStyle().Foreground(statusColor(state.Status)).Render(statusIcon(state.Status)+" "+string(state.Status)))
	}
	left := titleStyle.Render(Title)
	gap := state.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// CategoryRow is one entry of the category pane.
type CategoryRow struct {
	Name     string
	Selected int
	Total    int
}

// CategoryPaneState defines the inputs needed to render the category pane.
type CategoryPaneState struct {
	Rows    []CategoryRow
	Focused string
	Active  bool
	Width   int
	Height  int
}

// CategoryPane renders the left pane listing categories.
func CategoryPane(state CategoryPaneState) string {
	inner := innerWidth(state.Width)
	lines := []string{titleStyle.Render("Categories"), ""}
	for _, row := range state.Rows {
		count := fmt.Sprintf("%d/%d", row.Selected, row.Total)
		nameWidth := inner - len(count) - 3
		label := fmt.Sprintf("%s %s %s", marker(row.Name == state.Focused), pad(Truncate(row.Name, nameWidth), nameWidth), count)
		switch {
		case row.Name == state.Focused && state.Active:
			label = selectedStyle.Render(label)
		case row.Selected > 0:
			label = checkedStyle.Render(label)
		}
		lines = append(lines, label)
	}
	return paneStyle(state.Active, state.Width, state.Height).Render(strings.Join(lines, "\n"))
}

// ToolPaneState defines the inputs needed to render the tool pane.
type ToolPaneState struct {
	Category catalog.Category
	// IsSelected reports whether a tag is in the selection.
	IsSelected func(tag string) bool
	Cursor     int
	Active     bool
	Width      int
	Height     int
}

// ToolPane renders the right pane: the category description and its tools.
func ToolPane(state ToolPaneState) string {
	inner := innerWidth(state.Width)
	if state.Category.Name == "" {
		empty := mutedStyle.Render("Select a category to see its tools")
		return paneStyle(state.Active, state.Width, state.Height).Render(empty)
	}

	lines := []string{titleStyle.Render(Truncate(state.Category.Name, inner))}
	if state.Category.Description != "" {
		lines = append(lines, mutedStyle.Render(Truncate(state.Category.Description, inner)))
	}
	lines = append(lines, "")
	for i, tool := range state.Category.Tools {
		box := checkboxOff
		selected := state.IsSelected != nil && state.IsSelected(tool.Tag)
		if selected {
			box = checkboxOn
		}
		focused := i == state.Cursor
		label := Truncate(fmt.Sprintf("%s %s %s", marker(focused), box, tool.Label()), inner)
		switch {
		case focused && state.Active:
			label = selectedStyle.Render(pad(label, inner))
		case selected:
			label = checkedStyle.Render(label)
		}
		lines = append(lines, label)
	}
	return paneStyle(state.Active, state.Width, state.Height).Render(strings.Join(lines, "\n"))
}

// Panes joins the category and tool panes side by side.
func Panes(left, right string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", paneGapWidth), right)
}

// SplitWidth divides the terminal width between the two panes.
func SplitWidth(width int) (left, right int) {
	left = width / 3
	if left < paneMinWidth {
		left = paneMinWidth
	}
	right = width - left - paneGapWidth
	if right < paneMinWidth {
		right = paneMinWidth
	}
	return left, right
}

// SessionState defines the inputs needed to render the session summary.
type SessionState struct {
	Tags        []string
	CommandLine string
	Status      install.Status
	ExitCode    int
	Exited      bool
	Spinner     string
	StartedAt   time.Time
	FinishedAt  time.Time
	Now         time.Time
	Width       int
}

// Session renders the summary shown above the live log.
func Session(state SessionState) string {
	if state.Status == "" {
		return mutedStyle.Render("No installation has run yet. Press esc, select tools and press i.")
	}
	statusStyle := lipgloss.NewStyle().Bold(true).Foreground(statusColor(state.Status))
	icon := statusIcon(state.Status)
	if state.Status == install.StatusRunning && state.Spinner != "" {
		icon = state.Spinner
	}

	status := fmt.Sprintf("%s %s", icon, state.Status)
	if state.Exited && state.Status != install.StatusRunning {
		status = fmt.Sprintf("%s (exit code %d)", status, state.ExitCode)
	}
	end := state.FinishedAt
	if end.IsZero() {
		end = state.Now
	}
	elapsed := ""
	if !state.StartedAt.IsZero() && !end.IsZero() {
		elapsed = mutedStyle.Render("  " + Elapsed(end.Sub(state.StartedAt)))
	}

	lines := []string{
		titleStyle.Render(fmt.Sprintf("Installing %d tool(s): ", len(state.Tags))) + Truncate(strings.Join(state.Tags, ", "), state.Width-24),
		mutedStyle.Render("Command: ") + Truncate(state.CommandLine, state.Width-9),
		statusStyle.Render(status) + elapsed,
	}
	return strings.Join(lines, "\n")
}

// Elapsed formats a duration as whole seconds, e.g. "1m5s".
func Elapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Truncate(time.Second).String()
}

// HistoryState defines the inputs needed to render recent runs.
type HistoryState struct {
	Entries []history.Entry
	Now     time.Time
	Width   int
	Err     error
}

// History renders recent install runs, newest first.
func History(state HistoryState) string {
	lines := []string{titleStyle.Render("Recent installations")}
	switch {
	case state.Err != nil:
		lines = append(lines, lipgloss.NewStyle().Foreground(failure).Render("History unavailable: "+state.Err.Error()))
	case len(state.Entries) == 0:
		lines = append(lines, mutedStyle.Render("No installations recorded"))
	}
	for _, e := range state.Entries {
		status := install.Status(e.Status)
		age := humanize.RelTime(e.StartedAt, state.Now, "ago", "from now")
		exit := "-"
		if e.HasExit {
			exit = fmt.Sprintf("%d", e.ExitCode)
		}
		prefix := lipgloss.NewStyle().Foreground(statusColor(status)).Render(fmt.Sprintf("%s %-9s", statusIcon(status), status))
		rest := fmt.Sprintf(" exit %-4s %-16s %s", exit, age, strings.Join(e.Tags, ","))
		lines = append(lines, prefix+Truncate(rest, state.Width-12))
	}
	return strings.Join(lines, "\n")
}

// FooterState defines the inputs needed to render footer help text.
type FooterState struct {
	StatusView   bool
	Running      bool
	Width        int
	Message      string
	MessageLevel errors.Level
	HasMessage   bool
	SelectedTags int
}

// Footer renders the status message line and the key help.
func Footer(state FooterState) string {
	var help []string
	if state.StatusView {
		help = append(help, "j/k: scroll", "esc: back")
	} else {
		help = append(help, "j/k: move", "tab: switch pane", "space: toggle", "a: toggle all")
	}
	help = append(help, "i: install")
	if state.Running {
		help = append(help, "c: cancel")
	}
	help = append(help, "y: copy command", "s: status", "r: refresh", "q: quit")

	helpLine := mutedStyle.Render(Truncate(strings.Join(help, "  |  "), state.Width))
	if !state.HasMessage || state.Message == "" {
		return helpLine
	}
	msg := messageStyle(state.MessageLevel).Render(Truncate(messagePrefix(state.MessageLevel)+state.Message, state.Width))
	return msg + "\n" + helpLine
}

func messagePrefix(t errors.Level) string {
	switch t {
	case errors.LevelError:
		return "Error: "
	case errors.LevelWarning:
		return "Warning: "
	default:
		return ""
	}
}

func marker(focused bool) string {
	if focused {
		return cursorMarker
	}
	return " "
}

func innerWidth(width int) int {
	w := width - borderPadding
	if w < 1 {
		return 1
	}
	return w
}

func paneStyle(active bool, width, height int) lipgloss.Style {
	style := inactivePane
	if active {
		style = activePane
	}
	// Width and Height exclude the border.
	if width > 2 {
		style = style.Width(width - 2)
	}
	if height > 2 {
		style = style.Height(height - 2)
	}
	return style
}
