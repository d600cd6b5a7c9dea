package state

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cloudcurio/cloudcurio-installer/internal/colors"
	"github.com/cloudcurio/cloudcurio-installer/internal/install"
)

// toggleFocusedTool toggles the tool under the cursor.
func (m *Model) toggleFocusedTool() tea.Cmd {
	tools, err := m.catalog.ToolsIn(m.nav.Focused())
	cursor := m.uiState.GetToolCursor()
	if err != nil || cursor < 0 || cursor >= len(tools) {
		return nil
	}
	tool := tools[cursor]
	if _, err := m.selection.Toggle(tool.Tag); err != nil {
		return m.report(err)
	}
	return emit(SelectionChangedMsg{Selected: m.selection.Current()})
}

// toggleFocusedCategory selects the whole focused category, or clears it when
// every tool is already selected.
func (m *Model) toggleFocusedCategory() tea.Cmd {
	name := m.nav.Focused()
	selected, total, err := m.selection.CountIn(name)
	if err != nil {
		return nil
	}
	if selected == total {
		_, err = m.selection.DeselectCategory(name)
	} else {
		_, err = m.selection.SelectCategory(name)
	}
	if err != nil {
		return m.report(err)
	}
	return emit(SelectionChangedMsg{Selected: m.selection.Current()})
}

// startInstall builds the invocation for the selection and launches it.
func (m *Model) startInstall() tea.Cmd {
	inv, err := m.builder.Build(m.selection.Current())
	if err != nil {
		return m.report(err)
	}
	s, err := m.manager.Start(m.ctx, inv)
	if err != nil {
		return m.report(err)
	}
	colors.StructuredInfo("tui", "install", "started", nil, s.ID(), map[string]interface{}{"tags_count": len(inv.Tags)})

	m.session = s
	m.logSeen = 0
	m.lastStatus = ""
	m.logLines = nil
	m.uiState.GetViewport().SetContent("")
	m.uiState.GetViewport().GotoTop()
	m.uiState.SetView(ViewStatus)
	m.errorHandler.Info(fmt.Sprintf("Installing %d tool(s)...", len(inv.Tags)))

	return tea.Batch(m.poll(s.ID()), m.spinner.Tick, m.clearStatusAfter(errorClearDuration))
}

// cancelInstall cancels the running session.
func (m *Model) cancelInstall() tea.Cmd {
	if !m.running() {
		m.errorHandler.Warning("No installation is running")
		return m.clearStatusAfter(errorClearDuration)
	}
	m.session.Cancel()
	return m.poll(m.session.ID())
}

// copyCommand puts the command line for the current selection on the clipboard.
func (m *Model) copyCommand() tea.Cmd {
	inv, err := m.builder.Build(m.selection.Current())
	if err != nil {
		return m.report(err)
	}
	line := inv.CommandLine()
	if err := m.copyToClipboard(line); err != nil {
		m.errorHandler.Error(fmt.Sprintf("Failed to copy command: %v", err))
		return m.clearStatusAfter(errorClearDuration)
	}
	m.errorHandler.Success("Copied: " + line)
	return m.clearStatusAfter(errorClearDuration)
}

// refresh reloads history and re-renders.
func (m *Model) refresh() tea.Cmd {
	m.errorHandler.Info("Refreshed")
	return tea.Batch(m.loadHistory(), m.clearStatusAfter(errorClearDuration))
}

func (m *Model) showStatus() {
	m.uiState.SetView(ViewStatus)
}

// quit cancels a running session before leaving.
func (m *Model) quit() tea.Cmd {
	if m.running() {
		m.session.Cancel()
	}
	return tea.Quit
}

// finishMessage reports a terminal status on the status line.
func (m *Model) finishMessage(status install.Status) {
	switch status {
	case install.StatusSucceeded:
		m.errorHandler.Success("Installation completed successfully")
	case install.StatusCancelled:
		m.errorHandler.Warning("Installation cancelled")
	case install.StatusFailed:
		if err := m.session.Err(); err != nil {
			m.errorHandler.Error(err.Error())
			return
		}
		code, _ := m.session.ExitCode()
		m.errorHandler.Error(fmt.Sprintf("Installation failed with exit code %d", code))
	}
}
