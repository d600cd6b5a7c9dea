package state

import (
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsg processes keyboard input for the TUI.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Keys shared by both views.
	switch key {
	case "ctrl+c", "q":
		return m, m.quit()
	case "i":
		return m, m.startInstall()
	case "c":
		return m, m.cancelInstall()
	case "y":
		return m, m.copyCommand()
	case "r":
		return m, m.refresh()
	}

	if m.uiState.GetView() == ViewStatus {
		return m.handleStatusKey(msg)
	}
	return m.handleBrowseKey(key)
}

func (m *Model) handleBrowseKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		return m, m.move(-1)
	case "down", "j":
		return m, m.move(1)
	case "tab":
		if m.uiState.GetPane() == PaneCategories {
			m.uiState.SetPane(PaneTools)
		} else {
			m.uiState.SetPane(PaneCategories)
		}
	case "left", "h":
		m.uiState.SetPane(PaneCategories)
	case "right", "l":
		m.uiState.SetPane(PaneTools)
	case "enter":
		if m.uiState.GetPane() == PaneCategories {
			m.uiState.SetPane(PaneTools)
			return m, nil
		}
		return m, m.toggleFocusedTool()
	case " ":
		if m.uiState.GetPane() == PaneTools {
			return m, m.toggleFocusedTool()
		}
		return m, m.toggleFocusedCategory()
	case "a":
		return m, m.toggleFocusedCategory()
	case "s":
		m.showStatus()
	case "esc":
		m.errorHandler.Clear()
		m.hasStatusMessage = false
	}
	return m, nil
}

func (m *Model) handleStatusKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "s":
		m.uiState.SetView(ViewBrowse)
		return m, nil
	}
	vp := m.uiState.GetViewport()
	var cmd tea.Cmd
	*vp, cmd = vp.Update(msg)
	return m, cmd
}

// move shifts focus within the active pane.
func (m *Model) move(delta int) tea.Cmd {
	if m.uiState.GetPane() == PaneCategories {
		var name string
		if delta < 0 {
			name = m.nav.Prev()
		} else {
			name = m.nav.Next()
		}
		m.resetToolCursor()
		return emit(CategoryFocusedMsg{Name: name})
	}

	tools, err := m.catalog.ToolsIn(m.nav.Focused())
	if err != nil {
		return nil
	}
	m.uiState.SetToolCursor(m.uiState.GetToolCursor()+delta, len(tools))
	return nil
}
