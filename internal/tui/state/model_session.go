package state

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cloudcurio/cloudcurio-installer/internal/install"
)

// poll compares the session with what the UI has seen and emits
// LogAppendedMsg and StatusChangedMsg for the difference. It reschedules
// itself until the session is terminal.
func (m *Model) poll(sessionID string) tea.Cmd {
	s := m.session
	if s == nil || s.ID() != sessionID {
		return nil
	}

	// Status first: once terminal, no more lines can follow it.
	status := s.Status()
	var cmds []tea.Cmd
	if lines := s.LogSince(m.logSeen); len(lines) > 0 {
		m.logSeen += len(lines)
		cmds = append(cmds, emit(LogAppendedMsg{SessionID: sessionID, Lines: lines, Total: m.logSeen}))
	}
	if status != m.lastStatus {
		m.lastStatus = status
		cmds = append(cmds, emit(StatusChangedMsg{SessionID: sessionID, Status: status}))
	}
	if !status.Terminal() {
		cmds = append(cmds, pollAfter(pollInterval, sessionID))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Sequence(cmds...)
}

func (m *Model) handleLogAppended(msg LogAppendedMsg) (tea.Model, tea.Cmd) {
	if m.session == nil || m.session.ID() != msg.SessionID {
		return m, nil
	}
	vp := m.uiState.GetViewport()
	follow := vp.AtBottom()
	m.logLines = append(m.logLines, msg.Lines...)
	vp.SetContent(strings.Join(m.logLines, "\n"))
	if follow {
		vp.GotoBottom()
	}
	return m, nil
}

func (m *Model) handleStatusChanged(msg StatusChangedMsg) (tea.Model, tea.Cmd) {
	if m.session == nil || m.session.ID() != msg.SessionID || !msg.Status.Terminal() {
		return m, nil
	}

	m.finishMessage(msg.Status)
	cmds := []tea.Cmd{m.loadHistory(), m.clearStatusAfter(errorClearDuration)}
	if msg.Status == install.StatusSucceeded && m.clearOnSuccess {
		m.selection.Clear()
		cmds = append(cmds, emit(SelectionChangedMsg{Selected: m.selection.Current()}))
	}
	return m, tea.Batch(cmds...)
}
