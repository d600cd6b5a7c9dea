package state

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cloudcurio/cloudcurio-installer/internal/history"
	"github.com/cloudcurio/cloudcurio-installer/internal/install"
)

// CategoryFocusedMsg is sent when focus moves to another category.
type CategoryFocusedMsg struct {
	Name string
}

// SelectionChangedMsg is sent after the selection set changed.
type SelectionChangedMsg struct {
	Selected []string
}

// LogAppendedMsg carries session lines the UI has not shown yet.
type LogAppendedMsg struct {
	SessionID string
	Lines     []string
	// Total is the session log length including Lines.
	Total int
}

// StatusChangedMsg is sent when the session status differs from the last poll.
type StatusChangedMsg struct {
	SessionID string
	Status    install.Status
}

// historyLoadedMsg delivers recent runs read off the event loop.
type historyLoadedMsg struct {
	entries []history.Entry
	err     error
}

// pollMsg drives session polling while a session runs.
type pollMsg struct {
	sessionID string
}

// errorMsg clears the status message numbered seq.
type errorMsg struct {
	seq int
}

func errorMsgAfter(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return errorMsg{seq: seq}
	})
}

func pollAfter(d time.Duration, sessionID string) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return pollMsg{sessionID: sessionID}
	})
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
