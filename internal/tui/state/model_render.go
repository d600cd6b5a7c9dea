package state

import (
	"strings"

	"github.com/cloudcurio/cloudcurio-installer/internal/catalog"
	"github.com/cloudcurio/cloudcurio-installer/internal/install"
	"github.com/cloudcurio/cloudcurio-installer/internal/tui/render"
)

// View renders the TUI.
func (m *Model) View() string {
	width := m.uiState.GetWidth()

	var s strings.Builder
	s.WriteString(render.Header(render.HeaderState{
		Width:    width,
		Selected: m.selection.Len(),
		Total:    m.catalog.Len(),
		Status:   m.sessionStatus(),
	}))
	s.WriteString("\n")

	if m.uiState.GetView() == ViewStatus {
		s.WriteString(m.statusView())
	} else {
		s.WriteString(m.browseView())
	}

	s.WriteString("\n")
	s.WriteString(render.Footer(render.FooterState{
		StatusView:   m.uiState.GetView() == ViewStatus,
		Running:      m.running(),
		Width:        width,
		Message:      m.statusMessage,
		MessageLevel: m.statusLevel,
		HasMessage:   m.hasStatusMessage,
		SelectedTags: m.selection.Len(),
	}))
	return s.String()
}

func (m *Model) browseView() string {
	leftWidth, rightWidth := render.SplitWidth(m.uiState.GetWidth())
	height := m.uiState.BodyHeight()
	focused := m.nav.Focused()

	rows := make([]render.CategoryRow, 0, len(m.catalog.Categories()))
	for _, name := range m.catalog.Categories() {
		selected, total, _ := m.selection.CountIn(name)
		rows = append(rows, render.CategoryRow{Name: name, Selected: selected, Total: total})
	}
	left := render.CategoryPane(render.CategoryPaneState{
		Rows:    rows,
		Focused: focused,
		Active:  m.uiState.GetPane() == PaneCategories,
		Width:   leftWidth,
		Height:  height,
	})

	var category catalog.Category
	if focused != "" {
		category, _ = m.catalog.Category(focused)
	}
	right := render.ToolPane(render.ToolPaneState{
		Category:   category,
		IsSelected: m.selection.Contains,
		Cursor:     m.uiState.GetToolCursor(),
		Active:     m.uiState.GetPane() == PaneTools,
		Width:      rightWidth,
		Height:     height,
	})
	return render.Panes(left, right)
}

func (m *Model) statusView() string {
	width := m.uiState.GetWidth()
	state := render.SessionState{Width: width, Now: m.now(), Spinner: m.spinner.View()}
	if s := m.session; s != nil {
		inv := s.Invocation()
		state.Tags = inv.Tags
		state.CommandLine = inv.CommandLine()
		state.Status = s.Status()
		state.ExitCode, state.Exited = s.ExitCode()
		state.StartedAt = s.StartedAt()
		state.FinishedAt = s.FinishedAt()
	}

	entries := m.historyEntries
	if len(entries) > historyLines-1 {
		entries = entries[:historyLines-1]
	}

	parts := []string{
		render.Session(state),
		"",
		m.uiState.GetViewport().View(),
		render.History(render.HistoryState{Entries: entries, Now: m.now(), Width: width, Err: m.historyErr}),
	}
	return strings.Join(parts, "\n")
}

func (m *Model) sessionStatus() install.Status {
	if m.session == nil {
		return ""
	}
	return m.session.Status()
}
