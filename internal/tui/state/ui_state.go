package state

import (
	"github.com/charmbracelet/bubbles/viewport"
)

// Pane identifies which browse pane receives movement keys.
type Pane int

const (
	PaneCategories Pane = iota
	PaneTools
)

// View identifies the screen being shown.
type View int

const (
	ViewBrowse View = iota
	ViewStatus
)

// UIState holds presentation-only state: sizes, the log viewport, the tool
// cursor and which pane and view are active.
type UIState struct {
	viewport   viewport.Model
	width      int
	height     int
	toolCursor int
	pane       Pane
	view       View
}

// NewUIState creates a new UIState instance with default values.
func NewUIState() *UIState {
	u := &UIState{
		width:  defaultViewportWidth,
		height: defaultViewportHeight,
	}
	u.UpdateViewportSize()
	return u
}

// GetViewport returns the log viewport.
func (u *UIState) GetViewport() *viewport.Model {
	return &u.viewport
}

// GetWidth returns the current width of the UI.
func (u *UIState) GetWidth() int {
	return u.width
}

// SetWidth updates the width of the UI.
func (u *UIState) SetWidth(width int) {
	u.width = width
	if width <= 0 {
		u.width = defaultViewportWidth
	}
}

// GetHeight returns the current height of the UI.
func (u *UIState) GetHeight() int {
	return u.height
}

// SetHeight updates the height of the UI.
func (u *UIState) SetHeight(height int) {
	u.height = height
	if height <= 0 {
		u.height = defaultViewportHeight
	}
}

// BodyHeight is the height left for panes once header and footer are drawn.
func (u *UIState) BodyHeight() int {
	h := u.height - headerFooterLines
	if h < minBodyHeight {
		return minBodyHeight
	}
	return h
}

// UpdateViewportSize resizes the log viewport, keeping its content and offset.
// The status view draws a summary and history around the log.
func (u *UIState) UpdateViewportSize() {
	h := u.BodyHeight() - sessionSummaryLines - historyLines
	if h < minBodyHeight {
		h = minBodyHeight
	}
	u.viewport.Width = u.width
	u.viewport.Height = h
}

// GetToolCursor returns the cursor row in the tool pane.
func (u *UIState) GetToolCursor() int {
	return u.toolCursor
}

// SetToolCursor moves the tool cursor, clamped to [0, n).
func (u *UIState) SetToolCursor(cursor, n int) {
	switch {
	case n <= 0 || cursor < 0:
		u.toolCursor = 0
	case cursor >= n:
		u.toolCursor = n - 1
	default:
		u.toolCursor = cursor
	}
}

// GetPane returns the active pane.
func (u *UIState) GetPane() Pane {
	return u.pane
}

// SetPane activates a pane.
func (u *UIState) SetPane(p Pane) {
	u.pane = p
}

// GetView returns the active view.
func (u *UIState) GetView() View {
	return u.view
}

// SetView switches views.
func (u *UIState) SetView(v View) {
	u.view = v
}
