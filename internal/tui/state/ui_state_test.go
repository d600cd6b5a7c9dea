package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUIStateDefaults(t *testing.T) {
	u := NewUIState()

	assert.Equal(t, defaultViewportWidth, u.GetWidth())
	assert.Equal(t, defaultViewportHeight, u.GetHeight())
	assert.Equal(t, PaneCategories, u.GetPane())
	assert.Equal(t, ViewBrowse, u.GetView())
	assert.Equal(t, defaultViewportWidth, u.GetViewport().Width)
}

func TestUIStateSizeFallbacks(t *testing.T) {
	u := NewUIState()

	u.SetWidth(0)
	u.SetHeight(-3)
	assert.Equal(t, defaultViewportWidth, u.GetWidth())
	assert.Equal(t, defaultViewportHeight, u.GetHeight())

	u.SetHeight(2)
	u.UpdateViewportSize()
	assert.Equal(t, minBodyHeight, u.BodyHeight())
	assert.Equal(t, minBodyHeight, u.GetViewport().Height)
}

func TestSetToolCursorClamps(t *testing.T) {
	tests := []struct {
		name   string
		cursor int
		n      int
		want   int
	}{
		{"in range", 2, 4, 2},
		{"negative", -1, 4, 0},
		{"past end", 9, 4, 3},
		{"empty list", 3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUIState()
			u.SetToolCursor(tt.cursor, tt.n)
			assert.Equal(t, tt.want, u.GetToolCursor())
		})
	}
}
