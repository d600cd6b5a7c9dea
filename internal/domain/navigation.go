package domain

import (
	"github.com/cloudcurio/cloudcurio-installer/internal/catalog"
)

// NoFocus is what Focused returns before any category was focused.
const NoFocus = ""

// Navigation tracks the focused category.
type Navigation struct {
	catalog *catalog.Catalog
	focused string
}

// NewNavigation returns a navigation state with nothing focused.
func NewNavigation(c *catalog.Catalog) *Navigation {
	return &Navigation{catalog: c}
}

// Focus moves focus to the named category. Unknown names return a
// *catalog.NotFoundError and keep the current focus.
func (n *Navigation) Focus(name string) error {
	if _, err := n.catalog.Category(name); err != nil {
		return err
	}
	n.focused = name
	return nil
}

// Focused returns the focused category, or NoFocus.
func (n *Navigation) Focused() string {
	return n.focused
}

// Next focuses the following category, wrapping to the first.
// With nothing focused it focuses the first category.
func (n *Navigation) Next() string {
	return n.step(1)
}

// Prev focuses the preceding category, wrapping to the last.
// With nothing focused it focuses the last category.
func (n *Navigation) Prev() string {
	return n.step(-1)
}

func (n *Navigation) step(delta int) string {
	names := n.catalog.Categories()
	if len(names) == 0 {
		return n.focused
	}
	idx := indexOf(names, n.focused)
	switch {
	case idx < 0 && delta > 0:
		idx = 0
	case idx < 0:
		idx = len(names) - 1
	default:
		idx = (idx + delta + len(names)) % len(names)
	}
	n.focused = names[idx]
	return n.focused
}

// Position returns the zero-based index of the focused category, or -1.
func (n *Navigation) Position() int {
	return indexOf(n.catalog.Categories(), n.focused)
}

func indexOf(names []string, name string) int {
	for i, candidate := range names {
		if candidate == name {
			return i
		}
	}
	return -1
}
