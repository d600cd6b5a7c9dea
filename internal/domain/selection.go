// Package domain holds the interactive state that sits on top of the catalog:
// which tools are selected and which category has focus.
//
// Neither type is safe for concurrent use. Both are owned by the single
// goroutine driving the UI or CLI.
package domain

import (
	"fmt"
	"sort"

	"github.com/cloudcurio/cloudcurio-installer/internal/catalog"
)

// UnknownTagError is returned when a tag that is not in the catalog is toggled.
type UnknownTagError struct {
	Tag string
	Err error
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown tool tag %q", e.Tag)
}

func (e *UnknownTagError) Unwrap() error {
	return e.Err
}

// Warning marks the error as a user mistake rather than a failure.
func (e *UnknownTagError) Warning() bool { return true }

// Selection is the set of tags chosen for installation.
type Selection struct {
	catalog *catalog.Catalog
	tags    map[string]struct{}
}

// NewSelection returns an empty selection over c.
func NewSelection(c *catalog.Catalog) *Selection {
	return &Selection{catalog: c, tags: make(map[string]struct{})}
}

// Toggle adds tag if absent and removes it if present. It reports whether the
// tag is selected afterwards. Unknown tags leave the selection unchanged.
func (s *Selection) Toggle(tag string) (bool, error) {
	if _, err := s.catalog.FindTag(tag); err != nil {
		return false, &UnknownTagError{Tag: tag, Err: err}
	}
	if _, ok := s.tags[tag]; ok {
		delete(s.tags, tag)
		return false, nil
	}
	s.tags[tag] = struct{}{}
	return true, nil
}

// Contains reports whether tag is selected.
func (s *Selection) Contains(tag string) bool {
	_, ok := s.tags[tag]
	return ok
}

// Len returns the number of selected tags.
func (s *Selection) Len() int {
	return len(s.tags)
}

// Current returns a copy of the selected tags in catalog order.
func (s *Selection) Current() []string {
	out := make([]string, 0, len(s.tags))
	for tag := range s.tags {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool {
		return s.catalog.Index(out[i]) < s.catalog.Index(out[j])
	})
	return out
}

// Clear empties the selection.
func (s *Selection) Clear() {
	clear(s.tags)
}

// SelectCategory selects every tool in the category and returns how many
// were newly added.
func (s *Selection) SelectCategory(name string) (int, error) {
	tools, err := s.catalog.ToolsIn(name)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, tool := range tools {
		if _, ok := s.tags[tool.Tag]; !ok {
			s.tags[tool.Tag] = struct{}{}
			added++
		}
	}
	return added, nil
}

// DeselectCategory removes every tool of the category and returns how many
// were removed.
func (s *Selection) DeselectCategory(name string) (int, error) {
	tools, err := s.catalog.ToolsIn(name)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, tool := range tools {
		if _, ok := s.tags[tool.Tag]; ok {
			delete(s.tags, tool.Tag)
			removed++
		}
	}
	return removed, nil
}

// CountIn returns how many tools of the category are selected, and the
// category size.
func (s *Selection) CountIn(name string) (selected, total int, err error) {
	tools, err := s.catalog.ToolsIn(name)
	if err != nil {
		return 0, 0, err
	}
	for _, tool := range tools {
		if _, ok := s.tags[tool.Tag]; ok {
			selected++
		}
	}
	return selected, len(tools), nil
}
