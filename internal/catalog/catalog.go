// Package catalog is the static registry of installable tools grouped by category.
//
// A Catalog is built once at startup, validated, and never mutated afterwards,
// so it can be shared by pointer between the TUI, the selection store and the
// install builder without locking.
package catalog

import (
	"fmt"
	"strings"
)

const (
	minPort = 1
	maxPort = 65535
)

// Tool is one installable unit. Tag is the selector passed to the runner.
type Tool struct {
	Tag      string
	Name     string
	Port     int // 0 when the tool exposes no port
	Category string
}

// HasPort reports whether the tool exposes a network port.
func (t Tool) HasPort() bool {
	return t.Port != 0
}

// Label is the display text used by the UI, e.g. "PostgreSQL 15 (Port: 5432)".
func (t Tool) Label() string {
	if !t.HasPort() {
		return t.Name
	}
	return fmt.Sprintf("%s (Port: %d)", t.Name, t.Port)
}

// Category groups related tools.
type Category struct {
	Name        string
	Description string
	Tools       []Tool
}

// ToolDef and CategoryDef are the unvalidated input to New.
type ToolDef struct {
	Tag  string
	Name string
	Port *int
}

type CategoryDef struct {
	Name        string
	Description string
	Tools       []ToolDef
}

// Catalog is an immutable, ordered registry of categories and tools.
type Catalog struct {
	categories []Category
	byName     map[string]int
	byTag      map[string]Tool
	tagOrder   map[string]int
	tags       []string
}

// New validates defs and builds a Catalog. Every problem is collected into a
// single *ValidationError so a broken definition is reported in full at startup.
func New(defs []CategoryDef) (*Catalog, error) {
	c := &Catalog{
		byName:   make(map[string]int, len(defs)),
		byTag:    make(map[string]Tool),
		tagOrder: make(map[string]int),
	}
	var problems []string
	if len(defs) == 0 {
		problems = append(problems, "no categories defined")
	}

	for _, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			problems = append(problems, "category with empty name")
			continue
		}
		if _, dup := c.byName[name]; dup {
			problems = append(problems, fmt.Sprintf("duplicate category %q", name))
			continue
		}
		if len(def.Tools) == 0 {
			problems = append(problems, fmt.Sprintf("category %q has no tools", name))
		}

		cat := Category{Name: name, Description: strings.TrimSpace(def.Description)}
		for _, td := range def.Tools {
			tool, err := buildTool(name, td)
			if err != nil {
				problems = append(problems, err.Error())
				continue
			}
			if prev, dup := c.byTag[tool.Tag]; dup {
				problems = append(problems, fmt.Sprintf("tag %q in %q already defined in %q", tool.Tag, name, prev.Category))
				continue
			}
			c.byTag[tool.Tag] = tool
			c.tagOrder[tool.Tag] = len(c.tags)
			c.tags = append(c.tags, tool.Tag)
			cat.Tools = append(cat.Tools, tool)
		}
		c.byName[name] = len(c.categories)
		c.categories = append(c.categories, cat)
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return c, nil
}

func buildTool(category string, td ToolDef) (Tool, error) {
	tag := strings.TrimSpace(td.Tag)
	if tag == "" {
		return Tool{}, fmt.Errorf("tool with empty tag in %q", category)
	}
	if strings.ContainsAny(tag, ", \t") {
		return Tool{}, fmt.Errorf("tag %q in %q contains a comma or whitespace", tag, category)
	}
	name := strings.TrimSpace(td.Name)
	if name == "" {
		return Tool{}, fmt.Errorf("tool %q in %q has no display name", tag, category)
	}
	tool := Tool{Tag: tag, Name: name, Category: category}
	if td.Port != nil {
		if *td.Port < minPort || *td.Port > maxPort {
			return Tool{}, fmt.Errorf("tool %q in %q has invalid port %d", tag, category, *td.Port)
		}
		tool.Port = *td.Port
	}
	return tool, nil
}

// Categories returns category names in declaration order.
func (c *Catalog) Categories() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

// Category returns the named category.
func (c *Catalog) Category(name string) (Category, error) {
	idx, ok := c.byName[name]
	if !ok {
		return Category{}, &NotFoundError{Kind: "category", Name: name}
	}
	cat := c.categories[idx]
	cat.Tools = append([]Tool(nil), cat.Tools...)
	return cat, nil
}

// ToolsIn returns the tools of a category in declaration order.
func (c *Catalog) ToolsIn(name string) ([]Tool, error) {
	cat, err := c.Category(name)
	if err != nil {
		return nil, err
	}
	return cat.Tools, nil
}

// FindTag returns the tool with the given tag.
func (c *Catalog) FindTag(tag string) (Tool, error) {
	tool, ok := c.byTag[tag]
	if !ok {
		return Tool{}, &NotFoundError{Kind: "tag", Name: tag}
	}
	return tool, nil
}

// Tags returns every tag in catalog order.
func (c *Catalog) Tags() []string {
	return append([]string(nil), c.tags...)
}

// Index returns the position of tag in catalog order, or -1.
func (c *Catalog) Index(tag string) int {
	if i, ok := c.tagOrder[tag]; ok {
		return i
	}
	return -1
}

// Len returns the number of tools.
func (c *Catalog) Len() int {
	return len(c.tags)
}
