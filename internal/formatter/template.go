// Package formatter renders install history entries through {{variable}}
// templates and named presets.
package formatter

import (
	"fmt"
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\{\{([a-z0-9-]+)\}\}`)

// Template is a parsed {{variable}} template.
type Template struct {
	text string
	vars []string
}

// Parse checks text for balanced delimiters and known variables.
func Parse(text string) (*Template, error) {
	opens, closes := strings.Count(text, "{{"), strings.Count(text, "}}")
	if opens != closes {
		return nil, fmt.Errorf("mismatched variable delimiters: %d opens, %d closes", opens, closes)
	}

	t := &Template{text: text, vars: []string{}}
	seen := make(map[string]bool)
	for _, m := range variablePattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		if _, ok := lookup(name); !ok {
			return nil, fmt.Errorf("unknown variable: %s (available: %s)", name, strings.Join(Variables(), ", "))
		}
		seen[name] = true
		t.vars = append(t.vars, name)
	}
	return t, nil
}

// Variables returns the variables t uses, in order of first use.
func (t *Template) Variables() []string {
	vars := make([]string, len(t.vars))
	copy(vars, t.vars)
	return vars
}

// Render fills in every variable from ctx.
func (t *Template) Render(ctx VariableContext) string {
	return variablePattern.ReplaceAllStringFunc(t.text, func(match string) string {
		resolve, _ := lookup(match[2 : len(match)-2])
		return resolve(ctx)
	})
}

// Render parses text and renders it once.
func Render(text string, ctx VariableContext) (string, error) {
	t, err := Parse(text)
	if err != nil {
		return "", err
	}
	return t.Render(ctx), nil
}
