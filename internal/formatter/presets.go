package formatter

import (
	"fmt"
	"strings"
)

// Preset is a named template.
type Preset struct {
	Name        string
	Template    string
	Description string
}

// Presets is an ordered set of presets.
type Presets struct {
	list []Preset
}

// DefaultPresets returns the built-in presets.
func DefaultPresets() *Presets {
	return &Presets{list: []Preset{
		{"compact", "{{short-id}} {{status}} {{tags}}", "Short run id, status and tags"},
		{"detailed", "{{run-id}} {{status}} exit={{exit-code}} started={{started}} duration={{duration}} tags={{tags}}",
			"Everything needed to follow up on a run"},
		{"ids", "{{run-id}}", "Run ids only, for scripting"},
		{"last-line", "{{short-id}} {{status}}: {{last-line}}", "The last line of runner output"},
	}}
}

// Lookup finds a preset by name.
func (p *Presets) Lookup(name string) (Preset, bool) {
	for _, preset := range p.list {
		if preset.Name == name {
			return preset, true
		}
	}
	return Preset{}, false
}

// All returns the presets in order.
func (p *Presets) All() []Preset {
	return append([]Preset(nil), p.list...)
}

// Add appends preset, or replaces the one with the same name in place.
func (p *Presets) Add(preset Preset) error {
	if preset.Name == "" {
		return fmt.Errorf("preset name cannot be empty")
	}
	if _, err := Parse(preset.Template); err != nil || preset.Template == "" {
		return fmt.Errorf("preset %s: invalid template %q", preset.Name, preset.Template)
	}
	for i := range p.list {
		if p.list[i].Name == preset.Name {
			p.list[i] = preset
			return nil
		}
	}
	p.list = append(p.list, preset)
	return nil
}

// Resolve parses format as a preset name, or as a template when it contains
// a variable.
func (p *Presets) Resolve(format string) (*Template, error) {
	if preset, ok := p.Lookup(format); ok {
		return Parse(preset.Template)
	}
	if strings.Contains(format, "{{") {
		return Parse(format)
	}
	names := make([]string, len(p.list))
	for i, preset := range p.list {
		names[i] = preset.Name
	}
	return nil, fmt.Errorf("unknown format %q: use a preset (%s) or a template with {{variables}}", format, strings.Join(names, ", "))
}
