package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultYAML []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the compiled-in catalog. It is parsed and validated once;
// every caller gets the same *Catalog.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(defaultYAML)
	})
	return defaultCatalog, defaultErr
}

type toolYAML struct {
	Name string `yaml:"name"`
	Port *int   `yaml:"port"`
}

// Parse decodes a YAML catalog definition:
//
//	Category Name:
//	  description: text
//	  tools:
//	    tag: {name: Display Name, port: 8080}
//
// Mapping order is preserved, so the file's order is the catalog order.
func Parse(data []byte) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &ValidationError{Problems: []string{"empty catalog document"}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse catalog: line %d: expected a mapping of categories", root.Line)
	}

	defs := make([]CategoryDef, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		def, err := parseCategory(root.Content[i], root.Content[i+1])
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return New(defs)
}

func parseCategory(key, value *yaml.Node) (CategoryDef, error) {
	def := CategoryDef{Name: key.Value}
	if value.Kind != yaml.MappingNode {
		return def, fmt.Errorf("parse catalog: line %d: category %q must be a mapping", value.Line, key.Value)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		field, body := value.Content[i], value.Content[i+1]
		switch field.Value {
		case "description":
			def.Description = body.Value
		case "tools":
			tools, err := parseTools(def.Name, body)
			if err != nil {
				return def, err
			}
			def.Tools = tools
		default:
			return def, fmt.Errorf("parse catalog: line %d: unknown field %q in category %q", field.Line, field.Value, def.Name)
		}
	}
	return def, nil
}

func parseTools(category string, node *yaml.Node) ([]ToolDef, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse catalog: line %d: tools of %q must be a mapping", node.Line, category)
	}
	tools := make([]ToolDef, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		tag, body := node.Content[i], node.Content[i+1]
		var t toolYAML
		if err := body.Decode(&t); err != nil {
			return nil, fmt.Errorf("parse catalog: line %d: tool %q: %w", body.Line, tag.Value, err)
		}
		tools = append(tools, ToolDef{Tag: tag.Value, Name: t.Name, Port: t.Port})
	}
	return tools, nil
}
