package model

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// schemaDoc is the YAML document shape for a model schema:
//
//	types:
//	  - name: Order
//	    keys: [id]
//	    fields:
//	      - {id: int64}
//	      - {total: int64}
//	    relations:
//	      - {name: parts, target: OrderPart, collection: true}
type schemaDoc struct {
	Types []typeDoc `yaml:"types"`
}

type typeDoc struct {
	Name      string        `yaml:"name"`
	Keys      []string      `yaml:"keys"`
	Fields    []fieldDoc    `yaml:"fields"`
	Relations []relationDoc `yaml:"relations"`
}

type fieldDoc struct {
	Name string
	Type string
}

// UnmarshalYAML accepts either the shorthand single-pair map
// {id: int64} or the explicit form {name: id, type: int64}.
func (f *fieldDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping for field, got %v", node.Kind)
	}

	// Explicit form carries a "name" key.
	var explicit struct {
		Name string `yaml:"name"`
		Type string `yaml:"type"`
	}

	if err := node.Decode(&explicit); err == nil && explicit.Name != "" {
		f.Name = explicit.Name
		f.Type = explicit.Type

		return nil
	}

	if len(node.Content) != 2 {
		return errors.New("expected single key-value map like {id: int64}")
	}

	if err := node.Content[0].Decode(&f.Name); err != nil {
		return fmt.Errorf("invalid field name: %w", err)
	}

	if err := node.Content[1].Decode(&f.Type); err != nil {
		return fmt.Errorf("invalid field type: %w", err)
	}

	return nil
}

type relationDoc struct {
	Name       string `yaml:"name"`
	Target     string `yaml:"target"`
	Collection bool   `yaml:"collection"`
}

// ParseSchema builds a registry from a YAML schema document.
func ParseSchema(data []byte) (*Registry, error) {
	var doc schemaDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("model: parsing schema: %w", err)
	}

	if len(doc.Types) == 0 {
		return nil, errors.New("model: schema declares no types")
	}

	reg := NewRegistry()

	for _, td := range doc.Types {
		t := &ModeledType{Name: td.Name, KeyFields: td.Keys}

		for _, fd := range td.Fields {
			t.Fields = append(t.Fields, FieldDescriptor{Name: fd.Name, Type: fd.Type})
		}

		for _, rd := range td.Relations {
			card := Single
			if rd.Collection {
				card = Collection
			}

			t.Relations = append(t.Relations, RelationDescriptor{
				Name:        rd.Name,
				Target:      rd.Target,
				Cardinality: card,
			})
		}

		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}

	if err := reg.CheckRelations(); err != nil {
		return nil, err
	}

	return reg, nil
}

// LoadSchema reads and parses a YAML schema file.
func LoadSchema(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: reading schema %s: %w", path, err)
	}

	return ParseSchema(data)
}
