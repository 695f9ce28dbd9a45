package directive

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Directive YAML forms, per member:
//
//	total: include            # or just omit the entry
//	order: skip
//	total: {rename: amount}
//	placed: {custom: formatTimestamp}

// UnmarshalYAML implements the directive value forms above.
func (d *Directive) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var word string
		if err := node.Decode(&word); err != nil {
			return err
		}

		switch word {
		case "include", "":
			*d = Include
		case "skip":
			*d = Skip()
		default:
			return fmt.Errorf("unknown directive %q (expected include, skip, rename or custom)", word)
		}

		return nil

	case yaml.MappingNode:
		var form struct {
			Rename string `yaml:"rename"`
			Custom string `yaml:"custom"`
		}

		if err := node.Decode(&form); err != nil {
			return err
		}

		switch {
		case form.Rename != "" && form.Custom != "":
			return fmt.Errorf("directive cannot be both rename and custom")
		case form.Rename != "":
			*d = Rename(form.Rename)
		case form.Custom != "":
			*d = Custom(form.Custom)
		default:
			return fmt.Errorf("expected {rename: alias} or {custom: handler}")
		}

		return nil

	default:
		return fmt.Errorf("expected string or map for directive, got %v", node.Kind)
	}
}

// MarshalYAML emits the compact forms back out.
func (d Directive) MarshalYAML() (any, error) {
	switch d.Kind {
	case KindInclude:
		return "include", nil
	case KindSkip:
		return "skip", nil
	case KindRename:
		return map[string]string{"rename": d.Alias}, nil
	case KindCustom:
		return map[string]string{"custom": d.Handler}, nil
	default:
		return nil, fmt.Errorf("unknown directive kind %d", int(d.Kind))
	}
}

// ParseConfig reads a directive configuration document:
//
//	Order:
//	  total: {rename: amount}
//	OrderPart:
//	  order: skip
//
// A type with no member entries still needs to appear, with an empty
// mapping, to count as registered.
func ParseConfig(data []byte) (Config, error) {
	var raw map[string]Set
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("directive: parsing config: %w", err)
	}

	cfg := make(Config, len(raw))
	for typeName, set := range raw {
		if set == nil {
			set = Set{}
		}

		cfg[typeName] = set
	}

	return cfg, nil
}

// LoadConfig reads and parses a directive configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("directive: reading config %s: %w", path, err)
	}

	return ParseConfig(data)
}
