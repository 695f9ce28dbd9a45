package model

import "fmt"

// Source is the seam to an external metadata provider. A Source
// enumerates modeled types on demand; the in-memory Registry below is
// the canonical implementation and what walkers consume.
type Source interface {
	// Lookup returns the modeled type with the given name.
	Lookup(name string) (*ModeledType, bool)
	// Types returns every known type in registration order.
	Types() []*ModeledType
}

// Registry is an ordered, in-memory collection of modeled types.
// It is populated once at session start and read-only afterwards.
type Registry struct {
	order []string
	types map[string]*ModeledType
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*ModeledType)}
}

// Register adds a type. Registering the same name twice is a caller
// bug and fails loudly.
func (r *Registry) Register(t *ModeledType) error {
	if t == nil || t.Name == "" {
		return fmt.Errorf("model: refusing to register unnamed type")
	}

	if _, dup := r.types[t.Name]; dup {
		return fmt.Errorf("model: type %q registered twice", t.Name)
	}

	if err := r.validate(t); err != nil {
		return err
	}

	r.order = append(r.order, t.Name)
	r.types[t.Name] = t

	return nil
}

// validate checks internal consistency of a single type: no duplicate
// member names, key fields must be declared fields.
func (r *Registry) validate(t *ModeledType) error {
	seen := make(map[string]bool, len(t.Fields)+len(t.Relations))

	for _, f := range t.Fields {
		if seen[f.Name] {
			return fmt.Errorf("model: type %q declares %q twice", t.Name, f.Name)
		}

		seen[f.Name] = true
	}

	for _, rel := range t.Relations {
		if seen[rel.Name] {
			return fmt.Errorf("model: type %q declares %q twice", t.Name, rel.Name)
		}

		seen[rel.Name] = true
	}

	for _, k := range t.KeyFields {
		if _, ok := t.Field(k); !ok {
			return fmt.Errorf("model: type %q lists unknown key field %q", t.Name, k)
		}
	}

	return nil
}

// Lookup implements Source.
func (r *Registry) Lookup(name string) (*ModeledType, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Types implements Source.
func (r *Registry) Types() []*ModeledType {
	out := make([]*ModeledType, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.types[name])
	}

	return out
}

// CheckRelations verifies every relation target is itself registered.
// Run after the full schema is loaded; a dangling target is a caller
// configuration error.
func (r *Registry) CheckRelations() error {
	for _, name := range r.order {
		for _, rel := range r.types[name].Relations {
			if _, ok := r.types[rel.Target]; !ok {
				return fmt.Errorf("model: relation %s.%s targets unregistered type %q",
					name, rel.Name, rel.Target)
			}
		}
	}

	return nil
}
