// Package directive holds the per-field control vocabulary a caller
// supplies for a generation session: include (the default), skip,
// rename to an alias, or route the value through a named custom
// handler. Directives are pure data; deciding what they mean is the
// walker's job.
package directive

import (
	"fmt"

	"xfer-generator/internal/model"
)

// Kind enumerates the recognized directives.
type Kind int

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=kind_string.go

const (
	// KindInclude - serialize the member as-is. Absence of a
	// directive entry means include.
	KindInclude Kind = iota
	// KindSkip - omit the member entirely.
	KindSkip
	// KindRename - serialize under a different destination name.
	KindRename
	// KindCustom - pass the value through a registered handler.
	KindCustom
)

// Directive is one control entry for a field or relation.
type Directive struct {
	Kind Kind
	// Alias is the destination name for KindRename.
	Alias string
	// Handler is the registered handler name for KindCustom.
	Handler string
}

// Include is the zero directive, returned for absent entries.
var Include = Directive{Kind: KindInclude}

// Skip returns a skip directive.
func Skip() Directive { return Directive{Kind: KindSkip} }

// Rename returns a rename directive carrying the destination alias.
func Rename(alias string) Directive { return Directive{Kind: KindRename, Alias: alias} }

// Custom returns a custom-handler directive.
func Custom(handler string) Directive { return Directive{Kind: KindCustom, Handler: handler} }

// Set maps member names of one modeled type to their directives.
// An empty Set is valid and means "include everything".
type Set map[string]Directive

// Lookup returns the directive for name, defaulting to include.
func (s Set) Lookup(name string) Directive {
	if d, ok := s[name]; ok {
		return d
	}

	return Include
}

// Config maps modeled type names to their directive sets. Every type
// reachable through included relations must have an entry, even an
// empty one; that registration is what tells the walker the caller
// considered the type.
type Config map[string]Set

// Registered reports whether the type has a directive set, empty or
// not.
func (c Config) Registered(typeName string) bool {
	_, ok := c[typeName]
	return ok
}

// IncludeAll returns a config registering every type of the source
// with an empty set, for callers that want full inclusion without
// writing a directive document.
func IncludeAll(source model.Source) Config {
	c := make(Config, len(source.Types()))
	for _, t := range source.Types() {
		c[t.Name] = Set{}
	}

	return c
}

// Validate checks every directive against the model registry:
// entries must reference declared members, renames need an alias and
// custom entries need a handler name. Unknown types in the config are
// rejected as well.
func (c Config) Validate(source model.Source) error {
	for typeName, set := range c {
		t, ok := source.Lookup(typeName)
		if !ok {
			return fmt.Errorf("directive: config references unknown type %q", typeName)
		}

		for member, d := range set {
			if !t.Has(member) {
				return fmt.Errorf("directive: %s.%s is not a field or relation of %s",
					typeName, member, typeName)
			}

			switch d.Kind {
			case KindRename:
				if d.Alias == "" {
					return fmt.Errorf("directive: rename of %s.%s has no alias", typeName, member)
				}
			case KindCustom:
				if d.Handler == "" {
					return fmt.Errorf("directive: custom directive on %s.%s names no handler",
						typeName, member)
				}
			case KindInclude, KindSkip:
			}
		}
	}

	return nil
}
