package walk

import "fmt"

// UnknownModeledType reports a walk request, or a relation target,
// that the model registry does not know, or that the directive
// configuration never registered.
type UnknownModeledType struct {
	Name string
	// Via names the relation that referenced the type, empty when
	// the type was requested directly.
	Via string
	// Unconfigured is set when the model knows the type but the
	// directive configuration has no entry for it.
	Unconfigured bool
}

func (e *UnknownModeledType) Error() string {
	reason := "not in the model registry"
	if e.Unconfigured {
		reason = "no directive entry"
	}

	if e.Via != "" {
		return fmt.Sprintf("unknown modeled type %q: %s (referenced by relation %s)", e.Name, reason, e.Via)
	}

	return fmt.Sprintf("unknown modeled type %q: %s", e.Name, reason)
}

// DirectiveConflict reports directives that contradict each other or
// the member's shape, like two members renamed onto one serialized
// key, or a custom transformation on a relation.
type DirectiveConflict struct {
	Type   string
	Member string
	Detail string
}

func (e *DirectiveConflict) Error() string {
	return fmt.Sprintf("directive conflict on %s.%s: %s", e.Type, e.Member, e.Detail)
}
