// Package support defines the capability boundary between the walker
// and a concrete representation. A Provider is bound to one
// (representation, modeled type) pair and answers two kinds of
// requests: source-text fragments that read, write or instantiate the
// representation (used to emit the textual program), and runtime
// accessors over live instances (used to build the loadable closure
// form of the same serializer). Providers never recurse into
// relations; composing nested serializers is the walker's job.
//
// Member-addressed methods take the modeled member name plus the
// serialized name ("as"). Schema-bound representations (object)
// validate and address by the member name; schema-free ones (record)
// validate by the member name but address storage by the serialized
// name, which is how rename directives take effect on the wire in
// both directions.
package support

import (
	"fmt"

	"xfer-generator/internal/model"
)

// Representation identifiers for the built-in providers.
const (
	ReprRecord = "record"
	ReprObject = "object"
)

// Provider supplies per-field capabilities for one modeled type in
// one representation. Fragment methods return Go source text;
// runtime methods operate on live instances. Both sides must be pure
// for a given (type, member) pair within a session; caching per-type
// derived facts is fine.
type Provider interface {
	// ReprID identifies the representation ("record", "object").
	ReprID() string
	// Type returns the modeled type this provider is bound to.
	Type() *model.ModeledType
	// InstanceType is the Go type of an instance expression in
	// emitted code (e.g. "map[string]any", "*store.Order").
	InstanceType() string

	// --- fragments: scalar fields ---

	// ReadField returns an expression reading the field from
	// instance, adapted to the field's base type.
	ReadField(instance, field, as string) (string, error)
	// WriteField returns a statement writing value into instance.
	WriteField(instance, field, as, value string) (string, error)
	// Instantiate returns an expression producing a new instance.
	Instantiate() string

	// --- fragments: relations ---
	// Relation fragments operate in terms of an already-produced
	// nested value; the walker leaves the NestedValue placeholder
	// where the nested serializer call belongs and the emitter
	// substitutes the actual routine invocation.

	// RelationPresent returns a boolean expression guarding a
	// single-valued relation read.
	RelationPresent(instance, relation, as string) (string, error)
	// RelationArg returns the expression passed to a nested
	// serializer for a single-valued relation.
	RelationArg(instance, relation, as string) (string, error)
	// AssignRelation returns a statement writing a produced nested
	// value into a single-valued relation.
	AssignRelation(instance, relation, as, value string) (string, error)
	// CollectionPresent returns a boolean expression guarding the
	// element-wise copy, or "" when the collection can never be
	// absent in this representation.
	CollectionPresent(instance, relation, as string) (string, error)
	// CollectionExpr returns the iterable expression for a
	// collection-valued relation.
	CollectionExpr(instance, relation, as string) (string, error)
	// ElemArg adapts one iterated element (named by elem) into the
	// argument for the nested serializer.
	ElemArg(relation, elem string) (string, error)
	// AppendElem returns a statement appending a produced nested
	// value to a collection-valued relation.
	AppendElem(instance, relation, as, value string) (string, error)
	// ClearCollection returns a statement resetting a
	// collection-valued relation before an element-wise copy.
	ClearCollection(instance, relation, as string) (string, error)

	// --- runtime access ---

	// Get reads a field or single-relation value from a live instance.
	Get(instance any, member, as string) (any, error)
	// Set writes a field or single-relation value into a live instance.
	Set(instance any, member, as string, value any) error
	// New returns a fresh, empty instance.
	New() any
	// Elems returns the elements of a collection-valued relation.
	Elems(instance any, relation, as string) ([]any, error)
	// Append adds a produced element to a collection-valued relation.
	Append(instance any, relation, as string, element any) error
	// Clear empties a collection-valued relation.
	Clear(instance any, relation, as string) error
	// Key derives the per-call cache key from the instance's key
	// fields. ok is false when the type has no key fields or any key
	// value is still zero; such instances are never cached.
	Key(instance any) (key string, ok bool)
}

// NestedValue is the placeholder used inside relation fragments for
// the nested serializer call; the emitter substitutes the actual
// routine invocation.
const NestedValue = "__NESTED__"

// SchemaMismatch reports a fragment or access request for a member
// the modeled type does not declare, or a member used with the wrong
// shape (field vs relation, single vs collection). It is a caller
// configuration error and is never retried.
type SchemaMismatch struct {
	Repr   string
	Type   string
	Member string
	Want   string
}

func (e *SchemaMismatch) Error() string {
	return fmt.Sprintf("schema mismatch: %s provider for %s has no %s %q",
		e.Repr, e.Type, e.Want, e.Member)
}

// mismatch is a local constructor shorthand for providers.
func mismatch(repr string, t *model.ModeledType, member, want string) error {
	return &SchemaMismatch{Repr: repr, Type: t.Name, Member: member, Want: want}
}

// serializedName resolves the storage name for schema-free
// representations: the alias when a rename is in effect, otherwise
// the member name itself.
func serializedName(member, as string) string {
	if as != "" {
		return as
	}

	return member
}

// keyString folds key field values into a comparable cache key. The
// second return is false when any value is missing or zero, matching
// the rule that half-identified instances are never cached.
func keyString(t *model.ModeledType, get func(string) (any, error)) (string, bool) {
	if len(t.KeyFields) == 0 {
		return "", false
	}

	key := t.Name

	for _, k := range t.KeyFields {
		v, err := get(k)
		if err != nil || isZero(v) {
			return "", false
		}

		key += fmt.Sprintf("|%v", v)
	}

	return key, true
}

// isZero reports whether a key field value counts as "not set yet".
func isZero(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case int:
		return x == 0
	case int8:
		return x == 0
	case int16:
		return x == 0
	case int32:
		return x == 0
	case int64:
		return x == 0
	case uint:
		return x == 0
	case uint8:
		return x == 0
	case uint16:
		return x == 0
	case uint32:
		return x == 0
	case uint64:
		return x == 0
	case float32:
		return x == 0
	case float64:
		return x == 0
	default:
		return false
	}
}
