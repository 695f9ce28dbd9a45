// Package model defines the structural description of the types a
// generation session operates on: fields, relations and key fields of
// a modeled type, independent of any concrete representation.
//
// The package is the boundary to the metadata source. Anything that
// can enumerate types this way (an ORM mapping layer, a YAML schema
// file, hand-written descriptors in tests) can drive the walker.
package model

// Cardinality tells whether a relation points at a single related
// instance or at an ordered collection of them.
type Cardinality int

//go:generate go tool stringer -type=Cardinality -output=cardinality_string.go

const (
	// Single - the relation holds at most one related instance.
	Single Cardinality = iota
	// Collection - the relation holds an ordered sequence of instances.
	Collection
)

// FieldDescriptor describes one scalar field of a modeled type.
type FieldDescriptor struct {
	// Name is the field name as known to the metadata source.
	Name string
	// Type is the Go type the field carries in its native
	// representation (e.g. "int64", "string"). Used by providers to
	// synthesize typed access fragments.
	Type string
}

// RelationDescriptor describes a reference from one modeled type to
// another.
type RelationDescriptor struct {
	// Name is the relation name as known to the metadata source.
	Name string
	// Target is the name of the related modeled type.
	Target string
	// Cardinality is Single or Collection.
	Cardinality Cardinality
}

// ModeledType is a named type with an ordered sequence of scalar
// fields and relations. Instances are immutable for the duration of a
// generation session.
type ModeledType struct {
	// Name identifies the type within its registry.
	Name string
	// Fields in declared order. Instruction order in generated
	// serializers follows this order.
	Fields []FieldDescriptor
	// Relations in declared order, emitted after all fields.
	Relations []RelationDescriptor
	// KeyFields names the fields whose values identify an instance.
	// Serializers use them to reuse destination instances when the
	// same source instance shows up more than once in one object
	// graph. May be empty; such types get no instance reuse.
	KeyFields []string
}

// Field returns the descriptor for the named scalar field.
func (t *ModeledType) Field(name string) (FieldDescriptor, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return FieldDescriptor{}, false
}

// Relation returns the descriptor for the named relation.
func (t *ModeledType) Relation(name string) (RelationDescriptor, bool) {
	for _, r := range t.Relations {
		if r.Name == name {
			return r, true
		}
	}

	return RelationDescriptor{}, false
}

// Has reports whether name is a field or relation of the type.
func (t *ModeledType) Has(name string) bool {
	if _, ok := t.Field(name); ok {
		return true
	}

	_, ok := t.Relation(name)

	return ok
}
