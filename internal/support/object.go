package support

import (
	"fmt"
	"strings"

	"xfer-generator/internal/model"
)

// Binding wires one modeled type to a concrete Go struct. Fragments
// need the type reference and Go field names; the runtime side needs
// accessor closures so loaded serializers touch real structs without
// reflection.
//
// Conventions the emitted fragments rely on: instances travel as
// pointers, single-valued relations are pointer fields, collection
// relations are value slices ([]T). Elems closures must therefore
// yield pointers into the backing slice, and Append closures take a
// pointer and append the pointed-to value.
type Binding struct {
	// TypeRef is the qualified Go type, e.g. "store.Order".
	TypeRef string
	// New returns a fresh *T.
	New func() any
	// Get reads a field or single-relation value.
	Get map[string]func(any) any
	// Set writes a field or single-relation value.
	Set map[string]func(any, any)
	// Elems yields pointers to the elements of a collection relation.
	Elems map[string]func(any) []any
	// Append appends the element behind the given pointer.
	Append map[string]func(any, any)
	// Clear empties a collection relation.
	Clear map[string]func(any)
	// GoName overrides the derived Go field name per member
	// (e.g. "sku" -> "SKU").
	GoName map[string]string
}

// Bindings collects the bindings of a session, keyed by type name.
type Bindings struct {
	m map[string]Binding
}

// NewBindings returns an empty binding set.
func NewBindings() *Bindings {
	return &Bindings{m: make(map[string]Binding)}
}

// Register adds the binding for one modeled type.
func (b *Bindings) Register(typeName string, binding Binding) {
	b.m[typeName] = binding
}

// Lookup returns the binding for a type name.
func (b *Bindings) Lookup(typeName string) (Binding, bool) {
	bd, ok := b.m[typeName]
	return bd, ok
}

// Object is the domain-struct representation. One provider instance
// binds a modeled type to its struct through a Binding.
type Object struct {
	t *model.ModeledType
	b Binding
	// goNames caches the member -> Go field resolution, the one
	// per-type derived fact worth memoizing.
	goNames map[string]string
}

// NewObject returns the object provider for one modeled type.
func NewObject(t *model.ModeledType, b Binding) *Object {
	o := &Object{t: t, b: b, goNames: make(map[string]string, len(t.Fields)+len(t.Relations))}

	for _, f := range t.Fields {
		o.goNames[f.Name] = o.deriveGoName(f.Name)
	}

	for _, r := range t.Relations {
		o.goNames[r.Name] = o.deriveGoName(r.Name)
	}

	return o
}

func (o *Object) deriveGoName(member string) string {
	if n, ok := o.b.GoName[member]; ok {
		return n
	}

	return exportName(member)
}

// exportName turns a model member name into an exported Go
// identifier: "total" -> "Total", "order_part" -> "OrderPart".
func exportName(member string) string {
	parts := strings.Split(member, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}

		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}

	return strings.Join(parts, "")
}

func (o *Object) ReprID() string           { return ReprObject }
func (o *Object) Type() *model.ModeledType { return o.t }
func (o *Object) InstanceType() string     { return "*" + o.b.TypeRef }
func (o *Object) Instantiate() string      { return "&" + o.b.TypeRef + "{}" }

func (o *Object) field(name string) error {
	if _, ok := o.t.Field(name); !ok {
		return mismatch(ReprObject, o.t, name, "field")
	}

	return nil
}

func (o *Object) relation(name string, card model.Cardinality) error {
	rel, ok := o.t.Relation(name)
	if !ok || rel.Cardinality != card {
		want := "single relation"
		if card == model.Collection {
			want = "collection relation"
		}

		return mismatch(ReprObject, o.t, name, want)
	}

	return nil
}

// Object fragments address native struct fields; the serialized name
// is irrelevant here, renames only show up in schema-free
// representations.

func (o *Object) ReadField(instance, field, _ string) (string, error) {
	if err := o.field(field); err != nil {
		return "", err
	}

	return instance + "." + o.goNames[field], nil
}

func (o *Object) WriteField(instance, field, _, value string) (string, error) {
	if err := o.field(field); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s.%s = %s", instance, o.goNames[field], value), nil
}

func (o *Object) RelationPresent(instance, relation, _ string) (string, error) {
	if err := o.relation(relation, model.Single); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s.%s != nil", instance, o.goNames[relation]), nil
}

func (o *Object) RelationArg(instance, relation, _ string) (string, error) {
	if err := o.relation(relation, model.Single); err != nil {
		return "", err
	}

	return instance + "." + o.goNames[relation], nil
}

func (o *Object) AssignRelation(instance, relation, _, value string) (string, error) {
	if err := o.relation(relation, model.Single); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s.%s = %s", instance, o.goNames[relation], value), nil
}

// CollectionPresent returns no guard: a struct's slice field always
// ranges safely, nil included.
func (o *Object) CollectionPresent(instance, relation, _ string) (string, error) {
	if err := o.relation(relation, model.Collection); err != nil {
		return "", err
	}

	return "", nil
}

func (o *Object) CollectionExpr(instance, relation, _ string) (string, error) {
	if err := o.relation(relation, model.Collection); err != nil {
		return "", err
	}

	return instance + "." + o.goNames[relation], nil
}

func (o *Object) ElemArg(relation, elem string) (string, error) {
	if err := o.relation(relation, model.Collection); err != nil {
		return "", err
	}

	return "&" + elem, nil
}

func (o *Object) AppendElem(instance, relation, _, value string) (string, error) {
	if err := o.relation(relation, model.Collection); err != nil {
		return "", err
	}

	f := o.goNames[relation]

	return fmt.Sprintf("%s.%s = append(%s.%s, *(%s))", instance, f, instance, f, value), nil
}

func (o *Object) ClearCollection(instance, relation, _ string) (string, error) {
	if err := o.relation(relation, model.Collection); err != nil {
		return "", err
	}

	f := o.goNames[relation]

	return fmt.Sprintf("%s.%s = %s.%s[:0]", instance, f, instance, f), nil
}

// --- runtime access ---

func (o *Object) Get(instance any, member, _ string) (any, error) {
	get, ok := o.b.Get[member]
	if !ok {
		return nil, fmt.Errorf("binding for %s has no getter for %q", o.t.Name, member)
	}

	return get(instance), nil
}

func (o *Object) Set(instance any, member, _ string, value any) error {
	set, ok := o.b.Set[member]
	if !ok {
		return fmt.Errorf("binding for %s has no setter for %q", o.t.Name, member)
	}

	set(instance, value)

	return nil
}

func (o *Object) New() any { return o.b.New() }

func (o *Object) Elems(instance any, relation, _ string) ([]any, error) {
	elems, ok := o.b.Elems[relation]
	if !ok {
		return nil, fmt.Errorf("binding for %s has no elements accessor for %q", o.t.Name, relation)
	}

	return elems(instance), nil
}

func (o *Object) Append(instance any, relation, _ string, element any) error {
	app, ok := o.b.Append[relation]
	if !ok {
		return fmt.Errorf("binding for %s has no append accessor for %q", o.t.Name, relation)
	}

	app(instance, element)

	return nil
}

func (o *Object) Clear(instance any, relation, _ string) error {
	clear, ok := o.b.Clear[relation]
	if !ok {
		return fmt.Errorf("binding for %s has no clear accessor for %q", o.t.Name, relation)
	}

	clear(instance)

	return nil
}

func (o *Object) Key(instance any) (string, bool) {
	return keyString(o.t, func(k string) (any, error) { return o.Get(instance, k, "") })
}
