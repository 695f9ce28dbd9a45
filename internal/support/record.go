package support

import (
	"fmt"

	"xfer-generator/internal/model"
)

// Record is a key-value representation: instances are map[string]any,
// collection relations are []any slices of nested records. It is
// schema-free, so storage keys follow the serialized name and rename
// directives show up on the wire in both directions.
type Record struct {
	t *model.ModeledType
}

// NewRecord returns the record provider for one modeled type.
func NewRecord(t *model.ModeledType) *Record {
	return &Record{t: t}
}

func (r *Record) ReprID() string           { return ReprRecord }
func (r *Record) Type() *model.ModeledType { return r.t }
func (r *Record) InstanceType() string     { return "map[string]any" }
func (r *Record) Instantiate() string      { return "map[string]any{}" }

func (r *Record) field(name string) (model.FieldDescriptor, error) {
	f, ok := r.t.Field(name)
	if !ok {
		return model.FieldDescriptor{}, mismatch(ReprRecord, r.t, name, "field")
	}

	return f, nil
}

func (r *Record) relation(name string, card model.Cardinality) (model.RelationDescriptor, error) {
	rel, ok := r.t.Relation(name)
	if !ok || rel.Cardinality != card {
		want := "single relation"
		if card == model.Collection {
			want = "collection relation"
		}

		return model.RelationDescriptor{}, mismatch(ReprRecord, r.t, name, want)
	}

	return rel, nil
}

// ReadField asserts the stored value back to the field's declared
// base type so it composes with typed destinations.
func (r *Record) ReadField(instance, field, as string) (string, error) {
	f, err := r.field(field)
	if err != nil {
		return "", err
	}

	expr := fmt.Sprintf("%s[%q]", instance, serializedName(field, as))
	if f.Type != "" {
		expr = fmt.Sprintf("%s.(%s)", expr, f.Type)
	}

	return expr, nil
}

func (r *Record) WriteField(instance, field, as, value string) (string, error) {
	if _, err := r.field(field); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s[%q] = %s", instance, serializedName(field, as), value), nil
}

func (r *Record) RelationPresent(instance, relation, as string) (string, error) {
	if _, err := r.relation(relation, model.Single); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s[%q] != nil", instance, serializedName(relation, as)), nil
}

func (r *Record) RelationArg(instance, relation, as string) (string, error) {
	if _, err := r.relation(relation, model.Single); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s[%q].(map[string]any)", instance, serializedName(relation, as)), nil
}

func (r *Record) AssignRelation(instance, relation, as, value string) (string, error) {
	if _, err := r.relation(relation, model.Single); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s[%q] = %s", instance, serializedName(relation, as), value), nil
}

// CollectionPresent guards the element-wise copy: a record without
// the collection key serializes like one holding an empty collection,
// the same way the runtime accessor treats the absent key.
func (r *Record) CollectionPresent(instance, relation, as string) (string, error) {
	if _, err := r.relation(relation, model.Collection); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s[%q] != nil", instance, serializedName(relation, as)), nil
}

func (r *Record) CollectionExpr(instance, relation, as string) (string, error) {
	if _, err := r.relation(relation, model.Collection); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s[%q].([]any)", instance, serializedName(relation, as)), nil
}

func (r *Record) ElemArg(relation, elem string) (string, error) {
	if _, err := r.relation(relation, model.Collection); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s.(map[string]any)", elem), nil
}

func (r *Record) AppendElem(instance, relation, as, value string) (string, error) {
	if _, err := r.relation(relation, model.Collection); err != nil {
		return "", err
	}

	key := serializedName(relation, as)

	return fmt.Sprintf("%s[%q] = append(%s[%q].([]any), %s)", instance, key, instance, key, value), nil
}

func (r *Record) ClearCollection(instance, relation, as string) (string, error) {
	if _, err := r.relation(relation, model.Collection); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s[%q] = []any{}", instance, serializedName(relation, as)), nil
}

// --- runtime access ---

func (r *Record) instance(v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("record instance for %s is %T, want map[string]any", r.t.Name, v)
	}

	return m, nil
}

func (r *Record) Get(instance any, member, as string) (any, error) {
	m, err := r.instance(instance)
	if err != nil {
		return nil, err
	}

	if !r.t.Has(member) {
		return nil, mismatch(ReprRecord, r.t, member, "member")
	}

	return m[serializedName(member, as)], nil
}

func (r *Record) Set(instance any, member, as string, value any) error {
	m, err := r.instance(instance)
	if err != nil {
		return err
	}

	if !r.t.Has(member) {
		return mismatch(ReprRecord, r.t, member, "member")
	}

	m[serializedName(member, as)] = value

	return nil
}

func (r *Record) New() any { return map[string]any{} }

func (r *Record) Elems(instance any, relation, as string) ([]any, error) {
	m, err := r.instance(instance)
	if err != nil {
		return nil, err
	}

	if _, err := r.relation(relation, model.Collection); err != nil {
		return nil, err
	}

	v := m[serializedName(relation, as)]
	if v == nil {
		return nil, nil
	}

	elems, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("record collection %s.%s is %T, want []any", r.t.Name, relation, v)
	}

	return elems, nil
}

func (r *Record) Append(instance any, relation, as string, element any) error {
	m, err := r.instance(instance)
	if err != nil {
		return err
	}

	if _, err := r.relation(relation, model.Collection); err != nil {
		return err
	}

	key := serializedName(relation, as)

	cur, _ := m[key].([]any)
	m[key] = append(cur, element)

	return nil
}

func (r *Record) Clear(instance any, relation, as string) error {
	m, err := r.instance(instance)
	if err != nil {
		return err
	}

	if _, err := r.relation(relation, model.Collection); err != nil {
		return err
	}

	m[serializedName(relation, as)] = []any{}

	return nil
}

// Key looks key fields up by their model names; a renamed key field
// defeats instance reuse for records, which matches treating such
// records as unidentified.
func (r *Record) Key(instance any) (string, bool) {
	m, err := r.instance(instance)
	if err != nil {
		return "", false
	}

	return keyString(r.t, func(k string) (any, error) { return m[k], nil })
}
