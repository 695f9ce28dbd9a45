package walk

import (
	"fmt"

	"go.uber.org/zap"

	"xfer-generator/internal/diagnostic"
	"xfer-generator/internal/directive"
	"xfer-generator/internal/model"
	"xfer-generator/internal/support"
)

// Walker composes serializer blueprints between one source and one
// destination representation. Blueprints are memoized per triple, and
// a triple is reserved in the memo before its members are walked, so
// cyclic relation graphs terminate: the back edge finds the
// in-progress blueprint and links to it.
type Walker struct {
	registry   model.Source
	source     *support.Factory
	dest       *support.Factory
	directives directive.Config
	handlers   *support.Handlers
	log        *zap.Logger

	memo  map[Triple]*Blueprint
	order []Triple
	diags diagnostic.Diagnostics
}

// NewWalker wires a walker over the given registry and provider
// factories. handlers may be empty when no custom directives are
// configured.
func NewWalker(
	registry model.Source,
	source, dest *support.Factory,
	directives directive.Config,
	handlers *support.Handlers,
	log *zap.Logger,
) *Walker {
	if log == nil {
		log = zap.NewNop()
	}

	if handlers == nil {
		handlers = support.NewHandlers()
	}

	return &Walker{
		registry:   registry,
		source:     source,
		dest:       dest,
		directives: directives,
		handlers:   handlers,
		log:        log,
		memo:       make(map[Triple]*Blueprint),
	}
}

// Walk returns the blueprint for the named type, building it and all
// reachable nested blueprints on first request. Repeated calls for
// the same type return the identical blueprint.
func (w *Walker) Walk(typeName string) (*Blueprint, error) {
	return w.walk(typeName, "")
}

// Blueprints returns every blueprint built so far, in first-request
// order.
func (w *Walker) Blueprints() []*Blueprint {
	out := make([]*Blueprint, 0, len(w.order))
	for _, triple := range w.order {
		out = append(out, w.memo[triple])
	}

	return out
}

// Diagnostics returns the accumulated walk diagnostics.
func (w *Walker) Diagnostics() *diagnostic.Diagnostics { return &w.diags }

func (w *Walker) walk(typeName, via string) (*Blueprint, error) {
	t, ok := w.registry.Lookup(typeName)
	if !ok {
		err := &UnknownModeledType{Name: typeName, Via: via}
		w.diags.AddError("unknown-type", err.Error(), "", via)

		return nil, err
	}

	// A relation target must be registered in the directive
	// configuration, even with an empty set; the entry is the
	// caller's statement that the type was considered. Root requests
	// are explicit enough on their own and need no entry.
	if via != "" && !w.directives.Registered(typeName) {
		err := &UnknownModeledType{Name: typeName, Via: via, Unconfigured: true}
		w.diags.AddError("unregistered-type", err.Error(), "", via)

		return nil, err
	}

	triple := Triple{
		SourceRepr: w.source.ReprID(),
		DestRepr:   w.dest.ReprID(),
		TypeName:   typeName,
	}

	if b, ok := w.memo[triple]; ok {
		return b, nil
	}

	src, err := w.source.Provider(t)
	if err != nil {
		return nil, err
	}

	dst, err := w.dest.Provider(t)
	if err != nil {
		return nil, err
	}

	b := &Blueprint{Triple: triple, Type: t, Source: src, Dest: dst}

	// Reserve before walking members so back edges resolve to this
	// blueprint instead of recursing forever.
	w.memo[triple] = b
	w.order = append(w.order, triple)

	w.log.Debug("walking type",
		zap.String("triple", triple.String()),
		zap.Int("fields", len(t.Fields)),
		zap.Int("relations", len(t.Relations)))

	if err := w.fill(b); err != nil {
		return nil, err
	}

	b.complete = true

	return b, nil
}

func (w *Walker) fill(b *Blueprint) error {
	dirs := w.directives[b.Type.Name]
	taken := make(map[string]string, len(b.Type.Fields)+len(b.Type.Relations))

	claim := func(member, as string) error {
		name := member
		if as != "" {
			name = as
		}

		if prev, dup := taken[name]; dup {
			err := &DirectiveConflict{
				Type:   b.Type.Name,
				Member: member,
				Detail: fmt.Sprintf("serialized name %q already taken by %s", name, prev),
			}
			w.diags.AddError("name-conflict", err.Error(), b.Triple.String(), member)

			return err
		}

		taken[name] = member

		return nil
	}

	for _, f := range b.Type.Fields {
		d := dirs.Lookup(f.Name)
		if d.Kind == directive.KindSkip {
			w.diags.AddInfo("skipped", "field skipped by directive", b.Triple.String(), f.Name)
			continue
		}

		if err := claim(f.Name, d.Alias); err != nil {
			return err
		}

		instr, err := w.fieldInstruction(b, f, d)
		if err != nil {
			return err
		}

		b.Instructions = append(b.Instructions, instr)
	}

	for _, r := range b.Type.Relations {
		d := dirs.Lookup(r.Name)
		if d.Kind == directive.KindSkip {
			w.diags.AddInfo("skipped", "relation skipped by directive", b.Triple.String(), r.Name)
			continue
		}

		if d.Kind == directive.KindCustom {
			err := &DirectiveConflict{
				Type:   b.Type.Name,
				Member: r.Name,
				Detail: "custom transformations apply to fields, not relations",
			}
			w.diags.AddError("custom-on-relation", err.Error(), b.Triple.String(), r.Name)

			return err
		}

		if err := claim(r.Name, d.Alias); err != nil {
			return err
		}

		instr, err := w.relationInstruction(b, r, d)
		if err != nil {
			return err
		}

		b.Instructions = append(b.Instructions, instr)
	}

	return nil
}

func (w *Walker) fieldInstruction(b *Blueprint, f model.FieldDescriptor, d directive.Directive) (Instruction, error) {
	read, err := b.Source.ReadField("source", f.Name, d.Alias)
	if err != nil {
		return Instruction{}, err
	}

	value := read

	if d.Kind == directive.KindCustom {
		if _, ok := w.handlers.Lookup(d.Handler); !ok {
			err := &support.SchemaMismatch{
				Repr:   "handler",
				Type:   b.Type.Name,
				Member: d.Handler,
				Want:   "registered handler",
			}
			w.diags.AddError("missing-handler", err.Error(), b.Triple.String(), f.Name)

			return Instruction{}, err
		}

		value = fmt.Sprintf("handlers[%q](%s)", d.Handler, value)
		if f.Type != "" {
			value = fmt.Sprintf("%s.(%s)", value, f.Type)
		}
	}

	stmt, err := b.Dest.WriteField("destination", f.Name, d.Alias, value)
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{
		Kind:    InstrField,
		Member:  f.Name,
		As:      d.Alias,
		Handler: d.Handler,
		Stmt:    stmt,
	}, nil
}

func (w *Walker) relationInstruction(b *Blueprint, r model.RelationDescriptor, d directive.Directive) (Instruction, error) {
	nested, err := w.walk(r.Target, b.Type.Name+"."+r.Name)
	if err != nil {
		return Instruction{}, err
	}

	instr := Instruction{
		Member: r.Name,
		As:     d.Alias,
		Nested: nested,
	}

	if r.Cardinality == model.Single {
		instr.Kind = InstrSingle

		if instr.PresentExpr, err = b.Source.RelationPresent("source", r.Name, d.Alias); err != nil {
			return Instruction{}, err
		}

		if instr.ArgExpr, err = b.Source.RelationArg("source", r.Name, d.Alias); err != nil {
			return Instruction{}, err
		}

		if instr.AssignStmt, err = b.Dest.AssignRelation("destination", r.Name, d.Alias, support.NestedValue); err != nil {
			return Instruction{}, err
		}

		return instr, nil
	}

	instr.Kind = InstrCollection
	instr.ElemVar = "item"

	if instr.CollPresentExpr, err = b.Source.CollectionPresent("source", r.Name, d.Alias); err != nil {
		return Instruction{}, err
	}

	if instr.CollExpr, err = b.Source.CollectionExpr("source", r.Name, d.Alias); err != nil {
		return Instruction{}, err
	}

	if instr.ElemArg, err = b.Source.ElemArg(r.Name, instr.ElemVar); err != nil {
		return Instruction{}, err
	}

	if instr.ClearStmt, err = b.Dest.ClearCollection("destination", r.Name, d.Alias); err != nil {
		return Instruction{}, err
	}

	if instr.AppendStmt, err = b.Dest.AppendElem("destination", r.Name, d.Alias, support.NestedValue); err != nil {
		return Instruction{}, err
	}

	return instr, nil
}
