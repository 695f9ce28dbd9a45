package walk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xfer-generator/internal/directive"
	"xfer-generator/internal/model"
	"xfer-generator/internal/support"
)

func orderRegistry(t *testing.T) *model.Registry {
	t.Helper()

	reg := model.NewRegistry()

	require.NoError(t, reg.Register(&model.ModeledType{
		Name:      "Order",
		KeyFields: []string{"id"},
		Fields: []model.FieldDescriptor{
			{Name: "id", Type: "int64"},
			{Name: "total", Type: "int64"},
		},
		Relations: []model.RelationDescriptor{
			{Name: "parts", Target: "OrderPart", Cardinality: model.Collection},
		},
	}))
	require.NoError(t, reg.Register(&model.ModeledType{
		Name:      "OrderPart",
		KeyFields: []string{"id"},
		Fields: []model.FieldDescriptor{
			{Name: "id", Type: "int64"},
			{Name: "sku", Type: "string"},
		},
		Relations: []model.RelationDescriptor{
			{Name: "order", Target: "Order", Cardinality: model.Single},
		},
	}))

	return reg
}

func recordWalker(t *testing.T, cfg directive.Config, handlers *support.Handlers) *Walker {
	t.Helper()

	return NewWalker(orderRegistry(t), support.NewRecordFactory(), support.NewRecordFactory(), cfg, handlers, nil)
}

func includeBoth() directive.Config {
	return directive.Config{"Order": directive.Set{}, "OrderPart": directive.Set{}}
}

func TestWalkCyclicModelTerminates(t *testing.T) {
	t.Parallel()

	w := recordWalker(t, includeBoth(), nil)

	order, err := w.Walk("Order")
	require.NoError(t, err)
	assert.True(t, order.Complete())

	// fields first, in declared order, then relations
	require.Len(t, order.Instructions, 3)
	assert.Equal(t, "id", order.Instructions[0].Member)
	assert.Equal(t, "total", order.Instructions[1].Member)
	assert.Equal(t, "parts", order.Instructions[2].Member)
	assert.Equal(t, InstrCollection, order.Instructions[2].Kind)

	part := order.Instructions[2].Nested
	require.NotNil(t, part)
	assert.True(t, part.Complete())

	// the back edge must resolve to the very same blueprint
	back := part.Instructions[2]
	assert.Equal(t, InstrSingle, back.Kind)
	assert.Same(t, order, back.Nested)
}

func TestWalkMemoizesPerTriple(t *testing.T) {
	t.Parallel()

	w := recordWalker(t, includeBoth(), nil)

	b1, err := w.Walk("Order")
	require.NoError(t, err)
	b2, err := w.Walk("Order")
	require.NoError(t, err)
	assert.Same(t, b1, b2)

	// Order plus the nested OrderPart, in first-request order.
	bs := w.Blueprints()
	require.Len(t, bs, 2)
	assert.Equal(t, "Order", bs[0].Triple.TypeName)
	assert.Equal(t, "OrderPart", bs[1].Triple.TypeName)
}

func TestWalkSkipDirective(t *testing.T) {
	t.Parallel()

	cfg := directive.Config{
		"Order":     directive.Set{},
		"OrderPart": directive.Set{"order": directive.Skip()},
	}
	w := recordWalker(t, cfg, nil)

	order, err := w.Walk("Order")
	require.NoError(t, err)

	part := order.Instructions[2].Nested
	require.Len(t, part.Instructions, 2)
	for _, instr := range part.Instructions {
		assert.NotEqual(t, "order", instr.Member)
	}
}

func TestWalkRenameDirective(t *testing.T) {
	t.Parallel()

	cfg := directive.Config{
		"Order":     directive.Set{"total": directive.Rename("amount")},
		"OrderPart": directive.Set{},
	}
	w := recordWalker(t, cfg, nil)

	order, err := w.Walk("Order")
	require.NoError(t, err)

	total := order.Instructions[1]
	assert.Equal(t, "amount", total.As)
	assert.Contains(t, total.Stmt, `destination["amount"]`)
	assert.Contains(t, total.Stmt, `source["amount"]`, "record sources read the aliased key too")
}

func TestWalkRenameCollision(t *testing.T) {
	t.Parallel()

	cfg := directive.Config{
		"Order": directive.Set{"total": directive.Rename("id")},
	}
	w := recordWalker(t, cfg, nil)

	_, err := w.Walk("Order")
	require.Error(t, err)

	var dc *DirectiveConflict
	require.ErrorAs(t, err, &dc)
	assert.Equal(t, "total", dc.Member)
	assert.True(t, w.Diagnostics().HasErrors())
}

func TestWalkCustomOnRelation(t *testing.T) {
	t.Parallel()

	cfg := directive.Config{
		"Order": directive.Set{"parts": directive.Custom("boom")},
	}
	w := recordWalker(t, cfg, nil)

	_, err := w.Walk("Order")

	var dc *DirectiveConflict
	require.ErrorAs(t, err, &dc)
	assert.Equal(t, "parts", dc.Member)
}

func TestWalkCustomHandler(t *testing.T) {
	t.Parallel()

	cfg := directive.Config{
		"Order":     directive.Set{"total": directive.Custom("cents")},
		"OrderPart": directive.Set{},
	}

	handlers := support.NewHandlers()
	handlers.Register("cents", func(v any) any { return v.(int64) * 100 })

	w := recordWalker(t, cfg, handlers)

	order, err := w.Walk("Order")
	require.NoError(t, err)
	assert.Contains(t, order.Instructions[1].Stmt, `handlers["cents"]`)
	assert.Equal(t, "cents", order.Instructions[1].Handler)
}

func TestWalkMissingHandler(t *testing.T) {
	t.Parallel()

	cfg := directive.Config{
		"Order": directive.Set{"total": directive.Custom("nope")},
	}
	w := recordWalker(t, cfg, nil)

	_, err := w.Walk("Order")
	require.Error(t, err)

	var sm *support.SchemaMismatch
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "nope", sm.Member)
}

func TestWalkUnregisteredRelationTarget(t *testing.T) {
	t.Parallel()

	// Only the root carries a directive entry; the relation target
	// must fail the walk even though the model knows it.
	w := recordWalker(t, directive.Config{"Order": directive.Set{}}, nil)

	_, err := w.Walk("Order")
	require.Error(t, err)

	var ut *UnknownModeledType
	require.ErrorAs(t, err, &ut)
	assert.Equal(t, "OrderPart", ut.Name)
	assert.Equal(t, "Order.parts", ut.Via)
	assert.True(t, ut.Unconfigured)
	assert.True(t, w.Diagnostics().HasErrors())

	// An empty entry is registration enough.
	w = recordWalker(t, includeBoth(), nil)
	_, err = w.Walk("Order")
	assert.NoError(t, err)
}

func TestWalkUnknownType(t *testing.T) {
	t.Parallel()

	w := recordWalker(t, includeBoth(), nil)

	_, err := w.Walk("Invoice")

	var ut *UnknownModeledType
	require.ErrorAs(t, err, &ut)
	assert.Equal(t, "Invoice", ut.Name)

	reg := model.NewRegistry()
	require.NoError(t, reg.Register(&model.ModeledType{
		Name:      "Dangling",
		Relations: []model.RelationDescriptor{{Name: "to", Target: "Nowhere", Cardinality: model.Single}},
	}))

	w = NewWalker(reg, support.NewRecordFactory(), support.NewRecordFactory(),
		directive.Config{"Dangling": directive.Set{}}, nil, nil)
	_, err = w.Walk("Dangling")
	require.ErrorAs(t, err, &ut)
	assert.Equal(t, "Nowhere", ut.Name)
	assert.Equal(t, "Dangling.to", ut.Via)
}

func TestTripleReverse(t *testing.T) {
	t.Parallel()

	triple := Triple{SourceRepr: support.ReprRecord, DestRepr: support.ReprObject, TypeName: "Order"}
	assert.Equal(t, "record->object:Order", triple.String())
	assert.Equal(t, Triple{SourceRepr: support.ReprObject, DestRepr: support.ReprRecord, TypeName: "Order"}, triple.Reverse())
}
