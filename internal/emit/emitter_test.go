package emit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xfer-generator/internal/directive"
	"xfer-generator/internal/model"
	"xfer-generator/internal/support"
	"xfer-generator/internal/walk"
)

type order struct {
	ID    int64
	Total int64
	Parts []orderPart
}

type orderPart struct {
	ID    int64
	SKU   string
	Order *order
}

func registry(t *testing.T) *model.Registry {
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

func bindings() *support.Bindings {
	b := support.NewBindings()
	b.Register("Order", support.Binding{
		TypeRef: "emit.order",
		New:     func() any { return &order{} },
		Get: map[string]func(any) any{
			"id":    func(o any) any { return o.(*order).ID },
			"total": func(o any) any { return o.(*order).Total },
		},
		Set: map[string]func(any, any){
			"id":    func(o, v any) { o.(*order).ID = v.(int64) },
			"total": func(o, v any) { o.(*order).Total = v.(int64) },
		},
		Elems: map[string]func(any) []any{
			"parts": func(o any) []any {
				ord := o.(*order)
				out := make([]any, len(ord.Parts))
				for i := range ord.Parts {
					out[i] = &ord.Parts[i]
				}
				return out
			},
		},
		Append: map[string]func(any, any){
			"parts": func(o, e any) {
				ord := o.(*order)
				ord.Parts = append(ord.Parts, *e.(*orderPart))
			},
		},
		Clear: map[string]func(any){
			"parts": func(o any) { o.(*order).Parts = o.(*order).Parts[:0] },
		},
	})
	b.Register("OrderPart", support.Binding{
		TypeRef: "emit.orderPart",
		New:     func() any { return &orderPart{} },
		GoName:  map[string]string{"sku": "SKU"},
		Get: map[string]func(any) any{
			"id":    func(o any) any { return o.(*orderPart).ID },
			"sku":   func(o any) any { return o.(*orderPart).SKU },
			"order": func(o any) any { return o.(*orderPart).Order },
		},
		Set: map[string]func(any, any){
			"id":    func(o, v any) { o.(*orderPart).ID = v.(int64) },
			"sku":   func(o, v any) { o.(*orderPart).SKU = v.(string) },
			"order": func(o, v any) { o.(*orderPart).Order = v.(*order) },
		},
	})

	return b
}

func walkOrder(t *testing.T, cfg directive.Config, src, dst *support.Factory) []*walk.Blueprint {
	t.Helper()

	w := walk.NewWalker(registry(t), src, dst, cfg, nil, nil)
	_, err := w.Walk("Order")
	require.NoError(t, err)

	return w.Blueprints()
}

func skipBackRelation() directive.Config {
	return directive.Config{
		"Order":     directive.Set{},
		"OrderPart": directive.Set{"order": directive.Skip()},
	}
}

func TestEmitRecordToObject(t *testing.T) {
	t.Parallel()

	blueprints := walkOrder(t, skipBackRelation(),
		support.NewRecordFactory(), support.NewObjectFactory(bindings()))

	emitter := NewEmitter(Config{
		PackageName:      "serializers",
		Filename:         "serializers.go",
		GenerateComments: true,
	})

	file, err := emitter.Emit(blueprints)
	require.NoError(t, err)

	code := string(file.Content)
	assert.Contains(t, code, "package serializers")
	assert.Contains(t, code, "func SerializeOrderRecordToObject(source map[string]any, destination *emit.order) *emit.order")
	assert.Contains(t, code, `destination.Total = source["total"].(int64)`)
	assert.Contains(t, code, "destination.Parts = destination.Parts[:0]")
	assert.Contains(t, code, `if source["parts"] != nil {`, "a record without the key copies like an empty collection")
	assert.Contains(t, code, `for _, item := range source["parts"].([]any)`)
	assert.Contains(t, code,
		"destination.Parts = append(destination.Parts, *(SerializeOrderPartRecordToObject(item.(map[string]any), nil)))")
	assert.Contains(t, code, "func SerializeOrderPartRecordToObject")
	assert.NotContains(t, code, "var handlers", "no custom directives, no handler table")
	assert.NotContains(t, code, support.NestedValue)
}

func TestEmitObjectToRecordRename(t *testing.T) {
	t.Parallel()

	cfg := skipBackRelation()
	cfg["Order"] = directive.Set{"total": directive.Rename("amount")}

	blueprints := walkOrder(t, cfg,
		support.NewObjectFactory(bindings()), support.NewRecordFactory())

	file, err := NewEmitter(DefaultConfig()).Emit(blueprints)
	require.NoError(t, err)

	code := string(file.Content)
	assert.Contains(t, code, `destination["amount"] = source.Total`)
	assert.NotContains(t, code, `destination["total"]`)
	assert.Contains(t, code, "for _, item := range source.Parts {", "struct collections loop unguarded")
}

func TestEmitDeterministic(t *testing.T) {
	t.Parallel()

	cfg := skipBackRelation()
	emitter := NewEmitter(DefaultConfig())

	blueprints := walkOrder(t, cfg, support.NewRecordFactory(), support.NewRecordFactory())
	first, err := emitter.Emit(blueprints)
	require.NoError(t, err)

	// A fresh walk starting from the nested type must emit the same
	// file.
	w := walk.NewWalker(registry(t), support.NewRecordFactory(), support.NewRecordFactory(), cfg, nil, nil)
	_, err = w.Walk("OrderPart")
	require.NoError(t, err)
	_, err = w.Walk("Order")
	require.NoError(t, err)

	second, err := emitter.Emit(w.Blueprints())
	require.NoError(t, err)

	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, Digest(blueprints), Digest(w.Blueprints()))
}

func TestEmitCustomHandlerTable(t *testing.T) {
	t.Parallel()

	cfg := skipBackRelation()
	cfg["Order"] = directive.Set{"total": directive.Custom("cents")}

	handlers := support.NewHandlers()
	handlers.Register("cents", func(v any) any { return v.(int64) * 100 })

	w := walk.NewWalker(registry(t), support.NewRecordFactory(), support.NewRecordFactory(), cfg, handlers, nil)
	_, err := w.Walk("Order")
	require.NoError(t, err)

	file, err := NewEmitter(DefaultConfig()).Emit(w.Blueprints())
	require.NoError(t, err)

	code := string(file.Content)
	assert.Contains(t, code, "var handlers = map[string]func(any) any{}")
	assert.Contains(t, code, `handlers["cents"](source["total"].(int64)).(int64)`)
}

// brokenProvider emits a write statement that cannot parse, to force
// the formatting failure path.
type brokenProvider struct {
	*support.Record
}

func (p *brokenProvider) WriteField(instance, field, as, value string) (string, error) {
	return "not a statement !!!", nil
}

func TestEmitGenerationFailure(t *testing.T) {
	t.Parallel()

	broken := support.NewFactory("broken", func(mt *model.ModeledType) (support.Provider, error) {
		return &brokenProvider{Record: support.NewRecord(mt)}, nil
	})

	w := walk.NewWalker(registry(t), support.NewRecordFactory(), broken, skipBackRelation(), nil, nil)
	_, err := w.Walk("Order")
	require.NoError(t, err)

	outDir := t.TempDir()
	emitter := NewEmitter(Config{PackageName: "serializers", Filename: "serializers.go", OutputDir: outDir})

	file, err := emitter.Emit(w.Blueprints())
	require.Error(t, err)

	var gf *GenerationFailure
	require.ErrorAs(t, err, &gf)
	assert.NotEmpty(t, gf.Raw)

	// Both routines are malformed; the failure names the first one in
	// emission order.
	assert.Equal(t, walk.Triple{
		SourceRepr: support.ReprRecord,
		DestRepr:   "broken",
		TypeName:   "OrderPart",
	}, gf.Triple)

	// The unformatted text comes back for inspection, plus a sidecar.
	require.NotNil(t, file)
	assert.Contains(t, string(file.Content), "not a statement !!!")
	assert.FileExists(t, filepath.Join(outDir, "serializers.unformatted.go"))
}

func TestWriteFiles(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")

	err := WriteFiles([]GeneratedFile{{Filename: "a.go", Content: []byte("package a\n")}}, dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "a.go"))
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := Config{PackageName: "a"}.Fingerprint("digest")
	assert.Equal(t, a, Config{PackageName: "a"}.Fingerprint("digest"))
	assert.NotEqual(t, a, Config{PackageName: "b"}.Fingerprint("digest"))
	assert.NotEqual(t, a, Config{PackageName: "a"}.Fingerprint("other"))
}

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()

	cache := NewCache(t.TempDir())

	_, ok := cache.Get("deadbeef")
	assert.False(t, ok)

	require.NoError(t, cache.Put("deadbeef", []byte("package p\n")))

	content, ok := cache.Get("deadbeef")
	require.True(t, ok)
	assert.Equal(t, []byte("package p\n"), content)

	disabled := NewCache("")
	require.NoError(t, disabled.Put("deadbeef", []byte("x")))
	_, ok = disabled.Get("deadbeef")
	assert.False(t, ok)
}
