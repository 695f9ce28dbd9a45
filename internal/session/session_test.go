package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"xfer-generator/internal/directive"
	"xfer-generator/internal/emit"
	"xfer-generator/internal/support"
	"xfer-generator/internal/walk"
	"xfer-generator/store"
)

func storeSession(t *testing.T, opts ...Option) *Session {
	t.Helper()

	reg, err := store.Model()
	require.NoError(t, err)

	cfg, err := store.Directives()
	require.NoError(t, err)

	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)

	s, err := New(reg,
		support.NewRecordFactory(),
		support.NewObjectFactory(store.Bindings()),
		cfg, opts...)
	require.NoError(t, err)

	return s
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	s := storeSession(t, WithEmitConfig(emit.Config{
		PackageName:      "serializers",
		Filename:         "serializers.go",
		Imports:          []string{"xfer-generator/store"},
		GenerateComments: true,
	}))

	result, err := s.Generate("Order")
	require.NoError(t, err)

	code := string(result.File.Content)
	assert.Contains(t, code, `"xfer-generator/store"`)
	assert.Contains(t, code, "func SerializeOrderRecordToObject(source map[string]any, destination *store.Order) *store.Order")
	assert.Contains(t, code, `destination.Total = source["amount"].(int64)`)

	// Order plus both reachable types.
	assert.Len(t, result.Serializers.Triples(), 3)
	assert.NotEmpty(t, result.Digest)
	assert.True(t, result.Diagnostics.IsValid())
}

func TestGenerateRoundTrip(t *testing.T) {
	t.Parallel()

	s := storeSession(t)
	reverse := s.Reverse()
	assert.NotEqual(t, s.ID(), reverse.ID())

	toObject, err := s.Generate("Order")
	require.NoError(t, err)

	toRecord, err := reverse.Generate("Order")
	require.NoError(t, err)

	serialize, ok := toRecord.Serializers.Lookup(walk.Triple{
		SourceRepr: support.ReprObject,
		DestRepr:   support.ReprRecord,
		TypeName:   "Order",
	})
	require.True(t, ok)

	deserialize, ok := toObject.Serializers.Lookup(walk.Triple{
		SourceRepr: support.ReprRecord,
		DestRepr:   support.ReprObject,
		TypeName:   "Order",
	})
	require.True(t, ok)

	original := &store.Order{
		ID:       1,
		Total:    100,
		Customer: &store.Customer{ID: 5, Email: "a@example.com", FullName: "Ada"},
		Parts:    []store.OrderPart{{ID: 10, SKU: "A"}, {ID: 11, SKU: "B"}},
	}

	wire, err := serialize(original, nil)
	require.NoError(t, err)

	record := wire.(map[string]any)
	assert.Equal(t, int64(100), record["amount"])
	assert.NotContains(t, record, "total")

	back, err := deserialize(record, nil)
	require.NoError(t, err)
	assert.Equal(t, original, back.(*store.Order))
}

func TestGenerateArtifactCache(t *testing.T) {
	t.Parallel()

	cache := emit.NewCache(t.TempDir())

	s := storeSession(t, WithCache(cache))

	first, err := s.Generate("Order")
	require.NoError(t, err)

	cached, ok := cache.Get(first.Digest)
	require.True(t, ok)
	assert.Equal(t, first.File.Content, cached)

	second, err := s.Generate("Order")
	require.NoError(t, err)
	assert.Equal(t, first.Digest, second.Digest)
	assert.Equal(t, first.File.Content, second.File.Content)
}

func TestNewValidatesDirectives(t *testing.T) {
	t.Parallel()

	reg, err := store.Model()
	require.NoError(t, err)

	bad := directive.Config{
		"Order": directive.Set{"discount": directive.Skip()},
	}

	_, err = New(reg, support.NewRecordFactory(), support.NewObjectFactory(store.Bindings()), bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discount")
}

func TestGenerateUnknownType(t *testing.T) {
	t.Parallel()

	s := storeSession(t)

	_, err := s.Generate("Invoice")

	var ut *walk.UnknownModeledType
	require.ErrorAs(t, err, &ut)
}

func TestParallelSessions(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup

	results := make([]*Result, 4)

	for i := range results {
		s := storeSession(t)

		wg.Add(1)

		go func(i int, s *Session) {
			defer wg.Done()

			r, err := s.Generate("Order")
			assert.NoError(t, err)
			results[i] = r
		}(i, s)
	}

	wg.Wait()

	for _, r := range results[1:] {
		require.NotNil(t, r)
		assert.Equal(t, results[0].File.Content, r.File.Content)
	}
}

func TestCustomHandlerThroughSession(t *testing.T) {
	t.Parallel()

	reg, err := store.Model()
	require.NoError(t, err)

	cfg, err := store.Directives()
	require.NoError(t, err)

	cfg["Customer"] = directive.Set{"email": directive.Custom("mask")}

	handlers := support.NewHandlers()
	handlers.Register("mask", func(v any) any { return "***" })

	s, err := New(reg,
		support.NewObjectFactory(store.Bindings()),
		support.NewRecordFactory(),
		cfg, WithHandlers(handlers))
	require.NoError(t, err)

	result, err := s.Generate("Customer")
	require.NoError(t, err)

	fn, ok := result.Serializers.Lookup(walk.Triple{
		SourceRepr: support.ReprObject,
		DestRepr:   support.ReprRecord,
		TypeName:   "Customer",
	})
	require.True(t, ok)

	out, err := fn(&store.Customer{ID: 5, Email: "a@example.com"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "***", out.(map[string]any)["email"])
}
