package support

import (
	"github.com/puzpuzpuz/xsync/v4"

	"xfer-generator/internal/model"
)

// Factory hands out providers memoized per modeled type, so repeated
// walks over a shared type reuse one provider instance.
type Factory struct {
	repr  string
	build func(*model.ModeledType) (Provider, error)
	cache *xsync.Map[string, Provider]
}

// NewFactory returns a factory over a custom provider constructor,
// for representations beyond the built-in two.
func NewFactory(repr string, build func(*model.ModeledType) (Provider, error)) *Factory {
	return &Factory{repr: repr, build: build, cache: xsync.NewMap[string, Provider]()}
}

// NewRecordFactory returns a factory producing record providers.
func NewRecordFactory() *Factory {
	return &Factory{
		repr: ReprRecord,
		build: func(t *model.ModeledType) (Provider, error) {
			return NewRecord(t), nil
		},
		cache: xsync.NewMap[string, Provider](),
	}
}

// NewObjectFactory returns a factory producing object providers from
// the registered bindings. A modeled type without a binding cannot be
// given a provider.
func NewObjectFactory(bindings *Bindings) *Factory {
	return &Factory{
		repr: ReprObject,
		build: func(t *model.ModeledType) (Provider, error) {
			b, ok := bindings.Lookup(t.Name)
			if !ok {
				return nil, mismatch(ReprObject, t, t.Name, "binding for type")
			}

			return NewObject(t, b), nil
		},
		cache: xsync.NewMap[string, Provider](),
	}
}

// ReprID identifies the representation this factory serves.
func (f *Factory) ReprID() string { return f.repr }

// Provider returns the memoized provider for t, building it on first
// request.
func (f *Factory) Provider(t *model.ModeledType) (Provider, error) {
	if p, ok := f.cache.Load(t.Name); ok {
		return p, nil
	}

	p, err := f.build(t)
	if err != nil {
		return nil, err
	}

	f.cache.Store(t.Name, p)

	return p, nil
}
