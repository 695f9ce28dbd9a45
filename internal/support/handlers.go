package support

import "github.com/puzpuzpuz/xsync/v4"

// Handler transforms one scalar value in flight, the hook a custom
// directive points at.
type Handler func(any) any

// Handlers is the named handler registry a session resolves custom
// directives against.
type Handlers struct {
	m *xsync.Map[string, Handler]
}

// NewHandlers returns an empty registry.
func NewHandlers() *Handlers {
	return &Handlers{m: xsync.NewMap[string, Handler]()}
}

// Register binds a handler under a name. Re-registering replaces the
// previous handler.
func (h *Handlers) Register(name string, fn Handler) {
	h.m.Store(name, fn)
}

// Lookup resolves a handler by name.
func (h *Handlers) Lookup(name string) (Handler, bool) {
	return h.m.Load(name)
}
