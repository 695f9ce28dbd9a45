package store

import "xfer-generator/internal/support"

// Bindings wires the store structs to their modeled types.
func Bindings() *support.Bindings {
	b := support.NewBindings()

	b.Register("Customer", support.Binding{
		TypeRef: "store.Customer",
		New:     func() any { return &Customer{} },
		GoName:  map[string]string{"id": "ID", "full_name": "FullName"},
		Get: map[string]func(any) any{
			"id":        func(c any) any { return c.(*Customer).ID },
			"email":     func(c any) any { return c.(*Customer).Email },
			"full_name": func(c any) any { return c.(*Customer).FullName },
		},
		Set: map[string]func(any, any){
			"id":        func(c, v any) { c.(*Customer).ID = v.(int64) },
			"email":     func(c, v any) { c.(*Customer).Email = v.(string) },
			"full_name": func(c, v any) { c.(*Customer).FullName = v.(string) },
		},
	})

	b.Register("Order", support.Binding{
		TypeRef: "store.Order",
		New:     func() any { return &Order{} },
		GoName:  map[string]string{"id": "ID"},
		Get: map[string]func(any) any{
			"id":       func(o any) any { return o.(*Order).ID },
			"total":    func(o any) any { return o.(*Order).Total },
			"customer": func(o any) any { return o.(*Order).Customer },
		},
		Set: map[string]func(any, any){
			"id":       func(o, v any) { o.(*Order).ID = v.(int64) },
			"total":    func(o, v any) { o.(*Order).Total = v.(int64) },
			"customer": func(o, v any) { o.(*Order).Customer = v.(*Customer) },
		},
		Elems: map[string]func(any) []any{
			"parts": func(o any) []any {
				ord := o.(*Order)
				out := make([]any, len(ord.Parts))
				for i := range ord.Parts {
					out[i] = &ord.Parts[i]
				}
				return out
			},
		},
		Append: map[string]func(any, any){
			"parts": func(o, e any) {
				ord := o.(*Order)
				ord.Parts = append(ord.Parts, *e.(*OrderPart))
			},
		},
		Clear: map[string]func(any){
			"parts": func(o any) { o.(*Order).Parts = o.(*Order).Parts[:0] },
		},
	})

	b.Register("OrderPart", support.Binding{
		TypeRef: "store.OrderPart",
		New:     func() any { return &OrderPart{} },
		GoName:  map[string]string{"id": "ID", "sku": "SKU"},
		Get: map[string]func(any) any{
			"id":    func(p any) any { return p.(*OrderPart).ID },
			"sku":   func(p any) any { return p.(*OrderPart).SKU },
			"order": func(p any) any { return p.(*OrderPart).Order },
		},
		Set: map[string]func(any, any){
			"id":    func(p, v any) { p.(*OrderPart).ID = v.(int64) },
			"sku":   func(p, v any) { p.(*OrderPart).SKU = v.(string) },
			"order": func(p, v any) { p.(*OrderPart).Order = v.(*Order) },
		},
	})

	return b
}
