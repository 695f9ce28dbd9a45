// Package store is the example domain wired through the generator's
// tests and the inspect command. It shows the binding conventions:
// single relations are pointer fields, collections are value slices.
package store

// Customer represents the user placing orders.
type Customer struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Order represents a transaction made by a customer.
// We use int64 for Total to represent cents (lowest currency unit) to
// avoid floating-point errors.
type Order struct {
	ID       int64       `json:"id"`
	Total    int64       `json:"total"`
	Customer *Customer   `json:"customer"`
	Parts    []OrderPart `json:"parts"`
}

// OrderPart represents a specific product line within an order.
type OrderPart struct {
	ID    int64  `json:"id"`
	SKU   string `json:"sku"`
	Order *Order `json:"-"`
}
