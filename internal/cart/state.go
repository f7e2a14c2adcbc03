package cart

import "NepKart/internal/catalog"

// Item is a catalog product held in the cart together with its purchase
// quantity. Quantity is at least 1 for as long as the item is present; an
// item dropping to zero is removed, never stored.
type Item struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

// State is the whole cart. Items is ordered and holds at most one entry per
// product id. Open is a pure UI visibility flag and is never persisted.
type State struct {
	Items []Item
	Open  bool
}

// TotalPrice is the sum of price times quantity over all items, in NPR major
// units. No rounding happens here; paisa conversion is a checkout concern.
func (s State) TotalPrice() int64 {
	var total int64
	for _, it := range s.Items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

// TotalItems is the sum of quantities over all items.
func (s State) TotalItems() int {
	var n int
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}
