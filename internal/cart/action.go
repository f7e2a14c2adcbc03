package cart

import "NepKart/internal/catalog"

// Action is the closed set of cart transitions. Every mutation of a Store
// goes through Apply with one of these variants.
type Action interface{ isAction() }

// Hydrate replaces the item list wholesale. It is used for the initial load
// from the persistence slot and for change notifications written by another
// store instance bound to the same slot.
type Hydrate struct{ Items []Item }

// Add puts one unit of a product in the cart. An existing entry keeps its
// position and gains one unit; a new product is appended at the end.
type Add struct{ Product catalog.Product }

// Remove drops the entry with the given product id. An absent id is a no-op.
type Remove struct{ ProductID int64 }

// SetQuantity sets the quantity for a product id, preserving its position.
// A quantity of zero or less behaves exactly like Remove.
type SetQuantity struct {
	ProductID int64
	Quantity  int
}

// Clear empties the cart.
type Clear struct{}

// Toggle flips the cart visibility flag and touches nothing else.
type Toggle struct{}

func (Hydrate) isAction()     {}
func (Add) isAction()         {}
func (Remove) isAction()      {}
func (SetQuantity) isAction() {}
func (Clear) isAction()       {}
func (Toggle) isAction()      {}

// Apply is the pure transition function. It never mutates its input slices
// and is total: any action yields a well-formed next state.
func Apply(s State, a Action) State {
	switch a := a.(type) {
	case Hydrate:
		s.Items = append([]Item(nil), a.Items...)
	case Add:
		s.Items = addItem(s.Items, a.Product)
	case Remove:
		s.Items = removeItem(s.Items, a.ProductID)
	case SetQuantity:
		if a.Quantity <= 0 {
			s.Items = removeItem(s.Items, a.ProductID)
		} else {
			s.Items = setQuantity(s.Items, a.ProductID, a.Quantity)
		}
	case Clear:
		s.Items = nil
	case Toggle:
		s.Open = !s.Open
	}
	return s
}

// mutatesItems reports whether an action can change the item list and so
// must be followed by a persistence write. Hydrate is excluded: its payload
// is by definition what the slot already holds, and writing it back would
// echo through the change channel indefinitely.
func mutatesItems(a Action) bool {
	switch a.(type) {
	case Add, Remove, SetQuantity, Clear:
		return true
	}
	return false
}

func addItem(items []Item, p catalog.Product) []Item {
	out := append([]Item(nil), items...)
	for i := range out {
		if out[i].ID == p.ID {
			out[i].Quantity++
			return out
		}
	}
	return append(out, Item{Product: p, Quantity: 1})
}

func setQuantity(items []Item, id int64, qty int) []Item {
	out := append([]Item(nil), items...)
	for i := range out {
		if out[i].ID == id {
			out[i].Quantity = qty
			break
		}
	}
	return out
}

func removeItem(items []Item, id int64) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}
