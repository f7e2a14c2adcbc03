package checkout

import "math"

// Pricing applied at the checkout boundary. The cart store never rounds;
// all paisa conversion happens here.
const (
	shippingFeeNPR = 1200
	vatRate        = 0.13
)

// Quote is the priced breakdown for the current cart, in NPR major units.
// Tax and total carry fractional rupees until paisa conversion.
type Quote struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// QuoteFor prices a cart subtotal: flat shipping fee when the cart is
// non-empty, plus 13% VAT on the subtotal.
func QuoteFor(subtotal int64) Quote {
	q := Quote{Subtotal: float64(subtotal)}
	if subtotal > 0 {
		q.Shipping = shippingFeeNPR
	}
	q.Tax = q.Subtotal * vatRate
	q.Total = q.Subtotal + q.Shipping + q.Tax
	return q
}

// ToPaisa converts an NPR amount to integer paisa, rounding half up. Ties
// like .005 NPR always round away from zero toward the next paisa.
func ToPaisa(npr float64) int64 {
	return int64(math.Floor(npr*100 + 0.5))
}
