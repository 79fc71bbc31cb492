package domain

// Product is a catalog entry. ID is the string form of the authority-assigned
// numeric identity.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	InStock     bool    `json:"in_stock"`
}

// CartItem pairs a product snapshot with a positive quantity. The cart holds
// at most one item per product identity; quantity never drops below 1.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal is the item's contribution to an order total.
func (i CartItem) Subtotal() float64 {
	return i.Product.Price * float64(i.Quantity)
}
