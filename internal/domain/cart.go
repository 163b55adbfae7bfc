package domain

import "time"

// Cart item kinds. Products merge on re-add; planos are bought once and
// reject a second add.
const (
	ItemKindProduct = "product"
	ItemKindPlano   = "plano"
)

// Cart represents a shopper's cart.
type Cart struct {
	ShopperID string     `json:"shopper_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem represents a single line in the cart.
type CartItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice int64   `json:"unit_price"`
	ImageRef  *string `json:"image_ref,omitempty"`
	Quantity  int     `json:"quantity"`
	Kind      string  `json:"kind"`
}

// Mergeable reports whether re-adding this item should increase its quantity.
func (i CartItem) Mergeable() bool {
	return i.Kind != ItemKindPlano
}

// LineTotal returns the price of this line in cents.
func (i CartItem) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// Subtotal calculates the total price of all items in the cart (in cents).
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.LineTotal()
	}
	return total
}

// ItemCount returns the total number of units in the cart.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the cart item with the given ID, or -1.
func (c *Cart) FindItemIndex(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// IsValidItemKind checks whether the given kind is a known cart item kind.
func IsValidItemKind(kind string) bool {
	return kind == ItemKindProduct || kind == ItemKindPlano
}
