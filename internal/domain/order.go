package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is the consolidated payload posted to the order intake endpoint at
// checkout submission.
type Order struct {
	ID            string          `json:"id"`
	ShopperID     string          `json:"shopper_id"`
	Items         []CartItem      `json:"items"`
	Billing       BillingDetails  `json:"billing"`
	Shipping      ShippingDetails `json:"shipping"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes,omitempty"`
	Subtotal      int64           `json:"subtotal"`
	ShippingFee   int64           `json:"shipping_fee"`
	Total         int64           `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

// BuildOrder assembles the order from the cart and a ready checkout session.
// The shipping address is the effective one, so "same as billing" sessions
// ship to the billing address.
func BuildOrder(cart *Cart, checkout *Checkout, totals Totals) *Order {
	items := make([]CartItem, len(cart.Items))
	copy(items, cart.Items)

	return &Order{
		ID:            uuid.New().String(),
		ShopperID:     cart.ShopperID,
		Items:         items,
		Billing:       checkout.Billing,
		Shipping:      checkout.EffectiveShipping(),
		PaymentMethod: checkout.Payment.Method,
		Notes:         checkout.Notes,
		Subtotal:      totals.Subtotal,
		ShippingFee:   totals.ShippingFee,
		Total:         totals.Total,
		CreatedAt:     time.Now().UTC(),
	}
}

// ContactMessage is relayed to the backend's contact endpoint.
type ContactMessage struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=255"`
	Message string `json:"message" validate:"required,max=5000"`
}
