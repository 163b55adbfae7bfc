package domain

import (
	"time"
)

// Checkout wizard steps, in order. Forward transitions are gated by the
// previous step validating; backward transitions are unrestricted.
const (
	StepBilling  = "billing"
	StepShipping = "shipping"
	StepPayment  = "payment"
	StepReview   = "review"
)

// Checkout session statuses.
const (
	CheckoutStatusActive    = "active"
	CheckoutStatusCompleted = "completed"
	CheckoutStatusExpired   = "expired"
)

// stepOrder maps each step to its position in the wizard.
var stepOrder = map[string]int{
	StepBilling:  0,
	StepShipping: 1,
	StepPayment:  2,
	StepReview:   3,
}

// IsValidStep checks whether the given step name is a known wizard step.
func IsValidStep(step string) bool {
	_, ok := stepOrder[step]
	return ok
}

// StepIndex returns the 0-based position of a step, or -1 for unknown steps.
func StepIndex(step string) int {
	if i, ok := stepOrder[step]; ok {
		return i
	}
	return -1
}

// BillingDetails holds the billing address collected in the first step.
type BillingDetails struct {
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,max=30"`
	Address    string `json:"address" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
}

// Complete reports whether every required billing field is non-empty.
func (b BillingDetails) Complete() bool {
	return b.FirstName != "" && b.LastName != "" && b.Email != "" &&
		b.Phone != "" && b.Address != "" && b.City != "" &&
		b.PostalCode != "" && b.Country != ""
}

// ShippingDetails holds the shipping address. When SameAsBilling is set the
// address fields are ignored and the billing address is used instead.
type ShippingDetails struct {
	SameAsBilling bool   `json:"same_as_billing"`
	FirstName     string `json:"first_name" validate:"required_unless=SameAsBilling true,max=100"`
	LastName      string `json:"last_name" validate:"required_unless=SameAsBilling true,max=100"`
	Address       string `json:"address" validate:"required_unless=SameAsBilling true,max=255"`
	City          string `json:"city" validate:"required_unless=SameAsBilling true,max=100"`
	PostalCode    string `json:"postal_code" validate:"required_unless=SameAsBilling true,max=20"`
	Country       string `json:"country" validate:"required_unless=SameAsBilling true,max=100"`
}

// Complete reports whether the shipping step validates. "Same as billing"
// auto-satisfies the step.
func (s ShippingDetails) Complete() bool {
	if s.SameAsBilling {
		return true
	}
	return s.FirstName != "" && s.LastName != "" && s.Address != "" &&
		s.City != "" && s.PostalCode != "" && s.Country != ""
}

// PaymentDetails holds the payment method selection. No gateway integration
// happens here; the order carries the choice downstream.
type PaymentDetails struct {
	Method string `json:"method" validate:"required,oneof=card transfer cash_on_delivery"`
}

// Complete reports whether a payment method has been selected.
func (p PaymentDetails) Complete() bool {
	return p.Method != ""
}

// Checkout is a checkout session: a linear 4-step wizard over the cart.
type Checkout struct {
	ID        string          `json:"id"`
	ShopperID string          `json:"shopper_id"`
	Step      string          `json:"step"`
	Billing   BillingDetails  `json:"billing"`
	Shipping  ShippingDetails `json:"shipping"`
	Payment   PaymentDetails  `json:"payment"`
	Notes     string          `json:"notes,omitempty"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// StepComplete reports whether the named step's required data is present.
// Review has no data of its own and is complete once reachable.
func (c *Checkout) StepComplete(step string) bool {
	switch step {
	case StepBilling:
		return c.Billing.Complete()
	case StepShipping:
		return c.Shipping.Complete()
	case StepPayment:
		return c.Payment.Complete()
	case StepReview:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the wizard may move from the current step to
// the target. Moving backward is always allowed; moving forward requires
// every step before the target to be complete.
func (c *Checkout) CanTransition(target string) bool {
	targetIdx := StepIndex(target)
	if targetIdx < 0 {
		return false
	}
	currentIdx := StepIndex(c.Step)
	if targetIdx <= currentIdx {
		return true
	}
	for step, idx := range stepOrder {
		if idx < targetIdx && !c.StepComplete(step) {
			return false
		}
	}
	return true
}

// ReadyToSubmit reports whether all three data steps validate, which gates
// SubmitOrder.
func (c *Checkout) ReadyToSubmit() bool {
	return c.Billing.Complete() && c.Shipping.Complete() && c.Payment.Complete()
}

// EffectiveShipping returns the address the order ships to: the billing copy
// when "same as billing" is selected, the shipping details otherwise.
func (c *Checkout) EffectiveShipping() ShippingDetails {
	if c.Shipping.SameAsBilling {
		return ShippingDetails{
			SameAsBilling: true,
			FirstName:     c.Billing.FirstName,
			LastName:      c.Billing.LastName,
			Address:       c.Billing.Address,
			City:          c.Billing.City,
			PostalCode:    c.Billing.PostalCode,
			Country:       c.Billing.Country,
		}
	}
	return c.Shipping
}

// Expired reports whether the session has passed its expiry time.
func (c *Checkout) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Totals holds the computed order amounts in cents.
type Totals struct {
	Subtotal    int64 `json:"subtotal"`
	ShippingFee int64 `json:"shipping_fee"`
	Total       int64 `json:"total"`
}

// ComputeTotals applies the threshold shipping rule: orders above the
// threshold ship free, everything else pays the flat fee. An empty cart owes
// nothing.
func ComputeTotals(items []CartItem, freeShippingThreshold, flatShippingFee int64) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += item.LineTotal()
	}

	var fee int64
	if subtotal > 0 && subtotal <= freeShippingThreshold {
		fee = flatShippingFee
	}

	return Totals{
		Subtotal:    subtotal,
		ShippingFee: fee,
		Total:       subtotal + fee,
	}
}
