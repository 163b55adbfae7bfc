package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func billingFixture() BillingDetails {
	return BillingDetails{
		FirstName:  "Ana",
		LastName:   "Gomez",
		Email:      "ana@example.com",
		Phone:      "+34600000000",
		Address:    "Calle Mayor 1",
		City:       "Madrid",
		PostalCode: "28001",
		Country:    "ES",
	}
}

// ============================================================================
// Step completeness
// ============================================================================

func TestBillingComplete_AllFields(t *testing.T) {
	assert.True(t, billingFixture().Complete())
}

func TestBillingComplete_MissingField(t *testing.T) {
	b := billingFixture()
	b.Email = ""
	assert.False(t, b.Complete())
}

func TestShippingComplete_SameAsBilling(t *testing.T) {
	s := ShippingDetails{SameAsBilling: true}
	assert.True(t, s.Complete())
}

func TestShippingComplete_RequiresFieldsWhenNotCopied(t *testing.T) {
	s := ShippingDetails{FirstName: "Ana"}
	assert.False(t, s.Complete())

	s = ShippingDetails{
		FirstName:  "Ana",
		LastName:   "Gomez",
		Address:    "Calle Mayor 1",
		City:       "Madrid",
		PostalCode: "28001",
		Country:    "ES",
	}
	assert.True(t, s.Complete())
}

func TestPaymentComplete(t *testing.T) {
	assert.False(t, PaymentDetails{}.Complete())
	assert.True(t, PaymentDetails{Method: "card"}.Complete())
}

// ============================================================================
// Transitions
// ============================================================================

func TestCanTransition_BackwardAlwaysAllowed(t *testing.T) {
	c := &Checkout{Step: StepPayment}
	assert.True(t, c.CanTransition(StepBilling))
	assert.True(t, c.CanTransition(StepShipping))
	assert.True(t, c.CanTransition(StepPayment))
}

func TestCanTransition_ForwardRequiresPriorSteps(t *testing.T) {
	c := &Checkout{Step: StepBilling}
	assert.False(t, c.CanTransition(StepShipping))

	c.Billing = billingFixture()
	assert.True(t, c.CanTransition(StepShipping))

	// Payment needs shipping complete too.
	assert.False(t, c.CanTransition(StepPayment))
	c.Shipping = ShippingDetails{SameAsBilling: true}
	assert.True(t, c.CanTransition(StepPayment))

	assert.False(t, c.CanTransition(StepReview))
	c.Payment = PaymentDetails{Method: "card"}
	assert.True(t, c.CanTransition(StepReview))
}

func TestCanTransition_UnknownStep(t *testing.T) {
	c := &Checkout{Step: StepBilling}
	assert.False(t, c.CanTransition("confirmation"))
}

func TestCanTransition_NoStepSkipping(t *testing.T) {
	c := &Checkout{Step: StepBilling, Billing: billingFixture()}
	// Review is gated on shipping and payment even with billing done.
	assert.False(t, c.CanTransition(StepReview))
}

func TestReadyToSubmit(t *testing.T) {
	c := &Checkout{Step: StepReview}
	assert.False(t, c.ReadyToSubmit())

	c.Billing = billingFixture()
	c.Shipping = ShippingDetails{SameAsBilling: true}
	c.Payment = PaymentDetails{Method: "transfer"}
	assert.True(t, c.ReadyToSubmit())
}

// ============================================================================
// Effective shipping
// ============================================================================

func TestEffectiveShipping_CopiesBilling(t *testing.T) {
	c := &Checkout{
		Billing:  billingFixture(),
		Shipping: ShippingDetails{SameAsBilling: true},
	}

	got := c.EffectiveShipping()
	assert.Equal(t, "Ana", got.FirstName)
	assert.Equal(t, "Calle Mayor 1", got.Address)
	assert.Equal(t, "28001", got.PostalCode)
}

func TestEffectiveShipping_UsesOwnAddress(t *testing.T) {
	shipping := ShippingDetails{
		FirstName:  "Luis",
		LastName:   "Perez",
		Address:    "Av. Libertad 5",
		City:       "Valencia",
		PostalCode: "46001",
		Country:    "ES",
	}
	c := &Checkout{Billing: billingFixture(), Shipping: shipping}
	assert.Equal(t, shipping, c.EffectiveShipping())
}

// ============================================================================
// Expiry
// ============================================================================

func TestExpired(t *testing.T) {
	now := time.Now()
	c := &Checkout{ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, c.Expired(now))

	c.ExpiresAt = now.Add(time.Minute)
	assert.False(t, c.Expired(now))

	c.ExpiresAt = time.Time{}
	assert.False(t, c.Expired(now))
}

// ============================================================================
// Totals
// ============================================================================

func TestComputeTotals_BelowThresholdPaysFlatFee(t *testing.T) {
	items := []CartItem{{UnitPrice: 150, Quantity: 1}}
	got := ComputeTotals(items, 200, 15)
	assert.Equal(t, Totals{Subtotal: 150, ShippingFee: 15, Total: 165}, got)
}

func TestComputeTotals_AboveThresholdShipsFree(t *testing.T) {
	items := []CartItem{{UnitPrice: 250, Quantity: 1}}
	got := ComputeTotals(items, 200, 15)
	assert.Equal(t, Totals{Subtotal: 250, ShippingFee: 0, Total: 250}, got)
}

func TestComputeTotals_ExactThresholdStillPays(t *testing.T) {
	items := []CartItem{{UnitPrice: 200, Quantity: 1}}
	got := ComputeTotals(items, 200, 15)
	assert.Equal(t, int64(15), got.ShippingFee)
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	got := ComputeTotals(nil, 200, 15)
	assert.Equal(t, Totals{}, got)
}

// ============================================================================
// Order assembly
// ============================================================================

func TestBuildOrder(t *testing.T) {
	cart := &Cart{
		ShopperID: "s-1",
		Items: []CartItem{
			{ID: "p-1", Name: "Fresa 6mm", UnitPrice: 100, Quantity: 3, Kind: ItemKindProduct},
		},
	}
	checkout := &Checkout{
		ShopperID: "s-1",
		Billing:   billingFixture(),
		Shipping:  ShippingDetails{SameAsBilling: true},
		Payment:   PaymentDetails{Method: "card"},
		Notes:     "leave at door",
	}
	totals := ComputeTotals(cart.Items, 200, 15)

	order := BuildOrder(cart, checkout, totals)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "s-1", order.ShopperID)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, int64(300), order.Items[0].LineTotal())
	assert.Equal(t, "Ana", order.Shipping.FirstName)
	assert.Equal(t, "card", order.PaymentMethod)
	assert.Equal(t, "leave at door", order.Notes)
	assert.Equal(t, int64(300), order.Subtotal)
	assert.Equal(t, int64(0), order.ShippingFee)
	assert.Equal(t, int64(300), order.Total)

	// The order holds its own copy of the items.
	order.Items[0].Quantity = 99
	assert.Equal(t, 3, cart.Items[0].Quantity)
}
