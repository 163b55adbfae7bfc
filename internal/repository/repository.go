package repository

import (
	"context"

	"github.com/cncideas/storefront/internal/domain"
)

// CartRepository persists shopper carts under a fixed per-shopper key.
type CartRepository interface {
	// Get retrieves a cart by shopper ID. Returns apperrors.ErrNotFound when
	// no cart is stored.
	Get(ctx context.Context, shopperID string) (*domain.Cart, error)

	// Save writes the full cart, replacing the stored value.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the stored cart.
	Delete(ctx context.Context, shopperID string) error
}

// CheckoutRepository persists checkout sessions.
type CheckoutRepository interface {
	// Create inserts a new checkout session.
	Create(ctx context.Context, session *domain.Checkout) error

	// GetByID retrieves a checkout session by its ID.
	GetByID(ctx context.Context, id string) (*domain.Checkout, error)

	// GetActiveByShopperID retrieves the shopper's active session, if any.
	GetActiveByShopperID(ctx context.Context, shopperID string) (*domain.Checkout, error)

	// Update modifies an existing checkout session.
	Update(ctx context.Context, session *domain.Checkout) error
}
