package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cncideas/storefront/internal/domain"
	"github.com/cncideas/storefront/internal/event"
	"github.com/cncideas/storefront/internal/repository"
	apperrors "github.com/cncideas/storefront/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single cart item.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct items allowed in a cart.
	MaxItemsPerCart = 50
)

// CartEventPublisher publishes cart domain events to the message broker.
type CartEventPublisher interface {
	PublishCartUpdated(ctx context.Context, cart *domain.Cart) error
	PublishCartCleared(ctx context.Context, shopperID string) error
}

// AddItemInput holds the parameters for adding an item to the cart.
type AddItemInput struct {
	ID        string  `json:"id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	UnitPrice int64   `json:"unit_price" validate:"gte=0"`
	ImageRef  *string `json:"image_ref"`
	Quantity  int     `json:"quantity" validate:"gte=1"`
	Kind      string  `json:"kind" validate:"required,oneof=product plano"`
}

// CartService implements the business logic for cart operations. The store
// in Redis is the durable copy; read and parse failures degrade to an empty
// cart and write failures are warn-only, so a broken store never blocks the
// shopper's session.
type CartService struct {
	repo     repository.CartRepository
	producer CartEventPublisher
	bus      *event.Bus
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, producer CartEventPublisher, bus *event.Bus, logger *slog.Logger) *CartService {
	return &CartService{
		repo:     repo,
		producer: producer,
		bus:      bus,
		logger:   logger,
	}
}

// GetCart retrieves the cart for a shopper. Absent, unparseable, or otherwise
// unreadable stored carts all yield an empty cart, never an error.
func (s *CartService) GetCart(ctx context.Context, shopperID string) (*domain.Cart, error) {
	if shopperID == "" {
		return nil, apperrors.Validation("shopper id is required")
	}
	return s.loadCart(ctx, shopperID), nil
}

// AddItem adds an item to the shopper's cart. An existing product line is
// merged by increasing its quantity; planos are non-mergeable and a re-add is
// rejected with a duplicate-item error, leaving the cart unchanged.
func (s *CartService) AddItem(ctx context.Context, shopperID string, input AddItemInput) (*domain.Cart, error) {
	if shopperID == "" {
		return nil, apperrors.Validation("shopper id is required")
	}
	if input.ID == "" {
		return nil, apperrors.Validation("item id is required")
	}
	if !domain.IsValidItemKind(input.Kind) {
		return nil, apperrors.Validation(fmt.Sprintf("unknown item kind %q", input.Kind))
	}
	if input.Quantity <= 0 {
		return nil, apperrors.Validation("quantity must be greater than 0")
	}
	if input.Quantity > MaxQuantityPerItem {
		return nil, apperrors.Validation(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}
	if input.UnitPrice < 0 {
		return nil, apperrors.Validation("unit price must not be negative")
	}

	cart := s.loadCart(ctx, shopperID)

	if idx := cart.FindItemIndex(input.ID); idx >= 0 {
		if !cart.Items[idx].Mergeable() {
			return nil, apperrors.DuplicateItem(input.ID)
		}
		newQty := cart.Items[idx].Quantity + input.Quantity
		if newQty > MaxQuantityPerItem {
			return nil, apperrors.Validation(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
		}
		cart.Items[idx].Quantity = newQty
		// Refresh display fields in case the catalog changed.
		cart.Items[idx].Name = input.Name
		cart.Items[idx].UnitPrice = input.UnitPrice
		cart.Items[idx].ImageRef = input.ImageRef
	} else {
		if len(cart.Items) >= MaxItemsPerCart {
			return nil, apperrors.Validation(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
		}
		cart.Items = append(cart.Items, domain.CartItem{
			ID:        input.ID,
			Name:      input.Name,
			UnitPrice: input.UnitPrice,
			ImageRef:  input.ImageRef,
			Quantity:  input.Quantity,
			Kind:      input.Kind,
		})
	}

	s.persistCart(ctx, cart)
	s.notifyUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("shopper_id", shopperID),
		slog.String("item_id", input.ID),
		slog.String("kind", input.Kind),
		slog.Int("quantity", input.Quantity),
	)

	return cart, nil
}

// UpdateQuantity sets the quantity of a cart line. A quantity below 1 removes
// the line instead.
func (s *CartService) UpdateQuantity(ctx context.Context, shopperID, itemID string, quantity int) (*domain.Cart, error) {
	if shopperID == "" {
		return nil, apperrors.Validation("shopper id is required")
	}
	if itemID == "" {
		return nil, apperrors.Validation("item id is required")
	}
	if quantity < 1 {
		return s.RemoveItem(ctx, shopperID, itemID)
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.Validation(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	cart := s.loadCart(ctx, shopperID)

	idx := cart.FindItemIndex(itemID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart item", itemID)
	}
	cart.Items[idx].Quantity = quantity

	s.persistCart(ctx, cart)
	s.notifyUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("shopper_id", shopperID),
		slog.String("item_id", itemID),
		slog.Int("quantity", quantity),
	)

	return cart, nil
}

// RemoveItem removes a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, shopperID, itemID string) (*domain.Cart, error) {
	if shopperID == "" {
		return nil, apperrors.Validation("shopper id is required")
	}
	if itemID == "" {
		return nil, apperrors.Validation("item id is required")
	}

	cart := s.loadCart(ctx, shopperID)

	idx := cart.FindItemIndex(itemID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart item", itemID)
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	s.persistCart(ctx, cart)
	s.notifyUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("shopper_id", shopperID),
		slog.String("item_id", itemID),
	)

	return cart, nil
}

// ClearCart removes all items from the shopper's cart.
func (s *CartService) ClearCart(ctx context.Context, shopperID string) error {
	if shopperID == "" {
		return apperrors.Validation("shopper id is required")
	}

	if err := s.repo.Delete(ctx, shopperID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete stored cart",
			slog.String("shopper_id", shopperID),
			slog.String("error", err.Error()),
		)
	}

	s.bus.Publish(event.CartChange{ShopperID: shopperID, Cleared: true})

	if err := s.producer.PublishCartCleared(ctx, shopperID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("shopper_id", shopperID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("shopper_id", shopperID),
	)

	return nil
}

// loadCart reads the stored cart, degrading to an empty cart on any read or
// parse failure.
func (s *CartService) loadCart(ctx context.Context, shopperID string) *domain.Cart {
	cart, err := s.repo.Get(ctx, shopperID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "stored cart unreadable, starting empty",
				slog.String("shopper_id", shopperID),
				slog.String("error", err.Error()),
			)
		}
		return s.newEmptyCart(shopperID)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return cart
}

// persistCart writes the cart through to the store. A write failure is
// warn-only; the in-memory cart stays authoritative for this request.
func (s *CartService) persistCart(ctx context.Context, cart *domain.Cart) {
	cart.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, cart); err != nil {
		s.logger.WarnContext(ctx, "failed to persist cart",
			slog.String("shopper_id", cart.ShopperID),
			slog.String("error", err.Error()),
		)
	}
}

// notifyUpdated publishes the change on the in-process bus and to Kafka.
func (s *CartService) notifyUpdated(ctx context.Context, cart *domain.Cart) {
	s.bus.Publish(event.CartChange{
		ShopperID: cart.ShopperID,
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
	})

	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("shopper_id", cart.ShopperID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *CartService) newEmptyCart(shopperID string) *domain.Cart {
	return &domain.Cart{
		ShopperID: shopperID,
		Items:     []domain.CartItem{},
		UpdatedAt: time.Now().UTC(),
	}
}
