package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cncideas/storefront/internal/domain"
	"github.com/cncideas/storefront/internal/event"
	apperrors "github.com/cncideas/storefront/pkg/errors"
)

// ============================================================
// Mocks
// ============================================================

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, shopperID string) (*domain.Cart, error) {
	args := m.Called(ctx, shopperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepository) Delete(ctx context.Context, shopperID string) error {
	args := m.Called(ctx, shopperID)
	return args.Error(0)
}

type mockCartPublisher struct {
	mock.Mock
}

func (m *mockCartPublisher) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartPublisher) PublishCartCleared(ctx context.Context, shopperID string) error {
	args := m.Called(ctx, shopperID)
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newCartTestService(repo *mockCartRepository, pub *mockCartPublisher) *CartService {
	return NewCartService(repo, pub, event.NewBus(), newTestLogger())
}

func storedCart(shopperID string, items ...domain.CartItem) *domain.Cart {
	if items == nil {
		items = []domain.CartItem{}
	}
	return &domain.Cart{
		ShopperID: shopperID,
		Items:     items,
		UpdatedAt: time.Now().UTC(),
	}
}

func productLine(id string, qty int, price int64) domain.CartItem {
	return domain.CartItem{
		ID:        id,
		Name:      "Spindle Mount " + id,
		UnitPrice: price,
		Quantity:  qty,
		Kind:      domain.ItemKindProduct,
	}
}

func planoLine(id string) domain.CartItem {
	return domain.CartItem{
		ID:        id,
		Name:      "Plano " + id,
		UnitPrice: 1500,
		Quantity:  1,
		Kind:      domain.ItemKindPlano,
	}
}

// ============================================================
// GetCart
// ============================================================

func TestGetCart_ReturnsStoredCart(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	stored := storedCart("shopper-1", productLine("p1", 2, 1000))
	repo.On("Get", mock.Anything, "shopper-1").Return(stored, nil)

	cart, err := svc.GetCart(context.Background(), "shopper-1")

	require.NoError(t, err)
	assert.Equal(t, "shopper-1", cart.ShopperID)
	assert.Len(t, cart.Items, 1)
	repo.AssertExpectations(t)
}

func TestGetCart_AbsentCartDegradesToEmpty(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	repo.On("Get", mock.Anything, "shopper-1").Return(nil, apperrors.NotFound("cart", "shopper-1"))

	cart, err := svc.GetCart(context.Background(), "shopper-1")

	require.NoError(t, err)
	assert.Equal(t, "shopper-1", cart.ShopperID)
	assert.Empty(t, cart.Items)
}

func TestGetCart_UnreadableCartDegradesToEmpty(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	repo.On("Get", mock.Anything, "shopper-1").Return(nil, errors.New("unmarshal cart: unexpected end of JSON input"))

	cart, err := svc.GetCart(context.Background(), "shopper-1")

	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestGetCart_RequiresShopperID(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	_, err := svc.GetCart(context.Background(), "")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

// ============================================================
// AddItem
// ============================================================

func TestAddItem_AppendsNewLine(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	repo.On("Get", mock.Anything, "shopper-1").Return(storedCart("shopper-1"), nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishCartUpdated", mock.Anything, mock.Anything).Return(nil)

	cart, err := svc.AddItem(context.Background(), "shopper-1", AddItemInput{
		ID:        "p1",
		Name:      "Spindle Mount",
		UnitPrice: 1000,
		Quantity:  2,
		Kind:      domain.ItemKindProduct,
	})

	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, int64(2000), cart.Subtotal())
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestAddItem_MergesExistingProductByID(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	repo.On("Get", mock.Anything, "shopper-1").
		Return(storedCart("shopper-1", productLine("p1", 1, 1000)), nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishCartUpdated", mock.Anything, mock.Anything).Return(nil)

	cart, err := svc.AddItem(context.Background(), "shopper-1", AddItemInput{
		ID:        "p1",
		Name:      "Spindle Mount p1",
		UnitPrice: 1000,
		Quantity:  2,
		Kind:      domain.ItemKindProduct,
	})

	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, int64(3000), cart.Subtotal())
}

func TestAddItem_PlanoReAddRejectedCartUnchanged(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	repo.On("Get", mock.Anything, "shopper-1").
		Return(storedCart("shopper-1", planoLine("d1")), nil)

	_, err := svc.AddItem(context.Background(), "shopper-1", AddItemInput{
		ID:        "d1",
		Name:      "Plano d1",
		UnitPrice: 1500,
		Quantity:  1,
		Kind:      domain.ItemKindPlano,
	})

	assert.ErrorIs(t, err, apperrors.ErrDuplicateItem)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishCartUpdated", mock.Anything, mock.Anything)
}

func TestAddItem_SaveFailureStillReturnsCart(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	repo.On("Get", mock.Anything, "shopper-1").Return(storedCart("shopper-1"), nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("redis: connection refused"))
	pub.On("PublishCartUpdated", mock.Anything, mock.Anything).Return(nil)

	cart, err := svc.AddItem(context.Background(), "shopper-1", AddItemInput{
		ID:        "p1",
		Name:      "Spindle Mount",
		UnitPrice: 1000,
		Quantity:  1,
		Kind:      domain.ItemKindProduct,
	})

	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestAddItem_PublishFailureStillReturnsCart(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	repo.On("Get", mock.Anything, "shopper-1").Return(storedCart("shopper-1"), nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishCartUpdated", mock.Anything, mock.Anything).Return(errors.New("kafka: broker unreachable"))

	cart, err := svc.AddItem(context.Background(), "shopper-1", AddItemInput{
		ID:        "p1",
		Name:      "Spindle Mount",
		UnitPrice: 1000,
		Quantity:  1,
		Kind:      domain.ItemKindProduct,
	})

	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestAddItem_ValidatesInput(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	tests := []struct {
		name  string
		input AddItemInput
	}{
		{
			name:  "missing id",
			input: AddItemInput{Name: "x", Quantity: 1, Kind: domain.ItemKindProduct},
		},
		{
			name:  "zero quantity",
			input: AddItemInput{ID: "p1", Name: "x", Quantity: 0, Kind: domain.ItemKindProduct},
		},
		{
			name:  "negative quantity",
			input: AddItemInput{ID: "p1", Name: "x", Quantity: -2, Kind: domain.ItemKindProduct},
		},
		{
			name:  "unknown kind",
			input: AddItemInput{ID: "p1", Name: "x", Quantity: 1, Kind: "bundle"},
		},
		{
			name:  "negative price",
			input: AddItemInput{ID: "p1", Name: "x", UnitPrice: -5, Quantity: 1, Kind: domain.ItemKindProduct},
		},
		{
			name:  "quantity over limit",
			input: AddItemInput{ID: "p1", Name: "x", Quantity: MaxQuantityPerItem + 1, Kind: domain.ItemKindProduct},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddItem(context.Background(), "shopper-1", tt.input)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// ============================================================
// UpdateQuantity
// ============================================================

func TestUpdateQuantity_SetsNewQuantity(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	repo.On("Get", mock.Anything, "shopper-1").
		Return(storedCart("shopper-1", productLine("p1", 2, 1000)), nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishCartUpdated", mock.Anything, mock.Anything).Return(nil)

	cart, err := svc.UpdateQuantity(context.Background(), "shopper-1", "p1", 5)

	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	repo.On("Get", mock.Anything, "shopper-1").
		Return(storedCart("shopper-1", productLine("p1", 2, 1000)), nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishCartUpdated", mock.Anything, mock.Anything).Return(nil)

	cart, err := svc.UpdateQuantity(context.Background(), "shopper-1", "p1", 0)

	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestUpdateQuantity_NegativeRemovesLine(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	repo.On("Get", mock.Anything, "shopper-1").
		Return(storedCart("shopper-1", productLine("p1", 2, 1000)), nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishCartUpdated", mock.Anything, mock.Anything).Return(nil)

	cart, err := svc.UpdateQuantity(context.Background(), "shopper-1", "p1", -3)

	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestUpdateQuantity_MissingLine(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	repo.On("Get", mock.Anything, "shopper-1").Return(storedCart("shopper-1"), nil)

	_, err := svc.UpdateQuantity(context.Background(), "shopper-1", "missing", 2)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ============================================================
// RemoveItem
// ============================================================

func TestRemoveItem_RemovesLine(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	repo.On("Get", mock.Anything, "shopper-1").
		Return(storedCart("shopper-1", productLine("p1", 2, 1000), planoLine("d1")), nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishCartUpdated", mock.Anything, mock.Anything).Return(nil)

	cart, err := svc.RemoveItem(context.Background(), "shopper-1", "p1")

	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "d1", cart.Items[0].ID)
}

func TestRemoveItem_MissingLine(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	repo.On("Get", mock.Anything, "shopper-1").Return(storedCart("shopper-1"), nil)

	_, err := svc.RemoveItem(context.Background(), "shopper-1", "p1")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ============================================================
// ClearCart
// ============================================================

func TestClearCart_DeletesAndPublishes(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	repo.On("Delete", mock.Anything, "shopper-1").Return(nil)
	pub.On("PublishCartCleared", mock.Anything, "shopper-1").Return(nil)

	err := svc.ClearCart(context.Background(), "shopper-1")

	require.NoError(t, err)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestClearCart_DeleteFailureIsWarnOnly(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	svc := newCartTestService(repo, pub)

	repo.On("Delete", mock.Anything, "shopper-1").Return(errors.New("redis: connection refused"))
	pub.On("PublishCartCleared", mock.Anything, "shopper-1").Return(nil)

	err := svc.ClearCart(context.Background(), "shopper-1")

	assert.NoError(t, err)
}

func TestCartMutations_NotifyBusSubscribers(t *testing.T) {
	repo := new(mockCartRepository)
	pub := new(mockCartPublisher)
	bus := event.NewBus()
	svc := NewCartService(repo, pub, bus, newTestLogger())

	changes, cancel := bus.Subscribe()
	defer cancel()

	repo.On("Get", mock.Anything, "shopper-1").Return(storedCart("shopper-1"), nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishCartUpdated", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.AddItem(context.Background(), "shopper-1", AddItemInput{
		ID:        "p1",
		Name:      "Spindle Mount",
		UnitPrice: 1000,
		Quantity:  2,
		Kind:      domain.ItemKindProduct,
	})
	require.NoError(t, err)

	select {
	case change := <-changes:
		assert.Equal(t, "shopper-1", change.ShopperID)
		assert.Equal(t, 2, change.ItemCount)
		assert.Equal(t, int64(2000), change.Subtotal)
		assert.False(t, change.Cleared)
	case <-time.After(time.Second):
		t.Fatal("expected a cart change on the bus")
	}
}
