package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cncideas/storefront/internal/domain"
	apperrors "github.com/cncideas/storefront/pkg/errors"
)

func setupTestRedis(t *testing.T) (*CartRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := NewCartRepository(client, 24*time.Hour)
	return repo, mr
}

func sampleCart() *domain.Cart {
	img := "https://img.example.com/fresa.jpg"
	return &domain.Cart{
		ShopperID: "shopper-001",
		Items: []domain.CartItem{
			{
				ID:        "prod-1",
				Name:      "Fresa 6mm",
				UnitPrice: 1990,
				ImageRef:  &img,
				Quantity:  2,
				Kind:      domain.ItemKindProduct,
			},
		},
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

// ---------------------------------------------------------------------------
// Get
// ---------------------------------------------------------------------------

func TestCartRepository_Get_Success(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	data, err := json.Marshal(cart)
	require.NoError(t, err)

	require.NoError(t, mr.Set("cart:"+cart.ShopperID, string(data)))

	got, err := repo.Get(context.Background(), cart.ShopperID)
	require.NoError(t, err)
	assert.Equal(t, cart.ShopperID, got.ShopperID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "prod-1", got.Items[0].ID)
	assert.Equal(t, int64(1990), got.Items[0].UnitPrice)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, domain.ItemKindProduct, got.Items[0].Kind)
}

func TestCartRepository_Get_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t)

	got, err := repo.Get(context.Background(), "nonexistent-shopper")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_Get_InvalidJSON(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, mr.Set("cart:shopper-bad", "{{not-valid-json"))

	got, err := repo.Get(context.Background(), "shopper-bad")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal cart")
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

func TestCartRepository_Save_RoundTrip(t *testing.T) {
	repo, _ := setupTestRedis(t)
	cart := sampleCart()

	require.NoError(t, repo.Save(context.Background(), cart))

	got, err := repo.Get(context.Background(), cart.ShopperID)
	require.NoError(t, err)
	assert.Equal(t, cart.Items, got.Items)
}

func TestCartRepository_Save_SetsTTL(t *testing.T) {
	repo, mr := setupTestRedis(t)
	cart := sampleCart()

	require.NoError(t, repo.Save(context.Background(), cart))

	ttl := mr.TTL("cart:" + cart.ShopperID)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestCartRepository_Save_LastWriteWins(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	first := sampleCart()
	require.NoError(t, repo.Save(ctx, first))

	second := sampleCart()
	second.Items[0].Quantity = 9
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.Get(ctx, first.ShopperID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Items[0].Quantity)
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestCartRepository_Delete(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()
	cart := sampleCart()

	require.NoError(t, repo.Save(ctx, cart))
	require.NoError(t, repo.Delete(ctx, cart.ShopperID))

	_, err := repo.Get(ctx, cart.ShopperID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_Delete_AbsentKeyIsNoop(t *testing.T) {
	repo, _ := setupTestRedis(t)
	assert.NoError(t, repo.Delete(context.Background(), "nobody"))
}
