package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Cart.Subtotal Tests
// ============================================================================

func TestSubtotal_SingleItem(t *testing.T) {
	c := &Cart{
		Items: []CartItem{
			{UnitPrice: 1999, Quantity: 2},
		},
	}
	assert.Equal(t, int64(3998), c.Subtotal())
}

func TestSubtotal_MultipleItems(t *testing.T) {
	c := &Cart{
		Items: []CartItem{
			{UnitPrice: 1000, Quantity: 2},
			{UnitPrice: 500, Quantity: 3},
			{UnitPrice: 2500, Quantity: 1},
		},
	}
	// 2000 + 1500 + 2500 = 6000
	assert.Equal(t, int64(6000), c.Subtotal())
}

func TestSubtotal_EmptyCart(t *testing.T) {
	c := &Cart{Items: []CartItem{}}
	assert.Equal(t, int64(0), c.Subtotal())
}

func TestSubtotal_NilItems(t *testing.T) {
	c := &Cart{}
	assert.Equal(t, int64(0), c.Subtotal())
}

// ============================================================================
// Cart.ItemCount Tests
// ============================================================================

func TestItemCount_MultipleItems(t *testing.T) {
	c := &Cart{
		Items: []CartItem{
			{Quantity: 2},
			{Quantity: 3},
			{Quantity: 1},
		},
	}
	assert.Equal(t, 6, c.ItemCount())
}

func TestItemCount_EmptyCart(t *testing.T) {
	c := &Cart{}
	assert.Equal(t, 0, c.ItemCount())
}

// ============================================================================
// Cart.FindItemIndex Tests
// ============================================================================

func TestFindItemIndex_Found(t *testing.T) {
	c := &Cart{
		Items: []CartItem{
			{ID: "p-1"},
			{ID: "p-2"},
			{ID: "pl-1"},
		},
	}
	assert.Equal(t, 1, c.FindItemIndex("p-2"))
	assert.Equal(t, 2, c.FindItemIndex("pl-1"))
}

func TestFindItemIndex_NotFound(t *testing.T) {
	c := &Cart{Items: []CartItem{{ID: "p-1"}}}
	assert.Equal(t, -1, c.FindItemIndex("missing"))
}

// ============================================================================
// CartItem Tests
// ============================================================================

func TestCartItem_Mergeable(t *testing.T) {
	assert.True(t, CartItem{Kind: ItemKindProduct}.Mergeable())
	assert.False(t, CartItem{Kind: ItemKindPlano}.Mergeable())
}

func TestCartItem_LineTotal(t *testing.T) {
	assert.Equal(t, int64(300), CartItem{UnitPrice: 100, Quantity: 3}.LineTotal())
}

func TestIsValidItemKind(t *testing.T) {
	assert.True(t, IsValidItemKind(ItemKindProduct))
	assert.True(t, IsValidItemKind(ItemKindPlano))
	assert.False(t, IsValidItemKind("subscription"))
	assert.False(t, IsValidItemKind(""))
}
