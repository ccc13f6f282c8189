package service

import (
	"context"
	"testing"

	"github.com/Deco-Team/efurniture-server/internal/apperror"
	"github.com/Deco-Team/efurniture-server/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItemCreatesCart(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 10)

	env.mustAddToCart(t, "cust1", "p1", "SKU-1", 2)

	cart, err := env.carts.GetCart(context.Background(), "cust1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "Oak Table p1", cart.Items[0].ProductName)
	assert.True(t, cart.TotalAmount.Equal(dec(200)), "total %s", cart.TotalAmount)
}

func TestAddItemMergesExistingLine(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 10)

	env.mustAddToCart(t, "cust1", "p1", "SKU-1", 2)
	env.mustAddToCart(t, "cust1", "p1", "SKU-1", 3)

	cart, err := env.carts.GetCart(context.Background(), "cust1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.True(t, cart.TotalAmount.Equal(dec(500)), "total %s", cart.TotalAmount)
}

func TestAddItemStockCeiling(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)

	err := env.carts.AddItem(context.Background(), "cust1", &dto.AddToCartRequest{
		ProductID: "p1", SKU: "SKU-1", Quantity: 6,
	})
	assert.ErrorIs(t, err, apperror.ErrNotEnoughStock)

	// the ceiling applies to the merged line quantity, not the increment
	env.mustAddToCart(t, "cust1", "p1", "SKU-1", 5)
	err = env.carts.AddItem(context.Background(), "cust1", &dto.AddToCartRequest{
		ProductID: "p1", SKU: "SKU-1", Quantity: 1,
	})
	assert.ErrorIs(t, err, apperror.ErrNotEnoughStock)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)

	err := env.carts.AddItem(context.Background(), "cust1", &dto.AddToCartRequest{
		ProductID: "p1", SKU: "SKU-1", Quantity: 0,
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestAddItemUnknownVariant(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)

	err := env.carts.AddItem(context.Background(), "cust1", &dto.AddToCartRequest{
		ProductID: "p1", SKU: "SKU-NOPE", Quantity: 1,
	})
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)
}

func TestGetCartLazilyCreatesEmptyCart(t *testing.T) {
	env := newTestEnv(t)

	cart, err := env.carts.GetCart(context.Background(), "cust1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.TotalAmount.IsZero())
}

func TestUpdateItemQuantityAdjustsTotal(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 10)
	env.mustAddToCart(t, "cust1", "p1", "SKU-1", 2)

	require.NoError(t, env.carts.UpdateItemQuantity(context.Background(), "cust1", &dto.UpdateCartItemRequest{
		ProductID: "p1", SKU: "SKU-1", Quantity: 5,
	}))

	cart, err := env.carts.GetCart(context.Background(), "cust1")
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.True(t, cart.TotalAmount.Equal(dec(500)), "total %s", cart.TotalAmount)

	require.NoError(t, env.carts.UpdateItemQuantity(context.Background(), "cust1", &dto.UpdateCartItemRequest{
		ProductID: "p1", SKU: "SKU-1", Quantity: 1,
	}))

	cart, err = env.carts.GetCart(context.Background(), "cust1")
	require.NoError(t, err)
	assert.True(t, cart.TotalAmount.Equal(dec(100)), "total %s", cart.TotalAmount)
}

func TestUpdateItemQuantityOverStock(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)
	env.mustAddToCart(t, "cust1", "p1", "SKU-1", 2)

	err := env.carts.UpdateItemQuantity(context.Background(), "cust1", &dto.UpdateCartItemRequest{
		ProductID: "p1", SKU: "SKU-1", Quantity: 6,
	})
	assert.ErrorIs(t, err, apperror.ErrNotEnoughStock)
}

func TestUpdateMissingLine(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 5)
	env.seedProduct(t, "p2", "SKU-2", 50, 5)
	env.mustAddToCart(t, "cust1", "p1", "SKU-1", 1)

	err := env.carts.UpdateItemQuantity(context.Background(), "cust1", &dto.UpdateCartItemRequest{
		ProductID: "p2", SKU: "SKU-2", Quantity: 1,
	})
	assert.ErrorIs(t, err, apperror.ErrCartItemInvalid)
}

// Removing a line must bring the incremental total back to exactly the sum of
// the remaining lines.
func TestRemoveItemRoundTripsTotal(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 10)
	env.seedProduct(t, "p2", "SKU-2", 35, 10)
	env.mustAddToCart(t, "cust1", "p1", "SKU-1", 2)
	env.mustAddToCart(t, "cust1", "p2", "SKU-2", 3)

	require.NoError(t, env.carts.RemoveItem(context.Background(), "cust1", &dto.RemoveCartItemRequest{
		ProductID: "p1", SKU: "SKU-1",
	}))

	cart, err := env.carts.GetCart(context.Background(), "cust1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p2", cart.Items[0].ProductID)
	assert.True(t, cart.TotalAmount.Equal(dec(105)), "total %s", cart.TotalAmount)
}

func TestRemoveItemFromEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "SKU-1", 100, 10)

	err := env.carts.RemoveItem(context.Background(), "cust1", &dto.RemoveCartItemRequest{
		ProductID: "p1", SKU: "SKU-1",
	})
	assert.ErrorIs(t, err, apperror.ErrCartEmpty)
}
