package services_test

import (
	"context"
	"testing"

	"github.com/Kariqs/storefront-api/models"
	"github.com/Kariqs/storefront-api/services"
	"github.com/Kariqs/storefront-api/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItem_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	p := storetest.SeedProduct(t, f.store, "shea butter", 1000)

	_, err := f.carts.AddItem(context.Background(), 1, p.ID, 0)
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = f.carts.AddItem(context.Background(), 1, 0, 1)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestAddItem_QuantityIsCapped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := storetest.SeedProduct(t, f.store, "shea butter", 1000)

	_, err := f.carts.AddItem(ctx, 1, p.ID, 1<<60)
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = f.carts.AddItem(ctx, 1, p.ID, models.MaxLineQuantity)
	require.NoError(t, err)

	// merging one more unit would pass the cap; the line keeps its quantity
	_, err = f.carts.AddItem(ctx, 1, p.ID, 1)
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	cart, err := f.carts.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []line{{p.ID, models.MaxLineQuantity}}, lineSet(cart))
}

func TestAddItem_DeletedProductIsUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := storetest.SeedProduct(t, f.store, "black soap", 700)
	require.NoError(t, f.store.DeleteProduct(ctx, p.ID))

	_, err := f.carts.AddItem(ctx, 1, p.ID, 1)
	assert.ErrorIs(t, err, services.ErrProductUnavailable)
}

func TestAddItem_SameProductTwiceMergesQuantities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := storetest.SeedProduct(t, f.store, "argan oil", 1250)

	_, err := f.carts.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)
	cart, err := f.carts.AddItem(ctx, 1, p.ID, 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, models.Money(1250), cart.Items[0].UnitPrice)
	require.NotNil(t, cart.Items[0].Product)
	assert.Equal(t, "argan oil", cart.Items[0].Product.Name)
}

func TestRemoveItem_AbsentProductReturnsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := storetest.SeedProduct(t, f.store, "toner", 900)
	p2 := storetest.SeedProduct(t, f.store, "serum", 1900)
	_, err := f.carts.AddItem(ctx, 1, p1.ID, 1)
	require.NoError(t, err)

	cart, removed, err := f.carts.RemoveItem(ctx, 1, p2.ID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, cart.Items, 1)

	cart, removed, err = f.carts.RemoveItem(ctx, 1, p1.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, cart.Items)
}

func TestClear_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := storetest.SeedProduct(t, f.store, "lip balm", 300)
	_, err := f.carts.AddItem(ctx, 1, p.ID, 4)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		cart, err := f.carts.Clear(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	}

	// a user that never had a cart can clear too
	cart, err := f.carts.Clear(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestClearThenReAdd_ReproducesItemSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	products := []*models.Product{
		storetest.SeedProduct(t, f.store, "a", 100),
		storetest.SeedProduct(t, f.store, "b", 200),
		storetest.SeedProduct(t, f.store, "c", 300),
	}
	for i, p := range products {
		_, err := f.carts.AddItem(ctx, 1, p.ID, i+1)
		require.NoError(t, err)
	}
	before, err := f.carts.GetOrCreate(ctx, 1)
	require.NoError(t, err)

	_, err = f.carts.Clear(ctx, 1)
	require.NoError(t, err)
	for i := len(before.Items) - 1; i >= 0; i-- {
		item := before.Items[i]
		_, err := f.carts.AddItem(ctx, 1, item.ProductID, item.Quantity)
		require.NoError(t, err)
	}
	after, err := f.carts.GetOrCreate(ctx, 1)
	require.NoError(t, err)

	assert.ElementsMatch(t, lineSet(before), lineSet(after))
}

func TestBulkReplace_ReplacesAndMerges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := storetest.SeedProduct(t, f.store, "mask", 1100)
	p2 := storetest.SeedProduct(t, f.store, "scrub", 1300)
	_, err := f.carts.AddItem(ctx, 1, p1.ID, 9)
	require.NoError(t, err)

	cart, err := f.carts.BulkReplace(ctx, 1, []services.CartLine{
		{ProductID: p2.ID, Quantity: 1},
		{ProductID: p1.ID, Quantity: 2},
		{ProductID: p2.ID, Quantity: 2},
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []line{{p2.ID, 3}, {p1.ID, 2}}, lineSet(cart))
}

func TestBulkReplace_UnavailableProductLeavesCartUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := storetest.SeedProduct(t, f.store, "mask", 1100)
	p2 := storetest.SeedProduct(t, f.store, "scrub", 1300)
	_, err := f.carts.AddItem(ctx, 1, p1.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.store.DeleteProduct(ctx, p2.ID))

	_, err = f.carts.BulkReplace(ctx, 1, []services.CartLine{{ProductID: p2.ID, Quantity: 1}})
	require.ErrorIs(t, err, services.ErrProductUnavailable)

	cart, err := f.carts.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []line{{p1.ID, 1}}, lineSet(cart))
}

func TestBulkReplace_MergedQuantityIsCapped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := storetest.SeedProduct(t, f.store, "mask", 1100)
	_, err := f.carts.AddItem(ctx, 1, p.ID, 1)
	require.NoError(t, err)

	_, err = f.carts.BulkReplace(ctx, 1, []services.CartLine{
		{ProductID: p.ID, Quantity: models.MaxLineQuantity},
		{ProductID: p.ID, Quantity: 1},
	})
	require.ErrorIs(t, err, services.ErrInvalidInput)

	cart, err := f.carts.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []line{{p.ID, 1}}, lineSet(cart))
}

type line struct {
	productID uint
	quantity  int
}

func lineSet(cart *models.Cart) []line {
	out := make([]line, 0, len(cart.Items))
	for _, item := range cart.Items {
		out = append(out, line{item.ProductID, item.Quantity})
	}
	return out
}
