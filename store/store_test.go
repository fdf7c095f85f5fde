package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Kariqs/storefront-api/models"
	"github.com/Kariqs/storefront-api/store"
	"github.com/Kariqs/storefront-api/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureCart_CreatesOncePerUser(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]uint, 8)
	errs := make([]error, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cart, err := s.EnsureCart(ctx, nil, 42)
			errs[i] = err
			if err == nil {
				ids[i] = cart.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, int64(1), storetest.Count(t, s, &models.Cart{}))
}

func TestAddCartItem_IncrementsExistingLine(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	p := storetest.SeedProduct(t, s, "soap", 1000)

	cart, err := s.EnsureCart(ctx, nil, 1)
	require.NoError(t, err)

	require.NoError(t, s.AddCartItem(ctx, nil, cart.ID, p.ID, 2, 1000))
	require.NoError(t, s.AddCartItem(ctx, nil, cart.ID, p.ID, 3, 1200))

	cart, err = s.FindCart(ctx, nil, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, models.Money(1000), cart.Items[0].UnitPrice, "first captured price is kept")
	require.NotNil(t, cart.Items[0].Product)
	assert.Equal(t, "soap", cart.Items[0].Product.Name)
}

func TestAddCartItem_ConcurrentIncrementsAreNotLost(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	p := storetest.SeedProduct(t, s, "oil", 500)
	cart, err := s.EnsureCart(ctx, nil, 7)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.AddCartItem(ctx, nil, cart.ID, p.ID, 1, 500))
		}()
	}
	wg.Wait()

	cart, err = s.FindCart(ctx, nil, 7)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 10, cart.Items[0].Quantity)
}

func TestRemoveCartItem_ReportsAbsence(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	p := storetest.SeedProduct(t, s, "gift set", 2500)
	cart, err := s.EnsureCart(ctx, nil, 3)
	require.NoError(t, err)
	require.NoError(t, s.AddCartItem(ctx, nil, cart.ID, p.ID, 1, 2500))

	removed, err := s.RemoveCartItem(ctx, nil, cart.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.RemoveCartItem(ctx, nil, cart.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestTransaction_AbortDiscardsWrites(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	p := storetest.SeedProduct(t, s, "cleanser", 800)
	cart, err := s.EnsureCart(ctx, nil, 9)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.Transaction(ctx, func(uow *store.UnitOfWork) error {
		if err := s.AddCartItem(ctx, uow, cart.ID, p.ID, 4, 800); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	cart, err = s.FindCart(ctx, nil, 9)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestUnitOfWork_AbortAfterCommitIsNoop(t *testing.T) {
	s := storetest.New(t)
	uow, err := s.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, uow.Commit())
	assert.NoError(t, uow.Abort())
	assert.ErrorIs(t, uow.Commit(), store.ErrUnitFinished)
}

func TestUpdateOrderStatus_ComparesCurrentStatus(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	p := storetest.SeedProduct(t, s, "hair mask", 1500)

	method := &models.PaymentMethod{FullName: "Ama", Method: models.CashOnDelivery}
	require.NoError(t, s.CreatePaymentMethod(ctx, nil, method))
	order := &models.Order{
		Items:           []models.OrderItem{{ProductID: p.ID, Quantity: 1, PriceAtPurchase: 1500}},
		Total:           1500,
		PaymentStatus:   models.PaymentPending,
		OrderStatus:     models.OrderPending,
		PaymentMethodID: method.ID,
	}
	require.NoError(t, s.CreateOrder(ctx, nil, order))

	ok, err := s.UpdateOrderStatus(ctx, nil, order.ID, models.OrderProcessing, models.OrderShipped)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.UpdateOrderStatus(ctx, nil, order.ID, models.OrderPending, models.OrderShipped)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.FindOrder(ctx, nil, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, got.OrderStatus)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.PaymentMethod)
	assert.Equal(t, "Ama", got.PaymentMethod.FullName)
}

func TestFindProduct_DeletedIsNotFound(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	p := storetest.SeedProduct(t, s, "candle", 300)

	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	_, err := s.FindProduct(ctx, nil, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteProduct(ctx, p.ID), store.ErrNotFound)
}

func TestActivateUser_ConsumesToken(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	u := &models.User{FullName: "Kofi", Email: "kofi@example.com", Password: "x", ActivationTokenHash: "digest"}
	require.NoError(t, s.CreateUser(ctx, u))

	assert.ErrorIs(t, s.ActivateUser(ctx, ""), store.ErrNotFound)
	require.NoError(t, s.ActivateUser(ctx, "digest"))
	assert.ErrorIs(t, s.ActivateUser(ctx, "digest"), store.ErrNotFound)

	got, err := s.FindUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.Verified)
	assert.Empty(t, got.ActivationTokenHash)
}

func TestResetPassword_HonoursExpiry(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	u := storetest.SeedUser(t, s, "ama@example.com", models.RoleUser)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.SetPasswordResetToken(ctx, u.ID, "digest", now.Add(time.Hour)))
	assert.ErrorIs(t, s.ResetPassword(ctx, "digest", "new-hash", now.Add(2*time.Hour)), store.ErrNotFound)
	assert.ErrorIs(t, s.ResetPassword(ctx, "other", "new-hash", now), store.ErrNotFound)

	require.NoError(t, s.ResetPassword(ctx, "digest", "new-hash", now))
	assert.ErrorIs(t, s.ResetPassword(ctx, "digest", "newer-hash", now), store.ErrNotFound)

	got, err := s.FindUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.Password)
	assert.Empty(t, got.ResetTokenHash)
	assert.Nil(t, got.ResetTokenExpiresAt)
}

func TestDeleteUser_DropsCartKeepsOrders(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	u := storetest.SeedUser(t, s, "yaw@example.com", models.RoleUser)
	p := storetest.SeedProduct(t, s, "soap", 500)
	cart, err := s.EnsureCart(ctx, nil, u.ID)
	require.NoError(t, err)
	require.NoError(t, s.AddCartItem(ctx, nil, cart.ID, p.ID, 2, 500))

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), store.ErrNotFound)

	_, err = s.FindUser(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.FindCart(ctx, nil, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Zero(t, storetest.Count(t, s, &models.CartItem{}))
}

func TestUpdateUser_AppliesChanges(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	u := storetest.SeedUser(t, s, "esi@example.com", models.RoleUser)

	got, err := s.UpdateUser(ctx, u.ID, map[string]any{"full_name": "Esi Owusu", "role": models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "Esi Owusu", got.FullName)
	assert.Equal(t, models.RoleAdmin, got.Role)

	_, err = s.UpdateUser(ctx, 9999, map[string]any{"phone": "1"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateProduct_KeepsCapturedCartPrice(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	p := storetest.SeedProduct(t, s, "toner", 900)
	cart, err := s.EnsureCart(ctx, nil, 4)
	require.NoError(t, err)
	require.NoError(t, s.AddCartItem(ctx, nil, cart.ID, p.ID, 1, p.Price))

	updated := &models.Product{Name: "rose toner", Price: 1200, Stock: 4, Category: "Skin"}
	updated.ID = p.ID
	require.NoError(t, s.UpdateProduct(ctx, updated))
	assert.Equal(t, "rose toner", updated.Name)
	assert.Equal(t, models.Money(1200), updated.Price)

	cart, err = s.FindCart(ctx, nil, 4)
	require.NoError(t, err)
	assert.Equal(t, models.Money(900), cart.Items[0].UnitPrice)

	missing := &models.Product{Name: "ghost", Price: 1}
	missing.ID = 9999
	assert.ErrorIs(t, s.UpdateProduct(ctx, missing), store.ErrNotFound)
}

func TestAddProductSpec(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	p := storetest.SeedProduct(t, s, "argan oil", 1250)

	require.NoError(t, s.AddProductSpec(ctx, &models.ProductSpec{ProductID: p.ID, Label: "Volume", Value: "50ml"}))
	require.NoError(t, s.AddProductSpec(ctx, &models.ProductSpec{ProductID: p.ID, Label: "Origin", Value: "Morocco"}))
	assert.ErrorIs(t, s.AddProductSpec(ctx, &models.ProductSpec{ProductID: 9999, Label: "x", Value: "y"}), store.ErrNotFound)

	got, err := s.FindProductDetails(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Specifications, 2)
	assert.Equal(t, "Volume", got.Specifications[0].Label)
	assert.Equal(t, "Morocco", got.Specifications[1].Value)
}
