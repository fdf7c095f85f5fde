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

func ptr[T any](v T) *T { return &v }

func storedMethod() *models.PaymentMethod {
	return &models.PaymentMethod{
		FullName: "Akosua Mensah",
		Email:    "akosua@example.com",
		Phone:    "0240000000",
		Address:  "12 Ring Road",
		City:     "Accra",
		Method:   models.MobileMoney,
	}
}

func TestMatchesPaymentMethod(t *testing.T) {
	tests := []struct {
		name    string
		details services.PaymentDetails
		want    bool
	}{
		{"no fields match anything", services.PaymentDetails{}, true},
		{"all fields equal", services.PaymentDetails{
			FullName:      ptr("Akosua Mensah"),
			Email:         ptr("akosua@example.com"),
			Phone:         ptr("0240000000"),
			Address:       ptr("12 Ring Road"),
			City:          ptr("Accra"),
			PaymentMethod: ptr(models.MobileMoney),
		}, true},
		{"nil fields are skipped", services.PaymentDetails{City: ptr("Accra")}, true},
		{"different city", services.PaymentDetails{City: ptr("Kumasi")}, false},
		{"different method", services.PaymentDetails{PaymentMethod: ptr(models.CashOnDelivery)}, false},
		{"empty string is compared", services.PaymentDetails{Phone: ptr("")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.MatchesPaymentMethod(tt.details, storedMethod()))
		})
	}
}

func TestResolve_ReusesOrCreates(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	matcher := services.NewPaymentMethodMatcher(s)
	userID := uint(7)
	details := checkoutDetails()
	pd := services.PaymentDetails{
		FullName:      &details.FullName,
		Email:         &details.Email,
		Phone:         &details.Phone,
		Address:       &details.Address,
		City:          &details.City,
		PaymentMethod: &details.PaymentMethod,
	}

	first, created, err := matcher.Resolve(ctx, nil, &userID, pd)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.DefaultPaymentProvider, first.Provider)

	again, created, err := matcher.Resolve(ctx, nil, &userID, pd)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	pd.City = ptr("Kumasi")
	moved, created, err := matcher.Resolve(ctx, nil, &userID, pd)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, moved.ID)

	// partial details reuse the oldest record that fits
	partial, created, err := matcher.Resolve(ctx, nil, &userID, services.PaymentDetails{Email: &details.Email})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, partial.ID)

	otherUser := uint(8)
	_, created, err = matcher.Resolve(ctx, nil, &otherUser, pd)
	require.NoError(t, err)
	assert.True(t, created, "methods are never shared between users")

	assert.Equal(t, int64(3), storetest.Count(t, s, &models.PaymentMethod{}))
}

func TestResolve_GuestAlwaysCreates(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	matcher := services.NewPaymentMethodMatcher(s)
	pd := services.PaymentDetails{Email: ptr("guest@example.com"), PaymentMethod: ptr(models.CashOnDelivery)}

	a, created, err := matcher.Resolve(ctx, nil, nil, pd)
	require.NoError(t, err)
	assert.True(t, created)
	b, created, err := matcher.Resolve(ctx, nil, nil, pd)
	require.NoError(t, err)
	assert.True(t, created)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Nil(t, a.UserID)
}
