package services

import (
	"context"

	"github.com/Kariqs/storefront-api/models"
	"github.com/Kariqs/storefront-api/store"
)

// PaymentDetails are the comparable checkout fields. A nil field matches any stored
// value, so a checkout that omits optional details can still reuse an older record.
type PaymentDetails struct {
	FullName      *string
	Email         *string
	Phone         *string
	Address       *string
	City          *string
	PaymentMethod *models.PaymentMethodLabel
}

type paymentField struct {
	name    string
	matches func(d PaymentDetails, m *models.PaymentMethod) bool
}

func textField(name string, want func(PaymentDetails) *string, have func(*models.PaymentMethod) string) paymentField {
	return paymentField{
		name: name,
		matches: func(d PaymentDetails, m *models.PaymentMethod) bool {
			w := want(d)
			return w == nil || *w == have(m)
		},
	}
}

var paymentFields = []paymentField{
	textField("fullName",
		func(d PaymentDetails) *string { return d.FullName },
		func(m *models.PaymentMethod) string { return m.FullName }),
	textField("email",
		func(d PaymentDetails) *string { return d.Email },
		func(m *models.PaymentMethod) string { return m.Email }),
	textField("phone",
		func(d PaymentDetails) *string { return d.Phone },
		func(m *models.PaymentMethod) string { return m.Phone }),
	textField("address",
		func(d PaymentDetails) *string { return d.Address },
		func(m *models.PaymentMethod) string { return m.Address }),
	textField("city",
		func(d PaymentDetails) *string { return d.City },
		func(m *models.PaymentMethod) string { return m.City }),
	{
		name: "paymentMethod",
		matches: func(d PaymentDetails, m *models.PaymentMethod) bool {
			return d.PaymentMethod == nil || *d.PaymentMethod == m.Method
		},
	},
}

// MatchesPaymentMethod reports whether every non-nil field of d equals the stored one.
func MatchesPaymentMethod(d PaymentDetails, m *models.PaymentMethod) bool {
	for _, f := range paymentFields {
		if !f.matches(d, m) {
			return false
		}
	}
	return true
}

// PaymentMethodMatcher deduplicates payment methods per user. It is a convenience, not
// a trust boundary: matching is plain field equality.
type PaymentMethodMatcher struct {
	methods  PaymentMethodRepository
	provider string
}

func NewPaymentMethodMatcher(methods PaymentMethodRepository) *PaymentMethodMatcher {
	return &PaymentMethodMatcher{methods: methods, provider: models.DefaultPaymentProvider}
}

// Resolve returns the first of the user's payment methods matching details, or creates
// one. Stored records are never modified. A nil userID (guest) always creates an
// ownerless record.
func (m *PaymentMethodMatcher) Resolve(ctx context.Context, uow *store.UnitOfWork, userID *uint, details PaymentDetails) (method *models.PaymentMethod, created bool, err error) {
	if userID != nil {
		candidates, err := m.methods.ListPaymentMethodsByUser(ctx, uow, *userID)
		if err != nil {
			return nil, false, err
		}
		for i := range candidates {
			if MatchesPaymentMethod(details, &candidates[i]) {
				return &candidates[i], false, nil
			}
		}
	}

	method = &models.PaymentMethod{
		UserID:   userID,
		FullName: deref(details.FullName),
		Email:    deref(details.Email),
		Phone:    deref(details.Phone),
		Address:  deref(details.Address),
		City:     deref(details.City),
		Provider: m.provider,
	}
	if details.PaymentMethod != nil {
		method.Method = *details.PaymentMethod
	}
	if err := m.methods.CreatePaymentMethod(ctx, uow, method); err != nil {
		return nil, false, err
	}
	return method, true, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
