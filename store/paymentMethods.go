package store

import (
	"context"
	"fmt"

	"github.com/Kariqs/storefront-api/models"
)

// ListPaymentMethodsByUser returns the user's payment methods, oldest first.
func (s *Store) ListPaymentMethodsByUser(ctx context.Context, uow *UnitOfWork, userID uint) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := s.conn(ctx, uow).Where("user_id = ?", userID).Order("id").Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("list payment methods for user %d: %w", userID, err)
	}
	return methods, nil
}

func (s *Store) CreatePaymentMethod(ctx context.Context, uow *UnitOfWork, method *models.PaymentMethod) error {
	if err := s.conn(ctx, uow).Create(method).Error; err != nil {
		return fmt.Errorf("create payment method: %w", err)
	}
	return nil
}
