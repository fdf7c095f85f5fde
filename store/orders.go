package store

import (
	"context"
	"fmt"

	"github.com/Kariqs/storefront-api/models"
	"gorm.io/gorm"
)

func orderDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("PaymentMethod")
}

// CreateOrder inserts the order with its items. The payment method is referenced by id
// only and never written through the association.
func (s *Store) CreateOrder(ctx context.Context, uow *UnitOfWork, order *models.Order) error {
	if err := s.conn(ctx, uow).Omit("PaymentMethod").Create(order).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (s *Store) FindOrder(ctx context.Context, uow *UnitOfWork, id uint) (*models.Order, error) {
	var order models.Order
	if err := orderDetails(s.conn(ctx, uow)).First(&order, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := orderDetails(s.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders for user %d: %w", userID, err)
	}
	return orders, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := orderDetails(s.db.WithContext(ctx)).Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus moves the order from one status to another only if it is still in
// from. It reports false when the order was changed concurrently or does not exist.
func (s *Store) UpdateOrderStatus(ctx context.Context, uow *UnitOfWork, id uint, from, to models.OrderStatus) (bool, error) {
	res := s.conn(ctx, uow).Model(&models.Order{}).
		Where("id = ? AND order_status = ?", id, from).
		Update("order_status", to)
	if res.Error != nil {
		return false, fmt.Errorf("update order %d status: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) SetPaymentReference(ctx context.Context, uow *UnitOfWork, id uint, reference string) error {
	res := s.conn(ctx, uow).Model(&models.Order{}).Where("id = ?", id).Update("payment_reference", reference)
	if res.Error != nil {
		return fmt.Errorf("set order %d payment reference: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
