package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kariqs/storefront-api/models"
	"github.com/Kariqs/storefront-api/store"
)

// OrderQueryService reads orders on behalf of a requester and applies admin status
// changes.
type OrderQueryService struct {
	orders OrderRepository
}

func NewOrderQueryService(orders OrderRepository) *OrderQueryService {
	return &OrderQueryService{orders: orders}
}

// GetByID returns the order when the requester owns it or is an admin.
func (s *OrderQueryService) GetByID(ctx context.Context, orderID uint, requester Identity) (*models.Order, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin() && !order.OwnedBy(requester.UserID) {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListMine returns the user's orders, newest first.
func (s *OrderQueryService) ListMine(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.orders.ListOrdersByUser(ctx, userID)
}

// ListAll returns every order, newest first. Admins only.
func (s *OrderQueryService) ListAll(ctx context.Context, requester Identity) ([]models.Order, error) {
	if !requester.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.orders.ListOrders(ctx)
}

// UpdateStatus moves an order to newStatus. Admins only; the move must be allowed by
// models.OrderStatus.CanTransitionTo.
func (s *OrderQueryService) UpdateStatus(ctx context.Context, orderID uint, newStatus string, requester Identity) (*models.Order, error) {
	if !requester.IsAdmin() {
		return nil, ErrForbidden
	}
	next, ok := models.ParseOrderStatus(newStatus)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.OrderStatus.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", ErrInvalidStatus, order.OrderStatus, next)
	}
	if order.OrderStatus == next {
		return order, nil
	}

	updated, err := s.orders.UpdateOrderStatus(ctx, nil, order.ID, order.OrderStatus, next)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: order %d changed while updating its status", ErrConflict, order.ID)
	}
	order.OrderStatus = next
	return order, nil
}

func (s *OrderQueryService) find(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.orders.FindOrder(ctx, nil, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	return order, err
}
