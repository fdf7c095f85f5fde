package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Kariqs/storefront-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func orderCartItems(db *gorm.DB) *gorm.DB {
	return db.Order("cart_items.id")
}

// EnsureCart returns the user's cart, creating it when absent. Creation is a single
// insert-if-absent on the unique user_id index, so concurrent first adds converge
// on one row.
func (s *Store) EnsureCart(ctx context.Context, uow *UnitOfWork, userID uint) (*models.Cart, error) {
	cart := models.Cart{UserID: userID}
	err := s.conn(ctx, uow).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&cart).Error
	if err != nil {
		return nil, fmt.Errorf("upsert cart for user %d: %w", userID, err)
	}
	return s.FindCart(ctx, uow, userID)
}

func (s *Store) FindCart(ctx context.Context, uow *UnitOfWork, userID uint) (*models.Cart, error) {
	return s.findCart(s.conn(ctx, uow), userID)
}

// LockCart loads the cart and holds a row lock on it until uow ends, serialising it
// against concurrent cart writes.
func (s *Store) LockCart(ctx context.Context, uow *UnitOfWork, userID uint) (*models.Cart, error) {
	return s.findCart(s.conn(ctx, uow).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (s *Store) findCart(db *gorm.DB, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := db.
		Preload("Items", orderCartItems).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &cart, nil
}

// AddCartItem inserts a line or, when the product is already in the cart, increments
// its quantity in the same statement. The captured unit price of an existing line is
// left untouched.
func (s *Store) AddCartItem(ctx context.Context, uow *UnitOfWork, cartID, productID uint, quantity int, unitPrice models.Money) error {
	item := models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
	err := s.conn(ctx, uow).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("quantity + ?", quantity),
				"updated_at": time.Now(),
			}),
		}).
		Create(&item).Error
	if err != nil {
		return fmt.Errorf("add product %d to cart %d: %w", productID, cartID, err)
	}
	return nil
}

// ReplaceCartItems swaps the whole item list of a cart. Callers pass a unit of work
// so the delete and insert land together.
func (s *Store) ReplaceCartItems(ctx context.Context, uow *UnitOfWork, cartID uint, items []models.CartItem) error {
	db := s.conn(ctx, uow)
	if err := db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("clear cart %d: %w", cartID, err)
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = 0
		items[i].CartID = cartID
		items[i].Product = nil
	}
	if err := db.Create(&items).Error; err != nil {
		return fmt.Errorf("insert cart %d items: %w", cartID, err)
	}
	return nil
}

// RemoveCartItem deletes the product's line and reports whether one existed.
func (s *Store) RemoveCartItem(ctx context.Context, uow *UnitOfWork, cartID, productID uint) (bool, error) {
	res := s.conn(ctx, uow).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, fmt.Errorf("remove product %d from cart %d: %w", productID, cartID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) ClearCart(ctx context.Context, uow *UnitOfWork, cartID uint) error {
	if err := s.conn(ctx, uow).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("clear cart %d: %w", cartID, err)
	}
	return nil
}
