package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem rows are hard-deleted, so the (cart, product) unique index never collides
// with a soft-deleted line.
type CartItem struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CartID    uint      `json:"-" gorm:"not null;uniqueIndex:idx_cart_product"`
	ProductID uint      `json:"productId" gorm:"not null;uniqueIndex:idx_cart_product"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	UnitPrice Money     `json:"unitPrice" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Cart struct {
	gorm.Model
	UserID uint       `json:"userId" gorm:"uniqueIndex;not null"`
	Items  []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Item returns the line holding productID, if any.
func (c *Cart) Item(productID uint) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}
