package models

import (
	"fmt"

	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentFailed  PaymentStatus = "Failed"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

// fulfilment position of each status; Cancelled sits outside the sequence.
var orderStatusRank = map[OrderStatus]int{
	OrderPending:    0,
	OrderProcessing: 1,
	OrderShipped:    2,
	OrderDelivered:  3,
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(s)
	if status == OrderCancelled {
		return status, true
	}
	_, ok := orderStatusRank[status]
	return status, ok
}

func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransitionTo reports whether an order in status s may move to next.
// Fulfilment only moves forward, Cancelled is reachable from any non-terminal
// status and re-applying the current status is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	if next == OrderCancelled {
		return true
	}
	from, ok := orderStatusRank[s]
	if !ok {
		return false
	}
	to, ok := orderStatusRank[next]
	return ok && to > from
}

type OrderItem struct {
	ID              uint     `json:"id" gorm:"primarykey"`
	OrderID         uint     `json:"-" gorm:"index;not null"`
	ProductID       uint     `json:"productId" gorm:"not null"`
	Product         *Product `json:"product,omitempty"`
	Quantity        int      `json:"quantity" gorm:"not null"`
	PriceAtPurchase Money    `json:"priceAtPurchase" gorm:"not null"`
}

func (i OrderItem) LineTotal() (Money, error) {
	return i.PriceAtPurchase.Times(i.Quantity)
}

// SumLineTotals adds up the line totals of items, failing instead of wrapping.
func SumLineTotals(items []OrderItem) (Money, error) {
	var sum Money
	for _, item := range items {
		line, err := item.LineTotal()
		if err != nil {
			return 0, fmt.Errorf("product %d: %w", item.ProductID, err)
		}
		if sum, err = sum.Plus(line); err != nil {
			return 0, err
		}
	}
	return sum, nil
}

type Order struct {
	gorm.Model
	UserID           *uint          `json:"userId,omitempty" gorm:"index"`
	Items            []OrderItem    `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Total            Money          `json:"total" gorm:"not null"`
	PaymentStatus    PaymentStatus  `json:"paymentStatus" gorm:"size:16;not null"`
	OrderStatus      OrderStatus    `json:"orderStatus" gorm:"size:16;not null;index"`
	PaymentMethodID  uint           `json:"paymentMethodId" gorm:"not null"`
	PaymentMethod    *PaymentMethod `json:"paymentMethod,omitempty"`
	PaymentReference string         `json:"paymentReference,omitempty" gorm:"size:64"`
}

// OwnedBy reports whether userID placed the order. Guest orders have no owner.
func (o *Order) OwnedBy(userID uint) bool {
	return o.UserID != nil && *o.UserID == userID
}
