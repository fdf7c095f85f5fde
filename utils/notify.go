package utils

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kariqs/storefront-api/models"
	"github.com/Kariqs/storefront-api/services"
	"github.com/Kariqs/storefront-api/store"
	"github.com/shopspring/decimal"
)

const (
	receiptTemplate    = "order_receipt.html"
	ownerOrderTemplate = "owner_order.html"
	placedOnLayout     = "02 Jan 2006, 15:04"
)

type ReceiptLine struct {
	Name      string
	Quantity  int
	UnitPrice string
	LineTotal string
}

// OrderEmailData is what the receipt and owner templates render.
type OrderEmailData struct {
	StoreName     string
	OrderID       uint
	PlacedOn      string
	Name          string
	Email         string
	Phone         string
	Address       string
	City          string
	PaymentMethod string
	Currency      string
	Total         string
	Items         []ReceiptLine
}

func NewOrderEmailData(storeName, currency string, order *models.Order) OrderEmailData {
	data := OrderEmailData{
		StoreName: storeName,
		OrderID:   order.ID,
		PlacedOn:  order.CreatedAt.Format(placedOnLayout),
		Currency:  currency,
		Total:     order.Total.String(),
		Items:     make([]ReceiptLine, 0, len(order.Items)),
	}
	if pm := order.PaymentMethod; pm != nil {
		data.Name = pm.FullName
		data.Email = pm.Email
		data.Phone = pm.Phone
		data.Address = pm.Address
		data.City = pm.City
		data.PaymentMethod = string(pm.Method)
	}
	if data.Name == "" {
		data.Name = "Customer"
	}
	for _, item := range order.Items {
		name := fmt.Sprintf("Product #%d", item.ProductID)
		if item.Product != nil && item.Product.Name != "" {
			name = item.Product.Name
		}
		lineTotal := item.PriceAtPurchase.Decimal().Mul(decimal.NewFromInt(int64(item.Quantity)))
		data.Items = append(data.Items, ReceiptLine{
			Name:      name,
			Quantity:  item.Quantity,
			UnitPrice: item.PriceAtPurchase.String(),
			LineTotal: lineTotal.StringFixed(2),
		})
	}
	return data
}

type OrderLoader interface {
	FindOrder(ctx context.Context, uow *store.UnitOfWork, id uint) (*models.Order, error)
}

// MailNotifier emails the buyer a receipt and the shop owner a new-order notice.
type MailNotifier struct {
	Mailer     *Mailer
	Orders     OrderLoader // optional; reloads the order so receipts carry product names
	OwnerEmail string
	StoreName  string
	Currency   string
}

func (n *MailNotifier) NotifyOrderCreated(ctx context.Context, order *models.Order) error {
	if !n.Mailer.Enabled() {
		return nil
	}
	if n.Orders != nil {
		if full, err := n.Orders.FindOrder(ctx, nil, order.ID); err == nil {
			order = full
		}
	}
	data := NewOrderEmailData(n.StoreName, n.Currency, order)

	var errs []error
	if data.Email != "" {
		subject := fmt.Sprintf("Your order #%d has been received", order.ID)
		if err := n.Mailer.SendEmail(ctx, data.Email, subject, receiptTemplate, data); err != nil {
			errs = append(errs, fmt.Errorf("receipt: %w", err))
		}
	}
	if n.OwnerEmail != "" {
		subject := fmt.Sprintf("New order #%d", order.ID)
		if err := n.Mailer.SendEmail(ctx, n.OwnerEmail, subject, ownerOrderTemplate, data); err != nil {
			errs = append(errs, fmt.Errorf("owner notice: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Notifiers calls every notifier in turn; one failing does not stop the rest.
type Notifiers []services.OrderNotifier

func (ns Notifiers) NotifyOrderCreated(ctx context.Context, order *models.Order) error {
	var errs []error
	for _, n := range ns {
		if n == nil {
			continue
		}
		if err := n.NotifyOrderCreated(ctx, order); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
