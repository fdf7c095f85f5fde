package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kariqs/storefront-api/models"
	"github.com/Kariqs/storefront-api/store"
)

// Assembly is the immutable item snapshot and charge total of an order to be.
type Assembly struct {
	Items []models.OrderItem
	Total models.Money
}

// OrderAssembler turns cart contents into order items.
type OrderAssembler struct {
	catalog Catalog
}

func NewOrderAssembler(catalog Catalog) *OrderAssembler {
	return &OrderAssembler{catalog: catalog}
}

// AssembleCart snapshots the cart lines. Prices come from the cart, where they were
// captured when the customer added the product, not from the live catalog.
func AssembleCart(cart *models.Cart) (Assembly, error) {
	if cart.IsEmpty() {
		return Assembly{}, ErrEmptyCart
	}
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, models.OrderItem{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			PriceAtPurchase: line.UnitPrice,
		})
	}
	return assemble(items)
}

// AssembleGuest prices client-supplied lines at the current catalog price; a guest has
// no server-side cart holding an earlier snapshot.
func (a *OrderAssembler) AssembleGuest(ctx context.Context, uow *store.UnitOfWork, lines []CartLine) (Assembly, error) {
	if len(lines) == 0 {
		return Assembly{}, ErrEmptyCart
	}
	items := make([]models.OrderItem, 0, len(lines))
	index := make(map[uint]int, len(lines))
	for _, line := range lines {
		if err := checkLine(line); err != nil {
			return Assembly{}, err
		}
		if i, seen := index[line.ProductID]; seen {
			items[i].Quantity += line.Quantity
			if err := checkQuantity(line.ProductID, items[i].Quantity); err != nil {
				return Assembly{}, err
			}
			continue
		}
		product, err := a.catalog.FindProduct(ctx, uow, line.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			return Assembly{}, fmt.Errorf("%w: product %d", ErrProductNotFound, line.ProductID)
		}
		if err != nil {
			return Assembly{}, err
		}
		index[line.ProductID] = len(items)
		items = append(items, models.OrderItem{
			ProductID:       product.ID,
			Quantity:        line.Quantity,
			PriceAtPurchase: product.Price,
		})
	}
	return assemble(items)
}

// assemble totals items. A total that does not fit in Money is rejected as invalid
// input rather than stored wrapped.
func assemble(items []models.OrderItem) (Assembly, error) {
	total, err := models.SumLineTotals(items)
	if err != nil {
		return Assembly{}, fmt.Errorf("%w: order total: %w", ErrInvalidInput, err)
	}
	return Assembly{Items: items, Total: total}, nil
}
