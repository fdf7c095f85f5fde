package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kariqs/storefront-api/models"
	"github.com/Kariqs/storefront-api/store"
)

// CartLine is one requested cart entry, as sent by a client.
type CartLine struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,min=1,max=10000"`
}

// CartService keeps one mutable cart per user. Every mutation re-checks the product
// against the catalog, since it may have been removed after the page was rendered.
type CartService struct {
	tx      Transactor
	carts   CartRepository
	catalog Catalog
}

func NewCartService(tx Transactor, carts CartRepository, catalog Catalog) *CartService {
	return &CartService{tx: tx, carts: carts, catalog: catalog}
}

func (s *CartService) GetOrCreate(ctx context.Context, userID uint) (*models.Cart, error) {
	return s.carts.EnsureCart(ctx, nil, userID)
}

// AddItem adds quantity units of a product, capturing its current price on a new line
// or incrementing the existing line in place. The cart row stays locked while the
// merged quantity is checked, so concurrent adds cannot push a line past
// models.MaxLineQuantity.
func (s *CartService) AddItem(ctx context.Context, userID, productID uint, quantity int) (*models.Cart, error) {
	if err := checkLine(CartLine{ProductID: productID, Quantity: quantity}); err != nil {
		return nil, err
	}

	uow, err := s.tx.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Abort()

	product, err := availableProduct(ctx, s.catalog, uow, productID)
	if err != nil {
		return nil, err
	}
	if _, err := s.carts.EnsureCart(ctx, uow, userID); err != nil {
		return nil, err
	}
	cart, err := s.carts.LockCart(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	if existing, ok := cart.Item(product.ID); ok {
		if err := checkQuantity(product.ID, existing.Quantity+quantity); err != nil {
			return nil, err
		}
	}
	if err := s.carts.AddCartItem(ctx, uow, cart.ID, product.ID, quantity, product.Price); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return s.carts.FindCart(ctx, nil, userID)
}

// BulkReplace swaps the whole cart for lines in one unit of work. Repeated products
// are merged into one line.
func (s *CartService) BulkReplace(ctx context.Context, userID uint, lines []CartLine) (*models.Cart, error) {
	for _, line := range lines {
		if err := checkLine(line); err != nil {
			return nil, err
		}
	}

	uow, err := s.tx.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Abort()

	cart, err := s.carts.EnsureCart(ctx, uow, userID)
	if err != nil {
		return nil, err
	}

	items := make([]models.CartItem, 0, len(lines))
	index := make(map[uint]int, len(lines))
	for _, line := range lines {
		if i, seen := index[line.ProductID]; seen {
			items[i].Quantity += line.Quantity
			if err := checkQuantity(line.ProductID, items[i].Quantity); err != nil {
				return nil, err
			}
			continue
		}
		product, err := availableProduct(ctx, s.catalog, uow, line.ProductID)
		if err != nil {
			return nil, err
		}
		index[line.ProductID] = len(items)
		items = append(items, models.CartItem{
			ProductID: product.ID,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
		})
	}

	if err := s.carts.ReplaceCartItems(ctx, uow, cart.ID, items); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return s.carts.FindCart(ctx, nil, userID)
}

// RemoveItem drops the product's line. A product that is not in the cart is not an
// error: the unchanged cart comes back with removed == false.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uint) (cart *models.Cart, removed bool, err error) {
	cart, err = s.carts.EnsureCart(ctx, nil, userID)
	if err != nil {
		return nil, false, err
	}
	removed, err = s.carts.RemoveCartItem(ctx, nil, cart.ID, productID)
	if err != nil {
		return nil, false, err
	}
	if !removed {
		return cart, false, nil
	}
	cart, err = s.carts.FindCart(ctx, nil, userID)
	return cart, true, err
}

func (s *CartService) Clear(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := s.carts.EnsureCart(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return cart, nil
	}
	if err := s.carts.ClearCart(ctx, nil, cart.ID); err != nil {
		return nil, err
	}
	cart.Items = []models.CartItem{}
	return cart, nil
}

func checkLine(line CartLine) error {
	if line.ProductID == 0 || line.Quantity < 1 {
		return fmt.Errorf("%w: productId and a quantity of at least 1 are required", ErrInvalidInput)
	}
	return checkQuantity(line.ProductID, line.Quantity)
}

func checkQuantity(productID uint, quantity int) error {
	if quantity > models.MaxLineQuantity {
		return fmt.Errorf("%w: quantity %d of product %d exceeds %d", ErrInvalidInput, quantity, productID, models.MaxLineQuantity)
	}
	return nil
}

func availableProduct(ctx context.Context, catalog Catalog, uow *store.UnitOfWork, productID uint) (*models.Product, error) {
	product, err := catalog.FindProduct(ctx, uow, productID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrProductUnavailable, productID)
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}
