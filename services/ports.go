package services

import (
	"context"

	"github.com/Kariqs/storefront-api/models"
	"github.com/Kariqs/storefront-api/store"
)

// Transactor opens units of work. *store.Store implements every port in this file.
type Transactor interface {
	Begin(ctx context.Context) (*store.UnitOfWork, error)
}

type Catalog interface {
	FindProduct(ctx context.Context, uow *store.UnitOfWork, id uint) (*models.Product, error)
}

type CartRepository interface {
	EnsureCart(ctx context.Context, uow *store.UnitOfWork, userID uint) (*models.Cart, error)
	FindCart(ctx context.Context, uow *store.UnitOfWork, userID uint) (*models.Cart, error)
	LockCart(ctx context.Context, uow *store.UnitOfWork, userID uint) (*models.Cart, error)
	AddCartItem(ctx context.Context, uow *store.UnitOfWork, cartID, productID uint, quantity int, unitPrice models.Money) error
	ReplaceCartItems(ctx context.Context, uow *store.UnitOfWork, cartID uint, items []models.CartItem) error
	RemoveCartItem(ctx context.Context, uow *store.UnitOfWork, cartID, productID uint) (bool, error)
	ClearCart(ctx context.Context, uow *store.UnitOfWork, cartID uint) error
}

type PaymentMethodRepository interface {
	ListPaymentMethodsByUser(ctx context.Context, uow *store.UnitOfWork, userID uint) ([]models.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, uow *store.UnitOfWork, method *models.PaymentMethod) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, uow *store.UnitOfWork, order *models.Order) error
	FindOrder(ctx context.Context, uow *store.UnitOfWork, id uint) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uint) ([]models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, uow *store.UnitOfWork, id uint, from, to models.OrderStatus) (bool, error)
	SetPaymentReference(ctx context.Context, uow *store.UnitOfWork, id uint, reference string) error
}

// OrderNotifier is told about committed orders. Calls are best-effort; the order
// stands whether or not they succeed.
type OrderNotifier interface {
	NotifyOrderCreated(ctx context.Context, order *models.Order) error
}

type PaymentRequest struct {
	Email     string
	Amount    models.Money
	Currency  string
	Reference string
	OrderID   uint
}

type PaymentSession struct {
	AuthorizationURL string `json:"authorizationUrl"`
	AccessCode       string `json:"accessCode"`
	Reference        string `json:"reference"`
}

type PaymentGateway interface {
	InitializeTransaction(ctx context.Context, req PaymentRequest) (*PaymentSession, error)
}
