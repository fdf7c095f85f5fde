package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Kariqs/storefront-api/models"
	"github.com/Kariqs/storefront-api/services"
	"github.com/Kariqs/storefront-api/store"
	"github.com/Kariqs/storefront-api/store/storetest"
)

type recordingNotifier struct {
	mu     sync.Mutex
	orders []uint
	err    error
}

func (n *recordingNotifier) NotifyOrderCreated(_ context.Context, order *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order.ID)
	return n.err
}

func (n *recordingNotifier) notified() []uint {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]uint(nil), n.orders...)
}

// failingOrders fails order persistence, i.e. after the payment method was resolved.
type failingOrders struct {
	*store.Store
	err error
}

func (f failingOrders) CreateOrder(context.Context, *store.UnitOfWork, *models.Order) error {
	return f.err
}

// failingCarts fails the final cart clear, after the order row was written.
type failingCarts struct {
	*store.Store
	err error
}

func (f failingCarts) ClearCart(context.Context, *store.UnitOfWork, uint) error {
	return f.err
}

type fixture struct {
	store    *store.Store
	carts    *services.CartService
	checkout *services.CheckoutService
	orders   *services.OrderQueryService
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := storetest.New(t)
	notifier := &recordingNotifier{}
	return &fixture{
		store:    s,
		carts:    services.NewCartService(s, s, s),
		checkout: newCheckout(s, s, s, notifier),
		orders:   services.NewOrderQueryService(s),
		notifier: notifier,
	}
}

func newCheckout(s *store.Store, carts services.CartRepository, orders services.OrderRepository, notifier services.OrderNotifier) *services.CheckoutService {
	return services.NewCheckoutService(services.CheckoutDeps{
		Tx:             s,
		Carts:          carts,
		Orders:         orders,
		Catalog:        s,
		PaymentMethods: s,
		Notifier:       notifier,
		NotifyTimeout:  time.Second,
	})
}

func checkoutDetails() services.CheckoutDetails {
	return services.CheckoutDetails{
		FullName:      "Akosua Mensah",
		Email:         "akosua@example.com",
		Phone:         "0240000000",
		Address:       "12 Ring Road",
		City:          "Accra",
		PaymentMethod: models.MobileMoney,
	}
}

func buyer(id uint) services.Identity {
	return services.Identity{UserID: id, Role: models.RoleUser}
}

func admin() services.Identity {
	return services.Identity{UserID: 999, Role: models.RoleAdmin}
}
