package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Kariqs/storefront-api/logging"
	"github.com/Kariqs/storefront-api/metrics"
	"github.com/Kariqs/storefront-api/models"
	"github.com/Kariqs/storefront-api/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	flowUser  = "user"
	flowGuest = "guest"

	defaultNotifyTimeout = 10 * time.Second
)

var tracer = otel.Tracer("github.com/Kariqs/storefront-api/services")

// CheckoutDetails is the buyer, delivery and payment information sent at checkout.
type CheckoutDetails struct {
	FullName      string                    `json:"fullName" validate:"required"`
	Email         string                    `json:"email" validate:"required,email"`
	Phone         string                    `json:"phone" validate:"required"`
	Address       string                    `json:"address" validate:"required"`
	City          string                    `json:"city" validate:"required"`
	PaymentMethod models.PaymentMethodLabel `json:"paymentMethod" validate:"required,paymentlabel"`
}

func (d CheckoutDetails) paymentDetails() PaymentDetails {
	return PaymentDetails{
		FullName:      &d.FullName,
		Email:         &d.Email,
		Phone:         &d.Phone,
		Address:       &d.Address,
		City:          &d.City,
		PaymentMethod: &d.PaymentMethod,
	}
}

type guestCart struct {
	Items []CartLine `json:"items" validate:"dive"`
}

type CheckoutDeps struct {
	Tx             Transactor
	Carts          CartRepository
	Orders         OrderRepository
	Catalog        Catalog
	PaymentMethods PaymentMethodRepository
	Validator      Validator
	Notifier       OrderNotifier
	NotifyTimeout  time.Duration
}

// CheckoutService turns carts into orders. Reading the cart, resolving the payment
// method, writing the order and clearing the cart happen in one unit of work; the
// notifier only ever sees committed orders.
type CheckoutService struct {
	tx            Transactor
	carts         CartRepository
	orders        OrderRepository
	assembler     *OrderAssembler
	matcher       *PaymentMethodMatcher
	validator     Validator
	notifier      OrderNotifier
	notifyTimeout time.Duration

	pending sync.WaitGroup
}

func NewCheckoutService(deps CheckoutDeps) *CheckoutService {
	timeout := deps.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	validator := deps.Validator
	if validator == nil {
		validator = NewValidator()
	}
	return &CheckoutService{
		tx:            deps.Tx,
		carts:         deps.Carts,
		orders:        deps.Orders,
		assembler:     NewOrderAssembler(deps.Catalog),
		matcher:       NewPaymentMethodMatcher(deps.PaymentMethods),
		validator:     validator,
		notifier:      deps.Notifier,
		notifyTimeout: timeout,
	}
}

// CreateOrder checks out the authenticated user's cart.
func (s *CheckoutService) CreateOrder(ctx context.Context, id Identity, details CheckoutDetails) (order *models.Order, err error) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "Checkout.CreateOrder",
		trace.WithAttributes(attribute.Int64("user.id", int64(id.UserID))))
	defer func() { s.finish(span, flowUser, started, err) }()

	if err := s.validator.Validate(details); err != nil {
		return nil, err
	}

	userID := id.UserID
	order, err = s.inUnit(ctx, func(uow *store.UnitOfWork) (*models.Order, error) {
		cart, err := s.carts.LockCart(ctx, uow, userID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEmptyCart
		}
		if err != nil {
			return nil, err
		}
		if err := checkCartProducts(cart); err != nil {
			return nil, err
		}
		assembly, err := AssembleCart(cart)
		if err != nil {
			return nil, err
		}
		method, _, err := s.matcher.Resolve(ctx, uow, &userID, details.paymentDetails())
		if err != nil {
			return nil, err
		}
		order := newOrder(&userID, assembly, method)
		if err := s.orders.CreateOrder(ctx, uow, order); err != nil {
			return nil, err
		}
		if err := s.carts.ClearCart(ctx, uow, cart.ID); err != nil {
			return nil, err
		}
		return order, nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("order.id", int64(order.ID)))
	s.notifyCreated(ctx, order)
	return order, nil
}

// CreateGuestOrder checks out a client-held cart. Guests have no stored payment
// methods, so a new ownerless one is always created.
func (s *CheckoutService) CreateGuestOrder(ctx context.Context, details CheckoutDetails, lines []CartLine) (order *models.Order, err error) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "Checkout.CreateGuestOrder")
	defer func() { s.finish(span, flowGuest, started, err) }()

	if err := s.validator.Validate(details); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(guestCart{Items: lines}); err != nil {
		return nil, err
	}

	order, err = s.inUnit(ctx, func(uow *store.UnitOfWork) (*models.Order, error) {
		assembly, err := s.assembler.AssembleGuest(ctx, uow, lines)
		if err != nil {
			return nil, err
		}
		method, _, err := s.matcher.Resolve(ctx, uow, nil, details.paymentDetails())
		if err != nil {
			return nil, err
		}
		order := newOrder(nil, assembly, method)
		if err := s.orders.CreateOrder(ctx, uow, order); err != nil {
			return nil, err
		}
		return order, nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("order.id", int64(order.ID)))
	s.notifyCreated(ctx, order)
	return order, nil
}

// Wait blocks until in-flight notifications have finished.
func (s *CheckoutService) Wait() {
	s.pending.Wait()
}

// inUnit runs fn in a fresh unit of work. Any error aborts the unit; failures other
// than precondition errors come back wrapped in ErrTransactionFailed.
func (s *CheckoutService) inUnit(ctx context.Context, fn func(uow *store.UnitOfWork) (*models.Order, error)) (*models.Order, error) {
	logger := logging.FromContext(ctx)

	uow, err := s.tx.Begin(ctx)
	if err != nil {
		logger.Error("begin order transaction", zap.Error(err))
		return nil, transactionFailed(err)
	}

	order, err := fn(uow)
	if err != nil {
		if abortErr := uow.Abort(); abortErr != nil {
			logger.Error("abort order transaction", zap.Error(abortErr))
		}
		if isPrecondition(err) {
			return nil, err
		}
		logger.Error("order transaction rolled back", zap.Error(err))
		return nil, transactionFailed(err)
	}

	if err := uow.Commit(); err != nil {
		logger.Error("commit order transaction", zap.Error(err))
		return nil, transactionFailed(err)
	}
	return order, nil
}

func (s *CheckoutService) finish(span trace.Span, flow string, started time.Time, err error) {
	metrics.ObserveCheckout(flow, Outcome(err), started)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Outcome(err))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (s *CheckoutService) notifyCreated(ctx context.Context, order *models.Order) {
	if s.notifier == nil {
		return
	}
	logger := logging.FromContext(ctx).With(zap.Uint("order_id", order.ID))
	notifyCtx := context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(notifyCtx, s.notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyOrderCreated(ctx, order); err != nil {
			metrics.NotificationFailures.Inc()
			logger.Warn("order notification failed", zap.Error(err))
		}
	}()
}

// checkCartProducts rejects carts holding products removed from the catalog since
// they were added.
func checkCartProducts(cart *models.Cart) error {
	for _, item := range cart.Items {
		if item.Product == nil {
			return fmt.Errorf("%w: product %d", ErrProductUnavailable, item.ProductID)
		}
	}
	return nil
}

func newOrder(userID *uint, assembly Assembly, method *models.PaymentMethod) *models.Order {
	return &models.Order{
		UserID:          userID,
		Items:           assembly.Items,
		Total:           assembly.Total,
		PaymentStatus:   models.PaymentPending,
		OrderStatus:     models.OrderPending,
		PaymentMethodID: method.ID,
		PaymentMethod:   method,
	}
}
