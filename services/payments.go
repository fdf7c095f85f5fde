package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Kariqs/storefront-api/logging"
	"github.com/Kariqs/storefront-api/metrics"
	"github.com/Kariqs/storefront-api/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const defaultPaymentTimeout = 15 * time.Second

// PaymentService starts online payments for committed orders. It never runs inside an
// order's unit of work.
type PaymentService struct {
	orders   OrderRepository
	queries  *OrderQueryService
	gateway  PaymentGateway
	currency string
	timeout  time.Duration
}

func NewPaymentService(orders OrderRepository, gateway PaymentGateway, currency string, timeout time.Duration) *PaymentService {
	if timeout <= 0 {
		timeout = defaultPaymentTimeout
	}
	return &PaymentService{
		orders:   orders,
		queries:  NewOrderQueryService(orders),
		gateway:  gateway,
		currency: currency,
		timeout:  timeout,
	}
}

// InitializeForRequester starts payment for an order the requester may see.
func (s *PaymentService) InitializeForRequester(ctx context.Context, orderID uint, requester Identity) (*PaymentSession, error) {
	order, err := s.queries.GetByID(ctx, orderID, requester)
	if err != nil {
		return nil, err
	}
	return s.Initialize(ctx, order)
}

// Initialize asks the gateway for a checkout session covering the order total and
// records the gateway reference on the order.
func (s *PaymentService) Initialize(ctx context.Context, order *models.Order) (session *PaymentSession, err error) {
	ctx, span := tracer.Start(ctx, "Payments.Initialize",
		trace.WithAttributes(attribute.Int64("order.id", int64(order.ID))))
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.PaymentInitializations.WithLabelValues(outcome).Inc()
		span.End()
	}()

	if order.PaymentStatus == models.PaymentPaid {
		return nil, fmt.Errorf("%w: order %d is already paid", ErrConflict, order.ID)
	}
	if order.PaymentMethod == nil || order.PaymentMethod.Email == "" {
		return nil, fmt.Errorf("%w: order %d has no billing email", ErrInvalidInput, order.ID)
	}
	if order.PaymentMethod.Method == models.CashOnDelivery {
		return nil, fmt.Errorf("%w: order %d is paid on delivery", ErrInvalidInput, order.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session, err = s.gateway.InitializeTransaction(ctx, PaymentRequest{
		Email:     order.PaymentMethod.Email,
		Amount:    order.Total,
		Currency:  s.currency,
		Reference: fmt.Sprintf("ORDER-%d-%s", order.ID, uuid.NewString()[:8]),
		OrderID:   order.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPaymentGateway, err)
	}

	if err := s.orders.SetPaymentReference(context.WithoutCancel(ctx), nil, order.ID, session.Reference); err != nil {
		logging.FromContext(ctx).Warn("payment started but reference not saved",
			zap.Uint("order_id", order.ID),
			zap.String("reference", session.Reference),
			zap.Error(err))
	} else {
		order.PaymentReference = session.Reference
	}
	return session, nil
}
