package utils

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/Kariqs/storefront-api/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OrderCreatedEvent struct {
	EventID         string                    `json:"eventId"`
	Type            string                    `json:"type"`
	OrderID         uint                      `json:"orderId"`
	UserID          *uint                     `json:"userId,omitempty"`
	Guest           bool                      `json:"guest"`
	Total           models.Money              `json:"total"`
	Currency        string                    `json:"currency"`
	PaymentMethodID uint                      `json:"paymentMethodId"`
	PaymentMethod   models.PaymentMethodLabel `json:"paymentMethod,omitempty"`
	ItemCount       int                       `json:"itemCount"`
	CreatedAt       time.Time                 `json:"createdAt"`
}

// OrderEventPublisher publishes order.created events to Kafka, keyed by order id so
// all events of one order land on the same partition.
type OrderEventPublisher struct {
	writer   messageWriter
	currency string
}

func NewOrderEventPublisher(brokersCSV, topic, currency string) *OrderEventPublisher {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil
	}
	return &OrderEventPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		currency: currency,
	}
}

func (p *OrderEventPublisher) NotifyOrderCreated(ctx context.Context, order *models.Order) error {
	if p == nil {
		return nil
	}
	event := OrderCreatedEvent{
		EventID:         uuid.NewString(),
		Type:            "order.created",
		OrderID:         order.ID,
		UserID:          order.UserID,
		Guest:           order.UserID == nil,
		Total:           order.Total,
		Currency:        p.currency,
		PaymentMethodID: order.PaymentMethodID,
		ItemCount:       len(order.Items),
		CreatedAt:       order.CreatedAt.UTC(),
	}
	if order.PaymentMethod != nil {
		event.PaymentMethod = order.PaymentMethod.Method
	}
	return publishJSON(ctx, p.writer, strconv.FormatUint(uint64(order.ID), 10), event)
}

func (p *OrderEventPublisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}

func publishJSON(ctx context.Context, writer messageWriter, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data, Time: time.Now().UTC()})
}
