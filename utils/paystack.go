package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kariqs/storefront-api/services"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
)

const initializePath = "/transaction/initialize"

// ErrPaymentRejected marks a 4xx answer from Paystack: the request was bad, the
// gateway is healthy.
var ErrPaymentRejected = errors.New("paystack rejected the request")

type paystackEnvelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// PaystackClient implements services.PaymentGateway. Calls go through a circuit
// breaker that opens after five consecutive gateway failures.
type PaystackClient struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker[*services.PaymentSession]
}

func NewPaystackClient(baseURL, secretKey string, timeout time.Duration) *PaystackClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(secretKey).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	breaker := gobreaker.NewCircuitBreaker[*services.PaymentSession](gobreaker.Settings{
		Name:        "paystack",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrPaymentRejected)
		},
	})

	return &PaystackClient{client: client, breaker: breaker}
}

func (c *PaystackClient) InitializeTransaction(ctx context.Context, req services.PaymentRequest) (*services.PaymentSession, error) {
	return c.breaker.Execute(func() (*services.PaymentSession, error) {
		return c.initialize(ctx, req)
	})
}

func (c *PaystackClient) initialize(ctx context.Context, req services.PaymentRequest) (*services.PaymentSession, error) {
	var out paystackEnvelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"email":     req.Email,
			"amount":    int64(req.Amount),
			"currency":  req.Currency,
			"reference": req.Reference,
			"metadata":  map[string]any{"order_id": req.OrderID},
		}).
		SetResult(&out).
		SetError(&out).
		Post(initializePath)
	if err != nil {
		return nil, fmt.Errorf("paystack request: %w", err)
	}

	if resp.StatusCode() >= 400 && resp.StatusCode() < 500 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrPaymentRejected, resp.StatusCode(), out.Message)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("paystack returned status %d: %s", resp.StatusCode(), out.Message)
	}
	if !out.Status || out.Data.AccessCode == "" {
		return nil, fmt.Errorf("incomplete response from paystack: %s", out.Message)
	}

	reference := out.Data.Reference
	if reference == "" {
		reference = req.Reference
	}
	return &services.PaymentSession{
		AuthorizationURL: out.Data.AuthorizationURL,
		AccessCode:       out.Data.AccessCode,
		Reference:        reference,
	}, nil
}
