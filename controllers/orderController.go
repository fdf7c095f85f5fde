package controllers

import (
	"net/http"

	"github.com/Kariqs/storefront-api/logging"
	"github.com/Kariqs/storefront-api/models"
	"github.com/Kariqs/storefront-api/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderController struct {
	checkout *services.CheckoutService
	orders   *services.OrderQueryService
	payments *services.PaymentService
}

func NewOrderController(checkout *services.CheckoutService, orders *services.OrderQueryService, payments *services.PaymentService) *OrderController {
	return &OrderController{checkout: checkout, orders: orders, payments: payments}
}

type createOrderRequest struct {
	services.CheckoutDetails
	InitializePayment bool `json:"initializePayment"`
}

type guestOrderRequest struct {
	services.CheckoutDetails
	Items             []services.CartLine `json:"items"`
	InitializePayment bool                `json:"initializePayment"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateOrder checks out the caller's cart.
func (c *OrderController) CreateOrder(ctx *gin.Context) {
	id, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	var req createOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, msgInvalidInput, err)
		return
	}

	order, err := c.checkout.CreateOrder(ctx.Request.Context(), id, req.CheckoutDetails)
	if err != nil {
		respondWithServiceError(ctx, "Failed to create order", err)
		return
	}
	c.respondCreated(ctx, order, req.InitializePayment)
}

// CreateGuestOrder checks out a cart held by the client.
func (c *OrderController) CreateGuestOrder(ctx *gin.Context) {
	var req guestOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, msgInvalidInput, err)
		return
	}

	order, err := c.checkout.CreateGuestOrder(ctx.Request.Context(), req.CheckoutDetails, req.Items)
	if err != nil {
		respondWithServiceError(ctx, "Failed to create order", err)
		return
	}
	c.respondCreated(ctx, order, req.InitializePayment)
}

// respondCreated answers 201 for a committed order. When asked, it also starts online
// payment; a payment failure is reported alongside the order, never instead of it.
func (c *OrderController) respondCreated(ctx *gin.Context, order *models.Order, initializePayment bool) {
	response := gin.H{
		"message": "Order created successfully.",
		"order":   order,
	}

	payOnline := order.PaymentMethod != nil && order.PaymentMethod.Method != models.CashOnDelivery
	if initializePayment && payOnline && c.payments != nil {
		session, err := c.payments.Initialize(ctx.Request.Context(), order)
		if err != nil {
			logging.FromContext(ctx.Request.Context()).Warn("order created but payment not started",
				zap.Uint("order_id", order.ID), zap.Error(err))
			response["paymentError"] = err.Error()
		} else {
			response["payment"] = session
			response["message"] = "Order created successfully. Redirect user to payment."
		}
	}

	sendJSONResponse(ctx, http.StatusCreated, response)
}

func (c *OrderController) GetMyOrders(ctx *gin.Context) {
	id, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	orders, err := c.orders.ListMine(ctx.Request.Context(), id.UserID)
	if err != nil {
		respondWithServiceError(ctx, "Failed to fetch orders.", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": orders})
}

func (c *OrderController) GetOrders(ctx *gin.Context) {
	id, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	orders, err := c.orders.ListAll(ctx.Request.Context(), id)
	if err != nil {
		respondWithServiceError(ctx, "Unable to fetch orders", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": orders})
}

func (c *OrderController) GetOrderByID(ctx *gin.Context) {
	id, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	order, err := c.orders.GetByID(ctx.Request.Context(), orderID, id)
	if err != nil {
		respondWithServiceError(ctx, "Failed to fetch order.", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
}

func (c *OrderController) UpdateOrderStatus(ctx *gin.Context) {
	id, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Failed to parse request body", err)
		return
	}

	order, err := c.orders.UpdateStatus(ctx.Request.Context(), orderID, req.Status, id)
	if err != nil {
		respondWithServiceError(ctx, "Failed to update order status", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message": "Order status updated successfully.",
		"order":   order,
	})
}
