package controllers

import (
	"net/http"

	"github.com/Kariqs/storefront-api/services"
	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

type initializePaymentRequest struct {
	OrderID uint `json:"orderId" binding:"required"`
}

// InitializePayment starts an online payment for one of the caller's orders.
func (c *PaymentController) InitializePayment(ctx *gin.Context) {
	id, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	var req initializePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, msgInvalidInput, err)
		return
	}

	session, err := c.payments.InitializeForRequester(ctx.Request.Context(), req.OrderID, id)
	if err != nil {
		respondWithServiceError(ctx, "Payment initialization failed", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"accessCode":       session.AccessCode,
		"authorizationUrl": session.AuthorizationURL,
		"reference":        session.Reference,
	})
}
