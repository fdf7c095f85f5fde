package controllers

import (
	"net/http"

	"github.com/Kariqs/storefront-api/middlewares"
	"github.com/Kariqs/storefront-api/services"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

type replaceCartRequest struct {
	Items []services.CartLine `json:"items"`
}

func requireIdentity(ctx *gin.Context) (services.Identity, bool) {
	id, ok := middlewares.IdentityFrom(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
	}
	return id, ok
}

func (c *CartController) GetCart(ctx *gin.Context) {
	id, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	cart, err := c.carts.GetOrCreate(ctx.Request.Context(), id.UserID)
	if err != nil {
		respondWithServiceError(ctx, "Unable to fetch cart", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"cart": cart})
}

func (c *CartController) AddCartItem(ctx *gin.Context) {
	id, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	var line services.CartLine
	if err := ctx.ShouldBindJSON(&line); err != nil {
		respondWithError(ctx, http.StatusBadRequest, msgInvalidInput, err)
		return
	}

	cart, err := c.carts.AddItem(ctx.Request.Context(), id.UserID, line.ProductID, line.Quantity)
	if err != nil {
		respondWithServiceError(ctx, "Unable to add item to cart", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart updated", "cart": cart})
}

// ReplaceCart overwrites the cart with the given lines. The storefront uses it to
// restore a cart after a failed checkout.
func (c *CartController) ReplaceCart(ctx *gin.Context) {
	id, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	var req replaceCartRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, msgInvalidInput, err)
		return
	}

	cart, err := c.carts.BulkReplace(ctx.Request.Context(), id.UserID, req.Items)
	if err != nil {
		respondWithServiceError(ctx, "Unable to replace cart", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart updated", "cart": cart})
}

func (c *CartController) RemoveCartItem(ctx *gin.Context) {
	id, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	productID, ok := parseIDParam(ctx, "productId")
	if !ok {
		return
	}

	cart, removed, err := c.carts.RemoveItem(ctx.Request.Context(), id.UserID, productID)
	if err != nil {
		respondWithServiceError(ctx, "Unable to remove cart item", err)
		return
	}
	message := "Item removed from cart"
	if !removed {
		message = "Item was not in the cart"
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": message, "removed": removed, "cart": cart})
}

func (c *CartController) ClearCart(ctx *gin.Context) {
	id, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	cart, err := c.carts.Clear(ctx.Request.Context(), id.UserID)
	if err != nil {
		respondWithServiceError(ctx, "Unable to clear cart", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart cleared", "cart": cart})
}
