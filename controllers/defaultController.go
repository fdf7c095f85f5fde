package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency checked by the health endpoint.
type Pinger func(ctx context.Context) error

type DefaultController struct {
	checks map[string]Pinger
}

func NewDefaultController(checks map[string]Pinger) *DefaultController {
	return &DefaultController{checks: checks}
}

func (c *DefaultController) GetHome(ctx *gin.Context) {
	message := `Welcome to the Storefront API. Enjoy seamless interaction with this API.

The following are the endpoints for this API:

AUTH
- POST "/auth/signup" - Create user account
- POST "/auth/login" - Access user account
- POST "/auth/verify-email/:activationToken" - Activate user account
- POST "/auth/forgot-password" - Request a password reset link
- POST "/auth/reset-password/:resetToken" - Choose a new password

USER
- GET "/users" - Retrieve all users (admin)
- GET "/users/:id" - Get an account (self or admin)
- PATCH "/users/:id" - Update an account (self or admin)
- DELETE "/users/:id" - Delete an account (self or admin)

PRODUCT
- POST "/products" - Create new product (admin)
- GET "/products" - Get all products
- GET "/products/:id" - Get product by ID
- PUT "/products/:id" - Update product (admin)
- DELETE "/products/:id" - Delete product (admin)
- POST "/products/:id/specs" - Add product specifications (admin)

CART
- GET "/cart" - Get your cart
- POST "/cart" - Add an item to your cart
- PUT "/cart" - Replace your cart
- DELETE "/cart/items/:productId" - Remove an item
- DELETE "/cart" - Clear your cart

ORDER
- POST "/orders" - Check out your cart
- POST "/orders/guest" - Check out as a guest
- GET "/orders/mine" - Get your orders
- GET "/orders" - Retrieve all orders (admin)
- GET "/orders/:id" - Get order by ID
- PATCH "/orders/:id/status" - Update order status (admin)

PAYMENT
- POST "/payments/initialize" - Start payment for an order`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}

// Healthz reports 503 when any dependency fails its ping.
func (c *DefaultController) Healthz(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := gin.H{}
	for name, ping := range c.checks {
		if err := ping(pingCtx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}
	ctx.JSON(status, gin.H{"status": http.StatusText(status), "checks": results})
}
