package routes

import (
	"github.com/Kariqs/storefront-api/controllers"
	"github.com/gin-gonic/gin"
)

func OrderRoutes(server *gin.Engine, orders *controllers.OrderController, guards Guards) {
	server.POST("/orders/guest", guards.Idempotency, orders.CreateGuestOrder)

	group := server.Group("/orders", guards.Auth)
	{
		group.POST("", guards.Idempotency, orders.CreateOrder)
		group.GET("/mine", orders.GetMyOrders)
		group.GET("/:id", orders.GetOrderByID)
		group.GET("", guards.Admin, orders.GetOrders)
		group.PATCH("/:id/status", guards.Admin, orders.UpdateOrderStatus)
	}
}

func PaymentRoutes(server *gin.Engine, payments *controllers.PaymentController, guards Guards) {
	server.POST("/payments/initialize", guards.Auth, payments.InitializePayment)
}
