package routes

import (
	"github.com/Kariqs/storefront-api/controllers"
	"github.com/gin-gonic/gin"
)

func CartRoutes(server *gin.Engine, cart *controllers.CartController, guards Guards) {
	group := server.Group("/cart", guards.Auth)
	{
		group.GET("", cart.GetCart)
		group.POST("", cart.AddCartItem)
		group.PUT("", cart.ReplaceCart)
		group.DELETE("", cart.ClearCart)
		group.DELETE("/items/:productId", cart.RemoveCartItem)
	}
}
