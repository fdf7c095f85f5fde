package routes

import (
	"github.com/Kariqs/storefront-api/controllers"
	"github.com/gin-gonic/gin"
)

func ProductRoutes(server *gin.Engine, products *controllers.ProductController, guards Guards) {
	group := server.Group("/products")
	{
		group.GET("", products.GetProducts)
		group.GET("/:id", products.GetProduct)
		group.POST("", guards.Auth, guards.Admin, products.CreateProduct)
		group.PUT("/:id", guards.Auth, guards.Admin, products.UpdateProduct)
		group.DELETE("/:id", guards.Auth, guards.Admin, products.DeleteProduct)
		group.POST("/:id/specs", guards.Auth, guards.Admin, products.CreateProductSpec)
	}
}
