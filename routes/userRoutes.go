package routes

import (
	"github.com/Kariqs/storefront-api/controllers"
	"github.com/gin-gonic/gin"
)

func UserRoutes(server *gin.Engine, users *controllers.UserController, guards Guards) {
	group := server.Group("/users", guards.Auth)
	{
		group.GET("", guards.Admin, users.GetUsers)
		group.GET("/:id", users.GetUser)
		group.PATCH("/:id", users.UpdateUser)
		group.DELETE("/:id", users.DeleteUser)
	}
}
