package routes

import (
	"github.com/Kariqs/storefront-api/controllers"
	"github.com/Kariqs/storefront-api/metrics"
	"github.com/gin-gonic/gin"
)

func DefaultRoutes(server *gin.Engine, home *controllers.DefaultController) {
	server.GET("/", home.GetHome)
	server.GET("/healthz", home.Healthz)
	server.GET("/metrics", gin.WrapH(metrics.Handler()))
}
