package routes

import (
	"time"

	"github.com/Kariqs/storefront-api/controllers"
	"github.com/Kariqs/storefront-api/middlewares"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ServerDeps struct {
	Logger         *zap.Logger
	AllowedOrigins []string
	Guards         Guards

	Default  *controllers.DefaultController
	Auth     *controllers.AuthController
	Users    *controllers.UserController
	Products *controllers.ProductController
	Cart     *controllers.CartController
	Orders   *controllers.OrderController
	Payments *controllers.PaymentController
}

// NewServer builds the gin engine with the global middleware chain and every route
// group mounted.
func NewServer(d ServerDeps) *gin.Engine {
	server := gin.New()
	server.Use(
		gin.Recovery(),
		middlewares.RequestLogger(d.Logger),
		middlewares.Metrics(),
		cors.New(cors.Config{
			AllowOrigins:     d.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middlewares.IdempotencyKeyHeader, middlewares.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", middlewares.RequestIDHeader, middlewares.ReplayedHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	DefaultRoutes(server, d.Default)
	AuthRoutes(server, d.Auth)
	UserRoutes(server, d.Users, d.Guards)
	ProductRoutes(server, d.Products, d.Guards)
	CartRoutes(server, d.Cart, d.Guards)
	OrderRoutes(server, d.Orders, d.Guards)
	PaymentRoutes(server, d.Payments, d.Guards)
	return server
}
