package routes

import "github.com/gin-gonic/gin"

// Guards are the per-route middlewares shared by the route groups.
type Guards struct {
	Auth        gin.HandlerFunc
	Admin       gin.HandlerFunc
	Idempotency gin.HandlerFunc
}
