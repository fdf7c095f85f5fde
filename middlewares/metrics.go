package middlewares

import (
	"strconv"
	"time"

	"github.com/Kariqs/storefront-api/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency by route template, so /orders/1 and
// /orders/2 share a series.
func Metrics() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		started := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(ctx.Request.Method, route).Observe(time.Since(started).Seconds())
	}
}
