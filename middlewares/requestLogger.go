package middlewares

import (
	"time"

	"github.com/Kariqs/storefront-api/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id and puts a request-scoped logger in the
// request context, where logging.FromContext finds it.
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		started := time.Now()

		requestID := ctx.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Header(RequestIDHeader, requestID)

		logger := base.With(zap.String("request_id", requestID))
		ctx.Request = ctx.Request.WithContext(logging.ContextWithLogger(ctx.Request.Context(), logger))

		ctx.Next()

		fields := []zap.Field{
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("latency", time.Since(started)),
		}
		if id, ok := IdentityFrom(ctx); ok {
			fields = append(fields, zap.Uint("user_id", id.UserID))
		}
		if len(ctx.Errors) > 0 {
			fields = append(fields, zap.String("errors", ctx.Errors.String()))
		}

		switch status := ctx.Writer.Status(); {
		case status >= 500:
			logger.Error("request failed", fields...)
		case status >= 400:
			logger.Warn("request rejected", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}
