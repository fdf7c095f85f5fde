package middlewares

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Kariqs/storefront-api/logging"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "Idempotent-Replayed"

	statePending   = "pending"
	stateCompleted = "completed"

	redisTimeout = 2 * time.Second
)

type storedResponse struct {
	State       string `json:"state"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency makes retried requests carrying the same Idempotency-Key safe. The
// first request reserves the key; once it finishes without a server error its
// response is stored and replayed for later requests with that key. A request whose
// key is still reserved gets 409. When Redis is unreachable requests pass through.
func Idempotency(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := ctx.GetHeader(IdempotencyKeyHeader)
		if rdb == nil || key == "" {
			ctx.Next()
			return
		}
		logger := logging.FromContext(ctx.Request.Context())
		redisKey := idempotencyRedisKey(ctx, key)

		reserved, err := reserve(ctx.Request.Context(), rdb, redisKey, ttl)
		if err != nil {
			logger.Warn("idempotency store unavailable, continuing without it", zap.Error(err))
			ctx.Next()
			return
		}

		if !reserved {
			stored, err := load(ctx.Request.Context(), rdb, redisKey)
			switch {
			case err != nil:
				logger.Warn("idempotency record unreadable, continuing without it", zap.Error(err))
				ctx.Next()
			case stored.State == stateCompleted:
				ctx.Header(ReplayedHeader, "true")
				ctx.Data(stored.Status, stored.ContentType, stored.Body)
				ctx.Abort()
			default:
				ctx.AbortWithStatusJSON(http.StatusConflict, gin.H{
					"message": "A request with this Idempotency-Key is still being processed",
					"error":   "idempotency key in use",
				})
			}
			return
		}

		writer := &capturingWriter{ResponseWriter: ctx.Writer}
		ctx.Writer = writer

		finished := false
		defer func() {
			// handler panicked
			if !finished {
				releaseKey(ctx.Request.Context(), rdb, redisKey, logger)
			}
		}()
		ctx.Next()
		finished = true

		if writer.Status() >= http.StatusInternalServerError {
			releaseKey(ctx.Request.Context(), rdb, redisKey, logger)
			return
		}

		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx.Request.Context()), redisTimeout)
		defer cancel()

		record, err := json.Marshal(storedResponse{
			State:       stateCompleted,
			Status:      writer.Status(),
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		})
		if err == nil {
			err = rdb.Set(bg, redisKey, record, ttl).Err()
		}
		if err != nil {
			logger.Warn("store idempotent response", zap.Error(err))
		}
	}
}

func releaseKey(ctx context.Context, rdb *redis.Client, key string, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), redisTimeout)
	defer cancel()
	if err := rdb.Del(ctx, key).Err(); err != nil {
		logger.Warn("release idempotency key", zap.Error(err))
	}
}

func idempotencyRedisKey(ctx *gin.Context, key string) string {
	owner := "guest"
	if id, ok := IdentityFrom(ctx); ok {
		owner = fmt.Sprintf("user:%d", id.UserID)
	}
	return fmt.Sprintf("idempotency:%s:%s:%s:%s", ctx.Request.Method, ctx.FullPath(), owner, key)
}

func reserve(ctx context.Context, rdb *redis.Client, key string, ttl time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	pending, _ := json.Marshal(storedResponse{State: statePending})
	return rdb.SetNX(ctx, key, pending, ttl).Result()
}

func load(ctx context.Context, rdb *redis.Client, key string) (*storedResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	raw, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		// released between SETNX and GET; treat as still in flight
		return &storedResponse{State: statePending}, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedResponse
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}
