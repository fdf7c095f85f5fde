package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Kariqs/storefront-api/logging"
	"github.com/Kariqs/storefront-api/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func bearer(t *testing.T, userID uint, role string, now time.Time) string {
	t.Helper()
	token, err := IssueToken(testSecret, userID, "u@example.com", role, now)
	require.NoError(t, err)
	return "Bearer " + token
}

func authEngine() *gin.Engine {
	r := gin.New()
	r.GET("/me", RequireAuth(testSecret), func(c *gin.Context) {
		id, _ := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"userId": id.UserID, "role": id.Role})
	})
	r.GET("/admin", RequireAuth(testSecret), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r := authEngine()
	now := time.Now()

	w := do(r, http.MethodGet, "/me", map[string]string{"Authorization": bearer(t, 7, models.RoleUser, now)})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":7,"role":"user"}`, w.Body.String())

	w = do(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired := bearer(t, 7, models.RoleUser, now.Add(-31*24*time.Hour))
	w = do(r, http.MethodGet, "/me", map[string]string{"Authorization": expired})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	forged, err := IssueToken("other-secret", 7, "u@example.com", models.RoleAdmin, now)
	require.NoError(t, err)
	w = do(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + forged})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	r := authEngine()
	now := time.Now()

	w := do(r, http.MethodGet, "/admin", map[string]string{"Authorization": bearer(t, 7, models.RoleUser, now)})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/admin", map[string]string{"Authorization": bearer(t, 1, models.RoleAdmin, now)})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ping", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusOK)
	})

	w := do(r, http.MethodGet, "/ping", map[string]string{RequestIDHeader: "req-1"})
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "inside handler", entries[0].Message)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "request completed", entries[1].Message)
	assert.Equal(t, int64(http.StatusOK), entries[1].ContextMap()["status"])

	w = do(r, http.MethodGet, "/ping", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func idempotentEngine(rdb *redis.Client, calls *int, status func() int) *gin.Engine {
	r := gin.New()
	r.POST("/orders/guest", Idempotency(rdb, time.Hour), func(c *gin.Context) {
		*calls++
		c.JSON(status(), gin.H{"orderId": *calls})
	})
	return r
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	_, rdb := newRedis(t)
	calls := 0
	r := idempotentEngine(rdb, &calls, func() int { return http.StatusCreated })
	headers := map[string]string{IdempotencyKeyHeader: "abc"}

	first := do(r, http.MethodPost, "/orders/guest", headers)
	second := do(r, http.MethodPost, "/orders/guest", headers)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(ReplayedHeader))
	assert.Contains(t, second.Header().Get("Content-Type"), "application/json")

	do(r, http.MethodPost, "/orders/guest", map[string]string{IdempotencyKeyHeader: "other"})
	do(r, http.MethodPost, "/orders/guest", nil)
	assert.Equal(t, 3, calls)
}

func TestIdempotency_InFlightKeyConflicts(t *testing.T) {
	mr, rdb := newRedis(t)
	calls := 0
	r := idempotentEngine(rdb, &calls, func() int { return http.StatusCreated })
	require.NoError(t, mr.Set("idempotency:POST:/orders/guest:guest:abc", `{"state":"pending"}`))

	w := do(r, http.MethodPost, "/orders/guest", map[string]string{IdempotencyKeyHeader: "abc"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, calls)
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	_, rdb := newRedis(t)
	calls := 0
	statuses := []int{http.StatusInternalServerError, http.StatusCreated}
	r := idempotentEngine(rdb, &calls, func() int { return statuses[calls-1] })
	headers := map[string]string{IdempotencyKeyHeader: "abc"}

	w := do(r, http.MethodPost, "/orders/guest", headers)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	w = do(r, http.MethodPost, "/orders/guest", headers)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotency_PanicReleasesKey(t *testing.T) {
	mr, rdb := newRedis(t)
	calls := 0
	r := gin.New()
	r.Use(gin.Recovery())
	r.POST("/orders/guest", Idempotency(rdb, time.Hour), func(c *gin.Context) {
		calls++
		if calls == 1 {
			panic("handler blew up")
		}
		c.JSON(http.StatusCreated, gin.H{"orderId": calls})
	})
	headers := map[string]string{IdempotencyKeyHeader: "abc"}

	w := do(r, http.MethodPost, "/orders/guest", headers)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, mr.Exists("idempotency:POST:/orders/guest:guest:abc"))

	w = do(r, http.MethodPost, "/orders/guest", headers)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get(ReplayedHeader))
	assert.Equal(t, 2, calls)
}

func TestIdempotency_FailsOpenWithoutRedis(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	calls := 0
	r := idempotentEngine(rdb, &calls, func() int { return http.StatusCreated })
	headers := map[string]string{IdempotencyKeyHeader: "abc"}

	do(r, http.MethodPost, "/orders/guest", headers)
	w := do(r, http.MethodPost, "/orders/guest", headers)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 2, calls)
}
