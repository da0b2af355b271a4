package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/dininghall/backend/internal/logging"
)

func newLimiter(t *testing.T, limit int) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rl := NewRateLimiter(client, RateLimitConfig{Window: time.Minute, Limit: limit, KeyPrefix: "rate_limit:test"}, logging.Discard())
	rl.now = func() time.Time { return time.Date(2025, 11, 7, 12, 0, 30, 0, time.UTC) }
	return rl, mr
}

func TestRateLimiterIsAllowed(t *testing.T) {
	rl, mr := newLimiter(t, 2)
	ctx := context.Background()

	remaining, _, err := rl.Remaining(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	for i := 1; i <= 2; i++ {
		allowed, remaining, reset, err := rl.IsAllowed(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 2-i, remaining)
		assert.Equal(t, time.Date(2025, 11, 7, 12, 1, 0, 0, time.UTC), reset)
	}

	allowed, remaining, _, err := rl.IsAllowed(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)

	allowed, _, _, err = rl.IsAllowed(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, allowed, "clients are counted separately")

	key := rl.key("10.0.0.1", time.Date(2025, 11, 7, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, mr := newLimiter(t, 1)
	r := gin.New()
	r.Use(rl.Middleware())
	r.POST("/chat", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/chat", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/chat", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))

	mr.Close()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/chat", nil))
	assert.Equal(t, http.StatusOK, w.Code, "fails open without redis")
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Error"))
}
