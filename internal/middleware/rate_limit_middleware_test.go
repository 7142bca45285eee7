package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newLimitedRouter(rl *RateLimiter, cfg RateLimitConfig) *gin.Engine {
	r := gin.New()
	r.POST("/api/otp/send", rl.Limit(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func doPost(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = "203.0.113.7:5555"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	r := newLimitedRouter(NewRateLimiter(client), OTPRateLimitConfig(2, time.Minute))

	assert.Equal(t, http.StatusOK, doPost(r, "/api/otp/send").Code)
	w := doPost(r, "/api/otp/send")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = doPost(r, "/api/otp/send")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"error_type":"rate_limited"`)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	r := newLimitedRouter(NewRateLimiter(client), OTPRateLimitConfig(1, time.Minute))

	require.Equal(t, http.StatusOK, doPost(r, "/api/otp/send").Code)
	require.Equal(t, http.StatusTooManyRequests, doPost(r, "/api/otp/send").Code)

	mr.FastForward(61 * time.Second)
	assert.Equal(t, http.StatusOK, doPost(r, "/api/otp/send").Code)
}

func TestRateLimiter_FailOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	r := newLimitedRouter(NewRateLimiter(client), OTPRateLimitConfig(1, time.Minute))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doPost(r, "/api/otp/send").Code)
	}
}

func TestRateLimiter_NilClientDisabled(t *testing.T) {
	r := newLimitedRouter(NewRateLimiter(nil), OTPRateLimitConfig(1, time.Minute))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doPost(r, "/api/otp/send").Code)
	}
}

func TestRateLimiter_LimitByIPSharesCounterAcrossRoutes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	rl := NewRateLimiter(client)
	r := gin.New()
	group := r.Group("/api/otp", rl.LimitByIP(OTPRateLimitConfig(1, time.Minute)))
	group.POST("/send", func(c *gin.Context) { c.Status(http.StatusOK) })
	group.POST("/verify", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doPost(r, "/api/otp/send").Code)
	assert.Equal(t, http.StatusTooManyRequests, doPost(r, "/api/otp/verify").Code)
}
