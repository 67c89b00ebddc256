package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	l := newIPLimiters(4, func() time.Time { return now })

	r := gin.New()
	r.Use(rateLimit(l))
	r.GET("/posts", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/posts", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	// burst is half the per-minute rate
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2"))

	now = now.Add(15 * time.Second)
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
}

func TestIdleLimitersExpire(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	l := newIPLimiters(60, func() time.Time { return now })
	l.allow("10.0.0.1")
	assert.Len(t, l.limiters, 1)

	now = now.Add(limiterIdleTTL + time.Second)
	l.allow("10.0.0.2")
	assert.Len(t, l.limiters, 1)
	_, ok := l.limiters["10.0.0.2"]
	assert.True(t, ok)
}
