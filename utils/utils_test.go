package utils

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Sunset", SanitizeText("  <b>Sunset</b> "))
	assert.Equal(t, "hi", SanitizeText(`<script>alert(1)</script>hi`))
	assert.Equal(t, "Tom & Jerry's", SanitizeText("Tom & Jerry's"))
	assert.Equal(t, "x < y", SanitizeText("x < y"))
}

func TestSanitizeTextEntityEncodedMarkup(t *testing.T) {
	cases := []struct{ in, want string }{
		{"&lt;script&gt;alert(1)&lt;/script&gt;", ""},
		{"&lt;img src=x onerror=alert(1)&gt;Dusk", "Dusk"},
		{"<<b>img src=x onerror=alert(1)>", ""},
		{"Fish &amp; chips", "Fish & chips"},
		// Double-encoded markup settles as literal entity text.
		{"&amp;lt;b&amp;gt;bold&amp;lt;/b&amp;gt;", "&lt;b&gt;bold&lt;/b&gt;"},
	}
	for _, tc := range cases {
		got := SanitizeText(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.NotContains(t, got, "<", tc.in)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", "s3cret"))
}

func TestCache(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

	_, ok := c.GetBytes("cache:posts:list")
	assert.False(t, ok)

	c.SetBytes("cache:posts:list", []byte(`{"posts":[]}`))
	c.SetBytes("cache:posts:7", []byte(`{}`))
	c.SetBytes("cache:other", []byte(`{}`))
	b, ok := c.GetBytes("cache:posts:list")
	require.True(t, ok)
	assert.Equal(t, `{"posts":[]}`, string(b))
	assert.Equal(t, time.Minute, mr.TTL("cache:posts:list"))

	c.InvalidateByPrefix("cache:posts:")
	assert.False(t, mr.Exists("cache:posts:list"))
	assert.False(t, mr.Exists("cache:posts:7"))
	assert.True(t, mr.Exists("cache:other"))
}

func TestNilCacheIsMiss(t *testing.T) {
	var c *Cache
	c.SetBytes("k", []byte("v"))
	c.InvalidateByPrefix("k")
	_, ok := c.GetBytes("k")
	assert.False(t, ok)
}

func TestGinzapAndRecovery(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core)

	r := gin.New()
	r.Use(Ginzap(l, time.RFC3339, true), RecoveryWithZap(l, false))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/boom", func(c *gin.Context) { panic(errors.New("boom")) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":50000,"message":"internal server error"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	assert.Equal(t, 1, logs.FilterMessage("recovery from panic").Len())
	assert.Equal(t, 1, logs.FilterMessage("/ok").Len())
}

func TestServerStopRunsHooks(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer("", http.NotFoundHandler(), time.Second, time.Second)
	hooked := make(chan struct{})
	srv.OnShutdown(func() { close(hooked) })

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusNotFound
	}, 2*time.Second, 20*time.Millisecond)

	srv.Stop()
	require.NoError(t, <-done)
	<-hooked
}

func TestRegisterGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	g := NewRegisterGuard(rc, 2*time.Second, 2)
	assert.True(t, g.CooldownTry("1.2.3.4"))
	assert.False(t, g.CooldownTry("1.2.3.4"))
	assert.True(t, g.CooldownTry("5.6.7.8"))
	mr.FastForward(3 * time.Second)
	assert.True(t, g.CooldownTry("1.2.3.4"))

	assert.True(t, g.DailyLimitCheck("1.2.3.4"))
	g.DailyIncrement("1.2.3.4")
	assert.True(t, g.DailyLimitCheck("1.2.3.4"))
	g.DailyIncrement("1.2.3.4")
	assert.False(t, g.DailyLimitCheck("1.2.3.4"))
	assert.True(t, g.DailyLimitCheck("5.6.7.8"))

	var nilGuard *RegisterGuard
	assert.True(t, nilGuard.CooldownTry("1.2.3.4"))
	assert.True(t, nilGuard.DailyLimitCheck("1.2.3.4"))
}
