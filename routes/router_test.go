package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/arz/config"
	"github.com/cppla/arz/kvstore"
	"github.com/cppla/arz/models"
	"github.com/cppla/arz/remote"
)

func newTestRouter(t *testing.T) *httptest.Server {
	t.Helper()
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	cfg.GinMode = "test"
	cfg.GinPath = filepath.Join(t.TempDir(), "gin.log")
	cfg.AllowedOrigins = []string{"http://localhost:5173"}
	cfg.RateLimitPerMinute = 6000

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	kv := kvstore.NewRedisStore(rc, "arz:")
	t.Cleanup(func() { _ = kv.Close() })

	srv := httptest.NewServer(SetupRouter(cfg, Deps{KV: kv}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthAndNoRoute(t *testing.T) {
	srv := newTestRouter(t)

	resp, err := http.Get(srv.URL + "/test")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestRouter(t)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/posts", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

// The client adapter and the server agree on the wire contract.
func TestRemoteClientRoundTrip(t *testing.T) {
	srv := newTestRouter(t)
	c := remote.NewClient(srv.URL)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	posts, err := c.FetchPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)

	created, err := c.CreatePost(ctx, models.Post{Title: "Sunset", Category: "Photography", Author: "alice"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	likes := 2
	require.NoError(t, c.UpdatePost(ctx, created.ID, models.PostPatch{Likes: &likes}))
	posts, err = c.FetchPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 2, posts[0].Likes)

	err = c.UpdatePost(ctx, 42, models.PostPatch{Likes: &likes})
	var se *remote.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)

	u, err := c.Register(ctx, models.UserDraft{Username: "alice", Email: "alice@example.com", Password: "pw", ProfilePic: "pic"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Empty(t, u.Password)

	u, err = c.Login(ctx, models.Credentials{Email: "alice@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "pic", u.ProfilePic)

	_, err = c.Login(ctx, models.Credentials{Email: "alice@example.com", Password: "bad"})
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
}
