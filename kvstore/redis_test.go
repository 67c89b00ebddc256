package kvstore

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(rc, "arz:")
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisGetSet(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "post:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "post:1", `{"id":1}`))
	v, ok, err := s.Get(ctx, "post:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":1}`, v)

	got, err := mr.Get("arz:post:1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, got)
}

func TestRedisSetIfAbsent(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	ok, err := s.SetIfAbsent(ctx, "account:a@x", "first")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetIfAbsent(ctx, "account:a@x", "second")
	require.NoError(t, err)
	assert.False(t, ok)

	v, _, _ := s.Get(ctx, "account:a@x")
	assert.Equal(t, "first", v)
}

func TestRedisKeysAndGetMany(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()
	for i := 0; i < 1500; i++ {
		require.NoError(t, s.Set(ctx, fmt.Sprintf("post:%d", i), "x"))
	}
	require.NoError(t, s.Set(ctx, "account:a@x", "y"))
	require.NoError(t, mr.Set("other:post:1", "foreign"))

	keys, err := s.Keys(ctx, "post:")
	require.NoError(t, err)
	assert.Len(t, keys, 1500)
	sort.Strings(keys)
	assert.Equal(t, "post:0", keys[0])

	vals, err := s.GetMany(ctx, []string{"post:1", "post:missing", "account:a@x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"post:1": "x", "account:a@x": "y"}, vals)

	empty, err := s.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRedisUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	s := NewRedisStore(rc, "")
	defer s.Close()
	mr.Close()

	_, _, err = s.Get(context.Background(), "post:1")
	assert.Error(t, err)
}
