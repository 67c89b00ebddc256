package kvstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const scanCount = 1000

// RedisStore keeps every entry as a plain redis string under the given namespace.
type RedisStore struct {
	rc        *redis.Client
	namespace string
}

// NewRedisStore wraps rc. namespace is prepended to every key so several deployments can share
// one database.
func NewRedisStore(rc *redis.Client, namespace string) *RedisStore {
	return &RedisStore{rc: rc, namespace: namespace}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rc.Get(ctx, s.namespace+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.namespace + k
	}
	vals, err := s.rc.MGet(ctx, full...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if str, ok := v.(string); ok {
			out[keys[i]] = str
		}
	}
	return out, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.rc.Set(ctx, s.namespace+key, value, 0).Err()
}

func (s *RedisStore) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	return s.rc.SetNX(ctx, s.namespace+key, value, 0).Result()
}

// Keys walks the keyspace with SCAN so large databases are never blocked by KEYS.
func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		cursor uint64
		out    []string
	)
	for {
		keys, cur, err := s.rc.Scan(ctx, cursor, s.namespace+prefix+"*", scanCount).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			out = append(out, k[len(s.namespace):])
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.rc.Close()
}

var _ Store = (*RedisStore)(nil)
