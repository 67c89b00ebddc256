// Package kvstore is the API server's key/value engine. Values are opaque strings, in practice
// JSON documents; keys are namespaced by prefix ("post:", "account:").
package kvstore

import "context"

// Store is implemented by RedisStore and GormStore.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// GetMany returns the values of the keys that exist.
	GetMany(ctx context.Context, keys []string) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
	// SetIfAbsent stores value only when key is unused and reports whether it did.
	SetIfAbsent(ctx context.Context, key, value string) (bool, error)
	// Keys lists every key starting with prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
