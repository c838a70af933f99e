package cache

import (
	"context"
	"time"
)

// Cache is the key/value contract shared by the Redis and in-process
// implementations. Values are JSON encoded.
type Cache interface {
	// Get unmarshals the value at key into dest.
	// Returns found=false on a miss, leaving dest untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with the given TTL (0 = no expiry).
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error
}
