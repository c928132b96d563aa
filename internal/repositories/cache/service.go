// Package cache implements the side cache used to accelerate merchant reads.
// Values are stored as JSON so every backend returns an independent copy.
package cache

import (
	"context"
	"fmt"
	"time"

	"merchantapi/internal/config"
)

// DefaultTTL is the entry lifetime used when none is configured.
const DefaultTTL = 10 * time.Minute

// Store is a key-value cache with time-bounded entries. The entry lifetime is
// fixed when the store is built.
type Store interface {
	// Get decodes the value under key into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// New builds the store selected by cfg.Driver.
func New(cfg config.CacheConfig, redisCfg config.RedisConfig) (Store, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedisStore(NewRedisClient(redisCfg), cfg.TTL), nil
	case "memory":
		return NewMemoryStore(cfg.Capacity, cfg.TTL)
	default:
		return nil, fmt.Errorf("unsupported cache driver %q", cfg.Driver)
	}
}
