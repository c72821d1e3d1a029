// Package cache provides caching for callback idempotency and resolved
// delivery addresses.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned for missing or expired keys.
var ErrNotFound = errors.New("key not found")

// Provider defines the interface for the shared key-value cache.
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Provider              string
	RedisConnectionString string
}

func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryProvider()
	case "redis":
		return NewRedisProvider(cfg.RedisConnectionString)
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

// CallbackKey dedupes inbound payment callbacks by transaction id.
func CallbackKey(source, transactionID string) string {
	return fmt.Sprintf("callback:%s:%s", source, transactionID)
}

// AddressKey holds the single cached delivery address per customer.
func AddressKey(customerPhone string) string {
	return fmt.Sprintf("address:%s", customerPhone)
}
