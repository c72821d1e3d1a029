package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// maxMemoryEntries bounds the in-process cache. OTP codes, callback
// markers and one address per customer stay well under this for a
// single-farm deployment.
const maxMemoryEntries = 4096

// MemoryProvider is an in-process LRU cache with per-entry expiry.
type MemoryProvider struct {
	entries *lru.Cache[string, entry]
}

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired() bool {
	return time.Now().After(e.expiresAt)
}

func NewMemoryProvider() (*MemoryProvider, error) {
	c, err := lru.New[string, entry](maxMemoryEntries)
	if err != nil {
		return nil, err
	}
	return &MemoryProvider{entries: c}, nil
}

func (m *MemoryProvider) Get(_ context.Context, key string) (string, error) {
	cached, exists := m.entries.Get(key)
	if !exists {
		return "", ErrNotFound
	}
	if cached.expired() {
		m.entries.Remove(key)
		return "", ErrNotFound
	}
	return cached.value, nil
}

func (m *MemoryProvider) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.entries.Add(key, entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

func (m *MemoryProvider) Delete(_ context.Context, key string) error {
	m.entries.Remove(key)
	return nil
}

func (m *MemoryProvider) Close() error {
	return nil
}
