package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/farmgateapp/farmgate/internal/cache"
	"github.com/farmgateapp/farmgate/internal/crypto"
)

const addressTTL = 24 * time.Hour

// AddressStore keeps one resolved address per customer. Addresses are
// personal data, so the cached value is encrypted.
type AddressStore struct {
	cache     cache.Provider
	encryptor crypto.Encryptor
}

func NewAddressStore(cacheProvider cache.Provider, encryptor crypto.Encryptor) (*AddressStore, error) {
	if cacheProvider == nil {
		return nil, fmt.Errorf("cache provider is required")
	}
	if encryptor == nil {
		return nil, fmt.Errorf("encryptor is required")
	}
	return &AddressStore{cache: cacheProvider, encryptor: encryptor}, nil
}

func (s *AddressStore) Save(ctx context.Context, customerPhone string, address *Address) error {
	raw, err := json.Marshal(address)
	if err != nil {
		return fmt.Errorf("failed to marshal address: %w", err)
	}
	sealed, err := s.encryptor.Encrypt(string(raw))
	if err != nil {
		return fmt.Errorf("failed to encrypt address: %w", err)
	}
	if err := s.cache.Set(ctx, cache.AddressKey(customerPhone), sealed, addressTTL); err != nil {
		return fmt.Errorf("failed to cache address: %w", err)
	}
	return nil
}

// Load returns the cached address, or cache.ErrNotFound when the
// customer has none.
func (s *AddressStore) Load(ctx context.Context, customerPhone string) (*Address, error) {
	sealed, err := s.cache.Get(ctx, cache.AddressKey(customerPhone))
	if err != nil {
		return nil, err
	}
	raw, err := s.encryptor.Decrypt(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt address: %w", err)
	}
	var address Address
	if err := json.Unmarshal([]byte(raw), &address); err != nil {
		return nil, fmt.Errorf("failed to unmarshal address: %w", err)
	}
	return &address, nil
}

func (s *AddressStore) Clear(ctx context.Context, customerPhone string) error {
	return s.cache.Delete(ctx, cache.AddressKey(customerPhone))
}
