// Package session provides server-side session management for
// bearer-token authenticated mobile clients.
package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const ttl = 24 * time.Hour

// Data represents the data stored in a session
type Data struct {
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name"`
	CreatedAt     int64  `json:"created_at"`
}

// Manager handles session creation, validation, and storage
type Manager struct {
	store Store
}

// Store defines the interface for session storage
type Store interface {
	Get(ctx context.Context, key string) (*Data, bool)
	Set(ctx context.Context, key string, data *Data, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Close() error
}

// NewManager creates a new session manager
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

func (m *Manager) Close() error {
	if m == nil || m.store == nil {
		return nil
	}
	return m.store.Close()
}

// CreateSession creates a new session and returns its bearer token.
func (m *Manager) CreateSession(ctx context.Context, data *Data) (string, error) {
	if ctx == nil {
		return "", fmt.Errorf("context is required")
	}
	if data == nil {
		return "", fmt.Errorf("session data is required")
	}

	token := uuid.NewString()

	sessionData := cloneData(data)
	sessionData.CreatedAt = time.Now().Unix()
	m.store.Set(ctx, token, sessionData, ttl)

	return token, nil
}

// GetSession retrieves the session data for the request's bearer token.
func (m *Manager) GetSession(ctx context.Context, r *http.Request) (*Data, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, fmt.Errorf("no bearer token found")
	}

	if ctx == nil {
		ctx = r.Context()
	}

	data, ok := m.store.Get(ctx, token)
	if !ok {
		return nil, fmt.Errorf("session not found or expired")
	}

	if time.Now().Unix()-data.CreatedAt > int64(ttl.Seconds()) {
		m.store.Delete(ctx, token)
		return nil, fmt.Errorf("session expired")
	}

	return data, nil
}

// DestroySession removes the session for the request's bearer token.
func (m *Manager) DestroySession(ctx context.Context, r *http.Request) error {
	token := bearerToken(r)
	if token == "" {
		return nil
	}
	if ctx == nil {
		ctx = r.Context()
	}
	m.store.Delete(ctx, token)
	return nil
}

func bearerToken(r *http.Request) string {
	if r == nil {
		return ""
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func cloneData(data *Data) *Data {
	if data == nil {
		return nil
	}
	cloned := *data
	return &cloned
}
