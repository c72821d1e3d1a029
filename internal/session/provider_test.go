package session

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	data := &Data{CustomerPhone: "+919876543210", CustomerName: "Arun"}

	store.Set(context.Background(), "token-1", data, time.Minute)

	got, ok := store.Get(context.Background(), "token-1")
	if !ok {
		t.Fatal("expected session to exist")
	}
	if got.CustomerPhone != data.CustomerPhone {
		t.Errorf("expected phone %q, got %q", data.CustomerPhone, got.CustomerPhone)
	}

	// mutating the returned copy must not affect the stored session
	got.CustomerName = "changed"
	again, _ := store.Get(context.Background(), "token-1")
	if again.CustomerName != "Arun" {
		t.Error("store returned shared session data")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	store.Set(context.Background(), "token-1", &Data{CustomerPhone: "+911111111111"}, -time.Second)

	if _, ok := store.Get(context.Background(), "token-1"); ok {
		t.Error("expected expired session to be gone")
	}
}

func TestNewStoreUnsupportedProvider(t *testing.T) {
	t.Parallel()

	if _, err := NewStore(context.Background(), Config{Provider: "etcd"}); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestManagerBearerToken(t *testing.T) {
	t.Parallel()

	manager := NewManager(NewMemoryStore())

	token, err := manager.CreateSession(context.Background(), &Data{CustomerPhone: "+919876543210"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := httptest.NewRequest("GET", "/api/v1/subscriptions", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	data, err := manager.GetSession(context.Background(), r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.CustomerPhone != "+919876543210" {
		t.Errorf("unexpected session data: %+v", data)
	}

	noAuth := httptest.NewRequest("GET", "/api/v1/subscriptions", nil)
	if _, err := manager.GetSession(context.Background(), noAuth); err == nil {
		t.Error("expected error without bearer token")
	}

	if err := manager.DestroySession(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := manager.GetSession(context.Background(), r); err == nil {
		t.Error("expected error after destroy")
	}
}
