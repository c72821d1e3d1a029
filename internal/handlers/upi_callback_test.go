package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/farmgateapp/farmgate/internal/cache"
	"github.com/farmgateapp/farmgate/internal/config"
	"github.com/farmgateapp/farmgate/internal/payment"
)

func newCallbackHandlers(t *testing.T) (*Handlers, *payment.Events) {
	t.Helper()

	provider, err := cache.NewMemoryProvider()
	if err != nil {
		t.Fatalf("NewMemoryProvider() error = %v", err)
	}
	events := payment.NewEvents()

	return &Handlers{
		config:        &config.Config{UPICallbackSecret: "s3cret"},
		cacheProvider: provider,
		paymentEvents: events,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, events
}

func TestUPICallback(t *testing.T) {
	h, events := newCallbackHandlers(t)

	var received []payment.Confirmation
	if err := events.Subscribe(func(c payment.Confirmation) {
		received = append(received, c)
	}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	r := httptest.NewRequest("GET", "/callbacks/upi?secret=s3cret&txnRef=T123&Status=SUCCESS", nil)
	w := httptest.NewRecorder()
	h.UPICallback(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if len(received) != 1 {
		t.Fatalf("confirmations = %d, want 1", len(received))
	}
	if received[0].TransactionID != "T123" {
		t.Errorf("TransactionID = %q, want T123", received[0].TransactionID)
	}
	if received[0].Status != payment.CallbackSuccess {
		t.Errorf("Status = %q, want %q", received[0].Status, payment.CallbackSuccess)
	}
}

func TestUPICallbackIdempotent(t *testing.T) {
	h, events := newCallbackHandlers(t)

	var received int
	if err := events.Subscribe(func(payment.Confirmation) { received++ }); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		r := httptest.NewRequest("GET", "/callbacks/upi?secret=s3cret&txnRef=T456&status=failure", nil)
		w := httptest.NewRecorder()
		h.UPICallback(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("attempt %d status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}

	if received != 1 {
		t.Errorf("confirmations = %d, want 1 despite retries", received)
	}
}

func TestUPICallbackBadSecret(t *testing.T) {
	h, events := newCallbackHandlers(t)

	var received int
	if err := events.Subscribe(func(payment.Confirmation) { received++ }); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	r := httptest.NewRequest("GET", "/callbacks/upi?secret=wrong&txnRef=T789&status=success", nil)
	w := httptest.NewRecorder()
	h.UPICallback(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if received != 0 {
		t.Errorf("confirmations = %d, want 0", received)
	}
}

func TestUPICallbackSecretHeader(t *testing.T) {
	h, _ := newCallbackHandlers(t)

	r := httptest.NewRequest("POST", "/callbacks/upi?txnRef=T321&status=submitted", nil)
	r.Header.Set("X-Callback-Secret", "s3cret")
	w := httptest.NewRecorder()
	h.UPICallback(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestUPICallbackRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"missing transaction id", "/callbacks/upi?secret=s3cret&status=success"},
		{"unknown status", "/callbacks/upi?secret=s3cret&txnRef=T1&status=maybe"},
		{"no status", "/callbacks/upi?secret=s3cret&txnRef=T1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newCallbackHandlers(t)
			r := httptest.NewRequest("GET", tt.url, nil)
			w := httptest.NewRecorder()
			h.UPICallback(w, r)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}
