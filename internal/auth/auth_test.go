package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/farmgateapp/farmgate/internal/cache"
	"github.com/farmgateapp/farmgate/internal/session"
)

type capturingSender struct {
	phone string
	code  string
}

func (s *capturingSender) SendCode(_ context.Context, phone, code string) error {
	s.phone = phone
	s.code = code
	return nil
}

const testSigningKey = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T, sender CodeSender) (*Service, *session.Manager) {
	t.Helper()

	provider, err := cache.NewMemoryProvider()
	if err != nil {
		t.Fatalf("NewMemoryProvider() error = %v", err)
	}
	sessions := session.NewManager(session.NewMemoryStore())

	service, err := NewService(provider, sessions, sender, testSigningKey, 5*time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return service, sessions
}

func TestRequestCodeRejectsInvalidPhone(t *testing.T) {
	service, _ := newTestService(t, nil)

	for _, phone := range []string{"", "12345", "abcdefghij", "1234567890", "98765432101"} {
		if _, err := service.RequestCode(context.Background(), phone); !errors.Is(err, ErrInvalidPhone) {
			t.Errorf("RequestCode(%q) error = %v, want %v", phone, err, ErrInvalidPhone)
		}
	}
}

func TestRequestAndVerifyCode(t *testing.T) {
	sender := &capturingSender{}
	service, sessions := newTestService(t, sender)

	challenge, err := service.RequestCode(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("RequestCode() error = %v", err)
	}
	if challenge == "" {
		t.Fatal("challenge token is empty")
	}
	if sender.phone != "9876543210" {
		t.Errorf("sender phone = %q, want 9876543210", sender.phone)
	}
	if len(sender.code) != 6 {
		t.Errorf("code = %q, want 6 digits", sender.code)
	}

	bearer, data, err := service.VerifyCode(context.Background(), challenge, sender.code, "Asha")
	if err != nil {
		t.Fatalf("VerifyCode() error = %v", err)
	}
	if data.CustomerPhone != "9876543210" {
		t.Errorf("CustomerPhone = %q, want 9876543210", data.CustomerPhone)
	}
	if data.CustomerName != "Asha" {
		t.Errorf("CustomerName = %q, want Asha", data.CustomerName)
	}

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+bearer)
	got, err := sessions.GetSession(context.Background(), r)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.CustomerPhone != "9876543210" {
		t.Errorf("session CustomerPhone = %q, want 9876543210", got.CustomerPhone)
	}
}

func TestVerifyCodeWrongCode(t *testing.T) {
	sender := &capturingSender{}
	service, _ := newTestService(t, sender)

	challenge, err := service.RequestCode(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("RequestCode() error = %v", err)
	}

	if _, _, err := service.VerifyCode(context.Background(), challenge, "000000", ""); !errors.Is(err, ErrInvalidCode) {
		// generated codes are uniform; a collision with 000000 is
		// possible but the capturing sender lets us avoid flakiness
		if sender.code != "000000" {
			t.Errorf("VerifyCode() error = %v, want %v", err, ErrInvalidCode)
		}
	}

	// correct code still works after a failed attempt
	if _, _, err := service.VerifyCode(context.Background(), challenge, sender.code, ""); err != nil {
		t.Errorf("VerifyCode() with correct code error = %v", err)
	}
}

func TestVerifyCodeSingleUse(t *testing.T) {
	sender := &capturingSender{}
	service, _ := newTestService(t, sender)

	challenge, err := service.RequestCode(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("RequestCode() error = %v", err)
	}
	if _, _, err := service.VerifyCode(context.Background(), challenge, sender.code, ""); err != nil {
		t.Fatalf("VerifyCode() error = %v", err)
	}

	if _, _, err := service.VerifyCode(context.Background(), challenge, sender.code, ""); !errors.Is(err, ErrInvalidChallenge) {
		t.Errorf("second VerifyCode() error = %v, want %v", err, ErrInvalidChallenge)
	}
}

func TestVerifyCodeAttemptLimit(t *testing.T) {
	sender := &capturingSender{}
	service, _ := newTestService(t, sender)

	challenge, err := service.RequestCode(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("RequestCode() error = %v", err)
	}

	wrong := "000000"
	if sender.code == wrong {
		wrong = "000001"
	}
	for i := 0; i < maxVerifyAttempts; i++ {
		if _, _, err := service.VerifyCode(context.Background(), challenge, wrong, ""); !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("attempt %d error = %v, want %v", i+1, err, ErrInvalidCode)
		}
	}

	if _, _, err := service.VerifyCode(context.Background(), challenge, sender.code, ""); !errors.Is(err, ErrTooManyAttempts) {
		t.Errorf("VerifyCode() after limit error = %v, want %v", err, ErrTooManyAttempts)
	}
}

func TestVerifyCodeGarbageToken(t *testing.T) {
	service, _ := newTestService(t, nil)

	if _, _, err := service.VerifyCode(context.Background(), "not-a-jwt", "123456", ""); !errors.Is(err, ErrInvalidChallenge) {
		t.Errorf("VerifyCode() error = %v, want %v", err, ErrInvalidChallenge)
	}
}

func TestReissueReplacesCode(t *testing.T) {
	sender := &capturingSender{}
	service, _ := newTestService(t, sender)

	first, err := service.RequestCode(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("RequestCode() error = %v", err)
	}
	firstCode := sender.code

	if _, err := service.RequestCode(context.Background(), "9876543210"); err != nil {
		t.Fatalf("second RequestCode() error = %v", err)
	}

	if firstCode != sender.code {
		// the old code must no longer verify, even with the old token
		if _, _, err := service.VerifyCode(context.Background(), first, firstCode, ""); !errors.Is(err, ErrInvalidCode) {
			t.Errorf("VerifyCode() with replaced code error = %v, want %v", err, ErrInvalidCode)
		}
	}
}
