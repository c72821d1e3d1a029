package notify

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/farmgateapp/farmgate/internal/models"
)

type capturingProvider struct {
	sent []*Email
}

func (p *capturingProvider) SendEmail(_ context.Context, email *Email) error {
	p.sent = append(p.sent, email)
	return nil
}

func (p *capturingProvider) ValidateAPIKey(context.Context) error { return nil }

func TestFormatPaise(t *testing.T) {
	tests := []struct {
		paise int
		want  string
	}{
		{3000, "Rs 30.00"},
		{6050, "Rs 60.50"},
		{5, "Rs 0.05"},
		{0, "Rs 0.00"},
	}
	for _, tt := range tests {
		if got := FormatPaise(tt.paise); got != tt.want {
			t.Errorf("FormatPaise(%d) = %q, want %q", tt.paise, got, tt.want)
		}
	}
}

func TestSendReceipt(t *testing.T) {
	provider := &capturingProvider{}
	notifier := NewReceiptNotifier(provider, "orders@farmgate.example", "Farm Gate", slog.New(slog.NewTextHandler(io.Discard, nil)))

	order := &models.Order{
		ID:            uuid.New(),
		CustomerPhone: "9876543210",
		ProductName:   "Cow Milk",
		Quantity:      "500ml",
		PaymentMethod: models.PaymentUPI,
		TotalPaise:    3000,
		CreatedAt:     time.Date(2025, time.October, 5, 8, 0, 0, 0, time.UTC),
	}
	if err := notifier.SendReceipt(context.Background(), order); err != nil {
		t.Fatalf("SendReceipt() error = %v", err)
	}

	if len(provider.sent) != 1 {
		t.Fatalf("sent = %d emails, want 1", len(provider.sent))
	}
	email := provider.sent[0]
	if email.To != "orders@farmgate.example" {
		t.Errorf("To = %q, want orders@farmgate.example", email.To)
	}
	if !strings.Contains(email.Subject, "Farm Gate") {
		t.Errorf("Subject = %q, want shop name included", email.Subject)
	}
	for _, want := range []string{"Cow Milk", "500ml", "Rs 30.00", "9876543210", "October 5, 2025"} {
		if !strings.Contains(email.Text, want) {
			t.Errorf("Text missing %q:\n%s", want, email.Text)
		}
		if !strings.Contains(email.HTML, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestSendReceiptDisabled(t *testing.T) {
	// nil provider and empty recipient are both no-ops
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	order := &models.Order{ID: uuid.New()}

	if err := NewReceiptNotifier(nil, "orders@farmgate.example", "Farm Gate", logger).SendReceipt(context.Background(), order); err != nil {
		t.Errorf("SendReceipt() with nil provider error = %v", err)
	}
	if err := NewReceiptNotifier(&capturingProvider{}, "", "Farm Gate", logger).SendReceipt(context.Background(), order); err != nil {
		t.Errorf("SendReceipt() with empty recipient error = %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	if p, err := NewProvider(Config{}); err != nil || p != nil {
		t.Errorf("NewProvider(empty) = %v, %v, want nil, nil", p, err)
	}
	if p, err := NewProvider(Config{Provider: "resend", APIKey: "re_test", From: "no-reply@farmgate.example"}); err != nil || p == nil {
		t.Errorf("NewProvider(resend) = %v, %v, want provider, nil", p, err)
	}
	if _, err := NewProvider(Config{Provider: "sendgrid"}); err == nil {
		t.Error("NewProvider(sendgrid) error = nil, want unsupported provider error")
	}
}
