// Package notify sends order receipts to the farm's back-office inbox
// once a payment is confirmed.
package notify

import (
	"context"
	"fmt"
)

type Provider interface {
	SendEmail(ctx context.Context, email *Email) error
	ValidateAPIKey(ctx context.Context) error
}

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Config struct {
	Provider string
	APIKey   string
	From     string
}

// NewProvider returns the configured email provider, or nil when email
// is disabled.
func NewProvider(config Config) (Provider, error) {
	switch config.Provider {
	case "":
		return nil, nil
	case "resend":
		return NewResendProvider(config.APIKey, config.From), nil
	default:
		return nil, fmt.Errorf("EMAIL_PROVIDER must be 'resend' or empty")
	}
}
