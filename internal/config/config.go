package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	CatalogPath string `env:"CATALOG_PATH" envDefault:"farmgate.yaml" validate:"required"`

	JWTSigningKey string        `env:"JWT_SIGNING_KEY,required" validate:"required,min=32"`
	OTPTTL        time.Duration `env:"OTP_TTL" envDefault:"5m"`

	EncryptionKey string `env:"ENCRYPTION_KEY,required" validate:"required,len=32"`

	CacheProvider         string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	SessionStoreProvider  string `env:"SESSION_STORE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisConnectionString string `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis,required_if=SessionStoreProvider redis"`

	UPICallbackSecret string        `env:"UPI_CALLBACK_SECRET,required" validate:"required"`
	UPIPaymentTimeout time.Duration `env:"UPI_PAYMENT_TIMEOUT" envDefault:"15m"`

	EmailProvider string `env:"EMAIL_PROVIDER" envDefault:"" validate:"omitempty,oneof=resend"`
	EmailAPIKey   string `env:"EMAIL_API_KEY"`
	EmailFrom     string `env:"EMAIL_FROM" validate:"omitempty,email"`
	// EmailOrdersTo is the back-office inbox that receives paid-order
	// receipts. Defaults to EmailFrom when unset.
	EmailOrdersTo string `env:"EMAIL_ORDERS_TO" validate:"omitempty,email"`

	GeocoderBaseURL string `env:"GEOCODER_BASE_URL" envDefault:"https://nominatim.openstreetmap.org" validate:"required,url"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	Port      string     `env:"PORT" envDefault:"8080"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	hasEmailProvider := strings.TrimSpace(c.EmailProvider) != ""
	hasEmailAPIKey := strings.TrimSpace(c.EmailAPIKey) != ""
	if hasEmailProvider != hasEmailAPIKey {
		return fmt.Errorf("EMAIL_PROVIDER and EMAIL_API_KEY must be set together")
	}
	if hasEmailProvider && strings.TrimSpace(c.EmailFrom) == "" {
		return fmt.Errorf("EMAIL_FROM is required when email is enabled")
	}
	if c.EmailOrdersTo == "" {
		c.EmailOrdersTo = c.EmailFrom
	}

	if c.UPIPaymentTimeout < time.Minute {
		return fmt.Errorf("UPI_PAYMENT_TIMEOUT must be at least one minute")
	}

	return nil
}
