// Package auth implements phone-number sign-in with one-time codes.
// Requesting a code stores its hash in the cache and hands the client
// a short-lived challenge token; verifying exchanges token plus code
// for a bearer session.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/farmgateapp/farmgate/internal/cache"
	"github.com/farmgateapp/farmgate/internal/logging"
	"github.com/farmgateapp/farmgate/internal/session"
)

const maxVerifyAttempts = 5

var (
	ErrInvalidPhone     = errors.New("invalid phone number")
	ErrInvalidChallenge = errors.New("invalid or expired challenge token")
	ErrInvalidCode      = errors.New("incorrect verification code")
	ErrTooManyAttempts  = errors.New("too many verification attempts")

	indianMobile = regexp.MustCompile(`^[6-9][0-9]{9}$`)
)

// CodeSender delivers the one-time code to the customer's phone.
type CodeSender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// LogSender writes codes to the log instead of sending SMS. Used in
// development and in deployments without an SMS gateway.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) SendCode(_ context.Context, phone, code string) error {
	s.Logger.Info("one-time code issued", "phone", phone, "code", code)
	return nil
}

type Service struct {
	cache      cache.Provider
	sessions   *session.Manager
	sender     CodeSender
	signingKey []byte
	otpTTL     time.Duration
	logger     *slog.Logger
}

func NewService(cacheProvider cache.Provider, sessions *session.Manager, sender CodeSender, signingKey string, otpTTL time.Duration, logger *slog.Logger) (*Service, error) {
	if cacheProvider == nil {
		return nil, fmt.Errorf("cache provider is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if len(signingKey) < 32 {
		return nil, fmt.Errorf("signing key must be at least 32 bytes")
	}
	if sender == nil {
		sender = &LogSender{Logger: logger}
	}
	return &Service{
		cache:      cacheProvider,
		sessions:   sessions,
		sender:     sender,
		signingKey: []byte(signingKey),
		otpTTL:     otpTTL,
		logger:     logger,
	}, nil
}

// RequestCode issues a fresh one-time code for the phone number and
// returns the challenge token the client must present on verify.
// Reissuing replaces any previous code for the same number.
func (s *Service) RequestCode(ctx context.Context, phone string) (string, error) {
	if !indianMobile.MatchString(phone) {
		return "", ErrInvalidPhone
	}

	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	if err := s.cache.Set(ctx, codeKey(phone), hashCode(code), s.otpTTL); err != nil {
		return "", fmt.Errorf("failed to store code: %w", err)
	}
	if err := s.cache.Delete(ctx, attemptsKey(phone)); err != nil {
		return "", fmt.Errorf("failed to reset attempts: %w", err)
	}

	if err := s.sender.SendCode(ctx, phone, code); err != nil {
		return "", fmt.Errorf("failed to send code: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   phone,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.otpTTL)),
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign challenge token: %w", err)
	}

	logging.FromContext(ctx, s.logger).Info("verification code requested", "phone", phone)
	return signed, nil
}

// VerifyCode checks the code against the stored hash and, on success,
// opens a session and returns its bearer token.
func (s *Service) VerifyCode(ctx context.Context, challengeToken, code, customerName string) (string, *session.Data, error) {
	phone, err := s.parseChallenge(challengeToken)
	if err != nil {
		return "", nil, ErrInvalidChallenge
	}

	attempts, err := s.bumpAttempts(ctx, phone)
	if err != nil {
		return "", nil, err
	}
	if attempts > maxVerifyAttempts {
		return "", nil, ErrTooManyAttempts
	}

	storedHash, err := s.cache.Get(ctx, codeKey(phone))
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return "", nil, ErrInvalidChallenge
		}
		return "", nil, fmt.Errorf("failed to load code: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(storedHash), []byte(hashCode(code))) != 1 {
		return "", nil, ErrInvalidCode
	}

	// single use
	if err := s.cache.Delete(ctx, codeKey(phone)); err != nil {
		return "", nil, fmt.Errorf("failed to clear code: %w", err)
	}
	if err := s.cache.Delete(ctx, attemptsKey(phone)); err != nil {
		return "", nil, fmt.Errorf("failed to clear attempts: %w", err)
	}

	data := &session.Data{
		CustomerPhone: phone,
		CustomerName:  customerName,
		CreatedAt:     time.Now().Unix(),
	}
	bearer, err := s.sessions.CreateSession(ctx, data)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	logging.FromContext(ctx, s.logger).Info("customer signed in", "phone", phone)
	return bearer, data, nil
}

func (s *Service) parseChallenge(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("challenge token has no subject")
	}
	return claims.Subject, nil
}

func (s *Service) bumpAttempts(ctx context.Context, phone string) (int, error) {
	attempts := 1
	if raw, err := s.cache.Get(ctx, attemptsKey(phone)); err == nil {
		if previous, convErr := strconv.Atoi(raw); convErr == nil {
			attempts = previous + 1
		}
	} else if !errors.Is(err, cache.ErrNotFound) {
		return 0, fmt.Errorf("failed to load attempts: %w", err)
	}

	if err := s.cache.Set(ctx, attemptsKey(phone), strconv.Itoa(attempts), s.otpTTL); err != nil {
		return 0, fmt.Errorf("failed to store attempts: %w", err)
	}
	return attempts, nil
}

func codeKey(phone string) string     { return "otp:code:" + phone }
func attemptsKey(phone string) string { return "otp:attempts:" + phone }

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
