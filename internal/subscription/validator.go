// Package subscription implements recurring-delivery subscriptions:
// request validation, pricing, persistence and delivery scheduling.
package subscription

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/farmgateapp/farmgate/internal/models"
)

// Validation failure reasons, surfaced to the client as user-facing
// prompts. None of these are fatal; the flow re-validates on every
// confirm attempt.
var (
	ErrMissingQuantity     = errors.New("quantity is required")
	ErrMissingDeliveryTime = errors.New("delivery time must be morning, evening or both")
	ErrInvalidDateRange    = errors.New("from date must be before to date")
)

// Request is a transient subscription request assembled during the
// subscribe flow. It is validated, priced and persisted or discarded.
type Request struct {
	ProductID    string
	Quantity     string
	DeliveryTime models.DeliveryTime
	FromDate     time.Time
	ToDate       time.Time
}

// Validate checks the request invariants in order; the first failing
// rule wins. It is pure and idempotent.
func Validate(req Request) error {
	if strings.TrimSpace(req.Quantity) == "" {
		return ErrMissingQuantity
	}
	if !req.DeliveryTime.Valid() {
		return ErrMissingDeliveryTime
	}
	if req.FromDate.IsZero() || req.ToDate.IsZero() || !req.FromDate.Before(req.ToDate) {
		return ErrInvalidDateRange
	}
	return nil
}

// IsValidationError reports whether err is one of the request
// validation failures, as opposed to an infrastructure error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingQuantity) ||
		errors.Is(err, ErrMissingDeliveryTime) ||
		errors.Is(err, ErrInvalidDateRange)
}

func (r Request) String() string {
	return fmt.Sprintf("subscription{product=%s quantity=%q delivery=%s %s..%s}",
		r.ProductID, r.Quantity, r.DeliveryTime,
		r.FromDate.Format("2006-01-02"), r.ToDate.Format("2006-01-02"))
}
