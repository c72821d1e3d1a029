package subscription

import (
	"errors"
	"testing"
	"time"

	"github.com/farmgateapp/farmgate/internal/models"
)

func validRequest() Request {
	from := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	return Request{
		ProductID:    "milk_cow",
		Quantity:     "500ml",
		DeliveryTime: models.DeliveryMorning,
		FromDate:     from,
		ToDate:       from.AddDate(0, 1, 0),
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr error
	}{
		{
			name:   "valid request",
			mutate: func(*Request) {},
		},
		{
			name:    "missing quantity",
			mutate:  func(r *Request) { r.Quantity = "" },
			wantErr: ErrMissingQuantity,
		},
		{
			name:    "whitespace quantity",
			mutate:  func(r *Request) { r.Quantity = "   " },
			wantErr: ErrMissingQuantity,
		},
		{
			name:    "missing delivery time",
			mutate:  func(r *Request) { r.DeliveryTime = "" },
			wantErr: ErrMissingDeliveryTime,
		},
		{
			name:    "unknown delivery time",
			mutate:  func(r *Request) { r.DeliveryTime = "midnight" },
			wantErr: ErrMissingDeliveryTime,
		},
		{
			name:    "to date before from date",
			mutate:  func(r *Request) { r.ToDate = r.FromDate.AddDate(0, 0, -1) },
			wantErr: ErrInvalidDateRange,
		},
		{
			name:    "equal dates rejected",
			mutate:  func(r *Request) { r.ToDate = r.FromDate },
			wantErr: ErrInvalidDateRange,
		},
		{
			name:    "zero from date",
			mutate:  func(r *Request) { r.FromDate = time.Time{} },
			wantErr: ErrInvalidDateRange,
		},
		{
			name: "first failing rule wins",
			mutate: func(r *Request) {
				r.Quantity = ""
				r.DeliveryTime = "midnight"
				r.ToDate = r.FromDate
			},
			wantErr: ErrMissingQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := Validate(req)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	t.Parallel()

	for _, err := range []error{ErrMissingQuantity, ErrMissingDeliveryTime, ErrInvalidDateRange} {
		if !IsValidationError(err) {
			t.Errorf("expected %v to be a validation error", err)
		}
	}
	if IsValidationError(errors.New("connection refused")) {
		t.Error("infra errors must not count as validation errors")
	}
}
