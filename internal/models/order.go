package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "card"
	PaymentUPI            PaymentMethod = "upi"
	PaymentCashOnDelivery PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentUPI, PaymentCashOnDelivery:
		return true
	}
	return false
}

type OrderStatus string

const (
	StatusPendingPayment   OrderStatus = "pending_payment"
	StatusConfirmed        OrderStatus = "confirmed"
	StatusAwaitingUPI      OrderStatus = "awaiting_upi"
	StatusPaid             OrderStatus = "paid"
	StatusPaymentFailed    OrderStatus = "payment_failed"
	StatusPaymentSubmitted OrderStatus = "payment_submitted"
	StatusAbandoned        OrderStatus = "abandoned"
)

// Terminal reports whether the order has reached a state that no
// payment callback may change anymore.
func (s OrderStatus) Terminal() bool {
	switch s {
	case StatusConfirmed, StatusPaid, StatusPaymentFailed, StatusAbandoned:
		return true
	}
	return false
}

type Order struct {
	ID               uuid.UUID     `json:"id"`
	CustomerPhone    string        `json:"customer_phone"`
	ProductID        string        `json:"product_id"`
	ProductName      string        `json:"product_name"`
	Quantity         string        `json:"quantity"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	UPIApp           string        `json:"upi_app,omitempty"`
	UPITransactionID string        `json:"upi_transaction_id,omitempty"`
	TotalPaise       int           `json:"total_paise"`
	Status           OrderStatus   `json:"status"`
	FailureReason    string        `json:"failure_reason,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	PaidAt           time.Time     `json:"paid_at,omitzero"`
}
