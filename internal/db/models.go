package db

import "github.com/farmgateapp/farmgate/internal/models"

type Subscription = models.Subscription
type Order = models.Order
type OrderStatus = models.OrderStatus

const (
	StatusPendingPayment   = models.StatusPendingPayment
	StatusConfirmed        = models.StatusConfirmed
	StatusAwaitingUPI      = models.StatusAwaitingUPI
	StatusPaid             = models.StatusPaid
	StatusPaymentFailed    = models.StatusPaymentFailed
	StatusPaymentSubmitted = models.StatusPaymentSubmitted
	StatusAbandoned        = models.StatusAbandoned
)
