package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/farmgateapp/farmgate/internal/models"
)

// ErrAppUnavailable is returned when the chosen UPI app's scheme does
// not resolve on the device.
var ErrAppUnavailable = errors.New("upi app unavailable")

// OutcomeState describes where a checkout attempt landed after routing.
type OutcomeState string

const (
	// ConfirmedLocally means no external payment flow is needed.
	ConfirmedLocally OutcomeState = "confirmed_locally"
	// AwaitingExternalConfirmation means the UPI deep link was
	// dispatched; the real result arrives later via callback, if at all.
	AwaitingExternalConfirmation OutcomeState = "awaiting_external_confirmation"
	// Failed means routing could not hand off the payment.
	Failed OutcomeState = "failed"
)

// Selection is the payment method chosen during checkout, plus the UPI
// app when the method is UPI.
type Selection struct {
	Method models.PaymentMethod
	App    *AppDescriptor
}

type Outcome struct {
	State         OutcomeState
	TransactionID string
	PayURI        string
	FailureReason string
}

// Router dispatches a priced checkout to the selected payment rail.
type Router struct {
	payeeAddress string
	payeeName    string
	idGen        *TransactionIDGenerator
}

func NewRouter(payeeAddress, payeeName string, idGen *TransactionIDGenerator) (*Router, error) {
	if payeeAddress == "" || payeeName == "" {
		return nil, fmt.Errorf("payee address and name are required")
	}
	if idGen == nil {
		return nil, fmt.Errorf("transaction id generator is required")
	}
	return &Router{
		payeeAddress: payeeAddress,
		payeeName:    payeeName,
		idGen:        idGen,
	}, nil
}

// Route dispatches the payment. Cash on delivery and card confirm
// locally; card has no gateway behind it. UPI builds the deep link and
// opens it through the launcher, then waits on the out-of-band
// callback. Opening the URI successfully does not mean the payment
// completed.
func (r *Router) Route(ctx context.Context, launcher URILauncher, selection Selection, amount float64, productName, quantityLabel string) (Outcome, error) {
	if !selection.Method.Valid() {
		return Outcome{State: Failed, FailureReason: "unknown payment method"}, fmt.Errorf("unknown payment method: %s", selection.Method)
	}
	if amount <= 0 {
		return Outcome{State: Failed, FailureReason: "non-positive amount"}, fmt.Errorf("amount must be positive, got %v", amount)
	}

	switch selection.Method {
	case models.PaymentCashOnDelivery, models.PaymentCard:
		return Outcome{State: ConfirmedLocally}, nil
	case models.PaymentUPI:
		return r.routeUPI(ctx, launcher, selection, amount, productName, quantityLabel)
	}
	return Outcome{State: Failed}, fmt.Errorf("unhandled payment method: %s", selection.Method)
}

func (r *Router) routeUPI(ctx context.Context, launcher URILauncher, selection Selection, amount float64, productName, quantityLabel string) (Outcome, error) {
	if selection.App == nil {
		return Outcome{State: Failed, FailureReason: "no upi app selected"}, fmt.Errorf("upi app selection is required")
	}
	if launcher == nil {
		return Outcome{State: Failed, FailureReason: "no uri launcher"}, fmt.Errorf("uri launcher is required for upi payments")
	}

	if !launcher.CanOpen(ctx, selection.App.Scheme) {
		return Outcome{
			State:         Failed,
			FailureReason: fmt.Sprintf("%s not available on this device", selection.App.Name),
		}, ErrAppUnavailable
	}

	transactionID := r.idGen.Next()
	payURI := BuildPayURI(LinkParams{
		PayeeAddress:  r.payeeAddress,
		PayeeName:     r.payeeName,
		TransactionID: transactionID,
		Note:          fmt.Sprintf("Payment for %s (%s)", productName, quantityLabel),
		Amount:        amount,
	})

	if err := launcher.Open(ctx, payURI); err != nil {
		return Outcome{
			State:         Failed,
			TransactionID: transactionID,
			FailureReason: "failed to open upi app",
		}, fmt.Errorf("failed to open upi uri: %w", err)
	}

	return Outcome{
		State:         AwaitingExternalConfirmation,
		TransactionID: transactionID,
		PayURI:        payURI,
	}, nil
}
