// Package checkout orchestrates a buy-now attempt: validate the
// selection, price it, persist the order and route the payment. UPI
// attempts stay pending until the out-of-band callback lands or the
// abandonment timeout fires.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/farmgateapp/farmgate/internal/catalog"
	"github.com/farmgateapp/farmgate/internal/db"
	"github.com/farmgateapp/farmgate/internal/logging"
	"github.com/farmgateapp/farmgate/internal/models"
	"github.com/farmgateapp/farmgate/internal/payment"
)

var (
	// ErrCheckoutInFlight guards against duplicate submissions while a
	// previous attempt by the same customer is still pending.
	ErrCheckoutInFlight = errors.New("a checkout attempt is already in flight")

	ErrMissingQuantity = errors.New("quantity is required")
	ErrMissingPayment  = errors.New("payment method is required")
	ErrUnknownUPIApp   = errors.New("unknown upi app")
)

type orderStore interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Order, error)
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	MarkSubmitted(ctx context.Context, id uuid.UUID) error
	MarkAbandoned(ctx context.Context, id uuid.UUID) error
}

// ReceiptSender notifies the customer after a confirmed payment.
type ReceiptSender interface {
	SendReceipt(ctx context.Context, order *models.Order) error
}

type noopReceiptSender struct{}

func (noopReceiptSender) SendReceipt(context.Context, *models.Order) error { return nil }

// Input is everything the client submits on confirm.
type Input struct {
	ProductID string
	Quantity  string
	Method    models.PaymentMethod
	UPIAppID  string
	// AvailableSchemes is the set of UPI app schemes the device
	// reported as resolvable. Empty means unknown, treated as all
	// available, matching the client's own fallback.
	AvailableSchemes []string
}

// Result reports where the attempt landed. For UPI the PayURI must be
// opened by the client; Status then changes asynchronously.
type Result struct {
	Order  *models.Order `json:"order"`
	PayURI string        `json:"pay_uri,omitempty"`
}

type pendingAttempt struct {
	orderID       uuid.UUID
	customerPhone string
	timer         *time.Timer
}

type Service struct {
	catalog *catalog.FarmGateConfig
	pricer  *catalog.Pricer
	router  *payment.Router
	events  *payment.Events
	orders  orderStore
	receipt ReceiptSender
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	inflight map[string]bool
	pending  map[string]*pendingAttempt
}

func NewService(cfg *catalog.FarmGateConfig, pricer *catalog.Pricer, router *payment.Router, events *payment.Events, orders orderStore, receipt ReceiptSender, timeout time.Duration, logger *slog.Logger) (*Service, error) {
	if receipt == nil {
		receipt = noopReceiptSender{}
	}

	s := &Service{
		catalog:  cfg,
		pricer:   pricer,
		router:   router,
		events:   events,
		orders:   orders,
		receipt:  receipt,
		timeout:  timeout,
		logger:   logger,
		inflight: make(map[string]bool),
		pending:  make(map[string]*pendingAttempt),
	}

	if events != nil {
		if err := events.Subscribe(s.handleConfirmation); err != nil {
			return nil, fmt.Errorf("failed to subscribe to payment confirmations: %w", err)
		}
	}
	return s, nil
}

func (s *Service) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// Checkout runs one attempt end to end. Validation failures come back
// as typed errors for the client prompt; only one attempt per customer
// may be pending at a time.
func (s *Service) Checkout(ctx context.Context, customerPhone string, input Input) (*Result, error) {
	if err := s.acquire(customerPhone); err != nil {
		return nil, err
	}

	result, pendingTxn, err := s.run(ctx, customerPhone, input)
	if pendingTxn == "" {
		// terminal outcome, pending attempts release on callback or timeout
		s.release(customerPhone)
	}
	return result, err
}

func (s *Service) run(ctx context.Context, customerPhone string, input Input) (*Result, string, error) {
	logger := s.loggerFromContext(ctx)

	if strings.TrimSpace(input.Quantity) == "" {
		return nil, "", ErrMissingQuantity
	}
	if !input.Method.Valid() {
		return nil, "", ErrMissingPayment
	}

	product := s.catalog.FindProduct(input.ProductID)
	if product == nil {
		return nil, "", fmt.Errorf("product with id %s not found", input.ProductID)
	}
	if !product.Active {
		return nil, "", fmt.Errorf("product with id %s is not active", input.ProductID)
	}

	amount := s.pricer.Total(product.UnitPrice, catalog.Normalize(input.Quantity))

	selection := payment.Selection{Method: input.Method}
	if input.Method == models.PaymentUPI {
		app, ok := payment.FindApp(input.UPIAppID)
		if !ok {
			return nil, "", ErrUnknownUPIApp
		}
		selection.App = &app
	}

	order := &models.Order{
		CustomerPhone: customerPhone,
		ProductID:     product.ID,
		ProductName:   product.Name,
		Quantity:      input.Quantity,
		PaymentMethod: input.Method,
		UPIApp:        input.UPIAppID,
		TotalPaise:    s.pricer.TotalPaise(product.UnitPrice, catalog.Normalize(input.Quantity)),
		Status:        models.StatusPendingPayment,
	}

	launcher := newClientLauncher(input.AvailableSchemes)
	outcome, routeErr := s.router.Route(ctx, launcher, selection, amount, product.Name, input.Quantity)

	order.UPITransactionID = outcome.TransactionID
	switch outcome.State {
	case payment.ConfirmedLocally:
		order.Status = models.StatusConfirmed
	case payment.AwaitingExternalConfirmation:
		order.Status = models.StatusAwaitingUPI
	case payment.Failed:
		order.Status = models.StatusPaymentFailed
		order.FailureReason = outcome.FailureReason
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, "", fmt.Errorf("failed to create order: %w", err)
	}

	if routeErr != nil {
		logger.Warn("payment routing failed",
			"order_id", order.ID,
			"method", input.Method,
			"reason", outcome.FailureReason,
		)
		return &Result{Order: order}, "", routeErr
	}

	logger.Info("order created",
		"order_id", order.ID,
		"product_id", order.ProductID,
		"method", order.PaymentMethod,
		"total_paise", order.TotalPaise,
		"status", order.Status,
	)

	if outcome.State == payment.ConfirmedLocally {
		if err := s.receipt.SendReceipt(ctx, order); err != nil {
			logger.Warn("failed to send receipt", "error", err, "order_id", order.ID)
		}
		return &Result{Order: order}, "", nil
	}

	s.track(customerPhone, order.ID, outcome.TransactionID)
	return &Result{Order: order, PayURI: outcome.PayURI}, outcome.TransactionID, nil
}

// CheckStatus is the manual affordance for customers whose UPI app
// never called back.
func (s *Service) CheckStatus(ctx context.Context, customerPhone string, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerPhone != customerPhone {
		return nil, db.ErrNotFound
	}
	return order, nil
}

func (s *Service) acquire(customerPhone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[customerPhone] {
		return ErrCheckoutInFlight
	}
	s.inflight[customerPhone] = true
	return nil
}

func (s *Service) release(customerPhone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, customerPhone)
}

func (s *Service) track(customerPhone string, orderID uuid.UUID, transactionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt := &pendingAttempt{
		orderID:       orderID,
		customerPhone: customerPhone,
	}
	// the timer callback takes the same lock, so it cannot observe the
	// map before this insert completes
	attempt.timer = time.AfterFunc(s.timeout, func() {
		s.abandon(transactionID)
	})
	s.pending[transactionID] = attempt
}

func (s *Service) takePending(transactionID string) *pendingAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, ok := s.pending[transactionID]
	if !ok {
		return nil
	}
	delete(s.pending, transactionID)
	attempt.timer.Stop()
	delete(s.inflight, attempt.customerPhone)
	return attempt
}

func (s *Service) abandon(transactionID string) {
	attempt := s.takePending(transactionID)
	if attempt == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.orders.MarkAbandoned(ctx, attempt.orderID); err != nil {
		s.loggerFromContext(ctx).Warn("failed to mark order abandoned", "error", err, "order_id", attempt.orderID)
		return
	}
	s.loggerFromContext(ctx).Info("order abandoned, no payment callback", "order_id", attempt.orderID, "transaction_id", transactionID)
}

func (s *Service) handleConfirmation(confirmation payment.Confirmation) {
	attempt := s.takePending(confirmation.TransactionID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger := s.loggerFromContext(ctx)

	var orderID uuid.UUID
	if attempt != nil {
		orderID = attempt.orderID
	} else {
		// Callback for an order from a previous process lifetime.
		order, err := s.orders.GetByTransactionID(ctx, confirmation.TransactionID)
		if err != nil {
			logger.Warn("confirmation for unknown transaction", "transaction_id", confirmation.TransactionID)
			return
		}
		orderID = order.ID
	}

	switch confirmation.Status {
	case payment.CallbackSuccess:
		if err := s.orders.MarkPaid(ctx, orderID, time.Now()); err != nil {
			logger.Warn("failed to mark order paid", "error", err, "order_id", orderID)
			return
		}
		logger.Info("payment confirmed", "order_id", orderID, "transaction_id", confirmation.TransactionID)
		if order, err := s.orders.GetByID(ctx, orderID); err == nil {
			if err := s.receipt.SendReceipt(ctx, order); err != nil {
				logger.Warn("failed to send receipt", "error", err, "order_id", orderID)
			}
		}
	case payment.CallbackFailure:
		if err := s.orders.MarkFailed(ctx, orderID, "upi payment failed"); err != nil {
			logger.Warn("failed to mark order failed", "error", err, "order_id", orderID)
			return
		}
		logger.Info("payment failed", "order_id", orderID, "transaction_id", confirmation.TransactionID)
	case payment.CallbackSubmitted:
		if err := s.orders.MarkSubmitted(ctx, orderID); err != nil {
			logger.Warn("failed to mark order submitted", "error", err, "order_id", orderID)
			return
		}
		logger.Info("payment submitted, awaiting settlement", "order_id", orderID, "transaction_id", confirmation.TransactionID)
	}
}

// clientLauncher relays scheme availability reported by the device.
// The server does not open URIs itself; the deep link rides back in
// the checkout response for the client to dispatch.
type clientLauncher struct {
	available map[string]bool
}

func newClientLauncher(schemes []string) *clientLauncher {
	if len(schemes) == 0 {
		return &clientLauncher{}
	}
	available := make(map[string]bool, len(schemes))
	for _, scheme := range schemes {
		available[scheme] = true
	}
	return &clientLauncher{available: available}
}

func (l *clientLauncher) CanOpen(_ context.Context, scheme string) bool {
	if l.available == nil {
		return true
	}
	return l.available[scheme]
}

func (l *clientLauncher) Open(context.Context, string) error {
	return nil
}
