package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmgateapp/farmgate/internal/models"
)

var ErrInvalidStatusTransition = errors.New("invalid order status transition")

type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

func (s *OrderStore) Create(ctx context.Context, order *Order) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO orders (customer_phone, product_id, product_name, quantity, payment_method, upi_app, upi_transaction_id, total_paise, status, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`,
		order.CustomerPhone, order.ProductID, order.ProductName, order.Quantity,
		string(order.PaymentMethod), order.UPIApp, order.UPITransactionID,
		order.TotalPaise, string(order.Status), order.FailureReason,
	)
	if err := row.Scan(&order.ID, &order.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (s *OrderStore) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, customer_phone, product_id, product_name, quantity, payment_method, upi_app, upi_transaction_id, total_paise, status, failure_reason, created_at, COALESCE(paid_at, 'epoch'::timestamptz)
		FROM orders WHERE id = $1`, id)

	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (s *OrderStore) GetByTransactionID(ctx context.Context, transactionID string) (*Order, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, customer_phone, product_id, product_name, quantity, payment_method, upi_app, upi_transaction_id, total_paise, status, failure_reason, created_at, COALESCE(paid_at, 'epoch'::timestamptz)
		FROM orders WHERE upi_transaction_id = $1`, transactionID)

	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order by transaction id: %w", err)
	}
	return order, nil
}

func (s *OrderStore) ListByCustomer(ctx context.Context, customerPhone string, limit int) ([]*Order, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, customer_phone, product_id, product_name, quantity, payment_method, upi_app, upi_transaction_id, total_paise, status, failure_reason, created_at, COALESCE(paid_at, 'epoch'::timestamptz)
		FROM orders WHERE customer_phone = $1 ORDER BY created_at DESC LIMIT $2`, customerPhone, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// MarkPaid transitions an order to paid. Orders already in a terminal
// state stay untouched so late callbacks cannot flip a settled outcome.
func (s *OrderStore) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	return s.transition(ctx, id, StatusPaid, "", paidAt)
}

func (s *OrderStore) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return s.transition(ctx, id, StatusPaymentFailed, reason, time.Time{})
}

func (s *OrderStore) MarkSubmitted(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, StatusPaymentSubmitted, "", time.Time{})
}

func (s *OrderStore) MarkAbandoned(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, StatusAbandoned, "no payment callback received", time.Time{})
}

func (s *OrderStore) transition(ctx context.Context, id uuid.UUID, status models.OrderStatus, reason string, paidAt time.Time) error {
	var tag pgconn.CommandTag
	var err error
	if paidAt.IsZero() {
		tag, err = s.pool.Exec(ctx, `
			UPDATE orders SET status = $2, failure_reason = $3
			WHERE id = $1 AND status IN ('pending_payment', 'awaiting_upi', 'payment_submitted')`,
			id, string(status), reason)
	} else {
		tag, err = s.pool.Exec(ctx, `
			UPDATE orders SET status = $2, failure_reason = $3, paid_at = $4
			WHERE id = $1 AND status IN ('pending_payment', 'awaiting_upi', 'payment_submitted')`,
			id, string(status), reason, paidAt)
	}
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidStatusTransition
	}
	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var order Order
	var method, status string
	if err := row.Scan(
		&order.ID, &order.CustomerPhone, &order.ProductID, &order.ProductName, &order.Quantity,
		&method, &order.UPIApp, &order.UPITransactionID, &order.TotalPaise, &status,
		&order.FailureReason, &order.CreatedAt, &order.PaidAt,
	); err != nil {
		return nil, err
	}
	order.PaymentMethod = models.PaymentMethod(method)
	order.Status = models.OrderStatus(status)
	if order.PaidAt.Unix() == 0 {
		order.PaidAt = time.Time{}
	}
	return &order, nil
}
