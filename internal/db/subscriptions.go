package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmgateapp/farmgate/internal/models"
)

var ErrNotFound = errors.New("not found")

type SubscriptionStore struct {
	pool *pgxpool.Pool
}

func NewSubscriptionStore(pool *pgxpool.Pool) *SubscriptionStore {
	return &SubscriptionStore{pool: pool}
}

func (s *SubscriptionStore) Create(ctx context.Context, sub *Subscription) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO subscriptions (customer_phone, product_id, product_name, quantity, delivery_time, from_date, to_date, price_paise, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		sub.CustomerPhone, sub.ProductID, sub.ProductName, sub.Quantity,
		string(sub.DeliveryTime), sub.FromDate, sub.ToDate, sub.PricePaise, string(sub.Status),
	)
	if err := row.Scan(&sub.ID, &sub.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) GetByID(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, customer_phone, product_id, product_name, quantity, delivery_time, from_date, to_date, price_paise, status, created_at
		FROM subscriptions WHERE id = $1`, id)

	sub, err := scanSubscription(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

func (s *SubscriptionStore) ListByCustomer(ctx context.Context, customerPhone string) ([]*Subscription, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, customer_phone, product_id, product_name, quantity, delivery_time, from_date, to_date, price_paise, status, created_at
		FROM subscriptions WHERE customer_phone = $1 ORDER BY created_at DESC`, customerPhone)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]*Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *SubscriptionStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.SubscriptionStatus) error {
	tag, err := s.pool.Exec(ctx, `UPDATE subscriptions SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSubscription(row pgx.Row) (*Subscription, error) {
	var sub Subscription
	var deliveryTime, status string
	if err := row.Scan(
		&sub.ID, &sub.CustomerPhone, &sub.ProductID, &sub.ProductName, &sub.Quantity,
		&deliveryTime, &sub.FromDate, &sub.ToDate, &sub.PricePaise, &status, &sub.CreatedAt,
	); err != nil {
		return nil, err
	}
	sub.DeliveryTime = models.DeliveryTime(deliveryTime)
	sub.Status = models.SubscriptionStatus(status)
	return &sub, nil
}
