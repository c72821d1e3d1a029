package subscription

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/farmgateapp/farmgate/internal/catalog"
	"github.com/farmgateapp/farmgate/internal/db"
	"github.com/farmgateapp/farmgate/internal/logging"
	"github.com/farmgateapp/farmgate/internal/models"
)

type subscriptionStore interface {
	Create(ctx context.Context, sub *models.Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
	ListByCustomer(ctx context.Context, customerPhone string) ([]*models.Subscription, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.SubscriptionStatus) error
}

type Service struct {
	store   subscriptionStore
	catalog *catalog.FarmGateConfig
	pricer  *catalog.Pricer
	logger  *slog.Logger
}

func NewService(store subscriptionStore, cfg *catalog.FarmGateConfig, pricer *catalog.Pricer, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		catalog: cfg,
		pricer:  pricer,
		logger:  logger,
	}
}

func (s *Service) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// Create validates and prices the request, then persists the
// subscription. Validation failures come back unwrapped so callers can
// surface them as user prompts.
func (s *Service) Create(ctx context.Context, customerPhone string, req Request) (*models.Subscription, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	product := s.catalog.FindProduct(req.ProductID)
	if product == nil {
		return nil, fmt.Errorf("product with id %s not found", req.ProductID)
	}
	if !product.Active {
		return nil, fmt.Errorf("product with id %s is not active", req.ProductID)
	}

	pricePaise := s.pricer.TotalPaise(product.UnitPrice, catalog.Normalize(req.Quantity))

	sub := &models.Subscription{
		CustomerPhone: customerPhone,
		ProductID:     product.ID,
		ProductName:   product.Name,
		Quantity:      req.Quantity,
		DeliveryTime:  req.DeliveryTime,
		FromDate:      req.FromDate,
		ToDate:        req.ToDate,
		PricePaise:    pricePaise,
		Status:        models.SubscriptionActive,
	}

	if err := s.store.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.loggerFromContext(ctx).Info("subscription created",
		"subscription_id", sub.ID,
		"product_id", sub.ProductID,
		"quantity", sub.Quantity,
		"delivery_time", sub.DeliveryTime,
	)
	return sub, nil
}

// ListByCustomer returns the customer's subscriptions, newest first.
func (s *Service) ListByCustomer(ctx context.Context, customerPhone string) ([]*models.Subscription, error) {
	return s.store.ListByCustomer(ctx, customerPhone)
}

// Get returns one subscription, scoped to its owner.
func (s *Service) Get(ctx context.Context, customerPhone string, id uuid.UUID) (*models.Subscription, error) {
	sub, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.CustomerPhone != customerPhone {
		return nil, db.ErrNotFound
	}
	return sub, nil
}

// Cancel marks a subscription cancelled.
func (s *Service) Cancel(ctx context.Context, customerPhone string, id uuid.UUID) error {
	sub, err := s.Get(ctx, customerPhone, id)
	if err != nil {
		return err
	}
	if sub.Status != models.SubscriptionActive {
		return fmt.Errorf("subscription %s is not active", id)
	}
	return s.store.UpdateStatus(ctx, id, models.SubscriptionCancelled)
}
