// Package handlers provides the HTTP handlers for the Farm Gate
// storefront API consumed by the mobile client.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmgateapp/farmgate/internal/auth"
	"github.com/farmgateapp/farmgate/internal/cache"
	"github.com/farmgateapp/farmgate/internal/catalog"
	"github.com/farmgateapp/farmgate/internal/checkout"
	"github.com/farmgateapp/farmgate/internal/config"
	"github.com/farmgateapp/farmgate/internal/db"
	"github.com/farmgateapp/farmgate/internal/geo"
	"github.com/farmgateapp/farmgate/internal/logging"
	"github.com/farmgateapp/farmgate/internal/payment"
	"github.com/farmgateapp/farmgate/internal/session"
	"github.com/farmgateapp/farmgate/internal/subscription"
)

const maxBodyBytes = 1 << 20 // 1 MB

// Handlers provides HTTP request handlers for the Farm Gate API.
type Handlers struct {
	config          *config.Config
	db              *pgxpool.Pool
	catalog         *catalog.FarmGateConfig
	orderStore      *db.OrderStore
	cacheProvider   cache.Provider
	authService     *auth.Service
	checkoutService *checkout.Service
	subscriptions   *subscription.Service
	resolver        *geo.Resolver
	addressStore    *geo.AddressStore
	paymentEvents   *payment.Events
	sessionManager  *session.Manager
	logger          *slog.Logger
}

type Dependencies struct {
	Config          *config.Config
	DB              *pgxpool.Pool
	Catalog         *catalog.FarmGateConfig
	OrderStore      *db.OrderStore
	CacheProvider   cache.Provider
	AuthService     *auth.Service
	CheckoutService *checkout.Service
	Subscriptions   *subscription.Service
	Resolver        *geo.Resolver
	AddressStore    *geo.AddressStore
	PaymentEvents   *payment.Events
	SessionManager  *session.Manager
	Logger          *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("handlers dependencies: db is required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("handlers dependencies: catalog is required")
	}
	if deps.OrderStore == nil {
		return nil, fmt.Errorf("handlers dependencies: orderStore is required")
	}
	if deps.CacheProvider == nil {
		return nil, fmt.Errorf("handlers dependencies: cacheProvider is required")
	}
	if deps.AuthService == nil {
		return nil, fmt.Errorf("handlers dependencies: authService is required")
	}
	if deps.CheckoutService == nil {
		return nil, fmt.Errorf("handlers dependencies: checkoutService is required")
	}
	if deps.Subscriptions == nil {
		return nil, fmt.Errorf("handlers dependencies: subscriptions is required")
	}
	if deps.Resolver == nil {
		return nil, fmt.Errorf("handlers dependencies: resolver is required")
	}
	if deps.AddressStore == nil {
		return nil, fmt.Errorf("handlers dependencies: addressStore is required")
	}
	if deps.PaymentEvents == nil {
		return nil, fmt.Errorf("handlers dependencies: paymentEvents is required")
	}
	if deps.SessionManager == nil {
		return nil, fmt.Errorf("handlers dependencies: sessionManager is required")
	}

	return &Handlers{
		config:          deps.Config,
		db:              deps.DB,
		catalog:         deps.Catalog,
		orderStore:      deps.OrderStore,
		cacheProvider:   deps.CacheProvider,
		authService:     deps.AuthService,
		checkoutService: deps.CheckoutService,
		subscriptions:   deps.Subscriptions,
		resolver:        deps.Resolver,
		addressStore:    deps.AddressStore,
		paymentEvents:   deps.PaymentEvents,
		sessionManager:  deps.SessionManager,
		logger:          logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	if err := h.db.Ping(ctx); err != nil {
		logger.Error("database health check failed", "error", err)
		http.Error(w, "Database unhealthy", http.StatusServiceUnavailable)
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
}

// SessionMiddleware adds session data to the request context
func (h *Handlers) SessionMiddleware(next http.Handler) http.Handler {
	return h.sessionManager.Middleware(next)
}

func (h *Handlers) RequireAuth(next http.Handler) http.Handler {
	return h.sessionManager.RequireAuth(next)
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func (h *Handlers) respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, map[string]string{"error": message})
}

func (h *Handlers) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
