package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/farmgateapp/farmgate/internal/config"
	"github.com/farmgateapp/farmgate/internal/handlers"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.SecurityHeaders)
	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")

	// The UPI app redirect; authenticated by shared secret, not by a
	// customer session.
	r.HandleFunc("/callbacks/upi", h.UPICallback).Methods("GET", "POST").Name("callbacks.upi")

	api := r.PathPrefix("/api").Subrouter()

	// Public storefront routes
	api.HandleFunc("/products", h.ListProducts).Methods("GET").Name("api.products")
	api.HandleFunc("/products/{id}", h.GetProduct).Methods("GET").Name("api.products.get")
	api.HandleFunc("/auth/otp/request", h.RequestCode).Methods("POST").Name("api.auth.otp.request")
	api.HandleFunc("/auth/otp/verify", h.VerifyCode).Methods("POST").Name("api.auth.otp.verify")

	// Customer routes - require a bearer session
	customer := api.PathPrefix("").Subrouter()
	customer.Use(h.RequireAuth)
	customer.HandleFunc("/auth/logout", h.Logout).Methods("POST").Name("api.auth.logout")
	customer.HandleFunc("/orders", h.Checkout).Methods("POST").Name("api.orders.checkout")
	customer.HandleFunc("/orders", h.ListOrders).Methods("GET").Name("api.orders")
	customer.HandleFunc("/orders/{id}", h.GetOrder).Methods("GET").Name("api.orders.get")
	customer.HandleFunc("/subscriptions", h.CreateSubscription).Methods("POST").Name("api.subscriptions.create")
	customer.HandleFunc("/subscriptions", h.ListSubscriptions).Methods("GET").Name("api.subscriptions")
	customer.HandleFunc("/subscriptions/{id}/schedule", h.SubscriptionSchedule).Methods("GET").Name("api.subscriptions.schedule")
	customer.HandleFunc("/subscriptions/{id}/cancel", h.CancelSubscription).Methods("POST").Name("api.subscriptions.cancel")
	customer.HandleFunc("/address/resolve", h.ResolveAddress).Methods("POST").Name("api.address.resolve")
	customer.HandleFunc("/address", h.GetAddress).Methods("GET").Name("api.address")
	customer.HandleFunc("/address", h.ClearAddress).Methods("DELETE").Name("api.address.clear")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	})

	return r
}
