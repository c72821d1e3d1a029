package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmgateapp/farmgate/internal/auth"
	"github.com/farmgateapp/farmgate/internal/cache"
	"github.com/farmgateapp/farmgate/internal/catalog"
	"github.com/farmgateapp/farmgate/internal/checkout"
	"github.com/farmgateapp/farmgate/internal/config"
	"github.com/farmgateapp/farmgate/internal/crypto"
	"github.com/farmgateapp/farmgate/internal/db"
	"github.com/farmgateapp/farmgate/internal/geo"
	"github.com/farmgateapp/farmgate/internal/handlers"
	"github.com/farmgateapp/farmgate/internal/notify"
	"github.com/farmgateapp/farmgate/internal/payment"
	"github.com/farmgateapp/farmgate/internal/session"
	"github.com/farmgateapp/farmgate/internal/subscription"
)

type App struct {
	Config         *config.Config
	Logger         *slog.Logger
	DB             *pgxpool.Pool
	CacheProvider  cache.Provider
	SessionManager *session.Manager
	Handlers       *handlers.Handlers
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	farmCatalog, err := catalog.NewParser().ParseFile(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := catalog.NewValidator().Validate(farmCatalog); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	database, err := db.Connect(startupCtx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	sessionStore, err := session.NewStore(startupCtx, session.Config{
		Provider:              cfg.SessionStoreProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	sessionManager := session.NewManager(sessionStore)

	encryptor, err := crypto.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	orderStore := db.NewOrderStore(database)
	subscriptionStore := db.NewSubscriptionStore(database)
	pricer := catalog.NewPricer()

	authService, err := auth.NewService(cacheProvider, sessionManager, nil, cfg.JWTSigningKey, cfg.OTPTTL, logger.With("component", "auth_service"))
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}

	idGen, err := payment.NewTransactionIDGenerator(1)
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize transaction id generator: %w", err)
	}
	router, err := payment.NewRouter(farmCatalog.Shop.UPI.PayeeAddress, farmCatalog.Shop.UPI.PayeeName, idGen)
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize payment router: %w", err)
	}
	paymentEvents := payment.NewEvents()

	emailProvider, err := notify.NewProvider(notify.Config{
		Provider: cfg.EmailProvider,
		APIKey:   cfg.EmailAPIKey,
		From:     cfg.EmailFrom,
	})
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize email provider: %w", err)
	}
	receiptNotifier := notify.NewReceiptNotifier(emailProvider, cfg.EmailOrdersTo, farmCatalog.Shop.Name, logger.With("component", "notify"))

	checkoutService, err := checkout.NewService(
		farmCatalog,
		pricer,
		router,
		paymentEvents,
		orderStore,
		receiptNotifier,
		cfg.UPIPaymentTimeout,
		logger.With("component", "checkout_service"),
	)
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize checkout service: %w", err)
	}

	subscriptionService := subscription.NewService(subscriptionStore, farmCatalog, pricer, logger.With("component", "subscription_service"))

	resolver, err := geo.NewResolver(cfg.GeocoderBaseURL)
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize geocoder: %w", err)
	}
	addressStore, err := geo.NewAddressStore(cacheProvider, encryptor)
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize address store: %w", err)
	}

	h, err := handlers.New(handlers.Dependencies{
		Config:          cfg,
		DB:              database,
		Catalog:         farmCatalog,
		OrderStore:      orderStore,
		CacheProvider:   cacheProvider,
		AuthService:     authService,
		CheckoutService: checkoutService,
		Subscriptions:   subscriptionService,
		Resolver:        resolver,
		AddressStore:    addressStore,
		PaymentEvents:   paymentEvents,
		SessionManager:  sessionManager,
		Logger:          logger,
	})
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		Config:         cfg,
		Logger:         logger,
		DB:             database,
		CacheProvider:  cacheProvider,
		SessionManager: sessionManager,
		Handlers:       h,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.SessionManager != nil {
		closeSessionManager(a.Logger, a.SessionManager)
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: cfg.LogLevel}))
}

func closeSessionManager(logger *slog.Logger, manager *session.Manager) {
	if manager == nil {
		return
	}
	if err := manager.Close(); err != nil && logger != nil {
		logger.Warn("failed to close session manager", "error", err)
	}
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
