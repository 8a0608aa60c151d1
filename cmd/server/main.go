package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/shopsphere/backend/internal/application/cart"
	catalogapp "github.com/shopsphere/backend/internal/application/catalog"
	"github.com/shopsphere/backend/internal/application/integration"
	inventoryapp "github.com/shopsphere/backend/internal/application/inventory"
	orderapp "github.com/shopsphere/backend/internal/application/ordering"
	recapp "github.com/shopsphere/backend/internal/application/recommendation"
	supportapp "github.com/shopsphere/backend/internal/application/support"
	"github.com/shopsphere/backend/internal/infrastructure/auth"
	"github.com/shopsphere/backend/internal/infrastructure/cache"
	"github.com/shopsphere/backend/internal/infrastructure/config"
	"github.com/shopsphere/backend/internal/infrastructure/event"
	"github.com/shopsphere/backend/internal/infrastructure/lock"
	"github.com/shopsphere/backend/internal/infrastructure/logger"
	"github.com/shopsphere/backend/internal/infrastructure/persistence"
	"github.com/shopsphere/backend/internal/infrastructure/ratelimit"
	"github.com/shopsphere/backend/internal/infrastructure/telemetry"
	"github.com/shopsphere/backend/internal/interfaces/http/handler"
	"github.com/shopsphere/backend/internal/interfaces/http/middleware"
	"github.com/shopsphere/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ShopSphere backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with a GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// One long-lived Redis client shared by every cache, lock and limiter
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()
	log.Info("Redis connected")

	// Repositories
	enqueuer := event.NewOutboxEnqueuer()
	productRepo := persistence.NewGormProductRepository(db.DB, enqueuer)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB, enqueuer)
	productIndexRepo := persistence.NewGormProductIndexRepository(db.DB)
	supportMessageRepo := persistence.NewGormSupportMessageRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	coPurchaseRepo := persistence.NewGormCoPurchaseRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	inboxRepo := event.NewGormInboxRepository(db.DB)

	// Redis-backed infrastructure
	cartCache := cache.NewRedisCartCache(redisClient, cfg.Cart.TTL)
	recCache := cache.NewRedisRecommendationCache(redisClient)
	productLock := lock.NewRedisLock(redisClient, log)
	limiter := ratelimit.NewRedisLimiter(redisClient, cfg.RateLimit.Grace)

	// Application services
	productService := catalogapp.NewProductService(productRepo, log)
	cartService := cartapp.NewCartService(productRepo, cartCache, log)
	inventoryService := inventoryapp.NewInventoryService(inventoryRepo, productLock, cfg.Lock.ProductLockTimeout, log)
	orderService := orderapp.NewOrderService(orderRepo, productRepo, inventoryService, cartCache, log)
	recommendationService := recapp.NewRecommendationService(
		recCache,
		coPurchaseRepo,
		cfg.Recommendation.FrequentlyBoughtTTL,
		cfg.Recommendation.RecentlyViewedLimit,
		log,
	)
	supportService := supportapp.NewSupportService(
		supportMessageRepo,
		limiter,
		ratelimit.Policy{
			Scope:  "support-message",
			Limit:  int64(cfg.RateLimit.SupportMessageLimit),
			Window: cfg.RateLimit.SupportMessageWindow,
		},
		log,
	)
	contactService := supportapp.NewContactService(
		contactRepo,
		limiter,
		ratelimit.Policy{
			Scope:  "contact",
			Limit:  int64(cfg.RateLimit.ContactLimit),
			Window: cfg.RateLimit.ContactWindow,
		},
		log,
	)

	// Metrics for the event pipeline
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()
	pipelineMetrics, err := telemetry.NewPipelineMetrics(meterProvider.Meter("shopsphere/eventpipeline"), log)
	if err != nil {
		log.Fatal("Failed to initialize pipeline metrics", zap.Error(err))
	}

	// Event pipeline: in-memory bus, idempotent consumers, outbox relay
	eventBus := event.NewInMemoryEventBus(log)

	orderCreatedConsumer := integration.NewOrderCreatedConsumer(orderRepo, recommendationService, log)
	eventBus.Subscribe(event.NewInboxHandler(
		orderCreatedConsumer, inboxRepo, integration.OrderCreatedConsumerName, pipelineMetrics, log))

	productIndexSyncConsumer := integration.NewProductIndexSyncConsumer(productIndexRepo, log)
	eventBus.Subscribe(event.NewInboxHandler(
		productIndexSyncConsumer, inboxRepo, integration.ProductIndexSyncConsumerName, pipelineMetrics, log))

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	registry := event.NewDispatchRegistry()
	event.RegisterKnownEvents(registry)

	relayConfig := event.OutboxRelayConfig{
		BatchSize:    cfg.Outbox.BatchSize,
		PollInterval: cfg.Outbox.PollInterval,
	}
	relay := event.NewOutboxRelay(outboxRepo, registry, eventBus, relayConfig, pipelineMetrics, log)
	if cfg.Outbox.RelayEnabled {
		if err := relay.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox relay", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := relay.Stop(stopCtx); err != nil {
				log.Error("Error stopping outbox relay", zap.Error(err))
			}
		}()
		log.Info("Outbox relay started",
			zap.Int("batch_size", relayConfig.BatchSize),
			zap.Duration("poll_interval", relayConfig.PollInterval),
		)
	} else {
		log.Warn("Outbox relay disabled, events will accumulate until another relay drains them")
	}

	// HTTP interface
	jwtService := auth.NewJWTService(cfg.JWT)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.AccessLog(log),
		middleware.CORS(cfg.HTTP.CORSAllowOrigins),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	if cfg.RateLimit.HTTPEnabled {
		engine.Use(middleware.RateLimit(limiter, ratelimit.Policy{
			Scope:  "http",
			Limit:  int64(cfg.RateLimit.HTTPRequests),
			Window: cfg.RateLimit.HTTPWindow,
		}, log))
	}

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithAuthMiddleware(middleware.JWTAuthMiddleware(jwtService, log)),
	)
	r.Register(handler.NewProductHandler(productService))
	r.Register(handler.NewCartHandler(cartService))
	r.Register(handler.NewOrderHandler(orderService))
	r.Register(handler.NewInventoryHandler(inventoryService))
	r.Register(handler.NewSupportHandler(supportService))
	r.Register(handler.NewContactHandler(contactService))
	r.Register(handler.NewRecommendationHandler(recommendationService))
	r.Register(handler.NewSystemHandler(db, redisClient, outboxRepo))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}
