package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/orders/backend/internal/application/catalog"
	identityapp "github.com/orders/backend/internal/application/identity"
	"github.com/orders/backend/internal/application/notification"
	tradeapp "github.com/orders/backend/internal/application/trade"
	"github.com/orders/backend/internal/infrastructure/auth"
	"github.com/orders/backend/internal/infrastructure/cache"
	"github.com/orders/backend/internal/infrastructure/config"
	"github.com/orders/backend/internal/infrastructure/event"
	"github.com/orders/backend/internal/infrastructure/feed"
	"github.com/orders/backend/internal/infrastructure/logger"
	"github.com/orders/backend/internal/infrastructure/mail"
	"github.com/orders/backend/internal/infrastructure/persistence"
	"github.com/orders/backend/internal/infrastructure/storage"
	"github.com/orders/backend/internal/infrastructure/telemetry"
	"github.com/orders/backend/internal/interfaces/http/handler"
	"github.com/orders/backend/internal/interfaces/http/middleware"
	"github.com/orders/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry first so the log bridge sees every later record
	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = lp.Attach(log)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
		if err := lp.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()

	log.Info("Starting orders backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Database.SlowThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if db.Driver == persistence.DriverSQLite {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to create sqlite schema", zap.Error(err))
		}
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled: cfg.Telemetry.DBTraceEnabled,
		DBName:  cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", db.Driver))

	// Redis backs the shop lock and the token blacklist; without it both stay in memory
	redisClient, err := cache.NewClientFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).Connect(ctx)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient != nil {
		defer func() {
			_ = redisClient.Close()
		}()
	}
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}
	shopLock := cache.NewShopLock(redisClient, cfg.Import.LockTTL)

	metrics := telemetry.NewMetrics()

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	tokenRepo := persistence.NewGormTokenRepository(db.DB)
	shopRepo := persistence.NewGormShopRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	variantRepo := persistence.NewGormVariantRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	catalogWriter := persistence.NewGormCatalogWriter(db.DB)

	// Event bus with the mail notifications
	eventBus := event.NewInMemoryEventBus(log, event.Config{})
	sender := mail.New(cfg.Mail, log)
	eventBus.Subscribe(notification.NewAccountMailer(sender, log))
	eventBus.Subscribe(notification.NewOrderMailer(orderRepo, userRepo, sender, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Identity
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist)
	userService := identityapp.NewUserService(userRepo, tokenRepo, eventBus, blacklist, cfg.Token, jwtService.Expiration())

	// Catalog import
	importOpts := []catalogapp.ImportOption{catalogapp.WithRecorder(metrics)}
	if cfg.Import.ArchiveEnabled {
		archive, err := storage.NewS3FeedArchive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create feed archive", zap.Error(err))
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare feed archive bucket", zap.Error(err))
		}
		importOpts = append(importOpts, catalogapp.WithArchive(archive))
	}
	fetcher := feed.NewHTTPFetcher(feed.FetcherConfig{
		Timeout:  cfg.Import.FetchTimeout,
		MaxBytes: cfg.Import.MaxDocumentBytes,
	})
	importService := catalogapp.NewImportService(fetcher, catalogWriter, shopRepo, shopLock, eventBus, importOpts...)
	importQueue := catalogapp.NewImportQueue(importService, metrics, log, catalogapp.QueueConfig{
		Workers:   cfg.Import.Workers,
		QueueSize: cfg.Import.QueueSize,
	})
	if err := importQueue.Start(ctx); err != nil {
		log.Fatal("Failed to start import queue", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := importQueue.Stop(stopCtx); err != nil {
			log.Error("Error stopping import queue", zap.Error(err))
		}
	}()

	partnerService := catalogapp.NewPartnerService(shopRepo, importQueue, eventBus)
	queryService := catalogapp.NewQueryService(categoryRepo, shopRepo, variantRepo)

	// Trade
	basketService := tradeapp.NewBasketService(orderRepo, metrics)
	contactService := tradeapp.NewContactService(contactRepo)
	orderService := tradeapp.NewOrderService(orderRepo, eventBus, metrics)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	var exporter router.MetricsExporter
	if cfg.Telemetry.MetricsEnabled {
		exporter = metrics
	}
	checks := map[string]router.HealthCheck{"database": db.Ping}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	engine := router.NewEngine(ctx, router.Config{
		HTTP:          cfg.HTTP,
		Telemetry:     cfg.Telemetry,
		Authenticator: authService,
		Logger:        log,
		Metrics:       exporter,
		Checks:        checks,
	}, router.Handlers{
		User:    handler.NewUserHandler(userService, authService),
		Partner: handler.NewPartnerHandler(partnerService, orderService),
		Catalog: handler.NewCatalogHandler(queryService),
		Basket:  handler.NewBasketHandler(basketService),
		Contact: handler.NewContactHandler(contactService),
		Order:   handler.NewOrderHandler(orderService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serveErr:
		if err != nil {
			log.Error("Server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
