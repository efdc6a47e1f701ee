package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/tableside/backend/internal/application/billing"
	orderingapp "github.com/tableside/backend/internal/application/ordering"
	"github.com/tableside/backend/internal/domain/ordering"
	"github.com/tableside/backend/internal/domain/shared"
	"github.com/tableside/backend/internal/infrastructure/cache"
	"github.com/tableside/backend/internal/infrastructure/config"
	"github.com/tableside/backend/internal/infrastructure/event"
	"github.com/tableside/backend/internal/infrastructure/logger"
	"github.com/tableside/backend/internal/infrastructure/persistence"
	"github.com/tableside/backend/internal/infrastructure/remote"
	"github.com/tableside/backend/internal/interfaces/http/handler"
	"github.com/tableside/backend/internal/interfaces/http/middleware"
	"github.com/tableside/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
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
		_ = log.Sync()
	}()

	log.Info("Starting Tableside Order Engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(cfg, log)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database ready", zap.String("path", cfg.Database.Path))

	// Initialize repositories
	selectionRepo := persistence.NewGormSelectionRepository(db.DB)
	historyRepo := persistence.NewGormOrderHistoryRepository(db.DB)
	orderCounter := persistence.NewGormOrderCounter(db.DB)
	sessionRepo := persistence.NewGormSessionRepository(db.DB)

	// Attempt store for submission idempotency
	attemptStore := cache.NewAttemptStore(cfg, log)
	defer func() {
		_ = attemptStore.Close()
	}()

	// Remote order backend; an empty base URL means local-only operation
	var gateway ordering.RemoteOrderGateway
	if cfg.Remote.BaseURL != "" {
		gateway = remote.NewOrdersClient(cfg.Remote.BaseURL)
		log.Info("Remote order backend configured", zap.String("base_url", cfg.Remote.BaseURL))
	} else {
		log.Info("No remote order backend configured, running local-only")
	}

	pricing := cfg.ToPricing()

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize application services
	selectionService := orderingapp.NewSelectionService(selectionRepo, log)
	selectionService.SetEventPublisher(eventBus)

	submissionService := orderingapp.NewSubmissionService(
		selectionRepo, historyRepo, orderCounter, gateway, attemptStore, pricing, log)
	submissionService.SetRemoteTimeout(cfg.Remote.Timeout)
	submissionService.SetAttemptConfig(shared.AttemptConfig{
		TTL:     cfg.Attempt.TTL,
		Enabled: cfg.Attempt.Enabled,
	})
	submissionService.SetEventPublisher(eventBus)

	historyService := orderingapp.NewHistoryService(historyRepo, log)

	checkoutService := billingapp.NewCheckoutService(selectionRepo, sessionRepo, pricing, log)
	checkoutService.SetEventPublisher(eventBus)

	// Status watcher polls the backend for progress on remote orders
	if cfg.Watcher.Enabled {
		watcher := orderingapp.NewStatusWatcher(historyRepo, gateway, log)
		watcher.SetInterval(cfg.Watcher.PollInterval)
		watcher.SetEventPublisher(eventBus)
		watcher.Start(context.Background())
		defer watcher.Stop()
	}

	// HTTP metrics, fed by the middleware and by submission events
	metrics := middleware.NewHTTPMetrics()
	eventBus.Subscribe(&submissionMetricsHandler{metrics: metrics})

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(metrics.Middleware())

	// Prometheus scrape endpoint (outside API versioning)
	engine.GET("/metrics", metrics.Handler())

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewSelectionHandler(selectionService))
	r.Register(handler.NewOrderHandler(submissionService, historyService))
	r.Register(handler.NewCheckoutHandler(checkoutService))
	r.Register(handler.NewSystemHandler(db))
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// submissionMetricsHandler feeds order submission events into the
// Prometheus counters.
type submissionMetricsHandler struct {
	metrics *middleware.HTTPMetrics
}

func (h *submissionMetricsHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	if submitted, ok := e.(*ordering.OrderSubmittedEvent); ok {
		h.metrics.RecordSubmission(string(submitted.Origin))
	}
	return nil
}

func (h *submissionMetricsHandler) EventTypes() []string {
	return []string{ordering.EventOrderSubmitted}
}
