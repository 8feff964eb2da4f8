package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	syncapp "github.com/retailpos/backend/internal/application/integration"
	"github.com/retailpos/backend/internal/domain/integration"
	"github.com/retailpos/backend/internal/infrastructure/config"
	"github.com/retailpos/backend/internal/infrastructure/erp"
	"github.com/retailpos/backend/internal/infrastructure/logger"
	"github.com/retailpos/backend/internal/infrastructure/persistence"
	"github.com/retailpos/backend/internal/infrastructure/scheduler"
	"github.com/retailpos/backend/internal/interfaces/http/handler"
	"github.com/retailpos/backend/internal/interfaces/http/middleware"
	"github.com/retailpos/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting POS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	connectionRepo := persistence.NewGormConnectionRepository(db.DB)
	branchRepo := persistence.NewGormBranchRepository(db.DB)
	priceListRepo := persistence.NewGormPriceListRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	brandRepo := persistence.NewGormBrandRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)

	// Initialize ERP client (auth gateway + per-tenant gateway factory)
	erpClient, err := erp.NewClient(erp.Config{
		BaseURL:   cfg.ERP.BaseURL,
		Timeout:   cfg.ERP.Timeout,
		RateLimit: cfg.ERP.RateLimit,
		RateBurst: cfg.ERP.RateBurst,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize ERP client", zap.Error(err))
	}

	// Initialize application services
	branchSyncer := syncapp.NewBranchSyncer(branchRepo, log)
	priceListSyncer := syncapp.NewPriceListSyncer(priceListRepo, log)
	categorySyncer := syncapp.NewCategorySyncer(categoryRepo, log)
	brandSyncer := syncapp.NewBrandSyncer(brandRepo, log)
	productSyncer := syncapp.NewProductSyncer(productRepo, categoryRepo, brandRepo, priceListRepo, branchSyncer, log)
	customerSyncer := syncapp.NewCustomerSyncer(customerRepo, priceListRepo, log)

	syncService := syncapp.NewSyncService(
		connectionRepo,
		erpClient,
		erpClient,
		branchSyncer,
		priceListSyncer,
		categorySyncer,
		brandSyncer,
		productSyncer,
		customerSyncer,
		log,
	)
	tokenMaintenance := syncapp.NewTokenMaintenance(connectionRepo, erpClient, log)
	webhookManager := syncapp.NewWebhookManager(connectionRepo, erpClient, erpClient, log)

	// Start background schedulers (if enabled)
	if cfg.Sync.Enabled && cfg.Scheduler.Enabled {
		schedulerConfig := scheduler.SyncSchedulerConfig{
			Interval:          cfg.Sync.Interval,
			JobTimeout:        cfg.Sync.JobTimeout,
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
		}
		runner := scheduler.SyncRunnerFunc(func(ctx context.Context, tenantID uuid.UUID) error {
			_, err := syncService.SyncAll(ctx, tenantID)
			return err
		})
		syncScheduler, err := scheduler.NewSyncScheduler(schedulerConfig, connectionRepo, runner, log)
		if err != nil {
			log.Fatal("Failed to create sync scheduler", zap.Error(err))
		}
		if err := syncScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
		defer func() {
			if err := syncScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping sync scheduler", zap.Error(err))
			}
		}()
		log.Info("Sync scheduler started",
			zap.Duration("interval", cfg.Sync.Interval),
			zap.Duration("job_timeout", cfg.Sync.JobTimeout),
			zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
		)

		tokenSweeper, err := scheduler.NewTokenSweeper(cfg.Sync.TokenSweepInterval, tokenMaintenance, log)
		if err != nil {
			log.Fatal("Failed to create token sweeper", zap.Error(err))
		}
		if err := tokenSweeper.Start(context.Background()); err != nil {
			log.Fatal("Failed to start token sweeper", zap.Error(err))
		}
		defer func() {
			if err := tokenSweeper.Stop(context.Background()); err != nil {
				log.Error("Error stopping token sweeper", zap.Error(err))
			}
		}()
		log.Info("Token sweeper started", zap.Duration("interval", cfg.Sync.TokenSweepInterval))
	}

	// Reconcile ERP webhook subscriptions for every active tenant. Best
	// effort at startup; an unreachable ERP must not keep the server down.
	if cfg.ERP.WebhookBaseURL != "" {
		go reconcileWebhooks(webhookManager, connectionRepo, cfg.ERP.WebhookBaseURL, log)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	// Initialize HTTP handlers
	syncHandler := handler.NewSyncHandler(syncService, connectionRepo, log)
	webhookHandler := handler.NewWebhookHandler(syncService, log)
	systemHandler := handler.NewSystemHandler(db)

	// Health check endpoint (outside API versioning)
	systemHandler.RegisterHealthRoute(engine)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(syncHandler).
		Register(webhookHandler).
		Register(systemHandler).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
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

// reconcileWebhooks makes sure every active tenant's ERP subscription set
// points at this deployment's notification endpoint.
func reconcileWebhooks(manager *syncapp.WebhookManager, conns integration.ConnectionRepository, baseURL string, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	active, err := conns.FindAllActive(ctx)
	if err != nil {
		log.Error("Failed to list connections for webhook reconciliation", zap.Error(err))
		return
	}
	base := strings.TrimRight(baseURL, "/")
	for i := range active {
		tenantID := active[i].TenantID
		targetURL := base + "/api/v1/webhooks/erp/" + tenantID.String()
		if err := manager.EnsureSubscriptions(ctx, tenantID, targetURL); err != nil {
			log.Error("Webhook reconciliation failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
		}
	}
}
