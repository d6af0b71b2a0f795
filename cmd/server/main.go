package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcheque "github.com/propman/backend/internal/application/cheque"
	"github.com/propman/backend/internal/infrastructure/cache"
	"github.com/propman/backend/internal/infrastructure/config"
	"github.com/propman/backend/internal/infrastructure/logger"
	"github.com/propman/backend/internal/infrastructure/persistence"
	"github.com/propman/backend/internal/infrastructure/scheduler"
	"github.com/propman/backend/internal/infrastructure/telemetry"
	"github.com/propman/backend/internal/interfaces/http/handler"
	"github.com/propman/backend/internal/interfaces/http/middleware"
	"github.com/propman/backend/internal/interfaces/http/router"
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

	log.Info("Starting PDC Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
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
	pdcRepo := persistence.NewGormPDCRepository(db.DB)
	chainWalker := persistence.NewGormChainWalker(db.DB)
	dashboardRepo := persistence.NewGormDashboardRepository(db.DB, cfg.PDC.DueWindowDays)
	tenantDir := persistence.NewGormTenantDirectory(db.DB)
	bankAccountDir := persistence.NewGormBankAccountDirectory(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Dashboard snapshot cache (optional)
	var summaryCache appcheque.SummaryCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisSummaryCache(cfg.Redis, cache.WithCacheLogger(log))
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		summaryCache = redisCache
		log.Info("Dashboard cache enabled", zap.String("addr", cfg.Redis.Addr()))
	} else {
		summaryCache = cache.NewMemorySummaryCache()
		log.Info("Dashboard cache running in-process")
	}

	// Initialize application services
	pdcService := appcheque.NewPDCService(pdcRepo, chainWalker, tenantDir, bankAccountDir, txScope, log)
	dashboardService := appcheque.NewDashboardService(
		dashboardRepo, summaryCache, cfg.PDC.HolderName, cfg.PDC.DashboardCacheTTL, log)

	// Due-date reclassification scheduler (if enabled)
	if cfg.Scheduler.Enabled {
		dueScheduler := scheduler.NewDueScheduler(scheduler.Config{
			CheckInterval: cfg.Scheduler.CheckInterval,
			BatchSize:     cfg.Scheduler.BatchSize,
		}, pdcService, log)
		if err := dueScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start due scheduler", zap.Error(err))
		}
		defer func() {
			if err := dueScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping due scheduler", zap.Error(err))
			}
		}()
		log.Info("Due scheduler started",
			zap.Duration("check_interval", cfg.Scheduler.CheckInterval),
			zap.Int("batch_size", cfg.Scheduler.BatchSize),
		)
	}

	// Initialize HTTP handlers
	pdcHandler := handler.NewPDCHandler(pdcService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	systemHandler := handler.NewSystemHandler(db)

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

	// Middleware stack: request ID, panic recovery, request logging, CORS,
	// then tenant extraction for the API surface.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Tenant header is parsed for every request but only enforced in the
	// handlers: dashboard endpoints accept portfolio-wide queries without it.
	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.Required = false
	engine.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))

	// Health endpoints outside API versioning
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ping", systemHandler.Ping)

	// Register API routes
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(pdcHandler).
		Register(dashboardHandler).
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
