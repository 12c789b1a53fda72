package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/print24/pricing_api/internal/cache"
	"github.com/print24/pricing_api/internal/config"
	"github.com/print24/pricing_api/internal/database"
	"github.com/print24/pricing_api/internal/handler"
	"github.com/print24/pricing_api/internal/middleware"
	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/repository"
	"github.com/print24/pricing_api/internal/service"
	"github.com/print24/pricing_api/internal/worker"
)

// main is the application entrypoint for the pricing API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting pricing api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	priceCache := cache.NewPriceCache(redisClient, cfg.Pricing.CacheTTL)

	// 4. Initialize repositories
	zoneRepo := repository.NewGeoZoneRepository(db)
	segmentRepo := repository.NewUserSegmentRepository(db)
	productRepo := repository.NewProductRepository(db)
	bookRepo := repository.NewPriceBookRepository(db)
	modifierRepo := repository.NewModifierRepository(db)
	conflictRepo := repository.NewConflictRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	logRepo := repository.NewPricingLogRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)

	// 5. Initialize services
	evaluator := service.NewConditionEvaluator(cfg.Pricing.MaxConditionDepth)
	segmentSvc := service.NewSegmentService(zoneRepo, segmentRepo)
	bookSvc := service.NewPriceBookService(bookRepo)
	modifierSvc := service.NewModifierService(modifierRepo, evaluator)
	waterfallSvc := service.NewWaterfallService(bookSvc, modifierSvc)
	conflictSvc := service.NewConflictService(bookRepo, modifierRepo, conflictRepo, cfg.Pricing.ConflictThresholdPct)
	adminAuthSvc := service.NewAdminAuthService(adminRepo)

	auditRetry := make(chan models.PricingCalculationLog, 1024)
	pricingSvc := service.NewPricingService(
		segmentSvc, waterfallSvc, productRepo, priceCache, logRepo,
		auditRetry, cfg.Pricing.DefaultCurrency, cfg.Pricing.SnapshotSecret,
	)
	orderSvc := service.NewOrderService(pricingSvc, orderRepo)

	// 6. Initialize handlers
	handlers := &Handlers{
		Health:    handler.NewHealthHandler(db, redisClient),
		Auth:      handler.NewAuthHandler(adminAuthSvc),
		Pricing:   handler.NewPricingHandler(pricingSvc, bookSvc),
		Modifier:  handler.NewModifierHandler(modifierRepo, modifierSvc, evaluator, pricingSvc),
		PriceBook: handler.NewPriceBookHandler(bookRepo, conflictSvc, pricingSvc),
		Territory: handler.NewTerritoryHandler(zoneRepo, segmentRepo),
		Order:     handler.NewOrderHandler(orderSvc, logRepo),
	}

	// 7. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw)

	// 9. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 10. Start workers
	go worker.NewAuditWorker(logRepo, auditRetry, cfg.Worker.AuditRetryInterval).Start(ctx)
	go worker.NewPruneWorker(bookRepo, cfg.Worker.OrphanPruneInterval).Start(ctx)

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Pricing   *handler.PricingHandler
	Modifier  *handler.ModifierHandler
	PriceBook *handler.PriceBookHandler
	Territory *handler.TerritoryHandler
	Order     *handler.OrderHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Public pricing routes
	pricing := router.Group("/v1/pricing")
	{
		pricing.POST("/resolve", handlers.Pricing.ResolvePrices)
		pricing.GET("/hierarchy/:productId", handlers.Pricing.GetHierarchy)
	}

	// Public condition tooling (no secrets involved; rules are evaluated,
	// never stored, through these endpoints)
	router.POST("/v1/modifiers/validate-conditions", handlers.Modifier.ValidateConditions)
	router.POST("/v1/modifiers/test-conditions", handlers.Modifier.TestConditions)

	// Public order routes
	orders := router.Group("/v1/orders")
	{
		orders.POST("", handlers.Order.Create)
		orders.GET("/:id", handlers.Order.Get)
	}

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", handlers.Auth.Login)
	admin.Use(jwtMiddleware.Handle())
	{
		// Price Book Management
		admin.GET("/price-books", handlers.PriceBook.List)
		admin.POST("/price-books", handlers.PriceBook.Create)
		admin.GET("/price-books/:id", handlers.PriceBook.Get)
		admin.PUT("/price-books/:id", handlers.PriceBook.Update)
		admin.DELETE("/price-books/:id", handlers.PriceBook.Delete)
		admin.PUT("/price-books/:id/master", handlers.PriceBook.SetMaster)
		admin.PUT("/price-books/:id/entries", handlers.PriceBook.UpsertEntry)
		admin.DELETE("/price-books/:id/entries/:productId", handlers.PriceBook.DeleteEntry)

		// Conflict analysis
		admin.POST("/price-books/check-conflicts", handlers.PriceBook.CheckConflicts)
		admin.POST("/price-books/resolve-conflict", handlers.PriceBook.ResolveConflict)

		// Modifier Management
		admin.GET("/modifiers", handlers.Modifier.List)
		admin.POST("/modifiers", handlers.Modifier.Create)
		admin.GET("/modifiers/:id", handlers.Modifier.Get)
		admin.PUT("/modifiers/:id", handlers.Modifier.Update)
		admin.DELETE("/modifiers/:id", handlers.Modifier.Delete)

		// Reference data
		admin.GET("/zones", handlers.Territory.ListZones)
		admin.GET("/zones/resolve", handlers.Territory.ResolveZone)
		admin.GET("/zones/:id/ancestry", handlers.Territory.GetZoneAncestry)
		admin.GET("/segments", handlers.Territory.ListSegments)

		// Order audit
		admin.GET("/orders/:id/pricing-logs", handlers.Order.GetPricingLogs)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
