package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/lookprice/lookprice/internal/api"
	"github.com/lookprice/lookprice/internal/cache"
	"github.com/lookprice/lookprice/internal/config"
	"github.com/lookprice/lookprice/internal/db"
	"github.com/lookprice/lookprice/internal/live"
	"github.com/lookprice/lookprice/internal/middleware"
	"github.com/lookprice/lookprice/internal/observ"
	"github.com/lookprice/lookprice/internal/repository/postgres"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// Startup has no parent request and no deadline — Background() is the
	// right root. Each HTTP request later gets its own context.
	ctx := context.Background()

	database, err := db.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := database.SeedSuperadmin(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return fmt.Errorf("seed superadmin: %w", err)
	}

	// Redis is optional: no REDIS_URL means branding is served straight
	// from Postgres. cache methods are nil-receiver safe.
	brandingCache, err := cache.New(ctx, cfg.RedisURL, logger)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer brandingCache.Close()

	pool := database.Pool()
	storeRepo := postgres.NewStoreStore(pool)
	userRepo := postgres.NewUserStore(pool)
	productRepo := postgres.NewProductStore(pool)
	scanRepo := postgres.NewScanStore(pool)

	hub := live.NewHub(logger)

	authHandler := api.NewAuthHandler(userRepo, cfg.JWTSecret, cfg.TokenTTL, logger)
	publicHandler := api.NewPublicHandler(storeRepo, productRepo, scanRepo, brandingCache, hub, logger)
	adminHandler := api.NewAdminHandler(storeRepo, userRepo, brandingCache, cfg.DefaultCurrency, logger)
	productHandler := api.NewProductHandler(productRepo, cfg.DefaultCurrency, logger)
	importHandler := api.NewImportHandler(productRepo, cfg.DefaultCurrency, logger)
	userHandler := api.NewUserHandler(userRepo, logger)
	analyticsHandler := api.NewAnalyticsHandler(scanRepo, logger)
	brandingHandler := api.NewBrandingHandler(storeRepo, brandingCache, logger)
	liveHandler := api.NewLiveHandler(hub, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := gin.New()
	srv.Use(gin.Logger(), gin.Recovery(), observ.MetricsMiddleware())

	// Unauthenticated surface: health for load balancers, metrics for the
	// Prometheus scraper, and the customer-facing scan endpoints.
	srv.GET("/api/health", func(c *gin.Context) {
		if err := database.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	srv.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := srv.Group("/api/public")
	public.GET("/store/:slug", publicHandler.GetBranding)
	public.GET("/scan/:slug/:barcode", publicHandler.Scan)

	srv.POST("/api/auth/login", authHandler.Login)

	// Console: valid token AND superadmin role.
	admin := srv.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg.JWTSecret), middleware.RequireSuperadmin())
	admin.GET("/stores", adminHandler.ListStores)
	admin.POST("/stores", adminHandler.CreateStore)
	admin.PUT("/stores/:id", adminHandler.UpdateStore)
	admin.POST("/stores/bulk-subscription", adminHandler.BulkSubscription)
	admin.GET("/stats", adminHandler.Stats)

	// Back office: any authenticated role; per-operation checks live in the
	// handlers, the effective store id in middleware.EffectiveStoreID.
	store := srv.Group("/api/store")
	store.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	store.GET("/me", userHandler.GetMe)
	store.GET("/products", productHandler.List)
	store.POST("/products", productHandler.Create)
	store.PUT("/products/:id", productHandler.Update)
	store.DELETE("/products/:id", productHandler.Delete)
	store.DELETE("/products", productHandler.DeleteAll)
	store.POST("/import", importHandler.Import)
	store.GET("/users", userHandler.List)
	store.POST("/users", userHandler.Invite)
	store.DELETE("/users/:id", userHandler.Delete)
	store.GET("/analytics", analyticsHandler.Get)
	store.POST("/branding", brandingHandler.Update)
	store.GET("/scans/live", liveHandler.Stream)

	logger.Info("starting LookPrice API",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.Bool("redis", brandingCache != nil),
	)

	if err := srv.Run(":" + cfg.Port); err != nil {
		return fmt.Errorf("run server: %w", err)
	}
	return nil
}
