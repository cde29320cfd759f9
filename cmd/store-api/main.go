package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/cybersweeft1/sweeftprojects/api/swagger"
	"github.com/cybersweeft1/sweeftprojects/internal/handler"
	"github.com/cybersweeft1/sweeftprojects/internal/middleware"
	"github.com/cybersweeft1/sweeftprojects/internal/repository"
	"github.com/cybersweeft1/sweeftprojects/internal/service"
	"github.com/cybersweeft1/sweeftprojects/pkg/cache"
	"github.com/cybersweeft1/sweeftprojects/pkg/config"
	"github.com/cybersweeft1/sweeftprojects/pkg/database"
	"github.com/cybersweeft1/sweeftprojects/pkg/logger"
	corsmiddleware "github.com/cybersweeft1/sweeftprojects/pkg/middleware/cors"
	reqidmiddleware "github.com/cybersweeft1/sweeftprojects/pkg/middleware/requestid"
)

// @title Sweeft Projects API
// @version 1.0.0
// @description Storefront backend for academic project write-ups
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// Repositories.
	catalogSource := repository.NewCatalogSource(cfg.Catalog, logr)
	snapshotCache := repository.NewCacheRepository(redisClient, logr)
	entitlements := repository.NewEntitlementRepository(redisClient, cfg.Entitlement, logr)
	references := repository.NewReferenceRepository(redisClient)
	ledger := repository.NewLedgerRepository(db)

	// Services.
	catalogSvc := service.NewCatalogService(catalogSource, snapshotCache, cfg.Catalog, metricsSvc, logr)
	deliverySvc := service.NewDeliveryService(cfg.Delivery, metricsSvc, logr)
	deviceSvc := service.NewDeviceService(cfg.Device)
	purchaseSvc := service.NewPurchaseService(catalogSvc, entitlements, ledger, deliverySvc, cfg.Paystack, validate, metricsSvc, logr)
	verificationSvc := service.NewVerificationService(cfg.Paystack, references, purchaseSvc, metricsSvc, logr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliverySvc.Start(ctx)
	defer deliverySvc.Stop()

	// Serve a cached snapshot immediately, then refresh from the source.
	if !catalogSvc.WarmStart(ctx) {
		logr.Info("no cached catalog snapshot, loading from source")
	}
	if err := catalogSvc.Load(ctx); err != nil {
		logr.Sugar().Warnw("initial catalog load failed", "error", err)
	}
	go refreshLoop(ctx, catalogSvc, cfg.Catalog.RefreshInterval, logr)

	// Handlers.
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	configHandler := handler.NewConfigHandler(cfg.Paystack)
	purchaseHandler := handler.NewPurchaseHandler(purchaseSvc, verificationSvc)
	deliveryHandler := handler.NewDeliveryHandler(purchaseSvc, deliverySvc, ledger, catalogSvc)
	adminHandler := handler.NewAdminHandler(catalogSvc, ledger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.Device(deviceSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if catalogSvc.Snapshot() == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/api/config", configHandler.Get)

	r.GET("/projects", catalogHandler.List)
	r.GET("/projects/:id", catalogHandler.Get)
	r.GET("/schools", catalogHandler.Schools)

	r.POST("/purchases", purchaseHandler.Initiate)
	r.POST("/purchases/:reference/callback", purchaseHandler.Callback)
	r.POST("/purchases/:reference/cancel", purchaseHandler.Cancel)
	r.GET("/payments/return", purchaseHandler.Return)
	r.POST("/api/verify", purchaseHandler.Verify)
	r.GET("/entitlements", purchaseHandler.Entitlements)

	r.POST("/downloads/:projectID", deliveryHandler.Download)
	r.POST("/downloads/retry", deliveryHandler.Retry)
	r.GET("/downloads/resolve/:token", deliveryHandler.Resolve)
	r.GET("/downloads/:projectID/receipt", deliveryHandler.Receipt)

	admin := r.Group("/admin", middleware.AdminKey(cfg.Admin.APIKeyHash))
	admin.POST("/catalog/refresh", adminHandler.RefreshCatalog)
	admin.GET("/ledger/export", adminHandler.ExportLedger)

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// refreshLoop reloads the catalog on a fixed interval. A failed reload keeps
// the previous snapshot serving.
func refreshLoop(ctx context.Context, catalog *service.CatalogService, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := catalog.Load(ctx); err != nil {
				logr.Sugar().Warnw("catalog refresh failed", "error", err)
			}
		}
	}
}
