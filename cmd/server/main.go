package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/verdantia/storefront-backend/config"
	"github.com/verdantia/storefront-backend/internal/app/controller"
	"github.com/verdantia/storefront-backend/internal/app/repository"
	"github.com/verdantia/storefront-backend/internal/app/service"
	"github.com/verdantia/storefront-backend/internal/cart"
	"github.com/verdantia/storefront-backend/internal/db"
	"github.com/verdantia/storefront-backend/internal/metrics"
	"github.com/verdantia/storefront-backend/internal/middleware"
	"github.com/verdantia/storefront-backend/internal/router"
	"github.com/verdantia/storefront-backend/internal/scheduler"
	"github.com/verdantia/storefront-backend/internal/storage"
	"github.com/verdantia/storefront-backend/internal/tracing"
	ws "github.com/verdantia/storefront-backend/internal/websocket"
	"github.com/verdantia/storefront-backend/pkg/coupon"
	"github.com/verdantia/storefront-backend/pkg/logger"
	redisClient "github.com/verdantia/storefront-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := cfg.Log.Level
	if logLevel == "" {
		logLevel = "info"
		if cfg.Server.Environment == "development" {
			logLevel = "debug"
		}
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Format == "console",
	})

	logger.Info("Starting Verdantia storefront server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
		"cart_store":  cfg.Cart.Store,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.InitTracerProvider(cfg.Tracing.ServiceName, cfg.Tracing.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to flush traces", err)
		}
	}()

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Repositories
	productRepo := repository.NewProductRepository(db.GetDB())
	couponRepo := repository.NewCouponRepository(db.GetDB())
	cartBlobRepo := repository.NewCartBlobRepository(db.GetDB())

	// Cart persistence backend
	store, purger, err := buildBlobStore(ctx, cfg, cartBlobRepo)
	if err != nil {
		logger.Fatal("Failed to initialize cart store", err)
	}
	defer redisClient.Close()

	// Services
	cartMetrics := metrics.NewCartMetrics()
	hub := ws.NewHub()
	go hub.Run(ctx)

	couponService := service.NewCouponService(couponRepo)
	var validator cart.CouponValidator = couponService
	if cfg.Coupon.ValidatorURL != "" {
		client, err := coupon.NewClient(coupon.Config{
			BaseURL: cfg.Coupon.ValidatorURL,
			Timeout: cfg.Coupon.Timeout,
		})
		if err != nil {
			logger.Fatal("Failed to initialize coupon client", err)
		}
		validator = service.NewRemoteCouponValidator(client)
		logger.Info("Using remote coupon validator", map[string]interface{}{
			"url": cfg.Coupon.ValidatorURL,
		})
	}

	cartService := service.NewCartService(store, productRepo, validator, service.CartServiceOptions{
		KeyPrefix: cfg.Cart.KeyPrefix,
		Rates: cart.ShippingRates{
			Base:          cfg.Cart.ShippingBase,
			PerWeightUnit: cfg.Cart.ShippingRate,
		},
		Notifier: ws.NewHubNotifier(hub),
		Observer: cartMetrics,
	})
	productService := service.NewProductService(productRepo)

	maintenance := scheduler.NewCartMaintenanceScheduler(cartService, purger, cartMetrics, scheduler.CartMaintenanceConfig{
		IdleTimeout:   cfg.Cart.IdleTimeout,
		BlobRetention: cfg.Cart.BlobRetention,
	})
	if err := maintenance.Start(); err != nil {
		logger.Fatal("Failed to start cart maintenance scheduler", err)
	}
	defer maintenance.Stop()

	// HTTP
	r := router.NewRouter(
		controller.NewCartController(cartService, cfg.Cart.SessionSecret, cfg.Cart.SessionTTL),
		controller.NewCouponController(couponService),
		controller.NewProductController(productService),
		controller.NewNotificationController(hub, cfg.CORS.AllowedOrigins),
		middleware.NewCartSessionMiddleware(cfg.Cart.SessionSecret),
		cartMetrics.Handler(),
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}

// buildBlobStore returns the configured cart store and, for the SQL
// store, the purger used by the maintenance scheduler.
func buildBlobStore(ctx context.Context, cfg *config.Config, blobRepo repository.CartBlobRepository) (cart.BlobStore, scheduler.BlobPurger, error) {
	switch cfg.Cart.Store {
	case config.StoreMemory:
		logger.Warn("Carts are kept in memory and will not survive a restart")
		return cart.NewMemoryStore(), nil, nil
	case config.StoreRedis:
		if err := redisClient.Init(&cfg.Redis); err != nil {
			return nil, nil, err
		}
		return storage.NewRedisBlobStore(redisClient.GetClient(), cfg.Cart.BlobTTL), nil, nil
	case config.StoreS3:
		client := storage.NewS3Client(ctx, &cfg.S3)
		return storage.NewS3BlobStore(client, cfg.S3.Bucket, cfg.S3.Prefix), nil, nil
	case config.StorePostgres:
		return storage.NewGormBlobStore(blobRepo), blobRepo, nil
	}
	return nil, nil, fmt.Errorf("unknown cart store %q", cfg.Cart.Store)
}
