package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"acp-checkout/internal/core/cache"
	"acp-checkout/internal/core/config"
	"acp-checkout/internal/core/logger"
	"acp-checkout/internal/core/server"
	checkoutadapter "acp-checkout/internal/features/checkout/adapters"
	"acp-checkout/internal/features/checkout/domain"
	checkouthandler "acp-checkout/internal/features/checkout/handler"
	checkoutservice "acp-checkout/internal/features/checkout/service"

	"go.uber.org/zap"
)

const (
	catalogConcurrency  = 4
	startupCheckTimeout = 10 * time.Second
	shutdownTimeout     = 15 * time.Second
)

// @title ACP Checkout API
// @version 1.0
// @description Merchant-side Agentic Commerce Protocol checkout sessions backed by WooCommerce orders.
// @contact.name API Support
// @contact.email support@acp-checkout.dev
// @license.name MIT
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token issued to the agent, sent as "Bearer <token>".
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	// Session store and locks
	redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Invalid Redis configuration", zap.Error(err))
	}
	defer redisCache.Close()

	// WooCommerce adapters and startup health check
	wcAPI := checkoutadapter.NewWooCommerceAPI(cfg.WooCommerce)

	ctx, cancel := context.WithTimeout(context.Background(), startupCheckTimeout)
	if err := redisCache.Ping(ctx); err != nil {
		l.Fatal("Redis Health Check Failed", zap.Error(err))
	}
	if err := wcAPI.HealthCheck(ctx); err != nil {
		l.Fatal("WooCommerce Health Check Failed", zap.Error(err))
	}
	cancel()
	l.Info("Redis and WooCommerce connections verified")

	catalog := checkoutadapter.NewCachedCatalog(
		checkoutadapter.NewWooCommerceCatalog(wcAPI),
		redisCache,
		cfg.Checkout.CatalogCacheTTL(),
	)
	orders := checkoutadapter.NewWooCommerceOrders(wcAPI)
	sessions := checkoutadapter.NewRedisSessionRepository(redisCache)
	locker := cache.NewLocker(redisCache, cfg.Checkout.LockTTL(), cfg.Checkout.LockTimeout())

	opts, err := checkoutOptions(cfg.Checkout)
	if err != nil {
		l.Fatal("Invalid checkout configuration", zap.Error(err))
	}

	// Checkout Service & Handler
	checkoutSvc := checkoutservice.NewCheckoutService(
		checkoutservice.NewItemValidator(catalog, catalogConcurrency),
		checkoutservice.NewOrderProjection(orders, cfg.WooCommerce.Timeout()),
		sessions,
		locker,
		opts,
	)
	checkoutHdl := checkouthandler.NewCheckoutHandler(checkoutSvc)

	srv := server.New(cfg)
	srv.AddHealthCheck("redis", redisCache.Ping)
	srv.AddHealthCheck("woocommerce", wcAPI.HealthCheck)

	// Register Routes
	srv.Register(checkoutHdl.Routes()...)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		l.Info("Shutting down", zap.String("signal", sig.String()))
		if err := srv.Shutdown(shutdownTimeout); err != nil {
			l.Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}

// checkoutOptions builds the fulfillment options and policy links from config.
func checkoutOptions(cfg config.CheckoutConfig) (checkoutservice.Options, error) {
	standard, express, err := cfg.ShippingFees()
	if err != nil {
		return checkoutservice.Options{}, err
	}

	opts := checkoutservice.Options{
		DefaultCurrency:  cfg.DefaultCurrency,
		OperationTimeout: cfg.OperationTimeout(),
		FulfillmentOptions: []domain.FulfillmentOption{
			{ID: "standard", Type: "shipping", Title: "Standard Shipping", Fee: standard},
		},
	}
	if express != nil {
		opts.FulfillmentOptions = append(opts.FulfillmentOptions, domain.FulfillmentOption{
			ID: "express", Type: "shipping", Title: "Express Shipping", Fee: *express,
		})
	}

	if cfg.TermsURL != "" {
		opts.Links = append(opts.Links, domain.Link{Type: domain.LinkTypeTermsOfUse, URL: cfg.TermsURL})
	}
	if cfg.PrivacyURL != "" {
		opts.Links = append(opts.Links, domain.Link{Type: domain.LinkTypePrivacyPolicy, URL: cfg.PrivacyURL})
	}

	return opts, nil
}
