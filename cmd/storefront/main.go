package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/events"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
	"github.com/fjod/go_cart/storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	l, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer l.Sync()
	zap.ReplaceGlobals(l)

	shipping, _ := cfg.Shipping()

	// Backend REST client
	breaker := circuitbreaker.DefaultSettings("merchant-backend")
	breaker.ConsecutiveFailures = cfg.BreakerFailures
	breaker.OpenTimeout = cfg.BreakerOpenTimeout
	client := backend.New(cfg.BackendURL,
		backend.WithHTTPClient(&http.Client{
			Transport: backend.NewTransport(breaker, l),
			Timeout:   cfg.RequestTimeout,
		}),
		backend.WithLogger(l),
	)
	backendFor := h.ClientBackend(client)

	// Catalog cache
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		l.Warn("redis unavailable, catalog reads go to the backend", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	products := catalog.NewService(catalog.NewRedisCache(rdb, cfg.CatalogTTL), l)

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Checkout events
	var publisher events.Publisher = events.Nop
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaTopic, l, brokers...)
		defer kp.Close()
		publisher = kp

		// verified checkouts change stock
		consumer := events.NewConsumer(cfg.KafkaTopic, cfg.KafkaGroupID, func(ctx context.Context, e events.CheckoutEvent) error {
			if e.Type != events.CheckoutVerified {
				return nil
			}
			return products.InvalidateAll(ctx)
		}, l, brokers...)
		defer consumer.Close()
		go consumer.Run(runCtx)

		l.Info("checkout events enabled", zap.Strings("brokers", brokers), zap.String("topic", cfg.KafkaTopic))
	}

	settings := checkout.DefaultSettings()
	settings.KeyID = cfg.PaymentKeyID
	settings.Currency = cfg.PaymentCurrency
	settings.MerchantName = cfg.MerchantName
	settings.Description = "Purchase from " + cfg.MerchantName
	settings.ThemeColor = cfg.ThemeColor
	settings.RedirectTo = cfg.RedirectOnSuccess
	settings.RedirectDelay = cfg.RedirectDelay
	if settings.KeyID == "" {
		l.Warn("PAYMENT_KEY_ID is not set, checkouts will fail to open the payment widget")
	}
	registry := checkout.NewRegistry(settings, publisher, l, checkout.WithIdleTTL(cfg.CheckoutIdleTTL))
	go registry.Run(runCtx, time.Minute)

	r := h.NewRouter(h.Handlers{
		Admin:    h.NewAdminHandler(backendFor, products, cfg.RequestTimeout, l),
		Auth:     h.NewAuthHandler(backendFor, cfg.RequestTimeout, l),
		Cart:     h.NewCartHandler(backendFor, shipping, cfg.RequestTimeout, l),
		Checkout: h.NewCheckoutHandler(backendFor, registry, products, shipping, cfg.RequestTimeout, l),
		Orders:   h.NewOrdersHandler(backendFor, cfg.RequestTimeout, l),
		Products: h.NewProductHandler(backendFor, products, cfg.RequestTimeout),
	}, backendFor, cfg.RequestTimeout, cfg.MaxRequestBodySize)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		l.Info("storefront starting", zap.String("port", cfg.HTTPPort), zap.String("backend", cfg.BackendURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down server...")
	stop()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		l.Error("server forced to shutdown", zap.Error(err))
		return
	}

	l.Info("server exited")
}
