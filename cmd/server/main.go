package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"storefront-be/internal/address"
	"storefront-be/internal/api"
	"storefront-be/internal/auth"
	"storefront-be/internal/cart"
	"storefront-be/internal/checkout"
	"storefront-be/internal/config"
	"storefront-be/internal/db"
	"storefront-be/internal/logger"
	"storefront-be/internal/loyalty"
	"storefront-be/internal/middleware"
	"storefront-be/internal/notify"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/payment/webhook"
	"storefront-be/internal/product"
	"storefront-be/internal/user"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

type app struct {
	handler http.Handler
	limiter *middleware.RateLimiter
	relay   *notify.Relay
}

// newApp wires every dependency explicitly. The outbox relay is left nil
// when no email provider is configured; messages then stay queued.
func newApp(cfg *config.Config, database *sql.DB) (*app, error) {
	log := logger.L()

	tokens := auth.NewTokenManager(cfg.JWTSecret)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo, tokens)

	addressSvc := address.NewService(address.NewRepository(database))

	cartSvc := cart.NewService(cart.NewRepository(database), productRepo)

	outbox := notify.NewRepository(database)
	notifier, err := notify.NewNotifier(outbox, userSvc)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimSuffix(cfg.AppBaseURL, "/")
	gateway := payment.NewStripeGateway(payment.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		APIURL:        cfg.StripeAPIURL,
		SuccessURL:    baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     baseURL + "/cart",
	})

	checkoutSvc := checkout.NewService(
		addressSvc,
		productSvc,
		cartSvc,
		gateway,
		checkout.Pricing{
			FreeShippingThreshold: cfg.FreeShippingThreshold,
			ShippingFee:           cfg.ShippingFee,
			TaxRate:               cfg.TaxRate,
		},
		cfg.Currency,
	)

	orderSvc := order.NewService(order.NewRepository(database), productSvc, notifier)
	loyaltySvc := loyalty.NewService(
		loyalty.NewRepository(database),
		loyalty.Converter{PointsPerUnit: cfg.LoyaltyPointsPerUnit},
	)

	webhookHandler := webhook.NewWebhookHandler(
		gateway,
		payment.NewRepository(database),
		orderSvc,
		loyaltySvc,
		notifier,
	)

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey, api.StrictPaths()...)

	srv := api.NewServer(api.Deps{
		DB:            database,
		Tokens:        tokens,
		Limiter:       limiter,
		AllowedOrigin: baseURL,
		SecureCookies: cfg.IsProduction(),
		Products:      productSvc,
		Users:         userSvc,
		Addresses:     addressSvc,
		Carts:         cartSvc,
		Checkout:      checkoutSvc,
		Orders:        orderSvc,
		Loyalty:       loyaltySvc,
		Webhook:       http.HandlerFunc(webhookHandler.PaymentWebhookHandler),
	})

	a := &app{handler: srv.Routes(), limiter: limiter}

	sender, err := notify.NewResendSender(notify.ResendConfig{
		APIKey:  cfg.ResendAPIKey,
		From:    cfg.EmailFrom,
		BaseURL: cfg.ResendAPIURL,
	})
	switch {
	case errors.Is(err, notify.ErrSenderNotConfigured):
		log.Warn("RESEND_API_KEY not set; outbox relay disabled")
	case err != nil:
		return nil, err
	default:
		a.relay = notify.NewRelay(outbox, sender, notify.RelayConfig{
			PollInterval: cfg.OutboxPollInterval,
			MaxAttempts:  cfg.OutboxMaxAttempts,
		})
	}

	return a, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.L().Fatal("failed to load config", zap.Error(err))
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	database := db.InitDB(cfg)
	defer database.Close()

	a, err := newApp(cfg, database)
	if err != nil {
		log.Fatal("failed to build application", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.limiter.Run(ctx)
	}()
	if a.relay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.relay.Run(ctx)
		}()
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("server started", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	wg.Wait()

	log.Info("server exited")
}
