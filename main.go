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

	"github.com/Kariqs/storefront-api/controllers"
	"github.com/Kariqs/storefront-api/initializers"
	"github.com/Kariqs/storefront-api/middlewares"
	"github.com/Kariqs/storefront-api/routes"
	"github.com/Kariqs/storefront-api/services"
	"github.com/Kariqs/storefront-api/store"
	"github.com/Kariqs/storefront-api/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const storeName = "Rouje Naturel Shea"

func main() {
	cfg := initializers.LoadConfig()

	logger, err := initializers.NewLogger(cfg)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	db, err := initializers.ConnectToDB(cfg)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	if err := initializers.SyncDatabase(db); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}
	st := store.New(db)

	rdb, err := initializers.ConnectToRedis(cfg)
	if err != nil {
		logger.Warn("redis unavailable, idempotent checkout disabled", zap.Error(err))
	}

	events := utils.NewOrderEventPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic, cfg.Currency)
	if events == nil {
		logger.Info("KAFKA_BROKERS not set, order events disabled")
	}
	mailer := utils.NewMailer(utils.MailConfig{
		Address:  cfg.SMTPAddress,
		Host:     cfg.SMTPHost,
		From:     cfg.FromEmail,
		Password: cfg.FromEmailPassword,
	})
	notifier := utils.Notifiers{
		&utils.MailNotifier{Mailer: mailer, Orders: st, OwnerEmail: cfg.OwnerEmail, StoreName: storeName, Currency: cfg.Currency},
		events,
	}

	if cfg.PaystackSecretKey == "" {
		logger.Warn("PAYSTACK_SECRET_KEY not set, payment initialization will be rejected by the gateway")
	}
	gateway := utils.NewPaystackClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey, cfg.PaymentTimeout)

	checkout := services.NewCheckoutService(services.CheckoutDeps{
		Tx:             st,
		Carts:          st,
		Orders:         st,
		Catalog:        st,
		PaymentMethods: st,
		Notifier:       notifier,
		NotifyTimeout:  cfg.NotifyTimeout,
	})
	orderQueries := services.NewOrderQueryService(st)
	payments := services.NewPaymentService(st, gateway, cfg.Currency, cfg.PaymentTimeout)

	checks := map[string]controllers.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	auth := controllers.NewAuthController(st, mailer, controllers.AuthConfig{
		JWTSecret:   cfg.JWTSecret,
		FrontendURL: cfg.FrontendURL,
		StoreName:   storeName,
		ResetTTL:    cfg.PasswordResetTTL,
	})

	server := routes.NewServer(routes.ServerDeps{
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		Guards: routes.Guards{
			Auth:        middlewares.RequireAuth(cfg.JWTSecret),
			Admin:       middlewares.RequireAdmin(),
			Idempotency: middlewares.Idempotency(rdb, cfg.IdempotencyTTL),
		},
		Default:  controllers.NewDefaultController(checks),
		Auth:     auth,
		Users:    controllers.NewUserController(st),
		Products: controllers.NewProductController(st),
		Cart:     controllers.NewCartController(services.NewCartService(st, st, st)),
		Orders:   controllers.NewOrderController(checkout, orderQueries, payments),
		Payments: controllers.NewPaymentController(payments),
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http_server_start", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", zap.Error(err))
	} else {
		logger.Info("http_server_stopped")
	}

	// let post-commit notifications finish before closing their transports
	checkout.Wait()
	if err := events.Close(); err != nil {
		logger.Warn("close order event writer", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
