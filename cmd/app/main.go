package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"go.uber.org/zap"

	"adminhub/internal/app/config"
	httpapi "adminhub/internal/app/http"
	"adminhub/internal/app/http/handler"
	"adminhub/internal/domain/audit"
	"adminhub/internal/domain/contract"
	"adminhub/internal/domain/lead"
	"adminhub/internal/domain/notification"
	"adminhub/internal/domain/webhook"
	"adminhub/internal/infrastructure/async"
	"adminhub/internal/infrastructure/cache"
	"adminhub/internal/infrastructure/db/pg"
	"adminhub/internal/infrastructure/delivery"
	"adminhub/internal/infrastructure/logging"
	"adminhub/internal/infrastructure/metrics"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db open error", zap.Error(err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("db ping error", zap.Error(err))
	}

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("goose dialect error", zap.Error(err))
	}
	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatal("goose up error", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	uow := pg.NewTxManager(db)

	bus := async.NewDispatcher(ctx, log,
		async.WithHandlerTimeout(cfg.EventHandlerTimeout),
		async.WithMetrics(metrics.NewBus(reg)),
	)

	notificationRepo := pg.NewNotificationRepository(db)
	auditRepo := pg.NewAuditRepository(db)
	deliveryRepo := pg.NewWebhookDeliveryRepository(db)
	leadRepo := pg.NewLeadRepository(db)
	contractRepo := pg.NewContractRepository(db)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, endpoint cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			redisClient = nil
		}
	}
	endpointRepo := cache.NewEndpointCache(pg.NewWebhookEndpointRepository(db), redisClient, cfg.EndpointCacheTTL, log)

	// The deliverer is resolved once here; nil keeps webhook fan-out switched off.
	var deliverer *delivery.HTTPDeliverer
	var webhookDeliverer webhook.Deliverer
	if cfg.WebhooksEnabled {
		deliverer = delivery.NewHTTPDeliverer(ctx, endpointRepo, deliveryRepo, delivery.Config{
			Timeout:     cfg.WebhookTimeout,
			Workers:     cfg.WebhookWorkers,
			RatePerSec:  cfg.WebhookRatePerSec,
			MaxAttempts: cfg.WebhookMaxAttempts,
		}, metrics.NewWebhooks(reg), log)
		webhookDeliverer = deliverer
	}

	notification.NewSubscriber(notificationRepo, log).Register(bus)
	audit.NewSubscriber(auditRepo, log).Register(bus)
	webhook.NewSubscriber(webhookDeliverer, log).Register(bus)

	leadSvc := lead.NewService(uow, leadRepo, bus)
	contractSvc := contract.NewService(uow, contractRepo, bus)
	notificationSvc := notification.NewService(notificationRepo)
	auditSvc := audit.NewService(auditRepo)
	webhookSvc := webhook.NewService(endpointRepo, deliveryRepo)

	h := handler.New(leadSvc, contractSvc, notificationSvc, auditSvc, webhookSvc, log)
	router := httpapi.NewRouter(h, reg, log)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTPAddr), zap.Bool("webhooks", deliverer != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	// Handlers still running get the rest of the shutdown budget.
	if err := bus.Close(shutdownCtx); err != nil {
		log.Warn("event handlers did not drain", zap.Error(err))
	}
	if deliverer != nil {
		deliverer.Close()
	}
}
