package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lacabane/commandes/internal/config"
	"github.com/lacabane/commandes/internal/db"
	"github.com/lacabane/commandes/internal/kafka"
	"github.com/lacabane/commandes/internal/logger"
	"github.com/lacabane/commandes/internal/repository/postgresql"
	"github.com/lacabane/commandes/internal/sellers"
	"github.com/lacabane/commandes/internal/server"
	"github.com/lacabane/commandes/internal/store"
)

func main() {
	log := logger.New()
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config error", zap.Error(err))
	}

	database, err := db.NewDb(ctx, cfg.DSN())
	if err != nil {
		log.Fatal("database init error", zap.Error(err))
	}
	defer database.Close()

	if err := db.InitAdmin(ctx, database, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal("admin init error", zap.Error(err))
	}

	orderRepo := postgresql.NewOrderRepo(database)
	sellerRepo := postgresql.NewSellerRepo(database)
	userRepo := postgresql.NewUserRepo(database)
	outboxRepo := postgresql.NewOutboxTaskRepo(cfg.OutboxMaxAttempts)

	orderStore := store.NewPostgres(database, orderRepo, outboxRepo, cfg.KafkaTopic, cfg.StorePollInterval, log)
	sellerSvc := sellers.NewService(sellerRepo, log)

	var producer kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewWriterProducer(cfg.KafkaBrokers)
	} else {
		producer = kafka.NewConsoleProducer(log)
	}

	publisher := kafka.NewPublisher(database, outboxRepo, producer, kafka.PublisherConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxAttempts:  cfg.OutboxMaxAttempts,
	}, log)

	srv := server.New(orderStore, sellerSvc, userRepo, log)

	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: promhttp.Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(gctx, cfg.HTTPPort)
	})
	g.Go(func() error {
		publisher.Run(gctx)
		return nil
	})
	g.Go(func() error {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http server shutdown failed", zap.Error(err))
		}
		_ = metricsServer.Shutdown(shutdownCtx)
		publisher.Shutdown()
		return nil
	})

	log.Info("service started",
		zap.String("http_port", cfg.HTTPPort),
		zap.String("metrics_port", cfg.MetricsPort))

	if err := g.Wait(); err != nil {
		log.Fatal("service stopped with error", zap.Error(err))
	}
	log.Info("service stopped")
}
