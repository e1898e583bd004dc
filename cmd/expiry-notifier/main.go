package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/gym-manager/internal/config"
	"github.com/magabrotheeeer/gym-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/gym-manager/internal/lib/sl"
	"github.com/magabrotheeeer/gym-manager/internal/services/notifier"
	"github.com/magabrotheeeer/gym-manager/internal/storage"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if cfg.Env != "local" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	logger.Info("starting expiry-notifier", slog.String("env", cfg.Env))

	if err := cfg.Dirs().Ensure(); err != nil {
		logger.Error("failed to create data directories", sl.Err(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := rabbitmq.Connect(cfg.Notifier.RabbitMQURL, cfg.Notifier.Retries, cfg.Notifier.RetryDelay)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("connected to RabbitMQ")
	defer func() {
		_ = conn.Close()
	}()

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationsExchange, rabbitmq.NotificationQueues())
	if err != nil {
		logger.Error("failed to setup RabbitMQ channel", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = ch.Close()
	}()

	db, err := storage.New(cfg.Storage.Driver, cfg.ConnectionString())
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()
	if err = db.Migrate(); err != nil {
		logger.Error("failed to apply migrations", sl.Err(err))
		os.Exit(1)
	}

	svc := notifier.NewNotifierService(db, rabbitmq.NewPublisher(ch, rabbitmq.NotificationsExchange), cfg.Notifier.Interval, logger)
	svc.Run(ctx)

	logger.Info("expiry-notifier stopped")
}
