package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dukkanhq/dukkan-backend/internal/consumers/orderplaced"
	"github.com/dukkanhq/dukkan-backend/internal/email"
	"github.com/dukkanhq/dukkan-backend/internal/notifications"
	"github.com/dukkanhq/dukkan-backend/internal/orders"
	"github.com/dukkanhq/dukkan-backend/pkg/config"
	"github.com/dukkanhq/dukkan-backend/pkg/db"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
	"github.com/dukkanhq/dukkan-backend/pkg/migrate"
	"github.com/dukkanhq/dukkan-backend/pkg/outbox/idempotency"
	"github.com/dukkanhq/dukkan-backend/pkg/pubsub"
	"github.com/dukkanhq/dukkan-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "worker"

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		requireResource(ctx, logg, "dev migrations", err)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer redisClient.Close()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	idempotencyManager, err := idempotency.NewManager(redisClient, cfg.Eventing.OutboxIdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	notificationsRepo := notifications.NewRepository(dbClient.DB())

	notificationConsumer, err := notifications.NewConsumer(
		notificationsRepo,
		pubsubClient.NotificationSubscription(),
		idempotencyManager,
		logg,
	)
	requireResource(ctx, logg, "notification consumer", err)

	sender, err := email.NewSender(cfg.Email, logg)
	requireResource(ctx, logg, "email sender", err)

	orderPlacedConsumer, err := orderplaced.NewConsumer(
		orders.NewRepository(dbClient.DB()),
		notificationsRepo,
		sender,
		pubsubClient.OrdersSubscription(),
		idempotencyManager,
		logg,
	)
	requireResource(ctx, logg, "order placed consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"serviceKind": cfg.Service.Kind,
		"env":         cfg.App.Env,
	})
	logg.Info(runCtx, "worker ready")

	errCh := make(chan error, 2)
	go func() { errCh <- notificationConsumer.Run(runCtx) }()
	go func() { errCh <- orderPlacedConsumer.Run(runCtx) }()

	// The first consumer to stop takes the process down; pubsub Receive only
	// returns on cancellation or a fatal subscription error.
	err = <-errCh
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(runCtx, "worker shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
