package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lukehargrove/channelstock-backend/internal/connectors"
	"github.com/lukehargrove/channelstock-backend/internal/inventory"
	"github.com/lukehargrove/channelstock-backend/internal/notifications"
	syncsvc "github.com/lukehargrove/channelstock-backend/internal/sync"
	"github.com/lukehargrove/channelstock-backend/pkg/config"
	"github.com/lukehargrove/channelstock-backend/pkg/db"
	"github.com/lukehargrove/channelstock-backend/pkg/enums"
	"github.com/lukehargrove/channelstock-backend/pkg/idempotency"
	"github.com/lukehargrove/channelstock-backend/pkg/logger"
	"github.com/lukehargrove/channelstock-backend/pkg/metrics"
	"github.com/lukehargrove/channelstock-backend/pkg/migrate"
	"github.com/lukehargrove/channelstock-backend/pkg/pubsub"
	"github.com/lukehargrove/channelstock-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "sync-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "sync-worker"

	logg = logger.New(logger.Options{
		ServiceName: "sync-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	requireResource(ctx, logg, "migrations", migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient))

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "error closing pubsub", err)
		}
	}()

	subscription := pubsubClient.SyncSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "sync subscription", errors.New("subscription not configured"))
	}

	strategy, err := enums.ParseConflictResolution(cfg.Sync.DefaultResolution)
	requireResource(ctx, logg, "default resolution strategy", err)

	registry, err := connectors.NewRegistryFromConfig(cfg.Connectors, cfg.Sync)
	requireResource(ctx, logg, "connector registry", err)

	locker, err := syncsvc.NewRedisLocker(redisClient, cfg.Sync.LockTTL)
	requireResource(ctx, logg, "item locker", err)

	resolver, err := syncsvc.NewResolver(strategy)
	requireResource(ctx, logg, "resolver", err)

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()), logg)
	requireResource(ctx, logg, "notifications service", err)

	syncService, err := syncsvc.NewService(syncsvc.Params{
		Inventory: inventory.NewRepository(dbClient.DB()),
		Repo:      syncsvc.NewRepository(dbClient.DB()),
		Locker:    locker,
		Detector:  syncsvc.NewDetector(),
		Resolver:  resolver,
		Registry:  registry,
		Alerter:   notificationsService,
		Logger:    logg,
		Metrics:   metrics.NewSyncMetrics(prometheus.DefaultRegisterer),
	})
	requireResource(ctx, logg, "sync service", err)

	manager, err := idempotency.NewManager(redisClient, cfg.Sync.IdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	consumer, err := syncsvc.NewConsumer(syncService, subscription, manager, logg)
	requireResource(ctx, logg, "sync consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(runCtx, "sync worker ready")

	if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "sync worker failed", err)
		os.Exit(1)
	}

	logg.Info(runCtx, "sync worker shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
