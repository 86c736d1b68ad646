package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lukehargrove/channelstock-backend/internal/cron"
	"github.com/lukehargrove/channelstock-backend/internal/inventory"
	syncsvc "github.com/lukehargrove/channelstock-backend/internal/sync"
	"github.com/lukehargrove/channelstock-backend/pkg/config"
	"github.com/lukehargrove/channelstock-backend/pkg/db"
	"github.com/lukehargrove/channelstock-backend/pkg/logger"
	"github.com/lukehargrove/channelstock-backend/pkg/metrics"
	"github.com/lukehargrove/channelstock-backend/pkg/migrate"
	"github.com/lukehargrove/channelstock-backend/pkg/pubsub"
	"github.com/lukehargrove/channelstock-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	scheduler, err := syncsvc.NewScheduler(inventory.NewRepository(dbClient.DB()), syncsvc.NewGCPPublisher(pubsubClient.SyncPublisher()), logg)
	requireResource(ctx, logg, "sync scheduler", err)

	staleJob, err := cron.NewStaleSyncJob(cron.StaleSyncJobParams{
		Logger:     logg,
		Inventory:  inventory.NewRepository(dbClient.DB()),
		Scheduler:  scheduler,
		StaleAfter: cfg.Sync.StaleAfter,
	})
	requireResource(ctx, logg, "stale sync job", err)

	cleanupJob, err := cron.NewOperationCleanupJob(cron.OperationCleanupJobParams{
		Logger:     logg,
		Repository: syncsvc.NewRepository(dbClient.DB()),
	})
	requireResource(ctx, logg, "operation cleanup job", err)

	lock, err := cron.NewRedisLock(redisClient, redisClient.CronLockKey(), 0)
	requireResource(ctx, logg, "cron lock", err)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(staleJob, cleanupJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Sync.BulkCycleInterval,
	})
	requireResource(ctx, logg, "cron service", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(runCtx, "starting cron worker")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(runCtx, "cron worker shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
