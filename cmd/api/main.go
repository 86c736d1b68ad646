package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lukehargrove/channelstock-backend/api/controllers"
	"github.com/lukehargrove/channelstock-backend/api/routes"
	"github.com/lukehargrove/channelstock-backend/internal/connectors"
	"github.com/lukehargrove/channelstock-backend/internal/inventory"
	"github.com/lukehargrove/channelstock-backend/internal/notifications"
	"github.com/lukehargrove/channelstock-backend/internal/orders"
	syncsvc "github.com/lukehargrove/channelstock-backend/internal/sync"
	"github.com/lukehargrove/channelstock-backend/pkg/config"
	"github.com/lukehargrove/channelstock-backend/pkg/db"
	"github.com/lukehargrove/channelstock-backend/pkg/enums"
	"github.com/lukehargrove/channelstock-backend/pkg/logger"
	"github.com/lukehargrove/channelstock-backend/pkg/metrics"
	"github.com/lukehargrove/channelstock-backend/pkg/migrate"
	"github.com/lukehargrove/channelstock-backend/pkg/pubsub"
	"github.com/lukehargrove/channelstock-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	strategy, err := enums.ParseConflictResolution(cfg.Sync.DefaultResolution)
	if err != nil {
		logg.Error(context.Background(), "invalid default resolution strategy", err)
		os.Exit(1)
	}

	registry, err := connectors.NewRegistryFromConfig(cfg.Connectors, cfg.Sync)
	if err != nil {
		logg.Error(context.Background(), "failed to build connector registry", err)
		os.Exit(1)
	}

	inventoryRepo := inventory.NewRepository(dbClient.DB())
	inventoryService, err := inventory.NewService(inventoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	locker, err := syncsvc.NewRedisLocker(redisClient, cfg.Sync.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create item locker", err)
		os.Exit(1)
	}

	resolver, err := syncsvc.NewResolver(strategy)
	if err != nil {
		logg.Error(context.Background(), "failed to create resolver", err)
		os.Exit(1)
	}

	syncMetrics := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)
	syncService, err := syncsvc.NewService(syncsvc.Params{
		Inventory: inventoryRepo,
		Repo:      syncsvc.NewRepository(dbClient.DB()),
		Locker:    locker,
		Detector:  syncsvc.NewDetector(),
		Resolver:  resolver,
		Registry:  registry,
		Alerter:   notificationsService,
		Logger:    logg,
		Metrics:   syncMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sync service", err)
		os.Exit(1)
	}

	scheduler, err := syncsvc.NewScheduler(inventoryRepo, syncsvc.NewGCPPublisher(pubsubClient.SyncPublisher()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync scheduler", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.Params{
		Repo:      orders.NewRepository(dbClient.DB()),
		Inventory: inventoryRepo,
		Sync:      syncService,
		Alerter:   notificationsService,
		Logger:    logg,
		Metrics:   syncMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config: cfg,
			Logger: logg,
			Health: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
				"pubsub":   pubsubClient,
			},
			Inventory:     inventoryService,
			Sync:          syncService,
			Scheduler:     scheduler,
			Orders:        ordersService,
			Notifications: notificationsService,
			Metrics:       prometheus.DefaultGatherer,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
