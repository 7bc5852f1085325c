package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/homechef-app/homechef-backend/api/routes"
	"github.com/homechef-app/homechef-backend/internal/ledger"
	"github.com/homechef-app/homechef-backend/internal/pricing"
	"github.com/homechef-app/homechef-backend/internal/realtime"
	"github.com/homechef-app/homechef-backend/internal/vendors"
	"github.com/homechef-app/homechef-backend/pkg/config"
	"github.com/homechef-app/homechef-backend/pkg/db"
	"github.com/homechef-app/homechef-backend/pkg/logger"
	"github.com/homechef-app/homechef-backend/pkg/metrics"
	"github.com/homechef-app/homechef-backend/pkg/migrate"
	"github.com/homechef-app/homechef-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	cartMetrics := metrics.NewCartMetrics(prometheus.DefaultRegisterer)
	realtimeMetrics := metrics.NewRealtimeMetrics(prometheus.DefaultRegisterer)

	pricingRepo := pricing.NewRepository(dbClient.DB())
	tierSource := pricing.NewCachedSource(pricingRepo, cfg.Delivery.TierCacheTTL)
	vendorRepo := vendors.NewRepository(dbClient.DB())

	snapshotStore := ledger.NewRedisStore(redisClient, cfg.App.SessionID)
	locations := ledger.NewRedisLocations(redisClient, cfg.App.SessionID)

	cartLedger := ledger.NewService(snapshotStore, logg, cartMetrics)
	if err := cartLedger.Restore(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to restore cart snapshot", err)
		os.Exit(1)
	}

	channel := realtime.NewChannel(cfg.Realtime, vendorRepo, logg, realtimeMetrics,
		realtime.WithInvalidateHook(func(ctx context.Context, eventType string) {
			tierSource.Refresh()
			logg.Info(logg.WithField(ctx, "event_type", eventType), "domain event invalidated cached views")
		}),
	)
	// the server itself is the channel's one standing subscriber; cart views
	// read the snapshots on demand
	channelSub := channel.Subscribe(func() {})
	defer channelSub.Cancel()
	defer channel.Close()

	viewer := ledger.NewViewer(cartLedger, tierSource, locations, channel.Snapshots(), logg)

	router := routes.NewRouter(routes.Deps{
		Cfg:      cfg,
		Logg:     logg,
		DB:       dbClient,
		Redis:    redisClient,
		Ledger:   cartLedger,
		Viewer:   viewer,
		Tiers:    tierSource,
		Vendors:  vendorRepo,
		Realtime: channel,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"session": cfg.App.SessionID,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error shutting down server", err)
		}
		cartLedger.Flush()
	}
}
