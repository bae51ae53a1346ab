package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/bootstrap"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/invalidation"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/config"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/instance"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/pubsub"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "invalidation-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "invalidation-worker"

	logg = logger.New(logger.Options{
		ServiceName: "invalidation-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if cfg.Cache.DriverName() != config.CacheDriverRedis {
		// a process-local store would evict nothing the api processes can see
		requireResource(ctx, logg, "cache", fmt.Errorf("%s must be %s", config.EnvCacheDriver, config.CacheDriverRedis))
	}

	stack := bootstrap.NewCacheOnly(context.Background(), cfg, logg, prometheus.DefaultRegisterer)
	defer func() {
		if err := stack.Close(); err != nil {
			logg.Error(ctx, "failed to close cache store", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	subscription := pubsubClient.InvalidationSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "invalidation subscription", errors.New("subscription not configured"))
	}

	handler, err := invalidation.NewHandler(stack.Cache)
	requireResource(ctx, logg, "invalidation handler", err)

	service, err := invalidation.NewService(subscription, handler, logg)
	requireResource(ctx, logg, "invalidation worker service", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(runCtx, "invalidation worker ready")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "invalidation worker failed", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
