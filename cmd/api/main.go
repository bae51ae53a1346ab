package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/api/controllers"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/api/routes"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/bootstrap"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/dashboard"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/invalidation"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/config"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/instance"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/metrics"
)

const shutdownTimeout = 15 * time.Second

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

	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	stack, err := bootstrap.New(context.Background(), cfg, logg, prometheus.DefaultRegisterer)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap data stores", err)
		os.Exit(1)
	}
	defer func() {
		if err := stack.Close(); err != nil {
			logg.Error(context.Background(), "error closing data stores", err)
		}
	}()

	summary, err := dashboard.NewService(stack.Sales, stack.Watchtower, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	datasets, err := invalidation.NewHandler(stack.Cache)
	if err != nil {
		logg.Error(context.Background(), "failed to create invalidation handler", err)
		os.Exit(1)
	}

	readiness := []controllers.ReadinessCheck{
		{Name: "row_store", Pinger: stack.DB},
		{Name: "column_store", Pinger: stack.Warehouse},
		{Name: "cache", Pinger: stack.CachePinger, Optional: true},
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:       cfg,
			Logger:       logg,
			Sales:        stack.Sales,
			Watchtower:   stack.Watchtower,
			Dashboard:    summary,
			Cache:        stack.Cache,
			Invalidation: datasets,
			Readiness:    readiness,
			HTTPMetrics:  metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
	}()

	logg.Info(ctx, "starting api server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down gracefully")
}
