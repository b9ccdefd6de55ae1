package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/value-lab/internal/api"
	"github.com/yourusername/value-lab/internal/health"
	"github.com/yourusername/value-lab/internal/scheduler"
	"github.com/yourusername/value-lab/internal/stream"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, dashboard stream and scheduled settlement",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(cmd, func(_ context.Context, a *app) error {
				return serve(ctx, a)
			})
		},
	}
}

func serve(ctx context.Context, a *app) error {
	cfg := a.cfg

	hub := stream.NewHub(a.tracker.Summary, cfg.Server.AllowedOrigins, a.log)
	go hub.Run(ctx)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	server := &http.Server{
		Addr: cfg.Server.Address,
		Handler: api.NewRouter(api.RouterConfig{
			Service:        a.tracker,
			Publisher:      hub,
			Stream:         hub.ServeWS,
			MetricsPath:    metricsPath,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Logger:         a.log,
		}),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        cfg.Server.HealthPort,
		Logger:      a.log,
		Checks:      map[string]health.Pinger{"ledger": a.tracker},
	})
	if err := healthServer.Start(ctx); err != nil {
		return err
	}

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(a.tracker, hub, a.log)
		if cfg.Scheduler.ReconcileCron != "" {
			if err := sched.ScheduleReconcile(cfg.Scheduler.ReconcileCron); err != nil {
				return err
			}
		}
		if cfg.Scheduler.FeedRefreshCron != "" {
			if err := sched.ScheduleFeedRefresh(cfg.Scheduler.FeedRefreshCron, a.feed); err != nil {
				return err
			}
		}
		if err := sched.Start(); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.WithFields(logrus.Fields{
			"address": cfg.Server.Address,
			"version": Version,
		}).Info("Value lab API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	healthServer.SetReady(true)

	var serveErr error
	select {
	case <-ctx.Done():
		a.log.Info("Shutdown signal received")
	case serveErr = <-errCh:
		a.log.WithError(serveErr).Error("API server failed")
	}

	healthServer.SetReady(false)
	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.log.WithError(err).Error("Error during API server shutdown")
	}

	a.log.Info("Value lab shut down")
	return serveErr
}
