package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marketpulse/pulse/internal/api"
	"github.com/marketpulse/pulse/internal/feed"
	"github.com/marketpulse/pulse/internal/logger"
	"github.com/marketpulse/pulse/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Pulse server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	log.Info("starting Pulse server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("forecast_strategy", cfg.Forecast.Strategy),
	)

	m := metrics.NewRegistry()
	svc := buildService(cfg, m, log)

	scheduler := feed.NewScheduler(svc,
		feed.WithSchedulerLogger(log),
		feed.WithSchedulerMetrics(m),
		feed.WithIntervals(
			cfg.Scheduler.QuoteInterval,
			cfg.Scheduler.PredictionInterval,
			cfg.Scheduler.DriftInterval,
		),
		feed.WithBatchSizes(cfg.Scheduler.QuoteBatch, cfg.Scheduler.PredictionBatch),
	)

	server, err := api.NewServer(api.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
	}, api.Dependencies{
		Service: svc,
		Metrics: m,
	}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scheduler.Start(ctx)

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down Pulse server")

	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
