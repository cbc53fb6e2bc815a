package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	appconfig "github.com/careops/scheduling-platform/internal/config"
	"github.com/careops/scheduling-platform/internal/observability/metrics"
	"github.com/careops/scheduling-platform/internal/reminders"
	"github.com/careops/scheduling-platform/internal/telephony"
	"github.com/careops/scheduling-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting reminder worker",
		"env", cfg.Env,
		"poll_interval", cfg.ReminderPollInterval.String(),
		"batch_size", cfg.ReminderBatchSize,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	caller, err := telephony.NewClient(telephony.Config{
		APIKey:  cfg.TelephonyAPIKey,
		BaseURL: cfg.TelephonyBaseURL,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to create telephony client", "error", err)
		os.Exit(1)
	}

	worker := reminders.NewWorker(reminders.NewStore(pool), caller, logger).
		WithInterval(cfg.ReminderPollInterval).
		WithBatchSize(cfg.ReminderBatchSize).
		WithMetrics(metrics.NewSchedulingMetrics(nil))

	worker.Run(ctx)
	logger.Info("reminder worker stopped")
}
