package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/careops/scheduling-platform/cmd/mainconfig"
	"github.com/careops/scheduling-platform/internal/api/router"
	"github.com/careops/scheduling-platform/internal/appointments"
	"github.com/careops/scheduling-platform/internal/availability"
	appconfig "github.com/careops/scheduling-platform/internal/config"
	"github.com/careops/scheduling-platform/internal/doctors"
	"github.com/careops/scheduling-platform/internal/notify"
	"github.com/careops/scheduling-platform/internal/observability/metrics"
	"github.com/careops/scheduling-platform/internal/ops"
	"github.com/careops/scheduling-platform/internal/patients"
	"github.com/careops/scheduling-platform/internal/reminders"
	"github.com/careops/scheduling-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting scheduling API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

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

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, slot holds disabled", "error", err)
			redisClient = nil
		}
	}

	schedMetrics := metrics.NewSchedulingMetrics(nil)

	doctorStore := doctors.NewStore(pool)
	patientStore := patients.NewStore(pool)
	apptStore := appointments.NewStore(pool)
	reminderStore := reminders.NewStore(pool)

	reminderScheduler := reminders.NewScheduler(reminderStore, cfg.ReminderLeadTime, cfg.AnnouncementID, logger)

	var notifier *notify.Service
	if cfg.UseMemoryQueue || cfg.NotifyQueueURL == "" {
		notifier = notify.NewService(notify.NewMemoryQueue(0), logger)
	} else {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		queue := notify.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.NotifyQueueURL)
		notifier = notify.NewService(queue, logger)
	}

	bookingSvc := appointments.NewService(apptStore, doctorStore, patientStore, logger).
		WithNotifier(notifier).
		WithReminders(reminderScheduler).
		WithMetrics(schedMetrics)
	if redisClient != nil {
		bookingSvc = bookingSvc.WithSlotHold(appointments.NewSlotHold(redisClient, cfg.SlotHoldTTL, logger))
	}

	availabilitySvc := availability.NewService(doctorStore, apptStore, logger).
		WithMetrics(schedMetrics)

	r := router.New(&router.Config{
		Logger:              logger,
		AvailabilityHandler: availability.NewHandler(availabilitySvc, logger),
		AppointmentsHandler: appointments.NewHandler(bookingSvc, logger),
		OpsDashboard:        ops.NewDashboardHandler(reminderStore, nil, logger),
		MetricsHandler:      promhttp.Handler(),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
