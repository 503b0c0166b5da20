package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodhub/internal/api"
	"foodhub/internal/config"
	"foodhub/internal/database"
	"foodhub/internal/domain"
	"foodhub/internal/events"
	"foodhub/internal/logging"
	"foodhub/internal/metrics"
	"foodhub/internal/notify"
	"foodhub/internal/repository"
	"foodhub/internal/service"
	"foodhub/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, baseLogger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	mainLogger := logging.WithComponent(baseLogger, "api-main")
	logger := &mainLogger

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	attempts := buildAttemptStore(redisClient, logger)
	dispatcher := buildDispatcher(cfg, logger)
	eventBus := events.NewEventBus()
	auditLogger := logging.WithComponent(baseLogger, "audit")
	events.SubscribeAudit(eventBus, &auditLogger)

	reservations := service.NewReservationService(
		db, dispatcher, eventBus,
		cfg.Booking.TimezoneOffsetMinutes,
		cfg.Notifications.DevMode,
		logger,
	)
	otps := service.NewOTPService(
		db, attempts, dispatcher, reservations,
		cfg.Notifications.DevMode,
		cfg.Payments.DefaultOnlineAmount,
		logger,
	)

	httpServer := api.NewHTTPServer(cfg.Server, cfg.Admin.APIKey, reservations, otps, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, logger)
	startJanitor(ctx, cfg, db, baseLogger)

	return startServer(ctx, httpServer, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, baseLogger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// buildAttemptStore prefers Redis-backed attempt counters with an
// in-memory fallback; without Redis the memory store runs alone.
func buildAttemptStore(redisClient *redis.Client, logger *zerolog.Logger) domain.AttemptStore {
	memory := repository.NewMemoryAttemptStore()
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverAttemptStore(repository.NewRedisAttemptStore(redisClient), memory, logger)
}

func buildDispatcher(cfg *config.Config, logger *zerolog.Logger) *notify.Dispatcher {
	var senders []notify.Notifier

	if cfg.Notifications.SMTP.Host != "" {
		senders = append(senders, notify.NewEmailSender(cfg.Notifications.SMTP, cfg.Notifications.From))
	} else {
		logger.Warn().Msg("smtp not configured, email notifications disabled")
	}

	sms, err := notify.NewSMSSender(cfg.Notifications.Twilio, cfg.Notifications.DefaultCountryCode)
	if err != nil {
		logger.Warn().Err(err).Msg("twilio not configured, sms notifications disabled")
	} else {
		senders = append(senders, sms)
	}

	return notify.NewDispatcher(logger, senders...)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startJanitor(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) {
	janitorLogger := logging.WithComponent(logger, "janitor")

	var backup *database.Backup
	if cfg.Backup.Enabled {
		backup = database.NewBackup(cfg.Database.Path, cfg.Backup.StoragePath, &janitorLogger)
	}

	janitor := worker.NewJanitor(db, backup, cfg.Backup, &janitorLogger)
	go janitor.Run(ctx)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
	}

	logger.Info().Msg("server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
