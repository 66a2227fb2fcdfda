package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/aggregate"
	"feedbackhub/feedback-service/internal/app/feedback/config"
	"feedbackhub/feedback-service/internal/app/feedback/handler"
	"feedbackhub/feedback-service/internal/app/feedback/infrastructure/storage"
	"feedbackhub/feedback-service/internal/app/feedback/processor"
	"feedbackhub/feedback-service/internal/app/feedback/repository"
	"feedbackhub/feedback-service/internal/app/feedback/service"
	"feedbackhub/pkg/logger"
	"feedbackhub/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "feedback-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Log.Level)
	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, serviceName, cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === POSTGRESQL ===
	// Схему применяет API; воркер только читает отзывы и обновляет задачи
	db, err := storage.ConnectPostgres(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer db.Close()

	gormDB, err := storage.OpenGorm(db)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize GORM")
	}

	// === REDIS ===
	// Блокировка не дает двум воркерам выполнять одну задачу
	redisClient, err := storage.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// === СЕРВИСЫ ===
	statsEngine := aggregate.NewEngine(repository.NewAggregateRepository(db))
	jobService := service.NewJobService(
		repository.NewJobRepository(gormDB),
		repository.NewRedisJobLock(redisClient),
		statsEngine,
		nil,
		cfg.Redis.JobLockTTL,
	)

	// === KAFKA CONSUMER ===
	kafkaConsumer := processor.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.JobsTopic, cfg.Kafka.GroupID, jobService)
	kafkaConsumer.Start(ctx)
	logger.Info().
		Str("topic", cfg.Kafka.JobsTopic).
		Str("group_id", cfg.Kafka.GroupID).
		Msg("Kafka consumer started")

	// === CRON ===
	cronScheduler := processor.NewCronScheduler(jobService, cfg.Worker.JobTimeout)
	if err := cronScheduler.Start(ctx, cfg.Worker.ReaperSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start cron scheduler")
	}
	for _, entry := range cronScheduler.GetEntries() {
		logger.Info().Time("next_run", entry.Next).Msg("Stale job reaper scheduled")
	}

	// === HEALTH И METRICS ===
	gin.SetMode(gin.ReleaseMode)
	health := handler.NewHealthHandler(map[string]handler.Check{
		"database": db.PingContext,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	})
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))
	router.GET("/health", health.Health)
	router.GET("/health/readiness", health.Readiness)
	router.GET("/health/liveness", health.Liveness)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer := &http.Server{
		Addr:              ":" + cfg.Worker.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("address", httpServer.Addr).Msg("Starting worker health server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Health server error")
		}
	}()

	logger.Info().Msg("Feedback worker is running, waiting for JOB_REQUESTED events")

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down feedback worker...")

	cronScheduler.Stop()
	stats := kafkaConsumer.GetStats()
	kafkaConsumer.Stop()
	cancel()

	logger.Info().
		Int64("messages", stats.Messages).
		Int64("errors", stats.Errors).
		Msg("Kafka consumer totals")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Health server forced to shutdown")
	}

	logger.Info().Msg("Feedback worker stopped gracefully")
}
