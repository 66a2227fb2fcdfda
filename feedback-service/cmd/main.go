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
	"feedbackhub/feedback-service/internal/app/feedback/infrastructure/messaging"
	"feedbackhub/feedback-service/internal/app/feedback/infrastructure/storage"
	"feedbackhub/feedback-service/internal/app/feedback/repository"
	"feedbackhub/feedback-service/internal/app/feedback/service"
	"feedbackhub/feedback-service/migrations"
	"feedbackhub/pkg/logger"
)

const serviceName = "feedback-service"

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
		} else {
			logger.Info().Str("logstash_addr", cfg.Log.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	ctx := context.Background()

	db, err := storage.ConnectPostgres(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer db.Close()
	logger.Info().
		Str("database", cfg.Database.DBName).
		Msg("Connected to PostgreSQL")

	if err := migrations.Up(cfg.Database.URL()); err != nil {
		logger.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	gormDB, err := storage.OpenGorm(db)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize GORM")
	}

	// Redis нужен API только для readiness; недоступность не мешает старту
	redisClient, err := storage.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis is unavailable, readiness will report it")
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	eventsProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
	defer eventsProducer.Close()
	jobsProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.JobsTopic)
	defer jobsProducer.Close()
	logger.Info().
		Str("events_topic", eventsProducer.Topic()).
		Str("jobs_topic", jobsProducer.Topic()).
		Msg("Initialized Kafka producers")

	profileRepo := repository.NewProfileFeedbackRepository(db)
	appRepo := repository.NewAppFeedbackRepository(db)
	jobRepo := repository.NewJobRepository(gormDB)
	statsEngine := aggregate.NewEngine(repository.NewAggregateRepository(db))

	profileService := service.NewProfileFeedbackService(profileRepo, statsEngine, eventsProducer)
	appService := service.NewAppFeedbackService(appRepo, statsEngine, eventsProducer)
	jobService := service.NewJobService(jobRepo, nil, nil, jobsProducer, cfg.Redis.JobLockTTL)

	checks := map[string]handler.Check{
		"database": db.PingContext,
		"redis": func(ctx context.Context) error {
			if redisClient == nil {
				return fmt.Errorf("not connected")
			}
			return redisClient.Ping(ctx).Err()
		},
	}

	var authMiddleware *handler.AuthMiddleware
	if cfg.JWT.Enabled {
		authMiddleware = handler.NewAuthMiddleware(cfg.JWT.Secret)
	}

	router := handler.SetupRoutes(handler.Handlers{
		Profile: handler.NewProfileFeedbackHandler(profileService),
		App:     handler.NewAppFeedbackHandler(appService),
		Jobs:    handler.NewJobHandler(jobService),
		Health:  handler.NewHealthHandler(checks),
	}, authMiddleware, cfg.CORS.Origins)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Bool("auth_enabled", cfg.JWT.Enabled).
			Msg("Starting Feedback Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Feedback Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Feedback Service stopped gracefully")
}
