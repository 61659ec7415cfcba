package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/app"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/subscribers"
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/lessonboard/pkg/config"
	"github.com/felixgeelhaar/lessonboard/pkg/observability"
	"github.com/robfig/cron/v3"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	// Setup logger
	logger := observability.LoggerFor("lessonboard-worker", cfg.AppEnv, cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting lessonboard worker")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	// Lesson event consumers
	var timetables *subscribers.TimetableSubscriber
	if container.PublishTimetablesHandler != nil {
		timetables = subscribers.NewTimetableSubscriber(container.PublishTimetablesHandler, cfg.PublishHorizonDays, logger)
	} else {
		logger.Warn("CalDAV publication not configured, worker only refreshes the lesson cache")
	}

	var consumer eventbus.Consumer = container.InProcessEventBus
	if cfg.RabbitMQURL != "" {
		rabbit, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
			URL:       cfg.RabbitMQURL,
			QueueName: cfg.RabbitMQQueue,
			Exchange:  cfg.RabbitMQExchange,
			Logger:    logger,
		}, eventbus.NewConsumerRegistry(logger))
		if err != nil {
			logger.Error("failed to connect RabbitMQ consumer", "error", err)
			os.Exit(1)
		}
		defer rabbit.Close()
		if container.Cache != nil {
			rabbit.RegisterConsumer(container.Cache)
		}
		consumer = rabbit
	} else {
		// The container already feeds its own cache from the in-process bus.
		logger.Warn("RABBITMQ_URL not set, lesson events stay in the API process")
	}
	if timetables != nil {
		consumer.RegisterConsumer(timetables)
	}
	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("event consumer stopped", "error", err)
			cancel()
		}
	}()

	// Periodic full publication
	scheduler := cron.New()
	if container.PublishTimetablesHandler != nil {
		job := newPublishJob(container.PublishTimetablesHandler, cfg.PublishHorizonDays, logger, container.Metrics)
		if _, err := job.schedule(ctx, scheduler, cfg.PublishCron); err != nil {
			logger.Error("invalid PUBLISH_CRON", "cron", cfg.PublishCron, "error", err)
			os.Exit(1)
		}
		go func() { _, _ = job.Run(ctx) }()
		logger.Info("timetable publication scheduled", "cron", cfg.PublishCron, "horizon_days", cfg.PublishHorizonDays)
	}
	scheduler.Start()

	if cfg.WorkerHealthAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/healthz", container.Health.Handler())
		mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
			checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if container.Health.GetOverallHealth(checkCtx).Status == observability.HealthStatusUnhealthy {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		})

		healthSrv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("health server error", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	// Wait for shutdown
	<-ctx.Done()
	logger.Info("shutting down worker")

	<-scheduler.Stop().Done()
	logger.Info("worker stopped")
}
