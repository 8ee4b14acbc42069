package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	firebase "firebase.google.com/go/v4"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/gaiosophy/content-notifier/docs"
	"github.com/gaiosophy/content-notifier/internal/config"
	"github.com/gaiosophy/content-notifier/internal/domain"
	"github.com/gaiosophy/content-notifier/internal/handler"
	"github.com/gaiosophy/content-notifier/internal/middleware"
	"github.com/gaiosophy/content-notifier/internal/provider"
	"github.com/gaiosophy/content-notifier/internal/repository/postgres"
	"github.com/gaiosophy/content-notifier/internal/repository/redis"
	"github.com/gaiosophy/content-notifier/internal/service"
	"github.com/gaiosophy/content-notifier/internal/trigger"
	"github.com/gaiosophy/content-notifier/internal/worker"
)

// @title Content Notifier API
// @version 1.0
// @description Announces newly published content to mobile clients over a push topic

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.App.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("starting content notifier",
		"env", cfg.App.Env,
		"port", cfg.Server.Port,
		"transport", cfg.Transport,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bindings, err := domain.ParseBindings(cfg.Trigger.Collections)
	if err != nil {
		logger.Error("invalid collection bindings", "error", err)
		os.Exit(1)
	}

	// Initialize PostgreSQL, migrating first when enabled
	db, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL", "auto_migrate", cfg.Database.AutoMigrate)

	// Initialize Redis
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("connected to Redis")

	dispatchRepo := postgres.NewDispatchRepository(db)
	queue := redis.NewQueue(redisClient)
	rateLimiter := redis.NewRateLimiter(redisClient, cfg.Dispatch.RateLimitPerSec)
	dedup := redis.NewDedupGuard(redisClient, cfg.Dispatch.DedupTTL)

	// Initialize Firebase
	var firebaseApp *firebase.App
	if cfg.Transport == config.TransportFCM || cfg.Trigger.FirestoreListener {
		firebaseApp, err = provider.NewFirebaseApp(ctx, cfg.Firebase)
		if err != nil {
			logger.Error("failed to initialize firebase", "error", err)
			os.Exit(1)
		}
	}

	transport, err := newTransport(ctx, cfg, firebaseApp)
	if err != nil {
		logger.Error("failed to initialize transport", "error", err)
		os.Exit(1)
	}

	metrics := handler.NewMetrics()

	dispatchService := service.NewDispatchService(
		bindings,
		transport,
		dedup,
		rateLimiter,
		dispatchRepo,
		logger,
		service.Options{
			NotifyOnPublishTransition: cfg.Trigger.NotifyOnPublishTransition,
			SendTimeout:               cfg.Dispatch.SendTimeout,
		},
	)
	dispatchService.SetRecorder(metrics)

	// Initialize WebSocket hub
	wsHub := handler.NewWebSocketHub(logger)
	go wsHub.Run(ctx)
	dispatchService.SetStatusBroadcast(wsHub.BroadcastDispatch)

	processor := worker.NewProcessor(queue, dispatchService, logger, cfg.Worker)

	healthHandler := handler.NewHealthHandler()
	healthHandler.AddChecker("postgres", db)
	healthHandler.AddChecker("redis", redisClient)

	// Initialize trigger adapters
	var listener *trigger.FirestoreListener
	if cfg.Trigger.FirestoreListener {
		fsClient, err := firebaseApp.Firestore(ctx)
		if err != nil {
			logger.Error("failed to create firestore client", "error", err)
			os.Exit(1)
		}
		defer fsClient.Close()

		listener = trigger.NewFirestoreListener(fsClient, bindings.Collections(), queue, logger)
		listener.SetRecorder(metrics)
	}

	var subscriber *trigger.NATSSubscriber
	if cfg.Trigger.NATSSubscriber {
		nc, err := trigger.ConnectNATS(cfg.NATS, logger)
		if err != nil {
			logger.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer nc.Close()

		subscriber = trigger.NewNATSSubscriber(nc, cfg.NATS, queue, logger)
		subscriber.SetRecorder(metrics)
		healthHandler.AddChecker("nats", subscriber)
	}

	// Initialize handlers
	dispatchHandler := handler.NewDispatchHandler(dispatchService)
	metricsHandler := handler.NewMetricsHandler(metrics, queue, rateLimiter)
	wsHandler := handler.NewWebSocketHandler(wsHub)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Correlation)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger, metrics))
	r.Use(chimiddleware.Compress(5))

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	r.Handle("/metrics", metricsHandler.Handler())
	r.Get("/metrics/realtime", metricsHandler.RealtimeMetrics)

	r.Get("/ws", wsHandler.HandleWebSocket)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/events", dispatchHandler.RegisterEventRoutes)
		r.Route("/dispatches", dispatchHandler.RegisterDispatchRoutes)
		r.Post("/decisions/preview", dispatchHandler.Preview)
		r.Get("/kinds", dispatchHandler.Kinds)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if err := processor.Start(ctx); err != nil {
		logger.Error("failed to start processor", "error", err)
		os.Exit(1)
	}

	if listener != nil {
		listener.Start(ctx)
	}

	if subscriber != nil {
		if err := subscriber.Start(); err != nil {
			logger.Error("failed to start NATS subscriber", "error", err)
			os.Exit(1)
		}
	}

	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Stop producers before the workers that drain their queue
	if listener != nil {
		listener.Stop()
	}
	if subscriber != nil {
		subscriber.Stop()
	}

	processor.Stop()

	cancel()

	logger.Info("server stopped")
}

func newTransport(ctx context.Context, cfg *config.Config, app *firebase.App) (domain.Transport, error) {
	switch cfg.Transport {
	case config.TransportFCM:
		client, err := app.Messaging(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create messaging client: %w", err)
		}
		return provider.NewFCMTransport(client, cfg.Firebase.DryRun), nil
	case config.TransportWebhook:
		return provider.NewWebhookTransport(cfg.Webhook), nil
	}
	return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
