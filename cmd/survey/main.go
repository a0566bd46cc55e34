package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aescanero/survey/internal/application/flow"
	"github.com/aescanero/survey/internal/catalog"
	"github.com/aescanero/survey/internal/config"
	eventsmemory "github.com/aescanero/survey/pkg/adapters/events/memory"
	eventsredis "github.com/aescanero/survey/pkg/adapters/events/redis"
	"github.com/aescanero/survey/pkg/adapters/metrics/prometheus"
	storagememory "github.com/aescanero/survey/pkg/adapters/storage/memory"
	storageredis "github.com/aescanero/survey/pkg/adapters/storage/redis"
	"github.com/aescanero/survey/pkg/api/grpc"
	"github.com/aescanero/survey/pkg/api/http"
	"github.com/aescanero/survey/pkg/api/websocket"
	"github.com/aescanero/survey/pkg/ports"

	promclient "github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting survey service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("mode", cfg.Survey.Mode),
		zap.String("session_backend", cfg.Session.Backend))

	cat, err := catalog.Load(cfg.Survey.CatalogPath)
	if err != nil {
		logger.Fatal("failed to load survey catalog", zap.Error(err))
	}
	logger.Info("survey catalog loaded", zap.Int("surveys", len(cat.Surveys())))

	// Initialize storage and events
	var (
		store    ports.SessionStore
		eventBus ports.EventBus
		cleanup  func()
	)

	switch cfg.Session.Backend {
	case "redis":
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

		store = storageredis.NewSessionStore(redisClient, cfg.Session.TTL, logger)
		eventBus = eventsredis.NewStreamsEventBus(redisClient, cfg.Redis.StreamMaxLen, logger)
		cleanup = func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("Redis close error", zap.Error(err))
			}
		}

	default:
		memStore := storagememory.NewSessionStore(cfg.Session.TTL, logger)
		memStore.Start(cfg.Session.SweepInterval)

		store = memStore
		eventBus = eventsmemory.NewEventBus(logger)
		cleanup = memStore.Stop
	}

	metricsCollector := prometheus.NewCollector(promclient.DefaultRegisterer)

	// Initialize application components
	manager, err := flow.NewManager(
		cat,
		store,
		eventBus,
		metricsCollector,
		logger,
		flow.Config{
			Mode:          flow.Mode(cfg.Survey.Mode),
			DefaultSurvey: cfg.Survey.DefaultSurvey,
		},
	)
	if err != nil {
		logger.Fatal("failed to create survey flow", zap.Error(err))
	}

	// Initialize API servers
	httpServer, err := http.NewServer(&http.Config{
		Port:                cfg.HTTPPort,
		Manager:             manager,
		Logger:              logger,
		CookieSecure:        cfg.Session.CookieSecure,
		CompletionCookieTTL: cfg.Survey.CompletionCookieTTL,
		ReadHeaderTimeout:   cfg.Timeouts.ReadHeaderTimeout,
		HealthCheck:         manager.Ping,
	})
	if err != nil {
		logger.Fatal("failed to create HTTP server", zap.Error(err))
	}

	// Add WebSocket handler to HTTP server
	wsHandler := websocket.NewHandler(eventBus, cat, logger)
	httpServer.SetupWebSocket(wsHandler)

	grpcServer, err := grpc.NewServer(&grpc.Config{
		Port:   cfg.GRPCPort,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("failed to create gRPC server", zap.Error(err))
	}

	// Start servers
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := grpcServer.Start(); err != nil {
			logger.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	grpcServer.SetServing(true)

	logger.Info("survey service started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")
	grpcServer.SetServing(false)

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := grpcServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("gRPC server shutdown error", zap.Error(err))
	}

	if err := eventBus.Close(); err != nil {
		logger.Error("event bus close error", zap.Error(err))
	}

	cleanup()

	logger.Info("survey service shut down complete")
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
