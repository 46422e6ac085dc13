package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aescanero/debatehub/internal/application/orchestrator"
	"github.com/aescanero/debatehub/internal/application/progress"
	"github.com/aescanero/debatehub/internal/application/workers"
	"github.com/aescanero/debatehub/internal/config"
	memevents "github.com/aescanero/debatehub/pkg/adapters/events/memory"
	redisevents "github.com/aescanero/debatehub/pkg/adapters/events/redis"
	"github.com/aescanero/debatehub/pkg/adapters/llm"
	promcollector "github.com/aescanero/debatehub/pkg/adapters/metrics/prometheus"
	memstorage "github.com/aescanero/debatehub/pkg/adapters/storage/memory"
	redisstorage "github.com/aescanero/debatehub/pkg/adapters/storage/redis"
	"github.com/aescanero/debatehub/pkg/api/grpc"
	"github.com/aescanero/debatehub/pkg/api/http"
	"github.com/aescanero/debatehub/pkg/api/websocket"
	"github.com/aescanero/debatehub/pkg/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
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
	defer func() { _ = logger.Sync() }()

	logger.Info("starting debate hub",
		zap.String("version", Version),
		zap.String("build_time", BuildTime))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("debate hub failed", zap.Error(err))
	}

	logger.Info("debate hub shut down complete")
}

// backends holds the adapters selected by configuration
type backends struct {
	sink    ports.EventSink
	history ports.EventHistory
	store   ports.ResultStore
	close   func() error
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	shutdownTracing, err := initTracing(ctx, cfg.Tracing, logger)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsCollector := promcollector.NewCollector(registry)

	b, err := initBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}

	providers, err := buildProviders(ctx, cfg, logger)
	if err != nil {
		return err
	}

	executor := llm.NewExecutor(providers, llm.ExecutorConfig{
		CallTimeout: cfg.Timeouts.StepTimeout,
		MaxRetries:  cfg.Workers.MaxRetries,
		RetryDelay:  cfg.Workers.RetryDelay,
	}, metricsCollector, logger)

	workerPool := workers.NewPool(
		cfg.Workers.PoolSize,
		executor,
		metricsCollector,
		logger,
		cfg.Workers.HealthCheckInterval,
	)

	// Start worker pool
	if err := workerPool.Start(); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	hub := progress.NewHub(cfg.Delivery.SubscriberBuffer, b.sink, metricsCollector, logger)

	manager := orchestrator.NewManager(
		hub,
		workerPool,
		b.store,
		metricsCollector,
		orchestrator.NewValidator(providers),
		logger,
		orchestrator.Config{
			WorkflowTimeout: cfg.Timeouts.WorkflowTimeout,
			Retention:       cfg.Sessions.Retention,
			AbandonGrace:    cfg.Sessions.AbandonGrace,
			SweepInterval:   cfg.Sessions.SweepInterval,
		},
	)

	// Initialize API servers
	httpServer := http.NewServer(&http.Config{
		Port:      cfg.HTTPPort,
		Manager:   manager,
		Providers: providers,
		History:   b.history,
		Health:    workerPool.Health(),
		Gatherer:  registry,
		KeepAlive: cfg.Delivery.SSEKeepAlive,
		Logger:    logger,
	})
	httpServer.SetupWebSocket(websocket.NewHandler(manager, logger))

	grpcServer, err := grpc.NewServer(&grpc.Config{
		Port:   cfg.GRPCPort,
		Health: workerPool.Health(),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	logger.Info("debate hub started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort),
		zap.Int("worker_pool_size", cfg.Workers.PoolSize),
		zap.Strings("providers", providers.Names()),
		zap.Bool("redis", cfg.Redis.Enabled()),
		zap.Bool("offline", cfg.LLM.Offline))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(httpServer.Start)
	g.Go(grpcServer.Start)
	g.Go(func() error { return manager.RunSweeper(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("received shutdown signal")

		// Graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.ShutdownTimeout)
		defer cancel()

		// Sessions go first: their terminal events end open event streams
		var errs []error
		if err := manager.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("orchestrator shutdown: %w", err))
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if err := grpcServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if err := workerPool.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("worker pool shutdown: %w", err))
		}
		if err := hub.Close(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if err := b.close(); err != nil {
			errs = append(errs, fmt.Errorf("backend close: %w", err))
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// initBackends selects Redis adapters when configured and in-memory ones
// otherwise
func initBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backends, error) {
	if !cfg.Redis.Enabled() {
		logger.Info("using in-memory event history and result store")
		sink := memevents.NewInMemoryEventSink(0)
		return &backends{
			sink:    sink,
			history: sink,
			store:   memstorage.NewInMemoryResultStorage(cfg.Sessions.ResultTTL),
			close:   sink.Close,
		}, nil
	}

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

	// Test Redis connection
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	streams := redisevents.NewStreamsEventSink(redisClient, cfg.Redis.StreamMaxLen, cfg.Sessions.ResultTTL, logger)
	return &backends{
		sink:    streams,
		history: streams,
		store:   redisstorage.NewResultStorage(redisClient, cfg.Sessions.ResultTTL, logger),
		close:   redisClient.Close,
	}, nil
}

// buildProviders creates one client per catalog entry
func buildProviders(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*llm.Registry, error) {
	registry := llm.NewRegistry()
	for _, p := range cfg.Providers {
		client, err := llm.NewClient(ctx, &llm.Config{
			Name:         p.Name,
			Kind:         p.Kind,
			Model:        p.Model,
			BaseURL:      p.BaseURL,
			APIKey:       p.APIKey,
			MaxTokens:    p.MaxTokens,
			Offline:      cfg.LLM.Offline,
			OfflineDelay: cfg.LLM.OfflineDelay,
			Logger:       logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client %s: %w", p.Name, err)
		}
		registry.Register(client)
	}
	return registry, nil
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
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
