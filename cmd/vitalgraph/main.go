// cmd/vitalgraph/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/vitalgraph/vitalgraph/internal/anomaly"
	"github.com/vitalgraph/vitalgraph/internal/api"
	"github.com/vitalgraph/vitalgraph/internal/baseline"
	"github.com/vitalgraph/vitalgraph/internal/config"
	"github.com/vitalgraph/vitalgraph/internal/insights"
	"github.com/vitalgraph/vitalgraph/internal/orchestrator"
	"github.com/vitalgraph/vitalgraph/internal/store"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(os.Getenv("VITALGRAPH_CONFIG"))
	if err != nil {
		logger.Fatal("loading config", zap.Error(err))
	}

	// Pick the storage collaborator based on environment.
	storageMode := os.Getenv("VITALGRAPH_STORAGE_MODE")
	if storageMode == "" {
		storageMode = "postgres"
	}

	var st store.Store
	switch storageMode {
	case "memory":
		// In-memory store for development; nothing survives restarts.
		st = store.NewMemory()
		logger.Info("using in-memory storage")

	case "postgres":
		pg, err := store.NewPostgres(store.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Database: cfg.Database.Database,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Fatal("connecting to postgres", zap.Error(err))
		}
		defer func() { _ = pg.Close() }()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pg.CreateTables(ctx); err != nil {
			cancel()
			logger.Fatal("initializing schema", zap.Error(err))
		}
		cancel()

		st = pg
		logger.Info("using postgres storage",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Database))

	default:
		logger.Fatal("invalid VITALGRAPH_STORAGE_MODE", zap.String("mode", storageMode))
	}

	// Baseline reads go through Redis when configured.
	var baselineStore baseline.Store = st
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, baseline cache disabled", zap.Error(err))
		} else {
			baselineStore = baseline.NewCachedStore(st, rdb, cfg.Redis.CacheTTL)
			logger.Info("baseline cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	calc := baseline.NewCalculator(baselineStore, logger)

	var publisher insights.Publisher
	if cfg.Insights.Endpoint != "" {
		publisher = insights.NewClient(cfg.Insights.Endpoint,
			cfg.Insights.RequestsPerSecond, cfg.Insights.Timeout, logger)
		logger.Info("insight delivery enabled", zap.String("endpoint", cfg.Insights.Endpoint))
	}

	orch := orchestrator.New(st, calc, anomaly.NewDetector(), publisher, cfg.Engine, logger)
	orch.Start()

	server := api.NewServer(cfg, logger, orch, st)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		orch.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
		os.Exit(0)
	}()

	if err := server.Start(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
