package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"

	"github.com/mikkelsonm/bitboxing/internal/factory"
	"github.com/mikkelsonm/bitboxing/internal/server"
	redisstorage "github.com/mikkelsonm/bitboxing/internal/storage/redis"
)

type envConfig struct {
	Addr         string     `env:"BITBOXING_ADDR" envDefault:":9999"`
	StorageType  string     `env:"BITBOXING_STORAGE" envDefault:"snapshot"`
	SnapshotPath string     `env:"BITBOXING_SNAPSHOT_PATH" envDefault:"data/bitboxing.json"`
	SQLitePath   string     `env:"BITBOXING_SQLITE_PATH" envDefault:"data/bitboxing.db"`
	RedisURL     string     `env:"BITBOXING_REDIS_URL"`
	CatalogPath  string     `env:"BITBOXING_CATALOG"`
	LogLevel     slog.Level `env:"BITBOXING_LOG_LEVEL" envDefault:"INFO"`
}

func main() {
	var envCfg envConfig
	if err := env.Parse(&envCfg); err != nil {
		slog.Error("failed to parse environment", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: envCfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		StorageType:  envCfg.StorageType,
		SnapshotPath: envCfg.SnapshotPath,
		SQLitePath:   envCfg.SQLitePath,
		CatalogPath:  envCfg.CatalogPath,
		Logger:       logger,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		if envCfg.RedisURL == "" {
			logger.Error("BITBOXING_REDIS_URL required when BITBOXING_STORAGE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = envCfg.RedisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = app.Storage.Close() }()

	// Create server
	serverConfig := server.DefaultConfig()
	serverConfig.Addr = envCfg.Addr
	srv := server.New(app.Dispatcher, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("server started", slog.String("addr", srv.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
