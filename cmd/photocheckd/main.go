// Command photocheckd serves the white-background photo check API over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rejRoky/image-processing-photo-background-check/internal/config"
	"github.com/rejRoky/image-processing-photo-background-check/internal/engine"
	"github.com/rejRoky/image-processing-photo-background-check/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("photocheckd %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Server.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting photocheckd",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
		zap.String("port", cfg.Server.Port))

	cache, err := newCache(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize cache", zap.Error(err))
	}

	eng, err := engine.New(cfg.EngineConfig(),
		engine.WithCache(cache),
		engine.WithLogger(logger))
	if err != nil {
		logger.Fatal("failed to initialize analysis engine", zap.Error(err))
	}

	router := server.NewRouter(cfg, eng, logger, Version)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newLogger builds a production logger in release mode, a colored
// development logger otherwise.
func newLogger(mode string) (*zap.Logger, error) {
	if mode == "release" {
		return zap.NewProduction()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}

// newCache selects the result-cache backend: Redis when an address is
// configured, an in-process cache otherwise, and a no-op cache when caching
// is disabled.
func newCache(cfg *config.Config, logger *zap.Logger) (engine.Cache, error) {
	if !cfg.Analysis.CacheEnabled {
		return engine.NopCache{}, nil
	}
	if cfg.Redis.Addr == "" {
		return engine.NewMemoryCache(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	cache := engine.NewRedisCache(client, logger)

	// A dead Redis only disables memoization; the service still works.
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := cache.Ping(ctx); err != nil {
		logger.Warn("redis unreachable at startup, cache will degrade to misses",
			zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	return cache, nil
}
