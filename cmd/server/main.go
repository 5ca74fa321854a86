package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"profitlens/internal/cache"
	"profitlens/internal/config"
	"profitlens/internal/httpapi"
	"profitlens/internal/logger"
	"profitlens/internal/recommendation"
	"profitlens/internal/scheduler"
	"profitlens/internal/service"
	"profitlens/internal/store"
	"profitlens/internal/store/memory"
	"profitlens/internal/store/mongostore"
	pgstore "profitlens/internal/store/postgres"
	"profitlens/internal/store/redisstore"
)

func main() {
	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 3)

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatal("state backend unavailable", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	log.Info("state backend ready", zap.String("driver", cfg.Store.Driver))

	st, err := store.Open(ctx, backend, store.Options{Logger: logger.Named(log, "store")})
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	closers = append(closers, st.Close)

	advisoryCache, closeCache := newAdvisoryCache(ctx, cfg, log)
	if closeCache != nil {
		closers = append(closers, closeCache)
	}

	client := newAdvisoryClient(cfg)
	if client == nil {
		log.Warn("GEMINI_API_KEY not set, advisory features disabled")
	}
	engine := recommendation.NewEngine(client, advisoryCache, recommendation.Options{
		CacheTTL: cfg.AdvisoryCacheTTL(),
		Logger:   logger.Named(log, "advisory"),
	})

	svc := service.New(st, engine, service.Options{
		Logger:           logger.Named(log, "svc"),
		DefaultRangeDays: cfg.DefaultRangeDays,
	})
	api := httpapi.New(svc, logger.Named(log, "http"), cfg.AllowedOrigin)

	jobs, err := scheduler.NewScheduler(cfg.Scheduler, svc, logger.Named(log, "scheduler"))
	if err != nil {
		log.Fatal("failed to configure scheduler", zap.Error(err))
	}
	jobs.Start()

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Chat replies stream for as long as the model takes.
		WriteTimeout: cfg.AdvisoryTimeout() + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("ProfitLens backend listening", zap.String("addr", cfg.Address()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown error", zap.Error(err))
	}
	jobs.Stop()

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Warn("close error", zap.Error(err))
		}
	}

	log.Info("server stopped")
}

// openBackend connects the state backend selected by STORE_DRIVER.
func openBackend(ctx context.Context, cfg config.Config) (store.Backend, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverPostgres:
		return pgstore.New(ctx, cfg.Store.DatabaseURL)
	case config.DriverRedis:
		return redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Store.StateKey)
	case config.DriverMongo:
		return mongostore.New(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// newAdvisoryClient returns nil when no API key is configured.
// newAdvisoryCache prefers Redis when it answers a ping and falls back to the
// in-process cache otherwise. The returned closer is nil for the fallback.
func newAdvisoryCache(ctx context.Context, cfg config.Config, log *zap.Logger) (cache.AdvisoryCache, func() error) {
	if cfg.Redis.Addr == "" {
		return cache.NewMemoryAdvisoryCache(), nil
	}
	redisCache := cache.NewRedisAdvisoryCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Ping(ctx); err != nil {
		log.Warn("redis unavailable, using in-memory advisory cache", zap.Error(err))
		if cerr := redisCache.Close(); cerr != nil {
			log.Warn("failed to close redis client", zap.Error(cerr))
		}
		return cache.NewMemoryAdvisoryCache(), nil
	}
	log.Info("advisory cache: redis")
	return redisCache, redisCache.Close
}

func newAdvisoryClient(cfg config.Config) recommendation.Client {
	if !cfg.AdvisoryEnabled() {
		return nil
	}
	return recommendation.NewGeminiClient(recommendation.GeminiConfig{
		APIKey:  cfg.Advisory.APIKey,
		Model:   cfg.Advisory.Model,
		BaseURL: cfg.Advisory.BaseURL,
		Timeout: cfg.AdvisoryTimeout(),
	})
}
