package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/calcapi/internal/auth"
	"github.com/example/calcapi/internal/cache"
	"github.com/example/calcapi/internal/config"
	"github.com/example/calcapi/internal/handlers"
	apihttp "github.com/example/calcapi/internal/http"
	"github.com/example/calcapi/internal/logging"
	"github.com/example/calcapi/internal/metrics"
	"github.com/example/calcapi/internal/rate"
)

func main() {
	cfg := config.Load()
	logger, closeLog := logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	defer func() { _ = closeLog() }()

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("server exited")
		_ = closeLog()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return err
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	store, err := auth.NewMongoKeyStore(ctx, mongoClient, cfg.MongoDB, cfg.KeyCacheTTL)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	c := cache.New(cfg.CacheTTL)
	stopPurge := purgeEvery(c, cfg.CacheTTL, logger)
	defer stopPurge()

	lm := rate.NewLimiterMap(cfg.RateLimitRPM, cfg.RateLimitRPM, 5*time.Minute)
	defer lm.Stop()

	deps := apihttp.RouterDeps{
		Sum: handlers.NewSumHandler(handlers.SumDeps{
			Cache:          c,
			Metrics:        m,
			Timeout:        cfg.SumTimeout,
			MaxConcurrency: cfg.MaxConcurrency,
			MaxPairs:       cfg.MaxPairs,
		}),
		Limiter: lm,
		Store:   store,
		Metrics: m,
		Signup:  handlers.NewSignupHandler(store),
		Logger:  logger,
	}
	if cfg.AdminToken != "" {
		deps.Admin = handlers.NewAdminHandler(store, cfg.AdminToken)
	} else {
		logger.Warn().Msg("ADMIN_TOKEN is empty; admin endpoints disabled")
	}

	srv := &http.Server{
		Addr:         listenAddr(cfg.Port),
		Handler:      apihttp.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}
	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	return srv.Shutdown(shCtx)
}
