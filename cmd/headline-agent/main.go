// cmd/headline-agent/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"headline-agent/internal/common/camunda"
	"headline-agent/internal/common/config"
	"headline-agent/internal/common/database"
	"headline-agent/internal/common/logger"
	"headline-agent/internal/common/observability"
	"headline-agent/internal/pipeline"
	"headline-agent/internal/server"
	ghj "headline-agent/internal/workers/headline/generate-headline-job"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	zapLog, err := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		return err
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting headline agent",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("producer", cfg.Producer.Kind),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var obs *observability.Observability
	if cfg.Observability.MetricsEnabled {
		obs = observability.New(cfg.App.Name)
		defer obs.Shutdown()
	}

	_, shutdownTracer, err := observability.InitTracer(ctx, cfg.Observability.Tracing, cfg.App.Version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(sctx)
	}()

	// --- Redis candidate cache ---
	var redis *database.RedisClient
	if cfg.Cache.Enabled {
		redis = database.NewRedis(cfg.Database.Redis)
		defer redis.Close()

		err = retryWithBackoff(func() error {
			return redis.Ping(ctx)
		}, 5, time.Second, zapLog, "Redis connection")
		if err != nil {
			// the cache degrades per request, so a cold Redis is not fatal
			zapLog.Warn("redis unavailable, cache lookups will miss", zap.Error(err))
		} else {
			zapLog.Info("Redis connected successfully")
		}
	}

	producer, err := pipeline.BuildProducer(ctx, cfg, redis.GetClient(), log)
	if err != nil {
		return fmt.Errorf("producer init failed: %w", err)
	}

	service := pipeline.NewServiceFromConfig(cfg, producer, obs, log)
	srv := server.New(cfg, service, log)
	if redis != nil {
		srv.AddReadinessCheck("redis", redis.Ping)
	}

	// --- Optional Zeebe job worker ---
	var jobWorker *camunda.CamundaWorker
	if cfg.Camunda.Enabled {
		var zeebe *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(ctx, camunda.ConfigFrom(cfg.Camunda))
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			return err
		}
		defer zeebe.Close()
		zapLog.Info("Zeebe client connected successfully")

		srv.AddReadinessCheck("zeebe", zeebe.HealthCheck)

		handler := ghj.NewHandler(&ghj.Config{
			Timeout: config.GetDuration(cfg.Pipeline.ProducerTimeout) + 15*time.Second,
		}, service, log)
		jobWorker = camunda.NewWorker(
			zeebe.GetClient(),
			cfg.Camunda.JobType,
			cfg.Camunda.MaxJobsActive,
			config.GetDuration(cfg.Camunda.Timeout),
			handler,
			log,
		)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		zapLog.Info("shutdown signal received, stopping")

		if jobWorker != nil {
			jobWorker.Stop()
		}

		sctx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("headline agent stopped with error: %w", err)
	}
	zapLog.Info("headline agent stopped")
	return nil
}
