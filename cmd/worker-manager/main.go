// cmd/worker-manager/main.go
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

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"assistant-workers/internal/app"
	"assistant-workers/internal/common/camunda"
	"assistant-workers/internal/common/config"
	"assistant-workers/internal/common/database"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/common/observability"
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
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewFromConfig(cfg.Logging)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()
	stats := metrics.NewStats()
	opts := app.Options{Obs: obs, Stats: stats}

	// --- Redis (provider cache, optional) ---
	var rdb *database.RedisClient
	if cfg.Enrichment.Cache.Enabled {
		err = retryWithBackoff(func() error {
			client, err := database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			if err := client.Ping(ctx); err != nil {
				_ = client.Close()
				return err
			}
			rdb = client
			return nil
		}, 5, 1*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Warn("redis unavailable, provider cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			opts.Redis = rdb
			zapLog.Info("Redis connected successfully")
		}
	}

	a := app.New(cfg, log, opts)

	// --- Zeebe workers (optional) ---
	var zeebe *camunda.Client
	var workers []*camunda.CamundaWorker
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		workers = startWorkers(zeebe.GetClient(), cfg, a, zapLog)
		zapLog.Info("workers registered", zap.Int("count", len(workers)))
	} else {
		zapLog.Info("camunda disabled, serving HTTP API only")
	}

	// --- HTTP API, health & metrics ---
	probes := map[string]probe{}
	if rdb != nil {
		probes["redis"] = rdb.Ping
	}
	if zeebe != nil {
		probes["zeebe"] = zeebe.HealthCheck
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newRouter(a.Messages, stats, probes, zapLog),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}

	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// startWorkers opens a job worker for every enabled task type. Each worker
// shares the handler graph built by app.New.
func startWorkers(client zbc.Client, cfg *config.Config, a *app.App, log *zap.Logger) []*camunda.CamundaWorker {
	workers := a.Workers()
	started := make([]*camunda.CamundaWorker, 0, len(workers))
	for _, w := range workers {
		if !config.IsWorkerEnabled(cfg, w.TaskType) {
			log.Info("worker disabled", zap.String("taskType", w.TaskType))
			continue
		}
		started = append(started, camunda.NewWorker(client, w.TaskType, config.GetWorkerConfig(cfg, w.TaskType), w.Handler, log))
	}
	return started
}
