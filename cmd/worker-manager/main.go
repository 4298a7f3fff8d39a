// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bodyscan-workers/internal/catalog"
	"bodyscan-workers/internal/common/camunda"
	"bodyscan-workers/internal/common/config"
	"bodyscan-workers/internal/common/database"
	"bodyscan-workers/internal/common/logger"
	"bodyscan-workers/internal/common/observability"

	be "bodyscan-workers/internal/workers/bodyscan/build-envelope"
	ma "bodyscan-workers/internal/workers/bodyscan/match-archetypes"
	vsd "bodyscan-workers/internal/workers/bodyscan/validate-scan-data"
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
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	obs := observability.New("bodyscan-workers")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.Timeout),
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis (optional cache) with retry ---
	var redisClient *database.RedisClient
	if cfg.Database.Redis.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")
	} else {
		zapLog.Info("Redis disabled, mapping cache off")
	}

	// --- Shared catalog access ---
	repo := catalog.NewRepository(pg.DB, log)
	resolver := catalog.NewMappingResolver(
		repo,
		redisRaw(redisClient),
		time.Duration(cfg.Matching.MappingCacheTTL)*time.Second,
		log,
	)

	// --- Register workers ---
	var workers []*camunda.CamundaWorker

	if config.IsWorkerEnabled(cfg, vsd.TaskType) {
		handler := vsd.NewHandler(&vsd.Config{
			Timeout:      config.GetDuration(config.GetWorkerConfig(cfg, vsd.TaskType).Timeout),
			DefaultLimit: cfg.Matching.DefaultLimit,
		}, log)
		workers = append(workers, startWorker(zeebe.GetClient(), vsd.TaskType, cfg, handler, zapLog))
	}

	if config.IsWorkerEnabled(cfg, ma.TaskType) {
		handler := ma.NewHandler(ma.ConfigFromService(cfg), repo, resolver, log)
		workers = append(workers, startWorker(zeebe.GetClient(), ma.TaskType, cfg, handler, zapLog))
	}

	if config.IsWorkerEnabled(cfg, be.TaskType) {
		handler := be.NewHandler(be.ConfigFromService(cfg), repo, resolver, log)
		workers = append(workers, startWorker(zeebe.GetClient(), be.TaskType, cfg, handler, zapLog))
	}

	zapLog.Info("All workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := zeebe.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}

	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, cfg *config.Config, handler camunda.JobHandler, log *zap.Logger) *camunda.CamundaWorker {
	wcfg := config.GetWorkerConfig(cfg, taskType)
	w := camunda.NewWorker(client, taskType, wcfg.MaxJobsActive, handler, log)
	w.Start()
	return w
}

func redisRaw(c *database.RedisClient) *redis.Client {
	if c == nil {
		return nil
	}
	return c.Client
}
