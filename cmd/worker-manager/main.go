// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"formation-engine/internal/common/camunda"
	"formation-engine/internal/common/config"
	"formation-engine/internal/common/database"
	"formation-engine/internal/common/logger"
	"formation-engine/internal/common/observability"
	"formation-engine/internal/pricing"
	"formation-engine/internal/store"
	"formation-engine/internal/validators"
	"formation-engine/internal/workflow"

	as "formation-engine/internal/workers/formation/advance-step"
	vp "formation-engine/internal/workers/formation/validate-payload"
	cq "formation-engine/internal/workers/pricing/compute-quote"
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

	zapLog := logger.NewWithOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting formation engine worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = camunda.Connect(ctx, cfg.Camunda)
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

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Domain wiring ---
	loc, err := time.LoadLocation(cfg.Pricing.Timezone)
	if err != nil {
		zapLog.Fatal("invalid pricing timezone", zap.Error(err))
	}

	rules := validators.ApplicationRules{
		PartnerVisaCapital: decimal.NewFromInt(cfg.Pricing.PartnerVisaCapital),
	}
	registry, err := validators.NewRegistry(validators.RegistryOptions{
		Rules: rules,
		File: validators.FileOptions{
			MaxBytes:            cfg.Validation.MaxUploadBytes,
			AllowedContentTypes: cfg.Validation.AllowedContentTypes,
		},
	})
	if err != nil {
		zapLog.Fatal("validator registry failed", zap.Error(err))
	}

	formations := store.NewFormationRepository(pg.DB)
	catalogs := store.NewCachedCatalogSource(
		store.NewCatalogRepository(pg.DB),
		rdb.Client,
		config.GetDuration(cfg.Pricing.CatalogCacheTTL),
		loc,
		log,
	)
	usage := store.NewPromotionUsageRepository(pg.DB)
	calculator := pricing.NewCalculator(pricing.Config{PartnerVisaCapital: rules.PartnerVisaCapital})
	tracker := workflow.NewTracker(rules)

	// --- Register Workers ---
	workers := camunda.NewWorkerSet(zeebeClient, log)

	if wcfg := config.GetWorkerConfig(cfg, vp.TaskType); wcfg.Enabled {
		handler := vp.NewHandler(
			&vp.Config{Timeout: config.GetDuration(wcfg.Timeout)},
			registry, log,
		)
		workers.Start(vp.TaskType, wcfg, handler.Handle)
	}

	if wcfg := config.GetWorkerConfig(cfg, as.TaskType); wcfg.Enabled {
		handler := as.NewHandler(
			&as.Config{Timeout: config.GetDuration(wcfg.Timeout)},
			formations, tracker, log,
		)
		workers.Start(as.TaskType, wcfg, handler.Handle)
	}

	if wcfg := config.GetWorkerConfig(cfg, cq.TaskType); wcfg.Enabled {
		handler := cq.NewHandler(
			&cq.Config{Timeout: config.GetDuration(wcfg.Timeout), Location: loc},
			formations, usage, catalogs, calculator, obs, log,
		)
		workers.Start(cq.TaskType, wcfg, handler.Handle)
	}
	zapLog.Info("Workers registered", zap.Int("count", workers.Len()))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true
		for name, check := range map[string]func(context.Context) error{
			"postgres": pg.Ping,
			"redis":    rdb.Ping,
			"zeebe": func(ctx context.Context) error {
				return camunda.HealthCheck(ctx, zeebeClient, 2*time.Second)
			},
		} {
			if err := check(checkCtx); err != nil {
				checks[name] = err.Error()
				ready = false
				continue
			}
			checks[name] = "ok"
		}

		if !ready {
			writeStatus(w, http.StatusServiceUnavailable, "not_ready", checks)
			return
		}
		writeStatus(w, http.StatusOK, "ready", checks)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	workers.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string, checks map[string]string) {
	body := map[string]interface{}{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if checks != nil {
		body["checks"] = checks
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
