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

	"leadcall_backend/internal/adapters"
	"leadcall_backend/internal/adapters/storage"
	"leadcall_backend/internal/auth"
	"leadcall_backend/internal/calls"
	"leadcall_backend/internal/events"
	"leadcall_backend/internal/groups"
	apphttp "leadcall_backend/internal/http"
	"leadcall_backend/internal/http/router"
	"leadcall_backend/internal/imports"
	"leadcall_backend/internal/leads"
	"leadcall_backend/internal/scheduler"
	"leadcall_backend/internal/stats"
	"leadcall_backend/internal/telephony"
	"leadcall_backend/internal/telephony/twilio"
	"leadcall_backend/migrations"
	"leadcall_backend/platform/config"
	"leadcall_backend/platform/db"
	"leadcall_backend/platform/logger"
	"leadcall_backend/platform/metrics"
	"leadcall_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.NewWithFile(cfg.Env, cfg.GetLogFile())
	defer func() { _ = log.Close() }()
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := db.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	appMetrics := metrics.New()
	adapters.SubscribeMetrics(eventBus, appMetrics)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(cfg, log, val)
	leadsModule := leads.NewModule(pool, val, log)
	groupsModule := groups.NewModule(pool, val, log)
	statsModule := stats.NewModule(pool, log)

	// Calls update leads through an adapter so the calls module never imports leads
	callsModule := calls.NewModule(pool, adapters.NewCallLeadRecorder(leadsModule.Service()), eventBus, val, log)

	importsModule, err := imports.NewModule(pool, adapters.NewImportLeadStore(leadsModule.Service()), eventBus, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize imports module", "error", err)
		panic("failed to initialize imports module: " + err.Error())
	}
	if closeJobs := initFileImports(ctx, cfg, importsModule, log); closeJobs != nil {
		defer closeJobs()
	}

	telephonyModule := telephony.NewModule(twilio.NewClient(cfg, log), cfg, val, log)
	if !cfg.IsTwilioConfigured() {
		log.Warn("twilio credentials missing; browser calling disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		Metrics:  appMetrics,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			leadsModule,
			groupsModule,
			callsModule,
			statsModule,
			importsModule,
			telephonyModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initFileImports enables queued spreadsheet imports when both Redis and MinIO
// are configured. The returned func closes the queue client.
func initFileImports(ctx context.Context, cfg *config.Config, module *imports.Module, log *logger.Logger) func() {
	if cfg.GetRedisURL() == "" || !cfg.IsMinIOEnabled() {
		log.Warn("REDIS_URL or MINIO_ENDPOINT not configured; file imports disabled")
		return nil
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		return nil
	}
	bucket := cfg.GetMinioBucketImports()
	if err := withRetry(ctx, log, "ensure imports bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		return nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize import queue client", "error", err)
		return nil
	}

	module.SetFileJobs(storageSvc, bucket, client)
	log.Info("file imports enabled", "bucket", bucket, "queue", cfg.GetAsynqQueueName())
	return func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
