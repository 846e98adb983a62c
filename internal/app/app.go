package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/myenglish-backend/internal/config"
	"github.com/heartmarshall/myenglish-backend/internal/review"
	"github.com/heartmarshall/myenglish-backend/internal/storage/postgres"
	"github.com/heartmarshall/myenglish-backend/internal/transport/middleware"
	"github.com/heartmarshall/myenglish-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, wires the
// storage layer and the four core engines behind internal/review.Service,
// mounts the HTTP transport, starts serving, and waits for a shutdown
// signal for graceful termination.
func Run(ctx context.Context) error {
	// -----------------------------------------------------------------------
	// 1. Load and validate config
	// -----------------------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// -----------------------------------------------------------------------
	// 2. Initialize logger
	// -----------------------------------------------------------------------
	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	// -----------------------------------------------------------------------
	// 3. Connect to DB (pool)
	// -----------------------------------------------------------------------
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	logger.Info("database connected", slog.Int("max_conns", int(cfg.Database.MaxConns)))

	// -----------------------------------------------------------------------
	// 4. Create TxManager and storage.Store
	// -----------------------------------------------------------------------
	txm := postgres.NewTxManager(pool)
	repo := postgres.New(pool)

	// -----------------------------------------------------------------------
	// 5. Wire the four core engines behind review.Service
	// -----------------------------------------------------------------------
	reviewSvc := review.NewService(review.Deps{
		Learners:        repo,
		Memories:        repo,
		ReviewLog:       repo,
		Items:           repo,
		Placement:       repo,
		Dashboard:       repo,
		Tx:              txm,
		SchedulerParams: cfg.Scheduler.ToParameters(),
		PlacementParams: cfg.Placement.ToParameters(),
		ComposerBatch:   cfg.Composer.DefaultBatchSize,
		UndoWindow:      time.Duration(cfg.Scheduler.UndoWindowMinutes) * time.Minute,
		Logger:          logger,
	})

	// -----------------------------------------------------------------------
	// 6. Create HTTP handlers and router
	// -----------------------------------------------------------------------
	healthHandler := rest.NewHealthHandler(pool, BuildVersion())
	reviewHandler := rest.NewReviewHandler(reviewSvc, repo, logger)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
		defer limiter.Stop()
	}

	handler := rest.NewRouter(reviewHandler, healthHandler, cfg.CORS, cfg.Metrics, limiter, cfg.RateLimit, logger)

	// -----------------------------------------------------------------------
	// 7. Create and start HTTP server
	// -----------------------------------------------------------------------
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	// -----------------------------------------------------------------------
	// 8. Wait for signal -> graceful shutdown
	// -----------------------------------------------------------------------
	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("HTTP server stopped")

	// pool.Close() called via defer
	logger.Info("shutdown complete")

	return nil
}
