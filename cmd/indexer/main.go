package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glmrscan/transfer-indexer/internal/config"
	"github.com/glmrscan/transfer-indexer/internal/coordinator"
	"github.com/glmrscan/transfer-indexer/internal/database"
	"github.com/glmrscan/transfer-indexer/internal/feed"
	"github.com/glmrscan/transfer-indexer/internal/metrics"
	"github.com/glmrscan/transfer-indexer/internal/pricefeed"
	"github.com/glmrscan/transfer-indexer/internal/pricing"
	"github.com/glmrscan/transfer-indexer/internal/processor"
	"github.com/glmrscan/transfer-indexer/internal/store"
	"github.com/glmrscan/transfer-indexer/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/indexer.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting indexer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"asset", cfg.Chain.Asset,
		"strategy", cfg.Provider.Strategy,
		"feed", cfg.Indexer.FeedPath,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Postgres.Host,
		"port", cfg.Database.Postgres.Port,
		"database", cfg.Database.Postgres.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database.Postgres)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Quote provider client
	provider := pricefeed.NewClient(
		cfg.Provider.BaseURL,
		pricefeed.WithLogger(logger),
		pricefeed.WithTimeout(cfg.Provider.Timeout),
		pricefeed.WithRetries(cfg.Provider.MaxRetries, cfg.Provider.RetryBackoff),
	)

	// Price resolver over a process-wide day cache
	resolver := pricing.NewResolver(pricing.Config{
		Asset:       cfg.Chain.Asset,
		Strategy:    pricing.Strategy(cfg.Provider.Strategy),
		QuotesBegin: cfg.QuotesBegin(),
		Cooldown:    cfg.Provider.Cooldown,
	}, provider, pricing.NewCache(), logger)

	proc := processor.New(resolver, cfg.QuotesBegin(), logger)
	st := store.New(pool, logger)
	coord := coordinator.New(st, proc, logger)

	// Event feed
	source, err := feed.OpenJSONL(cfg.Indexer.FeedPath, cfg.Indexer.BatchSize, logger)
	if err != nil {
		logger.Error("failed to open feed", "error", err)
		os.Exit(1)
	}
	defer source.Close()

	// Health and metrics server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: createHTTPHandler(cfg, pool, logger),
	}
	go func() {
		logger.Info("starting health server", "port", cfg.Metrics.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	// Sequential cycle loop: one delivery at a time, in feed order.
	exitCode := 0
	if err := run(ctx, source, coord, logger); err != nil {
		logger.Error("indexing aborted", "error", err)
		exitCode = 1
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	logger.Info("indexer stopped")
	os.Exit(exitCode)
}

// run drains the feed through the coordinator until EOF, an error, or
// shutdown.
func run(ctx context.Context, source feed.Source, coord *coordinator.Coordinator, logger *slog.Logger) error {
	cycles := 0
	for {
		events, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			logger.Info("feed exhausted", "cycles", cycles)
			return nil
		}
		if errors.Is(err, context.Canceled) {
			logger.Info("stopped mid-feed", "cycles", cycles)
			return nil
		}
		if err != nil {
			return err
		}

		if err := coord.RunCycle(ctx, events); err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("stopped mid-cycle", "cycles", cycles)
				return nil
			}
			return err
		}
		cycles++
	}
}

// createHTTPHandler serves the health check and the metrics endpoint.
func createHTTPHandler(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Version    string         `json:"version"`
			Instance   string         `json:"instance"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Version:    version.String(),
			Instance:   cfg.Instance.ID,
			Components: map[string]any{},
		}

		// Check database
		if err := pool.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	return mux
}
