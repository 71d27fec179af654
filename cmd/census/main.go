// Command census runs the full tree-census pipeline: download the portal
// exports (cached on disk), materialize the cleaned analysis table, run the
// abundance, diversity, and point-pattern analyses, and render the charts,
// workbook, and Markdown report.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/paris-tree-census/internal/adapter/opendata"
	"github.com/couchcryptid/paris-tree-census/internal/config"
	"github.com/couchcryptid/paris-tree-census/internal/observability"
	"github.com/couchcryptid/paris-tree-census/internal/pipeline"
	"github.com/couchcryptid/paris-tree-census/internal/store"
)

func main() {
	// A .env next to the binary is optional; real deployments set the
	// environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logger.Error("failed to create data dir", "error", err)
		os.Exit(1)
	}
	treeStore, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open tree store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer treeStore.Close()

	client := opendata.NewClient(cfg.HTTPTimeout, logger)
	trees := opendata.NewCachedFetcher(client, cfg.CacheDir, "les-arbres", cfg.ForceRefresh, metrics, logger)
	districts := opendata.NewCachedFetcher(client, cfg.CacheDir, "arrondissements", cfg.ForceRefresh, metrics, logger)

	p := pipeline.New(cfg, trees, districts, treeStore, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := p.Run(ctx)
	if err != nil {
		logger.Error("census run failed", "error", err)
		dumpMetrics(cfg, metrics, logger)
		os.Exit(1)
	}

	logger.Info("census run complete",
		"trees", res.TotalTrees,
		"streets", res.Streets,
		"gamma_effective", res.Partition.GammaEffective,
		"out_dir", cfg.OutDir,
	)
	dumpMetrics(cfg, metrics, logger)
}

// dumpMetrics writes the textfile-collector dump when configured. A batch
// job has no scrape endpoint, so the dump is the only metrics surface.
func dumpMetrics(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Error("failed to write metrics file", "path", cfg.MetricsFile, "error", err)
		return
	}
	logger.Info("metrics written", "path", cfg.MetricsFile)
}
