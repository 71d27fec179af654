package opendata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/paris-tree-census/internal/observability"
)

// CachedFetcher wraps a Fetcher with an on-disk cache of the raw export.
// A present cache file short-circuits the download entirely; there is no
// freshness check beyond ForceRefresh. The portal re-exports daily, so a
// stale cache is refreshed by deleting the file or setting FORCE_REFRESH.
type CachedFetcher struct {
	inner   Fetcher
	path    string // cache file for this dataset
	dataset string // metrics label
	refresh bool
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewCachedFetcher creates a cache decorator around a fetcher. The cache
// file lives at <dir>/<dataset>.geojson.
func NewCachedFetcher(inner Fetcher, dir, dataset string, refresh bool, metrics *observability.Metrics, logger *slog.Logger) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		path:    filepath.Join(dir, dataset+".geojson"),
		dataset: dataset,
		refresh: refresh,
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch returns the cached bytes when present, otherwise downloads through
// the inner fetcher and persists the result atomically (tmp + rename), so a
// crashed run never leaves a truncated cache file behind.
func (c *CachedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if !c.refresh {
		data, err := os.ReadFile(c.path)
		if err == nil {
			c.metrics.CacheReads.WithLabelValues(c.dataset, "hit").Inc()
			c.logger.Info("export served from cache", "dataset", c.dataset, "path", c.path, "bytes", len(data))
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read cache %s: %w", c.path, err)
		}
	}
	c.metrics.CacheReads.WithLabelValues(c.dataset, "miss").Inc()

	data, err := c.inner.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	c.metrics.DownloadBytes.WithLabelValues(c.dataset).Add(float64(len(data)))

	if err := c.write(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *CachedFetcher) write(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), "."+c.dataset+"-*")
	if err != nil {
		return fmt.Errorf("create cache tempfile: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache tempfile: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("publish cache file: %w", err)
	}
	c.logger.Info("export cached", "dataset", c.dataset, "path", c.path, "bytes", len(data))
	return nil
}
