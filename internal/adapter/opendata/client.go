// Package opendata fetches GeoJSON dataset exports from the Paris open-data
// portal, with an on-disk cache so a rendered document never re-downloads an
// export it already has.
package opendata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/paris-tree-census/internal/geo"
)

const userAgent = "paris-tree-census/1.0"

// Fetcher retrieves the raw bytes of a dataset export.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Client fetches dataset exports over HTTP.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a portal client. The timeout bounds the whole download;
// the tree export is ~100 MB, so configure it generously.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch downloads one export and returns its raw bytes.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/geo+json, application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("portal error: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read export body: %w", err)
	}

	c.logger.Info("export downloaded",
		"url", url,
		"bytes", len(data),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return data, nil
}

// FetchCollection fetches an export through f and decodes it as a GeoJSON
// feature collection.
func FetchCollection(ctx context.Context, f Fetcher, url string) (*geo.FeatureCollection, error) {
	data, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	var fc geo.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("export type %q, want FeatureCollection", fc.Type)
	}
	return &fc, nil
}
