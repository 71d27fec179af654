package opendata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/paris-tree-census/internal/observability"
)

// countingFetcher records how often the network is hit.
type countingFetcher struct {
	calls int
	data  []byte
	err   error
}

func (f *countingFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

func newTestCache(t *testing.T, inner Fetcher, refresh bool) (*CachedFetcher, string) {
	t.Helper()
	dir := t.TempDir()
	c := NewCachedFetcher(inner, dir, "trees", refresh, observability.NewMetricsForTesting(), testLogger())
	return c, dir
}

func TestCachedFetcher_MissThenHit(t *testing.T) {
	inner := &countingFetcher{data: []byte(miniCollection)}
	cache, dir := newTestCache(t, inner, false)

	d1, err := cache.Fetch(context.Background(), "http://example/trees")
	require.NoError(t, err)
	assert.Equal(t, miniCollection, string(d1))
	assert.Equal(t, 1, inner.calls)

	// Cache file is the exact downloaded bytes.
	onDisk, err := os.ReadFile(filepath.Join(dir, "trees.geojson"))
	require.NoError(t, err)
	assert.Equal(t, miniCollection, string(onDisk))

	d2, err := cache.Fetch(context.Background(), "http://example/trees")
	require.NoError(t, err)
	assert.Equal(t, miniCollection, string(d2))
	assert.Equal(t, 1, inner.calls, "second fetch must come from cache")
}

func TestCachedFetcher_ForceRefresh(t *testing.T) {
	inner := &countingFetcher{data: []byte(miniCollection)}
	cache, _ := newTestCache(t, inner, true)

	_, err := cache.Fetch(context.Background(), "http://example/trees")
	require.NoError(t, err)
	_, err = cache.Fetch(context.Background(), "http://example/trees")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls, "refresh bypasses the cache")
}

func TestCachedFetcher_PreseededFile(t *testing.T) {
	inner := &countingFetcher{data: []byte("fresh")}
	cache, dir := newTestCache(t, inner, false)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "trees.geojson"), []byte("stale-but-valid"), 0o644))

	data, err := cache.Fetch(context.Background(), "http://example/trees")
	require.NoError(t, err)
	assert.Equal(t, "stale-but-valid", string(data))
	assert.Equal(t, 0, inner.calls)
}

func TestCachedFetcher_DownloadErrorLeavesNoFile(t *testing.T) {
	inner := &countingFetcher{err: assert.AnError}
	cache, dir := newTestCache(t, inner, false)

	_, err := cache.Fetch(context.Background(), "http://example/trees")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "trees.geojson"))
	assert.True(t, os.IsNotExist(statErr), "failed download must not create a cache file")
}
