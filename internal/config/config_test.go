package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultTreesURL, cfg.TreesURL)
	assert.Equal(t, DefaultDistrictsURL, cfg.DistrictsURL)
	assert.Equal(t, "data/cache", cfg.CacheDir)
	assert.Equal(t, "data/cache/trees.db", cfg.DBPath)
	assert.Equal(t, "out", cfg.OutDir)
	assert.False(t, cfg.ForceRefresh)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.MetricsFile)

	assert.Equal(t, 15, cfg.TopSpecies)
	assert.Equal(t, 10, cfg.StreetMinTrees)
	assert.Equal(t, "Platanus x hispanica", cfg.RipleySpecies)
	assert.Equal(t, 250.0, cfg.RipleyMaxRadiusM)
	assert.Equal(t, 64, cfg.RipleySteps)
	assert.Equal(t, "PARC MONTSOURIS", cfg.FocalPark)
	assert.Equal(t, 150.0, cfg.AccumBandwidthM)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TREES_URL", "http://localhost:9000/trees.geojson")
	t.Setenv("DISTRICTS_URL", "http://localhost:9000/districts.geojson")
	t.Setenv("CACHE_DIR", "/tmp/census-cache")
	t.Setenv("FORCE_REFRESH", "true")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("METRICS_FILE", "/tmp/census.prom")
	t.Setenv("RIPLEY_SPECIES", "Aesculus hippocastanum")
	t.Setenv("RIPLEY_MAX_RADIUS_M", "100")
	t.Setenv("RIPLEY_STEPS", "32")
	t.Setenv("FOCAL_PARK", "PARC MONCEAU")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/trees.geojson", cfg.TreesURL)
	assert.Equal(t, "http://localhost:9000/districts.geojson", cfg.DistrictsURL)
	assert.Equal(t, "/tmp/census-cache", cfg.CacheDir)
	assert.True(t, cfg.ForceRefresh)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "/tmp/census.prom", cfg.MetricsFile)
	assert.Equal(t, "Aesculus hippocastanum", cfg.RipleySpecies)
	assert.Equal(t, 100.0, cfg.RipleyMaxRadiusM)
	assert.Equal(t, 32, cfg.RipleySteps)
	assert.Equal(t, "PARC MONCEAU", cfg.FocalPark)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad timeout", "HTTP_TIMEOUT", "soon"},
		{"negative timeout", "HTTP_TIMEOUT", "-5s"},
		{"bad top species", "TOP_SPECIES", "many"},
		{"zero top species", "TOP_SPECIES", "0"},
		{"bad steps", "RIPLEY_STEPS", "x"},
		{"bad radius", "RIPLEY_MAX_RADIUS_M", "far"},
		{"negative radius", "RIPLEY_MAX_RADIUS_M", "-10"},
		{"zero min trees", "STREET_MIN_TREES", "0"},
		{"bad bandwidth", "ACCUM_BANDWIDTH_M", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}
