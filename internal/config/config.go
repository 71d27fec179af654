// Package config loads pipeline settings from environment variables,
// applying defaults where unset. cmd/census loads a .env file first via
// godotenv, so local runs can keep overrides next to the repo.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default dataset exports on the Paris open-data portal.
const (
	DefaultTreesURL     = "https://opendata.paris.fr/api/explore/v2.1/catalog/datasets/les-arbres/exports/geojson"
	DefaultDistrictsURL = "https://opendata.paris.fr/api/explore/v2.1/catalog/datasets/arrondissements/exports/geojson"
)

// Config holds all pipeline settings.
type Config struct {
	TreesURL     string
	DistrictsURL string

	CacheDir     string // downloaded GeoJSON exports land here
	DBPath       string // SQLite cache of the cleaned tree table
	OutDir       string // charts, workbook, report
	ForceRefresh bool   // ignore caches and re-download

	HTTPTimeout time.Duration
	LogLevel    string
	LogFormat   string
	MetricsFile string // optional textfile-collector dump, empty disables

	// Analysis parameters, fixed per run and recorded in the report.
	TopSpecies       int     // rows in the abundance tables
	StreetMinTrees   int     // streets below this are left out of the partition
	RipleySpecies    string  // species for the concentration function
	RipleyMaxRadiusM float64 // largest radius evaluated, meters
	RipleySteps      int     // number of radii between 0 and the max
	FocalPark        string  // street key of the park for the accumulation curve
	AccumBandwidthM  float64 // Gaussian kernel bandwidth, meters
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	httpTimeout, err := parseDuration("HTTP_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	topSpecies, err := parseInt("TOP_SPECIES", 15)
	if err != nil {
		return nil, err
	}
	streetMinTrees, err := parseInt("STREET_MIN_TREES", 10)
	if err != nil {
		return nil, err
	}
	ripleySteps, err := parseInt("RIPLEY_STEPS", 64)
	if err != nil {
		return nil, err
	}
	ripleyMaxRadius, err := parseFloat("RIPLEY_MAX_RADIUS_M", 250)
	if err != nil {
		return nil, err
	}
	accumBandwidth, err := parseFloat("ACCUM_BANDWIDTH_M", 150)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TreesURL:     envOrDefault("TREES_URL", DefaultTreesURL),
		DistrictsURL: envOrDefault("DISTRICTS_URL", DefaultDistrictsURL),

		CacheDir:     envOrDefault("CACHE_DIR", "data/cache"),
		DBPath:       envOrDefault("DB_PATH", "data/cache/trees.db"),
		OutDir:       envOrDefault("OUT_DIR", "out"),
		ForceRefresh: os.Getenv("FORCE_REFRESH") == "true",

		HTTPTimeout: httpTimeout,
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		LogFormat:   envOrDefault("LOG_FORMAT", "text"),
		MetricsFile: os.Getenv("METRICS_FILE"),

		TopSpecies:       topSpecies,
		StreetMinTrees:   streetMinTrees,
		RipleySpecies:    envOrDefault("RIPLEY_SPECIES", "Platanus x hispanica"),
		RipleyMaxRadiusM: ripleyMaxRadius,
		RipleySteps:      ripleySteps,
		FocalPark:        envOrDefault("FOCAL_PARK", "PARC MONTSOURIS"),
		AccumBandwidthM:  accumBandwidth,
	}

	if cfg.TreesURL == "" {
		return nil, errors.New("TREES_URL is required")
	}
	if cfg.DistrictsURL == "" {
		return nil, errors.New("DISTRICTS_URL is required")
	}
	if cfg.CacheDir == "" {
		return nil, errors.New("CACHE_DIR is required")
	}
	if cfg.StreetMinTrees < 1 {
		return nil, errors.New("STREET_MIN_TREES must be at least 1")
	}
	if cfg.RipleyMaxRadiusM <= 0 || cfg.RipleySteps <= 0 {
		return nil, errors.New("Ripley radius and step count must be positive")
	}
	if cfg.AccumBandwidthM <= 0 {
		return nil, errors.New("ACCUM_BANDWIDTH_M must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}
