// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers a YAML file and PODIUM_* environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// WorkerCount bounds how many event/division partitions are ranked at once.
	WorkerCount int `koanf:"worker_count"`

	// ComputeTimeoutMS caps a single leaderboard computation, data loading included.
	ComputeTimeoutMS int `koanf:"compute_timeout_ms"`

	// CacheMaxAgeSeconds and CacheSWRSeconds shape the Cache-Control header
	// of successful leaderboard responses.
	CacheMaxAgeSeconds int `koanf:"cache_max_age_s"`
	CacheSWRSeconds    int `koanf:"cache_swr_s"`

	// AllowedOrigins lists origins allowed by CORS, comma separated. "*" allows any.
	AllowedOrigins string `koanf:"allowed_origins"`

	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string `koanf:"database_url"`

	// DBMaxConns caps the pgx pool size.
	DBMaxConns int `koanf:"db_max_conns"`

	// FixturePath points at a JSON fixture served from memory instead of PostgreSQL.
	FixturePath string `koanf:"fixture_path"`

	// MetricsNamespace and MetricsSubsystem prefix every Prometheus metric.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsBucketsMS overrides the latency histogram buckets, comma
	// separated milliseconds in increasing order. Empty keeps the defaults.
	MetricsBucketsMS string `koanf:"metrics_buckets_ms"`

	// MetricsLabels attaches constant labels to every metric, e.g. "env=prod,region=eu".
	MetricsLabels string `koanf:"metrics_labels"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		WorkerCount:        runtime.NumCPU(),
		ComputeTimeoutMS:   10_000,
		CacheMaxAgeSeconds: 30,
		CacheSWRSeconds:    60,
		AllowedOrigins:     "*",
		DBMaxConns:         10,
		MetricsNamespace:   "podium",
		MetricsSubsystem:   "leaderboard",
	}
}

// ComputeTimeout returns ComputeTimeoutMS as a duration.
func (c *Config) ComputeTimeout() time.Duration {
	return time.Duration(c.ComputeTimeoutMS) * time.Millisecond
}

// Origins splits AllowedOrigins into trimmed, non-empty entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// HistogramBuckets parses MetricsBucketsMS. It returns nil when unset.
func (c *Config) HistogramBuckets() ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(c.MetricsBucketsMS, ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("%w: metrics_buckets_ms: bad bucket %q", ErrInvalidConfig, part)
		}
		if n := len(out); n > 0 && v <= out[n-1] {
			return nil, fmt.Errorf("%w: metrics_buckets_ms must increase", ErrInvalidConfig)
		}
		out = append(out, v)
	}
	return out, nil
}

// ConstLabels parses MetricsLabels. It returns nil when unset.
func (c *Config) ConstLabels() (map[string]string, error) {
	var out map[string]string
	for _, pair := range strings.Split(c.MetricsLabels, ",") {
		if pair = strings.TrimSpace(pair); pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("%w: metrics_labels: bad pair %q", ErrInvalidConfig, pair)
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[name] = value
	}
	return out, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.ComputeTimeoutMS <= 0:
		return fmt.Errorf("%w: compute_timeout_ms must be positive", ErrInvalidConfig)
	case c.CacheMaxAgeSeconds < 0 || c.CacheSWRSeconds < 0:
		return fmt.Errorf("%w: cache durations must not be negative", ErrInvalidConfig)
	case c.DatabaseURL == "" && c.FixturePath == "":
		return fmt.Errorf("%w: %w: set database_url or fixture_path", ErrInvalidConfig, ErrNoDataSource)
	case c.DatabaseURL != "" && c.DBMaxConns <= 0:
		return fmt.Errorf("%w: db_max_conns must be positive", ErrInvalidConfig)
	}
	if c.MetricsNamespace == "" {
		return fmt.Errorf("%w: metrics_namespace must not be empty", ErrInvalidConfig)
	}
	if _, err := c.HistogramBuckets(); err != nil {
		return err
	}
	if _, err := c.ConstLabels(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
