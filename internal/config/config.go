// Package config assembles the dashboard configuration.
//
// Values are layered: built-in defaults, then an optional YAML file named by
// CONFIG_FILE, then environment variables (including a .env file). A
// malformed environment value keeps the layer beneath it and is reported as
// a fallback rather than failing startup; Validate catches anything that is
// still unusable after layering.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"coin-dashboard/internal/infra/backend"
	"coin-dashboard/internal/infra/cache"
	"coin-dashboard/internal/infra/coingecko"
	"coin-dashboard/internal/infra/fallback"
	"coin-dashboard/internal/infra/keyring"
	pkgconfig "coin-dashboard/internal/pkg/config"
)

// Defaults not owned by an adapter package.
const (
	DefaultDBPath        = "coin-dashboard.db"
	DefaultMetricsPort   = 9090
	DefaultWatchSchedule = "*/5 * * * *"
	DefaultRateLimit     = 0.5
	DefaultRateBurst     = 5
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
)

// Config is the full dashboard configuration.
type Config struct {
	CoinGecko CoinGeckoConfig `yaml:"coingecko"`
	Backend   BackendConfig   `yaml:"backend"`
	Cache     CacheConfig     `yaml:"cache"`
	Chart     ChartConfig     `yaml:"chart"`
	Watch     WatchConfig     `yaml:"watch"`
	Log       LogConfig       `yaml:"log"`

	// Fallbacks lists environment values that were rejected during Load.
	Fallbacks []Fallback `yaml:"-"`
}

// CoinGeckoConfig configures the market-data client.
type CoinGeckoConfig struct {
	// BaseURL of the market-data API. Env: COINGECKO_BASE_URL
	BaseURL string `yaml:"base_url"`
	// APIKeys is the rotation pool. Env: COINGECKO_API_KEY, COINGECKO_API_KEY_2
	APIKeys []string `yaml:"api_keys"`
	// Timeout per request. Env: COINGECKO_TIMEOUT. Default: 10s
	Timeout time.Duration `yaml:"timeout"`
	// KeyCooldown is the rotation window. Env: COINGECKO_KEY_COOLDOWN. Default: 1s
	KeyCooldown time.Duration `yaml:"key_cooldown"`
	// RateLimit is the local request budget per second. Env: COINGECKO_RATE_LIMIT
	RateLimit float64 `yaml:"rate_limit"`
	// RateBurst is the local burst size. Env: COINGECKO_RATE_BURST
	RateBurst int `yaml:"rate_burst"`
	// SearchFallbackDelay is the search race timer. Env: SEARCH_FALLBACK_DELAY. Default: 400ms
	SearchFallbackDelay time.Duration `yaml:"search_fallback_delay"`
	// SearchMaxIDs caps ids sent to the markets call. Env: SEARCH_MAX_IDS. Default: 10
	SearchMaxIDs int `yaml:"search_max_ids"`
}

// BackendConfig configures the analysis/news backend client.
type BackendConfig struct {
	// BaseURL env: BACKEND_BASE_URL. Default: http://localhost:8000/api
	BaseURL string `yaml:"base_url"`
	// Timeout env: BACKEND_TIMEOUT. Default: 60s
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig configures the analysis cache.
type CacheConfig struct {
	// DBPath is the SQLite file backing the durable tier. Env: CACHE_DB_PATH
	DBPath string `yaml:"db_path"`
	// TTL env: ANALYSIS_CACHE_TTL. Default: 4h
	TTL time.Duration `yaml:"ttl"`
}

// ChartConfig controls how chart dates are rendered.
type ChartConfig struct {
	// DateLayout env: CHART_DATE_LAYOUT. Default: 1/2/2006
	DateLayout string `yaml:"date_layout"`
	// Timezone env: CHART_TIMEZONE. Empty means the host's local zone.
	Timezone string `yaml:"timezone"`
}

// WatchConfig configures the long-running watch command.
type WatchConfig struct {
	// Schedule env: WATCH_SCHEDULE. Default: every 5 minutes
	Schedule string `yaml:"schedule"`
	// MetricsPort env: METRICS_PORT. Default: 9090
	MetricsPort int `yaml:"metrics_port"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Fallback describes an environment value that was ignored.
type Fallback struct {
	Field   string
	Warning string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		CoinGecko: CoinGeckoConfig{
			BaseURL:             coingecko.DefaultBaseURL,
			Timeout:             coingecko.DefaultTimeout,
			KeyCooldown:         keyring.DefaultCooldown,
			RateLimit:           DefaultRateLimit,
			RateBurst:           DefaultRateBurst,
			SearchFallbackDelay: coingecko.DefaultSearchFallbackDelay,
			SearchMaxIDs:        coingecko.DefaultSearchMaxIDs,
		},
		Backend: BackendConfig{
			BaseURL: backend.DefaultBaseURL,
			Timeout: backend.DefaultTimeout,
		},
		Cache: CacheConfig{
			DBPath: DefaultDBPath,
			TTL:    cache.DefaultTTL,
		},
		Chart: ChartConfig{
			DateLayout: fallback.DefaultDateLayout,
		},
		Watch: WatchConfig{
			Schedule:    DefaultWatchSchedule,
			MetricsPort: DefaultMetricsPort,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load builds the configuration from defaults, the CONFIG_FILE overlay and
// the environment. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// mergeFile decodes a YAML file over c. Unknown keys are rejected.
func (c *Config) mergeFile(path string) error {
	// #nosec G304 -- path comes from the operator's CONFIG_FILE setting
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment variables. Each loader falls back to the
// value already in c, so a bad env value keeps the file or default value.
func (c *Config) applyEnv() {
	positive := pkgconfig.Validator[time.Duration](pkgconfig.ValidatePositiveDuration)

	c.CoinGecko.BaseURL = track(c, "coingecko_base_url",
		pkgconfig.LoadEnvWithFallback("COINGECKO_BASE_URL", c.CoinGecko.BaseURL, pkgconfig.ValidateHTTPURL))
	c.CoinGecko.Timeout = track(c, "coingecko_timeout",
		pkgconfig.LoadEnvDuration("COINGECKO_TIMEOUT", c.CoinGecko.Timeout, positive))
	c.CoinGecko.KeyCooldown = track(c, "coingecko_key_cooldown",
		pkgconfig.LoadEnvDuration("COINGECKO_KEY_COOLDOWN", c.CoinGecko.KeyCooldown, positive))
	c.CoinGecko.RateLimit = track(c, "coingecko_rate_limit",
		pkgconfig.LoadEnvFloat("COINGECKO_RATE_LIMIT", c.CoinGecko.RateLimit, pkgconfig.ValidatePositiveFloat))
	c.CoinGecko.RateBurst = track(c, "coingecko_rate_burst",
		pkgconfig.LoadEnvInt("COINGECKO_RATE_BURST", c.CoinGecko.RateBurst, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 1, 1000)
		}))
	c.CoinGecko.SearchFallbackDelay = track(c, "search_fallback_delay",
		pkgconfig.LoadEnvDuration("SEARCH_FALLBACK_DELAY", c.CoinGecko.SearchFallbackDelay, positive))
	c.CoinGecko.SearchMaxIDs = track(c, "search_max_ids",
		pkgconfig.LoadEnvInt("SEARCH_MAX_IDS", c.CoinGecko.SearchMaxIDs, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 1, 250)
		}))

	primary := pkgconfig.LoadEnvString("COINGECKO_API_KEY", "")
	secondary := pkgconfig.LoadEnvString("COINGECKO_API_KEY_2", "")
	if primary != "" || secondary != "" {
		c.CoinGecko.APIKeys = []string{primary, secondary}
	}

	c.Backend.BaseURL = track(c, "backend_base_url",
		pkgconfig.LoadEnvWithFallback("BACKEND_BASE_URL", c.Backend.BaseURL, pkgconfig.ValidateHTTPURL))
	c.Backend.Timeout = track(c, "backend_timeout",
		pkgconfig.LoadEnvDuration("BACKEND_TIMEOUT", c.Backend.Timeout, positive))

	c.Cache.DBPath = pkgconfig.LoadEnvString("CACHE_DB_PATH", c.Cache.DBPath)
	c.Cache.TTL = track(c, "analysis_cache_ttl",
		pkgconfig.LoadEnvDuration("ANALYSIS_CACHE_TTL", c.Cache.TTL, positive))

	c.Chart.DateLayout = track(c, "chart_date_layout",
		pkgconfig.LoadEnvWithFallback("CHART_DATE_LAYOUT", c.Chart.DateLayout, pkgconfig.ValidateDateLayout))
	c.Chart.Timezone = track(c, "chart_timezone",
		pkgconfig.LoadEnvWithFallback("CHART_TIMEZONE", c.Chart.Timezone, pkgconfig.ValidateTimezone))

	c.Watch.Schedule = track(c, "watch_schedule",
		pkgconfig.LoadEnvWithFallback("WATCH_SCHEDULE", c.Watch.Schedule, pkgconfig.ValidateCronSchedule))
	c.Watch.MetricsPort = track(c, "metrics_port",
		pkgconfig.LoadEnvInt("METRICS_PORT", c.Watch.MetricsPort, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 1, 65535)
		}))

	c.Log.Level = pkgconfig.LoadEnvString("LOG_LEVEL", c.Log.Level)
	c.Log.Format = pkgconfig.LoadEnvString("LOG_FORMAT", c.Log.Format)
	c.Log.File = pkgconfig.LoadEnvString("LOG_FILE", c.Log.File)
}

func track[T any](c *Config, field string, r pkgconfig.LoadResult[T]) T {
	if r.FallbackApplied {
		for _, w := range r.Warnings {
			c.Fallbacks = append(c.Fallbacks, Fallback{Field: field, Warning: w})
		}
	}
	return r.Value
}





// Validate checks configuration correctness after layering. Errors name
// the environment variable that controls the offending value.
func (c *Config) Validate() error {
	if err := pkgconfig.ValidateHTTPURL(c.CoinGecko.BaseURL); err != nil {
		return fmt.Errorf("COINGECKO_BASE_URL: %w", err)
	}
	if c.CoinGecko.Timeout <= 0 {
		return fmt.Errorf("COINGECKO_TIMEOUT must be positive")
	}
	if c.CoinGecko.KeyCooldown <= 0 {
		return fmt.Errorf("COINGECKO_KEY_COOLDOWN must be positive")
	}
	if err := pkgconfig.ValidatePositiveFloat(c.CoinGecko.RateLimit); err != nil {
		return fmt.Errorf("COINGECKO_RATE_LIMIT: %w", err)
	}
	if c.CoinGecko.RateBurst < 1 {
		return fmt.Errorf("COINGECKO_RATE_BURST must be at least 1")
	}
	if c.CoinGecko.SearchFallbackDelay <= 0 {
		return fmt.Errorf("SEARCH_FALLBACK_DELAY must be positive")
	}
	if err := pkgconfig.ValidateIntRange(c.CoinGecko.SearchMaxIDs, 1, 250); err != nil {
		return fmt.Errorf("SEARCH_MAX_IDS: %w", err)
	}

	if err := pkgconfig.ValidateHTTPURL(c.Backend.BaseURL); err != nil {
		return fmt.Errorf("BACKEND_BASE_URL: %w", err)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}

	if strings.TrimSpace(c.Cache.DBPath) == "" {
		return fmt.Errorf("CACHE_DB_PATH cannot be empty")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("ANALYSIS_CACHE_TTL must be positive")
	}

	if err := pkgconfig.ValidateDateLayout(c.Chart.DateLayout); err != nil {
		return fmt.Errorf("CHART_DATE_LAYOUT: %w", err)
	}
	if c.Chart.Timezone != "" {
		if err := pkgconfig.ValidateTimezone(c.Chart.Timezone); err != nil {
			return fmt.Errorf("CHART_TIMEZONE: %w", err)
		}
	}

	if err := pkgconfig.ValidateCronSchedule(c.Watch.Schedule); err != nil {
		return fmt.Errorf("WATCH_SCHEDULE: %w", err)
	}
	if err := pkgconfig.ValidateIntRange(c.Watch.MetricsPort, 1, 65535); err != nil {
		return fmt.Errorf("METRICS_PORT: %w", err)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}

	return nil
}

// Location resolves Chart.Timezone. Empty means time.Local.
func (c *Config) Location() *time.Location {
	if c.Chart.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Chart.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Report logs every fallback and publishes the load to m. A nil m only logs.
func (c *Config) Report(logger *slog.Logger, m *pkgconfig.ConfigMetrics) {
	for _, fb := range c.Fallbacks {
		logger.Warn("configuration fallback applied",
			slog.String("field", fb.Field),
			slog.String("warning", fb.Warning))
		if m != nil {
			m.RecordValidationError(fb.Field)
			m.RecordFallback(fb.Field)
		}
	}
	if m != nil {
		m.SetFallbackActive(len(c.Fallbacks) > 0)
		m.RecordLoadTimestamp()
	}
}

// CoinGeckoClientConfig converts to the adapter's config.
func (c *Config) CoinGeckoClientConfig() coingecko.Config {
	return coingecko.Config{
		BaseURL:             c.CoinGecko.BaseURL,
		Timeout:             c.CoinGecko.Timeout,
		SearchFallbackDelay: c.CoinGecko.SearchFallbackDelay,
		SearchMaxIDs:        c.CoinGecko.SearchMaxIDs,
		DateLayout:          c.Chart.DateLayout,
		Location:            c.Location(),
	}
}

// BackendClientConfig converts to the adapter's config.
func (c *Config) BackendClientConfig() backend.Config {
	return backend.Config{
		BaseURL: c.Backend.BaseURL,
		Timeout: c.Backend.Timeout,
	}
}
