// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override, DAILY_* prefix)
//  2. Config file (~/.daily/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - Server: HTTP listen address, inbound rate limit
//   - Providers: upstream API credentials (weather, maps, finance)
//   - Policy: cache TTL/size, provider timeout, retry and circuit-breaker knobs
//
// The server is fully operable without any credential configured: each
// provider adapter falls back to a deterministic offline variant, so an
// empty config is a valid config.
//
// Security: API keys are never logged; MarshalJSON masks them.
// Validation: range checks in validation.go with sentinel errors for errors.Is().
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Policy defaults. These mirror the knobs consumed by the dispatcher's
// resilience layer; per-tool overrides are derived from these at registry
// construction.
const (
	// DefaultCacheTTL is how long a validated tool response is served from cache.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultCacheSize bounds each tool's response cache (LRU entries).
	DefaultCacheSize = 256

	// DefaultProviderTimeout bounds a single upstream attempt.
	DefaultProviderTimeout = 10 * time.Second

	// DefaultMaxRetries is the retry budget per dispatch for retryable failures.
	DefaultMaxRetries = 3

	// DefaultBackoffBase is the first retry delay; doubles per attempt with jitter.
	DefaultBackoffBase = 500 * time.Millisecond

	// DefaultBackoffMax caps the computed backoff delay.
	DefaultBackoffMax = 10 * time.Second

	// DefaultBreakerThreshold is the consecutive-failure count that opens a circuit.
	DefaultBreakerThreshold = 5

	// DefaultBreakerCooldown is how long an open circuit rests before a trial call.
	DefaultBreakerCooldown = 30 * time.Second

	// DefaultRatePerMinute limits inbound tool invocations per client.
	DefaultRatePerMinute = 60
)

// Config stores application configuration.
// SECURITY: Sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields (API keys, tokens), update MarshalJSON.
type Config struct {
	// Server configuration
	Addr      string `mapstructure:"addr" json:"addr"`
	LogLevel  string `mapstructure:"log_level" json:"log_level"`
	LogJSON   bool   `mapstructure:"log_json" json:"log_json"`
	RateLimit int    `mapstructure:"rate_limit_per_minute" json:"rate_limit_per_minute"`

	// Provider credentials. Empty means the corresponding adapter runs in
	// offline mode with synthetic data.
	WeatherAPIKey   string `mapstructure:"weather_api_key" json:"weather_api_key"`       // SENSITIVE: masked in MarshalJSON
	MapsAPIKey      string `mapstructure:"maps_api_key" json:"maps_api_key"`             // SENSITIVE: masked in MarshalJSON
	AlphaVantageKey string `mapstructure:"alpha_vantage_key" json:"alpha_vantage_key"`   // SENSITIVE: masked in MarshalJSON

	// Response cache policy
	CacheTTL  time.Duration `mapstructure:"cache_ttl" json:"cache_ttl"`
	CacheSize int           `mapstructure:"cache_size" json:"cache_size"`

	// Resilience policy (per upstream attempt / per dispatch)
	ProviderTimeout  time.Duration `mapstructure:"provider_timeout" json:"provider_timeout"`
	MaxRetries       int           `mapstructure:"max_retries" json:"max_retries"`
	BackoffBase      time.Duration `mapstructure:"backoff_base" json:"backoff_base"`
	BackoffMax       time.Duration `mapstructure:"backoff_max" json:"backoff_max"`
	BreakerThreshold int           `mapstructure:"breaker_threshold" json:"breaker_threshold"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown" json:"breaker_cooldown"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".daily")

	// Ensure directory exists (0750 for better security)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v)
	bindEnvVariables(v)

	// Read configuration file (if exists)
	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// Validate immediately (fail-fast)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", "127.0.0.1:8000")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("rate_limit_per_minute", DefaultRatePerMinute)

	v.SetDefault("cache_ttl", DefaultCacheTTL)
	v.SetDefault("cache_size", DefaultCacheSize)

	v.SetDefault("provider_timeout", DefaultProviderTimeout)
	v.SetDefault("max_retries", DefaultMaxRetries)
	v.SetDefault("backoff_base", DefaultBackoffBase)
	v.SetDefault("backoff_max", DefaultBackoffMax)
	v.SetDefault("breaker_threshold", DefaultBreakerThreshold)
	v.SetDefault("breaker_cooldown", DefaultBreakerCooldown)
}

// bindEnvVariables binds environment variables explicitly.
// Secrets are env-only by convention; everything else follows the
// DAILY_ prefix so deployments never need a config file.
func bindEnvVariables(v *viper.Viper) {
	v.SetEnvPrefix("DAILY")
	v.AutomaticEnv()

	// Secret bindings keep their established upstream names too, so the
	// keys used by the hosted deployment keep working unchanged.
	_ = v.BindEnv("weather_api_key", "DAILY_WEATHER_API_KEY", "WEATHER_API_KEY")
	_ = v.BindEnv("maps_api_key", "DAILY_MAPS_API_KEY", "GOOGLE_MAPS_API_KEY")
	_ = v.BindEnv("alpha_vantage_key", "DAILY_ALPHA_VANTAGE_KEY", "ALPHA_VANTAGE_API_KEY")
}

// MarshalJSON masks sensitive fields so a dumped config is safe to log.
func (c *Config) MarshalJSON() ([]byte, error) {
	type alias Config // avoid recursion
	masked := alias(*c)
	masked.WeatherAPIKey = maskSecret(c.WeatherAPIKey)
	masked.MapsAPIKey = maskSecret(c.MapsAPIKey)
	masked.AlphaVantageKey = maskSecret(c.AlphaVantageKey)
	return json.Marshal(masked)
}

// maskSecret replaces a non-empty secret with a fixed marker.
// Length is deliberately not preserved.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
