// Package config handles configuration loading for btctracker.
// It layers defaults, an optional YAML config file and environment
// variable overrides (prefix BTCTRACKER_, dots become underscores:
// BTCTRACKER_API_TIMEOUT_SEC, BTCTRACKER_CACHE_TTL_SEC, ...).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	API    APIConfig    `mapstructure:"api"    yaml:"api"`
	Cache  CacheConfig  `mapstructure:"cache"  yaml:"cache"`
	Retry  RetryConfig  `mapstructure:"retry"  yaml:"retry"`
	Watch  WatchConfig  `mapstructure:"watch"  yaml:"watch"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

// APIConfig holds the upstream CoinGecko settings.
type APIConfig struct {
	BaseURL    string `mapstructure:"base_url"    yaml:"base_url"`
	Key        string `mapstructure:"key"         yaml:"key"` // optional, x-cg-pro-api-key
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	UserAgent  string `mapstructure:"user_agent"  yaml:"user_agent"`
}

// CacheConfig holds the quote cache settings.
type CacheConfig struct {
	TTLSec int `mapstructure:"ttl_sec" yaml:"ttl_sec"`
}

// RetryConfig holds the force-refresh retry settings.
type RetryConfig struct {
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`
	DelaySec    int `mapstructure:"delay_sec"    yaml:"delay_sec"`
}

// WatchConfig holds the auto-refresh loop settings.
type WatchConfig struct {
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`
}

// ServerConfig holds the serve-mode HTTP settings.
type ServerConfig struct {
	Listen string `mapstructure:"listen" yaml:"listen"`
}

func (a APIConfig) Timeout() time.Duration    { return time.Duration(a.TimeoutSec) * time.Second }
func (c CacheConfig) TTL() time.Duration      { return time.Duration(c.TTLSec) * time.Second }
func (r RetryConfig) Delay() time.Duration    { return time.Duration(r.DelaySec) * time.Second }
func (w WatchConfig) Interval() time.Duration { return time.Duration(w.IntervalSec) * time.Second }

// Load reads configuration from defaults, an optional config file and the
// environment. path may be empty; then ./config.yaml is used when present.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BTCTRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://api.coingecko.com/api/v3/simple/price")
	v.SetDefault("api.key", "")
	v.SetDefault("api.timeout_sec", 10)
	v.SetDefault("api.user_agent", "btc-tracker/1.0")

	v.SetDefault("cache.ttl_sec", 30)

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.delay_sec", 2)

	v.SetDefault("watch.interval_sec", 30)

	v.SetDefault("server.listen", ":8080")
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url cannot be empty")
	}
	if c.API.TimeoutSec <= 0 {
		return fmt.Errorf("api.timeout_sec must be positive, got %d", c.API.TimeoutSec)
	}
	if c.Cache.TTLSec < 0 {
		return fmt.Errorf("cache.ttl_sec cannot be negative, got %d", c.Cache.TTLSec)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry.max_attempts must be positive, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.DelaySec < 0 {
		return fmt.Errorf("retry.delay_sec cannot be negative, got %d", c.Retry.DelaySec)
	}
	return nil
}
