// Package config loads service configuration: defaults, then an optional
// TOML file, then RENO_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/denisok6893-rgb/renovation-advisor/internal/recommend"
)

const envPrefix = "RENO_"

type Config struct {
	Server       ServerConfig       `toml:"server"`
	Storage      StorageConfig      `toml:"storage"`
	Logging      LoggingConfig      `toml:"logging"`
	PropertyData PropertyDataConfig `toml:"property_data"`
	Cache        CacheConfig        `toml:"cache"`
	RateLimit    RateLimitConfig    `toml:"rate_limit"`
	Recommend    recommend.Limits   `toml:"recommend"`
}

type ServerConfig struct {
	Address         string `toml:"address"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json or console
}

// PropertyDataConfig describes a generic property-data API. An empty
// BaseURL disables lookups and every lead is scored from defaults.
type PropertyDataConfig struct {
	BaseURL      string `toml:"base_url"`
	LookupPath   string `toml:"lookup_path"`
	APIKey       string `toml:"api_key"`
	APIKeyHeader string `toml:"api_key_header"`
	Timeout      string `toml:"timeout"`
	RetryCount   int    `toml:"retry_count"`
}

type CacheConfig struct {
	Backend       string `toml:"backend"` // none, memory, redis
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	TTL           string `toml:"ttl"`
}

type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	IdleTimeout       string  `toml:"idle_timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     "10s",
			WriteTimeout:    "15s",
			ShutdownTimeout: "10s",
		},
		Storage: StorageConfig{SQLitePath: "data/leads.db"},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		PropertyData: PropertyDataConfig{
			LookupPath:   "/property/lookup",
			APIKeyHeader: "X-API-Key",
			Timeout:      "5s",
			RetryCount:   1,
		},
		Cache: CacheConfig{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
			TTL:       "24h",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 5,
			Burst:             10,
			IdleTimeout:       "10m",
		},
		Recommend: recommend.DefaultLimits(),
	}
}

// Load builds the configuration. An empty path skips the file layer.
// A missing file is reported as an error wrapping os.ErrNotExist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	// API_ADDRESS predates the prefixed variables and is still honoured.
	cfg.Server.Address = getEnv("API_ADDRESS", cfg.Server.Address)
	cfg.Server.Address = getEnv(envPrefix+"SERVER_ADDRESS", cfg.Server.Address)
	cfg.Storage.SQLitePath = getEnv(envPrefix+"SQLITE_PATH", cfg.Storage.SQLitePath)

	cfg.Logging.Level = getEnv(envPrefix+"LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv(envPrefix+"LOG_FORMAT", cfg.Logging.Format)

	cfg.PropertyData.BaseURL = getEnv(envPrefix+"PROPERTY_DATA_BASE_URL", cfg.PropertyData.BaseURL)
	cfg.PropertyData.LookupPath = getEnv(envPrefix+"PROPERTY_DATA_LOOKUP_PATH", cfg.PropertyData.LookupPath)
	cfg.PropertyData.APIKey = getEnv(envPrefix+"PROPERTY_DATA_API_KEY", cfg.PropertyData.APIKey)

	cfg.Cache.Backend = getEnv(envPrefix+"CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.RedisAddr = getEnv(envPrefix+"REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = getEnv(envPrefix+"REDIS_PASSWORD", cfg.Cache.RedisPassword)
	if v := os.Getenv(envPrefix + "REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.RedisDB = n
		}
	}

	if v := os.Getenv(envPrefix + "RATE_LIMIT_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RateLimit.Enabled = b
		}
	}
	if v := os.Getenv(envPrefix + "RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit.RequestsPerSecond = f
		}
	}
	if v := os.Getenv(envPrefix + "RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.Burst = n
		}
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// normalize lower-cases the enumerated settings so callers can compare
// them directly.
func (c *Config) normalize() {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Address) == "" {
		return fmt.Errorf("server.address is required")
	}
	if strings.TrimSpace(c.Storage.SQLitePath) == "" {
		return fmt.Errorf("storage.sqlite_path is required")
	}
	for name, v := range map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"property_data.timeout":   c.PropertyData.Timeout,
		"cache.ttl":               c.Cache.TTL,
		"rate_limit.idle_timeout": c.RateLimit.IdleTimeout,
	} {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			return fmt.Errorf("%s: invalid duration %q", name, v)
		}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Cache.Backend) {
	case "none", "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be none, memory or redis, got %q", c.Cache.Backend)
	}
	if c.PropertyData.RetryCount < 0 {
		return fmt.Errorf("property_data.retry_count must be >= 0")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit.requests_per_second and rate_limit.burst must be > 0")
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

// Duration parses a validated duration string.
func Duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
