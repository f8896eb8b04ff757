package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denisok6893-rgb/renovation-advisor/internal/recommend"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, recommend.DefaultLimits(), cfg.Recommend)
	assert.Equal(t, 10*time.Second, Duration(cfg.Server.ShutdownTimeout))
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
[server]
address = ":9090"

[property_data]
base_url = "https://records.example.test"

[cache]
backend = "redis"
redis_addr = "cache:6379"
ttl = "1h"

[recommend]
default_count = 6
min_count = 4
max_count = 10
max_cumulative_impact = 30.0
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "https://records.example.test", cfg.PropertyData.BaseURL)
	assert.Equal(t, "/property/lookup", cfg.PropertyData.LookupPath, "unset keys keep defaults")
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, time.Hour, Duration(cfg.Cache.TTL))
	assert.Equal(t, recommend.Limits{DefaultCount: 6, MinCount: 4, MaxCount: 10, MaxCumulativeImpact: 30}, cfg.Recommend)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "[server]\naddress = \":9090\"\n")
	t.Setenv("RENO_SERVER_ADDRESS", ":7070")
	t.Setenv("RENO_REDIS_DB", "3")
	t.Setenv("RENO_RATE_LIMIT_ENABLED", "false")
	t.Setenv("RENO_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, 3, cfg.Cache.RedisDB)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_NormalizesEnumeratedSettings(t *testing.T) {
	path := writeFile(t, `
[cache]
backend = " Redis "
redis_addr = "cache:6379"

[logging]
format = "Console"
level = "WARN"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_IgnoresMalformedEnvNumbers(t *testing.T) {
	t.Setenv("RENO_RATE_LIMIT_BURST", "lots")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_InvalidToml(t *testing.T) {
	_, err := Load(writeFile(t, "[server\naddress = "))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty address":      func(c *Config) { c.Server.Address = "" },
		"bad duration":       func(c *Config) { c.Server.ReadTimeout = "soon" },
		"bad log format":     func(c *Config) { c.Logging.Format = "xml" },
		"unknown cache":      func(c *Config) { c.Cache.Backend = "memcached" },
		"redis without addr": func(c *Config) { c.Cache.Backend = "redis"; c.Cache.RedisAddr = "" },
		"zero burst":         func(c *Config) { c.RateLimit.Burst = 0 },
		"bad limits":         func(c *Config) { c.Recommend.MinCount = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	require.NoError(t, DefaultConfig().Validate())
}
