package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foerderdata/fundwatch/internal/config"
)

// Viper state is process global, so these tests reset it and stay serial.

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoad_Defaults(t *testing.T) {
	resetViper(t)
	config.SetDefaults()

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "fundwatch", cfg.App.Name)
	assert.Equal(t, "production", cfg.App.Environment)
	assert.False(t, cfg.App.Debug)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Encoding)

	assert.Equal(t, "www.foerderdatenbank.de", cfg.Crawler.AllowedDomain)
	assert.Contains(t, cfg.Crawler.BaseURL, "foerderdatenbank.de")
	assert.Equal(t, config.DefaultParallelism, cfg.Crawler.Parallelism)
	assert.Equal(t, config.DefaultRateLimit, cfg.Crawler.RateLimit)
	assert.Equal(t, 0, cfg.Crawler.MaxListPages)

	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, config.DefaultServerAddress, cfg.Server.Address)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	resetViper(t)
	config.SetDefaults()

	viper.Set("crawler.parallelism", 4)
	viper.Set("crawler.rate_limit", "500ms")
	viper.Set("server.address", ":9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Crawler.Parallelism)
	assert.Equal(t, 500*time.Millisecond, cfg.Crawler.RateLimit)
	assert.Equal(t, ":9090", cfg.Server.Address)
}

func TestLoad_EnvBinding(t *testing.T) {
	resetViper(t)
	config.SetDefaults()
	require.NoError(t, config.BindEnvVars())

	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("CRAWLER_BASE_URL", "https://example.org/suche")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "https://example.org/suche", cfg.Crawler.BaseURL)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Crawler: config.CrawlerConfig{
				BaseURL:     "https://example.org/suche",
				Parallelism: 1,
			},
		}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Crawler.BaseURL = ""
	assert.ErrorContains(t, cfg.Validate(), "base_url")

	cfg = valid()
	cfg.Crawler.Parallelism = 0
	assert.ErrorContains(t, cfg.Validate(), "parallelism")

	cfg = valid()
	cfg.Crawler.RateLimit = -time.Second
	assert.ErrorContains(t, cfg.Validate(), "rate_limit")
}
