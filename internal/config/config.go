// Package config loads and validates application configuration from
// config files, environment variables and defaults via Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/foerderdata/fundwatch/internal/logger"
)

// Default crawler settings, production safe.
const (
	DefaultParallelism    = 2
	DefaultRateLimit      = 2 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxListPages   = 0 // 0 means no limit
	DefaultUserAgent      = "fundwatch/1.0 (+https://github.com/foerderdata/fundwatch)"
)

// Default server settings.
const (
	DefaultServerAddress = ":8080"
	DefaultReadTimeout   = 15 * time.Second
	DefaultWriteTimeout  = 15 * time.Second
)

// Config is the root application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logger   logger.Config  `mapstructure:"logger"`
	Database DatabaseConfig `mapstructure:"database"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	Server   ServerConfig   `mapstructure:"server"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// CrawlerConfig holds crawl settings for the funding database source.
type CrawlerConfig struct {
	// BaseURL is the search results page the crawl starts from.
	BaseURL string `mapstructure:"base_url"`
	// AllowedDomain restricts the collector to the source host.
	AllowedDomain string `mapstructure:"allowed_domain"`
	// Parallelism is the number of concurrent detail-page fetches.
	Parallelism int `mapstructure:"parallelism"`
	// RateLimit is the politeness delay between requests to the source.
	RateLimit time.Duration `mapstructure:"rate_limit"`
	// RequestTimeout bounds a single HTTP request.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// MaxListPages caps the number of result pages followed (0 = all).
	MaxListPages int `mapstructure:"max_list_pages"`
	// UserAgent is sent with every request.
	UserAgent string `mapstructure:"user_agent"`
}

// ServerConfig holds HTTP API server settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Load unmarshals the configuration from Viper's merged state.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that have no usable zero value.
func (c *Config) Validate() error {
	if c.Crawler.BaseURL == "" {
		return fmt.Errorf("crawler.base_url is required")
	}
	if c.Crawler.Parallelism < 1 {
		return fmt.Errorf("crawler.parallelism must be at least 1, got %d", c.Crawler.Parallelism)
	}
	if c.Crawler.RateLimit < 0 {
		return fmt.Errorf("crawler.rate_limit must not be negative")
	}
	return nil
}

// SetDefaults registers default configuration values with Viper.
// Called before reading the config file so file and env values win.
func SetDefaults() {
	viper.SetDefault("app", map[string]any{
		"name":        "fundwatch",
		"environment": "production",
		"debug":       false,
	})

	viper.SetDefault("logger", map[string]any{
		"level":        "info",
		"development":  false,
		"encoding":     "json",
		"output_paths": []string{"stdout"},
	})

	viper.SetDefault("database", map[string]any{
		"host":    "127.0.0.1",
		"port":    "5432",
		"user":    "fundwatch",
		"dbname":  "fundwatch",
		"sslmode": "disable",
	})

	viper.SetDefault("crawler", map[string]any{
		"base_url":        "https://www.foerderdatenbank.de/SiteGlobals/FDB/Forms/Suche/Foederprogrammsuche_Formular.html?filterCategories=FundingProgram",
		"allowed_domain":  "www.foerderdatenbank.de",
		"parallelism":     DefaultParallelism,
		"rate_limit":      DefaultRateLimit,
		"request_timeout": DefaultRequestTimeout,
		"max_list_pages":  DefaultMaxListPages,
		"user_agent":      DefaultUserAgent,
	})

	viper.SetDefault("server", map[string]any{
		"address":       DefaultServerAddress,
		"read_timeout":  DefaultReadTimeout,
		"write_timeout": DefaultWriteTimeout,
	})
}

// BindEnvVars maps environment variables to config keys.
func BindEnvVars() error {
	bindings := map[string][]string{
		"app.environment":   {"APP_ENV"},
		"app.debug":         {"APP_DEBUG"},
		"logger.level":      {"LOG_LEVEL"},
		"logger.encoding":   {"LOG_FORMAT"},
		"database.host":     {"DATABASE_HOST"},
		"database.port":     {"DATABASE_PORT"},
		"database.user":     {"DATABASE_USER"},
		"database.password": {"DATABASE_PASSWORD"},
		"database.dbname":   {"DATABASE_NAME"},
		"database.sslmode":  {"DATABASE_SSLMODE"},
		"crawler.base_url":  {"CRAWLER_BASE_URL"},
	}

	for key, envs := range bindings {
		if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	return nil
}
