package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultCommandPrefix = "!"
	defaultHealthAddr    = ":8080"
	defaultServiceName   = "discord-paginator"
	defaultCatalogPath   = "catalog.yaml"
	defaultTimeoutMS     = 300000
	maxTimeoutMS         = 900000
)

// Config struct to hold the configuration settings
type Config struct {
	Discord   DiscordConfig   `yaml:"discord"`
	Paginator PaginatorConfig `yaml:"paginator"`
	Service   ServiceConfig   `yaml:"service"`
	Health    HealthConfig    `yaml:"health"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Log       LogConfig       `yaml:"log"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

// DiscordConfig holds Discord configuration.
type DiscordConfig struct {
	Token         string `yaml:"token"`
	CommandPrefix string `yaml:"command_prefix"`
}

// PaginatorConfig holds the defaults applied to every paginator session.
type PaginatorConfig struct {
	TimeoutMS       int   `yaml:"timeout_ms"`
	Cycling         *bool `yaml:"cycling"`
	ShowPageNumbers *bool `yaml:"show_page_numbers"`
}

// Timeout returns the configured inactivity timeout.
func (p PaginatorConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutMS) * time.Millisecond
}

// CyclingEnabled reports whether navigation wraps around. Defaults to false.
func (p PaginatorConfig) CyclingEnabled() bool {
	return p.Cycling != nil && *p.Cycling
}

// PageNumbersEnabled reports whether the page counter is shown. Defaults to true.
func (p PaginatorConfig) PageNumbersEnabled() bool {
	return p.ShowPageNumbers == nil || *p.ShowPageNumbers
}

// ServiceConfig holds general service configuration
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// HealthConfig holds the health/metrics HTTP server configuration.
type HealthConfig struct {
	Addr string `yaml:"addr"`
}

// TracingConfig holds OTLP trace export configuration. Tracing is off when
// Endpoint is empty.
type TracingConfig struct {
	Endpoint   string  `yaml:"endpoint"`
	Insecure   bool    `yaml:"insecure"`
	SampleRate float64 `yaml:"sample_rate"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" (colored console) or "json"
	File   string `yaml:"file"`
}

// CatalogConfig points at the YAML file holding page collections.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// LoadConfig loads the configuration from a YAML file, then fills anything
// missing from the environment (and a .env file if present).
func LoadConfig(filename string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Environment only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := loadConfigFromEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
// Only values not already set are read.
func loadConfigFromEnv(cfg *Config) error {
	if cfg.Discord.Token == "" {
		cfg.Discord.Token = os.Getenv("DISCORD_TOKEN")
	}
	if cfg.Discord.CommandPrefix == "" {
		cfg.Discord.CommandPrefix = os.Getenv("DISCORD_COMMAND_PREFIX")
	}
	if cfg.Service.Name == "" {
		cfg.Service.Name = os.Getenv("SERVICE_NAME")
	}
	if cfg.Service.Version == "" {
		cfg.Service.Version = os.Getenv("SERVICE_VERSION")
	}
	if cfg.Health.Addr == "" {
		cfg.Health.Addr = os.Getenv("HEALTH_ADDR")
	}
	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = os.Getenv("LOG_LEVEL")
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = os.Getenv("LOG_FORMAT")
	}
	if cfg.Log.File == "" {
		cfg.Log.File = os.Getenv("LOG_FILE")
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = os.Getenv("CATALOG_PATH")
	}

	if cfg.Paginator.TimeoutMS == 0 {
		if v := os.Getenv("PAGINATOR_TIMEOUT_MS"); v != "" {
			ms, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid PAGINATOR_TIMEOUT_MS %q: %w", v, err)
			}
			cfg.Paginator.TimeoutMS = ms
		}
	}
	if cfg.Paginator.Cycling == nil {
		b, err := envBool("PAGINATOR_CYCLING")
		if err != nil {
			return err
		}
		cfg.Paginator.Cycling = b
	}
	if cfg.Paginator.ShowPageNumbers == nil {
		b, err := envBool("PAGINATOR_SHOW_PAGE_NUMBERS")
		if err != nil {
			return err
		}
		cfg.Paginator.ShowPageNumbers = b
	}
	if cfg.Tracing.SampleRate == 0 {
		if v := os.Getenv("OTEL_SAMPLE_RATE"); v != "" {
			rate, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid OTEL_SAMPLE_RATE %q: %w", v, err)
			}
			cfg.Tracing.SampleRate = rate
		}
	}
	return nil
}

func envBool(key string) (*bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return &b, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Discord.CommandPrefix == "" {
		cfg.Discord.CommandPrefix = defaultCommandPrefix
	}
	if cfg.Service.Name == "" {
		cfg.Service.Name = defaultServiceName
	}
	if cfg.Service.Version == "" {
		cfg.Service.Version = "dev"
	}
	if cfg.Health.Addr == "" {
		cfg.Health.Addr = defaultHealthAddr
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = defaultCatalogPath
	}
	if cfg.Paginator.TimeoutMS == 0 {
		cfg.Paginator.TimeoutMS = defaultTimeoutMS
	}
	if cfg.Tracing.SampleRate == 0 {
		cfg.Tracing.SampleRate = 1
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN environment variable not set")
	}
	if c.Paginator.TimeoutMS <= 0 || c.Paginator.TimeoutMS > maxTimeoutMS {
		return fmt.Errorf("paginator timeout_ms must be between 1 and %d, got %d", maxTimeoutMS, c.Paginator.TimeoutMS)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing sample_rate must be between 0 and 1, got %v", c.Tracing.SampleRate)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be \"text\" or \"json\", got %q", c.Log.Format)
	}
	return nil
}
