// Package config loads application configuration from a YAML file with
// environment-variable overrides. Environment variables use the pattern
// FESTATLAS_SECTION_KEY and take precedence over file values.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Redis    RedisConfig    `yaml:"redis"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Sources  SourcesConfig  `yaml:"sources"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig for HTTP server settings.
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RefreshSecret   string        `yaml:"refresh_secret"`
}

// StoreConfig selects where the published dataset lives.
type StoreConfig struct {
	// Backend is one of "memory", "sqlite", "redis".
	Backend string `yaml:"backend"`
	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`
}

// RedisConfig for the redis dataset store.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// PipelineConfig controls the refresh run.
type PipelineConfig struct {
	FetchTimeout       time.Duration `yaml:"fetch_timeout"`
	MaxConcurrentFetch int           `yaml:"max_concurrent_fetch"`
}

// SourcesConfig holds per-source settings.
type SourcesConfig struct {
	Ticketmaster    TicketmasterConfig    `yaml:"ticketmaster"`
	Culture         CultureConfig         `yaml:"culture"`
	Wizard          WizardConfig          `yaml:"wizard"`
	ResidentAdvisor ResidentAdvisorConfig `yaml:"resident_advisor"`
	Manual          ManualConfig          `yaml:"manual"`
}

// TicketmasterConfig for the Ticketmaster Discovery API.
type TicketmasterConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
}

// CultureConfig for the data.culture.gouv.fr open-data portal.
type CultureConfig struct {
	Enabled bool `yaml:"enabled"`
}

// WizardConfig for the Music Festival Wizard listing scraper.
type WizardConfig struct {
	Enabled      bool          `yaml:"enabled"`
	UserAgent    string        `yaml:"user_agent"`
	RequestDelay time.Duration `yaml:"request_delay"`
}

// ResidentAdvisorConfig controls the Resident Advisor JSON-LD scraper.
type ResidentAdvisorConfig struct {
	Enabled      bool          `yaml:"enabled"`
	UserAgent    string        `yaml:"user_agent"`
	RequestDelay time.Duration `yaml:"request_delay"`
}

// ManualConfig for the curated festival list.
type ManualConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads configuration from a YAML file (if present) and applies
// defaults and environment overrides.
func Load(configPath string) (*Config, error) {
	config := &Config{}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyDefaults(config)
	applyEnvOverrides(config)

	return config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = 30 * time.Second
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = 30 * time.Second
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = 10 * time.Second
	}
	if config.Store.Backend == "" {
		config.Store.Backend = "sqlite"
	}
	if config.Store.SQLitePath == "" {
		config.Store.SQLitePath = "./festival-atlas.db"
	}
	if config.Redis.Addr == "" {
		config.Redis.Addr = "localhost:6379"
	}
	if config.Redis.TTL == 0 {
		config.Redis.TTL = 24 * time.Hour
	}
	if config.Pipeline.FetchTimeout == 0 {
		config.Pipeline.FetchTimeout = 2 * time.Minute
	}
	if config.Pipeline.MaxConcurrentFetch == 0 {
		config.Pipeline.MaxConcurrentFetch = 4
	}
	if config.Sources.Wizard.UserAgent == "" {
		config.Sources.Wizard.UserAgent = "FestivalAtlas/1.0 (festival-aggregator)"
	}
	if config.Sources.Wizard.RequestDelay == 0 {
		config.Sources.Wizard.RequestDelay = 1500 * time.Millisecond
	}
	if config.Sources.ResidentAdvisor.UserAgent == "" {
		config.Sources.ResidentAdvisor.UserAgent = "FestivalAtlas/1.0 (festival-aggregator)"
	}
	if config.Sources.ResidentAdvisor.RequestDelay == 0 {
		config.Sources.ResidentAdvisor.RequestDelay = 2 * time.Second
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("FESTATLAS_SERVER_PORT"); v != "" {
		config.Server.Port = v
	}
	if v := os.Getenv("FESTATLAS_REFRESH_SECRET"); v != "" {
		config.Server.RefreshSecret = v
	}
	if v := os.Getenv("FESTATLAS_STORE_BACKEND"); v != "" {
		config.Store.Backend = v
	}
	if v := os.Getenv("FESTATLAS_STORE_SQLITE_PATH"); v != "" {
		config.Store.SQLitePath = v
	}
	if v := os.Getenv("FESTATLAS_REDIS_ADDR"); v != "" {
		config.Redis.Addr = v
	}
	if v := os.Getenv("FESTATLAS_REDIS_PASSWORD"); v != "" {
		config.Redis.Password = v
	}
	if v := os.Getenv("FESTATLAS_TICKETMASTER_API_KEY"); v != "" {
		config.Sources.Ticketmaster.APIKey = v
		config.Sources.Ticketmaster.Enabled = true
	}
	if v := os.Getenv("FESTATLAS_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("FESTATLAS_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}
}

// Validate checks that the configuration is runnable.
func (c *Config) Validate() error {
	var missing []string

	switch c.Store.Backend {
	case "memory", "redis":
	case "sqlite":
		if c.Store.SQLitePath == "" {
			missing = append(missing, "store.sqlite_path")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if c.Sources.Ticketmaster.Enabled && c.Sources.Ticketmaster.APIKey == "" {
		missing = append(missing, "sources.ticketmaster.api_key")
	}

	if !c.Sources.Ticketmaster.Enabled &&
		!c.Sources.Culture.Enabled &&
		!c.Sources.Wizard.Enabled &&
		!c.Sources.ResidentAdvisor.Enabled &&
		!c.Sources.Manual.Enabled {
		missing = append(missing, "at least one enabled source")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}
