// Package config loads the gradebook settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/alem-hub/gradebook/internal/domain/student"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/redis"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	// Application
	App AppConfig

	// Grading rules
	Grading GradingConfig

	// Roster storage
	Storage StorageConfig

	// Backends
	Postgres PostgresConfig
	Redis    RedisConfig
	Mongo    MongoConfig

	// Logging
	Observability ObservabilityConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string      `env:"APP_NAME" envDefault:"gradebook"`
	Environment Environment `env:"APP_ENV" envDefault:"development"`
}

// GradingConfig selects how averages are labelled.
type GradingConfig struct {
	LabelPolicy string `env:"GRADEBOOK_LABEL_POLICY" envDefault:"tiered"`
}

// StorageConfig selects the roster backend.
type StorageConfig struct {
	Driver   string        `env:"GRADEBOOK_STORE_DRIVER" envDefault:"json"`
	DataFile string        `env:"GRADEBOOK_DATA_FILE"` // empty: per-driver default
	Timeout  time.Duration `env:"GRADEBOOK_STORE_TIMEOUT" envDefault:"30s"`
}

// PostgresConfig holds the PostgreSQL connection settings.
type PostgresConfig struct {
	URL string `env:"DATABASE_URL"`
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	URL       string `env:"REDIS_URL"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX"`
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	URL      string `env:"MONGODB_URL"`
	Database string `env:"MONGODB_DATABASE" envDefault:"gradebook"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"warn"`  // debug, info, warn, error
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // json, text
}

// Load reads an optional .env file and then the process environment.
// A missing envFile is ignored; values already set in the environment win.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	switch c.App.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		errs = append(errs, fmt.Sprintf("APP_ENV must be development or production, got %q", c.App.Environment))
	}

	if _, err := student.ParseLabelPolicy(c.Grading.LabelPolicy); err != nil {
		errs = append(errs, "GRADEBOOK_LABEL_POLICY must be tiered or pass_fail")
	}

	if _, err := persistence.ParseDriver(c.Storage.Driver); err != nil {
		errs = append(errs, fmt.Sprintf("GRADEBOOK_STORE_DRIVER %q is not supported", c.Storage.Driver))
	}

	if c.Storage.Timeout < 0 {
		errs = append(errs, "GRADEBOOK_STORE_TIMEOUT cannot be negative")
	}

	switch strings.ToLower(c.Observability.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "LOG_LEVEL must be one of debug, info, warn, error")
	}

	switch strings.ToLower(c.Observability.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, "LOG_FORMAT must be json or text")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// Policy returns the configured label policy, tiered when unparseable.
func (c *Config) Policy() student.LabelPolicy {
	p, err := student.ParseLabelPolicy(c.Grading.LabelPolicy)
	if err != nil {
		return student.PolicyTiered
	}
	return p
}

// DataFile returns the configured data file, or the selected driver's own
// default so that a roster written by one driver is never read or
// overwritten by another.
func (c *Config) DataFile() string {
	if path := strings.TrimSpace(c.Storage.DataFile); path != "" {
		return path
	}
	driver, err := persistence.ParseDriver(c.Storage.Driver)
	if err != nil {
		return ""
	}
	return persistence.DefaultDataFile(driver)
}

// StoreOptions maps the storage and backend sections onto persistence.Options.
func (c *Config) StoreOptions() persistence.Options {
	driver, err := persistence.ParseDriver(c.Storage.Driver)
	if err != nil {
		driver = persistence.Driver(c.Storage.Driver)
	}

	redisCfg := redis.DefaultConfig()
	redisCfg.URL = c.Redis.URL
	redisCfg.KeyPrefix = c.Redis.KeyPrefix

	return persistence.Options{
		Driver:        driver,
		DataFile:      c.DataFile(),
		DatabaseURL:   c.Postgres.URL,
		Redis:         redisCfg,
		MongoURL:      c.Mongo.URL,
		MongoDatabase: c.Mongo.Database,
		Timeout:       c.Storage.Timeout,
	}
}
