package config

import (
	"fmt"

	pkgconfig "github.com/utafrali/CatalogueGo/pkg/config"
	"github.com/utafrali/CatalogueGo/pkg/database"
)

// Config holds all configuration for the catalogue service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"CATALOGUE_HTTP_PORT" envDefault:"8020"`

	// PostgreSQL
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"catalogue"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"catalogue_secret"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"catalogue"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Elasticsearch
	ElasticsearchURL   string `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200"`
	ElasticsearchIndex string `env:"ELASTICSEARCH_INDEX" envDefault:"catalogue_products"`

	// Search engine selection (elasticsearch or memory)
	SearchEngine string `env:"SEARCH_ENGINE" envDefault:"elasticsearch"`

	// Redis (index checkpoint storage)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Pricing
	// PriceBucketBreakpoints are the band boundaries for the price_range
	// facet, e.g. "0,20,40,60".
	PriceBucketBreakpoints []float64 `env:"PRICE_BUCKET_BREAKPOINTS" envDefault:"0,20,40,60" envSeparator:","`

	// TaxRate is the flat fractional tax rate applied to stock record prices.
	// Negative means tax-unknown: documents carry tax-exclusive prices.
	TaxRate float64 `env:"TAX_RATE" envDefault:"-1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalogue config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.SearchEngine != "elasticsearch" && c.SearchEngine != "memory" {
		return fmt.Errorf("invalid search engine: %q", c.SearchEngine)
	}
	return nil
}

// PostgresConfig returns the PostgreSQL pool configuration.
func (c *Config) PostgresConfig() *database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPassword
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSLMode
	return &pg
}

// RedisConfig returns the Redis client configuration.
func (c *Config) RedisConfig() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// TaxRatePtr returns the configured tax rate, or nil when tax is unknown.
func (c *Config) TaxRatePtr() *float64 {
	if c.TaxRate < 0 {
		return nil
	}
	rate := c.TaxRate
	return &rate
}
