// Package config provides configuration management for the Preference Engine application.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Estimator EstimatorConfig `mapstructure:"estimator" validate:"required"`
	Ingestion IngestionConfig `mapstructure:"ingestion" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// EstimatorConfig represents the maximum-likelihood estimator configuration
type EstimatorConfig struct {
	MuBound                  float64 `mapstructure:"mu_bound" validate:"required,gt=0"`
	LogSigmaMin              float64 `mapstructure:"log_sigma_min" validate:"required"`
	LogSigmaMax              float64 `mapstructure:"log_sigma_max" validate:"required"`
	MaxIterations            int     `mapstructure:"max_iterations" validate:"required,gt=0"`
	GradientTolerance        float64 `mapstructure:"gradient_tolerance" validate:"required,gt=0"`
	ParameterCacheTTLSeconds int     `mapstructure:"parameter_cache_ttl_seconds" validate:"required,gt=0"`
}

// IngestionConfig represents comparison data ingestion configuration
type IngestionConfig struct {
	Sources  []DataSourceConfig `mapstructure:"sources" validate:"required,min=1"`
	Schedule ScheduleConfig     `mapstructure:"schedule" validate:"required"`
}

// DataSourceConfig represents a single comparison source configuration
type DataSourceConfig struct {
	Name      string `mapstructure:"name" validate:"required"`
	Type      string `mapstructure:"type" validate:"required,oneof=csv http"`
	Dataset   string `mapstructure:"dataset" validate:"required"`
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url" validate:"omitempty,url"`
	APIKey    string `mapstructure:"api_key"`
	BatchSize int    `mapstructure:"batch_size" validate:"omitempty,gt=0"`
}

// ScheduleConfig represents periodic refit and ingestion scheduling
type ScheduleConfig struct {
	RefitCron             string `mapstructure:"refit_cron" validate:"required"`
	IngestIntervalMinutes int    `mapstructure:"ingest_interval_minutes" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents the health check server configuration
type HealthConfig struct {
	Port string `mapstructure:"port"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
