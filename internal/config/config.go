package config

import (
	"os"
	"strconv"
	"time"

	"tradestats/domain/comparison"
	"tradestats/internal"
	"tradestats/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig
	Database DatabaseConfig
	Server   ServerConfig
	Plot     PlotConfig
	LogLevel internal.LogLevel
}

// AnalysisConfig holds comparison defaults
type AnalysisConfig struct {
	Alpha            float64
	DefaultTest      comparison.TestKind
	BatchConcurrency int
}

// DatabaseConfig holds the SQL sample source settings. URL may be empty when
// samples come from files or request bodies.
type DatabaseConfig struct {
	URL    string
	Driver string
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PlotConfig holds default plot dimensions
type PlotConfig struct {
	Width  int
	Height int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	analysisConfig, err := loadAnalysisConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}
	config.Analysis = *analysisConfig

	config.Database = *loadDatabaseConfig()
	config.Server = *loadServerConfig()
	config.Plot = *loadPlotConfig()

	level, ok := internal.ParseLogLevel(getEnvOrDefault("LOG_LEVEL", "INFO"))
	if !ok {
		return nil, errors.ConfigInvalid("LOG_LEVEL must be one of ERROR, WARN, INFO, DEBUG, TRACE")
	}
	config.LogLevel = level

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadAnalysisConfig() (*AnalysisConfig, error) {
	alpha, err := getEnvFloat("ALPHA", 0.05)
	if err != nil {
		return nil, err
	}

	kind, err := comparison.ParseTestKind(getEnvOrDefault("DEFAULT_TEST", string(comparison.TestParametric)))
	if err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}

	concurrency, err := getEnvInt("BATCH_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}

	return &AnalysisConfig{
		Alpha:            alpha,
		DefaultTest:      kind,
		BatchConcurrency: concurrency,
	}, nil
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:    getEnvOrDefault("DATABASE_URL", ""),
		Driver: getEnvOrDefault("DB_DRIVER", "postgres"),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:         getEnvOrDefault("PORT", "8080"),
		ReadTimeout:  getEnvDurationOrDefault("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvDurationOrDefault("WRITE_TIMEOUT", 30*time.Second),
	}
}

func loadPlotConfig() *PlotConfig {
	return &PlotConfig{
		Width:  getEnvIntOrDefault("PLOT_WIDTH", 900),
		Height: getEnvIntOrDefault("PLOT_HEIGHT", 600),
	}
}

func validateConfig(config *Config) error {
	if !(config.Analysis.Alpha > 0 && config.Analysis.Alpha < 1) {
		return errors.ConfigInvalid("ALPHA must be in (0,1)")
	}
	if config.Analysis.BatchConcurrency < 1 {
		return errors.ConfigInvalid("BATCH_CONCURRENCY must be at least 1")
	}
	switch config.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.ConfigInvalid("DB_DRIVER must be postgres or sqlite")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Plot.Width <= 0 || config.Plot.Height <= 0 {
		return errors.ConfigInvalid("PLOT_WIDTH and PLOT_HEIGHT must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvInt is strict: a malformed value is a configuration error.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer")
	}
	return intValue, nil
}

// getEnvFloat is strict: a malformed value is a configuration error.
func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be a number")
	}
	return floatValue, nil
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
