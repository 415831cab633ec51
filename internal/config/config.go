// Package config loads the configuration of the command line tools: from a
// YAML file first, then from the environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config holds the configuration of docreplay.
type Config struct {
	// production or development
	Environment string `yaml:"environment" validate:"oneof=production development"`
	// debug, info, warn or error
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// The number of changes kept in the undo history, 0 for no limit.
	HistoryLimit int `yaml:"history_limit" validate:"min=0"`
	// The format of the seed and of the change log.
	Format string `yaml:"format" validate:"oneof=json cbor"`

	SeedPath    string `yaml:"seed" validate:"required"`
	ChangesPath string `yaml:"changes"`
	// The id of the container to export.
	Container string `yaml:"container" validate:"required"`
	// The format of the export.
	Export string `yaml:"export" validate:"oneof=html markdown notion json"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Environment: "development",
		LogLevel:    "info",
		Format:      "json",
		Container:   "body",
		Export:      "html",
	}
}

// Load reads the configuration from the YAML file at path, if path is not
// empty, then applies the environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	cfg.loadEnvironmentVariables()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadEnvironmentVariables() {
	c.Environment = getEnv("DOC_ENVIRONMENT", c.Environment)
	c.LogLevel = strings.ToLower(getEnv("DOC_LOG_LEVEL", c.LogLevel))
	c.HistoryLimit = getEnvInt("DOC_HISTORY_LIMIT", c.HistoryLimit)
	c.Format = getEnv("DOC_FORMAT", c.Format)
	c.SeedPath = getEnv("DOC_SEED", c.SeedPath)
	c.ChangesPath = getEnv("DOC_CHANGES", c.ChangesPath)
	c.Container = getEnv("DOC_CONTAINER", c.Container)
	c.Export = getEnv("DOC_EXPORT", c.Export)
}

// Validate checks the values of the configuration.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, e.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
