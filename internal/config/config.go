package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"billing/internal/logger"
	"billing/internal/period"
	"billing/pkg/models"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Snapshot database and business settings
	DBPath       string
	SettingsPath string

	// Document output
	OutputDir     string
	RenderWorkers int
	Timeout       time.Duration

	// Reporting
	ReportGranularity string
	Timezone          string

	// Google Sheets Configuration
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		DBPath:               getEnv("BILLING_DB_PATH", "billing.db"),
		SettingsPath:         getEnv("BILLING_SETTINGS_PATH", "settings.yaml"),
		OutputDir:            getEnv("BILLING_OUTPUT_DIR", "documents"),
		RenderWorkers:        getEnvInt("RENDER_WORKERS", 4),
		Timeout:              getEnvDuration("BILLING_TIMEOUT", 5*time.Minute),
		ReportGranularity:    getEnv("REPORT_GRANULARITY", string(period.Month)),
		Timezone:             getEnv("BILLING_TIMEZONE", "UTC"),
		GoogleSheetURL:       getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet: getEnv("GOOGLE_SHEET_WORKSHEET", "Steuerbericht"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:        getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:            getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	var problems []string
	if c.DBPath == "" {
		problems = append(problems, "BILLING_DB_PATH is required")
	}
	if c.OutputDir == "" {
		problems = append(problems, "BILLING_OUTPUT_DIR is required")
	}
	if c.RenderWorkers < 1 {
		problems = append(problems, "RENDER_WORKERS must be at least 1")
	}
	if c.Timeout <= 0 {
		problems = append(problems, "BILLING_TIMEOUT must be positive")
	}
	if _, err := period.ParseGranularity(c.ReportGranularity); err != nil {
		problems = append(problems, fmt.Sprintf("REPORT_GRANULARITY %q is not one of week, month, quarter, year", c.ReportGranularity))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("BILLING_TIMEZONE %q is not a known time zone", c.Timezone))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// Granularity returns the default report granularity.
func (c *Config) Granularity() period.Granularity {
	g, err := period.ParseGranularity(c.ReportGranularity)
	if err != nil {
		return period.Month
	}
	return g
}

// Location returns the time zone that report periods are cut in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadSettings reads the business settings from a flat YAML mapping.
// A missing file yields empty settings; a malformed file or an unparseable
// vat_rate or payment_term_days is an error.
func LoadSettings(path string) (models.Settings, error) {
	const op = "LoadSettings"

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return models.Settings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read settings file: %w", op, err)
	}

	settings := models.Settings{}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("%s: parse settings file %s: %w", op, path, err)
	}
	if _, err := settings.VATRate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := settings.PaymentTermDays(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return settings, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
