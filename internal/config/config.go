package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // time zones resolve on hosts without a zoneinfo database

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Configuration validation constants
const (
	MinAPITimeout  = 1   // Minimum API timeout in seconds
	MaxAPITimeout  = 300 // Maximum API timeout in seconds
	MinDaysToQuery = 1   // Minimum days to query

	// Default values
	DefaultSource        = SourceConsumption
	DefaultResourceType  = "Microsoft.Compute/virtualMachines"
	DefaultTimezone      = "America/Sao_Paulo"
	DefaultCurrency      = "USD"
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "text"
	DefaultAPITimeout    = 30 // API timeout in seconds
	DefaultDaysToQuery   = 30
	DefaultEndDateOffset = 0
	DefaultDotEnvFile    = ".env"
)

// Usage data sources
const (
	SourceConsumption    = "consumption"
	SourceCostManagement = "costmanagement"
)

// ErrMissingSubscription is returned when no subscription ID is configured
var ErrMissingSubscription = errors.New("subscription_id is required (flag --subscription, AZURE_SUBSCRIPTION_ID or config file)")

// DateRange configures the relative date range used by --last-days
type DateRange struct {
	EndDateOffset *int `yaml:"end_date_offset" toml:"end_date_offset" json:"end_date_offset"` // Pointer to distinguish between 0 and unset
	DaysToQuery   int  `yaml:"days_to_query" toml:"days_to_query" json:"days_to_query"`
}

// Config represents the application configuration
type Config struct {
	SubscriptionID string    `yaml:"subscription_id" toml:"subscription_id" json:"subscription_id"`
	Source         string    `yaml:"source" toml:"source" json:"source"`
	ResourceType   string    `yaml:"resource_type" toml:"resource_type" json:"resource_type"`
	Timezone       string    `yaml:"timezone" toml:"timezone" json:"timezone"`
	Currency       string    `yaml:"currency" toml:"currency" json:"currency"`
	DateRange      DateRange `yaml:"date_range" toml:"date_range" json:"date_range"`
	LogLevel       string    `yaml:"log_level" toml:"log_level" json:"log_level"`
	LogFormat      string    `yaml:"log_format" toml:"log_format" json:"log_format"`
	APITimeout     int       `yaml:"api_timeout" toml:"api_timeout" json:"api_timeout"` // Azure API timeout in seconds
}

// Override adjusts a configuration after environment variables are applied.
// Command line flags are passed as overrides so they win over every other source.
type Override func(*Config)

// Load reads the optional configuration file, applies defaults,
// environment variables and overrides, then validates the result.
// An empty path skips the file.
func Load(path string, overrides ...Override) (*Config, error) {
	var cfg Config

	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	return finish(&cfg, overrides)
}

// LoadDotEnv loads variables from a dotenv file into the process environment.
// Variables already set take precedence; a missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = DefaultDotEnvFile
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Location returns the time zone used to localize usage dates
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Timeout returns the per-call Azure API timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.APITimeout) * time.Second
}

func finish(cfg *Config, overrides []Override) (*Config, error) {
	// Apply defaults
	applyDefaults(cfg)

	// Override with environment variables
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("environment variable error: %w", err)
	}

	for _, o := range overrides {
		o(cfg)
	}

	// Validate
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// readFile decodes a YAML, TOML or JSON file chosen by extension
func readFile(path string, cfg *Config) error {
	// #nosec G304 -- Config file path is provided by the operator via CLI flag
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config file format: %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// applyDefaults sets default values for configuration
func applyDefaults(cfg *Config) {
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	if cfg.ResourceType == "" {
		cfg.ResourceType = DefaultResourceType
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	// Only apply default if EndDateOffset is nil (not set), not if it's explicitly 0
	if cfg.DateRange.EndDateOffset == nil {
		offset := DefaultEndDateOffset
		cfg.DateRange.EndDateOffset = &offset
	}
	if cfg.DateRange.DaysToQuery == 0 {
		cfg.DateRange.DaysToQuery = DefaultDaysToQuery
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if cfg.APITimeout == 0 {
		cfg.APITimeout = DefaultAPITimeout
	}
}

// applyEnvOverrides applies environment variable overrides to configuration
func applyEnvOverrides(cfg *Config) error {
	// The SDK's own variable comes first, the prefixed one wins
	if val := os.Getenv("AZURE_SUBSCRIPTION_ID"); val != "" {
		cfg.SubscriptionID = val
	}
	if val := os.Getenv("AZURE_COST_SUBSCRIPTION_ID"); val != "" {
		cfg.SubscriptionID = val
	}

	if val := os.Getenv("AZURE_COST_SOURCE"); val != "" {
		cfg.Source = val
	}
	if val := os.Getenv("AZURE_COST_RESOURCE_TYPE"); val != "" {
		cfg.ResourceType = val
	}
	if val := os.Getenv("AZURE_COST_TIMEZONE"); val != "" {
		cfg.Timezone = val
	}
	if val := os.Getenv("AZURE_COST_CURRENCY"); val != "" {
		cfg.Currency = val
	}
	if val := os.Getenv("AZURE_COST_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}
	if val := os.Getenv("AZURE_COST_LOG_FORMAT"); val != "" {
		cfg.LogFormat = val
	}

	if val := os.Getenv("AZURE_COST_API_TIMEOUT"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid AZURE_COST_API_TIMEOUT: must be an integer, got %q", val)
		}
		cfg.APITimeout = i
	}

	if val := os.Getenv("AZURE_COST_END_DATE_OFFSET"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid AZURE_COST_END_DATE_OFFSET: must be an integer, got %q", val)
		}
		cfg.DateRange.EndDateOffset = &i
	}

	if val := os.Getenv("AZURE_COST_DAYS_TO_QUERY"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid AZURE_COST_DAYS_TO_QUERY: must be an integer, got %q", val)
		}
		cfg.DateRange.DaysToQuery = i
	}

	return nil
}

// validate validates the configuration
func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.SubscriptionID) == "" {
		return ErrMissingSubscription
	}
	if strings.Contains(cfg.SubscriptionID, "/") {
		return fmt.Errorf("subscription_id must be a bare ID, got %q", cfg.SubscriptionID)
	}

	switch cfg.Source {
	case SourceConsumption, SourceCostManagement:
	default:
		return fmt.Errorf("source must be %q or %q, got %q", SourceConsumption, SourceCostManagement, cfg.Source)
	}

	if cfg.ResourceType == "" {
		return fmt.Errorf("resource_type cannot be empty")
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	if cfg.DateRange.DaysToQuery < MinDaysToQuery {
		return fmt.Errorf("days_to_query must be at least %d", MinDaysToQuery)
	}

	if cfg.DateRange.EndDateOffset != nil && *cfg.DateRange.EndDateOffset < 0 {
		return fmt.Errorf("end_date_offset cannot be negative, got %d", *cfg.DateRange.EndDateOffset)
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", cfg.LogFormat)
	}

	if cfg.APITimeout < MinAPITimeout {
		return fmt.Errorf("api_timeout must be positive, got %d", cfg.APITimeout)
	}

	if cfg.APITimeout > MaxAPITimeout {
		return fmt.Errorf("api_timeout should not exceed %d seconds (5 minutes), got %d", MaxAPITimeout, cfg.APITimeout)
	}

	return nil
}
