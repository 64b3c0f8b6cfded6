// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default values applied by MergeWithDefaults callers
const (
	DefaultPort          = 8080
	DefaultSurveyCSV     = "survey_data.csv"
	DefaultLiteModel     = "gemini-2.5-flash-lite"
	DefaultStandardModel = "gemini-2.5-flash"
)

// Config represents the CLI configuration that can be loaded from a JSON or
// YAML file. All fields are optional; missing values use defaults, flags or
// environment variables.
type Config struct {
	// Data
	SurveyCSV    string `json:"survey_csv,omitempty" yaml:"survey_csv,omitempty"`       // Path to survey responses CSV
	CrowdingFile string `json:"crowding_file,omitempty" yaml:"crowding_file,omitempty"` // Path to crowding table JSON (simulated table if empty)

	// Model
	APIKey        string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`               // Gemini API key
	Model         string  `json:"model,omitempty" yaml:"model,omitempty"`                   // Model used for advice
	LiteModel     string  `json:"lite_model,omitempty" yaml:"lite_model,omitempty"`         // Model used for lightweight calls
	Temperature   float32 `json:"temperature,omitempty" yaml:"temperature,omitempty"`       // Sampling temperature
	RetryAttempts int     `json:"retry_attempts,omitempty" yaml:"retry_attempts,omitempty"` // Attempts per model call

	// Server
	Port        int    `json:"port,omitempty" yaml:"port,omitempty"`                 // HTTP port for serve
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL

	// Behavior
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON or YAML file. The format is
// chosen by extension: .yaml and .yml are YAML, everything else is JSON.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// FromEnv returns the configuration values found in the environment
func FromEnv() Config {
	return Config{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate numeric ranges
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config error: 'temperature' must be between 0 and 2")
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("config error: 'retry_attempts' must be non-negative")
	}

	// Validate file paths exist (if specified)
	if c.CrowdingFile != "" {
		if _, err := os.Stat(c.CrowdingFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: crowding file not found: %s", c.CrowdingFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file and environment values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.SurveyCSV == "" {
		result.SurveyCSV = defaults.SurveyCSV
	}
	if result.CrowdingFile == "" {
		result.CrowdingFile = defaults.CrowdingFile
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.LiteModel == "" {
		result.LiteModel = defaults.LiteModel
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Numeric fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}
	if result.RetryAttempts == 0 {
		result.RetryAttempts = defaults.RetryAttempts
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		SurveyCSV: DefaultSurveyCSV,
		Model:     DefaultStandardModel,
		LiteModel: DefaultLiteModel,
		Port:      DefaultPort,
	}
}
