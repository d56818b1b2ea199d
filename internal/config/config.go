package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all pathwise configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Content generation provider
	Generation GenerationConfig `yaml:"generation"`

	// Record store
	Store StoreConfig `yaml:"store"`

	// Artifact synthesis pipeline
	Synthesis SynthesisConfig `yaml:"synthesis"`

	// Skill durability estimation
	Durability DurabilityConfig `yaml:"durability"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GenerationConfig configures the content generation client.
type GenerationConfig struct {
	Provider    string  `yaml:"provider"` // gemini
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Timeout     string  `yaml:"timeout"`
	Temperature float32 `yaml:"temperature"`
}

// StoreConfig configures the record store.
type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite3 (cgo), sqlite (pure Go), memory
	Path   string `yaml:"path"`
}

// SynthesisConfig configures the synthesis pipeline and its side features.
type SynthesisConfig struct {
	RoleScope   string `yaml:"role_scope"`
	AlertCount  int    `yaml:"alert_count"`
	StepTimeout string `yaml:"step_timeout"`
}

// DurabilityConfig configures skill durability estimates.
type DurabilityConfig struct {
	Timeout     string `yaml:"timeout"`
	Concurrency int    `yaml:"concurrency"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`  // debug, info, warn, error
	Format     string          `yaml:"format"` // json, console
	File       string          `yaml:"file"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "pathwise",
		Version: "0.4.0",

		Generation: GenerationConfig{
			Provider:    "gemini",
			Model:       "gemini-2.5-flash",
			Timeout:     "90s",
			Temperature: 0.4,
		},

		Store: StoreConfig{
			Driver: "sqlite3",
			Path:   "data/pathwise.db",
		},

		Synthesis: SynthesisConfig{
			RoleScope:   "member",
			AlertCount:  2,
			StepTimeout: "120s",
		},

		Durability: DurabilityConfig{
			Timeout:     "20s",
			Concurrency: 4,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// GEMINI_API_KEY wins over GOOGLE_API_KEY, matching the genai SDK.
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.Generation.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Generation.APIKey = key
	}
	if model := os.Getenv("PATHWISE_MODEL"); model != "" {
		c.Generation.Model = model
	}

	if path := os.Getenv("PATHWISE_DB"); path != "" {
		c.Store.Path = path
	}
	if driver := os.Getenv("PATHWISE_DB_DRIVER"); driver != "" {
		c.Store.Driver = driver
	}

	if level := os.Getenv("PATHWISE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks the configuration for values the runtime cannot work with.
func (c *Config) Validate() error {
	var problems []string
	if c.Generation.APIKey == "" {
		problems = append(problems, "generation.api_key is required (or set GEMINI_API_KEY)")
	}
	if c.Generation.Provider != "" && c.Generation.Provider != "gemini" {
		problems = append(problems, fmt.Sprintf("unsupported generation.provider %q", c.Generation.Provider))
	}
	switch c.Store.Driver {
	case "sqlite3", "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for sqlite drivers")
		}
	case "memory":
	default:
		problems = append(problems, fmt.Sprintf("unsupported store.driver %q", c.Store.Driver))
	}
	if c.Synthesis.AlertCount < 0 {
		problems = append(problems, "synthesis.alert_count must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// GetGenerationTimeout returns the per-request generation timeout.
func (c *Config) GetGenerationTimeout() time.Duration {
	return parseDuration(c.Generation.Timeout, 90*time.Second)
}

// GetStepTimeout returns the timeout for one whole synthesis run.
func (c *Config) GetStepTimeout() time.Duration {
	return parseDuration(c.Synthesis.StepTimeout, 120*time.Second)
}

// GetDurabilityTimeout returns the per-skill durability estimate timeout.
func (c *Config) GetDurabilityTimeout() time.Duration {
	return parseDuration(c.Durability.Timeout, 20*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
