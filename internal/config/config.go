// Package config loads chops configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// DefaultShortTermCapacity is the default short-term idea window.
	DefaultShortTermCapacity = 50

	// DefaultRetentionMinutes is the default short-term retention window.
	DefaultRetentionMinutes = 60

	// DefaultMaxEpisodes bounds the episodic session history.
	DefaultMaxEpisodes = 100
)

// Config holds all configuration for chops.
type Config struct {
	Chaos   ChaosConfig   `mapstructure:"chaos"`
	Memory  MemoryConfig  `mapstructure:"memory"`
	Claude  ClaudeConfig  `mapstructure:"claude"`
	Logging LoggingConfig `mapstructure:"logging"`
	API     APIConfig     `mapstructure:"api"`
}

// ChaosConfig holds chaos engine settings.
type ChaosConfig struct {
	DefaultLevel int      `mapstructure:"default_level"`
	Sources      []string `mapstructure:"sources"`
	Seed         uint64   `mapstructure:"seed"`
}

// MemoryConfig holds memory tier bounds and persistence settings.
type MemoryConfig struct {
	Backend               string  `mapstructure:"backend"` // "file" or "sqlite"
	Path                  string  `mapstructure:"path"`
	ShortTermCapacity     int     `mapstructure:"short_term_capacity"`
	RetentionMinutes      int     `mapstructure:"retention_minutes"`
	MaxEpisodes           int     `mapstructure:"max_episodes"`
	BreakthroughThreshold float64 `mapstructure:"breakthrough_threshold"`
	FailureThreshold      float64 `mapstructure:"failure_threshold"`
}

// ClaudeConfig holds Anthropic Claude API settings.
type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// String returns a safe representation of ClaudeConfig with the API key masked.
func (c ClaudeConfig) String() string {
	return fmt.Sprintf("ClaudeConfig{APIKey:%s, Model:%s}", maskAPIKey(c.APIKey), c.Model)
}

// maskAPIKey shows first 4 + last 4 chars, replacing the middle with asterisks.
func maskAPIKey(key string) string {
	const visible = 4
	if len(key) <= visible*2 {
		return "***"
	}
	return key[:visible] + "****" + key[len(key)-visible:]
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	AuthToken  string `mapstructure:"auth_token"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("chaos.default_level", 5)
	v.SetDefault("chaos.sources", []string{"pseudo", "lorenz", "henon"})
	v.SetDefault("chaos.seed", 0)

	v.SetDefault("memory.backend", "file")
	v.SetDefault("memory.path", filepath.Join(homeDir(), ".chops", "memory.json"))
	v.SetDefault("memory.short_term_capacity", DefaultShortTermCapacity)
	v.SetDefault("memory.retention_minutes", DefaultRetentionMinutes)
	v.SetDefault("memory.max_episodes", DefaultMaxEpisodes)
	v.SetDefault("memory.breakthrough_threshold", 0.85)
	v.SetDefault("memory.failure_threshold", 0.3)

	v.SetDefault("claude.model", "claude-haiku-4-5-20251001")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("api.listen_addr", ":8080")
	v.SetDefault("api.auth_token", "")

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".chops"))
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("CHOPS")
	v.AutomaticEnv()

	// Map specific env vars
	_ = v.BindEnv("claude.api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("memory.path", "CHOPS_MEMORY_PATH")
	_ = v.BindEnv("memory.backend", "CHOPS_MEMORY_BACKEND")
	_ = v.BindEnv("api.listen_addr", "CHOPS_API_LISTEN_ADDR")
	_ = v.BindEnv("api.auth_token", "CHOPS_API_AUTH_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK — use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are set and consistent.
func (c *Config) Validate() error {
	if c.Chaos.DefaultLevel < 1 || c.Chaos.DefaultLevel > 11 {
		return fmt.Errorf("chaos.default_level must be between 1 and 11, got %d", c.Chaos.DefaultLevel)
	}
	if len(c.Chaos.Sources) == 0 {
		return fmt.Errorf("chaos.sources must not be empty")
	}
	if c.Memory.Backend != "file" && c.Memory.Backend != "sqlite" {
		return fmt.Errorf("memory.backend must be \"file\" or \"sqlite\", got %q", c.Memory.Backend)
	}
	if c.Memory.Path == "" {
		return fmt.Errorf("memory.path must not be empty")
	}
	if c.Memory.ShortTermCapacity <= 0 {
		return fmt.Errorf("memory.short_term_capacity must be greater than 0")
	}
	if c.Memory.RetentionMinutes <= 0 {
		return fmt.Errorf("memory.retention_minutes must be greater than 0")
	}
	if c.Memory.MaxEpisodes <= 0 {
		return fmt.Errorf("memory.max_episodes must be greater than 0")
	}
	if c.Memory.BreakthroughThreshold < 0 || c.Memory.BreakthroughThreshold > 1 {
		return fmt.Errorf("memory.breakthrough_threshold must be between 0 and 1")
	}
	if c.Memory.FailureThreshold < 0 || c.Memory.FailureThreshold > 1 {
		return fmt.Errorf("memory.failure_threshold must be between 0 and 1")
	}
	if c.Memory.FailureThreshold >= c.Memory.BreakthroughThreshold {
		return fmt.Errorf("memory.failure_threshold (%v) must be less than memory.breakthrough_threshold (%v)",
			c.Memory.FailureThreshold, c.Memory.BreakthroughThreshold)
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
