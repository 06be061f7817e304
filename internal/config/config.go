package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Anthropic API
	AnthropicAPIKey string

	// OpenAI API
	OpenAIAPIKey string

	// Curation history database
	HistoryDBPath string

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		HistoryDBPath:   getEnv("HISTORY_DB_PATH", "data/history.db"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// ValidateForHistory checks configuration needed for the history store.
func (c *Config) ValidateForHistory() error {
	if c.HistoryDBPath == "" {
		return fmt.Errorf("HISTORY_DB_PATH is required")
	}
	return nil
}

// ValidateForEngine checks that credentials for the given engine type are set.
func (c *Config) ValidateForEngine(engineType string) error {
	switch engineType {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic engine")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai engine")
		}
	default:
		return fmt.Errorf("unsupported engine type: %s (must be 'anthropic' or 'openai')", engineType)
	}
	return nil
}

// KeyFor returns the API key for the given engine type.
func (c *Config) KeyFor(engineType string) string {
	switch engineType {
	case "anthropic":
		return c.AnthropicAPIKey
	case "openai":
		return c.OpenAIAPIKey
	}
	return ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
