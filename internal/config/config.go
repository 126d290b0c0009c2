// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Port                string
	StoreBackend        string // "mongo" or "fixture"
	MongoURI            string
	MongoDB             string
	FixtureSessionsPath string
	StrictStepTypes     bool
	LLM                 LLMConfig
	EventLog            EventLogConfig
}

// LLMConfig selects the language-model backend.
type LLMConfig struct {
	Provider string // "openai" or "mock"
	APIKey   string
	Model    string
}

// EventLogConfig controls the LLM request audit log.
type EventLogConfig struct {
	Enabled       bool
	DBPath        string
	RetentionDays int // 0 disables pruning
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		StoreBackend:        getEnv("STORE_BACKEND", "mongo"),
		MongoURI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:             getEnv("MONGODB_DB", "test_db"),
		FixtureSessionsPath: getEnv("FIXTURE_SESSIONS_PATH", "./data/mock_sessions.json"),
		StrictStepTypes:     getEnvBool("STRICT_STEP_TYPES", false),
		LLM: LLMConfig{
			Provider: getEnv("LLM_PROVIDER", "openai"),
			APIKey:   getEnv("OPENAI_API_KEY", ""),
			Model:    getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		},
		EventLog: EventLogConfig{
			Enabled:       getEnvBool("LLM_EVENT_LOG_ENABLED", true),
			DBPath:        getEnv("LLM_EVENT_DB_PATH", "./data/llm_events.db"),
			RetentionDays: getEnvInt("LLM_EVENT_RETENTION_DAYS", 90),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	switch c.StoreBackend {
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI cannot be empty")
		}
		if c.MongoDB == "" {
			return fmt.Errorf("MONGODB_DB cannot be empty")
		}
	case "fixture":
		if c.FixtureSessionsPath == "" {
			return fmt.Errorf("FIXTURE_SESSIONS_PATH cannot be empty")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be mongo or fixture, got %q", c.StoreBackend)
	}

	switch c.LLM.Provider {
	case "openai":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai or mock, got %q", c.LLM.Provider)
	}

	if c.EventLog.Enabled {
		if c.EventLog.DBPath == "" {
			return fmt.Errorf("LLM_EVENT_DB_PATH cannot be empty")
		}
		if c.EventLog.RetentionDays < 0 {
			return fmt.Errorf("LLM_EVENT_RETENTION_DAYS cannot be negative")
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
