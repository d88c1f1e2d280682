// Package config loads the application configuration and model credentials.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEnvFile     = ".env"
	DefaultServerAddr  = ":8080"
	DefaultHistoryPath = "history.json"
	DefaultSQLitePath  = "history.db"
	DefaultHistorySize = 20
	DefaultProvider    = "openai"
	DefaultModel       = "gemini-2.0-flash"
	DefaultAPIKeyEnv   = "GEMINI_API_KEY"
	DefaultTimeout     = 60 * time.Second
)

// Config is read from a YAML file; JSON files parse as well.
type Config struct {
	ServerAddr string        `yaml:"server_addr"`
	Logging    LoggingConfig `yaml:"logging"`
	History    HistoryConfig `yaml:"history"`
	LLM        LLMConfig     `yaml:"llm"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// HistoryConfig selects where generated records are kept.
type HistoryConfig struct {
	// Backend is "json" (single file, the default) or "sqlite".
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Limit   int    `yaml:"limit"`
}

// LLMConfig describes the model provider.
type LLMConfig struct {
	// Provider is "openai" (any OpenAI-compatible endpoint, Gemini by default),
	// "gemini" (native Gemini API) or "mock".
	Provider  string        `yaml:"provider"`
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Timeout   time.Duration `yaml:"timeout"`
	// Concurrent issues the title, captions and hashtags calls in parallel.
	Concurrent        bool               `yaml:"concurrent"`
	RequestsPerMinute int                `yaml:"requests_per_minute"`
	Instructions      InstructionsConfig `yaml:"instructions"`
}

// InstructionsConfig overrides the system instruction of individual stages.
type InstructionsConfig struct {
	Title    string `yaml:"title"`
	Captions string `yaml:"captions"`
	Hashtags string `yaml:"hashtags"`
}

// MissingCredentialError means the model API key is not in the environment.
type MissingCredentialError struct {
	Env string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s not found in environment or %s file", e.Env, DefaultEnvFile)
}

// Default returns a configuration with every field at its default.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load reads the config file at path. A missing file yields Default().
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnv loads KEY=VALUE pairs from an env file without overriding variables
// already set. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

func (c *Config) applyDefaults() {
	if c.ServerAddr == "" {
		c.ServerAddr = DefaultServerAddr
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.History.Backend == "" {
		c.History.Backend = "json"
	}
	if c.History.Path == "" {
		c.History.Path = DefaultHistoryPath
		if c.History.Backend == "sqlite" {
			c.History.Path = DefaultSQLitePath
		}
	}
	if c.History.Limit <= 0 {
		c.History.Limit = DefaultHistorySize
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultProvider
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = DefaultAPIKeyEnv
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = DefaultTimeout
	}
}

func (c Config) Validate() error {
	switch c.History.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("history backend %s not supported", c.History.Backend)
	}
	switch c.LLM.Provider {
	case "openai", "gemini", "mock":
	default:
		return fmt.Errorf("llm provider %s not supported", c.LLM.Provider)
	}
	return nil
}

// APIKey returns the model API key from the environment. The mock provider
// needs none.
func (c Config) APIKey() (string, error) {
	if c.LLM.Provider == "mock" {
		return "", nil
	}
	key := os.Getenv(c.LLM.APIKeyEnv)
	if key == "" {
		return "", &MissingCredentialError{Env: c.LLM.APIKeyEnv}
	}
	return key, nil
}
