package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all kernel configuration.
type Config struct {
	// Client side: where the interactive form sends submissions
	Client ClientConfig `yaml:"client"`

	// Generation backend served by `kernel serve`
	Server ServerConfig `yaml:"server"`

	// LLM used by the backend to write dialogues
	LLM LLMConfig `yaml:"llm"`

	// Keyword catalog source
	Keywords KeywordsConfig `yaml:"keywords"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ClientConfig configures the outbound call to the generation endpoint.
type ClientConfig struct {
	Endpoint string `yaml:"endpoint"`
	Timeout  string `yaml:"timeout"`
}

// ServerConfig configures the generation backend.
type ServerConfig struct {
	Addr          string `yaml:"addr"`
	AllowedOrigin string `yaml:"allowed_origin"`
	DatabasePath  string `yaml:"database_path"`
	Mode          string `yaml:"mode"` // gin mode: debug, release, test
}

// LLMConfig configures the dialogue generator.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

// KeywordsConfig points at an optional YAML keyword list. Empty means the
// built-in catalog.
type KeywordsConfig struct {
	File string `yaml:"file"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`  // debug, info, warn, error
	Format     string          `yaml:"format"` // json, text
	File       string          `yaml:"file"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			Endpoint: "http://localhost:5000/api/generate",
			Timeout:  "60s",
		},
		Server: ServerConfig{
			Addr:          ":5000",
			AllowedOrigin: "https://nihilist-kernel.vercel.app",
			DatabasePath:  "dialogue_cache.db",
			Mode:          "release",
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.0-flash",
			Timeout:  "120s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   filepath.Join(".kernel", "logs", "kernel.log"),
		},
	}
}

// Load loads configuration from a YAML file, after pulling a .env file (if
// any) into the process environment. A missing config file yields defaults.
func Load(path string) (*Config, error) {
	loadDotEnv()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// loadDotEnv reads the first .env found. Existing variables win.
func loadDotEnv() {
	for _, path := range []string{".env", filepath.Join("..", ".env")} {
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
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

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// GOOGLE_API_KEY first so GEMINI_API_KEY wins when both are set,
	// matching the genai SDK.
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}

	if endpoint := os.Getenv("KERNEL_ENDPOINT"); endpoint != "" {
		c.Client.Endpoint = endpoint
	}
	if path := os.Getenv("KERNEL_DB"); path != "" {
		c.Server.DatabasePath = path
	}
	if origin := os.Getenv("KERNEL_ALLOWED_ORIGIN"); origin != "" {
		c.Server.AllowedOrigin = origin
	}
	if file := os.Getenv("KERNEL_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
}

// GetClientTimeout returns the submission timeout as a duration.
func (c *Config) GetClientTimeout() time.Duration {
	d, err := time.ParseDuration(c.Client.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// GetLLMTimeout returns the generation timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// ValidProviders lists all supported LLM providers.
var ValidProviders = []string{"gemini"}

// Validate checks the client-side settings every command needs.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Client.Endpoint) == "" {
		return fmt.Errorf("client endpoint not configured (set client.endpoint or KERNEL_ENDPOINT)")
	}
	if _, err := time.ParseDuration(c.Client.Timeout); err != nil {
		return fmt.Errorf("invalid client timeout %q: %w", c.Client.Timeout, err)
	}
	return nil
}

// ValidateServer checks the settings `kernel serve` needs on top of Validate.
func (c *Config) ValidateServer() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set GEMINI_API_KEY or GOOGLE_API_KEY)")
	}

	validProvider := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server addr not configured")
	}
	if c.Server.DatabasePath == "" {
		return fmt.Errorf("server database_path not configured")
	}
	return nil
}
