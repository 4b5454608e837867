package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"glowdesk/internal/topic"

	"gopkg.in/yaml.v3"
)

const DefaultSystemPrompt = `You are a helpful assistant for L'Oréal product and routine advice. Always remember details the user shares in this conversation (like their name, preferences, and past questions) and use them to give more helpful, personalized answers.`

// Config holds all glowdesk configuration.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Chat    ChatConfig    `yaml:"chat"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the completion endpoint.
type LLMConfig struct {
	BaseURL    string            `yaml:"base_url"`
	APIKey     string            `yaml:"api_key"`
	Model      string            `yaml:"model"`
	MaxTokens  int64             `yaml:"max_tokens"`
	Timeout    string            `yaml:"timeout"`
	MaxRetries int               `yaml:"max_retries"`
	Headers    map[string]string `yaml:"headers"`
}

// ChatConfig configures the conversation and the topic gate.
type ChatConfig struct {
	SystemPrompt    string   `yaml:"system_prompt"`
	ContextTracking bool     `yaml:"context_tracking"`
	ShowHistory     bool     `yaml:"show_history"`
	Keywords        []string `yaml:"keywords"`
	Greeting        string   `yaml:"greeting"`
	OffTopicMessage string   `yaml:"off_topic_message"`
	FailureMessage  string   `yaml:"failure_message"`
	PendingText     string   `yaml:"pending_text"`
}

// StorageConfig configures the sqlite transcript archive.
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ServerConfig configures the widget API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// SessionTTL evicts sessions idle for longer; empty or "0" keeps them.
	SessionTTL  string `yaml:"session_ttl"`
	MaxSessions int    `yaml:"max_sessions"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL:    "https://api.openai.com/v1",
			Model:      "gpt-4o",
			MaxTokens:  300,
			Timeout:    "60s",
			MaxRetries: 2,
		},
		Chat: ChatConfig{
			SystemPrompt:    DefaultSystemPrompt,
			ContextTracking: true,
			ShowHistory:     true,
			Keywords:        topic.DefaultKeywords(),
			Greeting:        "👋 Hello! How can I help you today?",
			OffTopicMessage: "Sorry, I can only answer questions about L'Oréal products and routines. Please ask something related.",
			FailureMessage:  "Sorry, there was a problem connecting to the AI.",
			PendingText:     "Thinking...",
		},
		Storage: StorageConfig{
			Enabled: true,
			Path:    filepath.Join(Dir(), "glowdesk.db"),
		},
		Server: ServerConfig{
			Addr:        ":8080",
			SessionTTL:  "30m",
			MaxSessions: 1000,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(Dir(), "glowdesk.log"),
		},
	}
}

// Dir returns the directory holding glowdesk's config, database and log.
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, herr := os.UserHomeDir()
		if herr != nil {
			return ".glowdesk"
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "glowdesk")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	// GLOW_API_KEY wins over OPENAI_API_KEY
	if v := os.Getenv("GLOW_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("GLOW_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("GLOW_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("GLOW_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the settings needed to talk to the model.
func (c *Config) Validate() error {
	var errs []error
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("llm.api_key is not set (or set OPENAI_API_KEY)"))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is not set"))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens))
	}
	if _, err := c.RequestTimeout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.SessionTTL(); err != nil {
		errs = append(errs, err)
	}
	if c.Server.MaxSessions < 0 {
		errs = append(errs, fmt.Errorf("server.max_sessions must not be negative, got %d", c.Server.MaxSessions))
	}
	if len(c.Chat.Keywords) == 0 {
		errs = append(errs, errors.New("chat.keywords is empty; every question would be rejected"))
	}
	return errors.Join(errs...)
}

// RequestTimeout parses LLM.Timeout. An empty value means no timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	if c.LLM.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 0, fmt.Errorf("llm.timeout: %w", err)
	}
	return d, nil
}

// SessionTTL parses Server.SessionTTL. An empty value disables eviction.
func (c *Config) SessionTTL() (time.Duration, error) {
	if c.Server.SessionTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Server.SessionTTL)
	if err != nil {
		return 0, fmt.Errorf("server.session_ttl: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("server.session_ttl must not be negative, got %s", d)
	}
	return d, nil
}
