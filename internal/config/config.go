// Package config provides configuration management for InspiraAI.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Environment variable names.
const (
	EnvGoogleAPIKey     = "GOOGLE_API_KEY_INSPI"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	EnvAnthropicAPIKey  = "ANTHROPIC_API_KEY"
	EnvProvider         = "INSPIRA_PROVIDER"
	EnvModel            = "INSPIRA_MODEL"
	EnvPort             = "PORT"
	EnvHost             = "INSPIRA_HOST"
	EnvLogLevel         = "INSPIRA_LOG_LEVEL"
	EnvDataDir          = "INSPIRA_DATA_DIR"
	EnvTelegramBotToken = "TELEGRAM_BOT_TOKEN"
	EnvSlackBotToken    = "SLACK_BOT_TOKEN"
	EnvSlackAppToken    = "SLACK_APP_TOKEN"
)

// Provider names accepted in INSPIRA_PROVIDER.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// DefaultPort is used when PORT is unset or not a valid port number.
const DefaultPort = 7860

// Config holds all configuration for the InspiraAI server.
type Config struct {
	// Host and Port form the listen address (default 0.0.0.0:7860).
	Host string
	Port int

	// DataDir holds config.env (default ~/.inspira).
	DataDir string

	// Provider selects the text-generation backend: "gemini" (default),
	// "openai" or "anthropic".
	Provider string

	// Model overrides the provider's default model.
	Model string

	GoogleAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// LogLevel is a logrus level name (default "info").
	LogLevel string

	// Telegram integration (optional -- long polling).
	TelegramBotToken string

	// Slack integration (optional -- Socket Mode, both tokens required).
	SlackBotToken string
	SlackAppToken string
}

// Load creates a Config from the config file and environment variables.
// Values are resolved in order: environment variable > config file > default.
func Load() (*Config, error) {
	dataDir := envOr(EnvDataDir, DefaultDataDir())

	// Existing env vars take precedence (loadConfigFile only sets unset vars).
	if err := loadConfigFile(FilePath(dataDir)); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &Config{
		Host:             envOr(EnvHost, "0.0.0.0"),
		Port:             portFromEnv(),
		DataDir:          dataDir,
		Provider:         strings.ToLower(envOr(EnvProvider, ProviderGemini)),
		Model:            os.Getenv(EnvModel),
		GoogleAPIKey:     os.Getenv(EnvGoogleAPIKey),
		OpenAIAPIKey:     os.Getenv(EnvOpenAIAPIKey),
		AnthropicAPIKey:  os.Getenv(EnvAnthropicAPIKey),
		LogLevel:         envOr(EnvLogLevel, "info"),
		TelegramBotToken: os.Getenv(EnvTelegramBotToken),
		SlackBotToken:    os.Getenv(EnvSlackBotToken),
		SlackAppToken:    os.Getenv(EnvSlackAppToken),
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("%s is required for the gemini provider", EnvGoogleAPIKey)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%s is required for the openai provider", EnvOpenAIAPIKey)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("%s is required for the anthropic provider", EnvAnthropicAPIKey)
		}
	default:
		return fmt.Errorf("unknown provider %q (want %s, %s or %s)", c.Provider, ProviderGemini, ProviderOpenAI, ProviderAnthropic)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// APIKey returns the key for the selected provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	default:
		return c.GoogleAPIKey
	}
}

// SlackEnabled returns true if Slack Socket Mode is configured.
func (c *Config) SlackEnabled() bool {
	return c.SlackBotToken != "" && c.SlackAppToken != ""
}

// TelegramEnabled returns true if the Telegram bot is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// portFromEnv reads PORT, falling back to DefaultPort when it is absent or
// not a usable port number.
func portFromEnv() int {
	v := os.Getenv(EnvPort)
	if v == "" {
		logrus.Infof("%s not set, using default port %d", EnvPort, DefaultPort)
		return DefaultPort
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 || n > 65535 {
		logrus.Warnf("%s %q is not a valid port, using default port %d", EnvPort, v, DefaultPort)
		return DefaultPort
	}
	return n
}

// ---------------------------------------------------------------------------
// Config file
// ---------------------------------------------------------------------------

// FilePath returns the config.env path inside dataDir.
func FilePath(dataDir string) string {
	return filepath.Join(dataDir, "config.env")
}

// loadConfigFile sets every variable from path that is not already present
// in the environment. A missing file is not an error.
func loadConfigFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// ReadFile reads a dotenv-style config file. Quoting, comments and "export"
// prefixes follow godotenv. A missing file yields an empty map.
func ReadFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	return values, nil
}

// WriteFile writes values to path in a stable order, known keys first.
// Values are quoted by godotenv so ReadFile returns them unchanged.
func WriteFile(path string, values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# InspiraAI configuration\n")
	b.WriteString("# Managed by: inspira config\n")
	b.WriteString("# Environment variables override these values.\n\n")

	written := make(map[string]bool)
	var order []string
	for _, k := range Keys {
		if values[k.Key] != "" {
			order = append(order, k.Key)
			written[k.Key] = true
		}
	}

	var extras []string
	for k, v := range values {
		if !written[k] && v != "" {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	order = append(order, extras...)

	for _, k := range order {
		line, err := godotenv.Marshal(map[string]string{k: values[k]})
		if err != nil {
			return fmt.Errorf("encoding %s: %w", k, err)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Key describes a single configuration value.
type Key struct {
	Key    string
	Desc   string
	Secret bool
}

// Keys lists every configurable value in display order.
var Keys = []Key{
	{EnvGoogleAPIKey, "Google Gemini API key", true},
	{EnvOpenAIAPIKey, "OpenAI API key", true},
	{EnvAnthropicAPIKey, "Anthropic API key", true},
	{EnvProvider, "Text-generation provider (gemini, openai, anthropic)", false},
	{EnvModel, "Model name override", false},
	{EnvHost, "Listen host", false},
	{EnvPort, "Listen port", false},
	{EnvLogLevel, "Log level (debug, info, warn, error)", false},
	{EnvTelegramBotToken, "Telegram bot token (from @BotFather)", true},
	{EnvSlackBotToken, "Slack Bot User OAuth Token (xoxb-...)", true},
	{EnvSlackAppToken, "Slack App-Level Token (xapp-...)", true},
}

// FindKey returns the Key with the given name.
func FindKey(name string) (Key, bool) {
	for _, k := range Keys {
		if k.Key == name {
			return k, true
		}
	}
	return Key{}, false
}

// MaskSecret masks a secret string, showing only the first 4 and last 4 characters.
func MaskSecret(s string) string {
	if len(s) <= 12 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// DefaultDataDir returns ~/.inspira, or .inspira when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".inspira"
	}
	return filepath.Join(home, ".inspira")
}
