package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"voice-relay/internal/infra/keychain"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Telegram TelegramConfig `yaml:"telegram"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Auth     AuthConfig     `yaml:"auth"`
	Secrets  SecretsConfig  `yaml:"secrets"`
	Log      LogConfig      `yaml:"log"`

	allowedChat int64
}

type ServerConfig struct {
	HTTPAddr     string `yaml:"http_addr"`
	WebhookPath  string `yaml:"webhook_path"`
	SecretToken  string `yaml:"secret_token"`
	RateLimit    int    `yaml:"rate_limit"`
	WriteTimeout string `yaml:"write_timeout"`
}

type TelegramConfig struct {
	BotToken  string `yaml:"bot_token"`
	BaseURL   string `yaml:"base_url"`
	ParseMode string `yaml:"parse_mode"`
	Timeout   string `yaml:"timeout"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
	Timeout  string `yaml:"timeout"`
}

type AuthConfig struct {
	AllowedChatID string `yaml:"allowed_chat_id"`
}

// SecretsConfig enables reading missing credentials from the OS keychain.
type SecretsConfig struct {
	Keychain bool   `yaml:"keychain"`
	Service  string `yaml:"service"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Environment variables that override the file.
const (
	EnvBotToken      = "BOT_TOKEN"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvAllowedChatID = "ALLOWED_CHAT_ID"
)

// Keychain account names.
const (
	AccountBotToken  = "bot_token"
	AccountOpenAIKey = "openai_api_key"
)

var (
	defaultKeychainGet = keychain.Get
	keychainGet        = defaultKeychainGet
)

// Load reads the YAML file at path, if any, then applies environment
// overrides, keychain fallbacks and defaults. An empty path means
// environment-only configuration.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.setDefaults()

	if err := cfg.resolveSecrets(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBotToken); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(EnvOpenAIKey); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv(EnvAllowedChatID); v != "" {
		c.Auth.AllowedChatID = v
	}
}

func (c *Config) resolveSecrets() error {
	if !c.Secrets.Keychain {
		return nil
	}

	lookups := []struct {
		account string
		target  *string
	}{
		{AccountBotToken, &c.Telegram.BotToken},
		{AccountOpenAIKey, &c.OpenAI.APIKey},
	}

	for _, l := range lookups {
		if *l.target != "" {
			continue
		}
		secret, err := keychainGet(c.Secrets.Service, l.account)
		if err != nil {
			return fmt.Errorf("reading %s from keychain: %w", l.account, err)
		}
		*l.target = secret
	}

	return nil
}

func (c *Config) setDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	if c.Server.WebhookPath == "" {
		c.Server.WebhookPath = "/webhook"
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 60
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "2m"
	}
	if c.Telegram.BaseURL == "" {
		c.Telegram.BaseURL = "https://api.telegram.org"
	}
	if c.Telegram.ParseMode == "" {
		c.Telegram.ParseMode = "HTML"
	}
	if c.Telegram.Timeout == "" {
		c.Telegram.Timeout = "30s"
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "whisper-1"
	}
	if c.OpenAI.Timeout == "" {
		c.OpenAI.Timeout = "60s"
	}
	if c.Secrets.Service == "" {
		c.Secrets.Service = keychain.DefaultService
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks required settings and parses the allowed chat id.
func (c *Config) Validate() error {
	var errs []error

	if c.Telegram.BotToken == "" {
		errs = append(errs, fmt.Errorf("telegram.bot_token is required (or set %s)", EnvBotToken))
	}

	if c.Auth.AllowedChatID == "" {
		errs = append(errs, fmt.Errorf("auth.allowed_chat_id is required (or set %s)", EnvAllowedChatID))
	} else {
		id, err := strconv.ParseInt(c.Auth.AllowedChatID, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("auth.allowed_chat_id %q is not a chat id: %w", c.Auth.AllowedChatID, err))
		}
		c.allowedChat = id
	}

	return errors.Join(errs...)
}

// AllowedChat is the parsed allowed chat id. Valid after Load or Validate.
func (c *Config) AllowedChat() int64 {
	return c.allowedChat
}
