package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Storage   StorageConfig   `yaml:"storage"`
	Reminders RemindersConfig `yaml:"reminders"`
	Source    SourceConfig    `yaml:"source"`
	Pushover  PushoverConfig  `yaml:"pushover"`
	Log       LogConfig       `yaml:"log"`
	Timezone  string          `yaml:"timezone" env:"JARVIS_TIMEZONE"`
}

type ServerConfig struct {
	Port      string `yaml:"port" env:"PORT"`
	StaticDir string `yaml:"static_dir" env:"STATIC_DIR"`
	// RateLimit is the number of POST requests allowed per client per minute.
	RateLimit int `yaml:"rate_limit" env:"RATE_LIMIT"`
}

func (s ServerConfig) Addr() string {
	if strings.Contains(s.Port, ":") {
		return s.Port
	}
	return ":" + s.Port
}

type LLMConfig struct {
	// Provider selects the relay: openai, gemini or anthropic.
	Provider  string          `yaml:"provider" env:"LLM_PROVIDER"`
	Mode      string          `yaml:"mode" env:"LLM_MODE"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key" env:"OPENAI_API_KEY"`
	Model    string `yaml:"model" env:"OPENAI_MODEL"`
	Language string `yaml:"language" env:"WHISPER_LANGUAGE"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model  string `yaml:"model" env:"GEMINI_MODEL"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key" env:"ANTHROPIC_API_KEY"`
	Model  string `yaml:"model" env:"ANTHROPIC_MODEL"`
}

type StorageConfig struct {
	// Driver is one of memory, file, sqlite, redis.
	Driver   string `yaml:"driver" env:"STORAGE_DRIVER"`
	DSN      string `yaml:"dsn" env:"STORAGE_DSN"`
	RedisURL string `yaml:"redis_url" env:"REDIS_URL"`
	MaxBytes int    `yaml:"max_bytes" env:"STORAGE_MAX_BYTES"`
}

type RemindersConfig struct {
	PollInterval time.Duration `yaml:"poll_interval" env:"REMINDER_POLL_INTERVAL"`
}

type SourceConfig struct {
	Kind       string `yaml:"kind" env:"JARVIS_SOURCE"`
	FileDir    string `yaml:"file_dir" env:"JARVIS_DROP_DIR"`
	SampleRate int    `yaml:"sample_rate" env:"JARVIS_SAMPLE_RATE"`
}

type PushoverConfig struct {
	Token   string `yaml:"token" env:"PUSHOVER_TOKEN"`
	UserKey string `yaml:"user_key" env:"PUSHOVER_USER_KEY"`
	Enabled bool   `yaml:"enabled" env:"PUSHOVER_ENABLED"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Load reads the YAML file at path, applies environment overrides and fills
// defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading env: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "3000"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "./public"
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 30
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Mode == "" {
		c.LLM.Mode = "off"
	}
	if c.LLM.OpenAI.Language == "" {
		c.LLM.OpenAI.Language = "en"
	}
	if c.Storage.Driver == "" {
		if c.Storage.RedisURL != "" {
			c.Storage.Driver = "redis"
		} else {
			c.Storage.Driver = "file"
		}
	}
	if c.Storage.DSN == "" {
		switch c.Storage.Driver {
		case "file":
			c.Storage.DSN = "./data"
		case "sqlite":
			c.Storage.DSN = "./data/jarvis.db"
		case "redis":
			c.Storage.DSN = c.Storage.RedisURL
		}
	}
	if c.Storage.MaxBytes == 0 {
		c.Storage.MaxBytes = 5 * 1024 * 1024
	}
	if c.Reminders.PollInterval == 0 {
		c.Reminders.PollInterval = 30 * time.Second
	}
	if c.Source.Kind == "" {
		c.Source.Kind = "console"
	}
	if c.Source.FileDir == "" {
		c.Source.FileDir = "./inbox"
	}
	if c.Source.SampleRate == 0 {
		c.Source.SampleRate = 16000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case "openai", "gemini", "anthropic":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.Storage.Driver == "redis" && c.Storage.DSN == "" {
		return fmt.Errorf("storage driver redis needs REDIS_URL or storage.dsn")
	}
	if c.Reminders.PollInterval < 0 {
		return fmt.Errorf("reminders.poll_interval must be positive, got %s", c.Reminders.PollInterval)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone; empty means the process's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
