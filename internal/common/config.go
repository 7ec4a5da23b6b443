package common

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	OCR       OCRConfig       `mapstructure:"ocr"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Usage     UsageConfig     `mapstructure:"usage"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	// LexiconPath optionally overrides the built-in extraction dictionaries.
	LexiconPath string `mapstructure:"lexicon_path"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds the inventory store configuration. DSN may be empty:
// the extraction endpoints work without a database; only the inventory and
// export endpoints require one.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
}

// OCRConfig holds text-acquisition configuration.
type OCRConfig struct {
	Tesseract     string `mapstructure:"tesseract"`
	TesseractLang string `mapstructure:"tesseract_lang"`
	TessdataDir   string `mapstructure:"tessdata_dir"`
}

// OpenAIConfig holds the completion-service configuration. An empty APIKey
// disables the AI extraction strategy; the pattern strategy stays available.
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// UsageConfig holds usage-meter configuration.
type UsageConfig struct {
	// SQLitePath, when set, mirrors usage entries into an embedded store so
	// they survive restarts. Empty keeps the meter memory-only.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// RateLimitConfig holds per-IP rate limiting for the extraction endpoints.
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
	Burst int `mapstructure:"burst"`
}

// LoadConfig loads configuration from config.yaml (optional) and
// INVENTORY_-prefixed environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/inventory-tracker/")

	v.SetEnvPrefix("INVENTORY")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// no config file; env vars and defaults apply
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "30m")
	v.SetDefault("database.max_conn_idle_time", "5m")
	v.SetDefault("database.dial_timeout", "3s")

	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.tesseract_lang", "jpn+eng")

	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.max_tokens", 4000)
	v.SetDefault("openai.timeout", "45s")

	v.SetDefault("ratelimit.per_ip", 30)
	v.SetDefault("ratelimit.burst", 10)
}

// Validate checks the loaded configuration. The OpenAI key is deliberately
// not required here: its absence gates the AI strategy at request time.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "server.addr is required", ErrInvalidInput)
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return NewAppError("CONFIG_ERROR", "openai.temperature must be in 0..2", ErrInvalidInput)
	}
	if c.RateLimit.PerIP < 0 {
		return NewAppError("CONFIG_ERROR", "ratelimit.per_ip must be >= 0", ErrInvalidInput)
	}
	return nil
}
