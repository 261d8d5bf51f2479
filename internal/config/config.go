package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockRoaster/internal/model"
)

// Config holds all application configuration.
type Config struct {
	MarketData struct {
		Provider           string        `yaml:"provider"` // yahoo or rest
		BaseURL            string        `yaml:"base_url"`
		APIKey             string        `yaml:"api_key"`
		Proxy              string        `yaml:"proxy"`
		InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
		LookupTimeout      time.Duration `yaml:"lookup_timeout"`
		HistoryTimeout     time.Duration `yaml:"history_timeout"`
		ProfileTimeout     time.Duration `yaml:"profile_timeout"`
	} `yaml:"market_data"`
	Gemini struct {
		APIKey  string        `yaml:"api_key"`
		Model   string        `yaml:"model"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"gemini"`
	Roast struct {
		Period string `yaml:"period"`
		Tone   string `yaml:"tone"`
		Lines  int    `yaml:"lines"`
	} `yaml:"roast"`
	HTTP struct {
		Addr         string   `yaml:"addr"`
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"http"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Polling  bool   `yaml:"polling"`
	} `yaml:"telegram"`
	Email struct {
		Host     string   `yaml:"host"`
		Port     int      `yaml:"port"`
		Username string   `yaml:"username"`
		Password string   `yaml:"password"`
		From     string   `yaml:"from"`
		To       []string `yaml:"to"`
	} `yaml:"email"`
	Digest struct {
		Enabled bool     `yaml:"enabled"`
		Cron    string   `yaml:"cron"`
		Symbols []string `yaml:"symbols"`
	} `yaml:"digest"`
	Log struct {
		Level   string `yaml:"level"`
		Format  string `yaml:"format"`
		Tracing bool   `yaml:"tracing"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then .env, then environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the process environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	list := func(key string, dst *[]string) {
		if v := os.Getenv(key); v != "" {
			*dst = splitList(v)
		}
	}

	str("MARKET_DATA_PROVIDER", &c.MarketData.Provider)
	str("MARKET_DATA_BASE_URL", &c.MarketData.BaseURL)
	str("MARKET_DATA_API_KEY", &c.MarketData.APIKey)
	str("HTTPS_PROXY", &c.MarketData.Proxy)
	boolean("MARKET_DATA_INSECURE_SKIP_VERIFY", &c.MarketData.InsecureSkipVerify)

	str("GEMINI_API_KEY", &c.Gemini.APIKey)
	str("GEMINI_MODEL", &c.Gemini.Model)
	str("GEMINI_BASE_URL", &c.Gemini.BaseURL)
	if v := os.Getenv("GEMINI_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Gemini.Timeout = d
		}
	}

	str("HTTP_ADDR", &c.HTTP.Addr)

	str("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	str("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	boolean("TELEGRAM_POLLING", &c.Telegram.Polling)

	str("SMTP_HOST", &c.Email.Host)
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Email.Port = p
		}
	}
	str("SMTP_USERNAME", &c.Email.Username)
	str("SMTP_PASSWORD", &c.Email.Password)
	str("SMTP_FROM", &c.Email.From)
	list("SMTP_TO", &c.Email.To)

	boolean("DIGEST_ENABLED", &c.Digest.Enabled)
	str("DIGEST_CRON", &c.Digest.Cron)
	list("DIGEST_SYMBOLS", &c.Digest.Symbols)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	boolean("LOG_TRACING_ENABLED", &c.Log.Tracing)
}

func (c *Config) applyDefaults() {
	if c.MarketData.Provider == "" {
		c.MarketData.Provider = "yahoo"
	}
	if c.MarketData.LookupTimeout == 0 {
		c.MarketData.LookupTimeout = 10 * time.Second
	}
	if c.MarketData.HistoryTimeout == 0 {
		c.MarketData.HistoryTimeout = 15 * time.Second
	}
	if c.MarketData.ProfileTimeout == 0 {
		c.MarketData.ProfileTimeout = 10 * time.Second
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Gemini.Timeout == 0 {
		c.Gemini.Timeout = 25 * time.Second
	}
	if c.Roast.Period == "" {
		c.Roast.Period = string(model.Period1mo)
	}
	if c.Roast.Tone == "" {
		c.Roast.Tone = string(model.ToneSavage)
	}
	if c.Roast.Lines == 0 {
		c.Roast.Lines = model.DefaultLines
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Email.Port == 0 {
		c.Email.Port = 587
	}
	if c.Digest.Cron == "" {
		c.Digest.Cron = "0 0 18 * * 1-5"
	}
	if c.Log.Level == "" {
		c.Log.Level = "INFO"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		return fmt.Errorf("gemini.api_key is required (set GEMINI_API_KEY)")
	}
	if c.Gemini.Timeout < 20*time.Second || c.Gemini.Timeout > 30*time.Second {
		return fmt.Errorf("gemini.timeout must be between 20s and 30s, got %s", c.Gemini.Timeout)
	}
	if c.MarketData.LookupTimeout <= 0 || c.MarketData.LookupTimeout > 10*time.Second {
		return fmt.Errorf("market_data.lookup_timeout must be in (0, 10s], got %s", c.MarketData.LookupTimeout)
	}
	if c.MarketData.HistoryTimeout <= 0 || c.MarketData.ProfileTimeout <= 0 {
		return fmt.Errorf("market_data history and profile timeouts must be positive")
	}
	switch c.MarketData.Provider {
	case "yahoo":
	case "rest":
		if c.MarketData.BaseURL == "" {
			return fmt.Errorf("market_data.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("market_data.provider must be yahoo or rest, got %q", c.MarketData.Provider)
	}
	if _, err := model.ParsePeriod(c.Roast.Period); err != nil {
		return fmt.Errorf("roast.period: %w", err)
	}
	if _, err := model.ParseTone(c.Roast.Tone); err != nil {
		return fmt.Errorf("roast.tone: %w", err)
	}
	if c.Roast.Lines < model.MinLines || c.Roast.Lines > model.MaxLines {
		return fmt.Errorf("roast.lines must be between %d and %d", model.MinLines, model.MaxLines)
	}
	if c.Telegram.Polling && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required for polling")
	}
	if len(c.Email.To) > 0 && (c.Email.Host == "" || c.Email.From == "") {
		return fmt.Errorf("email.host and email.from are required when email.to is set")
	}
	if c.Digest.Enabled {
		if len(c.Digest.Symbols) == 0 {
			return fmt.Errorf("digest.symbols is required when the digest is enabled")
		}
		if !c.TelegramEnabled() && !c.EmailEnabled() {
			return fmt.Errorf("digest needs telegram or email delivery configured")
		}
	}
	return nil
}

// TelegramEnabled reports whether Telegram delivery is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// EmailEnabled reports whether email delivery is configured.
func (c *Config) EmailEnabled() bool {
	return c.Email.Host != "" && len(c.Email.To) > 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
