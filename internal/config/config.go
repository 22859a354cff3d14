package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v4"
)

const DefaultPath = "config.yaml"

type Config struct {
	ListenAddr     string      `yaml:"listen_addr"`
	DBPath         string      `yaml:"db_path"`
	APIBaseURL     string      `yaml:"api_base_url"`
	APIKey         string      `yaml:"api_key"`
	AuthEnabled    bool        `yaml:"auth_enabled"`
	Timezone       string      `yaml:"timezone"`
	LogLevel       string      `yaml:"log_level"`
	LogFormat      string      `yaml:"log_format"`
	AllowedOrigins []string    `yaml:"allowed_origins"`
	RateLimit      RateLimit   `yaml:"rate_limit"`
	Nudge          NudgeConfig `yaml:"nudge"`
}

// RateLimit caps requests per user on the authenticated API. A zero RPS
// disables limiting.
type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type NudgeConfig struct {
	From         string `yaml:"from"`
	To           string `yaml:"to"`
	ResendAPIKey string `yaml:"resend_api_key"`
}

func Default() *Config {
	return &Config{
		ListenAddr: ":8080",
		DBPath:     "habits.db",
		APIBaseURL: "http://localhost:8080",
		Timezone:   "UTC",
		LogLevel:   "info",
		LogFormat:  "text",
		RateLimit:  RateLimit{RPS: 20, Burst: 40},
		Nudge: NudgeConfig{
			From: "habits@resend.dev",
		},
	}
}

// Load reads the YAML file at path, or at $HABITS_CONFIG when set, on top of
// Default and then applies HABITS_* environment overrides.
func Load(path string) (*Config, error) {
	if p := os.Getenv("HABITS_CONFIG"); p != "" {
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv is Default plus environment overrides, for running without a file.
func FromEnv() (*Config, error) {
	cfg := Default()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"HABITS_DB_PATH":        &c.DBPath,
		"HABITS_API_BASE":       &c.APIBaseURL,
		"HABITS_API_KEY":        &c.APIKey,
		"HABITS_TIMEZONE":       &c.Timezone,
		"HABITS_LOG_LEVEL":      &c.LogLevel,
		"HABITS_RESEND_API_KEY": &c.Nudge.ResendAPIKey,
		"HABITS_NOTIFY_EMAIL":   &c.Nudge.To,
	}
	for key, dst := range overrides {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
}

func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst == 0 {
		return fmt.Errorf("rate limit burst must be at least 1")
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Location is the calendar used when a request doesn't name its own timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("bad timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("bad log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
