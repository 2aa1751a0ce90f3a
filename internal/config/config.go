// Package config provides configuration management for the dashboard.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Data          DataConfig         `mapstructure:"data"`
	History       HistoryConfig      `mapstructure:"history"`
	Compare       CompareConfig      `mapstructure:"compare"`
	Alerts        AlertConfig        `mapstructure:"alerts"`
	Scrape        ScrapeConfig       `mapstructure:"scrape"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// DataConfig holds output directory layout.
type DataConfig struct {
	Dir string `mapstructure:"dir"` // snapshot + alerts artifacts live here
}

// HistoryConfig holds history store configuration.
type HistoryConfig struct {
	LookbackDays int `mapstructure:"lookback_days"`
}

// CompareConfig holds comparison engine configuration.
type CompareConfig struct {
	RecentWindow int `mapstructure:"recent_window"` // trailing ex-div events for stability/sum/slope
	Workers      int `mapstructure:"workers"`       // 0 or 1 = sequential
}

// AlertConfig holds alert generation configuration.
type AlertConfig struct {
	DropPct float64 `mapstructure:"drop_pct"` // alert when change <= this (negative)
}

// ScrapeConfig holds collection-stage configuration.
type ScrapeConfig struct {
	UserAgent        string        `mapstructure:"user_agent"`
	MinFetchInterval time.Duration `mapstructure:"min_fetch_interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MinItems         int           `mapstructure:"min_items"` // fallback floor
	ManualTickers    string        `mapstructure:"manual_tickers"`
}

// NotificationConfig holds notification configuration.
type NotificationConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Level    string         `mapstructure:"level"` // all, alerts_only, off
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// WebhookConfig holds webhook notification configuration.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/weekly-etf-dashboard"
	}
	return filepath.Join(home, ".config", "weekly-etf-dashboard")
}

// Load loads configuration from the specified directory. If configDir is
// empty, the default config directory is used. A missing config file is
// not an error: defaults apply and a template is written for editing.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if werr := writeTemplate(configDir); werr != nil {
				return nil, fmt.Errorf("writing config template: %w", werr)
			}
		} else {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.dir", "data")
	v.SetDefault("history.lookback_days", 45)
	v.SetDefault("compare.recent_window", 8)
	v.SetDefault("compare.workers", 4)
	v.SetDefault("alerts.drop_pct", -15.0)
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X) weekly-etf-dashboard/1.0")
	v.SetDefault("scrape.min_fetch_interval", 350*time.Millisecond)
	v.SetDefault("scrape.timeout", 30*time.Second)
	v.SetDefault("scrape.min_items", 20)
	v.SetDefault("scrape.manual_tickers", "data/manual_tickers.json")
	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.level", "alerts_only")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ETF_DASHBOARD_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("ETF_DASHBOARD_WEBHOOK_URL"); v != "" {
		cfg.Notifications.Webhook.URL = v
		cfg.Notifications.Webhook.Enabled = true
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Notifications.Telegram.ChatID = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.History.LookbackDays <= 0 {
		return fmt.Errorf("history.lookback_days must be positive")
	}
	if c.Compare.RecentWindow < 2 {
		return fmt.Errorf("compare.recent_window must be at least 2")
	}
	if c.Compare.Workers < 0 {
		return fmt.Errorf("compare.workers must be non-negative")
	}
	if c.Alerts.DropPct > 0 {
		return fmt.Errorf("alerts.drop_pct must be zero or negative (a drop threshold)")
	}
	switch c.Notifications.Level {
	case "", "all", "alerts_only", "off":
	default:
		return fmt.Errorf("invalid notifications.level: %s", c.Notifications.Level)
	}
	return nil
}

// SnapshotPath returns the path of the primary snapshot artifact.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.Data.Dir, "weekly_etfs.json")
}

// LegacySnapshotPath returns the path of the fallback snapshot artifact.
func (c *Config) LegacySnapshotPath() string {
	return filepath.Join(c.Data.Dir, "items.json")
}

// AlertsPath returns the path of the alerts artifact.
func (c *Config) AlertsPath() string {
	return filepath.Join(c.Data.Dir, "alerts.json")
}

// HistoryDir returns the history store directory.
func (c *Config) HistoryDir() string {
	return filepath.Join(c.Data.Dir, "history")
}

// DatabasePath returns the run-recorder sqlite path.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.Dir, "dashboard.db")
}
