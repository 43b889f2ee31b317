// Package config loads process configuration from a yaml file with
// environment overrides for credentials.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full process configuration.
type Config struct {
	Groups []GroupConfig `yaml:"groups"`

	Telegram TelegramConfig `yaml:"telegram"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Report   ReportConfig   `yaml:"report"`

	// TokenSymbols maps lowercased token contract addresses to display
	// symbols, injected into normalization at construction time.
	TokenSymbols map[string]string `yaml:"token_symbols"`

	MetricsAddr string `yaml:"metrics_addr"`
	Verbose     bool   `yaml:"verbose"`
}

// GroupConfig describes one custodial account to report on.
type GroupConfig struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	ChatID  string `yaml:"telegram_chat_id"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

type UpstreamConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	WithV4     bool          `yaml:"with_v4"`
}

type LedgerConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Endpoint      string `yaml:"endpoint"`
	SpreadsheetID string `yaml:"spreadsheet_id"`
	SheetName     string `yaml:"sheet_name"`
}

type ReportConfig struct {
	TimezoneOffsetHours  int     `yaml:"timezone_offset_hours"`
	PeriodEndHour        int     `yaml:"period_end_hour"`
	DailyPeriodsPerYear  float64 `yaml:"daily_periods_per_year"`
	WeeklyPeriodsPerYear float64 `yaml:"weekly_periods_per_year"`
	NotifyBackfill       bool    `yaml:"notify_backfill"`

	// Cron specs for reportd, evaluated in the report timezone.
	DailyCron  string `yaml:"daily_cron"`
	WeeklyCron string `yaml:"weekly_cron"`
}

// Default returns the production defaults: Revert upstream, 09:00 UTC+9
// cutoffs, 365/52 annualization, Base WETH/USDC symbol map.
func Default() Config {
	return Config{
		Upstream: UpstreamConfig{
			Endpoint:   "https://api.revert.finance",
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			WithV4:     true,
		},
		Ledger: LedgerConfig{
			SheetName: "Ledger",
		},
		Report: ReportConfig{
			TimezoneOffsetHours:  9,
			PeriodEndHour:        9,
			DailyPeriodsPerYear:  365,
			WeeklyPeriodsPerYear: 52,
			DailyCron:            "5 9 * * *",
			WeeklyCron:           "10 9 * * MON",
		},
		TokenSymbols: map[string]string{
			"0x4200000000000000000000000000000000000006": "WETH",
			"0x833589fcd6edb6e08f4c7c32d4f71b54bda02913": "USDC",
		},
		MetricsAddr: ":9091",
	}
}

// LoadFile reads a yaml config file on top of the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays credential and endpoint overrides from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TG_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
		c.Telegram.Enabled = true
	}
	if v := os.Getenv("TG_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("REVERT_API"); v != "" {
		c.Upstream.Endpoint = v
	}
	if v := os.Getenv("LEDGER_ENDPOINT"); v != "" {
		c.Ledger.Endpoint = v
		c.Ledger.Enabled = true
	}
	if v := os.Getenv("LEDGER_SPREADSHEET_ID"); v != "" {
		c.Ledger.SpreadsheetID = v
	}
	if v := os.Getenv("DEBUG"); v == "1" {
		c.Verbose = true
	}
}

// Validate checks the parts every run needs.
func (c *Config) Validate() error {
	if len(c.Groups) == 0 {
		return fmt.Errorf("config: groups is empty")
	}
	for i, g := range c.Groups {
		if strings.TrimSpace(g.Address) == "" {
			return fmt.Errorf("config: groups[%d] (%s): address is required", i, g.Name)
		}
	}
	if c.Ledger.Enabled {
		if c.Ledger.Endpoint == "" || c.Ledger.SpreadsheetID == "" {
			return fmt.Errorf("config: ledger enabled but endpoint/spreadsheet_id missing")
		}
	}
	return nil
}

// Location returns the report timezone as a fixed-offset zone.
func (c *Config) Location() *time.Location {
	offset := c.Report.TimezoneOffsetHours
	name := fmt.Sprintf("UTC%+d", offset)
	if offset == 9 {
		name = "JST"
	}
	return time.FixedZone(name, offset*3600)
}
