// Package config loads the bot's configuration from a YAML or JSON file.
// Everything is read once at startup and treated as immutable afterwards.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete bot configuration.
type Config struct {
	Symbols  []string       `json:"symbols" yaml:"symbols"`
	Timezone string         `json:"timezone" yaml:"timezone"`
	Session  SessionConfig  `json:"session" yaml:"session"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Bridge   BridgeConfig   `json:"bridge" yaml:"bridge"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
	Poll     PollConfig     `json:"poll" yaml:"poll"`
}

// SessionConfig holds the session boundary hours in the reference timezone.
type SessionConfig struct {
	ObservationStart int `json:"observation_start" yaml:"observation_start"`
	ObservationEnd   int `json:"observation_end" yaml:"observation_end"`
	ExecutionStart   int `json:"execution_start" yaml:"execution_start"`
	ExecutionEnd     int `json:"execution_end" yaml:"execution_end"`
}

// StrategyConfig holds sizing and gating parameters.
type StrategyConfig struct {
	StopLossMultiplier float64 `json:"stop_loss_multiplier" yaml:"stop_loss_multiplier"`
	MinRange           float64 `json:"min_range" yaml:"min_range"`
	LotSize            float64 `json:"lot_size" yaml:"lot_size"`
	MaxDailyRisk       float64 `json:"max_daily_risk" yaml:"max_daily_risk"`
	MaxTradeRisk       float64 `json:"max_risk_per_trade" yaml:"max_risk_per_trade"`
}

// JournalConfig selects and parameterizes the journal backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "sqlite" or "csv"
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	ErrorsFile string `json:"errors_file,omitempty" yaml:"errors_file,omitempty"`
}

// BridgeConfig points at the MT5 REST sidecar. The auth token comes from the
// RANGEFADE_BRIDGE_TOKEN environment variable, not the config file.
type BridgeConfig struct {
	URL     string `json:"url" yaml:"url"`
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"` // e.g. "10s"
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"` // e.g. ":9100"
}

// PollConfig holds the per-phase polling intervals as duration strings.
type PollConfig struct {
	Observation string `json:"observation,omitempty" yaml:"observation,omitempty"`
	Execution   string `json:"execution,omitempty" yaml:"execution,omitempty"`
	Closed      string `json:"closed,omitempty" yaml:"closed,omitempty"`
}

// ParseTimeout converts the bridge timeout string to a duration.
func (b BridgeConfig) ParseTimeout() (time.Duration, error) {
	if b.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(b.Timeout)
}

// LoadFromFile loads configuration from a file, trying YAML first and
// falling back to JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is consistent.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols is required")
	}
	if c.Timezone == "" {
		return fmt.Errorf("timezone is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("unknown timezone %q", c.Timezone)
	}

	s := c.Session
	if !(0 <= s.ObservationStart && s.ObservationStart < s.ObservationEnd &&
		s.ObservationEnd <= s.ExecutionStart && s.ExecutionStart < s.ExecutionEnd &&
		s.ExecutionEnd <= 24) {
		return fmt.Errorf("session hours must satisfy 0 <= obs_start < obs_end <= exec_start < exec_end <= 24")
	}

	if c.Strategy.StopLossMultiplier <= 0 {
		return fmt.Errorf("strategy.stop_loss_multiplier must be positive")
	}
	if c.Strategy.MinRange <= 0 {
		return fmt.Errorf("strategy.min_range must be positive")
	}
	if c.Strategy.LotSize <= 0 {
		return fmt.Errorf("strategy.lot_size must be positive")
	}
	if c.Strategy.MaxDailyRisk <= 0 {
		return fmt.Errorf("strategy.max_daily_risk must be positive")
	}
	if c.Strategy.MaxTradeRisk < 0 {
		return fmt.Errorf("strategy.max_trade_risk must not be negative")
	}

	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite type")
		}
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.ErrorsFile == "" {
			return fmt.Errorf("journal.trades_file and errors_file required for csv type")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite' or 'csv'")
	}

	if c.Bridge.URL == "" {
		return fmt.Errorf("bridge.url is required")
	}
	if _, err := c.Bridge.ParseTimeout(); err != nil {
		return fmt.Errorf("bridge.timeout: %w", err)
	}

	for name, v := range map[string]string{
		"poll.observation": c.Poll.Observation,
		"poll.execution":   c.Poll.Execution,
		"poll.closed":      c.Poll.Closed,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}

// Default returns a configuration with the strategy's historical defaults.
func Default() *Config {
	return &Config{
		Symbols:  []string{"GER40", "FRA40", "UK100", "EUSTX50"},
		Timezone: "Asia/Dubai",
		Session: SessionConfig{
			ObservationStart: 5,
			ObservationEnd:   9,
			ExecutionStart:   11,
			ExecutionEnd:     14,
		},
		Strategy: StrategyConfig{
			StopLossMultiplier: 1.5,
			MinRange:           5.0,
			LotSize:            0.01,
			MaxDailyRisk:       0.05,
			MaxTradeRisk:       0.02,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./rangefade.sqlite",
		},
		Bridge: BridgeConfig{
			URL:     "http://127.0.0.1:8787",
			Timeout: "10s",
		},
		Poll: PollConfig{
			Observation: "5m",
			Execution:   "1m",
			Closed:      "30m",
		},
	}
}
