package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ichikk/sessionbreakout/market"
)

// Config is the complete runtime configuration. Validation runs at
// load time so a contradictory config can never reach mid-session.
type Config struct {
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Sizing   SizingConfig   `json:"sizing" yaml:"sizing"`
	Account  AccountConfig  `json:"account" yaml:"account"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
	Replay   ReplayConfig   `json:"replay,omitempty" yaml:"replay,omitempty"`
}

// StrategyConfig contains the session-breakout parameters. The two
// sessions may trade the same instrument or different ones.
type StrategyConfig struct {
	LondonInstrument string  `json:"london_instrument" yaml:"london_instrument"`
	LondonTakeProfit float64 `json:"london_take_profit_pips" yaml:"london_take_profit_pips"`
	AsianInstrument  string  `json:"asian_instrument" yaml:"asian_instrument"`
	AsianTakeProfit  float64 `json:"asian_take_profit_pips" yaml:"asian_take_profit_pips"`
	Period           string  `json:"period" yaml:"period"`
	BreakoutPips     float64 `json:"breakout_pips" yaml:"breakout_pips"`
	LabelPrefix      string  `json:"label_prefix" yaml:"label_prefix"`
	Slippage         float64 `json:"slippage" yaml:"slippage"`
}

// SizingConfig controls risk-based position sizing.
type SizingConfig struct {
	BaseCurrency string  `json:"base_currency" yaml:"base_currency"`
	MarginRatio  float64 `json:"margin_ratio" yaml:"margin_ratio"`
	MaxLots      float64 `json:"max_lots" yaml:"max_lots"`
}

// AccountConfig seeds the simulated account for replay runs.
type AccountConfig struct {
	Currency   string  `json:"currency" yaml:"currency"`
	Equity     float64 `json:"equity" yaml:"equity"`
	CreditLine float64 `json:"credit_line" yaml:"credit_line"`
}

// JournalConfig selects where order events are recorded.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	OrdersFile string `json:"orders_file,omitempty" yaml:"orders_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoggingConfig configures the logrus sink; OutputFile empty means
// console only, otherwise a rotated file is added.
type LoggingConfig struct {
	Level      string `json:"level" yaml:"level"`
	OutputFile string `json:"output_file,omitempty" yaml:"output_file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty" yaml:"max_age_days,omitempty"`
	Compress   bool   `json:"compress,omitempty" yaml:"compress,omitempty"`
}

// ReplayConfig points the run command at a candle file and seeds the
// static conversion rates the sizer needs during replay.
type ReplayConfig struct {
	BarsFile   string             `json:"bars_file,omitempty" yaml:"bars_file,omitempty"`
	SpreadPips float64            `json:"spread_pips,omitempty" yaml:"spread_pips,omitempty"`
	Rates      map[string]float64 `json:"rates,omitempty" yaml:"rates,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file and
// validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration, including that every currency
// conversion pair the sizer could need actually resolves.
func (c *Config) Validate() error {
	if _, err := market.ParsePeriod(c.Strategy.Period); err != nil {
		return fmt.Errorf("strategy.period: %w", err)
	}
	london, ok := market.Lookup(c.Strategy.LondonInstrument)
	if !ok {
		return fmt.Errorf("unknown instrument: %s", c.Strategy.LondonInstrument)
	}
	asian, ok := market.Lookup(c.Strategy.AsianInstrument)
	if !ok {
		return fmt.Errorf("unknown instrument: %s", c.Strategy.AsianInstrument)
	}
	if c.Strategy.LondonTakeProfit < 0 || c.Strategy.AsianTakeProfit < 0 {
		return fmt.Errorf("take profit pips must not be negative")
	}
	if c.Strategy.BreakoutPips < 0 {
		return fmt.Errorf("strategy.breakout_pips must not be negative")
	}
	if strings.TrimSpace(c.Strategy.LabelPrefix) == "" {
		return fmt.Errorf("strategy.label_prefix is required")
	}
	if c.Strategy.Slippage < 0 {
		return fmt.Errorf("strategy.slippage must not be negative")
	}

	if c.Sizing.BaseCurrency == "" {
		return fmt.Errorf("sizing.base_currency is required")
	}
	if c.Sizing.MarginRatio <= 0 || c.Sizing.MarginRatio > 1 {
		return fmt.Errorf("sizing.margin_ratio must be in (0, 1]")
	}
	if c.Sizing.MaxLots <= 0 {
		return fmt.Errorf("sizing.max_lots must be positive")
	}
	for _, meta := range []market.InstrumentMeta{london, asian} {
		if err := resolvablePair(meta.Primary, c.Sizing.BaseCurrency); err != nil {
			return err
		}
	}

	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if err := resolvablePair(c.Account.Currency, c.Sizing.BaseCurrency); err != nil {
		return err
	}
	if c.Account.Equity <= 0 {
		return fmt.Errorf("account.equity must be positive")
	}
	if c.Account.CreditLine <= 0 {
		return fmt.Errorf("account.credit_line must be positive")
	}

	if c.Replay.BarsFile != "" {
		if c.Replay.SpreadPips < 0 {
			return fmt.Errorf("replay.spread_pips must not be negative")
		}
		for pair, rate := range c.Replay.Rates {
			if rate <= 0 {
				return fmt.Errorf("replay.rates[%s] must be positive, got %v", pair, rate)
			}
		}
	}

	switch c.Journal.Type {
	case "csv":
		if c.Journal.OrdersFile == "" {
			return fmt.Errorf("journal.orders_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for SQLite type")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}

	return nil
}

// resolvablePair fails when sizing would need a conversion pair that
// does not exist.
func resolvablePair(currency, base string) error {
	if currency == base {
		return nil
	}
	pair := market.Pair(currency, base)
	if _, ok := market.Lookup(pair); !ok {
		return fmt.Errorf("unresolvable conversion pair for sizing: %s", pair)
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Strategy: StrategyConfig{
			LondonInstrument: "EUR/USD",
			LondonTakeProfit: 30,
			AsianInstrument:  "EUR/USD",
			AsianTakeProfit:  30,
			Period:           "H1",
			BreakoutPips:     10,
			LabelPrefix:      "SBS",
			Slippage:         0.5,
		},
		Sizing: SizingConfig{
			BaseCurrency: "JPY",
			MarginRatio:  0.3,
			MaxLots:      6,
		},
		Account: AccountConfig{
			Currency:   "JPY",
			Equity:     1_000_000,
			CreditLine: 2_000_000,
		},
		Journal: JournalConfig{
			Type:       "csv",
			OrdersFile: "./orders.csv",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Replay: ReplayConfig{
			SpreadPips: 1,
		},
	}
}
