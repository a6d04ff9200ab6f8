package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	boterrors "github.com/ducminhle1904/crypto-signal-bot/internal/errors"
	"github.com/ducminhle1904/crypto-signal-bot/internal/indicators"
	"github.com/ducminhle1904/crypto-signal-bot/internal/signals"
)

// MonitorConfig represents the complete configuration of the signal monitor
type MonitorConfig struct {
	// Market
	Symbol        string `json:"symbol" yaml:"symbol"`                 // Trading symbol (e.g., ETHUSDT)
	Interval      string `json:"interval" yaml:"interval"`             // Kline interval (5m, 15m, 1h, etc.)
	Category      string `json:"category" yaml:"category"`             // Bybit category: linear, spot or inverse
	CheckInterval int    `json:"check_interval" yaml:"check_interval"` // Seconds between cycles
	KlineLimit    int    `json:"kline_limit" yaml:"kline_limit"`       // Bars fetched per cycle

	Bollinger BollingerConfig `json:"bollinger" yaml:"bollinger"`
	RSI       RSIConfig       `json:"rsi" yaml:"rsi"`

	Telegram TelegramConfig `json:"telegram" yaml:"telegram"`
	Proxy    string         `json:"proxy" yaml:"proxy"` // HTTP proxy for Telegram, e.g. http://127.0.0.1:10808

	History    HistoryConfig    `json:"history" yaml:"history"`
	Exchange   ExchangeConfig   `json:"exchange" yaml:"exchange"`
	Monitoring MonitoringConfig `json:"monitoring" yaml:"monitoring"`
	Log        LogConfig        `json:"log" yaml:"log"`

	// Push NEUTRAL signals to the notifier as well (diagnostics only)
	NotifyNeutral bool `json:"notify_neutral" yaml:"notify_neutral"`
}

// BollingerConfig holds Bollinger Bands configuration
type BollingerConfig struct {
	Period int     `json:"period" yaml:"period"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
}

// RSIConfig holds RSI indicator configuration
type RSIConfig struct {
	Period     int     `json:"period" yaml:"period"`
	Overbought float64 `json:"overbought" yaml:"overbought"`
	Oversold   float64 `json:"oversold" yaml:"oversold"`
}

// TelegramConfig holds notification settings
type TelegramConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	BotToken       string `json:"bot_token,omitempty" yaml:"bot_token,omitempty"`
	ChatID         string `json:"chat_id,omitempty" yaml:"chat_id,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// HistoryConfig controls signal history persistence
type HistoryConfig struct {
	File           string `json:"file" yaml:"file"`
	SaveEvery      int    `json:"save_every" yaml:"save_every"` // Persist every N cycles
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// ExchangeConfig selects the market data source
type ExchangeConfig struct {
	Name     string `json:"name" yaml:"name"` // bybit or csv
	Testnet  bool   `json:"testnet" yaml:"testnet"`
	DataFile string `json:"data_file,omitempty" yaml:"data_file,omitempty"` // CSV source only
}

// MonitoringConfig controls the metrics and health endpoint
type MonitoringConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Port    int  `json:"port" yaml:"port"`
}

// LogConfig controls the file logger
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	Dir   string `json:"dir" yaml:"dir"`
}

var (
	supportedIntervals  = []string{"1m", "3m", "5m", "15m", "30m", "1h", "2h", "4h", "6h", "12h", "1d", "1w", "1M"}
	supportedCategories = []string{"linear", "inverse", "spot"}
	supportedExchanges  = []string{"bybit", "csv"}
)

// maxKlineLimit is the largest page Bybit serves for one kline request
const maxKlineLimit = 1000

// Default returns the configuration used when no file is given
func Default() *MonitorConfig {
	return &MonitorConfig{
		Symbol:        "ETHUSDT",
		Interval:      "15m",
		Category:      "linear",
		CheckInterval: 60,
		KlineLimit:    100,
		Bollinger:     BollingerConfig{Period: 20, StdDev: 2.0},
		RSI:           RSIConfig{Period: 14, Overbought: 70, Oversold: 30},
		Telegram:      TelegramConfig{TimeoutSeconds: 10},
		History: HistoryConfig{
			File:           "signals_history.json",
			SaveEvery:      1,
			TimeoutSeconds: 5,
		},
		Exchange:   ExchangeConfig{Name: "bybit"},
		Monitoring: MonitoringConfig{Port: 8080},
		Log:        LogConfig{Level: "info", Dir: "logs"},
	}
}

// Load reads a JSON or YAML file over the defaults, applies environment overrides and
// validates the result. An empty path uses defaults and environment only.
func Load(configFile string) (*MonitorConfig, error) {
	cfg := Default()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, boterrors.NewConfigurationError("config", "load",
				fmt.Sprintf("failed to read config file %s: %v", configFile, err))
		}
		if err := cfg.decode(configFile, data); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *MonitorConfig) decode(configFile string, data []byte) error {
	var err error
	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(c)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(c)
	}
	if err != nil {
		return boterrors.NewConfigurationError("config", "decode",
			fmt.Sprintf("failed to parse config file %s: %v", configFile, err))
	}
	return nil
}

// setDefaults fills settings a file may have blanked out explicitly
func (c *MonitorConfig) setDefaults() {
	def := Default()
	if c.Interval == "" {
		c.Interval = def.Interval
	}
	if c.Category == "" {
		c.Category = def.Category
	}
	if c.History.File == "" {
		c.History.File = def.History.File
	}
	if c.History.SaveEvery == 0 {
		c.History.SaveEvery = def.History.SaveEvery
	}
	if c.History.TimeoutSeconds == 0 {
		c.History.TimeoutSeconds = def.History.TimeoutSeconds
	}
	if c.Telegram.TimeoutSeconds == 0 {
		c.Telegram.TimeoutSeconds = def.Telegram.TimeoutSeconds
	}
	if c.Exchange.Name == "" {
		c.Exchange.Name = def.Exchange.Name
	}
	if c.Log.Dir == "" {
		c.Log.Dir = def.Log.Dir
	}
	c.Symbol = strings.ToUpper(strings.TrimSpace(c.Symbol))
	c.Exchange.Name = strings.ToLower(c.Exchange.Name)
}

// Validate checks every setting. All failures are configuration errors.
func (c *MonitorConfig) Validate() error {
	fail := func(format string, args ...interface{}) error {
		return boterrors.NewConfigurationError("config", "validate", fmt.Sprintf(format, args...))
	}

	if c.Symbol == "" {
		return fail("trading symbol is required")
	}
	if !slices.Contains(supportedIntervals, c.Interval) {
		return fail("unsupported interval %q (supported: %s)", c.Interval, strings.Join(supportedIntervals, ", "))
	}
	if !slices.Contains(supportedCategories, c.Category) {
		return fail("unsupported category %q", c.Category)
	}
	if c.CheckInterval <= 0 {
		return fail("check_interval must be greater than 0")
	}

	if err := c.IndicatorConfig().Validate(); err != nil {
		return err
	}
	if err := c.Thresholds().Validate(); err != nil {
		return err
	}

	required := c.IndicatorConfig().RequiredPeriods()
	if c.KlineLimit < required || c.KlineLimit > maxKlineLimit {
		return fail("kline_limit must be between %d and %d, got %d", required, maxKlineLimit, c.KlineLimit)
	}

	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return fail("telegram is enabled but bot_token or chat_id is missing")
	}
	if c.Telegram.TimeoutSeconds < 0 || c.History.TimeoutSeconds < 0 {
		return fail("timeouts must not be negative")
	}
	if c.History.SaveEvery < 1 {
		return fail("history.save_every must be at least 1")
	}

	if !slices.Contains(supportedExchanges, c.Exchange.Name) {
		return fail("unsupported exchange %q", c.Exchange.Name)
	}
	if c.Exchange.Name == "csv" && c.Exchange.DataFile == "" {
		return fail("exchange.data_file is required for the csv source")
	}

	if c.Monitoring.Enabled && (c.Monitoring.Port <= 0 || c.Monitoring.Port > 65535) {
		return fail("monitoring port %d is out of range", c.Monitoring.Port)
	}
	return nil
}

// IndicatorConfig returns the indicator parameters
func (c *MonitorConfig) IndicatorConfig() indicators.Config {
	return indicators.Config{
		BandPeriod: c.Bollinger.Period,
		BandStdDev: c.Bollinger.StdDev,
		RSIPeriod:  c.RSI.Period,
	}
}

// Thresholds returns the detector's RSI levels
func (c *MonitorConfig) Thresholds() signals.Thresholds {
	return signals.Thresholds{Overbought: c.RSI.Overbought, Oversold: c.RSI.Oversold}
}

func (c *MonitorConfig) CheckEvery() time.Duration {
	return time.Duration(c.CheckInterval) * time.Second
}

func (c *MonitorConfig) TelegramTimeout() time.Duration {
	return time.Duration(c.Telegram.TimeoutSeconds) * time.Second
}

func (c *MonitorConfig) HistoryTimeout() time.Duration {
	return time.Duration(c.History.TimeoutSeconds) * time.Second
}

// Summary renders the settings printed by the startup banner
func (c *MonitorConfig) Summary() [][2]string {
	proxy := c.Proxy
	if proxy == "" {
		proxy = "none"
	}
	notify := "console"
	if c.Telegram.Enabled {
		notify = "telegram"
	}
	return [][2]string{
		{"Symbol", c.Symbol},
		{"Interval", c.Interval},
		{"Source", c.Exchange.Name},
		{"Check interval", c.CheckEvery().String()},
		{"Bollinger", fmt.Sprintf("period=%d std_dev=%.1f", c.Bollinger.Period, c.Bollinger.StdDev)},
		{"RSI", fmt.Sprintf("period=%d overbought=%.0f oversold=%.0f", c.RSI.Period, c.RSI.Overbought, c.RSI.Oversold)},
		{"Notifier", notify},
		{"Proxy", proxy},
		{"History", c.History.File},
	}
}
